// Package cli implements the rpctypingctl commands.
package cli

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcflow/rpctyping"
	"github.com/arcflow/rpctyping/internal/rpcconfig"
	"github.com/arcflow/rpctyping/internal/rpclog"
)

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	bold   = color.New(color.Bold).SprintFunc()

	cfgFile string
	v       = viper.New()
)

var rootCmd = &cobra.Command{
	Use:   "rpctypingctl",
	Short: "Inspect and exercise the RPC typing core from the command line",
	Long: `rpctypingctl loads IDL type/interface declarations and lets you
validate payloads against them, inspect a declared type, and stream a
loaded registry's IDL bodies back out.

Examples:
  rpctypingctl load ./idl
  rpctypingctl inspect com.example/Pet --idl ./idl
  rpctypingctl validate com.example/Pet ./pet.json --idl ./idl
  rpctypingctl repl --idl ./idl`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.rpctyping/config.yaml)")
	rpcconfig.BindFlags(rootCmd, v)
	rootCmd.PersistentFlags().StringSlice("idl", nil, "IDL files or directories to load before running the command")

	rootCmd.AddCommand(newLoadCmd())
	rootCmd.AddCommand(newValidateCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newDownloadCmd())
	rootCmd.AddCommand(newReplCmd())
}

// newRuntime builds a Runtime from the resolved config and loads every
// path named by --idl, shared by every subcommand that needs a populated
// registry to operate on.
func newRuntime(cmd *cobra.Command) (*rpctyping.Runtime, error) {
	cfg, err := rpcconfig.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	applyFlagOverrides(cmd, cfg)
	if err := rpclog.Configure(rpclog.Config{Level: cfg.LogLevel, Output: cfg.LogOutput}); err != nil {
		return nil, err
	}
	rt := rpctyping.Init(cfg)

	paths, _ := cmd.Flags().GetStringSlice("idl")
	if len(paths) == 0 {
		return rt, nil
	}
	if err := rt.LoadTypes(paths...); err != nil {
		return nil, err
	}
	return rt, nil
}

// applyFlagOverrides layers explicitly-set CLI flags on top of the
// file/env-resolved Config, giving flags the highest precedence per
// rpcconfig's documented resolution order.
func applyFlagOverrides(cmd *cobra.Command, cfg *rpcconfig.Config) {
	flags := cmd.Flags()
	if flags.Changed("instance-cache-size") {
		if n, err := flags.GetInt("instance-cache-size"); err == nil && n > 0 {
			cfg.InstanceCacheSize = n
		}
	}
	if flags.Changed("realm") {
		if s, err := flags.GetString("realm"); err == nil {
			cfg.Realm = s
		}
	}
	if flags.Changed("log-level") {
		if s, err := flags.GetString("log-level"); err == nil {
			cfg.LogLevel = s
		}
	}
	if flags.Changed("allow-idl-download") {
		if b, err := flags.GetBool("allow-idl-download"); err == nil {
			cfg.AllowIDLDownload = b
		}
	}
	if flags.Changed("search-path") {
		if ss, err := flags.GetStringSlice("search-path"); err == nil {
			cfg.SearchPaths = append(cfg.SearchPaths, ss...)
		}
	}
}
