// Package rpcconfig loads process-wide configuration for the typing
// core: the IDL search path, instance cache sizing, logging, and the
// realm name — bound to both a config file (via viper) and CLI flags
// (via cobra/pflag), grounded on the teacher's config/CLI wiring.
package rpcconfig

import (
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/arcflow/rpctyping/internal/rpclog"
)

// Viper keys, mirroring the env-var / config-key pattern the teacher's
// CLI config layer uses.
const (
	KeySearchPaths      = "search_paths"
	KeyInstanceCacheMax = "instance_cache_size"
	KeyRealm            = "realm"
	KeyLogLevel         = "log_level"
	KeyLogOutput        = "log_output"
	KeyAllowDownload    = "allow_idl_download"

	// EnvPrefix is the environment variable prefix viper binds config keys
	// under, e.g. RPCTYPING_REALM.
	EnvPrefix = "RPCTYPING"

	// DefaultSearchPath is always appended to the configured search paths,
	// matching the original process-wide default load location.
	DefaultSearchPath = "/usr/local/share/idl"
)

// Config is the resolved process configuration.
type Config struct {
	SearchPaths       []string
	InstanceCacheSize int
	Realm             string
	LogLevel          string
	LogOutput         string
	AllowIDLDownload  bool
}

// Load resolves Config from (in ascending precedence) defaults, an
// optional config file, and environment variables bound under EnvPrefix.
// configPath may be empty, in which case only "$HOME/.rpctyping/config.yaml"
// is consulted if present.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault(KeySearchPaths, []string{DefaultSearchPath})
	v.SetDefault(KeyInstanceCacheMax, 4096)
	v.SetDefault(KeyRealm, "")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogOutput, "stderr")
	v.SetDefault(KeyAllowDownload, false)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else if home, err := os.UserHomeDir(); err == nil {
		v.AddConfigPath(filepath.Join(home, ".rpctyping"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
			return nil, err
		}
	}

	cfg := fromViper(v)

	v.WatchConfig()
	v.OnConfigChange(func(e fsnotify.Event) {
		rpclog.L().Infow("rpcconfig: config file changed, reloading", "path", e.Name)
		*cfg = *fromViper(v)
	})

	return cfg, nil
}

func fromViper(v *viper.Viper) *Config {
	paths := v.GetStringSlice(KeySearchPaths)
	hasDefault := false
	for _, p := range paths {
		if p == DefaultSearchPath {
			hasDefault = true
		}
	}
	if !hasDefault {
		paths = append(paths, DefaultSearchPath)
	}
	return &Config{
		SearchPaths:       paths,
		InstanceCacheSize: v.GetInt(KeyInstanceCacheMax),
		Realm:             v.GetString(KeyRealm),
		LogLevel:          v.GetString(KeyLogLevel),
		LogOutput:         v.GetString(KeyLogOutput),
		AllowIDLDownload:  v.GetBool(KeyAllowDownload),
	}
}

// BindFlags registers the persistent flags a CLI entry point exposes for
// every Config field, and binds them into v so flag values take
// precedence over the config file and defaults.
func BindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.StringSlice("search-path", []string{}, "additional IDL search directories")
	flags.Int("instance-cache-size", 0, "bounded instance cache size (0 = default)")
	flags.String("realm", "", "realm name (reserved; any non-empty value errors)")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.Bool("allow-idl-download", false, "permit the download-IDL call to stream loaded file bodies")

	_ = v.BindPFlag(KeySearchPaths, flags.Lookup("search-path"))
	_ = v.BindPFlag(KeyInstanceCacheMax, flags.Lookup("instance-cache-size"))
	_ = v.BindPFlag(KeyRealm, flags.Lookup("realm"))
	_ = v.BindPFlag(KeyLogLevel, flags.Lookup("log-level"))
	_ = v.BindPFlag(KeyAllowDownload, flags.Lookup("allow-idl-download"))
}
