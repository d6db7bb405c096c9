package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/arcflow/rpctyping"
)

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactively load IDL and inspect or validate against it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Free()
			return runRepl(rt, os.Stdout)
		},
	}
	return cmd
}

func runRepl(rt *rpctyping.Runtime, out io.Writer) error {
	line := liner.NewLiner()
	defer line.Close()
	line.SetMultiLineMode(false)

	historyFile := filepath.Join(os.TempDir(), ".rpctypingctl_history")
	if f, err := os.Open(historyFile); err == nil {
		_, _ = line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyFile); err == nil {
			_, _ = line.WriteHistory(f)
			f.Close()
		}
	}()

	line.SetCompleter(func(s string) (c []string) {
		for _, cmd := range []string{":load ", ":inspect ", ":validate ", ":quit"} {
			if strings.HasPrefix(cmd, s) {
				c = append(c, cmd)
			}
		}
		return
	})

	fmt.Fprintln(out, bold("rpctypingctl repl"))
	fmt.Fprintln(out, "Commands: :load <path>, :inspect <type>, :validate <type> <json>, :quit")

	for {
		input, err := line.Prompt("rpct> ")
		if err == io.EOF {
			fmt.Fprintln(out, green("goodbye"))
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		if err := replDispatch(rt, out, input); err != nil {
			fmt.Fprintf(out, "%s %v\n", red("error:"), err)
		}
	}
}

func replDispatch(rt *rpctyping.Runtime, out io.Writer, input string) error {
	fields := strings.Fields(input)
	switch fields[0] {
	case ":quit", ":q":
		os.Exit(0)
		return nil
	case ":load":
		if len(fields) < 2 {
			return fmt.Errorf("usage: :load <path>")
		}
		if err := rt.LoadTypes(fields[1:]...); err != nil {
			return err
		}
		fmt.Fprintln(out, green("loaded"))
		return nil
	case ":inspect":
		if len(fields) != 2 {
			return fmt.Errorf("usage: :inspect <type-name>")
		}
		t, err := rt.GetType("", fields[1])
		if err != nil {
			return err
		}
		printType(t)
		return nil
	case ":validate":
		if len(fields) != 3 {
			return fmt.Errorf("usage: :validate <type-name> <json-literal>")
		}
		var raw any
		if err := json.Unmarshal([]byte(fields[2]), &raw); err != nil {
			return fmt.Errorf("decoding json: %w", err)
		}
		ti, val, err := rt.Deserialize("", tagWithType(raw, fields[1]))
		if err != nil {
			return err
		}
		errs := rt.Validate(ti, val, "")
		if errs.Empty() {
			fmt.Fprintf(out, "%s valid\n", green("OK"))
			return nil
		}
		for _, r := range errs.Reports {
			fmt.Fprintf(out, "%s %s: %s\n", red(r.Code), r.Path, r.Message)
		}
		return fmt.Errorf("%d violation(s)", len(errs.Reports))
	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}
