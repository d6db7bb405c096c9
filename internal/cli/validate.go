package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arcflow/rpctyping/internal/rpcvalue"
)

func newValidateCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "validate <type-name> <payload.json>",
		Short: "Validate a JSON payload against a declared type",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Free()

			data, err := os.ReadFile(args[1])
			if err != nil {
				return fmt.Errorf("reading payload: %w", err)
			}
			var raw any
			if err := json.Unmarshal(data, &raw); err != nil {
				return fmt.Errorf("decoding payload: %w", err)
			}

			tagged := tagWithType(raw, args[0])
			ti, val, err := rt.Deserialize(namespace, tagged)
			if err != nil {
				return fmt.Errorf("decode against %s: %w", args[0], err)
			}

			errs := rt.Validate(ti, val, "")
			if errs.Empty() {
				fmt.Printf("%s %s is valid\n", green("OK"), args[0])
				return nil
			}
			for _, r := range errs.Reports {
				fmt.Printf("%s %s: %s\n", red(r.Code), r.Path, r.Message)
			}
			return fmt.Errorf("%d violation(s)", len(errs.Reports))
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to resolve the type name from")
	return cmd
}

// tagWithType wraps raw in the wire envelope so Deserialize resolves it
// against typeName instead of guessing from raw's Go shape alone. A map
// payload that already carries "%type" is left untouched.
func tagWithType(raw any, typeName string) any {
	if m, ok := raw.(map[string]any); ok {
		if _, tagged := m[rpcvalue.TypeField]; tagged {
			return m
		}
		out := make(map[string]any, len(m)+1)
		out[rpcvalue.TypeField] = typeName
		for k, v := range m {
			out[k] = v
		}
		return out
	}
	return map[string]any{
		rpcvalue.TypeField:  typeName,
		rpcvalue.ValueField: raw,
	}
}
