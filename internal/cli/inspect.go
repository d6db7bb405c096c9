package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arcflow/rpctyping/internal/typedef"
)

func newInspectCmd() *cobra.Command {
	var namespace string

	cmd := &cobra.Command{
		Use:   "inspect <type-name>",
		Short: "Print a registered type's class, generics, inheritance and members",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Free()

			t, err := rt.GetType(namespace, args[0])
			if err != nil {
				return fmt.Errorf("inspect failed: %w", err)
			}
			printType(t)
			return nil
		},
	}
	cmd.Flags().StringVar(&namespace, "namespace", "", "namespace to resolve the name from")
	return cmd
}

func printType(t *typedef.Type) {
	fmt.Printf("%s %s\n", bold(t.QualifiedName()), yellow(string(t.Class)))
	if t.Description != "" {
		fmt.Println("  " + t.Description)
	}
	if t.IsGeneric() {
		fmt.Printf("  generics: <%s>\n", strings.Join(t.GenericVars, ", "))
	}
	if t.Inherits != "" {
		fmt.Printf("  inherits: %s\n", t.Inherits)
	}
	if t.ForceType != "" {
		fmt.Printf("  aliases: %s\n", t.ForceType)
	}
	if len(t.EnumValues) > 0 {
		fmt.Printf("  values: %s\n", strings.Join(t.EnumValues, ", "))
	}
	for _, m := range t.Members {
		constraint := ""
		if len(m.Constraints) > 0 {
			names := make([]string, 0, len(m.Constraints))
			for _, c := range m.Constraints {
				names = append(names, c.Name)
			}
			constraint = " [" + strings.Join(names, ", ") + "]"
		}
		fmt.Printf("  - %s: %s%s\n", m.Name, m.TypeExpr, constraint)
	}
}
