package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <path>...",
		Short: "Load IDL files or directories and report what was registered",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Free()

			if err := rt.LoadTypes(args...); err != nil {
				return fmt.Errorf("load failed: %w", err)
			}
			fmt.Printf("%s loaded %d path(s)\n", green("OK"), len(args))
			return nil
		},
	}
	return cmd
}
