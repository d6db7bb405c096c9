package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newDownloadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download",
		Short: "Stream the loaded registry's IDL file bodies back out",
		Long: `download requires --allow-idl-download (or RPCTYPING_ALLOW_IDL_DOWNLOAD=1):
the streaming-IDL call is a potential information disclosure surface and is
refused unless explicitly enabled.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime(cmd)
			if err != nil {
				return err
			}
			defer rt.Free()

			bodies, errs := rt.StreamIDL(cmd.Context())
			for {
				select {
				case body, ok := <-bodies:
					if !ok {
						bodies = nil
						break
					}
					fmt.Printf("%s %s (%d bytes)\n", green("==>"), body.Path, len(body.Data))
				case err, ok := <-errs:
					if !ok {
						errs = nil
						break
					}
					if err != nil {
						return err
					}
				}
				if bodies == nil && errs == nil {
					return nil
				}
			}
		},
	}
	return cmd
}
