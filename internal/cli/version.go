package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dbc/pkg/contract"
)

const modulePath = "github.com/mesh-intelligence/dbc"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the dbc version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "dbc v%s\nmodule: %s\n", contract.Version, modulePath)
			return nil
		},
	}
}
