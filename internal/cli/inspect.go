package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// tableView is the printable form of an interface or implementation.
type tableView struct {
	Kind       string          `json:"kind"`
	Name       string          `json:"name"`
	State      string          `json:"state,omitempty"`
	Parent     string          `json:"parent,omitempty"`
	Operations []operationView `json:"operations"`
}

func newInspectCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <manifest>",
		Short: "Print the contract table of every interface and implementation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry(args[0])
			if err != nil {
				return err
			}

			var views []tableView
			for _, iface := range reg.Interfaces {
				views = append(views, tableView{
					Kind:       "interface",
					Name:       iface.Name(),
					Operations: viewOperations(iface),
				})
			}
			for _, impl := range reg.Implementations {
				v := tableView{
					Kind:       "implementation",
					Name:       impl.Name(),
					State:      impl.State().String(),
					Operations: viewOperations(impl),
				}
				if p := impl.Parent(); p != nil {
					v.Parent = p.Name()
				}
				views = append(views, v)
			}

			if a.flags.jsonMode {
				return writeJSON(cmd.OutOrStdout(), views)
			}
			printTables(cmd.OutOrStdout(), views)
			return nil
		},
	}
}

func printTables(w io.Writer, views []tableView) {
	for i, v := range views {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s %s", v.Kind, v.Name)
		if v.Parent != "" {
			fmt.Fprintf(w, " < %s", v.Parent)
		}
		if v.State != "" {
			fmt.Fprintf(w, " [%s]", v.State)
		}
		fmt.Fprintln(w)
		for _, op := range v.Operations {
			for _, d := range op.Definitions {
				fmt.Fprintf(w, "  %s %s  arity=%d  %s\n", op.Name, d.Signature, d.Arity, d.Owner)
			}
		}
	}
}
