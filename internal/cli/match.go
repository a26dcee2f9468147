package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dbc/internal/manifest"
	"github.com/mesh-intelligence/dbc/pkg/types"
)

var errMatchFailed = errors.New("signature does not match")

// matchView reports one definition's verdict on a candidate signature.
type matchView struct {
	Definition string `json:"definition"`
	Owner      string `json:"owner"`
	OK         bool   `json:"ok"`
	Error      string `json:"error,omitempty"`
}

func newMatchCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "match <manifest> <interface> <operation> [kind...]",
		Short: "Check a candidate signature against an interface operation",
		Long: "Check a candidate parameter list against every definition an interface\n" +
			"declares for an operation. Kinds are required, optional, variadic and callback.",
		Args: cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := a.loadRegistry(args[0])
			if err != nil {
				return err
			}
			iface, err := reg.Interface(args[1])
			if err != nil {
				return err
			}
			op := args[2]
			defs := iface.Lookup(op)
			if len(defs) == 0 {
				return fmt.Errorf("%s for interface %s: %w", op, iface.Name(), types.ErrNoMethod)
			}
			sig, err := manifest.ParseSignature(args[3:])
			if err != nil {
				return err
			}

			views := make([]matchView, 0, len(defs))
			failed := false
			for _, d := range defs {
				v := matchView{Definition: d.String(), Owner: d.Owner().String(), OK: true}
				if err := d.AssertMatch(op, sig); err != nil {
					v.OK = false
					v.Error = err.Error()
					failed = true
				}
				views = append(views, v)
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if err := writeJSON(out, views); err != nil {
					return err
				}
			} else {
				fmt.Fprintf(out, "%s%s\n", op, sig)
				for _, v := range views {
					if v.OK {
						fmt.Fprintf(out, "ok   %s %s\n", v.Definition, v.Owner)
					} else {
						fmt.Fprintf(out, "FAIL %s %s: %s\n", v.Definition, v.Owner, v.Error)
					}
				}
			}

			if failed {
				return errMatchFailed
			}
			return nil
		},
	}
}
