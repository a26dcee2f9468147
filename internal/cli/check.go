package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/dbc/internal/metrics"
)

var errCheckFailed = errors.New("contract check failed")

func newCheckCmd(a *app) *cobra.Command {
	var withMetrics bool
	cmd := &cobra.Command{
		Use:   "check <manifest>",
		Short: "Build every implementation and report contract failures",
		Long: "Build every implementation in the manifest against its interfaces.\n" +
			"Structural mismatches and missing operations are reported per implementation\n" +
			"and make the command exit non-zero.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if withMetrics {
				a.metrics = metrics.New(metrics.DefaultNamespace)
			}
			reg, err := a.loadRegistry(args[0])
			if err != nil {
				return err
			}

			failed := 0
			for _, r := range reg.Results {
				if !r.OK() {
					failed++
					a.logger.Debug("implementation failed", "implementation", r.Name, "error", r.Err)
				}
			}

			out := cmd.OutOrStdout()
			if a.flags.jsonMode {
				if err := writeJSON(out, reg.Results); err != nil {
					return err
				}
			} else {
				for _, r := range reg.Results {
					state := r.State
					if state == "" {
						state = "unbuilt"
					}
					if r.OK() {
						fmt.Fprintf(out, "ok   %s [%s]\n", r.Name, state)
					} else {
						fmt.Fprintf(out, "FAIL %s [%s]: %s\n", r.Name, state, r.Error)
					}
				}
			}

			if withMetrics {
				// Keep stdout parseable in JSON mode.
				w := out
				if a.flags.jsonMode {
					w = cmd.ErrOrStderr()
				}
				if err := a.metrics.WriteSummary(w); err != nil {
					return fmt.Errorf("%w: %w", errSystem, err)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d implementations", errCheckFailed, failed, len(reg.Results))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&withMetrics, "metrics", false, "print contract check counters after the report")
	return cmd
}
