package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/dbc/pkg/types"
)

func newInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:         "init",
		Short:       "Write a default config file",
		Long:        "Create the configuration directory and write config.yaml with default values.\nAn existing file is left untouched.",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{annotationConfigOptional: "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(filepath.Dir(a.configPath), 0o755); err != nil {
				return fmt.Errorf("%w: create config directory: %w", errSystem, err)
			}
			written, err := writeConfigIfMissing(a.configPath, types.DefaultConfig())
			if err != nil {
				return fmt.Errorf("%w: write config: %w", errSystem, err)
			}
			if written {
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", a.configPath)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already exists\n", a.configPath)
			}
			return nil
		},
	}
}

// writeConfigIfMissing creates path with cfg if the file does not exist.
// It reports whether the file was written.
func writeConfigIfMissing(path string, cfg types.Config) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	}

	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return false, err
	}
	return true, nil
}
