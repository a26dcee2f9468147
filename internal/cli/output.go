package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mesh-intelligence/dbc/internal/engine"
	"github.com/mesh-intelligence/dbc/internal/manifest"
)

// writeJSON writes v as indented JSON followed by a newline.
func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: marshal output: %w", errSystem, err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// loadRegistry reads the manifest at path and builds it with the loaded
// config.
func (a *app) loadRegistry(path string) (*manifest.Registry, error) {
	m, err := manifest.Load(path)
	if err != nil {
		return nil, err
	}
	reg, err := m.Build(a.engineOptions()...)
	if err != nil {
		return nil, fmt.Errorf("build %s: %w", path, err)
	}
	a.logger.Debug("manifest built", "path", path,
		"interfaces", len(reg.Interfaces), "implementations", len(reg.Implementations))
	return reg, nil
}

// definitionView is the printable form of one definition.
type definitionView struct {
	ID        string `json:"id"`
	Signature string `json:"signature"`
	Arity     int    `json:"arity"`
	Owner     string `json:"owner"`
}

type operationView struct {
	Name        string           `json:"name"`
	Definitions []definitionView `json:"definitions"`
}

func viewDefinition(d *engine.Definition) definitionView {
	return definitionView{
		ID:        d.ID(),
		Signature: d.String(),
		Arity:     d.Arity(),
		Owner:     d.Owner().String(),
	}
}

func viewOperations(src engine.Source) []operationView {
	ops := []operationView{}
	src.Each(func(name string, defs []*engine.Definition) {
		op := operationView{Name: name}
		for _, d := range defs {
			op.Definitions = append(op.Definitions, viewDefinition(d))
		}
		ops = append(ops, op)
	})
	return ops
}
