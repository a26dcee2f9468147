// Package contract provides the public API for declaring interface
// contracts and checking implementations against them. It exposes the
// engine types and constructors while keeping their implementation
// internal.
//
// Example:
//
//	iface := contract.NewInterface("IFoo")
//	iface.Define(nil).MustOp("foo", types.Integer, types.String, types.Rest, types.Block)
//
//	impl := contract.NewImplementation("Foo").Implement(iface)
//	err := impl.Install("foo", contract.NewMethod(
//	    types.Signature{types.ParamRequired, types.ParamRequired, types.ParamVariadic, types.ParamCallback},
//	    body,
//	))
//	obj, err := impl.New()
//	v, err := obj.Call("foo", 1, "x")
package contract

import (
	"log/slog"

	"github.com/mesh-intelligence/dbc/internal/config"
	"github.com/mesh-intelligence/dbc/internal/engine"
	"github.com/mesh-intelligence/dbc/internal/metrics"
	"github.com/mesh-intelligence/dbc/pkg/types"
)

// Version is the dbc release version.
const Version = "0.1.0"

// Engine types.
type (
	Interface      = engine.Interface
	Implementation = engine.Implementation
	Instance       = engine.Instance
	Definition     = engine.Definition
	Enroller       = engine.Enroller
	Table          = engine.Table
	Source         = engine.Source
	Method         = engine.Method
	Body           = engine.Body
	Option         = engine.Option
	State          = engine.State
	Metrics        = metrics.Collector
)

// Implementation states.
const (
	StateEmpty       = engine.StateEmpty
	StateContracted  = engine.StateContracted
	StateImplemented = engine.StateImplemented
	StateLocked      = engine.StateLocked
)

// NewInterface creates an interface that starts with a copy of every
// parent's contracts.
func NewInterface(name string, parents ...Source) *Interface {
	return engine.NewInterface(name, parents...)
}

// NewImplementation creates an empty implementation type.
func NewImplementation(name string, opts ...Option) *Implementation {
	return engine.NewImplementation(name, opts...)
}

// WithConfig sets the checking mode of an implementation and its subtypes.
func WithConfig(cfg types.Config) Option { return engine.WithConfig(cfg) }

// NewMethod builds a Method from an explicit signature and body.
func NewMethod(sig types.Signature, body Body) Method {
	return engine.NewMethod(sig, body)
}

// FuncMethod derives a Method from an ordinary Go func.
func FuncMethod(fn any) (Method, error) { return engine.FuncMethod(fn) }

// LoadConfig reads a dbc config file; see config.Load for precedence.
func LoadConfig(path string) (types.Config, error) {
	return config.Load(path, path != "")
}

// WithLogger sets the logger of an implementation and its subtypes.
func WithLogger(l *slog.Logger) Option { return engine.WithLogger(l) }

// WithMetrics records check outcomes of an implementation and its subtypes
// on m.
func WithMetrics(m *Metrics) Option { return engine.WithMetrics(m) }

// NewMetrics creates a metrics collector with the default namespace.
func NewMetrics() *Metrics { return metrics.New(metrics.DefaultNamespace) }
