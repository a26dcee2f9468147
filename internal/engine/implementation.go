package engine

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/mesh-intelligence/dbc/internal/metrics"
	"github.com/mesh-intelligence/dbc/pkg/types"
)

// State is the lifecycle state of an Implementation.
type State int

// Implementation states.
const (
	StateEmpty       State = iota // no contracts
	StateContracted               // contracts with at least one missing body
	StateImplemented              // every contracted operation has a body
	StateLocked                   // implemented and confirmed; checking relaxed
)

var stateNames = map[State]string{
	StateEmpty:       "empty",
	StateContracted:  "contracted",
	StateImplemented: "implemented",
	StateLocked:      "locked",
}

func (s State) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return "unknown"
}

// settings holds what Options configure. Subtypes inherit their parent's
// settings.
type settings struct {
	config  types.Config
	logger  *slog.Logger
	metrics *metrics.Collector
}

func newSettings(opts []Option) settings {
	s := settings{config: types.DefaultConfig(), logger: slog.Default()}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures an Implementation.
type Option func(*settings)

// WithConfig sets the checking configuration.
func WithConfig(cfg types.Config) Option {
	return func(s *settings) {
		s.config = cfg
	}
}

// WithLogger sets the logger. A nil logger keeps the default.
func WithLogger(l *slog.Logger) Option {
	return func(s *settings) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMetrics records check outcomes on m.
func WithMetrics(m *metrics.Collector) Option {
	return func(s *settings) {
		s.metrics = m
	}
}

// OptionsLogger returns the logger opts resolve to, for components that
// log alongside implementations built with the same options.
func OptionsLogger(opts ...Option) *slog.Logger {
	return newSettings(opts).logger
}

// Implementation is a concrete type: it absorbs interface contracts,
// declares its own, and holds the operation bodies installed for them.
// Installing a contracted operation validates its signature and wraps it
// with call-time argument and return checks.
type Implementation struct {
	mu      sync.RWMutex
	name    string
	parent  *Implementation
	table   *Table
	methods map[string]Method
	locked  bool
	settings
}

// NewImplementation creates an implementation with an empty table.
func NewImplementation(name string, opts ...Option) *Implementation {
	return &Implementation{
		name:     name,
		table:    NewTable(),
		methods:  make(map[string]Method),
		settings: newSettings(opts),
	}
}

// Name returns the implementation name.
func (impl *Implementation) Name() string { return impl.name }

// Parent returns the supertype, or nil.
func (impl *Implementation) Parent() *Implementation { return impl.parent }

// Owner identifies impl in contract errors.
func (impl *Implementation) Owner() types.Owner {
	return types.Owner{Name: impl.name, Kind: types.OwnerImplementation}
}

// Config returns the checking configuration.
func (impl *Implementation) Config() types.Config { return impl.config }

// Metrics returns the collector check outcomes are recorded on, or nil.
func (impl *Implementation) Metrics() *metrics.Collector { return impl.metrics }

// Logger returns the logger the implementation writes to.
func (impl *Implementation) Logger() *slog.Logger { return impl.logger }

// Implement unions each source's contracts into this type's table.
func (impl *Implementation) Implement(sources ...Source) *Implementation {
	impl.mu.Lock()
	defer impl.mu.Unlock()

	for _, src := range sources {
		impl.table.Merge(src)
	}
	return impl
}

// Define starts a declaration clause owned by this implementation.
func (impl *Implementation) Define(ret types.Pattern) *Enroller {
	return newEnroller(NewDefinition(ret, impl.Owner()), &lockedTable{impl: impl}, impl.logger)
}

// Each visits the type's effective contract entries in table order.
func (impl *Implementation) Each(visit func(name string, defs []*Definition)) {
	impl.mu.RLock()
	t := impl.table.Clone()
	impl.mu.RUnlock()
	t.Each(visit)
}

// Definitions returns the definitions that apply to name.
func (impl *Implementation) Definitions(name string) []*Definition {
	impl.mu.RLock()
	defer impl.mu.RUnlock()
	return impl.table.Lookup(name)
}

// Table returns a copy of the effective contract table.
func (impl *Implementation) Table() *Table {
	impl.mu.RLock()
	defer impl.mu.RUnlock()
	return impl.table.Clone()
}

// Install defines or redefines the operation name. When name is
// contracted, the candidate signature must match every definition or the
// candidate is rejected and any previous body stays in place. A matching
// body is stored under a fresh alias and a checking wrapper takes its name.
// On a locked type only names that already resolve to a checking wrapper
// are checked; other operations are stored as given.
func (impl *Implementation) Install(name string, m Method) error {
	if m.Body == nil {
		return fmt.Errorf("%s: %w", name, types.ErrInvalidMethod)
	}

	impl.mu.Lock()
	defer impl.mu.Unlock()

	mode := impl.config.CheckMode()
	defs := impl.table.Lookup(name)
	checked := len(defs) > 0 && mode != types.ModeOff &&
		(!impl.locked || impl.wrappedLocked(name))
	if !checked {
		impl.methods[name] = m
		impl.logger.Debug("operation installed",
			"implementation", impl.name, "operation", name, "checked", false)
		return nil
	}

	for _, d := range defs {
		err := d.AssertMatch(name, m.Signature)
		impl.metrics.RecordCheck(impl.name, name, metrics.CheckSignature, err)
		if err != nil {
			impl.logger.Debug("operation rejected",
				"implementation", impl.name, "operation", name,
				"signature", m.Signature.String(), "error", err)
			return err
		}
	}

	if mode == types.ModeStructural {
		impl.methods[name] = m
		impl.logger.Debug("operation installed",
			"implementation", impl.name, "operation", name, "checked", true)
		return nil
	}

	alias := impl.freshAliasLocked(name)
	impl.methods[alias] = m
	impl.methods[name] = Method{Signature: m.Signature, Body: wrap(name, m), wrapped: true}
	impl.logger.Debug("operation wrapped",
		"implementation", impl.name, "operation", name, "alias", alias)
	return nil
}

// wrappedLocked reports whether name resolves to a checking wrapper on impl
// or an ancestor. The caller must hold impl.mu.
func (impl *Implementation) wrappedLocked(name string) bool {
	if m, ok := impl.methods[name]; ok {
		return m.wrapped
	}
	if impl.parent == nil {
		return false
	}
	m, ok := impl.parent.lookup(name)
	return ok && m.wrapped
}

// freshAliasLocked picks name_1, name_2, ... skipping every name defined on
// impl or an ancestor. The caller must hold impl.mu.
func (impl *Implementation) freshAliasLocked(name string) string {
	for num := 1; ; num++ {
		alias := fmt.Sprintf("%s_%d", name, num)
		if _, ok := impl.methods[alias]; ok {
			continue
		}
		if impl.parent != nil && impl.parent.Defined(alias) {
			continue
		}
		return alias
	}
}

// wrap builds the checking wrapper for an installed body. Definitions are
// read from the calling instance's type at call time, so contracts added
// later still apply.
func wrap(name string, orig Method) Body {
	return func(self *Instance, args []any, cb types.Callback) (ret any, err error) {
		class := self.Class()
		violation := false
		start := time.Now()
		defer func() {
			class.metrics.RecordCall(class.name, name, time.Since(start), err, violation)
		}()

		defs := class.Definitions(name)
		for _, d := range defs {
			err = d.AssertArgs(name, args)
			class.metrics.RecordCheck(class.name, name, metrics.CheckArgs, err)
			if err != nil {
				violation = true
				return nil, err
			}
		}
		if ret, err = orig.Body(self, args, cb); err != nil {
			return nil, err
		}
		for _, d := range defs {
			ret, err = d.AssertRet(name, ret)
			class.metrics.RecordCheck(class.name, name, metrics.CheckReturn, err)
			if err != nil {
				violation = true
				return nil, err
			}
		}
		return ret, nil
	}
}

// lookup resolves name on impl or the nearest ancestor that defines it.
func (impl *Implementation) lookup(name string) (Method, bool) {
	for t := impl; t != nil; t = t.parent {
		t.mu.RLock()
		m, ok := t.methods[name]
		t.mu.RUnlock()
		if ok {
			return m, true
		}
	}
	return Method{}, false
}

// Defined reports whether name has a body on impl or an ancestor.
func (impl *Implementation) Defined(name string) bool {
	_, ok := impl.lookup(name)
	return ok
}

// Missing returns the contracted operations that have no body, in table
// order.
func (impl *Implementation) Missing() []string {
	var missing []string
	for _, name := range impl.Table().Names() {
		if !impl.Defined(name) {
			missing = append(missing, name)
		}
	}
	return missing
}

// State reports the lifecycle state.
func (impl *Implementation) State() State {
	impl.mu.RLock()
	locked, n := impl.locked, impl.table.Len()
	impl.mu.RUnlock()

	switch {
	case locked:
		return StateLocked
	case n == 0:
		return StateEmpty
	case len(impl.Missing()) > 0:
		return StateContracted
	default:
		return StateImplemented
	}
}

// AssertImplemented fails with ErrMissingImplementation listing every
// contracted operation without a body. When once is true and the check
// passes, the type is locked: New stops checking and later installs are
// stored without structural checks or wrappers.
func (impl *Implementation) AssertImplemented(once bool) error {
	if missing := impl.Missing(); len(missing) > 0 {
		err := &types.ContractError{
			Kind:     types.ErrMissingImplementation,
			Position: -1,
			Missing:  missing,
			Owner:    impl.Owner(),
		}
		impl.metrics.RecordCheck(impl.name, "", metrics.CheckComplete, err)
		return err
	}
	impl.metrics.RecordCheck(impl.name, "", metrics.CheckComplete, nil)
	if once {
		impl.mu.Lock()
		if !impl.locked {
			impl.locked = true
			impl.logger.Info("contract checking locked", "implementation", impl.name)
		}
		impl.mu.Unlock()
	}
	return nil
}

// New creates an instance. The type must be fully implemented unless it is
// locked or checking is off.
func (impl *Implementation) New() (*Instance, error) {
	impl.mu.RLock()
	skip := impl.locked || impl.config.CheckMode() == types.ModeOff
	impl.mu.RUnlock()

	if !skip {
		if err := impl.AssertImplemented(false); err != nil {
			return nil, err
		}
	}
	return &Instance{id: newUUID(), class: impl}, nil
}

// Subtype creates a type that inherits impl's contracts and bodies. impl
// must already be fully implemented; the subtype tracks its own state.
func (impl *Implementation) Subtype(name string) (*Implementation, error) {
	if err := impl.AssertImplemented(false); err != nil {
		return nil, err
	}

	impl.mu.RLock()
	defer impl.mu.RUnlock()

	sub := &Implementation{
		name:     name,
		parent:   impl,
		table:    impl.table.Clone(),
		methods:  make(map[string]Method),
		settings: impl.settings,
	}
	impl.logger.Debug("subtype created", "implementation", name, "parent", impl.name)
	return sub, nil
}

// lockedTable adds to an implementation's table under its lock.
type lockedTable struct {
	impl *Implementation
}

func (lt *lockedTable) Add(name string, d *Definition) {
	lt.impl.mu.Lock()
	defer lt.impl.mu.Unlock()
	lt.impl.table.Add(name, d)
}
