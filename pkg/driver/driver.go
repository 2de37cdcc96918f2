package driver

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/untillpro/goutils/logger"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"jscore/pkg/builtins"
	"jscore/pkg/vm"
)

// Engine is a realm with the standard library installed, plus the host
// operations the command line needs: path lookup, invocation and
// introspection.
type Engine struct {
	realm  *vm.Realm
	config Config
	// held are the results and thrown values handed to the caller. They
	// stay reachable across Collect until Release.
	held []vm.Value
}

// New creates a realm writing console output to out and installs the
// standard globals, followed by the host globals enabled in cfg.
func New(cfg Config, out io.Writer) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := ApplyLogLevel(cfg.Log.Level); err != nil {
		return nil, err
	}
	if out == nil {
		out = os.Stdout
	}

	realm := vm.NewRealmWithOutput(out)
	initializers := builtins.GetStandardInitializers()
	if cfg.Host.Process {
		initializers = append(initializers, NewProcessInitializer(cfg.Host.Argv, nil))
	}
	builtins.InitializeWith(realm, initializers)

	logger.Info(fmt.Sprintf("driver: realm %d ready, %d globals, %d objects", realm.ID(), realm.GlobalObject().PropertyCount(), realm.Heap().Len()))
	return &Engine{realm: realm, config: cfg}, nil
}

func (e *Engine) Realm() *vm.Realm { return e.realm }
func (e *Engine) Config() Config   { return e.config }

// Resolve evaluates a dotted property path from the global object, e.g.
// "RangeError.prototype.toString". A segment of the form @@name selects the
// well-known symbol Symbol.name. The empty path is the global object.
func (e *Engine) Resolve(path string) (vm.Value, error) {
	_, v, err := e.resolve(path)
	return v, err
}

// resolve returns the value at path and the object it was read from.
func (e *Engine) resolve(path string) (base, v vm.Value, err error) {
	v = vm.ObjectValue(e.realm.GlobalObject())
	base = vm.Undefined
	path = strings.TrimSpace(path)
	if path == "" || path == "globalThis" {
		return base, v, nil
	}
	for _, segment := range strings.Split(path, ".") {
		key, err := e.segmentKey(segment)
		if err != nil {
			return vm.Undefined, vm.Undefined, err
		}
		base = v
		if v, err = e.realm.Get(base, key); err != nil {
			return vm.Undefined, vm.Undefined, fmt.Errorf("%s: %w", path, err)
		}
	}
	return base, v, nil
}

func (e *Engine) segmentKey(segment string) (vm.PropertyKey, error) {
	if segment == "" {
		return vm.PropertyKey{}, fmt.Errorf("empty segment in property path")
	}
	name, ok := strings.CutPrefix(segment, "@@")
	if !ok {
		return vm.StringKey(segment), nil
	}
	var found *vm.Symbol
	e.realm.WellKnownSymbols().Each(func(n string, sym *vm.Symbol) {
		if n == name {
			found = sym
		}
	})
	if found == nil {
		return vm.PropertyKey{}, fmt.Errorf("unknown well-known symbol %q", segment)
	}
	return vm.SymbolKey(found), nil
}

// ParseArgs turns JSON literals into language values through the realm's
// own JSON.parse.
func (e *Engine) ParseArgs(literals []string) ([]vm.Value, error) {
	parse, err := e.Resolve("JSON.parse")
	if err != nil {
		return nil, err
	}
	args := make([]vm.Value, len(literals))
	for i, lit := range literals {
		if args[i], err = e.realm.Call(parse, vm.Undefined, []vm.Value{vm.StringValue(lit)}); err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		if args[i].IsObject() {
			e.held = append(e.held, args[i])
		}
	}
	return args, nil
}

// Call invokes the function at path with the object it was read from as the
// receiver, so "Math.max" runs with this = Math.
func (e *Engine) Call(path string, args []vm.Value) (vm.Value, error) {
	base, fn, err := e.resolve(path)
	if err != nil {
		return vm.Undefined, err
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("driver: call %s with %d argument(s)", path, len(args)))
	}
	return e.hold(e.realm.Call(fn, base, args))
}

// Construct invokes the constructor at path as if by new.
func (e *Engine) Construct(path string, args []vm.Value) (vm.Value, error) {
	ctor, err := e.Resolve(path)
	if err != nil {
		return vm.Undefined, err
	}
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("driver: new %s with %d argument(s)", path, len(args)))
	}
	return e.hold(e.realm.Construct(ctor, args))
}

// hold pins an invocation result, or the value it threw, as an extra root.
func (e *Engine) hold(v vm.Value, err error) (vm.Value, error) {
	if thrown, ok := vm.AsException(err); ok && thrown.IsObject() {
		e.held = append(e.held, thrown)
	}
	if err == nil && v.IsObject() {
		e.held = append(e.held, v)
	}
	return v, err
}

// Collect frees the objects unreachable from the realm roots and from the
// values returned by Call, Construct and ParseArgs, and reports how many were
// freed. Handles the engine never returned may dangle afterwards.
func (e *Engine) Collect() int {
	return e.realm.Collect(e.held...)
}

// Release unpins every value returned so far, so the next Collect may free
// them.
func (e *Engine) Release() {
	e.held = nil
}

// Describe renders v for a terminal. Errors and other objects with a
// toString go through it, so a thrown RangeError prints "RangeError: bad".
func (e *Engine) Describe(v vm.Value) string {
	if v.IsObject() && v.AsObject().Kind() == vm.KindError {
		if s, err := e.realm.ToString(v); err == nil {
			return s
		}
	}
	if s, err := builtins.Display(e.realm, v); err == nil {
		return s
	}
	return v.String()
}

// --- Introspection ---

// PropertyReport describes one own property without invoking accessors.
type PropertyReport struct {
	Key          string `json:"key"`
	Accessor     bool   `json:"accessor"`
	Value        string `json:"value,omitempty"`
	Type         string `json:"type"`
	Writable     bool   `json:"writable"`
	Enumerable   bool   `json:"enumerable"`
	Configurable bool   `json:"configurable"`
}

// Flags returns the descriptor flags in the "wec" notation, with a dash
// for each cleared flag.
func (p PropertyReport) Flags() string {
	flags := []byte("---")
	if p.Writable {
		flags[0] = 'w'
	}
	if p.Enumerable {
		flags[1] = 'e'
	}
	if p.Configurable {
		flags[2] = 'c'
	}
	return string(flags)
}

// ObjectReport is the result of Inspect.
type ObjectReport struct {
	Path          string           `json:"path"`
	Type          string           `json:"type"`
	Kind          string           `json:"kind,omitempty"`
	Value         string           `json:"value,omitempty"`
	Callable      bool             `json:"callable"`
	Constructable bool             `json:"constructable"`
	Extensible    bool             `json:"extensible"`
	Properties    []PropertyReport `json:"properties"`
	Chain         []string         `json:"prototypeChain"`
}

type InspectOptions struct {
	ShowHidden bool
	MaxDepth   int
}

// InspectOptions returns the inspect settings from the engine config.
func (e *Engine) InspectOptions() InspectOptions {
	return InspectOptions{ShowHidden: e.config.Inspect.ShowHidden, MaxDepth: e.config.Inspect.MaxDepth}
}

// Inspect reports the own properties of the value at path in OwnKeys order
// and names its prototype chain up to opts.MaxDepth links.
func (e *Engine) Inspect(path string, opts InspectOptions) (*ObjectReport, error) {
	v, err := e.Resolve(path)
	if err != nil {
		return nil, err
	}
	report := &ObjectReport{Path: path, Type: v.Type().String(), Properties: []PropertyReport{}, Chain: []string{}}
	if !v.IsObject() {
		report.Value = e.Describe(v)
		return report, nil
	}

	obj := v.AsObject()
	report.Kind = obj.Kind().String()
	report.Callable = obj.IsCallable()
	report.Constructable = obj.IsConstructable()
	report.Extensible = obj.IsExtensible()

	for _, key := range obj.OwnKeys() {
		p, ok := obj.GetOwn(key)
		if !ok || (!opts.ShowHidden && !p.Enumerable()) {
			continue
		}
		pr := PropertyReport{
			Key:          key.String(),
			Accessor:     p.IsAccessor(),
			Writable:     p.Writable(),
			Enumerable:   p.Enumerable(),
			Configurable: p.Configurable(),
		}
		if p.IsAccessor() {
			pr.Type = "accessor"
			pr.Value = accessorSummary(p)
		} else {
			pr.Type = p.Value().Type().String()
			pr.Value = e.summary(p.Value())
		}
		report.Properties = append(report.Properties, pr)
	}

	for proto, depth := obj.Prototype(), 0; proto.IsObject() && depth < opts.MaxDepth; proto, depth = proto.AsObject().Prototype(), depth+1 {
		report.Chain = append(report.Chain, e.objectName(proto.AsObject()))
	}
	return report, nil
}

func accessorSummary(p vm.Property) string {
	parts := make([]string, 0, 2)
	if p.Getter().IsCallable() {
		parts = append(parts, "Getter")
	}
	if p.Setter().IsCallable() {
		parts = append(parts, "Setter")
	}
	if len(parts) == 0 {
		return "[Accessor]"
	}
	return "[" + strings.Join(parts, "/") + "]"
}

// summary renders a property value in one line without running guest code.
func (e *Engine) summary(v vm.Value) string {
	if !v.IsObject() {
		if v.IsString() {
			return fmt.Sprintf("'%s'", v.AsString())
		}
		return v.String()
	}
	return e.objectName(v.AsObject())
}

// objectName names intrinsics by their global path and everything else by
// its data kind.
func (e *Engine) objectName(obj *vm.GcObject) string {
	if obj == e.realm.GlobalObject() {
		return "globalThis"
	}
	var name string
	e.realm.StandardObjects().Each(func(n string, sc *vm.StandardConstructor) {
		switch {
		case name != "":
		case sc.Constructor == obj:
			name = n
		case sc.Prototype == obj:
			name = n + ".prototype"
		}
	})
	if name != "" {
		return name
	}
	if obj.Kind() == vm.KindFunction {
		if p, ok := obj.GetOwn(vm.StringKey("name")); ok && p.Value().IsString() && p.Value().AsString() != "" {
			return "[Function: " + p.Value().AsString() + "]"
		}
		return "[Function (anonymous)]"
	}
	return "[object " + obj.Kind().String() + "]"
}

// Globals lists the global bindings sorted by name.
func (e *Engine) Globals() []PropertyReport {
	report, err := e.Inspect("", InspectOptions{ShowHidden: true})
	if err != nil {
		return nil
	}
	props := report.Properties
	slices.SortFunc(props, func(a, b PropertyReport) bool { return a.Key < b.Key })
	return props
}

// Stats summarises the object graph.
type Stats struct {
	Live      int            `json:"live"`
	Reachable int            `json:"reachable"`
	ByKind    map[string]int `json:"byKind"`
}

// Kinds returns the data kinds present in s, sorted.
func (s Stats) Kinds() []string {
	kinds := maps.Keys(s.ByKind)
	slices.Sort(kinds)
	return kinds
}

// Stats counts the objects reachable from the realm roots per data kind.
// Live is the heap's count, which includes garbage not yet collected.
func (e *Engine) Stats() Stats {
	stats := Stats{Live: e.realm.Heap().Len(), ByKind: make(map[string]int)}
	for kind, n := range vm.KindCounts(e.realm.Roots()...) {
		stats.ByKind[kind.String()] = n
		stats.Reachable += n
	}
	return stats
}
