package builtins

import (
	"fmt"
	"strings"
	"time"

	"jscore/pkg/vm"
)

type ConsoleInitializer struct{}

func (c *ConsoleInitializer) Name() string {
	return "console"
}

func (c *ConsoleInitializer) Priority() int {
	return PriorityConsole
}

// consoleState is the host data behind the console object: counters,
// timers and the current group depth.
type consoleState struct {
	counts map[string]int
	timers map[string]time.Time
	depth  int
}

func (consoleState) Trace(func(vm.Value)) {}

func (c *ConsoleInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	var console *vm.GcObject

	// withState runs fn against the console's state under an exclusive
	// borrow. Methods close over the handle so they also work detached.
	withState := func(fn func(s *consoleState)) {
		console.BorrowMut(func(o *vm.Object) {
			if s, ok := vm.DowncastMut[consoleState](o); ok {
				fn(s)
			}
		})
	}
	printer := func(prefix string) vm.NativeFunction {
		return func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			line, err := formatConsoleArgs(realm, args)
			if err != nil {
				return vm.Undefined, err
			}
			var depth int
			withState(func(s *consoleState) { depth = s.depth })
			fmt.Fprintf(realm.Output(), "%s%s%s\n", strings.Repeat("  ", depth), prefix, line)
			return vm.Undefined, nil
		}
	}
	label := func(args []vm.Value, realm *vm.Realm) (string, error) {
		if l := vm.Arg(args, 0); !l.IsUndefined() {
			return realm.ToString(l)
		}
		return "default", nil
	}

	console = NewObjectBuilder(realm).
		Function(printer(""), "log", 0).
		Function(printer(""), "info", 0).
		Function(printer(""), "debug", 0).
		Function(printer("WARN: "), "warn", 0).
		Function(printer("ERROR: "), "error", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			name, err := label(args, realm)
			if err != nil {
				return vm.Undefined, err
			}
			var n int
			withState(func(s *consoleState) {
				s.counts[name]++
				n = s.counts[name]
			})
			fmt.Fprintf(realm.Output(), "%s: %d\n", name, n)
			return vm.Undefined, nil
		}, "count", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			name, err := label(args, realm)
			if err != nil {
				return vm.Undefined, err
			}
			withState(func(s *consoleState) { delete(s.counts, name) })
			return vm.Undefined, nil
		}, "countReset", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			name, err := label(args, realm)
			if err != nil {
				return vm.Undefined, err
			}
			withState(func(s *consoleState) { s.timers[name] = time.Now() })
			return vm.Undefined, nil
		}, "time", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			name, err := label(args, realm)
			if err != nil {
				return vm.Undefined, err
			}
			var start time.Time
			var ok bool
			withState(func(s *consoleState) {
				start, ok = s.timers[name]
				delete(s.timers, name)
			})
			if ok {
				fmt.Fprintf(realm.Output(), "%s: %.3fms\n", name, float64(time.Since(start).Microseconds())/1000)
			}
			return vm.Undefined, nil
		}, "timeEnd", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			if len(args) > 0 {
				if _, err := printer("")(this, args, realm); err != nil {
					return vm.Undefined, err
				}
			}
			withState(func(s *consoleState) { s.depth++ })
			return vm.Undefined, nil
		}, "group", 0).
		Function(func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
			withState(func(s *consoleState) { s.depth = max(s.depth-1, 0) })
			return vm.Undefined, nil
		}, "groupEnd", 0).
		Build()
	console.SetData(vm.NewNativeData(consoleState{
		counts: make(map[string]int),
		timers: make(map[string]time.Time),
	}))
	return "console", vm.ObjectValue(console), vm.DefaultAttribute
}

func formatConsoleArgs(realm *vm.Realm, args []vm.Value) (string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		if a.IsString() {
			parts[i] = a.AsString()
			continue
		}
		s, err := displayValue(realm, a, 0)
		if err != nil {
			return "", err
		}
		parts[i] = s
	}
	return strings.Join(parts, " "), nil
}

// Display renders v the way console.log prints a non-string argument.
func Display(realm *vm.Realm, v vm.Value) (string, error) {
	return displayValue(realm, v, 1)
}

// displayValue renders v for humans: strings are quoted inside containers,
// errors use their toString, and nesting stops at depth 2.
func displayValue(realm *vm.Realm, v vm.Value, depth int) (string, error) {
	switch {
	case v.IsString():
		if depth > 0 {
			return fmt.Sprintf("'%s'", v.AsString()), nil
		}
		return v.AsString(), nil
	case !v.IsObject():
		return v.String(), nil
	}

	obj := v.AsObject()
	switch obj.Kind() {
	case vm.KindFunction:
		name, _ := realm.GetV(v, "name")
		if name.IsString() && name.AsString() != "" {
			return "[Function: " + name.AsString() + "]", nil
		}
		return "[Function (anonymous)]", nil
	case vm.KindError:
		fn, err := realm.GetV(v, "toString")
		if err != nil {
			return "", err
		}
		s, err := realm.Call(fn, v, nil)
		if err != nil {
			return "", err
		}
		return realm.ToString(s)
	case vm.KindBoolean, vm.KindNumber, vm.KindString, vm.KindBigInt, vm.KindSymbol, vm.KindDate, vm.KindRegExp:
		s, err := realm.ToString(v)
		if err == nil {
			return s, nil
		}
	}

	if depth > 2 {
		if obj.Kind() == vm.KindArray {
			return "[Array]", nil
		}
		return "[Object]", nil
	}

	if obj.Kind() == vm.KindArray {
		n, err := lengthOf(realm, v)
		if err != nil {
			return "", err
		}
		items := make([]string, n)
		for i := range items {
			el, err := realm.Get(v, vm.IntKey(i))
			if err != nil {
				return "", err
			}
			if items[i], err = displayValue(realm, el, depth+1); err != nil {
				return "", err
			}
		}
		if n == 0 {
			return "[]", nil
		}
		return "[ " + strings.Join(items, ", ") + " ]", nil
	}

	_, keys, err := enumerableOwn(realm, v)
	if err != nil {
		return "", err
	}
	if len(keys) == 0 {
		return "{}", nil
	}
	members := make([]string, len(keys))
	for i, key := range keys {
		el, err := realm.Get(v, key)
		if err != nil {
			return "", err
		}
		s, err := displayValue(realm, el, depth+1)
		if err != nil {
			return "", err
		}
		members[i] = key.String() + ": " + s
	}
	return "{ " + strings.Join(members, ", ") + " }", nil
}
