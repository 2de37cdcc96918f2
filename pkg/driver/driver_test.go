package driver

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func newEngine(t *testing.T, mutate ...func(*Config)) (*Engine, *bytes.Buffer) {
	t.Helper()
	cfg := DefaultConfig()
	cfg.Log.Level = "error"
	for _, m := range mutate {
		m(&cfg)
	}
	out := &bytes.Buffer{}
	e, err := New(cfg, out)
	require.NoError(t, err)
	return e, out
}

func findProperty(t *testing.T, props []PropertyReport, key string) PropertyReport {
	t.Helper()
	for _, p := range props {
		if p.Key == key {
			return p
		}
	}
	require.Failf(t, "property not found", "key %q", key)
	return PropertyReport{}
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inspect.Color = "sometimes"
	_, err := New(cfg, nil)
	require.Error(t, err)
}

func TestResolve(t *testing.T) {
	e, _ := newEngine(t)

	global, err := e.Resolve("")
	require.NoError(t, err)
	assert.Same(t, e.Realm().GlobalObject(), global.AsObject())

	proto, err := e.Resolve("RangeError.prototype")
	require.NoError(t, err)
	assert.Same(t, e.Realm().StandardObjects().RangeError.Prototype, proto.AsObject())

	iter, err := e.Resolve("Symbol.iterator")
	require.NoError(t, err)
	assert.True(t, iter.IsSymbol())

	missing, err := e.Resolve("Object.prototype.@@iterator")
	require.NoError(t, err)
	assert.True(t, missing.IsUndefined())

	_, err = e.Resolve("Object.@@nope")
	require.Error(t, err)
	_, err = e.Resolve("Object..keys")
	require.Error(t, err)

	_, err = e.Resolve("nothing.here")
	thrown, ok := vm.AsException(err)
	require.True(t, ok, "expected a thrown value, got %v", err)
	assert.Equal(t, "TypeError", thrownName(t, e, thrown))
}

func thrownName(t *testing.T, e *Engine, v vm.Value) string {
	t.Helper()
	name, err := e.Realm().GetV(v, "name")
	require.NoError(t, err)
	return name.AsString()
}

func TestCallUsesHolderAsReceiver(t *testing.T) {
	e, _ := newEngine(t)
	args, err := e.ParseArgs([]string{"1", "5", "3"})
	require.NoError(t, err)

	max, err := e.Call("Math.max", args)
	require.NoError(t, err)
	assert.Equal(t, 5.0, max.AsFloat())

	args, err = e.ParseArgs([]string{`{"b":1,"a":2}`})
	require.NoError(t, err)
	keys, err := e.Call("Object.keys", args)
	require.NoError(t, err)
	assert.Equal(t, "[ 'b', 'a' ]", e.Describe(keys))

	_, err = e.ParseArgs([]string{"{oops"})
	_, ok := vm.AsException(err)
	assert.True(t, ok)
}

func TestConstructAndDescribe(t *testing.T) {
	e, _ := newEngine(t)
	args, err := e.ParseArgs([]string{`"bad"`})
	require.NoError(t, err)

	// error constructors hand the new object back through the throw channel
	_, err = e.Construct("RangeError", args)
	thrown, ok := vm.AsException(err)
	require.True(t, ok)
	assert.Equal(t, "RangeError: bad", e.Describe(thrown))

	date, err := e.Construct("Date", []vm.Value{vm.NumberValue(0)})
	require.NoError(t, err)
	assert.Equal(t, vm.KindDate, date.AsObject().Kind())

	_, err = e.Call("BigInt", []vm.Value{vm.NumberValue(1.5)})
	thrown, ok = vm.AsException(err)
	require.True(t, ok)
	assert.Contains(t, e.Describe(thrown), "RangeError: ")

	_, err = e.Construct("Math.max", nil)
	_, ok = vm.AsException(err)
	assert.True(t, ok)
}

func TestCallingConstructorsLeavesGlobalAlone(t *testing.T) {
	e, _ := newEngine(t)
	global := e.Realm().GlobalObject()
	args, err := e.ParseArgs([]string{`"5"`})
	require.NoError(t, err)

	n, err := e.Call("Number", args)
	require.NoError(t, err)
	assert.True(t, n.IsNumber())
	assert.Equal(t, 5.0, n.AsFloat())

	b, err := e.Call("Boolean", args)
	require.NoError(t, err)
	assert.True(t, b.IsBoolean())

	s, err := e.Call("String", []vm.Value{vm.NumberValue(5)})
	require.NoError(t, err)
	assert.Equal(t, "5", s.AsString())

	arr, err := e.Call("Array", []vm.Value{vm.NumberValue(2)})
	require.NoError(t, err)
	assert.NotSame(t, global, arr.AsObject())
	assert.Equal(t, vm.KindArray, arr.AsObject().Kind())

	_, err = e.Call("RangeError", args)
	thrown, ok := vm.AsException(err)
	require.True(t, ok)
	assert.NotSame(t, global, thrown.AsObject())
	assert.Equal(t, "RangeError: 5", e.Describe(thrown))

	_, err = e.Call("Map", nil)
	_, ok = vm.AsException(err)
	assert.True(t, ok)

	assert.Equal(t, vm.KindGlobal, global.Kind())
	assert.False(t, global.HasOwn(vm.StringKey("message")))
	assert.False(t, global.HasOwn(vm.StringKey("length")))
}

func TestInspectErrorPrototype(t *testing.T) {
	e, _ := newEngine(t)

	report, err := e.Inspect("RangeError.prototype", InspectOptions{ShowHidden: true, MaxDepth: 5})
	require.NoError(t, err)
	assert.Equal(t, "object", report.Type)
	assert.Equal(t, "Ordinary", report.Kind)
	assert.False(t, report.Callable)
	assert.Equal(t, []string{"Error.prototype", "Object.prototype"}, report.Chain)

	name := findProperty(t, report.Properties, "name")
	assert.Equal(t, "'RangeError'", name.Value)
	assert.Equal(t, "w-c", name.Flags())
	ctor := findProperty(t, report.Properties, "constructor")
	assert.Equal(t, "RangeError", ctor.Value)

	report, err = e.Inspect("RangeError.prototype", InspectOptions{MaxDepth: 1})
	require.NoError(t, err)
	assert.Empty(t, report.Properties)
	assert.Equal(t, []string{"Error.prototype"}, report.Chain)
}

func TestInspectFunctionAndPrimitive(t *testing.T) {
	e, _ := newEngine(t)

	report, err := e.Inspect("Object.keys", e.InspectOptions())
	require.NoError(t, err)
	assert.Equal(t, "Function", report.Kind)
	assert.True(t, report.Callable)
	assert.False(t, report.Constructable)
	assert.Equal(t, []string{"Function.prototype", "Object.prototype"}, report.Chain)

	report, err = e.Inspect("Math.PI", e.InspectOptions())
	require.NoError(t, err)
	assert.Equal(t, "number", report.Type)
	assert.Equal(t, "3.141592653589793", report.Value)
	assert.Empty(t, report.Properties)
}

func TestGlobalsAreSorted(t *testing.T) {
	e, _ := newEngine(t)
	globals := e.Globals()
	require.NotEmpty(t, globals)
	for i := 1; i < len(globals); i++ {
		assert.Less(t, globals[i-1].Key, globals[i].Key)
	}
	nan := findProperty(t, globals, "NaN")
	assert.Equal(t, "---", nan.Flags())
	obj := findProperty(t, globals, "Object")
	assert.Equal(t, "w-c", obj.Flags())
}

func TestStats(t *testing.T) {
	e, _ := newEngine(t)
	stats := e.Stats()
	assert.GreaterOrEqual(t, stats.Live, stats.Reachable)
	assert.Positive(t, stats.ByKind["Function"])
	assert.Equal(t, 1, stats.ByKind["Global"])
	assert.Contains(t, stats.Kinds(), "Array")

	sum := 0
	for _, n := range stats.ByKind {
		sum += n
	}
	assert.Equal(t, stats.Reachable, sum)

	// a map stored on the global keeps its entries reachable
	m, err := e.Construct("Map", nil)
	require.NoError(t, err)
	entry := e.Realm().ConstructObject()
	m.AsObject().Borrow(func(o *vm.Object) {
		o.Data().(*vm.MapData).Set(vm.StringValue("k"), vm.ObjectValue(entry))
	})
	e.Realm().GlobalObject().InsertValue(vm.StringKey("cache"), m, vm.AllAttributes)
	after := e.Stats()
	assert.Equal(t, stats.Reachable+2, after.Reachable)
	assert.Equal(t, stats.ByKind["Map"]+1, after.ByKind["Map"])
}

func TestCollectKeepsReturnedValues(t *testing.T) {
	e, _ := newEngine(t)
	m, err := e.Construct("Map", nil)
	require.NoError(t, err)
	entry := e.Realm().ConstructObject()
	m.AsObject().Borrow(func(o *vm.Object) {
		o.Data().(*vm.MapData).Set(vm.StringValue("k"), vm.ObjectValue(entry))
	})
	args, err := e.ParseArgs([]string{`{"a":[1]}`})
	require.NoError(t, err)
	_, err = e.Call("RangeError", nil)
	thrown, ok := vm.AsException(err)
	require.True(t, ok)

	stray := e.Realm().ConstructObject()
	assert.Positive(t, e.Collect())
	assert.False(t, stray.Alive())
	assert.True(t, m.AsObject().Alive())
	assert.True(t, entry.Alive())
	assert.True(t, thrown.AsObject().Alive())
	assert.Equal(t, "{ a: [ 1 ] }", e.Describe(args[0]))

	e.Release()
	assert.Positive(t, e.Collect())
	assert.False(t, m.AsObject().Alive())
	assert.False(t, args[0].AsObject().Alive())
}

func TestProcessGlobal(t *testing.T) {
	e, out := newEngine(t, func(c *Config) {
		c.Host.Process = true
		c.Host.Argv = []string{"jscore", "script.js"}
	})

	argv, err := e.Resolve("process.argv")
	require.NoError(t, err)
	assert.Equal(t, "[ 'jscore', 'script.js' ]", e.Describe(argv))

	platform, err := e.Resolve("process.platform")
	require.NoError(t, err)
	assert.NotEmpty(t, platform.AsString())

	ok, err := e.Call("process.stdout.write", []vm.Value{vm.StringValue("hi\n")})
	require.NoError(t, err)
	assert.True(t, ok.AsBoolean())
	assert.Equal(t, "hi\n", out.String())

	usage, err := e.Call("process.memoryUsage", nil)
	require.NoError(t, err)
	objects, _ := e.Realm().GetV(usage, "objects")
	assert.Positive(t, objects.AsFloat())

	_, err = e.Call("process.exit", []vm.Value{vm.NumberValue(3)})
	var exit *ExitError
	require.True(t, errors.As(err, &exit))
	assert.Equal(t, 3, exit.Code)
}

func TestProcessGlobalIsOptIn(t *testing.T) {
	e, _ := newEngine(t)
	v, err := e.Resolve("process")
	require.NoError(t, err)
	assert.True(t, v.IsUndefined())
}

func TestProcessEnv(t *testing.T) {
	e, _ := newEngine(t)
	p := NewProcessInitializer(nil, &bytes.Buffer{})
	p.environ = func() []string { return []string{"HOME=/root", "EMPTY=", "=C:=C:\\"} }

	name, v, _ := p.Init(e.Realm())
	assert.Equal(t, "process", name)
	env, err := e.Realm().GetV(v, "env")
	require.NoError(t, err)
	home, _ := e.Realm().GetV(env, "HOME")
	assert.Equal(t, "/root", home.AsString())
	empty, _ := e.Realm().GetV(env, "EMPTY")
	assert.Equal(t, "", empty.AsString())
	assert.Equal(t, 2, env.AsObject().PropertyCount())
}
