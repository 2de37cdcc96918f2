package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func TestStandardInitializersOrder(t *testing.T) {
	inits := GetStandardInitializers()
	require.NotEmpty(t, inits)

	index := make(map[string]int)
	for i, bi := range inits {
		if i > 0 {
			assert.LessOrEqual(t, inits[i-1].Priority(), bi.Priority(), "%s after %s", bi.Name(), inits[i-1].Name())
		}
		_, dup := index[bi.Name()]
		assert.False(t, dup, bi.Name())
		index[bi.Name()] = i
	}

	assert.Less(t, index["Function"], index["Object"])
	assert.Less(t, index["Object"], index["Array"])
	for _, sub := range []string{"EvalError", "RangeError", "ReferenceError", "SyntaxError", "TypeError", "URIError"} {
		assert.Less(t, index["Error"], index[sub], sub)
	}
	assert.Equal(t, "Error", inits[len(inits)-7].Name())
}

func TestInitializeBindsGlobals(t *testing.T) {
	realm, _ := newRealm(t)
	g := realm.GlobalObject()

	for _, bi := range GetStandardInitializers() {
		p, ok := g.GetOwn(vm.StringKey(bi.Name()))
		require.True(t, ok, bi.Name())
		assert.False(t, p.IsAccessor(), bi.Name())
	}

	for _, name := range []string{"undefined", "NaN", "Infinity"} {
		p, _ := g.GetOwn(vm.StringKey(name))
		assert.Equal(t, vm.ReadOnly|vm.NonEnumerable|vm.Permanent, p.Attribute(), name)
	}
	for _, name := range []string{"Object", "RangeError", "Math", "JSON", "console", "parseInt"} {
		p, _ := g.GetOwn(vm.StringKey(name))
		assert.Equal(t, vm.DefaultAttribute, p.Attribute(), name)
	}

	this := global(t, realm, "globalThis")
	assert.Same(t, g, this.AsObject())
}

func TestStandardPairsKeepIdentity(t *testing.T) {
	realm, _ := newRealm(t)
	realm.StandardObjects().Each(func(name string, sc *vm.StandardConstructor) {
		v := global(t, realm, name)
		require.True(t, v.IsObject(), name)
		assert.Same(t, sc.Constructor, v.AsObject(), name)
		proto, err := realm.GetV(v, "prototype")
		require.NoError(t, err)
		assert.Same(t, sc.Prototype, proto.AsObject(), name)
		assert.True(t, sc.Constructor.IsCallable(), name)
	})
}

type fixedInitializer struct {
	name     string
	priority int
	value    vm.Value
}

func (f *fixedInitializer) Name() string  { return f.name }
func (f *fixedInitializer) Priority() int { return f.priority }
func (f *fixedInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return f.name, f.value, vm.AllAttributes
}

func TestInitializeWithCustomList(t *testing.T) {
	realm := vm.NewRealm()
	InitializeWith(realm, []BuiltinInitializer{
		&fixedInitializer{name: "answer", value: num(42)},
		&fixedInitializer{name: "answer", value: num(43)},
	})
	p, ok := realm.GlobalObject().GetOwn(vm.StringKey("answer"))
	require.True(t, ok)
	assert.Equal(t, 43.0, p.Value().AsFloat())
	assert.Equal(t, vm.AllAttributes, p.Attribute())
}

func TestGlobalsSurviveCollection(t *testing.T) {
	realm, _ := newRealm(t)
	before := realm.Heap().Len()
	realm.Collect()
	after := realm.Heap().Len()
	assert.LessOrEqual(t, after, before)

	// every builtin is still reachable and usable
	assert.Equal(t, "RangeError: x", invoke(t, realm, construct(t, realm, "RangeError", str("x")), "toString").AsString())
	assert.Equal(t, 3.0, invoke(t, realm, global(t, realm, "Math"), "max", num(1), num(3)).AsFloat())
}
