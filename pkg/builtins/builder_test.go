package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

func returnThis(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return this, nil
}

func TestConstructorBuilderLinksPair(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := NewConstructorBuilder(realm, returnThis).
		Name("Widget").
		Length(2).
		Method(returnThis, "spin", 1).
		StaticMethod(returnThis, "make", 0).
		Build()

	proto, ok := ctor.GetOwn(vm.StringKey("prototype"))
	require.True(t, ok)
	assert.False(t, proto.Writable())
	assert.False(t, proto.Enumerable())
	assert.False(t, proto.Configurable())

	back, ok := proto.Value().AsObject().GetOwn(vm.StringKey("constructor"))
	require.True(t, ok)
	assert.Same(t, ctor, back.Value().AsObject())
	assert.Equal(t, vm.DefaultAttribute, back.Attribute())

	assert.Same(t, realm.StandardObjects().Function.Prototype, ctor.Prototype().AsObject())
	assert.Same(t, realm.StandardObjects().Object.Prototype, proto.Value().AsObject().Prototype().AsObject())

	assert.True(t, proto.Value().AsObject().HasOwn(vm.StringKey("spin")))
	assert.False(t, ctor.HasOwn(vm.StringKey("spin")))
	assert.True(t, ctor.HasOwn(vm.StringKey("make")))
	assert.True(t, ctor.IsCallable())
	assert.True(t, ctor.IsConstructable())
}

func TestBuiltinMethodMetadataIsPermanent(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := NewConstructorBuilder(realm, returnThis).
		Name("Widget").
		Method(returnThis, "spin", 3).
		Build()

	protoVal, err := realm.GetV(vm.ObjectValue(ctor), "prototype")
	require.NoError(t, err)
	spin, err := realm.GetV(protoVal, "spin")
	require.NoError(t, err)
	fn := spin.AsObject()

	length, ok := fn.GetOwn(vm.StringKey("length"))
	require.True(t, ok)
	assert.Equal(t, 3.0, length.Value().AsFloat())
	name, ok := fn.GetOwn(vm.StringKey("name"))
	require.True(t, ok)
	assert.Equal(t, "spin", name.Value().AsString())

	for _, key := range []string{"length", "name"} {
		before := fn.PropertyCount()
		err := realm.DeleteProperty(fn, vm.StringKey(key))
		require.Error(t, err)
		_, isException := vm.AsException(err)
		assert.True(t, isException)
		assert.Equal(t, before, fn.PropertyCount())
		assert.True(t, fn.HasOwn(vm.StringKey(key)))
	}

	ok, err = realm.Set(spin, vm.StringKey("name"), str("other"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestConstructorBuilderDefaults(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := NewConstructorBuilder(realm, returnThis).Build()

	name, _ := ctor.GetOwn(vm.StringKey("name"))
	assert.Equal(t, "[object]", name.Value().AsString())
	length, _ := ctor.GetOwn(vm.StringKey("length"))
	assert.Equal(t, 0.0, length.Value().AsFloat())
}

func TestConstructorBuilderFlags(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := NewConstructorBuilder(realm, returnThis).Constructable(false).Build()
	assert.True(t, ctor.IsCallable())
	assert.False(t, ctor.IsConstructable())

	_, err := realm.Construct(vm.ObjectValue(ctor), nil)
	thrown(t, realm, err, "TypeError")
}

func TestConstructorBuilderInherit(t *testing.T) {
	realm, _ := newRealm(t)
	base := realm.StandardObjects().Error.Prototype
	ctor := NewConstructorBuilder(realm, returnThis).Inherit(vm.ObjectValue(base)).Build()
	proto, _ := ctor.GetOwn(vm.StringKey("prototype"))
	assert.Same(t, base, proto.Value().AsObject().Prototype().AsObject())

	root := NewConstructorBuilder(realm, returnThis).Inherit(vm.Null).Build()
	proto, _ = root.GetOwn(vm.StringKey("prototype"))
	assert.True(t, proto.Value().AsObject().Prototype().IsNull())
}

func TestConstructorBuilderInheritRejectsPrimitives(t *testing.T) {
	realm, _ := newRealm(t)
	b := NewConstructorBuilder(realm, returnThis)
	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(*errors.ContractError)
		assert.True(t, ok)
	}()
	b.Inherit(num(1))
}

func TestConstructorBuilderSingleUse(t *testing.T) {
	realm, _ := newRealm(t)
	b := NewConstructorBuilder(realm, returnThis)
	b.Build()
	assert.Panics(t, func() { b.Method(returnThis, "late", 0) })
	assert.Panics(t, func() { b.Build() })
}

func TestObjectBuilder(t *testing.T) {
	realm, _ := newRealm(t)
	b := NewObjectBuilder(realm).
		Function(returnThis, "self", 0).
		Property(vm.StringKey("answer"), num(42), vm.ReadOnly|vm.Enumerable|vm.Permanent).
		Accessor(vm.StringKey("now"), func(vm.Value, []vm.Value, *vm.Realm) (vm.Value, error) {
			return str("later"), nil
		}, nil, vm.Configurable)
	obj := b.Build()

	assert.Same(t, realm.StandardObjects().Object.Prototype, obj.Prototype().AsObject())
	self := invoke(t, realm, vm.ObjectValue(obj), "self")
	assert.Same(t, obj, self.AsObject())

	answer, _ := obj.GetOwn(vm.StringKey("answer"))
	assert.True(t, answer.Enumerable())
	assert.False(t, answer.Writable())

	now, err := realm.GetV(vm.ObjectValue(obj), "now")
	require.NoError(t, err)
	assert.Equal(t, "later", now.AsString())

	getter, _ := obj.GetOwn(vm.StringKey("now"))
	getterName, err := realm.GetV(getter.Getter(), "name")
	require.NoError(t, err)
	assert.Equal(t, "get now", getterName.AsString())

	assert.Panics(t, func() { b.Property(vm.StringKey("late"), vm.Undefined, vm.AllAttributes) })
}

func TestSymbolMethodName(t *testing.T) {
	realm, _ := newRealm(t)
	iter := realm.WellKnownSymbols().Iterator
	ctor := NewConstructorBuilder(realm, returnThis).SymbolMethod(returnThis, iter, 0).Build()
	proto, _ := ctor.GetOwn(vm.StringKey("prototype"))
	m, ok := proto.Value().AsObject().GetOwn(vm.SymbolKey(iter))
	require.True(t, ok)
	name, _ := m.Value().AsObject().GetOwn(vm.StringKey("name"))
	assert.Equal(t, "[Symbol.iterator]", name.Value().AsString())
}
