package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func TestArrayConstructor(t *testing.T) {
	realm, _ := newRealm(t)

	sized := construct(t, realm, "Array", num(3))
	assert.Equal(t, vm.KindArray, sized.AsObject().Kind())
	length, _ := realm.GetV(sized, "length")
	assert.Equal(t, 3.0, length.AsFloat())
	assert.False(t, sized.AsObject().HasOwn(vm.IntKey(0)))

	listed := construct(t, realm, "Array", str("a"), str("b"))
	assert.Equal(t, []string{"a", "b"}, stringsOf(t, realm, listed))

	called, err := realm.Call(global(t, realm, "Array"), vm.Undefined, []vm.Value{num(1), num(2)})
	require.NoError(t, err)
	assert.Same(t, realm.StandardObjects().Array.Prototype, called.AsObject().Prototype().AsObject())
	assert.Equal(t, []string{"1", "2"}, stringsOf(t, realm, called))

	for _, bad := range []float64{-1, 1.5, math.Pow(2, 32), math.NaN()} {
		_, err := realm.Construct(global(t, realm, "Array"), []vm.Value{num(bad)})
		thrown(t, realm, err, "RangeError")
	}
}

func TestArrayPrototypeIsArray(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := global(t, realm, "Array")
	proto := vm.ObjectValue(realm.StandardObjects().Array.Prototype)

	assert.True(t, invoke(t, realm, ctor, "isArray", proto).AsBoolean())
	assert.False(t, invoke(t, realm, ctor, "isArray", vm.ObjectValue(realm.ConstructObject())).AsBoolean())
	length, _ := realm.GetV(proto, "length")
	assert.Equal(t, 0.0, length.AsFloat())
}

func TestArrayPushPop(t *testing.T) {
	realm, _ := newRealm(t)
	arr := construct(t, realm, "Array")

	assert.Equal(t, 2.0, invoke(t, realm, arr, "push", num(1), num(2)).AsFloat())
	assert.Equal(t, 3.0, invoke(t, realm, arr, "push", num(3)).AsFloat())
	assert.Equal(t, 3.0, invoke(t, realm, arr, "pop").AsFloat())
	assert.Equal(t, []string{"1", "2"}, stringsOf(t, realm, arr))
	assert.False(t, arr.AsObject().HasOwn(vm.IntKey(2)))

	empty := construct(t, realm, "Array")
	assert.True(t, invoke(t, realm, empty, "pop").IsUndefined())

	// push is generic over array-likes
	like := realm.ConstructObject()
	push, _ := realm.GetV(arr, "push")
	n, err := realm.Call(push, vm.ObjectValue(like), []vm.Value{str("x")})
	require.NoError(t, err)
	assert.Equal(t, 1.0, n.AsFloat())
	v, _ := realm.GetV(vm.ObjectValue(like), "0")
	assert.Equal(t, "x", v.AsString())
}

func TestArrayLengthTracksIndexWrites(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, nil))
	length := func() float64 {
		v, err := realm.GetV(arr, "length")
		require.NoError(t, err)
		return v.AsFloat()
	}

	ok, err := realm.Set(arr, vm.StringKey("4"), str("x"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, length())

	ok, err = realm.Set(arr, vm.IndexKey(1), str("y"))
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 5.0, length())

	p, found := arr.AsObject().GetOwn(vm.StringKey("length"))
	require.True(t, found)
	assert.True(t, p.Writable())
	assert.False(t, p.Enumerable())
	assert.False(t, p.Configurable())

	assert.Equal(t, 6.0, invoke(t, realm, arr, "push", str("z")).AsFloat())
	assert.Equal(t, 6.0, length())
}

func TestArrayLengthWriteTruncates(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, []vm.Value{str("a"), str("b"), str("c")}))
	ok, err := realm.Set(arr, vm.StringKey("4"), str("e"))
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = realm.Set(arr, vm.StringKey("length"), num(1))
	require.NoError(t, err)
	require.True(t, ok)
	assert.False(t, arr.AsObject().HasOwn(vm.IndexKey(4)))
	assert.False(t, arr.AsObject().HasOwn(vm.IndexKey(1)))
	assert.True(t, arr.AsObject().HasOwn(vm.IndexKey(0)))
	assert.Equal(t, "a", invoke(t, realm, arr, "join").AsString())

	// growing only moves length
	_, err = realm.Set(arr, vm.StringKey("length"), num(3))
	require.NoError(t, err)
	assert.Equal(t, "a,,", invoke(t, realm, arr, "join").AsString())

	_, err = realm.Set(arr, vm.StringKey("length"), num(-1))
	thrown(t, realm, err, "RangeError")
	_, err = realm.Set(arr, vm.StringKey("length"), num(1.5))
	thrown(t, realm, err, "RangeError")

	// a permanent element stops the truncation
	arr.AsObject().InsertValue(vm.IndexKey(1), str("keep"), vm.Writable|vm.Enumerable)
	ok, err = realm.Set(arr, vm.StringKey("length"), num(0))
	require.NoError(t, err)
	assert.False(t, ok)
	n, _ := realm.GetV(arr, "length")
	assert.Equal(t, 2.0, n.AsFloat())
	assert.True(t, arr.AsObject().HasOwn(vm.IndexKey(0)))
}

func TestArrayJoinAndToString(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, []vm.Value{num(1), vm.Null, str("a"), vm.Undefined}))

	assert.Equal(t, "1,,a,", invoke(t, realm, arr, "join").AsString())
	assert.Equal(t, "1 -  - a - ", invoke(t, realm, arr, "join", str(" - ")).AsString())
	assert.Equal(t, "1,,a,", invoke(t, realm, arr, "toString").AsString())
}

func TestArraySearch(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, []vm.Value{num(1), vm.NaN, str("1"), num(1)}))

	assert.Equal(t, 0.0, invoke(t, realm, arr, "indexOf", num(1)).AsFloat())
	assert.Equal(t, 3.0, invoke(t, realm, arr, "indexOf", num(1), num(1)).AsFloat())
	assert.Equal(t, 3.0, invoke(t, realm, arr, "indexOf", num(1), num(-1)).AsFloat())
	assert.Equal(t, -1.0, invoke(t, realm, arr, "indexOf", vm.NaN).AsFloat())
	assert.True(t, invoke(t, realm, arr, "includes", vm.NaN).AsBoolean())
	assert.False(t, invoke(t, realm, arr, "includes", num(2)).AsBoolean())
}

func TestArraySlice(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, []vm.Value{str("a"), str("b"), str("c"), str("d")}))

	assert.Equal(t, []string{"b", "c"}, stringsOf(t, realm, invoke(t, realm, arr, "slice", num(1), num(3))))
	assert.Equal(t, []string{"c", "d"}, stringsOf(t, realm, invoke(t, realm, arr, "slice", num(-2))))
	assert.Empty(t, elements(t, realm, invoke(t, realm, arr, "slice", num(3), num(1))))
	assert.Len(t, elements(t, realm, invoke(t, realm, arr, "slice")), 4)
}

func TestArrayIteration(t *testing.T) {
	realm, _ := newRealm(t)
	arr := vm.ObjectValue(createArrayFromList(realm, []vm.Value{num(1), num(2), num(3)}))

	double := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		return vm.NumberValue(vm.Arg(args, 0).AsFloat() * 2), nil
	}, "double", 1)
	assert.Equal(t, []string{"2", "4", "6"}, stringsOf(t, realm, invoke(t, realm, arr, "map", vm.ObjectValue(double))))

	odd := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		return vm.BooleanValue(int(vm.Arg(args, 0).AsFloat())%2 == 1), nil
	}, "odd", 1)
	assert.Equal(t, []string{"1", "3"}, stringsOf(t, realm, invoke(t, realm, arr, "filter", vm.ObjectValue(odd))))

	var indices []float64
	visit := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		indices = append(indices, vm.Arg(args, 1).AsFloat())
		assert.Same(t, arr.AsObject(), vm.Arg(args, 2).AsObject())
		return vm.Undefined, nil
	}, "visit", 3)
	assert.True(t, invoke(t, realm, arr, "forEach", vm.ObjectValue(visit)).IsUndefined())
	assert.Equal(t, []float64{0, 1, 2}, indices)

	_, err := tryInvoke(realm, arr, "map", num(1))
	thrown(t, realm, err, "TypeError")
}

func TestArrayOf(t *testing.T) {
	realm, _ := newRealm(t)
	arr := invoke(t, realm, global(t, realm, "Array"), "of", num(7))
	assert.Equal(t, []string{"7"}, stringsOf(t, realm, arr))
}
