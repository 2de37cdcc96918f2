package builtins

import (
	"math"
	"strings"

	"fortio.org/safecast"

	"jscore/pkg/vm"
)

// maxArrayLength is the largest length an array can hold.
const maxArrayLength = math.MaxUint32

// lengthAttribute is how an array's length is stored: writable, hidden and
// permanent.
const lengthAttribute = vm.Writable | vm.NonEnumerable | vm.Permanent

type ArrayInitializer struct{}

func (a *ArrayInitializer) Name() string {
	return "Array"
}

func (a *ArrayInitializer) Priority() int {
	return PriorityArray
}

func (a *ArrayInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().Array
	std.Prototype.SetData(&vm.ArrayData{})
	std.Prototype.InsertValue(vm.StringKey("length"), vm.IntegerValue(0), lengthAttribute)

	ctor := NewConstructorBuilderWithStandardObject(realm, arrayConstructor, std).
		Name("Array").
		Length(1).
		Method(arrayPush, "push", 1).
		Method(arrayPop, "pop", 0).
		Method(arrayJoin, "join", 1).
		Method(arrayToString, "toString", 0).
		Method(arrayIndexOf, "indexOf", 1).
		Method(arrayIncludes, "includes", 1).
		Method(arraySlice, "slice", 2).
		Method(arrayForEach, "forEach", 1).
		Method(arrayMap, "map", 1).
		Method(arrayFilter, "filter", 1).
		StaticMethod(arrayIsArray, "isArray", 1).
		StaticMethod(arrayOf, "of", 0).
		Build()
	return "Array", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// createArrayFromList allocates an array holding values in order.
func createArrayFromList(realm *vm.Realm, values []vm.Value) *vm.GcObject {
	obj := vm.NewObjectWithPrototype(vm.ObjectValue(realm.StandardObjects().Array.Prototype), &vm.ArrayData{})
	for i, v := range values {
		obj.InsertValue(vm.IntKey(i), v, vm.AllAttributes)
	}
	obj.InsertValue(vm.StringKey("length"), vm.IntegerValue(len(values)), lengthAttribute)
	return realm.Alloc(obj)
}

// CreateArray builds an array of values for host code such as the driver's
// process object.
func CreateArray(realm *vm.Realm, values []vm.Value) *vm.GcObject {
	return createArrayFromList(realm, values)
}

// lengthOf reads the length property of an array-like, clamped to
// [0, 2^53-1].
func lengthOf(realm *vm.Realm, v vm.Value) (int, error) {
	raw, err := realm.GetV(v, "length")
	if err != nil {
		return 0, err
	}
	n, err := realm.ToIntegerOrInfinity(raw)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, nil
	}
	return int(min(n, 1<<53-1)), nil
}

func setLength(realm *vm.Realm, obj vm.Value, n int) error {
	ok, err := realm.Set(obj, vm.StringKey("length"), vm.IntegerValue(n))
	if err != nil {
		return err
	}
	if !ok {
		return realm.ThrowTypeError("Cannot assign to read only property 'length' of object")
	}
	return nil
}

func arrayConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !realm.IsConstructCall() {
		this = vm.ObjectValue(realm.Alloc(vm.NewObjectWithPrototype(vm.ObjectValue(realm.StandardObjects().Array.Prototype), &vm.OrdinaryData{})))
	}
	obj := this.AsObject()

	if len(args) == 1 && args[0].IsNumber() {
		n := args[0].AsFloat()
		length, err := safecast.Convert[uint32](n)
		if err != nil || float64(length) != n {
			return vm.Undefined, realm.ThrowRangeError("Invalid array length")
		}
		obj.BorrowMut(func(o *vm.Object) {
			o.SetData(&vm.ArrayData{})
			o.InsertValue(vm.StringKey("length"), vm.NumberValue(float64(length)), lengthAttribute)
		})
		return this, nil
	}

	obj.BorrowMut(func(o *vm.Object) {
		o.SetData(&vm.ArrayData{})
		for i, v := range args {
			o.InsertValue(vm.IntKey(i), v, vm.AllAttributes)
		}
		o.InsertValue(vm.StringKey("length"), vm.IntegerValue(len(args)), lengthAttribute)
	})
	return this, nil
}

func arrayIsArray(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(v.IsObject() && v.AsObject().Kind() == vm.KindArray), nil
}

func arrayOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.ObjectValue(createArrayFromList(realm, args)), nil
}

func arrayPush(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	if n+len(args) > maxArrayLength {
		return vm.Undefined, realm.ThrowTypeError("Pushing %d elements on an array-like of length %d is disallowed", len(args), n)
	}
	for _, v := range args {
		if _, err := realm.Set(this, vm.IntKey(n), v); err != nil {
			return vm.Undefined, err
		}
		n++
	}
	if err := setLength(realm, this, n); err != nil {
		return vm.Undefined, err
	}
	return vm.IntegerValue(n), nil
}

func arrayPop(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	if n == 0 {
		return vm.Undefined, setLength(realm, this, 0)
	}
	key := vm.IntKey(n - 1)
	last, err := realm.Get(this, key)
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := realm.ToObject(this)
	if err != nil {
		return vm.Undefined, err
	}
	if err := realm.DeleteProperty(obj, key); err != nil {
		return vm.Undefined, err
	}
	return last, setLength(realm, this, n-1)
}

func arrayJoin(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	sep := ","
	if s := vm.Arg(args, 0); !s.IsUndefined() {
		var err error
		if sep, err = realm.ToString(s); err != nil {
			return vm.Undefined, err
		}
	}
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	parts := make([]string, n)
	for i := range parts {
		el, err := realm.Get(this, vm.IntKey(i))
		if err != nil {
			return vm.Undefined, err
		}
		if el.IsNullish() {
			continue
		}
		if parts[i], err = realm.ToString(el); err != nil {
			return vm.Undefined, err
		}
	}
	return vm.StringValue(strings.Join(parts, sep)), nil
}

func arrayToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	join, err := realm.GetV(this, "join")
	if err != nil {
		return vm.Undefined, err
	}
	if !join.IsCallable() {
		return objectToString(this, nil, realm)
	}
	return realm.Call(join, this, nil)
}

// relativeIndex resolves a possibly negative index argument against n.
func relativeIndex(realm *vm.Realm, v vm.Value, n, fallback int) (int, error) {
	if v.IsUndefined() {
		return fallback, nil
	}
	rel, err := realm.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if rel < 0 {
		return int(max(float64(n)+rel, 0)), nil
	}
	return int(min(rel, float64(n))), nil
}

func arrayIndexOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	start, err := relativeIndex(realm, vm.Arg(args, 1), n, 0)
	if err != nil {
		return vm.Undefined, err
	}
	target := vm.Arg(args, 0)
	for i := start; i < n; i++ {
		el, err := realm.Get(this, vm.IntKey(i))
		if err != nil {
			return vm.Undefined, err
		}
		if el.StrictlyEquals(target) {
			return vm.IntegerValue(i), nil
		}
	}
	return vm.IntegerValue(-1), nil
}

func arrayIncludes(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	start, err := relativeIndex(realm, vm.Arg(args, 1), n, 0)
	if err != nil {
		return vm.Undefined, err
	}
	target := vm.Arg(args, 0)
	for i := start; i < n; i++ {
		el, err := realm.Get(this, vm.IntKey(i))
		if err != nil {
			return vm.Undefined, err
		}
		if vm.SameValueZero(el, target) {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

func arraySlice(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := lengthOf(realm, this)
	if err != nil {
		return vm.Undefined, err
	}
	start, err := relativeIndex(realm, vm.Arg(args, 0), n, 0)
	if err != nil {
		return vm.Undefined, err
	}
	end, err := relativeIndex(realm, vm.Arg(args, 1), n, n)
	if err != nil {
		return vm.Undefined, err
	}
	var out []vm.Value
	for i := start; i < end; i++ {
		el, err := realm.Get(this, vm.IntKey(i))
		if err != nil {
			return vm.Undefined, err
		}
		out = append(out, el)
	}
	return vm.ObjectValue(createArrayFromList(realm, out)), nil
}

// eachElement calls fn for every index below length with the element,
// its index, and the receiver.
func eachElement(realm *vm.Realm, this vm.Value, callback vm.Value, fn func(i int, el, result vm.Value) error) error {
	if !callback.IsCallable() {
		return realm.ThrowTypeError("%s is not a function", callback)
	}
	n, err := lengthOf(realm, this)
	if err != nil {
		return err
	}
	for i := 0; i < n; i++ {
		el, err := realm.Get(this, vm.IntKey(i))
		if err != nil {
			return err
		}
		result, err := realm.Call(callback, vm.Undefined, []vm.Value{el, vm.IntegerValue(i), this})
		if err != nil {
			return err
		}
		if err := fn(i, el, result); err != nil {
			return err
		}
	}
	return nil
}

func arrayForEach(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	err := eachElement(realm, this, vm.Arg(args, 0), func(int, vm.Value, vm.Value) error { return nil })
	return vm.Undefined, err
}

func arrayMap(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var out []vm.Value
	err := eachElement(realm, this, vm.Arg(args, 0), func(_ int, _ vm.Value, result vm.Value) error {
		out = append(out, result)
		return nil
	})
	if err != nil {
		return vm.Undefined, err
	}
	return vm.ObjectValue(createArrayFromList(realm, out)), nil
}

func arrayFilter(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var out []vm.Value
	err := eachElement(realm, this, vm.Arg(args, 0), func(_ int, el vm.Value, result vm.Value) error {
		if vm.ToBoolean(result) {
			out = append(out, el)
		}
		return nil
	})
	if err != nil {
		return vm.Undefined, err
	}
	return vm.ObjectValue(createArrayFromList(realm, out)), nil
}
