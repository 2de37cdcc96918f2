package builtins

import (
	"fmt"

	"jscore/pkg/vm"
)

type FunctionInitializer struct{}

func (f *FunctionInitializer) Name() string {
	return "Function"
}

func (f *FunctionInitializer) Priority() int {
	return PriorityFunction
}

func (f *FunctionInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().Function

	// Function.prototype is itself callable and returns undefined
	std.Prototype.SetData(vm.NewFunctionData(func(vm.Value, []vm.Value, *vm.Realm) (vm.Value, error) {
		return vm.Undefined, nil
	}, vm.FlagCallable))

	ctor := NewConstructorBuilderWithStandardObject(realm, functionConstructor, std).
		Name("Function").
		Length(1).
		Property(vm.StringKey("length"), vm.IntegerValue(0), metadataAttribute|vm.Configurable).
		Property(vm.StringKey("name"), vm.StringValue(""), metadataAttribute|vm.Configurable).
		Method(functionCall, "call", 1).
		Method(functionApply, "apply", 2).
		Method(functionBind, "bind", 1).
		Method(functionToString, "toString", 0).
		Build()
	return "Function", vm.ObjectValue(ctor), vm.DefaultAttribute
}

func functionConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.Undefined, realm.ThrowSyntaxError("Function constructor requires a source compiler, which this engine does not have")
}

func functionCall(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var rest []vm.Value
	if len(args) > 1 {
		rest = args[1:]
	}
	return realm.Call(this, vm.Arg(args, 0), rest)
}

func functionApply(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !this.IsCallable() {
		return vm.Undefined, realm.ThrowTypeError("Function.prototype.apply was called on a non-function")
	}
	list, err := listFromArrayLike(realm, vm.Arg(args, 1))
	if err != nil {
		return vm.Undefined, err
	}
	return realm.Call(this, vm.Arg(args, 0), list)
}

// boundSlot keys the hidden property that holds a bound function's target,
// receiver and arguments.
var boundSlot = vm.NewSymbol("BoundFunction")

// functionBind returns a callable that prepends the bound receiver and
// arguments.
func functionBind(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !this.IsCallable() {
		return vm.Undefined, realm.ThrowTypeError("Bind must be called on a function")
	}
	target := this
	boundThis := vm.Arg(args, 0)
	var boundArgs []vm.Value
	if len(args) > 1 {
		boundArgs = append(boundArgs, args[1:]...)
	}

	name, _ := realm.GetV(target, "name")
	length, _ := realm.GetV(target, "length")
	remaining := 0
	if length.IsNumber() {
		remaining = max(int(length.AsFloat())-len(boundArgs), 0)
	}
	label := ""
	if name.IsString() {
		label = name.AsString()
	}

	bound := NewBuiltinFunction(realm, func(_ vm.Value, callArgs []vm.Value, realm *vm.Realm) (vm.Value, error) {
		all := append(append([]vm.Value(nil), boundArgs...), callArgs...)
		return realm.Call(target, boundThis, all)
	}, "bound "+label, remaining)

	// the closure is invisible to the collector; keep what it captured
	// reachable from the function itself
	captured := append([]vm.Value{target, boundThis}, boundArgs...)
	bound.InsertValue(vm.SymbolKey(boundSlot), vm.ObjectValue(createArrayFromList(realm, captured)), vm.ReadOnly|vm.NonEnumerable|vm.Permanent)
	return vm.ObjectValue(bound), nil
}

func functionToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !this.IsCallable() {
		return vm.Undefined, realm.ThrowTypeError("Function.prototype.toString requires that 'this' be a Function")
	}
	name, err := realm.GetV(this, "name")
	if err != nil {
		return vm.Undefined, err
	}
	label := ""
	if name.IsString() {
		label = name.AsString()
	}
	return vm.StringValue(fmt.Sprintf("function %s() { [native code] }", label)), nil
}

// listFromArrayLike reads length and the indexed elements of an
// array-like. Null and undefined produce an empty list.
func listFromArrayLike(realm *vm.Realm, v vm.Value) ([]vm.Value, error) {
	if v.IsNullish() {
		return nil, nil
	}
	if !v.IsObject() {
		return nil, realm.ThrowTypeError("CreateListFromArrayLike called on non-object")
	}
	n, err := lengthOf(realm, v)
	if err != nil {
		return nil, err
	}
	list := make([]vm.Value, 0, n)
	for i := 0; i < n; i++ {
		el, err := realm.Get(v, vm.IntKey(i))
		if err != nil {
			return nil, err
		}
		list = append(list, el)
	}
	return list, nil
}
