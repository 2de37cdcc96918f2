package builtins

import (
	"strconv"

	"jscore/pkg/vm"
)

type BooleanInitializer struct{}

func (b *BooleanInitializer) Name() string {
	return "Boolean"
}

func (b *BooleanInitializer) Priority() int {
	return PriorityBoolean
}

func (b *BooleanInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().Boolean
	std.Prototype.SetData(&vm.BooleanData{Value: false})

	ctor := NewConstructorBuilderWithStandardObject(realm, booleanConstructor, std).
		Name("Boolean").
		Length(1).
		Method(booleanToString, "toString", 0).
		Method(booleanValueOf, "valueOf", 0).
		Build()
	return "Boolean", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// booleanConstructor converts when called and wraps when constructed.
func booleanConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	b := vm.ToBoolean(vm.Arg(args, 0))
	if !realm.IsConstructCall() {
		return vm.BooleanValue(b), nil
	}
	this.AsObject().SetData(&vm.BooleanData{Value: b})
	return this, nil
}

func thisBooleanValue(realm *vm.Realm, this vm.Value, method string) (bool, error) {
	if this.IsBoolean() {
		return this.AsBoolean(), nil
	}
	if this.IsObject() {
		var b, ok bool
		this.AsObject().Borrow(func(o *vm.Object) { b, ok = o.AsBoolean() })
		if ok {
			return b, nil
		}
	}
	return false, realm.ThrowTypeError("Boolean.prototype.%s requires that 'this' be a Boolean", method)
}

func booleanToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	b, err := thisBooleanValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(strconv.FormatBool(b)), nil
}

func booleanValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	b, err := thisBooleanValue(realm, this, "valueOf")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(b), nil
}
