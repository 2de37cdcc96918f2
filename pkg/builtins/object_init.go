package builtins

import (
	"jscore/pkg/vm"
)

type ObjectInitializer struct{}

func (o *ObjectInitializer) Name() string {
	return "Object"
}

func (o *ObjectInitializer) Priority() int {
	return PriorityObject
}

func (o *ObjectInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	ctor := NewConstructorBuilderWithStandardObject(realm, objectConstructor, realm.StandardObjects().Object).
		Name("Object").
		Length(1).
		Inherit(vm.Null).
		// Prototype methods
		Method(objectHasOwnProperty, "hasOwnProperty", 1).
		Method(objectIsPrototypeOf, "isPrototypeOf", 1).
		Method(objectPropertyIsEnumerable, "propertyIsEnumerable", 1).
		Method(objectToString, "toString", 0).
		Method(objectToLocaleString, "toLocaleString", 0).
		Method(objectValueOf, "valueOf", 0).
		// Static methods
		StaticMethod(objectGetPrototypeOf, "getPrototypeOf", 1).
		StaticMethod(objectSetPrototypeOf, "setPrototypeOf", 2).
		StaticMethod(objectCreate, "create", 2).
		StaticMethod(objectKeys, "keys", 1).
		StaticMethod(objectValues, "values", 1).
		StaticMethod(objectEntries, "entries", 1).
		StaticMethod(objectAssign, "assign", 2).
		StaticMethod(objectIs, "is", 2).
		StaticMethod(objectGetOwnPropertyNames, "getOwnPropertyNames", 1).
		StaticMethod(objectGetOwnPropertySymbols, "getOwnPropertySymbols", 1).
		StaticMethod(objectDefineProperty, "defineProperty", 3).
		StaticMethod(objectGetOwnPropertyDescriptor, "getOwnPropertyDescriptor", 2).
		StaticMethod(objectIsExtensible, "isExtensible", 1).
		StaticMethod(objectPreventExtensions, "preventExtensions", 1).
		StaticMethod(objectFreeze, "freeze", 1).
		StaticMethod(objectIsFrozen, "isFrozen", 1).
		Build()
	return "Object", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// objectConstructor returns a fresh object for nullish arguments and wraps
// everything else.
func objectConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	arg := vm.Arg(args, 0)
	if arg.IsNullish() {
		return vm.ObjectValue(realm.ConstructObject()), nil
	}
	obj, err := realm.ToObject(arg)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.ObjectValue(obj), nil
}

func objectHasOwnProperty(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	key, err := vm.ToPropertyKey(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := realm.ToObject(this)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(obj.HasOwn(key)), nil
}

func objectIsPrototypeOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	if !v.IsObject() || !this.IsObject() {
		return vm.False, nil
	}
	for proto := v.AsObject().Prototype(); proto.IsObject(); proto = proto.AsObject().Prototype() {
		if proto.AsObject() == this.AsObject() {
			return vm.True, nil
		}
	}
	return vm.False, nil
}

func objectPropertyIsEnumerable(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	key, err := vm.ToPropertyKey(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	obj, err := realm.ToObject(this)
	if err != nil {
		return vm.Undefined, err
	}
	p, ok := obj.GetOwn(key)
	return vm.BooleanValue(ok && p.Enumerable()), nil
}

// objectToString renders "[object Tag]". Symbol.toStringTag wins over the
// builtin tag derived from the object's data.
func objectToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	switch {
	case this.IsUndefined():
		return vm.StringValue("[object Undefined]"), nil
	case this.IsNull():
		return vm.StringValue("[object Null]"), nil
	}
	obj, err := realm.ToObject(this)
	if err != nil {
		return vm.Undefined, err
	}
	tag, err := realm.Get(vm.ObjectValue(obj), vm.SymbolKey(realm.WellKnownSymbols().ToStringTag))
	if err != nil {
		return vm.Undefined, err
	}
	if tag.IsString() {
		return vm.StringValue("[object " + tag.AsString() + "]"), nil
	}
	return vm.StringValue("[object " + builtinTag(obj) + "]"), nil
}

func builtinTag(obj *vm.GcObject) string {
	switch obj.Kind() {
	case vm.KindArray:
		return "Array"
	case vm.KindFunction:
		return "Function"
	case vm.KindError:
		return "Error"
	case vm.KindBoolean:
		return "Boolean"
	case vm.KindNumber:
		return "Number"
	case vm.KindString:
		return "String"
	case vm.KindDate:
		return "Date"
	case vm.KindRegExp:
		return "RegExp"
	default:
		return "Object"
	}
}

func objectToLocaleString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	fn, err := realm.GetV(this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	return realm.Call(fn, this, nil)
}

func objectValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, err := realm.ToObject(this)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.ObjectValue(obj), nil
}

func objectGetPrototypeOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, err := realm.ToObject(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return obj.Prototype(), nil
}

func objectSetPrototypeOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	target, proto := vm.Arg(args, 0), vm.Arg(args, 1)
	if target.IsNullish() {
		return vm.Undefined, realm.ThrowTypeError("Object.setPrototypeOf called on null or undefined")
	}
	if !proto.IsObject() && !proto.IsNull() {
		return vm.Undefined, realm.ThrowTypeError("Object prototype may only be an Object or null: %s", proto)
	}
	if !target.IsObject() {
		return target, nil
	}
	obj := target.AsObject()
	if vm.SameValue(obj.Prototype(), proto) {
		return target, nil
	}
	if !obj.IsExtensible() {
		return vm.Undefined, realm.ThrowTypeError("#<Object> is not extensible")
	}
	for p := proto; p.IsObject(); p = p.AsObject().Prototype() {
		if p.AsObject() == obj {
			return vm.Undefined, realm.ThrowTypeError("Cyclic __proto__ value")
		}
	}
	obj.SetPrototype(proto)
	return target, nil
}

func objectCreate(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	proto := vm.Arg(args, 0)
	if !proto.IsObject() && !proto.IsNull() {
		return vm.Undefined, realm.ThrowTypeError("Object prototype may only be an Object or null: %s", proto)
	}
	obj := realm.Alloc(vm.NewObjectWithPrototype(proto, &vm.OrdinaryData{}))
	if props := vm.Arg(args, 1); !props.IsUndefined() {
		if err := defineProperties(realm, obj, props); err != nil {
			return vm.Undefined, err
		}
	}
	return vm.ObjectValue(obj), nil
}

func defineProperties(realm *vm.Realm, obj *vm.GcObject, props vm.Value) error {
	src, err := realm.ToObject(props)
	if err != nil {
		return err
	}
	for _, key := range src.OwnKeys() {
		p, ok := src.GetOwn(key)
		if !ok || !p.Enumerable() {
			continue
		}
		descObj, err := realm.Get(vm.ObjectValue(src), key)
		if err != nil {
			return err
		}
		if err := definePropertyOrThrow(realm, obj, key, descObj); err != nil {
			return err
		}
	}
	return nil
}

// enumerableOwn lists the enumerable own string and index keys of v.
func enumerableOwn(realm *vm.Realm, v vm.Value) (*vm.GcObject, []vm.PropertyKey, error) {
	obj, err := realm.ToObject(v)
	if err != nil {
		return nil, nil, err
	}
	var keys []vm.PropertyKey
	for _, key := range obj.OwnKeys() {
		if key.IsSymbol() {
			continue
		}
		if p, ok := obj.GetOwn(key); ok && p.Enumerable() {
			keys = append(keys, key)
		}
	}
	return obj, keys, nil
}

func objectKeys(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	_, keys, err := enumerableOwn(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	values := make([]vm.Value, len(keys))
	for i, key := range keys {
		values[i] = key.ToValue()
	}
	return vm.ObjectValue(createArrayFromList(realm, values)), nil
}

func objectValues(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, keys, err := enumerableOwn(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	values := make([]vm.Value, 0, len(keys))
	for _, key := range keys {
		v, err := realm.Get(vm.ObjectValue(obj), key)
		if err != nil {
			return vm.Undefined, err
		}
		values = append(values, v)
	}
	return vm.ObjectValue(createArrayFromList(realm, values)), nil
}

func objectEntries(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, keys, err := enumerableOwn(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	entries := make([]vm.Value, 0, len(keys))
	for _, key := range keys {
		v, err := realm.Get(vm.ObjectValue(obj), key)
		if err != nil {
			return vm.Undefined, err
		}
		pair := createArrayFromList(realm, []vm.Value{key.ToValue(), v})
		entries = append(entries, vm.ObjectValue(pair))
	}
	return vm.ObjectValue(createArrayFromList(realm, entries)), nil
}

func objectAssign(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	target, err := realm.ToObject(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	for _, source := range args[min(1, len(args)):] {
		if source.IsNullish() {
			continue
		}
		src, err := realm.ToObject(source)
		if err != nil {
			return vm.Undefined, err
		}
		for _, key := range src.OwnKeys() {
			p, ok := src.GetOwn(key)
			if !ok || !p.Enumerable() {
				continue
			}
			v, err := realm.Get(vm.ObjectValue(src), key)
			if err != nil {
				return vm.Undefined, err
			}
			ok, err = realm.Set(vm.ObjectValue(target), key, v)
			if err != nil {
				return vm.Undefined, err
			}
			if !ok {
				return vm.Undefined, realm.ThrowTypeError("Cannot assign to read only property '%s' of object", key)
			}
		}
	}
	return vm.ObjectValue(target), nil
}

func objectIs(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.BooleanValue(vm.SameValue(vm.Arg(args, 0), vm.Arg(args, 1))), nil
}

func objectGetOwnPropertyNames(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, err := realm.ToObject(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	var names []vm.Value
	for _, key := range obj.OwnKeys() {
		if !key.IsSymbol() {
			names = append(names, key.ToValue())
		}
	}
	return vm.ObjectValue(createArrayFromList(realm, names)), nil
}

func objectGetOwnPropertySymbols(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, err := realm.ToObject(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	var symbols []vm.Value
	for _, key := range obj.OwnKeys() {
		if key.IsSymbol() {
			symbols = append(symbols, key.ToValue())
		}
	}
	return vm.ObjectValue(createArrayFromList(realm, symbols)), nil
}

func objectDefineProperty(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	target := vm.Arg(args, 0)
	if !target.IsObject() {
		return vm.Undefined, realm.ThrowTypeError("Object.defineProperty called on non-object")
	}
	key, err := vm.ToPropertyKey(realm, vm.Arg(args, 1))
	if err != nil {
		return vm.Undefined, err
	}
	if err := definePropertyOrThrow(realm, target.AsObject(), key, vm.Arg(args, 2)); err != nil {
		return vm.Undefined, err
	}
	return target, nil
}

func definePropertyOrThrow(realm *vm.Realm, obj *vm.GcObject, key vm.PropertyKey, descObj vm.Value) error {
	current, exists := obj.GetOwn(key)
	var cur *vm.Property
	if exists {
		cur = &current
	}
	prop, err := toPropertyDescriptor(realm, descObj, cur)
	if err != nil {
		return err
	}
	ok, err := realm.TryDefineOwnProperty(obj, key, prop)
	if err != nil {
		return err
	}
	if !ok {
		return realm.ThrowTypeError("Cannot redefine property: %s", key)
	}
	return nil
}

// toPropertyDescriptor reads a descriptor object. Fields the descriptor
// leaves out are taken from current when the property exists and default
// to false/undefined otherwise.
func toPropertyDescriptor(realm *vm.Realm, descObj vm.Value, current *vm.Property) (vm.Property, error) {
	if !descObj.IsObject() {
		return vm.Property{}, realm.ThrowTypeError("Property description must be an object: %s", descObj)
	}
	desc := descObj.AsObject()

	field := func(name string) (vm.Value, bool, error) {
		key := vm.StringKey(name)
		if !realm.HasProperty(desc, key) {
			return vm.Undefined, false, nil
		}
		v, err := realm.Get(descObj, key)
		return v, true, err
	}

	var attr vm.Attribute
	var value, getter, setter vm.Value
	if current != nil {
		attr = current.Attribute()
		value, getter, setter = current.Value(), current.Getter(), current.Setter()
	}
	setFlag := func(name string, bit vm.Attribute) error {
		v, ok, err := field(name)
		if err != nil || !ok {
			return err
		}
		if vm.ToBoolean(v) {
			attr = attr.With(bit)
		} else {
			attr = attr.Without(bit)
		}
		return nil
	}
	if err := setFlag("enumerable", vm.Enumerable); err != nil {
		return vm.Property{}, err
	}
	if err := setFlag("configurable", vm.Configurable); err != nil {
		return vm.Property{}, err
	}

	get, hasGet, err := field("get")
	if err != nil {
		return vm.Property{}, err
	}
	set, hasSet, err := field("set")
	if err != nil {
		return vm.Property{}, err
	}
	v, hasValue, err := field("value")
	if err != nil {
		return vm.Property{}, err
	}
	_, hasWritable, err := field("writable")
	if err != nil {
		return vm.Property{}, err
	}

	if hasGet || hasSet {
		if hasValue || hasWritable {
			return vm.Property{}, realm.ThrowTypeError("Invalid property descriptor. Cannot both specify accessors and a value or writable attribute")
		}
		if hasGet && !get.IsUndefined() && !get.IsCallable() {
			return vm.Property{}, realm.ThrowTypeError("Getter must be a function: %s", get)
		}
		if hasSet && !set.IsUndefined() && !set.IsCallable() {
			return vm.Property{}, realm.ThrowTypeError("Setter must be a function: %s", set)
		}
		if current == nil || !current.IsAccessor() {
			getter, setter = vm.Undefined, vm.Undefined
		}
		if hasGet {
			getter = get
		}
		if hasSet {
			setter = set
		}
		return vm.AccessorDescriptor(getter, setter, attr), nil
	}

	if current != nil && current.IsAccessor() && !hasValue && !hasWritable {
		return vm.AccessorDescriptor(getter, setter, attr), nil
	}
	if current != nil && current.IsAccessor() {
		value = vm.Undefined
		attr = attr.Without(vm.Writable)
	}
	if hasValue {
		value = v
	}
	if err := setFlag("writable", vm.Writable); err != nil {
		return vm.Property{}, err
	}
	return vm.DataDescriptor(value, attr), nil
}

func objectGetOwnPropertyDescriptor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	obj, err := realm.ToObject(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	key, err := vm.ToPropertyKey(realm, vm.Arg(args, 1))
	if err != nil {
		return vm.Undefined, err
	}
	p, ok := obj.GetOwn(key)
	if !ok {
		return vm.Undefined, nil
	}
	return vm.ObjectValue(fromPropertyDescriptor(realm, p)), nil
}

func fromPropertyDescriptor(realm *vm.Realm, p vm.Property) *vm.GcObject {
	desc := realm.ConstructObject()
	if p.IsAccessor() {
		desc.InsertValue(vm.StringKey("get"), p.Getter(), vm.AllAttributes)
		desc.InsertValue(vm.StringKey("set"), p.Setter(), vm.AllAttributes)
	} else {
		desc.InsertValue(vm.StringKey("value"), p.Value(), vm.AllAttributes)
		desc.InsertValue(vm.StringKey("writable"), vm.BooleanValue(p.Writable()), vm.AllAttributes)
	}
	desc.InsertValue(vm.StringKey("enumerable"), vm.BooleanValue(p.Enumerable()), vm.AllAttributes)
	desc.InsertValue(vm.StringKey("configurable"), vm.BooleanValue(p.Configurable()), vm.AllAttributes)
	return desc
}

func objectIsExtensible(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(v.IsObject() && v.AsObject().IsExtensible()), nil
}

func objectPreventExtensions(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	if v.IsObject() {
		v.AsObject().PreventExtensions()
	}
	return v, nil
}

func objectFreeze(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	if !v.IsObject() {
		return v, nil
	}
	obj := v.AsObject()
	obj.BorrowMut(func(o *vm.Object) {
		for _, key := range o.OwnKeys() {
			p, _ := o.GetOwn(key)
			if p.IsAccessor() {
				o.Insert(key, vm.AccessorDescriptor(p.Getter(), p.Setter(), p.Attribute().Without(vm.Configurable)))
				continue
			}
			o.Insert(key, vm.DataDescriptor(p.Value(), p.Attribute().Without(vm.Writable|vm.Configurable)))
		}
		o.PreventExtensions()
	})
	return v, nil
}

func objectIsFrozen(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	if !v.IsObject() {
		return vm.True, nil
	}
	obj := v.AsObject()
	if obj.IsExtensible() {
		return vm.False, nil
	}
	for _, key := range obj.OwnKeys() {
		p, _ := obj.GetOwn(key)
		if p.Configurable() || p.Writable() {
			return vm.False, nil
		}
	}
	return vm.True, nil
}
