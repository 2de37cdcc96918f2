package builtins

import (
	"jscore/pkg/errors"
	"jscore/pkg/vm"
)

// methodAttribute is how built-in methods are attached: replaceable by user
// code, hidden from enumeration.
const methodAttribute = vm.Writable | vm.NonEnumerable | vm.Configurable

// metadataAttribute guards the length and name of built-in functions.
const metadataAttribute = vm.ReadOnly | vm.NonEnumerable | vm.Permanent

// NewBuiltinFunction allocates a callable, non-constructable function with
// its length and name properties installed.
func NewBuiltinFunction(realm *vm.Realm, fn vm.NativeFunction, name string, length int) *vm.GcObject {
	proto := vm.ObjectValue(realm.StandardObjects().Function.Prototype)
	obj := vm.NewFunctionObject(fn, vm.FlagCallable, proto)
	obj.InsertValue(vm.StringKey("length"), vm.IntegerValue(length), metadataAttribute)
	obj.InsertValue(vm.StringKey("name"), vm.StringValue(name), metadataAttribute)
	return realm.Alloc(obj)
}

// --- ObjectBuilder ---

// ObjectBuilder assembles one free-standing object such as Math or JSON.
// The object is only moved into the heap by Build, so nothing can observe
// it half-built.
type ObjectBuilder struct {
	realm  *vm.Realm
	object *vm.Object
	built  bool
}

// NewObjectBuilder starts an ordinary extensible object inheriting from
// Object.prototype.
func NewObjectBuilder(realm *vm.Realm) *ObjectBuilder {
	proto := vm.ObjectValue(realm.StandardObjects().Object.Prototype)
	return &ObjectBuilder{realm: realm, object: vm.NewObjectWithPrototype(proto, &vm.OrdinaryData{})}
}

func (b *ObjectBuilder) open(op string) {
	if b.built {
		panic(errors.Contract(op, "object builder used after Build"))
	}
}

// Function attaches a native method under name.
func (b *ObjectBuilder) Function(fn vm.NativeFunction, name string, length int) *ObjectBuilder {
	b.open("ObjectBuilder.Function")
	f := NewBuiltinFunction(b.realm, fn, name, length)
	b.object.InsertValue(vm.StringKey(name), vm.ObjectValue(f), methodAttribute)
	return b
}

// Property attaches a data property with the given attributes.
func (b *ObjectBuilder) Property(key vm.PropertyKey, value vm.Value, attr vm.Attribute) *ObjectBuilder {
	b.open("ObjectBuilder.Property")
	b.object.InsertValue(key, value, attr)
	return b
}

// Accessor attaches a getter/setter pair; either may be nil.
func (b *ObjectBuilder) Accessor(key vm.PropertyKey, get, set vm.NativeFunction, attr vm.Attribute) *ObjectBuilder {
	b.open("ObjectBuilder.Accessor")
	b.object.Insert(key, accessorProperty(b.realm, key, get, set, attr))
	return b
}

// Build moves the object into the heap and returns its handle.
func (b *ObjectBuilder) Build() *vm.GcObject {
	b.open("ObjectBuilder.Build")
	b.built = true
	return b.realm.Alloc(b.object)
}

func accessorProperty(realm *vm.Realm, key vm.PropertyKey, get, set vm.NativeFunction, attr vm.Attribute) vm.Property {
	getter, setter := vm.Undefined, vm.Undefined
	name := functionName(key)
	if get != nil {
		getter = vm.ObjectValue(NewBuiltinFunction(realm, get, "get "+name, 0))
	}
	if set != nil {
		setter = vm.ObjectValue(NewBuiltinFunction(realm, set, "set "+name, 1))
	}
	return vm.AccessorDescriptor(getter, setter, attr)
}

// functionName is the name a function gets when installed under key;
// symbol keys use their bracketed description.
func functionName(key vm.PropertyKey) string {
	if key.IsSymbol() {
		desc, _ := key.Symbol().Description()
		return "[" + desc + "]"
	}
	return key.String()
}

// --- ConstructorBuilder ---

type memberKind uint8

const (
	memberData memberKind = iota
	memberMethod
	memberAccessor
)

// pendingMember is a property recorded by the fluent calls and only
// materialized by Build.
type pendingMember struct {
	kind   memberKind
	key    vm.PropertyKey
	value  vm.Value
	attr   vm.Attribute
	fn     vm.NativeFunction
	setter vm.NativeFunction
	length int
}

func (m pendingMember) materialize(realm *vm.Realm) vm.Property {
	switch m.kind {
	case memberMethod:
		f := NewBuiltinFunction(realm, m.fn, functionName(m.key), m.length)
		return vm.DataDescriptor(vm.ObjectValue(f), methodAttribute)
	case memberAccessor:
		return accessorProperty(realm, m.key, m.fn, m.setter, m.attr)
	default:
		return vm.DataDescriptor(m.value, m.attr)
	}
}

// ConstructorBuilder wires a constructor and its prototype together so
// that constructor.prototype and prototype.constructor point at each other.
// The fluent calls only record what was asked for; Build applies all of it.
type ConstructorBuilder struct {
	realm         *vm.Realm
	function      vm.NativeFunction
	constructor   *vm.GcObject
	prototype     *vm.GcObject
	name          string
	length        int
	callable      bool
	constructable bool
	inherit       *vm.Value
	statics       []pendingMember
	members       []pendingMember
	built         bool
}

// NewConstructorBuilder builds a fresh constructor/prototype pair.
func NewConstructorBuilder(realm *vm.Realm, fn vm.NativeFunction) *ConstructorBuilder {
	return newConstructorBuilder(realm, fn, realm.Alloc(vm.NewObject()), realm.Alloc(vm.NewObject()))
}

// NewConstructorBuilderWithStandardObject populates a pair reserved by the
// realm, keeping the identities other code may already hold.
func NewConstructorBuilderWithStandardObject(realm *vm.Realm, fn vm.NativeFunction, std *vm.StandardConstructor) *ConstructorBuilder {
	return newConstructorBuilder(realm, fn, std.Constructor, std.Prototype)
}

func newConstructorBuilder(realm *vm.Realm, fn vm.NativeFunction, ctor, proto *vm.GcObject) *ConstructorBuilder {
	return &ConstructorBuilder{
		realm:         realm,
		function:      fn,
		constructor:   ctor,
		prototype:     proto,
		name:          "[object]",
		callable:      true,
		constructable: true,
	}
}

func (b *ConstructorBuilder) open(op string) {
	if b.built {
		panic(errors.Contract(op, "constructor builder for %q used after Build", b.name))
	}
}

// Method attaches a native method to the prototype.
func (b *ConstructorBuilder) Method(fn vm.NativeFunction, name string, length int) *ConstructorBuilder {
	b.open("ConstructorBuilder.Method")
	b.members = append(b.members, pendingMember{kind: memberMethod, key: vm.StringKey(name), fn: fn, length: length})
	return b
}

// SymbolMethod attaches a native method under a symbol key.
func (b *ConstructorBuilder) SymbolMethod(fn vm.NativeFunction, sym *vm.Symbol, length int) *ConstructorBuilder {
	b.open("ConstructorBuilder.SymbolMethod")
	b.members = append(b.members, pendingMember{kind: memberMethod, key: vm.SymbolKey(sym), fn: fn, length: length})
	return b
}

// StaticMethod attaches a native method to the constructor itself.
func (b *ConstructorBuilder) StaticMethod(fn vm.NativeFunction, name string, length int) *ConstructorBuilder {
	b.open("ConstructorBuilder.StaticMethod")
	b.statics = append(b.statics, pendingMember{kind: memberMethod, key: vm.StringKey(name), fn: fn, length: length})
	return b
}

// Property attaches a data property to the prototype.
func (b *ConstructorBuilder) Property(key vm.PropertyKey, value vm.Value, attr vm.Attribute) *ConstructorBuilder {
	b.open("ConstructorBuilder.Property")
	b.members = append(b.members, pendingMember{kind: memberData, key: key, value: value, attr: attr})
	return b
}

// StaticProperty attaches a data property to the constructor.
func (b *ConstructorBuilder) StaticProperty(key vm.PropertyKey, value vm.Value, attr vm.Attribute) *ConstructorBuilder {
	b.open("ConstructorBuilder.StaticProperty")
	b.statics = append(b.statics, pendingMember{kind: memberData, key: key, value: value, attr: attr})
	return b
}

// Accessor attaches a getter/setter pair to the prototype.
func (b *ConstructorBuilder) Accessor(key vm.PropertyKey, get, set vm.NativeFunction, attr vm.Attribute) *ConstructorBuilder {
	b.open("ConstructorBuilder.Accessor")
	b.members = append(b.members, pendingMember{kind: memberAccessor, key: key, fn: get, setter: set, attr: attr})
	return b
}

// StaticAccessor attaches a getter/setter pair to the constructor.
func (b *ConstructorBuilder) StaticAccessor(key vm.PropertyKey, get, set vm.NativeFunction, attr vm.Attribute) *ConstructorBuilder {
	b.open("ConstructorBuilder.StaticAccessor")
	b.statics = append(b.statics, pendingMember{kind: memberAccessor, key: key, fn: get, setter: set, attr: attr})
	return b
}

// Length sets the constructor's length property. Defaults to 0.
func (b *ConstructorBuilder) Length(length int) *ConstructorBuilder {
	b.open("ConstructorBuilder.Length")
	b.length = length
	return b
}

// Name sets the constructor's name property. Defaults to "[object]".
func (b *ConstructorBuilder) Name(name string) *ConstructorBuilder {
	b.open("ConstructorBuilder.Name")
	b.name = name
	return b
}

func (b *ConstructorBuilder) Callable(callable bool) *ConstructorBuilder {
	b.open("ConstructorBuilder.Callable")
	b.callable = callable
	return b
}

func (b *ConstructorBuilder) Constructable(constructable bool) *ConstructorBuilder {
	b.open("ConstructorBuilder.Constructable")
	b.constructable = constructable
	return b
}

// Inherit sets what the prototype object inherits from. proto must be an
// object or null; the default is Object.prototype.
func (b *ConstructorBuilder) Inherit(proto vm.Value) *ConstructorBuilder {
	b.open("ConstructorBuilder.Inherit")
	if !proto.IsObject() && !proto.IsNull() {
		panic(errors.Contract("ConstructorBuilder.Inherit", "prototype must be an object or null, got %s", proto.Type()))
	}
	b.inherit = &proto
	return b
}

// Realm returns the realm the builder allocates in.
func (b *ConstructorBuilder) Realm() *vm.Realm { return b.realm }

// Build installs everything recorded so far and returns the constructor.
// The constructor is completed first, then the prototype; each is mutated
// under a single exclusive borrow. A builder can only be built once.
func (b *ConstructorBuilder) Build() *vm.GcObject {
	b.open("ConstructorBuilder.Build")
	b.built = true

	statics := make([]vm.Property, len(b.statics))
	for i, m := range b.statics {
		statics[i] = m.materialize(b.realm)
	}
	members := make([]vm.Property, len(b.members))
	for i, m := range b.members {
		members[i] = m.materialize(b.realm)
	}

	var flags vm.FunctionFlags
	if b.callable {
		flags |= vm.FlagCallable
	}
	if b.constructable {
		flags |= vm.FlagConstructable
	}
	std := b.realm.StandardObjects()

	b.constructor.BorrowMut(func(ctor *vm.Object) {
		for i, m := range b.statics {
			ctor.Insert(m.key, statics[i])
		}
		ctor.SetData(vm.NewFunctionData(b.function, flags))
		ctor.InsertValue(vm.StringKey("length"), vm.IntegerValue(b.length), metadataAttribute)
		ctor.InsertValue(vm.StringKey("name"), vm.StringValue(b.name), metadataAttribute)
		ctor.SetPrototype(vm.ObjectValue(std.Function.Prototype))
		ctor.InsertValue(vm.StringKey("prototype"), vm.ObjectValue(b.prototype), vm.ReadOnly|vm.NonEnumerable|vm.Permanent)
	})

	inherit := vm.ObjectValue(std.Object.Prototype)
	if b.inherit != nil {
		inherit = *b.inherit
	}
	b.prototype.BorrowMut(func(proto *vm.Object) {
		for i, m := range b.members {
			proto.Insert(m.key, members[i])
		}
		proto.InsertValue(vm.StringKey("constructor"), vm.ObjectValue(b.constructor), vm.Writable|vm.NonEnumerable|vm.Configurable)
		proto.SetPrototype(inherit)
	})

	return b.constructor
}
