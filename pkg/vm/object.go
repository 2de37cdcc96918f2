package vm

import (
	"math/big"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"jscore/pkg/errors"
)

// Object is the payload behind a GcObject handle: the internal data slot,
// three disjoint property maps and the prototype link.
type Object struct {
	data       ObjectData
	indexed    map[uint32]Property
	strings    OrderedMap[string, Property]
	symbols    OrderedMap[*Symbol, Property]
	prototype  Value
	extensible bool
}

// NewObject returns the default object: ordinary data, no properties, a null
// prototype and extensible.
func NewObject() *Object {
	return &Object{
		data:       &OrdinaryData{},
		indexed:    make(map[uint32]Property),
		prototype:  Null,
		extensible: true,
	}
}

// NewObjectWithPrototype returns an object with the given prototype and data.
func NewObjectWithPrototype(proto Value, data ObjectData) *Object {
	o := NewObject()
	o.SetPrototype(proto)
	o.data = data
	return o
}

// NewFunctionObject returns a function object backed by a native body.
func NewFunctionObject(fn NativeFunction, flags FunctionFlags, proto Value) *Object {
	return NewObjectWithPrototype(proto, NewFunctionData(fn, flags))
}

func NewBooleanObject(b bool, proto Value) *Object {
	return NewObjectWithPrototype(proto, &BooleanData{Value: b})
}

func NewNumberObject(f float64, proto Value) *Object {
	return NewObjectWithPrototype(proto, &NumberData{Value: f})
}

// NewStringObject returns a String wrapper. Its length is exposed as a
// permanent read-only own property.
func NewStringObject(s string, proto Value) *Object {
	o := NewObjectWithPrototype(proto, &StringData{Value: s})
	o.Insert(StringKey("length"), DataDescriptor(IntegerValue(UTF16Length(s)), ReadOnly|NonEnumerable|Permanent))
	return o
}

func NewBigIntObject(b *big.Int, proto Value) *Object {
	return NewObjectWithPrototype(proto, &BigIntData{Value: new(big.Int).Set(b)})
}

func NewSymbolObject(sym *Symbol, proto Value) *Object {
	return NewObjectWithPrototype(proto, &SymbolData{Symbol: sym})
}

// NewNativeObject returns an object whose data slot carries value.
func NewNativeObject[T NativeObject](value T, proto Value) *Object {
	return NewObjectWithPrototype(proto, NewNativeData(value))
}

// --- Property storage ---

// Insert stores prop under key, replacing any previous property whatever its
// attributes.
func (o *Object) Insert(key PropertyKey, prop Property) {
	switch key.kind {
	case KeyKindIndex:
		o.indexed[key.index] = prop
	case KeyKindSymbol:
		o.symbols.Set(key.sym, prop)
	default:
		o.strings.Set(key.name, prop)
	}
}

// InsertValue is Insert with a data descriptor.
func (o *Object) InsertValue(key PropertyKey, v Value, attr Attribute) {
	o.Insert(key, DataDescriptor(v, attr))
}

// GetOwn returns the own property under key.
func (o *Object) GetOwn(key PropertyKey) (Property, bool) {
	switch key.kind {
	case KeyKindIndex:
		p, ok := o.indexed[key.index]
		return p, ok
	case KeyKindSymbol:
		return o.symbols.Get(key.sym)
	default:
		return o.strings.Get(key.name)
	}
}

func (o *Object) HasOwn(key PropertyKey) bool {
	_, ok := o.GetOwn(key)
	return ok
}

// Delete removes the own property under key. Absent keys succeed; a
// non-configurable property is left in place and reported as an error.
func (o *Object) Delete(key PropertyKey) error {
	p, ok := o.GetOwn(key)
	if !ok {
		return nil
	}
	if !p.Configurable() {
		return &errors.NotConfigurableError{Key: key.String()}
	}
	switch key.kind {
	case KeyKindIndex:
		delete(o.indexed, key.index)
	case KeyKindSymbol:
		o.symbols.Delete(key.sym)
	default:
		o.strings.Delete(key.name)
	}
	return nil
}

// OwnKeys returns the own keys: indices ascending, then strings and symbols
// in insertion order.
func (o *Object) OwnKeys() []PropertyKey {
	indices := maps.Keys(o.indexed)
	slices.Sort(indices)
	keys := make([]PropertyKey, 0, len(indices)+o.strings.Len()+o.symbols.Len())
	for _, idx := range indices {
		keys = append(keys, IndexKey(idx))
	}
	for _, name := range o.strings.Keys() {
		keys = append(keys, PropertyKey{kind: KeyKindString, name: name})
	}
	for _, sym := range o.symbols.Keys() {
		keys = append(keys, SymbolKey(sym))
	}
	return keys
}

// PropertyCount returns the number of own properties.
func (o *Object) PropertyCount() int {
	return len(o.indexed) + o.strings.Len() + o.symbols.Len()
}

// --- Prototype and extensibility ---

func (o *Object) Prototype() Value { return o.prototype }

// SetPrototype links o to proto, which must be null or an object.
func (o *Object) SetPrototype(proto Value) {
	if !proto.IsNull() && !proto.IsObject() {
		panic(errors.Contract("SetPrototype", "prototype must be an object or null, got %s", proto.Type()))
	}
	o.prototype = proto
}

func (o *Object) IsExtensible() bool { return o.extensible }
func (o *Object) PreventExtensions() { o.extensible = false }

// --- Internal data slot ---

func (o *Object) Data() ObjectData { return o.data }
func (o *Object) Kind() DataKind   { return o.data.Kind() }

// SetData replaces the internal data slot.
func (o *Object) SetData(data ObjectData) {
	if data == nil {
		panic(errors.Contract("SetData", "object data must not be nil"))
	}
	o.data = data
}

func (o *Object) IsOrdinary() bool     { return o.Kind() == KindOrdinary }
func (o *Object) IsArray() bool        { return o.Kind() == KindArray }
func (o *Object) IsMap() bool          { return o.Kind() == KindMap }
func (o *Object) IsString() bool       { return o.Kind() == KindString }
func (o *Object) IsFunction() bool     { return o.Kind() == KindFunction }
func (o *Object) IsSymbol() bool       { return o.Kind() == KindSymbol }
func (o *Object) IsError() bool        { return o.Kind() == KindError }
func (o *Object) IsBoolean() bool      { return o.Kind() == KindBoolean }
func (o *Object) IsNumber() bool       { return o.Kind() == KindNumber }
func (o *Object) IsBigInt() bool       { return o.Kind() == KindBigInt }
func (o *Object) IsRegExp() bool       { return o.Kind() == KindRegExp }
func (o *Object) IsDate() bool         { return o.Kind() == KindDate }
func (o *Object) IsGlobal() bool       { return o.Kind() == KindGlobal }
func (o *Object) IsNativeObject() bool { return o.Kind() == KindNative }

func (o *Object) AsMap() (*MapData, bool) {
	d, ok := o.data.(*MapData)
	return d, ok
}

func (o *Object) AsString() (string, bool) {
	if d, ok := o.data.(*StringData); ok {
		return d.Value, true
	}
	return "", false
}

func (o *Object) AsFunction() (*FunctionData, bool) {
	d, ok := o.data.(*FunctionData)
	return d, ok
}

func (o *Object) AsSymbol() (*Symbol, bool) {
	if d, ok := o.data.(*SymbolData); ok {
		return d.Symbol, true
	}
	return nil, false
}

func (o *Object) AsBoolean() (bool, bool) {
	if d, ok := o.data.(*BooleanData); ok {
		return d.Value, true
	}
	return false, false
}

func (o *Object) AsNumber() (float64, bool) {
	if d, ok := o.data.(*NumberData); ok {
		return d.Value, true
	}
	return 0, false
}

func (o *Object) AsBigInt() (*big.Int, bool) {
	if d, ok := o.data.(*BigIntData); ok {
		return d.Value, true
	}
	return nil, false
}

func (o *Object) AsRegExp() (*RegExpData, bool) {
	d, ok := o.data.(*RegExpData)
	return d, ok
}

func (o *Object) AsDate() (float64, bool) {
	if d, ok := o.data.(*DateData); ok {
		return d.Time, true
	}
	return 0, false
}

func (o *Object) IsCallable() bool {
	fn, ok := o.AsFunction()
	return ok && fn.IsCallable()
}

func (o *Object) IsConstructable() bool {
	fn, ok := o.AsFunction()
	return ok && fn.IsConstructable()
}

// trace visits the prototype, every property value and the data slot.
func (o *Object) trace(visit func(Value)) {
	visit(o.prototype)
	for _, p := range o.indexed {
		p.trace(visit)
	}
	o.strings.Range(func(_ string, p Property) bool {
		p.trace(visit)
		return true
	})
	o.symbols.Range(func(_ *Symbol, p Property) bool {
		p.trace(visit)
		return true
	})
	traceData(o.data, visit)
}
