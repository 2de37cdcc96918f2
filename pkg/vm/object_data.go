package vm

import (
	"fmt"
	"math"
	"math/big"

	"github.com/dlclark/regexp2"
)

// DataKind identifies the active ObjectData variant.
type DataKind uint8

const (
	KindOrdinary DataKind = iota
	KindArray
	KindMap
	KindRegExp
	KindBigInt
	KindBoolean
	KindFunction
	KindString
	KindNumber
	KindSymbol
	KindError
	KindDate
	KindGlobal
	KindNative
)

func (k DataKind) String() string {
	switch k {
	case KindOrdinary:
		return "Ordinary"
	case KindArray:
		return "Array"
	case KindMap:
		return "Map"
	case KindRegExp:
		return "RegExp"
	case KindBigInt:
		return "BigInt"
	case KindBoolean:
		return "Boolean"
	case KindFunction:
		return "Function"
	case KindString:
		return "String"
	case KindNumber:
		return "Number"
	case KindSymbol:
		return "Symbol"
	case KindError:
		return "Error"
	case KindDate:
		return "Date"
	case KindGlobal:
		return "Global"
	case KindNative:
		return "NativeObject"
	default:
		return fmt.Sprintf("<unknown kind: %d>", k)
	}
}

// ObjectData is an object's internal data slot. The set of variants is
// closed; exactly one is active and it only changes through SetData.
type ObjectData interface {
	Kind() DataKind
	objectData()
}

type OrdinaryData struct{}
type ArrayData struct{}
type ErrorData struct{}
type GlobalData struct{}

type BooleanData struct{ Value bool }
type NumberData struct{ Value float64 }
type StringData struct{ Value string }
type SymbolData struct{ Symbol *Symbol }
type BigIntData struct{ Value *big.Int }

// DateData holds a time value in milliseconds since the epoch; NaN marks an
// invalid date.
type DateData struct{ Time float64 }

// RegExpData holds a compiled pattern together with its source and flags.
type RegExpData struct {
	Source  string
	Flags   string
	Matcher *regexp2.Regexp
}

func (*OrdinaryData) Kind() DataKind { return KindOrdinary }
func (*ArrayData) Kind() DataKind    { return KindArray }
func (*ErrorData) Kind() DataKind    { return KindError }
func (*GlobalData) Kind() DataKind   { return KindGlobal }
func (*BooleanData) Kind() DataKind  { return KindBoolean }
func (*NumberData) Kind() DataKind   { return KindNumber }
func (*StringData) Kind() DataKind   { return KindString }
func (*SymbolData) Kind() DataKind   { return KindSymbol }
func (*BigIntData) Kind() DataKind   { return KindBigInt }
func (*DateData) Kind() DataKind     { return KindDate }
func (*RegExpData) Kind() DataKind   { return KindRegExp }
func (*MapData) Kind() DataKind      { return KindMap }
func (*FunctionData) Kind() DataKind { return KindFunction }
func (*NativeData) Kind() DataKind   { return KindNative }

func (*OrdinaryData) objectData() {}
func (*ArrayData) objectData()    {}
func (*ErrorData) objectData()    {}
func (*GlobalData) objectData()   {}
func (*BooleanData) objectData()  {}
func (*NumberData) objectData()   {}
func (*StringData) objectData()   {}
func (*SymbolData) objectData()   {}
func (*BigIntData) objectData()   {}
func (*DateData) objectData()     {}
func (*RegExpData) objectData()   {}
func (*MapData) objectData()      {}
func (*FunctionData) objectData() {}
func (*NativeData) objectData()   {}

// mapKey is the comparable form of a Value under SameValueZero.
type mapKey struct {
	typ ValueType
	num float64
	str string
	ref any
}

func toMapKey(v Value) mapKey {
	switch v.typ {
	case TypeNumber:
		if math.IsNaN(v.num) {
			return mapKey{typ: TypeNumber, str: "NaN"}
		}
		if v.num == 0 {
			return mapKey{typ: TypeNumber}
		}
		return mapKey{typ: TypeNumber, num: v.num}
	case TypeBigInt:
		return mapKey{typ: TypeBigInt, str: v.AsBigInt().String()}
	default:
		return mapKey{typ: v.typ, num: v.num, str: v.str, ref: v.ref}
	}
}

// MapEntry is one key/value pair of a MapData store.
type MapEntry struct {
	Key   Value
	Value Value
}

// MapData is the ordered key/value store behind Map objects.
type MapData struct {
	entries OrderedMap[mapKey, MapEntry]
}

func NewMapData() *MapData {
	return &MapData{}
}

func (m *MapData) Size() int { return m.entries.Len() }

func (m *MapData) Get(key Value) (Value, bool) {
	e, ok := m.entries.Get(toMapKey(key))
	return e.Value, ok
}

func (m *MapData) Has(key Value) bool {
	return m.entries.Has(toMapKey(key))
}

// Set stores value under key; -0 keys are normalised to +0.
func (m *MapData) Set(key, value Value) {
	if key.IsNumber() && key.num == 0 {
		key = NumberValue(0)
	}
	m.entries.Set(toMapKey(key), MapEntry{Key: key, Value: value})
}

func (m *MapData) Delete(key Value) bool {
	return m.entries.Delete(toMapKey(key))
}

func (m *MapData) Clear() {
	m.entries.Clear()
}

// Entries returns a snapshot of the entries in insertion order.
func (m *MapData) Entries() []MapEntry {
	out := make([]MapEntry, 0, m.entries.Len())
	m.entries.Range(func(_ mapKey, e MapEntry) bool {
		out = append(out, e)
		return true
	})
	return out
}

// traceData visits the values reachable from an object's data slot.
func traceData(d ObjectData, visit func(Value)) {
	switch d := d.(type) {
	case *MapData:
		d.entries.Range(func(_ mapKey, e MapEntry) bool {
			visit(e.Key)
			visit(e.Value)
			return true
		})
	case *NativeData:
		d.payload.trace(visit)
	}
}
