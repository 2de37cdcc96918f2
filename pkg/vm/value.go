package vm

import (
	"fmt"
	"math"
	"math/big"
	"strconv"
)

// cleanExponentialFormat removes leading zeros from exponent to match JS format
// e.g., "1e-07" -> "1e-7", "1e+25" -> "1e+25"
func cleanExponentialFormat(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == 'e' || s[i] == 'E' {
			if i+1 < len(s) && (s[i+1] == '+' || s[i+1] == '-') {
				sign := s[i+1]
				j := i + 2
				for j < len(s) && s[j] == '0' {
					j++
				}
				// If all zeros or no digits after sign, keep one zero
				if j >= len(s) {
					return s[:i+2] + "0"
				}
				return s[:i+1] + string(sign) + s[j:]
			}
			break
		}
	}
	return s
}

type ValueType uint8

const (
	TypeUndefined ValueType = iota
	TypeNull
	TypeBoolean
	TypeString
	TypeNumber
	TypeBigInt
	TypeSymbol
	TypeObject
)

// String returns the typeof-style name of the ValueType
func (vt ValueType) String() string {
	switch vt {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		return "boolean"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBigInt:
		return "bigint"
	case TypeSymbol:
		return "symbol"
	case TypeObject:
		return "object"
	default:
		return fmt.Sprintf("<unknown type: %d>", vt)
	}
}

// Value is a language value. Primitive payloads are stored inline; objects,
// symbols and bigints are referenced.
type Value struct {
	typ ValueType
	num float64 // number payload, 1/0 for booleans
	str string
	ref any // *GcObject, *Symbol or *big.Int
}

var (
	Undefined = Value{typ: TypeUndefined}
	Null      = Value{typ: TypeNull}
	True      = Value{typ: TypeBoolean, num: 1}
	False     = Value{typ: TypeBoolean}
	NaN       = Value{typ: TypeNumber, num: math.NaN()}
)

func BooleanValue(b bool) Value {
	if b {
		return True
	}
	return False
}

func NumberValue(f float64) Value { return Value{typ: TypeNumber, num: f} }
func IntegerValue(i int) Value    { return Value{typ: TypeNumber, num: float64(i)} }
func StringValue(s string) Value  { return Value{typ: TypeString, str: s} }
func SymbolValue(s *Symbol) Value { return Value{typ: TypeSymbol, ref: s} }

func BigIntValue(b *big.Int) Value {
	return Value{typ: TypeBigInt, ref: new(big.Int).Set(b)}
}

// ObjectValue wraps a handle. A nil handle yields null.
func ObjectValue(o *GcObject) Value {
	if o == nil {
		return Null
	}
	return Value{typ: TypeObject, ref: o}
}

func (v Value) Type() ValueType   { return v.typ }
func (v Value) IsUndefined() bool { return v.typ == TypeUndefined }
func (v Value) IsNull() bool      { return v.typ == TypeNull }
func (v Value) IsNullish() bool   { return v.typ == TypeUndefined || v.typ == TypeNull }
func (v Value) IsObject() bool    { return v.typ == TypeObject }
func (v Value) IsString() bool    { return v.typ == TypeString }
func (v Value) IsNumber() bool    { return v.typ == TypeNumber }
func (v Value) IsSymbol() bool    { return v.typ == TypeSymbol }
func (v Value) IsBigInt() bool    { return v.typ == TypeBigInt }
func (v Value) IsBoolean() bool   { return v.typ == TypeBoolean }
func (v Value) AsFloat() float64  { return v.num }
func (v Value) AsBoolean() bool   { return v.num != 0 }
func (v Value) AsString() string  { return v.str }

func (v Value) AsSymbol() *Symbol {
	s, _ := v.ref.(*Symbol)
	return s
}

func (v Value) AsObject() *GcObject {
	o, _ := v.ref.(*GcObject)
	return o
}

func (v Value) AsBigInt() *big.Int {
	b, _ := v.ref.(*big.Int)
	return b
}

// IsCallable reports whether v is an object with a call slot.
func (v Value) IsCallable() bool {
	return v.IsObject() && v.AsObject().IsCallable()
}

// IsConstructable reports whether v may be used with new.
func (v Value) IsConstructable() bool {
	return v.IsObject() && v.AsObject().IsConstructable()
}

// TypeOf returns the result of the typeof operator.
func (v Value) TypeOf() string {
	if v.typ == TypeObject && v.AsObject().IsCallable() {
		return "function"
	}
	if v.typ == TypeNull {
		return "object"
	}
	return v.typ.String()
}

// String renders the value for debugging. Objects are not coerced.
func (v Value) String() string {
	switch v.typ {
	case TypeString:
		return strconv.Quote(v.str)
	case TypeObject:
		o := v.AsObject()
		return fmt.Sprintf("[%s #%d]", o.Kind(), o.ID())
	default:
		return primitiveToString(v)
	}
}

// NumberToString formats f the way the language's Number::toString does.
func NumberToString(f float64) string {
	if math.IsNaN(f) {
		return "NaN"
	}
	if math.IsInf(f, 1) {
		return "Infinity"
	}
	if math.IsInf(f, -1) {
		return "-Infinity"
	}
	// Handle -0 (convert to 0)
	if f == 0 {
		return "0"
	}
	absF := math.Abs(f)
	// If |f| < 1e-6 or |f| >= 1e21, use exponential notation
	if absF < 1e-6 || absF >= 1e21 {
		return cleanExponentialFormat(strconv.FormatFloat(f, 'e', -1, 64))
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// primitiveToString converts a non-object value without running user code.
func primitiveToString(v Value) string {
	switch v.typ {
	case TypeUndefined:
		return "undefined"
	case TypeNull:
		return "null"
	case TypeBoolean:
		if v.AsBoolean() {
			return "true"
		}
		return "false"
	case TypeString:
		return v.str
	case TypeNumber:
		return NumberToString(v.num)
	case TypeBigInt:
		return v.AsBigInt().String() // No "n" suffix for string conversion
	case TypeSymbol:
		return v.AsSymbol().String()
	default:
		return fmt.Sprintf("<%s>", v.typ)
	}
}

// StrictlyEquals implements ===.
func (v Value) StrictlyEquals(other Value) bool {
	if v.typ != other.typ {
		return false
	}
	switch v.typ {
	case TypeUndefined, TypeNull:
		return true
	case TypeNumber, TypeBoolean:
		return v.num == other.num
	case TypeString:
		return v.str == other.str
	case TypeBigInt:
		return v.AsBigInt().Cmp(other.AsBigInt()) == 0
	default:
		return v.ref == other.ref
	}
}

// SameValue implements Object.is: NaN equals NaN, +0 differs from -0.
func SameValue(a, b Value) bool {
	if a.typ == TypeNumber && b.typ == TypeNumber {
		if math.IsNaN(a.num) && math.IsNaN(b.num) {
			return true
		}
		if a.num == 0 && b.num == 0 {
			return math.Signbit(a.num) == math.Signbit(b.num)
		}
	}
	return a.StrictlyEquals(b)
}

// SameValueZero is SameValue with +0 and -0 considered equal.
func SameValueZero(a, b Value) bool {
	if a.typ == TypeNumber && b.typ == TypeNumber && math.IsNaN(a.num) && math.IsNaN(b.num) {
		return true
	}
	return a.StrictlyEquals(b)
}
