package vm

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf16"
)

// PreferredType is the hint passed to ToPrimitive.
type PreferredType uint8

const (
	HintDefault PreferredType = iota
	HintString
	HintNumber
)

func (h PreferredType) String() string {
	switch h {
	case HintString:
		return "string"
	case HintNumber:
		return "number"
	default:
		return "default"
	}
}

// ToPrimitive converts v to a primitive, consulting @@toPrimitive and then
// valueOf/toString in hint order.
func (r *Realm) ToPrimitive(v Value, hint PreferredType) (Value, error) {
	if !v.IsObject() {
		return v, nil
	}
	exotic, err := r.Get(v, SymbolKey(r.symbols.ToPrimitive))
	if err != nil {
		return Undefined, err
	}
	if !exotic.IsNullish() {
		if !exotic.IsCallable() {
			return Undefined, r.ThrowTypeError("Symbol.toPrimitive is not a function")
		}
		result, err := r.Call(exotic, v, []Value{StringValue(hint.String())})
		if err != nil {
			return Undefined, err
		}
		if result.IsObject() {
			return Undefined, r.ThrowTypeError("Cannot convert object to primitive value")
		}
		return result, nil
	}
	methods := [2]string{"valueOf", "toString"}
	if hint == HintString {
		methods = [2]string{"toString", "valueOf"}
	}
	for _, name := range methods {
		method, err := r.GetV(v, name)
		if err != nil {
			return Undefined, err
		}
		if !method.IsCallable() {
			continue
		}
		result, err := r.Call(method, v, nil)
		if err != nil {
			return Undefined, err
		}
		if !result.IsObject() {
			return result, nil
		}
	}
	return Undefined, r.ThrowTypeError("Cannot convert object to primitive value")
}

// ToString converts v to a string. Symbols throw a TypeError.
func (r *Realm) ToString(v Value) (string, error) {
	switch v.Type() {
	case TypeSymbol:
		return "", r.ThrowTypeError("Cannot convert a Symbol value to a string")
	case TypeObject:
		prim, err := r.ToPrimitive(v, HintString)
		if err != nil {
			return "", err
		}
		return r.ToString(prim)
	default:
		return primitiveToString(v), nil
	}
}

// ToNumber converts v to a number.
func (r *Realm) ToNumber(v Value) (float64, error) {
	switch v.Type() {
	case TypeUndefined:
		return math.NaN(), nil
	case TypeNull:
		return 0, nil
	case TypeBoolean, TypeNumber:
		return v.AsFloat(), nil
	case TypeString:
		return StringToNumber(v.AsString()), nil
	case TypeSymbol:
		return 0, r.ThrowTypeError("Cannot convert a Symbol value to a number")
	case TypeBigInt:
		return 0, r.ThrowTypeError("Cannot convert a BigInt value to a number")
	default:
		prim, err := r.ToPrimitive(v, HintNumber)
		if err != nil {
			return 0, err
		}
		return r.ToNumber(prim)
	}
}

// ToIntegerOrInfinity converts v to an integral number, mapping NaN to 0.
func (r *Realm) ToIntegerOrInfinity(v Value) (float64, error) {
	f, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) {
		return 0, nil
	}
	return math.Trunc(f), nil
}

// ToBoolean never fails.
func ToBoolean(v Value) bool {
	switch v.Type() {
	case TypeUndefined, TypeNull:
		return false
	case TypeBoolean:
		return v.AsBoolean()
	case TypeNumber:
		return v.AsFloat() != 0 && !math.IsNaN(v.AsFloat())
	case TypeString:
		return v.AsString() != ""
	case TypeBigInt:
		return v.AsBigInt().Sign() != 0
	default:
		return true
	}
}

// ToObject wraps primitives in their wrapper objects. Null and undefined
// throw a TypeError.
func (r *Realm) ToObject(v Value) (*GcObject, error) {
	std := r.standard
	switch v.Type() {
	case TypeObject:
		return v.AsObject(), nil
	case TypeUndefined, TypeNull:
		return nil, r.ThrowTypeError("Cannot convert undefined or null to object")
	case TypeBoolean:
		return r.heap.Alloc(NewBooleanObject(v.AsBoolean(), ObjectValue(std.Boolean.Prototype))), nil
	case TypeNumber:
		return r.heap.Alloc(NewNumberObject(v.AsFloat(), ObjectValue(std.Number.Prototype))), nil
	case TypeString:
		return r.heap.Alloc(NewStringObject(v.AsString(), ObjectValue(std.String.Prototype))), nil
	case TypeSymbol:
		return r.heap.Alloc(NewSymbolObject(v.AsSymbol(), ObjectValue(std.Symbol.Prototype))), nil
	default:
		return r.heap.Alloc(NewBigIntObject(v.AsBigInt(), ObjectValue(std.BigInt.Prototype))), nil
	}
}

// StringToNumber implements the StringNumericLiteral grammar: surrounding
// whitespace is ignored, the empty string is 0, and 0x/0o/0b prefixes are
// accepted.
func StringToNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	if len(s) > 2 && s[0] == '0' {
		base := 0
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 0 {
			n, err := strconv.ParseUint(s[2:], base, 64)
			if err != nil {
				return math.NaN()
			}
			return float64(n)
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(c >= '0' && c <= '9' || c == '.' || c == 'e' || c == 'E' || c == '+' || c == '-') {
			return math.NaN()
		}
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f
		}
		return math.NaN()
	}
	return f
}

// UTF16Length returns the length of s in UTF-16 code units.
func UTF16Length(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// UTF16At returns the code unit at index i as a string.
func UTF16At(s string, i int) (string, bool) {
	if i < 0 {
		return "", false
	}
	units := utf16.Encode([]rune(s))
	if i >= len(units) {
		return "", false
	}
	return string(utf16.Decode(units[i : i+1])), true
}
