package vm

import (
	"math"
	"strconv"

	"fortio.org/safecast"
)

// KeyKind identifies which of the three property maps a key addresses.
type KeyKind uint8

const (
	KeyKindString KeyKind = iota
	KeyKindSymbol
	KeyKindIndex
)

// maxArrayIndex is the largest valid array index (2^32 - 2).
const maxArrayIndex = math.MaxUint32 - 1

// PropertyKey is a property name: a string, a symbol or an array index.
// Construct keys with StringKey, SymbolKey or IndexKey so that canonical
// index spellings always land in the index map.
type PropertyKey struct {
	kind  KeyKind
	name  string
	sym   *Symbol
	index uint32
}

// StringKey returns the key for s. Canonical array-index spellings
// ("0", "42", but not "042" or "-1") become index keys.
func StringKey(s string) PropertyKey {
	if idx, ok := tryParseArrayIndex(s); ok {
		return PropertyKey{kind: KeyKindIndex, index: idx}
	}
	return PropertyKey{kind: KeyKindString, name: s}
}

func SymbolKey(sym *Symbol) PropertyKey {
	return PropertyKey{kind: KeyKindSymbol, sym: sym}
}

func IndexKey(idx uint32) PropertyKey {
	return PropertyKey{kind: KeyKindIndex, index: idx}
}

// IntKey returns the key for a non-negative int, falling back to the string
// form when n is outside the index range.
func IntKey(n int) PropertyKey {
	if idx, err := safecast.Conv[uint32](n); err == nil && idx <= maxArrayIndex {
		return IndexKey(idx)
	}
	return PropertyKey{kind: KeyKindString, name: strconv.Itoa(n)}
}

func (k PropertyKey) Kind() KeyKind   { return k.kind }
func (k PropertyKey) IsString() bool  { return k.kind == KeyKindString }
func (k PropertyKey) IsSymbol() bool  { return k.kind == KeyKindSymbol }
func (k PropertyKey) IsIndex() bool   { return k.kind == KeyKindIndex }
func (k PropertyKey) Name() string    { return k.name }
func (k PropertyKey) Symbol() *Symbol { return k.sym }
func (k PropertyKey) Index() uint32   { return k.index }

// String returns the display form of the key.
func (k PropertyKey) String() string {
	switch k.kind {
	case KeyKindSymbol:
		return k.sym.String()
	case KeyKindIndex:
		return strconv.FormatUint(uint64(k.index), 10)
	default:
		return k.name
	}
}

// ToValue converts the key back into a language value.
func (k PropertyKey) ToValue() Value {
	switch k.kind {
	case KeyKindSymbol:
		return SymbolValue(k.sym)
	case KeyKindIndex:
		return StringValue(k.String())
	default:
		return StringValue(k.name)
	}
}

// ToPropertyKey converts a value to a property key. Integral numbers in
// index range skip the string round trip.
func ToPropertyKey(realm *Realm, v Value) (PropertyKey, error) {
	switch v.Type() {
	case TypeSymbol:
		return SymbolKey(v.AsSymbol()), nil
	case TypeNumber:
		f := v.AsFloat()
		if f >= 0 && f <= maxArrayIndex && f == math.Trunc(f) {
			return IndexKey(uint32(f)), nil
		}
	case TypeString:
		return StringKey(v.AsString()), nil
	}
	prim, err := realm.ToPrimitive(v, HintString)
	if err != nil {
		return PropertyKey{}, err
	}
	if prim.Type() == TypeSymbol {
		return SymbolKey(prim.AsSymbol()), nil
	}
	s, err := realm.ToString(prim)
	if err != nil {
		return PropertyKey{}, err
	}
	return StringKey(s), nil
}

// tryParseArrayIndex checks whether key is the canonical spelling of an
// array index.
func tryParseArrayIndex(key string) (uint32, bool) {
	if key == "" || len(key) > 10 {
		return 0, false
	}
	// Leading zeros not allowed (except "0" itself)
	if len(key) > 1 && key[0] == '0' {
		return 0, false
	}
	var idx uint64
	for i := 0; i < len(key); i++ {
		ch := key[i]
		if ch < '0' || ch > '9' {
			return 0, false
		}
		idx = idx*10 + uint64(ch-'0')
	}
	if idx > maxArrayIndex {
		return 0, false
	}
	return uint32(idx), true
}
