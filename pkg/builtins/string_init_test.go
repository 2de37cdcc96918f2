package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func TestStringConstructor(t *testing.T) {
	realm, _ := newRealm(t)
	ctor := global(t, realm, "String")

	v, err := realm.Call(ctor, vm.Undefined, []vm.Value{num(12)})
	require.NoError(t, err)
	assert.Equal(t, "12", v.AsString())

	v, err = realm.Call(ctor, vm.Undefined, nil)
	require.NoError(t, err)
	assert.Equal(t, "", v.AsString())

	v, err = realm.Call(ctor, vm.Undefined, []vm.Value{vm.SymbolValue(vm.NewSymbol("tag"))})
	require.NoError(t, err)
	assert.Equal(t, "Symbol(tag)", v.AsString())

	_, err = realm.Construct(ctor, []vm.Value{vm.SymbolValue(vm.NewSymbol("tag"))})
	thrown(t, realm, err, "TypeError")

	wrapped := construct(t, realm, "String", str("héllo😀"))
	assert.Equal(t, vm.KindString, wrapped.AsObject().Kind())
	length, ok := wrapped.AsObject().GetOwn(vm.StringKey("length"))
	require.True(t, ok)
	assert.Equal(t, 7.0, length.Value().AsFloat())
	assert.Equal(t, "héllo😀", invoke(t, realm, wrapped, "valueOf").AsString())
}

func TestStringUTF16Positions(t *testing.T) {
	realm, _ := newRealm(t)
	s := str("a😀b")

	assert.Equal(t, "b", invoke(t, realm, s, "charAt", num(3)).AsString())
	assert.Equal(t, "", invoke(t, realm, s, "charAt", num(9)).AsString())
	assert.Equal(t, float64(0xD83D), invoke(t, realm, s, "charCodeAt", num(1)).AsFloat())
	assert.True(t, math.IsNaN(invoke(t, realm, s, "charCodeAt", num(9)).AsFloat()))
	assert.Equal(t, 3.0, invoke(t, realm, s, "indexOf", str("b")).AsFloat())
	assert.Equal(t, "😀", invoke(t, realm, s, "slice", num(1), num(3)).AsString())
	assert.Equal(t, "b", invoke(t, realm, s, "slice", num(-1)).AsString())
	assert.Equal(t, "a", invoke(t, realm, s, "substring", num(1), num(0)).AsString())
}

func TestStringSearch(t *testing.T) {
	realm, _ := newRealm(t)
	s := str("hello world")

	assert.Equal(t, -1.0, invoke(t, realm, s, "indexOf", str("x")).AsFloat())
	assert.Equal(t, 7.0, invoke(t, realm, s, "indexOf", str("o"), num(5)).AsFloat())
	assert.True(t, invoke(t, realm, s, "includes", str("lo w")).AsBoolean())
	assert.True(t, invoke(t, realm, s, "startsWith", str("world"), num(6)).AsBoolean())
	assert.True(t, invoke(t, realm, s, "endsWith", str("hello"), num(5)).AsBoolean())
	assert.False(t, invoke(t, realm, s, "endsWith", str("hello")).AsBoolean())
}

func TestStringSplit(t *testing.T) {
	realm, _ := newRealm(t)
	assert.Equal(t, []string{"a", "b", "", "c"}, stringsOf(t, realm, invoke(t, realm, str("a,b,,c"), "split", str(","))))
	assert.Equal(t, []string{"a", "b"}, stringsOf(t, realm, invoke(t, realm, str("a,b,,c"), "split", str(","), num(2))))
	assert.Equal(t, []string{"x", "y"}, stringsOf(t, realm, invoke(t, realm, str("xy"), "split", str(""))))
	assert.Equal(t, []string{"xy"}, stringsOf(t, realm, invoke(t, realm, str("xy"), "split")))
	assert.Empty(t, elements(t, realm, invoke(t, realm, str("xy"), "split", str(","), num(0))))
}

func TestStringNormalize(t *testing.T) {
	realm, _ := newRealm(t)
	composed := "\u00e9"
	decomposed := "e\u0301"

	assert.Equal(t, composed, invoke(t, realm, str(decomposed), "normalize").AsString())
	assert.Equal(t, decomposed, invoke(t, realm, str(composed), "normalize", str("NFD")).AsString())
	assert.Equal(t, "fi", invoke(t, realm, str("\ufb01"), "normalize", str("NFKC")).AsString())

	_, err := tryInvoke(realm, str("x"), "normalize", str("NFX"))
	thrown(t, realm, err, "RangeError")
}

func TestStringCase(t *testing.T) {
	realm, _ := newRealm(t)
	assert.Equal(t, "STRASSE", invoke(t, realm, str("straße"), "toUpperCase").AsString())
	assert.Equal(t, "abc", invoke(t, realm, str("AbC"), "toLowerCase").AsString())
	assert.Equal(t, "İ", invoke(t, realm, str("i"), "toLocaleUpperCase", str("tr")).AsString())

	_, err := tryInvoke(realm, str("i"), "toLocaleUpperCase", str("not a locale!"))
	thrown(t, realm, err, "RangeError")
}

func TestStringMisc(t *testing.T) {
	realm, _ := newRealm(t)
	assert.Equal(t, "abab", invoke(t, realm, str("ab"), "repeat", num(2)).AsString())
	_, err := tryInvoke(realm, str("ab"), "repeat", num(-1))
	thrown(t, realm, err, "RangeError")

	assert.Equal(t, "x", invoke(t, realm, str(" \t\nx "), "trim").AsString())
	assert.Equal(t, "a1true", invoke(t, realm, str("a"), "concat", num(1), vm.True).AsString())

	ctor := global(t, realm, "String")
	assert.Equal(t, "AB", invoke(t, realm, ctor, "fromCharCode", num(65), num(66)).AsString())

	toString, err := realm.GetV(vm.ObjectValue(realm.StandardObjects().String.Prototype), "toString")
	require.NoError(t, err)
	_, err = realm.Call(toString, num(1), nil)
	thrown(t, realm, err, "TypeError")

	_, err = realm.Call(toString, vm.Undefined, nil)
	thrown(t, realm, err, "TypeError")
}
