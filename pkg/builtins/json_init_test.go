package builtins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func jsonCall(t *testing.T, realm *vm.Realm, method string, args ...vm.Value) vm.Value {
	t.Helper()
	return invoke(t, realm, global(t, realm, "JSON"), method, args...)
}

func TestJSONParseKeepsMemberOrder(t *testing.T) {
	realm, _ := newRealm(t)
	v := jsonCall(t, realm, "parse", str(`{"z": 1, "a": [true, null, "s"], "m": {"n": -2.5e1}, "z": 3}`))
	require.True(t, v.IsObject())

	keys := invoke(t, realm, global(t, realm, "Object"), "keys", v)
	assert.Equal(t, []string{"z", "a", "m"}, stringsOf(t, realm, keys))

	z, _ := realm.GetV(v, "z")
	assert.Equal(t, 3.0, z.AsFloat())

	a, _ := realm.GetV(v, "a")
	items := elements(t, realm, a)
	require.Len(t, items, 3)
	assert.True(t, items[0].AsBoolean())
	assert.True(t, items[1].IsNull())
	assert.Equal(t, "s", items[2].AsString())
	assert.Equal(t, vm.KindArray, a.AsObject().Kind())

	m, _ := realm.GetV(v, "m")
	n, _ := realm.GetV(m, "n")
	assert.Equal(t, -25.0, n.AsFloat())
}

func TestJSONParseScalars(t *testing.T) {
	realm, _ := newRealm(t)
	assert.Equal(t, 42.0, jsonCall(t, realm, "parse", str(" 42 ")).AsFloat())
	assert.Equal(t, "a\nb", jsonCall(t, realm, "parse", str(`"a\nb"`)).AsString())
	assert.True(t, jsonCall(t, realm, "parse", str("null")).IsNull())
}

func TestJSONParseErrors(t *testing.T) {
	realm, _ := newRealm(t)
	jsonObj := global(t, realm, "JSON")
	for _, text := range []string{"", "{", "[1,", "1 2", "{1: 2}"} {
		_, err := tryInvoke(realm, jsonObj, "parse", str(text))
		thrown(t, realm, err, "SyntaxError")
	}
}

func TestJSONParseReviver(t *testing.T) {
	realm, _ := newRealm(t)
	var seen []string
	reviver := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		key := vm.Arg(args, 0).AsString()
		seen = append(seen, key)
		val := vm.Arg(args, 1)
		if key == "drop" {
			return vm.Undefined, nil
		}
		if val.IsNumber() {
			return vm.NumberValue(val.AsFloat() * 2), nil
		}
		return val, nil
	}, "reviver", 2)

	v := jsonCall(t, realm, "parse", str(`{"a": 1, "drop": 2, "b": [3]}`), vm.ObjectValue(reviver))
	assert.Equal(t, []string{"a", "drop", "0", "b", ""}, seen)

	a, _ := realm.GetV(v, "a")
	assert.Equal(t, 2.0, a.AsFloat())
	assert.False(t, v.AsObject().HasOwn(vm.StringKey("drop")))
	b, _ := realm.GetV(v, "b")
	assert.Equal(t, []string{"6"}, stringsOf(t, realm, b))
}

func TestJSONStringify(t *testing.T) {
	realm, _ := newRealm(t)
	obj := realm.ConstructObject()
	obj.InsertValue(vm.StringKey("b"), num(1), vm.AllAttributes)
	obj.InsertValue(vm.StringKey("a"), str("<x>"), vm.AllAttributes)
	obj.InsertValue(vm.StringKey("skip"), vm.Undefined, vm.AllAttributes)
	obj.InsertValue(vm.StringKey("hidden"), num(0), vm.Writable)
	obj.InsertValue(vm.StringKey("list"), vm.ObjectValue(createArrayFromList(realm, []vm.Value{num(1), vm.Undefined, vm.NaN})), vm.AllAttributes)

	out := jsonCall(t, realm, "stringify", vm.ObjectValue(obj))
	assert.Equal(t, `{"b":1,"a":"<x>","list":[1,null,null]}`, out.AsString())

	assert.True(t, jsonCall(t, realm, "stringify", vm.Undefined).IsUndefined())
	assert.Equal(t, `"q\"uote"`, jsonCall(t, realm, "stringify", str(`q"uote`)).AsString())
	assert.Equal(t, "{}", jsonCall(t, realm, "stringify", vm.ObjectValue(realm.ConstructObject())).AsString())
}

func TestJSONStringifyIndent(t *testing.T) {
	realm, _ := newRealm(t)
	v := jsonCall(t, realm, "parse", str(`{"a":[1,2],"b":{}}`))

	out := jsonCall(t, realm, "stringify", v, vm.Null, num(2))
	assert.Equal(t, "{\n  \"a\": [\n    1,\n    2\n  ],\n  \"b\": {}\n}", out.AsString())

	out = jsonCall(t, realm, "stringify", v, vm.Null, str("--"))
	assert.Equal(t, "{\n--\"a\": [\n----1,\n----2\n--],\n--\"b\": {}\n}", out.AsString())
}

func TestJSONStringifyToJSONAndReplacer(t *testing.T) {
	realm, _ := newRealm(t)
	obj := realm.ConstructObject()
	obj.InsertValue(vm.StringKey("n"), num(1), vm.AllAttributes)
	custom := realm.ConstructObject()
	custom.InsertValue(vm.StringKey("toJSON"), vm.ObjectValue(NewBuiltinFunction(realm, func(vm.Value, []vm.Value, *vm.Realm) (vm.Value, error) {
		return str("custom"), nil
	}, "toJSON", 0)), vm.AllAttributes)
	obj.InsertValue(vm.StringKey("c"), vm.ObjectValue(custom), vm.AllAttributes)

	replacer := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		if v := vm.Arg(args, 1); v.IsNumber() {
			return vm.NumberValue(v.AsFloat() + 10), nil
		}
		return vm.Arg(args, 1), nil
	}, "replacer", 2)

	out := jsonCall(t, realm, "stringify", vm.ObjectValue(obj), vm.ObjectValue(replacer))
	assert.Equal(t, `{"n":11,"c":"custom"}`, out.AsString())
}

func TestJSONStringifyRejectsCyclesAndBigInt(t *testing.T) {
	realm, _ := newRealm(t)
	jsonObj := global(t, realm, "JSON")

	obj := realm.ConstructObject()
	obj.InsertValue(vm.StringKey("self"), vm.ObjectValue(obj), vm.AllAttributes)
	_, err := tryInvoke(realm, jsonObj, "stringify", vm.ObjectValue(obj))
	assert.Contains(t, thrown(t, realm, err, "TypeError"), "circular")

	big, err := realm.Call(global(t, realm, "BigInt"), vm.Undefined, []vm.Value{num(1)})
	require.NoError(t, err)
	_, err = tryInvoke(realm, jsonObj, "stringify", big)
	thrown(t, realm, err, "TypeError")

	// a shared but acyclic reference is fine
	shared := vm.ObjectValue(realm.ConstructObject())
	pair := createArrayFromList(realm, []vm.Value{shared, shared})
	out := jsonCall(t, realm, "stringify", vm.ObjectValue(pair))
	assert.Equal(t, "[{},{}]", out.AsString())
}
