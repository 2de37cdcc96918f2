package builtins

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

// newRealm returns an initialized realm whose console output is captured.
func newRealm(t *testing.T) (*vm.Realm, *bytes.Buffer) {
	t.Helper()
	out := &bytes.Buffer{}
	realm := vm.NewRealmWithOutput(out)
	Initialize(realm)
	return realm, out
}

func global(t *testing.T, realm *vm.Realm, name string) vm.Value {
	t.Helper()
	v, err := realm.GetV(vm.ObjectValue(realm.GlobalObject()), name)
	require.NoError(t, err)
	return v
}

// invoke calls target[name](args...) with target as the receiver.
func invoke(t *testing.T, realm *vm.Realm, target vm.Value, name string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := tryInvoke(realm, target, name, args...)
	require.NoError(t, err)
	return v
}

func tryInvoke(realm *vm.Realm, target vm.Value, name string, args ...vm.Value) (vm.Value, error) {
	fn, err := realm.GetV(target, name)
	if err != nil {
		return vm.Undefined, err
	}
	return realm.Call(fn, target, args)
}

// construct runs `new <global name>(args...)`. Error constructors deliver
// their result through the exception channel, which is unwrapped here.
func construct(t *testing.T, realm *vm.Realm, name string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := realm.Construct(global(t, realm, name), args)
	if exc, ok := vm.AsException(err); ok {
		return exc
	}
	require.NoError(t, err)
	return v
}

// thrown asserts err is a language exception holding an error object
// created by the named constructor, and returns its message.
func thrown(t *testing.T, realm *vm.Realm, err error, ctorName string) string {
	t.Helper()
	exc, ok := vm.AsException(err)
	require.True(t, ok, "expected an exception, got %v", err)
	require.True(t, exc.IsObject())
	proto := global(t, realm, ctorName)
	protoObj, err := realm.GetV(proto, "prototype")
	require.NoError(t, err)
	require.Same(t, protoObj.AsObject(), exc.AsObject().Prototype().AsObject())
	msg, err := realm.GetV(exc, "message")
	require.NoError(t, err)
	return msg.AsString()
}

func str(s string) vm.Value { return vm.StringValue(s) }

func num(n float64) vm.Value { return vm.NumberValue(n) }

func elements(t *testing.T, realm *vm.Realm, arr vm.Value) []vm.Value {
	t.Helper()
	n, err := lengthOf(realm, arr)
	require.NoError(t, err)
	out := make([]vm.Value, n)
	for i := range out {
		out[i], err = realm.Get(arr, vm.IntKey(i))
		require.NoError(t, err)
	}
	return out
}

func stringsOf(t *testing.T, realm *vm.Realm, arr vm.Value) []string {
	t.Helper()
	var out []string
	for _, v := range elements(t, realm, arr) {
		s, err := realm.ToString(v)
		require.NoError(t, err)
		out = append(out, s)
	}
	return out
}
