package builtins

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/vm"
)

func callGlobal(t *testing.T, realm *vm.Realm, name string, args ...vm.Value) vm.Value {
	t.Helper()
	v, err := realm.Call(global(t, realm, name), vm.Undefined, args)
	require.NoError(t, err)
	return v
}

func TestParseInt(t *testing.T) {
	realm, _ := newRealm(t)
	tests := []struct {
		input string
		radix vm.Value
		want  float64
	}{
		{"42", vm.Undefined, 42},
		{"  -17px", vm.Undefined, -17},
		{"0x1F", vm.Undefined, 31},
		{"1F", num(16), 31},
		{"0x1F", num(16), 31},
		{"101", num(2), 5},
		{"z", num(36), 35},
		{"12", num(37), math.NaN()},
		{"", vm.Undefined, math.NaN()},
		{"-", vm.Undefined, math.NaN()},
		{" 8", vm.Undefined, 8},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := callGlobal(t, realm, "parseInt", str(tt.input), tt.radix).AsFloat()
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseFloat(t *testing.T) {
	realm, _ := newRealm(t)
	tests := []struct {
		input string
		want  float64
	}{
		{"3.14", 3.14},
		{"  2.5e3kg", 2500},
		{".5", 0.5},
		{"-0.25", -0.25},
		{"1.5e", 1.5},
		{"Infinityx", math.Inf(1)},
		{"-Infinity", math.Inf(-1)},
		{"0x10", 0},
		{"abc", math.NaN()},
		{"", math.NaN()},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := callGlobal(t, realm, "parseFloat", str(tt.input)).AsFloat()
			if math.IsNaN(tt.want) {
				assert.True(t, math.IsNaN(got), "got %v", got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsNaNAndIsFinite(t *testing.T) {
	realm, _ := newRealm(t)
	assert.True(t, callGlobal(t, realm, "isNaN", str("abc")).AsBoolean())
	assert.False(t, callGlobal(t, realm, "isNaN", str("12")).AsBoolean())
	assert.True(t, callGlobal(t, realm, "isFinite", str("12")).AsBoolean())
	assert.False(t, callGlobal(t, realm, "isFinite", num(math.Inf(1))).AsBoolean())

	_, err := realm.Call(global(t, realm, "isNaN"), vm.Undefined, []vm.Value{vm.SymbolValue(vm.NewSymbol("s"))})
	thrown(t, realm, err, "TypeError")
}

func TestGlobalConstants(t *testing.T) {
	realm, _ := newRealm(t)
	assert.True(t, global(t, realm, "undefined").IsUndefined())
	assert.True(t, math.IsNaN(global(t, realm, "NaN").AsFloat()))
	assert.True(t, math.IsInf(global(t, realm, "Infinity").AsFloat(), 1))

	ok, err := realm.Set(vm.ObjectValue(realm.GlobalObject()), vm.StringKey("NaN"), num(1))
	require.NoError(t, err)
	assert.False(t, ok)
}
