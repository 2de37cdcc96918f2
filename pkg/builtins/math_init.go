package builtins

import (
	"math"
	"math/rand/v2"

	"jscore/pkg/vm"
)

type MathInitializer struct{}

func (m *MathInitializer) Name() string {
	return "Math"
}

func (m *MathInitializer) Priority() int {
	return PriorityMath
}

func (m *MathInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	b := NewObjectBuilder(realm)

	// Constants
	constants := []struct {
		name  string
		value float64
	}{
		{"E", math.E},
		{"LN10", math.Ln10},
		{"LN2", math.Ln2},
		{"LOG10E", math.Log10E},
		{"LOG2E", math.Log2E},
		{"PI", math.Pi},
		{"SQRT1_2", math.Sqrt2 / 2},
		{"SQRT2", math.Sqrt2},
	}
	for _, c := range constants {
		b.Property(vm.StringKey(c.name), vm.NumberValue(c.value), constantAttribute)
	}

	// Single-argument functions
	unary := []struct {
		name string
		fn   func(float64) float64
	}{
		{"abs", math.Abs},
		{"acos", math.Acos},
		{"asin", math.Asin},
		{"atan", math.Atan},
		{"cbrt", math.Cbrt},
		{"ceil", math.Ceil},
		{"cos", math.Cos},
		{"exp", math.Exp},
		{"floor", math.Floor},
		{"log", math.Log},
		{"log10", math.Log10},
		{"log2", math.Log2},
		{"round", mathRound},
		{"sign", mathSign},
		{"sin", math.Sin},
		{"sqrt", math.Sqrt},
		{"tan", math.Tan},
		{"trunc", math.Trunc},
	}
	for _, u := range unary {
		b.Function(unaryMath(u.fn), u.name, 1)
	}

	b.Function(mathMax, "max", 2).
		Function(mathMin, "min", 2).
		Function(mathPow, "pow", 2).
		Function(mathAtan2, "atan2", 2).
		Function(mathRandom, "random", 0).
		Property(vm.SymbolKey(realm.WellKnownSymbols().ToStringTag), vm.StringValue("Math"), vm.ReadOnly|vm.NonEnumerable|vm.Configurable)

	return "Math", vm.ObjectValue(b.Build()), vm.DefaultAttribute
}

func unaryMath(fn func(float64) float64) vm.NativeFunction {
	return func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		x, err := realm.ToNumber(vm.Arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.NumberValue(fn(x)), nil
	}
}

// mathRound rounds half up, toward +Infinity, and keeps the sign of zero.
func mathRound(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) || x == 0 {
		return x
	}
	if x > -0.5 && x < 0 {
		return math.Copysign(0, -1)
	}
	return math.Floor(x + 0.5)
}

func mathSign(x float64) float64 {
	switch {
	case math.IsNaN(x), x == 0:
		return x
	case x > 0:
		return 1
	default:
		return -1
	}
}

func numberArgs(realm *vm.Realm, args []vm.Value) ([]float64, error) {
	nums := make([]float64, len(args))
	for i, a := range args {
		n, err := realm.ToNumber(a)
		if err != nil {
			return nil, err
		}
		nums[i] = n
	}
	return nums, nil
}

func mathMax(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	nums, err := numberArgs(realm, args)
	if err != nil {
		return vm.Undefined, err
	}
	result := math.Inf(-1)
	for _, n := range nums {
		if math.IsNaN(n) {
			return vm.NaN, nil
		}
		// +0 is larger than -0
		if n > result || (n == 0 && result == 0 && !math.Signbit(n)) {
			result = n
		}
	}
	return vm.NumberValue(result), nil
}

func mathMin(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	nums, err := numberArgs(realm, args)
	if err != nil {
		return vm.Undefined, err
	}
	result := math.Inf(1)
	for _, n := range nums {
		if math.IsNaN(n) {
			return vm.NaN, nil
		}
		if n < result || (n == 0 && result == 0 && math.Signbit(n)) {
			result = n
		}
	}
	return vm.NumberValue(result), nil
}

func mathPow(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	nums, err := numberArgs(realm, []vm.Value{vm.Arg(args, 0), vm.Arg(args, 1)})
	if err != nil {
		return vm.Undefined, err
	}
	base, exp := nums[0], nums[1]
	// Unlike Go, 1 ** NaN and (-1) ** ±Infinity are NaN
	if math.IsNaN(exp) || (math.Abs(base) == 1 && math.IsInf(exp, 0)) {
		return vm.NaN, nil
	}
	return vm.NumberValue(math.Pow(base, exp)), nil
}

func mathAtan2(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	nums, err := numberArgs(realm, []vm.Value{vm.Arg(args, 0), vm.Arg(args, 1)})
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(math.Atan2(nums[0], nums[1])), nil
}

func mathRandom(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.NumberValue(rand.Float64()), nil
}
