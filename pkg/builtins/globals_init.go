package builtins

import (
	"math"
	"strconv"
	"strings"

	"jscore/pkg/vm"
)

// constantAttribute is used for the value properties of the global object.
const constantAttribute = vm.ReadOnly | vm.NonEnumerable | vm.Permanent

// jsWhitespace lists the ECMAScript WhiteSpace and LineTerminator code points.
const jsWhitespace = " \t\n\r\v\f\u00A0\u1680\u2000\u2001\u2002\u2003\u2004\u2005\u2006\u2007\u2008\u2009\u200A\u2028\u2029\u202F\u205F\u3000\uFEFF"

type UndefinedInitializer struct{}

func (g *UndefinedInitializer) Name() string  { return "undefined" }
func (g *UndefinedInitializer) Priority() int { return PriorityGlobals }
func (g *UndefinedInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "undefined", vm.Undefined, constantAttribute
}

type InfinityInitializer struct{}

func (g *InfinityInitializer) Name() string  { return "Infinity" }
func (g *InfinityInitializer) Priority() int { return PriorityGlobals }
func (g *InfinityInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "Infinity", vm.NumberValue(math.Inf(1)), constantAttribute
}

type NaNInitializer struct{}

func (g *NaNInitializer) Name() string  { return "NaN" }
func (g *NaNInitializer) Priority() int { return PriorityGlobals }
func (g *NaNInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "NaN", vm.NaN, constantAttribute
}

type GlobalThisInitializer struct{}

func (g *GlobalThisInitializer) Name() string  { return "globalThis" }
func (g *GlobalThisInitializer) Priority() int { return PriorityGlobals }
func (g *GlobalThisInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "globalThis", vm.ObjectValue(realm.GlobalObject()), vm.DefaultAttribute
}

type IsNaNInitializer struct{}

func (g *IsNaNInitializer) Name() string  { return "isNaN" }
func (g *IsNaNInitializer) Priority() int { return PriorityGlobalFunctions }
func (g *IsNaNInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	fn := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		n, err := realm.ToNumber(vm.Arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(math.IsNaN(n)), nil
	}, "isNaN", 1)
	return "isNaN", vm.ObjectValue(fn), vm.DefaultAttribute
}

type IsFiniteInitializer struct{}

func (g *IsFiniteInitializer) Name() string  { return "isFinite" }
func (g *IsFiniteInitializer) Priority() int { return PriorityGlobalFunctions }
func (g *IsFiniteInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	fn := NewBuiltinFunction(realm, func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		n, err := realm.ToNumber(vm.Arg(args, 0))
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(!math.IsNaN(n) && !math.IsInf(n, 0)), nil
	}, "isFinite", 1)
	return "isFinite", vm.ObjectValue(fn), vm.DefaultAttribute
}

type ParseFloatInitializer struct{}

func (g *ParseFloatInitializer) Name() string  { return "parseFloat" }
func (g *ParseFloatInitializer) Priority() int { return PriorityGlobalFunctions }
func (g *ParseFloatInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "parseFloat", vm.ObjectValue(NewBuiltinFunction(realm, parseFloat, "parseFloat", 1)), vm.DefaultAttribute
}

type ParseIntInitializer struct{}

func (g *ParseIntInitializer) Name() string  { return "parseInt" }
func (g *ParseIntInitializer) Priority() int { return PriorityGlobalFunctions }
func (g *ParseIntInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return "parseInt", vm.ObjectValue(NewBuiltinFunction(realm, parseInt, "parseInt", 2)), vm.DefaultAttribute
}

func parseFloat(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	str, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	str = strings.TrimLeft(str, jsWhitespace)
	if str == "" {
		return vm.NaN, nil
	}

	switch {
	case strings.HasPrefix(str, "Infinity"), strings.HasPrefix(str, "+Infinity"):
		return vm.NumberValue(math.Inf(1)), nil
	case strings.HasPrefix(str, "-Infinity"):
		return vm.NumberValue(math.Inf(-1)), nil
	}

	// Find the longest valid float prefix
	for i := len(str); i > 0; i-- {
		prefix := str[:i]
		if strings.ContainsAny(prefix, "xXnNiI_") {
			continue
		}
		if result, err := strconv.ParseFloat(prefix, 64); err == nil {
			return vm.NumberValue(result), nil
		}
	}
	return vm.NaN, nil
}

func parseInt(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	str, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	str = strings.TrimLeft(str, jsWhitespace)

	sign := 1.0
	if strings.HasPrefix(str, "-") {
		sign = -1
		str = str[1:]
	} else if strings.HasPrefix(str, "+") {
		str = str[1:]
	}

	radixNum, err := realm.ToIntegerOrInfinity(vm.Arg(args, 1))
	if err != nil {
		return vm.Undefined, err
	}
	var radix int64
	if !math.IsInf(radixNum, 0) {
		// ToInt32 wraps to 32-bit signed integer range
		radix = int64(int32(int64(radixNum)))
	}

	stripPrefix := false
	switch {
	case radix == 0:
		radix = 10
		stripPrefix = true
	case radix < 2 || radix > 36:
		return vm.NaN, nil
	case radix == 16:
		stripPrefix = true
	}
	if stripPrefix && (strings.HasPrefix(str, "0x") || strings.HasPrefix(str, "0X")) {
		str = str[2:]
		radix = 16
	}

	// Accumulate the longest run of valid digits
	result, digits := 0.0, 0
	for _, ch := range str {
		d := digitValue(ch)
		if d < 0 || int64(d) >= radix {
			break
		}
		result = result*float64(radix) + float64(d)
		digits++
	}
	if digits == 0 {
		return vm.NaN, nil
	}
	return vm.NumberValue(sign * result), nil
}

func digitValue(ch rune) int {
	switch {
	case ch >= '0' && ch <= '9':
		return int(ch - '0')
	case ch >= 'a' && ch <= 'z':
		return int(ch-'a') + 10
	case ch >= 'A' && ch <= 'Z':
		return int(ch-'A') + 10
	default:
		return -1
	}
}
