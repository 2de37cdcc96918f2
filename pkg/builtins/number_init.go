package builtins

import (
	"math"
	"strconv"
	"strings"

	"jscore/pkg/vm"
)

const maxSafeInteger = 1<<53 - 1

type NumberInitializer struct{}

func (n *NumberInitializer) Name() string {
	return "Number"
}

func (n *NumberInitializer) Priority() int {
	return PriorityNumber
}

func (n *NumberInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().Number
	std.Prototype.SetData(&vm.NumberData{Value: 0})

	ctor := NewConstructorBuilderWithStandardObject(realm, numberConstructor, std).
		Name("Number").
		Length(1).
		Method(numberToString, "toString", 1).
		Method(numberToFixed, "toFixed", 1).
		Method(numberValueOf, "valueOf", 0).
		StaticProperty(vm.StringKey("MAX_SAFE_INTEGER"), vm.NumberValue(maxSafeInteger), constantAttribute).
		StaticProperty(vm.StringKey("MIN_SAFE_INTEGER"), vm.NumberValue(-maxSafeInteger), constantAttribute).
		StaticProperty(vm.StringKey("MAX_VALUE"), vm.NumberValue(math.MaxFloat64), constantAttribute).
		StaticProperty(vm.StringKey("MIN_VALUE"), vm.NumberValue(math.SmallestNonzeroFloat64), constantAttribute).
		StaticProperty(vm.StringKey("EPSILON"), vm.NumberValue(math.Nextafter(1, 2)-1), constantAttribute).
		StaticProperty(vm.StringKey("POSITIVE_INFINITY"), vm.NumberValue(math.Inf(1)), constantAttribute).
		StaticProperty(vm.StringKey("NEGATIVE_INFINITY"), vm.NumberValue(math.Inf(-1)), constantAttribute).
		StaticProperty(vm.StringKey("NaN"), vm.NaN, constantAttribute).
		StaticMethod(numberIsFinite, "isFinite", 1).
		StaticMethod(numberIsInteger, "isInteger", 1).
		StaticMethod(numberIsNaN, "isNaN", 1).
		StaticMethod(numberIsSafeInteger, "isSafeInteger", 1).
		StaticMethod(parseFloat, "parseFloat", 1).
		StaticMethod(parseInt, "parseInt", 2).
		Build()
	return "Number", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// numberConstructor converts when called and wraps when constructed. A
// BigInt argument converts by value.
func numberConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n := 0.0
	if len(args) > 0 {
		prim, err := realm.ToPrimitive(args[0], vm.HintNumber)
		if err != nil {
			return vm.Undefined, err
		}
		if prim.IsBigInt() {
			n, _ = prim.AsBigInt().Float64()
		} else if n, err = realm.ToNumber(prim); err != nil {
			return vm.Undefined, err
		}
	}
	if !realm.IsConstructCall() {
		return vm.NumberValue(n), nil
	}
	this.AsObject().SetData(&vm.NumberData{Value: n})
	return this, nil
}

func thisNumberValue(realm *vm.Realm, this vm.Value, method string) (float64, error) {
	if this.IsNumber() {
		return this.AsFloat(), nil
	}
	if this.IsObject() {
		var n float64
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { n, ok = o.AsNumber() })
		if ok {
			return n, nil
		}
	}
	return 0, realm.ThrowTypeError("Number.prototype.%s requires that 'this' be a Number", method)
}

func numberToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	x, err := thisNumberValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	radix, err := radixArg(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	if radix == 10 || math.IsNaN(x) || math.IsInf(x, 0) {
		return vm.StringValue(vm.NumberToString(x)), nil
	}
	return vm.StringValue(formatRadix(x, radix)), nil
}

// formatRadix renders x in the given base, with up to 52 fraction digits.
func formatRadix(x float64, radix int) string {
	neg := x < 0
	x = math.Abs(x)
	whole := math.Floor(x)
	frac := x - whole

	var sb strings.Builder
	if neg {
		sb.WriteByte('-')
	}
	if whole <= maxSafeInteger {
		sb.WriteString(strconv.FormatInt(int64(whole), radix))
	} else {
		var digits []byte
		for whole >= 1 {
			d := math.Mod(whole, float64(radix))
			digits = append(digits, strconv.FormatInt(int64(d), radix)[0])
			whole = math.Floor(whole / float64(radix))
		}
		for i := len(digits) - 1; i >= 0; i-- {
			sb.WriteByte(digits[i])
		}
	}
	if frac > 0 {
		sb.WriteByte('.')
		for i := 0; i < 52 && frac > 0; i++ {
			frac *= float64(radix)
			d := int64(frac)
			sb.WriteString(strconv.FormatInt(d, radix))
			frac -= float64(d)
		}
	}
	return sb.String()
}

func numberToFixed(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	x, err := thisNumberValue(realm, this, "toFixed")
	if err != nil {
		return vm.Undefined, err
	}
	digits, err := realm.ToIntegerOrInfinity(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	if digits < 0 || digits > 100 {
		return vm.Undefined, realm.ThrowRangeError("toFixed() digits argument must be between 0 and 100")
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.Abs(x) >= 1e21 {
		return vm.StringValue(vm.NumberToString(x)), nil
	}
	return vm.StringValue(strconv.FormatFloat(x, 'f', int(digits), 64)), nil
}

func numberValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	x, err := thisNumberValue(realm, this, "valueOf")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.NumberValue(x), nil
}

func numberIsFinite(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(v.IsNumber() && !math.IsNaN(v.AsFloat()) && !math.IsInf(v.AsFloat(), 0)), nil
}

func numberIsInteger(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(isIntegral(v)), nil
}

func numberIsNaN(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(v.IsNumber() && math.IsNaN(v.AsFloat())), nil
}

func numberIsSafeInteger(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	return vm.BooleanValue(isIntegral(v) && math.Abs(v.AsFloat()) <= maxSafeInteger), nil
}

func isIntegral(v vm.Value) bool {
	if !v.IsNumber() {
		return false
	}
	f := v.AsFloat()
	return !math.IsNaN(f) && !math.IsInf(f, 0) && f == math.Trunc(f)
}
