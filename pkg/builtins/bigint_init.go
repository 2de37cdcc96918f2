package builtins

import (
	"math"
	"math/big"
	"strings"

	"jscore/pkg/vm"
)

type BigIntInitializer struct{}

func (b *BigIntInitializer) Name() string {
	return "BigInt"
}

func (b *BigIntInitializer) Priority() int {
	return PriorityBigInt
}

func (b *BigIntInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	ctor := NewConstructorBuilderWithStandardObject(realm, bigintConstructor, realm.StandardObjects().BigInt).
		Name("BigInt").
		Length(1).
		Constructable(false).
		Method(bigintToString, "toString", 0).
		Method(bigintValueOf, "valueOf", 0).
		Property(vm.SymbolKey(realm.WellKnownSymbols().ToStringTag), vm.StringValue("BigInt"), vm.ReadOnly|vm.NonEnumerable|vm.Configurable).
		Build()
	return "BigInt", vm.ObjectValue(ctor), vm.DefaultAttribute
}

func bigintConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	prim, err := realm.ToPrimitive(vm.Arg(args, 0), vm.HintNumber)
	if err != nil {
		return vm.Undefined, err
	}
	if prim.IsNumber() {
		f := prim.AsFloat()
		if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
			return vm.Undefined, realm.ThrowRangeError("The number %s cannot be converted to a BigInt because it is not an integer", vm.NumberToString(f))
		}
		n, _ := big.NewFloat(f).Int(nil)
		return vm.BigIntValue(n), nil
	}
	n, err := toBigInt(realm, prim)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BigIntValue(n), nil
}

// toBigInt converts a primitive other than a number.
func toBigInt(realm *vm.Realm, v vm.Value) (*big.Int, error) {
	switch v.Type() {
	case vm.TypeBigInt:
		return v.AsBigInt(), nil
	case vm.TypeBoolean:
		if v.AsBoolean() {
			return big.NewInt(1), nil
		}
		return big.NewInt(0), nil
	case vm.TypeString:
		n, ok := stringToBigInt(v.AsString())
		if !ok {
			return nil, realm.ThrowSyntaxError("Cannot convert %s to a BigInt", v.AsString())
		}
		return n, nil
	}
	return nil, realm.ThrowTypeError("Cannot convert %s to a BigInt", v)
}

func stringToBigInt(s string) (*big.Int, bool) {
	s = strings.Trim(s, jsWhitespace)
	if s == "" {
		return new(big.Int), true
	}
	if strings.Contains(s, "_") {
		return nil, false
	}
	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'o', 'O':
			base = 8
		case 'b', 'B':
			base = 2
		}
		if base != 10 {
			s = s[2:]
		}
	}
	n, ok := new(big.Int).SetString(s, base)
	return n, ok
}

func thisBigIntValue(realm *vm.Realm, this vm.Value, method string) (*big.Int, error) {
	if this.IsBigInt() {
		return this.AsBigInt(), nil
	}
	if this.IsObject() {
		var n *big.Int
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { n, ok = o.AsBigInt() })
		if ok {
			return n, nil
		}
	}
	return nil, realm.ThrowTypeError("BigInt.prototype.%s requires that 'this' be a BigInt", method)
}

func bigintToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := thisBigIntValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	radix, err := radixArg(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(n.Text(radix)), nil
}

func bigintValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	n, err := thisBigIntValue(realm, this, "valueOf")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BigIntValue(n), nil
}

// radixArg validates an optional radix argument, defaulting to 10.
func radixArg(realm *vm.Realm, v vm.Value) (int, error) {
	if v.IsUndefined() {
		return 10, nil
	}
	r, err := realm.ToIntegerOrInfinity(v)
	if err != nil {
		return 0, err
	}
	if r < 2 || r > 36 {
		return 0, realm.ThrowRangeError("toString() radix must be between 2 and 36")
	}
	return int(r), nil
}
