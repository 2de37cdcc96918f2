package builtins

import (
	"jscore/pkg/vm"
)

type SymbolInitializer struct{}

func (s *SymbolInitializer) Name() string {
	return "Symbol"
}

func (s *SymbolInitializer) Priority() int {
	return PrioritySymbol
}

func (s *SymbolInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	symbols := realm.WellKnownSymbols()
	b := NewConstructorBuilderWithStandardObject(realm, symbolConstructor, realm.StandardObjects().Symbol).
		Name("Symbol").
		Length(0).
		Constructable(false).
		Method(symbolToString, "toString", 0).
		Method(symbolValueOf, "valueOf", 0).
		SymbolMethod(symbolValueOf, symbols.ToPrimitive, 1).
		Accessor(vm.StringKey("description"), symbolDescription, nil, vm.NonEnumerable|vm.Configurable).
		Property(vm.SymbolKey(symbols.ToStringTag), vm.StringValue("Symbol"), vm.ReadOnly|vm.NonEnumerable|vm.Configurable).
		StaticMethod(symbolFor, "for", 1).
		StaticMethod(symbolKeyFor, "keyFor", 1)

	symbols.Each(func(name string, sym *vm.Symbol) {
		b.StaticProperty(vm.StringKey(name), vm.SymbolValue(sym), constantAttribute)
	})
	return "Symbol", vm.ObjectValue(b.Build()), vm.DefaultAttribute
}

func symbolConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	desc := vm.Arg(args, 0)
	if desc.IsUndefined() {
		return vm.SymbolValue(vm.NewAnonymousSymbol()), nil
	}
	s, err := realm.ToString(desc)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.SymbolValue(vm.NewSymbol(s)), nil
}

func thisSymbolValue(realm *vm.Realm, this vm.Value, method string) (*vm.Symbol, error) {
	if this.IsSymbol() {
		return this.AsSymbol(), nil
	}
	if this.IsObject() {
		var sym *vm.Symbol
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { sym, ok = o.AsSymbol() })
		if ok {
			return sym, nil
		}
	}
	return nil, realm.ThrowTypeError("Symbol.prototype.%s requires that 'this' be a Symbol", method)
}

func symbolToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	sym, err := thisSymbolValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(sym.String()), nil
}

func symbolValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	sym, err := thisSymbolValue(realm, this, "valueOf")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.SymbolValue(sym), nil
}

func symbolDescription(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	sym, err := thisSymbolValue(realm, this, "description")
	if err != nil {
		return vm.Undefined, err
	}
	if desc, ok := sym.Description(); ok {
		return vm.StringValue(desc), nil
	}
	return vm.Undefined, nil
}

func symbolFor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	key, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.SymbolValue(realm.SymbolFor(key)), nil
}

func symbolKeyFor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	v := vm.Arg(args, 0)
	if !v.IsSymbol() {
		return vm.Undefined, realm.ThrowTypeError("%s is not a symbol", v)
	}
	if key, ok := realm.SymbolKeyFor(v.AsSymbol()); ok {
		return vm.StringValue(key), nil
	}
	return vm.Undefined, nil
}
