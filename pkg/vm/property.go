package vm

// Property is an own property slot: either a data descriptor (value) or an
// accessor descriptor (getter/setter). The Writable bit has no meaning for
// accessors.
type Property struct {
	value     Value
	attribute Attribute
	get       Value
	set       Value
	accessor  bool
}

// DataDescriptor returns a data property holding v.
func DataDescriptor(v Value, attr Attribute) Property {
	return Property{value: v, attribute: attr}
}

// AccessorDescriptor returns an accessor property. get and set are functions
// or undefined.
func AccessorDescriptor(get, set Value, attr Attribute) Property {
	return Property{get: get, set: set, attribute: attr.Without(Writable), accessor: true, value: Undefined}
}

func (p Property) Value() Value         { return p.value }
func (p Property) Attribute() Attribute { return p.attribute }
func (p Property) Getter() Value        { return p.get }
func (p Property) Setter() Value        { return p.set }
func (p Property) IsAccessor() bool     { return p.accessor }
func (p Property) Writable() bool       { return !p.accessor && p.attribute.Writable() }
func (p Property) Enumerable() bool     { return p.attribute.Enumerable() }
func (p Property) Configurable() bool   { return p.attribute.Configurable() }

// trace visits every value the property holds.
func (p Property) trace(visit func(Value)) {
	if p.accessor {
		visit(p.get)
		visit(p.set)
		return
	}
	visit(p.value)
}
