package builtins

import (
	"jscore/pkg/vm"
)

type MapInitializer struct{}

func (m *MapInitializer) Name() string {
	return "Map"
}

func (m *MapInitializer) Priority() int {
	return PriorityMap
}

func (m *MapInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	ctor := NewConstructorBuilderWithStandardObject(realm, mapConstructor, realm.StandardObjects().Map).
		Name("Map").
		Length(0).
		Method(mapGet, "get", 1).
		Method(mapSet, "set", 2).
		Method(mapHas, "has", 1).
		Method(mapDelete, "delete", 1).
		Method(mapClear, "clear", 0).
		Method(mapForEach, "forEach", 1).
		Method(mapKeys, "keys", 0).
		Method(mapValues, "values", 0).
		Method(mapEntries, "entries", 0).
		Accessor(vm.StringKey("size"), mapSize, nil, vm.NonEnumerable|vm.Configurable).
		Property(vm.SymbolKey(realm.WellKnownSymbols().ToStringTag), vm.StringValue("Map"), vm.ReadOnly|vm.NonEnumerable|vm.Configurable).
		Build()
	return "Map", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// mapConstructor requires new. An iterable argument is read as an
// array-like of [key, value] entries.
func mapConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !realm.IsConstructCall() {
		return vm.Undefined, realm.ThrowTypeError("Constructor Map requires 'new'")
	}
	data := vm.NewMapData()
	this.AsObject().SetData(data)

	entries, err := listFromArrayLike(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	for _, entry := range entries {
		if !entry.IsObject() {
			return vm.Undefined, realm.ThrowTypeError("Iterator value %s is not an entry object", entry)
		}
		k, err := realm.Get(entry, vm.IndexKey(0))
		if err != nil {
			return vm.Undefined, err
		}
		v, err := realm.Get(entry, vm.IndexKey(1))
		if err != nil {
			return vm.Undefined, err
		}
		data.Set(k, v)
	}
	return this, nil
}

// withMap runs fn on the receiver's map data under an exclusive borrow.
func withMap(realm *vm.Realm, this vm.Value, method string, fn func(m *vm.MapData)) error {
	if this.IsObject() {
		var ok bool
		this.AsObject().BorrowMut(func(o *vm.Object) {
			var m *vm.MapData
			if m, ok = o.AsMap(); ok {
				fn(m)
			}
		})
		if ok {
			return nil
		}
	}
	return realm.ThrowTypeError("Method Map.prototype.%s called on incompatible receiver %s", method, this)
}

func mapGet(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	result := vm.Undefined
	err := withMap(realm, this, "get", func(m *vm.MapData) {
		if v, ok := m.Get(vm.Arg(args, 0)); ok {
			result = v
		}
	})
	return result, err
}

func mapSet(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	err := withMap(realm, this, "set", func(m *vm.MapData) {
		m.Set(vm.Arg(args, 0), vm.Arg(args, 1))
	})
	if err != nil {
		return vm.Undefined, err
	}
	return this, nil
}

func mapHas(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var found bool
	err := withMap(realm, this, "has", func(m *vm.MapData) {
		found = m.Has(vm.Arg(args, 0))
	})
	return vm.BooleanValue(found), err
}

func mapDelete(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var deleted bool
	err := withMap(realm, this, "delete", func(m *vm.MapData) {
		deleted = m.Delete(vm.Arg(args, 0))
	})
	return vm.BooleanValue(deleted), err
}

func mapClear(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return vm.Undefined, withMap(realm, this, "clear", func(m *vm.MapData) { m.Clear() })
}

func mapSize(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	var n int
	err := withMap(realm, this, "size", func(m *vm.MapData) { n = m.Size() })
	return vm.IntegerValue(n), err
}

// mapForEach snapshots the entries first; the callback runs with no borrow
// held and may mutate the map.
func mapForEach(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	callback := vm.Arg(args, 0)
	if !callback.IsCallable() {
		return vm.Undefined, realm.ThrowTypeError("%s is not a function", callback)
	}
	var entries []vm.MapEntry
	if err := withMap(realm, this, "forEach", func(m *vm.MapData) { entries = m.Entries() }); err != nil {
		return vm.Undefined, err
	}
	for _, e := range entries {
		if _, err := realm.Call(callback, vm.Arg(args, 1), []vm.Value{e.Value, e.Key, this}); err != nil {
			return vm.Undefined, err
		}
	}
	return vm.Undefined, nil
}

// mapKeys, mapValues and mapEntries return arrays rather than iterators.
func mapKeys(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return mapProject(realm, this, "keys", func(e vm.MapEntry) vm.Value { return e.Key })
}

func mapValues(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return mapProject(realm, this, "values", func(e vm.MapEntry) vm.Value { return e.Value })
}

func mapEntries(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	return mapProject(realm, this, "entries", func(e vm.MapEntry) vm.Value {
		return vm.ObjectValue(createArrayFromList(realm, []vm.Value{e.Key, e.Value}))
	})
}

func mapProject(realm *vm.Realm, this vm.Value, method string, fn func(vm.MapEntry) vm.Value) (vm.Value, error) {
	var entries []vm.MapEntry
	if err := withMap(realm, this, method, func(m *vm.MapData) { entries = m.Entries() }); err != nil {
		return vm.Undefined, err
	}
	out := make([]vm.Value, len(entries))
	for i, e := range entries {
		out[i] = fn(e)
	}
	return vm.ObjectValue(createArrayFromList(realm, out)), nil
}
