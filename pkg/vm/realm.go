package vm

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"fortio.org/safecast"
	"github.com/untillpro/goutils/logger"

	"jscore/pkg/errors"
)

var realmCounter atomic.Int64

// Realm is an isolated execution context: a heap, a global object, the
// standard constructor pairs and the well-known symbols.
type Realm struct {
	id       int64
	heap     *Heap
	global   *GcObject
	standard *StandardObjects
	symbols  *WellKnownSymbols
	registry map[string]*Symbol // Symbol.for
	out      io.Writer

	// newTarget is the constructor of the innermost native body running
	// under Construct, undefined while a plain call runs.
	newTarget Value
}

// NewRealm creates a realm writing console output to stdout.
func NewRealm() *Realm {
	return NewRealmWithOutput(os.Stdout)
}

// NewRealmWithOutput creates a realm whose console output goes to w. Every
// standard pair and the global object are allocated up front; their
// contents are filled in by the built-in initializers.
func NewRealmWithOutput(w io.Writer) *Realm {
	r := &Realm{
		id:       realmCounter.Add(1),
		heap:     NewHeap(256),
		symbols:  newWellKnownSymbols(),
		registry:  make(map[string]*Symbol),
		out:       w,
		newTarget: Undefined,
	}
	r.standard = newStandardObjects(r.heap)
	r.global = r.heap.Alloc(NewObjectWithPrototype(ObjectValue(r.standard.Object.Prototype), &GlobalData{}))
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("realm %d: pre-allocated %d objects", r.id, r.heap.Len()))
	}
	return r
}

func (r *Realm) ID() int64                           { return r.id }
func (r *Realm) Heap() *Heap                         { return r.heap }
func (r *Realm) GlobalObject() *GcObject             { return r.global }
func (r *Realm) StandardObjects() *StandardObjects   { return r.standard }
func (r *Realm) WellKnownSymbols() *WellKnownSymbols { return r.symbols }
func (r *Realm) Output() io.Writer                   { return r.out }
func (r *Realm) SetOutput(w io.Writer)               { r.out = w }

// Alloc moves o into the realm's heap.
func (r *Realm) Alloc(o *Object) *GcObject {
	return r.heap.Alloc(o)
}

// ConstructObject allocates an ordinary object inheriting from
// Object.prototype.
func (r *Realm) ConstructObject() *GcObject {
	return r.heap.Alloc(NewObjectWithPrototype(ObjectValue(r.standard.Object.Prototype), &OrdinaryData{}))
}

// SymbolFor returns the registry symbol for key, creating it on first use.
func (r *Realm) SymbolFor(key string) *Symbol {
	if sym, ok := r.registry[key]; ok {
		return sym
	}
	sym := NewSymbol(key)
	r.registry[key] = sym
	return sym
}

// SymbolKeyFor returns the registry key of sym, if it is registered.
func (r *Realm) SymbolKeyFor(sym *Symbol) (string, bool) {
	if desc, ok := sym.Description(); ok && r.registry[desc] == sym {
		return desc, true
	}
	return "", false
}

// Roots returns the values that keep the realm's intrinsics alive.
func (r *Realm) Roots() []Value {
	roots := []Value{ObjectValue(r.global)}
	r.standard.Each(func(_ string, sc *StandardConstructor) {
		roots = append(roots, ObjectValue(sc.Constructor), ObjectValue(sc.Prototype))
	})
	return roots
}

// Collect frees every object not reachable from the realm roots or extra.
func (r *Realm) Collect(extra ...Value) int {
	return r.heap.Collect(append(r.Roots(), extra...)...)
}

// --- Property access ---

// Get reads key from target, walking the prototype chain. Getters are
// invoked with target as receiver and with no borrow held, so a getter may
// freely mutate its receiver.
func (r *Realm) Get(target Value, key PropertyKey) (Value, error) {
	obj, err := r.ToObject(target)
	if err != nil {
		return Undefined, err
	}
	for o := obj; o != nil; {
		if v, ok := stringIndexedChar(o, key); ok {
			return v, nil
		}
		p, ok := o.GetOwn(key)
		if ok {
			if !p.IsAccessor() {
				return p.Value(), nil
			}
			if !p.Getter().IsCallable() {
				return Undefined, nil
			}
			return r.Call(p.Getter(), target, nil)
		}
		proto := o.Prototype()
		if !proto.IsObject() {
			break
		}
		o = proto.AsObject()
	}
	return Undefined, nil
}

// GetV is Get with a string key.
func (r *Realm) GetV(target Value, name string) (Value, error) {
	return r.Get(target, StringKey(name))
}

// HasProperty reports whether key is found on o or its prototype chain.
func (r *Realm) HasProperty(o *GcObject, key PropertyKey) bool {
	for o != nil {
		if o.HasOwn(key) {
			return true
		}
		if _, ok := stringIndexedChar(o, key); ok {
			return true
		}
		proto := o.Prototype()
		if !proto.IsObject() {
			return false
		}
		o = proto.AsObject()
	}
	return false
}

// Set performs an ordinary assignment of v to key on target and reports
// whether it took effect. Setters run with no borrow held.
func (r *Realm) Set(target Value, key PropertyKey, v Value) (bool, error) {
	obj, err := r.ToObject(target)
	if err != nil {
		return false, err
	}
	for o := obj; o != nil; {
		p, ok := o.GetOwn(key)
		if ok {
			if p.IsAccessor() {
				if !p.Setter().IsCallable() {
					return false, nil
				}
				_, err := r.Call(p.Setter(), target, []Value{v})
				return err == nil, err
			}
			if !p.Writable() {
				return false, nil
			}
			break
		}
		proto := o.Prototype()
		if !proto.IsObject() {
			break
		}
		o = proto.AsObject()
	}
	if !target.IsObject() {
		return false, nil
	}
	receiver := target.AsObject()
	if own, ok := receiver.GetOwn(key); ok {
		if own.IsAccessor() || !own.Writable() {
			return false, nil
		}
		return r.defineOwnProperty(receiver, key, DataDescriptor(v, own.Attribute()))
	}
	if !receiver.IsExtensible() {
		return false, nil
	}
	return r.defineOwnProperty(receiver, key, DataDescriptor(v, AllAttributes))
}

// DefineOwnProperty installs prop on o if the change is allowed by the
// current property's attributes and o's extensibility. On arrays an index
// past the end grows length and a smaller length removes the elements
// beyond it; a length that is not a valid array length is refused.
func (r *Realm) DefineOwnProperty(o *GcObject, key PropertyKey, prop Property) bool {
	ok, err := r.TryDefineOwnProperty(o, key, prop)
	return ok && err == nil
}

// TryDefineOwnProperty is DefineOwnProperty reporting the RangeError
// thrown for an invalid array length.
func (r *Realm) TryDefineOwnProperty(o *GcObject, key PropertyKey, prop Property) (bool, error) {
	return r.defineOwnProperty(o, key, prop)
}

func (r *Realm) defineOwnProperty(o *GcObject, key PropertyKey, prop Property) (bool, error) {
	if o.Kind() == KindArray {
		return r.arrayDefineOwnProperty(o, key, prop)
	}
	return ordinaryDefineOwnProperty(o, key, prop), nil
}

var lengthKey = StringKey("length")

func (r *Realm) arrayDefineOwnProperty(o *GcObject, key PropertyKey, prop Property) (bool, error) {
	lengthProp, ok := o.GetOwn(lengthKey)
	if !ok || lengthProp.IsAccessor() {
		return ordinaryDefineOwnProperty(o, key, prop), nil
	}
	oldLen, _ := safecast.Convert[uint32](lengthProp.Value().AsFloat())

	switch {
	case key == lengthKey && !prop.IsAccessor():
		newLen, err := r.toArrayLength(prop.Value())
		if err != nil {
			return false, err
		}
		prop = DataDescriptor(NumberValue(float64(newLen)), prop.Attribute())
		if newLen >= oldLen {
			return ordinaryDefineOwnProperty(o, key, prop), nil
		}
		if !lengthProp.Writable() {
			return false, nil
		}
		keys := o.OwnKeys()
		for i := len(keys) - 1; i >= 0; i-- {
			k := keys[i]
			if !k.IsIndex() || k.Index() < newLen {
				continue
			}
			// a permanent element stops the truncation just above itself
			if err := o.Delete(k); err != nil {
				ordinaryDefineOwnProperty(o, key, DataDescriptor(NumberValue(float64(k.Index())+1), prop.Attribute()))
				return false, nil
			}
		}
		return ordinaryDefineOwnProperty(o, key, prop), nil

	case key.IsIndex():
		idx := key.Index()
		if idx >= oldLen && !lengthProp.Writable() {
			return false, nil
		}
		if !ordinaryDefineOwnProperty(o, key, prop) {
			return false, nil
		}
		if idx >= oldLen {
			o.Insert(lengthKey, DataDescriptor(NumberValue(float64(idx)+1), lengthProp.Attribute()))
		}
		return true, nil
	}
	return ordinaryDefineOwnProperty(o, key, prop), nil
}

// toArrayLength converts v to a length, throwing a RangeError unless it is
// an integer in [0, 2^32-1].
func (r *Realm) toArrayLength(v Value) (uint32, error) {
	n, err := r.ToNumber(v)
	if err != nil {
		return 0, err
	}
	length, err := safecast.Convert[uint32](n)
	if err != nil || float64(length) != n {
		return 0, r.ThrowRangeError("Invalid array length")
	}
	return length, nil
}

func ordinaryDefineOwnProperty(o *GcObject, key PropertyKey, prop Property) bool {
	current, ok := o.GetOwn(key)
	if !ok {
		if !o.IsExtensible() {
			return false
		}
		o.Insert(key, prop)
		return true
	}
	if !current.Configurable() {
		if prop.Configurable() || prop.Enumerable() != current.Enumerable() {
			return false
		}
		if prop.IsAccessor() != current.IsAccessor() {
			return false
		}
		if prop.IsAccessor() {
			if !SameValue(prop.Getter(), current.Getter()) || !SameValue(prop.Setter(), current.Setter()) {
				return false
			}
		} else if !current.Writable() {
			if prop.Writable() || !SameValue(prop.Value(), current.Value()) {
				return false
			}
		}
	}
	o.Insert(key, prop)
	return true
}

// DeleteProperty removes an own property. Removing a non-configurable
// property throws a TypeError.
func (r *Realm) DeleteProperty(o *GcObject, key PropertyKey) error {
	err := o.Delete(key)
	if _, ok := err.(*errors.NotConfigurableError); ok {
		return r.ThrowTypeError("Cannot delete property '%s' of %s", key, r.describe(ObjectValue(o)))
	}
	return err
}

// stringIndexedChar exposes the code units of a String wrapper as
// read-only indexed properties.
func stringIndexedChar(o *GcObject, key PropertyKey) (v Value, ok bool) {
	if !key.IsIndex() {
		return Undefined, false
	}
	o.Borrow(func(obj *Object) {
		s, isString := obj.AsString()
		if !isString {
			return
		}
		if unit, found := UTF16At(s, int(key.Index())); found {
			v, ok = StringValue(unit), true
		}
	})
	return
}
