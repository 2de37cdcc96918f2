package vm

import (
	"jscore/pkg/errors"
)

// GcObject is the managed handle to an Object living in a Heap. Handles are
// compared by identity; copying the pointer aliases the same object.
//
// Access goes through closure-scoped borrows. Any number of shared borrows
// may be active at once, or a single exclusive one. A conflicting request
// panics with *errors.BorrowError; the Try variants return it instead.
type GcObject struct {
	heap      *Heap
	id        uint64
	slot      uint32
	obj       *Object
	shared    int
	exclusive bool
}

// ID returns the allocation id, unique within the heap.
func (g *GcObject) ID() uint64 { return g.id }

// Alive reports whether the object has not been reclaimed.
func (g *GcObject) Alive() bool { return g.obj != nil }

func (g *GcObject) live() *Object {
	if g.obj == nil {
		panic(errors.Contract("GcObject", "use of collected object #%d", g.id))
	}
	return g.obj
}

func (g *GcObject) acquire(mode errors.BorrowMode) error {
	g.live()
	switch {
	case g.exclusive:
		return &errors.BorrowError{ObjectID: g.id, Requested: mode, Held: errors.BorrowExclusive}
	case mode == errors.BorrowExclusive && g.shared > 0:
		return &errors.BorrowError{ObjectID: g.id, Requested: mode, Held: errors.BorrowShared}
	}
	if mode == errors.BorrowExclusive {
		g.exclusive = true
	} else {
		g.shared++
	}
	return nil
}

func (g *GcObject) release(mode errors.BorrowMode) {
	if mode == errors.BorrowExclusive {
		g.exclusive = false
	} else {
		g.shared--
	}
}

// IsBorrowed reports whether any borrow is active.
func (g *GcObject) IsBorrowed() bool { return g.exclusive || g.shared > 0 }

// Borrow runs fn with shared access to the object.
func (g *GcObject) Borrow(fn func(*Object)) {
	if err := g.TryBorrow(fn); err != nil {
		panic(err)
	}
}

// BorrowMut runs fn with exclusive access to the object.
func (g *GcObject) BorrowMut(fn func(*Object)) {
	if err := g.TryBorrowMut(fn); err != nil {
		panic(err)
	}
}

func (g *GcObject) TryBorrow(fn func(*Object)) error {
	if err := g.acquire(errors.BorrowShared); err != nil {
		return err
	}
	defer g.release(errors.BorrowShared)
	fn(g.obj)
	return nil
}

func (g *GcObject) TryBorrowMut(fn func(*Object)) error {
	if err := g.acquire(errors.BorrowExclusive); err != nil {
		return err
	}
	defer g.release(errors.BorrowExclusive)
	fn(g.obj)
	return nil
}

// --- Single-borrow conveniences ---

func (g *GcObject) GetOwn(key PropertyKey) (p Property, ok bool) {
	g.Borrow(func(o *Object) { p, ok = o.GetOwn(key) })
	return
}

func (g *GcObject) HasOwn(key PropertyKey) (ok bool) {
	g.Borrow(func(o *Object) { ok = o.HasOwn(key) })
	return
}

func (g *GcObject) Insert(key PropertyKey, prop Property) {
	g.BorrowMut(func(o *Object) { o.Insert(key, prop) })
}

func (g *GcObject) InsertValue(key PropertyKey, v Value, attr Attribute) {
	g.Insert(key, DataDescriptor(v, attr))
}

func (g *GcObject) Delete(key PropertyKey) (err error) {
	g.BorrowMut(func(o *Object) { err = o.Delete(key) })
	return
}

func (g *GcObject) OwnKeys() (keys []PropertyKey) {
	g.Borrow(func(o *Object) { keys = o.OwnKeys() })
	return
}

func (g *GcObject) PropertyCount() (n int) {
	g.Borrow(func(o *Object) { n = o.PropertyCount() })
	return
}

func (g *GcObject) Prototype() (proto Value) {
	g.Borrow(func(o *Object) { proto = o.Prototype() })
	return
}

func (g *GcObject) SetPrototype(proto Value) {
	g.BorrowMut(func(o *Object) { o.SetPrototype(proto) })
}

func (g *GcObject) Kind() (k DataKind) {
	g.Borrow(func(o *Object) { k = o.Kind() })
	return
}

func (g *GcObject) SetData(data ObjectData) {
	g.BorrowMut(func(o *Object) { o.SetData(data) })
}

func (g *GcObject) IsCallable() (ok bool) {
	g.Borrow(func(o *Object) { ok = o.IsCallable() })
	return
}

func (g *GcObject) IsConstructable() (ok bool) {
	g.Borrow(func(o *Object) { ok = o.IsConstructable() })
	return
}

func (g *GcObject) IsExtensible() (ok bool) {
	g.Borrow(func(o *Object) { ok = o.IsExtensible() })
	return
}

func (g *GcObject) PreventExtensions() {
	g.BorrowMut(func(o *Object) { o.PreventExtensions() })
}
