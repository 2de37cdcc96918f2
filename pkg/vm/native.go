package vm

import "fmt"

// NativeObject is implemented by host values stored inside an object's
// internal data slot. Trace must visit every language value the payload
// keeps alive so the collector can follow it.
type NativeObject interface {
	Trace(visit func(Value))
}

// nativePayload is the erased form of a NativeObject. The concrete type of
// the payload (*nativeBox[T]) is the type identity token: a downcast
// succeeds only when the requested T is exactly the stored T.
type nativePayload interface {
	trace(visit func(Value))
	typeName() string
}

type nativeBox[T NativeObject] struct {
	value T
}

func (b *nativeBox[T]) trace(visit func(Value)) { b.value.Trace(visit) }
func (b *nativeBox[T]) typeName() string        { return fmt.Sprintf("%T", b.value) }

// NativeData is the ObjectData variant carrying a type-erased host value.
type NativeData struct {
	payload nativePayload
}

func NewNativeData[T NativeObject](value T) *NativeData {
	return &NativeData{payload: &nativeBox[T]{value: value}}
}

// TypeName returns the Go type of the stored payload, for inspection.
func (d *NativeData) TypeName() string {
	return d.payload.typeName()
}

func nativeBoxOf[T NativeObject](o *Object) (*nativeBox[T], bool) {
	nd, ok := o.data.(*NativeData)
	if !ok {
		return nil, false
	}
	box, ok := nd.payload.(*nativeBox[T])
	return box, ok
}

// Is reports whether o carries a native payload of exactly type T.
func Is[T NativeObject](o *Object) bool {
	_, ok := nativeBoxOf[T](o)
	return ok
}

// DowncastRef returns a copy of o's payload if it is exactly of type T.
func DowncastRef[T NativeObject](o *Object) (T, bool) {
	box, ok := nativeBoxOf[T](o)
	if !ok {
		var zero T
		return zero, false
	}
	return box.value, true
}

// DowncastMut returns a pointer to o's payload if it is exactly of type T.
// The pointer must only be used while o is mutably borrowed.
func DowncastMut[T NativeObject](o *Object) (*T, bool) {
	box, ok := nativeBoxOf[T](o)
	if !ok {
		return nil, false
	}
	return &box.value, true
}
