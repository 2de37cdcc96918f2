package vm

import (
	"errors"
	"fmt"
)

// Exception carries a thrown language value through Go error returns.
type Exception struct {
	Value Value
}

func (e *Exception) Error() string {
	if e.Value.IsObject() {
		msg, ok := errorSummary(e.Value.AsObject())
		if ok {
			return "Uncaught " + msg
		}
	}
	return "Uncaught " + e.Value.String()
}

// Throw wraps v as a language-level exception.
func Throw(v Value) error {
	return &Exception{Value: v}
}

// AsException extracts the thrown value from err.
func AsException(err error) (Value, bool) {
	var exc *Exception
	if errors.As(err, &exc) {
		return exc.Value, true
	}
	return Undefined, false
}

// errorSummary formats an error object as "<name>: <message>" from its own
// and inherited data properties, without running accessors.
func errorSummary(o *GcObject) (string, bool) {
	if o.Kind() != KindError {
		return "", false
	}
	name, msg := "Error", ""
	if v, ok := lookupData(o, StringKey("name")); ok && v.IsString() {
		name = v.AsString()
	}
	if v, ok := lookupData(o, StringKey("message")); ok && v.IsString() {
		msg = v.AsString()
	}
	if msg == "" {
		return name, true
	}
	return fmt.Sprintf("%s: %s", name, msg), true
}

// lookupData walks the prototype chain for a data property.
func lookupData(o *GcObject, key PropertyKey) (Value, bool) {
	for o != nil {
		if p, ok := o.GetOwn(key); ok {
			if p.IsAccessor() {
				return Undefined, false
			}
			return p.Value(), true
		}
		proto := o.Prototype()
		if !proto.IsObject() {
			break
		}
		o = proto.AsObject()
	}
	return Undefined, false
}

// NewError allocates an error object with the given standard prototype and
// an own message property, without running any constructor.
func (r *Realm) NewError(std *StandardConstructor, message string) *GcObject {
	obj := NewObjectWithPrototype(ObjectValue(std.Prototype), &ErrorData{})
	obj.Insert(StringKey("message"), DataDescriptor(StringValue(message), DefaultAttribute))
	return r.heap.Alloc(obj)
}

func (r *Realm) NewTypeError(format string, args ...any) *GcObject {
	return r.NewError(r.standard.TypeError, fmt.Sprintf(format, args...))
}

func (r *Realm) NewRangeError(format string, args ...any) *GcObject {
	return r.NewError(r.standard.RangeError, fmt.Sprintf(format, args...))
}

func (r *Realm) NewReferenceError(format string, args ...any) *GcObject {
	return r.NewError(r.standard.ReferenceError, fmt.Sprintf(format, args...))
}

func (r *Realm) NewSyntaxError(format string, args ...any) *GcObject {
	return r.NewError(r.standard.SyntaxError, fmt.Sprintf(format, args...))
}

// ThrowTypeError returns a TypeError wrapped as an exception.
func (r *Realm) ThrowTypeError(format string, args ...any) error {
	return Throw(ObjectValue(r.NewTypeError(format, args...)))
}

func (r *Realm) ThrowRangeError(format string, args ...any) error {
	return Throw(ObjectValue(r.NewRangeError(format, args...)))
}

func (r *Realm) ThrowSyntaxError(format string, args ...any) error {
	return Throw(ObjectValue(r.NewSyntaxError(format, args...)))
}
