package vm

// NativeFunction is the calling convention for every host-implemented
// function. The same shape serves plain calls and construction; for
// construction this is the freshly allocated object and Realm.NewTarget
// is the constructor. Bodies that behave differently under new must test
// Realm.IsConstructCall, never the shape of this. A non-nil error that
// is an *Exception is a language-level throw.
type NativeFunction func(this Value, args []Value, realm *Realm) (Value, error)

// FunctionFlags describe how a function object may be invoked.
type FunctionFlags uint8

const (
	FlagCallable FunctionFlags = 1 << iota
	FlagConstructable

	DefaultFunctionFlags = FlagCallable | FlagConstructable
)

// FunctionData is the internal call slot of a function object.
type FunctionData struct {
	Native NativeFunction
	Flags  FunctionFlags
}

func NewFunctionData(fn NativeFunction, flags FunctionFlags) *FunctionData {
	return &FunctionData{Native: fn, Flags: flags}
}

func (f *FunctionData) IsCallable() bool      { return f.Flags&FlagCallable != 0 }
func (f *FunctionData) IsConstructable() bool { return f.Flags&FlagConstructable != 0 }

// Arg returns args[i], or undefined when fewer arguments were passed.
func Arg(args []Value, i int) Value {
	if i < len(args) {
		return args[i]
	}
	return Undefined
}

// functionOf borrows o and returns its call slot.
func functionOf(o *GcObject) (*FunctionData, bool) {
	var fn *FunctionData
	var ok bool
	o.Borrow(func(obj *Object) {
		fn, ok = obj.AsFunction()
	})
	return fn, ok
}

// NewTarget returns the constructor the running native body was invoked
// with through Construct, or undefined when it was called as a function.
func (r *Realm) NewTarget() Value {
	return r.newTarget
}

// IsConstructCall reports whether the running native body was entered
// through Construct rather than Call.
func (r *Realm) IsConstructCall() bool {
	return !r.newTarget.IsUndefined()
}

// invoke runs a native body with newTarget installed for its duration.
func (r *Realm) invoke(data *FunctionData, newTarget, this Value, args []Value) (Value, error) {
	prev := r.newTarget
	r.newTarget = newTarget
	defer func() { r.newTarget = prev }()
	return data.Native(this, args, r)
}

// Call invokes fn with the given receiver. Non-callable targets throw a
// TypeError. No borrow is held while the native body runs.
func (r *Realm) Call(fn Value, this Value, args []Value) (Value, error) {
	if !fn.IsObject() {
		return Undefined, r.ThrowTypeError("%s is not a function", r.describe(fn))
	}
	data, ok := functionOf(fn.AsObject())
	if !ok || !data.IsCallable() || data.Native == nil {
		return Undefined, r.ThrowTypeError("%s is not a function", r.describe(fn))
	}
	return r.invoke(data, Undefined, this, args)
}

// Construct allocates the receiver from ctor.prototype (Object.prototype
// when that is not an object) and runs the constructor body on it. A body
// that returns an object replaces the receiver.
func (r *Realm) Construct(ctor Value, args []Value) (Value, error) {
	if !ctor.IsObject() {
		return Undefined, r.ThrowTypeError("%s is not a constructor", r.describe(ctor))
	}
	data, ok := functionOf(ctor.AsObject())
	if !ok || !data.IsConstructable() || data.Native == nil {
		return Undefined, r.ThrowTypeError("%s is not a constructor", r.describe(ctor))
	}
	this, err := r.OrdinaryCreateFromConstructor(ctor.AsObject())
	if err != nil {
		return Undefined, err
	}
	result, err := r.invoke(data, ctor, ObjectValue(this), args)
	if err != nil {
		return Undefined, err
	}
	if result.IsObject() {
		return result, nil
	}
	return ObjectValue(this), nil
}

// OrdinaryCreateFromConstructor allocates an ordinary object whose
// prototype is ctor.prototype.
func (r *Realm) OrdinaryCreateFromConstructor(ctor *GcObject) (*GcObject, error) {
	proto, err := r.Get(ObjectValue(ctor), StringKey("prototype"))
	if err != nil {
		return nil, err
	}
	if !proto.IsObject() {
		proto = ObjectValue(r.standard.Object.Prototype)
	}
	return r.heap.Alloc(NewObjectWithPrototype(proto, &OrdinaryData{})), nil
}

// describe renders a value for error messages without invoking user code.
func (r *Realm) describe(v Value) string {
	if v.IsObject() {
		if name, ok := v.AsObject().GetOwn(StringKey("name")); ok && name.Value().IsString() && name.Value().AsString() != "" {
			return name.Value().AsString()
		}
		return "object"
	}
	return v.String()
}
