package builtins

import (
	"jscore/pkg/vm"
)

const ErrorName = "Error"

// ErrorInitializer implements the Error constructor and Error.prototype
type ErrorInitializer struct{}

func (e *ErrorInitializer) Name() string  { return ErrorName }
func (e *ErrorInitializer) Priority() int { return PriorityError }

func (e *ErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().Error
	ctor := NewConstructorBuilderWithStandardObject(realm, errorConstructor(std), std).
		Name(ErrorName).
		Length(1).
		Property(vm.StringKey("name"), vm.StringValue(ErrorName), methodAttribute).
		Property(vm.StringKey("message"), vm.StringValue(""), methodAttribute).
		Method(errorToString, "toString", 0).
		StaticMethod(errorIsError, "isError", 1).
		Build()
	return ErrorName, vm.ObjectValue(ctor), vm.DefaultAttribute
}

// EvalError
type EvalErrorInitializer struct{}

func (e *EvalErrorInitializer) Name() string  { return "EvalError" }
func (e *EvalErrorInitializer) Priority() int { return PriorityErrorSub }
func (e *EvalErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "EvalError", realm.StandardObjects().EvalError)
}

// RangeError
type RangeErrorInitializer struct{}

func (e *RangeErrorInitializer) Name() string  { return "RangeError" }
func (e *RangeErrorInitializer) Priority() int { return PriorityErrorSub }
func (e *RangeErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "RangeError", realm.StandardObjects().RangeError)
}

// URIError
type URIErrorInitializer struct{}

func (e *URIErrorInitializer) Name() string  { return "URIError" }
func (e *URIErrorInitializer) Priority() int { return PriorityErrorSub }
func (e *URIErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "URIError", realm.StandardObjects().URIError)
}

// helper to initialize Error subclasses inheriting Error.prototype. Each
// subclass keeps its own name, message and toString on its prototype, and
// its constructor inherits from the Error constructor.
func initErrorSubclass(realm *vm.Realm, name string, std *vm.StandardConstructor) (string, vm.Value, vm.Attribute) {
	base := realm.StandardObjects().Error
	ctor := NewConstructorBuilderWithStandardObject(realm, errorConstructor(std), std).
		Name(name).
		Length(1).
		Inherit(vm.ObjectValue(base.Prototype)).
		Property(vm.StringKey("name"), vm.StringValue(name), methodAttribute).
		Property(vm.StringKey("message"), vm.StringValue(""), methodAttribute).
		Method(errorToString, "toString", 0).
		Build()
	ctor.SetPrototype(vm.ObjectValue(base.Constructor))
	return name, vm.ObjectValue(ctor), vm.DefaultAttribute
}

// errorConstructor returns the body shared by every error type. Building
// the error and throwing it are the same operation: the finished object is
// handed back through the exception channel.
func errorConstructor(std *vm.StandardConstructor) vm.NativeFunction {
	return func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		// Called without new
		if !realm.IsConstructCall() {
			this = vm.ObjectValue(realm.Alloc(vm.NewObjectWithPrototype(vm.ObjectValue(std.Prototype), &vm.OrdinaryData{})))
		}
		obj := this.AsObject()

		if msg := vm.Arg(args, 0); !msg.IsUndefined() {
			text, err := realm.ToString(msg)
			if err != nil {
				return vm.Undefined, err
			}
			obj.InsertValue(vm.StringKey("message"), vm.StringValue(text), methodAttribute)
		}

		if opts := vm.Arg(args, 1); opts.IsObject() && realm.HasProperty(opts.AsObject(), vm.StringKey("cause")) {
			cause, err := realm.GetV(opts, "cause")
			if err != nil {
				return vm.Undefined, err
			}
			obj.InsertValue(vm.StringKey("cause"), cause, methodAttribute)
		}

		obj.SetData(&vm.ErrorData{})
		return vm.Undefined, vm.Throw(this)
	}
}

// errorToString renders "<name>: <message>". Both parts go through the
// regular string conversion; an undefined name reads as "Error" and an
// undefined message as "".
func errorToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !this.IsObject() {
		return vm.Undefined, realm.ThrowTypeError("Error.prototype.toString called on non-object")
	}
	name, err := stringOrDefault(realm, this, "name", ErrorName)
	if err != nil {
		return vm.Undefined, err
	}
	message, err := stringOrDefault(realm, this, "message", "")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(name + ": " + message), nil
}

func stringOrDefault(realm *vm.Realm, this vm.Value, key, fallback string) (string, error) {
	v, err := realm.GetV(this, key)
	if err != nil {
		return "", err
	}
	if v.IsUndefined() {
		return fallback, nil
	}
	return realm.ToString(v)
}

// errorIsError implements Error.isError: true for objects tagged as errors.
func errorIsError(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	arg := vm.Arg(args, 0)
	return vm.BooleanValue(arg.IsObject() && arg.AsObject().Kind() == vm.KindError), nil
}
