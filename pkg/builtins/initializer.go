package builtins

import (
	"fmt"

	"github.com/untillpro/goutils/logger"

	"jscore/pkg/vm"
)

// BuiltinInitializer is implemented by each builtin module
type BuiltinInitializer interface {
	// Name returns the global binding name (e.g., "Array", "RangeError", "Math")
	Name() string

	// Priority returns initialization order (lower = earlier)
	Priority() int

	// Init builds the builtin against realm and returns the global binding
	// to install: its name, value and property attributes.
	Init(realm *vm.Realm) (name string, value vm.Value, attr vm.Attribute)
}

// Priority constants for initialization order. A builtin that reaches for
// another one's standard pair only needs the pair to be reserved, which the
// realm does up front; it needs the other builtin initialized when it
// inherits from a prototype that builtin populates.
const (
	PriorityGlobals         = 0   // undefined, NaN, Infinity, globalThis
	PriorityGlobalFunctions = 1   // isNaN, isFinite, parseFloat, parseInt
	PriorityFunction        = 10  // Function.prototype is the parent of every builtin function
	PriorityObject          = 11  // Object.prototype is the root of every chain
	PriorityMath            = 20  // Math object
	PriorityJSON            = 21  // JSON object
	PriorityConsole         = 22  // Console object
	PriorityArray           = 30
	PriorityBigInt          = 31
	PriorityBoolean         = 32
	PriorityDate            = 33
	PriorityMap             = 34
	PriorityNumber          = 35
	PriorityString          = 36
	PriorityRegExp          = 37
	PrioritySymbol          = 38
	PriorityError           = 100 // Error before its subtypes
	PriorityErrorSub        = 101 // subtypes inherit from Error.prototype
)

// Initialize runs every standard initializer in order and binds each result
// on the realm's global object.
func Initialize(realm *vm.Realm) {
	InitializeWith(realm, GetStandardInitializers())
}

// InitializeWith runs the given initializers in slice order.
func InitializeWith(realm *vm.Realm, initializers []BuiltinInitializer) {
	global := realm.GlobalObject()
	for _, bi := range initializers {
		name, value, attr := bi.Init(realm)
		global.Insert(vm.StringKey(name), vm.DataDescriptor(value, attr))
		if logger.IsVerbose() {
			logger.Verbose(fmt.Sprintf("builtins: installed %s (%s) as %s", name, attr, kindOf(value)))
		}
	}
}

func kindOf(v vm.Value) string {
	if v.IsObject() {
		return v.AsObject().Kind().String()
	}
	return v.Type().String()
}
