package builtins

import (
	"jscore/pkg/vm"
)

// ReferenceErrorInitializer implements the ReferenceError constructor and ReferenceError.prototype
type ReferenceErrorInitializer struct{}

func (e *ReferenceErrorInitializer) Name() string {
	return "ReferenceError"
}

func (e *ReferenceErrorInitializer) Priority() int {
	return PriorityErrorSub // After Error
}

func (e *ReferenceErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "ReferenceError", realm.StandardObjects().ReferenceError)
}
