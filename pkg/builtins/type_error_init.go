package builtins

import (
	"jscore/pkg/vm"
)

// TypeErrorInitializer implements the TypeError constructor and TypeError.prototype
type TypeErrorInitializer struct{}

func (e *TypeErrorInitializer) Name() string {
	return "TypeError"
}

func (e *TypeErrorInitializer) Priority() int {
	return PriorityErrorSub // After Error
}

func (e *TypeErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "TypeError", realm.StandardObjects().TypeError)
}
