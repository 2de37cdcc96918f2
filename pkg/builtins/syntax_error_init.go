package builtins

import (
	"jscore/pkg/vm"
)

// SyntaxErrorInitializer implements the SyntaxError constructor and SyntaxError.prototype
type SyntaxErrorInitializer struct{}

func (e *SyntaxErrorInitializer) Name() string {
	return "SyntaxError"
}

func (e *SyntaxErrorInitializer) Priority() int {
	return PriorityErrorSub // After Error
}

func (e *SyntaxErrorInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	return initErrorSubclass(realm, "SyntaxError", realm.StandardObjects().SyntaxError)
}
