package builtins

import "sort"

// GetStandardInitializers returns all built-in initializers sorted by priority
func GetStandardInitializers() []BuiltinInitializer {
	var initializers []BuiltinInitializer

	// Global constants
	initializers = append(initializers, &UndefinedInitializer{})
	initializers = append(initializers, &InfinityInitializer{})
	initializers = append(initializers, &NaNInitializer{})
	initializers = append(initializers, &GlobalThisInitializer{})
	initializers = append(initializers, &IsNaNInitializer{})
	initializers = append(initializers, &IsFiniteInitializer{})
	initializers = append(initializers, &ParseFloatInitializer{})
	initializers = append(initializers, &ParseIntInitializer{})

	// Core builtins
	initializers = append(initializers, &FunctionInitializer{})
	initializers = append(initializers, &ObjectInitializer{})

	// Namespaces
	initializers = append(initializers, &MathInitializer{})
	initializers = append(initializers, &JSONInitializer{})
	initializers = append(initializers, &ConsoleInitializer{})

	// Classes
	initializers = append(initializers, &ArrayInitializer{})
	initializers = append(initializers, &BigIntInitializer{})
	initializers = append(initializers, &BooleanInitializer{})
	initializers = append(initializers, &DateInitializer{})
	initializers = append(initializers, &MapInitializer{})
	initializers = append(initializers, &NumberInitializer{})
	initializers = append(initializers, &StringInitializer{})
	initializers = append(initializers, &RegExpInitializer{})
	initializers = append(initializers, &SymbolInitializer{})

	// Errors last: subtypes inherit from Error.prototype
	initializers = append(initializers, &ErrorInitializer{})
	initializers = append(initializers, &RangeErrorInitializer{})
	initializers = append(initializers, &ReferenceErrorInitializer{})
	initializers = append(initializers, &TypeErrorInitializer{})
	initializers = append(initializers, &SyntaxErrorInitializer{})
	initializers = append(initializers, &EvalErrorInitializer{})
	initializers = append(initializers, &URIErrorInitializer{})

	// Sort by priority (lower numbers first), keeping list order for ties
	sort.SliceStable(initializers, func(i, j int) bool {
		return initializers[i].Priority() < initializers[j].Priority()
	})

	return initializers
}
