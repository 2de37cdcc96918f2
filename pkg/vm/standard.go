package vm

// StandardConstructor is a pre-allocated constructor/prototype pair. The
// pair exists from realm creation on, so objects made before the built-in's
// initializer runs can already point at the right prototype.
type StandardConstructor struct {
	Constructor *GcObject
	Prototype   *GcObject
}

func newStandardConstructor(h *Heap) *StandardConstructor {
	return &StandardConstructor{
		Constructor: h.Alloc(NewObject()),
		Prototype:   h.Alloc(NewObject()),
	}
}

// StandardObjects holds every standard pair of a realm. Identities are
// stable for the realm's lifetime.
type StandardObjects struct {
	Object         *StandardConstructor
	Function       *StandardConstructor
	Array          *StandardConstructor
	BigInt         *StandardConstructor
	Boolean        *StandardConstructor
	Date           *StandardConstructor
	Map            *StandardConstructor
	Number         *StandardConstructor
	String         *StandardConstructor
	RegExp         *StandardConstructor
	Symbol         *StandardConstructor
	Error          *StandardConstructor
	EvalError      *StandardConstructor
	RangeError     *StandardConstructor
	ReferenceError *StandardConstructor
	SyntaxError    *StandardConstructor
	TypeError      *StandardConstructor
	URIError       *StandardConstructor
}

func newStandardObjects(h *Heap) *StandardObjects {
	return &StandardObjects{
		Object:         newStandardConstructor(h),
		Function:       newStandardConstructor(h),
		Array:          newStandardConstructor(h),
		BigInt:         newStandardConstructor(h),
		Boolean:        newStandardConstructor(h),
		Date:           newStandardConstructor(h),
		Map:            newStandardConstructor(h),
		Number:         newStandardConstructor(h),
		String:         newStandardConstructor(h),
		RegExp:         newStandardConstructor(h),
		Symbol:         newStandardConstructor(h),
		Error:          newStandardConstructor(h),
		EvalError:      newStandardConstructor(h),
		RangeError:     newStandardConstructor(h),
		ReferenceError: newStandardConstructor(h),
		SyntaxError:    newStandardConstructor(h),
		TypeError:      newStandardConstructor(h),
		URIError:       newStandardConstructor(h),
	}
}

// Each calls fn for every pair, in declaration order, with the name of the
// built-in it belongs to.
func (s *StandardObjects) Each(fn func(name string, sc *StandardConstructor)) {
	fn("Object", s.Object)
	fn("Function", s.Function)
	fn("Array", s.Array)
	fn("BigInt", s.BigInt)
	fn("Boolean", s.Boolean)
	fn("Date", s.Date)
	fn("Map", s.Map)
	fn("Number", s.Number)
	fn("String", s.String)
	fn("RegExp", s.RegExp)
	fn("Symbol", s.Symbol)
	fn("Error", s.Error)
	fn("EvalError", s.EvalError)
	fn("RangeError", s.RangeError)
	fn("ReferenceError", s.ReferenceError)
	fn("SyntaxError", s.SyntaxError)
	fn("TypeError", s.TypeError)
	fn("URIError", s.URIError)
}

// ByName returns the pair registered for a built-in name.
func (s *StandardObjects) ByName(name string) (*StandardConstructor, bool) {
	var found *StandardConstructor
	s.Each(func(n string, sc *StandardConstructor) {
		if n == name {
			found = sc
		}
	})
	return found, found != nil
}
