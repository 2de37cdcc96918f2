package vm

import (
	"fmt"
	"sync/atomic"
)

var symbolSerial atomic.Uint64

// Symbol is a unique property key. Identity is pointer identity; two symbols
// with the same description are still distinct.
type Symbol struct {
	serial         uint64
	description    string
	hasDescription bool
}

// NewSymbol creates a symbol with the given description.
func NewSymbol(description string) *Symbol {
	return &Symbol{serial: symbolSerial.Add(1), description: description, hasDescription: true}
}

// NewAnonymousSymbol creates a symbol whose description is undefined.
func NewAnonymousSymbol() *Symbol {
	return &Symbol{serial: symbolSerial.Add(1)}
}

// Description returns the description and whether one was given.
func (s *Symbol) Description() (string, bool) {
	return s.description, s.hasDescription
}

func (s *Symbol) String() string {
	return fmt.Sprintf("Symbol(%s)", s.description)
}

// WellKnownSymbols are the per-realm symbols the language reserves for
// protocol hooks.
type WellKnownSymbols struct {
	AsyncIterator      *Symbol
	HasInstance        *Symbol
	IsConcatSpreadable *Symbol
	Iterator           *Symbol
	Match              *Symbol
	MatchAll           *Symbol
	Replace            *Symbol
	Search             *Symbol
	Species            *Symbol
	Split              *Symbol
	ToPrimitive        *Symbol
	ToStringTag        *Symbol
	Unscopables        *Symbol
}

func newWellKnownSymbols() *WellKnownSymbols {
	return &WellKnownSymbols{
		AsyncIterator:      NewSymbol("Symbol.asyncIterator"),
		HasInstance:        NewSymbol("Symbol.hasInstance"),
		IsConcatSpreadable: NewSymbol("Symbol.isConcatSpreadable"),
		Iterator:           NewSymbol("Symbol.iterator"),
		Match:              NewSymbol("Symbol.match"),
		MatchAll:           NewSymbol("Symbol.matchAll"),
		Replace:            NewSymbol("Symbol.replace"),
		Search:             NewSymbol("Symbol.search"),
		Species:            NewSymbol("Symbol.species"),
		Split:              NewSymbol("Symbol.split"),
		ToPrimitive:        NewSymbol("Symbol.toPrimitive"),
		ToStringTag:        NewSymbol("Symbol.toStringTag"),
		Unscopables:        NewSymbol("Symbol.unscopables"),
	}
}

// Each visits every well-known symbol with its property name on the Symbol
// constructor ("iterator", "toStringTag", ...).
func (w *WellKnownSymbols) Each(fn func(name string, sym *Symbol)) {
	fn("asyncIterator", w.AsyncIterator)
	fn("hasInstance", w.HasInstance)
	fn("isConcatSpreadable", w.IsConcatSpreadable)
	fn("iterator", w.Iterator)
	fn("match", w.Match)
	fn("matchAll", w.MatchAll)
	fn("replace", w.Replace)
	fn("search", w.Search)
	fn("species", w.Species)
	fn("split", w.Split)
	fn("toPrimitive", w.ToPrimitive)
	fn("toStringTag", w.ToStringTag)
	fn("unscopables", w.Unscopables)
}
