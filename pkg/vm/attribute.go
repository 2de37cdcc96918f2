package vm

// Attribute is the bit set describing how a property may be changed.
// The zero-valued names exist so descriptors read the way they behave:
// ReadOnly|NonEnumerable|Permanent is a frozen hidden property.
type Attribute uint8

const (
	Writable     Attribute = 1 << 0
	Enumerable   Attribute = 1 << 1
	Configurable Attribute = 1 << 2

	ReadOnly      Attribute = 0
	NonEnumerable Attribute = 0
	Permanent     Attribute = 0

	AllAttributes = Writable | Enumerable | Configurable

	// DefaultAttribute is used for built-in methods and global bindings.
	DefaultAttribute = Writable | NonEnumerable | Configurable
)

func (a Attribute) Writable() bool     { return a&Writable != 0 }
func (a Attribute) Enumerable() bool   { return a&Enumerable != 0 }
func (a Attribute) Configurable() bool { return a&Configurable != 0 }

// With returns a with the given bits set.
func (a Attribute) With(bits Attribute) Attribute { return a | bits }

// Without returns a with the given bits cleared.
func (a Attribute) Without(bits Attribute) Attribute { return a &^ bits }

// String renders the attribute as "wec" flags, using '-' for cleared bits.
func (a Attribute) String() string {
	b := []byte("---")
	if a.Writable() {
		b[0] = 'w'
	}
	if a.Enumerable() {
		b[1] = 'e'
	}
	if a.Configurable() {
		b[2] = 'c'
	}
	return string(b)
}
