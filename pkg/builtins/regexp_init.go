package builtins

import (
	"strings"
	"unicode/utf16"

	"github.com/dlclark/regexp2"

	"jscore/pkg/vm"
)

// regexpFlags lists the accepted flags in canonical order.
const regexpFlags = "dgimsuy"

type RegExpInitializer struct{}

func (r *RegExpInitializer) Name() string {
	return "RegExp"
}

func (r *RegExpInitializer) Priority() int {
	return PriorityRegExp
}

func (r *RegExpInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	b := NewConstructorBuilderWithStandardObject(realm, regexpConstructor, realm.StandardObjects().RegExp).
		Name("RegExp").
		Length(2).
		Method(regexpExec, "exec", 1).
		Method(regexpTest, "test", 1).
		Method(regexpToString, "toString", 0).
		Accessor(vm.StringKey("source"), regexpSource, nil, vm.NonEnumerable|vm.Configurable).
		Accessor(vm.StringKey("flags"), regexpFlagsGetter, nil, vm.NonEnumerable|vm.Configurable)

	for _, f := range []struct {
		name string
		flag byte
	}{
		{"hasIndices", 'd'},
		{"global", 'g'},
		{"ignoreCase", 'i'},
		{"multiline", 'm'},
		{"dotAll", 's'},
		{"unicode", 'u'},
		{"sticky", 'y'},
	} {
		b.Accessor(vm.StringKey(f.name), regexpFlagGetter(f.name, f.flag), nil, vm.NonEnumerable|vm.Configurable)
	}
	return "RegExp", vm.ObjectValue(b.Build()), vm.DefaultAttribute
}

// compileRegExp validates flags and compiles source. The ECMAScript
// option of the engine does not combine with single-line mode, so the s
// flag falls back to the engine's default syntax.
func compileRegExp(realm *vm.Realm, source, flags string) (*regexp2.Regexp, error) {
	for i := 0; i < len(flags); i++ {
		if !strings.ContainsRune(regexpFlags, rune(flags[i])) || strings.IndexByte(flags[i+1:], flags[i]) >= 0 {
			return nil, realm.ThrowSyntaxError("Invalid flags supplied to RegExp constructor '%s'", flags)
		}
	}
	var opts regexp2.RegexOptions = regexp2.ECMAScript
	if strings.ContainsRune(flags, 's') {
		opts = regexp2.Singleline
	}
	if strings.ContainsRune(flags, 'i') {
		opts |= regexp2.IgnoreCase
	}
	if strings.ContainsRune(flags, 'm') {
		opts |= regexp2.Multiline
	}
	re, err := regexp2.Compile(source, opts)
	if err != nil {
		return nil, realm.ThrowSyntaxError("Invalid regular expression: /%s/%s: %v", source, flags, err)
	}
	return re, nil
}

// NewRegExp allocates a RegExp instance inheriting from RegExp.prototype.
func NewRegExp(realm *vm.Realm, source, flags string) (*vm.GcObject, error) {
	obj := realm.Alloc(vm.NewObjectWithPrototype(vm.ObjectValue(realm.StandardObjects().RegExp.Prototype), &vm.OrdinaryData{}))
	if err := initRegExp(realm, obj, source, flags); err != nil {
		return nil, err
	}
	return obj, nil
}

func initRegExp(realm *vm.Realm, obj *vm.GcObject, source, flags string) error {
	re, err := compileRegExp(realm, source, flags)
	if err != nil {
		return err
	}
	obj.BorrowMut(func(o *vm.Object) {
		o.SetData(&vm.RegExpData{Source: source, Flags: flags, Matcher: re})
		o.InsertValue(vm.StringKey("lastIndex"), vm.IntegerValue(0), vm.Writable|vm.NonEnumerable|vm.Permanent)
	})
	return nil
}

func regexpConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	pattern, flagsArg := vm.Arg(args, 0), vm.Arg(args, 1)

	var source, flags string
	if pattern.IsObject() && pattern.AsObject().Kind() == vm.KindRegExp {
		var data *vm.RegExpData
		pattern.AsObject().Borrow(func(o *vm.Object) { data, _ = o.AsRegExp() })
		source, flags = data.Source, data.Flags
	} else if !pattern.IsUndefined() {
		var err error
		if source, err = realm.ToString(pattern); err != nil {
			return vm.Undefined, err
		}
	}
	if !flagsArg.IsUndefined() {
		var err error
		if flags, err = realm.ToString(flagsArg); err != nil {
			return vm.Undefined, err
		}
	}

	if !realm.IsConstructCall() {
		obj, err := NewRegExp(realm, source, flags)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.ObjectValue(obj), nil
	}
	if err := initRegExp(realm, this.AsObject(), source, flags); err != nil {
		return vm.Undefined, err
	}
	return this, nil
}

func thisRegExp(realm *vm.Realm, this vm.Value, method string) (*vm.RegExpData, error) {
	if this.IsObject() {
		var data *vm.RegExpData
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { data, ok = o.AsRegExp() })
		if ok {
			return data, nil
		}
	}
	return nil, realm.ThrowTypeError("RegExp.prototype.%s requires that 'this' be a RegExp object", method)
}

// runeOffset converts a UTF-16 offset into s to a rune offset, and
// utf16Offset converts back. The matcher counts in runes.
func runeOffset(s string, units int) int {
	n, u := 0, 0
	for _, r := range s {
		if u >= units {
			break
		}
		u += utf16.RuneLen(r)
		n++
	}
	return n
}

func utf16Offset(runes []rune, n int) int {
	u := 0
	for _, r := range runes[:n] {
		u += utf16.RuneLen(r)
	}
	return u
}

// regexpBuiltinExec runs one match honoring lastIndex for global and
// sticky expressions. It returns nil when there is no match.
func regexpBuiltinExec(realm *vm.Realm, this vm.Value, data *vm.RegExpData, input string) (*regexp2.Match, error) {
	global := strings.ContainsRune(data.Flags, 'g')
	sticky := strings.ContainsRune(data.Flags, 'y')

	lastIndex := 0
	if global || sticky {
		li, err := realm.GetV(this, "lastIndex")
		if err != nil {
			return nil, err
		}
		f, err := realm.ToIntegerOrInfinity(li)
		if err != nil {
			return nil, err
		}
		if f > float64(vm.UTF16Length(input)) {
			return nil, resetLastIndex(realm, this)
		}
		lastIndex = int(max(f, 0))
	}

	start := runeOffset(input, lastIndex)
	m, err := data.Matcher.FindStringMatchStartingAt(input, start)
	if err != nil {
		return nil, realm.ThrowSyntaxError("RegExp match failed: %v", err)
	}
	if m == nil || (sticky && m.Index != start) {
		if global || sticky {
			return nil, resetLastIndex(realm, this)
		}
		return nil, nil
	}
	if global || sticky {
		end := utf16Offset([]rune(input), m.Index+m.Length)
		if _, err := realm.Set(this, vm.StringKey("lastIndex"), vm.IntegerValue(end)); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func resetLastIndex(realm *vm.Realm, this vm.Value) error {
	_, err := realm.Set(this, vm.StringKey("lastIndex"), vm.IntegerValue(0))
	return err
}

func regexpExec(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	data, err := thisRegExp(realm, this, "exec")
	if err != nil {
		return vm.Undefined, err
	}
	input, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	m, err := regexpBuiltinExec(realm, this, data, input)
	if err != nil || m == nil {
		return vm.Null, err
	}

	captures := captureOrder(data.Source)
	items := make([]vm.Value, 0, len(captures)+1)
	items = append(items, vm.StringValue(m.String()))
	var named *vm.GcObject
	unnamed := 0
	for _, name := range captures {
		var g *regexp2.Group
		if name == "" {
			unnamed++
			g = m.GroupByNumber(unnamed)
		} else {
			g = m.GroupByName(name)
		}
		v := vm.Undefined
		if g != nil && len(g.Captures) > 0 {
			v = vm.StringValue(g.String())
		}
		items = append(items, v)
		if name != "" {
			if named == nil {
				named = realm.Alloc(vm.NewObjectWithPrototype(vm.Null, &vm.OrdinaryData{}))
			}
			named.InsertValue(vm.StringKey(name), v, vm.AllAttributes)
		}
	}

	result := createArrayFromList(realm, items)
	result.InsertValue(vm.StringKey("index"), vm.IntegerValue(utf16Offset([]rune(input), m.Index)), vm.AllAttributes)
	result.InsertValue(vm.StringKey("input"), vm.StringValue(input), vm.AllAttributes)
	groupsValue := vm.Undefined
	if named != nil {
		groupsValue = vm.ObjectValue(named)
	}
	result.InsertValue(vm.StringKey("groups"), groupsValue, vm.AllAttributes)
	return vm.ObjectValue(result), nil
}

// captureOrder lists the capturing groups of source left to right by
// their opening parenthesis, with "" for an unnamed group. The matcher
// numbers named groups after all unnamed ones, so results are looked up
// through this list rather than in the matcher's group order.
func captureOrder(source string) []string {
	var names []string
	inClass := false
	for i := 0; i < len(source); i++ {
		switch c := source[i]; {
		case c == '\\':
			i++
		case inClass:
			inClass = c != ']'
		case c == '[':
			inClass = true
		case c == '(':
			rest := source[i+1:]
			if !strings.HasPrefix(rest, "?") {
				names = append(names, "")
				continue
			}
			name, ok := strings.CutPrefix(rest, "?<")
			if !ok || strings.HasPrefix(name, "=") || strings.HasPrefix(name, "!") {
				continue
			}
			if end := strings.IndexByte(name, '>'); end > 0 {
				names = append(names, name[:end])
			}
		}
	}
	return names
}

func regexpTest(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	data, err := thisRegExp(realm, this, "test")
	if err != nil {
		return vm.Undefined, err
	}
	input, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	m, err := regexpBuiltinExec(realm, this, data, input)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(m != nil), nil
}

func regexpToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if !this.IsObject() {
		return vm.Undefined, realm.ThrowTypeError("RegExp.prototype.toString requires that 'this' be an Object")
	}
	source, err := realm.GetV(this, "source")
	if err != nil {
		return vm.Undefined, err
	}
	flags, err := realm.GetV(this, "flags")
	if err != nil {
		return vm.Undefined, err
	}
	s, err := realm.ToString(source)
	if err != nil {
		return vm.Undefined, err
	}
	f, err := realm.ToString(flags)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue("/" + s + "/" + f), nil
}

// regexpSource returns the pattern text, or "(?:)" on RegExp.prototype.
func regexpSource(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if this.IsObject() && this.AsObject() == realm.StandardObjects().RegExp.Prototype {
		return vm.StringValue("(?:)"), nil
	}
	data, err := thisRegExp(realm, this, "source")
	if err != nil {
		return vm.Undefined, err
	}
	if data.Source == "" {
		return vm.StringValue("(?:)"), nil
	}
	return vm.StringValue(strings.ReplaceAll(data.Source, "/", `\/`)), nil
}

func regexpFlagsGetter(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	if this.IsObject() && this.AsObject() == realm.StandardObjects().RegExp.Prototype {
		return vm.StringValue(""), nil
	}
	data, err := thisRegExp(realm, this, "flags")
	if err != nil {
		return vm.Undefined, err
	}
	var sb strings.Builder
	for i := 0; i < len(regexpFlags); i++ {
		if strings.IndexByte(data.Flags, regexpFlags[i]) >= 0 {
			sb.WriteByte(regexpFlags[i])
		}
	}
	return vm.StringValue(sb.String()), nil
}

func regexpFlagGetter(name string, flag byte) vm.NativeFunction {
	return func(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
		if this.IsObject() && this.AsObject() == realm.StandardObjects().RegExp.Prototype {
			return vm.Undefined, nil
		}
		data, err := thisRegExp(realm, this, name)
		if err != nil {
			return vm.Undefined, err
		}
		return vm.BooleanValue(strings.IndexByte(data.Flags, flag) >= 0), nil
	}
}
