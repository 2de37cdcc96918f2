package builtins

import (
	"strings"
	"unicode/utf16"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/unicode/norm"

	"jscore/pkg/vm"
)

type StringInitializer struct{}

func (s *StringInitializer) Name() string {
	return "String"
}

func (s *StringInitializer) Priority() int {
	return PriorityString
}

func (s *StringInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	std := realm.StandardObjects().String
	std.Prototype.BorrowMut(func(o *vm.Object) {
		o.SetData(&vm.StringData{Value: ""})
		o.InsertValue(vm.StringKey("length"), vm.IntegerValue(0), metadataAttribute)
	})

	ctor := NewConstructorBuilderWithStandardObject(realm, stringConstructor, std).
		Name("String").
		Length(1).
		Method(stringCharAt, "charAt", 1).
		Method(stringCharCodeAt, "charCodeAt", 1).
		Method(stringConcat, "concat", 1).
		Method(stringEndsWith, "endsWith", 1).
		Method(stringIncludes, "includes", 1).
		Method(stringIndexOf, "indexOf", 1).
		Method(stringNormalize, "normalize", 0).
		Method(stringRepeat, "repeat", 1).
		Method(stringSlice, "slice", 2).
		Method(stringSplit, "split", 2).
		Method(stringStartsWith, "startsWith", 1).
		Method(stringSubstring, "substring", 2).
		Method(stringToLowerCase, "toLowerCase", 0).
		Method(stringToUpperCase, "toUpperCase", 0).
		Method(stringToLocaleLowerCase, "toLocaleLowerCase", 0).
		Method(stringToLocaleUpperCase, "toLocaleUpperCase", 0).
		Method(stringToString, "toString", 0).
		Method(stringTrim, "trim", 0).
		Method(stringValueOf, "valueOf", 0).
		StaticMethod(stringFromCharCode, "fromCharCode", 1).
		Build()
	return "String", vm.ObjectValue(ctor), vm.DefaultAttribute
}

// stringConstructor converts when called and wraps when constructed. A
// symbol converts to its descriptive string only in the call form.
func stringConstructor(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s := ""
	if len(args) > 0 {
		if arg := args[0]; arg.IsSymbol() && !realm.IsConstructCall() {
			s = arg.AsSymbol().String()
		} else {
			var err error
			if s, err = realm.ToString(arg); err != nil {
				return vm.Undefined, err
			}
		}
	}
	if !realm.IsConstructCall() {
		return vm.StringValue(s), nil
	}
	this.AsObject().BorrowMut(func(o *vm.Object) {
		o.SetData(&vm.StringData{Value: s})
		o.InsertValue(vm.StringKey("length"), vm.IntegerValue(vm.UTF16Length(s)), metadataAttribute)
	})
	return this, nil
}

func thisStringValue(realm *vm.Realm, this vm.Value, method string) (string, error) {
	if this.IsString() {
		return this.AsString(), nil
	}
	if this.IsObject() {
		var s string
		var ok bool
		this.AsObject().Borrow(func(o *vm.Object) { s, ok = o.AsString() })
		if ok {
			return s, nil
		}
	}
	return "", realm.ThrowTypeError("String.prototype.%s requires that 'this' be a String", method)
}

// coercibleString converts the receiver of a generic string method.
func coercibleString(realm *vm.Realm, this vm.Value, method string) (string, error) {
	if this.IsNullish() {
		return "", realm.ThrowTypeError("String.prototype.%s called on null or undefined", method)
	}
	return realm.ToString(this)
}

// units and fromUnits convert between Go strings and UTF-16 code units,
// which is how string positions are counted.
func units(s string) []uint16 { return utf16.Encode([]rune(s)) }

func fromUnits(u []uint16) string { return string(utf16.Decode(u)) }

func stringToString(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := thisStringValue(realm, this, "toString")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(s), nil
}

func stringValueOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := thisStringValue(realm, this, "valueOf")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(s), nil
}

func stringCharAt(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "charAt")
	if err != nil {
		return vm.Undefined, err
	}
	pos, err := realm.ToIntegerOrInfinity(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	u := units(s)
	if pos < 0 || pos >= float64(len(u)) {
		return vm.StringValue(""), nil
	}
	return vm.StringValue(fromUnits(u[int(pos) : int(pos)+1])), nil
}

func stringCharCodeAt(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "charCodeAt")
	if err != nil {
		return vm.Undefined, err
	}
	pos, err := realm.ToIntegerOrInfinity(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	u := units(s)
	if pos < 0 || pos >= float64(len(u)) {
		return vm.NaN, nil
	}
	return vm.IntegerValue(int(u[int(pos)])), nil
}

func stringConcat(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "concat")
	if err != nil {
		return vm.Undefined, err
	}
	var sb strings.Builder
	sb.WriteString(s)
	for _, a := range args {
		part, err := realm.ToString(a)
		if err != nil {
			return vm.Undefined, err
		}
		sb.WriteString(part)
	}
	return vm.StringValue(sb.String()), nil
}

// searchArgs converts the receiver, the search string and an optional
// position argument clamped to the receiver's length.
func searchArgs(realm *vm.Realm, this vm.Value, args []vm.Value, method string, defaultPos func(n int) int) (s, search string, pos int, err error) {
	if s, err = coercibleString(realm, this, method); err != nil {
		return
	}
	arg := vm.Arg(args, 0)
	if arg.IsObject() && arg.AsObject().Kind() == vm.KindRegExp {
		err = realm.ThrowTypeError("First argument to String.prototype.%s must not be a regular expression", method)
		return
	}
	if search, err = realm.ToString(arg); err != nil {
		return
	}
	n := vm.UTF16Length(s)
	pos = defaultPos(n)
	if p := vm.Arg(args, 1); !p.IsUndefined() {
		var f float64
		if f, err = realm.ToIntegerOrInfinity(p); err != nil {
			return
		}
		pos = int(max(0, min(f, float64(n))))
	}
	return
}

func atStart(int) int { return 0 }
func atEnd(n int) int { return n }

func indexOfUnits(haystack, needle []uint16, from int) int {
	for i := from; i+len(needle) <= len(haystack); i++ {
		match := true
		for k := range needle {
			if haystack[i+k] != needle[k] {
				match = false
				break
			}
		}
		if match {
			return i
		}
	}
	return -1
}

func stringIndexOf(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, search, pos, err := searchArgs(realm, this, args, "indexOf", atStart)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.IntegerValue(indexOfUnits(units(s), units(search), pos)), nil
}

func stringIncludes(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, search, pos, err := searchArgs(realm, this, args, "includes", atStart)
	if err != nil {
		return vm.Undefined, err
	}
	return vm.BooleanValue(indexOfUnits(units(s), units(search), pos) >= 0), nil
}

func stringStartsWith(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, search, pos, err := searchArgs(realm, this, args, "startsWith", atStart)
	if err != nil {
		return vm.Undefined, err
	}
	u, needle := units(s), units(search)
	if pos+len(needle) > len(u) {
		return vm.False, nil
	}
	return vm.BooleanValue(indexOfUnits(u[pos:pos+len(needle)], needle, 0) == 0), nil
}

func stringEndsWith(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, search, end, err := searchArgs(realm, this, args, "endsWith", atEnd)
	if err != nil {
		return vm.Undefined, err
	}
	u, needle := units(s), units(search)
	start := end - len(needle)
	if start < 0 {
		return vm.False, nil
	}
	return vm.BooleanValue(indexOfUnits(u[start:end], needle, 0) == 0), nil
}

func stringNormalize(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "normalize")
	if err != nil {
		return vm.Undefined, err
	}
	form := "NFC"
	if f := vm.Arg(args, 0); !f.IsUndefined() {
		if form, err = realm.ToString(f); err != nil {
			return vm.Undefined, err
		}
	}
	var nf norm.Form
	switch form {
	case "NFC":
		nf = norm.NFC
	case "NFD":
		nf = norm.NFD
	case "NFKC":
		nf = norm.NFKC
	case "NFKD":
		nf = norm.NFKD
	default:
		return vm.Undefined, realm.ThrowRangeError("The normalization form should be one of NFC, NFD, NFKC, NFKD.")
	}
	return vm.StringValue(nf.String(s)), nil
}

func stringRepeat(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "repeat")
	if err != nil {
		return vm.Undefined, err
	}
	n, err := realm.ToIntegerOrInfinity(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	if n < 0 || n > maxSafeInteger || (s != "" && n*float64(len(s)) > 1<<29) {
		return vm.Undefined, realm.ThrowRangeError("Invalid count value: %s", vm.NumberToString(n))
	}
	if s == "" {
		return vm.StringValue(""), nil
	}
	return vm.StringValue(strings.Repeat(s, int(n))), nil
}

func stringSlice(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "slice")
	if err != nil {
		return vm.Undefined, err
	}
	u := units(s)
	start, err := relativeIndex(realm, vm.Arg(args, 0), len(u), 0)
	if err != nil {
		return vm.Undefined, err
	}
	end, err := relativeIndex(realm, vm.Arg(args, 1), len(u), len(u))
	if err != nil {
		return vm.Undefined, err
	}
	if start >= end {
		return vm.StringValue(""), nil
	}
	return vm.StringValue(fromUnits(u[start:end])), nil
}

func stringSubstring(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "substring")
	if err != nil {
		return vm.Undefined, err
	}
	u := units(s)
	clamp := func(v vm.Value, fallback int) (int, error) {
		if v.IsUndefined() {
			return fallback, nil
		}
		f, err := realm.ToIntegerOrInfinity(v)
		if err != nil {
			return 0, err
		}
		return int(max(0, min(f, float64(len(u))))), nil
	}
	start, err := clamp(vm.Arg(args, 0), 0)
	if err != nil {
		return vm.Undefined, err
	}
	end, err := clamp(vm.Arg(args, 1), len(u))
	if err != nil {
		return vm.Undefined, err
	}
	if start > end {
		start, end = end, start
	}
	return vm.StringValue(fromUnits(u[start:end])), nil
}

func stringSplit(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "split")
	if err != nil {
		return vm.Undefined, err
	}
	limit := uint32(1<<32 - 1)
	if l := vm.Arg(args, 1); !l.IsUndefined() {
		n, err := realm.ToNumber(l)
		if err != nil {
			return vm.Undefined, err
		}
		limit = uint32(int64(n))
	}
	sepArg := vm.Arg(args, 0)
	if sepArg.IsUndefined() {
		return vm.ObjectValue(createArrayFromList(realm, []vm.Value{vm.StringValue(s)})), nil
	}
	sep, err := realm.ToString(sepArg)
	if err != nil {
		return vm.Undefined, err
	}

	var parts []vm.Value
	if sep == "" {
		for _, unit := range units(s) {
			parts = append(parts, vm.StringValue(fromUnits([]uint16{unit})))
		}
	} else {
		for _, p := range strings.Split(s, sep) {
			parts = append(parts, vm.StringValue(p))
		}
	}
	if uint32(len(parts)) > limit {
		parts = parts[:limit]
	}
	return vm.ObjectValue(createArrayFromList(realm, parts)), nil
}

func stringToLowerCase(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "toLowerCase")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(cases.Lower(language.Und).String(s)), nil
}

func stringToUpperCase(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "toUpperCase")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(cases.Upper(language.Und).String(s)), nil
}

// localeTag reads an optional BCP 47 locale argument.
func localeTag(realm *vm.Realm, v vm.Value) (language.Tag, error) {
	if v.IsUndefined() {
		return language.Und, nil
	}
	name, err := realm.ToString(v)
	if err != nil {
		return language.Und, err
	}
	tag, err := language.Parse(name)
	if err != nil {
		return language.Und, realm.ThrowRangeError("Incorrect locale information provided")
	}
	return tag, nil
}

func stringToLocaleLowerCase(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "toLocaleLowerCase")
	if err != nil {
		return vm.Undefined, err
	}
	tag, err := localeTag(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(cases.Lower(tag).String(s)), nil
}

func stringToLocaleUpperCase(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "toLocaleUpperCase")
	if err != nil {
		return vm.Undefined, err
	}
	tag, err := localeTag(realm, vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(cases.Upper(tag).String(s)), nil
}

func stringTrim(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s, err := coercibleString(realm, this, "trim")
	if err != nil {
		return vm.Undefined, err
	}
	return vm.StringValue(strings.Trim(s, jsWhitespace)), nil
}

func stringFromCharCode(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	u := make([]uint16, len(args))
	for i, a := range args {
		n, err := realm.ToNumber(a)
		if err != nil {
			return vm.Undefined, err
		}
		u[i] = uint16(int64(n))
	}
	return vm.StringValue(fromUnits(u)), nil
}
