package builtins

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	j "github.com/goccy/go-json"

	"jscore/pkg/vm"
)

type JSONInitializer struct{}

func (s *JSONInitializer) Name() string {
	return "JSON"
}

func (s *JSONInitializer) Priority() int {
	return PriorityJSON
}

func (s *JSONInitializer) Init(realm *vm.Realm) (string, vm.Value, vm.Attribute) {
	obj := NewObjectBuilder(realm).
		Function(jsonParse, "parse", 2).
		Function(jsonStringify, "stringify", 3).
		Property(vm.SymbolKey(realm.WellKnownSymbols().ToStringTag), vm.StringValue("JSON"), vm.ReadOnly|vm.NonEnumerable|vm.Configurable).
		Build()
	return "JSON", vm.ObjectValue(obj), vm.DefaultAttribute
}

// --- parse ---

func jsonParse(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	text, err := realm.ToString(vm.Arg(args, 0))
	if err != nil {
		return vm.Undefined, err
	}
	dec := j.NewDecoder(strings.NewReader(text))
	dec.UseNumber()

	p := &jsonParser{realm: realm, dec: dec}
	result, err := p.value()
	if err != nil {
		return vm.Undefined, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return vm.Undefined, realm.ThrowSyntaxError("Unexpected non-whitespace character after JSON")
	}

	if reviver := vm.Arg(args, 1); reviver.IsCallable() {
		root := realm.ConstructObject()
		root.InsertValue(vm.StringKey(""), result, vm.AllAttributes)
		return internalize(realm, vm.ObjectValue(root), vm.StringKey(""), reviver)
	}
	return result, nil
}

type jsonParser struct {
	realm *vm.Realm
	dec   *j.Decoder
}

func (p *jsonParser) syntaxError(err error) error {
	if err == io.EOF {
		return p.realm.ThrowSyntaxError("Unexpected end of JSON input")
	}
	return p.realm.ThrowSyntaxError("Unexpected token in JSON: %v", err)
}

func (p *jsonParser) value() (vm.Value, error) {
	tok, err := p.dec.Token()
	if err != nil {
		return vm.Undefined, p.syntaxError(err)
	}
	return p.fromToken(tok)
}

func (p *jsonParser) fromToken(tok any) (vm.Value, error) {
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			return p.object()
		case '[':
			return p.array()
		}
		return vm.Undefined, p.realm.ThrowSyntaxError("Unexpected token %s in JSON", v)
	case string:
		return vm.StringValue(v), nil
	case bool:
		return vm.BooleanValue(v), nil
	case j.Number:
		f, err := strconv.ParseFloat(string(v), 64)
		if err != nil && !math.IsInf(f, 0) {
			return vm.Undefined, p.syntaxError(err)
		}
		return vm.NumberValue(f), nil
	case float64:
		return vm.NumberValue(v), nil
	case nil:
		return vm.Null, nil
	}
	return vm.Undefined, p.realm.ThrowSyntaxError("Unexpected token %v in JSON", tok)
}

// object reads members up to the closing brace. Member order is kept; a
// repeated name keeps its first position and its last value.
func (p *jsonParser) object() (vm.Value, error) {
	obj := p.realm.ConstructObject()
	for p.dec.More() {
		tok, err := p.dec.Token()
		if err != nil {
			return vm.Undefined, p.syntaxError(err)
		}
		name, ok := tok.(string)
		if !ok {
			return vm.Undefined, p.realm.ThrowSyntaxError("Expected property name in JSON")
		}
		v, err := p.value()
		if err != nil {
			return vm.Undefined, err
		}
		obj.InsertValue(vm.StringKey(name), v, vm.AllAttributes)
	}
	if _, err := p.dec.Token(); err != nil {
		return vm.Undefined, p.syntaxError(err)
	}
	return vm.ObjectValue(obj), nil
}

func (p *jsonParser) array() (vm.Value, error) {
	var items []vm.Value
	for p.dec.More() {
		v, err := p.value()
		if err != nil {
			return vm.Undefined, err
		}
		items = append(items, v)
	}
	if _, err := p.dec.Token(); err != nil {
		return vm.Undefined, p.syntaxError(err)
	}
	return vm.ObjectValue(createArrayFromList(p.realm, items)), nil
}

// internalize walks the parsed value bottom-up through the reviver.
func internalize(realm *vm.Realm, holder vm.Value, key vm.PropertyKey, reviver vm.Value) (vm.Value, error) {
	val, err := realm.Get(holder, key)
	if err != nil {
		return vm.Undefined, err
	}
	if val.IsObject() {
		obj := val.AsObject()
		for _, k := range obj.OwnKeys() {
			if k.IsSymbol() {
				continue
			}
			if p, ok := obj.GetOwn(k); !ok || !p.Enumerable() {
				continue
			}
			revived, err := internalize(realm, val, k, reviver)
			if err != nil {
				return vm.Undefined, err
			}
			if revived.IsUndefined() {
				if err := realm.DeleteProperty(obj, k); err != nil {
					return vm.Undefined, err
				}
				continue
			}
			obj.InsertValue(k, revived, vm.AllAttributes)
		}
	}
	return realm.Call(reviver, holder, []vm.Value{key.ToValue(), val})
}

// --- stringify ---

type jsonStringifier struct {
	realm    *vm.Realm
	replacer vm.Value
	gap      string
	stack    []*vm.GcObject
}

func jsonStringify(this vm.Value, args []vm.Value, realm *vm.Realm) (vm.Value, error) {
	s := &jsonStringifier{realm: realm}
	if r := vm.Arg(args, 1); r.IsCallable() {
		s.replacer = r
	}
	gap, err := jsonGap(realm, vm.Arg(args, 2))
	if err != nil {
		return vm.Undefined, err
	}
	s.gap = gap

	wrapper := realm.ConstructObject()
	wrapper.InsertValue(vm.StringKey(""), vm.Arg(args, 0), vm.AllAttributes)
	var buf bytes.Buffer
	ok, err := s.property(&buf, vm.ObjectValue(wrapper), vm.StringKey(""), "")
	if err != nil {
		return vm.Undefined, err
	}
	if !ok {
		return vm.Undefined, nil
	}
	return vm.StringValue(buf.String()), nil
}

// jsonGap computes the indentation unit: up to ten spaces or the first ten
// characters of a string.
func jsonGap(realm *vm.Realm, space vm.Value) (string, error) {
	if space.IsObject() {
		switch space.AsObject().Kind() {
		case vm.KindNumber, vm.KindString:
			prim, err := realm.ToPrimitive(space, vm.HintDefault)
			if err != nil {
				return "", err
			}
			space = prim
		}
	}
	switch {
	case space.IsNumber():
		n, err := realm.ToIntegerOrInfinity(space)
		if err != nil {
			return "", err
		}
		return strings.Repeat(" ", int(max(0, min(10, n)))), nil
	case space.IsString():
		s := space.AsString()
		if r := []rune(s); len(r) > 10 {
			s = string(r[:10])
		}
		return s, nil
	}
	return "", nil
}

// property serializes holder[key] into buf and reports whether anything
// was written; undefined, functions and symbols produce nothing.
func (s *jsonStringifier) property(buf *bytes.Buffer, holder vm.Value, key vm.PropertyKey, indent string) (bool, error) {
	realm := s.realm
	val, err := realm.Get(holder, key)
	if err != nil {
		return false, err
	}
	if val.IsObject() || val.IsBigInt() {
		toJSON, err := realm.GetV(val, "toJSON")
		if err != nil {
			return false, err
		}
		if toJSON.IsCallable() {
			if val, err = realm.Call(toJSON, val, []vm.Value{key.ToValue()}); err != nil {
				return false, err
			}
		}
	}
	if !s.replacer.IsUndefined() {
		if val, err = realm.Call(s.replacer, holder, []vm.Value{key.ToValue(), val}); err != nil {
			return false, err
		}
	}

	if val.IsObject() {
		obj := val.AsObject()
		switch obj.Kind() {
		case vm.KindNumber, vm.KindString, vm.KindBoolean:
			if val, err = realm.ToPrimitive(val, vm.HintDefault); err != nil {
				return false, err
			}
		}
	}

	switch val.Type() {
	case vm.TypeNull:
		buf.WriteString("null")
	case vm.TypeBoolean:
		buf.WriteString(strconv.FormatBool(val.AsBoolean()))
	case vm.TypeString:
		if err := writeJSONString(buf, val.AsString()); err != nil {
			return false, err
		}
	case vm.TypeNumber:
		if f := val.AsFloat(); math.IsNaN(f) || math.IsInf(f, 0) {
			buf.WriteString("null")
		} else {
			buf.WriteString(vm.NumberToString(f))
		}
	case vm.TypeBigInt:
		return false, realm.ThrowTypeError("Do not know how to serialize a BigInt")
	case vm.TypeObject:
		if val.IsCallable() {
			return false, nil
		}
		if err := s.enter(val.AsObject()); err != nil {
			return false, err
		}
		defer s.leave()
		if val.AsObject().Kind() == vm.KindArray {
			return true, s.array(buf, val, indent)
		}
		return true, s.object(buf, val, indent)
	default:
		return false, nil
	}
	return true, nil
}

func (s *jsonStringifier) enter(obj *vm.GcObject) error {
	for _, seen := range s.stack {
		if seen == obj {
			return s.realm.ThrowTypeError("Converting circular structure to JSON")
		}
	}
	s.stack = append(s.stack, obj)
	return nil
}

func (s *jsonStringifier) leave() {
	s.stack = s.stack[:len(s.stack)-1]
}

func (s *jsonStringifier) object(buf *bytes.Buffer, val vm.Value, indent string) error {
	inner := indent + s.gap
	_, keys, err := enumerableOwn(s.realm, val)
	if err != nil {
		return err
	}
	buf.WriteByte('{')
	written := 0
	for _, key := range keys {
		var member bytes.Buffer
		ok, err := s.property(&member, val, key, inner)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if written > 0 {
			buf.WriteByte(',')
		}
		s.newline(buf, inner)
		if err := writeJSONString(buf, key.String()); err != nil {
			return err
		}
		buf.WriteByte(':')
		if s.gap != "" {
			buf.WriteByte(' ')
		}
		buf.Write(member.Bytes())
		written++
	}
	if written > 0 {
		s.newline(buf, indent)
	}
	buf.WriteByte('}')
	return nil
}

func (s *jsonStringifier) array(buf *bytes.Buffer, val vm.Value, indent string) error {
	inner := indent + s.gap
	n, err := lengthOf(s.realm, val)
	if err != nil {
		return err
	}
	buf.WriteByte('[')
	for i := 0; i < n; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		s.newline(buf, inner)
		ok, err := s.property(buf, val, vm.IntKey(i), inner)
		if err != nil {
			return err
		}
		if !ok {
			buf.WriteString("null")
		}
	}
	if n > 0 {
		s.newline(buf, indent)
	}
	buf.WriteByte(']')
	return nil
}

func (s *jsonStringifier) newline(buf *bytes.Buffer, indent string) {
	if s.gap == "" {
		return
	}
	buf.WriteByte('\n')
	buf.WriteString(indent)
}

// writeJSONString quotes s the way JSON.stringify does, leaving <, > and &
// unescaped.
func writeJSONString(buf *bytes.Buffer, s string) error {
	var out bytes.Buffer
	enc := j.NewEncoder(&out)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return err
	}
	buf.Write(bytes.TrimSuffix(out.Bytes(), []byte("\n")))
	return nil
}
