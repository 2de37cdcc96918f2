package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jscore/pkg/errors"
)

func TestNewObjectDefaults(t *testing.T) {
	o := NewObject()
	assert.True(t, o.IsOrdinary())
	assert.True(t, o.Prototype().IsNull())
	assert.True(t, o.IsExtensible())
	assert.Zero(t, o.PropertyCount())
}

func TestPropertyMapsAreDisjoint(t *testing.T) {
	o := NewObject()
	sym := NewSymbol("tag")

	o.InsertValue(StringKey("7"), StringValue("index"), AllAttributes)
	o.InsertValue(StringKey("name"), StringValue("string"), AllAttributes)
	o.InsertValue(SymbolKey(sym), StringValue("symbol"), AllAttributes)

	assert.Len(t, o.indexed, 1)
	assert.Equal(t, 1, o.strings.Len())
	assert.Equal(t, 1, o.symbols.Len())

	p, ok := o.GetOwn(IndexKey(7))
	require.True(t, ok)
	assert.Equal(t, "index", p.Value().AsString())

	// "07" is not a canonical index and stays a string key
	o.InsertValue(StringKey("07"), True, AllAttributes)
	assert.Equal(t, 2, o.strings.Len())
}

func TestOwnKeysOrder(t *testing.T) {
	o := NewObject()
	sym := NewSymbol("s")
	o.InsertValue(StringKey("b"), True, AllAttributes)
	o.InsertValue(SymbolKey(sym), True, AllAttributes)
	o.InsertValue(IndexKey(10), True, AllAttributes)
	o.InsertValue(StringKey("a"), True, AllAttributes)
	o.InsertValue(IndexKey(2), True, AllAttributes)
	// overwriting keeps the original position
	o.InsertValue(StringKey("b"), False, AllAttributes)

	var got []string
	for _, k := range o.OwnKeys() {
		got = append(got, k.String())
	}
	assert.Equal(t, []string{"2", "10", "b", "a", "Symbol(s)"}, got)
}

func TestInsertOverwritesRegardlessOfAttributes(t *testing.T) {
	o := NewObject()
	key := StringKey("frozen")
	o.InsertValue(key, IntegerValue(1), ReadOnly|NonEnumerable|Permanent)
	o.InsertValue(key, IntegerValue(2), AllAttributes)

	p, ok := o.GetOwn(key)
	require.True(t, ok)
	assert.Equal(t, 2.0, p.Value().AsFloat())
	assert.Equal(t, AllAttributes, p.Attribute())
}

func TestDeleteNonConfigurableLeavesMapUnchanged(t *testing.T) {
	o := NewObject()
	key := StringKey("length")
	o.InsertValue(key, IntegerValue(3), ReadOnly|NonEnumerable|Permanent)

	err := o.Delete(key)
	var nc *errors.NotConfigurableError
	require.ErrorAs(t, err, &nc)
	assert.Equal(t, "length", nc.Key)

	p, ok := o.GetOwn(key)
	require.True(t, ok)
	assert.Equal(t, 3.0, p.Value().AsFloat())
	assert.Equal(t, 1, o.PropertyCount())
}

func TestDeleteConfigurableAndAbsent(t *testing.T) {
	o := NewObject()
	o.InsertValue(IndexKey(0), True, Configurable)
	require.NoError(t, o.Delete(IndexKey(0)))
	require.NoError(t, o.Delete(StringKey("missing")))
	assert.Zero(t, o.PropertyCount())
}

func TestSetPrototypeRejectsPrimitives(t *testing.T) {
	o := NewObject()
	assert.PanicsWithError(t,
		errors.Contract("SetPrototype", "prototype must be an object or null, got number").Error(),
		func() { o.SetPrototype(IntegerValue(1)) })
	assert.True(t, o.Prototype().IsNull())
}

func TestCapabilityQueries(t *testing.T) {
	o := NewNumberObject(4.5, Null)
	assert.True(t, o.IsNumber())
	n, ok := o.AsNumber()
	require.True(t, ok)
	assert.Equal(t, 4.5, n)

	_, ok = o.AsString()
	assert.False(t, ok, "mismatched accessor must report absence")
	_, ok = o.AsMap()
	assert.False(t, ok)
	assert.False(t, o.IsCallable())

	s := NewStringObject("héllo", Null)
	str, ok := s.AsString()
	require.True(t, ok)
	assert.Equal(t, "héllo", str)
	length, _ := s.GetOwn(StringKey("length"))
	assert.Equal(t, 5.0, length.Value().AsFloat())
}

func TestSetDataRetagsObject(t *testing.T) {
	o := NewObject()
	o.SetData(&ErrorData{})
	assert.True(t, o.IsError())
	assert.Equal(t, "Error", o.Kind().String())
}

func TestFunctionObjectFlags(t *testing.T) {
	noop := func(this Value, args []Value, realm *Realm) (Value, error) { return Undefined, nil }
	fn := NewFunctionObject(noop, FlagCallable, Null)
	assert.True(t, fn.IsFunction())
	assert.True(t, fn.IsCallable())
	assert.False(t, fn.IsConstructable())
}

func TestMapDataSameValueZero(t *testing.T) {
	m := NewMapData()
	m.Set(NumberValue(0), StringValue("zero"))
	m.Set(NaN, StringValue("nan"))

	v, ok := m.Get(NumberValue(negZero()))
	require.True(t, ok)
	assert.Equal(t, "zero", v.AsString())

	v, ok = m.Get(NumberValue(nanValue()))
	require.True(t, ok)
	assert.Equal(t, "nan", v.AsString())

	m.Set(StringValue("0"), True)
	assert.Equal(t, 3, m.Size())
	assert.True(t, m.Delete(NumberValue(0)))
	assert.False(t, m.Has(NumberValue(0)))
	assert.Equal(t, "NaN", NumberToString(m.Entries()[0].Key.AsFloat()))
}
