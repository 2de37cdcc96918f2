package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type point struct{ X, Y int }

func (point) Trace(func(Value)) {}

// namedPoint has point's layout but is a distinct type.
type namedPoint point

func (namedPoint) Trace(func(Value)) {}

type tracer interface {
	NativeObject
}

func TestDowncastExactType(t *testing.T) {
	o := NewNativeObject(point{X: 1, Y: 2}, Null)
	require.True(t, o.IsNativeObject())

	assert.True(t, Is[point](o))
	p, ok := DowncastRef[point](o)
	require.True(t, ok)
	assert.Equal(t, point{X: 1, Y: 2}, p)

	assert.False(t, Is[namedPoint](o))
	_, ok = DowncastRef[namedPoint](o)
	assert.False(t, ok)

	// an interface the payload satisfies is still a different type
	_, ok = DowncastRef[tracer](o)
	assert.False(t, ok)

	_, ok = DowncastMut[*point](o)
	assert.False(t, ok)
}

func TestDowncastMutUpdatesPayload(t *testing.T) {
	o := NewNativeObject(point{X: 1}, Null)
	p, ok := DowncastMut[point](o)
	require.True(t, ok)
	p.X = 10

	got, _ := DowncastRef[point](o)
	assert.Equal(t, 10, got.X)
	assert.Equal(t, "vm.point", o.Data().(*NativeData).TypeName())
}

func TestDowncastOnNonNativeObject(t *testing.T) {
	o := NewBooleanObject(true, Null)
	assert.False(t, Is[point](o))
	p, ok := DowncastRef[point](o)
	assert.False(t, ok)
	assert.Zero(t, p)
}
