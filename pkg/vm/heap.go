package vm

import (
	"fmt"

	"fortio.org/safecast"
	"github.com/untillpro/goutils/logger"

	"jscore/pkg/errors"
)

// Heap is the arena that owns every object of a realm. Objects are
// addressed by slot; freed slots are reused. Reclamation is an explicit
// mark-and-sweep pass (Collect) so reference cycles between constructors
// and prototypes are no obstacle.
type Heap struct {
	objects []*GcObject // slot -> handle, nil when free
	free    []uint32
	nextID  uint64
	live    int
}

// NewHeap creates a new heap with the specified initial capacity
func NewHeap(initialCapacity int) *Heap {
	return &Heap{objects: make([]*GcObject, 0, initialCapacity)}
}

// Alloc moves o into the heap and returns its handle.
func (h *Heap) Alloc(o *Object) *GcObject {
	if o == nil {
		panic(errors.Contract("Heap.Alloc", "nil object"))
	}
	h.nextID++
	g := &GcObject{heap: h, id: h.nextID, obj: o}
	if n := len(h.free); n > 0 {
		g.slot = h.free[n-1]
		h.free = h.free[:n-1]
		h.objects[g.slot] = g
	} else {
		slot, err := safecast.Conv[uint32](len(h.objects))
		if err != nil {
			panic(errors.Contract("Heap.Alloc", "heap exhausted").CausedBy(err))
		}
		g.slot = slot
		h.objects = append(h.objects, g)
	}
	h.live++
	return g
}

// Len returns the number of live objects.
func (h *Heap) Len() int { return h.live }

// Each calls fn for every live object in slot order.
func (h *Heap) Each(fn func(*GcObject)) {
	for _, g := range h.objects {
		if g != nil {
			fn(g)
		}
	}
}

// Collect frees every object not reachable from roots and returns how many
// were freed. Objects that are currently borrowed are treated as roots.
// Handles to freed objects panic on use.
func (h *Heap) Collect(roots ...Value) int {
	all := append([]Value(nil), roots...)
	h.Each(func(g *GcObject) {
		if g.IsBorrowed() {
			all = append(all, ObjectValue(g))
		}
	})
	marked := make(map[*GcObject]struct{}, h.live)
	Walk(all, func(g *GcObject) bool {
		marked[g] = struct{}{}
		return true
	})
	freed := 0
	for slot, g := range h.objects {
		if g == nil {
			continue
		}
		if _, ok := marked[g]; ok {
			continue
		}
		g.obj = nil
		h.objects[slot] = nil
		h.free = append(h.free, g.slot)
		freed++
	}
	h.live -= freed
	if logger.IsVerbose() {
		logger.Verbose(fmt.Sprintf("heap: collected %d objects, %d live", freed, h.live))
	}
	return freed
}
