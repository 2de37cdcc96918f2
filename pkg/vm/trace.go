package vm

// Walk visits every object reachable from roots exactly once, following
// prototypes, property values, accessors and traced data payloads. Cycles
// are fine. fn returning false prunes the walk below that object.
//
// No borrow is held while fn runs.
func Walk(roots []Value, fn func(*GcObject) bool) {
	seen := make(map[*GcObject]struct{})
	stack := make([]*GcObject, 0, len(roots))
	push := func(v Value) {
		if !v.IsObject() {
			return
		}
		g := v.AsObject()
		if !g.Alive() {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		stack = append(stack, g)
	}
	for _, r := range roots {
		push(r)
	}
	for len(stack) > 0 {
		g := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if !fn(g) {
			continue
		}
		var children []Value
		g.obj.trace(func(v Value) {
			if v.IsObject() {
				children = append(children, v)
			}
		})
		for _, c := range children {
			push(c)
		}
	}
}

// KindCounts returns the number of reachable objects per data kind.
func KindCounts(roots ...Value) map[DataKind]int {
	counts := make(map[DataKind]int)
	Walk(roots, func(g *GcObject) bool {
		counts[g.obj.Kind()]++
		return true
	})
	return counts
}
