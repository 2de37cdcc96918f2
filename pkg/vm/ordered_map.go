package vm

import (
	list "github.com/bahlo/generic-list-go"
)

type orderedEntry[K comparable, V any] struct {
	key   K
	value V
}

// OrderedMap is a hash map that remembers insertion order. Overwriting an
// existing key keeps its position. The zero value is ready to use.
type OrderedMap[K comparable, V any] struct {
	index map[K]*list.Element[orderedEntry[K, V]]
	order *list.List[orderedEntry[K, V]]
}

func (m *OrderedMap[K, V]) init() {
	if m.index == nil {
		m.index = make(map[K]*list.Element[orderedEntry[K, V]])
		m.order = list.New[orderedEntry[K, V]]()
	}
}

func (m *OrderedMap[K, V]) Len() int {
	return len(m.index)
}

func (m *OrderedMap[K, V]) Get(key K) (V, bool) {
	if e, ok := m.index[key]; ok {
		return e.Value.value, true
	}
	var zero V
	return zero, false
}

func (m *OrderedMap[K, V]) Has(key K) bool {
	_, ok := m.index[key]
	return ok
}

// Set inserts or overwrites key.
func (m *OrderedMap[K, V]) Set(key K, value V) {
	m.init()
	if e, ok := m.index[key]; ok {
		e.Value.value = value
		return
	}
	m.index[key] = m.order.PushBack(orderedEntry[K, V]{key: key, value: value})
}

// Delete removes key and reports whether it was present.
func (m *OrderedMap[K, V]) Delete(key K) bool {
	e, ok := m.index[key]
	if !ok {
		return false
	}
	m.order.Remove(e)
	delete(m.index, key)
	return true
}

func (m *OrderedMap[K, V]) Clear() {
	m.index = nil
	m.order = nil
}

// Keys returns the keys in insertion order.
func (m *OrderedMap[K, V]) Keys() []K {
	keys := make([]K, 0, m.Len())
	m.Range(func(k K, _ V) bool {
		keys = append(keys, k)
		return true
	})
	return keys
}

// Range calls fn for each entry in insertion order until fn returns false.
// fn must not modify the map; iterate over Keys() for that.
func (m *OrderedMap[K, V]) Range(fn func(K, V) bool) {
	if m.order == nil {
		return
	}
	for e := m.order.Front(); e != nil; e = e.Next() {
		if !fn(e.Value.key, e.Value.value) {
			return
		}
	}
}
