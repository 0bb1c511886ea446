// Package gc implements a mark-and-sweep side table for large heap values.
//
// Values are immutable and owned by the Go runtime; the heap only tracks
// which large values are still reachable from the roots of a session, so the
// session can account for the memory it holds and release the bookkeeping of
// unreachable values. Collection runs only when asked to, so identical
// executions collect at identical points.
package gc

import (
	"reflect"
	"sort"

	"src.rook.sh/pkg/eval/vals"
	"src.rook.sh/pkg/logutil"
)

var logger = logutil.GetLogger("[gc] ")

// ID identifies a tracked object. The zero ID is never used.
type ID uint64

// Tracer is implemented by values that reference other values in ways the
// heap cannot see, such as closures and their captured environments.
type Tracer interface {
	Trace(visit func(any))
}

// DefaultThreshold is the default minimum size of a tracked value.
const DefaultThreshold = 256

type object struct {
	value  any
	size   int
	roots  int
	marked bool
}

// Heap is the side table. It is not safe for concurrent use.
type Heap struct {
	// Threshold is the minimum estimated size in bytes for a value to be
	// tracked.
	Threshold int

	objects map[ID]*object
	index   map[any]ID
	nextID  ID
	bytes   int
	peak    int
	stats   Stats
}

// Stats summarizes the activity of a heap.
type Stats struct {
	Tracked     int
	Collections int
	Freed       int
}

// New creates an empty heap.
func New() *Heap {
	return &Heap{Threshold: DefaultThreshold,
		objects: map[ID]*object{}, index: map[any]ID{}}
}

// identity returns the key under which a value is tracked. Only arrays,
// objects, strings and callable handles can be tracked; small values,
// tuples and enum values are never tracked.
func identity(v any) (any, bool) {
	switch v.(type) {
	case nil, vals.Unit, bool, int64, float64, vals.Char, vals.Range, vals.Tuple, vals.Variant:
		return nil, false
	case string, vals.Array, vals.Object:
		return v, true
	}
	if t := reflect.TypeOf(v); t.Kind() == reflect.Pointer {
		return v, true
	}
	return nil, false
}

// Track starts tracking a value if it is large enough, returning its ID. A
// value that is already tracked keeps its ID.
func (h *Heap) Track(v any) (ID, bool) {
	key, ok := identity(v)
	if !ok {
		return 0, false
	}
	if id, ok := h.index[key]; ok {
		return id, true
	}
	size := vals.Size(v)
	if size < h.Threshold {
		return 0, false
	}
	h.nextID++
	id := h.nextID
	h.objects[id] = &object{value: v, size: size}
	h.index[key] = id
	h.bytes += size
	if h.bytes > h.peak {
		h.peak = h.bytes
	}
	h.stats.Tracked++
	return id, true
}

// Get returns a tracked value.
func (h *Heap) Get(id ID) (any, bool) {
	o, ok := h.objects[id]
	if !ok {
		return nil, false
	}
	return o.value, true
}

// Root pins a tracked object, so that it survives collection even when it is
// not reachable from the roots passed to Collect.
func (h *Heap) Root(id ID) {
	if o, ok := h.objects[id]; ok {
		o.roots++
	}
}

// Unroot undoes one Root.
func (h *Heap) Unroot(id ID) {
	if o, ok := h.objects[id]; ok && o.roots > 0 {
		o.roots--
	}
}

// Len returns the number of tracked objects.
func (h *Heap) Len() int { return len(h.objects) }

// Bytes returns the estimated size of all tracked objects.
func (h *Heap) Bytes() int { return h.bytes }

// Peak returns the highest value Bytes has had.
func (h *Heap) Peak() int { return h.peak }

// Stats returns the statistics of the heap.
func (h *Heap) Stats() Stats { return h.stats }

// Collect marks every tracked object reachable from the given roots and from
// pinned objects, then frees the rest. It returns the number of objects
// freed.
func (h *Heap) Collect(roots ...any) int {
	for _, o := range h.objects {
		o.marked = false
	}
	visited := map[any]bool{}
	var mark func(v any)
	mark = func(v any) {
		if key, ok := identity(v); ok {
			if visited[key] {
				return
			}
			visited[key] = true
			if id, ok := h.index[key]; ok {
				h.objects[id].marked = true
			}
		}
		switch v := v.(type) {
		case vals.Array:
			for it := v.Iterator(); it.HasElem(); it.Next() {
				mark(it.Elem())
			}
		case vals.Tuple:
			for _, e := range v {
				mark(e)
			}
		case vals.Variant:
			for _, e := range v.Data {
				mark(e)
			}
		case vals.Object:
			if v.Len() > 0 {
				for it := v.Fields.Iterator(); it.HasElem(); it.Next() {
					_, f := it.Elem()
					mark(f)
				}
			}
		case Tracer:
			v.Trace(mark)
		}
	}
	for _, r := range roots {
		mark(r)
	}
	for _, id := range h.sortedIDs() {
		if o := h.objects[id]; o.roots > 0 && !o.marked {
			mark(o.value)
		}
	}

	freed := 0
	for _, id := range h.sortedIDs() {
		o := h.objects[id]
		if o.marked || o.roots > 0 {
			continue
		}
		key, _ := identity(o.value)
		delete(h.index, key)
		delete(h.objects, id)
		h.bytes -= o.size
		freed++
	}
	h.stats.Collections++
	h.stats.Freed += freed
	logger.Printf("collection %d: freed %d objects, %d remain (%d bytes)",
		h.stats.Collections, freed, len(h.objects), h.bytes)
	return freed
}

func (h *Heap) sortedIDs() []ID {
	ids := make([]ID, 0, len(h.objects))
	for id := range h.objects {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Reset forgets every tracked object.
func (h *Heap) Reset() {
	h.objects = map[ID]*object{}
	h.index = map[any]ID{}
	h.bytes = 0
}
