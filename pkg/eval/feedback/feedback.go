// Package feedback records the types observed at operation sites.
//
// Every binary operation and call site has an inline cache entry. An entry
// starts uninitialized, becomes monomorphic on its first observation,
// polymorphic when a second type shape shows up, and megamorphic once it has
// seen more than MaxPolymorphic shapes. Entries never move back to an earlier
// state.
package feedback

import (
	"sort"

	"src.rook.sh/pkg/eval/vals"
)

// State is the state of an inline cache entry.
type State uint8

// Possible states.
const (
	Uninitialized State = iota
	Monomorphic
	Polymorphic
	Megamorphic
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Monomorphic:
		return "monomorphic"
	case Polymorphic:
		return "polymorphic"
	default:
		return "megamorphic"
	}
}

// MaxPolymorphic is the largest number of shapes a polymorphic entry holds.
const MaxPolymorphic = 4

// Shape is the combination of operand types observed at one execution of a
// site.
type Shape string

// ShapeOf builds the shape of a list of values.
func ShapeOf(vs ...any) Shape {
	b := make([]byte, len(vs))
	for i, v := range vs {
		b[i] = byte(vals.IDOf(v))
	}
	return Shape(b)
}

// Types decodes a shape.
func (s Shape) Types() []vals.TypeID {
	ts := make([]vals.TypeID, len(s))
	for i := range ts {
		ts[i] = vals.TypeID(s[i])
	}
	return ts
}

func (s Shape) String() string {
	str := "("
	for i, t := range s.Types() {
		if i > 0 {
			str += ", "
		}
		str += t.String()
	}
	return str + ")"
}

// Entry is an inline cache entry.
type Entry struct {
	State  State
	Shapes []Shape
	Hits   uint64
	Misses uint64
}

// Observe records one execution of the site and reports whether it hit the
// cache.
func (e *Entry) Observe(s Shape) bool {
	if e.State == Megamorphic {
		e.Misses++
		return false
	}
	for _, known := range e.Shapes {
		if known == s {
			e.Hits++
			return true
		}
	}
	e.Misses++
	e.Shapes = append(e.Shapes, s)
	switch {
	case len(e.Shapes) == 1:
		e.State = Monomorphic
	case len(e.Shapes) <= MaxPolymorphic:
		e.State = Polymorphic
	default:
		e.State = Megamorphic
		e.Shapes = nil
	}
	return false
}

// HitRate returns the ratio of hits to observations.
func (e *Entry) HitRate() float64 {
	total := e.Hits + e.Misses
	if total == 0 {
		return 0
	}
	return float64(e.Hits) / float64(total)
}

// Site identifies an operation site. It is usually the AST node of the
// operation.
type Site any

// DefaultMaxSites is the default value of Table.MaxSites.
const DefaultMaxSites = 10000

// Table holds the inline caches and call-site types of one session.
type Table struct {
	// MaxSites is the largest number of site entries kept. When a new site
	// would exceed it, the entry of the oldest site is dropped. Zero means no
	// limit.
	MaxSites int

	entries  map[Site]*Entry
	order    []Site
	hits     uint64
	misses   uint64
	argTypes map[string][]Shape
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{
		MaxSites: DefaultMaxSites,
		entries:  map[Site]*Entry{},
		argTypes: map[string][]Shape{},
	}
}

// Observe records the operand values of one execution of a site.
func (t *Table) Observe(site Site, operands ...any) bool {
	e, ok := t.entries[site]
	if !ok {
		t.evict()
		e = &Entry{}
		t.entries[site] = e
		t.order = append(t.order, site)
	}
	hit := e.Observe(ShapeOf(operands...))
	if hit {
		t.hits++
	} else {
		t.misses++
	}
	return hit
}

// evict drops the oldest entries until there is room for one more.
func (t *Table) evict() {
	if t.MaxSites <= 0 {
		return
	}
	n := len(t.order) - t.MaxSites + 1
	if n <= 0 {
		return
	}
	for _, site := range t.order[:n] {
		delete(t.entries, site)
	}
	clear(t.order[:n])
	t.order = t.order[n:]
}

// ObserveCall records the argument types of a call to a named function, in
// addition to observing the call site.
func (t *Table) ObserveCall(site Site, fn string, args []any) {
	t.Observe(site, args...)
	s := ShapeOf(args...)
	for _, known := range t.argTypes[fn] {
		if known == s {
			return
		}
	}
	t.argTypes[fn] = append(t.argTypes[fn], s)
}

// Entry returns the entry of a site.
func (t *Table) Entry(site Site) (*Entry, bool) {
	e, ok := t.entries[site]
	return e, ok
}

// Len returns the number of sites seen.
func (t *Table) Len() int { return len(t.entries) }

// HitRate returns the global hit rate.
func (t *Table) HitRate() float64 {
	total := t.hits + t.misses
	if total == 0 {
		return 0
	}
	return float64(t.hits) / float64(total)
}

// Counts returns the number of sites in each state.
func (t *Table) Counts() map[State]int {
	counts := map[State]int{}
	for _, site := range t.order {
		counts[t.entries[site].State]++
	}
	return counts
}

// CallShapes returns the distinct argument shapes seen in calls to a named
// function, in the order first seen.
func (t *Table) CallShapes(fn string) []Shape {
	return t.argTypes[fn]
}

// ParamType returns the type of the i-th argument of a named function if all
// observed calls agree on it.
func (t *Table) ParamType(fn string, i int) (vals.TypeID, bool) {
	return ParamType(t.argTypes[fn], i)
}

// ParamType returns the type at position i if all shapes agree on it.
func ParamType(shapes []Shape, i int) (vals.TypeID, bool) {
	if len(shapes) == 0 {
		return 0, false
	}
	var typ vals.TypeID
	for j, s := range shapes {
		if i >= len(s) {
			return 0, false
		}
		if j == 0 {
			typ = vals.TypeID(s[i])
		} else if vals.TypeID(s[i]) != typ {
			return 0, false
		}
	}
	return typ, true
}

// Functions returns the names of functions with recorded calls, sorted.
func (t *Table) Functions() []string {
	names := make([]string, 0, len(t.argTypes))
	for name := range t.argTypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset clears the table. MaxSites is kept.
func (t *Table) Reset() {
	max := t.MaxSites
	*t = *NewTable()
	t.MaxSites = max
}
