package bitfield

import "github.com/papaver/nkhive/bitops"

// LinearIterator yields linear indices 0..Len() in order.
type LinearIterator struct {
	f       *Field
	cur     uint64
	ok      bool
	started bool
}

// LinearIterator returns a forward iterator over every linear index.
func (f *Field) LinearIterator() *LinearIterator {
	return &LinearIterator{f: f, cur: 0, ok: f.Len() > 0}
}

// Next advances the iterator. It returns false once exhausted.
func (it *LinearIterator) Next() bool {
	if !it.ok {
		return false
	}
	if !it.started {
		it.started = true
		return true
	}
	if it.cur+1 >= it.f.Len() {
		it.ok = false
		return false
	}
	it.cur++
	return true
}

// Index returns the current linear index.
func (it *LinearIterator) Index() uint64 { return it.cur }

// polarityIterator walks set or unset bits of a Field; CoupledIterator
// pairs it with a foreign forward iterator. On construction it
// pre-advances to the first matching position.
type polarityIterator struct {
	f         *Field
	want      bool
	cur       uint64
	primed    bool // cur holds an unconsumed matching position
	exhausted bool
}

// SetIterator returns an iterator over every set bit's linear index.
func (f *Field) SetIterator() *polarityIterator {
	it := &polarityIterator{f: f, want: true}
	it.seekFrom(0)
	return it
}

// UnsetIterator returns an iterator over every unset bit's linear index.
func (f *Field) UnsetIterator() *polarityIterator {
	it := &polarityIterator{f: f, want: false}
	it.seekFrom(0)
	return it
}

// seekFrom advances cur to the first matching position >= start.
func (it *polarityIterator) seekFrom(start uint64) {
	for c := start; c < it.f.Len(); c++ {
		if it.f.Test(c) == it.want {
			it.cur = c
			it.primed = true
			return
		}
	}
	it.primed = false
	it.exhausted = true
}

// Next advances to the next matching position.
func (it *polarityIterator) Next() bool {
	if it.exhausted {
		return false
	}
	if it.primed {
		it.primed = false
		return true
	}
	it.seekFrom(it.cur + 1)
	it.primed = false
	return !it.exhausted
}

// Index returns the current linear index.
func (it *polarityIterator) Index() uint64 { return it.cur }

// Coords returns the current position decoded as (i,j,k).
func (it *polarityIterator) Coords() (i, j, k uint32) {
	return bitops.Coords(it.cur, it.f.lgSize)
}

// ForeignIterator is any iterator advancing over the same notional index
// space as a Field, paired via SetIteratorWith/UnsetIteratorWith.
type ForeignIterator interface {
	Next() bool
}

// CoupledIterator advances a Field polarity iterator and a ForeignIterator
// together: every call to Next() steps the foreign iterator once and
// skips forward until the Field position matches the desired polarity.
type CoupledIterator struct {
	field   *polarityIterator
	foreign ForeignIterator
}

// SetIteratorWith pairs a set-bit iterator with a foreign forward iterator,
// advancing both in lock-step over matching positions.
func (f *Field) SetIteratorWith(foreign ForeignIterator) *CoupledIterator {
	return &CoupledIterator{field: f.SetIterator(), foreign: foreign}
}

// UnsetIteratorWith pairs an unset-bit iterator with a foreign iterator.
func (f *Field) UnsetIteratorWith(foreign ForeignIterator) *CoupledIterator {
	return &CoupledIterator{field: f.UnsetIterator(), foreign: foreign}
}

// Next advances both the bitfield cursor and the foreign iterator.
func (c *CoupledIterator) Next() bool {
	if !c.field.Next() {
		return false
	}
	return c.foreign.Next()
}

// Index returns the current linear index of the field side.
func (c *CoupledIterator) Index() uint64 { return c.field.Index() }

// Coords returns the current position decoded as (i,j,k).
func (c *CoupledIterator) Coords() (i, j, k uint32) { return c.field.Coords() }

// WindowIterator enumerates linear indices inside a cubic sub-region of
// side ws anchored at a linear index in the enclosing cube. It carries
// row/page wrap-around shifts so incrementing stays inside the sub-cube.
type WindowIterator struct {
	f          *Field
	anchorI    uint32
	anchorJ    uint32
	anchorK    uint32
	ws         uint32
	di, dj, dk uint32
	started    bool
	done       bool
}

// WindowIterator anchors a ws-sided cubic window at the linear index
// anchor within f's cube.
func (f *Field) WindowIterator(anchor uint64, ws uint32) *WindowIterator {
	ai, aj, ak := bitops.Coords(anchor, f.lgSize)
	done := ws == 0
	return &WindowIterator{f: f, anchorI: ai, anchorJ: aj, anchorK: ak, ws: ws, done: done}
}

// Next advances the window iterator through its sub-cube in row-major
// (i fastest, then j, then k) order.
func (w *WindowIterator) Next() bool {
	if w.done {
		return false
	}
	if !w.started {
		w.started = true
		return true
	}
	w.di++
	if w.di >= w.ws {
		w.di = 0
		w.dj++
		if w.dj >= w.ws {
			w.dj = 0
			w.dk++
			if w.dk >= w.ws {
				w.done = true
				return false
			}
		}
	}
	return true
}

// Coords returns the current window position's cube-local coordinates.
func (w *WindowIterator) Coords() (i, j, k uint32) {
	return w.anchorI + w.di, w.anchorJ + w.dj, w.anchorK + w.dk
}

// Index returns the current window position's linear index in the
// enclosing cube.
func (w *WindowIterator) Index() uint64 {
	i, j, k := w.Coords()
	return bitops.LinearIndex(i, j, k, w.f.lgSize)
}
