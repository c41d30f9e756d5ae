// Package stamp defines the external stamp-source collaborator consumed
// by Cell, Node and Tree (spec.md §6.1): an opaque, bounded producer of
// typed values that the core samples from but never mutates.
package stamp

import "github.com/papaver/nkhive/bounds"

// Source is a bounded producer of values of type T over signed voxel
// coordinates. The core never mutates a Source; it only calls Bounds and
// Get while splitting and applying a stamp write.
type Source[T any] interface {
	// Bounds returns the region over which Get is valid.
	Bounds() bounds.SignedBox
	// Get samples the source at a signed voxel coordinate inside Bounds().
	Get(i, j, k int32) T
}

// Constant is a reference Source that returns the same value everywhere
// inside its bounds; useful for tests and as a minimal example
// implementation.
type Constant[T any] struct {
	Box   bounds.SignedBox
	Value T
}

func (c Constant[T]) Bounds() bounds.SignedBox { return c.Box }

func (c Constant[T]) Get(i, j, k int32) T { return c.Value }

// Func adapts a plain function into a Source.
type Func[T any] struct {
	Box bounds.SignedBox
	Fn  func(i, j, k int32) T
}

func (f Func[T]) Bounds() bounds.SignedBox { return f.Box }

func (f Func[T]) Get(i, j, k int32) T { return f.Fn(i, j, k) }
