// Package bounds implements Bounds3D: half-open axis-aligned boxes over
// unsigned and signed 32-bit integer coordinates, the 8-corner getter/
// setter/clamp table, union/intersection/containment and translate.
//
// Grounded on bart/internal/art/base_index.go's paired first/last (IdxToRange)
// style and on the original nkhive C++ Bounds3D.hpp for the exact 8-corner
// clamp semantics consumed by Tree.quadrant_split.
package bounds

import "fmt"

// Vec3 is an unsigned 3-tuple coordinate (index_vec in spec.md).
type Vec3 struct{ X, Y, Z uint32 }

// SignedVec3 is a signed 3-tuple coordinate (signed_index_vec in spec.md).
type SignedVec3 struct{ X, Y, Z int32 }

// Box is a half-open axis-aligned box [Min, Max) over unsigned coordinates.
type Box struct {
	Min, Max Vec3
}

// SignedBox is a half-open axis-aligned box [Min, Max) over signed
// coordinates.
type SignedBox struct {
	Min, Max SignedVec3
}

// corner picks one axis of a box corner: a corner code's bit0=X, bit1=Y,
// bit2=Z selects Max over Min for that axis.
func corner(minV, maxV uint32, bit bool) uint32 {
	if bit {
		return maxV
	}
	return minV
}

// Corner returns the box's corner selected by a 3-bit code (bit0=X,
// bit1=Y, bit2=Z; 0 selects Min on that axis, 1 selects Max).
func (b Box) Corner(code uint8) Vec3 {
	return Vec3{
		X: corner(b.Min.X, b.Max.X, code&1 != 0),
		Y: corner(b.Min.Y, b.Max.Y, code&2 != 0),
		Z: corner(b.Min.Z, b.Max.Z, code&4 != 0),
	}
}

// Corner returns the signed box's corner selected by a 3-bit code.
func (b SignedBox) Corner(code uint8) SignedVec3 {
	sel := func(minV, maxV int32, bit bool) int32 {
		if bit {
			return maxV
		}
		return minV
	}
	return SignedVec3{
		X: sel(b.Min.X, b.Max.X, code&1 != 0),
		Y: sel(b.Min.Y, b.Max.Y, code&2 != 0),
		Z: sel(b.Min.Z, b.Max.Z, code&4 != 0),
	}
}

// SetCorner replaces the box's corner selected by code, clamping Min/Max
// on each axis touched by the code (the "8-corner clamp table").
func (b *Box) SetCorner(code uint8, v Vec3) {
	if code&1 != 0 {
		b.Max.X = v.X
	} else {
		b.Min.X = v.X
	}
	if code&2 != 0 {
		b.Max.Y = v.Y
	} else {
		b.Min.Y = v.Y
	}
	if code&4 != 0 {
		b.Max.Z = v.Z
	} else {
		b.Min.Z = v.Z
	}
}

// SetCorner replaces the signed box's corner selected by code.
func (b *SignedBox) SetCorner(code uint8, v SignedVec3) {
	if code&1 != 0 {
		b.Max.X = v.X
	} else {
		b.Min.X = v.X
	}
	if code&2 != 0 {
		b.Max.Y = v.Y
	} else {
		b.Min.Y = v.Y
	}
	if code&4 != 0 {
		b.Max.Z = v.Z
	} else {
		b.Min.Z = v.Z
	}
}

// Empty reports whether the box contains no voxels.
func (b Box) Empty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Empty reports whether the signed box contains no voxels.
func (b SignedBox) Empty() bool {
	return b.Min.X >= b.Max.X || b.Min.Y >= b.Max.Y || b.Min.Z >= b.Max.Z
}

// Contains reports whether v lies inside the half-open box.
func (b Box) Contains(v Vec3) bool {
	return v.X >= b.Min.X && v.X < b.Max.X &&
		v.Y >= b.Min.Y && v.Y < b.Max.Y &&
		v.Z >= b.Min.Z && v.Z < b.Max.Z
}

// Contains reports whether v lies inside the half-open signed box.
func (b SignedBox) Contains(v SignedVec3) bool {
	return v.X >= b.Min.X && v.X < b.Max.X &&
		v.Y >= b.Min.Y && v.Y < b.Max.Y &&
		v.Z >= b.Min.Z && v.Z < b.Max.Z
}

func maxU(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

func minU(a, b uint32) uint32 {
	if a < b {
		return a
	}
	return b
}

func maxI(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func minI(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}

// Union returns the smallest box containing both b and other.
func (b Box) Union(other Box) Box {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return Box{
		Min: Vec3{minU(b.Min.X, other.Min.X), minU(b.Min.Y, other.Min.Y), minU(b.Min.Z, other.Min.Z)},
		Max: Vec3{maxU(b.Max.X, other.Max.X), maxU(b.Max.Y, other.Max.Y), maxU(b.Max.Z, other.Max.Z)},
	}
}

// Union returns the smallest signed box containing both b and other.
func (b SignedBox) Union(other SignedBox) SignedBox {
	if b.Empty() {
		return other
	}
	if other.Empty() {
		return b
	}
	return SignedBox{
		Min: SignedVec3{minI(b.Min.X, other.Min.X), minI(b.Min.Y, other.Min.Y), minI(b.Min.Z, other.Min.Z)},
		Max: SignedVec3{maxI(b.Max.X, other.Max.X), maxI(b.Max.Y, other.Max.Y), maxI(b.Max.Z, other.Max.Z)},
	}
}

// Intersection returns the box common to both b and other. It may be
// empty.
func (b Box) Intersection(other Box) Box {
	return Box{
		Min: Vec3{maxU(b.Min.X, other.Min.X), maxU(b.Min.Y, other.Min.Y), maxU(b.Min.Z, other.Min.Z)},
		Max: Vec3{minU(b.Max.X, other.Max.X), minU(b.Max.Y, other.Max.Y), minU(b.Max.Z, other.Max.Z)},
	}
}

// Intersection returns the signed box common to both b and other. It may
// be empty.
func (b SignedBox) Intersection(other SignedBox) SignedBox {
	return SignedBox{
		Min: SignedVec3{maxI(b.Min.X, other.Min.X), maxI(b.Min.Y, other.Min.Y), maxI(b.Min.Z, other.Min.Z)},
		Max: SignedVec3{minI(b.Max.X, other.Max.X), minI(b.Max.Y, other.Max.Y), minI(b.Max.Z, other.Max.Z)},
	}
}

// Translate shifts the box by delta.
func (b Box) Translate(delta Vec3) Box {
	return Box{
		Min: Vec3{b.Min.X + delta.X, b.Min.Y + delta.Y, b.Min.Z + delta.Z},
		Max: Vec3{b.Max.X + delta.X, b.Max.Y + delta.Y, b.Max.Z + delta.Z},
	}
}

// TranslateSigned shifts the signed box by delta.
func (b SignedBox) TranslateSigned(delta SignedVec3) SignedBox {
	return SignedBox{
		Min: SignedVec3{b.Min.X + delta.X, b.Min.Y + delta.Y, b.Min.Z + delta.Z},
		Max: SignedVec3{b.Max.X + delta.X, b.Max.Y + delta.Y, b.Max.Z + delta.Z},
	}
}

// TranslateMax shifts only the Max corner of the signed box by delta; used
// by Tree.quadrant_split to avoid placing a shared-plane corner into two
// quadrants before corner enumeration, and to undo that shift afterward.
func (b SignedBox) TranslateMax(delta SignedVec3) SignedBox {
	out := b
	out.Max.X += delta.X
	out.Max.Y += delta.Y
	out.Max.Z += delta.Z
	return out
}

// TranslateMax shifts only the Max corner of the box by a signed delta
// per axis (delta is signed because the caller may need to step the Max
// corner back by one unit, e.g. re-adding the unit after quadrant_split's
// corner enumeration).
func (b Box) TranslateMax(dx, dy, dz int32) Box {
	out := b
	out.Max.X = uint32(int64(out.Max.X) + int64(dx))
	out.Max.Y = uint32(int64(out.Max.Y) + int64(dy))
	out.Max.Z = uint32(int64(out.Max.Z) + int64(dz))
	return out
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

func (v SignedVec3) String() string {
	return fmt.Sprintf("(%d,%d,%d)", v.X, v.Y, v.Z)
}

func (b Box) String() string {
	return fmt.Sprintf("[%s,%s)", b.Min, b.Max)
}

func (b SignedBox) String() string {
	return fmt.Sprintf("[%s,%s)", b.Min, b.Max)
}
