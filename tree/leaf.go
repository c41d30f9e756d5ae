package tree

import (
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/cell"
	"github.com/papaver/nkhive/node"
)

// LeafKind distinguishes the two units a hierarchical-group write persists
// as a named sub-group: a Cell, or a whole collapsed Fill Node subtree.
type LeafKind uint8

const (
	LeafCell LeafKind = iota
	LeafFill
)

// Leaf describes one persisted unit of a Tree's hierarchical-group form:
// a Quadrant and an Offset (the node-local origin within that root),
// tagged on the sub-group per §4.4's "quadrant, offset" convention.
type Leaf[T comparable] struct {
	Kind      LeafKind
	Quadrant  uint8
	Offset    bounds.Vec3
	Level     uint // meaningful for LeafFill: the collapsed subtree's level
	Cell      *cell.Cell[T]
	FillValue T
}

// WalkLeaves visits every leaf across all 8 octants in quadrant order
// 0..7, depth-first within each root. An empty root contributes nothing;
// a root that is itself Fill contributes exactly one leaf.
func (t *Tree[T]) WalkLeaves(visit func(Leaf[T])) {
	for q := uint8(0); q < 8; q++ {
		root := t.roots[q]
		if root.IsEmpty() {
			continue
		}
		if root.IsFill() {
			visit(Leaf[T]{Kind: LeafFill, Quadrant: q, Level: root.Level(), FillValue: root.FillValue()})
			continue
		}
		walkNode(root, q, bounds.Vec3{}, visit)
	}
}

func walkNode[T comparable](n *node.Node[T], q uint8, offset bounds.Vec3, visit func(Leaf[T])) {
	n.WalkBranches(func(bi, bj, bk uint32, cellChild *cell.Cell[T], nodeChild *node.Node[T]) {
		if cellChild != nil {
			dim := uint32(1) << cellChild.LgCellDim()
			at := bounds.Vec3{X: offset.X + bi*dim, Y: offset.Y + bj*dim, Z: offset.Z + bk*dim}
			visit(Leaf[T]{Kind: LeafCell, Quadrant: q, Offset: at, Cell: cellChild})
			return
		}
		dim := nodeChild.MaxDim()
		at := bounds.Vec3{X: offset.X + bi*dim, Y: offset.Y + bj*dim, Z: offset.Z + bk*dim}
		if nodeChild.IsFill() {
			visit(Leaf[T]{Kind: LeafFill, Quadrant: q, Offset: at, Level: nodeChild.Level(), FillValue: nodeChild.FillValue()})
			return
		}
		walkNode(nodeChild, q, at, visit)
	})
}

// InstallLeaf replays one Leaf recorded by WalkLeaves: it grows the
// owning root to cover the leaf's extent, then installs the leaf at its
// recorded offset, used by the hierarchical-group reader (§4.4's
// Tree.read_leaf).
func (t *Tree[T]) InstallLeaf(leaf Leaf[T]) error {
	q := leaf.Quadrant
	var size uint32
	if leaf.Kind == LeafCell {
		size = uint32(1) << leaf.Cell.LgCellDim()
	} else {
		size = uint32(1) << (t.lgCellDim + leaf.Level*t.lgBranching)
	}

	if leaf.Offset == (bounds.Vec3{}) && size == t.roots[q].MaxDim() {
		if leaf.Kind == LeafFill {
			t.roots[q] = node.New[T](leaf.Level, t.lgBranching, t.lgCellDim, leaf.FillValue, true)
			t.maxDim[q] = t.roots[q].MaxDim()
			return nil
		}
	}

	maxCoord := leaf.Offset.X
	if leaf.Offset.Y > maxCoord {
		maxCoord = leaf.Offset.Y
	}
	if leaf.Offset.Z > maxCoord {
		maxCoord = leaf.Offset.Z
	}
	t.growToCover(q, maxCoord+size-1)

	if leaf.Kind == LeafCell {
		return t.roots[q].InstallCell(leaf.Offset, leaf.Cell)
	}
	return t.roots[q].InstallFillSubtree(leaf.Offset, leaf.Level, leaf.FillValue)
}
