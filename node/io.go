package node

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/papaver/nkhive/bitfield"
	"github.com/papaver/nkhive/cell"
)

// WriteTo writes level, lg_branching, lg_cell_dim, a fill flag, the node's
// value (default or fill), and — when Branching — the branch bitfield
// followed by each set child in branch order. A Fill node writes nothing
// further: its whole subtree is implied by value alone.
func (n *Node[T]) WriteTo(w io.Writer, encodeValue func(io.Writer, T) error) (int64, error) {
	var total int64

	for _, word := range []uint32{uint32(n.level), uint32(n.lgBranching), uint32(n.lgCellDim)} {
		if err := binary.Write(w, binary.LittleEndian, word); err != nil {
			return total, fmt.Errorf("node: write header: %w", err)
		}
		total += 4
	}

	var fillFlag uint8
	if n.IsFill() {
		fillFlag = 1
	}
	if err := binary.Write(w, binary.LittleEndian, fillFlag); err != nil {
		return total, fmt.Errorf("node: write fill flag: %w", err)
	}
	total++

	if err := encodeValue(w, n.value); err != nil {
		return total, fmt.Errorf("node: write value: %w", err)
	}

	if n.IsFill() {
		return total, nil
	}

	bn, err := n.bits.WriteTo(w)
	total += bn
	if err != nil {
		return total, fmt.Errorf("node: write bitfield: %w", err)
	}

	for it := n.bits.SetIterator(); it.Next(); {
		branch := it.Index()
		var cn int64
		var cerr error
		if n.level == 1 {
			cn, cerr = n.cellBranches[branch].WriteTo(w, encodeValue)
		} else {
			cn, cerr = n.nodeBranches[branch].WriteTo(w, encodeValue)
		}
		total += cn
		if cerr != nil {
			return total, fmt.Errorf("node: write child %d: %w", branch, cerr)
		}
	}
	return total, nil
}

// ReadFrom reads the stream form written by WriteTo, recursively
// reconstructing any Branching children.
func ReadFrom[T comparable](r io.Reader, encodeValue func(io.Reader) (T, error)) (*Node[T], int64, error) {
	var total int64

	var levelW, lgBranchW, lgCellW uint32
	for _, dst := range []*uint32{&levelW, &lgBranchW, &lgCellW} {
		if err := binary.Read(r, binary.LittleEndian, dst); err != nil {
			return nil, total, fmt.Errorf("node: read header: %w", err)
		}
		total += 4
	}

	var fillFlag uint8
	if err := binary.Read(r, binary.LittleEndian, &fillFlag); err != nil {
		return nil, total, fmt.Errorf("node: read fill flag: %w", err)
	}
	total++

	value, err := encodeValue(r)
	if err != nil {
		return nil, total, fmt.Errorf("node: read value: %w", err)
	}

	n := &Node[T]{
		level:       uint(levelW),
		lgBranching: uint(lgBranchW),
		lgCellDim:   uint(lgCellW),
		value:       value,
	}

	if fillFlag != 0 {
		n.bits = bitfield.New(n.lgBranching)
		n.bits.SetAll()
		return n, total, nil
	}

	n.bits = bitfield.New(n.lgBranching)
	bn, err := n.bits.ReadFrom(r)
	total += bn
	if err != nil {
		return nil, total, fmt.Errorf("node: read bitfield: %w", err)
	}

	n.allocateBranches()
	for it := n.bits.SetIterator(); it.Next(); {
		branch := it.Index()
		if n.level == 1 {
			c, cn, cerr := cell.ReadFrom[T](r, n.lgCellDim, encodeValue)
			total += cn
			if cerr != nil {
				return nil, total, fmt.Errorf("node: read cell child %d: %w", branch, cerr)
			}
			n.cellBranches[branch] = c
			continue
		}
		child, cn, cerr := ReadFrom[T](r, encodeValue)
		total += cn
		if cerr != nil {
			return nil, total, fmt.Errorf("node: read node child %d: %w", branch, cerr)
		}
		n.nodeBranches[branch] = child
	}
	return n, total, nil
}
