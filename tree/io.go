package tree

import (
	"fmt"
	"io"

	"github.com/papaver/nkhive/node"
)

// WriteTo writes the stream form: default_value followed by all 8 roots
// in quadrant order.
func (t *Tree[T]) WriteTo(w io.Writer, encodeValue func(io.Writer, T) error) (int64, error) {
	var total int64
	if err := encodeValue(w, t.defaultValue); err != nil {
		return total, fmt.Errorf("tree: write default value: %w", err)
	}
	for q, root := range t.roots {
		n, err := root.WriteTo(w, encodeValue)
		total += n
		if err != nil {
			return total, fmt.Errorf("tree: write root %d: %w", q, err)
		}
	}
	return total, nil
}

// ReadFrom reads the stream form written by WriteTo, including
// lg_branching/lg_cell_dim recovered from root[0]'s header.
func ReadFrom[T comparable](r io.Reader, decodeValue func(io.Reader) (T, error)) (*Tree[T], int64, error) {
	var total int64
	defaultValue, err := decodeValue(r)
	if err != nil {
		return nil, total, fmt.Errorf("tree: read default value: %w", err)
	}

	t := &Tree[T]{defaultValue: defaultValue}
	for q := 0; q < 8; q++ {
		root, n, err := node.ReadFrom[T](r, decodeValue)
		total += n
		if err != nil {
			return nil, total, fmt.Errorf("tree: read root %d: %w", q, err)
		}
		t.roots[q] = root
		t.maxDim[q] = root.MaxDim()
	}
	t.lgBranching = t.roots[0].LgBranching()
	t.lgCellDim = t.roots[0].LgCellDim()
	return t, total, nil
}
