package volume

import (
	"fmt"
	"io"

	"github.com/papaver/nkhive/attrs"
	"github.com/papaver/nkhive/iostream"
	"github.com/papaver/nkhive/tree"
	"github.com/papaver/nkhive/xform"
)

// WriteTo writes the stream form: a type tag identifying T, followed by
// attributes, the local transform, and the tree (spec.md §4.5, §6.3).
func (v *Volume[T]) WriteTo(w io.Writer, typeTag iostream.TypeTag, encodeValue func(io.Writer, T) error) (int64, error) {
	var total int64
	if err := iostream.WriteTypeTag(w, typeTag); err != nil {
		return total, fmt.Errorf("volume: write type tag: %w", err)
	}
	total++

	n, err := v.attrs.WriteTo(w)
	total += n
	if err != nil {
		return total, fmt.Errorf("volume: write attributes: %w", err)
	}

	n, err = v.xf.WriteTo(w)
	total += n
	if err != nil {
		return total, fmt.Errorf("volume: write transform: %w", err)
	}

	n, err = v.tree.WriteTo(w, encodeValue)
	total += n
	if err != nil {
		return total, fmt.Errorf("volume: write tree: %w", err)
	}
	return total, nil
}

// ReadFrom reads the stream form written by WriteTo. typeTag must match
// the stream's tag (attrs.ErrType otherwise); attrReg decodes user
// attribute values.
func ReadFrom[T comparable](
	r io.Reader,
	typeTag iostream.TypeTag,
	decodeValue func(io.Reader) (T, error),
	attrReg attrs.Registry,
) (*Volume[T], int64, error) {
	var total int64

	if err := iostream.ReadTypeTag(r, typeTag); err != nil {
		return nil, total, fmt.Errorf("volume: read type tag: %w", err)
	}
	total++

	attrCollection, n, err := attrs.ReadFrom(r, attrReg)
	total += n
	if err != nil {
		return nil, total, fmt.Errorf("volume: read attributes: %w", err)
	}

	xf, n, err := xform.ReadFrom(r)
	total += n
	if err != nil {
		return nil, total, fmt.Errorf("volume: read transform: %w", err)
	}

	t, n, err := tree.ReadFrom[T](r, decodeValue)
	total += n
	if err != nil {
		return nil, total, fmt.Errorf("volume: read tree: %w", err)
	}

	return &Volume[T]{tree: t, xf: xf, attrs: attrCollection}, total, nil
}
