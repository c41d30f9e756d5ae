// Package iostream implements the self-describing binary stream form
// shared across Volume and its components (spec.md §6.3): a set of
// primitive encode/decode pairs for the scalar types a Volume's T is
// likely to be, plus a type tag written ahead of a Volume's payload so
// a reader can reject a stream encoding the wrong scalar type before
// it ever calls a decoder.
//
// Grounded on the original's stream operator<</operator>> pairs (one
// direction only — §9's noted write/read asymmetry in the source is not
// replicated here, matching bitfield's own WriteTo/ReadFrom pair) and
// scigolib/hdf5's encoding/binary-based fixed-width codecs.
package iostream

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/papaver/nkhive/attrs"
)

// TypeTag identifies a Volume's scalar payload type on the wire,
// independent of attrs.Tag (which tags attribute values, not voxel
// data).
type TypeTag uint8

const (
	TypeI32 TypeTag = iota + 1
	TypeU32
	TypeI64
	TypeF32
	TypeF64
)

// WriteTypeTag writes tag as a single byte.
func WriteTypeTag(w io.Writer, tag TypeTag) error {
	return binary.Write(w, binary.LittleEndian, uint8(tag))
}

// ReadTypeTag reads a tag and confirms it equals want, using attrs.ErrType
// (shared across the stream codecs, per the attrs package's sentinel)
// rather than a duplicate error for "stream type tag did not match T".
func ReadTypeTag(r io.Reader, want TypeTag) error {
	var got uint8
	if err := binary.Read(r, binary.LittleEndian, &got); err != nil {
		return err
	}
	if TypeTag(got) != want {
		return fmt.Errorf("iostream: type tag: %w: stream has %d, want %d", attrs.ErrType, got, want)
	}
	return nil
}

// EncodeInt32 / DecodeInt32 are the shared int32 scalar codec.
func EncodeInt32(w io.Writer, v int32) error { return binary.Write(w, binary.LittleEndian, v) }

func DecodeInt32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// EncodeUint32 / DecodeUint32 are the shared uint32 scalar codec.
func EncodeUint32(w io.Writer, v uint32) error { return binary.Write(w, binary.LittleEndian, v) }

func DecodeUint32(r io.Reader) (uint32, error) {
	var v uint32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// EncodeInt64 / DecodeInt64 are the shared int64 scalar codec.
func EncodeInt64(w io.Writer, v int64) error { return binary.Write(w, binary.LittleEndian, v) }

func DecodeInt64(r io.Reader) (int64, error) {
	var v int64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// EncodeFloat32 / DecodeFloat32 are the shared float32 scalar codec.
func EncodeFloat32(w io.Writer, v float32) error { return binary.Write(w, binary.LittleEndian, v) }

func DecodeFloat32(r io.Reader) (float32, error) {
	var v float32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

// EncodeFloat64 / DecodeFloat64 are the shared float64 scalar codec.
func EncodeFloat64(w io.Writer, v float64) error { return binary.Write(w, binary.LittleEndian, v) }

func DecodeFloat64(r io.Reader) (float64, error) {
	var v float64
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}
