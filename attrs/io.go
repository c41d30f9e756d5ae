package attrs

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Registry maps a Tag to a decode function, resolved at read time
// rather than bound globally — the redesign spec.md §9 calls for in
// place of the source's process-wide registration.
type Registry map[Tag]func(io.Reader) (Value, error)

// DefaultRegistry decodes every built-in Tag. Callers with custom value
// shapes extend a copy of this map before calling ReadFrom.
func DefaultRegistry() Registry {
	return Registry{
		TagString: decodeString,
		TagI32:    decodeI32,
		TagF32:    decodeF32,
		TagF64:    decodeF64,
		TagVecI32: decodeVecI32,
		TagVecF32: decodeVecF32,
		TagVecF64: decodeVecF64,
	}
}

func writeTagged(w io.Writer, tag Tag, payload func(io.Writer) error) error {
	if err := binary.Write(w, binary.LittleEndian, uint8(tag)); err != nil {
		return err
	}
	return payload(w)
}

func writeString(w io.Writer, s string) error {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func decodeString(r io.Reader) (Value, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Value{}, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagString, Str: string(buf)}, nil
}

func decodeI32(r io.Reader) (Value, error) {
	var v int32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagI32, I32: v}, nil
}

func decodeF32(r io.Reader) (Value, error) {
	var v float32
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagF32, F32: v}, nil
}

func decodeF64(r io.Reader) (Value, error) {
	var v float64
	if err := binary.Read(r, binary.LittleEndian, &v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagF64, F64: v}, nil
}

func decodeVecI32(r io.Reader) (Value, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Value{}, err
	}
	v := make([]int32, n)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagVecI32, VecI: v}, nil
}

func decodeVecF32(r io.Reader) (Value, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Value{}, err
	}
	v := make([]float32, n)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagVecF32, VecF: v}, nil
}

func decodeVecF64(r io.Reader) (Value, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return Value{}, err
	}
	v := make([]float64, n)
	if err := binary.Read(r, binary.LittleEndian, v); err != nil {
		return Value{}, err
	}
	return Value{Tag: TagVecF64, VecD: v}, nil
}

func writeValue(w io.Writer, v Value) error {
	switch v.Tag {
	case TagString:
		return writeTagged(w, v.Tag, func(w io.Writer) error { return writeString(w, v.Str) })
	case TagI32:
		return writeTagged(w, v.Tag, func(w io.Writer) error { return binary.Write(w, binary.LittleEndian, v.I32) })
	case TagF32:
		return writeTagged(w, v.Tag, func(w io.Writer) error { return binary.Write(w, binary.LittleEndian, v.F32) })
	case TagF64:
		return writeTagged(w, v.Tag, func(w io.Writer) error { return binary.Write(w, binary.LittleEndian, v.F64) })
	case TagVecI32:
		return writeTagged(w, v.Tag, func(w io.Writer) error {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(v.VecI))); err != nil {
				return err
			}
			return binary.Write(w, binary.LittleEndian, v.VecI)
		})
	case TagVecF32:
		return writeTagged(w, v.Tag, func(w io.Writer) error {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(v.VecF))); err != nil {
				return err
			}
			return binary.Write(w, binary.LittleEndian, v.VecF)
		})
	case TagVecF64:
		return writeTagged(w, v.Tag, func(w io.Writer) error {
			if err := binary.Write(w, binary.LittleEndian, uint32(len(v.VecD))); err != nil {
				return err
			}
			return binary.Write(w, binary.LittleEndian, v.VecD)
		})
	default:
		return fmt.Errorf("attrs: write: %w: unknown tag %d", ErrType, v.Tag)
	}
}

// WriteTo writes the collection as a count followed by
// name | tag | payload triples, in insertion order.
func (c *Collection) WriteTo(w io.Writer) (int64, error) {
	if err := binary.Write(w, binary.LittleEndian, uint32(len(c.order))); err != nil {
		return 0, err
	}
	for _, name := range c.order {
		if err := writeString(w, name); err != nil {
			return 0, err
		}
		if err := writeValue(w, c.byKey[name]); err != nil {
			return 0, err
		}
	}
	return 0, nil
}

// ReadFrom reconstructs a Collection using reg to decode each tagged
// value. An entry whose tag has no registered decoder is a Type error
// (spec.md §7: "user-attribute read for an unregistered type tag").
func ReadFrom(r io.Reader, reg Registry) (*Collection, int64, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return nil, 0, err
	}
	c := &Collection{byKey: make(map[string]Value)}
	for i := uint32(0); i < n; i++ {
		name, err := decodeString(r)
		if err != nil {
			return nil, 0, err
		}
		var tag uint8
		if err := binary.Read(r, binary.LittleEndian, &tag); err != nil {
			return nil, 0, err
		}
		decode, ok := reg[Tag(tag)]
		if !ok {
			return nil, 0, fmt.Errorf("attrs: read %q: %w: unregistered tag %d", name.Str, ErrType, tag)
		}
		v, err := decode(r)
		if err != nil {
			return nil, 0, err
		}
		c.order = append(c.order, name.Str)
		c.byKey[name.Str] = v
	}
	return c, 0, nil
}
