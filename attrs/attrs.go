// Package attrs implements the opaque attribute collection consumed by
// Volume (spec.md §4.5, §6.2): a typed key-value store keyed by name,
// values tagged by an opaque type id, plus the two mandatory entries
// every volume carries (`name`, `description`).
//
// Grounded on scigolib/hdf5's attribute_write.go tag-dispatch style
// (inferDatatypeFromValue/encodeAttributeValue: a type switch producing
// an opaque tag plus little-endian-encoded bytes) adapted to an
// in-memory collection instead of an on-disk object-header message.
package attrs

import (
	"errors"
	"fmt"
)

// ErrType is returned when a value's type tag doesn't match what a name
// already holds (spec.md §7, kind `Type`).
var ErrType = errors.New("attrs: type mismatch")

// ErrArg is returned for an empty attribute name or a lookup of a
// missing name (spec.md §7, kind `Arg`).
var ErrArg = errors.New("attrs: invalid argument")

// Tag identifies the wire type of an attribute value.
type Tag uint8

const (
	TagString Tag = iota + 1
	TagI32
	TagF32
	TagF64
	TagVecI32
	TagVecF32
	TagVecF64
)

// Value is a tagged attribute payload. Exactly one of the fields
// matching Tag is meaningful.
type Value struct {
	Tag  Tag
	Str  string
	I32  int32
	F32  float32
	F64  float64
	VecI []int32
	VecF []float32
	VecD []float64
}

func tagOf(v Value) Tag { return v.Tag }

// Collection is an ordered, opaque typed key-value store. Entries
// preserve insertion order, matching the backing store's "named
// sub-groups with creation-order iteration" contract (spec.md §6.2).
type Collection struct {
	order []string
	byKey map[string]Value
}

// New constructs a Collection with the two mandatory entries `name`
// ("unknown") and `description` ("") pre-populated, per spec.md §4.5.
func New() *Collection {
	c := &Collection{byKey: make(map[string]Value)}
	c.mustInsertString("name", "unknown")
	c.mustInsertString("description", "")
	return c
}

func (c *Collection) mustInsertString(name, value string) {
	c.order = append(c.order, name)
	c.byKey[name] = Value{Tag: TagString, Str: value}
}

// Insert adds or replaces the value at name. Inserting an empty name is
// an Arg error. Replacing an existing entry with a value of a different
// Tag is a Type error.
func (c *Collection) Insert(name string, v Value) error {
	if name == "" {
		return fmt.Errorf("attrs: insert: %w: empty name", ErrArg)
	}
	if existing, ok := c.byKey[name]; ok {
		if tagOf(existing) != tagOf(v) {
			return fmt.Errorf("attrs: insert %q: %w: existing tag %d, got %d", name, ErrType, existing.Tag, v.Tag)
		}
		c.byKey[name] = v
		return nil
	}
	c.order = append(c.order, name)
	c.byKey[name] = v
	return nil
}

// Get looks up name. A missing name is an Arg error.
func (c *Collection) Get(name string) (Value, error) {
	v, ok := c.byKey[name]
	if !ok {
		return Value{}, fmt.Errorf("attrs: get %q: %w", name, ErrArg)
	}
	return v, nil
}

// Names returns every attribute name in insertion order.
func (c *Collection) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of attributes, including the two mandatory
// entries.
func (c *Collection) Len() int { return len(c.order) }

// SetName sets the mandatory `name` attribute.
func (c *Collection) SetName(name string) error {
	return c.Insert("name", Value{Tag: TagString, Str: name})
}

// SetDescription sets the mandatory `description` attribute.
func (c *Collection) SetDescription(desc string) error {
	return c.Insert("description", Value{Tag: TagString, Str: desc})
}

// Name returns the mandatory `name` attribute's current value.
func (c *Collection) Name() string {
	v, _ := c.Get("name")
	return v.Str
}

// Description returns the mandatory `description` attribute's current
// value.
func (c *Collection) Description() string {
	v, _ := c.Get("description")
	return v.Str
}
