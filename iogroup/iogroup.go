// Package iogroup declares the narrow persistence-back-end surface a
// Volume needs to save and load itself as a hierarchy of typed groups
// (spec.md §6.2): named sub-groups visited in creation order, scalar and
// vector attributes, and simple N-D datasets. It mirrors bart's split
// between an interface (noder.go's Noder) and its concrete
// implementations (node.go, fatnode.go, ...): callers code against
// Group/Store, persistence backends satisfy them.
//
// The one implementation in this tree, hdf5adapter, backs Group's
// attribute methods with github.com/scigolib/hdf5's reflection-based
// WriteAttribute(name string, value interface{}); that is why attributes
// here are plain Go values rather than the spec's literal "opaque type
// id + value bytes" pairs. The backing format still self-describes each
// attribute's type on disk (as an HDF5 datatype message) — this
// interface just lets the Go type system stand in for the opaque tag
// a caller would otherwise track by hand.
package iogroup

import "errors"

// ErrNotFound is returned by OpenSubGroup, ReadAttribute, and
// ReadDataset when the named child does not exist.
var ErrNotFound = errors.New("iogroup: not found")

// Group is one named node in the hierarchy: a bag of attributes, a
// creation-ordered list of sub-groups, and zero or more datasets.
type Group interface {
	// Name returns this group's own name (not its full path).
	Name() string

	// SubGroupNames lists immediate children in creation order.
	SubGroupNames() ([]string, error)

	// CreateSubGroup creates and returns a new child group. name must be
	// unique among existing children.
	CreateSubGroup(name string) (Group, error)

	// OpenSubGroup returns an existing child group, or ErrNotFound.
	OpenSubGroup(name string) (Group, error)

	// WriteAttribute writes a scalar or fixed-size vector attribute.
	// value must be a Go scalar (int32, uint8, float64, string, ...) or a
	// 1-D slice of one (spec.md §6.2's scalar/vector attribute split).
	WriteAttribute(name string, value any) error

	// ReadAttribute reads an attribute previously written with
	// WriteAttribute, or returns ErrNotFound.
	ReadAttribute(name string) (any, error)

	// AttributeNames lists this group's attribute names.
	AttributeNames() ([]string, error)

	// WriteDataset writes an N-D payload of raw bytes under name, sized
	// dims[0]*dims[1]*...  WriteDataset backs both BitField and VoxelData
	// (spec.md §6.2), which need no structure beyond a flat byte run.
	WriteDataset(name string, dims []uint64, data []byte) error

	// ReadDataset reads a dataset written with WriteDataset, returning
	// its dims and payload, or ErrNotFound.
	ReadDataset(name string) (dims []uint64, data []byte, err error)
}

// Store is a single open persistence back-end, rooted at one container
// group (spec.md §6.2's `HiveVolumeRoot`).
type Store interface {
	// Root returns the store's root group.
	Root() Group

	// Close releases any resources (file handles) held by the store.
	Close() error
}
