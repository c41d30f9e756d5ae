// Package hdf5adapter backs iogroup.Store/Group with
// github.com/scigolib/hdf5, the only persistence dependency in this
// tree. bart has no persistence layer of its own to imitate here, so
// this package is grounded directly on the library's write API
// (FileWriter/GroupWriter/DatasetWriter, group_write.go/dataset_write.go)
// and read API (File/Group/Dataset, file.go/group.go) — two separate
// type hierarchies, because the library itself separates write-once
// creation from read-only reopening.
//
// Raw-byte payloads (BitField, VoxelData — spec.md §6.2) have no
// faithful home in the library's typed dataset model: Dataset.Read()
// only converts Float64/Float32/Int32/Int64 storage back out, and the
// write-side Opaque datatype has no matching read path. WriteDataset
// therefore packs the byte payload into Int32 words (little-endian, one
// leading length-prefixed header so padding is unambiguous on the way
// back) and stores it as an ordinary Int32 dataset; ReadDataset reverses
// the packing. This keeps every byte exact across a write/read cycle
// without inventing an unsupported on-disk representation.
package hdf5adapter

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/scigolib/hdf5"

	"github.com/papaver/nkhive/iogroup"
)

const dimsAttrPrefix = "__dims_"

// Create creates filename and returns a Store rooted at rootPath
// (spec.md §6.2's `HiveVolumeRoot` container group).
func Create(filename, rootPath string) (iogroup.Store, error) {
	fw, err := hdf5.CreateForWrite(filename, hdf5.CreateTruncate)
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: create %s: %w", filename, err)
	}
	gw, err := fw.CreateGroup(rootPath)
	if err != nil {
		_ = fw.Close()
		return nil, fmt.Errorf("hdf5adapter: create root group %s: %w", rootPath, err)
	}
	root := newWriteGroup(fw, gw, rootPath)
	return &writeStore{fw: fw, root: root}, nil
}

// Open opens filename for reading, returning a Store rooted at
// rootPath.
func Open(filename, rootPath string) (iogroup.Store, error) {
	f, err := hdf5.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: open %s: %w", filename, err)
	}
	g, ok := findChildGroup(f.Root(), strings.TrimPrefix(rootPath, "/"))
	if !ok {
		_ = f.Close()
		return nil, fmt.Errorf("hdf5adapter: root group %s: %w", rootPath, iogroup.ErrNotFound)
	}
	return &readStore{f: f, root: &readGroup{g: g}}, nil
}

type writeStore struct {
	fw   *hdf5.FileWriter
	root *writeGroup
}

func (s *writeStore) Root() iogroup.Group { return s.root }
func (s *writeStore) Close() error        { return s.fw.Close() }

type readStore struct {
	f    *hdf5.File
	root *readGroup
}

func (s *readStore) Root() iogroup.Group { return s.root }
func (s *readStore) Close() error        { return s.f.Close() }

// writeGroup wraps a GroupWriter. The write-only library handle cannot
// enumerate its own children or attributes once written
// (group_write.go: "write-only handle ... Attributes cannot be modified
// after creation"), so writeGroup keeps its own creation-order record of
// everything it wrote.
type writeGroup struct {
	fw   *hdf5.FileWriter
	gw   *hdf5.GroupWriter
	path string
	name string

	childOrder []string
	children   map[string]*writeGroup

	attrOrder []string
	attrs     map[string]any

	datasetDims map[string][]uint64
	datasetData map[string][]byte
}

func newWriteGroup(fw *hdf5.FileWriter, gw *hdf5.GroupWriter, path string) *writeGroup {
	return &writeGroup{
		fw:          fw,
		gw:          gw,
		path:        path,
		name:        baseName(path),
		children:    make(map[string]*writeGroup),
		attrs:       make(map[string]any),
		datasetDims: make(map[string][]uint64),
		datasetData: make(map[string][]byte),
	}
}

func (g *writeGroup) Name() string { return g.name }

func (g *writeGroup) SubGroupNames() ([]string, error) {
	out := make([]string, len(g.childOrder))
	copy(out, g.childOrder)
	return out, nil
}

func (g *writeGroup) CreateSubGroup(name string) (iogroup.Group, error) {
	childPath := childPath(g.path, name)
	gw, err := g.fw.CreateGroup(childPath)
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: create group %s: %w", childPath, err)
	}
	child := newWriteGroup(g.fw, gw, childPath)
	g.children[name] = child
	g.childOrder = append(g.childOrder, name)
	return child, nil
}

func (g *writeGroup) OpenSubGroup(name string) (iogroup.Group, error) {
	child, ok := g.children[name]
	if !ok {
		return nil, fmt.Errorf("hdf5adapter: open group %s: %w", name, iogroup.ErrNotFound)
	}
	return child, nil
}

func (g *writeGroup) WriteAttribute(name string, value any) error {
	if err := g.gw.WriteAttribute(name, value); err != nil {
		return fmt.Errorf("hdf5adapter: write attribute %s: %w", name, err)
	}
	if _, exists := g.attrs[name]; !exists {
		g.attrOrder = append(g.attrOrder, name)
	}
	g.attrs[name] = value
	return nil
}

func (g *writeGroup) ReadAttribute(name string) (any, error) {
	v, ok := g.attrs[name]
	if !ok {
		return nil, fmt.Errorf("hdf5adapter: attribute %s: %w", name, iogroup.ErrNotFound)
	}
	return v, nil
}

func (g *writeGroup) AttributeNames() ([]string, error) {
	out := make([]string, len(g.attrOrder))
	copy(out, g.attrOrder)
	return out, nil
}

func (g *writeGroup) WriteDataset(name string, dims []uint64, data []byte) error {
	words := packBytes(data)
	dsPath := childPath(g.path, name)
	dw, err := g.fw.CreateDataset(dsPath, hdf5.Int32, []uint64{uint64(len(words))})
	if err != nil {
		return fmt.Errorf("hdf5adapter: create dataset %s: %w", dsPath, err)
	}
	if err := dw.Write(words); err != nil {
		return fmt.Errorf("hdf5adapter: write dataset %s: %w", dsPath, err)
	}
	// dims is persisted as a hidden attribute (left out of AttributeNames;
	// readDims reads it back through ReadAttribute) so a reopened file can reconstruct
	// ReadDataset's shape without this in-memory cache. Stored as int64:
	// Attribute.ReadValue always decodes 8-byte fixed-point data as
	// int64, signed or not, so writing uint64 here would come back
	// mistyped on reopen.
	signedDims := make([]int64, len(dims))
	for i, d := range dims {
		signedDims[i] = int64(d)
	}
	if err := g.gw.WriteAttribute(dimsAttrPrefix+name, signedDims); err != nil {
		return fmt.Errorf("hdf5adapter: write dataset %s dims: %w", dsPath, err)
	}
	dimsCopy := make([]uint64, len(dims))
	copy(dimsCopy, dims)
	g.datasetDims[name] = dimsCopy
	g.datasetData[name] = data
	return nil
}

func (g *writeGroup) ReadDataset(name string) ([]uint64, []byte, error) {
	dims, ok := g.datasetDims[name]
	if !ok {
		return nil, nil, fmt.Errorf("hdf5adapter: dataset %s: %w", name, iogroup.ErrNotFound)
	}
	return dims, g.datasetData[name], nil
}

// readGroup wraps a read-only *hdf5.Group. Children/Attributes come
// straight from the library; it never names
// github.com/scigolib/hdf5/internal/core, relying on Go inferring the
// types of Attributes()'s and Children()'s results instead (that
// package is not importable outside the module that defines it).
type readGroup struct {
	g *hdf5.Group
}

func (g *readGroup) Name() string { return g.g.Name() }

func (g *readGroup) SubGroupNames() ([]string, error) {
	var names []string
	for _, child := range g.g.Children() {
		if sub, ok := child.(*hdf5.Group); ok {
			names = append(names, sub.Name())
		}
	}
	return names, nil
}

func (g *readGroup) OpenSubGroup(name string) (iogroup.Group, error) {
	sub, ok := findChildGroup(g.g, name)
	if !ok {
		return nil, fmt.Errorf("hdf5adapter: open group %s: %w", name, iogroup.ErrNotFound)
	}
	return &readGroup{g: sub}, nil
}

func (g *readGroup) WriteAttribute(name string, value any) error {
	return fmt.Errorf("hdf5adapter: group %s opened read-only, cannot write attribute %s", g.g.Name(), name)
}

func (g *readGroup) ReadAttribute(name string) (any, error) {
	attrs, err := g.g.Attributes()
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: read attributes of %s: %w", g.g.Name(), err)
	}
	for _, a := range attrs {
		if a.Name == name {
			v, err := a.ReadValue()
			if err != nil {
				return nil, fmt.Errorf("hdf5adapter: decode attribute %s: %w", name, err)
			}
			return v, nil
		}
	}
	return nil, fmt.Errorf("hdf5adapter: attribute %s: %w", name, iogroup.ErrNotFound)
}

func (g *readGroup) AttributeNames() ([]string, error) {
	attrs, err := g.g.Attributes()
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: read attributes of %s: %w", g.g.Name(), err)
	}
	var names []string
	for _, a := range attrs {
		if strings.HasPrefix(a.Name, dimsAttrPrefix) {
			continue
		}
		names = append(names, a.Name)
	}
	return names, nil
}

func (g *readGroup) WriteDataset(name string, dims []uint64, data []byte) error {
	return fmt.Errorf("hdf5adapter: group %s opened read-only, cannot write dataset %s", g.g.Name(), name)
}

func (g *readGroup) ReadDataset(name string) ([]uint64, []byte, error) {
	ds, ok := findChildDataset(g.g, name)
	if !ok {
		return nil, nil, fmt.Errorf("hdf5adapter: dataset %s: %w", name, iogroup.ErrNotFound)
	}
	words, err := ds.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("hdf5adapter: read dataset %s: %w", name, err)
	}
	data, err := unpackBytes(words)
	if err != nil {
		return nil, nil, fmt.Errorf("hdf5adapter: unpack dataset %s: %w", name, err)
	}

	dims, err := g.readDims(name)
	if err != nil {
		return nil, nil, err
	}
	return dims, data, nil
}

// readDims reads back the hidden dims attribute written by WriteDataset.
// Attribute.ReadValue collapses a single-element vector to a bare
// scalar, so both shapes have to be accepted here.
func (g *readGroup) readDims(name string) ([]uint64, error) {
	v, err := g.ReadAttribute(dimsAttrPrefix + name)
	if err != nil {
		return nil, fmt.Errorf("hdf5adapter: dims of %s: %w", name, err)
	}
	switch raw := v.(type) {
	case int64:
		return []uint64{uint64(raw)}, nil
	case []int64:
		dims := make([]uint64, len(raw))
		for i, d := range raw {
			dims[i] = uint64(d)
		}
		return dims, nil
	default:
		return nil, fmt.Errorf("hdf5adapter: dims of %s: unexpected attribute type %T", name, v)
	}
}

func findChildGroup(g *hdf5.Group, name string) (*hdf5.Group, bool) {
	for _, child := range g.Children() {
		if sub, ok := child.(*hdf5.Group); ok && sub.Name() == name {
			return sub, true
		}
	}
	return nil, false
}

func findChildDataset(g *hdf5.Group, name string) (*hdf5.Dataset, bool) {
	for _, child := range g.Children() {
		if ds, ok := child.(*hdf5.Dataset); ok && ds.Name() == name {
			return ds, true
		}
	}
	return nil, false
}

func childPath(parent, name string) string {
	if parent == "/" {
		return "/" + name
	}
	return parent + "/" + name
}

func baseName(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return path
	}
	return path[i+1:]
}

// packBytes encodes data as a length-prefixed, zero-padded little-endian
// int32 word slice: the length prefix lets unpackBytes discard the
// padding added to reach a 4-byte boundary.
func packBytes(data []byte) []int32 {
	header := make([]byte, 8)
	binary.LittleEndian.PutUint64(header, uint64(len(data)))
	payload := append(header, data...)
	if rem := len(payload) % 4; rem != 0 {
		payload = append(payload, make([]byte, 4-rem)...)
	}
	words := make([]int32, len(payload)/4)
	for i := range words {
		words[i] = int32(binary.LittleEndian.Uint32(payload[i*4 : i*4+4]))
	}
	return words
}

func unpackBytes(words []float64) ([]byte, error) {
	payload := make([]byte, len(words)*4)
	for i, w := range words {
		buf := make([]byte, 4)
		binary.LittleEndian.PutUint32(buf, uint32(int32(w)))
		copy(payload[i*4:i*4+4], buf)
	}
	if len(payload) < 8 {
		return nil, fmt.Errorf("hdf5adapter: dataset too short for length header (%d bytes)", len(payload))
	}
	n := binary.LittleEndian.Uint64(payload[:8])
	payload = payload[8:]
	if uint64(len(payload)) < n {
		return nil, fmt.Errorf("hdf5adapter: dataset shorter than recorded length (%d < %d)", len(payload), n)
	}
	return payload[:n], nil
}
