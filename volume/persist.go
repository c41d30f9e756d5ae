package volume

import (
	"bytes"
	"fmt"
	"io"

	"github.com/papaver/nkhive/attrs"
	"github.com/papaver/nkhive/bitfield"
	"github.com/papaver/nkhive/bounds"
	"github.com/papaver/nkhive/cell"
	"github.com/papaver/nkhive/iogroup"
	"github.com/papaver/nkhive/tree"
	"github.com/papaver/nkhive/xform"
)

// Group/attribute names, per spec.md §6.2.
const (
	attrName            = "name"
	attrDescription     = "description"
	attrLocalXform      = "LocalXform"
	attrKernelOffset    = "KernelOffset"
	attrDefaultValue    = "DefaultValue"
	attrBranchingFactor = "BranchingFactor"
	attrCellDimensions  = "CellDimensions"
	attrLeafType        = "LeafType"
	attrQuadrant        = "Quadrant"
	attrIndexOffset     = "IndexOffset"
	attrLevel           = "Level"
	attrFillValue       = "FillValue"
	attrFlags           = "Flags"
	attrBitFieldSize    = "BitFieldSize"
	groupUserAttrs      = "UserAttributes"
	datasetBitField     = "BitField"
	datasetVoxelData    = "VoxelData"
)

// attribute fixed-point values are written as int32/int64: the backing
// library's Attribute.ReadValue cannot decode 1- or 2-byte fixed-point
// attributes at all (only sizes 4 and 8 have a case), so every integer
// field below — however small its range — goes out as (at least) int32.
const (
	leafTypeCell = int32(tree.LeafCell)
	leafTypeFill = int32(tree.LeafFill)
)

// SaveHierarchical writes v into store's root group as the named-group
// hierarchy spec.md §6.2 describes: volume-level attributes, a
// UserAttributes sub-group holding every non-mandatory entry of v's
// attribute collection, and one sub-group per leaf (tree.WalkLeaves).
func (v *Volume[T]) SaveHierarchical(store iogroup.Store, encodeValue func(io.Writer, T) error) error {
	root := store.Root()

	if err := root.WriteAttribute(attrName, v.Name()); err != nil {
		return fmt.Errorf("volume: write name: %w", err)
	}
	if err := root.WriteAttribute(attrDescription, v.Description()); err != nil {
		return fmt.Errorf("volume: write description: %w", err)
	}
	if err := writeVec3(root, attrLocalXform, v.xf.Res); err != nil {
		return err
	}
	if err := writeVec3(root, attrKernelOffset, v.xf.KernelOffset); err != nil {
		return err
	}
	if err := root.WriteAttribute(attrDefaultValue, v.tree.DefaultValue()); err != nil {
		return fmt.Errorf("volume: write default value: %w", err)
	}
	if err := root.WriteAttribute(attrBranchingFactor, int32(v.tree.LgBranching())); err != nil {
		return fmt.Errorf("volume: write branching factor: %w", err)
	}
	if err := root.WriteAttribute(attrCellDimensions, int32(v.tree.LgCellDim())); err != nil {
		return fmt.Errorf("volume: write cell dimensions: %w", err)
	}

	userAttrs, err := root.CreateSubGroup(groupUserAttrs)
	if err != nil {
		return fmt.Errorf("volume: create %s: %w", groupUserAttrs, err)
	}
	for _, name := range v.attrs.Names() {
		if name == attrName || name == attrDescription {
			continue
		}
		val, err := v.attrs.Get(name)
		if err != nil {
			return fmt.Errorf("volume: user attribute %s: %w", name, err)
		}
		if err := writeAttrValue(userAttrs, name, val); err != nil {
			return fmt.Errorf("volume: write user attribute %s: %w", name, err)
		}
	}

	var leafErr error
	v.tree.WalkLeaves(func(l tree.Leaf[T]) {
		if leafErr != nil {
			return
		}
		leafErr = writeLeaf(root, l, encodeValue)
	})
	return leafErr
}

func writeLeaf[T comparable](root iogroup.Group, l tree.Leaf[T], encodeValue func(io.Writer, T) error) error {
	name := leafGroupName(l.Kind, l.Quadrant, l.Offset)
	g, err := root.CreateSubGroup(name)
	if err != nil {
		return fmt.Errorf("volume: create leaf group %s: %w", name, err)
	}

	kind := leafTypeCell
	if l.Kind == tree.LeafFill {
		kind = leafTypeFill
	}
	if err := g.WriteAttribute(attrLeafType, kind); err != nil {
		return fmt.Errorf("volume: write leaf type %s: %w", name, err)
	}
	if err := g.WriteAttribute(attrQuadrant, int32(l.Quadrant)); err != nil {
		return fmt.Errorf("volume: write quadrant %s: %w", name, err)
	}
	if err := writeVecU32(g, attrIndexOffset, l.Offset); err != nil {
		return err
	}

	if l.Kind == tree.LeafFill {
		if err := g.WriteAttribute(attrLevel, int64(l.Level)); err != nil {
			return fmt.Errorf("volume: write level %s: %w", name, err)
		}
		if err := g.WriteAttribute(attrFillValue, l.FillValue); err != nil {
			return fmt.Errorf("volume: write fill value %s: %w", name, err)
		}
		return nil
	}

	c := l.Cell
	// WriteVoxelData always emits the compressed payload (unless Filled),
	// so the persisted flags must say so too, even if c itself is still
	// Expanded in memory — matching cell.WriteTo's "on-disk form is
	// always compressed" contract.
	wireFlags := c.Flags()
	if !c.IsFilled() {
		wireFlags |= cell.FlagCompressed
	}
	if err := g.WriteAttribute(attrFlags, int32(wireFlags)); err != nil {
		return fmt.Errorf("volume: write flags %s: %w", name, err)
	}
	if err := g.WriteAttribute(attrDefaultValue, c.DefaultValue()); err != nil {
		return fmt.Errorf("volume: write default value %s: %w", name, err)
	}
	if err := g.WriteAttribute(attrFillValue, c.FillValue()); err != nil {
		return fmt.Errorf("volume: write fill value %s: %w", name, err)
	}

	var bitsBuf bytes.Buffer
	if _, err := c.BitField().WriteTo(&bitsBuf); err != nil {
		return fmt.Errorf("volume: encode bitfield %s: %w", name, err)
	}
	if err := g.WriteDataset(datasetBitField, []uint64{uint64(bitsBuf.Len())}, bitsBuf.Bytes()); err != nil {
		return fmt.Errorf("volume: write bitfield %s: %w", name, err)
	}
	if err := g.WriteAttribute(attrBitFieldSize, int64(bitsBuf.Len())); err != nil {
		return fmt.Errorf("volume: write bitfield size %s: %w", name, err)
	}

	if !c.IsFilled() {
		var dataBuf bytes.Buffer
		count, err := c.WriteVoxelData(&dataBuf, encodeValue)
		if err != nil {
			return fmt.Errorf("volume: encode voxel data %s: %w", name, err)
		}
		if err := g.WriteDataset(datasetVoxelData, []uint64{uint64(count)}, dataBuf.Bytes()); err != nil {
			return fmt.Errorf("volume: write voxel data %s: %w", name, err)
		}
	}
	return nil
}

// leafGroupName builds a deterministic, unique sub-group name from a
// leaf's type, quadrant, and offset (spec.md §6.2 names a leaf group
// from exactly these three fields).
func leafGroupName(kind tree.LeafKind, quadrant uint8, offset bounds.Vec3) string {
	prefix := "cell"
	if kind == tree.LeafFill {
		prefix = "fill"
	}
	return fmt.Sprintf("%s_q%d_%d_%d_%d", prefix, quadrant, offset.X, offset.Y, offset.Z)
}

func writeVec3(g iogroup.Group, name string, v xform.Vec3) error {
	if err := g.WriteAttribute(name, []float64{v.X, v.Y, v.Z}); err != nil {
		return fmt.Errorf("volume: write %s: %w", name, err)
	}
	return nil
}

func writeVecU32(g iogroup.Group, name string, v bounds.Vec3) error {
	if err := g.WriteAttribute(name, []int32{int32(v.X), int32(v.Y), int32(v.Z)}); err != nil {
		return fmt.Errorf("volume: write %s: %w", name, err)
	}
	return nil
}

func writeAttrValue(g iogroup.Group, name string, v attrs.Value) error {
	switch v.Tag {
	case attrs.TagString:
		return g.WriteAttribute(name, v.Str)
	case attrs.TagI32:
		return g.WriteAttribute(name, v.I32)
	case attrs.TagF32:
		return g.WriteAttribute(name, v.F32)
	case attrs.TagF64:
		return g.WriteAttribute(name, v.F64)
	case attrs.TagVecI32:
		return g.WriteAttribute(name, v.VecI)
	case attrs.TagVecF32:
		return g.WriteAttribute(name, v.VecF)
	case attrs.TagVecF64:
		return g.WriteAttribute(name, v.VecD)
	default:
		return fmt.Errorf("volume: user attribute %s: unsupported tag %d", name, v.Tag)
	}
}

// LoadHierarchical reconstructs a Volume from store, the inverse of
// SaveHierarchical.
func LoadHierarchical[T comparable](store iogroup.Store, decodeValue func(io.Reader) (T, error)) (*Volume[T], error) {
	root := store.Root()

	name, err := readStringAttr(root, attrName)
	if err != nil {
		return nil, err
	}
	description, err := readStringAttr(root, attrDescription)
	if err != nil {
		return nil, err
	}
	res, err := readVec3(root, attrLocalXform)
	if err != nil {
		return nil, err
	}
	kernelOffset, err := readVec3(root, attrKernelOffset)
	if err != nil {
		return nil, err
	}
	defaultAny, err := root.ReadAttribute(attrDefaultValue)
	if err != nil {
		return nil, fmt.Errorf("volume: read default value: %w", err)
	}
	defaultValue, ok := defaultAny.(T)
	if !ok {
		return nil, fmt.Errorf("volume: default value: unexpected attribute type %T", defaultAny)
	}
	branching, err := readInt32Attr(root, attrBranchingFactor)
	if err != nil {
		return nil, err
	}
	cellDim, err := readInt32Attr(root, attrCellDimensions)
	if err != nil {
		return nil, err
	}

	vol := New[T](uint(branching), uint(cellDim), defaultValue, res, kernelOffset)
	if err := vol.SetName(name); err != nil {
		return nil, fmt.Errorf("volume: set name: %w", err)
	}
	if err := vol.SetDescription(description); err != nil {
		return nil, fmt.Errorf("volume: set description: %w", err)
	}

	if userAttrs, err := root.OpenSubGroup(groupUserAttrs); err == nil {
		names, err := userAttrs.AttributeNames()
		if err != nil {
			return nil, fmt.Errorf("volume: list user attributes: %w", err)
		}
		for _, n := range names {
			raw, err := userAttrs.ReadAttribute(n)
			if err != nil {
				return nil, fmt.Errorf("volume: read user attribute %s: %w", n, err)
			}
			val, err := anyToAttrValue(raw)
			if err != nil {
				return nil, fmt.Errorf("volume: user attribute %s: %w", n, err)
			}
			if err := vol.attrs.Insert(n, val); err != nil {
				return nil, fmt.Errorf("volume: insert user attribute %s: %w", n, err)
			}
		}
	} else if err != iogroup.ErrNotFound {
		return nil, fmt.Errorf("volume: open %s: %w", groupUserAttrs, err)
	}

	leafNames, err := root.SubGroupNames()
	if err != nil {
		return nil, fmt.Errorf("volume: list leaf groups: %w", err)
	}
	for _, n := range leafNames {
		if n == groupUserAttrs {
			continue
		}
		g, err := root.OpenSubGroup(n)
		if err != nil {
			return nil, fmt.Errorf("volume: open leaf group %s: %w", n, err)
		}
		leaf, err := readLeaf[T](g, decodeValue)
		if err != nil {
			return nil, fmt.Errorf("volume: read leaf group %s: %w", n, err)
		}
		if err := vol.tree.InstallLeaf(leaf); err != nil {
			return nil, fmt.Errorf("volume: install leaf %s: %w", n, err)
		}
	}
	return vol, nil
}

func readLeaf[T comparable](g iogroup.Group, decodeValue func(io.Reader) (T, error)) (tree.Leaf[T], error) {
	kindVal, err := readInt32Attr(g, attrLeafType)
	if err != nil {
		return tree.Leaf[T]{}, err
	}
	kind := tree.LeafCell
	if kindVal == leafTypeFill {
		kind = tree.LeafFill
	}
	quadrant, err := readInt32Attr(g, attrQuadrant)
	if err != nil {
		return tree.Leaf[T]{}, err
	}
	offset, err := readVecU32(g, attrIndexOffset)
	if err != nil {
		return tree.Leaf[T]{}, err
	}

	if kind == tree.LeafFill {
		level, err := readInt64Attr(g, attrLevel)
		if err != nil {
			return tree.Leaf[T]{}, err
		}
		fillAny, err := g.ReadAttribute(attrFillValue)
		if err != nil {
			return tree.Leaf[T]{}, fmt.Errorf("volume: read fill value: %w", err)
		}
		fillValue, ok := fillAny.(T)
		if !ok {
			return tree.Leaf[T]{}, fmt.Errorf("volume: fill value: unexpected attribute type %T", fillAny)
		}
		return tree.Leaf[T]{
			Kind:      tree.LeafFill,
			Quadrant:  uint8(quadrant),
			Offset:    offset,
			Level:     uint(level),
			FillValue: fillValue,
		}, nil
	}

	flags, err := readInt32Attr(g, attrFlags)
	if err != nil {
		return tree.Leaf[T]{}, err
	}
	defaultAny, err := g.ReadAttribute(attrDefaultValue)
	if err != nil {
		return tree.Leaf[T]{}, fmt.Errorf("volume: read default value: %w", err)
	}
	defaultValue, ok := defaultAny.(T)
	if !ok {
		return tree.Leaf[T]{}, fmt.Errorf("volume: default value: unexpected attribute type %T", defaultAny)
	}
	fillAny, err := g.ReadAttribute(attrFillValue)
	if err != nil {
		return tree.Leaf[T]{}, fmt.Errorf("volume: read fill value: %w", err)
	}
	fillValue, ok := fillAny.(T)
	if !ok {
		return tree.Leaf[T]{}, fmt.Errorf("volume: fill value: unexpected attribute type %T", fillAny)
	}

	_, bitsBytes, err := g.ReadDataset(datasetBitField)
	if err != nil {
		return tree.Leaf[T]{}, fmt.Errorf("volume: read bitfield: %w", err)
	}
	bits := bitfield.New(0)
	if _, err := bits.ReadFrom(bytes.NewReader(bitsBytes)); err != nil {
		return tree.Leaf[T]{}, fmt.Errorf("volume: decode bitfield: %w", err)
	}

	c, err := readCellData[T](g, bits.LgSize(), uint8(flags), bits, defaultValue, fillValue, decodeValue)
	if err != nil {
		return tree.Leaf[T]{}, err
	}
	return tree.Leaf[T]{Kind: tree.LeafCell, Quadrant: uint8(quadrant), Offset: offset, Cell: c}, nil
}

func readCellData[T comparable](
	g iogroup.Group,
	lgCellDim uint,
	flags uint8,
	bits *bitfield.Field,
	defaultValue, fillValue T,
	decodeValue func(io.Reader) (T, error),
) (*cell.Cell[T], error) {
	if flags&cell.FlagFilled != 0 {
		return cell.FromParts[T](lgCellDim, flags, bits, defaultValue, fillValue, bytes.NewReader(nil), 0, decodeValue)
	}
	dims, dataBytes, err := g.ReadDataset(datasetVoxelData)
	if err != nil {
		return nil, fmt.Errorf("volume: read voxel data: %w", err)
	}
	count := 0
	if len(dims) > 0 {
		count = int(dims[0])
	}
	return cell.FromParts[T](lgCellDim, flags, bits, defaultValue, fillValue, bytes.NewReader(dataBytes), count, decodeValue)
}

func readStringAttr(g iogroup.Group, name string) (string, error) {
	v, err := g.ReadAttribute(name)
	if err != nil {
		return "", fmt.Errorf("volume: read %s: %w", name, err)
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("volume: %s: unexpected attribute type %T", name, v)
	}
	return s, nil
}

// readInt32Attr reads a scalar fixed-point attribute. The backing
// library's Attribute.ReadValue is blind to signedness (it always
// decodes a 4-byte fixed-point value as int32), so both int32- and
// uint32-tagged fields land here identically.
func readInt32Attr(g iogroup.Group, name string) (int32, error) {
	v, err := g.ReadAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("volume: read %s: %w", name, err)
	}
	i, ok := v.(int32)
	if !ok {
		return 0, fmt.Errorf("volume: %s: unexpected attribute type %T", name, v)
	}
	return i, nil
}

func readInt64Attr(g iogroup.Group, name string) (int64, error) {
	v, err := g.ReadAttribute(name)
	if err != nil {
		return 0, fmt.Errorf("volume: read %s: %w", name, err)
	}
	switch raw := v.(type) {
	case int64:
		return raw, nil
	case int32:
		return int64(raw), nil
	default:
		return 0, fmt.Errorf("volume: %s: unexpected attribute type %T", name, v)
	}
}

func readVec3(g iogroup.Group, name string) (xform.Vec3, error) {
	v, err := g.ReadAttribute(name)
	if err != nil {
		return xform.Vec3{}, fmt.Errorf("volume: read %s: %w", name, err)
	}
	vals, ok := v.([]float64)
	if !ok || len(vals) != 3 {
		return xform.Vec3{}, fmt.Errorf("volume: %s: unexpected attribute value %v (%T)", name, v, v)
	}
	return xform.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}, nil
}

func readVecU32(g iogroup.Group, name string) (bounds.Vec3, error) {
	v, err := g.ReadAttribute(name)
	if err != nil {
		return bounds.Vec3{}, fmt.Errorf("volume: read %s: %w", name, err)
	}
	vals, ok := v.([]int32)
	if !ok || len(vals) != 3 {
		return bounds.Vec3{}, fmt.Errorf("volume: %s: unexpected attribute value %v (%T)", name, v, v)
	}
	return bounds.Vec3{X: uint32(vals[0]), Y: uint32(vals[1]), Z: uint32(vals[2])}, nil
}

// anyToAttrValue maps a value read back from an iogroup attribute to a
// tagged attrs.Value, the inverse of writeAttrValue. User attributes
// only ever carry the scalar/vector shapes attrs.Collection supports.
func anyToAttrValue(v any) (attrs.Value, error) {
	switch val := v.(type) {
	case string:
		return attrs.Value{Tag: attrs.TagString, Str: val}, nil
	case int32:
		return attrs.Value{Tag: attrs.TagI32, I32: val}, nil
	case float32:
		return attrs.Value{Tag: attrs.TagF32, F32: val}, nil
	case float64:
		return attrs.Value{Tag: attrs.TagF64, F64: val}, nil
	case []int32:
		return attrs.Value{Tag: attrs.TagVecI32, VecI: val}, nil
	case []float32:
		return attrs.Value{Tag: attrs.TagVecF32, VecF: val}, nil
	case []float64:
		return attrs.Value{Tag: attrs.TagVecF64, VecD: val}, nil
	default:
		return attrs.Value{}, fmt.Errorf("unsupported attribute type %T", v)
	}
}
