package cell

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/papaver/nkhive/bitfield"
)

func encodeI32(w io.Writer, v int32) error { return binary.Write(w, binary.LittleEndian, v) }

func decodeI32(r io.Reader) (int32, error) {
	var v int32
	err := binary.Read(r, binary.LittleEndian, &v)
	return v, err
}

func TestWriteVoxelDataFromPartsRoundTrip(t *testing.T) {
	c := New[int32](2, -1) // side 4, expanded payload below
	must(t, c.Set(c.linear(0, 0, 0), 5))
	must(t, c.Set(c.linear(1, 2, 3), 9))

	var bitsBuf bytes.Buffer
	if _, err := c.BitField().WriteTo(&bitsBuf); err != nil {
		t.Fatalf("BitField.WriteTo: %v", err)
	}

	var dataBuf bytes.Buffer
	count, err := c.WriteVoxelData(&dataBuf, encodeI32)
	if err != nil {
		t.Fatalf("WriteVoxelData: %v", err)
	}
	if count != 2 {
		t.Fatalf("count = %d, want 2 (popcount after compress)", count)
	}

	bits := bitfield.New(0)
	if _, err := bits.ReadFrom(&bitsBuf); err != nil {
		t.Fatalf("bitfield.ReadFrom: %v", err)
	}
	got, err := FromParts[int32](c.LgCellDim(), c.Flags()|FlagCompressed, bits, c.DefaultValue(), c.FillValue(), &dataBuf, count, decodeI32)
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}

	if got.Get(0, 0, 0) != 5 {
		t.Fatalf("Get(0,0,0) = %d, want 5", got.Get(0, 0, 0))
	}
	if got.Get(1, 2, 3) != 9 {
		t.Fatalf("Get(1,2,3) = %d, want 9", got.Get(1, 2, 3))
	}
	if got.Get(3, 3, 3) != -1 {
		t.Fatalf("Get(3,3,3) = %d, want default -1", got.Get(3, 3, 3))
	}
	if got.IsCompressed() {
		t.Fatal("expected FromParts to uncompress a non-Filled cell")
	}
}

func TestWriteVoxelDataFilledIsEmpty(t *testing.T) {
	c := New[int32](1, 0)
	must(t, c.Fill(7))

	var dataBuf bytes.Buffer
	count, err := c.WriteVoxelData(&dataBuf, encodeI32)
	if err != nil {
		t.Fatalf("WriteVoxelData: %v", err)
	}
	if count != 0 || dataBuf.Len() != 0 {
		t.Fatalf("count/len = %d/%d, want 0/0 for a Filled cell", count, dataBuf.Len())
	}

	got, err := FromParts[int32](c.LgCellDim(), c.Flags(), c.BitField(), c.DefaultValue(), c.FillValue(), &dataBuf, 0, decodeI32)
	if err != nil {
		t.Fatalf("FromParts: %v", err)
	}
	if !got.IsFilled() {
		t.Fatal("expected FromParts to keep a Filled cell Filled")
	}
	if got.Get(0, 0, 0) != 7 {
		t.Fatalf("Get(0,0,0) = %d, want 7", got.Get(0, 0, 0))
	}
}
