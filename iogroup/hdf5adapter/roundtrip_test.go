package hdf5adapter

import (
	"bytes"
	"path/filepath"
	"testing"
)

func TestCreateWriteCloseOpenRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "volume.h5")

	store, err := Create(path, "/HiveVolumeRoot")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	root := store.Root()
	if err := root.WriteAttribute("BranchingFactor", int32(8)); err != nil {
		t.Fatalf("WriteAttribute: %v", err)
	}
	leaf, err := root.CreateSubGroup("cell_0_0")
	if err != nil {
		t.Fatalf("CreateSubGroup: %v", err)
	}
	if err := leaf.WriteAttribute("LeafType", int32(0)); err != nil {
		t.Fatalf("WriteAttribute(LeafType): %v", err)
	}
	payload := bytes.Repeat([]byte{0x5A}, 13)
	if err := leaf.WriteDataset("BitField", []uint64{13}, payload); err != nil {
		t.Fatalf("WriteDataset: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	store2, err := Open(path, "/HiveVolumeRoot")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer store2.Close()

	root2 := store2.Root()
	bf, err := root2.ReadAttribute("BranchingFactor")
	if err != nil {
		t.Fatalf("ReadAttribute(BranchingFactor): %v", err)
	}
	if bf != int32(8) {
		t.Fatalf("BranchingFactor = %v (%T), want int32(8)", bf, bf)
	}

	names, err := root2.SubGroupNames()
	if err != nil {
		t.Fatalf("SubGroupNames: %v", err)
	}
	if len(names) != 1 || names[0] != "cell_0_0" {
		t.Fatalf("SubGroupNames = %v, want [cell_0_0]", names)
	}

	leaf2, err := root2.OpenSubGroup("cell_0_0")
	if err != nil {
		t.Fatalf("OpenSubGroup: %v", err)
	}
	dims, data, err := leaf2.ReadDataset("BitField")
	if err != nil {
		t.Fatalf("ReadDataset: %v", err)
	}
	if len(dims) != 1 || dims[0] != 13 {
		t.Fatalf("dims = %v, want [13]", dims)
	}
	if !bytes.Equal(data, payload) {
		t.Fatalf("data = %v, want %v", data, payload)
	}
}
