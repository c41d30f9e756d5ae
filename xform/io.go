package xform

import (
	"encoding/binary"
	"io"
)

// WriteTo writes six little-endian float64 values: the 3-component Res
// followed by the 3-component kernel offset.
func (x Xform) WriteTo(w io.Writer) (int64, error) {
	vals := [6]float64{x.Res.X, x.Res.Y, x.Res.Z, x.KernelOffset.X, x.KernelOffset.Y, x.KernelOffset.Z}
	if err := binary.Write(w, binary.LittleEndian, vals); err != nil {
		return 0, err
	}
	return int64(len(vals)) * 8, nil
}

// ReadFrom is the inverse of WriteTo.
func ReadFrom(r io.Reader) (Xform, int64, error) {
	var vals [6]float64
	if err := binary.Read(r, binary.LittleEndian, &vals); err != nil {
		return Xform{}, 0, err
	}
	x := Xform{
		Res:          Vec3{X: vals[0], Y: vals[1], Z: vals[2]},
		KernelOffset: Vec3{X: vals[3], Y: vals[4], Z: vals[5]},
	}
	return x, int64(len(vals)) * 8, nil
}
