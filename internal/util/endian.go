package util

import (
	"encoding/binary"
	"math"
)

// Fixed-width little-endian primitives for the on-disk block format. All
// multi-byte fields are little-endian regardless of host byte order; float32
// values travel as their IEEE-754 bit pattern.

// ReadLE16 reads a little-endian uint16 from b.
func ReadLE16(b []byte) uint16 {
	return binary.LittleEndian.Uint16(b)
}

// WriteLE16 writes v to b as little-endian.
func WriteLE16(b []byte, v uint16) {
	binary.LittleEndian.PutUint16(b, v)
}

// ReadLE32 reads a little-endian uint32 from b.
func ReadLE32(b []byte) uint32 {
	return binary.LittleEndian.Uint32(b)
}

// WriteLE32 writes v to b as little-endian.
func WriteLE32(b []byte, v uint32) {
	binary.LittleEndian.PutUint32(b, v)
}

// ReadLE64 reads a little-endian uint64 from b.
func ReadLE64(b []byte) uint64 {
	return binary.LittleEndian.Uint64(b)
}

// WriteLE64 writes v to b as little-endian.
func WriteLE64(b []byte, v uint64) {
	binary.LittleEndian.PutUint64(b, v)
}

// ReadLEFloat32 reads a little-endian IEEE-754 float32 from b.
func ReadLEFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}

// WriteLEFloat32 writes f to b as its little-endian bit pattern.
func WriteLEFloat32(b []byte, f float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(f))
}

// ReadLEVector decodes len(dst) little-endian float32 values from b into dst.
func ReadLEVector(b []byte, dst []float32) {
	for i := range dst {
		dst[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
}

// WriteLEVector encodes src into b as little-endian float32 values.
func WriteLEVector(b []byte, src []float32) {
	for i, f := range src {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
}
