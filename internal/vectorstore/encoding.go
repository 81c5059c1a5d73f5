package vectorstore

import (
	"encoding/binary"
	"math"
)

// encodeFloat32s packs a vector as a little-endian float32 BLOB.
func encodeFloat32s(vector []float32) []byte {
	buf := make([]byte, 4*len(vector))
	for i, v := range vector {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(v))
	}
	return buf
}

// decodeFloat32s unpacks a little-endian float32 BLOB.
func decodeFloat32s(blob []byte) []float32 {
	vector := make([]float32, len(blob)/4)
	for i := range vector {
		vector[i] = math.Float32frombits(binary.LittleEndian.Uint32(blob[i*4:]))
	}
	return vector
}
