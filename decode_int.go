package nanoscope

import "encoding/binary"

var le = binary.LittleEndian

// decodeInt16 converts little-endian int16 samples of src into dst.
func decodeInt16(dst []float64, src []byte) {
	var offset int
	for i := range dst {
		dst[i] = float64(int16(le.Uint16(src[offset : offset+2])))
		offset += 2 // int16 is hold on 2 bytes
	}
}

// decodeInt32 converts little-endian int32 samples of src into dst.
func decodeInt32(dst []float64, src []byte) {
	var offset int
	for i := range dst {
		dst[i] = float64(int32(le.Uint32(src[offset : offset+4])))
		offset += 4 // int32 is hold on 4 bytes
	}
}

// flipRows reverses the row order of a row-major matrix in place.
func flipRows(data []float64, cols int) {
	rows := len(data) / cols
	for top, bottom := 0, rows-1; top < bottom; top, bottom = top+1, bottom-1 {
		a := data[top*cols : (top+1)*cols]
		b := data[bottom*cols : (bottom+1)*cols]
		for i := range a {
			a[i], b[i] = b[i], a[i]
		}
	}
}
