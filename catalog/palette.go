package catalog

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"

	"github.com/ericpauley/go-quantize/quantize"
)

const paletteColors = 16

// dominantColors reduces m to at most paletteColors representative colors.
func dominantColors(m image.Image) color.Palette {
	b := m.Bounds()
	if b.Dx() == 0 || b.Dy() == 0 {
		return nil
	}
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, paletteColors), m)
}

// Palette blobs reuse the farbfeld pixel layout: each color as R, G, B, A
// big-endian 16-bit values.
func marshalPalette(p color.Palette) []byte {
	b := make([]byte, 0, len(p)*8)
	var tmp [8]byte
	for _, c := range p {
		n := color.NRGBA64Model.Convert(c).(color.NRGBA64)
		binary.BigEndian.PutUint16(tmp[0:], n.R)
		binary.BigEndian.PutUint16(tmp[2:], n.G)
		binary.BigEndian.PutUint16(tmp[4:], n.B)
		binary.BigEndian.PutUint16(tmp[6:], n.A)
		b = append(b, tmp[:]...)
	}
	return b
}

func unmarshalPalette(b []byte) (color.Palette, error) {
	if len(b)%8 != 0 {
		return nil, errors.New("catalog: malformed palette")
	}
	var p color.Palette
	for i := 0; i < len(b); i += 8 {
		p = append(p, color.NRGBA64{
			R: binary.BigEndian.Uint16(b[i:]),
			G: binary.BigEndian.Uint16(b[i+2:]),
			B: binary.BigEndian.Uint16(b[i+4:]),
			A: binary.BigEndian.Uint16(b[i+6:]),
		})
	}
	return p, nil
}
