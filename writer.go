package farbfeld

import (
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"math"
)

var (
	// ErrIrregularGrid means the grid rows do not all share the width of
	// the first row.
	ErrIrregularGrid = errors.New("farbfeld: rows of differing widths")

	// ErrInvalidChannelValue means a source color reported a channel
	// outside the 16-bit range.
	ErrInvalidChannelValue = errors.New("farbfeld: channel value out of range")
)

type encoder struct {
	w io.Writer

	width  int
	height int
}

func (e *encoder) checkDimensions() error {
	if uint64(e.width) > math.MaxUint32 || uint64(e.height) > math.MaxUint32 {
		return ErrDimensionsTooLarge
	}
	return nil
}

func (e *encoder) writeHeader() error {
	var tmp [headerLen]byte
	copy(tmp[:magicLen], magic)
	binary.BigEndian.PutUint32(tmp[8:12], uint32(e.width))
	binary.BigEndian.PutUint32(tmp[12:16], uint32(e.height))
	_, err := e.w.Write(tmp[:])
	return err
}

func (e *encoder) writePixels(m *image.NRGBA64) error {
	for y := m.Rect.Min.Y; y < m.Rect.Max.Y; y++ {
		i := m.PixOffset(m.Rect.Min.X, y)
		if _, err := e.w.Write(m.Pix[i : i+e.width*pixelLen]); err != nil {
			return err
		}
	}
	return nil
}

// toNRGBA64 converts m to the farbfeld pixel model, rejecting any color
// that reports a channel beyond 16 bits before anything is written.
func toNRGBA64(m image.Image) (*image.NRGBA64, error) {
	b := m.Bounds()
	nm := image.NewNRGBA64(image.Rect(0, 0, b.Dx(), b.Dy()))
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			c := m.At(x, y)
			if r, g, bl, a := c.RGBA(); r > channelMax || g > channelMax || bl > channelMax || a > channelMax {
				return nil, ErrInvalidChannelValue
			}
			nm.SetNRGBA64(x-b.Min.X, y-b.Min.Y, color.NRGBA64Model.Convert(c).(color.NRGBA64))
		}
	}
	return nm, nil
}

// Encode writes the Image m to w in farbfeld format. Images that are not
// already *image.NRGBA64 are converted through color.NRGBA64Model first.
func Encode(w io.Writer, m image.Image) error {
	b := m.Bounds()

	e := encoder{w: w, width: b.Dx(), height: b.Dy()}
	if err := e.checkDimensions(); err != nil {
		return err
	}

	nm, ok := m.(*image.NRGBA64)
	if !ok {
		var err error
		if nm, err = toNRGBA64(m); err != nil {
			return err
		}
	}

	if err := e.writeHeader(); err != nil {
		return err
	}

	return e.writePixels(nm)
}

// EncodeGrid writes the pixel grid g to w in farbfeld format. The width is
// taken from the first row, or is zero when there are no rows; every other
// row must match it exactly, checked before any byte is written.
func EncodeGrid(w io.Writer, g Grid) error {
	width, height := g.dimensions()
	for _, row := range g {
		if len(row) != width {
			return ErrIrregularGrid
		}
	}

	e := encoder{w: w, width: width, height: height}
	if err := e.checkDimensions(); err != nil {
		return err
	}

	if err := e.writeHeader(); err != nil {
		return err
	}

	row := make([]byte, width*pixelLen)
	for _, pixels := range g {
		for x, p := range pixels {
			i := x * pixelLen
			binary.BigEndian.PutUint16(row[i:], p.R)
			binary.BigEndian.PutUint16(row[i+2:], p.G)
			binary.BigEndian.PutUint16(row[i+4:], p.B)
			binary.BigEndian.PutUint16(row[i+6:], p.A)
		}
		if _, err := e.w.Write(row); err != nil {
			return err
		}
	}

	return nil
}
