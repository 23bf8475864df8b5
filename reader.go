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
	// ErrInvalidMagic means the input does not start with the eight
	// magic bytes "farbfeld".
	ErrInvalidMagic = errors.New("farbfeld: invalid magic")

	// ErrTruncatedHeader means the input ends before the width and
	// height fields are complete.
	ErrTruncatedHeader = errors.New("farbfeld: truncated header")

	// ErrDimensionsTooLarge means the declared width and height describe
	// a pixel payload that cannot be sized or allocated safely.
	ErrDimensionsTooLarge = errors.New("farbfeld: dimensions too large")

	// ErrTruncatedPixelData means the input holds fewer pixel bytes than
	// the header declares.
	ErrTruncatedPixelData = errors.New("farbfeld: truncated pixel data")

	// ErrTrailingData means the input continues past the declared pixel
	// data.
	ErrTrailingData = errors.New("farbfeld: trailing data after pixel data")
)

func readFull(r io.Reader, b []byte) error {
	_, err := io.ReadFull(r, b)
	if err == io.EOF {
		err = io.ErrUnexpectedEOF
	}
	return err
}

type decoder struct {
	r io.Reader

	width  int
	height int

	image *image.NRGBA64
}

func (d *decoder) readHeader() error {
	var tmp [headerLen]byte

	if err := readFull(d.r, tmp[:magicLen]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrInvalidMagic
		}
		return err
	}
	if string(tmp[:magicLen]) != magic {
		return ErrInvalidMagic
	}

	if err := readFull(d.r, tmp[magicLen:]); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrTruncatedHeader
		}
		return err
	}

	width := binary.BigEndian.Uint32(tmp[8:12])
	height := binary.BigEndian.Uint32(tmp[12:16])

	// The pixel count cannot overflow a uint64 for 32-bit operands, but
	// the byte count can, as can the conversion to int on 32-bit
	// platforms.
	pixels := uint64(width) * uint64(height)
	if pixels > math.MaxUint64/pixelLen || pixels*pixelLen > math.MaxInt {
		return ErrDimensionsTooLarge
	}

	d.width, d.height = int(width), int(height)

	return nil
}

func (d *decoder) readPixels() error {
	d.image = image.NewNRGBA64(image.Rect(0, 0, d.width, d.height))

	// NRGBA64 pixel memory is big-endian RGBA16, the exact wire layout.
	if err := readFull(d.r, d.image.Pix); err != nil {
		if err == io.ErrUnexpectedEOF {
			return ErrTruncatedPixelData
		}
		return err
	}
	return nil
}

func (d *decoder) checkTrailing() error {
	var tmp [1]byte
	if _, err := io.ReadFull(d.r, tmp[:]); err != io.EOF {
		if err != nil {
			return err
		}
		return ErrTrailingData
	}
	return nil
}

func (d *decoder) decode(r io.Reader, configOnly bool) error {
	d.r = r

	if err := d.readHeader(); err != nil {
		return err
	}

	if configOnly {
		return nil
	}

	if err := d.readPixels(); err != nil {
		return err
	}

	return d.checkTrailing()
}

func (d *decoder) grid() Grid {
	g := make(Grid, d.height)
	for y := range g {
		row := make([]Pixel, d.width)
		for x := range row {
			i := d.image.PixOffset(x, y)
			row[x] = Pixel{
				R: binary.BigEndian.Uint16(d.image.Pix[i:]),
				G: binary.BigEndian.Uint16(d.image.Pix[i+2:]),
				B: binary.BigEndian.Uint16(d.image.Pix[i+4:]),
				A: binary.BigEndian.Uint16(d.image.Pix[i+6:]),
			}
		}
		g[y] = row
	}
	return g
}

// Decode reads a farbfeld image from r and returns it as an image.Image.
// The concrete type of the returned image is *image.NRGBA64. The input
// must contain exactly one image and nothing more; any shortfall or excess
// is an error.
func Decode(r io.Reader) (image.Image, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.image, nil
}

// DecodeGrid reads a farbfeld image from r and returns its pixels as rows
// of 16-bit RGBA samples in on-wire order. A zero height yields an empty
// grid; a zero width yields empty rows.
func DecodeGrid(r io.Reader) (Grid, error) {
	var d decoder
	if err := d.decode(r, false); err != nil {
		return nil, err
	}
	return d.grid(), nil
}

// DecodeConfig returns the color model and dimensions of a farbfeld image
// without decoding the pixel data.
func DecodeConfig(r io.Reader) (image.Config, error) {
	var d decoder
	if err := d.decode(r, true); err != nil {
		return image.Config{}, err
	}
	return image.Config{
		ColorModel: color.NRGBA64Model,
		Width:      d.width,
		Height:     d.height,
	}, nil
}

func init() {
	image.RegisterFormat("farbfeld", magic, Decode, DecodeConfig)
}
