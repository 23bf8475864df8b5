/*
Package farbfeld implements a farbfeld image decoder and encoder.

Farbfeld is a minimal, uncompressed image format. A file starts with the
eight magic bytes "farbfeld" followed by the image width and height as
32-bit unsigned big-endian integers. The pixel data follows immediately:
width×height pixels in row-major order, top to bottom and left to right,
each pixel being four 16-bit unsigned big-endian components (RGBA). The
components are linear with straight (non-premultiplied) alpha; the codec
transports them without interpreting color semantics.

A file is therefore exactly 16 + width*height*8 bytes long. There is no
padding, checksum or trailer, and the codec rejects any input that is even
one byte short of or beyond that length.
*/
package farbfeld

const (
	magic = "farbfeld"

	magicLen  = len(magic)
	headerLen = magicLen + 8

	// Each pixel is four channels of two bytes each.
	channelLen = 2
	pixelLen   = 4 * channelLen

	channelMax = 1<<16 - 1
)
