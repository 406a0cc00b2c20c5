package videoframe

import (
	"bytes"
	"image"
)

// Display is a frame ready for direct bitmap presentation: tightly packed
// RGB rows of Stride bytes each. A published Display must not be mutated.
type Display struct {
	W, H     int
	Channels int
	Stride   int
	Pix      []byte
}

// NewDisplay wraps packed RGB pixel data of the given size.
func NewDisplay(w, h int, pix []byte) Display {
	return Display{W: w, H: h, Channels: 3, Stride: w * 3, Pix: pix}
}

func (d Display) Empty() bool {
	return d.W == 0 || d.H == 0 || len(d.Pix) == 0
}

func (d Display) Dimensions() Dimensions {
	return Dimensions{W: d.W, H: d.H}
}

// Equal reports whether both displays hold bit-identical pixels.
func (d Display) Equal(o Display) bool {
	return d.W == o.W && d.H == o.H &&
		d.Channels == o.Channels && d.Stride == o.Stride &&
		bytes.Equal(d.Pix, o.Pix)
}

// At returns the channel values of the pixel at x, y.
func (d Display) At(x, y int) []byte {
	off := y*d.Stride + x*d.Channels
	return d.Pix[off : off+d.Channels]
}

// ToImage expands the packed pixels into an opaque RGBA image.
func (d Display) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, d.W, d.H))
	for y := 0; y < d.H; y++ {
		src := d.Pix[y*d.Stride : y*d.Stride+d.W*d.Channels]
		dst := img.Pix[y*img.Stride : y*img.Stride+d.W*4]
		for x := 0; x < d.W; x++ {
			s := src[x*d.Channels : x*d.Channels+d.Channels]
			o := dst[x*4 : x*4+4]
			if d.Channels == 1 {
				o[0], o[1], o[2] = s[0], s[0], s[0]
			} else {
				o[0], o[1], o[2] = s[0], s[1], s[2]
			}
			o[3] = 0xff
		}
	}
	return img
}
