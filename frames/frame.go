package frames

import (
	"fmt"
	"image"
	"image/color"

	"github.com/google/uuid"
)

// RawImage is an undecoded source image as handed over by whatever acquired
// it (file, upload, URL).
type RawImage struct {
	Name string
	Data []byte
}

// Frame is one decoded source image. It is immutable once created; callers
// must not modify the pixels returned by Image.
type Frame struct {
	id   uuid.UUID
	name string
	img  *image.NRGBA
}

func newFrame(name string, img image.Image) *Frame {
	return &Frame{
		id:   uuid.New(),
		name: name,
		img:  toNRGBA(img),
	}
}

// ID returns the identifier assigned when the frame was added to its sequence.
func (f *Frame) ID() uuid.UUID {
	return f.id
}

// Name returns the display name, usually the source file's base name.
func (f *Frame) Name() string {
	return f.name
}

// Image returns the decoded pixels. Bounds always start at 0,0.
func (f *Frame) Image() *image.NRGBA {
	return f.img
}

// Size returns the frame's width and height in pixels.
func (f *Frame) Size() image.Point {
	return f.img.Bounds().Size()
}

func (f *Frame) String() string {
	sz := f.Size()
	return fmt.Sprintf("%s (%dx%d)", f.name, sz.X, sz.Y)
}

// toNRGBA copies img into a fresh non-premultiplied buffer anchored at 0,0.
//
// image/draw goes through premultiplied color for anything that isn't an
// *image.RGBA destination, which would lose precision on translucent pixels,
// so NRGBA sources are copied row by row instead.
func toNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		rowLen := 4 * b.Dx()
		for y := 0; y < b.Dy(); y++ {
			so := src.PixOffset(b.Min.X, b.Min.Y+y)
			do := dst.PixOffset(0, y)
			copy(dst.Pix[do:do+rowLen], src.Pix[so:so+rowLen])
		}
		return dst
	}
	for y := 0; y < b.Dy(); y++ {
		for x := 0; x < b.Dx(); x++ {
			c := color.NRGBAModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.NRGBA)
			dst.SetNRGBA(x, y, c)
		}
	}
	return dst
}
