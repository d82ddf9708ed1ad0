package atlas

import (
	"image"

	"github.com/golang/glog"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
)

// Pack lays frames out left to right and returns the atlas bitmap and its
// descriptor. name is the output base name; the descriptor refers to the
// bitmap as name + ImageExt.
//
// Pack fails with an InputError when frames is empty and with a PackError
// when any frame has zero width or height. Identical input always produces
// identical pixels and an identical descriptor.
func Pack(frs []*frames.Frame, name string) (*image.NRGBA, *Descriptor, error) {
	if len(frs) == 0 {
		return nil, nil, framepack.Errorf(framepack.InputError, "nothing to pack")
	}

	var width, height int
	for i, f := range frs {
		sz := f.Size()
		if sz.X <= 0 || sz.Y <= 0 {
			return nil, nil, framepack.Errorf(framepack.PackError, "frame %d (%q) is %dx%d", i, f.Name(), sz.X, sz.Y)
		}
		width += sz.X
		if sz.Y > height {
			height = sz.Y
		}
	}

	canvas := image.NewNRGBA(image.Rect(0, 0, width, height))
	desc := &Descriptor{
		Frames: make([]FrameRect, 0, len(frs)),
		Meta: Meta{
			Format:  Format,
			Image:   name + ImageExt,
			Scale:   "1",
			Size:    Size{W: width, H: height},
			Version: Version,
		},
	}

	x := 0
	for _, f := range frs {
		sz := f.Size()
		blit(canvas, image.Pt(x, 0), f.Image())
		desc.Frames = append(desc.Frames, FrameRect{
			Filename: f.Name(),
			Frame:    Rect{H: sz.Y, W: sz.X, X: x, Y: 0},
			Scale:    UnitScale,
		})
		x += sz.X
	}

	glog.V(1).Infof("packed %d frames into %dx%d atlas %q", len(frs), width, height, desc.Meta.Image)
	return canvas, desc, nil
}

// blit copies src into dst at pt byte for byte. Both are non-premultiplied,
// so no color conversion happens.
func blit(dst *image.NRGBA, pt image.Point, src *image.NRGBA) {
	b := src.Bounds()
	rowLen := 4 * b.Dx()
	for y := 0; y < b.Dy(); y++ {
		so := src.PixOffset(b.Min.X, b.Min.Y+y)
		do := dst.PixOffset(pt.X, pt.Y+y)
		copy(dst.Pix[do:do+rowLen], src.Pix[so:so+rowLen])
	}
}

// Slice returns a copy of the part of atlas covered by r.
func Slice(atlas *image.NRGBA, r Rect) *image.NRGBA {
	rect := image.Rect(r.X, r.Y, r.X+r.W, r.Y+r.H).Intersect(atlas.Bounds())
	out := image.NewNRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	blit(out, image.ZP, atlas.SubImage(rect).(*image.NRGBA))
	return out
}
