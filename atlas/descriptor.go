package atlas

import (
	"strconv"

	"badc0de.net/pkg/framepack"
)

const (
	// Format is the pixel format recorded in Meta.Format.
	Format = "RGBA8888"
	// Version is the descriptor version recorded in Meta.Version.
	Version = "1.0"
	// ImageExt is appended to the output name to form Meta.Image.
	ImageExt = ".png"
	// DescriptorExt is the extension of the descriptor artifact.
	DescriptorExt = ".json"
)

// Descriptor records the placement of every frame inside the atlas.
type Descriptor struct {
	Frames []FrameRect `json:"frames"`
	Meta   Meta        `json:"meta"`
}

// FrameRect places one source image inside the atlas.
type FrameRect struct {
	Filename string `json:"filename"`
	Frame    Rect   `json:"frame"`
	Scale    Scale  `json:"scale"`
}

// Rect is a frame's rectangle. Field order matches the serialized form.
type Rect struct {
	H int `json:"h"`
	W int `json:"w"`
	X int `json:"x"`
	Y int `json:"y"`
}

// Scale is always 1,1,1: frames are never resampled.
type Scale struct {
	X Factor `json:"x"`
	Y Factor `json:"y"`
	Z Factor `json:"z"`
}

// UnitScale is the only scale the packer emits.
var UnitScale = Scale{X: 1, Y: 1, Z: 1}

// Factor is a scale factor that always serializes with a fractional part, so
// that 1 is written as 1.0.
type Factor float64

func (f Factor) MarshalJSON() ([]byte, error) {
	b := strconv.AppendFloat(nil, float64(f), 'f', -1, 64)
	for _, c := range b {
		if c == '.' || c == 'e' {
			return b, nil
		}
	}
	return append(b, '.', '0'), nil
}

// Meta describes the atlas as a whole.
type Meta struct {
	Format  string `json:"format"`
	Image   string `json:"image"`
	Scale   string `json:"scale"`
	Size    Size   `json:"size"`
	Version string `json:"version"`
}

// Size is the atlas size. Field order matches the serialized form.
type Size struct {
	H int `json:"h"`
	W int `json:"w"`
}

// WithImage returns a copy of d whose Meta.Image refers to name + ImageExt.
// Frames are shared with d.
func (d *Descriptor) WithImage(name string) *Descriptor {
	c := *d
	c.Meta.Image = name + ImageExt
	return &c
}

// Validate checks the strip layout invariants: frames are contiguous from
// x=0 at y=0, the atlas is as wide as all frames and as tall as the tallest.
func (d *Descriptor) Validate() error {
	if len(d.Frames) == 0 {
		return framepack.Errorf(framepack.InputError, "descriptor has no frames")
	}
	x, h := 0, 0
	for i, fr := range d.Frames {
		if fr.Frame.W <= 0 || fr.Frame.H <= 0 {
			return framepack.Errorf(framepack.PackError, "frame %d (%q) has zero area", i, fr.Filename)
		}
		if fr.Frame.X != x || fr.Frame.Y != 0 {
			return framepack.Errorf(framepack.PackError, "frame %d (%q) at %d,%d; want %d,0", i, fr.Filename, fr.Frame.X, fr.Frame.Y, x)
		}
		if fr.Scale != UnitScale {
			return framepack.Errorf(framepack.PackError, "frame %d (%q) has scale %v", i, fr.Filename, fr.Scale)
		}
		x += fr.Frame.W
		if fr.Frame.H > h {
			h = fr.Frame.H
		}
	}
	if d.Meta.Size.W != x || d.Meta.Size.H != h {
		return framepack.Errorf(framepack.PackError, "atlas size %dx%d; want %dx%d", d.Meta.Size.W, d.Meta.Size.H, x, h)
	}
	return nil
}
