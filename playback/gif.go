package playback

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/gif"
	"io"

	"github.com/andybons/gogif"
	"github.com/ericpauley/go-quantize/quantize"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
)

// Palettizer picks the palette a GIF frame is reduced to. One slot is always
// reserved for transparency, so implementations should return at most 255
// colors.
type Palettizer interface {
	Palette(img image.Image) color.Palette
}

// MedianCut uses gogif's median cut quantizer.
type MedianCut struct {
	NumColor int
}

func (q MedianCut) Palette(img image.Image) color.Palette {
	n := q.NumColor
	if n <= 0 || n > 255 {
		n = 255
	}
	// gogif only quantizes by drawing into a paletted image, so the pixels
	// are copied once here just to learn the palette.
	pal := image.NewPaletted(img.Bounds(), nil)
	quantizer := gogif.MedianCutQuantizer{NumColor: n}
	quantizer.Quantize(pal, img.Bounds(), img, img.Bounds().Min)
	return pal.Palette
}

// Weighted uses go-quantize's median cut, which weighs colors by how often
// they occur and skips the pixel copy.
type Weighted struct{}

func (Weighted) Palette(img image.Image) color.Palette {
	q := quantize.MedianCutQuantizer{}
	return q.Quantize(make(color.Palette, 0, 255), img)
}

// ParsePalettizer maps a quantizer name, "gogif" or "mediancut", to its
// implementation.
func ParsePalettizer(name string) (Palettizer, error) {
	switch name {
	case "", "gogif":
		return MedianCut{NumColor: 255}, nil
	case "mediancut":
		return Weighted{}, nil
	}
	return nil, fmt.Errorf("unknown quantizer %q", name)
}

// EncodeGIF writes frs as an animated GIF using cfg's rate, looping and
// background. Frame delay is 100/fps hundredths of a second. A nil
// palettizer means MedianCut.
func EncodeGIF(w io.Writer, frs []*frames.Frame, cfg Config, p Palettizer) error {
	if len(frs) == 0 {
		return framepack.Errorf(framepack.InputError, "no frames for gif")
	}
	if p == nil {
		p = MedianCut{NumColor: 255}
	}

	var size image.Point
	for _, f := range frs {
		sz := f.Size()
		if sz.X > size.X {
			size.X = sz.X
		}
		if sz.Y > size.Y {
			size.Y = sz.Y
		}
	}

	delay := 100 / clamp(cfg.FPS, MinFPS, MaxFPS)
	if delay < 1 {
		delay = 1
	}
	g := &gif.GIF{
		Config: image.Config{Width: size.X, Height: size.Y},
	}
	if !cfg.Looping {
		g.LoopCount = -1
	}

	for _, f := range frs {
		img := cfg.Background.Compose(f.Image(), size)

		// Transparent goes first so that the empty image defaults to it.
		palette := append(color.Palette{color.Transparent}, p.Palette(img)...)
		if len(palette) > 256 {
			palette = palette[:256]
		}
		pal := image.NewPaletted(img.Bounds(), palette)
		draw.Draw(pal, img.Bounds(), img, image.ZP, draw.Over)

		g.Image = append(g.Image, pal)
		g.Delay = append(g.Delay, delay)
		g.Disposal = append(g.Disposal, gif.DisposalBackground)
	}
	g.BackgroundIndex = 0 // color.Transparent

	if err := gif.EncodeAll(w, g); err != nil {
		return framepack.Wrapf(framepack.ExportError, err, "encoding gif")
	}
	return nil
}
