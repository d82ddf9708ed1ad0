package playback

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"
)

// Background is what a preview frame is drawn over.
type Background int

const (
	Checkerboard Background = iota
	White
	Black
	Gray
	// Transparent leaves the frame's own alpha untouched.
	Transparent
)

// checkerCell is the side of one checkerboard square, in pixels.
const checkerCell = 10

var (
	checkerColor = color.NRGBA{0x80, 0x80, 0x80, 0xff}

	backgroundNames = map[Background]string{
		Checkerboard: "checkerboard",
		White:        "white",
		Black:        "black",
		Gray:         "gray",
		Transparent:  "transparent",
	}
)

func (b Background) String() string {
	if n, ok := backgroundNames[b]; ok {
		return n
	}
	return fmt.Sprintf("Background(%d)", int(b))
}

// ParseBackground maps a background name to its value.
func ParseBackground(s string) (Background, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for b, n := range backgroundNames {
		if n == s {
			return b, nil
		}
	}
	return Checkerboard, fmt.Errorf("unknown background %q", s)
}

// Set implements flag.Value.
func (b *Background) Set(s string) error {
	v, err := ParseBackground(s)
	if err != nil {
		return err
	}
	*b = v
	return nil
}

// Fill paints the background over the whole of dst.
func (b Background) Fill(dst draw.Image) {
	r := dst.Bounds()
	switch b {
	case White:
		draw.Draw(dst, r, image.White, image.ZP, draw.Src)
	case Black:
		draw.Draw(dst, r, image.Black, image.ZP, draw.Src)
	case Gray:
		draw.Draw(dst, r, image.NewUniform(checkerColor), image.ZP, draw.Src)
	case Checkerboard:
		draw.Draw(dst, r, image.Transparent, image.ZP, draw.Src)
		for y := r.Min.Y; y < r.Max.Y; y += checkerCell {
			for x := r.Min.X; x < r.Max.X; x += checkerCell {
				if ((x-r.Min.X)/checkerCell+(y-r.Min.Y)/checkerCell)%2 != 0 {
					continue
				}
				cell := image.Rect(x, y, x+checkerCell, y+checkerCell).Intersect(r)
				draw.Draw(dst, cell, image.NewUniform(checkerColor), image.ZP, draw.Src)
			}
		}
	default:
		draw.Draw(dst, r, image.Transparent, image.ZP, draw.Src)
	}
}

// Compose draws img at the top left corner of a size canvas filled with the
// background.
func (b Background) Compose(img image.Image, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	b.Fill(dst)
	draw.Draw(dst, img.Bounds().Sub(img.Bounds().Min), img, img.Bounds().Min, draw.Over)
	return dst
}
