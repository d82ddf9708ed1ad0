package ttesting

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
)

// Gradient returns a w x h image whose pixels encode their own coordinates
// and the passed seed, so that any misplaced pixel is detectable.
func Gradient(w, h int, seed uint8) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: seed, A: 0x80 | seed})
		}
	}
	return img
}

// PNG encodes img, panicking on failure.
func PNG(img image.Image) []byte {
	buf := &bytes.Buffer{}
	if err := png.Encode(buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
