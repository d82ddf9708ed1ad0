// Package ttesting contains assertion helpers shared by framepack tests.
package ttesting

import (
	"bytes"
	"image"
	"strings"
	"testing"

	"badc0de.net/pkg/framepack"
)

func AssertEqualInt(t *testing.T, name string, got, want int) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %d; want %d", got, want)
		}
	})
}

func AssertEqualBool(t *testing.T, name string, got, want bool) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got != want {
			t.Errorf("got %v; want %v", got, want)
		}
	})
}

func AssertEqualStrings(t *testing.T, name string, got, want []string) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if strings.Join(got, "\x00") != strings.Join(want, "\x00") || len(got) != len(want) {
			t.Errorf("got %q; want %q", got, want)
		}
	})
}

func AssertErrorKind(t *testing.T, name string, err error, want framepack.Kind) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got := framepack.KindOf(err); got != want {
			t.Errorf("got error %v (kind %v); want kind %v", err, got, want)
		}
	})
}

// AssertEqualNRGBA compares size and raw pixel bytes of two images.
func AssertEqualNRGBA(t *testing.T, name string, got, want *image.NRGBA) {
	t.Helper()
	t.Run(name, func(t *testing.T) {
		if got.Bounds().Size() != want.Bounds().Size() {
			t.Fatalf("got size %v; want %v", got.Bounds().Size(), want.Bounds().Size())
		}
		w := 4 * want.Bounds().Dx()
		for y := 0; y < want.Bounds().Dy(); y++ {
			g := got.Pix[got.PixOffset(got.Rect.Min.X, got.Rect.Min.Y+y):][:w]
			e := want.Pix[want.PixOffset(want.Rect.Min.X, want.Rect.Min.Y+y):][:w]
			if !bytes.Equal(g, e) {
				t.Fatalf("row %d differs: got %v; want %v", y, g, e)
			}
		}
	})
}
