package atlas

import (
	"context"
	"encoding/json"
	"image"
	"image/color"
	"testing"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/ttesting"
)

// sequenceOf builds a sequence whose frames are exactly the passed images, in
// order. Names are "f0", "f1", ... which keeps natural order equal to input
// order.
func sequenceOf(t *testing.T, imgs ...image.Image) *frames.Sequence {
	t.Helper()
	byName := map[string]image.Image{}
	raws := make([]frames.RawImage, len(imgs))
	for i, img := range imgs {
		raws[i].Name = "f" + string(rune('0'+i))
		byName[raws[i].Name] = img
	}
	seq := frames.NewSequence(frames.DecoderFunc(func(ctx context.Context, raw frames.RawImage) (image.Image, error) {
		return byName[raw.Name], nil
	}))
	if _, err := seq.AddFrames(context.Background(), raws); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}
	return seq
}

func TestPackLayout(t *testing.T) {
	seq := sequenceOf(t,
		ttesting.Gradient(3, 5, 1),
		ttesting.Gradient(4, 2, 2),
		ttesting.Gradient(1, 7, 3),
	)
	img, desc, err := Pack(seq.Frames(), "walk")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}

	ttesting.AssertEqualInt(t, "atlas width", img.Bounds().Dx(), 8)
	ttesting.AssertEqualInt(t, "atlas height", img.Bounds().Dy(), 7)
	ttesting.AssertEqualInt(t, "meta width", desc.Meta.Size.W, 8)
	ttesting.AssertEqualInt(t, "meta height", desc.Meta.Size.H, 7)

	wantX := []int{0, 3, 7}
	for i, fr := range desc.Frames {
		ttesting.AssertEqualInt(t, fr.Filename+" x", fr.Frame.X, wantX[i])
		ttesting.AssertEqualInt(t, fr.Filename+" y", fr.Frame.Y, 0)
		if fr.Scale != UnitScale {
			t.Errorf("%s: scale %v; want %v", fr.Filename, fr.Scale, UnitScale)
		}
	}
	if err := desc.Validate(); err != nil {
		t.Errorf("Validate: %v", err)
	}
	if desc.Meta.Image != "walk.png" || desc.Meta.Format != "RGBA8888" || desc.Meta.Scale != "1" || desc.Meta.Version != "1.0" {
		t.Errorf("unexpected meta %+v", desc.Meta)
	}
}

func TestPackRoundTrip(t *testing.T) {
	seq := sequenceOf(t,
		ttesting.Gradient(6, 4, 10),
		ttesting.Gradient(2, 9, 20),
		ttesting.Gradient(5, 1, 30),
		ttesting.Gradient(3, 3, 40),
	)
	img, desc, err := Pack(seq.Frames(), "x")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	for i, fr := range desc.Frames {
		ttesting.AssertEqualNRGBA(t, fr.Filename, Slice(img, fr.Frame), seq.At(i).Image())
	}
}

func TestPackLeavesGapsTransparent(t *testing.T) {
	short := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	short.SetNRGBA(0, 0, color.NRGBA{255, 0, 0, 255})
	short.SetNRGBA(1, 0, color.NRGBA{255, 0, 0, 255})
	tall := image.NewNRGBA(image.Rect(0, 0, 1, 3))
	for y := 0; y < 3; y++ {
		tall.SetNRGBA(0, y, color.NRGBA{0, 255, 0, 255})
	}
	img, _, err := Pack(sequenceOf(t, short, tall).Frames(), "gap")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	for y := 1; y < 3; y++ {
		for x := 0; x < 2; x++ {
			if c := img.NRGBAAt(x, y); c != (color.NRGBA{}) {
				t.Errorf("pixel %d,%d = %v; want transparent", x, y, c)
			}
		}
	}
}

func TestPackDeterministic(t *testing.T) {
	seq := sequenceOf(t, ttesting.Gradient(3, 3, 1), ttesting.Gradient(2, 5, 2))
	img1, desc1, _ := Pack(seq.Frames(), "a")
	img2, desc2, _ := Pack(seq.Frames(), "a")
	ttesting.AssertEqualNRGBA(t, "pixels", img1, img2)
	j1, _ := json.Marshal(desc1)
	j2, _ := json.Marshal(desc2)
	if string(j1) != string(j2) {
		t.Errorf("descriptors differ:\n%s\n%s", j1, j2)
	}
}

func TestPackErrors(t *testing.T) {
	_, _, err := Pack(nil, "empty")
	ttesting.AssertErrorKind(t, "empty", err, framepack.InputError)

	seq := sequenceOf(t, ttesting.Gradient(2, 2, 1), image.NewNRGBA(image.Rect(0, 0, 0, 4)))
	_, _, err = Pack(seq.Frames(), "zero")
	ttesting.AssertErrorKind(t, "zero width", err, framepack.PackError)
}

func TestValidateRejectsBrokenLayout(t *testing.T) {
	seq := sequenceOf(t, ttesting.Gradient(2, 2, 1), ttesting.Gradient(3, 1, 2))
	_, desc, err := Pack(seq.Frames(), "v")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	desc.Frames[1].Frame.X++
	ttesting.AssertErrorKind(t, "gap between frames", desc.Validate(), framepack.PackError)
}

func TestFactorJSON(t *testing.T) {
	for _, tc := range []struct {
		f    Factor
		want string
	}{
		{1, "1.0"},
		{0.5, "0.5"},
		{2, "2.0"},
	} {
		b, err := json.Marshal(tc.f)
		if err != nil {
			t.Fatalf("Marshal(%v): %v", tc.f, err)
		}
		if string(b) != tc.want {
			t.Errorf("Marshal(%v) = %s; want %s", float64(tc.f), b, tc.want)
		}
	}
}

func TestWithImage(t *testing.T) {
	d := &Descriptor{Meta: Meta{Image: "a.png"}}
	c := d.WithImage("b")
	if c.Meta.Image != "b.png" || d.Meta.Image != "a.png" {
		t.Errorf("got %q and %q", c.Meta.Image, d.Meta.Image)
	}
}
