package imageprint

import (
	"bytes"
	"image"
	"image/color"
	"strings"
	"testing"
)

func testImage() image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(1, 0, color.NRGBA{10, 10, 10, 255})
	img.SetNRGBA(0, 1, color.NRGBA{100, 100, 100, 255})
	return img
}

func TestPrintNoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	if err := (Printer{W: buf, Mode: ModeNoColor}).Print(testImage(), "x.png"); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "##..\n==  \n"
	if buf.String() != want {
		t.Errorf("got %q; want %q", buf.String(), want)
	}
}

func TestPrint24bit(t *testing.T) {
	buf := &bytes.Buffer{}
	(Printer{W: buf, Mode: Mode24bit, Blanks: true}).Print(testImage(), "x.png")
	if !strings.Contains(buf.String(), "\x1b[48;2;255;255;255m  ") {
		t.Errorf("missing white cell in %q", buf.String())
	}
	if strings.Count(buf.String(), "\n") != 2 {
		t.Errorf("want 2 lines, got %q", buf.String())
	}
}

func TestPrintITerm(t *testing.T) {
	buf := &bytes.Buffer{}
	(Printer{W: buf, Mode: ModeITerm}).Print(testImage(), "x.png")
	if !strings.Contains(buf.String(), "\033]1337;File=name=eC5wbmc=;inline=1;") {
		t.Errorf("unexpected output %q", buf.String())
	}
}
