// Package imageprint prints images on a terminal.
//
// It is used for previewing frames and atlases without leaving the shell.
// Output quality depends heavily on the terminal; Mode24bit works almost
// everywhere, ModeRasTerm gives real pixels on kitty, iTerm2, WezTerm and
// sixel capable terminals.
package imageprint

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	ic "image/color"
	"image/png"
	"io"
	"os"

	"github.com/gookit/color"
)

// Mode selects how pixels reach the terminal.
type Mode int

const (
	Mode24bit Mode = iota
	Mode256Color
	ModeNoColor
	ModeITerm
	ModeRasTerm
)

// Printer writes images to W. Blanks prints colored blanks instead of ascii
// shading.
type Printer struct {
	W      io.Writer
	Mode   Mode
	Blanks bool
}

func (p Printer) out() io.Writer {
	if p.W == nil {
		return os.Stdout
	}
	return p.W
}

// Print draws img. name is only used by ModeITerm, which passes it on to the
// terminal.
func (p Printer) Print(img image.Image, name string) error {
	w := p.out()
	switch p.Mode {
	case Mode256Color:
		return printShaded(w, img, false, p.Blanks, false)
	case ModeNoColor:
		return printShaded(w, img, true, p.Blanks, true)
	case ModeITerm:
		return printITerm(w, img, name)
	case ModeRasTerm:
		return printRasTerm(w, img)
	default:
		return printShaded(w, img, true, p.Blanks, false)
	}
}

func shade(w io.Writer, col ic.Color, escapesTrueColor, blanks, noColor bool) {
	cR, cG, cB, cA := col.RGBA()
	if cA == 0 {
		if noColor {
			fmt.Fprint(w, "  ")
		} else {
			fmt.Fprint(w, "\x1b[0m  ")
		}
		return
	}

	cell := "  "
	if !blanks {
		a := ((cR + cG + cB) / 3) >> 8
		switch {
		case a < 32:
			cell = ".."
		case a < 64:
			cell = "--"
		case a < 128:
			cell = "=="
		default:
			cell = "##"
		}
	}

	r, g, b := uint8(cR>>8), uint8(cG>>8), uint8(cB>>8)
	switch {
	case noColor:
		fmt.Fprint(w, cell)
	case escapesTrueColor:
		fmt.Fprintf(w, "\x1b[48;2;%d;%d;%dm%s\x1b[0m", r, g, b, cell)
	default:
		fmt.Fprint(w, color.RGB(r, g, b, true).Sprint(cell))
	}
}

func printShaded(w io.Writer, i image.Image, trueColor, blanks, noColor bool) error {
	b := i.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			shade(w, i.At(x, y), trueColor, blanks, noColor)
		}
		if !noColor {
			fmt.Fprint(w, "\x1b[0m")
		}
		if _, err := fmt.Fprint(w, "\n"); err != nil {
			return err
		}
	}
	return nil
}

// printITerm draws an image using iTerm2's escape sequences.
//
// https://www.iterm2.com/documentation-images.html
func printITerm(w io.Writer, i image.Image, fn string) error {
	name := base64.StdEncoding.EncodeToString([]byte(fn))
	b := &bytes.Buffer{}
	bEnc := base64.NewEncoder(base64.StdEncoding, b)
	if err := png.Encode(bEnc, i); err != nil {
		return err
	}
	bEnc.Close()
	_, err := fmt.Fprintf(w, "\n\033]1337;File=name=%s;inline=1;size=%d,width=%dpx;height=%dpx:%s\a\n", name, b.Len(), i.Bounds().Size().X, i.Bounds().Size().Y, b.String())
	return err
}
