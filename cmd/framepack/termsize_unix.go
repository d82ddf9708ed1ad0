//go:build aix || darwin || dragonfly || freebsd || linux || netbsd || openbsd || solaris

package main

import (
	"bufio"
	"fmt"
	"os"
	"regexp"
	"strconv"

	"golang.org/x/crypto/ssh/terminal"
	"golang.org/x/sys/unix"
)

type termSize struct {
	Rows, Cols     uint
	XPixel, YPixel uint
}

var kittyPixelsRe = regexp.MustCompile(`\[4;(\d+);(\d+)t`)

// kittyPixels asks the terminal for its pixel size with CSI 14 t. kitty does
// not always fill in the pixel fields of TIOCGWINSZ.
//
// https://sw.kovidgoyal.net/kitty/graphics-protocol/#getting-the-window-size
func kittyPixels(tty *os.File) (w, h uint, ok bool) {
	state, err := terminal.MakeRaw(int(tty.Fd()))
	if err != nil {
		return 0, 0, false
	}
	defer terminal.Restore(int(tty.Fd()), state)

	fmt.Fprint(tty, "\033[14t")
	// TODO: read with a timeout; a terminal that never answers blocks here.
	s, err := bufio.NewReader(tty).ReadString('t')
	if err != nil {
		return 0, 0, false
	}
	m := kittyPixelsRe.FindStringSubmatch(s)
	if len(m) != 3 {
		return 0, 0, false
	}
	hh, errH := strconv.Atoi(m[1])
	ww, errW := strconv.Atoi(m[2])
	if errH != nil || errW != nil {
		return 0, 0, false
	}
	return uint(ww), uint(hh), true
}

func getTermSize() (termSize, error) {
	tty, err := os.OpenFile("/dev/tty", unix.O_NOCTTY|unix.O_CLOEXEC|unix.O_NDELAY|unix.O_RDWR, 0666)
	if err == nil {
		defer tty.Close()
		sz, err := unix.IoctlGetWinsize(int(tty.Fd()), unix.TIOCGWINSZ)
		if err == nil {
			ts := termSize{Rows: uint(sz.Row), Cols: uint(sz.Col), XPixel: uint(sz.Xpixel), YPixel: uint(sz.Ypixel)}
			if ts.XPixel == 0 && ts.YPixel == 0 && os.Getenv("TERM") == "xterm-kitty" {
				if w, h, ok := kittyPixels(tty); ok {
					ts.XPixel, ts.YPixel = w, h
				}
			}
			return ts, nil
		}
	}
	w, h, err := terminal.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return termSize{}, err
	}
	return termSize{Rows: uint(h), Cols: uint(w)}, nil
}
