package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"os"
	"time"

	"github.com/golang/glog"
	"github.com/nfnt/resize"

	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/imageprint"
	"badc0de.net/pkg/framepack/playback"
)

var (
	col      = flag.Bool("col", true, "whether to use color at all")
	col256   = flag.Bool("col256", false, "whether to use 256 col instead of 24 bit")
	iterm    = flag.Bool("iterm", false, "whether to print with iterm escape code instead of 24 bit")
	rasterm  = flag.Bool("rasterm", false, "whether to print with the rasterm library (kitty, iterm, sixel)")
	blanks   = flag.Bool("blanks", true, "whether to just use colored blanks instead of some bad ascii art")
	downsize = flag.Bool("downsize", true, "whether to shrink frames to fit the terminal")
)

func printer() imageprint.Printer {
	p := imageprint.Printer{W: os.Stdout, Blanks: *blanks}
	switch {
	case *rasterm:
		p.Mode = imageprint.ModeRasTerm
	case !*col:
		p.Mode = imageprint.ModeNoColor
	case *iterm:
		p.Mode = imageprint.ModeITerm
	case *col256:
		p.Mode = imageprint.Mode256Color
	default:
		p.Mode = imageprint.Mode24bit
	}
	return p
}

func fit(img image.Image) image.Image {
	if !*downsize {
		return img
	}
	termSize, err := getTermSize()
	if err != nil {
		glog.V(1).Infof("terminal size unknown: %v", err)
		return img
	}
	if termSize.XPixel != 0 && termSize.YPixel != 0 && (*rasterm || *iterm) {
		// Real pixels are available, so fit to the pixel size.
		return resize.Thumbnail(termSize.XPixel/2, termSize.YPixel/2, img, resize.Lanczos3)
	}
	// One pixel takes two columns; keep two rows for the status line.
	rows := termSize.Rows
	if rows > 2 {
		rows -= 2
	}
	return resize.Thumbnail(termSize.Cols/2, rows, img, resize.Lanczos3)
}

func out(img image.Image, name string) {
	if err := printer().Print(fit(img), name); err != nil {
		glog.Errorf("printing %s: %v", name, err)
	}
}

// notifyScheduler runs timers on a TickerScheduler and signals after every
// callback, so that the terminal redraws after each advance.
type notifyScheduler struct {
	playback.TickerScheduler
	ch chan struct{}
}

func (s notifyScheduler) Every(period time.Duration, fn func()) func() {
	return s.TickerScheduler.Every(period, func() {
		fn()
		select {
		case s.ch <- struct{}{}:
		default:
		}
	})
}

// previewTerminal plays frs on stdout until playback stops, the frame budget
// runs out, or ctx is done.
func previewTerminal(ctx context.Context, frs []*frames.Frame) error {
	sched := notifyScheduler{ch: make(chan struct{}, 1)}
	sim, err := playback.New(frs, config(), sched)
	if err != nil {
		return err
	}
	defer sim.Close()

	budget := *previewFrames
	if budget <= 0 {
		budget = len(frs)
	}
	draw := func() {
		fmt.Print("\x1b[H\x1b[2J")
		st := sim.State()
		out(sim.Render(), sim.Current().Name())
		fmt.Printf("%d/%d %s @ %d fps\n", st.CurrentIndex+1, st.Length, sim.Current().Name(), st.FPS)
	}

	draw()
	if budget == 1 {
		return nil
	}
	if err := sim.Play(); err != nil {
		return err
	}
	for shown := 1; shown < budget; shown++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-sched.ch:
		}
		draw()
		if !sim.State().Playing {
			break
		}
	}
	return nil
}
