// Command framepack packs a sequence of images into a sprite-sheet atlas and
// a JSON descriptor, and previews the sequence as an animation.
//
//	framepack [flags] <file|dir|glob|http(s)-url>...
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"badc0de.net/pkg/flagutil/v1"
	"github.com/common-nighthawk/go-figure"
	"github.com/golang/glog"
	"github.com/gorilla/mux"

	_ "golang.org/x/net/trace"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/export"
	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/paths"
	"badc0de.net/pkg/framepack/playback"
	"badc0de.net/pkg/framepack/web"
)

var (
	outDir = flag.String("out_dir", ".", "directory receiving the atlas and descriptor; empty to skip export")
	name   = flag.String("name", export.DefaultName, "base name of the exported files")

	preview       = flag.Bool("preview", false, "whether to play the sequence on the terminal")
	previewFrames = flag.Int("preview_frames", 0, "frames to show in terminal preview; 0 plays through once")
	fps           = flag.Int("fps", playback.DefaultFPS, "playback rate in frames per second")
	loop          = flag.Bool("loop", true, "whether playback wraps around at the end")
	background    = playback.Checkerboard

	gifPath      = flag.String("gif", "", "if set, write the preview as an animated gif here")
	gifQuantizer = flag.String("gif_quantizer", "gogif", "gif palette quantizer: gogif or mediancut")

	serve  = flag.String("serve", "", "if set, serve the web preview on this address")
	banner = flag.Bool("banner", false, "whether to print a banner on start")

	edits editList
)

func init() {
	flag.Var(&background, "background", "preview background: checkerboard, white, black, gray or transparent")
	flag.Var(editFlag{&edits, opMove}, "move", "move frame from:to after loading; repeatable")
	flag.Var(editFlag{&edits, opRemove}, "remove", "remove frame at index after loading; repeatable")
}

type editOp int

const (
	opMove editOp = iota
	opRemove
)

type edit struct {
	op       editOp
	from, to int
}

type editList []edit

// editFlag appends to a shared list so that moves and removes apply in
// command line order.
type editFlag struct {
	list *editList
	op   editOp
}

func (f editFlag) String() string {
	if f.list == nil {
		return ""
	}
	var s []string
	for _, e := range *f.list {
		if e.op != f.op {
			continue
		}
		if e.op == opMove {
			s = append(s, fmt.Sprintf("%d:%d", e.from, e.to))
		} else {
			s = append(s, strconv.Itoa(e.from))
		}
	}
	return strings.Join(s, ",")
}

func (f editFlag) Set(v string) error {
	if f.op == opRemove {
		i, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("remove: %q is not an index", v)
		}
		*f.list = append(*f.list, edit{op: opRemove, from: i})
		return nil
	}
	parts := strings.SplitN(v, ":", 2)
	if len(parts) != 2 {
		return fmt.Errorf("move: want from:to, got %q", v)
	}
	from, err1 := strconv.Atoi(parts[0])
	to, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return fmt.Errorf("move: want from:to, got %q", v)
	}
	*f.list = append(*f.list, edit{op: opMove, from: from, to: to})
	return nil
}

func applyEdits(seq *frames.Sequence, list editList) error {
	for _, e := range list {
		var err error
		if e.op == opMove {
			err = seq.MoveFrame(e.from, e.to)
		} else {
			err = seq.RemoveFrame(e.from)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func load(ctx context.Context, args []string) (*frames.Sequence, error) {
	sources, err := paths.Expand(args)
	if err != nil {
		return nil, err
	}
	raws, failed := paths.Load(ctx, sources)
	seq := frames.NewSequence(nil)
	if len(raws) > 0 {
		res, err := seq.AddFrames(ctx, raws)
		if res != nil {
			failed = append(failed, res.Failed...)
		}
		if err != nil {
			return nil, err
		}
	}
	for _, err := range failed {
		glog.Warningf("not added: %v", err)
	}
	if seq.Len() == 0 {
		return nil, framepack.Errorf(framepack.InputError, "none of %d sources could be loaded", len(sources))
	}
	glog.Infof("loaded %d frames, %d failed", seq.Len(), len(failed))
	return seq, applyEdits(seq, edits)
}

func config() playback.Config {
	return playback.Config{FPS: *fps, Looping: *loop, Background: background}
}

func writeGIF(frs []*frames.Frame) error {
	pal, err := playback.ParsePalettizer(*gifQuantizer)
	if err != nil {
		return err
	}
	f, err := os.Create(*gifPath)
	if err != nil {
		return err
	}
	if err := playback.EncodeGIF(f, frs, config(), pal); err != nil {
		f.Close()
		return err
	}
	glog.Infof("wrote %s", *gifPath)
	return f.Close()
}

func serveWeb(frs []*frames.Frame) error {
	pal, err := playback.ParsePalettizer(*gifQuantizer)
	if err != nil {
		return err
	}
	sim, err := playback.New(frs, config(), nil)
	if err != nil {
		return err
	}
	defer sim.Close()
	h, err := web.NewHandler(frs, *name, config(), pal, sim)
	if err != nil {
		return err
	}

	r := mux.NewRouter()
	h.RegisterRoutes(r)
	// x/net/trace registers /debug/requests and /debug/events here.
	r.PathPrefix("/debug/").Handler(http.DefaultServeMux)

	glog.Infof("serving preview on %s", *serve)
	return http.ListenAndServe(*serve, web.Wrap(r, os.Stderr))
}

func main() {
	flagutil.Parse()
	flag.Set("logtostderr", "true")

	if *banner {
		figure.NewFigure("framepack", "", true).Print()
	}
	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "usage: %s [flags] <file|dir|glob|url>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	seq, err := load(ctx, flag.Args())
	if err != nil {
		glog.Exitf("loading frames: %v", err)
	}
	frs := seq.Frames()

	if *outDir != "" {
		a, err := export.Sequence(ctx, frs, *name, export.DirSink{Dir: *outDir})
		if err != nil {
			glog.Exitf("export: %v", err)
		}
		fmt.Printf("%s\n%s\n", a.ImageName, a.DescriptorName)
	}
	if *gifPath != "" {
		if err := writeGIF(frs); err != nil {
			glog.Exitf("gif: %v", err)
		}
	}
	if *preview {
		if err := previewTerminal(ctx, frs); err != nil {
			glog.Exitf("preview: %v", err)
		}
	}
	if *serve != "" {
		glog.Fatal(serveWeb(frs))
	}
}
