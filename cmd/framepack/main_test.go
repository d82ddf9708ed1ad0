package main

import (
	"context"
	"image"
	"os"
	"path/filepath"
	"testing"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/ttesting"
)

func TestEditFlags(t *testing.T) {
	var list editList
	move := editFlag{&list, opMove}
	remove := editFlag{&list, opRemove}

	for _, step := range []struct {
		f editFlag
		v string
	}{{move, "3:0"}, {remove, "1"}, {move, "0:2"}} {
		if err := step.f.Set(step.v); err != nil {
			t.Fatalf("Set(%q): %v", step.v, err)
		}
	}
	ttesting.AssertEqualInt(t, "edits", len(list), 3)
	if got := move.String(); got != "3:0,0:2" {
		t.Errorf("move.String() = %q", got)
	}
	if got := remove.String(); got != "1" {
		t.Errorf("remove.String() = %q", got)
	}

	for _, bad := range []string{"", "1", "a:b", "1:"} {
		if err := move.Set(bad); err == nil {
			t.Errorf("move.Set(%q) succeeded", bad)
		}
	}
	if err := remove.Set("x"); err == nil {
		t.Errorf("remove.Set(x) succeeded")
	}
}

func TestApplyEdits(t *testing.T) {
	seq := frames.NewSequence(frames.DecoderFunc(func(ctx context.Context, raw frames.RawImage) (image.Image, error) {
		return ttesting.Gradient(1, 1, 0), nil
	}))
	var raws []frames.RawImage
	for _, n := range []string{"a1", "a2", "a3", "a4"} {
		raws = append(raws, frames.RawImage{Name: n})
	}
	if _, err := seq.AddFrames(context.Background(), raws); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}

	list := editList{{op: opMove, from: 3, to: 0}, {op: opRemove, from: 1}}
	if err := applyEdits(seq, list); err != nil {
		t.Fatalf("applyEdits: %v", err)
	}
	ttesting.AssertEqualStrings(t, "names", seq.Names(), []string{"a4", "a2", "a3"})

	err := applyEdits(seq, editList{{op: opRemove, from: 7}})
	ttesting.AssertErrorKind(t, "out of range", err, framepack.InputError)
}

func TestLoadNothingUsable(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"walk1.png", "walk2.png"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte("not an image"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	_, err := load(context.Background(), []string{dir})
	ttesting.AssertErrorKind(t, "nothing loaded", err, framepack.InputError)
}
