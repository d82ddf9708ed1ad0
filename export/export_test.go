package export

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/atlas"
	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/ttesting"
)

func sequence(t *testing.T, names ...string) []*frames.Frame {
	t.Helper()
	raws := make([]frames.RawImage, len(names))
	for i, n := range names {
		raws[i] = frames.RawImage{Name: n, Data: ttesting.PNG(ttesting.Gradient(3+i, 2, uint8(i)))}
	}
	seq := frames.NewSequence(nil)
	if _, err := seq.AddFrames(context.Background(), raws); err != nil {
		t.Fatalf("AddFrames: %v", err)
	}
	return seq.Frames()
}

const wantDescriptor = `{
  "frames": [
    {
      "filename": "a1.png",
      "frame": {
        "h": 2,
        "w": 3,
        "x": 0,
        "y": 0
      },
      "scale": {
        "x": 1.0,
        "y": 1.0,
        "z": 1.0
      }
    }
  ],
  "meta": {
    "format": "RGBA8888",
    "image": "walk.png",
    "scale": "1",
    "size": {
      "h": 2,
      "w": 3
    },
    "version": "1.0"
  }
}
`

func TestExportDescriptorLayout(t *testing.T) {
	frs := sequence(t, "a1.png")
	img, desc, err := atlas.Pack(frs, "ignored")
	if err != nil {
		t.Fatalf("Pack: %v", err)
	}
	a, err := Export(img, desc, " walk ")
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if a.ImageName != "walk.png" || a.DescriptorName != "walk.json" {
		t.Errorf("got names %q, %q", a.ImageName, a.DescriptorName)
	}
	if string(a.Descriptor) != wantDescriptor {
		t.Errorf("descriptor:\n%s\nwant:\n%s", a.Descriptor, wantDescriptor)
	}
	if desc.Meta.Image != "ignored.png" {
		t.Errorf("Export modified the passed descriptor: %q", desc.Meta.Image)
	}

	decoded, err := png.Decode(bytes.NewReader(a.Image))
	if err != nil {
		t.Fatalf("decoding exported png: %v", err)
	}
	if decoded.Bounds().Size() != image.Pt(3, 2) {
		t.Errorf("png size %v", decoded.Bounds().Size())
	}
}

func TestExportBadName(t *testing.T) {
	frs := sequence(t, "a1.png")
	img, desc, _ := atlas.Pack(frs, "x")
	for _, name := range []string{"", "   ", "a/b", `a\b`, ".."} {
		_, err := Export(img, desc, name)
		ttesting.AssertErrorKind(t, "name "+name, err, framepack.InputError)
	}
}

func TestSequenceEmpty(t *testing.T) {
	sink := &MemorySink{}
	a, err := Sequence(context.Background(), nil, "empty", sink)
	ttesting.AssertErrorKind(t, "kind", err, framepack.InputError)
	if a != nil || sink.Last() != nil {
		t.Errorf("empty export produced artifacts")
	}
}

func TestSequenceToDir(t *testing.T) {
	dir := t.TempDir()
	frs := sequence(t, "walk2.png", "walk10.png", "walk1.png")
	a, err := Sequence(context.Background(), frs, "walk", DirSink{Dir: dir})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}

	gotPNG, err := os.ReadFile(filepath.Join(dir, "walk.png"))
	if err != nil {
		t.Fatalf("reading png: %v", err)
	}
	if !bytes.Equal(gotPNG, a.Image) {
		t.Errorf("png on disk differs from artifact")
	}
	gotJSON, err := os.ReadFile(filepath.Join(dir, "walk.json"))
	if err != nil {
		t.Fatalf("reading json: %v", err)
	}
	if !bytes.Equal(gotJSON, a.Descriptor) {
		t.Errorf("json on disk differs from artifact")
	}

	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "no temp files left", len(entries), 2)
}

type failingSink struct{}

func (failingSink) Deliver(ctx context.Context, a *Artifacts) error {
	return errors.New("disk full")
}

func TestSequenceSinkFailure(t *testing.T) {
	_, err := Sequence(context.Background(), sequence(t, "a.png"), "a", failingSink{})
	ttesting.AssertErrorKind(t, "kind", err, framepack.ExportError)
}

func TestDirSinkMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "does", "not", "exist")
	_, err := Sequence(context.Background(), sequence(t, "a.png"), "a", DirSink{Dir: dir})
	ttesting.AssertErrorKind(t, "kind", err, framepack.ExportError)
}

func TestDirSinkLeavesNothingOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	// A directory where the descriptor should go makes its rename fail.
	if err := os.Mkdir(filepath.Join(dir, "a.json"), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "a.json", "keep"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := Sequence(context.Background(), sequence(t, "a.png"), "a", DirSink{Dir: dir})
	ttesting.AssertErrorKind(t, "kind", err, framepack.ExportError)

	if _, err := os.Stat(filepath.Join(dir, "a.png")); !os.IsNotExist(err) {
		t.Errorf("a.png should not exist after a failed export, stat: %v", err)
	}
	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "only the blocking directory remains", len(entries), 1)
}

func writeOld(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for n, content := range files {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func assertContent(t *testing.T, path, want string) {
	t.Helper()
	got, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if string(got) != want {
		t.Errorf("%s: got %q; want %q", path, got, want)
	}
}

func TestDirSinkReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	writeOld(t, dir, map[string]string{"walk.png": "old png", "walk.json": "old json"})

	a, err := Sequence(context.Background(), sequence(t, "a.png"), "walk", DirSink{Dir: dir})
	if err != nil {
		t.Fatalf("Sequence: %v", err)
	}
	assertContent(t, filepath.Join(dir, "walk.png"), string(a.Image))
	assertContent(t, filepath.Join(dir, "walk.json"), string(a.Descriptor))

	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "no backups left", len(entries), 2)
}

func TestDirSinkKeepsExistingWhenDescriptorBlocked(t *testing.T) {
	dir := t.TempDir()
	writeOld(t, dir, map[string]string{"walk.png": "old png"})
	if err := os.Mkdir(filepath.Join(dir, "walk.json"), 0755); err != nil {
		t.Fatal(err)
	}
	writeOld(t, dir, map[string]string{filepath.Join("walk.json", "keep"): "x"})

	_, err := Sequence(context.Background(), sequence(t, "a.png"), "walk", DirSink{Dir: dir})
	ttesting.AssertErrorKind(t, "kind", err, framepack.ExportError)

	assertContent(t, filepath.Join(dir, "walk.png"), "old png")
	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "nothing added", len(entries), 2)
}

func TestDirSinkRestoresExistingOnRenameFailure(t *testing.T) {
	dir := t.TempDir()
	writeOld(t, dir, map[string]string{"walk.png": "old png", "walk.json": "old json"})

	defer func(orig func(string, string) error) { rename = orig }(rename)
	rename = func(from, to string) error {
		// Moving the new descriptor into place fails; backups and
		// restores go through.
		if filepath.Base(to) == "walk.json" && !strings.HasSuffix(from, ".bak") {
			return errors.New("injected rename failure")
		}
		return os.Rename(from, to)
	}

	_, err := Sequence(context.Background(), sequence(t, "a.png"), "walk", DirSink{Dir: dir})
	ttesting.AssertErrorKind(t, "kind", err, framepack.ExportError)

	assertContent(t, filepath.Join(dir, "walk.png"), "old png")
	assertContent(t, filepath.Join(dir, "walk.json"), "old json")
	entries, _ := os.ReadDir(dir)
	ttesting.AssertEqualInt(t, "no temp files left", len(entries), 2)
}
