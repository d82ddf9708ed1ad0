package export

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/framepack"
)

// rename is swapped out by tests.
var rename = os.Rename

// DirSink writes artifacts into a directory. Both files are first written
// under temporary names and only renamed into place once both writes
// succeeded. On failure whatever was written is removed and files that
// were about to be replaced are restored.
type DirSink struct {
	Dir string
}

func (d DirSink) Deliver(ctx context.Context, a *Artifacts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := d.Dir
	if dir == "" {
		dir = "."
	}

	files := []struct {
		name string
		data []byte
	}{
		{a.ImageName, a.Image},
		{a.DescriptorName, a.Descriptor},
	}

	var temps []string
	cleanup := func() {
		for _, t := range temps {
			if t == "" {
				continue
			}
			if err := os.Remove(t); err != nil && !os.IsNotExist(err) {
				glog.Warningf("could not remove %s: %v", t, err)
			}
		}
	}

	for _, f := range files {
		tmp, err := os.CreateTemp(dir, "."+f.name+".*")
		if err != nil {
			cleanup()
			return framepack.Wrapf(framepack.ExportError, err, "creating temporary file for %s", f.name)
		}
		temps = append(temps, tmp.Name())
		_, werr := tmp.Write(f.data)
		cerr := tmp.Close()
		if werr == nil {
			werr = cerr
		}
		if werr != nil {
			cleanup()
			return framepack.Wrapf(framepack.ExportError, werr, "writing %s", f.name)
		}
	}

	if err := ctx.Err(); err != nil {
		cleanup()
		return err
	}

	// Existing artifacts are moved aside first so that a failed delivery can
	// put them back.
	dsts := make([]string, len(files))
	backups := make([]string, len(files))
	restore := func() {
		for i, b := range backups {
			if b == "" {
				continue
			}
			if err := rename(b, dsts[i]); err != nil {
				glog.Errorf("could not restore %s from %s: %v", dsts[i], b, err)
			}
		}
	}
	for i, f := range files {
		dsts[i] = filepath.Join(dir, f.name)
		fi, err := os.Lstat(dsts[i])
		if os.IsNotExist(err) {
			continue
		}
		if err == nil && fi.IsDir() {
			err = errors.Errorf("%s is a directory", dsts[i])
		}
		if err == nil {
			b := temps[i] + ".bak"
			if err = rename(dsts[i], b); err == nil {
				backups[i] = b
				continue
			}
		}
		restore()
		cleanup()
		return framepack.Wrapf(framepack.ExportError, err, "replacing %s", f.name)
	}

	for i, f := range files {
		if err := rename(temps[i], dsts[i]); err != nil {
			// Undo renames already done so that no lone artifact stays behind.
			for j := 0; j < i; j++ {
				os.Remove(dsts[j])
			}
			restore()
			cleanup()
			return framepack.Wrapf(framepack.ExportError, err, "renaming %s into place", f.name)
		}
		temps[i] = ""
	}
	for _, b := range backups {
		if b == "" {
			continue
		}
		if err := os.Remove(b); err != nil {
			glog.Warningf("could not remove %s: %v", b, err)
		}
	}
	glog.V(1).Infof("wrote %s and %s to %s", a.ImageName, a.DescriptorName, dir)
	return nil
}

// MemorySink keeps the last delivered artifacts in memory.
type MemorySink struct {
	mu   sync.Mutex
	last *Artifacts
}

func (m *MemorySink) Deliver(ctx context.Context, a *Artifacts) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.last = a
	return nil
}

// Last returns the most recently delivered artifacts, or nil.
func (m *MemorySink) Last() *Artifacts {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}
