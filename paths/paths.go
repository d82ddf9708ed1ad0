// Package paths turns command line arguments into raw source images.
//
// An argument may be a file, a directory (its image files are used, not
// recursively), a glob pattern, or an http(s) URL.
package paths

import (
	"context"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
)

var imageExts = map[string]bool{
	".png":  true,
	".gif":  true,
	".jpg":  true,
	".jpeg": true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// IsImageName reports whether name has an image file extension.
func IsImageName(name string) bool {
	return imageExts[strings.ToLower(filepath.Ext(name))]
}

// IsImageData reports whether data sniffs as an image.
func IsImageData(data []byte) bool {
	ct := http.DetectContentType(data)
	return strings.HasPrefix(ct, "image/") || IsTIFF(data)
}

// IsTIFF recognizes TIFF headers, which http.DetectContentType does not.
func IsTIFF(data []byte) bool {
	return len(data) >= 4 && (string(data[:4]) == "II*\x00" || string(data[:4]) == "MM\x00*")
}

func isURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Expand resolves args into a list of sources. Directory contents are
// listed in name order; only image files are taken from directories.
func Expand(args []string) ([]string, error) {
	var out []string
	for _, arg := range args {
		if isURL(arg) {
			out = append(out, arg)
			continue
		}
		fi, err := os.Stat(arg)
		if err == nil && fi.IsDir() {
			entries, err := os.ReadDir(arg)
			if err != nil {
				return nil, framepack.Wrapf(framepack.InputError, err, "listing %s", arg)
			}
			n := 0
			for _, e := range entries {
				if e.IsDir() || !IsImageName(e.Name()) {
					continue
				}
				out = append(out, filepath.Join(arg, e.Name()))
				n++
			}
			glog.V(1).Infof("paths.Expand(%q): %d image files", arg, n)
			continue
		}
		if err == nil {
			out = append(out, arg)
			continue
		}
		matches, gerr := filepath.Glob(arg)
		if gerr != nil || len(matches) == 0 {
			return nil, framepack.Wrapf(framepack.InputError, err, "no such file or pattern %q", arg)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	if len(out) == 0 {
		return nil, framepack.Errorf(framepack.InputError, "no image files found")
	}
	return out, nil
}

// Load reads every source. Sources that cannot be read, or that do not look
// like images, are reported as DecodeErrors and skipped. The display name of
// a raw image is the source's base name.
func Load(ctx context.Context, sources []string) ([]frames.RawImage, []error) {
	var raws []frames.RawImage
	var failed []error
	for _, src := range sources {
		if err := ctx.Err(); err != nil {
			failed = append(failed, err)
			break
		}
		var data []byte
		var err error
		if isURL(src) {
			data, err = fetch(ctx, src)
		} else {
			data, err = os.ReadFile(src)
			err = errors.Wrapf(err, "reading %s", src)
		}
		name := baseName(src)
		if err == nil && !IsImageData(data) {
			err = errors.Errorf("not an image (%s)", http.DetectContentType(data))
		}
		if err != nil {
			glog.Errorf("skipping %s: %v", src, err)
			failed = append(failed, framepack.Wrap(framepack.DecodeError, name, err))
			continue
		}
		raws = append(raws, frames.RawImage{Name: name, Data: data})
	}
	return raws, failed
}

func baseName(src string) string {
	if isURL(src) {
		s := src
		if i := strings.IndexAny(s, "?#"); i >= 0 {
			s = s[:i]
		}
		if i := strings.LastIndex(s, "/"); i >= 0 && i < len(s)-1 {
			return s[i+1:]
		}
		return s
	}
	return filepath.Base(src)
}
