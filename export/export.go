// Package export turns a packed atlas into its two artifacts, a PNG bitmap
// and a JSON descriptor, and hands them to a Sink.
//
// Either both artifacts are produced and delivered, or an error is returned
// and nothing is.
package export

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"strings"

	"github.com/golang/glog"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/atlas"
	"badc0de.net/pkg/framepack/frames"
)

// DefaultName is the base name used when the caller does not pick one.
const DefaultName = "frames"

// Artifacts are the encoded outputs of one export.
type Artifacts struct {
	ImageName      string
	Image          []byte
	DescriptorName string
	Descriptor     []byte
}

// Sink delivers artifacts somewhere: a directory, an upload, a download.
type Sink interface {
	Deliver(ctx context.Context, a *Artifacts) error
}

// CleanName trims name and checks that it can be used as a file base name.
func CleanName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", framepack.Errorf(framepack.InputError, "empty output name")
	}
	if strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", framepack.Errorf(framepack.InputError, "output name %q must not be a path", name)
	}
	return name, nil
}

// Export encodes img as PNG and desc as indented JSON. The descriptor's
// Meta.Image is set to base + ".png" in the output; desc itself is not
// modified.
func Export(img image.Image, desc *atlas.Descriptor, base string) (*Artifacts, error) {
	base, err := CleanName(base)
	if err != nil {
		return nil, err
	}
	if img == nil || desc == nil {
		return nil, framepack.Errorf(framepack.ExportError, "nothing to export")
	}

	pngBuf := &bytes.Buffer{}
	if err := png.Encode(pngBuf, img); err != nil {
		return nil, framepack.Wrapf(framepack.ExportError, err, "encoding %s%s", base, atlas.ImageExt)
	}

	descBytes, err := MarshalDescriptor(desc.WithImage(base))
	if err != nil {
		return nil, framepack.Wrapf(framepack.ExportError, err, "serializing %s%s", base, atlas.DescriptorExt)
	}

	return &Artifacts{
		ImageName:      base + atlas.ImageExt,
		Image:          pngBuf.Bytes(),
		DescriptorName: base + atlas.DescriptorExt,
		Descriptor:     descBytes,
	}, nil
}

// MarshalDescriptor serializes desc the way the descriptor file is written:
// two-space indentation, no HTML escaping, trailing newline.
func MarshalDescriptor(desc *atlas.Descriptor) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(desc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Sequence packs frs, exports the result under base and delivers it to sink.
// An empty sequence is an InputError and nothing is delivered.
func Sequence(ctx context.Context, frs []*frames.Frame, base string, sink Sink) (*Artifacts, error) {
	base, err := CleanName(base)
	if err != nil {
		return nil, err
	}
	img, desc, err := atlas.Pack(frs, base)
	if err != nil {
		return nil, err
	}
	a, err := Export(img, desc, base)
	if err != nil {
		return nil, err
	}
	if err := sink.Deliver(ctx, a); err != nil {
		if framepack.KindOf(err) == framepack.KindUnknown {
			err = framepack.Wrapf(framepack.ExportError, err, "delivering %s", base)
		}
		return nil, err
	}
	glog.Infof("exported %d frames as %s and %s", len(frs), a.ImageName, a.DescriptorName)
	return a, nil
}
