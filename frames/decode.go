package frames

import (
	"bytes"
	"context"
	"image"
	"runtime"

	// Formats understood by StandardDecoder.
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/golang/glog"
	"golang.org/x/sync/errgroup"

	"badc0de.net/pkg/framepack"
)

// Decoder turns a raw source image into pixels. It is supplied by the host;
// implementations must be safe for concurrent use.
type Decoder interface {
	Decode(ctx context.Context, raw RawImage) (image.Image, error)
}

// DecoderFunc adapts a function to the Decoder interface.
type DecoderFunc func(ctx context.Context, raw RawImage) (image.Image, error)

func (f DecoderFunc) Decode(ctx context.Context, raw RawImage) (image.Image, error) {
	return f(ctx, raw)
}

// StandardDecoder decodes anything registered with the image package: PNG,
// GIF (first frame), JPEG, BMP, TIFF and WebP.
var StandardDecoder Decoder = DecoderFunc(decodeStandard)

func decodeStandard(ctx context.Context, raw RawImage) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img, format, err := image.Decode(bytes.NewReader(raw.Data))
	if err != nil {
		return nil, err
	}
	glog.V(2).Infof("decoded %q as %s, %v", raw.Name, format, img.Bounds().Size())
	return img, nil
}

type decodeResult struct {
	img image.Image
	err error
}

// decodeAll decodes every raw image concurrently and returns once all of them
// are done. results[i] belongs to raws[i].
func decodeAll(ctx context.Context, dec Decoder, raws []RawImage) ([]decodeResult, error) {
	results := make([]decodeResult, len(raws))

	var g errgroup.Group
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range raws {
		i := i
		g.Go(func() error {
			img, err := dec.Decode(ctx, raws[i])
			if err == nil && img == nil {
				err = framepack.Errorf(framepack.DecodeError, "decoder returned no image")
			}
			results[i] = decodeResult{img: img, err: err}
			return nil
		})
	}
	g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
