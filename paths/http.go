package paths

import (
	"context"
	"io"
	"net/http"
	"os"

	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// maxFetchSize bounds how much of a remote image is read.
const maxFetchSize = 64 << 20

// Client is used for http(s) sources.
var Client = http.DefaultClient

func fetch(ctx context.Context, url string) ([]byte, error) {
	glog.V(1).Infof("paths/http.go: fetching %q", url)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.fetch(%q): bad request", url)
	}
	response, err := Client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(err, "paths.fetch(%q): failed to open", url)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		e := os.ErrInvalid
		if response.StatusCode == http.StatusNotFound {
			e = os.ErrNotExist
		}
		return nil, errors.Wrapf(e, "paths.fetch(%q): http response.StatusCode=%v, want 200", url, response.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxFetchSize+1))
	if err != nil {
		return nil, errors.Wrapf(err, "paths.fetch(%q): reading body", url)
	}
	if len(data) > maxFetchSize {
		return nil, errors.Errorf("paths.fetch(%q): larger than %d bytes", url, maxFetchSize)
	}
	return data, nil
}
