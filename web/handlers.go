// Package web serves a browser preview of a frame sequence: the frames, the
// packed atlas and a playback session driven over HTTP.
//
// Nothing here writes artifacts anywhere; /atlas.png and /atlas.json return
// the same bytes an export would, for inspection only.
package web

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image/png"
	"io"
	"net/http"
	"os"
	"strconv"
	"sync"

	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/vincent-petithory/dataurl"
	"golang.org/x/net/trace"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/atlas"
	"badc0de.net/pkg/framepack/export"
	"badc0de.net/pkg/framepack/frames"
	"badc0de.net/pkg/framepack/playback"
)

// generation is part of every ETag; bump if the way images are produced
// changes.
const generation = 1

type Handler struct {
	frames []*frames.Frame
	name   string
	cfg    playback.Config
	pal    playback.Palettizer
	sim    *playback.Simulator
	etag   string

	atlasOnce sync.Once
	atlasImg  []byte
	atlasJSON []byte
	atlasErr  error
}

// NewHandler constructs a preview handler for a snapshot of frs. sim drives
// the /preview routes and must be built from the same frames. name is the
// export base name shown in /atlas.json.
func NewHandler(frs []*frames.Frame, name string, cfg playback.Config, pal playback.Palettizer, sim *playback.Simulator) (*Handler, error) {
	if len(frs) == 0 {
		return nil, framepack.Errorf(framepack.InputError, "nothing to serve")
	}
	if sim == nil {
		return nil, framepack.Errorf(framepack.InputError, "no playback session to serve")
	}
	name, err := export.CleanName(name)
	if err != nil {
		return nil, err
	}
	if pal == nil {
		pal = playback.MedianCut{NumColor: 255}
	}
	snap := make([]*frames.Frame, len(frs))
	copy(snap, frs)

	ids := make([]byte, 0, len(snap)*16)
	for _, f := range snap {
		id := f.ID()
		ids = append(ids, id[:]...)
	}
	sig := uuid.NewSHA1(uuid.NameSpaceOID, ids)

	return &Handler{
		frames: snap,
		name:   name,
		cfg:    cfg,
		pal:    pal,
		sim:    sim,
		etag:   fmt.Sprintf("%d:%s", generation, sig),
	}, nil
}

// RegisterRoutes adds the preview routes to r.
func (h *Handler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/frames", h.framesHandler).Methods(http.MethodGet)
	r.HandleFunc("/frame/{idx:[0-9]+}.png", h.frameHandler).Methods(http.MethodGet)
	r.HandleFunc("/atlas.png", h.atlasImageHandler).Methods(http.MethodGet)
	r.HandleFunc("/atlas.json", h.atlasDescriptorHandler).Methods(http.MethodGet)
	r.HandleFunc("/preview.gif", h.gifHandler).Methods(http.MethodGet)
	r.HandleFunc("/preview/state", h.stateHandler).Methods(http.MethodGet)
	r.HandleFunc("/preview/{op:play|pause|stop|tick}", h.controlHandler).Methods(http.MethodPost)
	r.HandleFunc("/preview/seek", h.seekHandler).Methods(http.MethodPost)
	r.HandleFunc("/preview/fps", h.fpsHandler).Methods(http.MethodPost)
	r.HandleFunc("/preview/loop", h.loopHandler).Methods(http.MethodPost)
}

// Wrap adds request tracing, compression and access logging to next. Access
// logs go to logw, or to stderr if it is nil.
func Wrap(next http.Handler, logw io.Writer) http.Handler {
	if logw == nil {
		logw = os.Stderr
	}
	traced := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tr := trace.New("framepack.web", r.Method+" "+r.URL.Path)
		defer tr.Finish()
		next.ServeHTTP(w, r)
	})
	return handlers.LoggingHandler(logw, handlers.CompressHandler(traced))
}

// notModified sets caching headers and reports whether the client already
// has the resource tagged etag.
func notModified(w http.ResponseWriter, r *http.Request, etag string) bool {
	w.Header().Set("Cache-Control", "public; max-age=3600")
	w.Header().Set("ETag", etag)
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return true
	}
	return false
}

// httpError maps error kinds to status codes.
func httpError(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	switch {
	case err == playback.ErrClosed:
		code = http.StatusGone
	case framepack.IsKind(err, framepack.InputError):
		code = http.StatusBadRequest
	}
	glog.V(2).Infof("web: %v", err)
	http.Error(w, err.Error(), code)
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		glog.Errorf("web: encoding response: %v", err)
	}
}

type frameInfo struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
	Name  string `json:"name"`
	W     int    `json:"w"`
	H     int    `json:"h"`
}

func (h *Handler) framesHandler(w http.ResponseWriter, r *http.Request) {
	out := make([]frameInfo, len(h.frames))
	for i, f := range h.frames {
		sz := f.Size()
		out[i] = frameInfo{Index: i, ID: f.ID().String(), Name: f.Name(), W: sz.X, H: sz.Y}
	}
	writeJSON(w, out)
}

func (h *Handler) frameHandler(w http.ResponseWriter, r *http.Request) {
	idx, err := strconv.Atoi(mux.Vars(r)["idx"])
	if err != nil || idx < 0 || idx >= len(h.frames) {
		http.Error(w, "no such frame", http.StatusNotFound)
		return
	}
	f := h.frames[idx]
	if notModified(w, r, fmt.Sprintf(`W/"frame:%d:%s:image/png"`, generation, f.ID())) {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	if err := png.Encode(w, f.Image()); err != nil {
		glog.Errorf("web: encoding frame %d: %v", idx, err)
	}
}

// packAtlas packs and encodes the atlas once per handler.
func (h *Handler) packAtlas() ([]byte, []byte, error) {
	h.atlasOnce.Do(func() {
		img, desc, err := atlas.Pack(h.frames, h.name)
		if err != nil {
			h.atlasErr = err
			return
		}
		a, err := export.Export(img, desc, h.name)
		if err != nil {
			h.atlasErr = err
			return
		}
		h.atlasImg, h.atlasJSON = a.Image, a.Descriptor
	})
	return h.atlasImg, h.atlasJSON, h.atlasErr
}

func (h *Handler) atlasImageHandler(w http.ResponseWriter, r *http.Request) {
	img, _, err := h.packAtlas()
	if err != nil {
		httpError(w, err)
		return
	}
	if notModified(w, r, fmt.Sprintf(`W/"atlas:%s:image/png"`, h.etag)) {
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(img)
}

func (h *Handler) atlasDescriptorHandler(w http.ResponseWriter, r *http.Request) {
	_, desc, err := h.packAtlas()
	if err != nil {
		httpError(w, err)
		return
	}
	if notModified(w, r, fmt.Sprintf(`W/"atlas:%s:application/json"`, h.etag)) {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(desc)
}

func (h *Handler) gifHandler(w http.ResponseWriter, r *http.Request) {
	cfg := h.cfg
	st := h.sim.State()
	cfg.FPS, cfg.Looping = st.FPS, st.Looping

	etag := fmt.Sprintf(`W/"gif:%s:%d:%t:%s:image/gif"`, h.etag, cfg.FPS, cfg.Looping, cfg.Background)
	if notModified(w, r, etag) {
		return
	}
	buf := &bytes.Buffer{}
	if err := playback.EncodeGIF(buf, h.frames, cfg, h.pal); err != nil {
		httpError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/gif")
	w.Write(buf.Bytes())
}

type stateResponse struct {
	playback.State
	Name  string `json:"name"`
	Frame string `json:"frame"`
}

func (h *Handler) writeState(w http.ResponseWriter) {
	st, cur := h.sim.Snapshot()
	resp := stateResponse{State: st, Name: cur.Name()}

	buf := &bytes.Buffer{}
	if err := png.Encode(buf, h.sim.RenderFrame(cur)); err != nil {
		httpError(w, framepack.Wrapf(framepack.ExportError, err, "encoding frame %d", st.CurrentIndex))
		return
	}
	u, err := dataurl.New(buf.Bytes(), "image/png").MarshalText()
	if err != nil {
		httpError(w, err)
		return
	}
	resp.Frame = string(u)

	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, resp)
}

func (h *Handler) stateHandler(w http.ResponseWriter, r *http.Request) {
	h.writeState(w)
}

func (h *Handler) controlHandler(w http.ResponseWriter, r *http.Request) {
	var err error
	switch mux.Vars(r)["op"] {
	case "play":
		err = h.sim.Play()
	case "pause":
		err = h.sim.Pause()
	case "stop":
		err = h.sim.Stop()
	case "tick":
		err = h.sim.Tick()
	}
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeState(w)
}

func intParam(r *http.Request, key string) (int, error) {
	v, err := strconv.Atoi(r.URL.Query().Get(key))
	if err != nil {
		return 0, framepack.Errorf(framepack.InputError, "%s not a number", key)
	}
	return v, nil
}

func (h *Handler) seekHandler(w http.ResponseWriter, r *http.Request) {
	i, err := intParam(r, "i")
	if err == nil {
		err = h.sim.Seek(i)
	}
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) fpsHandler(w http.ResponseWriter, r *http.Request) {
	v, err := intParam(r, "v")
	if err == nil {
		err = h.sim.SetFPS(v)
	}
	if err != nil {
		httpError(w, err)
		return
	}
	h.writeState(w)
}

func (h *Handler) loopHandler(w http.ResponseWriter, r *http.Request) {
	v, err := strconv.ParseBool(r.URL.Query().Get("v"))
	if err != nil {
		httpError(w, framepack.Errorf(framepack.InputError, "v not a bool"))
		return
	}
	if err := h.sim.SetLooping(v); err != nil {
		httpError(w, err)
		return
	}
	h.writeState(w)
}
