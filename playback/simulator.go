package playback

import (
	"image"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/pkg/errors"

	"badc0de.net/pkg/framepack"
	"badc0de.net/pkg/framepack/frames"
)

const (
	MinFPS = 1
	MaxFPS = 60

	DefaultFPS = 10
)

var (
	// ErrClosed is returned by transitions on a closed simulator.
	ErrClosed = errors.New("playback: simulator closed")

	errTimerArmed = errors.New("playback: timer already armed")
)

// Config is the per-session preview configuration.
type Config struct {
	FPS        int
	Looping    bool
	Background Background
}

// DefaultConfig loops at 10 FPS over a checkerboard.
func DefaultConfig() Config {
	return Config{FPS: DefaultFPS, Looping: true, Background: Checkerboard}
}

// State is a snapshot of the simulator.
type State struct {
	CurrentIndex int  `json:"current_index"`
	Playing      bool `json:"playing"`
	FPS          int  `json:"fps"`
	Looping      bool `json:"looping"`
	Length       int  `json:"length"`
}

// Simulator drives the preview frame index. It is safe for concurrent use;
// all transitions, including timer callbacks, are serialized.
type Simulator struct {
	mu sync.Mutex

	frames     []*frames.Frame
	background Background
	sched      Scheduler

	index   int
	playing bool
	fps     int
	looping bool

	cancel func()
	// armed is the generation of the live timer, 0 when none. Callbacks
	// from older generations are ignored.
	armed  uint64
	gen    uint64
	closed bool
}

// New opens a preview session over a snapshot of frs. A nil sched means
// TickerScheduler.
func New(frs []*frames.Frame, cfg Config, sched Scheduler) (*Simulator, error) {
	if len(frs) == 0 {
		return nil, framepack.Errorf(framepack.InputError, "nothing to preview")
	}
	if sched == nil {
		sched = TickerScheduler{}
	}
	snap := make([]*frames.Frame, len(frs))
	copy(snap, frs)
	return &Simulator{
		frames:     snap,
		background: cfg.Background,
		sched:      sched,
		fps:        clamp(cfg.FPS, MinFPS, MaxFPS),
		looping:    cfg.Looping,
	}, nil
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Period returns the timer period for fps.
func Period(fps int) time.Duration {
	return time.Second / time.Duration(clamp(fps, MinFPS, MaxFPS))
}

// State returns the current state.
func (s *Simulator) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state()
}

func (s *Simulator) state() State {
	return State{
		CurrentIndex: s.index,
		Playing:      s.playing,
		FPS:          s.fps,
		Looping:      s.looping,
		Length:       len(s.frames),
	}
}

// Snapshot returns the state together with the frame at its CurrentIndex,
// read atomically with respect to timer callbacks.
func (s *Simulator) Snapshot() (State, *frames.Frame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state(), s.frames[s.index]
}

// Len returns the number of frames in the session.
func (s *Simulator) Len() int {
	return len(s.frames)
}

// Current returns the frame at the current index.
func (s *Simulator) Current() *frames.Frame {
	_, f := s.Snapshot()
	return f
}

// Background returns the session background.
func (s *Simulator) Background() Background {
	return s.background
}

// Render draws the current frame over the session background.
func (s *Simulator) Render() *image.RGBA {
	return s.RenderFrame(s.Current())
}

// RenderFrame draws f over the session background.
func (s *Simulator) RenderFrame(f *frames.Frame) *image.RGBA {
	return s.background.Compose(f.Image(), f.Size())
}

// Play starts playback. Playing from the last frame without looping restarts
// at the first frame. Play while already playing does nothing.
func (s *Simulator) Play() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.playing {
		return nil
	}
	if s.index == len(s.frames)-1 && !s.looping {
		s.index = 0
	}
	if err := s.arm(); err != nil {
		return err
	}
	s.playing = true
	glog.V(2).Infof("playback: play from %d at %d fps", s.index, s.fps)
	return nil
}

// Pause stops playback and keeps the current index.
func (s *Simulator) Pause() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stop()
	return nil
}

// Stop is the same as Pause: the current index is kept.
func (s *Simulator) Stop() error {
	return s.Pause()
}

// Tick advances one frame, as if the timer fired. It does nothing while
// stopped.
func (s *Simulator) Tick() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	if s.playing {
		s.tick()
	}
	return nil
}

// Seek moves to index v, clamped to the valid range, and stops playback.
func (s *Simulator) Seek(v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.stop()
	s.index = clamp(v, 0, len(s.frames)-1)
	return nil
}

// SetFPS changes the playback rate, clamped to [MinFPS, MaxFPS]. While
// playing, the timer is re-armed at the new period right away.
func (s *Simulator) SetFPS(v int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.fps = clamp(v, MinFPS, MaxFPS)
	if s.playing {
		s.disarm()
		if err := s.arm(); err != nil {
			s.playing = false
			return err
		}
	}
	return nil
}

// SetLooping changes whether reaching the end wraps around. It takes effect
// at the next wrap decision.
func (s *Simulator) SetLooping(v bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.looping = v
	return nil
}

// Close ends the session. The timer is cancelled, and a callback already in
// flight will find the session closed and do nothing.
func (s *Simulator) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.stop()
	s.closed = true
	return nil
}

func (s *Simulator) tick() {
	s.index++
	if s.index < len(s.frames) {
		return
	}
	if s.looping {
		s.index = 0
		return
	}
	s.index = len(s.frames) - 1
	s.stop()
	glog.V(2).Infof("playback: reached last frame, stopped")
}

func (s *Simulator) stop() {
	s.disarm()
	s.playing = false
}

func (s *Simulator) arm() error {
	if s.cancel != nil {
		return errTimerArmed
	}
	s.gen++
	g := s.gen
	s.armed = g
	s.cancel = s.sched.Every(Period(s.fps), func() { s.fire(g) })
	return nil
}

func (s *Simulator) disarm() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.armed = 0
}

func (s *Simulator) fire(g uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || s.armed != g {
		return
	}
	s.tick()
}
