package frames

import (
	"context"
	"sort"

	"github.com/golang/glog"
	"github.com/google/uuid"

	"badc0de.net/pkg/framepack"
)

// Sequence is an ordered set of frames. The order defines both the animation
// and the packing order.
//
// A Sequence has a single writer: AddFrames, MoveFrame and RemoveFrame must
// not be called concurrently with each other or with readers.
type Sequence struct {
	dec    Decoder
	frames []*Frame
}

// AddResult reports the outcome of AddFrames.
type AddResult struct {
	// Added lists the new frames in the order they were merged.
	Added []*Frame
	// Failed holds one DecodeError per source that could not be decoded.
	Failed []error
}

// NewSequence creates an empty sequence that decodes with dec. A nil dec
// means StandardDecoder.
func NewSequence(dec Decoder) *Sequence {
	if dec == nil {
		dec = StandardDecoder
	}
	return &Sequence{dec: dec}
}

// Len returns the number of frames.
func (s *Sequence) Len() int {
	return len(s.frames)
}

// At returns the frame at index i. It panics if i is out of range.
func (s *Sequence) At(i int) *Frame {
	return s.frames[i]
}

// Frames returns a snapshot of the current order. Later changes to the
// sequence do not affect the returned slice.
func (s *Sequence) Frames() []*Frame {
	out := make([]*Frame, len(s.frames))
	copy(out, s.frames)
	return out
}

// Names returns the display names in order.
func (s *Sequence) Names() []string {
	out := make([]string, len(s.frames))
	for i, f := range s.frames {
		out[i] = f.name
	}
	return out
}

// Index returns the position of the frame with the passed id, or -1.
func (s *Sequence) Index(id uuid.UUID) int {
	for i, f := range s.frames {
		if f.id == id {
			return i
		}
	}
	return -1
}

// AddFrames decodes raws and merges the results into the sequence.
//
// All decodes run to completion before anything is merged. Sources that fail
// to decode are reported in AddResult.Failed and skipped. If none of them
// decode, an InputError is returned and the sequence is left unchanged; the
// AddResult is still returned so that the per-file failures can be shown.
//
// New frames are stable-sorted by NaturalKey and then merged into the current
// order: each one goes right before the first existing frame whose key is
// strictly greater. Existing frames keep their relative order.
func (s *Sequence) AddFrames(ctx context.Context, raws []RawImage) (*AddResult, error) {
	if len(raws) == 0 {
		return nil, framepack.Errorf(framepack.InputError, "no images given")
	}

	results, err := decodeAll(ctx, s.dec, raws)
	if err != nil {
		return nil, err
	}

	res := &AddResult{}
	var added []*Frame
	for i, r := range results {
		if r.err != nil {
			glog.Errorf("could not decode %q: %v", raws[i].Name, r.err)
			res.Failed = append(res.Failed, framepack.Wrap(framepack.DecodeError, raws[i].Name, r.err))
			continue
		}
		added = append(added, newFrame(raws[i].Name, r.img))
	}
	if len(added) == 0 {
		return res, framepack.Errorf(framepack.InputError, "none of the %d images could be decoded", len(raws))
	}

	sort.SliceStable(added, func(i, j int) bool {
		return NaturalKey(added[i].name) < NaturalKey(added[j].name)
	})
	s.frames = mergeByKey(s.frames, added)
	res.Added = added

	glog.V(1).Infof("added %d frames (%d failed), sequence now has %d", len(added), len(res.Failed), len(s.frames))
	return res, nil
}

// mergeByKey merges the key-sorted added frames into existing without
// reordering existing. On equal keys the existing frame comes first.
func mergeByKey(existing, added []*Frame) []*Frame {
	out := make([]*Frame, 0, len(existing)+len(added))
	i, j := 0, 0
	for i < len(existing) && j < len(added) {
		if NaturalKey(added[j].name) < NaturalKey(existing[i].name) {
			out = append(out, added[j])
			j++
		} else {
			out = append(out, existing[i])
			i++
		}
	}
	out = append(out, existing[i:]...)
	return append(out, added[j:]...)
}

// MoveFrame removes the frame at from and reinserts it at to. Both indices
// must be in [0, Len()-1]; otherwise an InputError is returned and nothing
// changes.
func (s *Sequence) MoveFrame(from, to int) error {
	if err := s.checkIndex(from); err != nil {
		return err
	}
	if err := s.checkIndex(to); err != nil {
		return err
	}
	if from == to {
		return nil
	}
	f := s.frames[from]
	if from < to {
		copy(s.frames[from:to], s.frames[from+1:to+1])
	} else {
		copy(s.frames[to+1:from+1], s.frames[to:from])
	}
	s.frames[to] = f
	return nil
}

// RemoveFrame deletes the frame at index.
func (s *Sequence) RemoveFrame(index int) error {
	if err := s.checkIndex(index); err != nil {
		return err
	}
	copy(s.frames[index:], s.frames[index+1:])
	s.frames[len(s.frames)-1] = nil
	s.frames = s.frames[:len(s.frames)-1]
	return nil
}

// RemoveFrameByID deletes the frame with the passed id.
func (s *Sequence) RemoveFrameByID(id uuid.UUID) error {
	idx := s.Index(id)
	if idx < 0 {
		return framepack.Errorf(framepack.InputError, "no frame with id %s", id)
	}
	return s.RemoveFrame(idx)
}

func (s *Sequence) checkIndex(i int) error {
	if i < 0 || i >= len(s.frames) {
		return framepack.Errorf(framepack.InputError, "frame index %d out of range [0,%d)", i, len(s.frames))
	}
	return nil
}
