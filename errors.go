// Package framepack turns an ordered set of still images into a sprite-sheet
// atlas and a JSON descriptor.
//
// The work is split across packages: frames holds and orders the source
// images, atlas packs them into one bitmap, playback simulates the preview
// animation and export turns a packed atlas into the two output artifacts.
// This package only carries the error taxonomy shared between them.
package framepack

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so that the caller can present it.
type Kind int

const (
	KindUnknown Kind = iota
	// InputError: no usable images, empty sequence, bad index or name.
	InputError
	// DecodeError: a source file is not a decodable image.
	DecodeError
	// PackError: zero-area frame or degenerate canvas.
	PackError
	// ExportError: encoding, serialization or delivery failure.
	ExportError
)

func (k Kind) String() string {
	switch k {
	case InputError:
		return "input error"
	case DecodeError:
		return "decode error"
	case PackError:
		return "pack error"
	case ExportError:
		return "export error"
	}
	return "unknown error"
}

// Error is a classified failure. Name optionally refers to the file or frame
// the failure is about.
type Error struct {
	Kind Kind
	Name string
	Err  error
}

func (e *Error) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Name, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Cause lets errors.Cause see through the classification.
func (e *Error) Cause() error {
	return e.Err
}

// Errorf creates a new classified error with a stack trace attached.
func Errorf(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, Err: errors.Errorf(format, args...)}
}

// Wrap classifies err. It returns nil if err is nil.
func Wrap(kind Kind, name string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Name: name, Err: errors.WithStack(err)}
}

// Wrapf classifies err and annotates it with a message.
func Wrapf(kind Kind, err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Err: errors.Wrapf(err, format, args...)}
}

// KindOf returns the kind of the outermost classified error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
