// Package chima holds the error kinds shared by the sprite sheet packages.
package chima

import (
	"fmt"

	"github.com/pkg/errors"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind int

const (
	// InvalidArgument covers nil, zero sized or out of range input and
	// mismatched channel counts or depths within a set.
	InvalidArgument Kind = iota + 1
	AllocationFailure
	FileOpenFailure
	FileWriteFailure
	// TruncatedFile means fewer bytes were available than a table or payload
	// declared.
	TruncatedFile
	// UnsupportedFormat means an unknown format tag, asset kind or version.
	UnsupportedFormat
	// DecodeFailure means a codec rejected the payload or the data is
	// internally inconsistent.
	DecodeFailure
	// PackingFailed means no atlas size up to the maximum fits every rect.
	PackingFailed
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "Invalid parameter provided"
	case AllocationFailure:
		return "Allocation failure"
	case FileOpenFailure:
		return "Failed to open file"
	case FileWriteFailure:
		return "Failed to write file"
	case TruncatedFile:
		return "Reached end of file"
	case UnsupportedFormat:
		return "Unsupported format provided"
	case DecodeFailure:
		return "Failed to parse image data"
	case PackingFailed:
		return "Rectangle packing failed"
	default:
		return fmt.Sprintf("Unknown error (%d)", int(k))
	}
}

// Error is the typed error returned by every chimatools package.
type Error struct {
	Kind Kind
	// Op names the operation that failed, e.g. "sheet.Decode".
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an error of the given kind with a formatted cause.
func Errorf(kind Kind, op, format string, args ...interface{}) error {
	return &Error{Kind: kind, Op: op, Err: errors.Errorf(format, args...)}
}

// Wrap adds op context to err. If err already carries a kind that kind is
// preserved; kind is used only for foreign errors. Wrap(nil) is nil.
func Wrap(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	if k, ok := KindOf(err); ok {
		kind = k
	} else {
		err = errors.WithStack(err)
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// KindOf reports the kind of the outermost *Error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	k, ok := KindOf(err)
	return ok && k == kind
}
