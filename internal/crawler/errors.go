package crawler

import (
	"errors"
	"fmt"
)

// ErrRetrieval matches every failure produced while reading the site, whatever
// its kind. Callers that fall back to snapshots only need this.
var ErrRetrieval = errors.New("crawler: retrieval failed")

type Kind string

const (
	KindNetwork          Kind = "network"
	KindTableNotFound    Kind = "table_not_found"
	KindRowShapeMismatch Kind = "row_shape_mismatch"
)

// Error is a tagged scrape failure.
type Error struct {
	Kind   Kind
	URL    string
	Status int // HTTP status when the server answered
	Err    error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("crawler: %s: %s", e.Kind, e.URL)
	if e.Status != 0 {
		msg += fmt.Sprintf(": status %d", e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool { return target == ErrRetrieval }

// KindOf returns the failure kind of err, or "" when err is not a scrape error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return ""
}
