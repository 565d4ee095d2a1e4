package merge

import (
	"errors"
	"fmt"
	"strings"

	"bookbinder/internal/adts"
)

// ErrNoDecodableAudio is returned when no part contains a single valid frame.
// It is the only fatal merge outcome; everything else is reported per part or
// routed to the fallback path.
var ErrNoDecodableAudio = errors.New("no decodable audio in any part")

// ConfigMismatchError identifies the first frame whose audio configuration
// deviates from the reference established by the first non-empty part.
type ConfigMismatchError struct {
	Path       string
	OrderIndex int
	FrameIndex int
	Expected   adts.Config
	Found      adts.Config
}

func (e *ConfigMismatchError) Error() string {
	return fmt.Sprintf("audio config mismatch in %s (part %d, frame %d): expected %s, found %s",
		e.Path, e.OrderIndex, e.FrameIndex, e.Expected, e.Found)
}

// FallbackError signals that direct concatenation is unsafe and the caller
// must route the parts through the external decode/re-encode collaborator,
// then merge its homogeneous output. At least one of Mismatch or
// SuspectParts is populated.
type FallbackError struct {
	Mismatch     *ConfigMismatchError
	SuspectParts []string
}

func (e *FallbackError) Error() string {
	var reasons []string
	if e.Mismatch != nil {
		reasons = append(reasons, e.Mismatch.Error())
	}
	if len(e.SuspectParts) > 0 {
		reasons = append(reasons, fmt.Sprintf("suspect parts: %s", strings.Join(e.SuspectParts, ", ")))
	}
	if len(reasons) == 0 {
		reasons = append(reasons, "unspecified")
	}
	return "re-encode fallback required: " + strings.Join(reasons, "; ")
}

func (e *FallbackError) Unwrap() error {
	if e.Mismatch != nil {
		return e.Mismatch
	}
	return nil
}

// FallbackRequired reports whether err asks for the decode/re-encode path.
func FallbackRequired(err error) bool {
	var fallback *FallbackError
	return errors.As(err, &fallback)
}
