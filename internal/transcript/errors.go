package transcript

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL means the input is not a recognisable video link.
	ErrInvalidURL = errors.New("invalid YouTube URL")
	// ErrNoTranscript means the video exposes no caption track.
	ErrNoTranscript = errors.New("no transcript available for this video")
)

// Error wraps a transcript fetch failure with the video it concerns.
type Error struct {
	VideoID string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("transcript %s: %s: %v", e.VideoID, e.Message, e.Cause)
	}
	return fmt.Sprintf("transcript %s: %s", e.VideoID, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}
