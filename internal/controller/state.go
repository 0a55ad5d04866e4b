package controller

import "github.com/dmorgan81/imagine/internal/image"

type Status int

const (
	Idle Status = iota
	InFlight
	Succeeded
	Failed
)

func (s Status) String() string {
	switch s {
	case InFlight:
		return "in-flight"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "idle"
	}
}

// State is a snapshot of one generation attempt. Image is set only when
// Succeeded and Err only when Failed.
type State struct {
	Status Status
	Image  *image.Handle
	Err    error
}

// Message is the user-facing text for a failed state.
func (s State) Message() string {
	if s.Err == nil {
		return ""
	}
	return errorMessage(s.Err)
}
