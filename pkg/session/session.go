// Package session drives the staged crop workflow: one session per
// uploaded figure, three region submissions in fixed order, then a single
// all-or-nothing matching pass.
package session

import (
	"errors"

	"github.com/figmatch/figmatch/pkg/parts"
)

var (
	// ErrNotFound is returned when no session exists under the given name.
	ErrNotFound = errors.New("session not found")

	// ErrWrongStep is returned when a region arrives for a category other
	// than the one the session is waiting on. No state transition occurs.
	ErrWrongStep = errors.New("region submitted out of order")

	// ErrComplete is returned when a region arrives after the workflow
	// finished. There is no transition out of the complete state; a new
	// upload starts a new session.
	ErrComplete = errors.New("session already complete")

	// ErrNotComplete is returned when results are requested before all
	// three regions have been submitted.
	ErrNotComplete = errors.New("session not complete")

	// ErrRegionBounds is returned when a region does not lie within the
	// source image.
	ErrRegionBounds = errors.New("region out of image bounds")
)

// State is a workflow state. A fresh session awaits the head region and
// walks the fixed category order; complete is terminal.
type State string

const (
	AwaitingHead  State = "awaiting_head"
	AwaitingTorso State = "awaiting_torso"
	AwaitingLegs  State = "awaiting_legs"
	Complete      State = "complete"
)

// awaiting maps each non-terminal state to the category it expects.
var awaiting = map[State]parts.Category{
	AwaitingHead:  parts.Head,
	AwaitingTorso: parts.Torso,
	AwaitingLegs:  parts.Legs,
}

// Expecting returns the category this state is waiting on, and false for
// the terminal state.
func (s State) Expecting() (parts.Category, bool) {
	cat, ok := awaiting[s]
	return cat, ok
}

// next returns the state after a successful submission in s.
func (s State) next() State {
	switch s {
	case AwaitingHead:
		return AwaitingTorso
	case AwaitingTorso:
		return AwaitingLegs
	default:
		return Complete
	}
}

// Session correlates one uploaded source image with its progress through
// the crop workflow.
type Session struct {
	// Name is the caller-facing session key, derived from the sanitized
	// upload filename.
	Name string `json:"name"`

	// UploadFilename is the sanitized filename the original upload was
	// stored under (extension included).
	UploadFilename string `json:"upload_filename"`

	// State is the current workflow state.
	State State `json:"state"`
}

// MatchResult is the terminal artifact for one category: the best-matching
// catalog entry, its bare identifier, and the hosted image URL derived
// from it.
type MatchResult struct {
	Category parts.Category `json:"category"`
	Match    string         `json:"match"`
	ID       string         `json:"id"`
	ImageURL string         `json:"image_url"`
}
