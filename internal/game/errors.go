package game

import (
	"errors"

	"github.com/foxseedlab/reactzero/internal/timing"
)

var (
	// ErrConfirmationFailure aborts the session before scoring; no records are written.
	ErrConfirmationFailure = timing.ErrConfirmationFailure
	// ErrCaptureUnavailable means the message participants react to could not be posted.
	ErrCaptureUnavailable = errors.New("reaction target message could not be posted")
	// ErrInsufficientParticipants is a normal outcome, not a failure.
	ErrInsufficientParticipants = errors.New("fewer than two participants joined")
)
