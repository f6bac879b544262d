// Package timing derives the reference instant a game's reactions are measured against.
package timing

import (
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
)

// ErrConfirmationFailure means the edit that anchors the zero instant never completed.
var ErrConfirmationFailure = errors.New("zero instant edit was not confirmed")

// Estimator computes T0 from the moment the countdown edit is confirmed.
// FixedDelay is the visual lead time of the countdown, Calibration a signed latency correction.
type Estimator struct {
	FixedDelay  time.Duration
	Calibration time.Duration
}

// ZeroInstant returns after + FixedDelay + Calibration.
func (e Estimator) ZeroInstant(after time.Time) time.Time {
	return after.Add(e.FixedDelay).Add(e.Calibration)
}

// Confirm issues edit and returns the clock reading taken right after it succeeds.
// Only the post-edit instant is used; it is the one correlated with what participants see.
func Confirm(clock clockwork.Clock, edit func() error) (time.Time, error) {
	if err := edit(); err != nil {
		return time.Time{}, fmt.Errorf("%w: %w", ErrConfirmationFailure, err)
	}
	return clock.Now(), nil
}
