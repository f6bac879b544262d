package timing

import (
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZeroInstant_AddsDelayAndCalibration(t *testing.T) {
	after := time.Date(2026, 1, 2, 3, 4, 5, 6, time.UTC)
	e := Estimator{FixedDelay: 5_000_000_000, Calibration: 334_237_733}

	got := e.ZeroInstant(after)

	assert.Equal(t, int64(5_000_000_000+334_237_733), got.Sub(after).Nanoseconds())
}

func TestZeroInstant_NegativeCalibration(t *testing.T) {
	after := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	e := Estimator{FixedDelay: 5 * time.Second, Calibration: -250 * time.Millisecond}

	assert.Equal(t, after.Add(4750*time.Millisecond), e.ZeroInstant(after))
}

func TestConfirm_ReturnsClockReadingAfterEdit(t *testing.T) {
	clock := clockwork.NewFakeClock()
	start := clock.Now()

	after, err := Confirm(clock, func() error {
		clock.Advance(300 * time.Millisecond)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, start.Add(300*time.Millisecond), after)
}

func TestConfirm_FailureIsConfirmationFailure(t *testing.T) {
	clock := clockwork.NewFakeClock()
	cause := errors.New("503 service unavailable")

	after, err := Confirm(clock, func() error { return cause })

	assert.True(t, after.IsZero())
	assert.ErrorIs(t, err, ErrConfirmationFailure)
	assert.ErrorIs(t, err, cause)
}
