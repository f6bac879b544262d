package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidDate = errors.New("date must be written as y/M/d")

// ValidationError reports malformed user input; Input is what the user typed.
type ValidationError struct {
	Input string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid input %q: %v", e.Input, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ParseDate parses "2026/1/2" (leading zeros allowed) as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(s), "/")
	if len(parts) != 3 {
		return time.Time{}, &ValidationError{Input: s, Err: ErrInvalidDate}
	}
	nums := make([]int, 3)
	for i, p := range parts {
		// Atoi would accept a leading sign.
		if p == "" || strings.TrimLeft(p, "0123456789") != "" {
			return time.Time{}, &ValidationError{Input: s, Err: ErrInvalidDate}
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, &ValidationError{Input: s, Err: ErrInvalidDate}
		}
		nums[i] = n
	}
	year, month, day := nums[0], nums[1], nums[2]
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if t.Year() != year || int(t.Month()) != month || t.Day() != day {
		return time.Time{}, &ValidationError{Input: s, Err: ErrInvalidDate}
	}
	return t, nil
}
