package settings

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const (
	KeyJoinSymbol         = "join_symbol"
	KeyReactSymbol        = "react_symbol"
	KeyCountdownSymbol    = "countdown_symbol"
	KeyPreCountdownSymbol = "pre_countdown_symbol"
	KeyCalibrationOffset  = "calibration_offset_ns"
	KeyMaxParticipants    = "max_participants"

	DefaultCalibrationOffset = 334_237_733 * time.Nanosecond
	DefaultMaxParticipants   = 4
	MinParticipants          = 2
	HardMaxParticipants      = 50
)

// Tunables is an immutable snapshot of the runtime settings a game session reads.
type Tunables struct {
	JoinSymbol         string
	ReactSymbol        string
	CountdownSymbol    string
	PreCountdownSymbol string
	CalibrationOffset  time.Duration
	MaxParticipants    int
}

func Defaults() Tunables {
	return Tunables{
		JoinSymbol:         "👍",
		ReactSymbol:        "🔴",
		CountdownSymbol:    "⏬",
		PreCountdownSymbol: "🔜",
		CalibrationOffset:  DefaultCalibrationOffset,
		MaxParticipants:    DefaultMaxParticipants,
	}
}

// ClampParticipants bounds a requested lobby cap by the configured maximum.
// Zero or negative requests mean "use the maximum".
func (t Tunables) ClampParticipants(requested int) int {
	limit := t.MaxParticipants
	if requested > 0 && requested < limit {
		limit = requested
	}
	if limit < MinParticipants {
		limit = MinParticipants
	}
	return limit
}

type definition struct {
	// exact rejects stored values that only contain a valid value somewhere inside them.
	exact     bool
	normalize func(raw string) (string, error)
	apply     func(t *Tunables, value string)
	show      func(t Tunables) string
}

// Keys lists the setting keys in display order.
var Keys = []string{
	KeyJoinSymbol,
	KeyReactSymbol,
	KeyCountdownSymbol,
	KeyPreCountdownSymbol,
	KeyCalibrationOffset,
	KeyMaxParticipants,
}

var definitions = map[string]definition{
	KeyJoinSymbol: symbolDefinition(
		func(t *Tunables, v string) { t.JoinSymbol = v },
		func(t Tunables) string { return t.JoinSymbol }),
	KeyReactSymbol: symbolDefinition(
		func(t *Tunables, v string) { t.ReactSymbol = v },
		func(t Tunables) string { return t.ReactSymbol }),
	KeyCountdownSymbol: symbolDefinition(
		func(t *Tunables, v string) { t.CountdownSymbol = v },
		func(t Tunables) string { return t.CountdownSymbol }),
	KeyPreCountdownSymbol: symbolDefinition(
		func(t *Tunables, v string) { t.PreCountdownSymbol = v },
		func(t Tunables) string { return t.PreCountdownSymbol }),
	KeyCalibrationOffset: {
		normalize: func(raw string) (string, error) {
			d, err := ParseCalibration(raw)
			if err != nil {
				return "", err
			}
			return strconv.FormatInt(d.Nanoseconds(), 10), nil
		},
		apply: func(t *Tunables, v string) {
			d, _ := ParseCalibration(v)
			t.CalibrationOffset = d
		},
		show: func(t Tunables) string { return strconv.FormatInt(t.CalibrationOffset.Nanoseconds(), 10) },
	},
	KeyMaxParticipants: {
		normalize: func(raw string) (string, error) {
			n, err := strconv.Atoi(strings.TrimSpace(raw))
			if err != nil {
				return "", fmt.Errorf("%w: %q is not an integer", ErrInvalidValue, raw)
			}
			if n < MinParticipants || n > HardMaxParticipants {
				return "", fmt.Errorf("%w: must be between %d and %d", ErrInvalidValue, MinParticipants, HardMaxParticipants)
			}
			return strconv.Itoa(n), nil
		},
		apply: func(t *Tunables, v string) {
			n, _ := strconv.Atoi(v)
			t.MaxParticipants = n
		},
		show: func(t Tunables) string { return strconv.Itoa(t.MaxParticipants) },
	},
}

func symbolDefinition(apply func(*Tunables, string), show func(Tunables) string) definition {
	return definition{
		normalize: func(raw string) (string, error) {
			s, ok := NormalizeSymbol(raw)
			if !ok {
				return "", fmt.Errorf("%w: %q is not an emoji", ErrInvalidValue, raw)
			}
			return s, nil
		},
		exact: true,
		apply: apply,
		show:  show,
	}
}

// ParseCalibration accepts a signed nanosecond count, optionally suffixed with "n".
func ParseCalibration(raw string) (time.Duration, error) {
	s := strings.TrimSuffix(strings.TrimSpace(raw), "n")
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a nanosecond count", ErrInvalidValue, raw)
	}
	return time.Duration(n), nil
}

// FromRows builds a snapshot from stored rows. Unknown keys and values that fail
// validation are ignored and leave the default in place.
func FromRows(rows map[string]string) Tunables {
	t := Defaults()
	for _, key := range Keys {
		raw, ok := rows[key]
		if !ok {
			continue
		}
		def := definitions[key]
		value, err := def.normalize(raw)
		if err != nil || (def.exact && value != raw) {
			continue
		}
		def.apply(&t, value)
	}
	return t
}

// Value renders the current value of key.
func (t Tunables) Value(key string) (string, bool) {
	def, ok := definitions[key]
	if !ok {
		return "", false
	}
	return def.show(t), true
}
