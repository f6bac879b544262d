// Package scoring ranks reaction events by their distance from the zero instant.
package scoring

import (
	"fmt"
	"sort"
	"time"

	"github.com/foxseedlab/reactzero/internal/reaction"
)

const (
	// AlgorithmVersion is stored with every score so the formula can change later.
	AlgorithmVersion = 1

	scoreNumerator = int64(10_000_000_000)
)

type Entry struct {
	Rank          int
	ParticipantID string
	Offset        time.Duration
	Score         int64
}

// Rank keeps each participant's first reaction, measures it against t0 and orders the
// result by absolute offset. Equal offsets keep arrival order.
func Rank(events []reaction.Event, t0 time.Time) []Entry {
	seen := make(map[string]struct{}, len(events))
	entries := make([]Entry, 0, len(events))
	for _, ev := range firstArrivals(events) {
		if ev.IsBot {
			continue
		}
		if _, dup := seen[ev.ParticipantID]; dup {
			continue
		}
		seen[ev.ParticipantID] = struct{}{}
		offset := ev.ArrivedAt.Sub(t0)
		entries = append(entries, Entry{
			ParticipantID: ev.ParticipantID,
			Offset:        offset,
			Score:         Score(offset),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return abs(entries[i].Offset) < abs(entries[j].Offset)
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// firstArrivals orders events by arrival time, keeping insertion order for equal times,
// so that the first element seen per participant is the earliest one.
func firstArrivals(events []reaction.Event) []reaction.Event {
	ordered := make([]reaction.Event, len(events))
	copy(ordered, events)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].ArrivedAt.Before(ordered[j].ArrivedAt)
	})
	return ordered
}

// Score is 10^10 divided by the absolute offset in nanoseconds, floored, with a 1ns minimum.
func Score(offset time.Duration) int64 {
	ns := int64(abs(offset))
	if ns < 1 {
		ns = 1
	}
	return scoreNumerator / ns
}

// FormatOffset renders |offset| as seconds with five truncated fractional digits.
func FormatOffset(offset time.Duration) string {
	ns := int64(abs(offset))
	return fmt.Sprintf("%d.%05d", ns/int64(time.Second), (ns%int64(time.Second))/10_000)
}

func abs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
