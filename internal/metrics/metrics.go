package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Game outcome labels for GamesTotal.
const (
	OutcomeCompleted               = "completed"
	OutcomeCancelled               = "cancelled"
	OutcomeTimedOut                = "timed_out"
	OutcomeInsufficientParticipant = "insufficient_participants"
	OutcomeConfirmationFailure     = "confirmation_failure"
	OutcomeFailed                  = "failed"
)

var (
	// GamesTotal counts sessions by how they ended
	GamesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reactzero_games_total",
			Help: "Total game sessions by outcome",
		},
		[]string{"outcome"},
	)

	ActiveSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reactzero_active_sessions",
			Help: "Number of game sessions currently running",
		},
	)

	// TrackedMessages mirrors the reaction store size; it should fall back to zero between games
	TrackedMessages = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "reactzero_tracked_messages",
			Help: "Number of messages whose reactions are being captured",
		},
	)

	ReactionsRecorded = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactzero_reactions_recorded_total",
			Help: "Total reaction events accepted into a capture window",
		},
	)

	ReactionOffsetSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reactzero_reaction_offset_seconds",
			Help:    "Absolute distance between a ranked reaction and the zero instant",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
	)

	// EditConfirmationSeconds tracks the round-trip of the edit that anchors the zero instant
	EditConfirmationSeconds = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "reactzero_edit_confirmation_seconds",
			Help:    "Round-trip duration of the countdown edit",
			Buckets: []float64{.05, .1, .25, .5, 1, 2, 5},
		},
	)
)
