package game

import (
	"context"
	"log/slog"

	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/metrics"
)

// lobby collects opt-ins for one session until the first signal arrives.
type lobby struct {
	initiator  string
	joinSymbol string
	capacity   int
	signals    chan Signal

	// guarded by Orchestrator.mu
	joined []string
	seen   map[string]struct{}
}

func newLobby(initiator, joinSymbol string, capacity int) *lobby {
	return &lobby{
		initiator:  initiator,
		joinSymbol: joinSymbol,
		capacity:   capacity,
		signals:    make(chan Signal, 1),
		seen:       make(map[string]struct{}),
	}
}

// signal delivers s unless another signal already won.
func (l *lobby) signal(s Signal) {
	select {
	case l.signals <- s:
	default:
	}
}

func (o *Orchestrator) openLobby(controlID, joinID string, l *lobby) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.controls[controlID] = l
	o.joins[joinID] = l
}

func (o *Orchestrator) closeLobby(controlID, joinID string) []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	l := o.joins[joinID]
	delete(o.controls, controlID)
	delete(o.joins, joinID)
	if l == nil {
		return nil
	}
	return append([]string(nil), l.joined...)
}

// awaitSignal races the lobby signals against the absolute timeout.
func (o *Orchestrator) awaitSignal(ctx context.Context, l *lobby) Signal {
	timer := o.clock.NewTimer(o.opts.LobbyTimeout)
	defer timer.Stop()
	select {
	case s := <-l.signals:
		return s
	case <-timer.Chan():
		return SignalTimedOut
	case <-ctx.Done():
		return SignalCancelled
	}
}

// HandleComponent routes lobby button presses. Only the initiator may press them.
func (o *Orchestrator) HandleComponent(event discord.ComponentEvent) {
	o.mu.Lock()
	l, ok := o.controls[event.MessageID]
	o.mu.Unlock()
	if !ok {
		if event.CustomID == customIDStart || event.CustomID == customIDCancel {
			o.bestEffort("respond game over", func() error { return event.RespondEphemeral(messageGameOver) })
		}
		return
	}
	if event.UserID != l.initiator {
		slog.Info("lobby button pressed by non-initiator", "user_id", event.UserID, "message_id", event.MessageID)
		o.bestEffort("respond only initiator", func() error { return event.RespondEphemeral(messageOnlyInitiator) })
		return
	}
	o.bestEffort("acknowledge button", event.Acknowledge)
	switch event.CustomID {
	case customIDStart:
		l.signal(SignalStarted)
	case customIDCancel:
		l.signal(SignalCancelled)
	}
}

// HandleReaction records capture reactions and lobby joins. ReceivedAt is used as the
// arrival time, so nothing here may delay the store append.
func (o *Orchestrator) HandleReaction(event discord.ReactionEvent) {
	key := captureKey(event.ChannelID, event.MessageID)

	o.mu.Lock()
	symbol, capturing := o.captures[key]
	l, joining := o.joins[event.MessageID]
	botUserID := o.botUserID
	o.mu.Unlock()

	if capturing {
		if event.Emoji != symbol {
			return
		}
		if o.store.Record(key, eventFromReaction(event)) {
			metrics.ReactionsRecorded.Inc()
		}
		return
	}
	if !joining || event.Emoji != l.joinSymbol || event.UserIsBot || event.UserID == botUserID {
		return
	}

	o.mu.Lock()
	if _, dup := l.seen[event.UserID]; dup {
		o.mu.Unlock()
		return
	}
	l.seen[event.UserID] = struct{}{}
	l.joined = append(l.joined, event.UserID)
	full := len(l.joined) >= l.capacity
	o.mu.Unlock()

	slog.Debug("participant joined lobby", "user_id", event.UserID, "message_id", event.MessageID)
	if full {
		l.signal(SignalCapReached)
	}
}
