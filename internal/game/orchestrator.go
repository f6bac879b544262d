package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/foxseedlab/reactzero/internal/discord"
	"github.com/foxseedlab/reactzero/internal/metrics"
	"github.com/foxseedlab/reactzero/internal/reaction"
	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/foxseedlab/reactzero/internal/scoring"
	"github.com/foxseedlab/reactzero/internal/settings"
	"github.com/foxseedlab/reactzero/internal/timing"
	"github.com/foxseedlab/reactzero/internal/webhook"
	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	LobbyTimeout      time.Duration
	PreCountdownDelay time.Duration
	CaptureWindow     time.Duration
	Location          *time.Location
}

// TunableSource supplies the settings a session runs with. It is read once per session.
type TunableSource interface {
	Snapshot() settings.Tunables
}

type StartRequest struct {
	GuildID   string
	ChannelID string
	UserID    string
	// RequestedCap of zero means the configured maximum.
	RequestedCap int
}

// Orchestrator runs game sessions. Any number of sessions may run at once; each owns
// its own lobby and tracked message.
type Orchestrator struct {
	opts     Options
	repo     repository.GameRepository
	discord  discord.Client
	store    *reaction.Store
	tunables TunableSource
	webhook  webhook.Sender
	clock    clockwork.Clock

	mu        sync.Mutex
	controls  map[string]*lobby
	joins     map[string]*lobby
	captures  map[reaction.Key]string
	botUserID string
}

func NewOrchestrator(opts Options, repo repository.GameRepository, dc discord.Client, store *reaction.Store, tunables TunableSource, wh webhook.Sender, clock clockwork.Clock) *Orchestrator {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	return &Orchestrator{
		opts:     opts,
		repo:     repo,
		discord:  dc,
		store:    store,
		tunables: tunables,
		webhook:  wh,
		clock:    clock,
		controls: make(map[string]*lobby),
		joins:    make(map[string]*lobby),
		captures: make(map[reaction.Key]string),
	}
}

func (o *Orchestrator) SetBotUserID(botUserID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.botUserID = botUserID
}

func (o *Orchestrator) botID() string {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.botUserID
}

// Start runs a session in the background.
func (o *Orchestrator) Start(req StartRequest) {
	go func() {
		out := o.Run(context.Background(), req)
		slog.Info("game session ended",
			"game_id", out.GameID,
			"guild_id", req.GuildID,
			"channel_id", req.ChannelID,
			"state", out.State.String(),
			"signal", out.Signal.String(),
			"ranked", len(out.Ranking))
	}()
}

type session struct {
	req  StartRequest
	tun  settings.Tunables
	out  Outcome
	game *repository.Game

	control discord.Message
	board   *discord.Message
	mention *discord.Message
	pre     *discord.Message
	target  *discord.Message
}

type createdGame struct {
	game *repository.Game
	err  error
}

// Run executes one session from lobby to result. ctx only bounds the lobby; once the
// countdown starts the session runs to completion or fails.
func (o *Orchestrator) Run(ctx context.Context, req StartRequest) Outcome {
	metrics.ActiveSessions.Inc()
	defer metrics.ActiveSessions.Dec()

	s := &session{req: req, tun: o.tunables.Snapshot()}
	s.out.enter(StateLobby)
	log := slog.With("guild_id", req.GuildID, "channel_id", req.ChannelID, "started_by", req.UserID)
	log.Info("game lobby opening", "cap", s.tun.ClampParticipants(req.RequestedCap))

	participants, created, err := o.runLobby(ctx, s)
	if err != nil {
		log.Error("failed to open lobby", "error", err)
		return o.abort(s, metrics.OutcomeFailed, err)
	}
	bg := context.WithoutCancel(ctx)

	switch {
	case s.out.Signal == SignalCancelled || s.out.Signal == SignalTimedOut:
		o.bestEffort("delete control message", func() error { return o.discord.DeleteMessage(s.control) })
		o.awaitGame(s, created)
		log.Info("game lobby closed without starting", "game_id", s.out.GameID, "signal", s.out.Signal.String())
		outcome := metrics.OutcomeCancelled
		if s.out.Signal == SignalTimedOut {
			outcome = metrics.OutcomeTimedOut
		}
		return o.abort(s, outcome, nil)
	case len(participants) < settings.MinParticipants:
		o.bestEffort("delete control message", func() error { return o.discord.DeleteMessage(s.control) })
		o.awaitGame(s, created)
		log.Info("not enough participants; game aborted", "game_id", s.out.GameID, "participants", len(participants))
		return o.abort(s, metrics.OutcomeInsufficientParticipant, ErrInsufficientParticipants)
	}

	s.out.enter(StateConfirming)
	if err := o.awaitGame(s, created); err != nil {
		log.Error("failed to create game", "error", err)
		o.bestEffort("delete control message", func() error { return o.discord.DeleteMessage(s.control) })
		return o.abort(s, metrics.OutcomeFailed, err)
	}
	log = log.With("game_id", s.game.ID)

	s.out.enter(StateCountdown)
	if err := o.countdown(bg, s, participants); err != nil {
		log.Error("countdown failed", "error", err)
		o.cleanup(s, messagePersistFailed)
		return o.abort(s, metrics.OutcomeFailed, err)
	}

	s.out.enter(StateCapturing)
	after, events, err := o.capture(s)
	if err != nil {
		switch {
		case errors.Is(err, ErrConfirmationFailure):
			log.Error("countdown edit was not confirmed; game aborted", "error", err)
			o.cleanup(s, messageConfirmFailed)
			return o.abort(s, metrics.OutcomeConfirmationFailure, err)
		default:
			log.Error("capture failed; game aborted", "error", err)
			o.cleanup(s, messageCaptureFailed)
			return o.abort(s, metrics.OutcomeFailed, err)
		}
	}

	s.out.enter(StateScoring)
	t0 := timing.Estimator{FixedDelay: o.opts.PreCountdownDelay, Calibration: s.tun.CalibrationOffset}.ZeroInstant(after)
	s.out.Ranking = scoring.Rank(events, t0)
	for _, e := range s.out.Ranking {
		metrics.ReactionOffsetSeconds.Observe(absDuration(e.Offset).Seconds())
	}
	text, entries := o.results(req.GuildID, s.out.Ranking)
	log.Info("game scored", "reactions", len(events), "ranked", len(s.out.Ranking), "zero_instant", t0)

	finishedAt, err := o.persist(bg, s)
	if err != nil {
		log.Error("failed to persist game result", "error", err)
		o.cleanup(s, messagePersistFailed)
		return o.abort(s, metrics.OutcomeFailed, err)
	}
	s.out.enter(StatePersisted)

	o.cleanup(s, text)
	o.publish(bg, s, finishedAt, entries)
	s.out.enter(StateClosed)
	metrics.GamesTotal.WithLabelValues(metrics.OutcomeCompleted).Inc()
	return s.out
}

// runLobby posts the lobby messages and waits for the first lobby signal. Game creation
// starts as soon as the lobby is visible and is awaited later.
func (o *Orchestrator) runLobby(ctx context.Context, s *session) ([]string, <-chan createdGame, error) {
	control, err := o.discord.SendMessageWithButtons(s.req.ChannelID, messageControl, []discord.Button{
		{CustomID: customIDStart, Label: buttonStartLabel, Style: discord.ButtonSuccess},
		{CustomID: customIDCancel, Label: buttonCancelLabel, Style: discord.ButtonDanger},
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to post lobby controls: %w", err)
	}
	s.control = control

	join, err := o.discord.SendMessage(s.req.ChannelID, joinMessage(o.displayName(s.req.GuildID, s.req.UserID), s.tun.JoinSymbol))
	if err != nil {
		o.bestEffort("delete control message", func() error { return o.discord.DeleteMessage(control) })
		return nil, nil, fmt.Errorf("failed to post join message: %w", err)
	}

	created := o.createGame(context.WithoutCancel(ctx), s.req)

	l := newLobby(s.req.UserID, s.tun.JoinSymbol, s.tun.ClampParticipants(s.req.RequestedCap))
	o.openLobby(control.ID, join.ID, l)
	o.bestEffort("seed join reaction", func() error { return o.discord.AddReaction(join, s.tun.JoinSymbol) })

	s.out.Signal = o.awaitSignal(ctx, l)
	observed := o.closeLobby(control.ID, join.ID)

	var participants []string
	if s.out.Signal == SignalStarted || s.out.Signal == SignalCapReached {
		participants = o.eligibleParticipants(join, s.tun.JoinSymbol, observed)
	}
	o.bestEffort("delete join message", func() error { return o.discord.DeleteMessage(join) })
	return participants, created, nil
}

func (o *Orchestrator) createGame(ctx context.Context, req StartRequest) <-chan createdGame {
	ch := make(chan createdGame, 1)
	go func() {
		if err := o.repo.UpsertGuild(ctx, req.GuildID); err != nil {
			ch <- createdGame{err: fmt.Errorf("failed to upsert guild: %w", err)}
			return
		}
		g, err := o.repo.CreateGame(ctx, repository.CreateGameInput{
			GuildID:   req.GuildID,
			StartedBy: req.UserID,
			CreatedAt: o.clock.Now(),
		})
		if err != nil {
			err = fmt.Errorf("failed to create game: %w", err)
		}
		ch <- createdGame{game: g, err: err}
	}()
	return ch
}

func (o *Orchestrator) awaitGame(s *session, created <-chan createdGame) error {
	res := <-created
	if res.err != nil {
		return res.err
	}
	s.game = res.game
	s.out.GameID = res.game.ID
	return nil
}

// eligibleParticipants reads the current join reactions, falling back to the joins seen
// during the lobby when the fetch fails.
func (o *Orchestrator) eligibleParticipants(join discord.Message, symbol string, observed []string) []string {
	users, err := o.discord.ListReactionUsers(join, symbol)
	if err != nil {
		slog.Warn("failed to fetch join reactions; using observed joins", "error", err, "message_id", join.ID)
		return observed
	}
	botUserID := o.botID()
	ids := make([]string, 0, len(users))
	for _, u := range users {
		if u.IsBot || u.ID == "" || u.ID == botUserID {
			continue
		}
		ids = append(ids, u.ID)
	}
	return ids
}

func (o *Orchestrator) countdown(ctx context.Context, s *session, participants []string) error {
	instruction := instructionMessage(o.opts.PreCountdownDelay, s.tun.ReactSymbol, s.tun.PreCountdownSymbol)
	if err := o.discord.EditMessage(s.control, instruction); err == nil {
		board := s.control
		s.board = &board
	} else {
		slog.Warn("failed to edit lobby controls; posting instructions instead", "error", err, "message_id", s.control.ID)
		o.bestEffort("delete control message", func() error { return o.discord.DeleteMessage(s.control) })
		msg, err := o.discord.SendMessage(s.req.ChannelID, instruction)
		if err != nil {
			return fmt.Errorf("failed to post instructions: %w", err)
		}
		s.board = &msg
	}

	if msg, err := o.discord.SendMessage(s.req.ChannelID, mentionMessage(participants)); err == nil {
		s.mention = &msg
	} else {
		slog.Debug("failed to mention participants", "error", err)
	}

	if err := o.repo.MarkGameStarted(ctx, s.game.ID, o.clock.Now()); err != nil {
		return fmt.Errorf("failed to mark game started: %w", err)
	}

	if msg, err := o.discord.SendMessage(s.req.ChannelID, repeatSymbol(s.tun.PreCountdownSymbol)); err == nil {
		s.pre = &msg
	} else {
		slog.Debug("failed to post pre-countdown marker", "error", err)
	}

	timer := o.clock.NewTimer(o.opts.PreCountdownDelay)
	<-timer.Chan()

	if s.mention != nil {
		mention := *s.mention
		o.bestEffort("delete mention message", func() error { return o.discord.DeleteMessage(mention) })
		s.mention = nil
	}
	return nil
}

// capture runs the zero-instant edit, the target post and the capture window together.
// The tracked key is drained on every path.
func (o *Orchestrator) capture(s *session) (time.Time, []reaction.Event, error) {
	board := *s.board
	var after time.Time

	g, gctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		begin := o.clock.Now()
		at, err := timing.Confirm(o.clock, func() error {
			return o.discord.EditMessage(board, repeatSymbol(s.tun.CountdownSymbol))
		})
		if err != nil {
			return err
		}
		metrics.EditConfirmationSeconds.Observe(at.Sub(begin).Seconds())
		after = at
		return nil
	})
	g.Go(func() error {
		msg, err := o.discord.SendMessage(s.req.ChannelID, o.clock.Now().In(o.opts.Location).Format(targetLayout))
		if err != nil {
			return fmt.Errorf("%w: %w", ErrCaptureUnavailable, err)
		}
		s.target = &msg
		o.track(captureKey(msg.ChannelID, msg.ID), s.tun.ReactSymbol)
		o.bestEffort("seed react reaction", func() error { return o.discord.AddReaction(msg, s.tun.ReactSymbol) })
		return nil
	})
	g.Go(func() error {
		timer := o.clock.NewTimer(o.opts.CaptureWindow)
		defer timer.Stop()
		select {
		case <-timer.Chan():
		case <-gctx.Done():
		}
		return nil
	})
	err := g.Wait()

	var events []reaction.Event
	if s.target != nil {
		events = o.untrack(captureKey(s.target.ChannelID, s.target.ID))
	}
	if err != nil {
		return time.Time{}, nil, err
	}
	return after, events, nil
}

func (o *Orchestrator) track(key reaction.Key, symbol string) {
	o.mu.Lock()
	o.captures[key] = symbol
	o.mu.Unlock()
	o.store.BeginTracking(key)
	metrics.TrackedMessages.Set(float64(o.store.Tracked()))
}

func (o *Orchestrator) untrack(key reaction.Key) []reaction.Event {
	o.mu.Lock()
	delete(o.captures, key)
	o.mu.Unlock()
	events := o.store.Drain(key)
	metrics.TrackedMessages.Set(float64(o.store.Tracked()))
	return events
}

func (o *Orchestrator) persist(ctx context.Context, s *session) (time.Time, error) {
	for _, e := range s.out.Ranking {
		if err := o.repo.CreateScoreRecord(ctx, repository.ScoreRecord{
			ParticipantID:    e.ParticipantID,
			GameID:           s.game.ID,
			SignedOffset:     e.Offset,
			Score:            e.Score,
			AlgorithmVersion: scoring.AlgorithmVersion,
		}); err != nil {
			return time.Time{}, fmt.Errorf("failed to save score of %s: %w", e.ParticipantID, err)
		}
	}
	finishedAt := o.clock.Now()
	if err := o.repo.MarkGameFinished(ctx, s.game.ID, finishedAt); err != nil {
		return time.Time{}, fmt.Errorf("failed to mark game finished: %w", err)
	}
	return finishedAt, nil
}

// cleanup removes the transient messages and, when there is a game message, replaces its
// content with final.
func (o *Orchestrator) cleanup(s *session, final string) {
	for _, m := range []*discord.Message{s.mention, s.pre, s.target} {
		if m == nil {
			continue
		}
		msg := *m
		o.bestEffort("delete transient message", func() error { return o.discord.DeleteMessage(msg) })
	}
	s.mention, s.pre, s.target = nil, nil, nil
	if s.board != nil && final != "" {
		board := *s.board
		o.bestEffort("edit game message", func() error { return o.discord.EditMessage(board, final) })
	}
}

func (o *Orchestrator) abort(s *session, outcome string, err error) Outcome {
	s.out.enter(StateAborted)
	s.out.Err = err
	s.out.Ranking = nil
	metrics.GamesTotal.WithLabelValues(outcome).Inc()
	return s.out
}

func (o *Orchestrator) publish(ctx context.Context, s *session, finishedAt time.Time, entries []webhook.RankingEntry) {
	err := o.webhook.SendResult(ctx, webhook.ResultPayload{
		GameID:     s.game.ID.String(),
		GuildID:    s.req.GuildID,
		ChannelID:  s.req.ChannelID,
		StartedBy:  s.req.UserID,
		FinishedAt: finishedAt,
		Rankings:   entries,
	})
	if err != nil {
		slog.Warn("failed to send result webhook", "error", err, "game_id", s.game.ID)
	}
}

// bestEffort runs a cleanup step whose failure must not affect the session.
func (o *Orchestrator) bestEffort(op string, fn func() error) {
	if fn == nil {
		return
	}
	if err := fn(); err != nil {
		slog.Debug("best-effort operation failed", "op", op, "error", err)
	}
}

func (o *Orchestrator) displayName(guildID, userID string) string {
	if name := o.discord.MemberDisplayName(guildID, userID); name != "" {
		return name
	}
	return "<@" + userID + ">"
}

func captureKey(channelID, messageID string) reaction.Key {
	return reaction.Key{ThreadID: channelID, MessageID: messageID}
}

func eventFromReaction(event discord.ReactionEvent) reaction.Event {
	return reaction.Event{
		ArrivedAt:     event.ReceivedAt,
		ParticipantID: event.UserID,
		IsBot:         event.UserIsBot,
	}
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
