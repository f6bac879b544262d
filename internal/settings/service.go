package settings

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/foxseedlab/reactzero/internal/repository"
)

var (
	ErrUnknownKey   = errors.New("unknown setting key")
	ErrNotAdmin     = errors.New("only bot administrators can change settings")
	ErrInvalidValue = errors.New("invalid setting value")
)

// Service serves tunables snapshots and applies admin changes.
// Readers always get a whole snapshot; a reload swaps it atomically.
type Service struct {
	repo    repository.SettingRepository
	admins  map[string]struct{}
	current atomic.Pointer[Tunables]
}

func NewService(repo repository.SettingRepository, adminUserIDs []string) *Service {
	admins := make(map[string]struct{}, len(adminUserIDs))
	for _, id := range adminUserIDs {
		admins[id] = struct{}{}
	}
	s := &Service{repo: repo, admins: admins}
	defaults := Defaults()
	s.current.Store(&defaults)
	return s
}

func (s *Service) Snapshot() Tunables {
	return *s.current.Load()
}

func (s *Service) Reload(ctx context.Context) error {
	rows, err := s.repo.ListSettings(ctx)
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}
	t := FromRows(rows)
	s.current.Store(&t)
	slog.Info("settings reloaded", "rows", len(rows), "calibration_offset_ns", t.CalibrationOffset.Nanoseconds(), "max_participants", t.MaxParticipants)
	return nil
}

func (s *Service) IsAdmin(userID string) bool {
	_, ok := s.admins[userID]
	return ok
}

func (s *Service) Get(key string) (string, error) {
	v, ok := s.Snapshot().Value(key)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return v, nil
}

// Set validates and stores value for key on behalf of userID, then reloads.
// It returns the rendered value before and after the change.
func (s *Service) Set(ctx context.Context, userID, key, value string) (string, string, error) {
	def, ok := definitions[key]
	if !ok {
		return "", "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if !s.IsAdmin(userID) {
		return "", "", ErrNotAdmin
	}
	before, _ := s.Snapshot().Value(key)
	normalized, err := def.normalize(value)
	if err != nil {
		return before, "", err
	}
	if err := s.repo.UpsertSetting(ctx, key, normalized); err != nil {
		return before, "", fmt.Errorf("failed to store setting %s: %w", key, err)
	}
	if err := s.Reload(ctx); err != nil {
		return before, "", err
	}
	after, _ := s.Snapshot().Value(key)
	slog.Info("setting changed", "key", key, "before", before, "after", after, "user_id", userID)
	return before, after, nil
}
