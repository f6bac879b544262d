package stats

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/reactzero/internal/repository"
)

// NameResolver maps a guild member id to a display name; empty when unknown.
type NameResolver interface {
	MemberDisplayName(guildID, userID string) string
}

type Service struct {
	repo  repository.StatsRepository
	names NameResolver
	loc   *time.Location
}

func NewService(repo repository.StatsRepository, names NameResolver, loc *time.Location) *Service {
	return &Service{repo: repo, names: names, loc: loc}
}

type PointsRequest struct {
	GuildID string
	UserID  string
	Date    string
}

type RankingRequest struct {
	GuildID string
	UserID  string
	Rank    int
	From    string
	To      string
}

// Points lists a user's scores for games that finished on the given day.
func (s *Service) Points(ctx context.Context, req PointsRequest) (string, error) {
	day, err := ParseDate(req.Date, s.loc)
	if err != nil {
		return "", err
	}
	entries, err := s.repo.ListUserPoints(ctx, repository.UserPointsQuery{
		GuildID: req.GuildID,
		UserID:  req.UserID,
		From:    day,
		To:      day.AddDate(0, 0, 1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list points: %w", err)
	}
	lines := []string{fmt.Sprintf("%s %s", s.names.MemberDisplayName(req.GuildID, req.UserID), day.Format(dayLayout))}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%s %d", s.entryTime(e, clockLayout), e.Score))
	}
	if len(entries) == 0 {
		lines = append(lines, messageNoRecords)
	}
	return strings.Join(lines, "\n"), nil
}

// Ranking lists the best scores starting at position Rank. When From is set without To the
// range covers that single day; To is inclusive.
func (s *Service) Ranking(ctx context.Context, req RankingRequest) (string, error) {
	rank := req.Rank
	if rank < 1 {
		rank = 1
	}
	q := repository.RankingQuery{
		GuildID: req.GuildID,
		UserID:  req.UserID,
		Offset:  rank - 1,
		Limit:   rankingPageSize,
	}
	if req.From != "" {
		from, err := ParseDate(req.From, s.loc)
		if err != nil {
			return "", err
		}
		to := from.AddDate(0, 0, 1)
		if req.To != "" {
			end, err := ParseDate(req.To, s.loc)
			if err != nil {
				return "", err
			}
			to = end.AddDate(0, 0, 1)
		}
		q.From = &from
		q.To = &to
	}
	entries, err := s.repo.ListRanking(ctx, q)
	if err != nil {
		return "", fmt.Errorf("failed to list ranking: %w", err)
	}

	header := "Ranking "
	if req.UserID != "" {
		if name := s.names.MemberDisplayName(req.GuildID, req.UserID); name != "" {
			header += name + " "
		}
	}
	if q.From != nil {
		header += q.From.Format(dayLayout) + " to " + q.To.Add(-time.Second).Format(dayLayout)
	}
	lines := []string{strings.TrimRight(header, " ") + ":"}
	for i, e := range entries {
		name := ""
		if req.UserID == "" {
			name = s.names.MemberDisplayName(req.GuildID, e.UserID)
		}
		lines = append(lines, fmt.Sprintf("%d位 %s %s %d", i+rank, name, s.entryTime(e, rankingClockLayout), e.Score))
	}
	if len(entries) == 0 {
		lines = append(lines, messageNoRecords)
	}
	return strings.Join(lines, "\n"), nil
}

// entryTime shows the finish time, or the creation time in parentheses for games that
// never completed.
func (s *Service) entryTime(e repository.PointEntry, layout string) string {
	if at, ok := e.Finish.FinishedAt(); ok {
		return at.In(s.loc).Format(layout)
	}
	return "(" + e.CreatedAt.In(s.loc).Format(layout) + ")"
}
