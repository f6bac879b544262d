package game

import (
	"fmt"
	"strings"

	"github.com/foxseedlab/reactzero/internal/scoring"
	"github.com/foxseedlab/reactzero/internal/webhook"
)

// results renders the leaderboard shown in the game message and the entries sent to the
// result webhook.
func (o *Orchestrator) results(guildID string, ranking []scoring.Entry) (string, []webhook.RankingEntry) {
	if len(ranking) == 0 {
		return messageNoReactions, []webhook.RankingEntry{}
	}
	lines := make([]string, 0, len(ranking))
	entries := make([]webhook.RankingEntry, 0, len(ranking))
	for _, e := range ranking {
		name := o.displayName(guildID, e.ParticipantID)
		lines = append(lines, fmt.Sprintf(messageResultLineFormat, e.Rank, name, scoring.FormatOffset(e.Offset), e.Score))
		entries = append(entries, webhook.RankingEntry{
			Rank:        e.Rank,
			UserID:      e.ParticipantID,
			DisplayName: name,
			OffsetNS:    e.Offset.Nanoseconds(),
			Score:       e.Score,
		})
	}
	return strings.Join(lines, "\n"), entries
}
