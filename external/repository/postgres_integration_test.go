//go:build integration

package repository

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var testPool *pgxpool.Pool

func TestMain(m *testing.M) {
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("reactzero"),
		postgres.WithUsername("testuser"),
		postgres.WithPassword("testpass"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second)),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to start postgres container: %v\n", err)
		os.Exit(1)
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to get connection string: %v\n", err)
		os.Exit(1)
	}
	testPool, err = pgxpool.New(ctx, connStr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to connect: %v\n", err)
		os.Exit(1)
	}
	if err := RunMigration(ctx, testPool); err != nil {
		fmt.Fprintf(os.Stderr, "failed to migrate: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()

	testPool.Close()
	if err := container.Terminate(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "failed to terminate postgres container: %v\n", err)
	}
	os.Exit(code)
}

func setupRepo(t *testing.T) *PostgresRepository {
	t.Helper()
	t.Cleanup(func() {
		_, err := testPool.Exec(context.Background(), `TRUNCATE points, games, guilds, settings`)
		require.NoError(t, err)
	})
	return &PostgresRepository{pool: testPool}
}

func TestRunMigration_IsIdempotent(t *testing.T) {
	require.NoError(t, RunMigration(context.Background(), testPool))
}

func TestGameLifecycle(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Microsecond)

	require.NoError(t, repo.UpsertGuild(ctx, "guild-1"))
	require.NoError(t, repo.UpsertGuild(ctx, "guild-1"))

	game, err := repo.CreateGame(ctx, repository.CreateGameInput{GuildID: "guild-1", StartedBy: "user-1", CreatedAt: now})
	require.NoError(t, err)
	assert.Nil(t, game.StartedAt)
	assert.False(t, game.Finish.IsCompleted())

	require.NoError(t, repo.MarkGameStarted(ctx, game.ID, now.Add(time.Second)))
	require.NoError(t, repo.CreateScoreRecord(ctx, repository.ScoreRecord{
		ParticipantID:    "user-2",
		GameID:           game.ID,
		SignedOffset:     -50 * time.Millisecond,
		Score:            200,
		AlgorithmVersion: 1,
	}))
	require.NoError(t, repo.MarkGameFinished(ctx, game.ID, now.Add(20*time.Second)))

	got, err := repo.GetGame(ctx, game.ID)
	require.NoError(t, err)
	require.NotNil(t, got.StartedAt)
	finishedAt, ok := got.Finish.FinishedAt()
	require.True(t, ok)
	assert.True(t, finishedAt.Equal(now.Add(20*time.Second)))

	points, err := repo.ListUserPoints(ctx, repository.UserPointsQuery{
		GuildID: "guild-1",
		UserID:  "user-2",
		From:    now,
		To:      now.Add(time.Hour),
	})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, int64(200), points[0].Score)
	assert.Equal(t, -50*time.Millisecond, points[0].SignedOffset)
}

func TestMarkGameStarted_UnknownGame(t *testing.T) {
	repo := setupRepo(t)
	missing := uuid.New()
	game, err := repo.GetGame(context.Background(), missing)
	require.NoError(t, err)
	assert.Nil(t, game)
	assert.Error(t, repo.MarkGameStarted(context.Background(), missing, time.Now()))
}

func TestListRanking_FiltersAndPaginates(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Now().UTC()
	require.NoError(t, repo.UpsertGuild(ctx, "guild-1"))
	game, err := repo.CreateGame(ctx, repository.CreateGameInput{GuildID: "guild-1", StartedBy: "user-1", CreatedAt: now})
	require.NoError(t, err)
	for i, user := range []string{"a", "b", "c"} {
		require.NoError(t, repo.CreateScoreRecord(ctx, repository.ScoreRecord{
			ParticipantID: user, GameID: game.ID, Score: int64(100 * (i + 1)), AlgorithmVersion: 1,
		}))
	}
	require.NoError(t, repo.MarkGameFinished(ctx, game.ID, now))

	top, err := repo.ListRanking(ctx, repository.RankingQuery{GuildID: "guild-1", Limit: 2})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, "c", top[0].UserID)
	assert.Equal(t, "b", top[1].UserID)

	rest, err := repo.ListRanking(ctx, repository.RankingQuery{GuildID: "guild-1", Limit: 10, Offset: 2})
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, "a", rest[0].UserID)

	future := now.Add(time.Hour)
	none, err := repo.ListRanking(ctx, repository.RankingQuery{GuildID: "guild-1", From: &future, Limit: 10})
	require.NoError(t, err)
	assert.Empty(t, none)

	onlyB, err := repo.ListRanking(ctx, repository.RankingQuery{GuildID: "guild-1", UserID: "b", Limit: 10})
	require.NoError(t, err)
	require.Len(t, onlyB, 1)
}

func TestSettings_Upsert(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.UpsertSetting(ctx, "react_symbol", "🔴"))
	require.NoError(t, repo.UpsertSetting(ctx, "react_symbol", "🟢"))

	got, err := repo.ListSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"react_symbol": "🟢"}, got)
}
