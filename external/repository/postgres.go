package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foxseedlab/reactzero/internal/repository"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepository struct {
	pool *pgxpool.Pool
}

func NewPostgresRepository(pool *pgxpool.Pool) repository.Repository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) UpsertGuild(ctx context.Context, guildID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO guilds (id) VALUES ($1) ON CONFLICT (id) DO NOTHING`,
		guildID)
	return err
}

func (r *PostgresRepository) CreateGame(ctx context.Context, input repository.CreateGameInput) (*repository.Game, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO games (id, guild_id, started_by, created_at)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, guild_id, started_by, created_at, started_at, finished_at`,
		uuid.New(), input.GuildID, input.StartedBy, input.CreatedAt)
	return scanGame(row)
}

func (r *PostgresRepository) MarkGameStarted(ctx context.Context, gameID uuid.UUID, at time.Time) error {
	return r.execOne(ctx, `UPDATE games SET started_at = $2 WHERE id = $1`, gameID, at)
}

func (r *PostgresRepository) MarkGameFinished(ctx context.Context, gameID uuid.UUID, at time.Time) error {
	return r.execOne(ctx, `UPDATE games SET finished_at = $2 WHERE id = $1`, gameID, at)
}

func (r *PostgresRepository) CreateScoreRecord(ctx context.Context, record repository.ScoreRecord) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO points (game_id, user_id, point, raw_time_ns, algorithm_version)
		 VALUES ($1, $2, $3, $4, $5)`,
		record.GameID, record.ParticipantID, record.Score, record.SignedOffset.Nanoseconds(), record.AlgorithmVersion)
	return err
}

func (r *PostgresRepository) GetGame(ctx context.Context, gameID uuid.UUID) (*repository.Game, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, guild_id, started_by, created_at, started_at, finished_at
		 FROM games WHERE id = $1`,
		gameID)
	g, err := scanGame(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return g, nil
}

func (r *PostgresRepository) ListUserPoints(ctx context.Context, q repository.UserPointsQuery) ([]repository.PointEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT p.user_id, p.point, p.raw_time_ns, g.id, g.created_at, g.finished_at
		 FROM points p JOIN games g ON g.id = p.game_id
		 WHERE p.user_id = $1 AND g.guild_id = $2
		   AND g.finished_at >= $3 AND g.finished_at <= $4
		 ORDER BY g.finished_at ASC`,
		q.UserID, q.GuildID, q.From, q.To)
	if err != nil {
		return nil, err
	}
	return collectPointEntries(rows)
}

func (r *PostgresRepository) ListRanking(ctx context.Context, q repository.RankingQuery) ([]repository.PointEntry, error) {
	where := []string{"g.guild_id = $1"}
	args := []any{q.GuildID}
	if q.UserID != "" {
		args = append(args, q.UserID)
		where = append(where, fmt.Sprintf("p.user_id = $%d", len(args)))
	}
	if q.From != nil {
		args = append(args, *q.From)
		where = append(where, fmt.Sprintf("g.finished_at >= $%d", len(args)))
	}
	if q.To != nil {
		args = append(args, *q.To)
		where = append(where, fmt.Sprintf("g.finished_at <= $%d", len(args)))
	}
	args = append(args, q.Limit, q.Offset)
	sql := fmt.Sprintf(
		`SELECT p.user_id, p.point, p.raw_time_ns, g.id, g.created_at, g.finished_at
		 FROM points p JOIN games g ON g.id = p.game_id
		 WHERE %s
		 ORDER BY p.point DESC, p.id ASC
		 LIMIT $%d OFFSET $%d`,
		strings.Join(where, " AND "), len(args)-1, len(args))
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return collectPointEntries(rows)
}

func (r *PostgresRepository) ListSettings(ctx context.Context) (map[string]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT key, value FROM settings`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (r *PostgresRepository) UpsertSetting(ctx context.Context, key, value string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO settings (key, value) VALUES ($1, $2)
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, value)
	return err
}

func (r *PostgresRepository) execOne(ctx context.Context, sql string, args ...any) error {
	tag, err := r.pool.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("expected one row to be updated, got %d", tag.RowsAffected())
	}
	return nil
}

func scanGame(row pgx.Row) (*repository.Game, error) {
	var g repository.Game
	var startedAt, finishedAt *time.Time
	if err := row.Scan(&g.ID, &g.GuildID, &g.StartedBy, &g.CreatedAt, &startedAt, &finishedAt); err != nil {
		return nil, err
	}
	g.StartedAt = startedAt
	g.Finish = completionOf(finishedAt)
	return &g, nil
}

func collectPointEntries(rows pgx.Rows) ([]repository.PointEntry, error) {
	defer rows.Close()
	var list []repository.PointEntry
	for rows.Next() {
		var e repository.PointEntry
		var rawNS int64
		var finishedAt *time.Time
		if err := rows.Scan(&e.UserID, &e.Score, &rawNS, &e.GameID, &e.CreatedAt, &finishedAt); err != nil {
			return nil, err
		}
		e.SignedOffset = time.Duration(rawNS)
		e.Finish = completionOf(finishedAt)
		list = append(list, e)
	}
	return list, rows.Err()
}

func completionOf(finishedAt *time.Time) repository.Completion {
	if finishedAt == nil {
		return repository.Pending()
	}
	return repository.Completed(*finishedAt)
}
