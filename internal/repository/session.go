package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gamehub/station-server-go/internal/model"
)

type SessionRepository interface {
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// FindByIDForUpdate locks the session row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Session, error)
	CountActiveByPlayer(ctx context.Context, playerID string) (int, error)
	CountActive(ctx context.Context) (int, error)
	Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error)
	// Close records the end of an active session. Returns nil when the session is not active.
	Close(ctx context.Context, id string, params model.CloseSessionParams) (*model.Session, error)
	List(ctx context.Context, filter model.SessionFilter) ([]model.Session, error)
	// FindClosedBetween returns closed sessions whose end_time falls in [from, to).
	FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.Session, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) SessionRepository
}

type sessionRepo struct {
	db sqlxDB
}

func NewSessionRepository(db *sqlx.DB) SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) WithTx(tx *sqlx.Tx) SessionRepository {
	return &sessionRepo{db: tx}
}

func (r *sessionRepo) FindByID(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		SELECT * FROM sessions WHERE id = $1 FOR UPDATE
	`, id)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) CountActiveByPlayer(ctx context.Context, playerID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM sessions WHERE player_id = $1 AND is_active
	`, playerID)
	return count, err
}

func (r *sessionRepo) CountActive(ctx context.Context) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM sessions WHERE is_active`)
	return count, err
}

func (r *sessionRepo) Create(ctx context.Context, params model.CreateSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		INSERT INTO sessions (player_id, station_id, start_time)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.PlayerID, params.StationID, params.StartTime)
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *sessionRepo) Close(ctx context.Context, id string, params model.CloseSessionParams) (*model.Session, error) {
	var session model.Session
	err := r.db.GetContext(ctx, &session, `
		UPDATE sessions SET
			end_time = $2,
			duration = $3,
			cost = $4,
			is_active = FALSE
		WHERE id = $1 AND is_active
		RETURNING *
	`, id, params.EndTime, params.Duration, params.Cost)
	return HandleNotFound(&session, err)
}

func (r *sessionRepo) List(ctx context.Context, filter model.SessionFilter) ([]model.Session, error) {
	var (
		conditions []string
		args       []interface{}
	)
	if filter.PlayerID != nil {
		args = append(args, *filter.PlayerID)
		conditions = append(conditions, fmt.Sprintf("player_id = $%d", len(args)))
	}
	if filter.StartedFrom != nil {
		args = append(args, *filter.StartedFrom)
		conditions = append(conditions, fmt.Sprintf("start_time >= $%d", len(args)))
	}
	if filter.StartedBefore != nil {
		args = append(args, *filter.StartedBefore)
		conditions = append(conditions, fmt.Sprintf("start_time < $%d", len(args)))
	}

	query := `SELECT * FROM sessions`
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY start_time DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	var sessions []model.Session
	if err := r.db.SelectContext(ctx, &sessions, query, args...); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *sessionRepo) FindClosedBetween(ctx context.Context, from, to time.Time) ([]model.Session, error) {
	var sessions []model.Session
	err := r.db.SelectContext(ctx, &sessions, `
		SELECT * FROM sessions
		WHERE NOT is_active AND end_time >= $1 AND end_time < $2
		ORDER BY end_time
	`, from, to)
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
