package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gamehub/station-server-go/internal/model"
)

type RateRepository interface {
	FindByID(ctx context.Context, id string) (*model.RateSetting, error)
	// FindActiveByCategory returns the most recently updated active rate for category.
	FindActiveByCategory(ctx context.Context, category model.RateCategory) (*model.RateSetting, error)
	FindActive(ctx context.Context, category *model.RateCategory) ([]model.RateSetting, error)
	Create(ctx context.Context, params model.CreateRateParams) (*model.RateSetting, error)
	Update(ctx context.Context, id string, params model.UpdateRateParams) (*model.RateSetting, error)
	Deactivate(ctx context.Context, id string) (bool, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) RateRepository
}

type rateRepo struct {
	db sqlxDB
}

const rateSelect = `
	SELECT r.*, u.username AS created_by_username
	FROM rate_settings r
	LEFT JOIN users u ON u.id = r.created_by
`

func NewRateRepository(db *sqlx.DB) RateRepository {
	return &rateRepo{db: db}
}

func (r *rateRepo) WithTx(tx *sqlx.Tx) RateRepository {
	return &rateRepo{db: tx}
}

func (r *rateRepo) FindByID(ctx context.Context, id string) (*model.RateSetting, error) {
	var rate model.RateSetting
	err := r.db.GetContext(ctx, &rate, rateSelect+`WHERE r.id = $1`, id)
	return HandleNotFound(&rate, err)
}

func (r *rateRepo) FindActiveByCategory(ctx context.Context, category model.RateCategory) (*model.RateSetting, error) {
	var rate model.RateSetting
	err := r.db.GetContext(ctx, &rate, rateSelect+`
		WHERE r.is_active AND r.station_type = $1
		ORDER BY r.updated_at DESC, r.created_at DESC
		LIMIT 1
	`, category)
	return HandleNotFound(&rate, err)
}

func (r *rateRepo) FindActive(ctx context.Context, category *model.RateCategory) ([]model.RateSetting, error) {
	var rates []model.RateSetting
	err := r.db.SelectContext(ctx, &rates, rateSelect+`
		WHERE r.is_active AND ($1::text IS NULL OR r.station_type = $1)
		ORDER BY r.updated_at DESC
	`, category)
	if err != nil {
		return nil, err
	}
	return rates, nil
}

func (r *rateRepo) Create(ctx context.Context, params model.CreateRateParams) (*model.RateSetting, error) {
	var id string
	err := r.db.GetContext(ctx, &id, `
		INSERT INTO rate_settings (hourly_rate, station_type, description, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`, params.HourlyRate, params.StationType, params.Description, params.CreatedBy)
	if err != nil {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *rateRepo) Update(ctx context.Context, id string, params model.UpdateRateParams) (*model.RateSetting, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rate_settings SET
			hourly_rate = COALESCE($2, hourly_rate),
			station_type = COALESCE($3, station_type),
			description = COALESCE($4, description),
			is_active = COALESCE($5, is_active),
			updated_at = $6
		WHERE id = $1
	`, id, params.HourlyRate, params.StationType, params.Description, params.IsActive, time.Now())
	if err != nil {
		return nil, err
	}
	if n, err := result.RowsAffected(); err != nil || n == 0 {
		return nil, err
	}
	return r.FindByID(ctx, id)
}

func (r *rateRepo) Deactivate(ctx context.Context, id string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE rate_settings SET is_active = FALSE, updated_at = $2
		WHERE id = $1
	`, id, time.Now())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}
