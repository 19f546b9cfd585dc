package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/gamehub/station-server-go/internal/model"
)

type StationRepository interface {
	FindAll(ctx context.Context) ([]model.StationView, error)
	FindByID(ctx context.Context, id string) (*model.StationView, error)
	// FindByIDForUpdate locks the station row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id string) (*model.Station, error)
	Create(ctx context.Context, params model.CreateStationParams) (*model.Station, error)
	Update(ctx context.Context, id string, patch model.StationPatch) (*model.Station, error)
	// Occupy binds sessionID to the station and marks it in use.
	Occupy(ctx context.Context, id string, sessionID string) error
	// Release frees the station if sessionID is still the bound session.
	Release(ctx context.Context, id string, sessionID string) (bool, error)
	Delete(ctx context.Context, id string) error
	CountByStatus(ctx context.Context) (map[model.StationStatus]int, error)
	// WithTx returns a new repository that uses the given transaction
	WithTx(tx *sqlx.Tx) StationRepository
}

type stationRepo struct {
	db sqlxDB
}

// stationRow is a station joined with the session bound to it.
type stationRow struct {
	model.Station
	CurrentPlayerID  *string    `db:"current_player_id"`
	CurrentStartTime *time.Time `db:"current_start_time"`
}

func (row stationRow) view() model.StationView {
	view := model.StationView{Station: row.Station}
	if row.CurrentSessionID != nil && row.CurrentPlayerID != nil && row.CurrentStartTime != nil {
		view.CurrentSession = &model.CurrentSessionInfo{
			PlayerID:  *row.CurrentPlayerID,
			StartTime: *row.CurrentStartTime,
		}
	}
	return view
}

const stationViewQuery = `
	SELECT st.*, s.player_id AS current_player_id, s.start_time AS current_start_time
	FROM stations st
	LEFT JOIN sessions s ON s.id = st.current_session_id
`

func NewStationRepository(db *sqlx.DB) StationRepository {
	return &stationRepo{db: db}
}

func (r *stationRepo) WithTx(tx *sqlx.Tx) StationRepository {
	return &stationRepo{db: tx}
}

func (r *stationRepo) FindAll(ctx context.Context) ([]model.StationView, error) {
	var rows []stationRow
	err := r.db.SelectContext(ctx, &rows, stationViewQuery+`
		ORDER BY st.name, st.created_at
	`)
	if err != nil {
		return nil, err
	}

	stations := make([]model.StationView, 0, len(rows))
	for _, row := range rows {
		stations = append(stations, row.view())
	}
	return stations, nil
}

func (r *stationRepo) FindByID(ctx context.Context, id string) (*model.StationView, error) {
	var row stationRow
	err := r.db.GetContext(ctx, &row, stationViewQuery+`
		WHERE st.id = $1
	`, id)
	found, err := HandleNotFound(&row, err)
	if err != nil || found == nil {
		return nil, err
	}
	view := found.view()
	return &view, nil
}

func (r *stationRepo) FindByIDForUpdate(ctx context.Context, id string) (*model.Station, error) {
	var station model.Station
	err := r.db.GetContext(ctx, &station, `
		SELECT * FROM stations WHERE id = $1 FOR UPDATE
	`, id)
	return HandleNotFound(&station, err)
}

func (r *stationRepo) Create(ctx context.Context, params model.CreateStationParams) (*model.Station, error) {
	var station model.Station
	err := r.db.GetContext(ctx, &station, `
		INSERT INTO stations (name, type, status)
		VALUES ($1, $2, $3)
		RETURNING *
	`, params.Name, params.Type, params.Status)
	if err != nil {
		return nil, err
	}
	return &station, nil
}

func (r *stationRepo) Update(ctx context.Context, id string, patch model.StationPatch) (*model.Station, error) {
	var station model.Station
	err := r.db.GetContext(ctx, &station, `
		UPDATE stations SET
			name = COALESCE($2, name),
			type = COALESCE($3, type),
			status = COALESCE($4, status),
			updated_at = $5
		WHERE id = $1
		RETURNING *
	`, id, patch.Name, patch.Type, patch.Status, time.Now())
	return HandleNotFound(&station, err)
}

func (r *stationRepo) Occupy(ctx context.Context, id string, sessionID string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE stations SET
			status = 'in_use',
			current_session_id = $2,
			updated_at = $3
		WHERE id = $1
	`, id, sessionID, time.Now())
	return err
}

func (r *stationRepo) Release(ctx context.Context, id string, sessionID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE stations SET
			status = 'available',
			current_session_id = NULL,
			updated_at = $3
		WHERE id = $1 AND current_session_id = $2
	`, id, sessionID, time.Now())
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	return n > 0, err
}

func (r *stationRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM stations WHERE id = $1`, id)
	return err
}

func (r *stationRepo) CountByStatus(ctx context.Context) (map[model.StationStatus]int, error) {
	var rows []struct {
		Status model.StationStatus `db:"status"`
		Count  int                 `db:"count"`
	}
	err := r.db.SelectContext(ctx, &rows, `
		SELECT status, COUNT(*) AS count FROM stations GROUP BY status
	`)
	if err != nil {
		return nil, err
	}

	counts := make(map[model.StationStatus]int, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}
