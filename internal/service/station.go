package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/repository"
)

const maxStationNameLength = 100

// StationService owns station records. Occupancy is changed only by SessionService.
type StationService struct {
	tx          TxRunner
	stationRepo repository.StationRepository
	events      EventPublisher
}

func NewStationService(tx TxRunner, stationRepo repository.StationRepository, events EventPublisher) *StationService {
	return &StationService{
		tx:          tx,
		stationRepo: stationRepo,
		events:      events,
	}
}

func (s *StationService) List(ctx context.Context) ([]model.StationView, error) {
	stations, err := s.stationRepo.FindAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list stations: %w", err)
	}
	if stations == nil {
		stations = []model.StationView{}
	}
	return stations, nil
}

func (s *StationService) Get(ctx context.Context, id string) (*model.StationView, error) {
	station, err := s.stationRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find station: %w", err)
	}
	if station == nil {
		return nil, apperrors.NotFound("Station")
	}
	return station, nil
}

func (s *StationService) Create(ctx context.Context, params model.CreateStationParams) (*model.Station, error) {
	params.Name = strings.TrimSpace(params.Name)
	if params.Status == "" {
		params.Status = model.StationAvailable
	}

	fields := map[string]string{}
	validateStationFields(fields, &params.Name, &params.Type, &params.Status)
	if params.Name == "" {
		fields["name"] = "is required"
	}
	if params.Type == "" {
		fields["type"] = "is required"
	}
	if len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	station, err := s.stationRepo.Create(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("create station: %w", err)
	}

	log.Info().
		Str("stationId", station.ID).
		Str("name", station.Name).
		Str("type", string(station.Type)).
		Msg("station created")

	return station, nil
}

// Update applies patch. An occupied station keeps its type and status.
func (s *StationService) Update(ctx context.Context, id string, patch model.StationPatch) (*model.Station, error) {
	if patch.Name != nil {
		trimmed := strings.TrimSpace(*patch.Name)
		patch.Name = &trimmed
	}

	fields := map[string]string{}
	validateStationFields(fields, patch.Name, patch.Type, patch.Status)
	if len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	var (
		station       *model.Station
		statusChanged bool
	)
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		stations := s.stationRepo.WithTx(tx)

		current, err := stations.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("find station: %w", err)
		}
		if current == nil {
			return apperrors.NotFound("Station")
		}
		if current.Occupied() {
			if patch.Type != nil && *patch.Type != current.Type {
				return apperrors.StationOccupied()
			}
			if patch.Status != nil && *patch.Status != current.Status {
				return apperrors.StationOccupied()
			}
		}
		if patch.Empty() {
			station = current
			return nil
		}

		updated, err := stations.Update(ctx, id, patch)
		if err != nil {
			return fmt.Errorf("update station: %w", err)
		}
		if updated == nil {
			return apperrors.NotFound("Station")
		}
		statusChanged = updated.Status != current.Status
		station = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("stationId", station.ID).
		Str("status", string(station.Status)).
		Msg("station updated")

	if statusChanged {
		publishStationStatus(ctx, s.events, StationStatusEvent{
			StationID: station.ID,
			Status:    station.Status,
		})
	}

	return station, nil
}

// Delete removes a station that has no session bound to it. Its closed sessions are kept unbound.
func (s *StationService) Delete(ctx context.Context, id string) error {
	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		stations := s.stationRepo.WithTx(tx)

		current, err := stations.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("find station: %w", err)
		}
		if current == nil {
			return apperrors.NotFound("Station")
		}
		if current.Occupied() {
			return apperrors.StationOccupied()
		}
		if err := stations.Delete(ctx, id); err != nil {
			return fmt.Errorf("delete station: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Info().Str("stationId", id).Msg("station deleted")
	return nil
}

func validateStationFields(fields map[string]string, name *string, category *model.StationCategory, status *model.StationStatus) {
	if name != nil {
		if *name == "" {
			fields["name"] = "must not be blank"
		} else if len(*name) > maxStationNameLength {
			fields["name"] = fmt.Sprintf("must be at most %d characters", maxStationNameLength)
		}
	}
	if category != nil && *category != "" && !category.Valid() {
		fields["type"] = "must be one of console, PC"
	}
	if status != nil {
		switch {
		case !status.Valid():
			fields["status"] = "must be one of available, maintenance"
		case *status == model.StationInUse:
			fields["status"] = "in_use is set only by opening a session"
		}
	}
}
