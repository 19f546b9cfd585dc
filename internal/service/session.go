package service

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/billing"
	"github.com/gamehub/station-server-go/internal/database"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/metrics"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/repository"
)

const activeSessionIndex = "sessions_one_active_per_player"

// SessionService drives the session lifecycle: open binds a player to an available
// station, close bills the elapsed time and releases the station.
type SessionService struct {
	tx          TxRunner
	userRepo    repository.UserRepository
	stationRepo repository.StationRepository
	sessionRepo repository.SessionRepository
	rates       RateResolver
	events      EventPublisher
	now         clock
}

func NewSessionService(
	tx TxRunner,
	userRepo repository.UserRepository,
	stationRepo repository.StationRepository,
	sessionRepo repository.SessionRepository,
	rates RateResolver,
	events EventPublisher,
) *SessionService {
	return &SessionService{
		tx:          tx,
		userRepo:    userRepo,
		stationRepo: stationRepo,
		sessionRepo: sessionRepo,
		rates:       rates,
		events:      events,
		now:         time.Now,
	}
}

// Open starts a session for playerID on stationID.
// Preconditions are checked in order: participant role, station availability, no other active session.
func (s *SessionService) Open(ctx context.Context, playerID, stationID string) (*model.Session, error) {
	var (
		session  *model.Session
		category model.StationCategory
	)

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		users := s.userRepo.WithTx(tx)
		stations := s.stationRepo.WithTx(tx)
		sessions := s.sessionRepo.WithTx(tx)

		player, err := users.FindByIDForUpdate(ctx, playerID)
		if err != nil {
			return fmt.Errorf("find player: %w", err)
		}
		if player == nil {
			return apperrors.NotFound("Player")
		}
		if player.Role != model.RolePlayer {
			return apperrors.InvalidParticipant()
		}

		station, err := stations.FindByIDForUpdate(ctx, stationID)
		if err != nil {
			return fmt.Errorf("find station: %w", err)
		}
		if station == nil {
			return apperrors.StationUnavailable("station does not exist")
		}
		if station.Status != model.StationAvailable || station.Occupied() {
			return apperrors.StationUnavailable(fmt.Sprintf("status is %s", station.Status))
		}

		active, err := sessions.CountActiveByPlayer(ctx, playerID)
		if err != nil {
			return fmt.Errorf("count active sessions: %w", err)
		}
		if active > 0 {
			return apperrors.DuplicateActiveSession()
		}

		created, err := sessions.Create(ctx, model.CreateSessionParams{
			PlayerID:  playerID,
			StationID: &station.ID,
			StartTime: s.now(),
		})
		if err != nil {
			if database.IsUniqueViolation(err, activeSessionIndex) {
				return apperrors.DuplicateActiveSession()
			}
			return fmt.Errorf("create session: %w", err)
		}

		if err := stations.Occupy(ctx, station.ID, created.ID); err != nil {
			return fmt.Errorf("occupy station: %w", err)
		}

		session = created
		category = station.Type
		return nil
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	metrics.SessionsOpened.WithLabelValues(string(category)).Inc()

	log.Info().
		Str("sessionId", session.ID).
		Str("playerId", playerID).
		Str("stationId", stationID).
		Time("startTime", session.StartTime).
		Msg("session opened")

	publishStationStatus(ctx, s.events, StationStatusEvent{
		StationID: stationID,
		Status:    model.StationInUse,
		SessionID: &session.ID,
		PlayerID:  &session.PlayerID,
	})

	return session, nil
}

// Close ends an active session, bills it and releases its station.
func (s *SessionService) Close(ctx context.Context, id string) (*model.Session, error) {
	var (
		session       *model.Session
		releasedID    string
		categoryLabel = metrics.CategoryUnbound
	)

	err := s.tx.WithTx(ctx, func(tx *sqlx.Tx) error {
		stations := s.stationRepo.WithTx(tx)
		sessions := s.sessionRepo.WithTx(tx)

		current, err := sessions.FindByIDForUpdate(ctx, id)
		if err != nil {
			return fmt.Errorf("find session: %w", err)
		}
		if current == nil {
			return apperrors.NotFound("Session")
		}
		if !current.IsActive {
			return apperrors.AlreadyClosed()
		}

		category := model.RateCategoryAll
		var station *model.Station
		if current.StationID != nil {
			station, err = stations.FindByIDForUpdate(ctx, *current.StationID)
			if err != nil {
				return fmt.Errorf("find station: %w", err)
			}
			if station != nil {
				category = model.RateCategory(station.Type)
				categoryLabel = string(station.Type)
			}
		}

		rate, err := s.rates.Resolve(ctx, category)
		if err != nil {
			return fmt.Errorf("resolve rate: %w", err)
		}

		end := s.now()
		minutes := billing.DurationMinutes(current.StartTime, end)
		closed, err := sessions.Close(ctx, id, model.CloseSessionParams{
			EndTime:  end,
			Duration: minutes,
			Cost:     billing.Cost(rate, minutes),
		})
		if err != nil {
			return fmt.Errorf("close session: %w", err)
		}
		if closed == nil {
			return apperrors.AlreadyClosed()
		}

		if station != nil {
			released, err := stations.Release(ctx, station.ID, id)
			if err != nil {
				return fmt.Errorf("release station: %w", err)
			}
			if released {
				releasedID = station.ID
			}
		}

		session = closed
		return nil
	})
	if err != nil {
		recordRejection(err)
		return nil, err
	}

	cost := session.Cost.Decimal
	metrics.ObserveClose(categoryLabel, *session.Duration, cost)

	log.Info().
		Str("sessionId", session.ID).
		Str("playerId", session.PlayerID).
		Int("duration", *session.Duration).
		Str("cost", cost.StringFixed(2)).
		Msg("session closed")

	if releasedID != "" {
		log.Info().Str("stationId", releasedID).Str("sessionId", session.ID).Msg("station released")
		publishStationStatus(ctx, s.events, StationStatusEvent{
			StationID: releasedID,
			Status:    model.StationAvailable,
		})
	}

	return session, nil
}

// Get returns a session visible to actor. Players only see their own sessions.
func (s *SessionService) Get(ctx context.Context, actor model.Actor, id string) (*model.Session, error) {
	session, err := s.sessionRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find session: %w", err)
	}
	if session == nil || (!actor.IsStaff() && session.PlayerID != actor.UserID) {
		return nil, apperrors.NotFound("Session")
	}
	return session, nil
}

// List returns sessions newest first. Players are restricted to their own sessions.
func (s *SessionService) List(ctx context.Context, actor model.Actor, filter model.SessionFilter) ([]model.Session, error) {
	if !actor.IsStaff() {
		filter.PlayerID = &actor.UserID
	}
	sessions, err := s.sessionRepo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	if sessions == nil {
		sessions = []model.Session{}
	}
	return sessions, nil
}

func recordRejection(err error) {
	switch code := apperrors.GetCode(err); code {
	case apperrors.ErrCodeInvalidParticipant,
		apperrors.ErrCodeStationUnavailable,
		apperrors.ErrCodeDuplicateActiveSession,
		apperrors.ErrCodeAlreadyClosed,
		apperrors.ErrCodeNotFound:
		metrics.SessionRejections.WithLabelValues(string(code)).Inc()
	}
}
