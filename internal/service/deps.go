package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/database"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/sse"
)

// TxRunner runs fn inside a single database transaction. *database.DB satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn database.TxFunc) error
}

// EventPublisher broadcasts live events. *sse.Broker satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, event sse.Event) error
}

// StationStatusEvent is the payload of a station_status event.
type StationStatusEvent struct {
	StationID string              `json:"station_id"`
	Status    model.StationStatus `json:"status"`
	SessionID *string             `json:"session_id,omitempty"`
	PlayerID  *string             `json:"player_id,omitempty"`
}

func publishStationStatus(ctx context.Context, publisher EventPublisher, payload StationStatusEvent) {
	if publisher == nil {
		return
	}
	event, err := sse.NewEvent(sse.EventStationStatus, payload)
	if err != nil {
		log.Error().Err(err).Str("stationId", payload.StationID).Msg("failed to encode station event")
		return
	}
	if err := publisher.Publish(ctx, sse.StationTopic, event); err != nil {
		log.Warn().Err(err).Str("stationId", payload.StationID).Msg("failed to publish station event")
	}
}

type clock func() time.Time
