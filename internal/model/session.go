package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type Session struct {
	ID        string              `db:"id" json:"id"`
	PlayerID  string              `db:"player_id" json:"player_id"`
	StationID *string             `db:"station_id" json:"station_id"`
	StartTime time.Time           `db:"start_time" json:"start_time"`
	EndTime   *time.Time          `db:"end_time" json:"end_time"`
	Duration  *int                `db:"duration" json:"duration"`
	Cost      decimal.NullDecimal `db:"cost" json:"cost"`
	IsActive  bool                `db:"is_active" json:"is_active"`
}

type CreateSessionParams struct {
	PlayerID  string
	StationID *string
	StartTime time.Time
}

type CloseSessionParams struct {
	EndTime  time.Time
	Duration int
	Cost     decimal.Decimal
}

type SessionFilter struct {
	PlayerID *string
	// StartedFrom and StartedBefore bound start_time to one day when set.
	StartedFrom   *time.Time
	StartedBefore *time.Time
	Limit         int
	Offset        int
}
