package model

import (
	"time"
)

type Station struct {
	ID               string          `db:"id" json:"id"`
	Name             string          `db:"name" json:"name"`
	Type             StationCategory `db:"type" json:"type"`
	Status           StationStatus   `db:"status" json:"status"`
	CurrentSessionID *string         `db:"current_session_id" json:"-"`
	CreatedAt        time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time       `db:"updated_at" json:"updated_at"`
}

// Occupied reports whether a session is currently bound to the station.
func (s *Station) Occupied() bool {
	return s.CurrentSessionID != nil
}

// CurrentSessionInfo is the public summary of the session occupying a station.
type CurrentSessionInfo struct {
	PlayerID  string    `json:"player_id"`
	StartTime time.Time `json:"start_time"`
}

type StationView struct {
	Station
	CurrentSession *CurrentSessionInfo `json:"current_session"`
}

type CreateStationParams struct {
	Name   string          `json:"name"`
	Type   StationCategory `json:"type"`
	Status StationStatus   `json:"status"`
}

// StationPatch enumerates the station fields a PUT request may change.
type StationPatch struct {
	Name   *string          `json:"name"`
	Type   *StationCategory `json:"type"`
	Status *StationStatus   `json:"status"`
}

func (p StationPatch) Empty() bool {
	return p.Name == nil && p.Type == nil && p.Status == nil
}
