package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type RateSetting struct {
	ID                string          `db:"id" json:"id"`
	HourlyRate        decimal.Decimal `db:"hourly_rate" json:"hourly_rate"`
	StationType       RateCategory    `db:"station_type" json:"station_type"`
	Description       *string         `db:"description" json:"description"`
	CreatedBy         *string         `db:"created_by" json:"created_by"`
	CreatedByUsername *string         `db:"created_by_username" json:"created_by_username"`
	CreatedAt         time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time       `db:"updated_at" json:"updated_at"`
	IsActive          bool            `db:"is_active" json:"is_active"`
}

type CreateRateParams struct {
	HourlyRate  decimal.Decimal
	StationType RateCategory
	Description *string
	CreatedBy   *string
}

// RateInput is the body accepted when creating or updating a rate setting.
type RateInput struct {
	HourlyRate  *decimal.Decimal `json:"hourly_rate"`
	StationType *RateCategory    `json:"station_type"`
	Description *string          `json:"description"`
	IsActive    *bool            `json:"is_active"`
}

type UpdateRateParams struct {
	HourlyRate  *decimal.Decimal
	StationType *RateCategory
	Description *string
	IsActive    *bool
}
