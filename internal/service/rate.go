package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/repository"
)

// RateResolver returns the hourly rate billed for a rate category.
type RateResolver interface {
	Resolve(ctx context.Context, category model.RateCategory) (decimal.Decimal, error)
}

type RateService struct {
	rateRepo    repository.RateRepository
	defaultRate decimal.Decimal
}

func NewRateService(rateRepo repository.RateRepository, defaultRate decimal.Decimal) *RateService {
	return &RateService{
		rateRepo:    rateRepo,
		defaultRate: defaultRate,
	}
}

// Resolve picks the active rate for category, then the active "all" rate, then the default rate.
// An error is returned only when the store cannot be read.
func (s *RateService) Resolve(ctx context.Context, category model.RateCategory) (decimal.Decimal, error) {
	candidates := []model.RateCategory{category}
	if category != model.RateCategoryAll {
		candidates = append(candidates, model.RateCategoryAll)
	}

	for _, c := range candidates {
		rate, err := s.rateRepo.FindActiveByCategory(ctx, c)
		if err != nil {
			return decimal.Decimal{}, fmt.Errorf("find active rate for %s: %w", c, err)
		}
		if rate != nil {
			return rate.HourlyRate, nil
		}
	}
	return s.defaultRate, nil
}

// CurrentRates resolves every rate category.
func (s *RateService) CurrentRates(ctx context.Context) (map[model.RateCategory]decimal.Decimal, error) {
	rates := make(map[model.RateCategory]decimal.Decimal, len(model.RateCategories))
	for _, c := range model.RateCategories {
		rate, err := s.Resolve(ctx, c)
		if err != nil {
			return nil, err
		}
		rates[c] = rate
	}
	return rates, nil
}

func (s *RateService) List(ctx context.Context, category *model.RateCategory) ([]model.RateSetting, error) {
	if category != nil && !category.Valid() {
		return nil, apperrors.InvalidInput("station_type", "must be one of console, PC, all")
	}
	rates, err := s.rateRepo.FindActive(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list rates: %w", err)
	}
	if rates == nil {
		rates = []model.RateSetting{}
	}
	return rates, nil
}

func (s *RateService) Get(ctx context.Context, id string) (*model.RateSetting, error) {
	rate, err := s.rateRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("find rate: %w", err)
	}
	if rate == nil {
		return nil, apperrors.NotFound("Rate setting")
	}
	return rate, nil
}

func (s *RateService) Create(ctx context.Context, actor model.Actor, input model.RateInput) (*model.RateSetting, error) {
	if input.HourlyRate == nil {
		return nil, apperrors.FieldErrors(map[string]string{"hourly_rate": "is required"})
	}
	category := model.RateCategoryAll
	if input.StationType != nil {
		category = *input.StationType
	}
	if fields := validateRate(input.HourlyRate, &category); len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	createdBy := actor.UserID
	rate, err := s.rateRepo.Create(ctx, model.CreateRateParams{
		HourlyRate:  *input.HourlyRate,
		StationType: category,
		Description: input.Description,
		CreatedBy:   &createdBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create rate: %w", err)
	}

	log.Info().
		Str("rateId", rate.ID).
		Str("stationType", string(rate.StationType)).
		Str("hourlyRate", rate.HourlyRate.StringFixed(2)).
		Str("createdBy", actor.UserID).
		Msg("rate setting created")

	return rate, nil
}

func (s *RateService) Update(ctx context.Context, id string, input model.RateInput) (*model.RateSetting, error) {
	if fields := validateRate(input.HourlyRate, input.StationType); len(fields) > 0 {
		return nil, apperrors.FieldErrors(fields)
	}

	rate, err := s.rateRepo.Update(ctx, id, model.UpdateRateParams{
		HourlyRate:  input.HourlyRate,
		StationType: input.StationType,
		Description: input.Description,
		IsActive:    input.IsActive,
	})
	if err != nil {
		return nil, fmt.Errorf("update rate: %w", err)
	}
	if rate == nil {
		return nil, apperrors.NotFound("Rate setting")
	}

	log.Info().
		Str("rateId", rate.ID).
		Str("hourlyRate", rate.HourlyRate.StringFixed(2)).
		Bool("isActive", rate.IsActive).
		Msg("rate setting updated")

	return rate, nil
}

// Deactivate soft-deletes a rate setting. Costs already billed with it are unchanged.
func (s *RateService) Deactivate(ctx context.Context, id string) error {
	ok, err := s.rateRepo.Deactivate(ctx, id)
	if err != nil {
		return fmt.Errorf("deactivate rate: %w", err)
	}
	if !ok {
		return apperrors.NotFound("Rate setting")
	}

	log.Info().Str("rateId", id).Msg("rate setting deactivated")
	return nil
}

func validateRate(hourlyRate *decimal.Decimal, category *model.RateCategory) map[string]string {
	fields := map[string]string{}
	if hourlyRate != nil && !hourlyRate.IsPositive() {
		fields["hourly_rate"] = "must be greater than zero"
	}
	if hourlyRate != nil && hourlyRate.Exponent() < -2 {
		fields["hourly_rate"] = "must have at most 2 decimal places"
	}
	if category != nil && !category.Valid() {
		fields["station_type"] = "must be one of console, PC, all"
	}
	return fields
}
