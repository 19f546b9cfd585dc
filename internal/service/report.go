package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/gamehub/station-server-go/internal/billing"
	apperrors "github.com/gamehub/station-server-go/internal/errors"
	"github.com/gamehub/station-server-go/internal/model"
	"github.com/gamehub/station-server-go/internal/repository"
	"github.com/gamehub/station-server-go/internal/util"
)

// maxReportDays bounds the inclusive span of a report.
const maxReportDays = 366

// ReportService aggregates closed sessions per calendar day of the report location.
type ReportService struct {
	sessionRepo repository.SessionRepository
	loc         *time.Location
}

func NewReportService(sessionRepo repository.SessionRepository, loc *time.Location) *ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ReportService{
		sessionRepo: sessionRepo,
		loc:         loc,
	}
}

// dateRange is an inclusive span of calendar days.
type dateRange struct {
	start time.Time
	end   time.Time
}

func (r dateRange) days() []time.Time {
	var days []time.Time
	for d := r.start; !d.After(r.end); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}

func (s *ReportService) parseRange(startDate, endDate string) (dateRange, error) {
	if startDate == "" || endDate == "" {
		return dateRange{}, apperrors.InvalidDateRange("start_date and end_date are required")
	}
	start, err := util.ParseDate(startDate, s.loc)
	if err != nil {
		return dateRange{}, apperrors.InvalidDateRange("start_date must be formatted as YYYY-MM-DD")
	}
	end, err := util.ParseDate(endDate, s.loc)
	if err != nil {
		return dateRange{}, apperrors.InvalidDateRange("end_date must be formatted as YYYY-MM-DD")
	}
	if start.After(end) {
		return dateRange{}, apperrors.InvalidDateRange("start_date must not be after end_date")
	}
	if start.AddDate(0, 0, maxReportDays-1).Before(end) {
		return dateRange{}, apperrors.InvalidDateRange(fmt.Sprintf("date range must not exceed %d days", maxReportDays))
	}
	return dateRange{start: start, end: end}, nil
}

// closedSessions returns the sessions closed within r grouped by end day.
func (s *ReportService) closedSessions(ctx context.Context, r dateRange) (map[string][]model.Session, int, error) {
	sessions, err := s.sessionRepo.FindClosedBetween(ctx, r.start, r.end.AddDate(0, 0, 1))
	if err != nil {
		return nil, 0, fmt.Errorf("find closed sessions: %w", err)
	}

	byDay := make(map[string][]model.Session)
	for _, session := range sessions {
		if session.EndTime == nil {
			continue
		}
		day := session.EndTime.In(s.loc).Format(util.DateLayout)
		byDay[day] = append(byDay[day], session)
	}
	return byDay, len(sessions), nil
}

func (s *ReportService) Revenue(ctx context.Context, startDate, endDate string) (*model.RevenueReport, error) {
	r, err := s.parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	byDay, _, err := s.closedSessions(ctx, r)
	if err != nil {
		return nil, err
	}

	total := decimal.Zero
	details := make([]model.RevenueDay, 0, len(byDay))
	for _, d := range r.days() {
		key := d.Format(util.DateLayout)
		revenue := decimal.Zero
		for _, session := range byDay[key] {
			if session.Cost.Valid {
				revenue = revenue.Add(session.Cost.Decimal)
			}
		}
		total = total.Add(revenue)
		details = append(details, model.RevenueDay{
			Date:    key,
			Revenue: revenue.InexactFloat64(),
		})
	}

	return &model.RevenueReport{
		TotalRevenue: total.InexactFloat64(),
		Details:      details,
	}, nil
}

func (s *ReportService) Usage(ctx context.Context, startDate, endDate string) (*model.UsageReport, error) {
	r, err := s.parseRange(startDate, endDate)
	if err != nil {
		return nil, err
	}
	byDay, total, err := s.closedSessions(ctx, r)
	if err != nil {
		return nil, err
	}

	var totalMinutes int64
	details := make([]model.UsageDay, 0, len(byDay))
	for _, d := range r.days() {
		key := d.Format(util.DateLayout)
		var minutes int64
		for _, session := range byDay[key] {
			if session.Duration != nil {
				minutes += int64(*session.Duration)
			}
		}
		totalMinutes += minutes
		count := len(byDay[key])
		details = append(details, model.UsageDay{
			Date:            key,
			SessionsCount:   count,
			AverageDuration: billing.Average(decimal.NewFromInt(minutes), count).InexactFloat64(),
		})
	}

	return &model.UsageReport{
		TotalSessions:   total,
		AverageDuration: billing.Average(decimal.NewFromInt(totalMinutes), total).InexactFloat64(),
		Details:         details,
	}, nil
}
