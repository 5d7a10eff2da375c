package service

import (
	"context"
	"time"

	"linklytics-be/internal/models"
	"linklytics-be/internal/repository"
)

// AnalyticsService answers the dashboard queries for one link. Every call
// first re-verifies that the short code belongs to the caller through the
// combined code+owner predicate, so foreign links read as not found.
type AnalyticsService interface {
	Summary(ctx context.Context, shortCode, userID string, days int) (*models.Summary, error)
	Timeseries(ctx context.Context, shortCode, userID string, days int) ([]models.TimeseriesPoint, error)
	Devices(ctx context.Context, shortCode, userID string, days int) ([]models.Breakdown, error)
	UTMBreakdown(ctx context.Context, shortCode, userID string, days int, utmField string) ([]models.Breakdown, error)
	Locations(ctx context.Context, shortCode, userID string, days int) ([]models.LocationRow, error)
	Referrers(ctx context.Context, shortCode, userID string, days int) ([]models.Breakdown, error)
}

type analyticsService struct {
	urlRepo   repository.URLRepository
	clickRepo repository.ClickRepository
}

// NewAnalyticsService creates a new analytics service
func NewAnalyticsService(urlRepo repository.URLRepository, clickRepo repository.ClickRepository) AnalyticsService {
	return &analyticsService{urlRepo: urlRepo, clickRepo: clickRepo}
}

// windowStart verifies ownership and returns the start of the query window.
func (s *analyticsService) windowStart(ctx context.Context, shortCode, userID string, days int) (time.Time, error) {
	if _, err := s.urlRepo.FindByOwner(ctx, shortCode, userID); err != nil {
		return time.Time{}, err
	}
	if days < 1 {
		days = 1
	}
	return time.Now().UTC().AddDate(0, 0, -days), nil
}

func (s *analyticsService) Summary(ctx context.Context, shortCode, userID string, days int) (*models.Summary, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Summary(ctx, shortCode, since)
}

func (s *analyticsService) Timeseries(ctx context.Context, shortCode, userID string, days int) ([]models.TimeseriesPoint, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Timeseries(ctx, shortCode, since)
}

func (s *analyticsService) Devices(ctx context.Context, shortCode, userID string, days int) ([]models.Breakdown, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Devices(ctx, shortCode, since)
}

func (s *analyticsService) UTMBreakdown(ctx context.Context, shortCode, userID string, days int, utmField string) ([]models.Breakdown, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.UTMBreakdown(ctx, shortCode, since, utmField)
}

func (s *analyticsService) Locations(ctx context.Context, shortCode, userID string, days int) ([]models.LocationRow, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Locations(ctx, shortCode, since)
}

func (s *analyticsService) Referrers(ctx context.Context, shortCode, userID string, days int) ([]models.Breakdown, error) {
	since, err := s.windowStart(ctx, shortCode, userID, days)
	if err != nil {
		return nil, err
	}
	return s.clickRepo.Referrers(ctx, shortCode, since)
}
