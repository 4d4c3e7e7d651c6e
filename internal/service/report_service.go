package service

import (
	"context"
	"fmt"
	"time"

	"kebutuhan-pln/internal/model"
	"kebutuhan-pln/internal/repository"

	"github.com/rs/zerolog"
)

// reportService implements ReportService.
type reportService struct {
	orderRepo repository.OrderRepository
	loc       *time.Location
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReportService creates a new report service. Years are taken in loc.
func NewReportService(orderRepo repository.OrderRepository, loc *time.Location, logger zerolog.Logger) ReportService {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{
		orderRepo: orderRepo,
		loc:       loc,
		logger:    logger.With().Str("service", "report").Logger(),
		now:       time.Now,
	}
}

func (s *reportService) Stats(ctx context.Context, actor model.Principal, year int) (*model.OrderStats, error) {
	if !actor.IsAdmin() {
		return nil, model.ErrForbidden
	}

	if year == 0 {
		year = s.now().In(s.loc).Year()
	}
	if year < 2000 || year > 9999 {
		return nil, model.NewDomainError(model.ErrCodeInvalidDate, fmt.Sprintf("Invalid year %d", year))
	}

	stats, err := s.orderRepo.Stats(ctx, year, s.loc)
	if err != nil {
		s.logger.Error().Err(err).Int("year", year).Msg("failed to compute order stats")
		return nil, fmt.Errorf("failed to compute order stats: %w", err)
	}

	return stats, nil
}
