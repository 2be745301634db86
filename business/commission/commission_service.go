package commission

import (
	"context"
	"time"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"
	"clinicCommission/pkg/metrics"
)

// Repository is the persistence contract for resolved commissions.
type Repository interface {
	FindBySaleID(ctx context.Context, saleID uint) (domain.Commission, error)
	ListByRep(ctx context.Context, repID uint) ([]domain.Commission, error)
	ReleaseDue(ctx context.Context, clinicID uint, now time.Time) (int64, error)
	SummaryByRep(ctx context.Context, repID uint) (domain.CommissionSummary, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetForSale(ctx context.Context, saleID uint) (domain.Commission, error) {
	return s.repo.FindBySaleID(ctx, saleID)
}

func (s *Service) ListByRep(ctx context.Context, repID uint) ([]domain.Commission, error) {
	return s.repo.ListByRep(ctx, repID)
}

// ReleaseDue flips PENDING commissions whose hold has elapsed to PAYABLE.
// Run from the admin sweep endpoint or a scheduler.
func (s *Service) ReleaseDue(ctx context.Context, clinicID uint) (int64, error) {
	released, err := s.repo.ReleaseDue(ctx, clinicID, time.Now())
	if err != nil {
		logger.Error("Failed to release due commissions", "error", err, "clinic_id", clinicID)
		return 0, err
	}

	if released > 0 {
		metrics.CommissionReleasedTotal.Add(float64(released))
		logger.Info("Released due commissions", "clinic_id", clinicID, "count", released)
	}
	return released, nil
}

func (s *Service) RepSummary(ctx context.Context, repID uint) (domain.CommissionSummary, error) {
	return s.repo.SummaryByRep(ctx, repID)
}
