package sale

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"clinicCommission/business/commission"
	"clinicCommission/domain"
	"clinicCommission/pkg/logger"
	"clinicCommission/pkg/metrics"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

var (
	ErrRepUnassigned = errors.New("sales rep has no commission plan assigned")
	ErrRepSuspended  = errors.New("sales rep is suspended")
)

type SaleRepository interface {
	Create(ctx context.Context, sale *domain.Sale) error
	FindByID(ctx context.Context, id uint) (domain.Sale, error)
	FindByExternalRef(ctx context.Context, externalRef string) (domain.Sale, error)
	MarkRefunded(ctx context.Context, id uint, refundedAt time.Time) error
}

type RepRepository interface {
	FindByID(ctx context.Context, id uint) (domain.SalesRep, error)
}

// PlanSource loads a plan with its rule lines, usually through the cache.
type PlanSource interface {
	GetPlanWithRules(ctx context.Context, planID uint) (domain.CommissionPlan, error)
}

// PlanCache is the cache-aside layer in front of PlanSource. Nil disables it.
type PlanCache interface {
	Get(ctx context.Context, planID uint) (domain.CommissionPlan, bool, error)
	Set(ctx context.Context, plan domain.CommissionPlan) error
}

type CommissionRepository interface {
	Create(ctx context.Context, c *domain.Commission) error
	FindBySaleID(ctx context.Context, saleID uint) (domain.Commission, error)
	Update(ctx context.Context, c *domain.Commission) error
}

type SaleService struct {
	saleRepo SaleRepository
	repRepo  RepRepository
	planSrc  PlanSource
	cache    PlanCache
	commRepo CommissionRepository
	policy   commission.Policy
}

func NewSaleService(
	saleRepo SaleRepository,
	repRepo RepRepository,
	planSrc PlanSource,
	cache PlanCache,
	commRepo CommissionRepository,
	policy commission.Policy,
) *SaleService {
	return &SaleService{
		saleRepo: saleRepo,
		repRepo:  repRepo,
		planSrc:  planSrc,
		cache:    cache,
		commRepo: commRepo,
		policy:   policy,
	}
}

// RecordSale persists a billing event and the commission it earns. Replays
// of the same external ref return the stored outcome instead of paying twice.
func (s *SaleService) RecordSale(ctx context.Context, sale domain.Sale) (domain.Sale, domain.Commission, error) {
	if sale.AmountCents <= 0 || len(sale.LineItems) == 0 {
		return domain.Sale{}, domain.Commission{}, commission.ErrInvalidSale
	}

	if sale.ExternalRef != "" {
		if existing, err := s.saleRepo.FindByExternalRef(ctx, sale.ExternalRef); err == nil && existing.ID > 0 {
			comm, err := s.commRepo.FindBySaleID(ctx, existing.ID)
			if err != nil {
				return domain.Sale{}, domain.Commission{}, err
			}
			return existing, comm, nil
		}
	}

	rep, err := s.repRepo.FindByID(ctx, sale.RepID)
	if err != nil {
		return domain.Sale{}, domain.Commission{}, err
	}
	if rep.Status != domain.RepStatusActive {
		return domain.Sale{}, domain.Commission{}, ErrRepSuspended
	}
	if rep.PlanID == nil {
		return domain.Sale{}, domain.Commission{}, ErrRepUnassigned
	}

	plan, err := s.loadPlan(ctx, *rep.PlanID)
	if err != nil {
		return domain.Sale{}, domain.Commission{}, err
	}

	sale.ClinicID = rep.ClinicID
	if sale.OccurredAt.IsZero() {
		sale.OccurredAt = time.Now()
	}
	if sale.PaymentSequenceNumber < 1 {
		sale.PaymentSequenceNumber = 1
	}

	// resolve before persisting anything, so a bad plan or sale leaves no
	// orphan rows behind
	started := time.Now()
	res, err := commission.ResolveWithPolicy(plan, plan.Rules, sale, time.Now(), s.policy)
	metrics.CommissionResolveLatency.Observe(time.Since(started).Seconds())
	if err != nil {
		logger.Error("Commission resolution failed", "error", err, "rep_id", sale.RepID, "plan_id", plan.ID)
		return domain.Sale{}, domain.Commission{}, err
	}

	if err := s.saleRepo.Create(ctx, &sale); err != nil {
		logger.Error("Failed to persist sale", "error", err)
		return domain.Sale{}, domain.Commission{}, err
	}

	comm, err := buildCommission(sale, plan.ID, res)
	if err != nil {
		return domain.Sale{}, domain.Commission{}, err
	}
	if err := s.commRepo.Create(ctx, &comm); err != nil {
		logger.Error("Failed to persist commission", "error", err, "sale_id", sale.ID)
		return domain.Sale{}, domain.Commission{}, err
	}

	metrics.CommissionResolvedTotal.WithLabelValues(res.Status).Inc()
	logger.Info("Sale recorded",
		"sale_id", sale.ID,
		"rep_id", sale.RepID,
		"gross_cents", res.GrossAmountCents,
		"status", res.Status,
	)
	return sale, comm, nil
}

// HandleRefund marks the sale refunded and re-resolves its commission, which
// flips it to CLAWED_BACK when the plan and timing call for it.
func (s *SaleService) HandleRefund(ctx context.Context, externalRef string, refundedAt time.Time) (domain.Commission, error) {
	sale, err := s.saleRepo.FindByExternalRef(ctx, externalRef)
	if err != nil {
		return domain.Commission{}, err
	}

	if sale.RefundedAt == nil {
		if err := s.saleRepo.MarkRefunded(ctx, sale.ID, refundedAt); err != nil {
			return domain.Commission{}, err
		}
		sale.RefundedAt = &refundedAt
	}

	comm, err := s.commRepo.FindBySaleID(ctx, sale.ID)
	if err != nil {
		return domain.Commission{}, err
	}

	plan, err := s.loadPlan(ctx, comm.PlanID)
	if err != nil {
		return domain.Commission{}, err
	}

	res, err := commission.ResolveWithPolicy(plan, plan.Rules, sale, time.Now(), s.policy)
	if err != nil {
		logger.Error("Refund re-resolution failed", "error", err, "sale_id", sale.ID)
		return domain.Commission{}, err
	}

	clawed := res.Status == domain.CommissionStatusClawedBack && comm.Status != domain.CommissionStatusClawedBack

	comm.Status = res.Status
	comm.NetAmountCents = res.NetAmountCents
	if err := s.commRepo.Update(ctx, &comm); err != nil {
		return domain.Commission{}, err
	}

	if clawed {
		metrics.CommissionClawbackTotal.Inc()
		logger.Info("Commission clawed back", "sale_id", sale.ID, "gross_cents", comm.GrossAmountCents)
	}
	return comm, nil
}

func (s *SaleService) loadPlan(ctx context.Context, planID uint) (domain.CommissionPlan, error) {
	if s.cache != nil {
		if plan, ok, err := s.cache.Get(ctx, planID); err == nil && ok {
			return plan, nil
		}
	}

	plan, err := s.planSrc.GetPlanWithRules(ctx, planID)
	if err != nil {
		return domain.CommissionPlan{}, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, plan); err != nil {
			logger.Warn("Failed to cache plan snapshot", "error", err, "plan_id", planID)
		}
	}
	return plan, nil
}

func buildCommission(sale domain.Sale, planID uint, res commission.Result) (domain.Commission, error) {
	breakdown, err := json.Marshal(res.Breakdown)
	if err != nil {
		return domain.Commission{}, err
	}

	return domain.Commission{
		UUID:             uuid.New(),
		ClinicID:         sale.ClinicID,
		SaleID:           sale.ID,
		RepID:            sale.RepID,
		PlanID:           planID,
		GrossAmountCents: res.GrossAmountCents,
		NetAmountCents:   res.NetAmountCents,
		Status:           res.Status,
		PayableAt:        res.PayableAt,
		AmbiguousMatch:   res.AmbiguousMatch,
		Breakdown:        datatypes.JSON(breakdown),
	}, nil
}
