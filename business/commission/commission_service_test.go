package commission

import (
	"context"
	"errors"
	"testing"
	"time"

	"clinicCommission/domain"
)

type fakeCommissionRepo struct {
	released   int64
	releaseErr error
	lastClinic uint
	summary    domain.CommissionSummary
}

func (r *fakeCommissionRepo) FindBySaleID(ctx context.Context, saleID uint) (domain.Commission, error) {
	return domain.Commission{SaleID: saleID}, nil
}

func (r *fakeCommissionRepo) ListByRep(ctx context.Context, repID uint) ([]domain.Commission, error) {
	return []domain.Commission{{RepID: repID}}, nil
}

func (r *fakeCommissionRepo) ReleaseDue(ctx context.Context, clinicID uint, now time.Time) (int64, error) {
	r.lastClinic = clinicID
	return r.released, r.releaseErr
}

func (r *fakeCommissionRepo) SummaryByRep(ctx context.Context, repID uint) (domain.CommissionSummary, error) {
	return r.summary, nil
}

func TestReleaseDue(t *testing.T) {
	repo := &fakeCommissionRepo{released: 3}
	svc := NewService(repo)

	released, err := svc.ReleaseDue(context.Background(), 5)
	if err != nil {
		t.Fatalf("ReleaseDue: %v", err)
	}
	if released != 3 {
		t.Errorf("released = %d, want 3", released)
	}
	if repo.lastClinic != 5 {
		t.Errorf("clinic_id = %d, sweep must stay clinic-scoped", repo.lastClinic)
	}
}

func TestReleaseDueError(t *testing.T) {
	repo := &fakeCommissionRepo{releaseErr: errors.New("db down")}
	svc := NewService(repo)

	if _, err := svc.ReleaseDue(context.Background(), 5); err == nil {
		t.Errorf("repository failure must surface")
	}
}

func TestRepSummary(t *testing.T) {
	repo := &fakeCommissionRepo{summary: domain.CommissionSummary{RepID: 2, TotalNetCents: 4200}}
	svc := NewService(repo)

	summary, err := svc.RepSummary(context.Background(), 2)
	if err != nil {
		t.Fatalf("RepSummary: %v", err)
	}
	if summary.TotalNetCents != 4200 {
		t.Errorf("total_net = %d, want 4200", summary.TotalNetCents)
	}
}
