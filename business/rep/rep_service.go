package rep

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"clinicCommission/domain"
	"clinicCommission/pkg/logger"
	"clinicCommission/pkg/utils"

	"github.com/go-playground/validator/v10"
	"github.com/pobyzaarif/goshortcute"
)

// RepRepository contract interface
type RepRepository interface {
	Create(ctx context.Context, rep *domain.SalesRep) error
	FindByID(ctx context.Context, id uint) (domain.SalesRep, error)
	FindByEmail(ctx context.Context, email string) (domain.SalesRep, error)
	Update(ctx context.Context, rep *domain.SalesRep) error
	AssignPlan(ctx context.Context, repID, planID uint) error
}

// PlanFinder checks a plan before it is assigned to a rep.
type PlanFinder interface {
	FindByID(ctx context.Context, clinicID, id uint) (domain.CommissionPlan, error)
}

type RepService struct {
	repRepo    RepRepository
	planFinder PlanFinder
	validate   *validator.Validate
	inviteKey  string
}

const inviteCodeTTL = 72 * time.Hour

func NewRepService(repRepo RepRepository, planFinder PlanFinder, validate *validator.Validate, inviteKey string) *RepService {
	return &RepService{
		repRepo:    repRepo,
		planFinder: planFinder,
		validate:   validate,
		inviteKey:  inviteKey,
	}
}

// NewInviteCode issues a clinic-bound registration code for a new rep.
// Code payload is "clinicID|expiresAtUnix", AES-CBC encrypted.
func (s *RepService) NewInviteCode(clinicID uint) (string, error) {
	expAt := time.Now().Add(inviteCodeTTL).Unix()
	payload := fmt.Sprintf("%d|%d", clinicID, expAt)

	encrypted, err := goshortcute.AESCBCEncrypt([]byte(payload), []byte(s.inviteKey))
	if err != nil {
		logger.Error("Failed to encrypt invite code", "error", err)
		return "", errors.New("failed to generate invite code")
	}

	return goshortcute.StringtoBase64Encode(encrypted), nil
}

func (s *RepService) parseInviteCode(code string) (uint, error) {
	decoded := goshortcute.StringtoBase64Decode(code)
	decrypted, err := goshortcute.AESCBCDecrypt([]byte(decoded), []byte(s.inviteKey))
	if err != nil {
		return 0, errors.New("invalid or expired invite code")
	}

	parts := strings.Split(decrypted, "|")
	if len(parts) != 2 {
		return 0, errors.New("invalid or expired invite code")
	}

	clinicID, err := strconv.ParseUint(parts[0], 10, 64)
	if err != nil {
		return 0, errors.New("invalid or expired invite code")
	}
	expAt, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || time.Now().After(time.Unix(expAt, 0)) {
		return 0, errors.New("invalid or expired invite code")
	}

	return uint(clinicID), nil
}

func (s *RepService) Register(ctx context.Context, rep *domain.SalesRep, inviteCode string) (domain.SalesRep, error) {
	if err := s.validate.Var(rep.Email, "required,email"); err != nil {
		return domain.SalesRep{}, errors.New("invalid email format")
	}
	if err := s.validate.Var(rep.Password, "required,min=6"); err != nil {
		return domain.SalesRep{}, errors.New("password must be at least 6 characters")
	}

	clinicID, err := s.parseInviteCode(inviteCode)
	if err != nil {
		return domain.SalesRep{}, err
	}

	existing, err := s.repRepo.FindByEmail(ctx, rep.Email)
	if err == nil && existing.ID > 0 {
		return domain.SalesRep{}, errors.New("email already exists")
	}

	passwordHash, err := utils.HashPassword(rep.Password)
	if err != nil {
		logger.Error("Failed to hash rep password", "error", err)
		return domain.SalesRep{}, errors.New("failed to hash password")
	}

	newRep := domain.SalesRep{
		ClinicID: clinicID,
		FullName: rep.FullName,
		Email:    rep.Email,
		Password: string(passwordHash),
		Status:   domain.RepStatusActive,
	}

	if err := s.repRepo.Create(ctx, &newRep); err != nil {
		logger.Error("Failed to create sales rep", "error", err)
		return domain.SalesRep{}, err
	}

	logger.Info("Sales rep registered", "rep_id", newRep.ID, "clinic_id", clinicID)
	newRep.Password = ""
	return newRep, nil
}

func (s *RepService) Login(ctx context.Context, email, password string) (string, domain.SalesRep, error) {
	rep, err := s.repRepo.FindByEmail(ctx, email)
	if err != nil {
		return "", domain.SalesRep{}, errors.New("invalid credentials")
	}

	if !utils.CheckPassword(password, rep.Password) {
		return "", domain.SalesRep{}, errors.New("invalid credentials")
	}

	if rep.Status != domain.RepStatusActive {
		return "", domain.SalesRep{}, errors.New("account is suspended")
	}

	repIDStr := strconv.FormatUint(uint64(rep.ID), 10)
	token, err := utils.GenerateJWT(repIDStr, domain.RoleRep, rep.ClinicID)
	if err != nil {
		logger.Error("Failed to generate token", "error", err)
		return "", domain.SalesRep{}, errors.New("failed to generate token")
	}

	rep.Password = ""
	return token, rep, nil
}

// AssignPlan points the rep at a commission plan; the plan must belong to
// the same clinic and still be active.
func (s *RepService) AssignPlan(ctx context.Context, clinicID, repID, planID uint) error {
	rep, err := s.repRepo.FindByID(ctx, repID)
	if err != nil {
		return err
	}
	if rep.ClinicID != clinicID {
		return errors.New("rep not found")
	}

	plan, err := s.planFinder.FindByID(ctx, clinicID, planID)
	if err != nil {
		return err
	}
	if !plan.IsActive {
		return errors.New("cannot assign an inactive plan")
	}

	if err := s.repRepo.AssignPlan(ctx, repID, planID); err != nil {
		logger.Error("Failed to assign plan", "error", err, "rep_id", repID, "plan_id", planID)
		return err
	}

	logger.Info("Plan assigned to rep", "rep_id", repID, "plan_id", planID)
	return nil
}

func (s *RepService) Suspend(ctx context.Context, clinicID, repID uint) error {
	rep, err := s.repRepo.FindByID(ctx, repID)
	if err != nil {
		return err
	}
	if rep.ClinicID != clinicID {
		return errors.New("rep not found")
	}

	rep.Status = domain.RepStatusSuspended
	return s.repRepo.Update(ctx, &rep)
}

func (s *RepService) GetRep(ctx context.Context, clinicID, repID uint) (domain.SalesRep, error) {
	rep, err := s.repRepo.FindByID(ctx, repID)
	if err != nil {
		return domain.SalesRep{}, err
	}
	if rep.ClinicID != clinicID {
		return domain.SalesRep{}, errors.New("rep not found")
	}

	rep.Password = ""
	return rep, nil
}
