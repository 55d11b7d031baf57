package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm-backend/internal/middleware"
	"crm-backend/internal/repository"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type SuperAdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type SuperAdminResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
}

type SuperAdminAuthResponse struct {
	Token      string             `json:"token"`
	SuperAdmin SuperAdminResponse `json:"super_admin"`
}

// AdminOverviewResponse decorates an admin with its ledger counts for the
// platform-wide admin list.
type AdminOverviewResponse struct {
	AdminResponse
	CustomerCount int64 `json:"customer_count"`
	MonthlyCount  int64 `json:"monthly_count"`
}

type AdminDetailResponse struct {
	Admin          AdminResponse      `json:"admin"`
	Customers      []CustomerResponse `json:"customers"`
	TotalCustomers int64              `json:"total_customers"`
	MonthlyCount   int64              `json:"monthly_count"`
}

// AdminSummary is the owning-admin info attached to platform-wide customer rows.
type AdminSummary struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	PhoneNumber string    `json:"phone_number"`
}

type CustomerWithAdminResponse struct {
	CustomerResponse
	Admin AdminSummary `json:"admin"`
}

// SuperAdminService defines the platform-wide management surface. It bypasses
// ownership scoping: any admin's customers can be inspected, edited or removed.
type SuperAdminService interface {
	Login(ctx context.Context, req SuperAdminLoginRequest) (*SuperAdminAuthResponse, error)
	ListAdmins(ctx context.Context) ([]AdminOverviewResponse, error)
	GetAdminDetail(ctx context.Context, id string) (*AdminDetailResponse, error)
	DeleteAdmin(ctx context.Context, id string) error
	ListCustomers(ctx context.Context, page, limit int) ([]CustomerWithAdminResponse, int64, error)
	UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (*CustomerResponse, error)
	DeleteCustomer(ctx context.Context, id string) error
}

type superAdminService struct {
	superAdmins repository.SuperAdminRepository
	admins      repository.AdminRepository
	customers   repository.CustomerRepository
	txManager   repository.TransactionManager
}

// NewSuperAdminService returns a new instance of SuperAdminService
func NewSuperAdminService(
	superAdmins repository.SuperAdminRepository,
	admins repository.AdminRepository,
	customers repository.CustomerRepository,
	txManager repository.TransactionManager,
) SuperAdminService {
	return &superAdminService{
		superAdmins: superAdmins,
		admins:      admins,
		customers:   customers,
		txManager:   txManager,
	}
}

func (s *superAdminService) Login(ctx context.Context, req SuperAdminLoginRequest) (*SuperAdminAuthResponse, error) {
	superAdmin, err := s.superAdmins.GetByUsername(ctx, req.Username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(superAdmin.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := middleware.GenerateToken(superAdmin.ID, middleware.RoleSuperAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &SuperAdminAuthResponse{
		Token: token,
		SuperAdmin: SuperAdminResponse{
			ID:       superAdmin.ID,
			Username: superAdmin.Username,
		},
	}, nil
}

func (s *superAdminService) ListAdmins(ctx context.Context) ([]AdminOverviewResponse, error) {
	admins, err := s.admins.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())

	responses := make([]AdminOverviewResponse, 0, len(admins))
	for i := range admins {
		total, err := s.customers.CountByAdmin(ctx, admins[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count customers: %w", err)
		}
		monthly, err := s.customers.CountByAdminSince(ctx, admins[i].ID, monthStart)
		if err != nil {
			return nil, fmt.Errorf("failed to count monthly customers: %w", err)
		}
		responses = append(responses, AdminOverviewResponse{
			AdminResponse: *mapAdmin(&admins[i]),
			CustomerCount: total,
			MonthlyCount:  monthly,
		})
	}
	return responses, nil
}

func (s *superAdminService) GetAdminDetail(ctx context.Context, id string) (*AdminDetailResponse, error) {
	aid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	admin, err := s.admins.GetByID(ctx, aid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAdminNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	customers, err := s.customers.ListByAdmin(ctx, aid)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.customers.CountByAdminSince(ctx, aid, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly customers: %w", err)
	}

	customerResponses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		customerResponses = append(customerResponses, *mapCustomer(&customers[i]))
	}

	return &AdminDetailResponse{
		Admin:          *mapAdmin(admin),
		Customers:      customerResponses,
		TotalCustomers: int64(len(customers)),
		MonthlyCount:   monthly,
	}, nil
}

// DeleteAdmin removes the admin and all owned customers in one transaction.
// The customers.admin_id FK cascade backs this up at the storage layer.
func (s *superAdminService) DeleteAdmin(ctx context.Context, id string) error {
	aid, err := uuid.Parse(id)
	if err != nil {
		return ErrAdminNotFound
	}

	if _, err := s.admins.GetByID(ctx, aid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrAdminNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.customers.DeleteByAdmin(txCtx, aid); err != nil {
			return fmt.Errorf("failed to delete customers: %w", err)
		}
		if err := s.admins.Delete(txCtx, aid); err != nil {
			return fmt.Errorf("failed to delete admin: %w", err)
		}
		return nil
	})
}

func (s *superAdminService) ListCustomers(ctx context.Context, page, limit int) ([]CustomerWithAdminResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 50
	}

	customers, total, err := s.customers.ListAll(ctx, (page-1)*limit, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list customers: %w", err)
	}

	responses := make([]CustomerWithAdminResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, CustomerWithAdminResponse{
			CustomerResponse: *mapCustomer(&customers[i]),
			Admin: AdminSummary{
				ID:          customers[i].Admin.ID,
				Name:        customers[i].Admin.Name,
				PhoneNumber: customers[i].Admin.PhoneNumber,
			},
		})
	}
	return responses, total, nil
}

func (s *superAdminService) UpdateCustomer(ctx context.Context, id string, patch CustomerPatch) (*CustomerResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrCustomerNotFound
	}

	// No ownership scoping here: the super admin edits any admin's customer
	customer, err := s.customers.GetByID(ctx, cid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return applyCustomerPatch(ctx, s.customers, customer, patch)
}

func (s *superAdminService) DeleteCustomer(ctx context.Context, id string) error {
	cid, err := uuid.Parse(id)
	if err != nil {
		return ErrCustomerNotFound
	}

	if _, err := s.customers.GetByID(ctx, cid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.customers.Delete(ctx, cid)
}
