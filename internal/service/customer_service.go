package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/repository"
	"crm-backend/internal/sms"
	"crm-backend/internal/websocket"
	"crm-backend/pkg/phone"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// visitAlertThreshold is the visit count above which the owning admin gets an
// SMS alert. A post-increment count of 5 or more triggers it, never a creation.
const visitAlertThreshold = 4

type LocationRequest struct {
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
	Address   string          `json:"address"`
}

// CheckInRequest carries a visit. Location has no required tag: the zero
// value (lat 0, lng 0, empty address) is a legitimate reading and gin's
// required check would reject it as absent.
type CheckInRequest struct {
	Name        string          `json:"name" binding:"required"`
	PhoneNumber string          `json:"phone_number" binding:"required"`
	Location    LocationRequest `json:"location"`
}

// CustomerPatch is a typed partial update. A nil field is left untouched; an
// explicit JSON null decodes to nil and means the same. Address may be set to
// the empty string to clear it. visit_count is never part of a patch.
type CustomerPatch struct {
	Name        *string        `json:"name"`
	PhoneNumber *string        `json:"phone_number"`
	Location    *LocationPatch `json:"location"`
}

type LocationPatch struct {
	Latitude  *decimal.Decimal `json:"latitude"`
	Longitude *decimal.Decimal `json:"longitude"`
	Address   *string          `json:"address"`
}

type LocationResponse struct {
	Latitude  decimal.Decimal `json:"latitude"`
	Longitude decimal.Decimal `json:"longitude"`
	Address   string          `json:"address"`
}

type CustomerResponse struct {
	ID          uuid.UUID        `json:"id"`
	Name        string           `json:"name"`
	PhoneNumber string           `json:"phone_number"`
	Location    LocationResponse `json:"location"`
	AdminID     uuid.UUID        `json:"admin_id"`
	VisitCount  int              `json:"visit_count"`
	LastVisited string           `json:"last_visited"`
	CreatedAt   string           `json:"created_at"`
	UpdatedAt   string           `json:"updated_at"`
}

type CheckInResponse struct {
	Customer       CustomerResponse `json:"customer"`
	Created        bool             `json:"created"`
	AlertTriggered bool             `json:"alert_triggered"`
}

type StatsResponse struct {
	TotalCustomers   int64 `json:"total_customers"`
	MonthlyCustomers int64 `json:"monthly_customers"`
}

// CustomerService defines the business logic for the admin-scoped customer ledger
type CustomerService interface {
	CheckIn(ctx context.Context, adminID string, req CheckInRequest) (*CheckInResponse, error)
	ListForAdmin(ctx context.Context, adminID string) ([]CustomerResponse, error)
	GetForAdmin(ctx context.Context, id, adminID string) (*CustomerResponse, error)
	UpdateForAdmin(ctx context.Context, id, adminID string, patch CustomerPatch) (*CustomerResponse, error)
	DeleteForAdmin(ctx context.Context, id, adminID string) error
	StatsForAdmin(ctx context.Context, adminID string) (*StatsResponse, error)
}

type customerService struct {
	customers repository.CustomerRepository
	admins    repository.AdminRepository
	txManager repository.TransactionManager
	sender    sms.Sender
	hub       *websocket.Hub
}

// NewCustomerService returns a new instance of CustomerService. hub may be nil
// when no live feed is wired (tests, bootstrap).
func NewCustomerService(
	customers repository.CustomerRepository,
	admins repository.AdminRepository,
	txManager repository.TransactionManager,
	sender sms.Sender,
	hub *websocket.Hub,
) CustomerService {
	return &customerService{
		customers: customers,
		admins:    admins,
		txManager: txManager,
		sender:    sender,
		hub:       hub,
	}
}

func mapCustomer(customer *model.Customer) *CustomerResponse {
	return &CustomerResponse{
		ID:          customer.ID,
		Name:        customer.Name,
		PhoneNumber: customer.PhoneNumber,
		Location: LocationResponse{
			Latitude:  customer.Latitude,
			Longitude: customer.Longitude,
			Address:   customer.Address,
		},
		AdminID:     customer.AdminID,
		VisitCount:  customer.VisitCount,
		LastVisited: customer.LastVisited.Format(time.RFC3339),
		CreatedAt:   customer.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   customer.UpdatedAt.Format(time.RFC3339),
	}
}

// CheckIn records a customer visit: the first check-in for a (phone, admin)
// pair creates the record with visit count 1, every subsequent one increments
// the counter and refreshes the location. The lookup and the write run in one
// transaction with the row locked, and a racing first check-in that loses the
// insert is retried once so it lands as an increment.
func (s *customerService) CheckIn(ctx context.Context, adminID string, req CheckInRequest) (*CheckInResponse, error) {
	aid, err := uuid.Parse(adminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrCustomerNameRequired
	}

	normalized := phone.Normalize(req.PhoneNumber)
	if !phone.IsValid(normalized) {
		return nil, ErrInvalidPhoneNumber
	}

	var customer *model.Customer
	var created bool

	for attempt := 0; attempt < 2; attempt++ {
		err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
			existing, findErr := s.customers.GetByPhoneAndAdminForUpdate(txCtx, normalized, aid)
			if findErr == nil {
				updated, visitErr := s.customers.RecordVisit(
					txCtx, existing.ID,
					req.Location.Latitude, req.Location.Longitude, req.Location.Address,
					time.Now(),
				)
				if visitErr != nil {
					return fmt.Errorf("failed to record visit: %w", visitErr)
				}
				customer = updated
				created = false
				return nil
			}
			if !errors.Is(findErr, gorm.ErrRecordNotFound) {
				return fmt.Errorf("database error: %w", findErr)
			}

			fresh := &model.Customer{
				Name:        name,
				PhoneNumber: normalized,
				Latitude:    req.Location.Latitude,
				Longitude:   req.Location.Longitude,
				Address:     req.Location.Address,
				AdminID:     aid,
				VisitCount:  1,
				LastVisited: time.Now(),
			}
			if createErr := s.customers.Create(txCtx, fresh); createErr != nil {
				return createErr
			}
			customer = fresh
			created = true
			return nil
		})
		if err == nil {
			break
		}
		// Two concurrent first check-ins: the loser hits the unique
		// (phone_number, admin_id) index and reruns as an increment.
		if repository.IsUniqueViolation(err) && attempt == 0 {
			continue
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}

	alertTriggered := !created && customer.VisitCount > visitAlertThreshold
	if alertTriggered {
		s.notifyVisitAlert(ctx, customer)
	}

	eventType := websocket.EventCustomerCheckedIn
	if alertTriggered {
		eventType = websocket.EventVisitAlert
	}
	s.hub.Publish(websocket.CheckInEvent{
		Type:        eventType,
		CustomerID:  customer.ID.String(),
		Name:        customer.Name,
		PhoneNumber: customer.PhoneNumber,
		AdminID:     customer.AdminID.String(),
		VisitCount:  customer.VisitCount,
		Created:     created,
		At:          time.Now(),
	})

	return &CheckInResponse{
		Customer:       *mapCustomer(customer),
		Created:        created,
		AlertTriggered: alertTriggered,
	}, nil
}

// notifyVisitAlert texts the owning admin. Best-effort: failure is logged and
// never fails the enclosing check-in.
func (s *customerService) notifyVisitAlert(ctx context.Context, customer *model.Customer) {
	admin, err := s.admins.GetByID(ctx, customer.AdminID)
	if err != nil {
		log.Printf("visit alert skipped, failed to load admin %s: %v", customer.AdminID, err)
		return
	}

	body := fmt.Sprintf("Alert: Customer %s (%s) has visited %d times!",
		customer.Name, customer.PhoneNumber, customer.VisitCount)
	if result := s.sender.Send(ctx, admin.PhoneNumber, body); !result.Delivered {
		log.Printf("visit alert SMS not delivered to %s: %s", admin.PhoneNumber, result.Reason)
	}
}

func (s *customerService) ListForAdmin(ctx context.Context, adminID string) ([]CustomerResponse, error) {
	aid, err := uuid.Parse(adminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	customers, err := s.customers.ListByAdmin(ctx, aid)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}

	responses := make([]CustomerResponse, 0, len(customers))
	for i := range customers {
		responses = append(responses, *mapCustomer(&customers[i]))
	}
	return responses, nil
}

func (s *customerService) GetForAdmin(ctx context.Context, id, adminID string) (*CustomerResponse, error) {
	cid, aid, err := parseCustomerScope(id, adminID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByIDAndAdmin(ctx, cid, aid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return mapCustomer(customer), nil
}

func (s *customerService) UpdateForAdmin(ctx context.Context, id, adminID string, patch CustomerPatch) (*CustomerResponse, error) {
	cid, aid, err := parseCustomerScope(id, adminID)
	if err != nil {
		return nil, err
	}

	customer, err := s.customers.GetByIDAndAdmin(ctx, cid, aid)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCustomerNotFound
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	return applyCustomerPatch(ctx, s.customers, customer, patch)
}

func (s *customerService) DeleteForAdmin(ctx context.Context, id, adminID string) error {
	cid, aid, err := parseCustomerScope(id, adminID)
	if err != nil {
		return err
	}

	if _, err := s.customers.GetByIDAndAdmin(ctx, cid, aid); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCustomerNotFound
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.customers.Delete(ctx, cid)
}

func (s *customerService) StatsForAdmin(ctx context.Context, adminID string) (*StatsResponse, error) {
	aid, err := uuid.Parse(adminID)
	if err != nil {
		return nil, ErrAdminNotFound
	}

	total, err := s.customers.CountByAdmin(ctx, aid)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}

	now := time.Now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthly, err := s.customers.CountByAdminSince(ctx, aid, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly customers: %w", err)
	}

	return &StatsResponse{TotalCustomers: total, MonthlyCustomers: monthly}, nil
}

func parseCustomerScope(id, adminID string) (uuid.UUID, uuid.UUID, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrCustomerNotFound
	}
	aid, err := uuid.Parse(adminID)
	if err != nil {
		return uuid.Nil, uuid.Nil, ErrAdminNotFound
	}
	return cid, aid, nil
}

// applyCustomerPatch mutates only the fields present in the patch and
// persists the row. Shared by the admin-scoped and super-admin update paths.
// visit_count and last_visited are deliberately out of reach here.
func applyCustomerPatch(ctx context.Context, customers repository.CustomerRepository, customer *model.Customer, patch CustomerPatch) (*CustomerResponse, error) {
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return nil, ErrCustomerNameRequired
		}
		customer.Name = name
	}

	if patch.PhoneNumber != nil {
		normalized := phone.Normalize(*patch.PhoneNumber)
		if !phone.IsValid(normalized) {
			return nil, ErrInvalidPhoneNumber
		}
		customer.PhoneNumber = normalized
	}

	if patch.Location != nil {
		if patch.Location.Latitude != nil {
			customer.Latitude = *patch.Location.Latitude
		}
		if patch.Location.Longitude != nil {
			customer.Longitude = *patch.Location.Longitude
		}
		if patch.Location.Address != nil {
			customer.Address = *patch.Location.Address
		}
	}

	if err := customers.Update(ctx, customer); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, ErrCustomerPhoneExists
		}
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	return mapCustomer(customer), nil
}
