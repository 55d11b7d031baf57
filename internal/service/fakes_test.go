package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"crm-backend/internal/model"
	"crm-backend/internal/sms"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// In-memory repository fakes mirroring the Postgres-backed implementations,
// including the unique-violation behavior the services rely on.

func uniqueViolation() error {
	return &pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"}
}

type fakeTxManager struct{}

func (fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	return fn(ctx)
}

type fakeAdminRepo struct {
	mu     sync.Mutex
	admins map[uuid.UUID]model.Admin
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: make(map[uuid.UUID]model.Admin)}
}

func (r *fakeAdminRepo) Create(_ context.Context, admin *model.Admin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.PhoneNumber == admin.PhoneNumber {
			return uniqueViolation()
		}
	}
	if admin.ID == uuid.Nil {
		admin.ID = uuid.New()
	}
	now := time.Now()
	admin.CreatedAt = now
	admin.UpdatedAt = now
	r.admins[admin.ID] = *admin
	return nil
}

func (r *fakeAdminRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.admins[id]; ok {
		cp := a
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) GetByPhone(_ context.Context, phoneNumber string) (*model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.admins {
		if a.PhoneNumber == phoneNumber {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAdminRepo) List(_ context.Context) ([]model.Admin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	admins := make([]model.Admin, 0, len(r.admins))
	for _, a := range r.admins {
		admins = append(admins, a)
	}
	sort.Slice(admins, func(i, j int) bool { return admins[i].CreatedAt.After(admins[j].CreatedAt) })
	return admins, nil
}

func (r *fakeAdminRepo) UpdatePassword(_ context.Context, id uuid.UUID, hashedPassword string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.admins[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.Password = hashedPassword
	a.UpdatedAt = time.Now()
	r.admins[id] = a
	return nil
}

func (r *fakeAdminRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.admins, id)
	return nil
}

type fakeSuperAdminRepo struct {
	mu     sync.Mutex
	supers map[uuid.UUID]model.SuperAdmin
}

func newFakeSuperAdminRepo() *fakeSuperAdminRepo {
	return &fakeSuperAdminRepo{supers: make(map[uuid.UUID]model.SuperAdmin)}
}

func (r *fakeSuperAdminRepo) Create(_ context.Context, superAdmin *model.SuperAdmin) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.supers {
		if s.Username == superAdmin.Username {
			return uniqueViolation()
		}
	}
	if superAdmin.ID == uuid.Nil {
		superAdmin.ID = uuid.New()
	}
	r.supers[superAdmin.ID] = *superAdmin
	return nil
}

func (r *fakeSuperAdminRepo) GetByID(_ context.Context, id uuid.UUID) (*model.SuperAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.supers[id]; ok {
		cp := s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeSuperAdminRepo) GetByUsername(_ context.Context, username string) (*model.SuperAdmin, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.supers {
		if s.Username == username {
			cp := s
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

type fakeCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]model.Customer
}

func newFakeCustomerRepo() *fakeCustomerRepo {
	return &fakeCustomerRepo{customers: make(map[uuid.UUID]model.Customer)}
}

func (r *fakeCustomerRepo) Create(_ context.Context, customer *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.PhoneNumber == customer.PhoneNumber && c.AdminID == customer.AdminID {
			return uniqueViolation()
		}
	}
	if customer.ID == uuid.Nil {
		customer.ID = uuid.New()
	}
	now := time.Now()
	if customer.CreatedAt.IsZero() {
		customer.CreatedAt = now
	}
	customer.UpdatedAt = now
	r.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) GetByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		cp := c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) GetByIDAndAdmin(_ context.Context, id, adminID uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok && c.AdminID == adminID {
		cp := c
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) GetByPhoneAndAdminForUpdate(_ context.Context, phoneNumber string, adminID uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.customers {
		if c.PhoneNumber == phoneNumber && c.AdminID == adminID {
			cp := c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeCustomerRepo) RecordVisit(_ context.Context, id uuid.UUID, lat, lng decimal.Decimal, address string, visitedAt time.Time) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	c.VisitCount++
	c.Latitude = lat
	c.Longitude = lng
	c.Address = address
	c.LastVisited = visitedAt
	c.UpdatedAt = time.Now()
	r.customers[id] = c
	cp := c
	return &cp, nil
}

func (r *fakeCustomerRepo) Update(_ context.Context, customer *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.customers {
		if id != customer.ID && c.PhoneNumber == customer.PhoneNumber && c.AdminID == customer.AdminID {
			return uniqueViolation()
		}
	}
	customer.UpdatedAt = time.Now()
	r.customers[customer.ID] = *customer
	return nil
}

func (r *fakeCustomerRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.customers, id)
	return nil
}

func (r *fakeCustomerRepo) DeleteByAdmin(_ context.Context, adminID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.customers {
		if c.AdminID == adminID {
			delete(r.customers, id)
		}
	}
	return nil
}

func sortByVisits(customers []model.Customer) {
	sort.Slice(customers, func(i, j int) bool {
		if customers[i].VisitCount != customers[j].VisitCount {
			return customers[i].VisitCount > customers[j].VisitCount
		}
		return customers[i].LastVisited.After(customers[j].LastVisited)
	})
}

func (r *fakeCustomerRepo) ListByAdmin(_ context.Context, adminID uuid.UUID) ([]model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var customers []model.Customer
	for _, c := range r.customers {
		if c.AdminID == adminID {
			customers = append(customers, c)
		}
	}
	sortByVisits(customers)
	return customers, nil
}

func (r *fakeCustomerRepo) ListAll(_ context.Context, offset, limit int) ([]model.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	customers := make([]model.Customer, 0, len(r.customers))
	for _, c := range r.customers {
		customers = append(customers, c)
	}
	sortByVisits(customers)
	total := int64(len(customers))
	if offset >= len(customers) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(customers) {
		end = len(customers)
	}
	return customers[offset:end], total, nil
}

func (r *fakeCustomerRepo) CountByAdmin(_ context.Context, adminID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.customers {
		if c.AdminID == adminID {
			count++
		}
	}
	return count, nil
}

func (r *fakeCustomerRepo) CountByAdminSince(_ context.Context, adminID uuid.UUID, since time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, c := range r.customers {
		if c.AdminID == adminID && !c.CreatedAt.Before(since) {
			count++
		}
	}
	return count, nil
}

type sentMessage struct {
	To   string
	Body string
}

// recordingSender captures outgoing messages; deliver controls the reported outcome.
type recordingSender struct {
	mu      sync.Mutex
	deliver bool
	sent    []sentMessage
}

func (s *recordingSender) Send(_ context.Context, to, body string) sms.Result {
	s.mu.Lock()
	s.sent = append(s.sent, sentMessage{To: to, Body: body})
	s.mu.Unlock()
	if s.deliver {
		return sms.Result{Delivered: true, Reference: "ref-test"}
	}
	return sms.Result{Reason: "test sender disabled"}
}

func (s *recordingSender) messages() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]sentMessage, len(s.sent))
	copy(out, s.sent)
	return out
}
