package repository

import (
	"context"
	"time"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomerRepository defines the interface for data access of Customer entities
type CustomerRepository interface {
	Create(ctx context.Context, customer *model.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error)
	GetByIDAndAdmin(ctx context.Context, id, adminID uuid.UUID) (*model.Customer, error)
	// GetByPhoneAndAdminForUpdate locks the matching row for the duration of
	// the surrounding transaction so concurrent check-ins serialize per key.
	GetByPhoneAndAdminForUpdate(ctx context.Context, phoneNumber string, adminID uuid.UUID) (*model.Customer, error)
	RecordVisit(ctx context.Context, id uuid.UUID, lat, lng decimal.Decimal, address string, visitedAt time.Time) (*model.Customer, error)
	Update(ctx context.Context, customer *model.Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByAdmin(ctx context.Context, adminID uuid.UUID) error
	ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]model.Customer, error)
	ListAll(ctx context.Context, offset, limit int) ([]model.Customer, int64, error)
	CountByAdmin(ctx context.Context, adminID uuid.UUID) (int64, error)
	CountByAdminSince(ctx context.Context, adminID uuid.UUID, since time.Time) (int64, error)
}

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository returns a new instance of CustomerRepository
func NewCustomerRepository(db *gorm.DB) CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByIDAndAdmin(ctx context.Context, id, adminID uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	if err := GetDB(ctx, r.db).First(&customer, "id = ? AND admin_id = ?", id, adminID).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) GetByPhoneAndAdminForUpdate(ctx context.Context, phoneNumber string, adminID uuid.UUID) (*model.Customer, error) {
	var customer model.Customer
	err := GetDB(ctx, r.db).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&customer, "phone_number = ? AND admin_id = ?", phoneNumber, adminID).Error
	if err != nil {
		return nil, err
	}
	return &customer, nil
}

// RecordVisit bumps the visit counter in a single UPDATE and refreshes the
// location fields, then returns the fresh row. visit_count is only ever
// mutated here.
func (r *customerRepository) RecordVisit(ctx context.Context, id uuid.UUID, lat, lng decimal.Decimal, address string, visitedAt time.Time) (*model.Customer, error) {
	db := GetDB(ctx, r.db)
	err := db.Model(&model.Customer{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"visit_count":  gorm.Expr("visit_count + 1"),
			"latitude":     lat,
			"longitude":    lng,
			"address":      address,
			"last_visited": visitedAt,
		}).Error
	if err != nil {
		return nil, err
	}

	var customer model.Customer
	if err := db.First(&customer, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &customer, nil
}

func (r *customerRepository) Update(ctx context.Context, customer *model.Customer) error {
	return GetDB(ctx, r.db).Save(customer).Error
}

func (r *customerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Customer{}).Error
}

func (r *customerRepository) DeleteByAdmin(ctx context.Context, adminID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("admin_id = ?", adminID).Delete(&model.Customer{}).Error
}

func (r *customerRepository) ListByAdmin(ctx context.Context, adminID uuid.UUID) ([]model.Customer, error) {
	var customers []model.Customer
	err := GetDB(ctx, r.db).
		Where("admin_id = ?", adminID).
		Order("visit_count DESC, last_visited DESC").
		Find(&customers).Error
	if err != nil {
		return nil, err
	}
	return customers, nil
}

func (r *customerRepository) ListAll(ctx context.Context, offset, limit int) ([]model.Customer, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Customer{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var customers []model.Customer
	err := db.Preload("Admin").
		Order("visit_count DESC, last_visited DESC").
		Offset(offset).Limit(limit).
		Find(&customers).Error
	if err != nil {
		return nil, 0, err
	}
	return customers, total, nil
}

func (r *customerRepository) CountByAdmin(ctx context.Context, adminID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Customer{}).
		Where("admin_id = ?", adminID).
		Count(&count).Error
	return count, err
}

func (r *customerRepository) CountByAdminSince(ctx context.Context, adminID uuid.UUID, since time.Time) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Customer{}).
		Where("admin_id = ? AND created_at >= ?", adminID, since).
		Count(&count).Error
	return count, err
}
