package repository

import (
	"context"

	"crm-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SuperAdminRepository defines the interface for data access of SuperAdmin entities.
// There is no public creation path: accounts come from the bootstrap command only.
type SuperAdminRepository interface {
	Create(ctx context.Context, superAdmin *model.SuperAdmin) error
	GetByID(ctx context.Context, id uuid.UUID) (*model.SuperAdmin, error)
	GetByUsername(ctx context.Context, username string) (*model.SuperAdmin, error)
}

type superAdminRepository struct {
	db *gorm.DB
}

// NewSuperAdminRepository returns a new instance of SuperAdminRepository
func NewSuperAdminRepository(db *gorm.DB) SuperAdminRepository {
	return &superAdminRepository{db: db}
}

func (r *superAdminRepository) Create(ctx context.Context, superAdmin *model.SuperAdmin) error {
	return GetDB(ctx, r.db).Create(superAdmin).Error
}

func (r *superAdminRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SuperAdmin, error) {
	var superAdmin model.SuperAdmin
	if err := GetDB(ctx, r.db).First(&superAdmin, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &superAdmin, nil
}

func (r *superAdminRepository) GetByUsername(ctx context.Context, username string) (*model.SuperAdmin, error) {
	var superAdmin model.SuperAdmin
	if err := GetDB(ctx, r.db).First(&superAdmin, "username = ?", username).Error; err != nil {
		return nil, err
	}
	return &superAdmin, nil
}
