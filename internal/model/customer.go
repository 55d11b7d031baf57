package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a person tracked by exactly one admin. The (phone_number, admin_id)
// pair is unique: the same phone may recur under different admins, never twice
// under the same admin.
type Customer struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string          `gorm:"type:varchar(255);not null" json:"name"`
	PhoneNumber string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_customers_phone_admin" json:"phone_number"`
	Latitude    decimal.Decimal `gorm:"type:numeric(9,6);not null" json:"latitude"`
	Longitude   decimal.Decimal `gorm:"type:numeric(9,6);not null" json:"longitude"`
	Address     string          `gorm:"type:varchar(500)" json:"address"`
	AdminID     uuid.UUID       `gorm:"type:uuid;not null;index;uniqueIndex:idx_customers_phone_admin" json:"admin_id"`
	Admin       Admin           `gorm:"foreignKey:AdminID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	VisitCount  int             `gorm:"not null;default:1" json:"visit_count"`
	LastVisited time.Time       `gorm:"not null" json:"last_visited"`
	CreatedAt   time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}
