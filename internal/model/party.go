package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Party represents a customer/supplier the business trades with.
// Party details are snapshotted into deals and invoices at creation time,
// so later edits here never rewrite historical documents.
type Party struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_party_user_name" json:"user_id"`
	Name      string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_party_user_name" json:"name"`
	Address   string         `gorm:"type:text" json:"address"`
	GSTIN     string         `gorm:"type:varchar(15)" json:"gstin"`
	StateCode string         `gorm:"type:varchar(2);not null" json:"state_code"` // 2-digit GST state code, drives CGST/SGST vs IGST
	Phone     string         `gorm:"type:varchar(20)" json:"phone"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}
