package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DealStatus constants
const (
	DealStatusActive    = "ACTIVE"
	DealStatusCompleted = "COMPLETED"
	DealStatusCancelled = "CANCELLED"
)

// Deal is a standing agreement fixing one party + one quality at a rate for
// a target number of completed challans ("bilties"). Party and quality
// details are hard-copied at creation so the deal is insulated from later
// edits to either.
//
// Status flips to COMPLETED automatically when CompletedBilties reaches
// TotalBilties while the deal is ACTIVE; reverting to ACTIVE clears
// CompletionDate.
type Deal struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	DealNumber       int64      `gorm:"type:bigint;not null;uniqueIndex" json:"deal_number"`
	PartyID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"party_id"`
	QualityID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"quality_id"`
	PartyName        string     `gorm:"type:varchar(255);not null" json:"party_name"`
	PartyAddress     string     `gorm:"type:text" json:"party_address"`
	PartyGSTIN       string     `gorm:"type:varchar(15)" json:"party_gstin"`
	PartyStateCode   string     `gorm:"type:varchar(2)" json:"party_state_code"`
	QualityName      string     `gorm:"type:varchar(255);not null" json:"quality_name"`
	QualityHSNCode   string     `gorm:"type:varchar(8)" json:"quality_hsn_code"`

	RatePerMeter     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate_per_meter"`
	TotalBilties     int             `gorm:"type:int;not null" json:"total_bilties"`
	CompletedBilties int             `gorm:"type:int;not null;default:0" json:"completed_bilties"`
	Status           string          `gorm:"type:varchar(20);not null;default:'ACTIVE';index" json:"status"`
	CompletionDate   *time.Time      `json:"completion_date"`

	Challans []DeliveryChallan `gorm:"foreignKey:DealID" json:"challans,omitempty"`
	Invoices []TaxInvoice      `gorm:"foreignKey:DealID" json:"invoices,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
