package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxInvoice is an immutable GST billing snapshot assembled from one or two
// complete, unsold challans. Party/quality/challan/bale details are all
// hard-copied in, so the printed document never changes when its sources do.
//
// Exactly one of (CGST & SGST) or IGST is non-zero: intra-state sales split
// the 5% levy into 2.5% + 2.5%, inter-state sales carry 5% IGST.
// RatePerMeter is the internal pre-discount rate and is never printed;
// DiscountedRate is the rate the party is actually billed at.
type TaxInvoice struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID  `gorm:"type:uuid;not null;index;uniqueIndex:idx_invoice_user_bill" json:"user_id"`
	BillNumber int64      `gorm:"type:bigint;not null;uniqueIndex:idx_invoice_user_bill" json:"bill_number"`
	DealID     *uuid.UUID `gorm:"type:uuid;index" json:"deal_id"`
	PartyID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"party_id"`
	QualityID  uuid.UUID  `gorm:"type:uuid;not null;index" json:"quality_id"`

	PartyName      string `gorm:"type:varchar(255);not null" json:"party_name"`
	PartyAddress   string `gorm:"type:text" json:"party_address"`
	PartyGSTIN     string `gorm:"type:varchar(15)" json:"party_gstin"`
	PartyStateCode string `gorm:"type:varchar(2);not null" json:"party_state_code"`
	QualityName    string `gorm:"type:varchar(255);not null" json:"quality_name"`
	QualityHSNCode string `gorm:"type:varchar(8);not null" json:"quality_hsn_code"`

	InvoiceDate        time.Time       `json:"invoice_date"`
	RatePerMeter       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate_per_meter"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0" json:"discount_percentage"`
	DiscountedRate     decimal.Decimal `gorm:"type:decimal(12,4);not null" json:"discounted_rate"`
	TotalPieces        int             `gorm:"type:int;not null" json:"total_pieces"`
	TotalMeters        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_meters"`
	Subtotal           decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"subtotal"`
	CGST               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"cgst"`
	SGST               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"sgst"`
	IGST               decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"igst"`
	RoundOff           decimal.Decimal `gorm:"type:decimal(6,2);not null;default:0" json:"round_off"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"total_amount"`

	ChallanDetails []InvoiceChallanDetail `gorm:"foreignKey:InvoiceID;constraint:OnDelete:CASCADE" json:"challan_details"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InvoiceChallanDetail is the per-challan snapshot embedded in an invoice.
// Bales holds the serialized bale rows as they stood at invoicing time.
type InvoiceChallanDetail struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	InvoiceID     uuid.UUID `gorm:"type:uuid;not null;index" json:"invoice_id"`
	ChallanID     uuid.UUID `gorm:"type:uuid;not null;index" json:"challan_id"`
	ChallanNumber int64     `gorm:"type:bigint;not null" json:"challan_number"`
	TotalMeter    float64   `gorm:"type:decimal(12,2);not null" json:"total_meter"`
	TotalPieces   int       `gorm:"type:int;not null" json:"total_pieces"`
	Bales         string    `gorm:"type:jsonb" json:"bales"` // serialized []Bale snapshot
}
