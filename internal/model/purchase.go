package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PurchaseStatus constants
const (
	PurchaseStatusPending   = "PENDING"
	PurchaseStatusPartial   = "PARTIAL"
	PurchaseStatusCompleted = "COMPLETED"
)

// PaymentStatus constants
const (
	PaymentStatusPending = "PENDING"
	PaymentStatusPartial = "PARTIAL"
	PaymentStatusPaid    = "PAID"
)

// Purchase is a yarn purchase order. Quantities are in tons, rates in
// rupees per kg. TotalActualWeight/TotalDeductedWeight are the sums over
// all deliveries and are recomputed whenever a delivery changes; the
// remaining quantity and status are derived from them on every save.
type Purchase struct {
	ID                      uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                  uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	PurchaseNumber          int64           `gorm:"type:bigint;not null;uniqueIndex" json:"purchase_number"`
	PartyID                 *uuid.UUID      `gorm:"type:uuid;index" json:"party_id"`
	PartyName               string          `gorm:"type:varchar(255)" json:"party_name"`
	YarnType                string          `gorm:"type:varchar(255)" json:"yarn_type"`
	PurchaseDate            time.Time       `json:"purchase_date"`
	ApproxQuantity          decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"approx_quantity"` // tons
	RatePerKg               decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate_per_kg"`
	GodownChargesPerKg      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"godown_charges_per_kg"`
	TotalActualWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"total_actual_weight"`
	TotalDeductedWeight     decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"total_deducted_weight"`
	RemainingApproxQuantity decimal.Decimal `gorm:"type:decimal(12,3);not null;default:0" json:"remaining_approx_quantity"`
	Status                  string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`

	Deliveries []PurchaseDelivery `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE" json:"deliveries,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// PurchaseDelivery is one weighed delivery against a purchase. Rates are
// snapshotted from the purchase at creation. DeductFromDeal is the weight
// subtracted from the purchase's remaining quantity and may differ from
// ActualWeight. All amounts are derived from the raw inputs on every save.
type PurchaseDelivery struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	PurchaseID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"purchase_id"`
	DeliveryDate       time.Time       `json:"delivery_date"`
	ActualWeight       decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"actual_weight"` // tons
	DeductFromDeal     decimal.Decimal `gorm:"type:decimal(12,3);not null" json:"deduct_from_deal"`
	RatePerKg          decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"rate_per_kg"`
	GodownChargesPerKg decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"godown_charges_per_kg"`
	GrossAmount        decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"gross_amount"`
	GodownCharges      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"godown_charges"`
	NetAmount          decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"net_amount"`
	AmountPaid         decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"amount_paid"`
	PendingAmount      decimal.Decimal `gorm:"type:decimal(14,2);not null;default:0" json:"pending_amount"`
	PaymentStatus      string          `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"payment_status"`

	Payments []DeliveryPayment `gorm:"foreignKey:DeliveryID;constraint:OnDelete:CASCADE" json:"payments"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeliveryPayment is one partial payment against a delivery.
type DeliveryPayment struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DeliveryID  uuid.UUID       `gorm:"type:uuid;not null;index" json:"delivery_id"`
	Amount      decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	PaymentDate time.Time       `json:"payment_date"`
	Note        string          `gorm:"type:text" json:"note"`
	CreatedAt   time.Time       `json:"created_at"`
}
