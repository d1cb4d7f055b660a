package model

import (
	"time"

	"github.com/google/uuid"
)

// ChallanStatus constants
const (
	ChallanStatusIncomplete = "INCOMPLETE"
	ChallanStatusComplete   = "COMPLETE"
)

// DeliveryChallan is one consignment document for a quality. Its expected
// bale/piece counts are snapshotted from the quality at creation, so later
// quality edits do not retroactively change existing challans.
//
// Status is derived, never set by callers: COMPLETE iff the bale count has
// reached ExpectedBalesCount. Once IsSold is true the challan is frozen —
// no bale mutation and no deletion.
type DeliveryChallan struct {
	ID                    uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID                uuid.UUID  `gorm:"type:uuid;not null;index" json:"user_id"`
	QualityID             uuid.UUID  `gorm:"type:uuid;not null;index" json:"quality_id"`
	Quality               *Quality   `gorm:"foreignKey:QualityID" json:"quality,omitempty"`
	DealID                *uuid.UUID `gorm:"type:uuid;index" json:"deal_id"`    // set when linked to a deal
	InvoiceID             *uuid.UUID `gorm:"type:uuid;index" json:"invoice_id"` // set when sold on an invoice
	ChallanNumber         int64      `gorm:"type:bigint;not null" json:"challan_number"`
	ChallanDate           time.Time  `json:"challan_date"`
	ExpectedBalesCount    int        `gorm:"type:int;not null" json:"expected_bales_count"`
	ExpectedPiecesPerBale int        `gorm:"type:int;not null" json:"expected_pieces_per_bale"`
	CompletedBalesCount   int        `gorm:"type:int;not null;default:0" json:"completed_bales_count"`
	Status                string     `gorm:"type:varchar(20);not null;default:'INCOMPLETE';index" json:"status"`
	IsSold                bool       `gorm:"not null;default:false;index" json:"is_sold"`
	Bales                 []Bale     `gorm:"foreignKey:ChallanID;constraint:OnDelete:CASCADE" json:"bales"`
	CreatedAt             time.Time  `json:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at"`
}

// Bale is a physical bundle of cloth pieces within a challan. BaleNumber is
// allocated from the quality's counter and is strictly increasing across the
// whole quality, regardless of which challan the bale lands in.
type Bale struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ChallanID      uuid.UUID `gorm:"type:uuid;not null;index" json:"challan_id"`
	BaleNumber     int64     `gorm:"type:bigint;not null" json:"bale_number"`
	BaleDate       time.Time `json:"bale_date"`
	TotalMeter     float64   `gorm:"type:decimal(12,2);not null;default:0" json:"total_meter"`
	TotalWeight    float64   `gorm:"type:decimal(12,2);not null;default:0" json:"total_weight"`
	NumberOfPieces int       `gorm:"type:int;not null;default:0" json:"number_of_pieces"`
	Cloths         []Cloth   `gorm:"foreignKey:BaleID;constraint:OnDelete:CASCADE" json:"cloths"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// Cloth is one measured piece inside a bale.
type Cloth struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	BaleID uuid.UUID `gorm:"type:uuid;not null;index" json:"bale_id"`
	Meter  float64   `gorm:"type:decimal(10,2);not null" json:"meter"`
	Weight float64   `gorm:"type:decimal(10,2);not null" json:"weight"`
}
