package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Quality represents a fabric/yarn specification owned by a user.
// CurrentBaleNumber and CurrentChallanNumber are monotonically increasing
// counters: they only ever move by +1 via an atomic in-database increment,
// and a number once issued is never reused even across challans.
type Quality struct {
	ID                   uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID               uuid.UUID      `gorm:"type:uuid;not null;index;uniqueIndex:idx_quality_user_name" json:"user_id"`
	Name                 string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_quality_user_name" json:"name"`
	HSNCode              string         `gorm:"type:varchar(8);not null" json:"hsn_code"` // 4-8 digits
	BalesPerChallan      int            `gorm:"type:int;not null" json:"bales_per_challan"`
	PiecesPerBale        int            `gorm:"type:int;not null" json:"pieces_per_bale"`
	CurrentBaleNumber    int64          `gorm:"type:bigint;not null;default:0" json:"current_bale_number"`
	CurrentChallanNumber int64          `gorm:"type:bigint;not null;default:0" json:"current_challan_number"`
	CreatedAt            time.Time      `json:"created_at"`
	UpdatedAt            time.Time      `json:"updated_at"`
	DeletedAt            gorm.DeletedAt `gorm:"index" json:"-"`
}
