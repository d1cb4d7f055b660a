package model

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionCreateChallan  = "CREATE_CHALLAN"
	ActionAddBales       = "ADD_BALES"
	ActionUpdateBale     = "UPDATE_BALE"
	ActionDeleteBale     = "DELETE_BALE"
	ActionDeleteChallan  = "DELETE_CHALLAN"
	ActionCreateDeal     = "CREATE_DEAL"
	ActionUpdateDeal     = "UPDATE_DEAL"
	ActionDeleteDeal     = "DELETE_DEAL"
	ActionLinkChallan    = "LINK_CHALLAN"
	ActionCreateInvoice  = "CREATE_INVOICE"
	ActionDeleteInvoice  = "DELETE_INVOICE"
	ActionCreatePurchase = "CREATE_PURCHASE"
	ActionUpdatePurchase = "UPDATE_PURCHASE"
	ActionDeletePurchase = "DELETE_PURCHASE"
	ActionCreateDelivery = "CREATE_DELIVERY"
	ActionUpdateDelivery = "UPDATE_DELIVERY"
	ActionDeleteDelivery = "DELETE_DELIVERY"
)

// AuditLog tracks Who, What, and When for critical document changes
type AuditLog struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"`
	User       *User      `gorm:"foreignKey:UserID" json:"user"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`        // Reference string (uuid/number)
	EntityName string     `gorm:"type:varchar(255)" json:"entity_name,omitempty"` // Human readable name
	Details    string     `gorm:"type:jsonb" json:"details"`                      // Serialized JSON payload of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
