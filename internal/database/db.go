package database

import (
	"log"

	"backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Party{},
		&model.Quality{},
		&model.DeliveryChallan{},
		&model.Bale{},
		&model.Cloth{},
		&model.Deal{},
		&model.TaxInvoice{},
		&model.InvoiceChallanDetail{},
		&model.Purchase{},
		&model.PurchaseDelivery{},
		&model.DeliveryPayment{},
		&model.NumberSequence{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
