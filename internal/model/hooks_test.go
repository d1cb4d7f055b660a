package model

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Every model must migrate and insert on sqlite, not just postgres; the
// test databases depend on it.
func TestModelsMigrateAndAssignIDsOnSqlite(t *testing.T) {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
		&User{},
		&Party{},
		&Quality{},
		&DeliveryChallan{},
		&Bale{},
		&Cloth{},
		&Deal{},
		&TaxInvoice{},
		&InvoiceChallanDetail{},
		&Purchase{},
		&PurchaseDelivery{},
		&DeliveryPayment{},
		&NumberSequence{},
		&AuditLog{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	user := User{Username: "owner", Email: "owner@example.com", Password: "hash", Role: "admin"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	if user.ID == uuid.Nil {
		t.Fatal("expected hook to assign user id")
	}

	second := User{Username: "second", Email: "second@example.com", Password: "hash", Role: "staff"}
	if err := db.Create(&second).Error; err != nil {
		t.Fatalf("create second user: %v", err)
	}
	if second.ID == user.ID {
		t.Fatalf("expected distinct ids, both got %s", user.ID)
	}

	// A caller-chosen id is kept as-is.
	fixed := uuid.New()
	party := Party{ID: fixed, UserID: user.ID, Name: "Mehta & Sons", StateCode: "27"}
	if err := db.Create(&party).Error; err != nil {
		t.Fatalf("create party: %v", err)
	}
	if party.ID != fixed {
		t.Fatalf("hook overwrote caller id: %s", party.ID)
	}
}
