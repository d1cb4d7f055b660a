package service

import (
	"context"
	"fmt"
	"testing"

	"backend/internal/model"
	"backend/internal/repository"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// testEnv wires the full service stack against an in-memory database.
// The websocket hub is left nil; broadcasts are fire-and-forget anyway.
type testEnv struct {
	db     *gorm.DB
	userID string

	parties   PartyService
	qualities QualityService
	challans  ChallanService
	deals     DealService
	invoices  InvoiceService
	purchases PurchaseService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(
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
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	txManager := repository.NewTransactionManager(db)
	partyRepo := repository.NewPartyRepository(db)
	qualityRepo := repository.NewQualityRepository(db)
	challanRepo := repository.NewChallanRepository(db)
	dealRepo := repository.NewDealRepository(db)
	invoiceRepo := repository.NewInvoiceRepository(db)
	purchaseRepo := repository.NewPurchaseRepository(db)
	seqRepo := repository.NewSequenceRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	company := CompanyInfo{
		Name:      "Shree Textiles",
		Address:   "Ring Road, Surat",
		GSTIN:     "27AAAAA0000A1Z5",
		StateCode: "27",
	}

	env := &testEnv{
		db:        db,
		parties:   NewPartyService(partyRepo),
		qualities: NewQualityService(qualityRepo, challanRepo, txManager),
		challans:  NewChallanService(challanRepo, qualityRepo, dealRepo, auditRepo, txManager, nil),
		deals:     NewDealService(dealRepo, partyRepo, qualityRepo, challanRepo, invoiceRepo, seqRepo, auditRepo, txManager, nil),
		invoices:  NewInvoiceService(invoiceRepo, challanRepo, partyRepo, qualityRepo, seqRepo, auditRepo, txManager, company, nil),
		purchases: NewPurchaseService(purchaseRepo, partyRepo, seqRepo, auditRepo, txManager),
	}
	env.userID = env.seedUser(t, "owner")
	return env
}

func (e *testEnv) seedUser(t *testing.T, name string) string {
	t.Helper()
	user := model.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "hash",
		Role:     "admin",
	}
	if err := e.db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user.ID.String()
}

func (e *testEnv) seedParty(t *testing.T, userID, name, stateCode string) PartyResponse {
	t.Helper()
	resp, err := e.parties.CreateParty(context.Background(), userID, CreatePartyRequest{
		Name:      name,
		Address:   "Market Yard",
		GSTIN:     stateCode + "BBBBB1111B1Z6",
		StateCode: stateCode,
	})
	if err != nil {
		t.Fatalf("seed party %s: %v", name, err)
	}
	return resp
}

func (e *testEnv) seedQuality(t *testing.T, userID, name string, balesPerChallan, piecesPerBale int) QualityResponse {
	t.Helper()
	resp, err := e.qualities.CreateQuality(context.Background(), userID, CreateQualityRequest{
		Name:            name,
		HSNCode:         "5407",
		BalesPerChallan: balesPerChallan,
		PiecesPerBale:   piecesPerBale,
	})
	if err != nil {
		t.Fatalf("seed quality %s: %v", name, err)
	}
	return resp
}

// seedCompleteChallan creates a challan and fills it with enough single-cloth
// bales to flip it COMPLETE. Each cloth is meter meters and half that weight.
func (e *testEnv) seedCompleteChallan(t *testing.T, userID string, quality QualityResponse, dealID string, meter float64) ChallanResponse {
	t.Helper()
	ctx := context.Background()
	ch, err := e.challans.CreateChallan(ctx, userID, CreateChallanRequest{QualityID: quality.ID, DealID: dealID})
	if err != nil {
		t.Fatalf("create challan: %v", err)
	}
	bales := make([]BaleRequest, 0, quality.BalesPerChallan)
	for i := 0; i < quality.BalesPerChallan; i++ {
		bales = append(bales, BaleRequest{Cloths: []ClothRequest{{Meter: meter, Weight: meter / 2}}})
	}
	ch, err = e.challans.AddBales(ctx, userID, ch.ID, AddBalesRequest{Bales: bales, DealID: dealID})
	if err != nil {
		t.Fatalf("fill challan: %v", err)
	}
	if ch.Status != model.ChallanStatusComplete {
		t.Fatalf("expected complete challan, got %s", ch.Status)
	}
	return ch
}
