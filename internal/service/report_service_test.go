package service

import (
	"context"
	"testing"

	"backend/internal/repository"
)

func TestPurchaseOutstandingReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reports := NewReportService(repository.NewReportRepository(env.db))

	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		PartyName: "Gupta Yarn Agency", ApproxQuantity: "10", RatePerKg: "100", GodownChargesPerKg: "2",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	p, err = env.purchases.CreateDelivery(ctx, env.userID, p.ID, CreateDeliveryRequest{
		ActualWeight: "1", Payments: []PaymentRequest{{Amount: "50000"}},
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	rows, err := reports.PurchaseOutstanding(ctx, env.userID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 outstanding purchase, got %d", len(rows))
	}
	row := rows[0]
	if row.PurchaseNumber != p.PurchaseNumber || row.PartyName != "Gupta Yarn Agency" {
		t.Fatalf("bad row identity: %+v", row)
	}
	if row.TotalPending != "48000" {
		t.Fatalf("expected 48000 pending, got %s", row.TotalPending)
	}

	// Settle the delivery; the purchase drops off the report.
	settle := []PaymentRequest{{Amount: "98000"}}
	if _, err := env.purchases.UpdateDelivery(ctx, env.userID, p.ID, p.Deliveries[0].ID, UpdateDeliveryRequest{Payments: &settle}); err != nil {
		t.Fatalf("settle: %v", err)
	}
	rows, err = reports.PurchaseOutstanding(ctx, env.userID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rows) != 0 {
		t.Fatalf("expected settled purchase off the report, got %d rows", len(rows))
	}
}

func TestDealProgressReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	reports := NewReportService(repository.NewReportRepository(env.db))

	party := env.seedParty(t, env.userID, "Ambika Mills", "27")
	quality := env.seedQuality(t, env.userID, "Cambric", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "18", TotalBilties: 3,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	env.seedCompleteChallan(t, env.userID, quality, deal.ID, 10)

	rows, err := reports.DealProgress(ctx, env.userID)
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 active deal, got %d", len(rows))
	}
	row := rows[0]
	if row.CompletedBilties != 1 || row.TotalBilties != 3 || row.LinkedChallans != 1 {
		t.Fatalf("bad progress row: %+v", row)
	}
}
