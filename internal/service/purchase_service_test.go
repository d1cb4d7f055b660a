package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
)

func TestCreatePurchaseDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		PartyName:      "Gupta Yarn Agency",
		YarnType:       "30s Cotton",
		ApproxQuantity: "10",
		RatePerKg:      "100",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	if p.PurchaseNumber != 1 {
		t.Fatalf("expected purchase number 1, got %d", p.PurchaseNumber)
	}
	if p.Status != model.PurchaseStatusPending {
		t.Fatalf("expected pending purchase, got %s", p.Status)
	}
	if p.RemainingApproxQuantity != "10.000" || p.GodownChargesPerKg != "0.00" {
		t.Fatalf("bad defaults: remaining %s, godown %s", p.RemainingApproxQuantity, p.GodownChargesPerKg)
	}

	if _, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		ApproxQuantity: "0", RatePerKg: "100",
	}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero quantity, got %v", err)
	}
}

func TestDeliveryAmountsFromTonnage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		PartyName:          "Jain Yarns",
		ApproxQuantity:     "10",
		RatePerKg:          "100",
		GodownChargesPerKg: "2",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	// 1 ton at 100/kg: 100000 gross, 2000 godown, 98000 net.
	p, err = env.purchases.CreateDelivery(ctx, env.userID, p.ID, CreateDeliveryRequest{ActualWeight: "1"})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if len(p.Deliveries) != 1 {
		t.Fatalf("expected 1 delivery, got %d", len(p.Deliveries))
	}
	d := p.Deliveries[0]
	if d.GrossAmount != "100000.00" || d.GodownCharges != "2000.00" || d.NetAmount != "98000.00" {
		t.Fatalf("bad amounts: gross %s godown %s net %s", d.GrossAmount, d.GodownCharges, d.NetAmount)
	}
	if d.PaymentStatus != model.PaymentStatusPending || d.PendingAmount != "98000.00" {
		t.Fatalf("bad payment state: %s / %s", d.PaymentStatus, d.PendingAmount)
	}
	if d.DeductFromDeal != "1.000" {
		t.Fatalf("expected deduction to default to actual weight, got %s", d.DeductFromDeal)
	}
	if d.RatePerKg != "100.00" || d.GodownChargesPerKg != "2.00" {
		t.Fatalf("expected rates snapshotted from purchase, got %s/%s", d.RatePerKg, d.GodownChargesPerKg)
	}

	if p.TotalActualWeight != "1.000" || p.RemainingApproxQuantity != "9.000" {
		t.Fatalf("bad aggregates: actual %s remaining %s", p.TotalActualWeight, p.RemainingApproxQuantity)
	}
	if p.Status != model.PurchaseStatusPartial {
		t.Fatalf("expected partial purchase, got %s", p.Status)
	}
}

func TestDeliveryPaymentsProgressAndClamp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		ApproxQuantity: "10", RatePerKg: "100", GodownChargesPerKg: "2",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	p, err = env.purchases.CreateDelivery(ctx, env.userID, p.ID, CreateDeliveryRequest{
		ActualWeight: "1",
		Payments:     []PaymentRequest{{Amount: "50000"}},
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	d := p.Deliveries[0]
	if d.PaymentStatus != model.PaymentStatusPartial || d.AmountPaid != "50000.00" || d.PendingAmount != "48000.00" {
		t.Fatalf("bad partial state: %s paid %s pending %s", d.PaymentStatus, d.AmountPaid, d.PendingAmount)
	}

	full := []PaymentRequest{{Amount: "50000"}, {Amount: "48000"}}
	p, err = env.purchases.UpdateDelivery(ctx, env.userID, p.ID, d.ID, UpdateDeliveryRequest{Payments: &full})
	if err != nil {
		t.Fatalf("update payments: %v", err)
	}
	d = p.Deliveries[0]
	if d.PaymentStatus != model.PaymentStatusPaid || d.PendingAmount != "0.00" {
		t.Fatalf("bad paid state: %s pending %s", d.PaymentStatus, d.PendingAmount)
	}

	// Paid never exceeds net, whatever was keyed in.
	over := []PaymentRequest{{Amount: "200000"}}
	p, err = env.purchases.UpdateDelivery(ctx, env.userID, p.ID, d.ID, UpdateDeliveryRequest{Payments: &over})
	if err != nil {
		t.Fatalf("overpay: %v", err)
	}
	d = p.Deliveries[0]
	if d.AmountPaid != "98000.00" || d.PaymentStatus != model.PaymentStatusPaid {
		t.Fatalf("expected clamped payment, got %s (%s)", d.AmountPaid, d.PaymentStatus)
	}
}

func TestPurchaseStatusFollowsDeductions(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		ApproxQuantity: "10", RatePerKg: "90",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}

	// Deduction can diverge from the weighed quantity.
	p, err = env.purchases.CreateDelivery(ctx, env.userID, p.ID, CreateDeliveryRequest{
		ActualWeight: "9.5", DeductFromDeal: "10",
	})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}
	if p.Status != model.PurchaseStatusCompleted || p.RemainingApproxQuantity != "0.000" {
		t.Fatalf("expected completed purchase, got %s remaining %s", p.Status, p.RemainingApproxQuantity)
	}
	if p.TotalActualWeight != "9.500" || p.TotalDeductedWeight != "10.000" {
		t.Fatalf("bad sums: %s / %s", p.TotalActualWeight, p.TotalDeductedWeight)
	}

	// Removing the delivery walks the purchase back to square one.
	p, err = env.purchases.DeleteDelivery(ctx, env.userID, p.ID, p.Deliveries[0].ID)
	if err != nil {
		t.Fatalf("delete delivery: %v", err)
	}
	if p.Status != model.PurchaseStatusPending || p.RemainingApproxQuantity != "10.000" {
		t.Fatalf("expected pending purchase after delete, got %s remaining %s", p.Status, p.RemainingApproxQuantity)
	}
	if len(p.Deliveries) != 0 {
		t.Fatalf("expected no deliveries, got %d", len(p.Deliveries))
	}
}

func TestUpdatePurchaseReratesNothingRetroactively(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
		ApproxQuantity: "20", RatePerKg: "100",
	})
	if err != nil {
		t.Fatalf("create purchase: %v", err)
	}
	p, err = env.purchases.CreateDelivery(ctx, env.userID, p.ID, CreateDeliveryRequest{ActualWeight: "5"})
	if err != nil {
		t.Fatalf("create delivery: %v", err)
	}

	rate := "120"
	p, err = env.purchases.UpdatePurchase(ctx, env.userID, p.ID, UpdatePurchaseRequest{RatePerKg: &rate})
	if err != nil {
		t.Fatalf("update purchase: %v", err)
	}
	if p.RatePerKg != "120.00" {
		t.Fatalf("bad new rate: %s", p.RatePerKg)
	}
	// Existing deliveries keep the rate they were weighed in at.
	if p.Deliveries[0].RatePerKg != "100.00" {
		t.Fatalf("delivery rate rewritten: %s", p.Deliveries[0].RatePerKg)
	}
}

func TestPurchaseNumbersAndOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	for i := 1; i <= 2; i++ {
		p, err := env.purchases.CreatePurchase(ctx, env.userID, CreatePurchaseRequest{
			ApproxQuantity: "1", RatePerKg: "50",
		})
		if err != nil {
			t.Fatalf("create purchase %d: %v", i, err)
		}
		if p.PurchaseNumber != int64(i) {
			t.Fatalf("expected purchase number %d, got %d", i, p.PurchaseNumber)
		}
	}
	next, err := env.purchases.NextPurchaseNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if next != 3 {
		t.Fatalf("expected next purchase number 3, got %d", next)
	}

	list, total, err := env.purchases.ListPurchases(ctx, env.userID, PurchaseFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 purchases, got %d/%d", total, len(list))
	}

	stranger := env.seedUser(t, "stranger")
	if _, err := env.purchases.GetPurchase(ctx, stranger, list[0].ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
}
