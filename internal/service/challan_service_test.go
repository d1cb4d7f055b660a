package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
)

func TestAddBalesDerivesTotalsAndStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "60x60 Poplin", 2, 3)

	ch, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: quality.ID})
	if err != nil {
		t.Fatalf("create challan: %v", err)
	}
	if ch.ChallanNumber != 1 {
		t.Fatalf("expected challan number 1, got %d", ch.ChallanNumber)
	}
	if ch.ExpectedBalesCount != 2 || ch.ExpectedPiecesPerBale != 3 {
		t.Fatalf("expected 2/3 snapshot, got %d/%d", ch.ExpectedBalesCount, ch.ExpectedPiecesPerBale)
	}

	ch, err = env.challans.AddBales(ctx, env.userID, ch.ID, AddBalesRequest{
		Bales: []BaleRequest{{Cloths: []ClothRequest{{Meter: 10, Weight: 5}, {Meter: 8, Weight: 4}}}},
	})
	if err != nil {
		t.Fatalf("add bale: %v", err)
	}
	if ch.Status != model.ChallanStatusIncomplete || ch.CompletedBalesCount != 1 {
		t.Fatalf("expected incomplete with 1 bale, got %s/%d", ch.Status, ch.CompletedBalesCount)
	}
	bale := ch.Bales[0]
	if bale.BaleNumber != 1 {
		t.Fatalf("expected bale number 1, got %d", bale.BaleNumber)
	}
	if bale.TotalMeter != 18 || bale.TotalWeight != 9 || bale.NumberOfPieces != 2 {
		t.Fatalf("bad bale totals: %v/%v/%d", bale.TotalMeter, bale.TotalWeight, bale.NumberOfPieces)
	}

	ch, err = env.challans.AddBales(ctx, env.userID, ch.ID, AddBalesRequest{
		Bales: []BaleRequest{{Cloths: []ClothRequest{{Meter: 12, Weight: 6}}}},
	})
	if err != nil {
		t.Fatalf("add second bale: %v", err)
	}
	if ch.Status != model.ChallanStatusComplete || ch.CompletedBalesCount != 2 {
		t.Fatalf("expected complete with 2 bales, got %s/%d", ch.Status, ch.CompletedBalesCount)
	}
}

func TestBaleNumbersContinueAcrossChallans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Rayon 14kg", 2, 1)

	first := env.seedCompleteChallan(t, env.userID, quality, "", 20)
	if first.Bales[0].BaleNumber != 1 || first.Bales[1].BaleNumber != 2 {
		t.Fatalf("expected bale numbers 1,2 got %d,%d", first.Bales[0].BaleNumber, first.Bales[1].BaleNumber)
	}

	second, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: quality.ID})
	if err != nil {
		t.Fatalf("create second challan: %v", err)
	}
	if second.ChallanNumber != 2 {
		t.Fatalf("expected challan number 2, got %d", second.ChallanNumber)
	}
	second, err = env.challans.AddBales(ctx, env.userID, second.ID, AddBalesRequest{
		Bales: []BaleRequest{{Cloths: []ClothRequest{{Meter: 20, Weight: 10}}}},
	})
	if err != nil {
		t.Fatalf("add bale: %v", err)
	}
	// Numbers never reset per challan; the quality counter keeps climbing.
	if second.Bales[0].BaleNumber != 3 {
		t.Fatalf("expected bale number 3, got %d", second.Bales[0].BaleNumber)
	}
}

func TestChallanNumbersScopedPerQuality(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cotton := env.seedQuality(t, env.userID, "Cotton 40s", 1, 1)
	linen := env.seedQuality(t, env.userID, "Linen 60s", 1, 1)

	c1, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: cotton.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	l1, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: linen.ID})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if c1.ChallanNumber != 1 || l1.ChallanNumber != 1 {
		t.Fatalf("expected both qualities to start at 1, got %d and %d", c1.ChallanNumber, l1.ChallanNumber)
	}
}

func TestUpdateBaleRecomputesTotals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Georgette", 1, 2)
	ch := env.seedCompleteChallan(t, env.userID, quality, "", 30)

	updated, err := env.challans.UpdateBale(ctx, env.userID, ch.ID, ch.Bales[0].ID, UpdateBaleRequest{
		Cloths: []ClothRequest{{Meter: 5, Weight: 2}},
	})
	if err != nil {
		t.Fatalf("update bale: %v", err)
	}
	bale := updated.Bales[0]
	if bale.TotalMeter != 5 || bale.TotalWeight != 2 || bale.NumberOfPieces != 1 {
		t.Fatalf("bad recomputed totals: %v/%v/%d", bale.TotalMeter, bale.TotalWeight, bale.NumberOfPieces)
	}
	// The bale keeps its allocated number through edits.
	if bale.BaleNumber != ch.Bales[0].BaleNumber {
		t.Fatalf("bale number changed on update: %d -> %d", ch.Bales[0].BaleNumber, bale.BaleNumber)
	}
}

func TestSoldChallanIsFrozen(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Chiffon", 1, 1)
	ch := env.seedCompleteChallan(t, env.userID, quality, "", 25)

	if err := env.db.Model(&model.DeliveryChallan{}).Where("id = ?", ch.ID).
		Update("is_sold", true).Error; err != nil {
		t.Fatalf("mark sold: %v", err)
	}

	_, err := env.challans.AddBales(ctx, env.userID, ch.ID, AddBalesRequest{
		Bales: []BaleRequest{{Cloths: []ClothRequest{{Meter: 1, Weight: 1}}}},
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict adding bales to sold challan, got %v", err)
	}
	_, err = env.challans.DeleteBale(ctx, env.userID, ch.ID, ch.Bales[0].ID)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting bale of sold challan, got %v", err)
	}
	if err := env.challans.DeleteChallan(ctx, env.userID, ch.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting sold challan, got %v", err)
	}
}

func TestDeleteBaleRevertsStatusButNotDealProgress(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Mahesh Traders", "27")
	quality := env.seedQuality(t, env.userID, "Denim", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "12.50", TotalBilties: 2,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	ch := env.seedCompleteChallan(t, env.userID, quality, deal.ID, 40)

	got, err := env.deals.GetDeal(ctx, env.userID, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.CompletedBilties != 1 {
		t.Fatalf("expected 1 completed bilty, got %d", got.CompletedBilties)
	}

	// Removing the bale un-completes the challan but the already earned
	// deal credit stays; only challan deletion hands it back.
	ch, err = env.challans.DeleteBale(ctx, env.userID, ch.ID, ch.Bales[0].ID)
	if err != nil {
		t.Fatalf("delete bale: %v", err)
	}
	if ch.Status != model.ChallanStatusIncomplete || ch.CompletedBalesCount != 0 {
		t.Fatalf("expected empty incomplete challan, got %s/%d", ch.Status, ch.CompletedBalesCount)
	}
	got, err = env.deals.GetDeal(ctx, env.userID, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.CompletedBilties != 1 {
		t.Fatalf("deal progress should survive bale deletion, got %d", got.CompletedBilties)
	}
}

func TestDeleteChallanReturnsDealCredit(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Kiran Fabrics", "27")
	quality := env.seedQuality(t, env.userID, "Voile", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "9", TotalBilties: 5,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	ch := env.seedCompleteChallan(t, env.userID, quality, deal.ID, 15)
	if err := env.challans.DeleteChallan(ctx, env.userID, ch.ID); err != nil {
		t.Fatalf("delete challan: %v", err)
	}

	got, err := env.deals.GetDeal(ctx, env.userID, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.CompletedBilties != 0 {
		t.Fatalf("expected credit returned on challan deletion, got %d", got.CompletedBilties)
	}
	if len(got.ChallanIDs) != 0 {
		t.Fatalf("expected challan unlinked, got %v", got.ChallanIDs)
	}
}

func TestCreateChallanDealGuards(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Om Textiles", "27")
	denim := env.seedQuality(t, env.userID, "Denim 10oz", 1, 1)
	voile := env.seedQuality(t, env.userID, "Voile 2x2", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: denim.ID, RatePerMeter: "20", TotalBilties: 1,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	_, err = env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: voile.ID, DealID: deal.ID})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected quality mismatch conflict, got %v", err)
	}

	cancelled := model.DealStatusCancelled
	if _, err := env.deals.UpdateDeal(ctx, env.userID, deal.ID, UpdateDealRequest{Status: &cancelled}); err != nil {
		t.Fatalf("cancel deal: %v", err)
	}
	_, err = env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: denim.ID, DealID: deal.ID})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected cancelled deal conflict, got %v", err)
	}
}

func TestChallanOwnershipIsEnforced(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Satin", 1, 1)
	ch := env.seedCompleteChallan(t, env.userID, quality, "", 10)

	stranger := env.seedUser(t, "stranger")
	if _, err := env.challans.GetChallan(ctx, stranger, ch.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign user, got %v", err)
	}
	if err := env.challans.DeleteChallan(ctx, stranger, ch.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found for foreign delete, got %v", err)
	}
}

// Bale numbers for a quality must stay contiguous and duplicate-free when
// several open challans take deliveries turn about.
func TestBaleNumbersStayContiguousAcrossInterleavedChallans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Lizzy Bizzy", 3, 1)

	first, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: quality.ID})
	if err != nil {
		t.Fatalf("create first challan: %v", err)
	}
	second, err := env.challans.CreateChallan(ctx, env.userID, CreateChallanRequest{QualityID: quality.ID})
	if err != nil {
		t.Fatalf("create second challan: %v", err)
	}

	// Alternate single-bale deliveries between the two challans.
	order := []string{first.ID, second.ID, first.ID, second.ID, first.ID, second.ID}
	seen := make(map[int64]bool)
	for i, id := range order {
		ch, err := env.challans.AddBales(ctx, env.userID, id, AddBalesRequest{
			Bales: []BaleRequest{{Cloths: []ClothRequest{{Meter: 10, Weight: 5}}}},
		})
		if err != nil {
			t.Fatalf("delivery %d: %v", i, err)
		}
		n := ch.Bales[len(ch.Bales)-1].BaleNumber
		if seen[n] {
			t.Fatalf("bale number %d issued twice", n)
		}
		seen[n] = true
	}
	for want := int64(1); want <= int64(len(order)); want++ {
		if !seen[want] {
			t.Fatalf("bale number %d was skipped", want)
		}
	}
}
