package service

import (
	"context"
	"errors"
	"testing"

	"backend/internal/model"
)

func TestCreateDealSnapshotsPartyAndQuality(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Ambika Mills", "27")
	quality := env.seedQuality(t, env.userID, "Cambric", 4, 2)

	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "18.75", TotalBilties: 10,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	if deal.DealNumber != 1 {
		t.Fatalf("expected deal number 1, got %d", deal.DealNumber)
	}
	if deal.PartyName != "Ambika Mills" || deal.QualityName != "Cambric" {
		t.Fatalf("bad snapshot: %s / %s", deal.PartyName, deal.QualityName)
	}
	if deal.RatePerMeter != "18.75" || deal.Status != model.DealStatusActive {
		t.Fatalf("bad deal: %s %s", deal.RatePerMeter, deal.Status)
	}

	// Later party edits must not leak into the deal snapshot.
	newName := "Ambika Mills Pvt Ltd"
	if _, err := env.parties.UpdateParty(ctx, env.userID, party.ID, UpdatePartyRequest{Name: &newName}); err != nil {
		t.Fatalf("rename party: %v", err)
	}
	got, err := env.deals.GetDeal(ctx, env.userID, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.PartyName != "Ambika Mills" {
		t.Fatalf("snapshot rewritten by party edit: %s", got.PartyName)
	}
}

func TestDealNumbersAreGlobal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Nav Durga", "27")
	quality := env.seedQuality(t, env.userID, "Lawn", 1, 1)

	for i := 1; i <= 2; i++ {
		deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
			PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "10", TotalBilties: 1,
		})
		if err != nil {
			t.Fatalf("create deal %d: %v", i, err)
		}
		if deal.DealNumber != int64(i) {
			t.Fatalf("expected deal number %d, got %d", i, deal.DealNumber)
		}
	}

	// Peek does not consume; two reads agree.
	next, err := env.deals.NextDealNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	again, err := env.deals.NextDealNumber(ctx)
	if err != nil {
		t.Fatalf("next number: %v", err)
	}
	if next != 3 || again != 3 {
		t.Fatalf("expected peek 3 twice, got %d and %d", next, again)
	}
}

func TestDealAutoCompletesThroughChallans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Jay Bharat", "27")
	quality := env.seedQuality(t, env.userID, "Twill", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "11", TotalBilties: 1,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	env.seedCompleteChallan(t, env.userID, quality, deal.ID, 50)

	got, err := env.deals.GetDeal(ctx, env.userID, deal.ID)
	if err != nil {
		t.Fatalf("get deal: %v", err)
	}
	if got.Status != model.DealStatusCompleted {
		t.Fatalf("expected completed deal, got %s", got.Status)
	}
	if got.CompletionDate == nil {
		t.Fatal("expected completion date set")
	}
}

func TestCompletedDealAcceptsOnlyRevert(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Shiv Shakti", "27")
	quality := env.seedQuality(t, env.userID, "Canvas", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "30", TotalBilties: 1,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	env.seedCompleteChallan(t, env.userID, quality, deal.ID, 10)

	rate := "35"
	if _, err := env.deals.UpdateDeal(ctx, env.userID, deal.ID, UpdateDealRequest{RatePerMeter: &rate}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict editing completed deal, got %v", err)
	}

	active := model.DealStatusActive
	got, err := env.deals.UpdateDeal(ctx, env.userID, deal.ID, UpdateDealRequest{Status: &active})
	if err != nil {
		t.Fatalf("revert deal: %v", err)
	}
	if got.Status != model.DealStatusActive {
		t.Fatalf("expected reverted deal to stay active, got %s", got.Status)
	}
	if got.CompletionDate != nil {
		t.Fatalf("expected completion date cleared, got %v", *got.CompletionDate)
	}
}

func TestLinkChallanCreditsAndIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Raj Rayon", "27")
	quality := env.seedQuality(t, env.userID, "Crepe", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "14", TotalBilties: 3,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}

	ch := env.seedCompleteChallan(t, env.userID, quality, "", 10)

	got, err := env.deals.LinkChallan(ctx, env.userID, deal.ID, LinkChallanRequest{ChallanID: ch.ID})
	if err != nil {
		t.Fatalf("link challan: %v", err)
	}
	if got.CompletedBilties != 1 {
		t.Fatalf("expected complete challan to credit on link, got %d", got.CompletedBilties)
	}

	// Linking twice is a no-op, not a double credit.
	got, err = env.deals.LinkChallan(ctx, env.userID, deal.ID, LinkChallanRequest{ChallanID: ch.ID})
	if err != nil {
		t.Fatalf("relink challan: %v", err)
	}
	if got.CompletedBilties != 1 {
		t.Fatalf("relink double-credited: %d", got.CompletedBilties)
	}

	other, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "14", TotalBilties: 3,
	})
	if err != nil {
		t.Fatalf("create second deal: %v", err)
	}
	if _, err := env.deals.LinkChallan(ctx, env.userID, other.ID, LinkChallanRequest{ChallanID: ch.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict linking to a second deal, got %v", err)
	}
}

func TestLinkChallanQualityMismatch(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Laxmi Silk", "27")
	silk := env.seedQuality(t, env.userID, "Silk", 1, 1)
	jute := env.seedQuality(t, env.userID, "Jute", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: silk.ID, RatePerMeter: "55", TotalBilties: 2,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	ch := env.seedCompleteChallan(t, env.userID, jute, "", 10)

	if _, err := env.deals.LinkChallan(ctx, env.userID, deal.ID, LinkChallanRequest{ChallanID: ch.ID}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected quality mismatch conflict, got %v", err)
	}
}

func TestUpdateDealTotalBiltiesFloor(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Ganesh Weaving", "27")
	quality := env.seedQuality(t, env.userID, "Sheeting", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "8", TotalBilties: 5,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	env.seedCompleteChallan(t, env.userID, quality, deal.ID, 10)

	lower := 0
	if _, err := env.deals.UpdateDeal(ctx, env.userID, deal.ID, UpdateDealRequest{TotalBilties: &lower}); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict lowering below completed, got %v", err)
	}

	// Lowering the target down to the completed count flips the deal done.
	exact := 1
	got, err := env.deals.UpdateDeal(ctx, env.userID, deal.ID, UpdateDealRequest{TotalBilties: &exact})
	if err != nil {
		t.Fatalf("update total: %v", err)
	}
	if got.Status != model.DealStatusCompleted {
		t.Fatalf("expected auto-completion on target drop, got %s", got.Status)
	}
}

func TestDeleteDealBlockedByLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	party := env.seedParty(t, env.userID, "Hari Om", "27")
	quality := env.seedQuality(t, env.userID, "Flannel", 1, 1)
	deal, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "22", TotalBilties: 4,
	})
	if err != nil {
		t.Fatalf("create deal: %v", err)
	}
	env.seedCompleteChallan(t, env.userID, quality, deal.ID, 10)

	if err := env.deals.DeleteDeal(ctx, env.userID, deal.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting deal with challans, got %v", err)
	}

	bare, err := env.deals.CreateDeal(ctx, env.userID, CreateDealRequest{
		PartyID: party.ID, QualityID: quality.ID, RatePerMeter: "22", TotalBilties: 4,
	})
	if err != nil {
		t.Fatalf("create bare deal: %v", err)
	}
	if err := env.deals.DeleteDeal(ctx, env.userID, bare.ID); err != nil {
		t.Fatalf("delete bare deal: %v", err)
	}
	if _, err := env.deals.GetDeal(ctx, env.userID, bare.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted deal gone, got %v", err)
	}
}
