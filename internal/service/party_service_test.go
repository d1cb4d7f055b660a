package service

import (
	"context"
	"errors"
	"testing"
)

func TestCreatePartyNormalizesGSTIN(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	p, err := env.parties.CreateParty(ctx, env.userID, CreatePartyRequest{
		Name:      "Mehta & Sons",
		GSTIN:     " 27abcde1234f1z5 ",
		StateCode: "27",
	})
	if err != nil {
		t.Fatalf("create party: %v", err)
	}
	if p.GSTIN != "27ABCDE1234F1Z5" {
		t.Fatalf("expected normalized gstin, got %q", p.GSTIN)
	}

	_, err = env.parties.CreateParty(ctx, env.userID, CreatePartyRequest{
		Name: "Bad State", StateCode: "ZZ",
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for state code, got %v", err)
	}
}

func TestListPartiesFiltersByName(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedParty(t, env.userID, "Surat Silk House", "27")
	env.seedParty(t, env.userID, "Mumbai Cotton Co", "27")
	env.seedParty(t, env.userID, "Silk Route Traders", "29")

	list, total, err := env.parties.ListParties(ctx, env.userID, "silk", 1, 20)
	if err != nil {
		t.Fatalf("list parties: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("expected 2 silk matches, got %d/%d", total, len(list))
	}

	// Other users' parties stay invisible.
	other := env.seedUser(t, "other")
	list, total, err = env.parties.ListParties(ctx, other, "", 1, 20)
	if err != nil {
		t.Fatalf("list for other user: %v", err)
	}
	if total != 0 || len(list) != 0 {
		t.Fatalf("expected empty list for other user, got %d", total)
	}
}

func TestUpdateAndDeleteParty(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.seedParty(t, env.userID, "Old Name", "27")

	name := "New Name"
	state := "24"
	got, err := env.parties.UpdateParty(ctx, env.userID, p.ID, UpdatePartyRequest{Name: &name, StateCode: &state})
	if err != nil {
		t.Fatalf("update party: %v", err)
	}
	if got.Name != "New Name" || got.StateCode != "24" {
		t.Fatalf("bad update: %s / %s", got.Name, got.StateCode)
	}

	if err := env.parties.DeleteParty(ctx, env.userID, p.ID); err != nil {
		t.Fatalf("delete party: %v", err)
	}
	if _, err := env.parties.GetParty(ctx, env.userID, p.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted party gone, got %v", err)
	}
}
