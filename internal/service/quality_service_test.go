package service

import (
	"context"
	"errors"
	"testing"
)

func TestCreateQualityValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.qualities.CreateQuality(ctx, env.userID, CreateQualityRequest{
		Name: "Bad HSN", HSNCode: "52", BalesPerChallan: 2, PiecesPerBale: 2,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for short hsn, got %v", err)
	}

	_, err = env.qualities.CreateQuality(ctx, env.userID, CreateQualityRequest{
		Name: "Zero Bales", HSNCode: "5407", BalesPerChallan: 0, PiecesPerBale: 2,
	})
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation error for zero bales, got %v", err)
	}

	q, err := env.qualities.CreateQuality(ctx, env.userID, CreateQualityRequest{
		Name: "Good One", HSNCode: "54071000", BalesPerChallan: 3, PiecesPerBale: 4,
	})
	if err != nil {
		t.Fatalf("create quality: %v", err)
	}
	if q.CurrentBaleNumber != 0 || q.CurrentChallanNumber != 0 {
		t.Fatalf("expected fresh counters, got %d/%d", q.CurrentBaleNumber, q.CurrentChallanNumber)
	}
}

func TestQualityNameUniquePerUser(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.seedQuality(t, env.userID, "Poplin", 2, 2)

	_, err := env.qualities.CreateQuality(ctx, env.userID, CreateQualityRequest{
		Name: "Poplin", HSNCode: "5407", BalesPerChallan: 2, PiecesPerBale: 2,
	})
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}

	// A different user may reuse the name.
	other := env.seedUser(t, "other")
	if _, err := env.qualities.CreateQuality(ctx, other, CreateQualityRequest{
		Name: "Poplin", HSNCode: "5407", BalesPerChallan: 2, PiecesPerBale: 2,
	}); err != nil {
		t.Fatalf("same name for other user: %v", err)
	}
}

func TestQualityCountersAdvanceWithChallans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	quality := env.seedQuality(t, env.userID, "Cotton Drill", 2, 1)

	env.seedCompleteChallan(t, env.userID, quality, "", 10)

	got, err := env.qualities.GetQuality(ctx, env.userID, quality.ID)
	if err != nil {
		t.Fatalf("get quality: %v", err)
	}
	if got.CurrentChallanNumber != 1 {
		t.Fatalf("expected challan counter 1, got %d", got.CurrentChallanNumber)
	}
	if got.CurrentBaleNumber != 2 {
		t.Fatalf("expected bale counter 2, got %d", got.CurrentBaleNumber)
	}
}

func TestDeleteQualityBlockedByChallans(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	used := env.seedQuality(t, env.userID, "Used", 1, 1)
	env.seedCompleteChallan(t, env.userID, used, "", 10)

	if err := env.qualities.DeleteQuality(ctx, env.userID, used.ID); !errors.Is(err, ErrConflict) {
		t.Fatalf("expected conflict deleting quality with challans, got %v", err)
	}

	unused := env.seedQuality(t, env.userID, "Unused", 1, 1)
	if err := env.qualities.DeleteQuality(ctx, env.userID, unused.ID); err != nil {
		t.Fatalf("delete unused quality: %v", err)
	}
	if _, err := env.qualities.GetQuality(ctx, env.userID, unused.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected deleted quality gone, got %v", err)
	}
}
