package repository

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"backend/internal/model"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupSequenceDB(t *testing.T) (SequenceRepository, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.AutoMigrate(&model.NumberSequence{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewSequenceRepository(db), db
}

func TestSequenceNextIsMonotonicPerScope(t *testing.T) {
	repo, _ := setupSequenceDB(t)
	ctx := context.Background()

	for want := int64(1); want <= 3; want++ {
		got, err := repo.Next(ctx, ScopeDeal)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if got != want {
			t.Fatalf("expected %d, got %d", want, got)
		}
	}

	// A different scope has its own counter.
	got, err := repo.Next(ctx, ScopePurchase)
	if err != nil {
		t.Fatalf("next purchase: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected purchase scope to start at 1, got %d", got)
	}
}

func TestSequencePeekDoesNotConsume(t *testing.T) {
	repo, _ := setupSequenceDB(t)
	ctx := context.Background()

	// Peek on an unseeded scope promises 1.
	got, err := repo.Peek(ctx, ScopeDeal)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected peek 1 on fresh scope, got %d", got)
	}

	if _, err := repo.Next(ctx, ScopeDeal); err != nil {
		t.Fatalf("next: %v", err)
	}
	for i := 0; i < 2; i++ {
		got, err = repo.Peek(ctx, ScopeDeal)
		if err != nil {
			t.Fatalf("peek: %v", err)
		}
		if got != 2 {
			t.Fatalf("expected peek 2, got %d", got)
		}
	}
}

func TestSequenceBillScopesAreIsolated(t *testing.T) {
	repo, _ := setupSequenceDB(t)
	ctx := context.Background()

	alice := BillScope("a3b8f0d2-0000-0000-0000-000000000001")
	bob := BillScope("a3b8f0d2-0000-0000-0000-000000000002")

	if _, err := repo.Next(ctx, alice); err != nil {
		t.Fatalf("next: %v", err)
	}
	if _, err := repo.Next(ctx, alice); err != nil {
		t.Fatalf("next: %v", err)
	}

	got, err := repo.Next(ctx, bob)
	if err != nil {
		t.Fatalf("next: %v", err)
	}
	if got != 1 {
		t.Fatalf("expected bob's numbering to start at 1, got %d", got)
	}
	got, err = repo.Peek(ctx, alice)
	if err != nil {
		t.Fatalf("peek: %v", err)
	}
	if got != 3 {
		t.Fatalf("expected alice at 3, got %d", got)
	}
}

// Interleaved callers each allocating inside their own transaction must come
// away with contiguous, duplicate-free numbers.
func TestSequenceNextInterleavedTransactions(t *testing.T) {
	repo, db := setupSequenceDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	seen := make(map[int64]bool)
	for i := 0; i < 6; i++ {
		var got int64
		err := tm.RunInTx(ctx, func(txCtx context.Context) error {
			var err error
			got, err = repo.Next(txCtx, ScopeDeal)
			return err
		})
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if seen[got] {
			t.Fatalf("number %d issued twice", got)
		}
		seen[got] = true
	}
	for want := int64(1); want <= 6; want++ {
		if !seen[want] {
			t.Fatalf("number %d was skipped", want)
		}
	}
}

func TestSequenceRollbackReleasesNumber(t *testing.T) {
	repo, db := setupSequenceDB(t)
	tm := NewTransactionManager(db)
	ctx := context.Background()

	if _, err := repo.Next(ctx, ScopeDeal); err != nil {
		t.Fatalf("next: %v", err)
	}

	// An aborted document write rolls the increment back with it.
	abort := errors.New("document write failed")
	err := tm.RunInTx(ctx, func(txCtx context.Context) error {
		got, err := repo.Next(txCtx, ScopeDeal)
		if err != nil {
			return err
		}
		if got != 2 {
			t.Fatalf("expected 2 inside tx, got %d", got)
		}
		return abort
	})
	if !errors.Is(err, abort) {
		t.Fatalf("expected tx error to surface, got %v", err)
	}

	got, err := repo.Next(ctx, ScopeDeal)
	if err != nil {
		t.Fatalf("next after rollback: %v", err)
	}
	if got != 2 {
		t.Fatalf("expected rolled-back number to be reissued, got %d", got)
	}
}
