package repository

import (
	"context"
	"errors"

	"backend/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Sequence scopes for globally numbered documents. Bill numbers are scoped
// per user via BillScope.
const (
	ScopeDeal     = "deal"
	ScopePurchase = "purchase"
)

// BillScope returns the per-user scope key for tax invoice numbering.
func BillScope(userID string) string {
	return "bill:" + userID
}

// SequenceRepository issues the next number for a scope. Next must be called
// inside a transaction so an aborted document write rolls the increment back
// with it; a committed-then-unused value stays skipped, which is acceptable —
// uniqueness is the invariant, not gaplessness.
type SequenceRepository interface {
	Next(ctx context.Context, scope string) (int64, error)
	Peek(ctx context.Context, scope string) (int64, error)
}

type sequenceRepository struct {
	db *gorm.DB
}

func NewSequenceRepository(db *gorm.DB) SequenceRepository {
	return &sequenceRepository{db: db}
}

func (r *sequenceRepository) Next(ctx context.Context, scope string) (int64, error) {
	db := GetDB(ctx, r.db)

	// Ensure the row exists, then increment-and-fetch. The UPDATE takes a
	// row lock, so concurrent callers serialize and each sees its own value.
	seed := model.NumberSequence{Scope: scope, Value: 0}
	if err := db.Clauses(clause.OnConflict{DoNothing: true}).Create(&seed).Error; err != nil {
		return 0, err
	}
	if err := db.Model(&model.NumberSequence{}).
		Where("scope = ?", scope).
		UpdateColumn("value", gorm.Expr("value + 1")).Error; err != nil {
		return 0, err
	}

	var seq model.NumberSequence
	if err := db.First(&seq, "scope = ?", scope).Error; err != nil {
		return 0, err
	}
	return seq.Value, nil
}

// Peek returns the number the next allocation would issue, without spending it.
func (r *sequenceRepository) Peek(ctx context.Context, scope string) (int64, error) {
	var seq model.NumberSequence
	err := GetDB(ctx, r.db).First(&seq, "scope = ?", scope).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 1, nil
	}
	if err != nil {
		return 0, err
	}
	return seq.Value + 1, nil
}
