package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// QualityRepository owns quality CRUD and the atomic bale/challan counters.
// NextBaleNumber/NextChallanNumber must run inside the same transaction as
// the bale/challan write they number, so an aborted write rolls the
// increment back with it.
type QualityRepository interface {
	Create(ctx context.Context, quality *model.Quality) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quality, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Quality, error)
	FindByNameForUser(ctx context.Context, name string, userID uuid.UUID) (*model.Quality, error)
	List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Quality, int64, error)
	Update(ctx context.Context, quality *model.Quality) error
	Delete(ctx context.Context, id uuid.UUID) error
	NextBaleNumber(ctx context.Context, id uuid.UUID) (int64, error)
	NextChallanNumber(ctx context.Context, id uuid.UUID) (int64, error)
}

type qualityRepository struct {
	db *gorm.DB
}

func NewQualityRepository(db *gorm.DB) QualityRepository {
	return &qualityRepository{db: db}
}

func (r *qualityRepository) Create(ctx context.Context, quality *model.Quality) error {
	return GetDB(ctx, r.db).Create(quality).Error
}

func (r *qualityRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quality, error) {
	var quality model.Quality
	if err := GetDB(ctx, r.db).First(&quality, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &quality, nil
}

func (r *qualityRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Quality, error) {
	var quality model.Quality
	if err := GetDB(ctx, r.db).First(&quality, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &quality, nil
}

func (r *qualityRepository) FindByNameForUser(ctx context.Context, name string, userID uuid.UUID) (*model.Quality, error) {
	var quality model.Quality
	if err := GetDB(ctx, r.db).First(&quality, "name = ? AND user_id = ?", name, userID).Error; err != nil {
		return nil, err
	}
	return &quality, nil
}

func (r *qualityRepository) List(ctx context.Context, userID uuid.UUID, page, limit int) ([]model.Quality, int64, error) {
	var qualities []model.Quality
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.Quality{}).Where("user_id = ?", userID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("user_id = ?", userID).Order("name asc").Offset(offset).Limit(limit).Find(&qualities).Error; err != nil {
		return nil, 0, err
	}

	return qualities, total, nil
}

func (r *qualityRepository) Update(ctx context.Context, quality *model.Quality) error {
	return GetDB(ctx, r.db).Save(quality).Error
}

func (r *qualityRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Quality{}).Error
}

func (r *qualityRepository) NextBaleNumber(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.nextCounter(ctx, id, "current_bale_number")
}

func (r *qualityRepository) NextChallanNumber(ctx context.Context, id uuid.UUID) (int64, error) {
	return r.nextCounter(ctx, id, "current_challan_number")
}

// nextCounter performs an atomic increment-and-fetch on one of the quality's
// counter columns. The UPDATE row-locks the quality, serializing concurrent
// allocations; the follow-up read inside the same transaction sees its own
// increment, so every caller gets a distinct, gap-free value.
func (r *qualityRepository) nextCounter(ctx context.Context, id uuid.UUID, column string) (int64, error) {
	db := GetDB(ctx, r.db)

	res := db.Model(&model.Quality{}).
		Where("id = ?", id).
		UpdateColumn(column, gorm.Expr(column+" + 1"))
	if res.Error != nil {
		return 0, res.Error
	}
	if res.RowsAffected == 0 {
		return 0, gorm.ErrRecordNotFound
	}

	var quality model.Quality
	if err := db.Select(column).First(&quality, "id = ?", id).Error; err != nil {
		return 0, err
	}
	if column == "current_challan_number" {
		return quality.CurrentChallanNumber, nil
	}
	return quality.CurrentBaleNumber, nil
}
