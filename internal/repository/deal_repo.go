package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DealListFilter narrows deal listings.
type DealListFilter struct {
	Status  string // ACTIVE, COMPLETED, CANCELLED or empty for all
	PartyID uuid.UUID
	Page    int
	Limit   int
}

type DealRepository interface {
	Create(ctx context.Context, deal *model.Deal) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Deal, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Deal, error)
	FindByIDWithChallans(ctx context.Context, id uuid.UUID) (*model.Deal, error)
	List(ctx context.Context, userID uuid.UUID, filter DealListFilter) ([]model.Deal, int64, error)
	Save(ctx context.Context, deal *model.Deal) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type dealRepository struct {
	db *gorm.DB
}

func NewDealRepository(db *gorm.DB) DealRepository {
	return &dealRepository{db: db}
}

func (r *dealRepository) Create(ctx context.Context, deal *model.Deal) error {
	return GetDB(ctx, r.db).Create(deal).Error
}

func (r *dealRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	var deal model.Deal
	if err := GetDB(ctx, r.db).First(&deal, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Deal, error) {
	var deal model.Deal
	if err := GetDB(ctx, r.db).First(&deal, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) FindByIDWithChallans(ctx context.Context, id uuid.UUID) (*model.Deal, error) {
	var deal model.Deal
	err := GetDB(ctx, r.db).
		Preload("Challans", func(db *gorm.DB) *gorm.DB { return db.Order("delivery_challans.challan_number asc") }).
		Preload("Invoices").
		First(&deal, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &deal, nil
}

func (r *dealRepository) List(ctx context.Context, userID uuid.UUID, filter DealListFilter) ([]model.Deal, int64, error) {
	var deals []model.Deal
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Deal{}).Where("user_id = ?", userID)
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.PartyID != uuid.Nil {
		query = query.Where("party_id = ?", filter.PartyID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Order("deal_number desc").Offset(offset).Limit(filter.Limit).Find(&deals).Error; err != nil {
		return nil, 0, err
	}

	return deals, total, nil
}

func (r *dealRepository) Save(ctx context.Context, deal *model.Deal) error {
	return GetDB(ctx, r.db).Omit("Challans", "Invoices").Save(deal).Error
}

func (r *dealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Deal{}).Error
}
