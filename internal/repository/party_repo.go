package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type PartyRepository interface {
	Create(ctx context.Context, party *model.Party) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Party, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Party, error)
	List(ctx context.Context, userID uuid.UUID, name string, page, limit int) ([]model.Party, int64, error)
	Update(ctx context.Context, party *model.Party) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type partyRepository struct {
	db *gorm.DB
}

func NewPartyRepository(db *gorm.DB) PartyRepository {
	return &partyRepository{db: db}
}

func (r *partyRepository) Create(ctx context.Context, party *model.Party) error {
	return GetDB(ctx, r.db).Create(party).Error
}

func (r *partyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Party, error) {
	var party model.Party
	if err := GetDB(ctx, r.db).First(&party, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Party, error) {
	var party model.Party
	if err := GetDB(ctx, r.db).First(&party, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &party, nil
}

func (r *partyRepository) List(ctx context.Context, userID uuid.UUID, name string, page, limit int) ([]model.Party, int64, error) {
	var parties []model.Party
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Party{}).Where("user_id = ?", userID)
	if name != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+name+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Order("name asc").Offset(offset).Limit(limit).Find(&parties).Error; err != nil {
		return nil, 0, err
	}

	return parties, total, nil
}

func (r *partyRepository) Update(ctx context.Context, party *model.Party) error {
	return GetDB(ctx, r.db).Save(party).Error
}

func (r *partyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Party{}).Error
}
