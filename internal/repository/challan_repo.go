package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ChallanListFilter narrows challan listings.
type ChallanListFilter struct {
	QualityID uuid.UUID
	Status    string // INCOMPLETE, COMPLETE or empty for all
	IsSold    *bool
	Page      int
	Limit     int
}

type ChallanRepository interface {
	Create(ctx context.Context, challan *model.DeliveryChallan) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error)
	FindByIDWithBales(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.DeliveryChallan, error)
	List(ctx context.Context, userID uuid.UUID, filter ChallanListFilter) ([]model.DeliveryChallan, int64, error)
	Save(ctx context.Context, challan *model.DeliveryChallan) error
	Delete(ctx context.Context, id uuid.UUID) error
	CountByQuality(ctx context.Context, qualityID uuid.UUID) (int64, error)
	CountByDeal(ctx context.Context, dealID uuid.UUID) (int64, error)

	AddBale(ctx context.Context, bale *model.Bale) error
	FindBale(ctx context.Context, challanID, baleID uuid.UUID) (*model.Bale, error)
	SaveBale(ctx context.Context, bale *model.Bale) error
	DeleteBale(ctx context.Context, id uuid.UUID) error
	ReplaceBaleCloths(ctx context.Context, baleID uuid.UUID, cloths []model.Cloth) error
	CountBales(ctx context.Context, challanID uuid.UUID) (int64, error)
}

type challanRepository struct {
	db *gorm.DB
}

func NewChallanRepository(db *gorm.DB) ChallanRepository {
	return &challanRepository{db: db}
}

func (r *challanRepository) Create(ctx context.Context, challan *model.DeliveryChallan) error {
	return GetDB(ctx, r.db).Create(challan).Error
}

func (r *challanRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error) {
	var challan model.DeliveryChallan
	if err := GetDB(ctx, r.db).First(&challan, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &challan, nil
}

func (r *challanRepository) FindByIDWithBales(ctx context.Context, id uuid.UUID) (*model.DeliveryChallan, error) {
	var challan model.DeliveryChallan
	err := GetDB(ctx, r.db).
		Preload("Bales", func(db *gorm.DB) *gorm.DB { return db.Order("bales.bale_number asc") }).
		Preload("Bales.Cloths").
		First(&challan, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &challan, nil
}

func (r *challanRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.DeliveryChallan, error) {
	var challans []model.DeliveryChallan
	err := GetDB(ctx, r.db).
		Preload("Bales", func(db *gorm.DB) *gorm.DB { return db.Order("bales.bale_number asc") }).
		Preload("Bales.Cloths").
		Where("id IN ?", ids).
		Find(&challans).Error
	if err != nil {
		return nil, err
	}
	return challans, nil
}

func (r *challanRepository) List(ctx context.Context, userID uuid.UUID, filter ChallanListFilter) ([]model.DeliveryChallan, int64, error) {
	var challans []model.DeliveryChallan
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.DeliveryChallan{}).Where("user_id = ?", userID)
	if filter.QualityID != uuid.Nil {
		query = query.Where("quality_id = ?", filter.QualityID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.IsSold != nil {
		query = query.Where("is_sold = ?", *filter.IsSold)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.
		Preload("Bales", func(db *gorm.DB) *gorm.DB { return db.Order("bales.bale_number asc") }).
		Preload("Bales.Cloths").
		Order("challan_number desc").
		Offset(offset).Limit(filter.Limit).
		Find(&challans).Error; err != nil {
		return nil, 0, err
	}

	return challans, total, nil
}

func (r *challanRepository) Save(ctx context.Context, challan *model.DeliveryChallan) error {
	return GetDB(ctx, r.db).Omit("Bales").Save(challan).Error
}

func (r *challanRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)

	var baleIDs []uuid.UUID
	if err := db.Model(&model.Bale{}).Where("challan_id = ?", id).Pluck("id", &baleIDs).Error; err != nil {
		return err
	}
	if len(baleIDs) > 0 {
		if err := db.Where("bale_id IN ?", baleIDs).Delete(&model.Cloth{}).Error; err != nil {
			return err
		}
		if err := db.Where("challan_id = ?", id).Delete(&model.Bale{}).Error; err != nil {
			return err
		}
	}
	return db.Where("id = ?", id).Delete(&model.DeliveryChallan{}).Error
}

func (r *challanRepository) CountByQuality(ctx context.Context, qualityID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DeliveryChallan{}).Where("quality_id = ?", qualityID).Count(&count).Error
	return count, err
}

func (r *challanRepository) CountByDeal(ctx context.Context, dealID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.DeliveryChallan{}).Where("deal_id = ?", dealID).Count(&count).Error
	return count, err
}

func (r *challanRepository) AddBale(ctx context.Context, bale *model.Bale) error {
	return GetDB(ctx, r.db).Create(bale).Error
}

func (r *challanRepository) FindBale(ctx context.Context, challanID, baleID uuid.UUID) (*model.Bale, error) {
	var bale model.Bale
	err := GetDB(ctx, r.db).Preload("Cloths").First(&bale, "id = ? AND challan_id = ?", baleID, challanID).Error
	if err != nil {
		return nil, err
	}
	return &bale, nil
}

func (r *challanRepository) SaveBale(ctx context.Context, bale *model.Bale) error {
	return GetDB(ctx, r.db).Omit("Cloths").Save(bale).Error
}

func (r *challanRepository) DeleteBale(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("bale_id = ?", id).Delete(&model.Cloth{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Bale{}).Error
}

func (r *challanRepository) ReplaceBaleCloths(ctx context.Context, baleID uuid.UUID, cloths []model.Cloth) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("bale_id = ?", baleID).Delete(&model.Cloth{}).Error; err != nil {
		return err
	}
	for i := range cloths {
		cloths[i].BaleID = baleID
	}
	return db.Create(&cloths).Error
}

func (r *challanRepository) CountBales(ctx context.Context, challanID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.Bale{}).Where("challan_id = ?", challanID).Count(&count).Error
	return count, err
}
