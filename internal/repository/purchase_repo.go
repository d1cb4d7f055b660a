package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseListFilter narrows purchase listings.
type PurchaseListFilter struct {
	Status  string // PENDING, PARTIAL, COMPLETED or empty for all
	PartyID uuid.UUID
	Page    int
	Limit   int
}

type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Purchase, error)
	FindByIDWithDeliveries(ctx context.Context, id uuid.UUID) (*model.Purchase, error)
	List(ctx context.Context, userID uuid.UUID, filter PurchaseListFilter) ([]model.Purchase, int64, error)
	Save(ctx context.Context, purchase *model.Purchase) error
	Delete(ctx context.Context, id uuid.UUID) error

	CreateDelivery(ctx context.Context, delivery *model.PurchaseDelivery) error
	FindDelivery(ctx context.Context, purchaseID, deliveryID uuid.UUID) (*model.PurchaseDelivery, error)
	SaveDelivery(ctx context.Context, delivery *model.PurchaseDelivery) error
	DeleteDelivery(ctx context.Context, id uuid.UUID) error
	ReplaceDeliveryPayments(ctx context.Context, deliveryID uuid.UUID, payments []model.DeliveryPayment) error
	SumDeliveries(ctx context.Context, purchaseID uuid.UUID) (actual, deducted string, err error)
}

type purchaseRepository struct {
	db *gorm.DB
}

func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Create(purchase).Error
}

func (r *purchaseRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).First(&purchase, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := GetDB(ctx, r.db).First(&purchase, "id = ? AND user_id = ?", id, userID).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindByIDWithDeliveries(ctx context.Context, id uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	err := GetDB(ctx, r.db).
		Preload("Deliveries", func(db *gorm.DB) *gorm.DB { return db.Order("purchase_deliveries.delivery_date asc") }).
		Preload("Deliveries.Payments").
		First(&purchase, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) List(ctx context.Context, userID uuid.UUID, filter PurchaseListFilter) ([]model.Purchase, int64, error) {
	var purchases []model.Purchase
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Purchase{}).Where("user_id = ?", userID)
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
	if err := query.
		Preload("Deliveries").
		Preload("Deliveries.Payments").
		Order("purchase_number desc").
		Offset(offset).Limit(filter.Limit).
		Find(&purchases).Error; err != nil {
		return nil, 0, err
	}

	return purchases, total, nil
}

func (r *purchaseRepository) Save(ctx context.Context, purchase *model.Purchase) error {
	return GetDB(ctx, r.db).Omit("Deliveries").Save(purchase).Error
}

func (r *purchaseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)

	var deliveryIDs []uuid.UUID
	if err := db.Model(&model.PurchaseDelivery{}).Where("purchase_id = ?", id).Pluck("id", &deliveryIDs).Error; err != nil {
		return err
	}
	if len(deliveryIDs) > 0 {
		if err := db.Where("delivery_id IN ?", deliveryIDs).Delete(&model.DeliveryPayment{}).Error; err != nil {
			return err
		}
		if err := db.Where("purchase_id = ?", id).Delete(&model.PurchaseDelivery{}).Error; err != nil {
			return err
		}
	}
	return db.Where("id = ?", id).Delete(&model.Purchase{}).Error
}

func (r *purchaseRepository) CreateDelivery(ctx context.Context, delivery *model.PurchaseDelivery) error {
	return GetDB(ctx, r.db).Create(delivery).Error
}

func (r *purchaseRepository) FindDelivery(ctx context.Context, purchaseID, deliveryID uuid.UUID) (*model.PurchaseDelivery, error) {
	var delivery model.PurchaseDelivery
	err := GetDB(ctx, r.db).Preload("Payments").First(&delivery, "id = ? AND purchase_id = ?", deliveryID, purchaseID).Error
	if err != nil {
		return nil, err
	}
	return &delivery, nil
}

func (r *purchaseRepository) SaveDelivery(ctx context.Context, delivery *model.PurchaseDelivery) error {
	return GetDB(ctx, r.db).Omit("Payments").Save(delivery).Error
}

func (r *purchaseRepository) DeleteDelivery(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("delivery_id = ?", id).Delete(&model.DeliveryPayment{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.PurchaseDelivery{}).Error
}

func (r *purchaseRepository) ReplaceDeliveryPayments(ctx context.Context, deliveryID uuid.UUID, payments []model.DeliveryPayment) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("delivery_id = ?", deliveryID).Delete(&model.DeliveryPayment{}).Error; err != nil {
		return err
	}
	if len(payments) == 0 {
		return nil
	}
	for i := range payments {
		payments[i].DeliveryID = deliveryID
	}
	return db.Create(&payments).Error
}

// SumDeliveries aggregates actual/deducted weights across a purchase's
// deliveries. Sums come back as strings so decimal parsing stays lossless.
func (r *purchaseRepository) SumDeliveries(ctx context.Context, purchaseID uuid.UUID) (string, string, error) {
	var result struct {
		Actual   string
		Deducted string
	}
	err := GetDB(ctx, r.db).Model(&model.PurchaseDelivery{}).
		Select("COALESCE(CAST(SUM(actual_weight) AS TEXT), '0') as actual, COALESCE(CAST(SUM(deduct_from_deal) AS TEXT), '0') as deducted").
		Where("purchase_id = ?", purchaseID).
		Scan(&result).Error
	if err != nil {
		return "0", "0", err
	}
	return result.Actual, result.Deducted, nil
}
