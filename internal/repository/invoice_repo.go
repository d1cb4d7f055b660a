package repository

import (
	"context"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceListFilter narrows invoice listings.
type InvoiceListFilter struct {
	PartyID   uuid.UUID
	QualityID uuid.UUID
	Page      int
	Limit     int
}

type InvoiceRepository interface {
	Create(ctx context.Context, invoice *model.TaxInvoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.TaxInvoice, error)
	FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.TaxInvoice, error)
	List(ctx context.Context, userID uuid.UUID, filter InvoiceListFilter) ([]model.TaxInvoice, int64, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountByDeal(ctx context.Context, dealID uuid.UUID) (int64, error)
}

type invoiceRepository struct {
	db *gorm.DB
}

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository {
	return &invoiceRepository{db: db}
}

func (r *invoiceRepository) Create(ctx context.Context, invoice *model.TaxInvoice) error {
	return GetDB(ctx, r.db).Create(invoice).Error
}

func (r *invoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.TaxInvoice, error) {
	var invoice model.TaxInvoice
	if err := GetDB(ctx, r.db).Preload("ChallanDetails").First(&invoice, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) FindByIDForUser(ctx context.Context, id, userID uuid.UUID) (*model.TaxInvoice, error) {
	var invoice model.TaxInvoice
	err := GetDB(ctx, r.db).Preload("ChallanDetails").First(&invoice, "id = ? AND user_id = ?", id, userID).Error
	if err != nil {
		return nil, err
	}
	return &invoice, nil
}

func (r *invoiceRepository) List(ctx context.Context, userID uuid.UUID, filter InvoiceListFilter) ([]model.TaxInvoice, int64, error) {
	var invoices []model.TaxInvoice
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.TaxInvoice{}).Where("user_id = ?", userID)
	if filter.PartyID != uuid.Nil {
		query = query.Where("party_id = ?", filter.PartyID)
	}
	if filter.QualityID != uuid.Nil {
		query = query.Where("quality_id = ?", filter.QualityID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	if err := query.Preload("ChallanDetails").Order("bill_number desc").Offset(offset).Limit(filter.Limit).Find(&invoices).Error; err != nil {
		return nil, 0, err
	}

	return invoices, total, nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("invoice_id = ?", id).Delete(&model.InvoiceChallanDetail{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.TaxInvoice{}).Error
}

func (r *invoiceRepository) CountByDeal(ctx context.Context, dealID uuid.UUID) (int64, error) {
	var count int64
	err := GetDB(ctx, r.db).Model(&model.TaxInvoice{}).Where("deal_id = ?", dealID).Count(&count).Error
	return count, err
}
