package repository

import (
	"context"
	"fmt"

	"backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PurchaseOutstanding is one row of the outstanding-payment report.
type PurchaseOutstanding struct {
	PurchaseID     uuid.UUID `json:"purchase_id"`
	PurchaseNumber int64     `json:"purchase_number"`
	PartyName      string    `json:"party_name"`
	TotalNet       string    `json:"total_net"`
	TotalPaid      string    `json:"total_paid"`
	TotalPending   string    `json:"total_pending"`
}

// DealProgress is one row of the deal progress report.
type DealProgress struct {
	DealID           uuid.UUID `json:"deal_id"`
	DealNumber       int64     `json:"deal_number"`
	PartyName        string    `json:"party_name"`
	QualityName      string    `json:"quality_name"`
	TotalBilties     int       `json:"total_bilties"`
	CompletedBilties int       `json:"completed_bilties"`
	LinkedChallans   int       `json:"linked_challans"`
}

type ReportRepository interface {
	PurchaseOutstanding(ctx context.Context, userID uuid.UUID) ([]PurchaseOutstanding, error)
	DealProgress(ctx context.Context, userID uuid.UUID) ([]DealProgress, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) PurchaseOutstanding(ctx context.Context, userID uuid.UUID) ([]PurchaseOutstanding, error) {
	var rows []PurchaseOutstanding
	err := GetDB(ctx, r.db).Table("purchase_deliveries").
		Select("purchases.id as purchase_id, purchases.purchase_number, purchases.party_name, "+
			"COALESCE(CAST(SUM(purchase_deliveries.net_amount) AS TEXT), '0') as total_net, "+
			"COALESCE(CAST(SUM(purchase_deliveries.amount_paid) AS TEXT), '0') as total_paid, "+
			"COALESCE(CAST(SUM(purchase_deliveries.pending_amount) AS TEXT), '0') as total_pending").
		Joins("JOIN purchases ON purchases.id = purchase_deliveries.purchase_id").
		Where("purchases.user_id = ?", userID).
		Group("purchases.id, purchases.purchase_number, purchases.party_name").
		Having("SUM(purchase_deliveries.pending_amount) > 0").
		Order("purchases.purchase_number").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query purchase outstanding: %w", err)
	}
	return rows, nil
}

func (r *reportRepository) DealProgress(ctx context.Context, userID uuid.UUID) ([]DealProgress, error) {
	var rows []DealProgress
	err := GetDB(ctx, r.db).Table("deals").
		Select("deals.id as deal_id, deals.deal_number, deals.party_name, deals.quality_name, "+
			"deals.total_bilties, deals.completed_bilties, COUNT(delivery_challans.id) as linked_challans").
		Joins("LEFT JOIN delivery_challans ON delivery_challans.deal_id = deals.id").
		Where("deals.user_id = ? AND deals.status = ?", userID, model.DealStatusActive).
		Group("deals.id, deals.deal_number, deals.party_name, deals.quality_name, deals.total_bilties, deals.completed_bilties").
		Order("deals.deal_number").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query deal progress: %w", err)
	}
	return rows, nil
}
