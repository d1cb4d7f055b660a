package service

import (
	"context"
	"fmt"

	"backend/internal/repository"

	"github.com/google/uuid"
)

type ReportService interface {
	PurchaseOutstanding(ctx context.Context, userID string) ([]repository.PurchaseOutstanding, error)
	DealProgress(ctx context.Context, userID string) ([]repository.DealProgress, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func (s *reportService) PurchaseOutstanding(ctx context.Context, userID string) ([]repository.PurchaseOutstanding, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, validationErr("invalid user id")
	}
	rows, err := s.reportRepo.PurchaseOutstanding(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to build purchase outstanding report: %w", err)
	}
	return rows, nil
}

func (s *reportService) DealProgress(ctx context.Context, userID string) ([]repository.DealProgress, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, validationErr("invalid user id")
	}
	rows, err := s.reportRepo.DealProgress(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to build deal progress report: %w", err)
	}
	return rows, nil
}
