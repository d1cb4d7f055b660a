package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/google/uuid"
)

var hsnPattern = regexp.MustCompile(`^[0-9]{4,8}$`)

type CreateQualityRequest struct {
	Name            string `json:"name" binding:"required"`
	HSNCode         string `json:"hsn_code" binding:"required"`
	BalesPerChallan int    `json:"bales_per_challan" binding:"required"`
	PiecesPerBale   int    `json:"pieces_per_bale" binding:"required"`
}

type UpdateQualityRequest struct {
	Name            *string `json:"name"`
	HSNCode         *string `json:"hsn_code"`
	BalesPerChallan *int    `json:"bales_per_challan"`
	PiecesPerBale   *int    `json:"pieces_per_bale"`
}

type QualityResponse struct {
	ID                   string `json:"id"`
	Name                 string `json:"name"`
	HSNCode              string `json:"hsn_code"`
	BalesPerChallan      int    `json:"bales_per_challan"`
	PiecesPerBale        int    `json:"pieces_per_bale"`
	CurrentBaleNumber    int64  `json:"current_bale_number"`
	CurrentChallanNumber int64  `json:"current_challan_number"`
	CreatedAt            string `json:"created_at"`
}

type QualityService interface {
	CreateQuality(ctx context.Context, userID string, req CreateQualityRequest) (QualityResponse, error)
	GetQuality(ctx context.Context, userID, id string) (QualityResponse, error)
	ListQualities(ctx context.Context, userID string, page, limit int) ([]QualityResponse, int64, error)
	UpdateQuality(ctx context.Context, userID, id string, req UpdateQualityRequest) (QualityResponse, error)
	DeleteQuality(ctx context.Context, userID, id string) error
}

type qualityService struct {
	qualityRepo repository.QualityRepository
	challanRepo repository.ChallanRepository
	txManager   repository.TransactionManager
}

func NewQualityService(
	qualityRepo repository.QualityRepository,
	challanRepo repository.ChallanRepository,
	txManager repository.TransactionManager,
) QualityService {
	return &qualityService{qualityRepo: qualityRepo, challanRepo: challanRepo, txManager: txManager}
}

func validateQualityFields(name, hsn string, balesPerChallan, piecesPerBale int) error {
	if strings.TrimSpace(name) == "" {
		return validationErr("name cannot be empty")
	}
	if !hsnPattern.MatchString(hsn) {
		return validationErr("hsn_code must be 4 to 8 digits")
	}
	if balesPerChallan <= 0 {
		return validationErr("bales_per_challan must be positive")
	}
	if piecesPerBale <= 0 {
		return validationErr("pieces_per_bale must be positive")
	}
	return nil
}

func (s *qualityService) CreateQuality(ctx context.Context, userID string, req CreateQualityRequest) (QualityResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return QualityResponse{}, validationErr("invalid user id")
	}
	if err := validateQualityFields(req.Name, req.HSNCode, req.BalesPerChallan, req.PiecesPerBale); err != nil {
		return QualityResponse{}, err
	}

	name := strings.TrimSpace(req.Name)
	if _, findErr := s.qualityRepo.FindByNameForUser(ctx, name, uid); findErr == nil {
		return QualityResponse{}, conflictErr("quality %q already exists", name)
	}

	quality := model.Quality{
		UserID:          uid,
		Name:            name,
		HSNCode:         req.HSNCode,
		BalesPerChallan: req.BalesPerChallan,
		PiecesPerBale:   req.PiecesPerBale,
	}
	if err := s.qualityRepo.Create(ctx, &quality); err != nil {
		return QualityResponse{}, fmt.Errorf("failed to create quality: %w", err)
	}
	return toQualityResponse(quality), nil
}

func (s *qualityService) GetQuality(ctx context.Context, userID, id string) (QualityResponse, error) {
	uid, qualityID, err := parseOwned(userID, id)
	if err != nil {
		return QualityResponse{}, err
	}
	quality, err := s.qualityRepo.FindByIDForUser(ctx, qualityID, uid)
	if err != nil {
		return QualityResponse{}, asNotFound(err, "quality %s not found", id)
	}
	return toQualityResponse(*quality), nil
}

func (s *qualityService) ListQualities(ctx context.Context, userID string, page, limit int) ([]QualityResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	page, limit = pagination.Normalize(page, limit)

	qualities, total, err := s.qualityRepo.List(ctx, uid, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch qualities: %w", err)
	}

	result := make([]QualityResponse, 0, len(qualities))
	for _, q := range qualities {
		result = append(result, toQualityResponse(q))
	}
	return result, total, nil
}

func (s *qualityService) UpdateQuality(ctx context.Context, userID, id string, req UpdateQualityRequest) (QualityResponse, error) {
	uid, qualityID, err := parseOwned(userID, id)
	if err != nil {
		return QualityResponse{}, err
	}

	quality, err := s.qualityRepo.FindByIDForUser(ctx, qualityID, uid)
	if err != nil {
		return QualityResponse{}, asNotFound(err, "quality %s not found", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return QualityResponse{}, validationErr("name cannot be empty")
		}
		if name != quality.Name {
			if existing, findErr := s.qualityRepo.FindByNameForUser(ctx, name, uid); findErr == nil && existing.ID != quality.ID {
				return QualityResponse{}, conflictErr("quality %q already exists", name)
			}
			quality.Name = name
		}
	}
	if req.HSNCode != nil {
		if !hsnPattern.MatchString(*req.HSNCode) {
			return QualityResponse{}, validationErr("hsn_code must be 4 to 8 digits")
		}
		quality.HSNCode = *req.HSNCode
	}
	if req.BalesPerChallan != nil {
		if *req.BalesPerChallan <= 0 {
			return QualityResponse{}, validationErr("bales_per_challan must be positive")
		}
		quality.BalesPerChallan = *req.BalesPerChallan
	}
	if req.PiecesPerBale != nil {
		if *req.PiecesPerBale <= 0 {
			return QualityResponse{}, validationErr("pieces_per_bale must be positive")
		}
		quality.PiecesPerBale = *req.PiecesPerBale
	}

	if err := s.qualityRepo.Update(ctx, quality); err != nil {
		return QualityResponse{}, fmt.Errorf("failed to update quality: %w", err)
	}
	return toQualityResponse(*quality), nil
}

func (s *qualityService) DeleteQuality(ctx context.Context, userID, id string) error {
	uid, qualityID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quality, findErr := s.qualityRepo.FindByIDForUser(txCtx, qualityID, uid)
		if findErr != nil {
			return asNotFound(findErr, "quality %s not found", id)
		}

		count, countErr := s.challanRepo.CountByQuality(txCtx, quality.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count challans: %w", countErr)
		}
		if count > 0 {
			return conflictErr("quality %q has %d challans and cannot be deleted", quality.Name, count)
		}

		if delErr := s.qualityRepo.Delete(txCtx, quality.ID); delErr != nil {
			return fmt.Errorf("failed to delete quality: %w", delErr)
		}
		return nil
	})
}

func toQualityResponse(q model.Quality) QualityResponse {
	return QualityResponse{
		ID:                   q.ID.String(),
		Name:                 q.Name,
		HSNCode:              q.HSNCode,
		BalesPerChallan:      q.BalesPerChallan,
		PiecesPerBale:        q.PiecesPerBale,
		CurrentBaleNumber:    q.CurrentBaleNumber,
		CurrentChallanNumber: q.CurrentChallanNumber,
		CreatedAt:            q.CreatedAt.Format(time.RFC3339),
	}
}
