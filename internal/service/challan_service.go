package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	ws "backend/internal/websocket"
	"backend/pkg/pagination"

	"github.com/google/uuid"
)

// --- DTOs ---

type ClothRequest struct {
	Meter  float64 `json:"meter" binding:"required,gt=0"`
	Weight float64 `json:"weight" binding:"required,gt=0"`
}

type BaleRequest struct {
	Date   string         `json:"date"` // RFC3339, defaults to now
	Cloths []ClothRequest `json:"cloths" binding:"required,min=1,dive"`
}

type CreateChallanRequest struct {
	QualityID string `json:"quality_id" binding:"required"`
	DealID    string `json:"deal_id"` // Optional: link the new challan to an active deal
	Date      string `json:"date"`
}

type AddBalesRequest struct {
	Bales  []BaleRequest `json:"bales" binding:"required,min=1,dive"`
	DealID string        `json:"deal_id"` // Optional: credit the deal if this save completes the challan
}

type UpdateBaleRequest struct {
	Date   string         `json:"date"`
	Cloths []ClothRequest `json:"cloths" binding:"required,min=1,dive"`
}

type ClothResponse struct {
	ID     string  `json:"id"`
	Meter  float64 `json:"meter"`
	Weight float64 `json:"weight"`
}

type BaleResponse struct {
	ID             string          `json:"id"`
	BaleNumber     int64           `json:"bale_number"`
	Date           string          `json:"date"`
	TotalMeter     float64         `json:"total_meter"`
	TotalWeight    float64         `json:"total_weight"`
	NumberOfPieces int             `json:"number_of_pieces"`
	Cloths         []ClothResponse `json:"cloths"`
}

type ChallanResponse struct {
	ID                    string         `json:"id"`
	QualityID             string         `json:"quality_id"`
	DealID                *string        `json:"deal_id"`
	InvoiceID             *string        `json:"invoice_id"`
	ChallanNumber         int64          `json:"challan_number"`
	ChallanDate           string         `json:"challan_date"`
	ExpectedBalesCount    int            `json:"expected_bales_count"`
	ExpectedPiecesPerBale int            `json:"expected_pieces_per_bale"`
	CompletedBalesCount   int            `json:"completed_bales_count"`
	Status                string         `json:"status"`
	IsSold                bool           `json:"is_sold"`
	Bales                 []BaleResponse `json:"bales"`
	CreatedAt             string         `json:"created_at"`
}

// --- Interface ---

type ChallanService interface {
	CreateChallan(ctx context.Context, userID string, req CreateChallanRequest) (ChallanResponse, error)
	GetChallan(ctx context.Context, userID, id string) (ChallanResponse, error)
	ListChallans(ctx context.Context, userID string, filter ChallanFilter) ([]ChallanResponse, int64, error)
	AddBales(ctx context.Context, userID, id string, req AddBalesRequest) (ChallanResponse, error)
	UpdateBale(ctx context.Context, userID, id, baleID string, req UpdateBaleRequest) (ChallanResponse, error)
	DeleteBale(ctx context.Context, userID, id, baleID string) (ChallanResponse, error)
	DeleteChallan(ctx context.Context, userID, id string) error
}

type ChallanFilter struct {
	QualityID string
	Status    string
	IsSold    *bool
	Page      int
	Limit     int
}

type challanService struct {
	challanRepo repository.ChallanRepository
	qualityRepo repository.QualityRepository
	dealRepo    repository.DealRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewChallanService(
	challanRepo repository.ChallanRepository,
	qualityRepo repository.QualityRepository,
	dealRepo repository.DealRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) ChallanService {
	return &challanService{
		challanRepo: challanRepo,
		qualityRepo: qualityRepo,
		dealRepo:    dealRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// --- Implementation ---

func (s *challanService) CreateChallan(ctx context.Context, userID string, req CreateChallanRequest) (ChallanResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return ChallanResponse{}, validationErr("invalid user id")
	}
	qualityID, err := uuid.Parse(req.QualityID)
	if err != nil {
		return ChallanResponse{}, validationErr("invalid quality_id")
	}

	challanDate := time.Now()
	if req.Date != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.Date)
		if parseErr != nil {
			return ChallanResponse{}, validationErr("invalid date: %v", parseErr)
		}
		challanDate = parsed
	}

	var challan model.DeliveryChallan
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quality, findErr := s.qualityRepo.FindByIDForUser(txCtx, qualityID, uid)
		if findErr != nil {
			return asNotFound(findErr, "quality %s not found", req.QualityID)
		}

		// Counter bump and challan insert share the transaction: an aborted
		// insert rolls the allocation back with it.
		challanNumber, allocErr := s.qualityRepo.NextChallanNumber(txCtx, quality.ID)
		if allocErr != nil {
			return fmt.Errorf("failed to allocate challan number: %w", allocErr)
		}

		challan = model.DeliveryChallan{
			UserID:                uid,
			QualityID:             quality.ID,
			ChallanNumber:         challanNumber,
			ChallanDate:           challanDate,
			ExpectedBalesCount:    quality.BalesPerChallan,
			ExpectedPiecesPerBale: quality.PiecesPerBale,
			Status:                model.ChallanStatusIncomplete,
		}

		if req.DealID != "" {
			dealID, parseErr := uuid.Parse(req.DealID)
			if parseErr != nil {
				return validationErr("invalid deal_id")
			}
			deal, dealErr := s.dealRepo.FindByIDForUser(txCtx, dealID, uid)
			if dealErr != nil {
				return asNotFound(dealErr, "deal %s not found", req.DealID)
			}
			if deal.Status != model.DealStatusActive {
				return conflictErr("deal %d is %s, challans can only be linked to active deals", deal.DealNumber, deal.Status)
			}
			if deal.QualityID != quality.ID {
				return conflictErr("deal %d is for quality %q, not %q", deal.DealNumber, deal.QualityName, quality.Name)
			}
			challan.DealID = &deal.ID
		}

		if createErr := s.challanRepo.Create(txCtx, &challan); createErr != nil {
			return fmt.Errorf("failed to create challan: %w", createErr)
		}

		return s.logAudit(txCtx, uid, model.ActionCreateChallan, challan.ID.String(), fmt.Sprintf("Challan #%d", challan.ChallanNumber), req)
	})
	if err != nil {
		return ChallanResponse{}, err
	}

	return s.reload(ctx, challan.ID)
}

func (s *challanService) GetChallan(ctx context.Context, userID, id string) (ChallanResponse, error) {
	uid, challanID, err := parseOwned(userID, id)
	if err != nil {
		return ChallanResponse{}, err
	}

	challan, err := s.challanRepo.FindByIDWithBales(ctx, challanID)
	if err != nil {
		return ChallanResponse{}, asNotFound(err, "challan %s not found", id)
	}
	if challan.UserID != uid {
		return ChallanResponse{}, notFoundErr("challan %s not found", id)
	}
	return toChallanResponse(*challan), nil
}

func (s *challanService) ListChallans(ctx context.Context, userID string, filter ChallanFilter) ([]ChallanResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	filter.Page, filter.Limit = pagination.Normalize(filter.Page, filter.Limit)

	repoFilter := repository.ChallanListFilter{
		Status: filter.Status,
		IsSold: filter.IsSold,
		Page:   filter.Page,
		Limit:  filter.Limit,
	}
	if filter.QualityID != "" {
		qualityID, parseErr := uuid.Parse(filter.QualityID)
		if parseErr != nil {
			return nil, 0, validationErr("invalid quality_id")
		}
		repoFilter.QualityID = qualityID
	}

	challans, total, err := s.challanRepo.List(ctx, uid, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch challans: %w", err)
	}

	result := make([]ChallanResponse, 0, len(challans))
	for _, c := range challans {
		result = append(result, toChallanResponse(c))
	}
	return result, total, nil
}

// AddBales appends bales to a challan, allocating one bale number per bale
// from the quality's counter. When the append flips the challan from
// INCOMPLETE to COMPLETE and the request names a deal already referencing
// this challan, the deal is credited one completed bilty. That completion
// transition is the only path that moves deal progress forward.
func (s *challanService) AddBales(ctx context.Context, userID, id string, req AddBalesRequest) (ChallanResponse, error) {
	uid, challanID, err := parseOwned(userID, id)
	if err != nil {
		return ChallanResponse{}, err
	}

	var challanCompleted, dealCompleted bool
	var completedDealNumber int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		challan, findErr := s.challanRepo.FindByIDWithBales(txCtx, challanID)
		if findErr != nil {
			return asNotFound(findErr, "challan %s not found", id)
		}
		if challan.UserID != uid {
			return notFoundErr("challan %s not found", id)
		}
		if challan.IsSold {
			return conflictErr("challan #%d is sold, bales can no longer be added", challan.ChallanNumber)
		}

		for _, baleReq := range req.Bales {
			bale, buildErr := s.buildBale(txCtx, challan, baleReq)
			if buildErr != nil {
				return buildErr
			}
			if addErr := s.challanRepo.AddBale(txCtx, bale); addErr != nil {
				return fmt.Errorf("failed to add bale: %w", addErr)
			}
		}

		wasComplete := challan.Status == model.ChallanStatusComplete
		challan.CompletedBalesCount = len(challan.Bales) + len(req.Bales)
		challan.Status = deriveChallanStatus(challan.CompletedBalesCount, challan.ExpectedBalesCount)
		if saveErr := s.challanRepo.Save(txCtx, challan); saveErr != nil {
			return fmt.Errorf("failed to save challan: %w", saveErr)
		}

		challanCompleted = !wasComplete && challan.Status == model.ChallanStatusComplete
		if challanCompleted && req.DealID != "" {
			dealID, parseErr := uuid.Parse(req.DealID)
			if parseErr != nil {
				return validationErr("invalid deal_id")
			}
			deal, dealErr := s.dealRepo.FindByID(txCtx, dealID)
			if dealErr != nil {
				return asNotFound(dealErr, "deal %s not found", req.DealID)
			}
			// The deal is only credited if it already references this challan.
			if challan.DealID != nil && *challan.DealID == deal.ID {
				deal.CompletedBilties++
				dealCompleted = applyDealProgress(deal)
				completedDealNumber = deal.DealNumber
				if saveErr := s.dealRepo.Save(txCtx, deal); saveErr != nil {
					return fmt.Errorf("failed to update deal progress: %w", saveErr)
				}
			}
		}

		return s.logAudit(txCtx, uid, model.ActionAddBales, challan.ID.String(), fmt.Sprintf("Challan #%d", challan.ChallanNumber), req)
	})
	if err != nil {
		return ChallanResponse{}, err
	}

	resp, err := s.reload(ctx, challanID)
	if err != nil {
		return ChallanResponse{}, err
	}

	if challanCompleted {
		s.broadcast("challan.completed", map[string]interface{}{"challan_id": resp.ID, "challan_number": resp.ChallanNumber})
	}
	if dealCompleted {
		s.broadcast("deal.completed", map[string]interface{}{"deal_number": completedDealNumber})
	}
	return resp, nil
}

func (s *challanService) UpdateBale(ctx context.Context, userID, id, baleID string, req UpdateBaleRequest) (ChallanResponse, error) {
	uid, challanID, err := parseOwned(userID, id)
	if err != nil {
		return ChallanResponse{}, err
	}
	bid, err := uuid.Parse(baleID)
	if err != nil {
		return ChallanResponse{}, validationErr("invalid bale id")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		challan, findErr := s.challanRepo.FindByID(txCtx, challanID)
		if findErr != nil {
			return asNotFound(findErr, "challan %s not found", id)
		}
		if challan.UserID != uid {
			return notFoundErr("challan %s not found", id)
		}
		if challan.IsSold {
			return conflictErr("challan #%d is sold, bales can no longer be edited", challan.ChallanNumber)
		}

		bale, baleErr := s.challanRepo.FindBale(txCtx, challanID, bid)
		if baleErr != nil {
			return asNotFound(baleErr, "bale %s not found in challan", baleID)
		}

		if req.Date != "" {
			parsed, parseErr := time.Parse(time.RFC3339, req.Date)
			if parseErr != nil {
				return validationErr("invalid date: %v", parseErr)
			}
			bale.BaleDate = parsed
		}

		cloths, totals, clothErr := buildCloths(req.Cloths)
		if clothErr != nil {
			return clothErr
		}
		bale.TotalMeter = totals.meter
		bale.TotalWeight = totals.weight
		bale.NumberOfPieces = totals.pieces

		if replaceErr := s.challanRepo.ReplaceBaleCloths(txCtx, bale.ID, cloths); replaceErr != nil {
			return fmt.Errorf("failed to replace cloths: %w", replaceErr)
		}
		if saveErr := s.challanRepo.SaveBale(txCtx, bale); saveErr != nil {
			return fmt.Errorf("failed to save bale: %w", saveErr)
		}

		if normErr := s.normalizeChallan(txCtx, challan); normErr != nil {
			return normErr
		}

		return s.logAudit(txCtx, uid, model.ActionUpdateBale, bale.ID.String(), fmt.Sprintf("Bale #%d", bale.BaleNumber), req)
	})
	if err != nil {
		return ChallanResponse{}, err
	}

	return s.reload(ctx, challanID)
}

func (s *challanService) DeleteBale(ctx context.Context, userID, id, baleID string) (ChallanResponse, error) {
	uid, challanID, err := parseOwned(userID, id)
	if err != nil {
		return ChallanResponse{}, err
	}
	bid, err := uuid.Parse(baleID)
	if err != nil {
		return ChallanResponse{}, validationErr("invalid bale id")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		challan, findErr := s.challanRepo.FindByID(txCtx, challanID)
		if findErr != nil {
			return asNotFound(findErr, "challan %s not found", id)
		}
		if challan.UserID != uid {
			return notFoundErr("challan %s not found", id)
		}
		if challan.IsSold {
			return conflictErr("challan #%d is sold, bales can no longer be deleted", challan.ChallanNumber)
		}

		bale, baleErr := s.challanRepo.FindBale(txCtx, challanID, bid)
		if baleErr != nil {
			return asNotFound(baleErr, "bale %s not found in challan", baleID)
		}
		if delErr := s.challanRepo.DeleteBale(txCtx, bale.ID); delErr != nil {
			return fmt.Errorf("failed to delete bale: %w", delErr)
		}

		if normErr := s.normalizeChallan(txCtx, challan); normErr != nil {
			return normErr
		}

		return s.logAudit(txCtx, uid, model.ActionDeleteBale, bale.ID.String(), fmt.Sprintf("Bale #%d", bale.BaleNumber), nil)
	})
	if err != nil {
		return ChallanResponse{}, err
	}

	return s.reload(ctx, challanID)
}

func (s *challanService) DeleteChallan(ctx context.Context, userID, id string) error {
	uid, challanID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		challan, findErr := s.challanRepo.FindByID(txCtx, challanID)
		if findErr != nil {
			return asNotFound(findErr, "challan %s not found", id)
		}
		if challan.UserID != uid {
			return notFoundErr("challan %s not found", id)
		}
		if challan.IsSold {
			return conflictErr("challan #%d is sold and cannot be deleted", challan.ChallanNumber)
		}

		if challan.DealID != nil {
			deal, dealErr := s.dealRepo.FindByID(txCtx, *challan.DealID)
			if dealErr != nil {
				return fmt.Errorf("failed to load linked deal: %w", dealErr)
			}
			if challan.Status == model.ChallanStatusComplete && deal.CompletedBilties > 0 {
				deal.CompletedBilties--
			}
			applyDealProgress(deal)
			if saveErr := s.dealRepo.Save(txCtx, deal); saveErr != nil {
				return fmt.Errorf("failed to update deal after unlink: %w", saveErr)
			}
		}

		if delErr := s.challanRepo.Delete(txCtx, challan.ID); delErr != nil {
			return fmt.Errorf("failed to delete challan: %w", delErr)
		}

		return s.logAudit(txCtx, uid, model.ActionDeleteChallan, challan.ID.String(), fmt.Sprintf("Challan #%d", challan.ChallanNumber), nil)
	})
}

// --- Helpers ---

type clothTotals struct {
	meter  float64
	weight float64
	pieces int
}

func buildCloths(reqs []ClothRequest) ([]model.Cloth, clothTotals, error) {
	var totals clothTotals
	cloths := make([]model.Cloth, 0, len(reqs))
	for _, c := range reqs {
		if c.Meter <= 0 || c.Weight <= 0 {
			return nil, totals, validationErr("cloth meter and weight must be positive")
		}
		cloths = append(cloths, model.Cloth{Meter: c.Meter, Weight: c.Weight})
		totals.meter += c.Meter
		totals.weight += c.Weight
		totals.pieces++
	}
	return cloths, totals, nil
}

func (s *challanService) buildBale(txCtx context.Context, challan *model.DeliveryChallan, req BaleRequest) (*model.Bale, error) {
	baleDate := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse(time.RFC3339, req.Date)
		if err != nil {
			return nil, validationErr("invalid bale date: %v", err)
		}
		baleDate = parsed
	}

	cloths, totals, err := buildCloths(req.Cloths)
	if err != nil {
		return nil, err
	}

	baleNumber, err := s.qualityRepo.NextBaleNumber(txCtx, challan.QualityID)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bale number: %w", err)
	}

	return &model.Bale{
		ChallanID:      challan.ID,
		BaleNumber:     baleNumber,
		BaleDate:       baleDate,
		TotalMeter:     totals.meter,
		TotalWeight:    totals.weight,
		NumberOfPieces: totals.pieces,
		Cloths:         cloths,
	}, nil
}

// normalizeChallan recomputes the derived bale count and status from the
// persisted bale rows. Deal progress is intentionally NOT re-derived here:
// only the add-bales completion transition credits a deal.
func (s *challanService) normalizeChallan(txCtx context.Context, challan *model.DeliveryChallan) error {
	count, err := s.challanRepo.CountBales(txCtx, challan.ID)
	if err != nil {
		return fmt.Errorf("failed to count bales: %w", err)
	}
	challan.CompletedBalesCount = int(count)
	challan.Status = deriveChallanStatus(challan.CompletedBalesCount, challan.ExpectedBalesCount)
	if err := s.challanRepo.Save(txCtx, challan); err != nil {
		return fmt.Errorf("failed to save challan: %w", err)
	}
	return nil
}

func deriveChallanStatus(balesCount, expected int) string {
	if balesCount >= expected {
		return model.ChallanStatusComplete
	}
	return model.ChallanStatusIncomplete
}

func (s *challanService) reload(ctx context.Context, id uuid.UUID) (ChallanResponse, error) {
	challan, err := s.challanRepo.FindByIDWithBales(ctx, id)
	if err != nil {
		return ChallanResponse{}, fmt.Errorf("failed to reload challan: %w", err)
	}
	return toChallanResponse(*challan), nil
}

func (s *challanService) logAudit(txCtx context.Context, userID uuid.UUID, action, entityID, entityName string, payload interface{}) error {
	details, _ := json.Marshal(payload)
	entry := &model.AuditLog{
		UserID:     &userID,
		Action:     action,
		EntityID:   entityID,
		EntityName: entityName,
		Details:    string(details),
	}
	if err := s.auditRepo.Log(txCtx, entry); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return nil
}

func (s *challanService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastEvent(event, data)
}

func parseOwned(userID, id string) (uuid.UUID, uuid.UUID, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return uuid.Nil, uuid.Nil, validationErr("invalid user id")
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, uuid.Nil, validationErr("invalid id")
	}
	return uid, parsed, nil
}

// --- Mapping ---

func toChallanResponse(c model.DeliveryChallan) ChallanResponse {
	resp := ChallanResponse{
		ID:                    c.ID.String(),
		QualityID:             c.QualityID.String(),
		ChallanNumber:         c.ChallanNumber,
		ChallanDate:           c.ChallanDate.Format(time.RFC3339),
		ExpectedBalesCount:    c.ExpectedBalesCount,
		ExpectedPiecesPerBale: c.ExpectedPiecesPerBale,
		CompletedBalesCount:   c.CompletedBalesCount,
		Status:                c.Status,
		IsSold:                c.IsSold,
		Bales:                 make([]BaleResponse, 0, len(c.Bales)),
		CreatedAt:             c.CreatedAt.Format(time.RFC3339),
	}
	if c.DealID != nil {
		id := c.DealID.String()
		resp.DealID = &id
	}
	if c.InvoiceID != nil {
		id := c.InvoiceID.String()
		resp.InvoiceID = &id
	}
	for _, b := range c.Bales {
		resp.Bales = append(resp.Bales, toBaleResponse(b))
	}
	return resp
}

func toBaleResponse(b model.Bale) BaleResponse {
	resp := BaleResponse{
		ID:             b.ID.String(),
		BaleNumber:     b.BaleNumber,
		Date:           b.BaleDate.Format(time.RFC3339),
		TotalMeter:     b.TotalMeter,
		TotalWeight:    b.TotalWeight,
		NumberOfPieces: b.NumberOfPieces,
		Cloths:         make([]ClothResponse, 0, len(b.Cloths)),
	}
	for _, c := range b.Cloths {
		resp.Cloths = append(resp.Cloths, ClothResponse{ID: c.ID.String(), Meter: c.Meter, Weight: c.Weight})
	}
	return resp
}
