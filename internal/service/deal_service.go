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
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateDealRequest struct {
	PartyID      string `json:"party_id" binding:"required"`
	QualityID    string `json:"quality_id" binding:"required"`
	RatePerMeter string `json:"rate_per_meter" binding:"required"`
	TotalBilties int    `json:"total_bilties" binding:"required,min=1"`
}

type UpdateDealRequest struct {
	RatePerMeter *string `json:"rate_per_meter"`
	TotalBilties *int    `json:"total_bilties"`
	Status       *string `json:"status"` // ACTIVE (revert) or CANCELLED
}

type LinkChallanRequest struct {
	ChallanID string `json:"challan_id" binding:"required"`
}

type DealResponse struct {
	ID               string   `json:"id"`
	DealNumber       int64    `json:"deal_number"`
	PartyID          string   `json:"party_id"`
	QualityID        string   `json:"quality_id"`
	PartyName        string   `json:"party_name"`
	PartyAddress     string   `json:"party_address"`
	PartyGSTIN       string   `json:"party_gstin"`
	PartyStateCode   string   `json:"party_state_code"`
	QualityName      string   `json:"quality_name"`
	QualityHSNCode   string   `json:"quality_hsn_code"`
	RatePerMeter     string   `json:"rate_per_meter"`
	TotalBilties     int      `json:"total_bilties"`
	CompletedBilties int      `json:"completed_bilties"`
	Status           string   `json:"status"`
	CompletionDate   *string  `json:"completion_date"`
	ChallanIDs       []string `json:"challan_ids"`
	InvoiceIDs       []string `json:"invoice_ids"`
	CreatedAt        string   `json:"created_at"`
}

// --- Interface ---

type DealService interface {
	CreateDeal(ctx context.Context, userID string, req CreateDealRequest) (DealResponse, error)
	GetDeal(ctx context.Context, userID, id string) (DealResponse, error)
	ListDeals(ctx context.Context, userID string, filter DealFilter) ([]DealResponse, int64, error)
	UpdateDeal(ctx context.Context, userID, id string, req UpdateDealRequest) (DealResponse, error)
	LinkChallan(ctx context.Context, userID, id string, req LinkChallanRequest) (DealResponse, error)
	DeleteDeal(ctx context.Context, userID, id string) error
	NextDealNumber(ctx context.Context) (int64, error)
}

type DealFilter struct {
	Status  string
	PartyID string
	Page    int
	Limit   int
}

type dealService struct {
	dealRepo    repository.DealRepository
	partyRepo   repository.PartyRepository
	qualityRepo repository.QualityRepository
	challanRepo repository.ChallanRepository
	invoiceRepo repository.InvoiceRepository
	seqRepo     repository.SequenceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	hub         *ws.Hub
}

func NewDealService(
	dealRepo repository.DealRepository,
	partyRepo repository.PartyRepository,
	qualityRepo repository.QualityRepository,
	challanRepo repository.ChallanRepository,
	invoiceRepo repository.InvoiceRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) DealService {
	return &dealService{
		dealRepo:    dealRepo,
		partyRepo:   partyRepo,
		qualityRepo: qualityRepo,
		challanRepo: challanRepo,
		invoiceRepo: invoiceRepo,
		seqRepo:     seqRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		hub:         hub,
	}
}

// applyDealProgress is the save hook run on every deal write: an active deal
// whose completed bilties reached the target flips to COMPLETED with a
// completion stamp; an active deal with a stale stamp has it cleared.
// Returns true when this call performed the ACTIVE -> COMPLETED flip.
func applyDealProgress(deal *model.Deal) bool {
	if deal.Status != model.DealStatusActive {
		return false
	}
	if deal.CompletedBilties >= deal.TotalBilties {
		deal.Status = model.DealStatusCompleted
		now := time.Now()
		deal.CompletionDate = &now
		return true
	}
	if deal.CompletionDate != nil {
		deal.CompletionDate = nil
	}
	return false
}

// --- Implementation ---

func (s *dealService) CreateDeal(ctx context.Context, userID string, req CreateDealRequest) (DealResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return DealResponse{}, validationErr("invalid user id")
	}
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		return DealResponse{}, validationErr("invalid party_id")
	}
	qualityID, err := uuid.Parse(req.QualityID)
	if err != nil {
		return DealResponse{}, validationErr("invalid quality_id")
	}

	rate, err := decimal.NewFromString(req.RatePerMeter)
	if err != nil {
		return DealResponse{}, validationErr("invalid rate_per_meter: %v", err)
	}
	if !rate.IsPositive() {
		return DealResponse{}, validationErr("rate_per_meter must be positive")
	}
	if req.TotalBilties < 1 {
		return DealResponse{}, validationErr("total_bilties must be at least 1")
	}

	var deal model.Deal
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		party, partyErr := s.partyRepo.FindByIDForUser(txCtx, partyID, uid)
		if partyErr != nil {
			return asNotFound(partyErr, "party %s not found", req.PartyID)
		}
		quality, qualityErr := s.qualityRepo.FindByIDForUser(txCtx, qualityID, uid)
		if qualityErr != nil {
			return asNotFound(qualityErr, "quality %s not found", req.QualityID)
		}

		dealNumber, allocErr := s.seqRepo.Next(txCtx, repository.ScopeDeal)
		if allocErr != nil {
			return fmt.Errorf("failed to allocate deal number: %w", allocErr)
		}

		deal = model.Deal{
			UserID:         uid,
			DealNumber:     dealNumber,
			PartyID:        party.ID,
			QualityID:      quality.ID,
			PartyName:      party.Name,
			PartyAddress:   party.Address,
			PartyGSTIN:     party.GSTIN,
			PartyStateCode: party.StateCode,
			QualityName:    quality.Name,
			QualityHSNCode: quality.HSNCode,
			RatePerMeter:   rate,
			TotalBilties:   req.TotalBilties,
			Status:         model.DealStatusActive,
		}
		if createErr := s.dealRepo.Create(txCtx, &deal); createErr != nil {
			return fmt.Errorf("failed to create deal: %w", createErr)
		}

		return s.logAudit(txCtx, uid, model.ActionCreateDeal, deal.ID.String(), fmt.Sprintf("Deal #%d", deal.DealNumber), req)
	})
	if err != nil {
		return DealResponse{}, err
	}

	return s.reload(ctx, deal.ID)
}

func (s *dealService) GetDeal(ctx context.Context, userID, id string) (DealResponse, error) {
	uid, dealID, err := parseOwned(userID, id)
	if err != nil {
		return DealResponse{}, err
	}

	deal, err := s.dealRepo.FindByIDWithChallans(ctx, dealID)
	if err != nil {
		return DealResponse{}, asNotFound(err, "deal %s not found", id)
	}
	if deal.UserID != uid {
		return DealResponse{}, notFoundErr("deal %s not found", id)
	}
	return toDealResponse(*deal), nil
}

func (s *dealService) ListDeals(ctx context.Context, userID string, filter DealFilter) ([]DealResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	filter.Page, filter.Limit = pagination.Normalize(filter.Page, filter.Limit)

	repoFilter := repository.DealListFilter{Status: filter.Status, Page: filter.Page, Limit: filter.Limit}
	if filter.PartyID != "" {
		partyID, parseErr := uuid.Parse(filter.PartyID)
		if parseErr != nil {
			return nil, 0, validationErr("invalid party_id")
		}
		repoFilter.PartyID = partyID
	}

	deals, total, err := s.dealRepo.List(ctx, uid, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch deals: %w", err)
	}

	result := make([]DealResponse, 0, len(deals))
	for _, d := range deals {
		result = append(result, toDealResponse(d))
	}
	return result, total, nil
}

// UpdateDeal edits an active deal. A completed deal accepts exactly one
// change: a manual status revert to ACTIVE, which clears the completion
// date. Party and quality are immutable after creation.
func (s *dealService) UpdateDeal(ctx context.Context, userID, id string, req UpdateDealRequest) (DealResponse, error) {
	uid, dealID, err := parseOwned(userID, id)
	if err != nil {
		return DealResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		deal, findErr := s.dealRepo.FindByIDForUser(txCtx, dealID, uid)
		if findErr != nil {
			return asNotFound(findErr, "deal %s not found", id)
		}

		if deal.Status == model.DealStatusCompleted {
			if req.Status == nil || *req.Status != model.DealStatusActive || req.RatePerMeter != nil || req.TotalBilties != nil {
				return conflictErr("deal #%d is completed and can only be reverted to active", deal.DealNumber)
			}
			// Manual revert sticks: the auto-completion check is skipped so
			// the deal stays ACTIVE until the next progress event.
			deal.Status = model.DealStatusActive
			deal.CompletionDate = nil
		} else {
			if req.Status != nil {
				switch *req.Status {
				case model.DealStatusCancelled, model.DealStatusActive:
					deal.Status = *req.Status
				default:
					return validationErr("status must be ACTIVE or CANCELLED")
				}
			}
			if req.RatePerMeter != nil {
				rate, parseErr := decimal.NewFromString(*req.RatePerMeter)
				if parseErr != nil {
					return validationErr("invalid rate_per_meter: %v", parseErr)
				}
				if !rate.IsPositive() {
					return validationErr("rate_per_meter must be positive")
				}
				deal.RatePerMeter = rate
			}
			if req.TotalBilties != nil {
				if *req.TotalBilties < deal.CompletedBilties {
					return conflictErr("total_bilties cannot be lowered below %d completed bilties", deal.CompletedBilties)
				}
				if *req.TotalBilties < 1 {
					return validationErr("total_bilties must be at least 1")
				}
				deal.TotalBilties = *req.TotalBilties
			}
			applyDealProgress(deal)
		}

		if saveErr := s.dealRepo.Save(txCtx, deal); saveErr != nil {
			return fmt.Errorf("failed to save deal: %w", saveErr)
		}

		return s.logAudit(txCtx, uid, model.ActionUpdateDeal, deal.ID.String(), fmt.Sprintf("Deal #%d", deal.DealNumber), req)
	})
	if err != nil {
		return DealResponse{}, err
	}

	return s.reload(ctx, dealID)
}

// LinkChallan attaches an existing challan to an active deal. Linking is
// idempotent; a challan already counted complete credits the deal at once.
func (s *dealService) LinkChallan(ctx context.Context, userID, id string, req LinkChallanRequest) (DealResponse, error) {
	uid, dealID, err := parseOwned(userID, id)
	if err != nil {
		return DealResponse{}, err
	}
	challanID, err := uuid.Parse(req.ChallanID)
	if err != nil {
		return DealResponse{}, validationErr("invalid challan_id")
	}

	var dealCompleted bool
	var dealNumber int64
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		deal, findErr := s.dealRepo.FindByIDForUser(txCtx, dealID, uid)
		if findErr != nil {
			return asNotFound(findErr, "deal %s not found", id)
		}
		if deal.Status != model.DealStatusActive {
			return conflictErr("deal #%d is %s, challans can only be linked to active deals", deal.DealNumber, deal.Status)
		}

		challan, challanErr := s.challanRepo.FindByID(txCtx, challanID)
		if challanErr != nil {
			return asNotFound(challanErr, "challan %s not found", req.ChallanID)
		}
		if challan.UserID != uid {
			return notFoundErr("challan %s not found", req.ChallanID)
		}
		if challan.QualityID != deal.QualityID {
			return conflictErr("challan #%d is for a different quality than deal #%d", challan.ChallanNumber, deal.DealNumber)
		}
		if challan.DealID != nil {
			if *challan.DealID == deal.ID {
				return nil // already linked, nothing to do
			}
			return conflictErr("challan #%d is already linked to another deal", challan.ChallanNumber)
		}

		challan.DealID = &deal.ID
		if saveErr := s.challanRepo.Save(txCtx, challan); saveErr != nil {
			return fmt.Errorf("failed to link challan: %w", saveErr)
		}

		if challan.Status == model.ChallanStatusComplete {
			deal.CompletedBilties++
		}
		dealCompleted = applyDealProgress(deal)
		dealNumber = deal.DealNumber
		if saveErr := s.dealRepo.Save(txCtx, deal); saveErr != nil {
			return fmt.Errorf("failed to save deal: %w", saveErr)
		}

		return s.logAudit(txCtx, uid, model.ActionLinkChallan, deal.ID.String(), fmt.Sprintf("Deal #%d", deal.DealNumber), req)
	})
	if err != nil {
		return DealResponse{}, err
	}

	if dealCompleted && s.hub != nil {
		s.hub.BroadcastEvent("deal.completed", map[string]interface{}{"deal_number": dealNumber})
	}
	return s.reload(ctx, dealID)
}

// DeleteDeal hard-deletes a deal. Deals with linked invoices or challans
// must be cancelled instead; history behind issued documents is kept.
func (s *dealService) DeleteDeal(ctx context.Context, userID, id string) error {
	uid, dealID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		deal, findErr := s.dealRepo.FindByIDForUser(txCtx, dealID, uid)
		if findErr != nil {
			return asNotFound(findErr, "deal %s not found", id)
		}

		invoiceCount, countErr := s.invoiceRepo.CountByDeal(txCtx, deal.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count linked invoices: %w", countErr)
		}
		if invoiceCount > 0 {
			return conflictErr("deal #%d has %d linked invoices and cannot be deleted; cancel it instead", deal.DealNumber, invoiceCount)
		}

		challanCount, countErr := s.challanRepo.CountByDeal(txCtx, deal.ID)
		if countErr != nil {
			return fmt.Errorf("failed to count linked challans: %w", countErr)
		}
		if challanCount > 0 {
			return conflictErr("deal #%d has %d linked challans and cannot be deleted; cancel it instead", deal.DealNumber, challanCount)
		}

		if delErr := s.dealRepo.Delete(txCtx, deal.ID); delErr != nil {
			return fmt.Errorf("failed to delete deal: %w", delErr)
		}

		return s.logAudit(txCtx, uid, model.ActionDeleteDeal, deal.ID.String(), fmt.Sprintf("Deal #%d", deal.DealNumber), nil)
	})
}

func (s *dealService) NextDealNumber(ctx context.Context) (int64, error) {
	return s.seqRepo.Peek(ctx, repository.ScopeDeal)
}

// --- Helpers ---

func (s *dealService) reload(ctx context.Context, id uuid.UUID) (DealResponse, error) {
	deal, err := s.dealRepo.FindByIDWithChallans(ctx, id)
	if err != nil {
		return DealResponse{}, fmt.Errorf("failed to reload deal: %w", err)
	}
	return toDealResponse(*deal), nil
}

func (s *dealService) logAudit(txCtx context.Context, userID uuid.UUID, action, entityID, entityName string, payload interface{}) error {
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

// --- Mapping ---

func toDealResponse(d model.Deal) DealResponse {
	resp := DealResponse{
		ID:               d.ID.String(),
		DealNumber:       d.DealNumber,
		PartyID:          d.PartyID.String(),
		QualityID:        d.QualityID.String(),
		PartyName:        d.PartyName,
		PartyAddress:     d.PartyAddress,
		PartyGSTIN:       d.PartyGSTIN,
		PartyStateCode:   d.PartyStateCode,
		QualityName:      d.QualityName,
		QualityHSNCode:   d.QualityHSNCode,
		RatePerMeter:     d.RatePerMeter.StringFixed(2),
		TotalBilties:     d.TotalBilties,
		CompletedBilties: d.CompletedBilties,
		Status:           d.Status,
		ChallanIDs:       make([]string, 0, len(d.Challans)),
		InvoiceIDs:       make([]string, 0, len(d.Invoices)),
		CreatedAt:        d.CreatedAt.Format(time.RFC3339),
	}
	if d.CompletionDate != nil {
		date := d.CompletionDate.Format(time.RFC3339)
		resp.CompletionDate = &date
	}
	for _, c := range d.Challans {
		resp.ChallanIDs = append(resp.ChallanIDs, c.ID.String())
	}
	for _, inv := range d.Invoices {
		resp.InvoiceIDs = append(resp.InvoiceIDs, inv.ID.String())
	}
	return resp
}
