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

// An invoice bills at most two challans; the printed layout has room for no more.
const maxChallansPerInvoice = 2

// GST on textiles is a flat 5%: split 2.5% + 2.5% (CGST+SGST) for
// intra-state sales, or 5% IGST for inter-state.
var (
	halfGSTRate = decimal.RequireFromString("0.025")
	fullGSTRate = decimal.RequireFromString("0.05")
	hundred     = decimal.NewFromInt(100)
)

// CompanyInfo is the seller's identity printed on every invoice. StateCode
// decides the tax split against the buyer's state code.
type CompanyInfo struct {
	Name      string
	Address   string
	GSTIN     string
	StateCode string
}

// --- DTOs ---

type CreateInvoiceRequest struct {
	PartyID            string   `json:"party_id" binding:"required"`
	ChallanIDs         []string `json:"challan_ids" binding:"required,min=1,max=2"`
	RatePerMeter       string   `json:"rate_per_meter" binding:"required"`
	DiscountPercentage string   `json:"discount_percentage"`
	Date               string   `json:"date"`
}

type InvoiceChallanDetailResponse struct {
	ChallanID     string         `json:"challan_id"`
	ChallanNumber int64          `json:"challan_number"`
	TotalMeter    float64        `json:"total_meter"`
	TotalPieces   int            `json:"total_pieces"`
	Bales         []BaleResponse `json:"bales"`
}

type InvoiceResponse struct {
	ID                 string                         `json:"id"`
	BillNumber         int64                          `json:"bill_number"`
	DealID             *string                        `json:"deal_id"`
	PartyID            string                         `json:"party_id"`
	QualityID          string                         `json:"quality_id"`
	PartyName          string                         `json:"party_name"`
	PartyAddress       string                         `json:"party_address"`
	PartyGSTIN         string                         `json:"party_gstin"`
	PartyStateCode     string                         `json:"party_state_code"`
	QualityName        string                         `json:"quality_name"`
	QualityHSNCode     string                         `json:"quality_hsn_code"`
	InvoiceDate        string                         `json:"invoice_date"`
	DiscountPercentage string                         `json:"discount_percentage"`
	DiscountedRate     string                         `json:"discounted_rate"`
	TotalPieces        int                            `json:"total_pieces"`
	TotalMeters        string                         `json:"total_meters"`
	Subtotal           string                         `json:"subtotal"`
	CGST               string                         `json:"cgst"`
	SGST               string                         `json:"sgst"`
	IGST               string                         `json:"igst"`
	RoundOff           string                         `json:"round_off"`
	TotalAmount        string                         `json:"total_amount"`
	ChallanDetails     []InvoiceChallanDetailResponse `json:"challan_details"`
	CreatedAt          string                         `json:"created_at"`
}

// --- Interface ---

type InvoiceService interface {
	CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error)
	GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error)
	ListInvoices(ctx context.Context, userID string, filter InvoiceFilter) ([]InvoiceResponse, int64, error)
	DeleteInvoice(ctx context.Context, userID, id string) error
	NextBillNumber(ctx context.Context, userID string) (int64, error)
}

type InvoiceFilter struct {
	PartyID   string
	QualityID string
	Page      int
	Limit     int
}

type invoiceService struct {
	invoiceRepo repository.InvoiceRepository
	challanRepo repository.ChallanRepository
	partyRepo   repository.PartyRepository
	qualityRepo repository.QualityRepository
	seqRepo     repository.SequenceRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	company     CompanyInfo
	hub         *ws.Hub
}

func NewInvoiceService(
	invoiceRepo repository.InvoiceRepository,
	challanRepo repository.ChallanRepository,
	partyRepo repository.PartyRepository,
	qualityRepo repository.QualityRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	company CompanyInfo,
	hub *ws.Hub,
) InvoiceService {
	return &invoiceService{
		invoiceRepo: invoiceRepo,
		challanRepo: challanRepo,
		partyRepo:   partyRepo,
		qualityRepo: qualityRepo,
		seqRepo:     seqRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		company:     company,
		hub:         hub,
	}
}

// --- Implementation ---

// CreateInvoice assembles a tax invoice from complete, unsold challans of a
// single quality, snapshots everything the printed document needs, and
// flips the challans to sold — all in one transaction.
func (s *invoiceService) CreateInvoice(ctx context.Context, userID string, req CreateInvoiceRequest) (InvoiceResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return InvoiceResponse{}, validationErr("invalid user id")
	}
	partyID, err := uuid.Parse(req.PartyID)
	if err != nil {
		return InvoiceResponse{}, validationErr("invalid party_id")
	}

	rate, err := decimal.NewFromString(req.RatePerMeter)
	if err != nil {
		return InvoiceResponse{}, validationErr("invalid rate_per_meter: %v", err)
	}
	if !rate.IsPositive() {
		return InvoiceResponse{}, validationErr("rate_per_meter must be positive")
	}

	discount := decimal.Zero
	if req.DiscountPercentage != "" {
		discount, err = decimal.NewFromString(req.DiscountPercentage)
		if err != nil {
			return InvoiceResponse{}, validationErr("invalid discount_percentage: %v", err)
		}
		if discount.IsNegative() || discount.GreaterThanOrEqual(hundred) {
			return InvoiceResponse{}, validationErr("discount_percentage must be in [0, 100)")
		}
	}

	if len(req.ChallanIDs) == 0 || len(req.ChallanIDs) > maxChallansPerInvoice {
		return InvoiceResponse{}, validationErr("an invoice must reference 1 to %d challans", maxChallansPerInvoice)
	}
	challanIDs := make([]uuid.UUID, 0, len(req.ChallanIDs))
	for _, raw := range req.ChallanIDs {
		parsed, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return InvoiceResponse{}, validationErr("invalid challan id %q", raw)
		}
		challanIDs = append(challanIDs, parsed)
	}

	invoiceDate := time.Now()
	if req.Date != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.Date)
		if parseErr != nil {
			return InvoiceResponse{}, validationErr("invalid date: %v", parseErr)
		}
		invoiceDate = parsed
	}

	var invoice model.TaxInvoice
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		party, partyErr := s.partyRepo.FindByIDForUser(txCtx, partyID, uid)
		if partyErr != nil {
			return asNotFound(partyErr, "party %s not found", req.PartyID)
		}

		challans, challanErr := s.challanRepo.FindByIDs(txCtx, challanIDs)
		if challanErr != nil {
			return fmt.Errorf("failed to load challans: %w", challanErr)
		}
		if len(challans) != len(challanIDs) {
			return notFoundErr("one or more challans not found")
		}

		qualityID := challans[0].QualityID
		var dealID *uuid.UUID
		for i := range challans {
			c := &challans[i]
			if c.UserID != uid {
				return notFoundErr("challan %s not found", c.ID)
			}
			if c.QualityID != qualityID {
				return conflictErr("all invoiced challans must share one quality")
			}
			if c.Status != model.ChallanStatusComplete {
				return conflictErr("challan #%d is incomplete and cannot be invoiced", c.ChallanNumber)
			}
			if c.IsSold {
				return conflictErr("challan #%d is already sold", c.ChallanNumber)
			}
			if i == 0 {
				dealID = c.DealID
			} else if dealID != nil && (c.DealID == nil || *c.DealID != *dealID) {
				dealID = nil // mixed deal linkage, leave the invoice unattached
			}
		}

		quality, qualityErr := s.qualityRepo.FindByID(txCtx, qualityID)
		if qualityErr != nil {
			return fmt.Errorf("failed to load quality: %w", qualityErr)
		}

		// Rate arithmetic: the discounted rate is what the party is billed
		// at; the raw rate is kept for internal audit and never printed.
		discountedRate := rate.Mul(decimal.NewFromInt(1).Sub(discount.Div(hundred)))

		totalMeters := decimal.Zero
		totalPieces := 0
		details := make([]model.InvoiceChallanDetail, 0, len(challans))
		for _, c := range challans {
			challanMeters := decimal.Zero
			challanPieces := 0
			for _, b := range c.Bales {
				challanMeters = challanMeters.Add(decimal.NewFromFloat(b.TotalMeter))
				challanPieces += b.NumberOfPieces
			}
			totalMeters = totalMeters.Add(challanMeters)
			totalPieces += challanPieces

			baleSnapshot, marshalErr := json.Marshal(c.Bales)
			if marshalErr != nil {
				return fmt.Errorf("failed to snapshot bales: %w", marshalErr)
			}
			details = append(details, model.InvoiceChallanDetail{
				ChallanID:     c.ID,
				ChallanNumber: c.ChallanNumber,
				TotalMeter:    challanMeters.InexactFloat64(),
				TotalPieces:   challanPieces,
				Bales:         string(baleSnapshot),
			})
		}

		subtotal := totalMeters.Mul(discountedRate).Round(2)

		cgst, sgst, igst := decimal.Zero, decimal.Zero, decimal.Zero
		if party.StateCode == s.company.StateCode {
			cgst = subtotal.Mul(halfGSTRate).Round(2)
			sgst = subtotal.Mul(halfGSTRate).Round(2)
		} else {
			igst = subtotal.Mul(fullGSTRate).Round(2)
		}

		rawTotal := subtotal.Add(cgst).Add(sgst).Add(igst)
		totalAmount := rawTotal.Round(0)
		roundOff := totalAmount.Sub(rawTotal).Round(2)

		billNumber, allocErr := s.seqRepo.Next(txCtx, repository.BillScope(userID))
		if allocErr != nil {
			return fmt.Errorf("failed to allocate bill number: %w", allocErr)
		}

		invoice = model.TaxInvoice{
			UserID:             uid,
			BillNumber:         billNumber,
			DealID:             dealID,
			PartyID:            party.ID,
			QualityID:          quality.ID,
			PartyName:          party.Name,
			PartyAddress:       party.Address,
			PartyGSTIN:         party.GSTIN,
			PartyStateCode:     party.StateCode,
			QualityName:        quality.Name,
			QualityHSNCode:     quality.HSNCode,
			InvoiceDate:        invoiceDate,
			RatePerMeter:       rate,
			DiscountPercentage: discount,
			DiscountedRate:     discountedRate.Round(4),
			TotalPieces:        totalPieces,
			TotalMeters:        totalMeters.Round(2),
			Subtotal:           subtotal,
			CGST:               cgst,
			SGST:               sgst,
			IGST:               igst,
			RoundOff:           roundOff,
			TotalAmount:        totalAmount,
			ChallanDetails:     details,
		}
		if createErr := s.invoiceRepo.Create(txCtx, &invoice); createErr != nil {
			return fmt.Errorf("failed to create invoice: %w", createErr)
		}

		// Selling is part of the same transaction: the invoice never exists
		// without its challans flipped, and vice versa.
		for i := range challans {
			c := &challans[i]
			c.IsSold = true
			c.InvoiceID = &invoice.ID
			if saveErr := s.challanRepo.Save(txCtx, c); saveErr != nil {
				return fmt.Errorf("failed to mark challan sold: %w", saveErr)
			}
		}

		return s.logAudit(txCtx, uid, model.ActionCreateInvoice, invoice.ID.String(), fmt.Sprintf("Bill #%d", invoice.BillNumber), req)
	})
	if err != nil {
		return InvoiceResponse{}, err
	}

	if s.hub != nil {
		s.hub.BroadcastEvent("invoice.created", map[string]interface{}{"invoice_id": invoice.ID.String(), "bill_number": invoice.BillNumber})
	}

	reloaded, err := s.invoiceRepo.FindByID(ctx, invoice.ID)
	if err != nil {
		return InvoiceResponse{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return toInvoiceResponse(*reloaded), nil
}

func (s *invoiceService) GetInvoice(ctx context.Context, userID, id string) (InvoiceResponse, error) {
	uid, invoiceID, err := parseOwned(userID, id)
	if err != nil {
		return InvoiceResponse{}, err
	}

	invoice, err := s.invoiceRepo.FindByIDForUser(ctx, invoiceID, uid)
	if err != nil {
		return InvoiceResponse{}, asNotFound(err, "invoice %s not found", id)
	}
	return toInvoiceResponse(*invoice), nil
}

func (s *invoiceService) ListInvoices(ctx context.Context, userID string, filter InvoiceFilter) ([]InvoiceResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	filter.Page, filter.Limit = pagination.Normalize(filter.Page, filter.Limit)

	repoFilter := repository.InvoiceListFilter{Page: filter.Page, Limit: filter.Limit}
	if filter.PartyID != "" {
		partyID, parseErr := uuid.Parse(filter.PartyID)
		if parseErr != nil {
			return nil, 0, validationErr("invalid party_id")
		}
		repoFilter.PartyID = partyID
	}
	if filter.QualityID != "" {
		qualityID, parseErr := uuid.Parse(filter.QualityID)
		if parseErr != nil {
			return nil, 0, validationErr("invalid quality_id")
		}
		repoFilter.QualityID = qualityID
	}

	invoices, total, err := s.invoiceRepo.List(ctx, uid, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invoices: %w", err)
	}

	result := make([]InvoiceResponse, 0, len(invoices))
	for _, inv := range invoices {
		result = append(result, toInvoiceResponse(inv))
	}
	return result, total, nil
}

// DeleteInvoice removes an invoice and releases its challans back to
// unsold. The bill number stays spent; numbers are never reissued.
func (s *invoiceService) DeleteInvoice(ctx context.Context, userID, id string) error {
	uid, invoiceID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		invoice, findErr := s.invoiceRepo.FindByIDForUser(txCtx, invoiceID, uid)
		if findErr != nil {
			return asNotFound(findErr, "invoice %s not found", id)
		}

		for _, detail := range invoice.ChallanDetails {
			challan, challanErr := s.challanRepo.FindByID(txCtx, detail.ChallanID)
			if challanErr != nil {
				return fmt.Errorf("failed to load challan %s: %w", detail.ChallanID, challanErr)
			}
			challan.IsSold = false
			challan.InvoiceID = nil
			if saveErr := s.challanRepo.Save(txCtx, challan); saveErr != nil {
				return fmt.Errorf("failed to release challan: %w", saveErr)
			}
		}

		if delErr := s.invoiceRepo.Delete(txCtx, invoice.ID); delErr != nil {
			return fmt.Errorf("failed to delete invoice: %w", delErr)
		}

		return s.logAudit(txCtx, uid, model.ActionDeleteInvoice, invoice.ID.String(), fmt.Sprintf("Bill #%d", invoice.BillNumber), nil)
	})
}

func (s *invoiceService) NextBillNumber(ctx context.Context, userID string) (int64, error) {
	if _, err := uuid.Parse(userID); err != nil {
		return 0, validationErr("invalid user id")
	}
	return s.seqRepo.Peek(ctx, repository.BillScope(userID))
}

// --- Helpers ---

func (s *invoiceService) logAudit(txCtx context.Context, userID uuid.UUID, action, entityID, entityName string, payload interface{}) error {
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

func toInvoiceResponse(inv model.TaxInvoice) InvoiceResponse {
	resp := InvoiceResponse{
		ID:                 inv.ID.String(),
		BillNumber:         inv.BillNumber,
		PartyID:            inv.PartyID.String(),
		QualityID:          inv.QualityID.String(),
		PartyName:          inv.PartyName,
		PartyAddress:       inv.PartyAddress,
		PartyGSTIN:         inv.PartyGSTIN,
		PartyStateCode:     inv.PartyStateCode,
		QualityName:        inv.QualityName,
		QualityHSNCode:     inv.QualityHSNCode,
		InvoiceDate:        inv.InvoiceDate.Format(time.RFC3339),
		DiscountPercentage: inv.DiscountPercentage.StringFixed(2),
		DiscountedRate:     inv.DiscountedRate.StringFixed(4),
		TotalPieces:        inv.TotalPieces,
		TotalMeters:        inv.TotalMeters.StringFixed(2),
		Subtotal:           inv.Subtotal.StringFixed(2),
		CGST:               inv.CGST.StringFixed(2),
		SGST:               inv.SGST.StringFixed(2),
		IGST:               inv.IGST.StringFixed(2),
		RoundOff:           inv.RoundOff.StringFixed(2),
		TotalAmount:        inv.TotalAmount.StringFixed(2),
		ChallanDetails:     make([]InvoiceChallanDetailResponse, 0, len(inv.ChallanDetails)),
		CreatedAt:          inv.CreatedAt.Format(time.RFC3339),
	}
	if inv.DealID != nil {
		id := inv.DealID.String()
		resp.DealID = &id
	}
	for _, d := range inv.ChallanDetails {
		detail := InvoiceChallanDetailResponse{
			ChallanID:     d.ChallanID.String(),
			ChallanNumber: d.ChallanNumber,
			TotalMeter:    d.TotalMeter,
			TotalPieces:   d.TotalPieces,
		}
		var bales []model.Bale
		if err := json.Unmarshal([]byte(d.Bales), &bales); err == nil {
			for _, b := range bales {
				detail.Bales = append(detail.Bales, toBaleResponse(b))
			}
		}
		resp.ChallanDetails = append(resp.ChallanDetails, detail)
	}
	return resp
}
