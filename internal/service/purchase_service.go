package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/pkg/pagination"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Weights are entered in tons, rates in rupees per kg.
var kgPerTon = decimal.NewFromInt(1000)

// --- DTOs ---

type CreatePurchaseRequest struct {
	PartyID            string `json:"party_id"`
	PartyName          string `json:"party_name"`
	YarnType           string `json:"yarn_type"`
	Date               string `json:"date"`
	ApproxQuantity     string `json:"approx_quantity" binding:"required"`
	RatePerKg          string `json:"rate_per_kg" binding:"required"`
	GodownChargesPerKg string `json:"godown_charges_per_kg"`
}

type UpdatePurchaseRequest struct {
	YarnType           *string `json:"yarn_type"`
	ApproxQuantity     *string `json:"approx_quantity"`
	RatePerKg          *string `json:"rate_per_kg"`
	GodownChargesPerKg *string `json:"godown_charges_per_kg"`
}

type PaymentRequest struct {
	Amount string `json:"amount" binding:"required"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

type CreateDeliveryRequest struct {
	Date           string           `json:"date"`
	ActualWeight   string           `json:"actual_weight" binding:"required"`
	DeductFromDeal string           `json:"deduct_from_deal"` // defaults to actual_weight
	Payments       []PaymentRequest `json:"payments" binding:"omitempty,dive"`
}

type UpdateDeliveryRequest struct {
	Date           *string           `json:"date"`
	ActualWeight   *string           `json:"actual_weight"`
	DeductFromDeal *string           `json:"deduct_from_deal"`
	Payments       *[]PaymentRequest `json:"payments" binding:"omitempty,dive"`
}

type PaymentResponse struct {
	ID     string `json:"id"`
	Amount string `json:"amount"`
	Date   string `json:"date"`
	Note   string `json:"note"`
}

type DeliveryResponse struct {
	ID                 string            `json:"id"`
	PurchaseID         string            `json:"purchase_id"`
	Date               string            `json:"date"`
	ActualWeight       string            `json:"actual_weight"`
	DeductFromDeal     string            `json:"deduct_from_deal"`
	RatePerKg          string            `json:"rate_per_kg"`
	GodownChargesPerKg string            `json:"godown_charges_per_kg"`
	GrossAmount        string            `json:"gross_amount"`
	GodownCharges      string            `json:"godown_charges"`
	NetAmount          string            `json:"net_amount"`
	AmountPaid         string            `json:"amount_paid"`
	PendingAmount      string            `json:"pending_amount"`
	PaymentStatus      string            `json:"payment_status"`
	Payments           []PaymentResponse `json:"payments"`
}

type PurchaseResponse struct {
	ID                      string             `json:"id"`
	PurchaseNumber          int64              `json:"purchase_number"`
	PartyID                 *string            `json:"party_id"`
	PartyName               string             `json:"party_name"`
	YarnType                string             `json:"yarn_type"`
	Date                    string             `json:"date"`
	ApproxQuantity          string             `json:"approx_quantity"`
	RatePerKg               string             `json:"rate_per_kg"`
	GodownChargesPerKg      string             `json:"godown_charges_per_kg"`
	TotalActualWeight       string             `json:"total_actual_weight"`
	TotalDeductedWeight     string             `json:"total_deducted_weight"`
	RemainingApproxQuantity string             `json:"remaining_approx_quantity"`
	Status                  string             `json:"status"`
	Deliveries              []DeliveryResponse `json:"deliveries"`
	CreatedAt               string             `json:"created_at"`
}

// --- Interface ---

type PurchaseService interface {
	CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error)
	GetPurchase(ctx context.Context, userID, id string) (PurchaseResponse, error)
	ListPurchases(ctx context.Context, userID string, filter PurchaseFilter) ([]PurchaseResponse, int64, error)
	UpdatePurchase(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error)
	DeletePurchase(ctx context.Context, userID, id string) error
	NextPurchaseNumber(ctx context.Context) (int64, error)

	CreateDelivery(ctx context.Context, userID, purchaseID string, req CreateDeliveryRequest) (PurchaseResponse, error)
	UpdateDelivery(ctx context.Context, userID, purchaseID, deliveryID string, req UpdateDeliveryRequest) (PurchaseResponse, error)
	DeleteDelivery(ctx context.Context, userID, purchaseID, deliveryID string) (PurchaseResponse, error)
}

type PurchaseFilter struct {
	Status  string
	PartyID string
	Page    int
	Limit   int
}

type purchaseService struct {
	purchaseRepo repository.PurchaseRepository
	partyRepo    repository.PartyRepository
	seqRepo      repository.SequenceRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewPurchaseService(
	purchaseRepo repository.PurchaseRepository,
	partyRepo repository.PartyRepository,
	seqRepo repository.SequenceRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) PurchaseService {
	return &purchaseService{
		purchaseRepo: purchaseRepo,
		partyRepo:    partyRepo,
		seqRepo:      seqRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Derivation hooks ---

// normalizePurchase recomputes the purchase's derived quantity and status
// from its raw inputs and aggregates. This is the single place those fields
// are ever written.
func normalizePurchase(p *model.Purchase) {
	remaining := p.ApproxQuantity.Sub(p.TotalDeductedWeight)
	if remaining.IsNegative() {
		remaining = decimal.Zero
	}
	p.RemainingApproxQuantity = remaining

	switch {
	case p.TotalDeductedWeight.IsZero():
		p.Status = model.PurchaseStatusPending
	case p.TotalDeductedWeight.GreaterThanOrEqual(p.ApproxQuantity):
		p.Status = model.PurchaseStatusCompleted
	default:
		p.Status = model.PurchaseStatusPartial
	}
}

// normalizeDelivery recomputes every derived amount on a delivery from its
// raw weight, rates and payments. Weights are tons; the ton->kg factor is
// applied before the per-kg rates.
func normalizeDelivery(d *model.PurchaseDelivery) {
	weightKg := d.ActualWeight.Mul(kgPerTon)
	d.GrossAmount = weightKg.Mul(d.RatePerKg).Round(2)
	d.GodownCharges = weightKg.Mul(d.GodownChargesPerKg).Round(2)
	d.NetAmount = d.GrossAmount.Sub(d.GodownCharges).Round(2)

	paid := decimal.Zero
	for _, p := range d.Payments {
		paid = paid.Add(p.Amount)
	}
	if paid.GreaterThan(d.NetAmount) {
		paid = d.NetAmount
	}
	d.AmountPaid = paid.Round(2)

	if d.AmountPaid.GreaterThanOrEqual(d.NetAmount) {
		d.PendingAmount = decimal.Zero
	} else {
		d.PendingAmount = d.NetAmount.Sub(d.AmountPaid).Round(2)
	}

	switch {
	case d.AmountPaid.IsZero() && d.NetAmount.IsPositive():
		d.PaymentStatus = model.PaymentStatusPending
	case d.AmountPaid.GreaterThanOrEqual(d.NetAmount):
		d.PaymentStatus = model.PaymentStatusPaid
	default:
		d.PaymentStatus = model.PaymentStatusPartial
	}
}

// recomputeAggregates re-sums the purchase's deliveries and reruns the
// purchase hook. Called inside the same transaction as every delivery
// mutation so the stored aggregates never drift from their source rows.
func (s *purchaseService) recomputeAggregates(txCtx context.Context, purchase *model.Purchase) error {
	actualStr, deductedStr, err := s.purchaseRepo.SumDeliveries(txCtx, purchase.ID)
	if err != nil {
		return fmt.Errorf("failed to sum deliveries: %w", err)
	}
	actual, err := decimal.NewFromString(actualStr)
	if err != nil {
		return fmt.Errorf("bad delivery sum %q: %w", actualStr, err)
	}
	deducted, err := decimal.NewFromString(deductedStr)
	if err != nil {
		return fmt.Errorf("bad deduction sum %q: %w", deductedStr, err)
	}

	purchase.TotalActualWeight = actual
	purchase.TotalDeductedWeight = deducted
	normalizePurchase(purchase)
	if err := s.purchaseRepo.Save(txCtx, purchase); err != nil {
		return fmt.Errorf("failed to save purchase: %w", err)
	}
	return nil
}

// --- Implementation ---

func (s *purchaseService) CreatePurchase(ctx context.Context, userID string, req CreatePurchaseRequest) (PurchaseResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return PurchaseResponse{}, validationErr("invalid user id")
	}

	approx, err := parsePositiveDecimal(req.ApproxQuantity, "approx_quantity")
	if err != nil {
		return PurchaseResponse{}, err
	}
	rate, err := parsePositiveDecimal(req.RatePerKg, "rate_per_kg")
	if err != nil {
		return PurchaseResponse{}, err
	}
	godown := decimal.Zero
	if req.GodownChargesPerKg != "" {
		godown, err = decimal.NewFromString(req.GodownChargesPerKg)
		if err != nil {
			return PurchaseResponse{}, validationErr("invalid godown_charges_per_kg: %v", err)
		}
		if godown.IsNegative() {
			return PurchaseResponse{}, validationErr("godown_charges_per_kg cannot be negative")
		}
	}

	purchaseDate := time.Now()
	if req.Date != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.Date)
		if parseErr != nil {
			return PurchaseResponse{}, validationErr("invalid date: %v", parseErr)
		}
		purchaseDate = parsed
	}

	var purchase model.Purchase
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase = model.Purchase{
			UserID:             uid,
			PartyName:          req.PartyName,
			YarnType:           req.YarnType,
			PurchaseDate:       purchaseDate,
			ApproxQuantity:     approx,
			RatePerKg:          rate,
			GodownChargesPerKg: godown,
		}

		if req.PartyID != "" {
			partyID, parseErr := uuid.Parse(req.PartyID)
			if parseErr != nil {
				return validationErr("invalid party_id")
			}
			party, partyErr := s.partyRepo.FindByIDForUser(txCtx, partyID, uid)
			if partyErr != nil {
				return asNotFound(partyErr, "party %s not found", req.PartyID)
			}
			purchase.PartyID = &party.ID
			purchase.PartyName = party.Name
		}

		purchaseNumber, allocErr := s.seqRepo.Next(txCtx, repository.ScopePurchase)
		if allocErr != nil {
			return fmt.Errorf("failed to allocate purchase number: %w", allocErr)
		}
		purchase.PurchaseNumber = purchaseNumber

		normalizePurchase(&purchase)
		if createErr := s.purchaseRepo.Create(txCtx, &purchase); createErr != nil {
			return fmt.Errorf("failed to create purchase: %w", createErr)
		}

		return s.logAudit(txCtx, uid, model.ActionCreatePurchase, purchase.ID.String(), fmt.Sprintf("Purchase #%d", purchase.PurchaseNumber), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.reload(ctx, purchase.ID)
}

func (s *purchaseService) GetPurchase(ctx context.Context, userID, id string) (PurchaseResponse, error) {
	uid, purchaseID, err := parseOwned(userID, id)
	if err != nil {
		return PurchaseResponse{}, err
	}

	purchase, err := s.purchaseRepo.FindByIDWithDeliveries(ctx, purchaseID)
	if err != nil {
		return PurchaseResponse{}, asNotFound(err, "purchase %s not found", id)
	}
	if purchase.UserID != uid {
		return PurchaseResponse{}, notFoundErr("purchase %s not found", id)
	}
	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) ListPurchases(ctx context.Context, userID string, filter PurchaseFilter) ([]PurchaseResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	filter.Page, filter.Limit = pagination.Normalize(filter.Page, filter.Limit)

	repoFilter := repository.PurchaseListFilter{Status: filter.Status, Page: filter.Page, Limit: filter.Limit}
	if filter.PartyID != "" {
		partyID, parseErr := uuid.Parse(filter.PartyID)
		if parseErr != nil {
			return nil, 0, validationErr("invalid party_id")
		}
		repoFilter.PartyID = partyID
	}

	purchases, total, err := s.purchaseRepo.List(ctx, uid, repoFilter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch purchases: %w", err)
	}

	result := make([]PurchaseResponse, 0, len(purchases))
	for _, p := range purchases {
		result = append(result, toPurchaseResponse(p))
	}
	return result, total, nil
}

func (s *purchaseService) UpdatePurchase(ctx context.Context, userID, id string, req UpdatePurchaseRequest) (PurchaseResponse, error) {
	uid, purchaseID, err := parseOwned(userID, id)
	if err != nil {
		return PurchaseResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchaseRepo.FindByIDForUser(txCtx, purchaseID, uid)
		if findErr != nil {
			return asNotFound(findErr, "purchase %s not found", id)
		}

		if req.YarnType != nil {
			purchase.YarnType = *req.YarnType
		}
		if req.ApproxQuantity != nil {
			approx, parseErr := parsePositiveDecimal(*req.ApproxQuantity, "approx_quantity")
			if parseErr != nil {
				return parseErr
			}
			purchase.ApproxQuantity = approx
		}
		if req.RatePerKg != nil {
			rate, parseErr := parsePositiveDecimal(*req.RatePerKg, "rate_per_kg")
			if parseErr != nil {
				return parseErr
			}
			purchase.RatePerKg = rate
		}
		if req.GodownChargesPerKg != nil {
			godown, parseErr := decimal.NewFromString(*req.GodownChargesPerKg)
			if parseErr != nil {
				return validationErr("invalid godown_charges_per_kg: %v", parseErr)
			}
			if godown.IsNegative() {
				return validationErr("godown_charges_per_kg cannot be negative")
			}
			purchase.GodownChargesPerKg = godown
		}

		if aggErr := s.recomputeAggregates(txCtx, purchase); aggErr != nil {
			return aggErr
		}

		return s.logAudit(txCtx, uid, model.ActionUpdatePurchase, purchase.ID.String(), fmt.Sprintf("Purchase #%d", purchase.PurchaseNumber), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.reload(ctx, purchaseID)
}

func (s *purchaseService) DeletePurchase(ctx context.Context, userID, id string) error {
	uid, purchaseID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchaseRepo.FindByIDForUser(txCtx, purchaseID, uid)
		if findErr != nil {
			return asNotFound(findErr, "purchase %s not found", id)
		}

		if delErr := s.purchaseRepo.Delete(txCtx, purchase.ID); delErr != nil {
			return fmt.Errorf("failed to delete purchase: %w", delErr)
		}

		return s.logAudit(txCtx, uid, model.ActionDeletePurchase, purchase.ID.String(), fmt.Sprintf("Purchase #%d", purchase.PurchaseNumber), nil)
	})
}

func (s *purchaseService) NextPurchaseNumber(ctx context.Context) (int64, error) {
	return s.seqRepo.Peek(ctx, repository.ScopePurchase)
}

func (s *purchaseService) CreateDelivery(ctx context.Context, userID, purchaseID string, req CreateDeliveryRequest) (PurchaseResponse, error) {
	uid, pid, err := parseOwned(userID, purchaseID)
	if err != nil {
		return PurchaseResponse{}, err
	}

	actual, err := parsePositiveDecimal(req.ActualWeight, "actual_weight")
	if err != nil {
		return PurchaseResponse{}, err
	}
	deduct := actual
	if req.DeductFromDeal != "" {
		deduct, err = decimal.NewFromString(req.DeductFromDeal)
		if err != nil {
			return PurchaseResponse{}, validationErr("invalid deduct_from_deal: %v", err)
		}
		if deduct.IsNegative() {
			return PurchaseResponse{}, validationErr("deduct_from_deal cannot be negative")
		}
	}

	deliveryDate := time.Now()
	if req.Date != "" {
		parsed, parseErr := time.Parse(time.RFC3339, req.Date)
		if parseErr != nil {
			return PurchaseResponse{}, validationErr("invalid date: %v", parseErr)
		}
		deliveryDate = parsed
	}

	payments, err := buildPayments(req.Payments)
	if err != nil {
		return PurchaseResponse{}, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchaseRepo.FindByIDForUser(txCtx, pid, uid)
		if findErr != nil {
			return asNotFound(findErr, "purchase %s not found", purchaseID)
		}

		delivery := model.PurchaseDelivery{
			PurchaseID:         purchase.ID,
			DeliveryDate:       deliveryDate,
			ActualWeight:       actual,
			DeductFromDeal:     deduct,
			RatePerKg:          purchase.RatePerKg,
			GodownChargesPerKg: purchase.GodownChargesPerKg,
			Payments:           payments,
		}
		normalizeDelivery(&delivery)
		if createErr := s.purchaseRepo.CreateDelivery(txCtx, &delivery); createErr != nil {
			return fmt.Errorf("failed to create delivery: %w", createErr)
		}

		if aggErr := s.recomputeAggregates(txCtx, purchase); aggErr != nil {
			return aggErr
		}

		return s.logAudit(txCtx, uid, model.ActionCreateDelivery, delivery.ID.String(), fmt.Sprintf("Delivery for purchase #%d", purchase.PurchaseNumber), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.reload(ctx, pid)
}

func (s *purchaseService) UpdateDelivery(ctx context.Context, userID, purchaseID, deliveryID string, req UpdateDeliveryRequest) (PurchaseResponse, error) {
	uid, pid, err := parseOwned(userID, purchaseID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	did, err := uuid.Parse(deliveryID)
	if err != nil {
		return PurchaseResponse{}, validationErr("invalid delivery id")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchaseRepo.FindByIDForUser(txCtx, pid, uid)
		if findErr != nil {
			return asNotFound(findErr, "purchase %s not found", purchaseID)
		}
		delivery, delErr := s.purchaseRepo.FindDelivery(txCtx, purchase.ID, did)
		if delErr != nil {
			return asNotFound(delErr, "delivery %s not found", deliveryID)
		}

		if req.Date != nil {
			parsed, parseErr := time.Parse(time.RFC3339, *req.Date)
			if parseErr != nil {
				return validationErr("invalid date: %v", parseErr)
			}
			delivery.DeliveryDate = parsed
		}
		if req.ActualWeight != nil {
			actual, parseErr := parsePositiveDecimal(*req.ActualWeight, "actual_weight")
			if parseErr != nil {
				return parseErr
			}
			delivery.ActualWeight = actual
		}
		if req.DeductFromDeal != nil {
			deduct, parseErr := decimal.NewFromString(*req.DeductFromDeal)
			if parseErr != nil {
				return validationErr("invalid deduct_from_deal: %v", parseErr)
			}
			if deduct.IsNegative() {
				return validationErr("deduct_from_deal cannot be negative")
			}
			delivery.DeductFromDeal = deduct
		}
		if req.Payments != nil {
			payments, buildErr := buildPayments(*req.Payments)
			if buildErr != nil {
				return buildErr
			}
			if replaceErr := s.purchaseRepo.ReplaceDeliveryPayments(txCtx, delivery.ID, payments); replaceErr != nil {
				return fmt.Errorf("failed to replace payments: %w", replaceErr)
			}
			delivery.Payments = payments
		}

		normalizeDelivery(delivery)
		if saveErr := s.purchaseRepo.SaveDelivery(txCtx, delivery); saveErr != nil {
			return fmt.Errorf("failed to save delivery: %w", saveErr)
		}

		if aggErr := s.recomputeAggregates(txCtx, purchase); aggErr != nil {
			return aggErr
		}

		return s.logAudit(txCtx, uid, model.ActionUpdateDelivery, delivery.ID.String(), fmt.Sprintf("Delivery for purchase #%d", purchase.PurchaseNumber), req)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.reload(ctx, pid)
}

func (s *purchaseService) DeleteDelivery(ctx context.Context, userID, purchaseID, deliveryID string) (PurchaseResponse, error) {
	uid, pid, err := parseOwned(userID, purchaseID)
	if err != nil {
		return PurchaseResponse{}, err
	}
	did, err := uuid.Parse(deliveryID)
	if err != nil {
		return PurchaseResponse{}, validationErr("invalid delivery id")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		purchase, findErr := s.purchaseRepo.FindByIDForUser(txCtx, pid, uid)
		if findErr != nil {
			return asNotFound(findErr, "purchase %s not found", purchaseID)
		}
		delivery, delErr := s.purchaseRepo.FindDelivery(txCtx, purchase.ID, did)
		if delErr != nil {
			return asNotFound(delErr, "delivery %s not found", deliveryID)
		}

		if rmErr := s.purchaseRepo.DeleteDelivery(txCtx, delivery.ID); rmErr != nil {
			return fmt.Errorf("failed to delete delivery: %w", rmErr)
		}

		if aggErr := s.recomputeAggregates(txCtx, purchase); aggErr != nil {
			return aggErr
		}

		return s.logAudit(txCtx, uid, model.ActionDeleteDelivery, delivery.ID.String(), fmt.Sprintf("Delivery for purchase #%d", purchase.PurchaseNumber), nil)
	})
	if err != nil {
		return PurchaseResponse{}, err
	}

	return s.reload(ctx, pid)
}

// --- Helpers ---

func parsePositiveDecimal(raw, field string) (decimal.Decimal, error) {
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, validationErr("invalid %s: %v", field, err)
	}
	if !value.IsPositive() {
		return decimal.Zero, validationErr("%s must be positive", field)
	}
	return value, nil
}

func buildPayments(reqs []PaymentRequest) ([]model.DeliveryPayment, error) {
	payments := make([]model.DeliveryPayment, 0, len(reqs))
	for _, p := range reqs {
		amount, err := parsePositiveDecimal(p.Amount, "payment amount")
		if err != nil {
			return nil, err
		}
		paymentDate := time.Now()
		if p.Date != "" {
			parsed, parseErr := time.Parse(time.RFC3339, p.Date)
			if parseErr != nil {
				return nil, validationErr("invalid payment date: %v", parseErr)
			}
			paymentDate = parsed
		}
		payments = append(payments, model.DeliveryPayment{Amount: amount, PaymentDate: paymentDate, Note: p.Note})
	}
	return payments, nil
}

func (s *purchaseService) reload(ctx context.Context, id uuid.UUID) (PurchaseResponse, error) {
	purchase, err := s.purchaseRepo.FindByIDWithDeliveries(ctx, id)
	if err != nil {
		return PurchaseResponse{}, fmt.Errorf("failed to reload purchase: %w", err)
	}
	return toPurchaseResponse(*purchase), nil
}

func (s *purchaseService) logAudit(txCtx context.Context, userID uuid.UUID, action, entityID, entityName string, payload interface{}) error {
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

func toPurchaseResponse(p model.Purchase) PurchaseResponse {
	resp := PurchaseResponse{
		ID:                      p.ID.String(),
		PurchaseNumber:          p.PurchaseNumber,
		PartyName:               p.PartyName,
		YarnType:                p.YarnType,
		Date:                    p.PurchaseDate.Format(time.RFC3339),
		ApproxQuantity:          p.ApproxQuantity.StringFixed(3),
		RatePerKg:               p.RatePerKg.StringFixed(2),
		GodownChargesPerKg:      p.GodownChargesPerKg.StringFixed(2),
		TotalActualWeight:       p.TotalActualWeight.StringFixed(3),
		TotalDeductedWeight:     p.TotalDeductedWeight.StringFixed(3),
		RemainingApproxQuantity: p.RemainingApproxQuantity.StringFixed(3),
		Status:                  p.Status,
		Deliveries:              make([]DeliveryResponse, 0, len(p.Deliveries)),
		CreatedAt:               p.CreatedAt.Format(time.RFC3339),
	}
	if p.PartyID != nil {
		id := p.PartyID.String()
		resp.PartyID = &id
	}
	for _, d := range p.Deliveries {
		resp.Deliveries = append(resp.Deliveries, toDeliveryResponse(d))
	}
	return resp
}

func toDeliveryResponse(d model.PurchaseDelivery) DeliveryResponse {
	resp := DeliveryResponse{
		ID:                 d.ID.String(),
		PurchaseID:         d.PurchaseID.String(),
		Date:               d.DeliveryDate.Format(time.RFC3339),
		ActualWeight:       d.ActualWeight.StringFixed(3),
		DeductFromDeal:     d.DeductFromDeal.StringFixed(3),
		RatePerKg:          d.RatePerKg.StringFixed(2),
		GodownChargesPerKg: d.GodownChargesPerKg.StringFixed(2),
		GrossAmount:        d.GrossAmount.StringFixed(2),
		GodownCharges:      d.GodownCharges.StringFixed(2),
		NetAmount:          d.NetAmount.StringFixed(2),
		AmountPaid:         d.AmountPaid.StringFixed(2),
		PendingAmount:      d.PendingAmount.StringFixed(2),
		PaymentStatus:      d.PaymentStatus,
		Payments:           make([]PaymentResponse, 0, len(d.Payments)),
	}
	for _, p := range d.Payments {
		resp.Payments = append(resp.Payments, PaymentResponse{
			ID:     p.ID.String(),
			Amount: p.Amount.StringFixed(2),
			Date:   p.PaymentDate.Format(time.RFC3339),
			Note:   p.Note,
		})
	}
	return resp
}
