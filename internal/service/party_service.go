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

var stateCodePattern = regexp.MustCompile(`^[0-9]{2}$`)

type CreatePartyRequest struct {
	Name      string `json:"name" binding:"required"`
	Address   string `json:"address"`
	GSTIN     string `json:"gstin"`
	StateCode string `json:"state_code" binding:"required"`
	Phone     string `json:"phone"`
}

type UpdatePartyRequest struct {
	Name      *string `json:"name"`
	Address   *string `json:"address"`
	GSTIN     *string `json:"gstin"`
	StateCode *string `json:"state_code"`
	Phone     *string `json:"phone"`
}

type PartyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Address   string `json:"address"`
	GSTIN     string `json:"gstin"`
	StateCode string `json:"state_code"`
	Phone     string `json:"phone"`
	CreatedAt string `json:"created_at"`
}

type PartyService interface {
	CreateParty(ctx context.Context, userID string, req CreatePartyRequest) (PartyResponse, error)
	GetParty(ctx context.Context, userID, id string) (PartyResponse, error)
	ListParties(ctx context.Context, userID, name string, page, limit int) ([]PartyResponse, int64, error)
	UpdateParty(ctx context.Context, userID, id string, req UpdatePartyRequest) (PartyResponse, error)
	DeleteParty(ctx context.Context, userID, id string) error
}

type partyService struct {
	partyRepo repository.PartyRepository
}

func NewPartyService(partyRepo repository.PartyRepository) PartyService {
	return &partyService{partyRepo: partyRepo}
}

func (s *partyService) CreateParty(ctx context.Context, userID string, req CreatePartyRequest) (PartyResponse, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return PartyResponse{}, validationErr("invalid user id")
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return PartyResponse{}, validationErr("name cannot be empty")
	}
	if !stateCodePattern.MatchString(req.StateCode) {
		return PartyResponse{}, validationErr("state_code must be a 2-digit GST state code")
	}

	party := model.Party{
		UserID:    uid,
		Name:      name,
		Address:   req.Address,
		GSTIN:     strings.ToUpper(strings.TrimSpace(req.GSTIN)),
		StateCode: req.StateCode,
		Phone:     req.Phone,
	}
	if err := s.partyRepo.Create(ctx, &party); err != nil {
		return PartyResponse{}, fmt.Errorf("failed to create party: %w", err)
	}
	return toPartyResponse(party), nil
}

func (s *partyService) GetParty(ctx context.Context, userID, id string) (PartyResponse, error) {
	uid, partyID, err := parseOwned(userID, id)
	if err != nil {
		return PartyResponse{}, err
	}
	party, err := s.partyRepo.FindByIDForUser(ctx, partyID, uid)
	if err != nil {
		return PartyResponse{}, asNotFound(err, "party %s not found", id)
	}
	return toPartyResponse(*party), nil
}

func (s *partyService) ListParties(ctx context.Context, userID, name string, page, limit int) ([]PartyResponse, int64, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, 0, validationErr("invalid user id")
	}
	page, limit = pagination.Normalize(page, limit)

	parties, total, err := s.partyRepo.List(ctx, uid, name, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch parties: %w", err)
	}

	result := make([]PartyResponse, 0, len(parties))
	for _, p := range parties {
		result = append(result, toPartyResponse(p))
	}
	return result, total, nil
}

func (s *partyService) UpdateParty(ctx context.Context, userID, id string, req UpdatePartyRequest) (PartyResponse, error) {
	uid, partyID, err := parseOwned(userID, id)
	if err != nil {
		return PartyResponse{}, err
	}

	party, err := s.partyRepo.FindByIDForUser(ctx, partyID, uid)
	if err != nil {
		return PartyResponse{}, asNotFound(err, "party %s not found", id)
	}

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return PartyResponse{}, validationErr("name cannot be empty")
		}
		party.Name = name
	}
	if req.Address != nil {
		party.Address = *req.Address
	}
	if req.GSTIN != nil {
		party.GSTIN = strings.ToUpper(strings.TrimSpace(*req.GSTIN))
	}
	if req.StateCode != nil {
		if !stateCodePattern.MatchString(*req.StateCode) {
			return PartyResponse{}, validationErr("state_code must be a 2-digit GST state code")
		}
		party.StateCode = *req.StateCode
	}
	if req.Phone != nil {
		party.Phone = *req.Phone
	}

	if err := s.partyRepo.Update(ctx, party); err != nil {
		return PartyResponse{}, fmt.Errorf("failed to update party: %w", err)
	}
	return toPartyResponse(*party), nil
}

func (s *partyService) DeleteParty(ctx context.Context, userID, id string) error {
	uid, partyID, err := parseOwned(userID, id)
	if err != nil {
		return err
	}
	party, err := s.partyRepo.FindByIDForUser(ctx, partyID, uid)
	if err != nil {
		return asNotFound(err, "party %s not found", id)
	}
	if err := s.partyRepo.Delete(ctx, party.ID); err != nil {
		return fmt.Errorf("failed to delete party: %w", err)
	}
	return nil
}

func toPartyResponse(p model.Party) PartyResponse {
	return PartyResponse{
		ID:        p.ID.String(),
		Name:      p.Name,
		Address:   p.Address,
		GSTIN:     p.GSTIN,
		StateCode: p.StateCode,
		Phone:     p.Phone,
		CreatedAt: p.CreatedAt.Format(time.RFC3339),
	}
}
