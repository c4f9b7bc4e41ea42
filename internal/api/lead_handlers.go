package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/leadvault/backend/internal/auth"
	"github.com/leadvault/backend/internal/db"
	apperrors "github.com/leadvault/backend/internal/errors"
	"github.com/leadvault/backend/internal/logger"
	"github.com/leadvault/backend/internal/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// LeadStore is the persistence surface the lead handlers use.
// Implemented by db.LeadRepository.
type LeadStore interface {
	Create(ctx context.Context, lead *db.Lead) error
	GetByID(ctx context.Context, id uuid.UUID) (*db.Lead, error)
	List(ctx context.Context, limit, offset int) ([]db.Lead, int, error)
	Update(ctx context.Context, id uuid.UUID, update *db.LeadUpdate) (*db.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type LeadHandlers struct {
	leads LeadStore
	log   *logger.Logger
}

func NewLeadHandlers(leads LeadStore) *LeadHandlers {
	return &LeadHandlers{
		leads: leads,
		log:   logger.Default().WithComponent("leads"),
	}
}

// Request/Response types

type CreateLeadRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Phone *string `json:"phone"`
}

type UpdateLeadRequest struct {
	Name       *string `json:"name"`
	Email      *string `json:"email"`
	Phone      *string `json:"phone"`
	Status     *string `json:"status"`
	AssignedTo *string `json:"assignedTo"`
}

type LeadResponse struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email,omitempty"`
	Phone      string    `json:"phone"`
	Status     string    `json:"status"`
	AssignedTo uuid.UUID `json:"assignedTo"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type LeadMessageResponse struct {
	Message string       `json:"message"`
	Lead    LeadResponse `json:"lead"`
}

type PaginatedLeadResponse struct {
	Data   []LeadResponse `json:"data"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

func leadResponse(l *db.Lead) LeadResponse {
	return LeadResponse{
		ID:         l.ID,
		Name:       l.Name,
		Email:      l.Email,
		Phone:      l.Phone,
		Status:     l.Status,
		AssignedTo: l.AssignedTo,
		CreatedAt:  l.CreatedAt,
		UpdatedAt:  l.UpdatedAt,
	}
}

// CreateLead handles POST /api/v1/leads
func (h *LeadHandlers) CreateLead(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	userCtx := auth.GetUserFromContext(r.Context())
	if userCtx == nil {
		apperrors.WriteError(w, requestID, apperrors.Unauthorized("unauthorized"))
		return
	}

	var req CreateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	failures := validation.CreateLeadRules().Validate(map[string]validation.Value{
		"name":  validation.String(req.Name),
		"email": validation.String(req.Email),
		"phone": validation.String(req.Phone),
	})
	if len(failures) > 0 {
		apperrors.WriteError(w, requestID,
			apperrors.ValidationError("validation failed").WithDetails(validation.Details(failures)))
		return
	}

	lead := &db.Lead{
		ID:         uuid.New(),
		Name:       *req.Name,
		Email:      validation.NormalizeEmail(*req.Email),
		Phone:      *req.Phone,
		Status:     db.LeadStatusOpen,
		AssignedTo: userCtx.UserID,
	}

	if err := h.leads.Create(r.Context(), lead); err != nil {
		h.log.Error(r.Context(), "failed to create lead", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to create lead"))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusCreated, LeadMessageResponse{
		Message: "Lead created successfully",
		Lead:    leadResponse(lead),
	})
}

// ListLeads handles GET /api/v1/leads
func (h *LeadHandlers) ListLeads(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	limit, offset := parsePagination(r)

	leads, total, err := h.leads.List(r.Context(), limit, offset)
	if err != nil {
		h.log.Error(r.Context(), "failed to list leads", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to list leads"))
		return
	}

	responses := make([]LeadResponse, 0, len(leads))
	for i := range leads {
		responses = append(responses, leadResponse(&leads[i]))
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, PaginatedLeadResponse{
		Data:   responses,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}

// GetLead handles GET /api/v1/leads/{id}
func (h *LeadHandlers) GetLead(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	id, ok := h.leadID(w, r, requestID)
	if !ok {
		return
	}

	lead, err := h.leads.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrLeadNotFound) {
			apperrors.WriteError(w, requestID, apperrors.LeadNotFound())
			return
		}
		h.log.Error(r.Context(), "failed to get lead", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to get lead"))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, leadResponse(lead))
}

// UpdateLead handles PUT /api/v1/leads/{id}
func (h *LeadHandlers) UpdateLead(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	id, ok := h.leadID(w, r, requestID)
	if !ok {
		return
	}

	var req UpdateLeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid request body"))
		return
	}

	failures := validation.UpdateLeadRules().Validate(map[string]validation.Value{
		"name":       validation.String(req.Name),
		"email":      validation.String(req.Email),
		"phone":      validation.String(req.Phone),
		"status":     validation.String(req.Status),
		"assignedTo": validation.String(req.AssignedTo),
	})
	if len(failures) > 0 {
		apperrors.WriteError(w, requestID,
			apperrors.ValidationError("validation failed").WithDetails(validation.Details(failures)))
		return
	}

	update := &db.LeadUpdate{
		Name:   req.Name,
		Phone:  req.Phone,
		Status: req.Status,
	}
	if req.Email != nil {
		normalized := validation.NormalizeEmail(*req.Email)
		update.Email = &normalized
	}
	if req.AssignedTo != nil {
		assignee, err := uuid.Parse(*req.AssignedTo)
		if err != nil {
			apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid assigned user ID"))
			return
		}
		update.AssignedTo = &assignee
	}

	lead, err := h.leads.Update(r.Context(), id, update)
	if err != nil {
		if errors.Is(err, db.ErrLeadNotFound) {
			apperrors.WriteError(w, requestID, apperrors.LeadNotFound())
			return
		}
		h.log.Error(r.Context(), "failed to update lead", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to update lead"))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, LeadMessageResponse{
		Message: "Lead updated successfully",
		Lead:    leadResponse(lead),
	})
}

// DeleteLead handles DELETE /api/v1/leads/{id}
func (h *LeadHandlers) DeleteLead(w http.ResponseWriter, r *http.Request) {
	requestID := apperrors.GetRequestID(r.Context())

	id, ok := h.leadID(w, r, requestID)
	if !ok {
		return
	}

	if err := h.leads.Delete(r.Context(), id); err != nil {
		if errors.Is(err, db.ErrLeadNotFound) {
			apperrors.WriteError(w, requestID, apperrors.LeadNotFound())
			return
		}
		h.log.Error(r.Context(), "failed to delete lead", err)
		apperrors.WriteError(w, requestID, apperrors.DatabaseError("failed to delete lead"))
		return
	}

	apperrors.WriteJSON(w, requestID, http.StatusOK, map[string]string{
		"message": "Lead deleted successfully",
	})
}

// leadID validates and parses the {id} path segment, writing the error
// response itself on failure.
func (h *LeadHandlers) leadID(w http.ResponseWriter, r *http.Request, requestID string) (uuid.UUID, bool) {
	raw := r.PathValue("id")

	failures := validation.LeadIDRules().Validate(map[string]validation.Value{
		"id": validation.Param(raw),
	})
	if len(failures) > 0 {
		apperrors.WriteError(w, requestID,
			apperrors.ValidationError("validation failed").WithDetails(validation.Details(failures)))
		return uuid.Nil, false
	}

	id, err := uuid.Parse(raw)
	if err != nil {
		apperrors.WriteError(w, requestID, apperrors.BadRequest("invalid lead ID format"))
		return uuid.Nil, false
	}

	return id, true
}

func parsePagination(r *http.Request) (limit, offset int) {
	limit = defaultPageLimit
	offset = 0

	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	return limit, offset
}
