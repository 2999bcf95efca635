// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/atlastrips/proposal-engine/internal/apperr"
	"github.com/atlastrips/proposal-engine/internal/model"
	"github.com/atlastrips/proposal-engine/internal/service"
)

// ProposalHandler holds all HTTP handlers for the proposal API.
type ProposalHandler struct {
	svc *service.ProposalService
}

// NewProposalHandler constructs a ProposalHandler.
func NewProposalHandler(svc *service.ProposalService) *ProposalHandler {
	return &ProposalHandler{svc: svc}
}

// Routes mounts all proposal routes on a chi router.
func (h *ProposalHandler) Routes(r chi.Router) {
	r.Route("/proposals", func(r chi.Router) {
		r.Post("/", h.CreateProposal)
		r.Get("/", h.ListProposals)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetProposal)
			r.Post("/pricing", h.FinalizePricing)
			r.Get("/estimate", h.PerPersonEstimate)
			r.Post("/transition", h.Transition)
			r.Post("/inclusions", h.AddInclusion)
			r.Get("/inclusions", h.ListInclusions)
			r.Put("/inclusions/{inclusionID}", h.UpdateInclusion)
			r.Delete("/inclusions/{inclusionID}", h.DeleteInclusion)
			r.Post("/guests", h.AddGuest)
			r.Get("/guests", h.ListGuests)
			r.Get("/guests/registered", h.IsEmailRegistered)
			r.Delete("/guests/{guestID}", h.DeleteGuest)
		})
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// writeServiceError maps the engine's typed errors to HTTP statuses:
// NotFoundError to 404, capacity exhaustion to 409, any other
// ValidationError to 400, everything else to 500.
func writeServiceError(w http.ResponseWriter, err error) {
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		writeError(w, http.StatusNotFound, nf.Message)
		return
	}
	var ve *apperr.ValidationError
	if errors.As(err, &ve) {
		status := http.StatusBadRequest
		if _, full := ve.Fields["capacity"]; full {
			status = http.StatusConflict
		}
		writeJSON(w, status, model.ErrorResponse{Error: ve.Message, Fields: ve.Fields})
		return
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}

// CreateProposal handles POST /proposals
func (h *ProposalHandler) CreateProposal(w http.ResponseWriter, r *http.Request) {
	var req model.CreateProposalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.svc.CreateProposal(r.Context(), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// ListProposals handles GET /proposals
func (h *ProposalHandler) ListProposals(w http.ResponseWriter, r *http.Request) {
	proposals, err := h.svc.ListProposals(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list proposals")
		return
	}
	if proposals == nil {
		proposals = []model.Proposal{}
	}
	writeJSON(w, http.StatusOK, proposals)
}

// GetProposal handles GET /proposals/{id}
func (h *ProposalHandler) GetProposal(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProposal(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// FinalizePricing handles POST /proposals/{id}/pricing
// Recomputes and persists the proposal's full cost breakdown.
func (h *ProposalHandler) FinalizePricing(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.FinalizePricing(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// PerPersonEstimate handles GET /proposals/{id}/estimate
func (h *ProposalHandler) PerPersonEstimate(w http.ResponseWriter, r *http.Request) {
	est, err := h.svc.PerPersonEstimate(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, est)
}

// Transition handles POST /proposals/{id}/transition
func (h *ProposalHandler) Transition(w http.ResponseWriter, r *http.Request) {
	var req model.TransitionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	p, err := h.svc.Transition(r.Context(), chi.URLParam(r, "id"), req.Target)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// AddInclusion handles POST /proposals/{id}/inclusions
func (h *ProposalHandler) AddInclusion(w http.ResponseWriter, r *http.Request) {
	var req model.InclusionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	inc, err := h.svc.AddInclusion(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, inc)
}

// UpdateInclusion handles PUT /proposals/{id}/inclusions/{inclusionID}
func (h *ProposalHandler) UpdateInclusion(w http.ResponseWriter, r *http.Request) {
	var req model.InclusionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	inc, err := h.svc.UpdateInclusion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "inclusionID"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inc)
}

// DeleteInclusion handles DELETE /proposals/{id}/inclusions/{inclusionID}
func (h *ProposalHandler) DeleteInclusion(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteInclusion(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "inclusionID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListInclusions handles GET /proposals/{id}/inclusions
func (h *ProposalHandler) ListInclusions(w http.ResponseWriter, r *http.Request) {
	inclusions, err := h.svc.ListInclusions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if inclusions == nil {
		inclusions = []model.Inclusion{}
	}
	writeJSON(w, http.StatusOK, inclusions)
}

// AddGuest handles POST /proposals/{id}/guests
// Capacity enforcement happens atomically at the storage layer; a full
// roster comes back as 409.
func (h *ProposalHandler) AddGuest(w http.ResponseWriter, r *http.Request) {
	var req model.GuestRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	g, err := h.svc.AddGuest(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, g)
}

// ListGuests handles GET /proposals/{id}/guests
func (h *ProposalHandler) ListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := h.svc.ListGuests(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if guests == nil {
		guests = []model.Guest{}
	}
	writeJSON(w, http.StatusOK, guests)
}

// IsEmailRegistered handles GET /proposals/{id}/guests/registered?email=…
func (h *ProposalHandler) IsEmailRegistered(w http.ResponseWriter, r *http.Request) {
	registered, err := h.svc.IsEmailRegistered(r.Context(), chi.URLParam(r, "id"), r.URL.Query().Get("email"))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"registered": registered})
}

// DeleteGuest handles DELETE /proposals/{id}/guests/{guestID}
func (h *ProposalHandler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteGuest(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "guestID")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
