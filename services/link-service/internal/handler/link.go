package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/payload"
	"github.com/vasapolrittideah/linkbridge/services/link-service/internal/usecase"
	"github.com/vasapolrittideah/linkbridge/shared/validation"
)

const maxRequestBodyBytes = 1 << 16

// LinkHTTPHandler exposes the Link Resolver and Role Reconciler over HTTP.
type LinkHTTPHandler struct {
	logger           *zerolog.Logger
	linkUsecase      usecase.LinkUsecase
	reconcileUsecase usecase.ReconcileUsecase
	validator        *validation.Validator
}

func NewLinkHTTPHandler(
	logger *zerolog.Logger,
	linkUsecase usecase.LinkUsecase,
	reconcileUsecase usecase.ReconcileUsecase,
	validator *validation.Validator,
) *LinkHTTPHandler {
	return &LinkHTTPHandler{
		logger:           logger,
		linkUsecase:      linkUsecase,
		reconcileUsecase: reconcileUsecase,
		validator:        validator,
	}
}

// RegisterRoutes mounts the handler's routes on r.
func (h *LinkHTTPHandler) RegisterRoutes(r chi.Router) {
	r.Post("/links", h.ResolveLink)
	r.Post("/reconciliations", h.Reconcile)
}

func (h *LinkHTTPHandler) ResolveLink(w http.ResponseWriter, r *http.Request) {
	var req payload.LinkRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	outcome := h.linkUsecase.ResolveLink(r.Context(), req.Identity, req.Code)
	resp := linkResponseFor(outcome)

	zerolog.Ctx(r.Context()).Info().
		Str("identity", req.Identity).
		Str("outcome", string(outcome)).
		Msg("resolved link request")

	h.writeJSON(w, resp.status, payload.OutcomeResponse{
		Outcome: string(outcome),
		Message: resp.message,
	})
}

func (h *LinkHTTPHandler) Reconcile(w http.ResponseWriter, r *http.Request) {
	var req payload.ReconcileRequest
	if !h.decodeAndValidate(w, r, &req) {
		return
	}

	outcome := h.reconcileUsecase.Reconcile(r.Context(), req.Identity)
	resp := reconcileResponseFor(outcome)

	zerolog.Ctx(r.Context()).Info().
		Str("identity", req.Identity).
		Str("outcome", string(outcome)).
		Msg("resolved reconcile request")

	h.writeJSON(w, resp.status, payload.OutcomeResponse{
		Outcome: string(outcome),
		Message: resp.message,
	})
}

func (h *LinkHTTPHandler) decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		h.writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{Error: "request body must be a valid JSON object"})
		return false
	}

	fieldErrs, err := h.validator.Struct(dst)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to validate request")
		h.writeJSON(w, http.StatusInternalServerError, payload.ErrorResponse{Error: "something went wrong"})
		return false
	}
	if len(fieldErrs) > 0 {
		h.writeJSON(w, http.StatusBadRequest, payload.ErrorResponse{
			Error:  "invalid request",
			Fields: fieldErrs,
		})
		return false
	}

	return true
}

func (h *LinkHTTPHandler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Error().Err(err).Msg("failed to write response")
	}
}
