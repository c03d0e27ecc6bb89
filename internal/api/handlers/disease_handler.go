package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/zatekoja/rarediseaseguide/internal/application/services"
	"github.com/zatekoja/rarediseaseguide/internal/domain/entities"
	"github.com/zatekoja/rarediseaseguide/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/rarediseaseguide/pkg/errors"
)

const (
	minSearchTermLength = 2
	maxMessageLength    = 5000
	maxExtractBodyBytes = 1 << 20
)

// DiseaseResolver is the subset of the resolver the HTTP surface needs
type DiseaseResolver interface {
	SearchDisease(ctx context.Context, term, lang string) (*entities.DiseaseRecord, bool)
	GetDiseaseDetails(ctx context.Context, code, lang string) (*entities.DiseaseRecord, bool)
}

// DiseaseLookup finds the disease a chat message refers to
type DiseaseLookup interface {
	Lookup(ctx context.Context, message string, history []services.ChatMessage) *services.DiseaseLookup
}

// ExtractRequest is the body of POST /api/diseases/extract
type ExtractRequest struct {
	Message string                 `json:"message"`
	History []services.ChatMessage `json:"history"`
}

type notFoundResponse struct {
	Error      string `json:"error"`
	Suggestion string `json:"suggestion"`
}

// DiseaseHandler handles disease lookup requests
type DiseaseHandler struct {
	resolver DiseaseResolver
	lookup   DiseaseLookup
}

// NewDiseaseHandler creates a new disease handler
func NewDiseaseHandler(resolver DiseaseResolver, lookup DiseaseLookup) *DiseaseHandler {
	return &DiseaseHandler{
		resolver: resolver,
		lookup:   lookup,
	}
}

// SearchDisease handles GET /api/orpha/{term}
func (h *DiseaseHandler) SearchDisease(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.PathValue("term"))
	if len([]rune(term)) < minSearchTermLength {
		respondWithAppError(w, apperrors.NewValidationError(
			fmt.Sprintf("Search term must be at least %d characters", minSearchTermLength),
		))
		return
	}

	record, found := h.resolver.SearchDisease(r.Context(), term, r.URL.Query().Get("lang"))
	if !found {
		respondWithJSON(w, http.StatusNotFound, notFoundResponse{
			Error:      "Disease not found",
			Suggestion: "Try using the AI chat for more information",
		})
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// GetDiseaseByCode handles GET /api/orpha/codes/{code}
func (h *DiseaseHandler) GetDiseaseByCode(w http.ResponseWriter, r *http.Request) {
	code := r.PathValue("code")
	if n, err := strconv.Atoi(code); err != nil || n <= 0 {
		respondWithAppError(w, apperrors.NewValidationError("Orphacode must be a positive integer"))
		return
	}

	record, found := h.resolver.GetDiseaseDetails(r.Context(), code, r.URL.Query().Get("lang"))
	if !found {
		respondWithAppError(w, apperrors.NewNotFoundError("Disease not found"))
		return
	}

	respondWithJSON(w, http.StatusOK, record)
}

// ExtractDisease handles POST /api/diseases/extract
func (h *DiseaseHandler) ExtractDisease(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxExtractBodyBytes)

	var req ExtractRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithAppError(w, apperrors.NewValidationError("invalid request body"))
		return
	}
	if err := validateExtractRequest(req); err != nil {
		respondWithAppError(w, err)
		return
	}

	result := h.lookup.Lookup(r.Context(), req.Message, req.History)
	observability.LoggerFromContext(r.Context()).Debug().
		Strs("candidates", result.Candidates).
		Bool("resolved", result.Disease != nil).
		Msg("Disease extraction completed")

	respondWithJSON(w, http.StatusOK, result)
}

func validateExtractRequest(req ExtractRequest) error {
	length := len([]rune(req.Message))
	if length == 0 || length > maxMessageLength {
		return apperrors.NewValidationError(
			fmt.Sprintf("message must be between 1 and %d characters", maxMessageLength),
		)
	}
	for _, msg := range req.History {
		if msg.Role != "user" && msg.Role != "assistant" {
			return apperrors.NewValidationError("history role must be user or assistant")
		}
	}
	return nil
}
