package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/zatekoja/feedbackform/internal/domain/entities"
)

const (
	msgSubmitted      = "Form submitted successfully"
	msgUpdated        = "Entry updated successfully"
	msgDeleted        = "Entry deleted successfully"
	msgInvalidPayload = "invalid request payload"
)

// maxBodyBytes bounds a submission body.
const maxBodyBytes = 1 << 20

// EntryService defines the entry operations used by the handler.
type EntryService interface {
	Create(ctx context.Context, fields entities.EntryFields) (*entities.Entry, error)
	List(ctx context.Context) ([]*entities.Entry, error)
	GetByID(ctx context.Context, id string) (*entities.Entry, error)
	Update(ctx context.Context, id string, fields entities.EntryFields) (*entities.Entry, error)
	Delete(ctx context.Context, id string) error
}

// EntryHandler handles feedback entry requests.
type EntryHandler struct {
	service EntryService
}

// NewEntryHandler creates a new entry handler.
func NewEntryHandler(service EntryService) *EntryHandler {
	return &EntryHandler{service: service}
}

type entryRequest struct {
	Name    string          `json:"name"`
	Email   string          `json:"email"`
	Age     json.RawMessage `json:"age"`
	Message string          `json:"message"`
}

type entryResponse struct {
	Message string          `json:"message"`
	Data    *entities.Entry `json:"data,omitempty"`
}

// SubmitEntry handles POST /api/submit
func (h *EntryHandler) SubmitEntry(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Create(r.Context(), fields)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, entryResponse{Message: msgSubmitted, Data: entry})
}

// ListEntries handles GET /api/data
func (h *EntryHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	if entries == nil {
		entries = []*entities.Entry{}
	}

	respondWithJSON(w, http.StatusOK, entries)
}

// GetEntry handles GET /api/data/{id}
func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	entry, err := h.service.GetByID(r.Context(), r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entry)
}

// UpdateEntry handles PUT /api/data/{id}
func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	fields, ok := decodeFields(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Update(r.Context(), r.PathValue("id"), fields)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entryResponse{Message: msgUpdated, Data: entry})
}

// DeleteEntry handles DELETE /api/data/{id}
func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id")); err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, entryResponse{Message: msgDeleted})
}

// Health handles GET /health
func Health(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decodeFields reads the submission body. An empty body decodes to no
// fields, which the service then rejects as incomplete.
func decodeFields(w http.ResponseWriter, r *http.Request) (entities.EntryFields, bool) {
	var payload entryRequest
	if r.Body != nil {
		dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
		err := dec.Decode(&payload)
		if err == nil {
			// The body must hold exactly one JSON value.
			var trailing json.RawMessage
			if extra := dec.Decode(&trailing); !errors.Is(extra, io.EOF) {
				err = errors.New("trailing data after request body")
			}
		}
		if err != nil && !errors.Is(err, io.EOF) {
			respondWithError(w, http.StatusBadRequest, msgInvalidPayload)
			return entities.EntryFields{}, false
		}
	}

	return entities.EntryFields{
		Name:    payload.Name,
		Email:   payload.Email,
		Age:     payload.Age,
		Message: payload.Message,
	}, true
}
