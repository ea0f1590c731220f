package handler

import (
	"net/http"
	"strconv"

	"github.com/JonathanDunkleberger/Kimi/internal/entry"
	"github.com/JonathanDunkleberger/Kimi/internal/guard"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// EntryHandler serves entry placement and history endpoints.
type EntryHandler struct {
	builder     *entry.Builder
	rateLimiter *guard.RateLimiter
	idemGuard   *guard.IdempotencyGuard
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(builder *entry.Builder, rl *guard.RateLimiter, ig *guard.IdempotencyGuard) *EntryHandler {
	return &EntryHandler{builder: builder, rateLimiter: rl, idemGuard: ig}
}

// Create handles POST /entries.
func (h *EntryHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectUUID(r)
	if !ok {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code": "UNAUTHORIZED", "message": "invalid subject",
		})
		return
	}

	if res := h.rateLimiter.Check(r.Context(), userID.String()); !res.Allowed {
		RespondJSON(w, http.StatusTooManyRequests, map[string]string{
			"code": "RATE_LIMITED", "message": res.Reason,
		})
		return
	}

	// The header guard is a fast duplicate check; the ledger's idempotency
	// index is the durable one.
	idemKey := r.Header.Get("Idempotency-Key")
	if idemKey != "" {
		if res := h.idemGuard.Check(r.Context(), userID.String()+":"+idemKey); !res.Allowed {
			RespondJSON(w, http.StatusConflict, map[string]string{
				"code": "CONFLICT", "message": res.Reason,
			})
			return
		}
	}

	var input entry.CreateInput
	if err := DecodeJSON(r, &input); err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}

	created, err := h.builder.Create(r.Context(), userID, input)
	if err != nil {
		if idemKey != "" {
			h.idemGuard.Remove(userID.String() + ":" + idemKey)
		}
		RespondError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, created)
}

// Get handles GET /entries/{entryID}.
func (h *EntryHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectUUID(r)
	if !ok {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code": "UNAUTHORIZED", "message": "invalid subject",
		})
		return
	}

	entryID, err := uuid.Parse(chi.URLParam(r, "entryID"))
	if err != nil {
		RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid entry id",
		})
		return
	}

	e, err := h.builder.Get(r.Context(), userID, entryID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, e)
}

// List handles GET /entries.
func (h *EntryHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectUUID(r)
	if !ok {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code": "UNAUTHORIZED", "message": "invalid subject",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	entries, err := h.builder.ListForUser(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"entries": entries})
}
