package handler

import (
	"net/http"
	"strconv"

	"github.com/JonathanDunkleberger/Kimi/internal/auth"
	"github.com/JonathanDunkleberger/Kimi/internal/service"
	"github.com/google/uuid"
)

// UserHandler serves the authenticated account endpoints.
type UserHandler struct {
	authSvc *service.AuthService
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(authSvc *service.AuthService) *UserHandler {
	return &UserHandler{authSvc: authSvc}
}

// Me handles GET /users/me.
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectUUID(r)
	if !ok {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code": "UNAUTHORIZED", "message": "invalid subject",
		})
		return
	}

	user, err := h.authSvc.Me(r.Context(), userID)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, user)
}

// Transactions handles GET /users/me/transactions.
func (h *UserHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	userID, ok := subjectUUID(r)
	if !ok {
		RespondJSON(w, http.StatusUnauthorized, map[string]string{
			"code": "UNAUTHORIZED", "message": "invalid subject",
		})
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	txs, err := h.authSvc.Transactions(r.Context(), userID, limit)
	if err != nil {
		RespondError(w, err)
		return
	}
	RespondJSON(w, http.StatusOK, map[string]interface{}{"transactions": txs})
}

// subjectUUID parses the authenticated subject into a UUID.
func subjectUUID(r *http.Request) (uuid.UUID, bool) {
	sub := auth.SubjectFromContext(r.Context())
	id, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}
