package admin

import (
	"net/http"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/handler"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RosterHandler manages matches, teams and players.
type RosterHandler struct {
	pool    *pgxpool.Pool
	matches repository.MatchRepository
	roster  repository.RosterRepository
}

// NewRosterHandler creates a new RosterHandler.
func NewRosterHandler(pool *pgxpool.Pool, matches repository.MatchRepository, roster repository.RosterRepository) *RosterHandler {
	return &RosterHandler{pool: pool, matches: matches, roster: roster}
}

// CreateMatch handles POST /admin/matches.
func (h *RosterHandler) CreateMatch(w http.ResponseWriter, r *http.Request) {
	var input struct {
		ExtID     *string    `json:"ext_id,omitempty"`
		StartsAt  time.Time  `json:"starts_at"`
		Format    string     `json:"format"`
		EventName string     `json:"event_name"`
		Team1ID   *uuid.UUID `json:"team1_id,omitempty"`
		Team2ID   *uuid.UUID `json:"team2_id,omitempty"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}
	if input.StartsAt.IsZero() {
		handler.RespondError(w, domain.ErrValidation("starts_at is required"))
		return
	}

	m := &domain.Match{
		ID:        uuid.New(),
		ExtID:     input.ExtID,
		StartsAt:  input.StartsAt,
		Format:    input.Format,
		EventName: input.EventName,
		Team1ID:   input.Team1ID,
		Team2ID:   input.Team2ID,
		Status:    domain.MatchScheduled,
	}
	if err := h.matches.Insert(r.Context(), h.pool, m); err != nil {
		handler.RespondError(w, domain.ErrInternal("create match", err))
		return
	}
	handler.RespondJSON(w, http.StatusCreated, m)
}

// UpdateMatchStatus handles PATCH /admin/matches/{matchID}/status.
func (h *RosterHandler) UpdateMatchStatus(w http.ResponseWriter, r *http.Request) {
	matchID, err := uuid.Parse(chi.URLParam(r, "matchID"))
	if err != nil {
		handler.RespondError(w, domain.ErrValidation("invalid match id"))
		return
	}

	var input struct {
		Status string `json:"status"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}

	status := domain.MatchStatus(input.Status)
	switch status {
	case domain.MatchScheduled, domain.MatchLive, domain.MatchFinal:
	default:
		handler.RespondError(w, domain.ErrValidation("status must be SCHEDULED, LIVE or FINAL"))
		return
	}

	if err := h.matches.UpdateStatus(r.Context(), h.pool, matchID, status); err != nil {
		handler.RespondError(w, err)
		return
	}
	handler.RespondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

// CreateTeam handles POST /admin/teams.
func (h *RosterHandler) CreateTeam(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name    string  `json:"name"`
		Slug    *string `json:"slug,omitempty"`
		LogoURL *string `json:"logo_url,omitempty"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}
	if input.Name == "" {
		handler.RespondError(w, domain.ErrValidation("name is required"))
		return
	}

	t := &domain.Team{ID: uuid.New(), Name: input.Name, Slug: input.Slug, LogoURL: input.LogoURL}
	if err := h.roster.InsertTeam(r.Context(), h.pool, t); err != nil {
		handler.RespondError(w, domain.ErrInternal("create team", err))
		return
	}
	handler.RespondJSON(w, http.StatusCreated, t)
}

// CreatePlayer handles POST /admin/players.
func (h *RosterHandler) CreatePlayer(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Handle    string     `json:"handle"`
		TeamID    *uuid.UUID `json:"team_id,omitempty"`
		Slug      *string    `json:"slug,omitempty"`
		ExtID     *string    `json:"ext_id,omitempty"`
		AvatarURL *string    `json:"avatar_url,omitempty"`
	}
	if err := handler.DecodeJSON(r, &input); err != nil {
		handler.RespondJSON(w, http.StatusBadRequest, map[string]string{
			"code": "VALIDATION_ERROR", "message": "invalid request body",
		})
		return
	}
	if input.Handle == "" {
		handler.RespondError(w, domain.ErrValidation("handle is required"))
		return
	}

	p := &domain.Player{
		ID:        uuid.New(),
		Handle:    input.Handle,
		TeamID:    input.TeamID,
		Slug:      input.Slug,
		ExtID:     input.ExtID,
		Active:    true,
		AvatarURL: input.AvatarURL,
	}
	if err := h.roster.InsertPlayer(r.Context(), h.pool, p); err != nil {
		handler.RespondError(w, domain.ErrInternal("create player", err))
		return
	}
	handler.RespondJSON(w, http.StatusCreated, p)
}
