package handlers

import (
	"net/http"

	"github.com/TeamLinkup/matchmaking-system/middleware"
	"github.com/TeamLinkup/matchmaking-system/services"
	"github.com/go-chi/chi/v5"
)

type MatchHandler struct {
	matchService services.MatchService
}

func NewMatchHandler(ms services.MatchService) *MatchHandler {
	return &MatchHandler{
		matchService: ms,
	}
}

func (h *MatchHandler) GetConfirmedMatches(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	matches, err := h.matchService.GetConfirmedMatchesForUser(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *MatchHandler) GetCancelledMatches(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	matches, err := h.matchService.GetCancelledMatchesForUser(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// CancelMatch отменяет подтвержденный матч. Допустимо не позже чем за
// 48 часов до начала; противоположная сторона получает уведомление.
func (h *MatchHandler) CancelMatch(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	matchID := chi.URLParam(r, "matchID")

	err = h.matchService.CancelMatch(r.Context(), matchID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"cancelled": true}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// TriggerReminderSweep запускает свип напоминаний вне расписания
// (например, при открытии дашборда).
func (h *MatchHandler) TriggerReminderSweep(w http.ResponseWriter, r *http.Request) {
	if err := h.matchService.CheckAndSendReminders(r.Context()); err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	err := writeJSON(w, http.StatusAccepted, jsonResponse{"triggered": true}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
