package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/TeamLinkup/matchmaking-system/middleware"
	"github.com/TeamLinkup/matchmaking-system/models"
	"github.com/TeamLinkup/matchmaking-system/repositories"
	"github.com/TeamLinkup/matchmaking-system/services"
	"github.com/go-chi/chi/v5"
)

type OfferHandler struct {
	offerService services.OfferService
	matchService services.MatchService
}

func NewOfferHandler(os services.OfferService, ms services.MatchService) *OfferHandler {
	return &OfferHandler{
		offerService: os,
		matchService: ms,
	}
}

// offerResponse дополняет предложение расчетным статусом: открытые
// предложения с прошедшей датой показываются как EXPIRED, в хранилище
// оставаясь OPEN.
type offerResponse struct {
	*models.MatchOffer
	DisplayStatus models.OfferStatus `json:"display_status"`
}

func presentOffers(offers []*models.MatchOffer) []offerResponse {
	now := time.Now()
	out := make([]offerResponse, 0, len(offers))
	for _, offer := range offers {
		out = append(out, offerResponse{MatchOffer: offer, DisplayStatus: offer.DisplayStatus(now)})
	}
	return out
}

func (h *OfferHandler) CreateOffer(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var input services.CreateOfferInput
	err = readJSON(w, r, &input)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	input.CreatorID = currentUserID

	offer, err := h.offerService.CreateOffer(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"offer": offer}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OfferHandler) GetMyOffers(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	offers, err := h.offerService.GetMyOffers(r.Context(), currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"offers": presentOffers(offers)}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SearchOffers фильтрует открытые чужие предложения по необязательным
// query-параметрам: sport, skill_level, date (YYYY-MM-DD), num_players.
func (h *OfferHandler) SearchOffers(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	var filter repositories.OfferSearchFilter
	query := r.URL.Query()

	if raw := query.Get("sport"); raw != "" {
		sport := models.Sport(raw)
		filter.Sport = &sport
	}
	if raw := query.Get("skill_level"); raw != "" {
		level := models.SkillLevel(raw)
		filter.SkillLevel = &level
	}
	if raw := query.Get("date"); raw != "" {
		filter.Date = &raw
	}
	if raw := query.Get("num_players"); raw != "" {
		numPlayers, convErr := strconv.Atoi(raw)
		if convErr != nil {
			badRequestResponse(w, r, convErr)
			return
		}
		filter.NumPlayers = &numPlayers
	}

	offers, err := h.offerService.SearchOffers(r.Context(), filter, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"offers": presentOffers(offers)}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *OfferHandler) CancelOffer(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	offerID := chi.URLParam(r, "offerID")

	err = h.offerService.CancelOffer(r.Context(), offerID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusOK, jsonResponse{"cancelled": true}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}

// AcceptOffer принимает чужое открытое предложение и возвращает
// созданный подтвержденный матч.
func (h *OfferHandler) AcceptOffer(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user")
		return
	}

	offerID := chi.URLParam(r, "offerID")

	match, err := h.matchService.AcceptOffer(r.Context(), offerID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	err = writeJSON(w, http.StatusCreated, jsonResponse{"match": match}, nil)
	if err != nil {
		serverErrorResponse(w, r, err)
	}
}
