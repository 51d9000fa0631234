package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/jwtauth"
	log "github.com/sirupsen/logrus"

	"github.com/bingovivo/live-services/internal/livesvc/game"
	"github.com/bingovivo/live-services/internal/livesvc/service"
)

type Handler struct {
	tokenAuth *jwtauth.JWTAuth
	registry  *game.Registry
	claims    *service.ClaimService
}

func NewHandler(registry *game.Registry, claims *service.ClaimService) *Handler {
	return &Handler{registry: registry, claims: claims}
}

type Response struct {
	Message string      `json:"message"`
	Code    int         `json:"code"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
}

func (h *Handler) CreateResponse(w http.ResponseWriter, rsp Response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(rsp.Code)

	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode response: %v", err)
	}
}

func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	rsp := Response{
		Message: "live game service is running at port " + os.Getenv("LIVE_SERVICE_PORT"),
		Code:    200,
		Data:    nil,
	}
	if err := json.NewEncoder(w).Encode(rsp); err != nil {
		log.Errorf("Failed to encode health response: %v", err)
	}
}

// GameStateHandler serves the on-demand GameState snapshot, the same one
// late joiners catch up from.
func (h *Handler) GameStateHandler(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	session, err := h.registry.Get(eventID)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "event unavailable"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: session.GameState()})
}

// RosterHandler serves the ordered participant list. The optional user
// query parameter is the requester, listed first.
func (h *Handler) RosterHandler(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	session, err := h.registry.Get(eventID)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "event unavailable"})
		return
	}

	h.CreateResponse(w, Response{
		Code: http.StatusOK,
		Data: session.Roster(r.URL.Query().Get("user")),
	})
}

// WinnersHandler serves the event's accepted claims from storage, the
// audit record behind the winners carried in GameState broadcasts.
func (h *Handler) WinnersHandler(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	claims, err := h.claims.GetAcceptedClaims(r.Context(), eventID)
	if err != nil {
		log.Errorf("Failed to load winners for event %s: %v", eventID, err)
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: "unable to load winners"})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: claims})
}

// CardHandler serves a card view: layout, marked set, satisfied patterns.
func (h *Handler) CardHandler(w http.ResponseWriter, r *http.Request) {
	eventID := chi.URLParam(r, "eventID")

	cardID, err := strconv.Atoi(chi.URLParam(r, "cardID"))
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusBadRequest, Error: "invalid card id"})
		return
	}

	session, err := h.registry.Get(eventID)
	if err != nil {
		h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "event unavailable"})
		return
	}

	view, err := session.Card(cardID)
	if err != nil {
		if errors.Is(err, game.ErrCardNotFound) {
			h.CreateResponse(w, Response{Code: http.StatusNotFound, Error: "card not found"})
			return
		}
		h.CreateResponse(w, Response{Code: http.StatusInternalServerError, Error: err.Error()})
		return
	}

	h.CreateResponse(w, Response{Code: http.StatusOK, Data: view})
}
