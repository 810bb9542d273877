package adaptor

import (
	"encoding/json"
	"net/http"

	"movietix/internal/dto/request"
	"movietix/internal/usecase"
	"movietix/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ShowtimeHandler struct {
	service usecase.ShowtimeService
	log     *zap.Logger
}

func NewShowtimeHandler(service usecase.ShowtimeService, log *zap.Logger) *ShowtimeHandler {
	return &ShowtimeHandler{
		service: service,
		log:     log.With(zap.String("handler", "showtime")),
	}
}

// GetSeatMap handles GET /api/showtimes/{id}/seats (public)
func (h *ShowtimeHandler) GetSeatMap(w http.ResponseWriter, r *http.Request) {
	showtimeID := chi.URLParam(r, "id")
	if showtimeID == "" {
		utils.ResponseBadRequest(w, "Showtime ID is required", nil)
		return
	}

	seatMap, err := h.service.GetSeatMap(r.Context(), showtimeID)
	if err != nil {
		handleServiceError(h.log, w, err, "get seat map")
		return
	}

	utils.ResponseSuccess(w, "success", seatMap)
}

// CheckAvailability handles POST /api/showtimes/availability (protected)
func (h *ShowtimeHandler) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.CheckAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	availability, err := h.service.CheckAvailability(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "check availability")
		return
	}

	utils.ResponseSuccess(w, "success", availability)
}

// HoldSeats handles POST /api/showtimes/holds (protected)
func (h *ShowtimeHandler) HoldSeats(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.HoldSeatsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	hold, err := h.service.HoldSeats(r.Context(), userID, &req)
	if err != nil {
		handleServiceError(h.log, w, err, "hold seats")
		return
	}

	utils.ResponseCreated(w, "success", hold)
}

// ReleaseHolds handles DELETE /api/showtimes/holds (protected)
func (h *ShowtimeHandler) ReleaseHolds(w http.ResponseWriter, r *http.Request) {
	userID, _, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.ReleaseHoldsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := h.service.ReleaseHolds(r.Context(), userID, &req); err != nil {
		handleServiceError(h.log, w, err, "release holds")
		return
	}

	utils.ResponseSuccess(w, "success", nil)
}
