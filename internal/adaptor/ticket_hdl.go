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

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

// GetBookingTickets handles GET /api/bookings/{id}/tickets (protected)
func (h *TicketHandler) GetBookingTickets(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	tickets, err := h.service.GetBookingTickets(r.Context(), bookingID, userID, isAdmin)
	if err != nil {
		handleServiceError(h.log, w, err, "get booking tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// ReissueTickets handles POST /api/bookings/{id}/tickets/reissue (protected)
func (h *TicketHandler) ReissueTickets(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	bookingID := chi.URLParam(r, "id")
	if bookingID == "" {
		utils.ResponseBadRequest(w, "Booking ID is required", nil)
		return
	}

	tickets, err := h.service.ReissueTickets(r.Context(), bookingID, userID, isAdmin)
	if err != nil {
		handleServiceError(h.log, w, err, "reissue tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// TicketQR handles GET /api/tickets/{id}/qr (protected)
func (h *TicketHandler) TicketQR(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin, ok := requester(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	ticketID := chi.URLParam(r, "id")
	if ticketID == "" {
		utils.ResponseBadRequest(w, "Ticket ID is required", nil)
		return
	}

	img, err := h.service.TicketQR(r.Context(), ticketID, userID, isAdmin)
	if err != nil {
		handleServiceError(h.log, w, err, "render ticket qr")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(img)
}

// ==================== ADMIN METHODS ====================

// MarkTicketUsed handles PUT /api/admin/tickets/{id}/use (admin only).
// Manual gate override when the QR cannot be scanned.
func (h *TicketHandler) MarkTicketUsed(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	if ticketID == "" {
		utils.ResponseBadRequest(w, "Ticket ID is required", nil)
		return
	}

	ticket, err := h.service.MarkUsed(r.Context(), ticketID)
	if err != nil {
		handleServiceError(h.log, w, err, "mark ticket used")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}

// ValidateTicket handles POST /api/admin/tickets/validate (admin only).
// This is the gate scan at the venue.
func (h *TicketHandler) ValidateTicket(w http.ResponseWriter, r *http.Request) {
	var req request.ValidateTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	ticket, err := h.service.ValidateTicket(r.Context(), &req)
	if err != nil {
		handleServiceError(h.log, w, err, "validate ticket")
		return
	}

	utils.ResponseSuccess(w, "success", ticket)
}
