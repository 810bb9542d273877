package adaptor

import (
	"errors"
	"net/http"

	"movietix/internal/usecase"
	"movietix/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	User     *UserHandler
	Showtime *ShowtimeHandler
	Booking  *BookingHandler
	Ticket   *TicketHandler
}

func NewHandler(service *usecase.Service, log *zap.Logger) *Handler {
	return &Handler{
		User:     NewUserHandler(service.User, log),
		Showtime: NewShowtimeHandler(service.Showtime, log),
		Booking:  NewBookingHandler(service.Booking, log),
		Ticket:   NewTicketHandler(service.Ticket, log),
	}
}

// handleServiceError translates the service error taxonomy into the
// response envelope. Seat conflicts get their own 409 shape so clients can
// re-render the seat map; policy refusals are 422 because the request was
// well-formed but the state forbids it.
func handleServiceError(log *zap.Logger, w http.ResponseWriter, err error, operation string) {
	var validation *usecase.ValidationError
	var unavailable *usecase.SeatsUnavailableError

	switch {
	case errors.As(err, &validation):
		log.Warn(operation+" validation failed", zap.Any("fields", validation.Fields))
		utils.ResponseBadRequest(w, "Validation failed", validation.Fields)

	case errors.As(err, &unavailable):
		log.Warn(operation+" failed - seats unavailable", zap.Strings("seats", unavailable.Seats))
		utils.ResponseConflict(w, "Seats no longer available", map[string]any{
			"conflicting_seats": unavailable.Seats,
		})

	case errors.Is(err, usecase.ErrNotFound):
		utils.ResponseNotFound(w, err.Error())

	case errors.Is(err, usecase.ErrForbidden):
		log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, err.Error())

	case errors.Is(err, usecase.ErrPolicyViolation),
		errors.Is(err, usecase.ErrAlreadyCancelled),
		errors.Is(err, usecase.ErrBookingExpired),
		errors.Is(err, usecase.ErrAlreadyUsed),
		errors.Is(err, usecase.ErrInvalidTicket),
		errors.Is(err, usecase.ErrShowtimeInactive):
		log.Warn(operation+" failed - state refused", zap.Error(err))
		utils.ResponseUnprocessable(w, err.Error())

	case errors.Is(err, usecase.ErrInvalidCode):
		log.Warn(operation + " failed - bad verification code")
		utils.ResponseBadRequest(w, err.Error(), nil)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
	}
}

// requester pulls the authenticated identity from the context. The second
// return is the admin flag.
func requester(r *http.Request) (string, bool, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return "", false, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return userID.String(), role == "admin", true
}
