package request

type ValidateTicketRequest struct {
	TicketID         string `json:"ticket_id" validate:"required"`
	VerificationCode string `json:"verification_code" validate:"required"`
}
