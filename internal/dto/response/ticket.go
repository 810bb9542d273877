package response

import (
	"time"

	"movietix/internal/data/entity"
)

type TicketResponse struct {
	TicketID         string     `json:"ticket_id"`
	BookingID        string     `json:"booking_id"`
	SeatID           string     `json:"seat_id"`
	SeatType         string     `json:"seat_type"`
	Price            float64    `json:"price"`
	ShowDate         string     `json:"show_date"`
	ShowTime         string     `json:"show_time"`
	IsUsed           bool       `json:"is_used"`
	UsedAt           *time.Time `json:"used_at,omitempty"`
	VerificationCode string     `json:"verification_code"`
}

func TicketToResponse(t *entity.Ticket) TicketResponse {
	return TicketResponse{
		TicketID:         t.TicketID,
		BookingID:        t.BookingRef,
		SeatID:           t.SeatID,
		SeatType:         t.SeatType,
		Price:            t.Price,
		ShowDate:         t.ShowDate.Format("2006-01-02"),
		ShowTime:         t.ShowTime.Format("15:04"),
		IsUsed:           t.IsUsed,
		UsedAt:           t.UsedAt,
		VerificationCode: t.VerificationCode,
	}
}

func TicketsToResponse(tickets []*entity.Ticket) []TicketResponse {
	out := make([]TicketResponse, len(tickets))
	for i, t := range tickets {
		out[i] = TicketToResponse(t)
	}
	return out
}
