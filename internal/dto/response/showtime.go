package response

import (
	"time"

	"movietix/internal/data/entity"
)

// SeatMapResponse is the availability snapshot of a showtime: which seats
// are committed, which are under an active hold, and the row pricing. This
// is the shape cached in redis for the seat-map poll.
type SeatMapResponse struct {
	ShowtimeID     string              `json:"showtime_id"`
	TotalSeats     int                 `json:"total_seats"`
	AvailableSeats int                 `json:"available_seats"`
	BookedSeats    []string            `json:"booked_seats"`
	HeldSeats      []string            `json:"held_seats"`
	Pricing        []RowPricingItem    `json:"pricing"`
	GeneratedAt    time.Time           `json:"generated_at"`
}

type RowPricingItem struct {
	RowLabel       string  `json:"row_label"`
	SeatType       string  `json:"seat_type"`
	Price          float64 `json:"price"`
	TotalSeats     int     `json:"total_seats"`
	AvailableSeats int     `json:"available_seats"`
}

type AvailabilityResponse struct {
	Available        bool     `json:"available"`
	ConflictingSeats []string `json:"conflicting_seats,omitempty"`
}

type SeatHoldResponse struct {
	ShowtimeID string    `json:"showtime_id"`
	SeatIDs    []string  `json:"seat_ids"`
	ExpiresAt  time.Time `json:"expires_at"`
}

func PricingToResponse(pricing []*entity.RowPricing) []RowPricingItem {
	out := make([]RowPricingItem, len(pricing))
	for i, rp := range pricing {
		out[i] = RowPricingItem{
			RowLabel:       rp.RowLabel,
			SeatType:       rp.SeatType,
			Price:          rp.ShowtimePrice,
			TotalSeats:     rp.TotalSeats,
			AvailableSeats: rp.AvailableSeats,
		}
	}
	return out
}
