package request

// SeatPricingItem is the caller-computed price for one selected seat. The
// service re-validates totals; pricing authority stays server-side via the
// showtime's row schedule.
type SeatPricingItem struct {
	SeatID   string  `json:"seat_id" validate:"required"`
	SeatType string  `json:"seat_type" validate:"required"`
	Price    float64 `json:"price" validate:"gte=0"`
}

type PriceDetailsItem struct {
	Subtotal       float64 `json:"subtotal" validate:"gte=0"`
	ConvenienceFee float64 `json:"convenience_fee" validate:"gte=0"`
	Taxes          float64 `json:"taxes" validate:"gte=0"`
	Discount       float64 `json:"discount" validate:"gte=0"`
	Total          float64 `json:"total" validate:"gte=0"`
}

type ContactInfo struct {
	Email string `json:"email" validate:"required,email"`
	Phone string `json:"phone,omitempty"`
}

type CreateBookingRequest struct {
	ShowtimeID    string            `json:"showtime_id" validate:"required,uuid4"`
	MovieID       string            `json:"movie_id" validate:"required,uuid4"`
	TheaterID     string            `json:"theater_id" validate:"required,uuid4"`
	ScreenID      string            `json:"screen_id" validate:"required,uuid4"`
	SelectedSeats []string          `json:"selected_seats" validate:"required,min=1,dive,required"`
	SeatPricing   []SeatPricingItem `json:"seat_pricing" validate:"required,min=1,dive"`
	PriceDetails  PriceDetailsItem  `json:"price_details"`
	PaymentStatus string            `json:"payment_status" validate:"omitempty,oneof=pending completed"`
	PaymentID     *string           `json:"payment_id,omitempty"`
	Contact       ContactInfo       `json:"contact"`
}

type UpdatePaymentStatusRequest struct {
	BookingID     string  `json:"booking_id" validate:"required"`
	PaymentStatus string  `json:"payment_status" validate:"required,oneof=pending completed failed refunded"`
	PaymentID     *string `json:"payment_id,omitempty"`
}
