package model

import "time"

// Booking statuses.
const (
	BookingPending   = "PENDING"
	BookingConfirmed = "CONFIRMED"
	BookingCancelled = "CANCELLED"
)

// Payment statuses.
const (
	PaymentPending   = "PENDING"
	PaymentCompleted = "COMPLETED"
	PaymentFailed    = "FAILED"
)

// Booking is a user's reservation of seats for a showtime (`bookings`).
type Booking struct {
	ID              uint64    `json:"booking_id"`
	UserID          uint64    `json:"user_id"`
	ShowtimeID      uint64    `json:"showtime_id"`
	BookingCode     string    `json:"booking_code"`
	BookingDatetime time.Time `json:"booking_datetime"`
	TotalAmount     float64   `json:"total_amount"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BookingSeat is the join of a booking and a seat with the price charged.
// Row and Number are filled by reads that join seats.
type BookingSeat struct {
	ID        uint64  `json:"booking_seat_id"`
	BookingID uint64  `json:"booking_id"`
	SeatID    uint64  `json:"seat_id"`
	Price     float64 `json:"price"`
	Row       string  `json:"seat_row,omitempty"`
	Number    int     `json:"seat_number,omitempty"`
}

// Payment is the single payment record of a booking (`payments`).
type Payment struct {
	ID              uint64     `json:"payment_id"`
	BookingID       uint64     `json:"booking_id"`
	Amount          float64    `json:"amount"`
	PaymentMethod   string     `json:"payment_method"`
	TransactionID   *string    `json:"transaction_id"`
	PaymentStatus   string     `json:"payment_status"`
	PaymentDatetime *time.Time `json:"payment_datetime"`
	CreatedAt       time.Time  `json:"created_at"`
}

// Promotion is a discount code with a validity window and usage cap.
type Promotion struct {
	ID                 uint64    `json:"promotion_id"`
	Code               string    `json:"code"`
	Name               string    `json:"name"`
	Description        *string   `json:"description"`
	DiscountPercentage *float64  `json:"discount_percentage"`
	DiscountAmount     *float64  `json:"discount_amount"`
	ValidFrom          Date      `json:"valid_from"`
	ValidTo            Date      `json:"valid_to"`
	UsageLimit         *int      `json:"usage_limit"`
	UsedCount          int       `json:"used_count"`
	IsActive           bool      `json:"is_active"`
	CreatedAt          time.Time `json:"created_at"`
}

// ActiveOn reports whether the promotion can be applied on day d.
func (p *Promotion) ActiveOn(d Date) bool {
	return p.IsActive && !d.Before(p.ValidFrom) && !p.ValidTo.Before(d)
}

// Exhausted reports whether the usage limit has been reached.
func (p *Promotion) Exhausted() bool {
	return p.UsageLimit != nil && p.UsedCount >= *p.UsageLimit
}

// BookingPromotion records a promotion applied to a booking.
type BookingPromotion struct {
	ID              uint64  `json:"booking_promotion_id"`
	BookingID       uint64  `json:"booking_id"`
	PromotionID     uint64  `json:"promotion_id"`
	DiscountApplied float64 `json:"discount_applied"`
	Code            string  `json:"code,omitempty"`
}
