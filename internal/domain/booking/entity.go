package booking

import (
	"time"

	"github.com/shopspring/decimal"
)

// Booking is a reservation of one vehicle for an inclusive date interval.
// TotalAmount is derived (price_per_day * inclusive day count) and frozen
// once computed; CreatedAt is set once at insert.
type Booking struct {
	ID               int64           `json:"id" db:"id"`
	BookingReference string          `json:"booking_reference" db:"booking_reference"`
	VehicleID        int64           `json:"vehicle_id" db:"vehicle_id"`
	CustomerName     string          `json:"customer_name" db:"customer_name"`
	CustomerPhone    string          `json:"customer_phone" db:"customer_phone"`
	StartDate        Date            `json:"start_date" db:"start_date"`
	EndDate          Date            `json:"end_date" db:"end_date"`
	TotalAmount      decimal.Decimal `json:"total_amount" db:"total_amount"`
	CreatedAt        time.Time       `json:"created_at" db:"created_at"`
}

// Days returns the inclusive day count of the interval.
func (b *Booking) Days() int {
	return b.StartDate.DaysUntil(b.EndDate) + 1
}

// Covers reports whether d falls inside the inclusive interval.
func (b *Booking) Covers(d Date) bool {
	return !b.StartDate.After(d.Time) && !b.EndDate.Before(d.Time)
}

// Overlaps reports whether [start, end] shares at least one calendar day
// with this booking's interval.
func (b *Booking) Overlaps(start, end Date) bool {
	return !b.StartDate.After(end.Time) && !b.EndDate.Before(start.Time)
}
