package booking

import (
	"time"

	"github.com/shopspring/decimal"

	"rentals-service/internal/domain/vehicle"
)

// CreateBookingRequest for placing a new booking.
type CreateBookingRequest struct {
	VehicleID     int64  `json:"vehicle_id" binding:"required"`
	CustomerName  string `json:"customer_name" binding:"required"`
	CustomerPhone string `json:"customer_phone" binding:"required"`
	StartDate     Date   `json:"start_date" binding:"required"`
	EndDate       Date   `json:"end_date" binding:"required"`
}

// UpdateBookingRequest for editing a booking. Nil fields keep stored values.
type UpdateBookingRequest struct {
	VehicleID     *int64  `json:"vehicle_id"`
	CustomerName  *string `json:"customer_name"`
	CustomerPhone *string `json:"customer_phone"`
	StartDate     *Date   `json:"start_date"`
	EndDate       *Date   `json:"end_date"`
}

// ListFilters for listing/searching bookings.
type ListFilters struct {
	VehicleID *int64
	StartDate *Date
	EndDate   *Date
	Search    string
	Page      int
	PageSize  int
}

// WithVehicle pairs a booking row with its vehicle summary, as produced by
// the joined list query.
type WithVehicle struct {
	Booking
	Vehicle vehicle.Summary
}

// Info is the API response shape. The raw vehicle foreign key is write-only;
// responses embed a vehicle summary and the computed day count instead.
type Info struct {
	ID               int64           `json:"id"`
	BookingReference string          `json:"booking_reference"`
	VehicleDetails   vehicle.Summary `json:"vehicle_details"`
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	StartDate        Date            `json:"start_date"`
	EndDate          Date            `json:"end_date"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	Days             int             `json:"days"`
	CreatedAt        time.Time       `json:"created_at"`
}

// ListResponse paginated list response.
type ListResponse struct {
	Bookings   []Info `json:"bookings"`
	Total      int64  `json:"total"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalPages int    `json:"total_pages"`
}

// BuildInfo assembles the response projection for one booking.
func BuildInfo(b *Booking, v vehicle.Summary) Info {
	return Info{
		ID:               b.ID,
		BookingReference: b.BookingReference,
		VehicleDetails:   v,
		CustomerName:     b.CustomerName,
		CustomerPhone:    b.CustomerPhone,
		StartDate:        b.StartDate,
		EndDate:          b.EndDate,
		TotalAmount:      b.TotalAmount,
		Days:             b.Days(),
		CreatedAt:        b.CreatedAt,
	}
}
