package vehicle

import (
	"github.com/shopspring/decimal"
)

// CreateVehicleRequest for adding a vehicle to the catalog. IsAvailable is
// intentionally absent: the flag is derived, not client-settable.
type CreateVehicleRequest struct {
	Name        string          `json:"name" binding:"required"`
	Brand       string          `json:"brand" binding:"required"`
	Year        int             `json:"year" binding:"required"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	FuelType    FuelType        `json:"fuel_type" binding:"required"`
}

// UpdateVehicleRequest for editing catalog details.
type UpdateVehicleRequest struct {
	Name        *string          `json:"name"`
	Brand       *string          `json:"brand"`
	Year        *int             `json:"year"`
	PricePerDay *decimal.Decimal `json:"price_per_day"`
	FuelType    *FuelType        `json:"fuel_type"`
}

// ListFilters for listing/searching vehicles.
type ListFilters struct {
	Brand       string
	FuelType    FuelType
	IsAvailable *bool
	MinPrice    *decimal.Decimal
	MaxPrice    *decimal.Decimal
	Search      string
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

// ListResponse paginated list response.
type ListResponse struct {
	Vehicles   []Vehicle `json:"vehicles"`
	Total      int64     `json:"total"`
	Page       int       `json:"page"`
	PageSize   int       `json:"page_size"`
	TotalPages int       `json:"total_pages"`
}

// Summary is the read-only vehicle projection embedded in booking responses.
type Summary struct {
	ID       int64    `json:"id"`
	Name     string   `json:"name"`
	Brand    string   `json:"brand"`
	Year     int      `json:"year"`
	FuelType FuelType `json:"fuel_type"`
}
