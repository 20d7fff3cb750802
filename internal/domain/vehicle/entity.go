package vehicle

import (
	"time"

	"github.com/shopspring/decimal"
)

type FuelType string

const (
	FuelTypePetrol   FuelType = "Petrol"
	FuelTypeDiesel   FuelType = "Diesel"
	FuelTypeElectric FuelType = "Electric"
	FuelTypeHybrid   FuelType = "Hybrid"
)

// FuelTypes lists every accepted fuel type.
var FuelTypes = []FuelType{FuelTypePetrol, FuelTypeDiesel, FuelTypeElectric, FuelTypeHybrid}

func (f FuelType) Valid() bool {
	for _, ft := range FuelTypes {
		if f == ft {
			return true
		}
	}
	return false
}

// Vehicle represents a rentable vehicle in the catalog. IsAvailable is
// derived from booking state and is only ever written by the availability
// recompute, never by clients.
type Vehicle struct {
	ID          int64           `json:"id" db:"id"`
	Name        string          `json:"name" db:"name"`
	Brand       string          `json:"brand" db:"brand"`
	Year        int             `json:"year" db:"year"`
	PricePerDay decimal.Decimal `json:"price_per_day" db:"price_per_day"`
	FuelType    FuelType        `json:"fuel_type" db:"fuel_type"`
	IsAvailable bool            `json:"is_available" db:"is_available"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at" db:"updated_at"`
}

// Summary returns the embedded vehicle shape used inside booking responses.
func (v *Vehicle) Summary() Summary {
	return Summary{
		ID:       v.ID,
		Name:     v.Name,
		Brand:    v.Brand,
		Year:     v.Year,
		FuelType: v.FuelType,
	}
}
