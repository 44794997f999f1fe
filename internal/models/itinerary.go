package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type Destination struct {
	ID              ID                  `json:"id"`
	Trip            ID                  `json:"trip"`
	Name            string              `json:"name"`
	Address         string              `json:"address,omitempty"`
	Latitude        decimal.NullDecimal `json:"latitude"`
	Longitude       decimal.NullDecimal `json:"longitude"`
	DayNumber       int                 `json:"day_number"`
	Notes           string              `json:"notes,omitempty"`
	Activities      []Activity          `json:"activities,omitempty"`
	ActivitiesCount int                 `json:"activities_count"`
	CreatedAt       time.Time           `json:"created_at"`
}

// Coordinates returns destination location if both latitude and longitude are known
func (d Destination) Coordinates() (Coordinates, bool) {
	if !d.Latitude.Valid || !d.Longitude.Valid {
		return Coordinates{}, false
	}

	lat, _ := d.Latitude.Decimal.Float64()
	lng, _ := d.Longitude.Decimal.Float64()
	return Coordinates{Lat: lat, Lng: lng}, true
}

type DestinationInput struct {
	Trip      ID                  `json:"trip" validate:"required"`
	Name      string              `json:"name" validate:"required,max=200"`
	Address   string              `json:"address,omitempty"`
	Latitude  decimal.NullDecimal `json:"latitude"`
	Longitude decimal.NullDecimal `json:"longitude"`
	DayNumber int                 `json:"day_number" validate:"gte=1"`
	Notes     string              `json:"notes,omitempty"`
}

const (
	ActivitySightseeing   = "sightseeing"
	ActivityFood          = "food"
	ActivityAdventure     = "adventure"
	ActivityRelaxation    = "relaxation"
	ActivityShopping      = "shopping"
	ActivityEntertainment = "entertainment"
	ActivityTransport     = "transport"
	ActivityOther         = "other"
)

type Activity struct {
	ID            ID              `json:"id"`
	Destination   ID              `json:"destination"`
	Title         string          `json:"title"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category"`
	StartTime     string          `json:"start_time,omitempty"`
	EndTime       string          `json:"end_time,omitempty"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
	BookingURL    string          `json:"booking_url,omitempty"`
	IsCompleted   bool            `json:"is_completed"`
	CreatedAt     time.Time       `json:"created_at"`
}

type ActivityInput struct {
	Destination   ID              `json:"destination" validate:"required"`
	Title         string          `json:"title" validate:"required,max=200"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category" validate:"required,oneof=sightseeing food adventure relaxation shopping entertainment transport other"`
	StartTime     string          `json:"start_time,omitempty" validate:"omitempty,datetime=15:04"`
	EndTime       string          `json:"end_time,omitempty" validate:"omitempty,datetime=15:04"`
	EstimatedCost decimal.Decimal `json:"estimated_cost" validate:"gte=0"`
	BookingURL    string          `json:"booking_url,omitempty" validate:"omitempty,url"`
}

// Point on the map in degrees
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}
