package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	CurrencyUSD = "USD"
	CurrencyINR = "INR"
)

// Layout of dates (without time) used by backend
const DateLayout = "2006-01-02"

type Trip struct {
	ID           ID              `json:"id"`
	User         ID              `json:"user"`
	UserEmail    string          `json:"user_email,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description"`
	Destination  string          `json:"destination"`
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Budget       decimal.Decimal `json:"budget"`
	Currency     string          `json:"currency"`
	IsPublic     bool            `json:"is_public"`
	DurationDays int             `json:"duration_days,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

// Payload to create or fully update trip
type TripInput struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description,omitempty"`
	Destination string          `json:"destination" validate:"required,max=200"`
	StartDate   string          `json:"start_date" validate:"required,datetime=2006-01-02"`
	EndDate     string          `json:"end_date" validate:"required,datetime=2006-01-02"`
	Budget      decimal.Decimal `json:"budget" validate:"gte=0"`
	Currency    string          `json:"currency,omitempty" validate:"omitempty,oneof=USD INR"`
	IsPublic    bool            `json:"is_public"`
}

// Partial trip update, nil means leave as is
type TripPatch struct {
	Title       *string          `json:"title,omitempty" validate:"omitempty,max=200"`
	Description *string          `json:"description,omitempty"`
	Destination *string          `json:"destination,omitempty" validate:"omitempty,max=200"`
	StartDate   *string          `json:"start_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string          `json:"end_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	Currency    *string          `json:"currency,omitempty" validate:"omitempty,oneof=USD INR"`
	IsPublic    *bool            `json:"is_public,omitempty"`
}
