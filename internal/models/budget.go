package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	ExpenseAccommodation = "accommodation"
	ExpenseFood          = "food"
	ExpenseTransport     = "transport"
	ExpenseActivities    = "activities"
	ExpenseShopping      = "shopping"
	ExpenseEntertainment = "entertainment"
	ExpenseEmergency     = "emergency"
	ExpenseOther         = "other"
)

const (
	ExpensePersonal = "personal"
	ExpenseGroup    = "group"
)

type Expense struct {
	ID           ID              `json:"id"`
	Trip         ID              `json:"trip"`
	ExpenseType  string          `json:"expense_type,omitempty"`
	Title        string          `json:"title"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Category     string          `json:"category"`
	Date         string          `json:"date"`
	PaidBy       ID              `json:"paid_by,omitempty"`
	SplitBetween []ID            `json:"split_between,omitempty"`
	ReceiptImage string          `json:"receipt_image,omitempty"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
}

type ExpenseInput struct {
	Trip         ID              `json:"trip" validate:"required"`
	ExpenseType  string          `json:"expense_type,omitempty" validate:"omitempty,oneof=personal group"`
	Title        string          `json:"title" validate:"required,max=200"`
	Description  string          `json:"description,omitempty"`
	Amount       decimal.Decimal `json:"amount" validate:"gt=0"`
	Category     string          `json:"category" validate:"required,oneof=accommodation food transport activities shopping entertainment emergency other"`
	Date         string          `json:"date" validate:"required,datetime=2006-01-02"`
	SplitBetween []ID            `json:"split_between,omitempty"`
}

// Budget summary as computed by backend
type BudgetSummary struct {
	TotalBudget        decimal.Decimal            `json:"total_budget"`
	TotalSpent         decimal.Decimal            `json:"total_spent"`
	Remaining          decimal.Decimal            `json:"remaining"`
	PercentageUsed     float64                    `json:"percentage_used"`
	ExpensesByCategory map[string]decimal.Decimal `json:"expenses_by_category"`
	Currency           string                     `json:"currency,omitempty"`
}

type BudgetInput struct {
	Currency    string          `json:"currency" validate:"required,oneof=USD INR"`
	TotalBudget decimal.Decimal `json:"total_budget" validate:"gte=0"`
}
