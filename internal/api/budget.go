package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/validate"
)

const budgetsPrefix = "/api/v1/budgets/"

type BudgetClient struct {
	c *Client
}

// Expenses of the trip, all user expenses if trip is empty
func (b *BudgetClient) Expenses(ctx context.Context, trip models.ID) (models.Page[models.Expense], error) {
	var page models.Page[models.Expense]
	err := b.c.doJSON(ctx, http.MethodGet, budgetsPrefix, filter("trip", trip), nil, &page)
	return page, err
}

func (b *BudgetClient) Expense(ctx context.Context, id models.ID) (models.Expense, error) {
	var e models.Expense
	err := b.c.doJSON(ctx, http.MethodGet, idPath(budgetsPrefix, id), nil, nil, &e)
	return e, err
}

func (b *BudgetClient) CreateExpense(ctx context.Context, in models.ExpenseInput) (models.Expense, error) {
	var e models.Expense
	if err := validate.Struct(in); err != nil {
		return e, err
	}
	err := b.c.doJSON(ctx, http.MethodPost, budgetsPrefix, nil, in, &e)
	return e, err
}

func (b *BudgetClient) UpdateExpense(ctx context.Context, id models.ID, in models.ExpenseInput) (models.Expense, error) {
	var e models.Expense
	if err := validate.Struct(in); err != nil {
		return e, err
	}
	err := b.c.doJSON(ctx, http.MethodPut, idPath(budgetsPrefix, id), nil, in, &e)
	return e, err
}

func (b *BudgetClient) DeleteExpense(ctx context.Context, id models.ID) error {
	return b.c.doJSON(ctx, http.MethodDelete, idPath(budgetsPrefix, id), nil, nil, nil)
}

// Summary of the trip budget
// Trip without budget yet has no summary at backend, zero summary returned then
func (b *BudgetClient) Summary(ctx context.Context, trip models.ID) (models.BudgetSummary, error) {
	var s models.BudgetSummary
	err := b.c.doJSON(ctx, http.MethodGet, idPath(budgetsPrefix+"summary/", trip), nil, nil, &s)
	if errors.Is(err, apperrors.ErrNotFound) {
		return models.BudgetSummary{
			TotalBudget:        decimal.Zero,
			TotalSpent:         decimal.Zero,
			Remaining:          decimal.Zero,
			ExpensesByCategory: map[string]decimal.Decimal{},
		}, nil
	}
	return s, err
}

func (b *BudgetClient) UpdateBudget(ctx context.Context, trip models.ID, in models.BudgetInput) (models.BudgetSummary, error) {
	var s models.BudgetSummary
	if err := validate.Struct(in); err != nil {
		return s, err
	}
	err := b.c.doJSON(ctx, http.MethodPut, idPath(budgetsPrefix+"budget/", trip), nil, in, &s)
	return s, err
}
