// Package budget holds the arithmetic behind budget summaries and alerts.
package budget

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/nkiryanov/triply/internal/models"
)

type Level string

const (
	LevelCritical Level = "critical"
	LevelWarning  Level = "warning"
	LevelOnTrack  Level = "on_track"
)

// Thresholds in percents of total budget
var (
	criticalAbove = decimal.NewFromInt(90)
	warningAbove  = decimal.NewFromInt(75)
	onTrackBelow  = decimal.NewFromInt(50)
	hundred       = decimal.NewFromInt(100)
)

type Alert struct {
	Level   Level
	Title   string
	Message string
}

// PercentUsed returns spent/total in percents, zero if there is no budget
func PercentUsed(spent decimal.Decimal, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}
	return spent.Div(total).Mul(hundred)
}

// Check returns alert for the budget state
// Between 50 and 75 percents nothing worth to say: ok is false
func Check(spent decimal.Decimal, total decimal.Decimal, remaining decimal.Decimal, currency string) (alert Alert, ok bool) {
	percent := PercentUsed(spent, total)
	p := percent.StringFixed(1)

	switch {
	case percent.GreaterThan(criticalAbove):
		return Alert{
			Level:   LevelCritical,
			Title:   "Budget Critical!",
			Message: fmt.Sprintf("You've spent %s%% of your budget. Only %s remaining.", p, Format(remaining, currency)),
		}, true
	case percent.GreaterThan(warningAbove):
		return Alert{
			Level:   LevelWarning,
			Title:   "Budget Warning",
			Message: fmt.Sprintf("You've spent %s%% of your budget. Consider monitoring your expenses.", p),
		}, true
	case percent.LessThan(onTrackBelow):
		return Alert{
			Level:   LevelOnTrack,
			Title:   "On Track!",
			Message: fmt.Sprintf("You're doing great! Only %s%% of budget spent.", p),
		}, true
	default:
		return Alert{}, false
	}
}

// CheckSummary is Check over backend summary
func CheckSummary(s models.BudgetSummary, currency string) (Alert, bool) {
	if s.Currency != "" {
		currency = s.Currency
	}
	return Check(s.TotalSpent, s.TotalBudget, s.Remaining, currency)
}

func Symbol(currency string) string {
	switch currency {
	case models.CurrencyUSD:
		return "$"
	case models.CurrencyINR:
		return "₹"
	default:
		return currency + " "
	}
}

// Format amount with currency symbol and two decimals
func Format(amount decimal.Decimal, currency string) string {
	return Symbol(currency) + amount.StringFixed(2)
}

func Total(expenses []models.Expense) decimal.Decimal {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}
	return total
}

// ByCategory sums expenses per category
func ByCategory(expenses []models.Expense) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, e := range expenses {
		totals[e.Category] = totals[e.Category].Add(e.Amount)
	}
	return totals
}

type CategoryTotal struct {
	Category string
	Amount   decimal.Decimal
}

// SortedByAmount returns category totals biggest first
func SortedByAmount(totals map[string]decimal.Decimal) []CategoryTotal {
	res := make([]CategoryTotal, 0, len(totals))
	for c, a := range totals {
		res = append(res, CategoryTotal{Category: c, Amount: a})
	}
	sort.Slice(res, func(i, j int) bool {
		if !res[i].Amount.Equal(res[j].Amount) {
			return res[i].Amount.GreaterThan(res[j].Amount)
		}
		return res[i].Category < res[j].Category
	})
	return res
}
