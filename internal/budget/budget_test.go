package budget

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/models"
)

func d(value string) decimal.Decimal {
	v, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return v
}

func TestPercentUsed(t *testing.T) {
	assert.True(t, d("80").Equal(PercentUsed(d("800"), d("1000"))))
	assert.True(t, PercentUsed(d("10"), decimal.Zero).IsZero(), "no budget no percents")
	assert.Equal(t, "33.3", PercentUsed(d("1"), d("3")).StringFixed(1))
}

func TestCheck(t *testing.T) {
	tests := []struct {
		name      string
		spent     string
		total     string
		currency  string
		wantOK    bool
		wantLevel Level
		wantMsg   string
	}{
		{
			name:      "critical",
			spent:     "950",
			total:     "1000",
			currency:  models.CurrencyUSD,
			wantOK:    true,
			wantLevel: LevelCritical,
			wantMsg:   "You've spent 95.0% of your budget. Only $50.00 remaining.",
		},
		{
			name:      "critical in rupees",
			spent:     "9100",
			total:     "10000",
			currency:  models.CurrencyINR,
			wantOK:    true,
			wantLevel: LevelCritical,
			wantMsg:   "You've spent 91.0% of your budget. Only ₹900.00 remaining.",
		},
		{
			name:      "exactly 90 is warning",
			spent:     "900",
			total:     "1000",
			currency:  models.CurrencyUSD,
			wantOK:    true,
			wantLevel: LevelWarning,
			wantMsg:   "You've spent 90.0% of your budget. Consider monitoring your expenses.",
		},
		{
			name:     "between 50 and 75 says nothing",
			spent:    "600",
			total:    "1000",
			currency: models.CurrencyUSD,
			wantOK:   false,
		},
		{
			name:     "exactly 50 says nothing",
			spent:    "500",
			total:    "1000",
			currency: models.CurrencyUSD,
			wantOK:   false,
		},
		{
			name:      "on track",
			spent:     "125.5",
			total:     "1000",
			currency:  models.CurrencyUSD,
			wantOK:    true,
			wantLevel: LevelOnTrack,
			wantMsg:   "You're doing great! Only 12.6% of budget spent.",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			remaining := d(tc.total).Sub(d(tc.spent))

			alert, ok := Check(d(tc.spent), d(tc.total), remaining, tc.currency)

			require.Equal(t, tc.wantOK, ok)
			if !tc.wantOK {
				return
			}
			assert.Equal(t, tc.wantLevel, alert.Level)
			assert.Equal(t, tc.wantMsg, alert.Message)
		})
	}
}

func TestCheckSummary_UsesSummaryCurrency(t *testing.T) {
	alert, ok := CheckSummary(models.BudgetSummary{
		TotalBudget: d("100"),
		TotalSpent:  d("99"),
		Remaining:   d("1"),
		Currency:    models.CurrencyINR,
	}, models.CurrencyUSD)

	require.True(t, ok)
	assert.Contains(t, alert.Message, "₹1.00")
}

func TestByCategory(t *testing.T) {
	expenses := []models.Expense{
		{Category: models.ExpenseFood, Amount: d("10.10")},
		{Category: models.ExpenseTransport, Amount: d("50")},
		{Category: models.ExpenseFood, Amount: d("5.05")},
	}

	totals := ByCategory(expenses)

	require.Len(t, totals, 2)
	assert.True(t, d("15.15").Equal(totals[models.ExpenseFood]))
	assert.True(t, d("65.15").Equal(Total(expenses)))

	sorted := SortedByAmount(totals)
	assert.Equal(t, models.ExpenseTransport, sorted[0].Category)
	assert.Equal(t, models.ExpenseFood, sorted[1].Category)
}
