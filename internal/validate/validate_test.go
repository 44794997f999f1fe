package validate

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
)

func TestStruct(t *testing.T) {
	t.Run("valid credentials", func(t *testing.T) {
		err := Struct(models.Credentials{Email: "a@b.com", Password: "secret1"})

		require.NoError(t, err)
	})

	t.Run("errors reported by json names", func(t *testing.T) {
		err := Struct(models.Credentials{Email: "not-email"})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, map[string]string{
			"email":    "Enter a valid email address",
			"password": "This field is required",
		}, vErr.Fields)
	})

	t.Run("registration passwords must match", func(t *testing.T) {
		err := Struct(models.Registration{
			Email:     "a@b.com",
			FirstName: "Ann",
			LastName:  "Lee",
			Password:  "long-password",
			Password2: "other-password",
		})

		var vErr *apperrors.ValidationError
		require.ErrorAs(t, err, &vErr)
		require.Equal(t, "Passwords do not match", vErr.Fields["password2"])
		require.Len(t, vErr.Fields, 1)
	})
}

func TestStruct_Trip(t *testing.T) {
	valid := func() models.TripInput {
		return models.TripInput{
			Title:       "Lisbon",
			Destination: "Portugal",
			StartDate:   "2026-05-01",
			EndDate:     "2026-05-07",
			Budget:      decimal.RequireFromString("1500.00"),
			Currency:    models.CurrencyUSD,
		}
	}

	tests := []struct {
		name   string
		modify func(*models.TripInput)
		field  string // empty if valid
	}{
		{"valid", func(*models.TripInput) {}, ""},
		{"same day trip", func(in *models.TripInput) { in.EndDate = in.StartDate }, ""},
		{"end before start", func(in *models.TripInput) { in.EndDate = "2026-04-30" }, "end_date"},
		{"bad date format", func(in *models.TripInput) { in.StartDate = "01.05.2026" }, "start_date"},
		{"negative budget", func(in *models.TripInput) { in.Budget = decimal.NewFromInt(-1) }, "budget"},
		{"unknown currency", func(in *models.TripInput) { in.Currency = "EUR" }, "currency"},
		{"title required", func(in *models.TripInput) { in.Title = "" }, "title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid()
			tt.modify(&in)

			err := Struct(in)

			if tt.field == "" {
				require.NoError(t, err)
				return
			}
			var vErr *apperrors.ValidationError
			require.ErrorAs(t, err, &vErr)
			require.Contains(t, vErr.Fields, tt.field)
		})
	}
}

func TestStruct_Expense(t *testing.T) {
	in := models.ExpenseInput{
		Trip:     "7",
		Title:    "Dinner",
		Amount:   decimal.Zero,
		Category: models.ExpenseFood,
		Date:     "2026-05-02",
	}

	err := Struct(in)

	var vErr *apperrors.ValidationError
	require.ErrorAs(t, err, &vErr)
	require.Equal(t, "Must be greater than 0", vErr.Fields["amount"])
}
