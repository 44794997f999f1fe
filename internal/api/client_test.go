package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/testutil"
)

// Server that replies with the same status and body to any request
func newStaticServer(t *testing.T, status int, body string) *httptest.Server {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Errors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    error
		wantMessage string
		wantUser    string
	}{
		{
			name:        "detail",
			status:      http.StatusNotFound,
			body:        `{"detail": "Not found."}`,
			wantKind:    apperrors.ErrNotFound,
			wantMessage: "Not found.",
			wantUser:    "Not found.",
		},
		{
			name:        "non field errors",
			status:      http.StatusBadRequest,
			body:        `{"non_field_errors": ["Unable to log in.", "Try again."]}`,
			wantMessage: "Unable to log in. Try again.",
			wantUser:    "Unable to log in. Try again.",
		},
		{
			name:        "field errors",
			status:      http.StatusBadRequest,
			body:        `{"title": ["This field is required."], "end_date": "Must be after start."}`,
			wantMessage: "end_date: Must be after start.; title: This field is required.",
			wantUser:    "end_date: Must be after start.; title: This field is required.",
		},
		{
			name:        "forbidden",
			status:      http.StatusForbidden,
			body:        `{"detail": "You do not have permission to perform this action."}`,
			wantKind:    apperrors.ErrForbidden,
			wantMessage: "You do not have permission to perform this action.",
			wantUser:    "You do not have permission to perform this action.",
		},
		{
			name:        "server error details hidden",
			status:      http.StatusInternalServerError,
			body:        `{"detail": "Traceback (most recent call last): ..."}`,
			wantKind:    apperrors.ErrServerError,
			wantMessage: apperrors.ErrServerError.Error(),
			wantUser:    "fallback",
		},
		{
			name:        "not json",
			status:      http.StatusBadGateway,
			body:        `<html>bad gateway</html>`,
			wantKind:    apperrors.ErrServerError,
			wantMessage: apperrors.ErrServerError.Error(),
			wantUser:    "fallback",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			srv := newStaticServer(t, tc.status, tc.body)
			c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

			_, err := c.Trips.Get(t.Context(), "1")

			var apiErr *apperrors.APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.StatusCode)
			assert.Equal(t, tc.wantMessage, apiErr.Message())
			assert.Equal(t, tc.wantUser, apperrors.UserMessage(err, "fallback"))
			if tc.wantKind != nil {
				assert.ErrorIs(t, err, tc.wantKind)
			}
		})
	}
}

func TestClient_TransportErrors(t *testing.T) {
	t.Run("server unreachable", func(t *testing.T) {
		c := NewClient(Config{BaseURL: testutil.ClosedAddr(t)}, nil, nil)

		_, err := c.Trips.List(t.Context())

		require.ErrorIs(t, err, apperrors.ErrServerUnreachable)
		assert.NotErrorIs(t, err, apperrors.ErrUnauthorized)
	})

	t.Run("timeout", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-time.After(time.Second):
			case <-r.Context().Done():
			}
		}))
		t.Cleanup(srv.Close)
		c := NewClient(Config{BaseURL: srv.URL, Timeout: 50 * time.Millisecond}, nil, nil)

		_, err := c.Trips.List(t.Context())

		require.ErrorIs(t, err, apperrors.ErrTimeout)
	})
}

func TestClient_Decode(t *testing.T) {
	t.Run("bare array page", func(t *testing.T) {
		srv := newStaticServer(t, http.StatusOK, `[{"id": 1, "title": "Goa", "budget": "1500.50"}, {"id": "2", "title": "Rome"}]`)
		c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

		page, err := c.Trips.Upcoming(t.Context())

		require.NoError(t, err)
		require.Len(t, page.Results, 2)
		assert.Equal(t, 2, page.Count)
		assert.False(t, page.HasNext())
		assert.Equal(t, models.ID("1"), page.Results[0].ID)
		assert.True(t, mustDecimal(t, "1500.5").Equal(page.Results[0].Budget))
		assert.Equal(t, models.ID("2"), page.Results[1].ID)
	})

	t.Run("paginated page", func(t *testing.T) {
		srv := newStaticServer(t, http.StatusOK, `{"count": 12, "next": "http://x/?page=2", "previous": null, "results": [{"id": 3, "title": "Oslo"}]}`)
		c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

		page, err := c.Trips.List(t.Context())

		require.NoError(t, err)
		assert.Equal(t, 12, page.Count)
		assert.True(t, page.HasNext())
		require.Len(t, page.Results, 1)
	})

	t.Run("no content", func(t *testing.T) {
		srv := newStaticServer(t, http.StatusNoContent, "")
		c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

		require.NoError(t, c.Trips.Delete(t.Context(), "3"))
	})
}

// Server that records last request and replies with body
type recorder struct {
	*httptest.Server

	method string
	uri    string
	body   string
	ctype  string
}

func newRecorder(t *testing.T, reply string) *recorder {
	rec := &recorder{}
	rec.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		rec.method, rec.uri, rec.body, rec.ctype = r.Method, r.URL.RequestURI(), string(b), r.Header.Get("Content-Type")
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(rec.Close)
	return rec
}

func TestClient_Requests(t *testing.T) {
	t.Run("search trips", func(t *testing.T) {
		rec := newRecorder(t, `[]`)
		c := NewClient(Config{BaseURL: rec.URL + "/"}, nil, nil)

		_, err := c.Trips.Search(t.Context(), "goa beach")

		require.NoError(t, err)
		assert.Equal(t, http.MethodGet, rec.method)
		assert.Equal(t, "/api/v1/trips/?search=goa+beach", rec.uri)
	})

	t.Run("toggle activity", func(t *testing.T) {
		rec := newRecorder(t, `{"id": 7, "is_completed": true}`)
		c := NewClient(Config{BaseURL: rec.URL}, nil, nil)

		a, err := c.Itinerary.SetActivityCompleted(t.Context(), "7", true)

		require.NoError(t, err)
		assert.True(t, a.IsCompleted)
		assert.Equal(t, http.MethodPatch, rec.method)
		assert.Equal(t, "/api/v1/itineraries/activities/7/", rec.uri)
		assert.JSONEq(t, `{"is_completed": true}`, rec.body)
		assert.Equal(t, "application/json", rec.ctype)
	})

	t.Run("destinations of trip", func(t *testing.T) {
		rec := newRecorder(t, `{"results": [{"id": 1, "name": "Panaji", "latitude": "15.4909", "longitude": null}]}`)
		c := NewClient(Config{BaseURL: rec.URL}, nil, nil)

		page, err := c.Itinerary.Destinations(t.Context(), "5")

		require.NoError(t, err)
		assert.Equal(t, "/api/v1/itineraries/destinations/?trip=5", rec.uri)
		require.Len(t, page.Results, 1)
		_, ok := page.Results[0].Coordinates()
		assert.False(t, ok, "destination without longitude has no coordinates")
	})

	t.Run("respond to invitation", func(t *testing.T) {
		rec := newRecorder(t, `{"id": "abc", "status": "accepted"}`)
		c := NewClient(Config{BaseURL: rec.URL}, nil, nil)

		inv, err := c.Collaboration.Respond(t.Context(), "abc", models.InvitationActionAccept)

		require.NoError(t, err)
		assert.Equal(t, models.InvitationAccepted, inv.Status)
		assert.Equal(t, http.MethodPost, rec.method)
		assert.Equal(t, "/api/v1/collaboration/invitations/abc/respond/", rec.uri)
		assert.JSONEq(t, `{"action": "accept"}`, rec.body)
	})

	t.Run("invalid invitation reply", func(t *testing.T) {
		rec := newRecorder(t, `{}`)
		c := NewClient(Config{BaseURL: rec.URL}, nil, nil)

		_, err := c.Collaboration.Respond(t.Context(), "abc", "maybe")

		var validationErr *apperrors.ValidationError
		require.ErrorAs(t, err, &validationErr)
		assert.Empty(t, rec.method, "request should not be sent")
	})

	t.Run("create expense numeric trip id", func(t *testing.T) {
		rec := newRecorder(t, `{"id": 9, "amount": "12.50"}`)
		c := NewClient(Config{BaseURL: rec.URL}, nil, nil)

		e, err := c.Budget.CreateExpense(t.Context(), models.ExpenseInput{
			Trip:     "5",
			Title:    "Dinner",
			Amount:   mustDecimal(t, "12.50"),
			Category: models.ExpenseFood,
			Date:     "2026-12-21",
		})

		require.NoError(t, err)
		assert.Equal(t, models.ID("9"), e.ID)
		assert.JSONEq(t, `{"trip": 5, "title": "Dinner", "amount": "12.5", "category": "food", "date": "2026-12-21"}`, rec.body)
	})
}

func TestBudgetClient_Summary(t *testing.T) {
	t.Run("no budget yet", func(t *testing.T) {
		srv := newStaticServer(t, http.StatusNotFound, `{"detail": "Not found."}`)
		c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

		s, err := c.Budget.Summary(t.Context(), "5")

		require.NoError(t, err)
		assert.True(t, s.TotalBudget.IsZero())
		assert.True(t, s.TotalSpent.IsZero())
		assert.NotNil(t, s.ExpensesByCategory)
	})

	t.Run("summary", func(t *testing.T) {
		srv := newStaticServer(t, http.StatusOK, `{
			"total_budget": "1000.00",
			"total_spent": "800.00",
			"remaining": "200.00",
			"percentage_used": 80,
			"expenses_by_category": {"food": "300.00", "transport": "500.00"}
		}`)
		c := NewClient(Config{BaseURL: srv.URL}, nil, nil)

		s, err := c.Budget.Summary(t.Context(), "5")

		require.NoError(t, err)
		assert.True(t, decimal.NewFromInt(800).Equal(s.TotalSpent))
		assert.InDelta(t, 80.0, s.PercentageUsed, 0.001)
		assert.Len(t, s.ExpensesByCategory, 2)
	})
}

func mustDecimal(t *testing.T, value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	require.NoError(t, err)
	return d
}
