package fakeapi

import (
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/nkiryanov/triply/internal/models"
)

func (s *Server) handleListTrips(w http.ResponseWriter, r *http.Request) {
	u, _ := userFromContext(r.Context())

	s.mu.Lock()
	trips := make([]models.Trip, 0, len(s.trips))
	for _, trip := range s.trips {
		if trip.User == u.ID {
			trips = append(trips, trip)
		}
	}
	s.mu.Unlock()

	sort.Slice(trips, func(i, j int) bool { return trips[i].CreatedAt.Before(trips[j].CreatedAt) })

	renderJSON(w, models.Page[models.Trip]{Results: trips, Count: len(trips)})
}

func (s *Server) handleCreateTrip(w http.ResponseWriter, r *http.Request) {
	data, ok := bind[models.TripInput](w, r)
	if !ok {
		return
	}
	u, _ := userFromContext(r.Context())

	s.mu.Lock()
	s.nextID++
	trip := tripFromInput(models.ID(strconv.Itoa(s.nextID)), u, data)
	trip.CreatedAt = time.Now().UTC()
	trip.UpdatedAt = trip.CreatedAt
	s.trips[trip.ID] = trip
	s.mu.Unlock()

	jsonWithStatus(w, trip, http.StatusCreated)
}

func (s *Server) handleGetTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := s.ownTrip(w, r)
	if !ok {
		return
	}
	renderJSON(w, trip)
}

func (s *Server) handleUpdateTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := s.ownTrip(w, r)
	if !ok {
		return
	}
	data, ok := bind[models.TripInput](w, r)
	if !ok {
		return
	}
	u, _ := userFromContext(r.Context())

	updated := tripFromInput(trip.ID, u, data)
	updated.CreatedAt = trip.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	s.mu.Lock()
	s.trips[trip.ID] = updated
	s.mu.Unlock()

	renderJSON(w, updated)
}

func (s *Server) handleDeleteTrip(w http.ResponseWriter, r *http.Request) {
	trip, ok := s.ownTrip(w, r)
	if !ok {
		return
	}

	s.mu.Lock()
	delete(s.trips, trip.ID)
	s.mu.Unlock()

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) ownTrip(w http.ResponseWriter, r *http.Request) (models.Trip, bool) {
	u, _ := userFromContext(r.Context())
	id := models.ID(r.PathValue("id"))

	s.mu.Lock()
	trip, ok := s.trips[id]
	s.mu.Unlock()

	if !ok || trip.User != u.ID {
		renderDetail(w, "Not found.", http.StatusNotFound)
		return models.Trip{}, false
	}
	return trip, true
}

func tripFromInput(id models.ID, u models.User, in models.TripInput) models.Trip {
	currency := in.Currency
	if currency == "" {
		currency = models.CurrencyUSD
	}

	trip := models.Trip{
		ID:          id,
		User:        u.ID,
		UserEmail:   u.Email,
		Title:       in.Title,
		Description: in.Description,
		Destination: in.Destination,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		Budget:      in.Budget,
		Currency:    currency,
		IsPublic:    in.IsPublic,
	}

	start, errStart := time.Parse(models.DateLayout, in.StartDate)
	end, errEnd := time.Parse(models.DateLayout, in.EndDate)
	if errStart == nil && errEnd == nil {
		trip.DurationDays = int(end.Sub(start).Hours()/24) + 1
	}

	return trip
}
