package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/validate"
)

const (
	destinationsPrefix = "/api/v1/itineraries/destinations/"
	activitiesPrefix   = "/api/v1/itineraries/activities/"
)

type ItineraryClient struct {
	c *Client
}

// Destinations of the trip, all user destinations if trip is empty
func (i *ItineraryClient) Destinations(ctx context.Context, trip models.ID) (models.Page[models.Destination], error) {
	var page models.Page[models.Destination]
	err := i.c.doJSON(ctx, http.MethodGet, destinationsPrefix, filter("trip", trip), nil, &page)
	return page, err
}

func (i *ItineraryClient) Destination(ctx context.Context, id models.ID) (models.Destination, error) {
	var d models.Destination
	err := i.c.doJSON(ctx, http.MethodGet, idPath(destinationsPrefix, id), nil, nil, &d)
	return d, err
}

func (i *ItineraryClient) CreateDestination(ctx context.Context, in models.DestinationInput) (models.Destination, error) {
	var d models.Destination
	if err := validate.Struct(in); err != nil {
		return d, err
	}
	err := i.c.doJSON(ctx, http.MethodPost, destinationsPrefix, nil, in, &d)
	return d, err
}

func (i *ItineraryClient) UpdateDestination(ctx context.Context, id models.ID, in models.DestinationInput) (models.Destination, error) {
	var d models.Destination
	if err := validate.Struct(in); err != nil {
		return d, err
	}
	err := i.c.doJSON(ctx, http.MethodPut, idPath(destinationsPrefix, id), nil, in, &d)
	return d, err
}

func (i *ItineraryClient) DeleteDestination(ctx context.Context, id models.ID) error {
	return i.c.doJSON(ctx, http.MethodDelete, idPath(destinationsPrefix, id), nil, nil, nil)
}

// Activities of the destination, all user activities if destination is empty
func (i *ItineraryClient) Activities(ctx context.Context, destination models.ID) (models.Page[models.Activity], error) {
	var page models.Page[models.Activity]
	err := i.c.doJSON(ctx, http.MethodGet, activitiesPrefix, filter("destination", destination), nil, &page)
	return page, err
}

func (i *ItineraryClient) Activity(ctx context.Context, id models.ID) (models.Activity, error) {
	var a models.Activity
	err := i.c.doJSON(ctx, http.MethodGet, idPath(activitiesPrefix, id), nil, nil, &a)
	return a, err
}

func (i *ItineraryClient) CreateActivity(ctx context.Context, in models.ActivityInput) (models.Activity, error) {
	var a models.Activity
	if err := validate.Struct(in); err != nil {
		return a, err
	}
	err := i.c.doJSON(ctx, http.MethodPost, activitiesPrefix, nil, in, &a)
	return a, err
}

func (i *ItineraryClient) UpdateActivity(ctx context.Context, id models.ID, in models.ActivityInput) (models.Activity, error) {
	var a models.Activity
	if err := validate.Struct(in); err != nil {
		return a, err
	}
	err := i.c.doJSON(ctx, http.MethodPut, idPath(activitiesPrefix, id), nil, in, &a)
	return a, err
}

func (i *ItineraryClient) SetActivityCompleted(ctx context.Context, id models.ID, completed bool) (models.Activity, error) {
	in := struct {
		IsCompleted bool `json:"is_completed"`
	}{IsCompleted: completed}

	var a models.Activity
	err := i.c.doJSON(ctx, http.MethodPatch, idPath(activitiesPrefix, id), nil, in, &a)
	return a, err
}

func (i *ItineraryClient) DeleteActivity(ctx context.Context, id models.ID) error {
	return i.c.doJSON(ctx, http.MethodDelete, idPath(activitiesPrefix, id), nil, nil, nil)
}

func filter(key string, id models.ID) url.Values {
	if id.IsZero() {
		return nil
	}
	return url.Values{key: {id.String()}}
}
