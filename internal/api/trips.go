package api

import (
	"context"
	"net/http"
	"net/url"

	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/validate"
)

const tripsPrefix = "/api/v1/trips/"

type TripsClient struct {
	c *Client
}

func (t *TripsClient) List(ctx context.Context) (models.Page[models.Trip], error) {
	return t.list(ctx, tripsPrefix, nil)
}

func (t *TripsClient) Search(ctx context.Context, query string) (models.Page[models.Trip], error) {
	return t.list(ctx, tripsPrefix, url.Values{"search": {query}})
}

func (t *TripsClient) Upcoming(ctx context.Context) (models.Page[models.Trip], error) {
	return t.list(ctx, tripsPrefix+"upcoming/", nil)
}

func (t *TripsClient) Past(ctx context.Context) (models.Page[models.Trip], error) {
	return t.list(ctx, tripsPrefix+"past/", nil)
}

func (t *TripsClient) Get(ctx context.Context, id models.ID) (models.Trip, error) {
	var trip models.Trip
	err := t.c.doJSON(ctx, http.MethodGet, idPath(tripsPrefix, id), nil, nil, &trip)
	return trip, err
}

func (t *TripsClient) Create(ctx context.Context, in models.TripInput) (models.Trip, error) {
	var trip models.Trip
	if err := validate.Struct(in); err != nil {
		return trip, err
	}
	err := t.c.doJSON(ctx, http.MethodPost, tripsPrefix, nil, in, &trip)
	return trip, err
}

func (t *TripsClient) Update(ctx context.Context, id models.ID, in models.TripInput) (models.Trip, error) {
	var trip models.Trip
	if err := validate.Struct(in); err != nil {
		return trip, err
	}
	err := t.c.doJSON(ctx, http.MethodPut, idPath(tripsPrefix, id), nil, in, &trip)
	return trip, err
}

func (t *TripsClient) Patch(ctx context.Context, id models.ID, in models.TripPatch) (models.Trip, error) {
	var trip models.Trip
	if err := validate.Struct(in); err != nil {
		return trip, err
	}
	err := t.c.doJSON(ctx, http.MethodPatch, idPath(tripsPrefix, id), nil, in, &trip)
	return trip, err
}

func (t *TripsClient) Delete(ctx context.Context, id models.ID) error {
	return t.c.doJSON(ctx, http.MethodDelete, idPath(tripsPrefix, id), nil, nil, nil)
}

func (t *TripsClient) list(ctx context.Context, path string, query url.Values) (models.Page[models.Trip], error) {
	var page models.Page[models.Trip]
	err := t.c.doJSON(ctx, http.MethodGet, path, query, nil, &page)
	return page, err
}
