// Package geo computes distances between itinerary destinations.
package geo

import (
	"fmt"
	"math"
	"net/url"
	"sort"
	"strconv"

	"github.com/nkiryanov/triply/internal/apperrors"
	"github.com/nkiryanov/triply/internal/models"
)

const (
	EarthRadiusKm   = 6371.0
	AverageSpeedKmh = 50.0

	DefaultZoom   = 13
	staticMapBase = "https://maps.googleapis.com/maps/api/staticmap"
)

// Distance returns great-circle distance in kilometers rounded to 0.1 km
func Distance(from models.Coordinates, to models.Coordinates) float64 {
	return round1(haversine(from, to))
}

func haversine(from models.Coordinates, to models.Coordinates) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }

	dLat := rad(to.Lat - from.Lat)
	dLng := rad(to.Lng - from.Lng)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(from.Lat))*math.Cos(rad(to.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

type Stop struct {
	Name      string
	DayNumber int
	Point     models.Coordinates
}

type Leg struct {
	From       string
	To         string
	DistanceKm float64
}

type Route struct {
	Stops          []Stop
	Legs           []Leg
	TotalKm        float64
	EstimatedHours float64
}

// BuildRoute orders destinations by day and sums distances between consecutive ones
// Destinations without coordinates are skipped
func BuildRoute(destinations []models.Destination) (Route, error) {
	var route Route

	for _, d := range destinations {
		point, ok := d.Coordinates()
		if !ok {
			continue
		}
		route.Stops = append(route.Stops, Stop{Name: d.Name, DayNumber: d.DayNumber, Point: point})
	}
	if len(route.Stops) < 2 {
		return route, apperrors.ErrRouteTooShort
	}

	sort.SliceStable(route.Stops, func(i, j int) bool {
		return route.Stops[i].DayNumber < route.Stops[j].DayNumber
	})

	total := 0.0
	for i := 1; i < len(route.Stops); i++ {
		from, to := route.Stops[i-1], route.Stops[i]
		km := haversine(from.Point, to.Point)
		total += km
		route.Legs = append(route.Legs, Leg{From: from.Name, To: to.Name, DistanceKm: round1(km)})
	}

	route.TotalKm = round1(total)
	route.EstimatedHours = round1(total / AverageSpeedKmh)

	return route, nil
}

// StaticMapURL returns URL of static map image centered at the point with a marker on it
func StaticMapURL(center models.Coordinates, zoom int, key string) string {
	if zoom <= 0 {
		zoom = DefaultZoom
	}
	point := formatPoint(center)

	q := url.Values{}
	q.Set("center", point)
	q.Set("zoom", strconv.Itoa(zoom))
	q.Set("size", "600x400")
	q.Set("maptype", "roadmap")
	q.Set("markers", "color:red|"+point)
	q.Set("key", key)

	return staticMapBase + "?" + q.Encode()
}

func formatPoint(c models.Coordinates) string {
	return fmt.Sprintf("%s,%s",
		strconv.FormatFloat(c.Lat, 'f', -1, 64),
		strconv.FormatFloat(c.Lng, 'f', -1, 64),
	)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
