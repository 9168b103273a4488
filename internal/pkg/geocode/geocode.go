package geocode

import (
	"context"
	"strconv"
)

// Geocoder resolves a coordinate pair into a human-readable address.
type Geocoder interface {
	ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error)
}

// CoordinateString formats a coordinate pair the way it is shown to users
// when no address is available, e.g. "12.35, 56.79".
func CoordinateString(latitude, longitude float64) string {
	return strconv.FormatFloat(latitude, 'f', -1, 64) + ", " +
		strconv.FormatFloat(longitude, 'f', -1, 64)
}

// Static is an echo geocoder: it always answers with the raw coordinate
// pair and never errors. Used when the external geocoder is disabled and
// in tests.
type Static struct{}

func NewStatic() Static {
	return Static{}
}

func (Static) ReverseGeocode(_ context.Context, latitude, longitude float64) (string, error) {
	return CoordinateString(latitude, longitude), nil
}
