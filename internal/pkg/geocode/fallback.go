package geocode

import (
	"context"
	"log/slog"
)

// Fallback wraps another Geocoder and absorbs every failure: on any error
// the raw coordinate pair is returned instead. Callers depending on a
// Fallback never see a geocoding error, so address resolution can never
// make a check-in or check-out fail.
type Fallback struct {
	inner Geocoder
}

func NewFallback(inner Geocoder) Fallback {
	return Fallback{inner: inner}
}

func (f Fallback) ReverseGeocode(ctx context.Context, latitude, longitude float64) (string, error) {
	address, err := f.inner.ReverseGeocode(ctx, latitude, longitude)
	if err != nil {
		slog.Warn("Reverse geocoding failed, falling back to raw coordinates",
			"latitude", latitude, "longitude", longitude, "error", err)
		return CoordinateString(latitude, longitude), nil
	}
	return address, nil
}
