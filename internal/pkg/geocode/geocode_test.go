package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoordinateString(t *testing.T) {
	assert.Equal(t, "12.35, 56.79", CoordinateString(12.35, 56.79))
	assert.Equal(t, "-7.5, 110.25", CoordinateString(-7.5, 110.25))
	assert.Equal(t, "0, 0", CoordinateString(0, 0))
}

func TestStatic_ReverseGeocode(t *testing.T) {
	address, err := NewStatic().ReverseGeocode(context.Background(), 12.34, 56.78)
	assert.NoError(t, err)
	assert.Equal(t, "12.34, 56.78", address)
}

func TestNominatim_ReverseGeocode_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "12.34", r.URL.Query().Get("lat"))
		assert.Equal(t, "56.78", r.URL.Query().Get("lon"))
		assert.Equal(t, "Attendance-System/1.0", r.Header.Get("User-Agent"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"address":{"road":"MG Road","city":"Bengaluru","state":"Karnataka","country":"India"}}`))
	}))
	defer server.Close()

	geocoder := NewNominatim(server.URL, "Attendance-System/1.0", 2*time.Second)
	address, err := geocoder.ReverseGeocode(context.Background(), 12.34, 56.78)

	require.NoError(t, err)
	assert.Equal(t, "MG Road, Bengaluru, Karnataka, India", address)
}

func TestNominatim_ReverseGeocode_EmptyAddress(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"address":{}}`))
	}))
	defer server.Close()

	geocoder := NewNominatim(server.URL, "Attendance-System/1.0", 2*time.Second)
	address, err := geocoder.ReverseGeocode(context.Background(), 12.34, 56.78)

	require.NoError(t, err)
	assert.Equal(t, "12.34, 56.78", address)
}

func TestNominatim_ReverseGeocode_UpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	geocoder := NewNominatim(server.URL, "Attendance-System/1.0", 2*time.Second)
	_, err := geocoder.ReverseGeocode(context.Background(), 12.34, 56.78)

	assert.Error(t, err)
}

func TestNominatim_ReverseGeocode_Timeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	geocoder := NewNominatim(server.URL, "Attendance-System/1.0", 50*time.Millisecond)
	_, err := geocoder.ReverseGeocode(context.Background(), 12.34, 56.78)

	assert.Error(t, err)
}

type failingGeocoder struct{}

func (failingGeocoder) ReverseGeocode(context.Context, float64, float64) (string, error) {
	return "", errors.New("boom")
}

func TestFallback_AbsorbsErrors(t *testing.T) {
	address, err := NewFallback(failingGeocoder{}).ReverseGeocode(context.Background(), 12.35, 56.79)
	assert.NoError(t, err)
	assert.Equal(t, "12.35, 56.79", address)
}

func TestFallback_PassesThroughSuccess(t *testing.T) {
	address, err := NewFallback(NewStatic()).ReverseGeocode(context.Background(), 1.5, 2.5)
	assert.NoError(t, err)
	assert.Equal(t, "1.5, 2.5", address)
}
