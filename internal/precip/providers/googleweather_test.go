package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGoogleWeather_NoAPIKey(t *testing.T) {
	p := NewGoogleWeather(http.DefaultClient, "")

	_, err := p.FetchHourly(context.Background(), testCity, 1, 1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no API key")
}

func TestGoogleWeather_FetchHourly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		w.Header().Set("Content-Type", "application/json")

		switch {
		case strings.Contains(r.URL.Path, "/history/"):
			assert.Equal(t, "24", r.URL.Query().Get("hours"))
			w.Write([]byte(`{
				"historyHours": [
					{"interval": {"startTime": "2024-03-10T10:00:00Z"}, "precipitation": {"qpf": {"quantity": 0.5, "unit": "MILLIMETERS"}}},
					{"interval": {"startTime": "2024-03-10T11:00:00Z"}, "precipitation": {"qpf": {}}}
				]
			}`))
		case strings.Contains(r.URL.Path, "/forecast/"):
			assert.Equal(t, "48", r.URL.Query().Get("hours"))
			w.Write([]byte(`{
				"forecastHours": [
					{"interval": {"startTime": "2024-03-10T13:00:00Z"}, "precipitation": {"qpf": {"quantity": 2.1, "unit": "MILLIMETERS"}}}
				]
			}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()

	p := NewGoogleWeather(server.Client(), "test-key")
	p.baseURL = server.URL + "/v1"

	cols, err := p.FetchHourly(context.Background(), testCity, 7, 2)
	require.NoError(t, err)

	// History is capped at 24 hours; forecast follows forecastDays.
	require.Len(t, cols.Times, 3)
	assert.Equal(t, "2024-03-10T10:00:00Z", cols.Times[0])
	assert.Equal(t, 0.5, *cols.Values[0])
	assert.Nil(t, cols.Values[1])
	assert.Equal(t, 2.1, *cols.Values[2])
}
