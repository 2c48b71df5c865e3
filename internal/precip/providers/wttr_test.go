package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWttrColumns(t *testing.T) {
	raw := `{
		"weather": [
			{
				"date": "2024-03-10",
				"hourly": [
					{"time": "0", "precipMM": "0.0"},
					{"time": "300", "precipMM": "1.5"},
					{"time": "2100", "precipMM": "0.2"},
					{"time": "bad", "precipMM": "1.0"},
					{"time": "600", "precipMM": "n/a"}
				]
			}
		]
	}`

	var payload wttrPayload
	require.NoError(t, json.Unmarshal([]byte(raw), &payload))

	// The two malformed rows are dropped at the boundary.
	cols := wttrColumns(payload)
	require.Len(t, cols.Times, 3)
	assert.Equal(t, "2024-03-10T00:00", cols.Times[0])
	assert.Equal(t, "2024-03-10T03:00", cols.Times[1])
	assert.Equal(t, "2024-03-10T21:00", cols.Times[2])
	assert.Equal(t, 1.5, *cols.Values[1])
}

func TestWttr_FetchHourly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "j1", r.URL.Query().Get("format"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"weather": [
				{
					"date": "2024-03-10",
					"hourly": [
						{"time": "0", "precipMM": "0.0"},
						{"time": "300", "precipMM": "2.4"}
					]
				}
			]
		}`))
	}))
	defer server.Close()

	p := NewWttr(server.Client())
	p.baseURL = server.URL

	cols, err := p.FetchHourly(context.Background(), testCity, 7, 2)
	require.NoError(t, err)
	require.Len(t, cols.Times, 2)
	assert.Equal(t, "2024-03-10T03:00", cols.Times[1])
	assert.Equal(t, 2.4, *cols.Values[1])
}
