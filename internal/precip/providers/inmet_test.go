package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chuvadata/precip-aggregation/internal/geo"
)

func sptr(s string) *string { return &s }

func TestInmetColumns(t *testing.T) {
	rows := []inmetRow{
		{Date: "2024-03-09", Hour: "2300", Rain: sptr("1.4")},
		{Date: "2024-03-10", Hour: "0000", Rain: sptr("0,6")}, // decimal comma
		{Date: "2024-03-10", Hour: "0100", Rain: nil},         // station gap
		{Date: "2024-03-10", Hour: "0200", Rain: sptr("")},    // empty string null
		{Date: "2024-03-10", Hour: "0300", Rain: sptr("n/d")}, // unparseable, dropped
		{Date: "2024-03-10", Hour: "bad", Rain: sptr("1.0")},  // bad hour, dropped
	}

	cols := inmetColumns(rows)
	require.Len(t, cols.Times, 4)
	require.Len(t, cols.Values, 4)

	assert.Equal(t, "2024-03-09T23:00:00Z", cols.Times[0])
	assert.Equal(t, 1.4, *cols.Values[0])
	assert.Equal(t, "2024-03-10T00:00:00Z", cols.Times[1])
	assert.Equal(t, 0.6, *cols.Values[1])
	assert.Nil(t, cols.Values[2])
	assert.Nil(t, cols.Values[3])
}

func TestInmet_FetchHourly(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)

	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"DT_MEDICAO": "2024-03-10", "HR_MEDICAO": "1200", "CHUVA": "0.8"},
			{"DT_MEDICAO": "2024-03-10", "HR_MEDICAO": "1300", "CHUVA": null}
		]`))
	}))
	defer server.Close()

	p := NewInmet(server.Client(), clockwork.NewFakeClockAt(now))
	p.baseURL = server.URL

	city := geo.City{Name: "São Paulo", Station: "A701"}
	cols, err := p.FetchHourly(context.Background(), city, 7, 2)
	require.NoError(t, err)

	assert.Equal(t, "/2024-03-03/2024-03-10/A701", gotPath)
	require.Len(t, cols.Times, 2)
	assert.Equal(t, "2024-03-10T12:00:00Z", cols.Times[0])
	assert.Equal(t, 0.8, *cols.Values[0])
	assert.Nil(t, cols.Values[1])
}

func TestInmet_NoStation(t *testing.T) {
	p := NewInmet(http.DefaultClient, clockwork.NewFakeClockAt(time.Now()))

	_, err := p.FetchHourly(context.Background(), geo.City{Name: "Vassouras"}, 7, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no station")
}
