package marketdata

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/config"
)

func TestFredClientFetchSeries(t *testing.T) {
	var gotPath string
	var gotQuery url.Values
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"observations": [{"date": "2024-01-01", "value": "3.7"}, {"date": "2024-02-01", "value": "."}]}`)
	}))
	defer server.Close()

	client := NewFredClient(config.FredConfig{APIKey: "test-key", BaseURL: server.URL}, discardLogger())

	observations, err := client.FetchSeries(context.Background(), "UNRATE", "2024-01-01", "2024-03-01")
	require.NoError(t, err)
	require.Len(t, observations, 2)
	assert.Equal(t, FredObservation{Date: "2024-01-01", Value: "3.7"}, observations[0])
	// Missing observations come back as "." and are kept raw at this layer.
	assert.Equal(t, ".", observations[1].Value)

	assert.Equal(t, "/series/observations", gotPath)
	assert.Equal(t, "UNRATE", gotQuery.Get("series_id"))
	assert.Equal(t, "test-key", gotQuery.Get("api_key"))
	assert.Equal(t, "json", gotQuery.Get("file_type"))
	assert.Equal(t, "2024-01-01", gotQuery.Get("observation_start"))
	assert.Equal(t, "2024-03-01", gotQuery.Get("observation_end"))
}

func TestFredClientErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"error_message": "Bad Request. The series does not exist."}`)
	}))
	defer server.Close()

	client := NewFredClient(config.FredConfig{APIKey: "test-key", BaseURL: server.URL}, discardLogger())

	_, err := client.FetchSeries(context.Background(), "NOPE", "2024-01-01", "2024-03-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "400")
	assert.Contains(t, err.Error(), "NOPE")
}

func TestFredClientMalformedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `not json`)
	}))
	defer server.Close()

	client := NewFredClient(config.FredConfig{APIKey: "test-key", BaseURL: server.URL}, discardLogger())

	_, err := client.FetchSeries(context.Background(), "UNRATE", "2024-01-01", "2024-03-01")
	assert.Error(t, err)
}
