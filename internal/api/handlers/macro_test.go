package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantdesk/quantdesk-go/internal/marketdata"
	"github.com/quantdesk/quantdesk-go/internal/models"
	"github.com/quantdesk/quantdesk-go/internal/services"
)

type fakeSeriesFetcher struct {
	observations map[string][]marketdata.FredObservation
}

func (f *fakeSeriesFetcher) FetchSeries(ctx context.Context, seriesID, start, end string) ([]marketdata.FredObservation, error) {
	return f.observations[seriesID], nil
}

func macroRouter(observations map[string][]marketdata.FredObservation) *gin.Engine {
	gin.SetMode(gin.TestMode)
	service := services.NewMacroService(&fakeSeriesFetcher{observations: observations}, testLogger())
	handler := NewMacroHandler(service, testLogger())
	router := gin.New()
	router.POST("/macro/dashboard", handler.Dashboard)
	return router
}

func TestMacroDashboardEndpoint(t *testing.T) {
	router := macroRouter(map[string][]marketdata.FredObservation{
		"UNRATE": {
			{Date: "2024-01-01", Value: "3.7"},
			{Date: "2024-02-01", Value: "3.9"},
			{Date: "2024-03-01", Value: "3.8"},
		},
	})

	w := postJSON(t, router, "/macro/dashboard",
		`{"start": "2024-01-01", "end": "2024-03-31", "series_ids": ["unrate"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var response models.MacroDashboardResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "2024-01-01", response.Start)
	require.Len(t, response.Series, 1)
	assert.Equal(t, "UNRATE", response.Series[0].SeriesID)
	assert.Equal(t, "Unemployment Rate", response.Series[0].Label)
	assert.Equal(t, "FRED", response.Series[0].Source)
	assert.Len(t, response.Series[0].Points, 3)
	assert.Len(t, response.CorrelationMatrix, 1)
}

func TestMacroDashboardEndpointValidation(t *testing.T) {
	router := macroRouter(nil)

	cases := []struct {
		name string
		body string
	}{
		{"malformed json", `{`},
		{"missing start", `{"end": "2024-03-31"}`},
		{"bad start date", `{"start": "2024", "end": "2024-03-31"}`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := postJSON(t, router, "/macro/dashboard", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}
