package http_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	httpadapter "github.com/couchcryptid/climashield/internal/adapter/http"
	"github.com/couchcryptid/climashield/internal/domain"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockAssessor struct {
	areas []string
	asked []string
}

func (m *mockAssessor) Assess(_ context.Context, area string) domain.Assessment {
	m.asked = append(m.asked, area)
	return domain.Assessment{
		Area:      area,
		Risk:      domain.RiskBundle{ClimateRiskScore: 8.9},
		RiskLevel: domain.RiskHigh,
	}
}

func (m *mockAssessor) Areas() []string { return m.areas }

type mockForecasts struct {
	rows []domain.ForecastRow
	err  error
}

func (m *mockForecasts) LatestForecast(_ context.Context, _ string) ([]domain.ForecastRow, error) {
	return m.rows, m.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestServer(readyErr error) *httpadapter.Server {
	return httpadapter.NewServer(":0", &mockReadiness{err: readyErr}, &mockAssessor{}, nil, discardLogger())
}

func serve(srv *httpadapter.Server, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthzReturns200(t *testing.T) {
	rec := serve(newTestServer(nil), "/healthz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := serve(newTestServer(nil), "/readyz")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := serve(newTestServer(errors.New("not ready yet")), "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := serve(newTestServer(nil), "/metrics")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestAreasEndpoint(t *testing.T) {
	srv := httpadapter.NewServer(":0", &mockReadiness{}, &mockAssessor{areas: []string{"Hebbal", "Koramangala"}}, nil, discardLogger())
	rec := serve(srv, "/v1/areas")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"areas":["Hebbal","Koramangala"]}`, rec.Body.String())
}

func TestAreasEndpoint_EmptyIsArray(t *testing.T) {
	rec := serve(newTestServer(nil), "/v1/areas")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"areas":[]}`, rec.Body.String())
}

func TestAssessmentEndpoint(t *testing.T) {
	assessor := &mockAssessor{}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, assessor, nil, discardLogger())

	rec := serve(srv, "/v1/areas/Electronic%20City/assessment")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Equal(t, []string{"Electronic City"}, assessor.asked)

	var got domain.Assessment
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "Electronic City", got.Area)
	assert.Equal(t, domain.RiskHigh, got.RiskLevel)
	assert.Equal(t, 8.9, got.Risk.ClimateRiskScore)
}

func TestAssessmentEndpoint_BlankArea(t *testing.T) {
	rec := serve(newTestServer(nil), "/v1/areas/%20/assessment")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestForecastEndpoint(t *testing.T) {
	rows := []domain.ForecastRow{
		{Year: 2024, Area: "Hebbal", AQI: 62, RainfallMM: 990},
		{Year: 2025, Area: "Hebbal", AQI: 58, RainfallMM: 1009, Projected: true},
	}
	srv := httpadapter.NewServer(":0", &mockReadiness{}, &mockAssessor{}, &mockForecasts{rows: rows}, discardLogger())

	rec := serve(srv, "/v1/areas/Hebbal/forecast")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Area string               `json:"area"`
		Rows []domain.ForecastRow `json:"rows"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Hebbal", body.Area)
	assert.Equal(t, rows, body.Rows)
}

func TestForecastEndpoint_Statuses(t *testing.T) {
	tests := []struct {
		name      string
		forecasts httpadapter.ForecastReader
		want      int
	}{
		{"no store configured", nil, http.StatusServiceUnavailable},
		{"no rows for area", &mockForecasts{}, http.StatusNotFound},
		{"store error", &mockForecasts{err: errors.New("database is locked")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httpadapter.NewServer(":0", &mockReadiness{}, &mockAssessor{}, tt.forecasts, discardLogger())
			rec := serve(srv, "/v1/areas/Hebbal/forecast")
			assert.Equal(t, tt.want, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestUnknownMethodRejected(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/areas", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
