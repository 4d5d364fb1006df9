package report

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gerefleet/console/internal/authz"
	"github.com/gerefleet/console/internal/elapsed"
	"github.com/gerefleet/console/internal/search"
	"github.com/gerefleet/console/internal/session"
	"github.com/gerefleet/console/internal/upstream"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestHasReason(t *testing.T) {
	tests := []struct {
		name        string
		failTypeID  int64
		otherReason string
		want        bool
	}{
		{name: "catalog failure", failTypeID: 3, want: true},
		{name: "free text", otherReason: "cracked windshield", want: true},
		{name: "both", failTypeID: 3, otherReason: "also this", want: true},
		{name: "neither", want: false},
		{name: "blank free text", otherReason: "   ", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, hasReason(tt.failTypeID, tt.otherReason))
		})
	}
}

func newRouter(t *testing.T, fleetHandler http.Handler) http.Handler {
	t.Helper()

	srv := httptest.NewServer(fleetHandler)
	t.Cleanup(srv.Close)

	store := session.NewMemoryStore()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"roles": "USER"}).
		SignedString([]byte("unit-test"))
	require.NoError(t, err)
	require.NoError(t, store.Set(context.Background(), session.KeyToken, token))

	logger := zaptest.NewLogger(t)
	sessions := session.NewService(store, nil, logger)
	guard := authz.NewGuard(sessions, logger)
	fleet := upstream.NewClient(srv.URL, 2*time.Second, logger)
	ticker := elapsed.NewTicker(time.Second)
	searcher := search.NewDebouncer[[]string](5 * time.Millisecond)

	return NewReportHandler(fleet, sessions, guard, ticker, searcher, logger).Routes()
}

func postJSON(router http.Handler, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

// A report without a catalog failure and without free text must be rejected
// before it reaches the fleet.
func TestVehicleReportRequiresAReason(t *testing.T) {
	router := newRouter(t, http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		t.Error("reason-less report must not reach the fleet")
	}))

	rec := postJSON(router, "/vehicles", `{"economical":"1001","status":"WORKSHOP"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	var env struct {
		Error *struct {
			Code    string `json:"code"`
			Details []struct {
				Field string `json:"field"`
				Rule  string `json:"rule"`
			} `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "validation_failed", env.Error.Code)
	require.Len(t, env.Error.Details, 1)
	assert.Equal(t, "FailTypeID", env.Error.Details[0].Field)
	assert.Equal(t, "required_without", env.Error.Details[0].Rule)
}

func TestVehicleReportWithCatalogFailure(t *testing.T) {
	var got upstream.ReportRequest
	router := newRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	rec := postJSON(router, "/vehicles", `{"economical":"1001","status":"WORKSHOP","failTypeId":3,"mileage":1200}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "1001", got.Economical)
	assert.Equal(t, int64(3), got.FailTypeID)
	assert.Equal(t, 1200, got.Mileage)
}

func TestDeviceReportWithFreeTextReason(t *testing.T) {
	var got upstream.ReportRequest
	router := newRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/deviceReport", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
	}))

	rec := postJSON(router, "/devices", `{"serialNumber":"sn0042","status":"DAMAGED","otherReason":"  dropped in water "}`)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "SN0042", got.SerialNumber, "serial is uppercased before forwarding")
	assert.Equal(t, "dropped in water", got.OtherReason, "free text is trimmed")
}

func TestHistoryRowsCarryElapsed(t *testing.T) {
	reported := time.Now().Add(-30 * time.Minute)
	router := newRouter(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/reports/history", r.URL.Path)
		assert.Equal(t, "1001", r.URL.Query().Get("search"))
		w.Header().Set("Content-Type", "application/json")
		payload, _ := json.Marshal([]map[string]any{{
			"id":         7,
			"economical": "1001",
			"status":     "WORKSHOP",
			"workCenter": map[string]any{"id": 3, "name": "Central"},
			"reportedAt": reported.Format("2006-01-02T15:04:05"),
		}})
		_, _ = w.Write(payload)
	}))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/history?search=1001", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var env struct {
		Data struct {
			Entries []struct {
				ID             int64  `json:"id"`
				WorkCenter     string `json:"workCenter"`
				Elapsed        string `json:"elapsed"`
				ElapsedSeconds int64  `json:"elapsedSeconds"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.Len(t, env.Data.Entries, 1)
	assert.Equal(t, int64(7), env.Data.Entries[0].ID)
	assert.Equal(t, "Central", env.Data.Entries[0].WorkCenter)
	assert.InDelta(t, 1800, env.Data.Entries[0].ElapsedSeconds, 5)
	assert.Regexp(t, `^00:30:\d{2}$`, env.Data.Entries[0].Elapsed)
}
