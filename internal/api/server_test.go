package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/envsync/internal/api"
	v1 "github.com/stacklok/envsync/internal/api/v1"
	"github.com/stacklok/envsync/internal/api/v1/mocks"
	"github.com/stacklok/envsync/internal/versions"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

func newServer(t *testing.T, readiness api.ReadinessChecker) http.Handler {
	t.Helper()
	ctrl := gomock.NewController(t)
	t.Cleanup(ctrl.Finish)

	routes := v1.NewRoutes(
		mocks.NewMockDiffService(ctrl),
		mocks.NewMockPublishService(ctrl),
		mocks.NewMockResourceLister(ctrl),
		v1.Settings{},
	)
	return api.NewServer(routes, readiness, api.WithMiddlewares(api.LoggingMiddleware))
}

func TestHealthEndpoint(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newServer(t, pinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var response map[string]string
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &response))
	assert.Equal(t, "healthy", response["status"])
}

func TestReadinessEndpoint(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "store ready", wantStatus: http.StatusOK},
		{name: "store unreachable", pingErr: errors.New("dial tcp: refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rr := httptest.NewRecorder()
			newServer(t, pinger{err: tt.pingErr}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readiness", nil))
			assert.Equal(t, tt.wantStatus, rr.Code)
			assert.NotContains(t, rr.Body.String(), "refused")
		})
	}
}

func TestVersionEndpoint(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newServer(t, pinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/version", nil))
	require.Equal(t, http.StatusOK, rr.Code)

	var info versions.Info
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &info))
	assert.NotEmpty(t, info.GoVersion)
}

func TestV1IsMounted(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	newServer(t, pinger{}).ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/v1/environments/abc/diff", nil))
	// no caller headers: the route exists and rejects the request
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}
