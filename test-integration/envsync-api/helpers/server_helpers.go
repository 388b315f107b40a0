package helpers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stacklok/envsync/internal/api"
	v1 "github.com/stacklok/envsync/internal/api/v1"
	"github.com/stacklok/envsync/internal/store/postgres"
	"github.com/stacklok/envsync/internal/usecase"
)

// ServerTestHelper runs the envsync API in-process on top of a pool
type ServerTestHelper struct {
	Store      *postgres.Store
	server     *httptest.Server
	httpClient *http.Client
}

// NewServerTestHelper wires the store, orchestrators and router and starts
// an httptest server
func NewServerTestHelper(pool *pgxpool.Pool, settings v1.Settings) (*ServerTestHelper, error) {
	st, err := postgres.New(pool)
	if err != nil {
		return nil, fmt.Errorf("failed to create store: %w", err)
	}

	factory := usecase.NewStrategyFactory(st, usecase.CompareRules{}, nil)
	diff, err := usecase.NewDiffEnvironment(st, factory)
	if err != nil {
		return nil, err
	}
	publish, err := usecase.NewPublishEnvironment(st, factory)
	if err != nil {
		return nil, err
	}
	routes := v1.NewRoutes(diff, publish, usecase.NewAvailableResources(st, factory), settings)

	return &ServerTestHelper{
		Store:      st,
		server:     httptest.NewServer(api.NewServer(routes, st, api.WithMiddlewares(api.LoggingMiddleware))),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Close stops the HTTP server
func (s *ServerTestHelper) Close() {
	s.server.Close()
}

// Caller is the identity sent with every request
type Caller struct {
	OrganizationID string
	UserID         string
}

// Do sends a request with the caller headers and decodes a JSON response
// into out when out is not nil. It returns the status code.
func (s *ServerTestHelper) Do(
	ctx context.Context, caller Caller, method, path string, body any, out any,
) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.server.URL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if caller.OrganizationID != "" {
		req.Header.Set(v1.OrganizationHeader, caller.OrganizationID)
	}
	if caller.UserID != "" {
		req.Header.Set(v1.UserHeader, caller.UserID)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if out != nil && resp.StatusCode < http.StatusBadRequest {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return resp.StatusCode, nil
}

// Diff calls POST /v1/environments/{target}/diff
func (s *ServerTestHelper) Diff(ctx context.Context, caller Caller, targetID string) (*usecase.DiffResponse, int, error) {
	var out usecase.DiffResponse
	code, err := s.Do(ctx, caller, http.MethodPost, "/v1/environments/"+targetID+"/diff", nil, &out)
	return &out, code, err
}

// Publish calls POST /v1/environments/{target}/publish
func (s *ServerTestHelper) Publish(
	ctx context.Context, caller Caller, targetID string, req v1.PublishRequest,
) (*usecase.PublishResponse, int, error) {
	var out usecase.PublishResponse
	code, err := s.Do(ctx, caller, http.MethodPost, "/v1/environments/"+targetID+"/publish", req, &out)
	return &out, code, err
}
