package common

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorResponse(t *testing.T) {
	t.Parallel()

	rr := httptest.NewRecorder()
	WriteErrorResponse(rr, "environment not found", http.StatusNotFound)

	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))

	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "environment not found", body.Error)
}

func TestDecodeJSONBody(t *testing.T) {
	t.Parallel()

	type payload struct {
		DryRun bool `json:"dryRun"`
	}

	tests := []struct {
		name    string
		body    string
		want    payload
		wantErr bool
	}{
		{name: "empty body", body: "", want: payload{}},
		{name: "valid body", body: `{"dryRun":true}`, want: payload{DryRun: true}},
		{name: "unknown field", body: `{"dry":true}`, wantErr: true},
		{name: "malformed", body: `{`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var got payload
			err := DecodeJSONBody(req, &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetAndValidateURLParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr string
	}{
		{name: "plain value", path: "/env/abc-123", want: "abc-123"},
		{name: "encoded value", path: "/env/a%2Fb", want: "a/b"},
		{name: "encoded whitespace", path: "/env/a%20b", wantErr: "cannot contain whitespace"},
		{name: "blank value", path: "/env/%20", wantErr: "cannot be empty"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var got string
			var gotErr error
			r := chi.NewRouter()
			r.Get("/env/{id}", func(_ http.ResponseWriter, req *http.Request) {
				got, gotErr = GetAndValidateURLParam(req, "id")
			})
			r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, tt.path, nil))

			if tt.wantErr != "" {
				require.Error(t, gotErr)
				assert.Contains(t, gotErr.Error(), tt.wantErr)
				return
			}
			require.NoError(t, gotErr)
			assert.Equal(t, tt.want, got)
		})
	}
}
