// Package v1 provides the environment promotion REST API.
package v1

//go:generate mockgen -destination=mocks/mock_services.go -package=mocks -source=routes.go DiffService,PublishService,ResourceLister

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/stacklok/envsync/internal/api/common"
	"github.com/stacklok/envsync/internal/promotion"
	"github.com/stacklok/envsync/internal/usecase"
)

const (
	// OrganizationHeader carries the organization of the authenticated caller
	OrganizationHeader = "X-Organization-Id"
	// UserHeader carries the authenticated user id
	UserHeader = "X-User-Id"
)

// DiffService computes environment diffs
type DiffService interface {
	Execute(ctx context.Context, cmd usecase.DiffCommand) (*usecase.DiffResponse, error)
}

// PublishService publishes one environment into another
type PublishService interface {
	Execute(ctx context.Context, cmd usecase.PublishCommand) (*usecase.PublishResponse, error)
}

// ResourceLister lists the syncable resource identifiers of an environment
type ResourceLister interface {
	Execute(ctx context.Context, orgID, envID string, resourceType promotion.ResourceType) ([]string, error)
}

// DiffRequest is the optional body of a diff request
type DiffRequest struct {
	SourceEnvironmentID string `json:"sourceEnvironmentId,omitempty"`
}

// PublishRequest is the body of a publish request
type PublishRequest struct {
	SourceEnvironmentID string                       `json:"sourceEnvironmentId,omitempty"`
	DryRun              bool                         `json:"dryRun"`
	BatchSize           int                          `json:"batchSize,omitempty"`
	Resources           []promotion.ResourceSelector `json:"resources,omitempty"`
}

// ResourcesResponse lists resource identifiers of one type
type ResourcesResponse struct {
	ResourceType promotion.ResourceType `json:"resourceType"`
	ResourceIDs  []string               `json:"resourceIds"`
}

// Settings are the server-side publish defaults
type Settings struct {
	// Transactional runs every publish in one store session
	Transactional bool
	// BatchSize applies when a request does not set one
	BatchSize int
}

// Routes holds the promotion handlers
type Routes struct {
	diff      DiffService
	publish   PublishService
	resources ResourceLister
	settings  Settings
}

// NewRoutes creates a new Routes instance
func NewRoutes(diff DiffService, publish PublishService, resources ResourceLister, settings Settings) *Routes {
	return &Routes{diff: diff, publish: publish, resources: resources, settings: settings}
}

// Router creates the /v1 router
func Router(routes *Routes) http.Handler {
	r := chi.NewRouter()
	r.Route("/environments", func(r chi.Router) {
		r.Post("/{targetId}/diff", routes.diffEnvironment)
		r.Post("/{targetId}/publish", routes.publishEnvironment)
		r.Get("/{envId}/resources/{resourceType}", routes.listResources)
	})
	return r
}

// callerFrom reads the caller identity headers
func callerFrom(r *http.Request) (promotion.UserContext, bool) {
	user := promotion.UserContext{
		OrganizationID: r.Header.Get(OrganizationHeader),
		UserID:         r.Header.Get(UserHeader),
	}
	return user, user.OrganizationID != "" && user.UserID != ""
}

// diffEnvironment handles POST /v1/environments/{targetId}/diff
func (rr *Routes) diffEnvironment(w http.ResponseWriter, r *http.Request) {
	user, ok := callerFrom(r)
	if !ok {
		common.WriteErrorResponse(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	targetID, err := common.GetAndValidateURLParam(r, "targetId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req DiffRequest
	if err := common.DecodeJSONBody(r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	user.EnvironmentID = targetID
	resp, err := rr.diff.Execute(r.Context(), usecase.DiffCommand{
		User:                user,
		SourceEnvironmentID: req.SourceEnvironmentID,
		TargetEnvironmentID: targetID,
	})
	if err != nil {
		writeUsecaseError(r.Context(), w, err)
		return
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// publishEnvironment handles POST /v1/environments/{targetId}/publish
func (rr *Routes) publishEnvironment(w http.ResponseWriter, r *http.Request) {
	user, ok := callerFrom(r)
	if !ok {
		common.WriteErrorResponse(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	targetID, err := common.GetAndValidateURLParam(r, "targetId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	var req PublishRequest
	if err := common.DecodeJSONBody(r, &req); err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.BatchSize < 0 {
		common.WriteErrorResponse(w, "batchSize must not be negative", http.StatusBadRequest)
		return
	}
	if req.BatchSize == 0 {
		req.BatchSize = rr.settings.BatchSize
	}

	user.EnvironmentID = targetID
	resp, err := rr.publish.Execute(r.Context(), usecase.PublishCommand{
		User:                user,
		SourceEnvironmentID: req.SourceEnvironmentID,
		TargetEnvironmentID: targetID,
		Options: promotion.SyncOptions{
			DryRun:    req.DryRun,
			BatchSize: req.BatchSize,
			Resources: req.Resources,
		},
		Transactional: rr.settings.Transactional,
	})
	if err != nil {
		writeUsecaseError(r.Context(), w, err)
		return
	}
	common.WriteJSONResponse(w, resp, http.StatusOK)
}

// listResources handles GET /v1/environments/{envId}/resources/{resourceType}
func (rr *Routes) listResources(w http.ResponseWriter, r *http.Request) {
	user, ok := callerFrom(r)
	if !ok {
		common.WriteErrorResponse(w, "missing caller identity", http.StatusUnauthorized)
		return
	}
	envID, err := common.GetAndValidateURLParam(r, "envId")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}
	resourceType, err := common.GetAndValidateURLParam(r, "resourceType")
	if err != nil {
		common.WriteErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	ids, err := rr.resources.Execute(r.Context(), user.OrganizationID, envID, promotion.ResourceType(resourceType))
	if err != nil {
		writeUsecaseError(r.Context(), w, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	common.WriteJSONResponse(w, ResourcesResponse{
		ResourceType: promotion.ResourceType(resourceType),
		ResourceIDs:  ids,
	}, http.StatusOK)
}

// statusFor maps orchestrator errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, usecase.ErrInvalidEnvironmentID), errors.Is(err, usecase.ErrInvalidOptions):
		return http.StatusBadRequest
	case errors.Is(err, usecase.ErrOrganizationMismatch):
		return http.StatusForbidden
	case errors.Is(err, usecase.ErrEnvironmentNotFound):
		return http.StatusNotFound
	case errors.Is(err, usecase.ErrPublishRolledBack):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeUsecaseError(ctx context.Context, w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(ctx, "Promotion request failed", "error", err)
		common.WriteErrorResponse(w, http.StatusText(status), status)
		return
	}
	common.WriteErrorResponse(w, err.Error(), status)
}
