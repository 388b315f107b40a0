// Package usecase provides the environment diff and publish orchestrators.
// They validate the environments of a request, fan out to the per resource
// type strategies and aggregate the results.
package usecase

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
)

var (
	// ErrInvalidEnvironmentID is returned when an environment id is not a UUID
	ErrInvalidEnvironmentID = errors.New("invalid environment id")
	// ErrEnvironmentNotFound is returned when an environment does not exist
	ErrEnvironmentNotFound = errors.New("environment not found")
	// ErrOrganizationMismatch is returned when an environment belongs to another organization
	ErrOrganizationMismatch = errors.New("environment does not belong to organization")
	// ErrInvalidOptions is returned for malformed publish options
	ErrInvalidOptions = errors.New("invalid options")
)

// resolveEnvironments validates the target and resolves the source, which
// defaults to the organization's development environment
func resolveEnvironments(
	ctx context.Context, reader store.Reader, orgID, sourceID, targetID string,
) (source, target *domain.Environment, err error) {
	if _, err := uuid.Parse(targetID); err != nil {
		return nil, nil, fmt.Errorf("%w: target %q", ErrInvalidEnvironmentID, targetID)
	}

	if sourceID == "" {
		source, err = developmentEnvironment(ctx, reader, orgID)
		if err != nil {
			return nil, nil, err
		}
	} else {
		if _, err := uuid.Parse(sourceID); err != nil {
			return nil, nil, fmt.Errorf("%w: source %q", ErrInvalidEnvironmentID, sourceID)
		}
		if source, err = lookupEnvironment(ctx, reader, orgID, sourceID); err != nil {
			return nil, nil, err
		}
	}

	if target, err = lookupEnvironment(ctx, reader, orgID, targetID); err != nil {
		return nil, nil, err
	}
	return source, target, nil
}

func lookupEnvironment(ctx context.Context, reader store.Reader, orgID, id string) (*domain.Environment, error) {
	env, err := reader.GetEnvironment(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrEnvironmentNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get environment %s: %w", id, err)
	}
	if env.OrganizationID != orgID {
		return nil, fmt.Errorf("%w: %s", ErrOrganizationMismatch, id)
	}
	return env, nil
}

func developmentEnvironment(ctx context.Context, reader store.Reader, orgID string) (*domain.Environment, error) {
	envs, err := reader.ListEnvironments(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("failed to list environments: %w", err)
	}
	for i := range envs {
		if envs[i].Type == domain.EnvironmentDevelopment {
			return &envs[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no development environment in organization %s", ErrEnvironmentNotFound, orgID)
}

// lookupEnvironmentID validates and looks up a single environment
func lookupEnvironmentID(ctx context.Context, reader store.Reader, orgID, id string) (*domain.Environment, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidEnvironmentID, id)
	}
	return lookupEnvironment(ctx, reader, orgID, id)
}
