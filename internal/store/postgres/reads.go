package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/otel"
)

const workflowColumns = `id, environment_id, organization_id, identifier, name, description, tags,
	active, critical, validate_payload, payload_schema, payload_example, slug, origin, status,
	issues, steps, created_at, updated_at, updated_by`

const layoutColumns = `id, environment_id, organization_id, identifier, name, description, is_default,
	channel, control_values, variables, origin, is_deleted, created_at, updated_at, updated_by`

const controlValuesColumns = `id, environment_id, organization_id, workflow_id, step_id, "values", updated_at`

const preferencesColumns = `id, environment_id, organization_id, workflow_id, settings, updated_at`

func scanWorkflow(row pgx.Row) (domain.Workflow, error) {
	var wf domain.Workflow
	err := row.Scan(
		&wf.ID, &wf.EnvironmentID, &wf.OrganizationID, &wf.Identifier, &wf.Name, &wf.Description, &wf.Tags,
		&wf.Active, &wf.Critical, &wf.ValidatePayload, &wf.PayloadSchema, &wf.PayloadExample, &wf.Slug,
		&wf.Origin, &wf.Status, &wf.Issues, &wf.Steps, &wf.CreatedAt, &wf.UpdatedAt, &wf.UpdatedBy,
	)
	return wf, err
}

func scanLayout(row pgx.Row) (domain.Layout, error) {
	var l domain.Layout
	err := row.Scan(
		&l.ID, &l.EnvironmentID, &l.OrganizationID, &l.Identifier, &l.Name, &l.Description, &l.IsDefault,
		&l.Channel, &l.ControlValues, &l.Variables, &l.Origin, &l.IsDeleted, &l.CreatedAt, &l.UpdatedAt,
		&l.UpdatedBy,
	)
	return l, err
}

func scanControlValues(row pgx.Row) (domain.ControlValues, error) {
	var cv domain.ControlValues
	err := row.Scan(&cv.ID, &cv.EnvironmentID, &cv.OrganizationID, &cv.WorkflowID, &cv.StepID, &cv.Values, &cv.UpdatedAt)
	return cv, err
}

func scanPreferences(row pgx.Row) (domain.Preferences, error) {
	var p domain.Preferences
	err := row.Scan(&p.ID, &p.EnvironmentID, &p.OrganizationID, &p.WorkflowID, &p.Settings, &p.UpdatedAt)
	return p, err
}

func scanEnvironment(row pgx.Row) (domain.Environment, error) {
	var env domain.Environment
	err := row.Scan(&env.ID, &env.OrganizationID, &env.Name, &env.Type)
	return env, err
}

// collect runs a query and scans every row
func collect[T any](
	ctx context.Context, q *queries, scan func(pgx.Row) (T, error), sql string, args ...any,
) ([]T, error) {
	rows, err := q.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (T, error) {
		return scan(row)
	})
}

// GetEnvironment returns an environment by id
func (q *queries) GetEnvironment(ctx context.Context, id string) (_ *domain.Environment, err error) {
	ctx, span := q.startSpan(ctx, "GetEnvironment")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	env, err := scanEnvironment(q.db.QueryRow(ctx,
		`SELECT id, organization_id, name, type FROM environments WHERE id = $1`, id))
	if err != nil {
		return nil, mapError(err, "environment "+id)
	}
	return &env, nil
}

// ListEnvironments returns all environments of an organization ordered by name
func (q *queries) ListEnvironments(ctx context.Context, orgID string) (_ []domain.Environment, err error) {
	ctx, span := q.startSpan(ctx, "ListEnvironments")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	envs, err := collect(ctx, q, scanEnvironment,
		`SELECT id, organization_id, name, type FROM environments WHERE organization_id = $1 ORDER BY name`, orgID)
	if err != nil {
		return nil, mapError(err, "list environments")
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(envs)))
	return envs, nil
}

// ListWorkflows returns the workflows of an environment ordered by identifier
func (q *queries) ListWorkflows(ctx context.Context, envID, orgID string) (_ []domain.Workflow, err error) {
	ctx, span := q.startSpan(ctx, "ListWorkflows")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	workflows, err := collect(ctx, q, scanWorkflow,
		`SELECT `+workflowColumns+` FROM workflows
		WHERE environment_id = $1 AND organization_id = $2
		ORDER BY identifier`, envID, orgID)
	if err != nil {
		return nil, mapError(err, "list workflows")
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(workflows)))
	return workflows, nil
}

// ListWorkflowsByIDs returns the workflows of an environment with the given storage ids
func (q *queries) ListWorkflowsByIDs(ctx context.Context, envID string, ids []string) (_ []domain.Workflow, err error) {
	ctx, span := q.startSpan(ctx, "ListWorkflowsByIDs")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	workflows, err := collect(ctx, q, scanWorkflow,
		`SELECT `+workflowColumns+` FROM workflows
		WHERE environment_id = $1 AND id = ANY($2)
		ORDER BY identifier`, envID, ids)
	if err != nil {
		return nil, mapError(err, "list workflows by id")
	}
	return workflows, nil
}

// FindWorkflow returns the workflow with the given identifier
func (q *queries) FindWorkflow(ctx context.Context, envID, orgID, identifier string) (_ *domain.Workflow, err error) {
	ctx, span := q.startSpan(ctx, "FindWorkflow")
	defer func() {
		// not found is an expected outcome for lookups
		if !isNotFound(err) {
			otel.RecordError(span, err)
		}
		span.End()
	}()

	wf, err := scanWorkflow(q.db.QueryRow(ctx,
		`SELECT `+workflowColumns+` FROM workflows
		WHERE environment_id = $1 AND organization_id = $2 AND identifier = $3`, envID, orgID, identifier))
	if err != nil {
		return nil, mapError(err, "workflow "+identifier)
	}
	return &wf, nil
}

// ListControlValues returns the control values of the given workflows
func (q *queries) ListControlValues(
	ctx context.Context, orgID string, workflowIDs []string,
) (_ []domain.ControlValues, err error) {
	ctx, span := q.startSpan(ctx, "ListControlValues")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	values, err := collect(ctx, q, scanControlValues,
		`SELECT `+controlValuesColumns+` FROM control_values
		WHERE organization_id = $1 AND workflow_id = ANY($2)
		ORDER BY workflow_id, step_id`, orgID, workflowIDs)
	if err != nil {
		return nil, mapError(err, "list control values")
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(values)))
	return values, nil
}

// ListControlValuesByLayout returns the control values of an environment that reference a layout
func (q *queries) ListControlValuesByLayout(
	ctx context.Context, envID, orgID, layoutIdentifier string,
) (_ []domain.ControlValues, err error) {
	ctx, span := q.startSpan(ctx, "ListControlValuesByLayout")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	values, err := collect(ctx, q, scanControlValues,
		`SELECT `+controlValuesColumns+` FROM control_values
		WHERE environment_id = $1 AND organization_id = $2 AND "values" ->> 'layoutId' = $3
		ORDER BY workflow_id, step_id`, envID, orgID, layoutIdentifier)
	if err != nil {
		return nil, mapError(err, "list control values by layout")
	}
	return values, nil
}

// ListPreferences returns the preferences of the given workflows
func (q *queries) ListPreferences(
	ctx context.Context, orgID string, workflowIDs []string,
) (_ []domain.Preferences, err error) {
	ctx, span := q.startSpan(ctx, "ListPreferences")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	prefs, err := collect(ctx, q, scanPreferences,
		`SELECT `+preferencesColumns+` FROM preferences
		WHERE organization_id = $1 AND workflow_id = ANY($2)
		ORDER BY workflow_id`, orgID, workflowIDs)
	if err != nil {
		return nil, mapError(err, "list preferences")
	}
	return prefs, nil
}

// ListLayouts returns the layouts of an environment ordered by identifier,
// including soft-deleted ones
func (q *queries) ListLayouts(ctx context.Context, envID, orgID string) (_ []domain.Layout, err error) {
	ctx, span := q.startSpan(ctx, "ListLayouts")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	layouts, err := collect(ctx, q, scanLayout,
		`SELECT `+layoutColumns+` FROM layouts
		WHERE environment_id = $1 AND organization_id = $2
		ORDER BY identifier, created_at`, envID, orgID)
	if err != nil {
		return nil, mapError(err, "list layouts")
	}
	span.SetAttributes(otel.AttrResultCount.Int(len(layouts)))
	return layouts, nil
}

// FindLayout returns the live layout with the given identifier
func (q *queries) FindLayout(ctx context.Context, envID, orgID, identifier string) (_ *domain.Layout, err error) {
	ctx, span := q.startSpan(ctx, "FindLayout")
	defer func() {
		if !isNotFound(err) {
			otel.RecordError(span, err)
		}
		span.End()
	}()

	l, err := scanLayout(q.db.QueryRow(ctx,
		`SELECT `+layoutColumns+` FROM layouts
		WHERE environment_id = $1 AND organization_id = $2 AND identifier = $3 AND NOT is_deleted`,
		envID, orgID, identifier))
	if err != nil {
		return nil, mapError(err, "layout "+identifier)
	}
	return &l, nil
}
