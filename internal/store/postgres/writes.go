package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/otel"
	"github.com/stacklok/envsync/internal/store"
)

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}

// expectOne turns a zero row count into store.ErrNotFound
func expectOne(affected int64, what string) error {
	if affected == 0 {
		return fmt.Errorf("%s: %w", what, store.ErrNotFound)
	}
	return nil
}

func nonNilSteps(steps []domain.Step) []domain.Step {
	if steps == nil {
		return []domain.Step{}
	}
	return steps
}

// CreateWorkflow inserts a workflow
func (q *queries) CreateWorkflow(ctx context.Context, wf *domain.Workflow) (err error) {
	ctx, span := q.startSpan(ctx, "CreateWorkflow")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	_, err = q.db.Exec(ctx,
		`INSERT INTO workflows (`+workflowColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)`,
		wf.ID, wf.EnvironmentID, wf.OrganizationID, wf.Identifier, wf.Name, wf.Description, wf.Tags,
		wf.Active, wf.Critical, wf.ValidatePayload, wf.PayloadSchema, wf.PayloadExample, wf.Slug,
		wf.Origin, wf.Status, wf.Issues, nonNilSteps(wf.Steps), wf.CreatedAt, wf.UpdatedAt, wf.UpdatedBy,
	)
	return mapError(err, "create workflow "+wf.Identifier)
}

// UpdateWorkflow replaces every mutable column of a workflow
func (q *queries) UpdateWorkflow(ctx context.Context, wf *domain.Workflow) (err error) {
	ctx, span := q.startSpan(ctx, "UpdateWorkflow")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tag, err := q.db.Exec(ctx,
		`UPDATE workflows SET
			identifier = $2, name = $3, description = $4, tags = $5, active = $6, critical = $7,
			validate_payload = $8, payload_schema = $9, payload_example = $10, slug = $11, origin = $12,
			status = $13, issues = $14, steps = $15, updated_at = $16, updated_by = $17
		WHERE id = $1`,
		wf.ID, wf.Identifier, wf.Name, wf.Description, wf.Tags, wf.Active, wf.Critical,
		wf.ValidatePayload, wf.PayloadSchema, wf.PayloadExample, wf.Slug, wf.Origin,
		wf.Status, wf.Issues, nonNilSteps(wf.Steps), wf.UpdatedAt, wf.UpdatedBy,
	)
	if err != nil {
		return mapError(err, "update workflow "+wf.ID)
	}
	return expectOne(tag.RowsAffected(), "workflow "+wf.ID)
}

// DeleteWorkflow deletes a workflow; control values and preferences cascade
func (q *queries) DeleteWorkflow(ctx context.Context, envID, id string) (err error) {
	ctx, span := q.startSpan(ctx, "DeleteWorkflow")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tag, err := q.db.Exec(ctx, `DELETE FROM workflows WHERE environment_id = $1 AND id = $2`, envID, id)
	if err != nil {
		return mapError(err, "delete workflow "+id)
	}
	return expectOne(tag.RowsAffected(), "workflow "+id)
}

// ReplaceControlValues replaces the control values of a workflow
func (q *queries) ReplaceControlValues(
	ctx context.Context, workflowID string, values []domain.ControlValues,
) (err error) {
	ctx, span := q.startSpan(ctx, "ReplaceControlValues")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	if _, err := q.db.Exec(ctx, `DELETE FROM control_values WHERE workflow_id = $1`, workflowID); err != nil {
		return mapError(err, "clear control values")
	}
	for _, cv := range values {
		_, err := q.db.Exec(ctx,
			`INSERT INTO control_values (`+controlValuesColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			cv.ID, cv.EnvironmentID, cv.OrganizationID, workflowID, cv.StepID, cv.Values, cv.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert control values for step "+cv.StepID)
		}
	}
	return nil
}

// ReplacePreferences replaces the preferences of a workflow
func (q *queries) ReplacePreferences(
	ctx context.Context, workflowID string, preferences []domain.Preferences,
) (err error) {
	ctx, span := q.startSpan(ctx, "ReplacePreferences")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	if _, err := q.db.Exec(ctx, `DELETE FROM preferences WHERE workflow_id = $1`, workflowID); err != nil {
		return mapError(err, "clear preferences")
	}
	for _, p := range preferences {
		_, err := q.db.Exec(ctx,
			`INSERT INTO preferences (`+preferencesColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			p.ID, p.EnvironmentID, p.OrganizationID, workflowID, p.Settings, p.UpdatedAt,
		)
		if err != nil {
			return mapError(err, "insert preferences")
		}
	}
	return nil
}

// CreateLayout inserts a layout
func (q *queries) CreateLayout(ctx context.Context, l *domain.Layout) (err error) {
	ctx, span := q.startSpan(ctx, "CreateLayout")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	_, err = q.db.Exec(ctx,
		`INSERT INTO layouts (`+layoutColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)`,
		l.ID, l.EnvironmentID, l.OrganizationID, l.Identifier, l.Name, l.Description, l.IsDefault,
		l.Channel, l.ControlValues, l.Variables, l.Origin, l.IsDeleted, l.CreatedAt, l.UpdatedAt, l.UpdatedBy,
	)
	return mapError(err, "create layout "+l.Identifier)
}

// UpdateLayout replaces every mutable column of a layout
func (q *queries) UpdateLayout(ctx context.Context, l *domain.Layout) (err error) {
	ctx, span := q.startSpan(ctx, "UpdateLayout")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tag, err := q.db.Exec(ctx,
		`UPDATE layouts SET
			identifier = $2, name = $3, description = $4, is_default = $5, channel = $6,
			control_values = $7, variables = $8, origin = $9, is_deleted = $10, updated_at = $11, updated_by = $12
		WHERE id = $1`,
		l.ID, l.Identifier, l.Name, l.Description, l.IsDefault, l.Channel,
		l.ControlValues, l.Variables, l.Origin, l.IsDeleted, l.UpdatedAt, l.UpdatedBy,
	)
	if err != nil {
		return mapError(err, "update layout "+l.ID)
	}
	return expectOne(tag.RowsAffected(), "layout "+l.ID)
}

// DeleteLayout deletes a layout
func (q *queries) DeleteLayout(ctx context.Context, envID, id string) (err error) {
	ctx, span := q.startSpan(ctx, "DeleteLayout")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	tag, err := q.db.Exec(ctx, `DELETE FROM layouts WHERE environment_id = $1 AND id = $2`, envID, id)
	if err != nil {
		return mapError(err, "delete layout "+id)
	}
	return expectOne(tag.RowsAffected(), "layout "+id)
}

// CreateEnvironment inserts an environment. Environments are owned by the
// platform; envsync only creates them when seeding.
func (q *queries) CreateEnvironment(ctx context.Context, env *domain.Environment) (err error) {
	ctx, span := q.startSpan(ctx, "CreateEnvironment")
	defer func() {
		otel.RecordError(span, err)
		span.End()
	}()

	_, err = q.db.Exec(ctx,
		`INSERT INTO environments (id, organization_id, name, type) VALUES ($1, $2, $3, $4)`,
		env.ID, env.OrganizationID, env.Name, env.Type,
	)
	return mapError(err, "create environment "+env.ID)
}
