// Package domain contains the persisted configuration resources that envsync
// promotes between environments: workflows, their steps, step control values,
// workflow preferences and message layouts.
package domain

import "time"

// EnvironmentType classifies an environment within an organization
type EnvironmentType string

const (
	// EnvironmentDevelopment is the environment changes are authored in
	EnvironmentDevelopment EnvironmentType = "development"
	// EnvironmentProduction is the environment changes are promoted to
	EnvironmentProduction EnvironmentType = "production"
)

// Origin records where a resource was authored
type Origin string

const (
	// OriginInternal resources are authored in the dashboard and are syncable
	OriginInternal Origin = "internal"
	// OriginExternal resources are managed by code (bridge) and never promoted
	OriginExternal Origin = "external"
)

// WorkflowStatus is the runtime status of a workflow
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"
	WorkflowStatusInactive WorkflowStatus = "inactive"
	WorkflowStatusError    WorkflowStatus = "error"
)

// StepType is the channel or action type of a workflow step
type StepType string

const (
	StepTypeEmail    StepType = "email"
	StepTypeSMS      StepType = "sms"
	StepTypeInApp    StepType = "in_app"
	StepTypePush     StepType = "push"
	StepTypeChat     StepType = "chat"
	StepTypeDelay    StepType = "delay"
	StepTypeDigest   StepType = "digest"
	StepTypeThrottle StepType = "throttle"
	StepTypeCustom   StepType = "custom"
)

// LayoutIDControl is the control value key an email step uses to reference a layout
const LayoutIDControl = "layoutId"

// Environment is a deployment stage of an organization
type Environment struct {
	ID             string          `json:"id"`
	OrganizationID string          `json:"organizationId"`
	Name           string          `json:"name"`
	Type           EnvironmentType `json:"type"`
}

// UserRef identifies the user that last changed a resource
type UserRef struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
	Email     string `json:"email,omitempty"`
}

// Workflow is a notification workflow. Identifier is stable across
// environments; ID is the storage id and differs per environment.
type Workflow struct {
	ID              string         `json:"id"`
	EnvironmentID   string         `json:"environmentId"`
	OrganizationID  string         `json:"organizationId"`
	Identifier      string         `json:"identifier"`
	Name            string         `json:"name"`
	Description     string         `json:"description,omitempty"`
	Tags            []string       `json:"tags,omitempty"`
	Active          bool           `json:"active"`
	Critical        bool           `json:"critical"`
	ValidatePayload bool           `json:"validatePayload"`
	PayloadSchema   map[string]any `json:"payloadSchema,omitempty"`
	PayloadExample  map[string]any `json:"payloadExample,omitempty"`
	Slug            string         `json:"slug,omitempty"`
	Origin          Origin         `json:"origin"`
	Status          WorkflowStatus `json:"status"`
	Issues          map[string]any `json:"issues,omitempty"`
	Steps           []Step         `json:"steps"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
	UpdatedBy       *UserRef       `json:"updatedBy,omitempty"`
}

// IsSyncable reports whether the workflow is eligible for promotion
func (w *Workflow) IsSyncable() bool {
	return w.Origin == OriginInternal && w.Status != WorkflowStatusError
}

// Step is one step of a workflow. StepID is stable across environments.
type Step struct {
	ID     string         `json:"id"`
	StepID string         `json:"stepId"`
	Name   string         `json:"name"`
	Type   StepType       `json:"type"`
	Slug   string         `json:"slug,omitempty"`
	Issues map[string]any `json:"issues,omitempty"`
}

// ControlValues holds the user supplied control values of one step
type ControlValues struct {
	ID             string         `json:"id"`
	EnvironmentID  string         `json:"environmentId"`
	OrganizationID string         `json:"organizationId"`
	WorkflowID     string         `json:"workflowId"`
	StepID         string         `json:"stepId"`
	Values         map[string]any `json:"values"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// LayoutID returns the layout identifier referenced by the control values, if any
func (c *ControlValues) LayoutID() string {
	return LayoutIDFromControls(c.Values)
}

// LayoutIDFromControls extracts a non-empty layoutId control value
func LayoutIDFromControls(values map[string]any) string {
	if values == nil {
		return ""
	}
	id, _ := values[LayoutIDControl].(string)
	return id
}

// Preferences are the workflow-level channel preference defaults
type Preferences struct {
	ID             string         `json:"id"`
	EnvironmentID  string         `json:"environmentId"`
	OrganizationID string         `json:"organizationId"`
	WorkflowID     string         `json:"workflowId"`
	Settings       map[string]any `json:"settings"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// Layout is a message layout. Identifier is stable across environments.
type Layout struct {
	ID             string         `json:"id"`
	EnvironmentID  string         `json:"environmentId"`
	OrganizationID string         `json:"organizationId"`
	Identifier     string         `json:"identifier"`
	Name           string         `json:"name"`
	Description    string         `json:"description,omitempty"`
	IsDefault      bool           `json:"isDefault"`
	Channel        StepType       `json:"channel"`
	ControlValues  map[string]any `json:"controlValues,omitempty"`
	Variables      map[string]any `json:"variables,omitempty"`
	Origin         Origin         `json:"origin"`
	IsDeleted      bool           `json:"isDeleted"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
	UpdatedBy      *UserRef       `json:"updatedBy,omitempty"`
}

// IsSyncable reports whether the layout is eligible for promotion
func (l *Layout) IsSyncable() bool {
	return l.Origin == OriginInternal && !l.IsDeleted
}
