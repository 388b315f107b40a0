package promotion

import (
	"time"

	"github.com/stacklok/envsync/internal/domain"
	"github.com/stacklok/envsync/internal/store"
)

// ResourceType names a kind of promotable resource
type ResourceType string

const (
	ResourceTypeWorkflow ResourceType = "workflow"
	ResourceTypeLayout   ResourceType = "layout"
	ResourceTypeStep     ResourceType = "step"
)

// Action is the kind of change a ResourceDiff describes
type Action string

const (
	ActionAdded     Action = "added"
	ActionModified  Action = "modified"
	ActionDeleted   Action = "deleted"
	ActionUnchanged Action = "unchanged"
	ActionMoved     Action = "moved"
)

// ResourceInfo points at one side of a comparison. ID is the stable
// cross-environment identifier, never the storage id.
type ResourceInfo struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	UpdatedBy *domain.UserRef `json:"updatedBy,omitempty"`
	UpdatedAt *time.Time      `json:"updatedAt,omitempty"`
}

func (r *ResourceInfo) clone() *ResourceInfo {
	if r == nil {
		return nil
	}
	c := *r
	return &c
}

// ValueDiff carries the normalized previous (target) and new (source) values
type ValueDiff struct {
	Previous any `json:"previous"`
	New      any `json:"new"`
}

// ResourceDiff is one atomic change
type ResourceDiff struct {
	SourceResource *ResourceInfo   `json:"sourceResource"`
	TargetResource *ResourceInfo   `json:"targetResource"`
	ResourceType   ResourceType    `json:"resourceType"`
	Action         Action          `json:"action"`
	Diffs          *ValueDiff      `json:"diffs,omitempty"`
	StepType       domain.StepType `json:"stepType,omitempty"`
	PreviousIndex  *int            `json:"previousIndex,omitempty"`
	NewIndex       *int            `json:"newIndex,omitempty"`
}

// DiffSummary counts changes by action
type DiffSummary struct {
	Added     int `json:"added"`
	Modified  int `json:"modified"`
	Deleted   int `json:"deleted"`
	Unchanged int `json:"unchanged"`
}

// Changes returns the number of added, modified and deleted entries
func (s DiffSummary) Changes() int {
	return s.Added + s.Modified + s.Deleted
}

// DiffResult is the full change description of one logical resource
type DiffResult struct {
	ResourceType   ResourceType         `json:"resourceType"`
	SourceResource *ResourceInfo        `json:"sourceResource"`
	TargetResource *ResourceInfo        `json:"targetResource"`
	Changes        []ResourceDiff       `json:"changes"`
	Summary        DiffSummary          `json:"summary"`
	Dependencies   []ResourceDependency `json:"dependencies,omitempty"`
}

// ResourceID returns the identifier of the resource, preferring the source side
func (r *DiffResult) ResourceID() string {
	if r.SourceResource != nil {
		return r.SourceResource.ID
	}
	if r.TargetResource != nil {
		return r.TargetResource.ID
	}
	return ""
}

// ResourceName returns the name of the resource, preferring the source side
func (r *DiffResult) ResourceName() string {
	if r.SourceResource != nil {
		return r.SourceResource.Name
	}
	if r.TargetResource != nil {
		return r.TargetResource.Name
	}
	return ""
}

// IsDeletion reports whether the resource only exists in the target
func (r *DiffResult) IsDeletion() bool {
	return r.SourceResource == nil && r.TargetResource != nil
}

// IsAddition reports whether the resource only exists in the source
func (r *DiffResult) IsAddition() bool {
	return r.SourceResource != nil && r.TargetResource == nil
}

// DependencyReason explains a ResourceDependency
type DependencyReason string

const (
	ReasonLayoutRequiredForWorkflow DependencyReason = "LAYOUT_REQUIRED_FOR_WORKFLOW"
	ReasonLayoutExistsInTarget      DependencyReason = "LAYOUT_EXISTS_IN_TARGET"
)

// ResourceDependency is a cross-resource reference found during analysis.
// Dependencies are advisory; nothing in this package enforces them.
type ResourceDependency struct {
	ResourceType ResourceType     `json:"resourceType"`
	ResourceID   string           `json:"resourceId"`
	ResourceName string           `json:"resourceName"`
	IsBlocking   bool             `json:"isBlocking"`
	Reason       DependencyReason `json:"reason"`
}

// SyncAction is the outcome of syncing one resource
type SyncAction string

const (
	SyncActionCreated SyncAction = "created"
	SyncActionUpdated SyncAction = "updated"
	SyncActionSkipped SyncAction = "skipped"
	SyncActionDeleted SyncAction = "deleted"
)

// Skip reasons
const (
	SkipReasonDryRun    = "DRY_RUN"
	SkipReasonNoChanges = "NO_CHANGES"
)

// SyncSuccess records a resource that was written to the target
type SyncSuccess struct {
	ResourceID   string     `json:"resourceId"`
	ResourceName string     `json:"resourceName"`
	Action       SyncAction `json:"action"`
}

// SyncFailure records a resource that could not be written
type SyncFailure struct {
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Error        string `json:"error"`
	Stack        string `json:"stack,omitempty"`
}

// SyncSkip records a resource that was intentionally not written
type SyncSkip struct {
	ResourceID   string `json:"resourceId"`
	ResourceName string `json:"resourceName"`
	Reason       string `json:"reason"`
}

// SyncResult is the outcome of syncing one resource type
type SyncResult struct {
	ResourceType   ResourceType  `json:"resourceType"`
	Successful     []SyncSuccess `json:"successful"`
	Failed         []SyncFailure `json:"failed"`
	Skipped        []SyncSkip    `json:"skipped"`
	TotalProcessed int           `json:"totalProcessed"`
}

// DefaultBatchSize is used when SyncOptions.BatchSize is not set
const DefaultBatchSize = 100

// ResourceSelector allow-lists one resource for selective sync
type ResourceSelector struct {
	ResourceType ResourceType `json:"resourceType"`
	ResourceID   string       `json:"resourceId"`
}

// SyncOptions tune a sync run. Empty Resources means every resource of
// every supported type.
type SyncOptions struct {
	DryRun    bool               `json:"dryRun"`
	BatchSize int                `json:"batchSize"`
	Resources []ResourceSelector `json:"resources,omitempty"`
}

// GetBatchSize returns the batch size, using DefaultBatchSize if not set
func (o SyncOptions) GetBatchSize() int {
	if o.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return o.BatchSize
}

// UserContext identifies the caller of a diff or sync
type UserContext struct {
	UserID         string `json:"userId"`
	OrganizationID string `json:"organizationId"`
	EnvironmentID  string `json:"environmentId"`
}

// SyncContext is everything a sync run needs. Session is optional; when set
// every adapter write, and every fetch of a SessionRepository, goes through it.
type SyncContext struct {
	SourceEnvironmentID string
	TargetEnvironmentID string
	User                UserContext
	Options             SyncOptions
	Session             store.Session
}

// Comparison is what a Comparator reports for a source/target pair
type Comparison struct {
	RootDiff *ValueDiff
	SubDiffs []ResourceDiff
}

// HasChanges reports whether anything differs
func (c *Comparison) HasChanges() bool {
	return c != nil && (c.RootDiff != nil || len(c.SubDiffs) > 0)
}

// SessionOr returns the sync session when one is set, fallback otherwise
func (sc *SyncContext) SessionOr(fallback store.Session) store.Session {
	if sc.Session != nil {
		return sc.Session
	}
	return fallback
}
