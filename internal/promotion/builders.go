package promotion

import "slices"

// Summarize computes the per-resource summary. A resource present on both
// sides with any change counts as a single modification regardless of how
// many step diffs it carries; one-sided resources count their entries.
func Summarize(result *DiffResult) DiffSummary {
	if result.SourceResource != nil && result.TargetResource != nil {
		if len(result.Changes) > 0 {
			return DiffSummary{Modified: 1}
		}
		return DiffSummary{Unchanged: 1}
	}

	var summary DiffSummary
	for _, change := range result.Changes {
		switch change.Action {
		case ActionAdded:
			summary.Added++
		case ActionModified, ActionMoved:
			summary.Modified++
		case ActionDeleted:
			summary.Deleted++
		case ActionUnchanged:
			summary.Unchanged++
		}
	}
	return summary
}

// AddedResult describes a resource that only exists in the source
func AddedResult(resourceType ResourceType, source ResourceInfo) DiffResult {
	return DiffResult{
		ResourceType:   resourceType,
		SourceResource: &source,
		Changes: []ResourceDiff{{
			SourceResource: source.clone(),
			ResourceType:   resourceType,
			Action:         ActionAdded,
		}},
	}
}

// ModifiedResult describes a resource present on both sides with changes
func ModifiedResult(resourceType ResourceType, source, target ResourceInfo, changes []ResourceDiff) DiffResult {
	return DiffResult{
		ResourceType:   resourceType,
		SourceResource: &source,
		TargetResource: &target,
		Changes:        changes,
	}
}

// DeletedResult describes a resource that only exists in the target
func DeletedResult(resourceType ResourceType, target ResourceInfo) DiffResult {
	return DiffResult{
		ResourceType:   resourceType,
		TargetResource: &target,
		Changes: []ResourceDiff{{
			TargetResource: target.clone(),
			ResourceType:   resourceType,
			Action:         ActionDeleted,
		}},
	}
}

// DiffResultBuilder accumulates diff results for one resource type
type DiffResultBuilder struct {
	resourceType ResourceType
	results      []DiffResult
}

// NewDiffResultBuilder creates an empty builder
func NewDiffResultBuilder(resourceType ResourceType) *DiffResultBuilder {
	return &DiffResultBuilder{resourceType: resourceType}
}

// Add appends a result and computes its summary
func (b *DiffResultBuilder) Add(result DiffResult) {
	result.Summary = Summarize(&result)
	b.results = append(b.results, result)
}

// AddAdded appends a source-only result
func (b *DiffResultBuilder) AddAdded(source ResourceInfo) {
	b.Add(AddedResult(b.resourceType, source))
}

// AddModified appends a modified result. Empty change sets are dropped.
func (b *DiffResultBuilder) AddModified(source, target ResourceInfo, changes []ResourceDiff) {
	if len(changes) == 0 {
		return
	}
	b.Add(ModifiedResult(b.resourceType, source, target, changes))
}

// AddDeleted appends a target-only result
func (b *DiffResultBuilder) AddDeleted(target ResourceInfo) {
	b.Add(DeletedResult(b.resourceType, target))
}

// Build returns a snapshot of the accumulated results
func (b *DiffResultBuilder) Build() []DiffResult {
	return slices.Clone(b.results)
}

// Totals returns the summary aggregated over every result
func (b *DiffResultBuilder) Totals() DiffSummary {
	return TotalSummary(b.results)
}

// TotalSummary aggregates the summaries of results
func TotalSummary(results []DiffResult) DiffSummary {
	var total DiffSummary
	for _, r := range results {
		total.Added += r.Summary.Added
		total.Modified += r.Summary.Modified
		total.Deleted += r.Summary.Deleted
		total.Unchanged += r.Summary.Unchanged
	}
	return total
}

// SyncResultBuilder accumulates sync outcomes for one resource type
type SyncResultBuilder struct {
	resourceType ResourceType
	successful   []SyncSuccess
	failed       []SyncFailure
	skipped      []SyncSkip
}

// NewSyncResultBuilder creates an empty builder
func NewSyncResultBuilder(resourceType ResourceType) *SyncResultBuilder {
	return &SyncResultBuilder{resourceType: resourceType}
}

// AddSuccess records a written resource
func (b *SyncResultBuilder) AddSuccess(id, name string, action SyncAction) {
	b.successful = append(b.successful, SyncSuccess{ResourceID: id, ResourceName: name, Action: action})
}

// AddFailure records a resource that failed to sync
func (b *SyncResultBuilder) AddFailure(id, name string, err error) {
	b.failed = append(b.failed, SyncFailure{
		ResourceID:   id,
		ResourceName: name,
		Error:        err.Error(),
		Stack:        errorChain(err),
	})
}

// AddSkip records a skipped resource
func (b *SyncResultBuilder) AddSkip(id, name, reason string) {
	b.skipped = append(b.skipped, SyncSkip{ResourceID: id, ResourceName: name, Reason: reason})
}

// Build returns a snapshot of the accumulated outcomes
func (b *SyncResultBuilder) Build() *SyncResult {
	successful := slices.Clone(b.successful)
	failed := slices.Clone(b.failed)
	skipped := slices.Clone(b.skipped)
	if successful == nil {
		successful = []SyncSuccess{}
	}
	if failed == nil {
		failed = []SyncFailure{}
	}
	if skipped == nil {
		skipped = []SyncSkip{}
	}

	return &SyncResult{
		ResourceType:   b.resourceType,
		Successful:     successful,
		Failed:         failed,
		Skipped:        skipped,
		TotalProcessed: len(successful) + len(failed) + len(skipped),
	}
}
