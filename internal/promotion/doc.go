// Package promotion implements the resource-type agnostic diff and sync
// engine used to promote configuration from one environment to another.
//
// # Adapter bundle
//
// Each resource type (workflows, layouts) supplies an Adapters value:
//
//   - Repository: fetches syncable resources and exposes their stable identifier
//   - Comparator: compares a source and target version of one resource
//   - Syncer: creates or updates a resource in the target environment
//   - Deleter: removes a resource from the target environment
//
// The generic DiffOperation and SyncOperation are written once and
// parametrized by that bundle.
//
// # Diff
//
// DiffOperation.Diff fetches both environments concurrently, compares source
// resources in batches of ten (concurrently within a batch, sequentially
// across batches) and reports target-only resources as deletions. Results
// are positioned by source order, not by completion order, so the output is
// deterministic. Any comparison failure fails the whole call.
//
// A source-only resource yields one added entry. When its Comparator also
// implements AdditionComparator, the sub-resource diffs it reports (the
// steps of a new workflow) follow that entry and count towards its summary.
//
// # Sync
//
// SyncOperation.Execute decides create/update/skip for every selected source
// resource, applies the decisions one at a time, and then deletes target
// resources that no longer exist in the source:
//
//   - Dry run skips every resource with reason DRY_RUN and performs no target reads or writes
//   - Creates and updates are fail-fast
//   - Deletions are best-effort
//   - An allow-list in SyncOptions.Resources restricts both the source and target sets
//
// # Results
//
// DiffResultBuilder and SyncResultBuilder are pure accumulators that compute
// per-resource and aggregate summaries.
package promotion
