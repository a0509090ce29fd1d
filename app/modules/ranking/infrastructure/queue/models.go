package rankingqueue

// RebuildScopeJob rebuilds one scope, every scope id of ScopeType when
// ScopeID is empty, or every scope of the tenant/year when ScopeType is empty.
// Jobs for the same target are unique regardless of who requested them.
type RebuildScopeJob struct {
	TenantID    string `json:"tenant_id" river:"unique"`
	Year        int    `json:"year" river:"unique"`
	ScopeType   string `json:"scope_type,omitempty" river:"unique"`
	ScopeID     string `json:"scope_id,omitempty" river:"unique"`
	RequestedBy string `json:"requested_by,omitempty"`
}

// Kind returns the job type identifier for River
func (RebuildScopeJob) Kind() string { return "ranking_rebuild_scope" }

// NightlyRebuildJob fans out one RebuildScopeJob per tenant with confirmed
// attendances.
type NightlyRebuildJob struct{}

// Kind returns the job type identifier for River
func (NightlyRebuildJob) Kind() string { return "ranking_nightly_rebuild" }

// QueueName is the River queue ranking jobs run on.
const QueueName = "ranking"
