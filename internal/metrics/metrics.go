// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Evaluation metrics
	ObserveEvaluationRun(duration time.Duration, usersEvaluated, failures int)
	IncEvaluationFailure()
	IncWarningSent(tier string)
	IncVaultRevealed()
	IncTokenRedemption(status string) // status: "success" or "failed"

	// Activity pipeline metrics
	IncActivityEventPublished(status string) // status: "success" or "dropped"
	IncActivityEventProcessed(status string) // status: "success", "failed", "skipped"
	ObserveActivityBatchSize(size int)
	SetActivityQueueDepth(depth int64)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Snapshot is a point-in-time view of the in-memory counters.
type Snapshot struct {
	EvaluationRuns       int64            `json:"evaluation_runs"`
	UsersEvaluated       int64            `json:"users_evaluated"`
	EvaluationFailures   int64            `json:"evaluation_failures"`
	LastRunDurationMS    int64            `json:"last_run_duration_ms"`
	WarningsByTier       map[string]int64 `json:"warnings_by_tier"`
	VaultsRevealed       int64            `json:"vaults_revealed"`
	TokenRedemptions     map[string]int64 `json:"token_redemptions"`
	ActivityPublished    map[string]int64 `json:"activity_published"`
	ActivityProcessed    map[string]int64 `json:"activity_processed"`
	ActivityQueueDepth   int64            `json:"activity_queue_depth"`
	LargestActivityBatch int64            `json:"largest_activity_batch"`
}
