package metrics

import (
	"sync"
	"time"
)

// InMemory is a Recorder backed by in-process counters, exposed via the
// internal metrics endpoint. Safe for concurrent use.
type InMemory struct {
	mu sync.Mutex

	evaluationRuns     int64
	usersEvaluated     int64
	evaluationFailures int64
	lastRunDuration    time.Duration
	warningsByTier     map[string]int64
	vaultsRevealed     int64
	tokenRedemptions   map[string]int64
	activityPublished  map[string]int64
	activityProcessed  map[string]int64
	activityQueueDepth int64
	largestBatch       int64
}

// NewInMemory creates an in-memory Recorder.
func NewInMemory() *InMemory {
	return &InMemory{
		warningsByTier:    make(map[string]int64),
		tokenRedemptions:  make(map[string]int64),
		activityPublished: make(map[string]int64),
		activityProcessed: make(map[string]int64),
	}
}

func (m *InMemory) ObserveEvaluationRun(duration time.Duration, usersEvaluated, failures int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.evaluationRuns++
	m.usersEvaluated += int64(usersEvaluated)
	m.evaluationFailures += int64(failures)
	m.lastRunDuration = duration
}

func (m *InMemory) IncEvaluationFailure() {
	// Counted per run via ObserveEvaluationRun; kept for callers that
	// record failures outside a run summary.
}

func (m *InMemory) IncWarningSent(tier string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.warningsByTier[tier]++
}

func (m *InMemory) IncVaultRevealed() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vaultsRevealed++
}

func (m *InMemory) IncTokenRedemption(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokenRedemptions[status]++
}

func (m *InMemory) IncActivityEventPublished(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activityPublished[status]++
}

func (m *InMemory) IncActivityEventProcessed(status string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activityProcessed[status]++
}

func (m *InMemory) ObserveActivityBatchSize(size int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if int64(size) > m.largestBatch {
		m.largestBatch = int64(size)
	}
}

func (m *InMemory) SetActivityQueueDepth(depth int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.activityQueueDepth = depth
}

// Snapshot returns a copy of the current counters.
func (m *InMemory) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()

	return Snapshot{
		EvaluationRuns:       m.evaluationRuns,
		UsersEvaluated:       m.usersEvaluated,
		EvaluationFailures:   m.evaluationFailures,
		LastRunDurationMS:    m.lastRunDuration.Milliseconds(),
		WarningsByTier:       copyCounts(m.warningsByTier),
		VaultsRevealed:       m.vaultsRevealed,
		TokenRedemptions:     copyCounts(m.tokenRedemptions),
		ActivityPublished:    copyCounts(m.activityPublished),
		ActivityProcessed:    copyCounts(m.activityProcessed),
		ActivityQueueDepth:   m.activityQueueDepth,
		LargestActivityBatch: m.largestBatch,
	}
}

func copyCounts(src map[string]int64) map[string]int64 {
	dst := make(map[string]int64, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
