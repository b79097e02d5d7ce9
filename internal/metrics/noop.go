package metrics

import "time"

// Noop is a Recorder that discards all events. Useful as a default and in
// tests that don't assert on metrics.
type Noop struct{}

// NewNoop creates a no-op Recorder.
func NewNoop() *Noop { return &Noop{} }

func (*Noop) ObserveEvaluationRun(time.Duration, int, int) {}
func (*Noop) IncEvaluationFailure()                        {}
func (*Noop) IncWarningSent(string)                        {}
func (*Noop) IncVaultRevealed()                            {}
func (*Noop) IncTokenRedemption(string)                    {}
func (*Noop) IncActivityEventPublished(string)             {}
func (*Noop) IncActivityEventProcessed(string)             {}
func (*Noop) ObserveActivityBatchSize(int)                 {}
func (*Noop) SetActivityQueueDepth(int64)                  {}
