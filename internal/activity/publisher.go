// Package activity provides the asynchronous audit-log pipeline: entries
// are published to a Redis stream and a worker persists them to Postgres
// in batches, so request paths and the evaluator never block on log writes.
package activity

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

const (
	// StreamKey is the Redis stream for activity events.
	StreamKey = "stream:activity_events"

	// DeadLetterStreamKey is the Redis stream for poison messages.
	DeadLetterStreamKey = "stream:activity_events:dlq"

	// MaxStreamLen is the approximate max length of the stream.
	MaxStreamLen = 100000

	// publishTimeout bounds a single publish attempt.
	publishTimeout = 2 * time.Second
)

// eventPayload is the compact wire format for one activity entry.
type eventPayload struct {
	ID          string `json:"id"`
	UserID      string `json:"uid"`
	Kind        string `json:"k"`
	Description string `json:"d"`
	IPAddress   string `json:"ip,omitempty"`
	RecordedAt  int64  `json:"t"` // Unix milliseconds
}

// Publisher enqueues activity entries to the Redis stream. It implements
// the core's ActivityLogger.
type Publisher struct {
	redis   *redis.Client
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewPublisher creates a new activity event publisher.
func NewPublisher(client *redis.Client, logger *slog.Logger, recorder metrics.Recorder) *Publisher {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Publisher{
		redis:   client,
		logger:  logger.With("component", "activity.publisher"),
		metrics: recorder,
	}
}

// Record publishes one activity entry. The entry ID is minted here so the
// worker's insert is idempotent under redelivery.
func (p *Publisher) Record(ctx context.Context, userID string, kind model.ActivityKind, description string) error {
	return p.RecordWithIP(ctx, userID, kind, description, "")
}

// RecordWithIP is Record with the request's source address attached.
func (p *Publisher) RecordWithIP(ctx context.Context, userID string, kind model.ActivityKind, description, ipAddress string) error {
	if !kind.IsValid() {
		return fmt.Errorf("unknown activity kind %q", kind)
	}

	payload := eventPayload{
		ID:          ulid.MustNew(ulid.Now(), rand.Reader).String(),
		UserID:      userID,
		Kind:        string(kind),
		Description: truncateDescription(description),
		IPAddress:   ipAddress,
		RecordedAt:  time.Now().UnixMilli(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, publishTimeout)
	defer cancel()

	err = p.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: StreamKey,
		MaxLen: MaxStreamLen,
		Approx: true,
		ID:     "*",
		Values: map[string]interface{}{"payload": string(data)},
	}).Err()
	if err != nil {
		p.metrics.IncActivityEventPublished("dropped")
		return fmt.Errorf("xadd: %w", err)
	}

	p.metrics.IncActivityEventPublished("success")
	return nil
}

// maxDescriptionLen bounds stored descriptions; anything longer is cut.
const maxDescriptionLen = 500

func truncateDescription(s string) string {
	if len(s) <= maxDescriptionLen {
		return s
	}
	cut := maxDescriptionLen
	// Back off to a rune boundary so the tail stays valid UTF-8.
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
