package activity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lifevault/lifevault/internal/metrics"
	"github.com/lifevault/lifevault/internal/model"
)

const (
	// ConsumerGroup is the Redis consumer group name.
	ConsumerGroup = "activity_workers"

	// DefaultBatchSize is the max events per batch.
	DefaultBatchSize = 200

	// DefaultBlockTimeout is how long to block waiting for messages.
	DefaultBlockTimeout = 5 * time.Second

	// DefaultClaimInterval is how often to scan for stuck pending messages.
	DefaultClaimInterval = 30 * time.Second

	// DefaultClaimIdle is the idle time before reclaiming pending messages.
	DefaultClaimIdle = time.Minute

	// DefaultMetricsInterval is how often to refresh queue depth metrics.
	DefaultMetricsInterval = 10 * time.Second
)

// Store persists batches of activity entries.
type Store interface {
	InsertActivityLogs(ctx context.Context, entries []*model.ActivityLog) error
}

// Worker consumes activity events from the Redis stream and persists them.
type Worker struct {
	redis           *redis.Client
	store           Store
	logger          *slog.Logger
	metrics         metrics.Recorder
	consumerID      string
	batchSize       int
	blockTimeout    time.Duration
	claimInterval   time.Duration
	claimIdle       time.Duration
	metricsInterval time.Duration
	lastClaim       time.Time
	lastMetrics     time.Time
	started         bool
}

// NewWorker creates a new activity worker.
func NewWorker(client *redis.Client, store Store, consumerID string, logger *slog.Logger, recorder metrics.Recorder) *Worker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Worker{
		redis:           client,
		store:           store,
		logger:          logger.With("component", "activity.worker", "consumer_id", consumerID),
		metrics:         recorder,
		consumerID:      consumerID,
		batchSize:       DefaultBatchSize,
		blockTimeout:    DefaultBlockTimeout,
		claimInterval:   DefaultClaimInterval,
		claimIdle:       DefaultClaimIdle,
		metricsInterval: DefaultMetricsInterval,
	}
}

// Run starts the worker loop. Blocks until the context is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	if w.started {
		return errors.New("worker already started")
	}
	w.started = true

	if err := w.ensureConsumerGroup(ctx); err != nil {
		return fmt.Errorf("ensure consumer group: %w", err)
	}

	w.logger.Info("activity worker started")

	for {
		if ctx.Err() != nil {
			w.logger.Info("activity worker stopping")
			return ctx.Err()
		}

		w.maybeClaimStuck(ctx)
		w.maybeUpdateQueueDepth(ctx)

		if err := w.consumeOnce(ctx); err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			w.logger.Error("consume error", "error", err)
			// Back off briefly so a dead Redis doesn't spin the loop.
			select {
			case <-ctx.Done():
			case <-time.After(time.Second):
			}
		}
	}
}

func (w *Worker) ensureConsumerGroup(ctx context.Context) error {
	err := w.redis.XGroupCreateMkStream(ctx, StreamKey, ConsumerGroup, "0").Err()
	if err != nil && !strings.Contains(err.Error(), "BUSYGROUP") {
		return err
	}
	return nil
}

// consumeOnce reads one batch from the stream and persists it.
func (w *Worker) consumeOnce(ctx context.Context) error {
	streams, err := w.redis.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		Streams:  []string{StreamKey, ">"},
		Count:    int64(w.batchSize),
		Block:    w.blockTimeout,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil // No messages within the block timeout.
		}
		return err
	}

	for _, stream := range streams {
		if err := w.processBatch(ctx, stream.Messages); err != nil {
			return err
		}
	}
	return nil
}

// processBatch decodes, persists, and acknowledges one batch. Messages
// that fail to decode go to the dead-letter stream and are acked so they
// cannot poison the group forever.
func (w *Worker) processBatch(ctx context.Context, msgs []redis.XMessage) error {
	if len(msgs) == 0 {
		return nil
	}

	entries := make([]*model.ActivityLog, 0, len(msgs))
	ids := make([]string, 0, len(msgs))

	for _, msg := range msgs {
		entry, err := decodeMessage(msg)
		if err != nil {
			w.deadLetter(ctx, msg, err)
			w.metrics.IncActivityEventProcessed("skipped")
			ids = append(ids, msg.ID)
			continue
		}
		entries = append(entries, entry)
		ids = append(ids, msg.ID)
	}

	if len(entries) > 0 {
		if err := w.store.InsertActivityLogs(ctx, entries); err != nil {
			// Leave unacked; the claim pass or a restart retries them.
			w.metrics.IncActivityEventProcessed("failed")
			return fmt.Errorf("persist batch of %d: %w", len(entries), err)
		}
		w.metrics.ObserveActivityBatchSize(len(entries))
		for range entries {
			w.metrics.IncActivityEventProcessed("success")
		}
	}

	if err := w.redis.XAck(ctx, StreamKey, ConsumerGroup, ids...).Err(); err != nil {
		return fmt.Errorf("ack batch: %w", err)
	}
	return nil
}

// maybeClaimStuck periodically reclaims messages left pending by a dead
// consumer.
func (w *Worker) maybeClaimStuck(ctx context.Context) {
	if time.Since(w.lastClaim) < w.claimInterval {
		return
	}
	w.lastClaim = time.Now()

	msgs, _, err := w.redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   StreamKey,
		Group:    ConsumerGroup,
		Consumer: w.consumerID,
		MinIdle:  w.claimIdle,
		Start:    "0-0",
		Count:    int64(w.batchSize),
	}).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) && ctx.Err() == nil {
			w.logger.Warn("claim stuck messages failed", "error", err)
		}
		return
	}

	if len(msgs) > 0 {
		w.logger.Info("reclaimed pending messages", "count", len(msgs))
		if err := w.processBatch(ctx, msgs); err != nil && ctx.Err() == nil {
			w.logger.Error("process reclaimed batch failed", "error", err)
		}
	}
}

func (w *Worker) maybeUpdateQueueDepth(ctx context.Context) {
	if time.Since(w.lastMetrics) < w.metricsInterval {
		return
	}
	w.lastMetrics = time.Now()

	depth, err := w.redis.XLen(ctx, StreamKey).Result()
	if err == nil {
		w.metrics.SetActivityQueueDepth(depth)
	}
}

// deadLetter moves an undecodable message to the DLQ stream.
func (w *Worker) deadLetter(ctx context.Context, msg redis.XMessage, cause error) {
	w.logger.Warn("dead-lettering message", "stream_id", msg.ID, "error", cause)

	err := w.redis.XAdd(ctx, &redis.XAddArgs{
		Stream: DeadLetterStreamKey,
		ID:     "*",
		Values: map[string]interface{}{
			"original_id": msg.ID,
			"payload":     fmt.Sprint(msg.Values["payload"]),
			"error":       cause.Error(),
		},
	}).Err()
	if err != nil && ctx.Err() == nil {
		w.logger.Error("dead-letter write failed", "stream_id", msg.ID, "error", err)
	}
}

func decodeMessage(msg redis.XMessage) (*model.ActivityLog, error) {
	raw, ok := msg.Values["payload"].(string)
	if !ok {
		return nil, errors.New("missing payload field")
	}

	var payload eventPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}
	if payload.ID == "" || payload.UserID == "" {
		return nil, errors.New("payload missing id or user id")
	}
	if !model.ActivityKind(payload.Kind).IsValid() {
		return nil, fmt.Errorf("unknown activity kind %q", payload.Kind)
	}

	return &model.ActivityLog{
		ID:          payload.ID,
		UserID:      payload.UserID,
		Kind:        model.ActivityKind(payload.Kind),
		Description: payload.Description,
		IPAddress:   payload.IPAddress,
		CreatedAt:   time.UnixMilli(payload.RecordedAt).UTC(),
	}, nil
}
