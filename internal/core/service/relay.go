package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"github.com/niksmo/spellshop/pkg/retry"
)

var _ port.OutboxRelay = (*Relay)(nil)

var errMalformedPayload = errors.New("malformed outbox payload")

type RelayConfig struct {
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	Retry        retry.RetryConfig
}

func (c *RelayConfig) normalize() {
	if c.PollInterval <= 0 {
		c.PollInterval = time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 50
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 10
	}
	if c.Retry.ShouldRetry == nil {
		c.Retry.ShouldRetry = func(err error) bool {
			return !errors.Is(err, errMalformedPayload)
		}
	}
}

// Relay performs the side effects recorded in the outbox after their
// transaction committed.
type Relay struct {
	outbox    port.OutboxRepository
	blobs     port.BlobStore
	publisher port.EventPublisher
	cfg       RelayConfig
}

func NewRelay(
	outbox port.OutboxRepository,
	blobs port.BlobStore,
	publisher port.EventPublisher,
	cfg RelayConfig,
) *Relay {
	cfg.normalize()
	return &Relay{
		outbox:    outbox,
		blobs:     blobs,
		publisher: publisher,
		cfg:       cfg,
	}
}

// Run polls the outbox until ctx is done.
func (r *Relay) Run(ctx context.Context) {
	const op = "Relay.Run"
	log := slog.With("op", op)

	log.Info("outbox relay is running", "interval", r.cfg.PollInterval)
	ticker := time.NewTicker(r.cfg.PollInterval)
	defer ticker.Stop()

	for {
		if _, err := r.ProcessBatch(ctx); err != nil && ctx.Err() == nil {
			log.Error("failed to process outbox", "err", err)
		}

		select {
		case <-ctx.Done():
			log.Info("outbox relay is stopped")
			return
		case <-ticker.C:
		}
	}
}

// ProcessBatch dispatches one batch of pending messages and returns the
// batch size.
func (r *Relay) ProcessBatch(ctx context.Context) (int, error) {
	const op = "Relay.ProcessBatch"
	log := slog.With("op", op)

	msgs, err := r.outbox.FetchPending(ctx, r.cfg.BatchSize)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	for _, msg := range msgs {
		if err := ctx.Err(); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}

		err := retry.Do(ctx, r.cfg.Retry, func() error {
			return r.dispatch(ctx, msg)
		})
		if err == nil {
			if err := r.outbox.MarkDone(ctx, msg.ID); err != nil {
				return 0, fmt.Errorf("%s: %w", op, err)
			}
			continue
		}

		status := domain.OutboxPending
		if msg.Attempts+1 >= r.cfg.MaxAttempts || errors.Is(err, errMalformedPayload) {
			status = domain.OutboxFailed
		}
		log.Warn("outbox message is not delivered",
			"id", msg.ID, "kind", msg.Kind, "status", status, "err", err)
		if err := r.outbox.MarkAttempt(ctx, msg.ID, err.Error(), status); err != nil {
			return 0, fmt.Errorf("%s: %w", op, err)
		}
	}
	return len(msgs), nil
}

func (r *Relay) dispatch(ctx context.Context, msg domain.OutboxMessage) error {
	switch msg.Kind {
	case domain.OutboxBlobDelete:
		var v domain.BlobDelete
		if err := json.Unmarshal(msg.Payload, &v); err != nil || v.Key == "" {
			return fmt.Errorf("%w: %s", errMalformedPayload, msg.Kind)
		}
		return r.blobs.Delete(ctx, v.Key)
	case domain.OutboxCatalogEvent:
		var v domain.CatalogEvent
		if err := json.Unmarshal(msg.Payload, &v); err != nil {
			return fmt.Errorf("%w: %s", errMalformedPayload, msg.Kind)
		}
		return r.publisher.Publish(ctx, v)
	}
	return fmt.Errorf("%w: unknown kind %q", errMalformedPayload, msg.Kind)
}
