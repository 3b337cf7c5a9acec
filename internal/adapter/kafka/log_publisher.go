package kafka

import (
	"context"
	"log/slog"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var _ port.EventPublisher = LogPublisher{}

// A LogPublisher writes catalog events to the log. It stands in for the
// broker when no seed brokers are configured.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, ev domain.CatalogEvent) error {
	if err := ctx.Err(); err != nil {
		return opErr(err, "LogPublisher", "Publish")
	}
	slog.Info(
		"catalog event",
		"eventID", ev.EventID,
		"type", ev.Type,
		"productID", ev.ProductID,
	)
	return nil
}

func (LogPublisher) Close() {}
