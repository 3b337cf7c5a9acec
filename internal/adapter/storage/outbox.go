package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/niksmo/spellshop/internal/core/domain"
	"gorm.io/gorm"
)

func (s *Storage) Enqueue(ctx context.Context, msgs ...domain.OutboxMessage) error {
	const op = "Storage.Enqueue"

	if len(msgs) == 0 {
		return nil
	}
	ms := make([]outboxMessage, 0, len(msgs))
	for _, msg := range msgs {
		status := msg.Status
		if status == "" {
			status = domain.OutboxPending
		}
		ms = append(ms, outboxMessage{
			ID:          msg.ID,
			Kind:        string(msg.Kind),
			AggregateID: msg.AggregateID,
			Payload:     string(msg.Payload),
			Status:      string(status),
			Attempts:    msg.Attempts,
			LastError:   msg.LastError,
			CreatedAt:   msg.CreatedAt,
		})
	}
	if err := s.db.WithContext(ctx).Create(&ms).Error; err != nil {
		return translate(op, err)
	}
	return nil
}

// FetchPending returns up to limit pending messages, oldest first.
func (s *Storage) FetchPending(
	ctx context.Context, limit int,
) ([]domain.OutboxMessage, error) {
	const op = "Storage.FetchPending"

	var ms []outboxMessage
	err := s.db.WithContext(ctx).
		Where("status = ?", string(domain.OutboxPending)).
		Order("created_at, id").
		Limit(limit).
		Find(&ms).Error
	if err != nil {
		return nil, translate(op, err)
	}
	msgs := make([]domain.OutboxMessage, 0, len(ms))
	for _, m := range ms {
		msgs = append(msgs, domain.OutboxMessage{
			ID:          m.ID,
			Kind:        domain.OutboxKind(m.Kind),
			AggregateID: m.AggregateID,
			Payload:     []byte(m.Payload),
			Status:      domain.OutboxStatus(m.Status),
			Attempts:    m.Attempts,
			LastError:   m.LastError,
			CreatedAt:   m.CreatedAt,
		})
	}
	return msgs, nil
}

func (s *Storage) MarkDone(ctx context.Context, id string) error {
	const op = "Storage.MarkDone"
	return s.updateOutbox(ctx, op, id, map[string]any{
		"status":       string(domain.OutboxDone),
		"processed_at": time.Now().UTC(),
	})
}

// MarkAttempt records a failed delivery attempt and moves the message to
// status.
func (s *Storage) MarkAttempt(
	ctx context.Context, id string, lastErr string, status domain.OutboxStatus,
) error {
	const op = "Storage.MarkAttempt"
	fields := map[string]any{
		"attempts":   gorm.Expr("attempts + 1"),
		"last_error": lastErr,
		"status":     string(status),
	}
	if status != domain.OutboxPending {
		fields["processed_at"] = time.Now().UTC()
	}
	return s.updateOutbox(ctx, op, id, fields)
}

func (s *Storage) updateOutbox(
	ctx context.Context, op, id string, fields map[string]any,
) error {
	res := s.db.WithContext(ctx).
		Model(&outboxMessage{}).
		Where("id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}
