package domain

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/google/uuid"
)

type OutboxKind string

const (
	OutboxBlobDelete   OutboxKind = "blob.delete"
	OutboxCatalogEvent OutboxKind = "catalog.event"
)

type OutboxStatus string

const (
	OutboxPending OutboxStatus = "pending"
	OutboxDone    OutboxStatus = "done"
	OutboxFailed  OutboxStatus = "failed"
)

// An OutboxMessage is a side effect recorded in the same transaction as
// the catalog write and performed once that transaction commits.
type OutboxMessage struct {
	ID          string
	Kind        OutboxKind
	AggregateID string
	Payload     []byte
	Status      OutboxStatus
	Attempts    int
	LastError   string
	CreatedAt   time.Time
}

type BlobDelete struct {
	Key string `json:"key"`
}

type CatalogEventType string

const (
	ProductCreated CatalogEventType = "product.created"
	ProductUpdated CatalogEventType = "product.updated"
	ProductDeleted CatalogEventType = "product.deleted"
)

type CatalogEvent struct {
	EventID      string           `json:"event_id"`
	Type         CatalogEventType `json:"type"`
	ProductID    uint             `json:"product_id"`
	Name         string           `json:"name"`
	Price        string           `json:"price"`
	Quantity     int              `json:"quantity"`
	CategoryID   uint             `json:"category_id"`
	CollectionID uint             `json:"collection_id"`
	ImageURLs    []string         `json:"image_urls"`
	OccurredAt   time.Time        `json:"occurred_at"`
}

func NewBlobDeleteMessage(key string, now time.Time) OutboxMessage {
	payload, _ := json.Marshal(BlobDelete{Key: key})
	return OutboxMessage{
		ID:          uuid.NewString(),
		Kind:        OutboxBlobDelete,
		AggregateID: key,
		Payload:     payload,
		Status:      OutboxPending,
		CreatedAt:   now.UTC(),
	}
}

func NewCatalogEventMessage(
	t CatalogEventType, p Product, now time.Time,
) OutboxMessage {
	id := uuid.NewString()
	ev := CatalogEvent{
		EventID:      id,
		Type:         t,
		ProductID:    p.ProductID,
		Name:         p.Name,
		Price:        p.Price.String(),
		Quantity:     p.Quantity,
		CategoryID:   p.CategoryID,
		CollectionID: p.CollectionID,
		OccurredAt:   now.UTC(),
	}
	for _, img := range p.Images {
		ev.ImageURLs = append(ev.ImageURLs, img.URL)
	}
	payload, _ := json.Marshal(ev)
	return OutboxMessage{
		ID:          id,
		Kind:        OutboxCatalogEvent,
		AggregateID: strconv.FormatUint(uint64(p.ProductID), 10),
		Payload:     payload,
		Status:      OutboxPending,
		CreatedAt:   now.UTC(),
	}
}
