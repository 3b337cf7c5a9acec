package schema

import (
	"time"

	"github.com/hamba/avro/v2"
)

const CatalogEventSchemaTextV1 = `{
	"type": "record",
	"namespace": "spellshop.catalog",
	"name": "catalog_event",
	"fields": [
		{"name": "event_id", "type": "string"},
		{"name": "type", "type": "string"},
		{"name": "product_id", "type": "long"},
		{"name": "name", "type": "string"},
		{"name": "price", "type": "string"},
		{"name": "quantity", "type": "long"},
		{"name": "category_id", "type": "long"},
		{"name": "collection_id", "type": "long"},
		{"name": "image_urls", "type": {"type": "array", "items": "string"}},
		{"name": "occurred_at", "type": {"type": "long", "logicalType": "timestamp-millis"}}
	]
}`

// CatalogEventV1 carries the price as a decimal string.
type CatalogEventV1 struct {
	EventID      string    `avro:"event_id"`
	Type         string    `avro:"type"`
	ProductID    int64     `avro:"product_id"`
	Name         string    `avro:"name"`
	Price        string    `avro:"price"`
	Quantity     int64     `avro:"quantity"`
	CategoryID   int64     `avro:"category_id"`
	CollectionID int64     `avro:"collection_id"`
	ImageURLs    []string  `avro:"image_urls"`
	OccurredAt   time.Time `avro:"occurred_at"`
}

func CatalogEventV1Avro() avro.Schema {
	return avro.MustParse(CatalogEventSchemaTextV1)
}
