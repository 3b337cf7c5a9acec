package kafka

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"github.com/twmb/franz-go/pkg/kgo"
)

var _ port.EventPublisher = CatalogEventsProducer{}

const eventTypeHeader = "event-type"

// A producer is used for composition.
//
// Producing records to kafka broker and closing underlying [kgo.Client].
type producer struct {
	opPrefix string
	cl       ProducerClient
}

func (p producer) close() {
	const op = "close"
	log := slog.With("op", makeOp(p.opPrefix, op))
	log.Info("closing producer...")
	p.cl.Close()
	log.Info("producer is closed")
}

func (p producer) produce(
	ctx context.Context, rs ...*kgo.Record,
) error {
	const op = "produce"
	res := p.cl.ProduceSync(ctx, rs...)
	if err := res.FirstErr(); err != nil {
		return opErr(err, p.opPrefix, op)
	}
	return nil
}

// A CatalogEventsProducer publishes [domain.CatalogEvent] keyed by product
// id, so events of one product keep their order within a partition.
type CatalogEventsProducer struct {
	producer producer
	encoder  Encoder
	opPrefix string
}

func NewCatalogEventsProducer(
	opts ...ProducerOpt,
) (CatalogEventsProducer, error) {
	const op = "NewCatalogEventsProducer"

	if len(opts) != 2 {
		panic(opErr(ErrTooFewOpts, op)) // develop mistake
	}

	var options producerOpts
	for _, opt := range opts {
		if err := opt(&options); err != nil {
			return CatalogEventsProducer{}, opErr(err, op)
		}
	}

	opPrefix := "CatalogEventsProducer"
	p := producer{
		opPrefix: opPrefix,
		cl:       options.cl,
	}

	return CatalogEventsProducer{
		encoder:  options.encoder,
		producer: p,
		opPrefix: opPrefix,
	}, nil
}

func (p CatalogEventsProducer) Close() {
	p.producer.close()
}

func (p CatalogEventsProducer) Publish(
	ctx context.Context, ev domain.CatalogEvent,
) error {
	const op = "Publish"

	if err := ctx.Err(); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	r, err := p.createRecord(ev)
	if err != nil {
		return opErr(err, p.opPrefix, op)
	}

	if err := p.producer.produce(ctx, r); err != nil {
		return opErr(err, p.opPrefix, op)
	}

	return nil
}

func (p CatalogEventsProducer) createRecord(
	v domain.CatalogEvent,
) (*kgo.Record, error) {
	const op = "createRecord"

	b, err := p.encoder.Encode(catalogEventToSchemaV1(v))
	if err != nil {
		return nil, opErr(err, p.opPrefix, op)
	}
	return &kgo.Record{
		Key:   []byte(strconv.FormatUint(uint64(v.ProductID), 10)),
		Value: b,
		Headers: []kgo.RecordHeader{
			{Key: eventTypeHeader, Value: []byte(v.Type)},
		},
	}, nil
}
