package schema

import (
	"context"
	"errors"
	"fmt"

	"github.com/hamba/avro/v2"
	"github.com/twmb/franz-go/pkg/sr"
)

var (
	ErrTooFewOpts = errors.New("too few options")
)

// ValueSubject is the registry subject of record values in topic.
func ValueSubject(topic string) string {
	return topic + "-value"
}

// A Serde encodes values in the registry wire format: magic byte, schema id
// and the avro payload.
type Serde interface {
	Encode(v any) ([]byte, error)
	Decode(data []byte, v any) error
}

type serde struct {
	srSerde *sr.Serde
}

func (s serde) Encode(v any) ([]byte, error) {
	return s.srSerde.Encode(v)
}

func (s serde) Decode(data []byte, v any) error {
	return s.srSerde.Decode(data, v)
}

type Opt func(*serdeOpts) error

type serdeOpts struct {
	subject string
	si      SchemaIdentifier
}

func (o serdeOpts) complete() bool {
	return o.subject != "" && o.si != nil
}

func SubjectOpt(subject string) Opt {
	return func(so *serdeOpts) error {
		if subject == "" {
			return errors.New("subject is empty string")
		}
		so.subject = subject
		return nil
	}
}

func SchemaIdentifierOpt(si SchemaIdentifier) Opt {
	return func(so *serdeOpts) error {
		if si == nil {
			return errors.New("schema identifier is nil")
		}
		so.si = si
		return nil
	}
}

// NewSerdeCatalogEventV1 registers [CatalogEventV1] under the subject.
// Both [SubjectOpt] and [SchemaIdentifierOpt] are required.
func NewSerdeCatalogEventV1(ctx context.Context, opts ...Opt) (Serde, error) {
	const op = "NewSerdeCatalogEventV1"
	s, err := newSerde(ctx, CatalogEventSchemaTextV1, CatalogEventV1{}, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s, nil
}

func newSerde(
	ctx context.Context, schemaText string, example any, opts ...Opt,
) (Serde, error) {
	var o serdeOpts
	for _, opt := range opts {
		if err := opt(&o); err != nil {
			return nil, err
		}
	}
	if !o.complete() {
		return nil, ErrTooFewOpts
	}

	avroSchema, err := avro.Parse(schemaText)
	if err != nil {
		return nil, err
	}

	id, err := o.si.DetermineID(ctx, o.subject, schemaText)
	if err != nil {
		return nil, err
	}

	srSerde := new(sr.Serde)
	srSerde.Register(
		id,
		example,
		sr.EncodeFn(AvroEncodeFn(avroSchema)),
		sr.DecodeFn(AvroDecodeFn(avroSchema)),
	)
	return serde{srSerde}, nil
}
