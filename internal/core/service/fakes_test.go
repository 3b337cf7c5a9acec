package service_test

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"

	"github.com/niksmo/spellshop/internal/adapter/storage"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var errBoom = errors.New("boom")

type memBlobs struct {
	mu      sync.Mutex
	objects map[string]string
	failOn  int // fail the n-th Put when positive
	puts    int
}

func newMemBlobs() *memBlobs {
	return &memBlobs{objects: make(map[string]string)}
}

func (b *memBlobs) Put(
	_ context.Context, key, _ string, body io.Reader,
) (domain.BlobObject, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return domain.BlobObject{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.puts++
	if b.failOn > 0 && b.puts == b.failOn {
		return domain.BlobObject{}, errBoom
	}
	b.objects[key] = string(data)
	return domain.BlobObject{Key: key, URL: "http://blobs/" + key}, nil
}

func (b *memBlobs) Delete(_ context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, key)
	return nil
}

func (b *memBlobs) Keys() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	keys := make([]string, 0, len(b.objects))
	for k := range b.objects {
		keys = append(keys, k)
	}
	return keys
}

type memPublisher struct {
	mu     sync.Mutex
	events []domain.CatalogEvent
	err    error
}

func (p *memPublisher) Publish(_ context.Context, ev domain.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, ev)
	return nil
}

func (p *memPublisher) Close() {}

func (p *memPublisher) Types() []domain.CatalogEventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	var ts []domain.CatalogEventType
	for _, ev := range p.events {
		ts = append(ts, ev.Type)
	}
	return ts
}

// faultyStorage fails every transaction at the outbox write.
type faultyStorage struct {
	*storage.Storage
}

type failingEnqueue struct {
	port.TxStorage
}

func (failingEnqueue) Enqueue(context.Context, ...domain.OutboxMessage) error {
	return errBoom
}

func (s faultyStorage) Do(ctx context.Context, fn func(port.TxStorage) error) error {
	return s.Storage.Do(ctx, func(tx port.TxStorage) error {
		return fn(failingEnqueue{tx})
	})
}

type fakeIssuer struct{}

func (fakeIssuer) Issue(u domain.User) (domain.Session, error) {
	return domain.Session{Token: "token-" + u.Username, UserID: u.UserID}, nil
}

func upload(name, data string) domain.ImageUpload {
	return domain.ImageUpload{
		Filename: name,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(data)), nil
		},
	}
}
