package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/niksmo/spellshop/internal/adapter/storage/storagetest"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/service"
	"github.com/niksmo/spellshop/pkg/retry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRelay(t *testing.T) {
	ctx := context.Background()
	noRetry := retry.RetryConfig{MaxAttempts: 1}

	t.Run("Blob delete and event", func(t *testing.T) {
		store := storagetest.New(t)
		blobs := newMemBlobs()
		blobs.objects["products/a.png"] = "a"
		pub := &memPublisher{}
		r := service.NewRelay(store, blobs, pub, service.RelayConfig{Retry: noRetry})

		now := time.Now()
		require.NoError(t, store.Enqueue(ctx,
			domain.NewBlobDeleteMessage("products/a.png", now),
			domain.NewBlobDeleteMessage("products/missing.png", now),
			domain.NewCatalogEventMessage(domain.ProductDeleted, domain.Product{ProductID: 3}, now),
		))

		n, err := r.ProcessBatch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, n)
		assert.Empty(t, blobs.Keys())
		require.Len(t, pub.events, 1)
		assert.Equal(t, uint(3), pub.events[0].ProductID)

		msgs, err := store.FetchPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("Failed delivery is retried then marked failed", func(t *testing.T) {
		store := storagetest.New(t)
		pub := &memPublisher{err: errBoom}
		r := service.NewRelay(store, newMemBlobs(), pub, service.RelayConfig{
			MaxAttempts: 2, Retry: noRetry,
		})

		msg := domain.NewCatalogEventMessage(domain.ProductCreated, domain.Product{ProductID: 1}, time.Now())
		require.NoError(t, store.Enqueue(ctx, msg))

		_, err := r.ProcessBatch(ctx)
		require.NoError(t, err)
		msgs, err := store.FetchPending(ctx, 10)
		require.NoError(t, err)
		require.Len(t, msgs, 1)
		assert.Equal(t, 1, msgs[0].Attempts)
		assert.Contains(t, msgs[0].LastError, "boom")

		_, err = r.ProcessBatch(ctx)
		require.NoError(t, err)
		msgs, err = store.FetchPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("Malformed payload fails at once", func(t *testing.T) {
		store := storagetest.New(t)
		r := service.NewRelay(store, newMemBlobs(), &memPublisher{}, service.RelayConfig{
			MaxAttempts: 5, Retry: noRetry,
		})

		msg := domain.NewBlobDeleteMessage("k", time.Now())
		msg.Payload = []byte("{")
		require.NoError(t, store.Enqueue(ctx, msg))

		_, err := r.ProcessBatch(ctx)
		require.NoError(t, err)
		msgs, err := store.FetchPending(ctx, 10)
		require.NoError(t, err)
		assert.Empty(t, msgs)
	})

	t.Run("Run stops on cancel", func(t *testing.T) {
		store := storagetest.New(t)
		blobs := newMemBlobs()
		blobs.objects["k"] = "v"
		r := service.NewRelay(store, blobs, &memPublisher{}, service.RelayConfig{
			PollInterval: 10 * time.Millisecond, Retry: noRetry,
		})
		require.NoError(t, store.Enqueue(ctx, domain.NewBlobDeleteMessage("k", time.Now())))

		rctx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			r.Run(rctx)
			close(done)
		}()

		assert.Eventually(t, func() bool { return len(blobs.Keys()) == 0 },
			time.Second, 10*time.Millisecond)
		cancel()
		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("relay did not stop")
		}
	})
}
