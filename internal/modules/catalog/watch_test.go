package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soko-labs/storefront-backend/internal/events"
)

func TestWatchDeliversInitialAndChangedSnapshots(t *testing.T) {
	repo := newFakeRepo()
	bus := events.NewMemoryBus()
	svc := NewService(repo, bus, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := make(chan int, 8)
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = svc.Watch(ctx, Filter{}, func(products []*Product) {
			snapshots <- len(products)
		})
	}()

	// Initial snapshot fires before any write.
	select {
	case n := <-snapshots:
		assert.Equal(t, 0, n)
	case <-time.After(2 * time.Second):
		t.Fatal("no initial snapshot")
	}

	_, err := svc.Create(context.Background(), validPayload())
	require.NoError(t, err)

	select {
	case n := <-snapshots:
		assert.Equal(t, 1, n)
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot after create")
	}

	// After cancellation the watcher stops and no further snapshots arrive.
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("watch did not stop after cancel")
	}

	_, err = svc.Create(context.Background(), validPayload())
	require.NoError(t, err)
	select {
	case n := <-snapshots:
		t.Fatalf("unexpected snapshot after cancel: %d", n)
	case <-time.After(100 * time.Millisecond):
	}
}
