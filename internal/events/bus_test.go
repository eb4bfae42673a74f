package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := NewEventBus()
	ctx := context.Background()

	ch1 := bus.Subscribe(ctx, "sub1")
	ch2 := bus.Subscribe(ctx, "sub2")

	bus.PublishSalePaid("CarWash", "cw1")

	for _, ch := range []<-chan Event{ch1, ch2} {
		select {
		case event := <-ch:
			assert.Equal(t, EventSalePaid, event.Type)
		case <-time.After(time.Second):
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := NewEventBus()

	ch := bus.Subscribe(context.Background(), "sub1")
	bus.Unsubscribe("sub1")

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.PublishSaleDeleted("Drink", "d1")
}

func TestPublishDoesNotBlockOnFullChannel(t *testing.T) {
	bus := NewEventBus()
	bus.Subscribe(context.Background(), "slow")

	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			bus.PublishSaleUpdated("CarWash", "cw1")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("publish blocked on a full subscriber channel")
	}
}

func TestFormatSSE(t *testing.T) {
	event := Event{Type: EventSaleRecorded, Data: map[string]string{"id": "cw1"}}

	formatted, err := FormatSSE(event)
	require.NoError(t, err)
	assert.Equal(t, "event: sale_recorded\ndata: {\"id\":\"cw1\"}\n\n", formatted)
}
