package events

import (
	"context"
	"encoding/json"
	"sync"
)

// EventType represents the type of event
type EventType string

const (
	EventSaleRecorded EventType = "sale_recorded"
	EventSalePaid     EventType = "sale_paid"
	EventSaleUpdated  EventType = "sale_updated"
	EventSaleDeleted  EventType = "sale_deleted"
)

// Event represents a server-sent event
type Event struct {
	Type EventType   `json:"type"`
	Data interface{} `json:"data"`
}

// EventBus manages SSE subscriptions and broadcasts dashboard events
type EventBus struct {
	subscribers map[string]chan Event
	mu          sync.RWMutex
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make(map[string]chan Event),
	}
}

// Subscribe adds a new subscriber and returns a channel for receiving events
func (eb *EventBus) Subscribe(ctx context.Context, id string) <-chan Event {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	// Create buffered channel to prevent blocking
	ch := make(chan Event, 10)
	eb.subscribers[id] = ch

	// Clean up when context is done
	go func() {
		<-ctx.Done()
		eb.Unsubscribe(id)
	}()

	return ch
}

// Unsubscribe removes a subscriber
func (eb *EventBus) Unsubscribe(id string) {
	eb.mu.Lock()
	defer eb.mu.Unlock()

	if ch, exists := eb.subscribers[id]; exists {
		close(ch)
		delete(eb.subscribers, id)
	}
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(eventType EventType, data interface{}) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()

	event := Event{
		Type: eventType,
		Data: data,
	}

	// Send to all subscribers (non-blocking)
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Skip if channel is full (prevents blocking)
		}
	}
}

// PublishSaleRecorded publishes a new sale event
func (eb *EventBus) PublishSaleRecorded(sale interface{}) {
	eb.Publish(EventSaleRecorded, sale)
}

// PublishSalePaid publishes a payment-status transition event
func (eb *EventBus) PublishSalePaid(source string, saleID string) {
	eb.Publish(EventSalePaid, map[string]string{"source": source, "sale_id": saleID})
}

// PublishSaleUpdated publishes a field-edit event
func (eb *EventBus) PublishSaleUpdated(source string, saleID string) {
	eb.Publish(EventSaleUpdated, map[string]string{"source": source, "sale_id": saleID})
}

// PublishSaleDeleted publishes a deletion event
func (eb *EventBus) PublishSaleDeleted(source string, saleID string) {
	eb.Publish(EventSaleDeleted, map[string]string{"source": source, "sale_id": saleID})
}

// FormatSSE formats an event as Server-Sent Event string
func FormatSSE(event Event) (string, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return "", err
	}

	return "event: " + string(event.Type) + "\ndata: " + string(data) + "\n\n", nil
}
