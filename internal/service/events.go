package service

import "sync"

// EventType defines the type of event
type EventType string

const (
	EventDeviceProcessed EventType = "device_processed"
	EventRunCompleted    EventType = "run_completed"
)

// Event represents a run progress event
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload,omitempty"`
}

// EventBus fans run outcomes out to subscribers. It implements Observer.
type EventBus struct {
	mu          sync.RWMutex
	subscribers []chan<- Event
}

// NewEventBus creates a new event bus
func NewEventBus() *EventBus {
	return &EventBus{
		subscribers: make([]chan<- Event, 0),
	}
}

// Subscribe adds a subscriber to receive events
func (eb *EventBus) Subscribe(ch chan<- Event) {
	eb.mu.Lock()
	defer eb.mu.Unlock()
	eb.subscribers = append(eb.subscribers, ch)
}

// Publish sends an event to all subscribers
func (eb *EventBus) Publish(event Event) {
	eb.mu.RLock()
	defer eb.mu.RUnlock()
	for _, ch := range eb.subscribers {
		select {
		case ch <- event:
		default:
			// Subscriber is slow, skip
		}
	}
}

// ObserveDevice publishes a device_processed event
func (eb *EventBus) ObserveDevice(o DeviceOutcome) {
	eb.Publish(Event{Type: EventDeviceProcessed, Payload: o})
}

// ObserveRun publishes a run_completed event
func (eb *EventBus) ObserveRun(r *Report) {
	eb.Publish(Event{Type: EventRunCompleted, Payload: r})
}

// Observers combines several observers into one
type Observers []Observer

func (os Observers) ObserveDevice(o DeviceOutcome) {
	for _, ob := range os {
		ob.ObserveDevice(o)
	}
}

func (os Observers) ObserveRun(r *Report) {
	for _, ob := range os {
		ob.ObserveRun(r)
	}
}
