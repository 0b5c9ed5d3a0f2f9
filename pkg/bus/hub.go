package bus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/cskr/pubsub"
)

// Sink delivers messages somewhere outside the process.
type Sink interface {
	Name() string
	Handle(ctx context.Context, m Message) error
	Close() error
}

// Hub is the in-process message bus. Each subscriber gets a buffered
// channel; messages for a subscriber whose buffer is full are dropped, so
// a slow sink never stalls the publisher.
type Hub struct {
	ps     *pubsub.PubSub
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.RWMutex
	closed bool
	sinks  []Sink
}

// NewHub creates a hub with the given per-subscriber buffer size.
func NewHub(logger *slog.Logger, capacity int) *Hub {
	if capacity <= 0 {
		capacity = 16
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		ps:     pubsub.New(capacity),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
}

// PublishVelocity publishes on TopicVelocity.
func (h *Hub) PublishVelocity(t Twist) {
	h.publish(TopicVelocity, t)
}

// PublishJointStates publishes on TopicJointStates.
func (h *Hub) PublishJointStates(a Int32MultiArray) {
	h.publish(TopicJointStates, a)
}

func (h *Hub) publish(topic string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		return
	}
	h.ps.TryPub(Message{Topic: topic, Payload: payload}, topic)
}

// Subscribe returns a channel receiving messages on the given topics and a
// function that cancels the subscription. The channel is closed when the
// subscription is cancelled or the hub is closed.
func (h *Hub) Subscribe(topics ...string) (<-chan any, func()) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.closed {
		ch := make(chan any)
		close(ch)
		return ch, func() {}
	}

	ch := h.ps.Sub(topics...)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.RLock()
			defer h.mu.RUnlock()
			if !h.closed {
				h.ps.Unsub(ch, topics...)
			}
		})
	}
}

// Attach runs sink in its own goroutine for messages on topics until the
// hub is closed. Sink errors are logged when they first appear and when
// they change; they never reach the publisher.
func (h *Hub) Attach(sink Sink, topics ...string) {
	ch, _ := h.Subscribe(topics...)

	h.mu.Lock()
	h.sinks = append(h.sinks, sink)
	h.mu.Unlock()

	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		logger := h.logger.With("sink", sink.Name())
		var lastErr string
		for v := range ch {
			m, ok := v.(Message)
			if !ok {
				continue
			}
			err := sink.Handle(h.ctx, m)
			switch {
			case err != nil && err.Error() != lastErr:
				logger.Warn("sink delivery failed", "topic", m.Topic, "error", err)
				lastErr = err.Error()
			case err == nil && lastErr != "":
				logger.Info("sink recovered", "topic", m.Topic)
				lastErr = ""
			}
		}
	}()
}

// Close stops delivery, waits for attached sinks to drain and closes them.
func (h *Hub) Close() error {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	sinks := h.sinks
	h.mu.Unlock()

	h.ps.Shutdown()
	h.wg.Wait()
	h.cancel()

	var errs []error
	for _, s := range sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("close sinks: %v", errs)
	}
	return nil
}
