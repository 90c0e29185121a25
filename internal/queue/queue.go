package queue

import (
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
)

// Topics published by the services.
const (
	TopicSubmissionLogged = "submission.logged"
	TopicCampaignCreated  = "campaign.created"
	TopicCampaignToggled  = "campaign.toggled"
)

// Queue interface
type Queue interface {
	Publish(topic string, payload any) error
	Subscribe(topic string, handler func(payload any) error) error
}

// InMemoryQueue fans each message out to the topic's subscribers on their own
// goroutine. Delivery is at most once; a failing handler is logged, not retried.
type InMemoryQueue struct {
	mu       sync.Mutex
	handlers map[string][]func(payload any) error
	log      logrus.FieldLogger
	wg       sync.WaitGroup
}

// NewInMemoryQueue creates a new queue
func NewInMemoryQueue(log logrus.FieldLogger) *InMemoryQueue {
	return &InMemoryQueue{
		handlers: make(map[string][]func(payload any) error),
		log:      log,
	}
}

// Publish sends a message to all subscribers
func (q *InMemoryQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[topic]...)
	q.mu.Unlock()

	if len(handlers) == 0 {
		return fmt.Errorf("no subscribers for topic %s", topic)
	}

	for _, handler := range handlers {
		q.wg.Add(1)
		go func(h func(payload any) error) {
			defer q.wg.Done()
			if err := h(payload); err != nil {
				q.log.WithError(err).WithField("topic", topic).Warn("event handler failed")
			}
		}(handler)
	}
	return nil
}

// Subscribe adds a handler for a topic
func (q *InMemoryQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Wait blocks until every dispatched handler has returned.
func (q *InMemoryQueue) Wait() {
	q.wg.Wait()
}
