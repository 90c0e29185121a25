package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"
)

// AMQPQueue publishes every topic onto one durable queue. The topic travels as
// the message type so a single consumer can route events.
type AMQPQueue struct {
	mu    sync.Mutex
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
	log   logrus.FieldLogger

	handlers map[string][]func(payload any) error
}

// DialAMQP connects and declares the events queue.
func DialAMQP(url, queueName string, log logrus.FieldLogger) (*AMQPQueue, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}

	_, err = ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("failed to declare queue: %w", err)
	}

	return &AMQPQueue{
		conn:     conn,
		ch:       ch,
		queue:    queueName,
		log:      log,
		handlers: make(map[string][]func(payload any) error),
	}, nil
}

// Publish wraps payload in an Event envelope and sends it.
func (q *AMQPQueue) Publish(topic string, payload any) error {
	body, err := encodeEvent(topic, payload, time.Now().UTC())
	if err != nil {
		return err
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	return q.ch.Publish(
		"",
		q.queue,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         topic,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		},
	)
}

// Subscribe registers a handler used by Consume. Payloads arrive as
// json.RawMessage.
func (q *AMQPQueue) Subscribe(topic string, handler func(payload any) error) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.handlers[topic] = append(q.handlers[topic], handler)
	return nil
}

// Consume delivers queued events to subscribers until ctx is done. Messages
// are acked after dispatch whatever the handler returns.
func (q *AMQPQueue) Consume(ctx context.Context) error {
	msgs, err := q.ch.Consume(
		q.queue,
		"",
		false, // autoAck
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return fmt.Errorf("delivery channel closed")
			}
			q.dispatch(d.Body)
			if err := d.Ack(false); err != nil {
				q.log.WithError(err).Warn("failed to ack event")
			}
		}
	}
}

func (q *AMQPQueue) dispatch(body []byte) {
	ev, err := decodeEvent(body)
	if err != nil {
		q.log.WithError(err).Warn("dropping malformed event")
		return
	}

	q.mu.Lock()
	handlers := append([]func(payload any) error(nil), q.handlers[ev.Topic]...)
	q.mu.Unlock()

	for _, h := range handlers {
		if err := h(ev.Payload); err != nil {
			q.log.WithError(err).WithField("topic", ev.Topic).Warn("event handler failed")
		}
	}
}

func (q *AMQPQueue) Close() error {
	q.ch.Close()
	return q.conn.Close()
}

func encodeEvent(topic string, payload any, at time.Time) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", topic, err)
	}
	return json.Marshal(Event{Topic: topic, At: at, Payload: raw})
}

func decodeEvent(body []byte) (Event, error) {
	var ev Event
	if err := json.Unmarshal(body, &ev); err != nil {
		return Event{}, err
	}
	if ev.Topic == "" {
		return Event{}, fmt.Errorf("event without topic")
	}
	return ev, nil
}
