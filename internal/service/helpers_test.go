package service_test

import (
	"sync"

	"github.com/unclebandit/mailto-campaigns/internal/model"
)

// recordingQueue captures published events synchronously
type recordingQueue struct {
	mu     sync.Mutex
	topics []string
}

func (q *recordingQueue) Publish(topic string, payload any) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.topics = append(q.topics, topic)
	return nil
}

func (q *recordingQueue) Subscribe(topic string, handler func(payload any) error) error {
	return nil
}

func intp(n int) *int { return &n }

func strp(s string) *string { return &s }

func datep(s string) *model.Date {
	d := model.MustDate(s)
	return &d
}
