package queue

import (
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
)

// Event is the envelope written to the broker.
type Event struct {
	Topic   string          `json:"topic"`
	At      time.Time       `json:"at"`
	Payload json.RawMessage `json:"payload"`
}

type SubmissionLogged struct {
	SubmissionID  int     `json:"submission_id"`
	CampaignID    *int    `json:"campaign_id"`
	Country       *string `json:"country,omitempty"`
	TrafficSource string  `json:"traffic_source"`
}

type CampaignCreated struct {
	CampaignID int    `json:"campaign_id"`
	Slug       string `json:"slug"`
}

type CampaignToggled struct {
	CampaignID int  `json:"campaign_id"`
	IsActive   bool `json:"is_active"`
}

// AllTopics lists every topic the services publish.
var AllTopics = []string{TopicSubmissionLogged, TopicCampaignCreated, TopicCampaignToggled}

// AuditHandler returns a subscriber that writes each event as an audit line.
func AuditHandler(log logrus.FieldLogger, topic string) func(payload any) error {
	return func(payload any) error {
		log.WithFields(logrus.Fields{
			"topic":   topic,
			"payload": payload,
		}).Info("audit event")
		return nil
	}
}

// SubscribeAudit attaches AuditHandler to every topic.
func SubscribeAudit(q Queue, log logrus.FieldLogger) error {
	for _, topic := range AllTopics {
		if err := q.Subscribe(topic, AuditHandler(log, topic)); err != nil {
			return err
		}
	}
	return nil
}

// PublishBestEffort never lets an event failure reach the caller.
func PublishBestEffort(q Queue, log logrus.FieldLogger, topic string, payload any) {
	if q == nil {
		return
	}
	if err := q.Publish(topic, payload); err != nil {
		log.WithError(err).WithField("topic", topic).Warn("failed to publish event")
	}
}
