package service

import (
	"encoding/json"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
)

// DefaultRewardSubject is the NATS subject reward events publish to.
const DefaultRewardSubject = "willow.rewards"

// natsRewardPublisher pushes reward events to NATS. Publish failures only
// log; reward commits never roll back because an event could not be sent.
type natsRewardPublisher struct {
	conn    *nats.Conn
	subject string
	logger  zerolog.Logger
}

// NewNATSRewardPublisher wraps a NATS connection as a RewardPublisher.
// Returns nil when the connection is nil, which disables publishing.
func NewNATSRewardPublisher(conn *nats.Conn, subject string, logger zerolog.Logger) RewardPublisher {
	if conn == nil {
		return nil
	}
	if subject == "" {
		subject = DefaultRewardSubject
	}

	return &natsRewardPublisher{
		conn:    conn,
		subject: subject,
		logger:  logger.With().Str("component", "reward_publisher").Logger(),
	}
}

func (p *natsRewardPublisher) PublishReward(event RewardEvent) {
	payload, err := json.Marshal(event)
	if err != nil {
		p.logger.Error().Err(err).Msg("failed to marshal reward event")
		return
	}

	if err := p.conn.Publish(p.subject, payload); err != nil {
		p.logger.Warn().Err(err).Str("subject", p.subject).Msg("failed to publish reward event")
	}
}
