// Package logpub publishes events to the log. It is used when no message
// broker is configured.
package logpub

import (
	"context"

	"github.com/rs/zerolog"
	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
)

type Publisher struct {
	log zerolog.Logger
}

func NewPublisher(log zerolog.Logger) *Publisher {
	return &Publisher{log: log}
}

func (p *Publisher) Publish(ctx context.Context, topic string, key string, event any) error {
	p.log.Info().
		Str("topic", topic).
		Str("key", key).
		Interface("event", event).
		Msg("Event published")
	return nil
}

var _ interfaces.EventPublisher = (*Publisher)(nil)
