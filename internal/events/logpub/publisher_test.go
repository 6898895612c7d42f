package logpub

import (
	"bytes"
	"context"
	"testing"

	"github.com/sheikh-saqib/account-ledger-service/internal/logger"
	"github.com/sheikh-saqib/account-ledger-service/internal/models/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Publish(t *testing.T) {
	buf := &bytes.Buffer{}
	p := NewPublisher(logger.NewWithWriter(buf))

	err := p.Publish(context.Background(), events.TopicAccountOperationCompleted, "acc-1",
		events.AccountOperationCompleted{AccountID: "acc-1", ExpectedEvent: "PaymentDone"})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, events.TopicAccountOperationCompleted)
	assert.Contains(t, out, "PaymentDone")
}
