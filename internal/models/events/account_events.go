package events

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	TopicAccountOperationCompleted = "account_operation_completed"
	TopicDisplayTicket             = "display_ticket"
	TopicTransactionRecorded       = "transaction_recorded"
)

// AccountOperationCompleted is sent when an account screen opened on behalf
// of another screen is closed.
type AccountOperationCompleted struct {
	AccountID     string    `json:"account_id"`
	ExpectedEvent string    `json:"expected_event"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// DisplayTicket asks the ticket screen to show a ticket.
type DisplayTicket struct {
	TicketID   string    `json:"ticket_id"`
	DocumentID string    `json:"document_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type TransactionRecorded struct {
	TransactionID string          `json:"transaction_id"`
	AccountID     string          `json:"account_id"`
	Debit         decimal.Decimal `json:"debit"`
	Credit        decimal.Decimal `json:"credit"`
	OccurredAt    time.Time       `json:"occurred_at"`
}
