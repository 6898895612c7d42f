package interfaces

import (
	"context"
	"time"

	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
)

// TransactionQuery reads transaction values. Query returns records ordered by ascending date.
type TransactionQuery interface {
	Query(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error)
	Sum(ctx context.Context, field models.Field, filter models.TransactionFilter) (decimal.Decimal, error)
}

type TransactionStore interface {
	TransactionQuery
	SaveTransaction(ctx context.Context, record models.TransactionRecord) (models.TransactionRecord, error)
}

// AccountLookup resolves accounts and their template metadata.
// Missing ids return models.ErrNotFound.
type AccountLookup interface {
	AccountByID(ctx context.Context, id string) (models.Account, error)
	TemplateByID(ctx context.Context, id string) (models.AccountTemplate, error)
	DocumentTemplates(ctx context.Context, accountTemplateID string) ([]models.DocumentTemplate, error)
}

type TicketLookup interface {
	TicketByDocumentID(ctx context.Context, documentID string) (models.Ticket, error)
}

// WorkPeriodProvider returns the start of the current work period.
// The zero time is returned when no work period was ever started.
type WorkPeriodProvider interface {
	CurrentWorkPeriodStart(ctx context.Context) (time.Time, error)
}

type CurrencyFormatter interface {
	Format(amount decimal.Decimal) string
}

// AccountCatalog manages accounts, account templates and document templates.
// Saves insert or replace by id.
type AccountCatalog interface {
	AccountLookup
	SaveAccountTemplate(ctx context.Context, template models.AccountTemplate) error
	SaveAccount(ctx context.Context, account models.Account) error
	SaveDocumentTemplate(ctx context.Context, template models.DocumentTemplate) error
}

type TicketStore interface {
	TicketLookup
	SaveTicket(ctx context.Context, ticket models.Ticket) error
}

// WorkPeriodStore starts work periods. Starting one ends the open period.
type WorkPeriodStore interface {
	WorkPeriodProvider
	StartWorkPeriod(ctx context.Context, start time.Time) (models.WorkPeriod, error)
}
