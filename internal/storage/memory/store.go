package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
)

// MemoryLedgerStore keeps accounts and transaction values in memory.
// It is safe for concurrent use.
type MemoryLedgerStore struct {
	mu                sync.RWMutex
	transactions      []models.TransactionRecord
	accounts          map[string]models.Account
	templates         map[string]models.AccountTemplate
	documentTemplates []models.DocumentTemplate
	tickets           map[string]models.Ticket // keyed by document id
	workPeriods       []models.WorkPeriod
}

func NewMemoryLedgerStore() *MemoryLedgerStore {
	return &MemoryLedgerStore{
		transactions: make([]models.TransactionRecord, 0),
		accounts:     make(map[string]models.Account),
		templates:    make(map[string]models.AccountTemplate),
		tickets:      make(map[string]models.Ticket),
	}
}

// SaveTransaction stores the record, assigning an id when it has none.
func (m *MemoryLedgerStore) SaveTransaction(ctx context.Context, record models.TransactionRecord) (models.TransactionRecord, error) {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.transactions = append(m.transactions, record)
	return record, nil
}

// Query returns matching records ordered by date. Records with equal dates keep insertion order.
func (m *MemoryLedgerStore) Query(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.TransactionRecord, 0)
	for _, r := range m.transactions {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	slices.SortStableFunc(result, func(a, b models.TransactionRecord) int {
		return a.Date.Compare(b.Date)
	})
	return result, nil
}

func (m *MemoryLedgerStore) Sum(ctx context.Context, field models.Field, filter models.TransactionFilter) (decimal.Decimal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	total := decimal.Zero
	for _, r := range m.transactions {
		if !filter.Matches(r) {
			continue
		}
		switch field {
		case models.FieldDebit:
			total = total.Add(r.Debit)
		case models.FieldCredit:
			total = total.Add(r.Credit)
		default:
			return decimal.Zero, fmt.Errorf("unknown field %q", field)
		}
	}
	return total, nil
}

func (m *MemoryLedgerStore) SaveAccount(ctx context.Context, account models.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.accounts[account.ID] = account
	return nil
}

func (m *MemoryLedgerStore) SaveAccountTemplate(ctx context.Context, template models.AccountTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[template.ID] = template
	return nil
}

func (m *MemoryLedgerStore) SaveDocumentTemplate(ctx context.Context, template models.DocumentTemplate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, existing := range m.documentTemplates {
		if existing.ID == template.ID {
			m.documentTemplates[i] = template
			return nil
		}
	}
	m.documentTemplates = append(m.documentTemplates, template)
	return nil
}

func (m *MemoryLedgerStore) SaveTicket(ctx context.Context, ticket models.Ticket) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tickets[ticket.DocumentID] = ticket
	return nil
}

func (m *MemoryLedgerStore) StartWorkPeriod(ctx context.Context, start time.Time) (models.WorkPeriod, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if n := len(m.workPeriods); n > 0 && m.workPeriods[n-1].EndDate.IsZero() {
		m.workPeriods[n-1].EndDate = start
	}
	period := models.WorkPeriod{ID: uuid.New().String(), StartDate: start}
	m.workPeriods = append(m.workPeriods, period)
	return period, nil
}

func (m *MemoryLedgerStore) AccountByID(ctx context.Context, id string) (models.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	account, ok := m.accounts[id]
	if !ok {
		return models.Account{}, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	return account, nil
}

func (m *MemoryLedgerStore) TemplateByID(ctx context.Context, id string) (models.AccountTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	template, ok := m.templates[id]
	if !ok {
		return models.AccountTemplate{}, fmt.Errorf("account template %s: %w", id, models.ErrNotFound)
	}
	return template, nil
}

func (m *MemoryLedgerStore) DocumentTemplates(ctx context.Context, accountTemplateID string) ([]models.DocumentTemplate, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]models.DocumentTemplate, 0)
	for _, t := range m.documentTemplates {
		if t.AccountTemplateID == accountTemplateID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *MemoryLedgerStore) TicketByDocumentID(ctx context.Context, documentID string) (models.Ticket, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ticket, ok := m.tickets[documentID]
	if !ok {
		return models.Ticket{}, fmt.Errorf("ticket of document %s: %w", documentID, models.ErrNotFound)
	}
	return ticket, nil
}

// CurrentWorkPeriodStart returns the start of the latest work period, or the zero time.
func (m *MemoryLedgerStore) CurrentWorkPeriodStart(ctx context.Context) (time.Time, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if len(m.workPeriods) == 0 {
		return time.Time{}, nil
	}
	return m.workPeriods[len(m.workPeriods)-1].StartDate, nil
}

// Compile-time checks
var (
	_ interfaces.TransactionStore = (*MemoryLedgerStore)(nil)
	_ interfaces.AccountCatalog   = (*MemoryLedgerStore)(nil)
	_ interfaces.TicketStore      = (*MemoryLedgerStore)(nil)
	_ interfaces.WorkPeriodStore  = (*MemoryLedgerStore)(nil)
)
