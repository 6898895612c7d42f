package ledger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/sheikh-saqib/account-ledger-service/internal/models/events"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidAmount = errors.New("debit and credit must not be negative and at least one must be positive")
	ErrMissingDate   = errors.New("transaction date is required")
)

// Ledger records account transaction values and answers balance queries.
type Ledger struct {
	store     interfaces.TransactionStore
	accounts  interfaces.AccountLookup
	publisher interfaces.EventPublisher
	clock     func() time.Time
	muMap     map[string]*sync.Mutex // one mutex per account
	mapMu     sync.Mutex             // protects muMap
}

func NewLedger(store interfaces.TransactionStore, accounts interfaces.AccountLookup, publisher interfaces.EventPublisher) *Ledger {
	return &Ledger{
		store:     store,
		accounts:  accounts,
		publisher: publisher,
		clock:     time.Now,
		muMap:     make(map[string]*sync.Mutex),
	}
}

// WithClock replaces the time source used to stamp published events.
func (l *Ledger) WithClock(clock func() time.Time) *Ledger {
	if clock != nil {
		l.clock = clock
	}
	return l
}

func (l *Ledger) getAccountLock(accountID string) *sync.Mutex {
	l.mapMu.Lock()
	defer l.mapMu.Unlock()

	if _, exists := l.muMap[accountID]; !exists {
		l.muMap[accountID] = &sync.Mutex{}
	}
	return l.muMap[accountID]
}

// RecordTransaction validates and saves a transaction value, then publishes
// TransactionRecorded. Saves and events of one account are serialized so
// subscribers see them in store order.
func (l *Ledger) RecordTransaction(ctx context.Context, record models.TransactionRecord) (models.TransactionRecord, error) {
	if record.Debit.IsNegative() || record.Credit.IsNegative() ||
		(!record.Debit.IsPositive() && !record.Credit.IsPositive()) {
		return models.TransactionRecord{}, ErrInvalidAmount
	}
	if record.Date.IsZero() {
		return models.TransactionRecord{}, ErrMissingDate
	}
	if _, err := l.accounts.AccountByID(ctx, record.AccountID); err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return models.TransactionRecord{}, fmt.Errorf("%w: %s", ErrAccountNotFound, record.AccountID)
		}
		return models.TransactionRecord{}, fmt.Errorf("lookup account %s: %w", record.AccountID, err)
	}

	mu := l.getAccountLock(record.AccountID)
	mu.Lock()
	defer mu.Unlock()

	saved, err := l.store.SaveTransaction(ctx, record)
	if err != nil {
		return models.TransactionRecord{}, fmt.Errorf("save transaction: %w", err)
	}

	event := events.TransactionRecorded{
		TransactionID: saved.ID,
		AccountID:     saved.AccountID,
		Debit:         saved.Debit,
		Credit:        saved.Credit,
		OccurredAt:    l.clock(),
	}
	if err := l.publisher.Publish(ctx, events.TopicTransactionRecorded, saved.AccountID, event); err != nil {
		return saved, fmt.Errorf("publish %s: %w", events.TopicTransactionRecorded, err)
	}
	return saved, nil
}

// Balance returns the sum of debit minus credit over all values of the account.
func (l *Ledger) Balance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	filter := models.TransactionFilter{AccountID: accountID}

	debit, err := l.store.Sum(ctx, models.FieldDebit, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum debit of account %s: %w", accountID, err)
	}
	credit, err := l.store.Sum(ctx, models.FieldCredit, filter)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum credit of account %s: %w", accountID, err)
	}
	return debit.Sub(credit), nil
}
