package memory

import (
	"context"
	"testing"
	"time"

	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLedgerStore_QueryAndSum(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()
	base := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	seed := []models.TransactionRecord{
		{AccountID: "acc-1", Date: base.AddDate(0, 0, 2), Debit: decimal.NewFromInt(30), Name: "third"},
		{AccountID: "acc-1", Date: base, Debit: decimal.NewFromInt(100), Name: "first"},
		{AccountID: "acc-2", Date: base, Debit: decimal.NewFromInt(999), Name: "other account"},
		{AccountID: "acc-1", Date: base.AddDate(0, 0, 1), Credit: decimal.NewFromInt(40), Name: "second"},
	}
	for _, r := range seed {
		saved, err := store.SaveTransaction(ctx, r)
		require.NoError(t, err)
		assert.NotEmpty(t, saved.ID)
	}

	records, err := store.Query(ctx, models.TransactionFilter{AccountID: "acc-1"})
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "first", records[0].Name)
	assert.Equal(t, "second", records[1].Name)
	assert.Equal(t, "third", records[2].Name)

	from := base.AddDate(0, 0, 1)
	records, err = store.Query(ctx, models.TransactionFilter{AccountID: "acc-1", From: &from})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "second", records[0].Name)

	debit, err := store.Sum(ctx, models.FieldDebit, models.TransactionFilter{AccountID: "acc-1", Before: &from})
	require.NoError(t, err)
	assert.Equal(t, "100", debit.String())

	credit, err := store.Sum(ctx, models.FieldCredit, models.TransactionFilter{AccountID: "acc-1"})
	require.NoError(t, err)
	assert.Equal(t, "40", credit.String())

	_, err = store.Sum(ctx, models.Field("amount"), models.TransactionFilter{AccountID: "acc-1"})
	assert.Error(t, err)
}

func TestMemoryLedgerStore_QueryEmpty(t *testing.T) {
	store := NewMemoryLedgerStore()

	records, err := store.Query(context.Background(), models.TransactionFilter{AccountID: "missing"})
	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMemoryLedgerStore_Lookups(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()

	require.NoError(t, store.SaveAccountTemplate(ctx, models.AccountTemplate{ID: "tpl-1", Name: "Customers", DefaultFilter: models.FilterCurrentMonth}))
	require.NoError(t, store.SaveAccount(ctx, models.Account{ID: "acc-1", Name: "John", TemplateID: "tpl-1"}))
	require.NoError(t, store.SaveDocumentTemplate(ctx, models.DocumentTemplate{ID: "doc-1", Name: "Payment", AccountTemplateID: "tpl-1"}))
	require.NoError(t, store.SaveDocumentTemplate(ctx, models.DocumentTemplate{ID: "doc-2", Name: "Other", AccountTemplateID: "tpl-2"}))
	require.NoError(t, store.SaveTicket(ctx, models.Ticket{ID: "t-1", Number: "42", DocumentID: "d-1"}))

	account, err := store.AccountByID(ctx, "acc-1")
	require.NoError(t, err)
	assert.Equal(t, "John", account.Name)

	_, err = store.AccountByID(ctx, "acc-9")
	assert.ErrorIs(t, err, models.ErrNotFound)

	template, err := store.TemplateByID(ctx, "tpl-1")
	require.NoError(t, err)
	assert.Equal(t, models.FilterCurrentMonth, template.DefaultFilter)

	docs, err := store.DocumentTemplates(ctx, "tpl-1")
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "doc-1", docs[0].ID)

	ticket, err := store.TicketByDocumentID(ctx, "d-1")
	require.NoError(t, err)
	assert.Equal(t, "42", ticket.Number)

	_, err = store.TicketByDocumentID(ctx, "d-9")
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestMemoryLedgerStore_WorkPeriods(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()

	start, err := store.CurrentWorkPeriodStart(ctx)
	require.NoError(t, err)
	assert.True(t, start.IsZero())

	first := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	second := first.AddDate(0, 0, 1)
	_, err = store.StartWorkPeriod(ctx, first)
	require.NoError(t, err)
	_, err = store.StartWorkPeriod(ctx, second)
	require.NoError(t, err)

	start, err = store.CurrentWorkPeriodStart(ctx)
	require.NoError(t, err)
	assert.True(t, second.Equal(start))
	assert.True(t, second.Equal(store.workPeriods[0].EndDate))
}

func TestMemoryLedgerStore_SaveReplacesExisting(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryLedgerStore()

	require.NoError(t, store.SaveAccountTemplate(ctx, models.AccountTemplate{ID: "customers", Name: "Customers", DefaultFilter: models.FilterAll}))
	require.NoError(t, store.SaveAccountTemplate(ctx, models.AccountTemplate{ID: "customers", Name: "Customers", DefaultFilter: models.FilterCurrentWeek}))
	template, err := store.TemplateByID(ctx, "customers")
	require.NoError(t, err)
	assert.Equal(t, models.FilterCurrentWeek, template.DefaultFilter)

	require.NoError(t, store.SaveDocumentTemplate(ctx, models.DocumentTemplate{ID: "payment", Name: "Payment", AccountTemplateID: "customers"}))
	require.NoError(t, store.SaveDocumentTemplate(ctx, models.DocumentTemplate{ID: "payment", Name: "Cash Payment", AccountTemplateID: "customers"}))
	templates, err := store.DocumentTemplates(ctx, "customers")
	require.NoError(t, err)
	require.Len(t, templates, 1)
	assert.Equal(t, "Cash Payment", templates[0].Name)
}
