package ledger

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockQuery struct {
	mock.Mock
}

func (m *mockQuery) Query(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]models.TransactionRecord), args.Error(1)
}

func (m *mockQuery) Sum(ctx context.Context, field models.Field, filter models.TransactionFilter) (decimal.Decimal, error) {
	args := m.Called(ctx, field, filter)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type plainFormatter struct{}

func (plainFormatter) Format(amount decimal.Decimal) string {
	return "$" + amount.StringFixed(2)
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func balances(lines []LedgerLine) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = l.RunningBalance.String()
	}
	return out
}

var (
	now        = time.Date(2025, 3, 15, 14, 30, 0, 0, time.UTC)
	monthStart = time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
)

func exampleRecords() []models.TransactionRecord {
	return []models.TransactionRecord{
		{ID: "r1", AccountID: "acc-1", Date: time.Date(2025, 3, 2, 9, 0, 0, 0, time.UTC), Debit: dec("100"), Name: "Sale"},
		{ID: "r2", AccountID: "acc-1", Date: time.Date(2025, 3, 3, 9, 0, 0, 0, time.UTC), Credit: dec("40"), Name: "Payment"},
	}
}

func TestProjector_Project_All(t *testing.T) {
	query := &mockQuery{}
	query.On("Query", mock.Anything, mock.MatchedBy(func(f models.TransactionFilter) bool {
		return f.AccountID == "acc-1" && f.From == nil && f.Before == nil
	})).Return(exampleRecords(), nil)

	p := NewProjector(query, plainFormatter{})
	got, err := p.Project(context.Background(), "acc-1", models.FilterAll, now, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, []string{"100", "60"}, balances(got.Lines))
	require.Len(t, got.Summaries, 1)
	assert.Equal(t, GrandTotalLabel, got.Summaries[0].Label)
	assert.Equal(t, "100", got.Summaries[0].TotalDebit.String())
	assert.Equal(t, "40", got.Summaries[0].TotalCredit.String())
	assert.Equal(t, "60", got.TotalBalance.String())
	assert.Equal(t, "$60.00", got.FormattedBalance)

	query.AssertNotCalled(t, "Sum", mock.Anything, mock.Anything, mock.Anything)
	query.AssertExpectations(t)
}

func TestProjector_Project_MonthWithPast(t *testing.T) {
	query := &mockQuery{}
	query.On("Query", mock.Anything, mock.MatchedBy(func(f models.TransactionFilter) bool {
		return f.From != nil && f.From.Equal(monthStart) && f.Before == nil
	})).Return(exampleRecords(), nil)
	pastFilter := mock.MatchedBy(func(f models.TransactionFilter) bool {
		return f.AccountID == "acc-1" && f.From == nil && f.Before != nil && f.Before.Equal(monthStart)
	})
	query.On("Sum", mock.Anything, models.FieldDebit, pastFilter).Return(dec("50"), nil)
	query.On("Sum", mock.Anything, models.FieldCredit, pastFilter).Return(dec("10"), nil)

	p := NewProjector(query, plainFormatter{})
	got, err := p.Project(context.Background(), "acc-1", models.FilterCurrentMonth, now, time.Time{})
	require.NoError(t, err)

	require.Len(t, got.Lines, 3)
	past := got.Lines[0]
	assert.True(t, past.IsSummaryRow)
	assert.Equal(t, PastTransactionsLabel, past.Record.Name)
	assert.Equal(t, "50", past.Record.Debit.String())
	assert.Equal(t, "10", past.Record.Credit.String())
	assert.False(t, got.Lines[1].IsSummaryRow)

	assert.Equal(t, []string{"40", "140", "100"}, balances(got.Lines))

	require.Len(t, got.Summaries, 2)
	assert.Equal(t, TotalLabel, got.Summaries[0].Label)
	assert.Equal(t, "100", got.Summaries[0].TotalDebit.String())
	assert.Equal(t, "40", got.Summaries[0].TotalCredit.String())
	assert.Equal(t, GrandTotalLabel, got.Summaries[1].Label)
	assert.Equal(t, "150", got.Summaries[1].TotalDebit.String())
	assert.Equal(t, "50", got.Summaries[1].TotalCredit.String())
	assert.Equal(t, "100", got.TotalBalance.String())

	query.AssertExpectations(t)
}

func TestProjector_Project_NoPastActivity(t *testing.T) {
	query := &mockQuery{}
	query.On("Query", mock.Anything, mock.Anything).Return(exampleRecords(), nil)
	query.On("Sum", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, nil)

	p := NewProjector(query, plainFormatter{})
	got, err := p.Project(context.Background(), "acc-1", models.FilterCurrentWeek, now, time.Time{})
	require.NoError(t, err)

	require.Len(t, got.Lines, 2)
	for _, l := range got.Lines {
		assert.False(t, l.IsSummaryRow)
	}
	require.Len(t, got.Summaries, 1)
	assert.Equal(t, GrandTotalLabel, got.Summaries[0].Label)
}

func TestProjector_Project_WorkPeriodBound(t *testing.T) {
	start := time.Date(2025, 3, 15, 8, 0, 0, 0, time.UTC)

	query := &mockQuery{}
	query.On("Query", mock.Anything, mock.MatchedBy(func(f models.TransactionFilter) bool {
		return f.From != nil && f.From.Equal(start)
	})).Return([]models.TransactionRecord{}, nil)
	query.On("Sum", mock.Anything, mock.Anything, mock.Anything).Return(decimal.Zero, nil)

	p := NewProjector(query, nil)
	got, err := p.Project(context.Background(), "acc-1", models.FilterCurrentWorkPeriod, now, start)
	require.NoError(t, err)

	assert.Empty(t, got.Lines)
	require.Len(t, got.Summaries, 1)
	assert.True(t, got.Summaries[0].TotalDebit.IsZero())
	assert.True(t, got.Summaries[0].TotalCredit.IsZero())
	assert.Equal(t, "0.00", got.FormattedBalance)
	query.AssertExpectations(t)
}

func TestProjector_Project_Errors(t *testing.T) {
	boom := errors.New("storage offline")

	t.Run("query", func(t *testing.T) {
		query := &mockQuery{}
		query.On("Query", mock.Anything, mock.Anything).Return([]models.TransactionRecord(nil), boom)

		_, err := NewProjector(query, nil).Project(context.Background(), "acc-1", models.FilterAll, now, time.Time{})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("sum", func(t *testing.T) {
		query := &mockQuery{}
		query.On("Query", mock.Anything, mock.Anything).Return(exampleRecords(), nil)
		query.On("Sum", mock.Anything, models.FieldDebit, mock.Anything).Return(decimal.Zero, boom)

		_, err := NewProjector(query, nil).Project(context.Background(), "acc-1", models.FilterCurrentMonth, now, time.Time{})
		assert.ErrorIs(t, err, boom)
	})
}

func TestProjector_Project_Idempotent(t *testing.T) {
	query := &mockQuery{}
	query.On("Query", mock.Anything, mock.Anything).Return(exampleRecords(), nil)
	query.On("Sum", mock.Anything, models.FieldDebit, mock.Anything).Return(dec("50"), nil)
	query.On("Sum", mock.Anything, models.FieldCredit, mock.Anything).Return(dec("10"), nil)

	p := NewProjector(query, plainFormatter{})
	first, err := p.Project(context.Background(), "acc-1", models.FilterCurrentMonth, now, time.Time{})
	require.NoError(t, err)
	second, err := p.Project(context.Background(), "acc-1", models.FilterCurrentMonth, now, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestBuild_AllNeverAddsPastRow(t *testing.T) {
	got := Build("acc-1", exampleRecords(), nil)

	for _, l := range got.Lines {
		assert.False(t, l.IsSummaryRow)
	}
	require.Len(t, got.Summaries, 1)
}

func TestBuild_NegativePastSumsAreIgnored(t *testing.T) {
	// only a positive debit or credit sum adds the past row
	got := Build("acc-1", exampleRecords(), &PastTotals{Debit: dec("-5"), Credit: decimal.Zero})

	assert.Len(t, got.Lines, 2)
	assert.Len(t, got.Summaries, 1)
}

func TestBuild_SortsByDate(t *testing.T) {
	records := exampleRecords()
	records[0], records[1] = records[1], records[0]

	got := Build("acc-1", records, nil)

	assert.Equal(t, "r1", got.Lines[0].Record.ID)
	assert.Equal(t, []string{"100", "60"}, balances(got.Lines))
	assert.Equal(t, "r2", records[0].ID, "input slice must not be reordered")
}

func TestBuild_RunningBalanceProperty(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	for run := 0; run < 50; run++ {
		n := rng.Intn(20)
		records := make([]models.TransactionRecord, n)
		for i := range records {
			records[i] = models.TransactionRecord{
				AccountID: "acc-1",
				Date:      base.Add(time.Duration(rng.Intn(1000)) * time.Hour),
				Debit:     decimal.New(rng.Int63n(100000), -2),
				Credit:    decimal.New(rng.Int63n(100000), -2),
			}
		}
		var past *PastTotals
		if rng.Intn(2) == 0 {
			past = &PastTotals{Debit: decimal.New(rng.Int63n(5000), -2), Credit: decimal.New(rng.Int63n(5000), -2)}
		}

		got := Build("acc-1", records, past)

		cumulative := decimal.Zero
		debit, credit := decimal.Zero, decimal.Zero
		for i, l := range got.Lines {
			cumulative = cumulative.Add(l.Record.Debit.Sub(l.Record.Credit))
			debit = debit.Add(l.Record.Debit)
			credit = credit.Add(l.Record.Credit)
			require.True(t, cumulative.Equal(l.RunningBalance), "run %d line %d", run, i)
			if i > 0 && !got.Lines[i-1].IsSummaryRow {
				require.False(t, l.Record.Date.Before(got.Lines[i-1].Record.Date))
			}
		}
		grand := got.Summaries[len(got.Summaries)-1]
		require.Equal(t, GrandTotalLabel, grand.Label)
		require.True(t, debit.Equal(grand.TotalDebit))
		require.True(t, credit.Equal(grand.TotalCredit))
		require.True(t, cumulative.Equal(got.TotalBalance))
	}
}
