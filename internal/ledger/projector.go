package ledger

import (
	"context"
	"fmt"
	"slices"
	"time"

	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
)

const (
	PastTransactionsLabel = "Past Transactions"
	TotalLabel            = "Total"
	GrandTotalLabel       = "Grand Total"
)

// LedgerLine is one displayed row of the account details.
type LedgerLine struct {
	Record         models.TransactionRecord `json:"record"`
	RunningBalance decimal.Decimal          `json:"running_balance"`
	IsSummaryRow   bool                     `json:"is_summary_row"` // the synthetic past transactions row
}

type SummaryTotal struct {
	Label       string          `json:"label"`
	TotalDebit  decimal.Decimal `json:"total_debit"`
	TotalCredit decimal.Decimal `json:"total_credit"`
}

// Projection is the full result of one projection run. It is rebuilt from
// scratch on every call and never updated in place.
type Projection struct {
	Lines            []LedgerLine    `json:"lines"`
	Summaries        []SummaryTotal  `json:"summaries"`
	TotalBalance     decimal.Decimal `json:"total_balance"`
	FormattedBalance string          `json:"formatted_balance"`
}

// PastTotals are the summed values of the period a filter excludes.
type PastTotals struct {
	Debit  decimal.Decimal
	Credit decimal.Decimal
}

// Projector turns the stored transactions of an account into ledger lines.
type Projector struct {
	query     interfaces.TransactionQuery
	formatter interfaces.CurrencyFormatter
}

func NewProjector(query interfaces.TransactionQuery, formatter interfaces.CurrencyFormatter) *Projector {
	return &Projector{
		query:     query,
		formatter: formatter,
	}
}

// Project reads the transactions of accountID that fall in filter and
// builds the ledger lines, summaries and total balance for them.
// Only errors of the query collaborator are returned.
func (p *Projector) Project(ctx context.Context, accountID string, filter models.FilterRange, now, workPeriodStart time.Time) (Projection, error) {
	current := models.TransactionFilter{AccountID: accountID}
	bound, bounded := filter.LowerBound(now, workPeriodStart)
	if bounded {
		current.From = &bound
	}

	records, err := p.query.Query(ctx, current)
	if err != nil {
		return Projection{}, fmt.Errorf("query transactions of account %s: %w", accountID, err)
	}

	var past *PastTotals
	if filter != models.FilterAll {
		pastFilter := models.TransactionFilter{AccountID: accountID, Before: &bound}

		pastDebit, err := p.query.Sum(ctx, models.FieldDebit, pastFilter)
		if err != nil {
			return Projection{}, fmt.Errorf("sum past debit of account %s: %w", accountID, err)
		}
		pastCredit, err := p.query.Sum(ctx, models.FieldCredit, pastFilter)
		if err != nil {
			return Projection{}, fmt.Errorf("sum past credit of account %s: %w", accountID, err)
		}
		past = &PastTotals{Debit: pastDebit, Credit: pastCredit}
	}

	projection := Build(accountID, records, past)
	if p.formatter != nil {
		projection.FormattedBalance = p.formatter.Format(projection.TotalBalance)
	} else {
		projection.FormattedBalance = projection.TotalBalance.StringFixed(2)
	}
	return projection, nil
}

// Build aggregates already fetched records. past is nil when the filter
// excludes nothing. The synthetic past row is only added when the excluded
// period has a positive debit or credit sum.
func Build(accountID string, records []models.TransactionRecord, past *PastTotals) Projection {
	ordered := slices.Clone(records)
	slices.SortStableFunc(ordered, func(a, b models.TransactionRecord) int {
		return a.Date.Compare(b.Date)
	})

	lines := make([]LedgerLine, 0, len(ordered)+1)
	summaries := make([]SummaryTotal, 0, 2)

	if past != nil && (past.Credit.GreaterThan(decimal.Zero) || past.Debit.GreaterThan(decimal.Zero)) {
		summaries = append(summaries, sumLines(TotalLabel, ordered))
		lines = append(lines, LedgerLine{
			Record: models.TransactionRecord{
				AccountID: accountID,
				Name:      PastTransactionsLabel,
				Debit:     past.Debit,
				Credit:    past.Credit,
			},
			IsSummaryRow: true,
		})
	}
	for _, record := range ordered {
		lines = append(lines, LedgerLine{Record: record})
	}

	balance := decimal.Zero
	totalDebit, totalCredit := decimal.Zero, decimal.Zero
	for i := range lines {
		balance = balance.Add(lines[i].Record.Net())
		lines[i].RunningBalance = balance
		totalDebit = totalDebit.Add(lines[i].Record.Debit)
		totalCredit = totalCredit.Add(lines[i].Record.Credit)
	}
	summaries = append(summaries, SummaryTotal{
		Label:       GrandTotalLabel,
		TotalDebit:  totalDebit,
		TotalCredit: totalCredit,
	})

	return Projection{
		Lines:        lines,
		Summaries:    summaries,
		TotalBalance: balance,
	}
}

func sumLines(label string, records []models.TransactionRecord) SummaryTotal {
	total := SummaryTotal{Label: label, TotalDebit: decimal.Zero, TotalCredit: decimal.Zero}
	for _, r := range records {
		total.TotalDebit = total.TotalDebit.Add(r.Debit)
		total.TotalCredit = total.TotalCredit.Add(r.Credit)
	}
	return total
}
