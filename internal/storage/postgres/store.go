package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq" // postgres driver
	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/shopspring/decimal"
)

const schema = `
CREATE TABLE IF NOT EXISTS account_templates (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	default_filter TEXT NOT NULL DEFAULT 'all'
);
CREATE TABLE IF NOT EXISTS accounts (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	template_id TEXT NOT NULL REFERENCES account_templates(id)
);
CREATE TABLE IF NOT EXISTS document_templates (
	id                  TEXT PRIMARY KEY,
	name                TEXT NOT NULL,
	account_template_id TEXT NOT NULL REFERENCES account_templates(id)
);
CREATE TABLE IF NOT EXISTS account_transaction_values (
	id          TEXT PRIMARY KEY,
	account_id  TEXT NOT NULL REFERENCES accounts(id),
	date        TIMESTAMPTZ NOT NULL,
	debit       NUMERIC(20,4) NOT NULL DEFAULT 0,
	credit      NUMERIC(20,4) NOT NULL DEFAULT 0,
	name        TEXT NOT NULL DEFAULT '',
	document_id TEXT,
	seq         BIGSERIAL
);
ALTER TABLE account_transaction_values ADD COLUMN IF NOT EXISTS seq BIGSERIAL;
CREATE INDEX IF NOT EXISTS account_transaction_values_account_date
	ON account_transaction_values (account_id, date);
CREATE TABLE IF NOT EXISTS tickets (
	id          TEXT PRIMARY KEY,
	number      TEXT NOT NULL,
	document_id TEXT NOT NULL UNIQUE
);
CREATE TABLE IF NOT EXISTS work_periods (
	id         TEXT PRIMARY KEY,
	start_date TIMESTAMPTZ NOT NULL,
	end_date   TIMESTAMPTZ
);`

type PostgresLedgerStore struct {
	db *sql.DB
}

func NewPostgresLedgerStore(db *sql.DB) *PostgresLedgerStore {
	return &PostgresLedgerStore{
		db: db,
	}
}

// Open connects with lib/pq and verifies the connection.
func Open(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// EnsureSchema creates the tables the store reads from.
func (p *PostgresLedgerStore) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, schema)
	return err
}

func (p *PostgresLedgerStore) SaveTransaction(ctx context.Context, record models.TransactionRecord) (models.TransactionRecord, error) {
	const query = `INSERT INTO account_transaction_values (id, account_id, date, debit, credit, name, document_id)
	VALUES ($1,$2,$3,$4,$5,$6,$7)`

	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	documentID := sql.NullString{String: record.DocumentID, Valid: record.DocumentID != ""}

	_, err := p.db.ExecContext(ctx, query, record.ID, record.AccountID, record.Date, record.Debit, record.Credit, record.Name, documentID)
	if err != nil {
		return models.TransactionRecord{}, err
	}
	return record, nil
}

func (p *PostgresLedgerStore) Query(ctx context.Context, filter models.TransactionFilter) ([]models.TransactionRecord, error) {
	query, args := buildTransactionQuery(filter)

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]models.TransactionRecord, 0)
	for rows.Next() {
		var (
			record     models.TransactionRecord
			documentID sql.NullString
		)
		if err := rows.Scan(
			&record.ID,
			&record.AccountID,
			&record.Date,
			&record.Debit,
			&record.Credit,
			&record.Name,
			&documentID,
		); err != nil {
			return nil, err
		}
		record.DocumentID = documentID.String
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (p *PostgresLedgerStore) Sum(ctx context.Context, field models.Field, filter models.TransactionFilter) (decimal.Decimal, error) {
	column, err := sumColumn(field)
	if err != nil {
		return decimal.Zero, err
	}
	where, args := buildTransactionWhere(filter)
	query := `SELECT COALESCE(SUM(` + column + `), 0) FROM account_transaction_values WHERE ` + where

	var total decimal.Decimal
	if err := p.db.QueryRowContext(ctx, query, args...).Scan(&total); err != nil {
		return decimal.Zero, err
	}
	return total, nil
}

func (p *PostgresLedgerStore) SaveAccountTemplate(ctx context.Context, template models.AccountTemplate) error {
	const query = `INSERT INTO account_templates (id, name, default_filter) VALUES ($1,$2,$3)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, default_filter = EXCLUDED.default_filter`

	_, err := p.db.ExecContext(ctx, query, template.ID, template.Name, template.DefaultFilter.String())
	return err
}

func (p *PostgresLedgerStore) SaveAccount(ctx context.Context, account models.Account) error {
	const query = `INSERT INTO accounts (id, name, template_id) VALUES ($1,$2,$3)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, template_id = EXCLUDED.template_id`

	_, err := p.db.ExecContext(ctx, query, account.ID, account.Name, account.TemplateID)
	return err
}

func (p *PostgresLedgerStore) SaveDocumentTemplate(ctx context.Context, template models.DocumentTemplate) error {
	const query = `INSERT INTO document_templates (id, name, account_template_id) VALUES ($1,$2,$3)
	ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, account_template_id = EXCLUDED.account_template_id`

	_, err := p.db.ExecContext(ctx, query, template.ID, template.Name, template.AccountTemplateID)
	return err
}

func (p *PostgresLedgerStore) SaveTicket(ctx context.Context, ticket models.Ticket) error {
	const query = `INSERT INTO tickets (id, number, document_id) VALUES ($1,$2,$3)
	ON CONFLICT (id) DO UPDATE SET number = EXCLUDED.number, document_id = EXCLUDED.document_id`

	_, err := p.db.ExecContext(ctx, query, ticket.ID, ticket.Number, ticket.DocumentID)
	return err
}

// StartWorkPeriod ends the open work period and starts a new one in one transaction.
func (p *PostgresLedgerStore) StartWorkPeriod(ctx context.Context, start time.Time) (period models.WorkPeriod, err error) {
	dbTx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return models.WorkPeriod{}, err
	}

	defer func() {
		if err != nil {
			dbTx.Rollback()
		}
	}()

	if _, err = dbTx.ExecContext(ctx, `UPDATE work_periods SET end_date = $1 WHERE end_date IS NULL`, start); err != nil {
		return models.WorkPeriod{}, err
	}

	period = models.WorkPeriod{ID: uuid.New().String(), StartDate: start}
	if _, err = dbTx.ExecContext(ctx, `INSERT INTO work_periods (id, start_date) VALUES ($1,$2)`, period.ID, period.StartDate); err != nil {
		return models.WorkPeriod{}, err
	}
	if err = dbTx.Commit(); err != nil {
		return models.WorkPeriod{}, err
	}
	return period, nil
}

func (p *PostgresLedgerStore) AccountByID(ctx context.Context, id string) (models.Account, error) {
	const query = `SELECT id, name, template_id FROM accounts WHERE id = $1`

	var account models.Account
	err := p.db.QueryRowContext(ctx, query, id).Scan(&account.ID, &account.Name, &account.TemplateID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Account{}, fmt.Errorf("account %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.Account{}, err
	}
	return account, nil
}

func (p *PostgresLedgerStore) TemplateByID(ctx context.Context, id string) (models.AccountTemplate, error) {
	const query = `SELECT id, name, default_filter FROM account_templates WHERE id = $1`

	var (
		template      models.AccountTemplate
		defaultFilter string
	)
	err := p.db.QueryRowContext(ctx, query, id).Scan(&template.ID, &template.Name, &defaultFilter)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AccountTemplate{}, fmt.Errorf("account template %s: %w", id, models.ErrNotFound)
	}
	if err != nil {
		return models.AccountTemplate{}, err
	}
	if template.DefaultFilter, err = models.ParseFilterRange(defaultFilter); err != nil {
		return models.AccountTemplate{}, fmt.Errorf("account template %s: %w", id, err)
	}
	return template, nil
}

func (p *PostgresLedgerStore) DocumentTemplates(ctx context.Context, accountTemplateID string) ([]models.DocumentTemplate, error) {
	const query = `SELECT id, name, account_template_id FROM document_templates
	WHERE account_template_id = $1 ORDER BY name`

	rows, err := p.db.QueryContext(ctx, query, accountTemplateID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	templates := make([]models.DocumentTemplate, 0)
	for rows.Next() {
		var t models.DocumentTemplate
		if err := rows.Scan(&t.ID, &t.Name, &t.AccountTemplateID); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, rows.Err()
}

func (p *PostgresLedgerStore) TicketByDocumentID(ctx context.Context, documentID string) (models.Ticket, error) {
	const query = `SELECT id, number, document_id FROM tickets WHERE document_id = $1 LIMIT 1`

	var ticket models.Ticket
	err := p.db.QueryRowContext(ctx, query, documentID).Scan(&ticket.ID, &ticket.Number, &ticket.DocumentID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Ticket{}, fmt.Errorf("ticket of document %s: %w", documentID, models.ErrNotFound)
	}
	if err != nil {
		return models.Ticket{}, err
	}
	return ticket, nil
}

func (p *PostgresLedgerStore) CurrentWorkPeriodStart(ctx context.Context) (time.Time, error) {
	const query = `SELECT start_date FROM work_periods ORDER BY start_date DESC LIMIT 1`

	var start time.Time
	err := p.db.QueryRowContext(ctx, query).Scan(&start)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, err
	}
	return start, nil
}

// buildTransactionQuery selects the matching values in date order. Values
// with equal dates come back in insertion order.
func buildTransactionQuery(filter models.TransactionFilter) (string, []any) {
	where, args := buildTransactionWhere(filter)
	query := `SELECT id, account_id, date, debit, credit, name, document_id
	FROM account_transaction_values WHERE ` + where + ` ORDER BY date ASC, seq ASC`
	return query, args
}

// buildTransactionWhere renders filter as a WHERE clause with $n placeholders.
func buildTransactionWhere(filter models.TransactionFilter) (string, []any) {
	clauses := []string{"account_id = $1"}
	args := []any{filter.AccountID}

	if filter.From != nil {
		args = append(args, *filter.From)
		clauses = append(clauses, fmt.Sprintf("date >= $%d", len(args)))
	}
	if filter.Before != nil {
		args = append(args, *filter.Before)
		clauses = append(clauses, fmt.Sprintf("date < $%d", len(args)))
	}
	return strings.Join(clauses, " AND "), args
}

func sumColumn(field models.Field) (string, error) {
	switch field {
	case models.FieldDebit:
		return "debit", nil
	case models.FieldCredit:
		return "credit", nil
	default:
		return "", fmt.Errorf("unknown field %q", field)
	}
}

var (
	_ interfaces.TransactionStore = (*PostgresLedgerStore)(nil)
	_ interfaces.AccountCatalog   = (*PostgresLedgerStore)(nil)
	_ interfaces.TicketStore      = (*PostgresLedgerStore)(nil)
	_ interfaces.WorkPeriodStore  = (*PostgresLedgerStore)(nil)
)
