package ledger

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/logger"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/sheikh-saqib/account-ledger-service/internal/models/events"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrTicketNotFound  = errors.New("ticket not found")
	ErrNoDocument      = errors.New("transaction has no document")
	ErrNoAccount       = errors.New("no account selected")
)

// OperationRequest is set when another screen opened the account details
// and waits for a reply once they are closed.
type OperationRequest struct {
	ExpectedEvent string
}

// DetailsState is a snapshot of what the account details screen shows.
type DetailsState struct {
	Account           models.Account            `json:"account"`
	Template          models.AccountTemplate    `json:"template"`
	Filter            models.FilterRange        `json:"filter"`
	DocumentTemplates []models.DocumentTemplate `json:"document_templates"`
	Projection        Projection                `json:"projection"`
}

// DetailsDeps are the collaborators of an AccountDetails session.
type DetailsDeps struct {
	Projector   *Projector
	Accounts    interfaces.AccountLookup
	Tickets     interfaces.TicketLookup
	WorkPeriods interfaces.WorkPeriodProvider
	Publisher   interfaces.EventPublisher
	Clock       func() time.Time
}

// AccountDetails holds the state of one account details screen. Every
// selection change recomputes the projection from scratch.
type AccountDetails struct {
	deps DetailsDeps

	mu      sync.Mutex
	opened  bool
	state   DetailsState
	request *OperationRequest
}

func NewAccountDetails(deps DetailsDeps) *AccountDetails {
	if deps.Clock == nil {
		deps.Clock = time.Now
	}
	return &AccountDetails{deps: deps}
}

// Open selects an account, switches to its template's default filter and projects it.
func (d *AccountDetails) Open(ctx context.Context, accountID string, req *OperationRequest) error {
	return d.open(ctx, accountID, nil, req)
}

// OpenWithFilter selects an account and projects it with filter instead of
// the template's default.
func (d *AccountDetails) OpenWithFilter(ctx context.Context, accountID string, filter models.FilterRange, req *OperationRequest) error {
	return d.open(ctx, accountID, &filter, req)
}

func (d *AccountDetails) open(ctx context.Context, accountID string, requested *models.FilterRange, req *OperationRequest) error {
	account, err := d.deps.Accounts.AccountByID(ctx, accountID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrAccountNotFound, accountID)
		}
		return fmt.Errorf("lookup account %s: %w", accountID, err)
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	template := d.state.Template
	if !d.opened || template.ID != account.TemplateID {
		template, err = d.deps.Accounts.TemplateByID(ctx, account.TemplateID)
		if err != nil {
			return fmt.Errorf("lookup account template %s: %w", account.TemplateID, err)
		}
	}

	documentTemplates, err := d.deps.Accounts.DocumentTemplates(ctx, template.ID)
	if err != nil {
		return fmt.Errorf("list document templates of %s: %w", template.ID, err)
	}

	filter := template.DefaultFilter
	if requested != nil {
		filter = *requested
	}
	projection, err := d.project(ctx, account.ID, filter)
	if err != nil {
		return err
	}

	if req != nil && req.ExpectedEvent != "" {
		d.request = req
	}
	d.opened = true
	d.state = DetailsState{
		Account:           account,
		Template:          template,
		Filter:            filter,
		DocumentTemplates: documentTemplates,
		Projection:        projection,
	}

	log := logger.FromContext(ctx)
	log.Debug().
		Str("account_id", account.ID).
		Str("filter", filter.String()).
		Int("lines", len(projection.Lines)).
		Msg("Account details opened")
	return nil
}

// SetFilter changes the date range and recomputes the lines.
func (d *AccountDetails) SetFilter(ctx context.Context, filter models.FilterRange) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return ErrNoAccount
	}
	projection, err := d.project(ctx, d.state.Account.ID, filter)
	if err != nil {
		return err
	}
	d.state.Filter = filter
	d.state.Projection = projection
	return nil
}

// Refresh recomputes the lines with the current filter.
func (d *AccountDetails) Refresh(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return ErrNoAccount
	}
	projection, err := d.project(ctx, d.state.Account.ID, d.state.Filter)
	if err != nil {
		return err
	}
	d.state.Projection = projection
	return nil
}

// State returns a copy of the current state; callers may modify it freely.
func (d *AccountDetails) State() DetailsState {
	d.mu.Lock()
	defer d.mu.Unlock()

	state := d.state
	state.DocumentTemplates = slices.Clone(d.state.DocumentTemplates)
	state.Projection.Lines = slices.Clone(d.state.Projection.Lines)
	state.Projection.Summaries = slices.Clone(d.state.Projection.Summaries)
	return state
}

// Close clears the lines and replies to the screen that opened the details, if any.
func (d *AccountDetails) Close(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.opened {
		return ErrNoAccount
	}
	d.state.Projection = Projection{}
	req := d.request
	d.request = nil
	if req == nil {
		return nil
	}

	event := events.AccountOperationCompleted{
		AccountID:     d.state.Account.ID,
		ExpectedEvent: req.ExpectedEvent,
		OccurredAt:    d.deps.Clock(),
	}
	if err := d.deps.Publisher.Publish(ctx, events.TopicAccountOperationCompleted, event.AccountID, event); err != nil {
		return fmt.Errorf("publish %s: %w", events.TopicAccountOperationCompleted, err)
	}
	return nil
}

// DisplayTicket asks the ticket screen to show the ticket that created the document.
func (d *AccountDetails) DisplayTicket(ctx context.Context, documentID string) error {
	if documentID == "" {
		return ErrNoDocument
	}
	ticket, err := d.deps.Tickets.TicketByDocumentID(ctx, documentID)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			return fmt.Errorf("%w: document %s", ErrTicketNotFound, documentID)
		}
		return fmt.Errorf("lookup ticket of document %s: %w", documentID, err)
	}

	event := events.DisplayTicket{
		TicketID:   ticket.ID,
		DocumentID: documentID,
		OccurredAt: d.deps.Clock(),
	}
	if err := d.deps.Publisher.Publish(ctx, events.TopicDisplayTicket, ticket.ID, event); err != nil {
		return fmt.Errorf("publish %s: %w", events.TopicDisplayTicket, err)
	}
	return nil
}

func (d *AccountDetails) project(ctx context.Context, accountID string, filter models.FilterRange) (Projection, error) {
	var workPeriodStart time.Time
	if filter == models.FilterCurrentWorkPeriod {
		start, err := d.deps.WorkPeriods.CurrentWorkPeriodStart(ctx)
		if err != nil {
			return Projection{}, fmt.Errorf("current work period: %w", err)
		}
		workPeriodStart = start
	}
	return d.deps.Projector.Project(ctx, accountID, filter, d.deps.Clock(), workPeriodStart)
}
