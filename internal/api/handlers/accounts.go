package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/sheikh-saqib/account-ledger-service/internal/api/middleware"
	"github.com/sheikh-saqib/account-ledger-service/internal/ledger"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/sheikh-saqib/account-ledger-service/internal/permissions"
	"github.com/shopspring/decimal"
)

// AccountsHandler serves the account details screen and transaction recording.
type AccountsHandler struct {
	details     ledger.DetailsDeps
	ledger      *ledger.Ledger
	permissions *permissions.Registry
	log         zerolog.Logger
}

func NewAccountsHandler(details ledger.DetailsDeps, l *ledger.Ledger, registry *permissions.Registry, log zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		details:     details,
		ledger:      l,
		permissions: registry,
		log:         log,
	}
}

// Register mounts the handler routes on mux.
func (h *AccountsHandler) Register(mux *http.ServeMux, checker middleware.PermissionChecker) {
	mux.HandleFunc("GET /health", h.Health)
	mux.HandleFunc("GET /permissions", h.ListPermissions)
	mux.HandleFunc("GET /accounts/{id}/ledger", middleware.RequirePermission(checker, permissions.NavigateAccountView, h.GetLedger))
	mux.HandleFunc("GET /accounts/{id}/balance", middleware.RequirePermission(checker, permissions.NavigateAccountView, h.GetBalance))
	mux.HandleFunc("POST /accounts/{id}/close", middleware.RequirePermission(checker, permissions.NavigateAccountView, h.CloseAccount))
	mux.HandleFunc("POST /documents/{id}/ticket", middleware.RequirePermission(checker, permissions.NavigateAccountView, h.DisplayTicket))
	mux.HandleFunc("POST /transactions", middleware.RequirePermission(checker, permissions.MakeAccountTransaction, h.RecordTransaction))
}

func (h *AccountsHandler) Health(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *AccountsHandler) ListPermissions(w http.ResponseWriter, r *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, h.permissions.All())
}

// GetLedger handles GET /accounts/{id}/ledger?filter=month
func (h *AccountsHandler) GetLedger(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	accountID := r.PathValue("id")

	var (
		filter    models.FilterRange
		hasFilter bool
	)
	if raw := r.URL.Query().Get("filter"); raw != "" {
		parsed, err := models.ParseFilterRange(raw)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		filter, hasFilter = parsed, true
	}

	details := ledger.NewAccountDetails(h.details)
	var err error
	if hasFilter {
		err = details.OpenWithFilter(ctx, accountID, filter, nil)
	} else {
		err = details.Open(ctx, accountID, nil)
	}
	if err != nil {
		h.writeLedgerError(w, err, "Failed to open account details")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, details.State())
}

// GetBalance handles GET /accounts/{id}/balance
func (h *AccountsHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountID := r.PathValue("id")

	balance, err := h.ledger.Balance(r.Context(), accountID)
	if err != nil {
		h.writeLedgerError(w, err, "Failed to compute balance")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, struct {
		AccountID string          `json:"account_id"`
		Balance   decimal.Decimal `json:"balance"`
	}{
		AccountID: accountID,
		Balance:   balance,
	})
}

// CloseAccount handles POST /accounts/{id}/close?expected_event=...
func (h *AccountsHandler) CloseAccount(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req *ledger.OperationRequest
	if expected := r.URL.Query().Get("expected_event"); expected != "" {
		req = &ledger.OperationRequest{ExpectedEvent: expected}
	}

	details := ledger.NewAccountDetails(h.details)
	if err := details.Open(ctx, r.PathValue("id"), req); err != nil {
		h.writeLedgerError(w, err, "Failed to open account details")
		return
	}
	if err := details.Close(ctx); err != nil {
		h.writeLedgerError(w, err, "Failed to close account details")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// DisplayTicket handles POST /documents/{id}/ticket
func (h *AccountsHandler) DisplayTicket(w http.ResponseWriter, r *http.Request) {
	details := ledger.NewAccountDetails(h.details)
	if err := details.DisplayTicket(r.Context(), r.PathValue("id")); err != nil {
		h.writeLedgerError(w, err, "Failed to display ticket")
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// RecordTransaction handles POST /transactions
func (h *AccountsHandler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountID  string          `json:"account_id"`
		Date       time.Time       `json:"date"`
		Debit      decimal.Decimal `json:"debit"`
		Credit     decimal.Decimal `json:"credit"`
		Name       string          `json:"name"`
		DocumentID string          `json:"document_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.AccountID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "account_id is required")
		return
	}
	if req.Date.IsZero() {
		req.Date = time.Now()
	}

	saved, err := h.ledger.RecordTransaction(r.Context(), models.TransactionRecord{
		AccountID:  req.AccountID,
		Date:       req.Date,
		Debit:      req.Debit,
		Credit:     req.Credit,
		Name:       req.Name,
		DocumentID: req.DocumentID,
	})
	if err != nil {
		h.writeLedgerError(w, err, "Failed to record transaction")
		return
	}

	middleware.WriteJSON(w, http.StatusCreated, saved)
}

func (h *AccountsHandler) writeLedgerError(w http.ResponseWriter, err error, msg string) {
	switch {
	case errors.Is(err, ledger.ErrAccountNotFound), errors.Is(err, ledger.ErrTicketNotFound):
		middleware.WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrInvalidAmount), errors.Is(err, ledger.ErrMissingDate),
		errors.Is(err, ledger.ErrNoDocument), errors.Is(err, models.ErrInvalidFilter):
		middleware.WriteError(w, http.StatusBadRequest, err.Error())
	default:
		h.log.Error().Err(err).Msg(msg)
		middleware.WriteError(w, http.StatusInternalServerError, msg)
	}
}
