package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sheikh-saqib/account-ledger-service/internal/api/middleware"
	interfaces "github.com/sheikh-saqib/account-ledger-service/internal/interfaces"
	"github.com/sheikh-saqib/account-ledger-service/internal/models"
	"github.com/sheikh-saqib/account-ledger-service/internal/permissions"
)

// CatalogHandler creates the accounts, templates, tickets and work periods
// the account details screen reads.
type CatalogHandler struct {
	accounts    interfaces.AccountCatalog
	tickets     interfaces.TicketStore
	workPeriods interfaces.WorkPeriodStore
	log         zerolog.Logger
}

func NewCatalogHandler(accounts interfaces.AccountCatalog, tickets interfaces.TicketStore, workPeriods interfaces.WorkPeriodStore, log zerolog.Logger) *CatalogHandler {
	return &CatalogHandler{
		accounts:    accounts,
		tickets:     tickets,
		workPeriods: workPeriods,
		log:         log,
	}
}

// Register mounts the handler routes on mux.
func (h *CatalogHandler) Register(mux *http.ServeMux, checker middleware.PermissionChecker) {
	mux.HandleFunc("POST /account-templates", middleware.RequirePermission(checker, permissions.CreateAccount, h.CreateAccountTemplate))
	mux.HandleFunc("POST /accounts", middleware.RequirePermission(checker, permissions.CreateAccount, h.CreateAccount))
	mux.HandleFunc("POST /document-templates", middleware.RequirePermission(checker, permissions.CreateAccount, h.CreateDocumentTemplate))
	mux.HandleFunc("POST /tickets", middleware.RequirePermission(checker, permissions.MakeAccountTransaction, h.CreateTicket))
	mux.HandleFunc("POST /work-periods", middleware.RequirePermission(checker, permissions.MakeAccountTransaction, h.StartWorkPeriod))
}

// CreateAccountTemplate handles POST /account-templates
func (h *CatalogHandler) CreateAccountTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID            string `json:"id"`
		Name          string `json:"name"`
		DefaultFilter string `json:"default_filter"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name is required")
		return
	}

	template := models.AccountTemplate{ID: idOrNew(req.ID), Name: req.Name, DefaultFilter: models.FilterAll}
	if req.DefaultFilter != "" {
		filter, err := models.ParseFilterRange(req.DefaultFilter)
		if err != nil {
			middleware.WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		template.DefaultFilter = filter
	}

	if err := h.accounts.SaveAccountTemplate(r.Context(), template); err != nil {
		h.log.Error().Err(err).Str("template_id", template.ID).Msg("Failed to save account template")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save account template")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, template)
}

// CreateAccount handles POST /accounts
func (h *CatalogHandler) CreateAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Name       string `json:"name"`
		TemplateID string `json:"template_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.TemplateID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name and template_id are required")
		return
	}
	if !h.templateExists(w, r, req.TemplateID) {
		return
	}

	account := models.Account{ID: idOrNew(req.ID), Name: req.Name, TemplateID: req.TemplateID}
	if err := h.accounts.SaveAccount(r.Context(), account); err != nil {
		h.log.Error().Err(err).Str("account_id", account.ID).Msg("Failed to save account")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save account")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, account)
}

// CreateDocumentTemplate handles POST /document-templates
func (h *CatalogHandler) CreateDocumentTemplate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID                string `json:"id"`
		Name              string `json:"name"`
		AccountTemplateID string `json:"account_template_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if strings.TrimSpace(req.Name) == "" || req.AccountTemplateID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "name and account_template_id are required")
		return
	}
	if !h.templateExists(w, r, req.AccountTemplateID) {
		return
	}

	template := models.DocumentTemplate{ID: idOrNew(req.ID), Name: req.Name, AccountTemplateID: req.AccountTemplateID}
	if err := h.accounts.SaveDocumentTemplate(r.Context(), template); err != nil {
		h.log.Error().Err(err).Str("document_template_id", template.ID).Msg("Failed to save document template")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save document template")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, template)
}

// CreateTicket handles POST /tickets
func (h *CatalogHandler) CreateTicket(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID         string `json:"id"`
		Number     string `json:"number"`
		DocumentID string `json:"document_id"`
	}
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Number == "" || req.DocumentID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "number and document_id are required")
		return
	}

	ticket := models.Ticket{ID: idOrNew(req.ID), Number: req.Number, DocumentID: req.DocumentID}
	if err := h.tickets.SaveTicket(r.Context(), ticket); err != nil {
		h.log.Error().Err(err).Str("ticket_id", ticket.ID).Msg("Failed to save ticket")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save ticket")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, ticket)
}

// StartWorkPeriod handles POST /work-periods. An empty body starts the period now.
func (h *CatalogHandler) StartWorkPeriod(w http.ResponseWriter, r *http.Request) {
	var req struct {
		StartDate time.Time `json:"start_date"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	if req.StartDate.IsZero() {
		req.StartDate = time.Now()
	}

	period, err := h.workPeriods.StartWorkPeriod(r.Context(), req.StartDate)
	if err != nil {
		h.log.Error().Err(err).Msg("Failed to start work period")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to start work period")
		return
	}
	middleware.WriteJSON(w, http.StatusCreated, period)
}

func (h *CatalogHandler) templateExists(w http.ResponseWriter, r *http.Request, templateID string) bool {
	_, err := h.accounts.TemplateByID(r.Context(), templateID)
	switch {
	case err == nil:
		return true
	case errors.Is(err, models.ErrNotFound):
		middleware.WriteError(w, http.StatusNotFound, "account template not found: "+templateID)
	default:
		h.log.Error().Err(err).Str("template_id", templateID).Msg("Failed to lookup account template")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to lookup account template")
	}
	return false
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func idOrNew(id string) string {
	if id = strings.TrimSpace(id); id != "" {
		return id
	}
	return uuid.New().String()
}
