package models

import "time"

// Account is a ledger account such as a customer or cash account.
type Account struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	TemplateID string `json:"template_id"`
}

// AccountTemplate groups accounts and decides how their details open.
type AccountTemplate struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	DefaultFilter FilterRange `json:"default_filter"`
}

// DocumentTemplate describes a transaction document that can be created for accounts of a template.
type DocumentTemplate struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	AccountTemplateID string `json:"account_template_id"`
}

// Ticket is the sale that produced a transaction document.
type Ticket struct {
	ID         string `json:"id"`
	Number     string `json:"number"`
	DocumentID string `json:"document_id"`
}

// WorkPeriod is a business day or shift. EndDate is zero while the period is open.
type WorkPeriod struct {
	ID        string    `json:"id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
}
