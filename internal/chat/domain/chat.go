// Package domain defines the chat-with-data contract.
package domain

import (
	"context"
	"errors"
)

// Intent is the closed set of question categories the matcher resolves into.
type Intent string

const (
	IntentTotalSpend        Intent = "total_spend"
	IntentTopVendors        Intent = "top_vendors"
	IntentOverdueInvoices   Intent = "overdue_invoices"
	IntentPendingInvoices   Intent = "pending_invoices"
	IntentInvoiceCount      Intent = "invoice_count"
	IntentCategoryBreakdown Intent = "category_breakdown"
	IntentAverageInvoice    Intent = "average_invoice"
	IntentHelp              Intent = "help"
)

// Visualization tells the caller how to render the result.
type Visualization string

const (
	VisualizationTable  Visualization = "table"
	VisualizationChart  Visualization = "chart"
	VisualizationNumber Visualization = "number"
)

// Row is one result row, field name to value.
type Row map[string]any

// Response is the reply for one chat query. SQL is illustrative display text;
// it is never executed.
type Response struct {
	Message       string        `json:"message"`
	SQL           string        `json:"sql,omitempty"`
	Results       []Row         `json:"results,omitempty"`
	Visualization Visualization `json:"visualization,omitempty"`
}

// Service interprets one free-text question per call. Stateless; no
// multi-turn context.
type Service interface {
	Process(ctx context.Context, query string) (Response, error)
}

var ErrEmptyQuery = errors.New("empty_query")
