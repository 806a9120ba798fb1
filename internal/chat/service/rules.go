package service

import (
	"strings"

	"github.com/smallbiznis/spendlens/internal/chat/domain"
)

// rule pairs an intent with its trigger predicate. Rules are evaluated
// top-to-bottom and the first match wins, so order is load-bearing: a query
// can trip several predicates and the earlier rule takes it.
type rule struct {
	intent domain.Intent
	match  func(q string) bool
}

var rules = []rule{
	{domain.IntentTotalSpend, func(q string) bool {
		return strings.Contains(q, "total spend") || strings.Contains(q, "total spending")
	}},
	{domain.IntentTopVendors, func(q string) bool {
		return strings.Contains(q, "top") && (strings.Contains(q, "vendor") || strings.Contains(q, "supplier"))
	}},
	{domain.IntentOverdueInvoices, func(q string) bool {
		return strings.Contains(q, "overdue")
	}},
	{domain.IntentPendingInvoices, func(q string) bool {
		return strings.Contains(q, "pending")
	}},
	{domain.IntentInvoiceCount, func(q string) bool {
		return strings.Contains(q, "how many") && strings.Contains(q, "invoice")
	}},
	{domain.IntentCategoryBreakdown, func(q string) bool {
		return strings.Contains(q, "category") || strings.Contains(q, "categories")
	}},
	{domain.IntentAverageInvoice, func(q string) bool {
		return strings.Contains(q, "average") && strings.Contains(q, "invoice")
	}},
}

// Resolve maps a raw query to exactly one intent. Matching is case-insensitive
// substring search; no tokenization, stemming or synonyms.
func Resolve(query string) domain.Intent {
	q := strings.ToLower(query)
	for _, r := range rules {
		if r.match(q) {
			return r.intent
		}
	}
	return domain.IntentHelp
}
