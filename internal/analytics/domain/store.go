package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

var (
	ErrNotFound               = errors.New("not_found")
	ErrVendorNotFound         = errors.New("vendor_not_found")
	ErrCustomerNotFound       = errors.New("customer_not_found")
	ErrDuplicateInvoiceNumber = errors.New("duplicate_invoice_number")
	ErrInvalidStatus          = errors.New("invalid_status")
	ErrNegativeAmount         = errors.New("negative_amount")
)

// InvoiceFilter narrows ListInvoices. Zero values mean "no filter".
type InvoiceFilter struct {
	Search string
	Status InvoiceStatus
}

// Stats is the dashboard overview block. JSON keys follow the dashboard API.
type Stats struct {
	TotalSpendYTD       float64 `json:"totalSpendYTD"`
	TotalInvoices       int     `json:"totalInvoices"`
	DocumentsUploaded   int     `json:"documentsUploaded"`
	AverageInvoiceValue float64 `json:"averageInvoiceValue"`
}

// VendorSpend is one row of the top-vendors aggregate, descending by spend.
type VendorSpend struct {
	Vendor string  `json:"vendor"`
	Spend  float64 `json:"spend"`
}

// CategorySpend is total spend for one vendor category.
type CategorySpend struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// TrendPoint is monthly invoice volume and value.
type TrendPoint struct {
	Month  string  `json:"month"`
	Volume int     `json:"volume"`
	Value  float64 `json:"value"`
}

// OutflowPoint is a forecast month; Actual is nil for future months.
type OutflowPoint struct {
	Month    string   `json:"month"`
	Forecast float64  `json:"forecast"`
	Actual   *float64 `json:"actual"`
}

// Store is the capability interface over invoice analytics data. Two
// interchangeable providers implement it: the map-backed memstore and the
// gorm-backed gormstore. All aggregates are decimal-precise sums.
type Store interface {
	GetVendor(ctx context.Context, id snowflake.ID) (*Vendor, error)
	ListVendors(ctx context.Context) ([]Vendor, error)
	CreateVendor(ctx context.Context, vendor *Vendor) error

	GetCustomer(ctx context.Context, id snowflake.ID) (*Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	CreateCustomer(ctx context.Context, customer *Customer) error

	GetInvoice(ctx context.Context, id snowflake.ID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter InvoiceFilter) ([]Invoice, error)
	CreateInvoice(ctx context.Context, invoice *Invoice) error
	// DeleteInvoice removes an invoice together with its line items and payments.
	DeleteInvoice(ctx context.Context, id snowflake.ID) error

	ListLineItems(ctx context.Context, invoiceID snowflake.ID) ([]LineItem, error)
	CreateLineItem(ctx context.Context, item *LineItem) error

	ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]Payment, error)
	CreatePayment(ctx context.Context, payment *Payment) error

	GetStats(ctx context.Context) (Stats, error)
	GetInvoiceTrends(ctx context.Context) ([]TrendPoint, error)
	GetTopVendors(ctx context.Context, limit int) ([]VendorSpend, error)
	GetCategorySpend(ctx context.Context) ([]CategorySpend, error)
	GetCashOutflow(ctx context.Context) ([]OutflowPoint, error)
}

// ValidateInvoice checks the invariants shared by both store providers.
func ValidateInvoice(invoice *Invoice) error {
	if invoice == nil {
		return ErrNotFound
	}
	if !invoice.Status.Valid() {
		return ErrInvalidStatus
	}
	if invoice.Amount.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ValidateLineItem checks quantity and unit price bounds.
func ValidateLineItem(item *LineItem) error {
	if item == nil {
		return ErrNotFound
	}
	if item.Quantity < 0 {
		return ErrNegativeAmount
	}
	if item.UnitPrice.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// ValidatePayment checks the paid amount bound.
func ValidatePayment(payment *Payment) error {
	if payment == nil {
		return ErrNotFound
	}
	if payment.AmountPaid.IsNegative() {
		return ErrNegativeAmount
	}
	return nil
}

// Round2 converts a decimal sum into the float form the API exposes.
func Round2(d decimal.Decimal) float64 {
	value, _ := d.Round(2).Float64()
	return value
}
