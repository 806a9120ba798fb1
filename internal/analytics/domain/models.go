// Package domain contains the spend-analytics entities and storage contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// InvoiceStatus is the closed set of invoice states.
type InvoiceStatus string

const (
	InvoiceStatusPaid    InvoiceStatus = "paid"
	InvoiceStatusPending InvoiceStatus = "pending"
	InvoiceStatusOverdue InvoiceStatus = "overdue"
)

// Valid reports whether s is one of the enumerated statuses.
func (s InvoiceStatus) Valid() bool {
	switch s {
	case InvoiceStatusPaid, InvoiceStatusPending, InvoiceStatusOverdue:
		return true
	default:
		return false
	}
}

// Vendor is a supplier invoices are issued by.
type Vendor struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	Name         string       `gorm:"type:text;not null" json:"name"`
	Category     string       `gorm:"type:text;not null" json:"category"`
	ContactEmail *string      `gorm:"type:text" json:"contact_email,omitempty"`
	CreatedAt    time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Vendor) TableName() string { return "vendors" }

// Customer is an optional counterparty on an invoice.
type Customer struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"type:text;not null" json:"name"`
	Region    *string      `gorm:"type:text" json:"region,omitempty"`
	CreatedAt time.Time    `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Customer) TableName() string { return "customers" }

// Invoice is a received invoice. Amount is decimal to keep currency sums exact.
type Invoice struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	VendorID      snowflake.ID    `gorm:"not null;index" json:"vendor_id"`
	CustomerID    *snowflake.ID   `gorm:"index" json:"customer_id,omitempty"`
	InvoiceNumber string          `gorm:"type:text;not null;uniqueIndex" json:"invoice_number"`
	DateIssued    time.Time       `gorm:"not null;index" json:"date_issued"`
	DueDate       time.Time       `gorm:"not null" json:"due_date"`
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`
	Status        InvoiceStatus   `gorm:"type:text;not null" json:"status"`
	CreatedAt     time.Time       `gorm:"not null" json:"created_at"`
}

// TableName sets the database table name.
func (Invoice) TableName() string { return "invoices" }

// LineItem is a line on an invoice. Removed with its parent invoice.
type LineItem struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID   snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	Description string          `gorm:"type:text;not null" json:"description"`
	Quantity    int             `gorm:"not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

// TableName sets the database table name.
func (LineItem) TableName() string { return "line_items" }

// Payment records money paid against an invoice. Removed with its parent invoice.
type Payment struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceID     snowflake.ID    `gorm:"not null;index" json:"invoice_id"`
	DatePaid      time.Time       `gorm:"not null" json:"date_paid"`
	AmountPaid    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount_paid"`
	PaymentMethod string          `gorm:"type:text;not null" json:"payment_method"`
}

// TableName sets the database table name.
func (Payment) TableName() string { return "payments" }
