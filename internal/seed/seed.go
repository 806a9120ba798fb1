// Package seed bulk-loads the analytics dataset from a JSON file. Vendors and
// customers are referenced by name inside the invoice records and resolved to
// generated IDs during the load.
package seed

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/smallbiznis/spendlens/internal/analytics/domain"
)

type VendorRecord struct {
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	ContactEmail *string `json:"contactEmail"`
}

type CustomerRecord struct {
	Name   string  `json:"name"`
	Region *string `json:"region"`
}

type LineItemRecord struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
}

type PaymentRecord struct {
	DatePaid      string          `json:"datePaid"`
	AmountPaid    decimal.Decimal `json:"amountPaid"`
	PaymentMethod string          `json:"paymentMethod"`
}

type InvoiceRecord struct {
	VendorName    string           `json:"vendorName"`
	CustomerName  string           `json:"customerName"`
	InvoiceNumber string           `json:"invoiceNumber"`
	DateIssued    string           `json:"dateIssued"`
	DueDate       string           `json:"dueDate"`
	Status        string           `json:"status"`
	LineItems     []LineItemRecord `json:"lineItems"`
	Payments      []PaymentRecord  `json:"payments"`
}

type Data struct {
	Vendors   []VendorRecord   `json:"vendors"`
	Customers []CustomerRecord `json:"customers"`
	Invoices  []InvoiceRecord  `json:"invoices"`
}

// Load reads and parses the dataset file.
func Load(path string) (*Data, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var data Data
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return &data, nil
}

// Reset wipes existing rows, children first.
func Reset(ctx context.Context, db *gorm.DB) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{
			&domain.Payment{},
			&domain.LineItem{},
			&domain.Invoice{},
			&domain.Vendor{},
			&domain.Customer{},
		} {
			if err := tx.Where("1 = 1").Delete(model).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Apply inserts the dataset through the store. Each invoice amount is the
// decimal sum of quantity times unit price over its line items. Invoices
// naming an unknown vendor are skipped with a warning; an unknown customer
// leaves the invoice uncustomered.
func Apply(ctx context.Context, store domain.Store, node *snowflake.Node, data *Data, log *zap.Logger) error {
	now := time.Now().UTC()

	vendorIDs := make(map[string]snowflake.ID, len(data.Vendors))
	for _, record := range data.Vendors {
		vendor := &domain.Vendor{
			ID:           node.Generate(),
			Name:         record.Name,
			Category:     record.Category,
			ContactEmail: record.ContactEmail,
			CreatedAt:    now,
		}
		if err := store.CreateVendor(ctx, vendor); err != nil {
			return err
		}
		vendorIDs[record.Name] = vendor.ID
	}

	customerIDs := make(map[string]snowflake.ID, len(data.Customers))
	for _, record := range data.Customers {
		customer := &domain.Customer{
			ID:        node.Generate(),
			Name:      record.Name,
			Region:    record.Region,
			CreatedAt: now,
		}
		if err := store.CreateCustomer(ctx, customer); err != nil {
			return err
		}
		customerIDs[record.Name] = customer.ID
	}

	for _, record := range data.Invoices {
		vendorID, ok := vendorIDs[record.VendorName]
		if !ok {
			log.Warn("vendor not found, skipping invoice",
				zap.String("vendor", record.VendorName),
				zap.String("invoice_number", record.InvoiceNumber),
			)
			continue
		}

		var customerID *snowflake.ID
		if id, ok := customerIDs[record.CustomerName]; ok {
			customerID = &id
		}

		dateIssued, err := parseDate(record.DateIssued)
		if err != nil {
			return err
		}
		dueDate, err := parseDate(record.DueDate)
		if err != nil {
			return err
		}

		amount := decimal.Zero
		for _, item := range record.LineItems {
			amount = amount.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		invoice := &domain.Invoice{
			ID:            node.Generate(),
			VendorID:      vendorID,
			CustomerID:    customerID,
			InvoiceNumber: record.InvoiceNumber,
			DateIssued:    dateIssued,
			DueDate:       dueDate,
			Amount:        amount,
			Status:        domain.InvoiceStatus(record.Status),
			CreatedAt:     now,
		}
		if err := store.CreateInvoice(ctx, invoice); err != nil {
			return err
		}

		for _, item := range record.LineItems {
			lineItem := &domain.LineItem{
				ID:          node.Generate(),
				InvoiceID:   invoice.ID,
				Description: item.Description,
				Quantity:    item.Quantity,
				UnitPrice:   item.UnitPrice,
			}
			if err := store.CreateLineItem(ctx, lineItem); err != nil {
				return err
			}
		}

		for _, payment := range record.Payments {
			datePaid, err := parseDate(payment.DatePaid)
			if err != nil {
				return err
			}
			row := &domain.Payment{
				ID:            node.Generate(),
				InvoiceID:     invoice.ID,
				DatePaid:      datePaid,
				AmountPaid:    payment.AmountPaid,
				PaymentMethod: payment.PaymentMethod,
			}
			if err := store.CreatePayment(ctx, row); err != nil {
				return err
			}
		}
	}

	log.Info("seed complete",
		zap.Int("vendors", len(data.Vendors)),
		zap.Int("customers", len(data.Customers)),
		zap.Int("invoices", len(data.Invoices)),
	)
	return nil
}

func parseDate(value string) (time.Time, error) {
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}
