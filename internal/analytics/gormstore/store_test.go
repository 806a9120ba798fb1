package gormstore

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
	"github.com/smallbiznis/spendlens/internal/migration"
)

func setupStore(t *testing.T) (*Store, *snowflake.Node) {
	t.Helper()

	// A named in-memory database per test keeps the connection pool on one
	// schema without sharing state between tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migration.RunMigrations(db))

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	return New(db, 1.17, clock.NewFakeClock(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))), node
}

func createVendor(t *testing.T, s *Store, node *snowflake.Node, name, category string) snowflake.ID {
	t.Helper()
	vendor := &domain.Vendor{
		ID:        node.Generate(),
		Name:      name,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, s.CreateVendor(context.Background(), vendor))
	return vendor.ID
}

func createInvoice(t *testing.T, s *Store, node *snowflake.Node, vendorID snowflake.ID, number string, amount float64, status domain.InvoiceStatus, issued time.Time) snowflake.ID {
	t.Helper()
	invoice := &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		InvoiceNumber: number,
		DateIssued:    issued,
		DueDate:       issued.AddDate(0, 1, 0),
		Amount:        decimal.NewFromFloat(amount),
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.CreateInvoice(context.Background(), invoice))
	return invoice.ID
}

func TestGetVendorNotFound(t *testing.T) {
	s, node := setupStore(t)

	_, err := s.GetVendor(context.Background(), node.Generate())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateInvoiceValidatesReferences(t *testing.T) {
	s, node := setupStore(t)
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	err := s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      node.Generate(),
		InvoiceNumber: "INV-1",
		DateIssued:    issued,
		DueDate:       issued.AddDate(0, 1, 0),
		Amount:        decimal.NewFromInt(10),
		Status:        domain.InvoiceStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)

	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")
	missingCustomer := node.Generate()
	err = s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		CustomerID:    &missingCustomer,
		InvoiceNumber: "INV-2",
		DateIssued:    issued,
		DueDate:       issued.AddDate(0, 1, 0),
		Amount:        decimal.NewFromInt(10),
		Status:        domain.InvoiceStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrCustomerNotFound)
}

func TestCreateInvoiceDuplicateNumber(t *testing.T) {
	s, node := setupStore(t)
	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	createInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPaid, issued)

	err := s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		InvoiceNumber: "INV-1",
		DateIssued:    issued,
		DueDate:       issued.AddDate(0, 1, 0),
		Amount:        decimal.NewFromInt(50),
		Status:        domain.InvoiceStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrDuplicateInvoiceNumber)
}

func TestDeleteInvoiceCascades(t *testing.T) {
	s, node := setupStore(t)
	ctx := context.Background()
	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	invoiceID := createInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPaid, issued)

	require.NoError(t, s.CreateLineItem(ctx, &domain.LineItem{
		ID:          node.Generate(),
		InvoiceID:   invoiceID,
		Description: "Widgets",
		Quantity:    2,
		UnitPrice:   decimal.NewFromInt(50),
	}))
	require.NoError(t, s.CreatePayment(ctx, &domain.Payment{
		ID:            node.Generate(),
		InvoiceID:     invoiceID,
		DatePaid:      issued.AddDate(0, 0, 20),
		AmountPaid:    decimal.NewFromInt(100),
		PaymentMethod: "ACH",
	}))

	require.NoError(t, s.DeleteInvoice(ctx, invoiceID))

	_, err := s.GetInvoice(ctx, invoiceID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	items, err := s.ListLineItems(ctx, invoiceID)
	require.NoError(t, err)
	assert.Empty(t, items)

	payments, err := s.ListPayments(ctx, invoiceID)
	require.NoError(t, err)
	assert.Empty(t, payments)

	assert.ErrorIs(t, s.DeleteInvoice(ctx, invoiceID), domain.ErrNotFound)
}

func TestListInvoicesFiltersAndOrder(t *testing.T) {
	s, node := setupStore(t)
	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")

	createInvoice(t, s, node, vendorID, "INV-2026-01", 100, domain.InvoiceStatusPaid, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	createInvoice(t, s, node, vendorID, "INV-2026-02", 200, domain.InvoiceStatusPending, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))
	createInvoice(t, s, node, vendorID, "PO-99", 300, domain.InvoiceStatusPending, time.Date(2026, 2, 10, 0, 0, 0, 0, time.UTC))

	all, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	// Newest issue date first.
	assert.Equal(t, "INV-2026-02", all[0].InvoiceNumber)

	bySearch, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{Search: "INV-2026"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	byStatus, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{Status: domain.InvoiceStatusPending})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)
}

func TestGetStatsAndTrends(t *testing.T) {
	s, node := setupStore(t)
	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")

	createInvoice(t, s, node, vendorID, "INV-1", 0.1, domain.InvoiceStatusPaid, time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC))
	createInvoice(t, s, node, vendorID, "INV-2", 0.2, domain.InvoiceStatusPaid, time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC))
	createInvoice(t, s, node, vendorID, "INV-3", 299.7, domain.InvoiceStatusPending, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC))

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 300.0, stats.TotalSpendYTD)
	assert.Equal(t, 3, stats.TotalInvoices)
	assert.Equal(t, 3, stats.DocumentsUploaded)
	assert.Equal(t, 100.0, stats.AverageInvoiceValue)

	trends, err := s.GetInvoiceTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 2)
	assert.Equal(t, domain.TrendPoint{Month: "Jan", Volume: 2, Value: 0.3}, trends[0])
	assert.Equal(t, domain.TrendPoint{Month: "Mar", Volume: 1, Value: 299.7}, trends[1])
}

func TestGetTopVendorsOrdersBySpendThenInsertion(t *testing.T) {
	s, node := setupStore(t)
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	first := createVendor(t, s, node, "First", "A")
	second := createVendor(t, s, node, "Second", "B")
	third := createVendor(t, s, node, "Third", "C")

	createInvoice(t, s, node, first, "INV-1", 100, domain.InvoiceStatusPaid, issued)
	createInvoice(t, s, node, second, "INV-2", 100, domain.InvoiceStatusPaid, issued)
	createInvoice(t, s, node, third, "INV-3", 400, domain.InvoiceStatusPaid, issued)

	top, err := s.GetTopVendors(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, domain.VendorSpend{Vendor: "Third", Spend: 400}, top[0])
	assert.Equal(t, domain.VendorSpend{Vendor: "First", Spend: 100}, top[1])
	assert.Equal(t, domain.VendorSpend{Vendor: "Second", Spend: 100}, top[2])

	capped, err := s.GetTopVendors(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, capped, 1)
	assert.Equal(t, "Third", capped[0].Vendor)
}

func TestGetCategorySpendGroupsByVendorCategory(t *testing.T) {
	s, node := setupStore(t)
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	a := createVendor(t, s, node, "Acme", "Office Supplies")
	b := createVendor(t, s, node, "CloudNine", "Software & SaaS")
	c := createVendor(t, s, node, "OtherOffice", "Office Supplies")

	createInvoice(t, s, node, a, "INV-1", 100, domain.InvoiceStatusPaid, issued)
	createInvoice(t, s, node, b, "INV-2", 300, domain.InvoiceStatusPaid, issued)
	createInvoice(t, s, node, c, "INV-3", 50, domain.InvoiceStatusPaid, issued)

	categories, err := s.GetCategorySpend(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, domain.CategorySpend{Name: "Software & SaaS", Value: 300}, categories[0])
	assert.Equal(t, domain.CategorySpend{Name: "Office Supplies", Value: 150}, categories[1])
}

func TestGetCashOutflowMatchesMemstoreShape(t *testing.T) {
	s, node := setupStore(t)
	vendorID := createVendor(t, s, node, "Acme", "Office Supplies")

	// Due in June 2026; clock is fixed at 2026-06-15.
	createInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPending, time.Date(2026, 5, 20, 0, 0, 0, 0, time.UTC))

	outflow, err := s.GetCashOutflow(context.Background())
	require.NoError(t, err)
	require.Len(t, outflow, 6)

	assert.Equal(t, "Jun", outflow[0].Month)
	require.NotNil(t, outflow[0].Actual)
	assert.Equal(t, 100.0, *outflow[0].Actual)
	assert.Equal(t, 1100.0, outflow[0].Forecast)

	for _, point := range outflow[1:] {
		assert.Nil(t, point.Actual)
	}
}
