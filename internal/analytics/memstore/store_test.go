package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
)

func newTestStore(t *testing.T) (*Store, *snowflake.Node) {
	t.Helper()
	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return New(1.17, clock.NewFakeClock(time.Date(2026, 6, 15, 0, 0, 0, 0, time.UTC))), node
}

func addVendor(t *testing.T, s *Store, node *snowflake.Node, name, category string) snowflake.ID {
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

func addInvoice(t *testing.T, s *Store, node *snowflake.Node, vendorID snowflake.ID, number string, amount float64, status domain.InvoiceStatus, issued, due time.Time) snowflake.ID {
	t.Helper()
	invoice := &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		InvoiceNumber: number,
		DateIssued:    issued,
		DueDate:       due,
		Amount:        decimal.NewFromFloat(amount),
		Status:        status,
		CreatedAt:     time.Now().UTC(),
	}
	require.NoError(t, s.CreateInvoice(context.Background(), invoice))
	return invoice.ID
}

func TestCreateInvoiceRejectsUnknownVendor(t *testing.T) {
	s, node := newTestStore(t)

	err := s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      node.Generate(),
		InvoiceNumber: "INV-1",
		Amount:        decimal.NewFromInt(10),
		Status:        domain.InvoiceStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrVendorNotFound)
}

func TestCreateInvoiceRejectsDuplicateNumber(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))

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

func TestCreateInvoiceRejectsInvalidStatusAndNegativeAmount(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")

	err := s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		InvoiceNumber: "INV-1",
		Amount:        decimal.NewFromInt(10),
		Status:        "cancelled",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	err = s.CreateInvoice(context.Background(), &domain.Invoice{
		ID:            node.Generate(),
		VendorID:      vendorID,
		InvoiceNumber: "INV-2",
		Amount:        decimal.NewFromInt(-10),
		Status:        domain.InvoiceStatusPending,
	})
	assert.ErrorIs(t, err, domain.ErrNegativeAmount)
}

func TestDeleteInvoiceCascadesAndFreesNumber(t *testing.T) {
	s, node := newTestStore(t)
	ctx := context.Background()
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	invoiceID := addInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))

	require.NoError(t, s.CreateLineItem(ctx, &domain.LineItem{
		ID:        node.Generate(),
		InvoiceID: invoiceID,
		Quantity:  2,
		UnitPrice: decimal.NewFromInt(50),
	}))
	require.NoError(t, s.CreatePayment(ctx, &domain.Payment{
		ID:         node.Generate(),
		InvoiceID:  invoiceID,
		AmountPaid: decimal.NewFromInt(100),
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

	// The invoice number is reusable once the invoice is gone.
	addInvoice(t, s, node, vendorID, "INV-1", 75, domain.InvoiceStatusPending, issued, issued.AddDate(0, 1, 0))

	assert.ErrorIs(t, s.DeleteInvoice(ctx, node.Generate()), domain.ErrNotFound)
}

func TestListInvoicesFilters(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	addInvoice(t, s, node, vendorID, "INV-2026-01", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, vendorID, "INV-2026-02", 200, domain.InvoiceStatusPending, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, vendorID, "PO-99", 300, domain.InvoiceStatusPending, issued, issued.AddDate(0, 1, 0))

	all, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	bySearch, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{Search: "inv-2026"})
	require.NoError(t, err)
	assert.Len(t, bySearch, 2)

	byStatus, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{Status: domain.InvoiceStatusPending})
	require.NoError(t, err)
	assert.Len(t, byStatus, 2)

	both, err := s.ListInvoices(context.Background(), domain.InvoiceFilter{Search: "po", Status: domain.InvoiceStatusPending})
	require.NoError(t, err)
	require.Len(t, both, 1)
	assert.Equal(t, "PO-99", both[0].InvoiceNumber)
}

func TestGetStatsUsesDecimalSums(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)

	// 0.1 + 0.2 style sums stay exact with decimal arithmetic.
	addInvoice(t, s, node, vendorID, "INV-1", 0.1, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, vendorID, "INV-2", 0.2, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, vendorID, "INV-3", 299.7, domain.InvoiceStatusPending, issued, issued.AddDate(0, 1, 0))

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 300.0, stats.TotalSpendYTD)
	assert.Equal(t, 3, stats.TotalInvoices)
	assert.Equal(t, 3, stats.DocumentsUploaded)
	assert.Equal(t, 100.0, stats.AverageInvoiceValue)
}

func TestGetStatsEmptyStore(t *testing.T) {
	s, _ := newTestStore(t)

	stats, err := s.GetStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Stats{}, stats)
}

func TestGetTopVendorsTiesKeepInsertionOrder(t *testing.T) {
	s, node := newTestStore(t)
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	first := addVendor(t, s, node, "First", "A")
	second := addVendor(t, s, node, "Second", "B")
	third := addVendor(t, s, node, "Third", "C")

	addInvoice(t, s, node, first, "INV-1", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, second, "INV-2", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, third, "INV-3", 400, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))

	top, err := s.GetTopVendors(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "Third", top[0].Vendor)
	assert.Equal(t, "First", top[1].Vendor)
	assert.Equal(t, "Second", top[2].Vendor)

	capped, err := s.GetTopVendors(context.Background(), 2)
	require.NoError(t, err)
	assert.Len(t, capped, 2)
}

func TestGetInvoiceTrendsBucketsByIssueMonth(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")

	jan := time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)
	mar := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	addInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPaid, jan, jan.AddDate(0, 1, 0))
	addInvoice(t, s, node, vendorID, "INV-2", 150, domain.InvoiceStatusPaid, jan.AddDate(0, 0, 10), jan.AddDate(0, 1, 10))
	addInvoice(t, s, node, vendorID, "INV-3", 75, domain.InvoiceStatusPending, mar, mar.AddDate(0, 1, 0))

	trends, err := s.GetInvoiceTrends(context.Background())
	require.NoError(t, err)
	require.Len(t, trends, 2)

	assert.Equal(t, domain.TrendPoint{Month: "Jan", Volume: 2, Value: 250}, trends[0])
	assert.Equal(t, domain.TrendPoint{Month: "Mar", Volume: 1, Value: 75}, trends[1])
}

func TestGetCategorySpendFirstSeenOrder(t *testing.T) {
	s, node := newTestStore(t)
	issued := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	a := addVendor(t, s, node, "Acme", "Office Supplies")
	b := addVendor(t, s, node, "CloudNine", "Software & SaaS")
	c := addVendor(t, s, node, "OtherOffice", "Office Supplies")

	addInvoice(t, s, node, a, "INV-1", 100, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, b, "INV-2", 300, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))
	addInvoice(t, s, node, c, "INV-3", 50, domain.InvoiceStatusPaid, issued, issued.AddDate(0, 1, 0))

	categories, err := s.GetCategorySpend(context.Background())
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, domain.CategorySpend{Name: "Office Supplies", Value: 150}, categories[0])
	assert.Equal(t, domain.CategorySpend{Name: "Software & SaaS", Value: 300}, categories[1])
}

func TestGetCashOutflowSixMonthsFromClock(t *testing.T) {
	s, node := newTestStore(t)
	vendorID := addVendor(t, s, node, "Acme", "Office Supplies")

	// Clock is fixed at 2026-06-15; June is the only non-future month.
	due := time.Date(2026, 6, 20, 0, 0, 0, 0, time.UTC)
	addInvoice(t, s, node, vendorID, "INV-1", 100, domain.InvoiceStatusPending, due.AddDate(0, -1, 0), due)
	addInvoice(t, s, node, vendorID, "INV-2", 200, domain.InvoiceStatusPending, due.AddDate(0, -1, 0), due.AddDate(0, 1, 0))

	outflow, err := s.GetCashOutflow(context.Background())
	require.NoError(t, err)
	require.Len(t, outflow, 6)

	assert.Equal(t, "Jun", outflow[0].Month)
	require.NotNil(t, outflow[0].Actual)
	assert.Equal(t, 100.0, *outflow[0].Actual)

	// avg = 150, forecast = round(150 * 10 * 1.1) = 1650
	assert.Equal(t, 1650.0, outflow[0].Forecast)

	for _, point := range outflow[1:] {
		assert.Nil(t, point.Actual, "month %s is in the future", point.Month)
		assert.Equal(t, 1650.0, point.Forecast)
	}
	assert.Equal(t, "Nov", outflow[5].Month)
}
