// Package memstore is the map-backed Store provider. It preserves insertion
// order so aggregates are deterministic without a database.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
)

type Store struct {
	mu         sync.RWMutex
	docsFactor float64
	clock      clock.Clock

	vendors     map[snowflake.ID]domain.Vendor
	vendorOrder []snowflake.ID

	customers     map[snowflake.ID]domain.Customer
	customerOrder []snowflake.ID

	invoices       map[snowflake.ID]domain.Invoice
	invoiceOrder   []snowflake.ID
	invoiceNumbers map[string]snowflake.ID

	lineItems map[snowflake.ID][]domain.LineItem
	payments  map[snowflake.ID][]domain.Payment
}

// New builds an empty in-memory store.
func New(docsFactor float64, clk clock.Clock) *Store {
	if docsFactor <= 0 {
		docsFactor = 1.17
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Store{
		docsFactor:     docsFactor,
		clock:          clk,
		vendors:        make(map[snowflake.ID]domain.Vendor),
		customers:      make(map[snowflake.ID]domain.Customer),
		invoices:       make(map[snowflake.ID]domain.Invoice),
		invoiceNumbers: make(map[string]snowflake.ID),
		lineItems:      make(map[snowflake.ID][]domain.LineItem),
		payments:       make(map[snowflake.ID][]domain.Payment),
	}
}

func (s *Store) GetVendor(ctx context.Context, id snowflake.ID) (*domain.Vendor, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	vendor, ok := s.vendors[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &vendor, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Vendor, 0, len(s.vendorOrder))
	for _, id := range s.vendorOrder {
		out = append(out, s.vendors[id])
	}
	return out, nil
}

func (s *Store) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.vendors[vendor.ID] = *vendor
	s.vendorOrder = append(s.vendorOrder, vendor.ID)
	return nil
}

func (s *Store) GetCustomer(ctx context.Context, id snowflake.ID) (*domain.Customer, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customerOrder))
	for _, id := range s.customerOrder {
		out = append(out, s.customers[id])
	}
	return out, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[customer.ID] = *customer
	s.customerOrder = append(s.customerOrder, customer.ID)
	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	invoice, ok := s.invoices[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	out := make([]domain.Invoice, 0, len(s.invoiceOrder))
	for _, id := range s.invoiceOrder {
		invoice := s.invoices[id]
		if search != "" && !strings.Contains(strings.ToLower(invoice.InvoiceNumber), search) {
			continue
		}
		if filter.Status != "" && invoice.Status != filter.Status {
			continue
		}
		out = append(out, invoice)
	}
	return out, nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice *domain.Invoice) error {
	_ = ctx
	if err := domain.ValidateInvoice(invoice); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.vendors[invoice.VendorID]; !ok {
		return domain.ErrVendorNotFound
	}
	if invoice.CustomerID != nil {
		if _, ok := s.customers[*invoice.CustomerID]; !ok {
			return domain.ErrCustomerNotFound
		}
	}
	if _, ok := s.invoiceNumbers[invoice.InvoiceNumber]; ok {
		return domain.ErrDuplicateInvoiceNumber
	}

	s.invoices[invoice.ID] = *invoice
	s.invoiceOrder = append(s.invoiceOrder, invoice.ID)
	s.invoiceNumbers[invoice.InvoiceNumber] = invoice.ID
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id snowflake.ID) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()

	invoice, ok := s.invoices[id]
	if !ok {
		return domain.ErrNotFound
	}

	delete(s.invoices, id)
	delete(s.invoiceNumbers, invoice.InvoiceNumber)
	delete(s.lineItems, id)
	delete(s.payments, id)
	for i, existing := range s.invoiceOrder {
		if existing == id {
			s.invoiceOrder = append(s.invoiceOrder[:i], s.invoiceOrder[i+1:]...)
			break
		}
	}
	return nil
}

func (s *Store) ListLineItems(ctx context.Context, invoiceID snowflake.ID) ([]domain.LineItem, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.lineItems[invoiceID]
	out := make([]domain.LineItem, len(items))
	copy(out, items)
	return out, nil
}

func (s *Store) CreateLineItem(ctx context.Context, item *domain.LineItem) error {
	_ = ctx
	if err := domain.ValidateLineItem(item); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[item.InvoiceID]; !ok {
		return domain.ErrNotFound
	}
	s.lineItems[item.InvoiceID] = append(s.lineItems[item.InvoiceID], *item)
	return nil
}

func (s *Store) ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payment, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	payments := s.payments[invoiceID]
	out := make([]domain.Payment, len(payments))
	copy(out, payments)
	return out, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	_ = ctx
	if err := domain.ValidatePayment(payment); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.invoices[payment.InvoiceID]; !ok {
		return domain.ErrNotFound
	}
	s.payments[payment.InvoiceID] = append(s.payments[payment.InvoiceID], *payment)
	return nil
}

func (s *Store) GetStats(ctx context.Context) (domain.Stats, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, id := range s.invoiceOrder {
		total = total.Add(s.invoices[id].Amount)
	}

	count := len(s.invoiceOrder)
	stats := domain.Stats{
		TotalSpendYTD:     domain.Round2(total),
		TotalInvoices:     count,
		DocumentsUploaded: int(float64(count) * s.docsFactor),
	}
	if count > 0 {
		stats.AverageInvoiceValue = domain.Round2(total.Div(decimal.NewFromInt(int64(count))))
	}
	return stats, nil
}

func (s *Store) GetInvoiceTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	volumes := make(map[time.Month]int)
	values := make(map[time.Month]decimal.Decimal)
	for _, id := range s.invoiceOrder {
		invoice := s.invoices[id]
		month := invoice.DateIssued.Month()
		volumes[month]++
		values[month] = values[month].Add(invoice.Amount)
	}

	out := make([]domain.TrendPoint, 0, len(volumes))
	for month := time.January; month <= time.December; month++ {
		if volumes[month] == 0 {
			continue
		}
		out = append(out, domain.TrendPoint{
			Month:  month.String()[:3],
			Volume: volumes[month],
			Value:  domain.Round2(values[month]),
		})
	}
	return out, nil
}

func (s *Store) GetTopVendors(ctx context.Context, limit int) ([]domain.VendorSpend, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	// First-seen order so equal spends keep a stable position.
	names := make([]string, 0)
	spend := make(map[string]decimal.Decimal)
	for _, id := range s.invoiceOrder {
		invoice := s.invoices[id]
		vendor, ok := s.vendors[invoice.VendorID]
		if !ok {
			continue
		}
		if _, seen := spend[vendor.Name]; !seen {
			names = append(names, vendor.Name)
		}
		spend[vendor.Name] = spend[vendor.Name].Add(invoice.Amount)
	}

	sort.SliceStable(names, func(i, j int) bool {
		return spend[names[i]].GreaterThan(spend[names[j]])
	})

	if limit > 0 && len(names) > limit {
		names = names[:limit]
	}

	out := make([]domain.VendorSpend, 0, len(names))
	for _, name := range names {
		out = append(out, domain.VendorSpend{Vendor: name, Spend: domain.Round2(spend[name])})
	}
	return out, nil
}

func (s *Store) GetCategorySpend(ctx context.Context) ([]domain.CategorySpend, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	categories := make([]string, 0)
	spend := make(map[string]decimal.Decimal)
	for _, id := range s.invoiceOrder {
		invoice := s.invoices[id]
		vendor, ok := s.vendors[invoice.VendorID]
		if !ok {
			continue
		}
		if _, seen := spend[vendor.Category]; !seen {
			categories = append(categories, vendor.Category)
		}
		spend[vendor.Category] = spend[vendor.Category].Add(invoice.Amount)
	}

	out := make([]domain.CategorySpend, 0, len(categories))
	for _, category := range categories {
		out = append(out, domain.CategorySpend{Name: category, Value: domain.Round2(spend[category])})
	}
	return out, nil
}

func (s *Store) GetCashOutflow(ctx context.Context) ([]domain.OutflowPoint, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := decimal.Zero
	for _, id := range s.invoiceOrder {
		total = total.Add(s.invoices[id].Amount)
	}
	avg := decimal.Zero
	if len(s.invoiceOrder) > 0 {
		avg = total.Div(decimal.NewFromInt(int64(len(s.invoiceOrder))))
	}

	now := s.clock.Now()
	out := make([]domain.OutflowPoint, 0, 6)
	for i := 0; i < 6; i++ {
		monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, i, 0)
		point := domain.OutflowPoint{
			Month:    monthStart.Month().String()[:3],
			Forecast: forecastOutflow(avg),
		}
		if !monthStart.After(now) {
			actual := decimal.Zero
			matched := false
			for _, id := range s.invoiceOrder {
				due := s.invoices[id].DueDate
				if due.Year() == monthStart.Year() && due.Month() == monthStart.Month() {
					actual = actual.Add(s.invoices[id].Amount)
					matched = true
				}
			}
			if matched {
				value := domain.Round2(actual)
				point.Actual = &value
			}
		}
		out = append(out, point)
	}
	return out, nil
}

// forecastOutflow projects one month of outflow from the average invoice
// value. The uplift is a fixed 1.1 so repeated calls agree.
func forecastOutflow(avg decimal.Decimal) float64 {
	projected := avg.Mul(decimal.NewFromInt(10)).Mul(decimal.NewFromFloat(1.1))
	value, _ := projected.Round(0).Float64()
	return value
}

var _ domain.Store = (*Store)(nil)
