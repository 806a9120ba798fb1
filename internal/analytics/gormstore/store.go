// Package gormstore is the database-backed Store provider.
package gormstore

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/clock"
	pkgdb "github.com/smallbiznis/spendlens/pkg/db"
	"gorm.io/gorm"
)

type Store struct {
	db         *gorm.DB
	docsFactor float64
	clock      clock.Clock
}

// New builds a store over the given gorm handle.
func New(db *gorm.DB, docsFactor float64, clk clock.Clock) *Store {
	if docsFactor <= 0 {
		docsFactor = 1.17
	}
	if clk == nil {
		clk = clock.NewSystemClock()
	}
	return &Store{db: db, docsFactor: docsFactor, clock: clk}
}

func (s *Store) GetVendor(ctx context.Context, id snowflake.ID) (*domain.Vendor, error) {
	var vendor domain.Vendor
	err := s.db.WithContext(ctx).First(&vendor, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &vendor, nil
}

func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	var vendors []domain.Vendor
	if err := s.db.WithContext(ctx).Order("id").Find(&vendors).Error; err != nil {
		return nil, err
	}
	return vendors, nil
}

func (s *Store) CreateVendor(ctx context.Context, vendor *domain.Vendor) error {
	return s.db.WithContext(ctx).Create(vendor).Error
}

func (s *Store) GetCustomer(ctx context.Context, id snowflake.ID) (*domain.Customer, error) {
	var customer domain.Customer
	err := s.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	var customers []domain.Customer
	if err := s.db.WithContext(ctx).Order("id").Find(&customers).Error; err != nil {
		return nil, err
	}
	return customers, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer *domain.Customer) error {
	return s.db.WithContext(ctx).Create(customer).Error
}

func (s *Store) GetInvoice(ctx context.Context, id snowflake.ID) (*domain.Invoice, error) {
	var invoice domain.Invoice
	err := s.db.WithContext(ctx).First(&invoice, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return &invoice, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter domain.InvoiceFilter) ([]domain.Invoice, error) {
	stmt := s.db.WithContext(ctx).Model(&domain.Invoice{})
	if filter.Search != "" {
		stmt = stmt.Where("invoice_number LIKE ?", "%"+filter.Search+"%")
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}

	var invoices []domain.Invoice
	if err := stmt.Order("date_issued DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	return invoices, nil
}

func (s *Store) CreateInvoice(ctx context.Context, invoice *domain.Invoice) error {
	if err := domain.ValidateInvoice(invoice); err != nil {
		return err
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&domain.Vendor{}).Where("id = ?", invoice.VendorID).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return domain.ErrVendorNotFound
	}
	if invoice.CustomerID != nil {
		if err := s.db.WithContext(ctx).Model(&domain.Customer{}).Where("id = ?", *invoice.CustomerID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return domain.ErrCustomerNotFound
		}
	}

	if err := s.db.WithContext(ctx).Create(invoice).Error; err != nil {
		if pkgdb.IsDuplicateKeyErr(err) {
			return domain.ErrDuplicateInvoiceNumber
		}
		return err
	}
	return nil
}

func (s *Store) DeleteInvoice(ctx context.Context, id snowflake.ID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`DELETE FROM payments WHERE invoice_id = ?`, id).Error; err != nil {
			return err
		}
		if err := tx.Exec(`DELETE FROM line_items WHERE invoice_id = ?`, id).Error; err != nil {
			return err
		}
		result := tx.Exec(`DELETE FROM invoices WHERE id = ?`, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (s *Store) ListLineItems(ctx context.Context, invoiceID snowflake.ID) ([]domain.LineItem, error) {
	var items []domain.LineItem
	if err := s.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Store) CreateLineItem(ctx context.Context, item *domain.LineItem) error {
	if err := domain.ValidateLineItem(item); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *Store) ListPayments(ctx context.Context, invoiceID snowflake.ID) ([]domain.Payment, error) {
	var payments []domain.Payment
	if err := s.db.WithContext(ctx).Where("invoice_id = ?", invoiceID).Order("id").Find(&payments).Error; err != nil {
		return nil, err
	}
	return payments, nil
}

func (s *Store) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	if err := domain.ValidatePayment(payment); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Create(payment).Error
}

func (s *Store) GetStats(ctx context.Context) (domain.Stats, error) {
	var row struct {
		TotalSpend decimal.Decimal
		Count      int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total_spend, COUNT(*) AS count FROM invoices`,
	).Scan(&row).Error
	if err != nil {
		return domain.Stats{}, err
	}

	stats := domain.Stats{
		TotalSpendYTD:     domain.Round2(row.TotalSpend),
		TotalInvoices:     int(row.Count),
		DocumentsUploaded: int(float64(row.Count) * s.docsFactor),
	}
	if row.Count > 0 {
		stats.AverageInvoiceValue = domain.Round2(row.TotalSpend.Div(decimal.NewFromInt(row.Count)))
	}
	return stats, nil
}

// GetInvoiceTrends buckets invoices by issue month. Bucketing happens in Go
// because month extraction is not portable across the supported dialects.
func (s *Store) GetInvoiceTrends(ctx context.Context) ([]domain.TrendPoint, error) {
	var rows []struct {
		DateIssued time.Time
		Amount     decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT date_issued, amount FROM invoices`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	volumes := make(map[time.Month]int)
	values := make(map[time.Month]decimal.Decimal)
	for _, row := range rows {
		month := row.DateIssued.Month()
		volumes[month]++
		values[month] = values[month].Add(row.Amount)
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
	if limit <= 0 {
		limit = 5
	}

	var rows []struct {
		Vendor string
		Spend  decimal.Decimal
	}
	// Secondary sort on MIN(v.id): snowflake IDs grow with creation time, so
	// equal spends resolve in insertion order.
	err := s.db.WithContext(ctx).Raw(
		`SELECT v.name AS vendor, COALESCE(SUM(i.amount), 0) AS spend
		 FROM invoices i
		 INNER JOIN vendors v ON i.vendor_id = v.id
		 GROUP BY v.name
		 ORDER BY spend DESC, MIN(v.id) ASC
		 LIMIT ?`,
		limit,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.VendorSpend, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.VendorSpend{Vendor: row.Vendor, Spend: domain.Round2(row.Spend)})
	}
	return out, nil
}

func (s *Store) GetCategorySpend(ctx context.Context) ([]domain.CategorySpend, error) {
	var rows []struct {
		Name  string
		Value decimal.Decimal
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT v.category AS name, COALESCE(SUM(i.amount), 0) AS value
		 FROM invoices i
		 INNER JOIN vendors v ON i.vendor_id = v.id
		 GROUP BY v.category
		 ORDER BY value DESC`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := make([]domain.CategorySpend, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.CategorySpend{Name: row.Name, Value: domain.Round2(row.Value)})
	}
	return out, nil
}

func (s *Store) GetCashOutflow(ctx context.Context) ([]domain.OutflowPoint, error) {
	var avgRow struct {
		Total decimal.Decimal
		Count int64
	}
	err := s.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(amount), 0) AS total, COUNT(*) AS count FROM invoices`,
	).Scan(&avgRow).Error
	if err != nil {
		return nil, err
	}
	avg := decimal.Zero
	if avgRow.Count > 0 {
		avg = avgRow.Total.Div(decimal.NewFromInt(avgRow.Count))
	}

	var rows []struct {
		DueDate time.Time
		Amount  decimal.Decimal
	}
	err = s.db.WithContext(ctx).Raw(
		`SELECT due_date, amount FROM invoices`,
	).Scan(&rows).Error
	if err != nil {
		return nil, err
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
			for _, row := range rows {
				if row.DueDate.Year() == monthStart.Year() && row.DueDate.Month() == monthStart.Month() {
					actual = actual.Add(row.Amount)
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
