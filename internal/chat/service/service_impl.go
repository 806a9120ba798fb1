// Package service implements the chat-with-data interpreter: intent matching,
// parameter extraction and response formatting over the analytics store.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
	"github.com/smallbiznis/spendlens/internal/chat/domain"
	"github.com/smallbiznis/spendlens/internal/observability/logger"
)

// Params defines chat service dependencies.
type Params struct {
	fx.In

	Store analyticsdomain.Store
	Log   *zap.Logger
}

type chatService struct {
	store analyticsdomain.Store
	log   *zap.Logger
}

// New creates the chat interpreter service.
func New(p Params) domain.Service {
	return &chatService{store: p.Store, log: p.Log}
}

// Process answers one free-text question. Each call is independent; the
// interpreter keeps no conversation state.
func (s *chatService) Process(ctx context.Context, query string) (domain.Response, error) {
	if strings.TrimSpace(query) == "" {
		return domain.Response{}, domain.ErrEmptyQuery
	}

	intent := Resolve(query)
	logger.WithContext(ctx, s.log).Debug("chat query resolved",
		zap.String("intent", string(intent)),
	)

	switch intent {
	case domain.IntentTotalSpend:
		return s.totalSpend(ctx, query)
	case domain.IntentTopVendors:
		return s.topVendors(ctx, query)
	case domain.IntentOverdueInvoices:
		return s.overdueInvoices(ctx)
	case domain.IntentPendingInvoices:
		return s.pendingInvoices(ctx)
	case domain.IntentInvoiceCount:
		return s.invoiceCount(ctx)
	case domain.IntentCategoryBreakdown:
		return s.categoryBreakdown(ctx)
	case domain.IntentAverageInvoice:
		return s.averageInvoice(ctx)
	default:
		return helpResponse(), nil
	}
}

func (s *chatService) totalSpend(ctx context.Context, query string) (domain.Response, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return domain.Response{}, err
	}

	days, hasWindow := extractDayWindow(query)
	message := fmt.Sprintf("The total spend year-to-date is $%s.", formatMoney(stats.TotalSpendYTD))
	if hasWindow {
		message = fmt.Sprintf("The total spend in the last %d days is $%s.", days, formatMoney(stats.TotalSpendYTD))
	}

	return domain.Response{
		Message:       message,
		SQL:           totalSpendSQL(days, hasWindow),
		Results:       []domain.Row{{"total": stats.TotalSpendYTD}},
		Visualization: domain.VisualizationNumber,
	}, nil
}

func (s *chatService) topVendors(ctx context.Context, query string) (domain.Response, error) {
	limit := extractTopLimit(query)
	vendors, err := s.store.GetTopVendors(ctx, limit)
	if err != nil {
		return domain.Response{}, err
	}

	rows := make([]domain.Row, 0, len(vendors))
	for _, v := range vendors {
		rows = append(rows, domain.Row{"vendor": v.Vendor, "spend": v.Spend})
	}

	return domain.Response{
		Message:       fmt.Sprintf("Here are the top %d vendors by spend:", limit),
		SQL:           topVendorsSQL(limit),
		Results:       rows,
		Visualization: domain.VisualizationTable,
	}, nil
}

func (s *chatService) overdueInvoices(ctx context.Context) (domain.Response, error) {
	invoices, err := s.store.ListInvoices(ctx, analyticsdomain.InvoiceFilter{
		Status: analyticsdomain.InvoiceStatusOverdue,
	})
	if err != nil {
		return domain.Response{}, err
	}

	// Vendor lookups fan out concurrently; rows are written by index so the
	// response keeps the store's ordering.
	rows := make([]domain.Row, len(invoices))
	g, gctx := errgroup.WithContext(ctx)
	for i, inv := range invoices {
		i, inv := i, inv
		g.Go(func() error {
			vendorName := "Unknown"
			vendor, err := s.store.GetVendor(gctx, inv.VendorID)
			switch {
			case err == nil:
				vendorName = vendor.Name
			case errors.Is(err, analyticsdomain.ErrNotFound):
				// keep the row, flag the vendor as unknown
			default:
				return err
			}
			rows[i] = domain.Row{
				"invoice_number": inv.InvoiceNumber,
				"vendor":         vendorName,
				"due_date":       inv.DueDate.Format("2006-01-02"),
				"amount":         analyticsdomain.Round2(inv.Amount),
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return domain.Response{}, err
	}

	return domain.Response{
		Message:       fmt.Sprintf("Found %d overdue invoices:", len(invoices)),
		SQL:           overdueSQL,
		Results:       rows,
		Visualization: domain.VisualizationTable,
	}, nil
}

func (s *chatService) pendingInvoices(ctx context.Context) (domain.Response, error) {
	invoices, err := s.store.ListInvoices(ctx, analyticsdomain.InvoiceFilter{
		Status: analyticsdomain.InvoiceStatusPending,
	})
	if err != nil {
		return domain.Response{}, err
	}

	total := decimal.Zero
	for _, inv := range invoices {
		total = total.Add(inv.Amount)
	}
	totalValue := analyticsdomain.Round2(total)

	return domain.Response{
		Message:       fmt.Sprintf("You have %d pending invoices totaling $%s.", len(invoices), formatMoney(totalValue)),
		SQL:           pendingSQL,
		Results:       []domain.Row{{"count": len(invoices), "total": totalValue}},
		Visualization: domain.VisualizationNumber,
	}, nil
}

func (s *chatService) invoiceCount(ctx context.Context) (domain.Response, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return domain.Response{}, err
	}

	return domain.Response{
		Message:       fmt.Sprintf("There are %d invoices in the system.", stats.TotalInvoices),
		SQL:           invoiceCountSQL,
		Results:       []domain.Row{{"count": stats.TotalInvoices}},
		Visualization: domain.VisualizationNumber,
	}, nil
}

func (s *chatService) categoryBreakdown(ctx context.Context) (domain.Response, error) {
	categories, err := s.store.GetCategorySpend(ctx)
	if err != nil {
		return domain.Response{}, err
	}

	rows := make([]domain.Row, 0, len(categories))
	for _, c := range categories {
		rows = append(rows, domain.Row{"category": c.Name, "spend": c.Value})
	}

	return domain.Response{
		Message:       "Here's the breakdown of spending by category:",
		SQL:           categorySpendSQL,
		Results:       rows,
		Visualization: domain.VisualizationTable,
	}, nil
}

func (s *chatService) averageInvoice(ctx context.Context) (domain.Response, error) {
	stats, err := s.store.GetStats(ctx)
	if err != nil {
		return domain.Response{}, err
	}

	return domain.Response{
		Message:       fmt.Sprintf("The average invoice value is $%s.", formatMoney(stats.AverageInvoiceValue)),
		SQL:           averageInvoiceSQL,
		Results:       []domain.Row{{"average": stats.AverageInvoiceValue}},
		Visualization: domain.VisualizationNumber,
	}, nil
}

func helpResponse() domain.Response {
	return domain.Response{
		Message:       helpMessage,
		Visualization: domain.VisualizationTable,
	}
}
