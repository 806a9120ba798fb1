package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	analyticsdomain "github.com/smallbiznis/spendlens/internal/analytics/domain"
)

// invoiceRow is the vendor-name enriched listing shape the dashboard table
// renders.
type invoiceRow struct {
	ID            string  `json:"id"`
	Vendor        string  `json:"vendor"`
	Date          string  `json:"date"`
	InvoiceNumber string  `json:"invoiceNumber"`
	Amount        float64 `json:"amount"`
	Status        string  `json:"status"`
}

func (s *Server) ListInvoices(c *gin.Context) {
	status := analyticsdomain.InvoiceStatus(strings.TrimSpace(c.Query("status")))
	if status != "" && !status.Valid() {
		AbortWithError(c, newValidationError("status", "invalid_status", "invalid status"))
		return
	}

	invoices, err := s.store.ListInvoices(c.Request.Context(), analyticsdomain.InvoiceFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: status,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Vendor names are resolved once per distinct vendor, not per invoice.
	names := make(map[string]string)
	rows := make([]invoiceRow, 0, len(invoices))
	for _, inv := range invoices {
		key := inv.VendorID.String()
		name, ok := names[key]
		if !ok {
			vendor, err := s.store.GetVendor(c.Request.Context(), inv.VendorID)
			switch {
			case err == nil:
				name = vendor.Name
			case isNotFoundError(err):
				name = "Unknown"
			default:
				AbortWithError(c, err)
				return
			}
			names[key] = name
		}
		rows = append(rows, invoiceRow{
			ID:            inv.ID.String(),
			Vendor:        name,
			Date:          inv.DateIssued.Format(dateOnlyLayout),
			InvoiceNumber: inv.InvoiceNumber,
			Amount:        analyticsdomain.Round2(inv.Amount),
			Status:        string(inv.Status),
		})
	}

	c.JSON(http.StatusOK, rows)
}

type createLineItemRequest struct {
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
}

type createInvoiceRequest struct {
	VendorID      string                  `json:"vendor_id"`
	CustomerID    string                  `json:"customer_id"`
	InvoiceNumber string                  `json:"invoice_number"`
	DateIssued    string                  `json:"date_issued"`
	DueDate       string                  `json:"due_date"`
	Amount        decimal.Decimal         `json:"amount"`
	Status        string                  `json:"status"`
	LineItems     []createLineItemRequest `json:"line_items"`
}

func (s *Server) CreateInvoice(c *gin.Context) {
	var req createInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	vendorID, err := parseSnowflakeID(req.VendorID)
	if err != nil {
		AbortWithError(c, newValidationError("vendor_id", "invalid_vendor_id", "invalid vendor_id"))
		return
	}

	customerID, err := parseOptionalSnowflakeID(req.CustomerID)
	if err != nil {
		AbortWithError(c, newValidationError("customer_id", "invalid_customer_id", "invalid customer_id"))
		return
	}

	invoiceNumber := strings.TrimSpace(req.InvoiceNumber)
	if invoiceNumber == "" {
		AbortWithError(c, newValidationError("invoice_number", "invalid_invoice_number", "invoice_number is required"))
		return
	}

	dateIssued, err := parseDate(req.DateIssued)
	if err != nil {
		AbortWithError(c, newValidationError("date_issued", "invalid_date_issued", "invalid date_issued"))
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		AbortWithError(c, newValidationError("due_date", "invalid_due_date", "invalid due_date"))
		return
	}

	status := analyticsdomain.InvoiceStatus(strings.TrimSpace(req.Status))
	if status == "" {
		status = analyticsdomain.InvoiceStatusPending
	}

	// When line items come with the invoice the amount is their decimal sum;
	// an explicitly supplied amount wins otherwise.
	amount := req.Amount
	if amount.IsZero() && len(req.LineItems) > 0 {
		amount = lineItemTotal(req.LineItems)
	}

	invoice := &analyticsdomain.Invoice{
		ID:            s.genID.Generate(),
		VendorID:      vendorID,
		CustomerID:    customerID,
		InvoiceNumber: invoiceNumber,
		DateIssued:    dateIssued,
		DueDate:       dueDate,
		Amount:        amount,
		Status:        status,
		CreatedAt:     nowUTC(),
	}
	if err := s.store.CreateInvoice(c.Request.Context(), invoice); err != nil {
		AbortWithError(c, err)
		return
	}

	for _, item := range req.LineItems {
		lineItem := &analyticsdomain.LineItem{
			ID:          s.genID.Generate(),
			InvoiceID:   invoice.ID,
			Description: strings.TrimSpace(item.Description),
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
		}
		if err := s.store.CreateLineItem(c.Request.Context(), lineItem); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	c.JSON(http.StatusCreated, invoice)
}

func (s *Server) DeleteInvoice(c *gin.Context) {
	invoiceID, err := parseSnowflakeID(c.Param("id"))
	if err != nil {
		AbortWithError(c, newValidationError("id", "invalid_id", "invalid invoice id"))
		return
	}

	if err := s.store.DeleteInvoice(c.Request.Context(), invoiceID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func lineItemTotal(items []createLineItemRequest) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}
