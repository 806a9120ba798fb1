package service

import (
	"fmt"

	"github.com/dustin/go-humanize"
)

// The SQL below is display text only. It is kept in step with what the store
// actually computes (same filters, limit and grouping) so the shown query
// matches the real answer; it is never sent to a database.

func totalSpendSQL(days int, hasWindow bool) string {
	if hasWindow {
		return fmt.Sprintf("SELECT SUM(CAST(amount AS DECIMAL)) as total FROM invoices WHERE date_issued >= CURRENT_DATE - INTERVAL '%d days';", days)
	}
	return "SELECT SUM(CAST(amount AS DECIMAL)) as total FROM invoices;"
}

func topVendorsSQL(limit int) string {
	return fmt.Sprintf(`SELECT v.name as vendor, SUM(CAST(i.amount AS DECIMAL)) as spend
FROM invoices i
INNER JOIN vendors v ON i.vendor_id = v.id
GROUP BY v.name
ORDER BY spend DESC
LIMIT %d;`, limit)
}

const overdueSQL = `SELECT i.invoice_number, v.name as vendor, i.due_date, i.amount
FROM invoices i
INNER JOIN vendors v ON i.vendor_id = v.id
WHERE i.status = 'overdue'
ORDER BY i.due_date;`

const pendingSQL = `SELECT COUNT(*) as count, SUM(CAST(amount AS DECIMAL)) as total
FROM invoices
WHERE status = 'pending';`

const invoiceCountSQL = `SELECT COUNT(*) as count FROM invoices;`

const categorySpendSQL = `SELECT v.category, SUM(CAST(i.amount AS DECIMAL)) as spend
FROM invoices i
INNER JOIN vendors v ON i.vendor_id = v.id
GROUP BY v.category
ORDER BY spend DESC;`

const averageInvoiceSQL = `SELECT AVG(CAST(amount AS DECIMAL)) as average FROM invoices;`

const helpMessage = `I can help you analyze your data! Try asking:

• "What's the total spend in the last 90 days?"
• "Show me the top 5 vendors by spend"
• "List all overdue invoices"
• "How many pending invoices do I have?"
• "Show spending by category"
• "What's the average invoice value?"`

// formatMoney renders a dollar figure with comma grouping, e.g. 12345.6 ->
// "12,345.6". Trailing zeros are trimmed the way the dashboard displays them.
func formatMoney(value float64) string {
	return humanize.CommafWithDigits(value, 2)
}
