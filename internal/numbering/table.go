package numbering

// Table names a document table holding a UNIQUE "number" column. Only the
// constants below are accepted by stores because the name is interpolated
// into SQL.
type Table string

const (
	TableInvoices         Table = "invoices"
	TableQuotations       Table = "quotations"
	TableProformaInvoices Table = "proforma_invoices"
	TablePayments         Table = "payments"
	TableCreditNotes      Table = "credit_notes"
	TableDebitNotes       Table = "debit_notes"
	TablePurchaseOrders   Table = "purchase_orders"
	TableDeliveryChalans  Table = "delivery_chalans"
)

// Valid reports whether t is a known document table.
func (t Table) Valid() bool {
	for _, known := range typeTables {
		if known == t {
			return true
		}
	}
	return false
}
