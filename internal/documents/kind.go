package documents

import "github.com/invoicedesk/invoicedesk/internal/numbering"

// Party names who a document is addressed to.
type Party string

const (
	PartyClient Party = "client"
	PartyVendor Party = "vendor"
)

// column returns the foreign key column holding the party.
func (p Party) column() string {
	if p == PartyVendor {
		return "vendor_id"
	}
	return "client_id"
}

// Kind describes one document type sharing the common document shape. Table
// and LineTable are interpolated into SQL and must stay constants.
type Kind struct {
	Name      string
	Path      string
	Type      numbering.TypeCode
	Table     numbering.Table
	LineTable string
	Party     Party
}

// HasLines reports whether the kind stores line items.
func (k Kind) HasLines() bool { return k.LineTable != "" }

var (
	Quotation = Kind{
		Name: "quotation", Path: "/quotations", Type: numbering.TypeQuotation,
		Table: numbering.TableQuotations, LineTable: "quotation_items", Party: PartyClient,
	}
	Proforma = Kind{
		Name: "proforma invoice", Path: "/proformas", Type: numbering.TypeProforma,
		Table: numbering.TableProformaInvoices, LineTable: "proforma_invoice_items", Party: PartyClient,
	}
	CreditNote = Kind{
		Name: "credit note", Path: "/credit-notes", Type: numbering.TypeCreditNote,
		Table: numbering.TableCreditNotes, Party: PartyClient,
	}
	DebitNote = Kind{
		Name: "debit note", Path: "/debit-notes", Type: numbering.TypeDebitNote,
		Table: numbering.TableDebitNotes, Party: PartyClient,
	}
	PurchaseOrder = Kind{
		Name: "purchase order", Path: "/purchase-orders", Type: numbering.TypePurchaseOrder,
		Table: numbering.TablePurchaseOrders, LineTable: "purchase_order_items", Party: PartyVendor,
	}
	DeliveryChalan = Kind{
		Name: "delivery chalan", Path: "/delivery-chalans", Type: numbering.TypeDeliveryChalan,
		Table: numbering.TableDeliveryChalans, Party: PartyClient,
	}
)

// Kinds lists every generic document type in route order.
var Kinds = []Kind{Quotation, Proforma, CreditNote, DebitNote, PurchaseOrder, DeliveryChalan}
