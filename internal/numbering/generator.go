package numbering

import (
	"fmt"
	"strings"
	"time"
)

// TypeCode is the short tag identifying a document kind inside a number.
type TypeCode string

const (
	TypeInvoice        TypeCode = "IV"
	TypeQuotation      TypeCode = "QO"
	TypeProforma       TypeCode = "PIV"
	TypePayment        TypeCode = "PMT"
	TypeCreditNote     TypeCode = "CN"
	TypeDebitNote      TypeCode = "DN"
	TypePurchaseOrder  TypeCode = "PO"
	TypeDeliveryChalan TypeCode = "DC"
)

var typeTables = map[TypeCode]Table{
	TypeInvoice:        TableInvoices,
	TypeQuotation:      TableQuotations,
	TypeProforma:       TableProformaInvoices,
	TypePayment:        TablePayments,
	TypeCreditNote:     TableCreditNotes,
	TypeDebitNote:      TableDebitNotes,
	TypePurchaseOrder:  TablePurchaseOrders,
	TypeDeliveryChalan: TableDeliveryChalans,
}

// ParseTypeCode accepts a type code in any case.
func ParseTypeCode(raw string) (TypeCode, bool) {
	code := TypeCode(strings.ToUpper(strings.TrimSpace(raw)))
	_, ok := typeTables[code]
	return code, ok
}

// Table returns the document table numbered with this type code.
func (c TypeCode) Table() (Table, bool) {
	t, ok := typeTables[c]
	return t, ok
}

// FinancialYearCode returns the April-to-March financial year containing t,
// encoded as the last two digits of the start and end years ("2526").
func FinancialYearCode(t time.Time) string {
	start := t.Year()
	if t.Month() < time.April {
		start--
	}
	return last2(start) + last2(start+1)
}

func last2(year int) string {
	return fmt.Sprintf("%02d", ((year%100)+100)%100)
}

// Format joins the components of a document number. The sequence is padded to
// three digits; larger sequences keep their natural width.
func Format(companyCode, yearCode string, typeCode TypeCode, sequence int64) (string, error) {
	switch {
	case companyCode == "":
		return "", fmt.Errorf("numbering: format: empty company code")
	case yearCode == "":
		return "", fmt.Errorf("numbering: format: empty year code")
	case typeCode == "":
		return "", fmt.Errorf("numbering: format: empty type code")
	case sequence < 1:
		return "", fmt.Errorf("numbering: format: invalid sequence %d", sequence)
	}
	return fmt.Sprintf("%s%03d", Scope{CompanyCode: companyCode, YearCode: yearCode, Type: typeCode}.Prefix(), sequence), nil
}

// Scope is the (company, financial year, type) triple a sequence runs in.
type Scope struct {
	CompanyCode string
	YearCode    string
	Type        TypeCode
}

// Prefix is the shared leading part of every number in the scope, including
// the trailing separator.
func (s Scope) Prefix() string {
	return s.CompanyCode + "-" + s.YearCode + "-" + string(s.Type) + "-"
}
