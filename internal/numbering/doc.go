// Package numbering assigns human-readable document numbers of the form
// {companyCode}-{yearCode}-{typeCode}-{sequence}.
//
// The generator half (FinancialYearCode, Format) is pure. The Resolver half
// talks to a Store that must be bound to the same transaction that later
// inserts the document, so the count, the uniqueness check and the insert
// observe one snapshot. The unique constraint on each document table remains
// the authority: losers of a concurrent race surface as *DuplicateNumberError.
package numbering
