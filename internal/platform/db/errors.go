package db

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

const (
	codeUniqueViolation      = "23505"
	codeForeignKeyViolation  = "23503"
	codeSerializationFailure = "40001"
)

// IsUniqueViolation reports whether err is a Postgres unique constraint violation.
func IsUniqueViolation(err error) bool {
	return pgCode(err) == codeUniqueViolation
}

// IsForeignKeyViolation reports whether err is a Postgres foreign key violation.
func IsForeignKeyViolation(err error) bool {
	return pgCode(err) == codeForeignKeyViolation
}

// IsSerializationFailure reports whether a RepeatableRead transaction lost a
// write-write race and can be retried by the caller.
func IsSerializationFailure(err error) bool {
	return pgCode(err) == codeSerializationFailure
}

// ConstraintName returns the violated constraint, or "" when err is not a PgError.
func ConstraintName(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.ConstraintName
	}
	return ""
}

// ForeignKeyColumn returns the column of a "<table>_<column>_fkey" constraint
// violated on table, or "" when err is not such a violation.
func ForeignKeyColumn(err error, table string) string {
	if !IsForeignKeyViolation(err) {
		return ""
	}
	column, ok := strings.CutPrefix(ConstraintName(err), table+"_")
	if !ok {
		return ""
	}
	column, ok = strings.CutSuffix(column, "_fkey")
	if !ok {
		return ""
	}
	return column
}

// ForeignKeyError reports a foreign key violation on table as a validation
// error naming the offending column.
func ForeignKeyError(err error, table string) error {
	column := ForeignKeyColumn(err, table)
	if column == "" {
		column = "record"
	}
	return fmt.Errorf("%w: referenced %s does not exist", shared.ErrValidation, column)
}

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
