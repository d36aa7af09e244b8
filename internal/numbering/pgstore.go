package numbering

import (
	"context"
	"fmt"
	"strings"

	"github.com/invoicedesk/invoicedesk/internal/platform/db"
)

// PGStore implements Store and SequenceStore on PostgreSQL. Construct it with
// the pgx.Tx of the enclosing transaction.
type PGStore struct {
	db db.DBTX
}

// NewPGStore binds a store to a pool or transaction.
func NewPGStore(q db.DBTX) *PGStore {
	return &PGStore{db: q}
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// CountWithPrefix counts numbers in table starting with prefix.
func (s *PGStore) CountWithPrefix(ctx context.Context, table Table, prefix string) (int64, error) {
	if !table.Valid() {
		return 0, fmt.Errorf("numbering: unknown table %q", table)
	}
	query := fmt.Sprintf(`SELECT COUNT(*) FROM %s WHERE number LIKE $1 ESCAPE '\'`, table)
	var count int64
	if err := s.db.QueryRow(ctx, query, likeEscaper.Replace(prefix)+"%").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// NumberExists reports whether number is already used in table.
func (s *PGStore) NumberExists(ctx context.Context, table Table, number string) (bool, error) {
	if !table.Valid() {
		return false, fmt.Errorf("numbering: unknown table %q", table)
	}
	query := fmt.Sprintf(`SELECT EXISTS (SELECT 1 FROM %s WHERE number = $1)`, table)
	var exists bool
	if err := s.db.QueryRow(ctx, query, number).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// NextSequence advances the scope counter. The row lock taken by the upsert is
// held until the enclosing transaction ends, serialising writers per scope.
func (s *PGStore) NextSequence(ctx context.Context, scope Scope, existing int64) (int64, error) {
	var seq int64
	err := s.db.QueryRow(ctx, `
		INSERT INTO document_sequences (company_code, year_code, type_code, seq)
		VALUES ($1, $2, $3, $4 + 1)
		ON CONFLICT (company_code, year_code, type_code)
		DO UPDATE SET seq = GREATEST(document_sequences.seq, $4) + 1
		RETURNING seq
	`, scope.CompanyCode, scope.YearCode, string(scope.Type), existing).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

// PeekSequence reads the value NextSequence would return without writing.
func (s *PGStore) PeekSequence(ctx context.Context, scope Scope, existing int64) (int64, error) {
	var seq int64
	err := s.db.QueryRow(ctx, `
		SELECT GREATEST(COALESCE(MAX(seq), 0), $4) + 1
		FROM document_sequences
		WHERE company_code = $1 AND year_code = $2 AND type_code = $3
	`, scope.CompanyCode, scope.YearCode, string(scope.Type), existing).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}
