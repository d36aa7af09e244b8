package numbering

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// CompanyConfig carries the company settings the resolver depends on. It is
// passed per call rather than read from ambient state.
type CompanyConfig struct {
	CompanyCode string `json:"company_code"`
}

// ConfigSource yields the current company configuration. A nil config with a
// nil error means no profile has been set up.
type ConfigSource interface {
	CompanyConfig(ctx context.Context) (*CompanyConfig, error)
}

// Store is the persistence the resolver needs. Implementations must be bound
// to the transaction that will insert the document.
type Store interface {
	CountWithPrefix(ctx context.Context, table Table, prefix string) (int64, error)
	NumberExists(ctx context.Context, table Table, number string) (bool, error)
}

// SequenceStore keeps a monotonic counter per scope. existing is the number
// of documents already in the scope; the counter never issues a value at or
// below it, which lets the counter start cleanly on data numbered by count.
// PeekSequence returns what NextSequence would issue without advancing.
type SequenceStore interface {
	NextSequence(ctx context.Context, scope Scope, existing int64) (int64, error)
	PeekSequence(ctx context.Context, scope Scope, existing int64) (int64, error)
}

// Strategy selects how the next sequence in a scope is derived.
type Strategy string

const (
	// StrategyCount derives the sequence as count(existing numbers in scope)+1.
	// Deleting a document lets its successor's sequence be issued again.
	StrategyCount Strategy = "count"
	// StrategySequence uses a per-scope counter that never goes backwards.
	StrategySequence Strategy = "sequence"
)

// ParseStrategy validates a configured strategy name. Empty means count.
func ParseStrategy(raw string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(raw))) {
	case "", StrategyCount:
		return StrategyCount, nil
	case StrategySequence:
		return StrategySequence, nil
	}
	return "", fmt.Errorf("numbering: unknown strategy %q", raw)
}

// ConflictObserver is notified when a candidate collides with an existing number.
type ConflictObserver interface {
	NumberConflict(typ TypeCode)
}

// Resolver produces the next document number in a scope.
type Resolver struct {
	strategy Strategy
	observer ConflictObserver
}

// NewResolver constructs a Resolver. observer may be nil.
func NewResolver(strategy Strategy, observer ConflictObserver) *Resolver {
	if strategy == "" {
		strategy = StrategyCount
	}
	return &Resolver{strategy: strategy, observer: observer}
}

// Strategy returns the configured strategy.
func (r *Resolver) Strategy() Strategy {
	return r.strategy
}

// Next computes, formats and uniqueness-checks the next number for typ in the
// financial year containing date. It never retries: a collision is returned as
// *DuplicateNumberError.
func (r *Resolver) Next(ctx context.Context, store Store, cfg *CompanyConfig, typ TypeCode, date time.Time) (string, error) {
	table, ok := typ.Table()
	if !ok {
		return "", fmt.Errorf("numbering: unknown type code %q", typ)
	}
	candidate, err := r.candidate(ctx, store, cfg, table, typ, date)
	if err != nil {
		return "", err
	}
	if err := r.ensureUnique(ctx, store, table, typ, candidate); err != nil {
		return "", err
	}
	return candidate, nil
}

// Preview computes the number Next would issue for the same store state,
// without the uniqueness check and without advancing any counter.
func (r *Resolver) Preview(ctx context.Context, store Store, cfg *CompanyConfig, typ TypeCode, date time.Time) (string, error) {
	table, ok := typ.Table()
	if !ok {
		return "", fmt.Errorf("numbering: unknown type code %q", typ)
	}
	return r.sequence(ctx, store, cfg, table, typ, date, false)
}

// Claim checks a caller-supplied number for uniqueness in the table of typ.
func (r *Resolver) Claim(ctx context.Context, store Store, typ TypeCode, number string) error {
	table, ok := typ.Table()
	if !ok {
		return fmt.Errorf("numbering: unknown type code %q", typ)
	}
	return r.ensureUnique(ctx, store, table, typ, number)
}

func (r *Resolver) candidate(ctx context.Context, store Store, cfg *CompanyConfig, table Table, typ TypeCode, date time.Time) (string, error) {
	return r.sequence(ctx, store, cfg, table, typ, date, true)
}

func (r *Resolver) sequence(ctx context.Context, store Store, cfg *CompanyConfig, table Table, typ TypeCode, date time.Time, advance bool) (string, error) {
	scope, err := scopeFor(cfg, typ, date)
	if err != nil {
		return "", err
	}

	count, err := store.CountWithPrefix(ctx, table, scope.Prefix())
	if err != nil {
		return "", fmt.Errorf("numbering: count %s: %w", table, err)
	}
	seq := count + 1
	if r.strategy == StrategySequence {
		counter, ok := store.(SequenceStore)
		if !ok {
			return "", ErrStrategyUnsupported
		}
		if advance {
			seq, err = counter.NextSequence(ctx, scope, count)
		} else {
			seq, err = counter.PeekSequence(ctx, scope, count)
		}
		if err != nil {
			return "", fmt.Errorf("numbering: next sequence %s: %w", scope.Prefix(), err)
		}
	}
	return Format(scope.CompanyCode, scope.YearCode, typ, seq)
}

func (r *Resolver) ensureUnique(ctx context.Context, store Store, table Table, typ TypeCode, number string) error {
	exists, err := store.NumberExists(ctx, table, number)
	if err != nil {
		return fmt.Errorf("numbering: lookup %s: %w", number, err)
	}
	if exists {
		if r.observer != nil {
			r.observer.NumberConflict(typ)
		}
		return &DuplicateNumberError{Table: table, Number: number}
	}
	return nil
}

func scopeFor(cfg *CompanyConfig, typ TypeCode, date time.Time) (Scope, error) {
	if cfg == nil {
		return Scope{}, &ConfigurationError{Reason: "no company profile"}
	}
	code := strings.TrimSpace(cfg.CompanyCode)
	if code == "" {
		return Scope{}, &ConfigurationError{Reason: "profile has no company code"}
	}
	return Scope{CompanyCode: code, YearCode: FinancialYearCode(date), Type: typ}, nil
}
