package numbering

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/invoicedesk/invoicedesk/internal/shared"
)

// memoryStore mimics a table with a unique number column plus the scope counters.
type memoryStore struct {
	mu       sync.Mutex
	numbers  map[Table]map[string]bool
	counters map[Scope]int64
}

func newMemoryStore() *memoryStore {
	return &memoryStore{numbers: map[Table]map[string]bool{}, counters: map[Scope]int64{}}
}

func (m *memoryStore) CountWithPrefix(_ context.Context, table Table, prefix string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for number := range m.numbers[table] {
		if strings.HasPrefix(number, prefix) {
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) NumberExists(_ context.Context, table Table, number string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.numbers[table][number], nil
}

func (m *memoryStore) NextSequence(_ context.Context, scope Scope, existing int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	next := m.counters[scope]
	if existing > next {
		next = existing
	}
	next++
	m.counters[scope] = next
	return next, nil
}

func (m *memoryStore) PeekSequence(_ context.Context, scope Scope, existing int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return max(m.counters[scope], existing) + 1, nil
}

// insert enforces the unique constraint the way the database would.
func (m *memoryStore) insert(table Table, number string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.numbers[table] == nil {
		m.numbers[table] = map[string]bool{}
	}
	if m.numbers[table][number] {
		return &DuplicateNumberError{Table: table, Number: number}
	}
	m.numbers[table][number] = true
	return nil
}

func (m *memoryStore) remove(table Table, number string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.numbers[table], number)
}

type countingObserver struct{ conflicts map[TypeCode]int }

func (o *countingObserver) NumberConflict(typ TypeCode) { o.conflicts[typ]++ }

var acme = &CompanyConfig{CompanyCode: "AB"}

func TestResolverIssuesContiguousSequence(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategyCount, nil)
	on := date(2026, 1, 15)

	for i := 1; i <= 12; i++ {
		number, err := r.Next(ctx, store, acme, TypeInvoice, on)
		require.NoError(t, err)
		want, _ := Format("AB", "2526", TypeInvoice, int64(i))
		require.Equal(t, want, number)
		require.NoError(t, store.insert(TableInvoices, number))
	}
}

func TestResolverScopesAreIndependent(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategyCount, nil)

	require.NoError(t, store.insert(TableInvoices, "AB-2425-IV-001"))
	require.NoError(t, store.insert(TableInvoices, "AB-2425-IV-002"))

	number, err := r.Next(ctx, store, acme, TypeInvoice, date(2025, 4, 1))
	require.NoError(t, err)
	require.Equal(t, "AB-2526-IV-001", number)

	number, err = r.Next(ctx, store, acme, TypeQuotation, date(2025, 3, 1))
	require.NoError(t, err)
	require.Equal(t, "AB-2425-QO-001", number)
}

func TestResolverRequiresCompanyCode(t *testing.T) {
	ctx := context.Background()
	r := NewResolver(StrategyCount, nil)

	_, err := r.Next(ctx, newMemoryStore(), nil, TypeInvoice, date(2026, 1, 1))
	var cfgErr *ConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	require.ErrorIs(t, err, shared.ErrConfiguration)
	require.ErrorIs(t, err, ErrCompanyCodeNotSet)
	require.Contains(t, err.Error(), "company code not set")

	_, err = r.Next(ctx, newMemoryStore(), &CompanyConfig{CompanyCode: "  "}, TypeInvoice, date(2026, 1, 1))
	require.ErrorAs(t, err, &cfgErr)
}

func TestResolverRejectsUnknownType(t *testing.T) {
	_, err := NewResolver(StrategyCount, nil).Next(context.Background(), newMemoryStore(), acme, "ZZ", date(2026, 1, 1))
	require.Error(t, err)
}

func TestResolverDetectsCollisionAfterDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	obs := &countingObserver{conflicts: map[TypeCode]int{}}
	r := NewResolver(StrategyCount, obs)

	for _, n := range []string{"AB-2526-IV-001", "AB-2526-IV-002", "AB-2526-IV-003"} {
		require.NoError(t, store.insert(TableInvoices, n))
	}
	store.remove(TableInvoices, "AB-2526-IV-002")

	// Two documents remain, so the count strategy proposes 003, which is taken.
	_, err := r.Next(ctx, store, acme, TypeInvoice, date(2025, 6, 1))
	var dup *DuplicateNumberError
	require.ErrorAs(t, err, &dup)
	require.Equal(t, "AB-2526-IV-003", dup.Number)
	require.ErrorIs(t, err, shared.ErrDuplicate)
	require.ErrorIs(t, err, ErrDuplicateNumber)
	require.Equal(t, 1, obs.conflicts[TypeInvoice])
}

func TestResolverCountStrategyReusesTrailingGap(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategyCount, nil)

	require.NoError(t, store.insert(TablePayments, "AB-2526-PMT-001"))
	require.NoError(t, store.insert(TablePayments, "AB-2526-PMT-002"))
	store.remove(TablePayments, "AB-2526-PMT-002")

	number, err := r.Next(ctx, store, acme, TypePayment, date(2025, 9, 9))
	require.NoError(t, err)
	require.Equal(t, "AB-2526-PMT-002", number)
}

func TestResolverSequenceStrategyNeverReuses(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategySequence, nil)
	on := date(2025, 9, 9)

	first, err := r.Next(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.NoError(t, store.insert(TablePayments, first))
	second, err := r.Next(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.NoError(t, store.insert(TablePayments, second))
	store.remove(TablePayments, second)

	third, err := r.Next(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.Equal(t, "AB-2526-PMT-001", first)
	require.Equal(t, "AB-2526-PMT-002", second)
	require.Equal(t, "AB-2526-PMT-003", third)
}

func TestResolverSequenceStrategyStartsAboveExistingCount(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	for _, n := range []string{"AB-2526-CN-001", "AB-2526-CN-002"} {
		require.NoError(t, store.insert(TableCreditNotes, n))
	}
	number, err := NewResolver(StrategySequence, nil).Next(ctx, store, acme, TypeCreditNote, date(2025, 5, 5))
	require.NoError(t, err)
	require.Equal(t, "AB-2526-CN-003", number)
}

type countOnlyStore struct{ inner *memoryStore }

func (c countOnlyStore) CountWithPrefix(ctx context.Context, t Table, p string) (int64, error) {
	return c.inner.CountWithPrefix(ctx, t, p)
}

func (c countOnlyStore) NumberExists(ctx context.Context, t Table, n string) (bool, error) {
	return c.inner.NumberExists(ctx, t, n)
}

func TestResolverSequenceStrategyNeedsCounter(t *testing.T) {
	var store Store = countOnlyStore{newMemoryStore()}
	_, err := NewResolver(StrategySequence, nil).Next(context.Background(), store, acme, TypeInvoice, date(2025, 5, 5))
	require.ErrorIs(t, err, ErrStrategyUnsupported)
}

func TestClaimIsIdempotentWithoutInsert(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategyCount, nil)

	require.NoError(t, r.Claim(ctx, store, TypeDebitNote, "AB-2526-DN-010"))
	require.NoError(t, r.Claim(ctx, store, TypeDebitNote, "AB-2526-DN-010"))

	require.NoError(t, store.insert(TableDebitNotes, "AB-2526-DN-010"))
	err1 := r.Claim(ctx, store, TypeDebitNote, "AB-2526-DN-010")
	err2 := r.Claim(ctx, store, TypeDebitNote, "AB-2526-DN-010")
	require.ErrorIs(t, err1, shared.ErrDuplicate)
	require.Equal(t, err1.Error(), err2.Error())
}

func TestPreviewDoesNotAdvanceCounter(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategySequence, nil)
	on := date(2025, 12, 1)

	for i := 0; i < 3; i++ {
		number, err := r.Preview(ctx, store, acme, TypePurchaseOrder, on)
		require.NoError(t, err)
		require.Equal(t, "AB-2526-PO-001", number)
	}
	require.Empty(t, store.counters)
}

func TestPreviewFollowsCounterAfterDelete(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategySequence, nil)
	on := date(2025, 9, 9)

	for i := 0; i < 2; i++ {
		number, err := r.Next(ctx, store, acme, TypePayment, on)
		require.NoError(t, err)
		require.NoError(t, store.insert(TablePayments, number))
	}
	store.remove(TablePayments, "AB-2526-PMT-002")

	preview, err := r.Preview(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.Equal(t, "AB-2526-PMT-003", preview)

	next, err := r.Next(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.Equal(t, preview, next)

	counted, err := NewResolver(StrategyCount, nil).Preview(ctx, store, acme, TypePayment, on)
	require.NoError(t, err)
	require.Equal(t, "AB-2526-PMT-002", counted)
}

func TestConcurrentCreationOnlyOneWins(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore()
	r := NewResolver(StrategyCount, nil)
	on := date(2026, 2, 2)
	for i := int64(1); i <= 5; i++ {
		n, _ := Format("AB", "2526", TypeInvoice, i)
		require.NoError(t, store.insert(TableInvoices, n))
	}

	// Both requests compute their candidate before either inserts.
	var wg sync.WaitGroup
	candidates := make([]string, 2)
	nextErrs := make([]error, 2)
	for i := range candidates {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			candidates[i], nextErrs[i] = r.Next(ctx, store, acme, TypeInvoice, on)
		}(i)
	}
	wg.Wait()
	require.NoError(t, nextErrs[0])
	require.NoError(t, nextErrs[1])
	require.Equal(t, "AB-2526-IV-006", candidates[0])
	require.Equal(t, candidates[0], candidates[1])

	errs := []error{store.insert(TableInvoices, candidates[0]), store.insert(TableInvoices, candidates[1])}
	require.NoError(t, errs[0])
	var dup *DuplicateNumberError
	require.ErrorAs(t, errs[1], &dup)
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy("")
	require.NoError(t, err)
	require.Equal(t, StrategyCount, s)
	s, err = ParseStrategy("Sequence")
	require.NoError(t, err)
	require.Equal(t, StrategySequence, s)
	_, err = ParseStrategy("max")
	require.Error(t, err)
}
