// internal/service/identity/resolver_test.go
package identity_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"leadscope-service/internal/domain/customer"
	xerrors "leadscope-service/internal/pkg/errors"
	"leadscope-service/internal/service/identity"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeCustomerStore is an in-memory CustomerStore with the same uniqueness
// behavior as the real one: email and phone conflicts return ErrConflict.
type fakeCustomerStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*customer.Customer

	createCalls int
}

func newFakeCustomerStore() *fakeCustomerStore {
	return &fakeCustomerStore{byID: make(map[int64]*customer.Customer)}
}

func (f *fakeCustomerStore) FindByID(_ context.Context, id int64) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.byID[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCustomerStore) FindByEmail(_ context.Context, email string) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Email.Valid && c.Email.String == email {
			cp := *c
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerStore) FindByPhone(_ context.Context, phone string) (*customer.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.byID {
		if c.Phone == phone {
			cp := *c
			return &cp, nil
		}
	}
	return nil, xerrors.ErrNotFound
}

func (f *fakeCustomerStore) Create(_ context.Context, c *customer.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.createCalls++
	for _, existing := range f.byID {
		if c.Email.Valid && existing.Email.Valid && existing.Email.String == c.Email.String {
			return xerrors.ErrConflict
		}
		if existing.Phone == c.Phone {
			return xerrors.ErrConflict
		}
	}
	f.nextID++
	c.ID = f.nextID
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomerStore) Update(_ context.Context, c *customer.Customer) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[c.ID]; !ok {
		return xerrors.ErrNotFound
	}
	cp := *c
	f.byID[c.ID] = &cp
	return nil
}

func (f *fakeCustomerStore) Delete(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byID[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(f.byID, id)
	return nil
}

type fakeInteractionStore struct {
	mu       sync.Mutex
	repoints [][2]int64
}

func (f *fakeInteractionStore) RepointCustomer(_ context.Context, from, to int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.repoints = append(f.repoints, [2]int64{from, to})
	return 3, nil
}

func newResolver(store *fakeCustomerStore) *identity.Resolver {
	return identity.NewResolver(store, &fakeInteractionStore{}, zap.NewNop())
}

func TestResolveRequiresEmailOrPhone(t *testing.T) {
	r := newResolver(newFakeCustomerStore())

	_, _, err := r.Resolve(context.Background(), "", "   ", "Ada", true)
	require.ErrorIs(t, err, xerrors.ErrIdentity)
}

func TestResolveCreatesNewCustomer(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	c, created, err := r.Resolve(context.Background(), "Ada@Example.com", "", "Ada Lovelace", true)
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "ada@example.com", c.Email.String)
	require.Equal(t, "Ada Lovelace", c.Name)
	require.NotEmpty(t, c.Reference)
	require.True(t, identity.IsPlaceholderPhone(c.Phone))
	require.Equal(t, customer.StatusActive, c.Status)
}

func TestResolveFindsExistingByEmail(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	first, _, err := r.Resolve(context.Background(), "ada@example.com", "", "Ada", true)
	require.NoError(t, err)

	second, created, err := r.Resolve(context.Background(), "ADA@example.com ", "", "", true)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, 1, store.createCalls)
}

func TestResolveBackfillsMissingFields(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	// Created from phone only: no email, synthesized name.
	c, _, err := r.Resolve(context.Background(), "", "+254 700 123 456", "", true)
	require.NoError(t, err)
	require.Equal(t, "+254700123456", c.Phone)
	require.Equal(t, "Customer 3456", c.Name)

	// Same phone arrives again with the missing identity attached.
	updated, created, err := r.Resolve(context.Background(), "ada@example.com", "+254700123456", "Ada Lovelace", true)
	require.NoError(t, err)
	require.False(t, created)
	require.Equal(t, c.ID, updated.ID)
	require.Equal(t, "ada@example.com", updated.Email.String)
	require.Equal(t, "Ada Lovelace", updated.Name)
}

func TestResolveNeverOverwritesRealName(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	c, _, err := r.Resolve(context.Background(), "ada@example.com", "", "Ada Lovelace", true)
	require.NoError(t, err)

	updated, _, err := r.Resolve(context.Background(), "ada@example.com", "", "Different Name", true)
	require.NoError(t, err)
	require.Equal(t, c.ID, updated.ID)
	require.Equal(t, "Ada Lovelace", updated.Name)
}

func TestResolveSkipsBackfillWhenNotRequested(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	_, _, err := r.Resolve(context.Background(), "", "0700123456", "", true)
	require.NoError(t, err)

	found, _, err := r.Resolve(context.Background(), "ada@example.com", "0700123456", "Ada", false)
	require.NoError(t, err)
	require.False(t, found.Email.Valid)
	require.Equal(t, "Customer 3456", found.Name)
}

func TestResolveConcurrentSameIdentityCreatesOnce(t *testing.T) {
	store := newFakeCustomerStore()
	r := newResolver(store)

	const workers = 16
	ids := make([]int64, workers)
	errs := make([]error, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			c, _, err := r.Resolve(context.Background(), "race@example.com", "", "Race", true)
			if err != nil {
				errs[i] = err
				return
			}
			ids[i] = c.ID
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		require.NoError(t, errs[i])
		require.Equal(t, ids[0], ids[i])
	}
	require.Len(t, store.byID, 1)
}

func TestSynthesizeName(t *testing.T) {
	require.Equal(t, "Ada", identity.SynthesizeName("Ada", "other@example.com", "0700123456"))
	require.Equal(t, "ada", identity.SynthesizeName("", "ada@example.com", ""))
	require.Equal(t, "Customer 3456", identity.SynthesizeName("", "", "0700123456"))
	require.Equal(t, "Unknown", identity.SynthesizeName("", "", "123"))
}

func TestIsPlaceholderName(t *testing.T) {
	require.True(t, identity.IsPlaceholderName("", ""))
	require.True(t, identity.IsPlaceholderName("Unknown", ""))
	require.True(t, identity.IsPlaceholderName("Customer 3456", ""))
	require.True(t, identity.IsPlaceholderName("ada", "ada@example.com"))
	require.False(t, identity.IsPlaceholderName("Ada Lovelace", "ada@example.com"))
}

func TestMergeUnionsAndDeletesDuplicate(t *testing.T) {
	store := newFakeCustomerStore()
	interactions := &fakeInteractionStore{}
	r := identity.NewResolver(store, interactions, zap.NewNop())

	primary := &customer.Customer{
		Reference:        "01PRIMARY",
		Name:             "Customer 3456",
		Phone:            "0700123456",
		InteractionCount: 2,
		ChannelCounts:    map[string]int{"phone": 2},
	}
	require.NoError(t, store.Create(context.Background(), primary))

	duplicate := &customer.Customer{
		Reference:        "01DUP",
		Name:             "Ada Lovelace",
		Phone:            "pending-01X",
		Email:            sql.NullString{String: "ada@example.com", Valid: true},
		InteractionCount: 3,
		ChannelCounts:    map[string]int{"email": 3},
		Keywords:         []customer.TaggedKeyword{{Keyword: "pricing"}},
	}
	require.NoError(t, store.Create(context.Background(), duplicate))

	merged, err := r.Merge(context.Background(), primary.ID, duplicate.ID)
	require.NoError(t, err)

	require.Equal(t, "ada@example.com", merged.Email.String)
	require.Equal(t, "Ada Lovelace", merged.Name)
	require.Equal(t, "0700123456", merged.Phone)
	require.Equal(t, 5, merged.InteractionCount)
	require.Equal(t, map[string]int{"phone": 2, "email": 3}, merged.ChannelCounts)
	require.Len(t, merged.Keywords, 1)

	require.Equal(t, [][2]int64{{duplicate.ID, primary.ID}}, interactions.repoints)

	_, err = store.FindByID(context.Background(), duplicate.ID)
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestMergeRejectsSelf(t *testing.T) {
	r := newResolver(newFakeCustomerStore())

	_, err := r.Merge(context.Background(), 7, 7)
	require.ErrorIs(t, err, xerrors.ErrInvalidInput)
}
