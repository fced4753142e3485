package selector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunarforge/gachad/internal/catalog"
	"github.com/lunarforge/gachad/internal/domain"
	"github.com/lunarforge/gachad/internal/event"
	"github.com/lunarforge/gachad/internal/repository"
)

type fakeSelectorStore struct {
	mu        sync.Mutex
	selectors map[uuid.UUID]*domain.Selector
	owned     map[string]map[string]int // userID -> characterID -> constellation
	grantErr  error
}

func newFakeSelectorStore() *fakeSelectorStore {
	return &fakeSelectorStore{
		selectors: make(map[uuid.UUID]*domain.Selector),
		owned:     make(map[string]map[string]int),
	}
}

func (f *fakeSelectorStore) addSelector(userID string, rarity domain.Rarity) uuid.UUID {
	id := uuid.New()
	f.selectors[id] = &domain.Selector{ID: id, UserID: userID, Rarity: rarity, Obtained: time.Now()}
	return id
}

func (f *fakeSelectorStore) ListSelectors(_ context.Context, userID string) ([]domain.Selector, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Selector
	for _, sel := range f.selectors {
		if sel.UserID == userID {
			out = append(out, *sel)
		}
	}
	return out, nil
}

func (f *fakeSelectorStore) GetOwnedCharacters(_ context.Context, userID string) ([]domain.OwnedCharacter, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.OwnedCharacter
	for id, constellation := range f.owned[userID] {
		out = append(out, domain.OwnedCharacter{CharacterID: id, Constellation: constellation})
	}
	return out, nil
}

func (f *fakeSelectorStore) BeginRedeemTx(_ context.Context) (repository.RedeemTx, error) {
	return &fakeRedeemTx{f: f}, nil
}

type fakeRedeemTx struct {
	f     *fakeSelectorStore
	done  bool
	apply []func()
}

func (t *fakeRedeemTx) Commit(_ context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	for _, fn := range t.apply {
		fn()
	}
	return nil
}

func (t *fakeRedeemTx) Rollback(_ context.Context) error {
	if t.done {
		return errors.New(domain.ErrMsgTxClosed)
	}
	t.done = true
	t.apply = nil
	return nil
}

func (t *fakeRedeemTx) GetSelectorForUpdate(_ context.Context, userID string, selectorID uuid.UUID) (*domain.Selector, error) {
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	sel, ok := t.f.selectors[selectorID]
	if !ok || sel.UserID != userID {
		return nil, nil
	}
	cp := *sel
	return &cp, nil
}

func (t *fakeRedeemTx) DeleteSelector(_ context.Context, selectorID uuid.UUID) error {
	t.apply = append(t.apply, func() { delete(t.f.selectors, selectorID) })
	return nil
}

func (t *fakeRedeemTx) GrantCharacter(_ context.Context, userID, characterID string) (bool, int, error) {
	if t.f.grantErr != nil {
		return false, 0, t.f.grantErr
	}
	t.f.mu.Lock()
	defer t.f.mu.Unlock()
	constellation, owned := t.f.owned[userID][characterID]
	if owned {
		constellation++
	}
	t.apply = append(t.apply, func() {
		if t.f.owned[userID] == nil {
			t.f.owned[userID] = make(map[string]int)
		}
		t.f.owned[userID][characterID] = constellation
	})
	return !owned, constellation, nil
}

func testRoster() []domain.Character {
	return []domain.Character{
		{ID: "char_aurora", Name: "Aurora", Rarity: domain.RarityLegendary},
		{ID: "char_vesper", Name: "Vesper", Rarity: domain.RarityLegendary},
		{ID: "char_thorn", Name: "Thorn", Rarity: domain.RarityEpic},
	}
}

func newTestService(t *testing.T, store *fakeSelectorStore) Service {
	t.Helper()
	cat, err := catalog.NewServiceFromRoster(testRoster(), catalog.FirstStrategy{})
	require.NoError(t, err)
	return NewService(store, cat, event.NewMemoryBus())
}

func TestList(t *testing.T) {
	store := newFakeSelectorStore()
	store.addSelector("user_1", domain.RarityLegendary)
	store.addSelector("user_2", domain.RarityEpic)
	svc := newTestService(t, store)

	selectors, err := svc.List(context.Background(), "user_1")
	require.NoError(t, err)
	require.Len(t, selectors, 1)
	assert.Equal(t, domain.RarityLegendary, selectors[0].Rarity)
}

func TestListEligible(t *testing.T) {
	store := newFakeSelectorStore()
	store.owned["user_1"] = map[string]int{"char_aurora": 0}
	svc := newTestService(t, store)
	ctx := context.Background()

	t.Run("annotates ownership", func(t *testing.T) {
		eligible, err := svc.ListEligible(ctx, "user_1", domain.RarityLegendary)
		require.NoError(t, err)
		require.Len(t, eligible, 2)

		byID := make(map[string]domain.EligibleCharacter)
		for _, e := range eligible {
			byID[e.ID] = e
		}
		assert.True(t, byID["char_aurora"].Owned)
		assert.False(t, byID["char_vesper"].Owned)
	})

	t.Run("rejects common", func(t *testing.T) {
		_, err := svc.ListEligible(ctx, "user_1", domain.RarityCommon)
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
	})
}

func TestRedeem(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown selector", func(t *testing.T) {
		svc := newTestService(t, newFakeSelectorStore())
		_, err := svc.Redeem(ctx, "user_1", uuid.New(), "char_aurora")
		assert.ErrorIs(t, err, domain.ErrSelectorNotFound)
	})

	t.Run("selector of another user", func(t *testing.T) {
		store := newFakeSelectorStore()
		id := store.addSelector("user_2", domain.RarityLegendary)
		svc := newTestService(t, store)

		_, err := svc.Redeem(ctx, "user_1", id, "char_aurora")
		assert.ErrorIs(t, err, domain.ErrSelectorNotFound)
	})

	t.Run("unknown character", func(t *testing.T) {
		store := newFakeSelectorStore()
		id := store.addSelector("user_1", domain.RarityLegendary)
		svc := newTestService(t, store)

		_, err := svc.Redeem(ctx, "user_1", id, "char_ghost")
		assert.ErrorIs(t, err, domain.ErrCharacterNotFound)
	})

	t.Run("rarity mismatch keeps the ticket", func(t *testing.T) {
		store := newFakeSelectorStore()
		id := store.addSelector("user_1", domain.RarityLegendary)
		svc := newTestService(t, store)

		_, err := svc.Redeem(ctx, "user_1", id, "char_thorn")
		assert.ErrorIs(t, err, domain.ErrRarityMismatch)
		assert.Contains(t, store.selectors, id)
	})

	t.Run("new character grant", func(t *testing.T) {
		store := newFakeSelectorStore()
		id := store.addSelector("user_1", domain.RarityLegendary)
		svc := newTestService(t, store)

		result, err := svc.Redeem(ctx, "user_1", id, "char_aurora")
		require.NoError(t, err)

		assert.True(t, result.IsNew)
		assert.Equal(t, 0, result.Constellation)
		assert.Contains(t, result.Message, "Aurora")
		assert.NotContains(t, store.selectors, id, "ticket must be consumed")
		assert.Equal(t, 0, store.owned["user_1"]["char_aurora"])
	})

	t.Run("duplicate raises constellation", func(t *testing.T) {
		store := newFakeSelectorStore()
		store.owned["user_1"] = map[string]int{"char_aurora": 1}
		id := store.addSelector("user_1", domain.RarityLegendary)
		svc := newTestService(t, store)

		result, err := svc.Redeem(ctx, "user_1", id, "char_aurora")
		require.NoError(t, err)

		assert.False(t, result.IsNew)
		assert.Equal(t, 2, result.Constellation)
		assert.Equal(t, 2, store.owned["user_1"]["char_aurora"])
	})

	t.Run("failed grant keeps the ticket", func(t *testing.T) {
		store := newFakeSelectorStore()
		id := store.addSelector("user_1", domain.RarityLegendary)
		store.grantErr = errors.New("constraint violation")
		svc := newTestService(t, store)

		_, err := svc.Redeem(ctx, "user_1", id, "char_aurora")
		require.Error(t, err)
		assert.Contains(t, store.selectors, id)
	})
}
