package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cartFixture struct {
	repo     *fakeCartRepo
	cache    *fakeCartCache
	widgets  map[string]*widget
	registry *service.Registry
	svc      *service.CartService
}

func newCartFixture(t *testing.T) *cartFixture {
	t.Helper()

	f := &cartFixture{
		repo:     newFakeCartRepo(),
		cache:    newFakeCartCache(),
		widgets:  map[string]*widget{},
		registry: service.NewRegistry(),
	}
	f.registry.Register(widgetType, func(_ context.Context, id string) (domain.Purchasable, error) {
		w, ok := f.widgets[id]
		if !ok {
			return nil, domain.ErrProductNotFound
		}
		return w, nil
	})

	svc, err := service.NewCartService(f.repo, f.registry, f.cache, nil)
	require.NoError(t, err)
	f.svc = svc

	return f
}

func (f *cartFixture) widget() *widget {
	w := &widget{id: gofakeit.UUID(), title: gofakeit.ProductName(), price: int64(gofakeit.IntRange(100, 10000))}
	f.widgets[w.id] = w
	return w
}

func TestNewCartService(t *testing.T) {
	_, err := service.NewCartService(nil, service.NewRegistry(), nil, nil)
	assert.EqualError(t, err, "carts repository is nil")

	_, err = service.NewCartService(newFakeCartRepo(), nil, nil, nil)
	assert.EqualError(t, err, "purchasable resolver is nil")

	_, err = service.NewCartService(newFakeCartRepo(), service.NewRegistry(), nil, nil)
	assert.NoError(t, err)
}

func TestCartService_Current(t *testing.T) {
	f := newCartFixture(t)

	anonymous, err := f.svc.Current(t.Context(), "", "")
	require.NoError(t, err)
	assert.NotEmpty(t, anonymous.Owner.SessionToken)
	assert.Empty(t, anonymous.Owner.UserID)

	again, err := f.svc.Current(t.Context(), "", anonymous.Owner.SessionToken)
	require.NoError(t, err)
	assert.Equal(t, anonymous.ID, again.ID)

	user, err := f.svc.Current(t.Context(), "user-1", "")
	require.NoError(t, err)
	assert.Equal(t, domain.CartOwner{UserID: "user-1"}, user.Owner)
	assert.NotEqual(t, anonymous.ID, user.ID)
}

func TestCartService_Current_MergesSessionCart(t *testing.T) {
	f := newCartFixture(t)
	shared, sessionOnly, userOnly := f.widget(), f.widget(), f.widget()

	session := domain.CartOwner{SessionToken: uuid.NewString()}
	userOwner := domain.CartOwner{UserID: "user-1"}

	_, err := f.svc.AddItem(t.Context(), session, shared.Ref(), 2)
	require.NoError(t, err)
	_, err = f.svc.AddItem(t.Context(), session, sessionOnly.Ref(), 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(t.Context(), userOwner, shared.Ref(), 3)
	require.NoError(t, err)
	_, err = f.svc.AddItem(t.Context(), userOwner, userOnly.Ref(), 1)
	require.NoError(t, err)

	cart, err := f.svc.Current(t.Context(), "user-1", session.SessionToken)
	require.NoError(t, err)

	assert.Equal(t, userOwner, cart.Owner)
	quantities := map[domain.PurchasableRef]int{}
	for _, item := range cart.Items {
		quantities[item.Ref] = item.Quantity
	}
	assert.Equal(t, map[domain.PurchasableRef]int{
		shared.Ref():      5,
		sessionOnly.Ref(): 1,
		userOnly.Ref():    1,
	}, quantities)

	_, err = f.repo.GetCart(t.Context(), session)
	assert.ErrorIs(t, err, domain.ErrCartNotFound)

	_, err = f.cache.Get(t.Context(), session)
	assert.Error(t, err, "session cart evicted from cache")
}

func TestCartService_AddItem(t *testing.T) {
	f := newCartFixture(t)
	w := f.widget()
	owner := domain.CartOwner{UserID: "user-1"}

	cart, err := f.svc.AddItem(t.Context(), owner, w.Ref(), 2)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.Equal(t, w, cart.Items[0].Purchasable)

	cart, err = f.svc.AddItem(t.Context(), owner, w.Ref(), 3)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 5, cart.Items[0].Quantity)

	stored, err := f.repo.GetCart(t.Context(), owner)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	assert.Equal(t, 5, stored.Items[0].Quantity)

	_, err = f.svc.AddItem(t.Context(), owner, w.Ref(), 0)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.svc.AddItem(t.Context(), owner, domain.PurchasableRef{Type: "Course", ID: "1"}, 1)
	assert.ErrorIs(t, err, service.ErrUnknownPurchasableType)

	_, err = f.svc.AddItem(t.Context(), owner, domain.PurchasableRef{Type: widgetType, ID: "missing"}, 1)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestCartService_CacheReadThrough(t *testing.T) {
	f := newCartFixture(t)
	owner := domain.CartOwner{UserID: "user-1"}

	_, err := f.svc.AddItem(t.Context(), owner, f.widget().Ref(), 1)
	require.NoError(t, err)

	f.repo.getCalls = 0
	for range 3 {
		cart, err := f.svc.Current(t.Context(), owner.UserID, "")
		require.NoError(t, err)
		assert.Len(t, cart.Items, 1)
	}
	assert.Equal(t, 1, f.repo.getCalls)

	// a broken cache falls back to the repository
	f.cache.failed = errors.New("redis down")
	cart, err := f.svc.Current(t.Context(), owner.UserID, "")
	require.NoError(t, err)
	assert.Len(t, cart.Items, 1)
	assert.Equal(t, 2, f.repo.getCalls)
}

func TestCartService_RemoveItem(t *testing.T) {
	f := newCartFixture(t)
	owner := domain.CartOwner{SessionToken: uuid.NewString()}

	cart, err := f.svc.AddItem(t.Context(), owner, f.widget().Ref(), 1)
	require.NoError(t, err)

	removed, err := f.svc.RemoveItem(t.Context(), owner, cart.Items[0].ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = f.svc.RemoveItem(t.Context(), owner, cart.Items[0].ID)
	require.NoError(t, err)
	assert.False(t, removed)

	removed, err = f.svc.RemoveItem(t.Context(), domain.CartOwner{UserID: "nobody"}, uuid.New())
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestCartService_Clear(t *testing.T) {
	f := newCartFixture(t)
	owner := domain.CartOwner{UserID: "user-1"}

	_, err := f.svc.AddItem(t.Context(), owner, f.widget().Ref(), 1)
	require.NoError(t, err)
	_, err = f.svc.AddItem(t.Context(), owner, f.widget().Ref(), 2)
	require.NoError(t, err)

	require.NoError(t, f.svc.Clear(t.Context(), owner))

	cart, err := f.svc.Current(t.Context(), owner.UserID, "")
	require.NoError(t, err)
	assert.True(t, cart.IsEmpty())

	assert.NoError(t, f.svc.Clear(t.Context(), domain.CartOwner{UserID: "nobody"}))
}

func TestCartService_ReclaimOrphans(t *testing.T) {
	f := newCartFixture(t)

	_, err := f.svc.Current(t.Context(), "user-1", "")
	require.NoError(t, err)
	orphan := domain.Cart{ID: uuid.New()}
	f.repo.carts[orphan.ID] = orphan

	n, err := f.svc.ReclaimOrphans(t.Context())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Len(t, f.repo.carts, 1)
}

func TestCartService_Resolve(t *testing.T) {
	f := newCartFixture(t)
	w := f.widget()

	cart := domain.Cart{Items: []domain.CartItem{
		{Ref: w.Ref(), Quantity: 1},
		{Ref: domain.PurchasableRef{Type: widgetType, ID: "gone"}, Quantity: 1},
	}}
	f.svc.Resolve(t.Context(), &cart)

	assert.Equal(t, w, cart.Items[0].Purchasable)
	assert.Nil(t, cart.Items[1].Purchasable)
}
