package service_test

import (
	"context"
	"errors"
	"maps"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/nikolayk812/effective-orders/internal/domain"
	"github.com/nikolayk812/effective-orders/internal/port"
)

type fakeOrderRepo struct {
	mu     sync.Mutex
	orders map[int64]domain.Order
	nextID int64
	itemID int64

	failWrites error
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: map[int64]domain.Order{}}
}

func (r *fakeOrderRepo) CreateOrder(_ context.Context, order *domain.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}

	r.nextID++
	order.ID = r.nextID
	r.assignItemIDs(order)
	order.MarkStored()
	r.orders[order.ID] = cloneOrder(*order)

	return nil
}

func (r *fakeOrderRepo) UpdateOrder(_ context.Context, order *domain.Order, expected domain.PurchaseState) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.failWrites != nil {
		return r.failWrites
	}

	stored, ok := r.orders[order.ID]
	if !ok {
		return domain.ErrOrderNotFound
	}
	if stored.State != expected {
		return domain.ErrStaleOrder
	}

	r.assignItemIDs(order)
	order.MarkStored()
	r.orders[order.ID] = cloneOrder(*order)

	return nil
}

func (r *fakeOrderRepo) GetOrder(_ context.Context, id int64) (domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, ok := r.orders[id]
	if !ok {
		return domain.Order{}, domain.ErrOrderNotFound
	}
	return cloneOrder(order), nil
}

func (r *fakeOrderRepo) ListOrders(_ context.Context, filter port.OrderFilter) ([]domain.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var orders []domain.Order
	for _, id := range slices.Backward(slices.Sorted(maps.Keys(r.orders))) {
		order := r.orders[id]
		if filter.UserID != "" && order.UserID != filter.UserID {
			continue
		}
		if filter.State != "" && order.State != filter.State {
			continue
		}
		orders = append(orders, cloneOrder(order))
	}
	return orders, nil
}

// setState changes the stored order behind the service's back.
func (r *fakeOrderRepo) setState(id int64, state domain.PurchaseState) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order := r.orders[id]
	order.State = state
	order.MarkStored()
	r.orders[id] = order
}

func (r *fakeOrderRepo) stored(id int64) domain.Order {
	r.mu.Lock()
	defer r.mu.Unlock()

	return cloneOrder(r.orders[id])
}

func (r *fakeOrderRepo) assignItemIDs(order *domain.Order) {
	for i := range order.Items {
		if order.Items[i].ID == 0 {
			r.itemID++
			order.Items[i].ID = r.itemID
			order.Items[i].OrderID = order.ID
		}
	}
}

func cloneOrder(o domain.Order) domain.Order {
	o.Payment = maps.Clone(o.Payment)
	o.Items = slices.Clone(o.Items)
	return o
}

type fakeCartRepo struct {
	mu    sync.Mutex
	carts map[uuid.UUID]domain.Cart

	getCalls int
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{carts: map[uuid.UUID]domain.Cart{}}
}

func (r *fakeCartRepo) GetCart(_ context.Context, owner domain.CartOwner) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.getCalls++
	for _, cart := range r.carts {
		if cart.Owner == owner {
			cart.Items = slices.Clone(cart.Items)
			return cart, nil
		}
	}
	return domain.Cart{}, domain.ErrCartNotFound
}

func (r *fakeCartRepo) CreateCart(_ context.Context, owner domain.CartOwner) (domain.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := owner.Validate(); err != nil {
		return domain.Cart{}, err
	}
	cart := domain.Cart{ID: uuid.New(), Owner: owner}
	r.carts[cart.ID] = cart
	return cart, nil
}

func (r *fakeCartRepo) AddItem(_ context.Context, cartID uuid.UUID, item domain.CartItem) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart, ok := r.carts[cartID]
	if !ok {
		return domain.ErrCartNotFound
	}
	item.Purchasable = nil
	if i := slices.IndexFunc(cart.Items, func(ci domain.CartItem) bool { return ci.Ref == item.Ref }); i >= 0 {
		cart.Items[i].Quantity += item.Quantity
	} else {
		cart.Items = append(cart.Items, item)
	}
	r.carts[cartID] = cart
	return nil
}

func (r *fakeCartRepo) DeleteItem(_ context.Context, cartID uuid.UUID, itemID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[cartID]
	removed := cart.RemoveItem(itemID)
	r.carts[cartID] = cart
	return removed, nil
}

func (r *fakeCartRepo) ClearItems(_ context.Context, cartID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cart := r.carts[cartID]
	cart.Items = nil
	r.carts[cartID] = cart
	return nil
}

func (r *fakeCartRepo) MergeCarts(_ context.Context, from, into uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, dst := r.carts[from], r.carts[into]
	dst.Merge(&src)
	r.carts[into] = dst
	delete(r.carts, from)
	return nil
}

func (r *fakeCartRepo) DeleteOrphanedCarts(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, cart := range r.carts {
		if cart.Owner.Orphaned() {
			delete(r.carts, id)
			n++
		}
	}
	return n, nil
}

type fakeCartCache struct {
	mu     sync.Mutex
	carts  map[domain.CartOwner]domain.Cart
	failed error
}

func newFakeCartCache() *fakeCartCache {
	return &fakeCartCache{carts: map[domain.CartOwner]domain.Cart{}}
}

func (c *fakeCartCache) Get(_ context.Context, owner domain.CartOwner) (domain.Cart, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return domain.Cart{}, c.failed
	}
	cart, ok := c.carts[owner]
	if !ok {
		return domain.Cart{}, port.ErrCacheMiss
	}
	return cart, nil
}

func (c *fakeCartCache) Set(_ context.Context, cart domain.Cart) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return c.failed
	}
	c.carts[cart.Owner] = cart
	return nil
}

func (c *fakeCartCache) Delete(_ context.Context, owner domain.CartOwner) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failed != nil {
		return c.failed
	}
	delete(c.carts, owner)
	return nil
}

type notification struct {
	kind     string
	orderID  int64
	sellerID string
	items    int
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []notification
	fail error
}

func (n *fakeNotifier) record(kind string, order domain.Order, sellerID string, items int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.fail != nil {
		return n.fail
	}
	n.sent = append(n.sent, notification{kind: kind, orderID: order.ID, sellerID: sellerID, items: items})
	return nil
}

func (n *fakeNotifier) SendReceiptToAdmin(_ context.Context, order domain.Order) error {
	return n.record("admin", order, "", 0)
}

func (n *fakeNotifier) SendReceiptToBuyer(_ context.Context, order domain.Order) error {
	return n.record("buyer", order, "", 0)
}

func (n *fakeNotifier) SendReceiptToSeller(_ context.Context, order domain.Order, sellerID string, items []domain.OrderItem) error {
	return n.record("seller", order, sellerID, len(items))
}

func (n *fakeNotifier) SendPaymentRequestToBuyer(_ context.Context, order domain.Order) error {
	return n.record("payment_request", order, "", 0)
}

func (n *fakeNotifier) SendPendingInvoiceToBuyer(_ context.Context, order domain.Order) error {
	return n.record("pending_invoice", order, "", 0)
}

func (n *fakeNotifier) kinds() []string {
	n.mu.Lock()
	defer n.mu.Unlock()

	var kinds []string
	for _, s := range n.sent {
		kinds = append(kinds, s.kind)
	}
	return kinds
}

type fakeVerifier struct {
	mu       sync.Mutex
	response string
	err      error
	tokens   []string
}

func (v *fakeVerifier) Verify(_ context.Context, token string) (string, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.tokens = append(v.tokens, token)
	return v.response, v.err
}

type fakeUsers map[string]domain.User

func (u fakeUsers) GetUser(_ context.Context, id string) (domain.User, error) {
	user, ok := u[id]
	if !ok {
		return domain.User{}, errors.New("user not found")
	}
	return user, nil
}

const widgetType = "Widget"

// widget is a purchasable that counts its callbacks.
type widget struct {
	id        string
	title     string
	price     int64
	taxExempt bool
	seller    string

	mu        sync.Mutex
	purchased int
	declined  int
	failWith  error
}

func (w *widget) Ref() domain.PurchasableRef { return domain.PurchasableRef{Type: widgetType, ID: w.id} }
func (w *widget) Title() string              { return w.title }
func (w *widget) Price() int64               { return w.price }
func (w *widget) TaxExempt() bool            { return w.taxExempt }
func (w *widget) SellerID() string           { return w.seller }

func (w *widget) Purchased(context.Context, *domain.Order, *domain.OrderItem) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.purchased++
	return w.failWith
}

func (w *widget) Declined(context.Context, *domain.Order, *domain.OrderItem) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.declined++
	return w.failWith
}

func (w *widget) calls() (purchased, declined int) {
	w.mu.Lock()
	defer w.mu.Unlock()

	return w.purchased, w.declined
}
