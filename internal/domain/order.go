package domain

import (
	"maps"
	"time"

	"github.com/shopspring/decimal"
)

type Order struct {
	ID     int64
	UserID string
	// User is loaded on demand from the host application; it is not persisted with the order.
	User *User

	State       PurchaseState
	PurchasedAt *time.Time
	Note        string

	Payment         map[string]string
	PaymentProvider string
	PaymentCard     string

	TaxRate decimal.NullDecimal
	// nil until assigned, see AssignTotals
	Subtotal *int64
	Tax      *int64
	Total    *int64

	BillingAddress  *Address
	ShippingAddress *Address

	Items []OrderItem

	CreatedAt time.Time
	UpdatedAt time.Time

	totalsPinned bool
	storedState  PurchaseState
}

type Totals struct {
	Subtotal int64
	Tax      int64
	Total    int64
}

// NewOrder returns a draft order owned by user.
func NewOrder(user *User, s Settings) *Order {
	o := &Order{State: StateDraft}
	o.SetUser(user, s)
	return o
}

func (o *Order) IsNew() bool {
	return o.ID == 0
}

// StoredState is the purchase state last read from or written to the store.
func (o *Order) StoredState() PurchaseState {
	if o.storedState == "" {
		return StateDraft
	}
	return o.storedState
}

// MarkStored records the current state as the one held by the store.
func (o *Order) MarkStored() {
	o.storedState = o.State
}

// SetUser assigns the buyer and copies the buyer's addresses onto the order.
func (o *Order) SetUser(u *User, s Settings) {
	if u == nil {
		return
	}
	o.UserID = u.ID
	o.User = u

	if u.BillingAddress != nil {
		addr := *u.BillingAddress
		o.BillingAddress = &addr
	}
	if u.ShippingAddress != nil {
		addr := *u.ShippingAddress
		o.ShippingAddress = &addr
	}

	if s.RequireBillingAddress && o.BillingAddress == nil {
		o.BillingAddress = &Address{}
	}
	if s.RequireShippingAddress && o.ShippingAddress == nil {
		o.ShippingAddress = &Address{}
	}

	if o.BillingAddress != nil && o.BillingAddress.FullName == "" {
		o.BillingAddress.FullName = o.BillingName()
	}
	if o.ShippingAddress != nil && o.ShippingAddress.FullName == "" {
		o.ShippingAddress.FullName = o.BillingName()
	}
}

func (o *Order) BillingName() string {
	if o.BillingAddress != nil && o.BillingAddress.FullName != "" {
		return o.BillingAddress.FullName
	}
	if o.User != nil {
		return o.User.DisplayName()
	}
	return "User " + o.UserID
}

// Add snapshots each purchasable into a new order item with the given quantity.
func (o *Order) Add(quantity int, purchasables ...Purchasable) ([]OrderItem, error) {
	if o.State.IsFinal() {
		return nil, ErrOrderImmutable
	}
	if !validQuantity(quantity) {
		return nil, ErrInvalidQuantity
	}

	added := make([]OrderItem, 0, len(purchasables))
	for _, p := range purchasables {
		added = append(added, newOrderItem(p, quantity))
	}

	o.appendItems(added)

	return added, nil
}

// AddCart snapshots every cart item. Cart items must have their purchasable resolved.
func (o *Order) AddCart(cart Cart) ([]OrderItem, error) {
	if o.State.IsFinal() {
		return nil, ErrOrderImmutable
	}

	added := make([]OrderItem, 0, len(cart.Items))
	for _, ci := range cart.Items {
		if ci.Purchasable == nil {
			return nil, ErrUnresolvedItem
		}
		if !validQuantity(ci.Quantity) {
			return nil, ErrInvalidQuantity
		}
		added = append(added, newOrderItem(ci.Purchasable, ci.Quantity))
	}

	if o.UserID == "" && cart.Owner.UserID != "" {
		o.UserID = cart.Owner.UserID
	}

	o.appendItems(added)

	return added, nil
}

func (o *Order) appendItems(items []OrderItem) {
	o.Items = append(o.Items, items...)
	o.ClearTotals()
}

// ClearTotals drops the cached aggregates so they are recomputed on the next save.
func (o *Order) ClearTotals() {
	o.totalsPinned = false
	o.Subtotal = nil
	o.Tax = nil
	o.Total = nil
}

// PinTotals is an administrative override: pinned totals are not recomputed before persistence.
func (o *Order) PinTotals(subtotal, tax, total int64) {
	o.Subtotal = &subtotal
	o.Tax = &tax
	o.Total = &total
	o.totalsPinned = true
}

func (o *Order) TotalsPinned() bool {
	return o.totalsPinned
}

// AssignTaxRate resolves the tax rate for the billing address without touching totals.
func (o *Order) AssignTaxRate(s Settings) error {
	rate, err := s.taxRate(o.BillingAddress)
	if err != nil {
		return err
	}
	if rate.Valid {
		if err := ValidateTaxRate(rate.Decimal); err != nil {
			return err
		}
	}

	o.TaxRate = rate
	return nil
}

// AssignTotals recomputes tax rate, subtotal, tax and total from the order items.
func (o *Order) AssignTotals(s Settings) error {
	if err := o.AssignTaxRate(s); err != nil {
		return err
	}
	rate := o.TaxRate

	subtotal := Subtotal(o.Items)
	o.Subtotal = &subtotal

	var tax int64
	if rate.Valid {
		tax = Tax(o.Items, rate.Decimal)
		o.Tax = &tax
	} else {
		o.Tax = nil
	}

	total := Total(subtotal, tax)
	o.Total = &total

	return nil
}

// Totals returns the assigned totals, deriving any missing value from the items.
func (o *Order) Totals() Totals {
	var t Totals

	if o.Subtotal != nil {
		t.Subtotal = *o.Subtotal
	} else {
		t.Subtotal = Subtotal(o.Items)
	}

	if o.Tax != nil {
		t.Tax = *o.Tax
	} else if o.TaxRate.Valid {
		t.Tax = Tax(o.Items, o.TaxRate.Decimal)
	}

	if o.Total != nil {
		t.Total = *o.Total
	} else {
		t.Total = Total(t.Subtotal, t.Tax)
	}

	return t
}

func (o *Order) NumItems() int {
	var n int
	for _, item := range o.Items {
		n += item.Quantity
	}
	return n
}

// Purchasables returns the live purchasables still attached to the items.
func (o *Order) Purchasables() []Purchasable {
	var ps []Purchasable
	for _, item := range o.Items {
		if p := item.LivePurchasable(); p != nil {
			ps = append(ps, p)
		}
	}
	return ps
}

func (o *Order) IsPurchased() bool { return o.State == StatePurchased }
func (o *Order) IsDeclined() bool  { return o.State == StateDeclined }
func (o *Order) IsPending() bool   { return o.State == StatePending }

// IsPurchasedBy reports whether the order was purchased through provider.
// An empty provider matches any.
func (o *Order) IsPurchasedBy(provider string, s Settings) (bool, error) {
	if provider == "" {
		return o.IsPurchased(), nil
	}
	if !s.IsAllowedProvider(provider) {
		return false, &UnknownProviderError{Provider: provider, Known: s.AllowedProviders()}
	}
	return o.IsPurchased() && o.PaymentProvider == provider, nil
}

// SellerItems groups items by seller; items without a seller are skipped.
func (o *Order) SellerItems() map[string][]OrderItem {
	groups := map[string][]OrderItem{}
	for _, item := range o.Items {
		if item.SellerID == "" {
			continue
		}
		groups[item.SellerID] = append(groups[item.SellerID], item)
	}
	return groups
}

// Checkpoint captures the fields mutated by a purchase or decline.
type Checkpoint struct {
	state           PurchaseState
	purchasedAt     *time.Time
	payment         map[string]string
	paymentProvider string
	paymentCard     string
}

func (o *Order) Checkpoint() Checkpoint {
	return Checkpoint{
		state:           o.State,
		purchasedAt:     o.PurchasedAt,
		payment:         maps.Clone(o.Payment),
		paymentProvider: o.PaymentProvider,
		paymentCard:     o.PaymentCard,
	}
}

// Rollback restores the fields captured by c.
func (o *Order) Rollback(c Checkpoint) {
	o.State = c.state
	o.PurchasedAt = c.purchasedAt
	o.Payment = c.payment
	o.PaymentProvider = c.paymentProvider
	o.PaymentCard = c.paymentCard
}

// State is the purchase state at the time of the checkpoint.
func (c Checkpoint) State() PurchaseState {
	return c.state
}

func (o *Order) MarkPurchased(details map[string]string, provider, card string, now time.Time) {
	o.State = StatePurchased
	if o.PurchasedAt == nil {
		o.PurchasedAt = &now
	}
	o.setPayment(details, provider, card)
}

func (o *Order) MarkDeclined(details map[string]string, provider, card string) {
	o.State = StateDeclined
	o.PurchasedAt = nil
	o.setPayment(details, provider, card)
}

func (o *Order) MarkPending() {
	o.State = StatePending
}

func (o *Order) setPayment(details map[string]string, provider, card string) {
	if len(details) == 0 {
		details = map[string]string{"details": "none"}
	}
	if card == "" {
		card = "none"
	}
	o.Payment = maps.Clone(details)
	o.PaymentProvider = provider
	o.PaymentCard = card
}

// MergePayment adds the keys of details missing from the stored payment and reports
// whether anything changed. Existing keys are never overwritten.
func (o *Order) MergePayment(details map[string]string) bool {
	changed := false
	for k, v := range details {
		if _, ok := o.Payment[k]; ok {
			continue
		}
		if o.Payment == nil {
			o.Payment = map[string]string{}
		}
		o.Payment[k] = v
		changed = true
	}
	return changed
}
