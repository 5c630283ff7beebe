package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Mode tells which backing a cart store is currently operating against.
type Mode string

const (
	ModeUninitialized Mode = "uninitialized"
	ModeGuest         Mode = "guest"
	ModeAuthenticated Mode = "authenticated"
)

// DefaultCartStorageKey is where the guest cart is persisted.
const DefaultCartStorageKey = "auradecor.cart"

// Product is the catalog snapshot an application passes to AddItem. The
// price becomes the line's price_at_addition when a new guest line is
// created.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// cartBackend is the per-mode strategy behind the store operations. Each
// call returns the full resulting item list so the store can replace its
// in-memory state wholesale instead of merging partial responses.
type cartBackend interface {
	Load(ctx context.Context) ([]CartItem, error)
	Add(ctx context.Context, product Product, quantity int) ([]CartItem, error)
	SetQuantity(ctx context.Context, productID string, quantity int) ([]CartItem, error)
	Remove(ctx context.Context, productID string) ([]CartItem, error)
	Clear(ctx context.Context) ([]CartItem, error)
}

// CartStore tracks the shopping cart for one client session. In guest mode
// items live in the local Storage; in authenticated mode every operation
// goes through the API and the store mirrors the server's cart. Failures
// never panic or bubble: the prior item list is preserved and the failure
// is recorded as an error string observable via Err.
//
// CartStore is not safe for concurrent use. It models a single-threaded
// client session; callers that share one instance across goroutines must
// provide their own synchronization.
type CartStore struct {
	client     *Client
	storage    Storage
	storageKey string

	mode    Mode
	items   []CartItem
	err     string
	loading bool
}

// CartStoreParams configures a CartStore.
type CartStoreParams struct {
	Client  *Client
	Storage Storage
	// StorageKey overrides DefaultCartStorageKey.
	StorageKey string
}

// NewCartStore builds an uninitialized cart store.
func NewCartStore(params CartStoreParams) (*CartStore, error) {
	if params.Client == nil {
		return nil, fmt.Errorf("api client required")
	}
	if params.Storage == nil {
		return nil, fmt.Errorf("storage required")
	}
	key := params.StorageKey
	if key == "" {
		key = DefaultCartStorageKey
	}
	return &CartStore{
		client:     params.Client,
		storage:    params.Storage,
		storageKey: key,
		mode:       ModeUninitialized,
	}, nil
}

// Initialize loads the cart for the session's authentication state. An
// authenticated fetch rejected with 401 falls back to the guest cart
// instead of surfacing an error.
func (s *CartStore) Initialize(ctx context.Context, isAuthenticated bool) {
	s.loading = true
	defer func() { s.loading = false }()

	if !isAuthenticated {
		s.enterGuestMode(ctx)
		return
	}

	cart, err := s.client.GetCart(ctx)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			s.enterGuestMode(ctx)
			return
		}
		s.err = err.Error()
		return
	}
	s.mode = ModeAuthenticated
	s.items = cart.Items
	s.err = ""
}

// ActivateGuestCart forces guest mode and reloads from local storage. Used
// on logout; the in-memory authenticated items are discarded since they
// already live server-side.
func (s *CartStore) ActivateGuestCart(ctx context.Context) {
	s.enterGuestMode(ctx)
}

func (s *CartStore) enterGuestMode(ctx context.Context) {
	s.mode = ModeGuest
	items, err := s.backend().Load(ctx)
	if err != nil {
		s.items = nil
		s.err = err.Error()
		return
	}
	s.items = items
	s.err = ""
}

// AddItem adds quantity units of the product, accumulating onto an
// existing line for the same product.
func (s *CartStore) AddItem(ctx context.Context, product Product, quantity int) {
	if quantity <= 0 {
		s.err = "quantity must be positive"
		return
	}
	s.run(func(backend cartBackend) ([]CartItem, error) {
		return backend.Add(ctx, product, quantity)
	})
}

// UpdateQuantity sets a line's quantity outright. A quantity of zero or
// less removes the line.
func (s *CartStore) UpdateQuantity(ctx context.Context, productID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(ctx, productID)
		return
	}
	s.run(func(backend cartBackend) ([]CartItem, error) {
		return backend.SetQuantity(ctx, productID, quantity)
	})
}

// RemoveItem drops a line. Removing an absent line is a no-op in guest
// mode; in authenticated mode the server's not-found is recorded as a
// soft error with the item list unchanged.
func (s *CartStore) RemoveItem(ctx context.Context, productID string) {
	s.run(func(backend cartBackend) ([]CartItem, error) {
		return backend.Remove(ctx, productID)
	})
}

// Clear empties the cart.
func (s *CartStore) Clear(ctx context.Context) {
	s.run(func(backend cartBackend) ([]CartItem, error) {
		return backend.Clear(ctx)
	})
}

// MergeGuestCartWithServer pushes the guest cart into the authenticated
// user's server cart in one request, then re-fetches the authoritative
// merged cart. A no-op unless the store is in guest mode with items. On
// failure the guest cart and its storage are left untouched so the merge
// can be retried; note a retry after a partially-applied failure can
// double-count quantities since the merge endpoint does not deduplicate
// submissions.
func (s *CartStore) MergeGuestCartWithServer(ctx context.Context) {
	if s.mode != ModeGuest || len(s.items) == 0 {
		return
	}

	lines := make([]MergeLine, 0, len(s.items))
	for _, item := range s.items {
		lines = append(lines, MergeLine{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			PriceAtAddition: item.PriceAtAddition,
		})
	}

	s.loading = true
	_, err := s.client.MergeCart(ctx, lines)
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}

	s.storage.Delete(s.storageKey)
	s.mode = ModeAuthenticated
	s.Initialize(ctx, true)
}

// Total sums price_at_addition times quantity across all lines.
func (s *CartStore) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.PriceAtAddition.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount sums quantities across all lines.
func (s *CartStore) ItemCount() int {
	count := 0
	for _, item := range s.items {
		count += item.Quantity
	}
	return count
}

// Items returns a copy of the current lines.
func (s *CartStore) Items() []CartItem {
	items := make([]CartItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *CartStore) Err() string { return s.err }

func (s *CartStore) Loading() bool { return s.loading }

func (s *CartStore) Mode() Mode { return s.mode }

func (s *CartStore) run(op func(backend cartBackend) ([]CartItem, error)) {
	if s.mode == ModeUninitialized {
		s.err = "cart store not initialized"
		return
	}
	s.loading = true
	items, err := op(s.backend())
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	s.items = items
	s.err = ""
}

func (s *CartStore) backend() cartBackend {
	if s.mode == ModeAuthenticated {
		return &serverBackend{client: s.client}
	}
	return &guestBackend{storage: s.storage, key: s.storageKey}
}

// guestBackend keeps the cart in local storage as a JSON array, rewritten
// after every mutation.
type guestBackend struct {
	storage Storage
	key     string
}

func (b *guestBackend) Load(context.Context) ([]CartItem, error) {
	raw, ok := b.storage.Get(b.key)
	if !ok || raw == "" {
		return nil, nil
	}
	var items []CartItem
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding stored cart: %w", err)
	}
	return items, nil
}

func (b *guestBackend) persist(items []CartItem) error {
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding cart: %w", err)
	}
	if err := b.storage.Set(b.key, string(raw)); err != nil {
		return fmt.Errorf("persisting cart: %w", err)
	}
	return nil
}

func (b *guestBackend) Add(ctx context.Context, product Product, quantity int) ([]CartItem, error) {
	items, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	found := false
	for i := range items {
		if items[i].ProductID == product.ID {
			items[i].Quantity += quantity
			found = true
			break
		}
	}
	if !found {
		items = append(items, CartItem{
			ProductID:       product.ID,
			Name:            product.Name,
			Quantity:        quantity,
			PriceAtAddition: product.Price,
		})
	}
	if err := b.persist(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *guestBackend) SetQuantity(ctx context.Context, productID string, quantity int) ([]CartItem, error) {
	items, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	for i := range items {
		if items[i].ProductID == productID {
			items[i].Quantity = quantity
			break
		}
	}
	if err := b.persist(items); err != nil {
		return nil, err
	}
	return items, nil
}

func (b *guestBackend) Remove(ctx context.Context, productID string) ([]CartItem, error) {
	items, err := b.Load(ctx)
	if err != nil {
		return nil, err
	}
	kept := items[:0]
	for _, item := range items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	if err := b.persist(kept); err != nil {
		return nil, err
	}
	return kept, nil
}

func (b *guestBackend) Clear(context.Context) ([]CartItem, error) {
	if err := b.persist([]CartItem{}); err != nil {
		return nil, err
	}
	return nil, nil
}

// serverBackend delegates every operation to the API. Mutations return the
// server-computed full cart, so the in-memory list always reflects
// authoritative price and stock state.
type serverBackend struct {
	client *Client
}

func (b *serverBackend) Load(ctx context.Context) ([]CartItem, error) {
	cart, err := b.client.GetCart(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (b *serverBackend) Add(ctx context.Context, product Product, quantity int) ([]CartItem, error) {
	cart, err := b.client.AddCartItem(ctx, product.ID, quantity)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (b *serverBackend) SetQuantity(ctx context.Context, productID string, quantity int) ([]CartItem, error) {
	cart, err := b.client.SetCartQuantity(ctx, productID, quantity)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (b *serverBackend) Remove(ctx context.Context, productID string) ([]CartItem, error) {
	cart, err := b.client.RemoveCartItem(ctx, productID)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}

func (b *serverBackend) Clear(ctx context.Context) ([]CartItem, error) {
	cart, err := b.client.ClearCart(ctx)
	if err != nil {
		return nil, err
	}
	return cart.Items, nil
}
