package client

import (
	"context"
	"errors"
)

// WishlistStore mirrors the authenticated user's server wishlist. There is
// no guest mode; the API rejects anonymous access. Like CartStore it is
// not safe for concurrent use and surfaces failures only through Err.
type WishlistStore struct {
	client *Client

	items   []WishlistItem
	err     string
	loading bool
}

// NewWishlistStore builds an empty wishlist store.
func NewWishlistStore(apiClient *Client) (*WishlistStore, error) {
	if apiClient == nil {
		return nil, errors.New("api client required")
	}
	return &WishlistStore{client: apiClient}, nil
}

// Fetch replaces the in-memory list with the server's wishlist.
func (s *WishlistStore) Fetch(ctx context.Context) {
	s.loading = true
	wishlist, err := s.client.GetWishlist(ctx)
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}
	s.items = wishlist.Items
	s.err = ""
}

// Add saves a product. If the product is already present locally no remote
// call is made. A server-side duplicate conflict triggers a re-fetch to
// reconcile instead of surfacing an error.
func (s *WishlistStore) Add(ctx context.Context, productID string) {
	if s.Contains(productID) {
		return
	}

	s.loading = true
	wishlist, err := s.client.AddWishlistItem(ctx, productID)
	s.loading = false
	if err != nil {
		if errors.Is(err, ErrConflict) {
			s.Fetch(ctx)
			return
		}
		s.err = err.Error()
		return
	}
	s.items = wishlist.Items
	s.err = ""
}

// Remove unsaves a product, filtering it out locally once the server
// confirms the removal.
func (s *WishlistStore) Remove(ctx context.Context, productID string) {
	s.loading = true
	_, err := s.client.RemoveWishlistItem(ctx, productID)
	s.loading = false
	if err != nil {
		s.err = err.Error()
		return
	}

	kept := s.items[:0]
	for _, item := range s.items {
		if item.Product.ID != productID {
			kept = append(kept, item)
		}
	}
	s.items = kept
	s.err = ""
}

// Contains reports whether the product is on the in-memory wishlist.
func (s *WishlistStore) Contains(productID string) bool {
	for _, item := range s.items {
		if item.Product.ID == productID {
			return true
		}
	}
	return false
}

// ClearLocal discards the in-memory list, used on logout. The server
// wishlist is untouched.
func (s *WishlistStore) ClearLocal() {
	s.items = nil
	s.err = ""
}

// Items returns a copy of the current wishlist entries.
func (s *WishlistStore) Items() []WishlistItem {
	items := make([]WishlistItem, len(s.items))
	copy(items, s.items)
	return items
}

func (s *WishlistStore) Err() string { return s.err }

func (s *WishlistStore) Loading() bool { return s.loading }
