package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
)

func writeData(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]string{"code": code, "message": message},
	})
}

func newTestClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	apiClient, err := New(Params{
		BaseURL: baseURL,
		Tokens: func(context.Context) (string, error) {
			return "test-token", nil
		},
	})
	if err != nil {
		t.Fatalf("building client: %v", err)
	}
	return apiClient
}

func newGuestStore(t *testing.T, storage Storage) *CartStore {
	t.Helper()
	// Guest-mode operations never reach the network; any base URL works.
	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, "http://127.0.0.1:0"),
		Storage: storage,
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(context.Background(), false)
	return store
}

func testProduct(id string, price string) Product {
	return Product{ID: id, Name: "product " + id, Price: decimal.RequireFromString(price)}
}

func TestGuestAddAccumulatesQuantity(t *testing.T) {
	ctx := context.Background()
	store := newGuestStore(t, NewMemStorage())

	store.AddItem(ctx, testProduct("p1", "10.00"), 2)
	store.AddItem(ctx, testProduct("p1", "10.00"), 3)

	items := store.Items()
	if len(items) != 1 {
		t.Fatalf("expected one line, got %d", len(items))
	}
	if items[0].Quantity != 5 {
		t.Fatalf("expected quantity 5, got %d", items[0].Quantity)
	}
	if store.ItemCount() != 5 {
		t.Fatalf("expected item count 5, got %d", store.ItemCount())
	}
	if store.Err() != "" {
		t.Fatalf("unexpected error %q", store.Err())
	}
}

func TestTotalSumsPriceAtAddition(t *testing.T) {
	ctx := context.Background()
	store := newGuestStore(t, NewMemStorage())

	store.AddItem(ctx, testProduct("p1", "10.00"), 2)
	store.AddItem(ctx, testProduct("p2", "4.50"), 3)

	want := decimal.RequireFromString("33.50")
	if !store.Total().Equal(want) {
		t.Fatalf("expected total %s, got %s", want, store.Total())
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	ctx := context.Background()

	setup := func() *CartStore {
		store := newGuestStore(t, NewMemStorage())
		store.AddItem(ctx, testProduct("p1", "10.00"), 1)
		store.AddItem(ctx, testProduct("p2", "5.00"), 2)
		return store
	}

	byUpdate := setup()
	byUpdate.UpdateQuantity(ctx, "p1", 0)

	byRemove := setup()
	byRemove.RemoveItem(ctx, "p1")

	left := byUpdate.Items()
	right := byRemove.Items()
	if len(left) != 1 || len(right) != 1 {
		t.Fatalf("expected one line each, got %d and %d", len(left), len(right))
	}
	if left[0].ProductID != right[0].ProductID || left[0].Quantity != right[0].Quantity {
		t.Fatalf("diverging results: %+v vs %+v", left[0], right[0])
	}
}

func TestGuestCartSurvivesReload(t *testing.T) {
	ctx := context.Background()
	storage := NewMemStorage()

	first := newGuestStore(t, storage)
	first.AddItem(ctx, testProduct("p1", "10.00"), 2)
	first.AddItem(ctx, testProduct("p2", "3.25"), 1)

	// A reload is a fresh store over the same storage.
	second := newGuestStore(t, storage)
	items := second.Items()
	if len(items) != 2 {
		t.Fatalf("expected two lines after reload, got %d", len(items))
	}
	if second.ItemCount() != 3 {
		t.Fatalf("expected item count 3, got %d", second.ItemCount())
	}
}

func TestMergeEmptyGuestCartIsNoOp(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		writeData(w, http.StatusOK, Cart{})
	}))
	defer server.Close()

	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, server.URL),
		Storage: NewMemStorage(),
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(context.Background(), false)

	store.MergeGuestCartWithServer(context.Background())

	if calls != 0 {
		t.Fatalf("expected no remote calls, got %d", calls)
	}
	if store.Mode() != ModeGuest {
		t.Fatalf("expected guest mode, got %s", store.Mode())
	}
}

func TestMergeGuestCartEndToEnd(t *testing.T) {
	ctx := context.Background()
	serverCart := Cart{
		Items: []CartItem{{
			ProductID:       "p1",
			Name:            "product p1",
			Quantity:        2,
			PriceAtAddition: decimal.RequireFromString("10.00"),
		}},
		ItemCount: 2,
		Subtotal:  decimal.RequireFromString("20.00"),
	}

	var mergedLines []MergeLine
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/v1/cart/merge":
			var body struct {
				Items []MergeLine `json:"items"`
			}
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				t.Errorf("decoding merge body: %v", err)
			}
			mergedLines = body.Items
			writeData(w, http.StatusOK, serverCart)
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/cart":
			writeData(w, http.StatusOK, serverCart)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			writeAPIError(w, http.StatusNotFound, "not_found", "no such route")
		}
	}))
	defer server.Close()

	storage := NewMemStorage()
	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, server.URL),
		Storage: storage,
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(ctx, false)
	store.AddItem(ctx, testProduct("p1", "10.00"), 2)

	store.MergeGuestCartWithServer(ctx)

	if store.Err() != "" {
		t.Fatalf("unexpected error %q", store.Err())
	}
	if store.Mode() != ModeAuthenticated {
		t.Fatalf("expected authenticated mode, got %s", store.Mode())
	}
	if len(mergedLines) != 1 || mergedLines[0].ProductID != "p1" || mergedLines[0].Quantity != 2 {
		t.Fatalf("unexpected merge payload %+v", mergedLines)
	}
	if !mergedLines[0].PriceAtAddition.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("unexpected merge price %s", mergedLines[0].PriceAtAddition)
	}

	items := store.Items()
	if len(items) != 1 || items[0].ProductID != "p1" || items[0].Quantity != 2 {
		t.Fatalf("unexpected final items %+v", items)
	}
	if _, ok := storage.Get(DefaultCartStorageKey); ok {
		t.Fatal("guest storage should be cleared after a successful merge")
	}
}

func TestMergeFailureKeepsGuestCart(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusInternalServerError, "internal", "internal server error")
	}))
	defer server.Close()

	storage := NewMemStorage()
	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, server.URL),
		Storage: storage,
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(ctx, false)
	store.AddItem(ctx, testProduct("p1", "10.00"), 2)

	store.MergeGuestCartWithServer(ctx)

	if store.Err() == "" {
		t.Fatal("expected an error to be recorded")
	}
	if store.Mode() != ModeGuest {
		t.Fatalf("expected guest mode preserved, got %s", store.Mode())
	}
	if len(store.Items()) != 1 {
		t.Fatalf("expected guest items preserved, got %d", len(store.Items()))
	}
	if _, ok := storage.Get(DefaultCartStorageKey); !ok {
		t.Fatal("guest storage should be untouched after a failed merge")
	}
}

func TestInitializeUnauthorizedFallsBackToGuest(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusUnauthorized, "unauthorized", "authentication required")
	}))
	defer server.Close()

	storage := NewMemStorage()
	seed := newGuestStore(t, storage)
	seed.AddItem(ctx, testProduct("p1", "10.00"), 1)

	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, server.URL),
		Storage: storage,
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(ctx, true)

	if store.Mode() != ModeGuest {
		t.Fatalf("expected guest fallback, got %s", store.Mode())
	}
	if len(store.Items()) != 1 {
		t.Fatalf("expected guest items loaded, got %d", len(store.Items()))
	}
	if store.Err() != "" {
		t.Fatalf("401 fallback should not record an error, got %q", store.Err())
	}
}

func TestAuthenticatedRemoveNotFoundKeepsItems(t *testing.T) {
	ctx := context.Background()
	serverCart := Cart{
		Items: []CartItem{{
			ProductID:       "p1",
			Name:            "product p1",
			Quantity:        1,
			PriceAtAddition: decimal.RequireFromString("10.00"),
		}},
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/api/v1/cart":
			writeData(w, http.StatusOK, serverCart)
		case r.Method == http.MethodDelete:
			writeAPIError(w, http.StatusNotFound, "not_found", "product not in cart")
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
	}))
	defer server.Close()

	store, err := NewCartStore(CartStoreParams{
		Client:  newTestClient(t, server.URL),
		Storage: NewMemStorage(),
	})
	if err != nil {
		t.Fatalf("building cart store: %v", err)
	}
	store.Initialize(ctx, true)

	store.RemoveItem(ctx, "p9")

	if store.Err() == "" {
		t.Fatal("expected a soft error to be recorded")
	}
	items := store.Items()
	if len(items) != 1 || items[0].ProductID != "p1" {
		t.Fatalf("item list should be unchanged, got %+v", items)
	}
}
