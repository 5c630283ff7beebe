// Package client is a Go SDK for the AuraDecor storefront API plus the
// client-side cart and wishlist state stores that sit on top of it. The
// stores model the guest/authenticated split a browser session goes
// through: a guest cart lives in local Storage, an authenticated cart
// lives server-side, and logging in merges the former into the latter.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the API status codes the stores branch on.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
)

// TokenSource supplies the bearer token for authenticated calls. Returning
// an empty token sends the request anonymously.
type TokenSource func(ctx context.Context) (string, error)

// Client talks to the storefront REST API.
type Client struct {
	baseURL string
	http    *http.Client
	tokens  TokenSource
}

// Params configures a Client.
type Params struct {
	BaseURL    string
	HTTPClient *http.Client
	Tokens     TokenSource
}

// New builds an API client.
func New(params Params) (*Client, error) {
	if params.BaseURL == "" {
		return nil, fmt.Errorf("base url required")
	}
	httpClient := params.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(params.BaseURL, "/"),
		http:    httpClient,
		tokens:  params.Tokens,
	}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, err := c.tokens(ctx)
		if err != nil {
			return fmt.Errorf("resolving token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp.StatusCode, raw)
	}

	if out == nil {
		return nil
	}
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("decoding response envelope: %w", err)
	}
	if err := json.Unmarshal(envelope.Data, out); err != nil {
		return fmt.Errorf("decoding response data: %w", err)
	}
	return nil
}

func statusError(status int, raw []byte) error {
	message := http.StatusText(status)
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		message = envelope.Error.Message
	}

	switch status {
	case http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, ErrUnauthorized)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, ErrNotFound)
	case http.StatusConflict:
		return fmt.Errorf("%s: %w", message, ErrConflict)
	default:
		return fmt.Errorf("api error (status %d): %s", status, message)
	}
}

// Cart is the server cart as returned by the API.
type Cart struct {
	Items     []CartItem      `json:"items"`
	ItemCount int             `json:"item_count"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// CartItem is one cart line. For guest carts the product snapshot fields
// are captured locally at add time; for server carts they come from the API.
type CartItem struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

// MergeLine is one guest cart line submitted to the merge endpoint.
type MergeLine struct {
	ProductID       string          `json:"product_id"`
	Quantity        int             `json:"quantity"`
	PriceAtAddition decimal.Decimal `json:"price_at_addition"`
}

// Wishlist is the server wishlist as returned by the API.
type Wishlist struct {
	Items []WishlistItem `json:"items"`
}

// WishlistItem is one saved product.
type WishlistItem struct {
	Product WishlistProduct `json:"product"`
	AddedAt time.Time       `json:"added_at"`
}

// WishlistProduct is the product summary embedded in a wishlist item.
type WishlistProduct struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Slug  string          `json:"slug"`
	Price decimal.Decimal `json:"price"`
}

func (c *Client) GetCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodGet, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) AddCartItem(ctx context.Context, productID string, quantity int) (*Cart, error) {
	body := map[string]any{"product_id": productID, "quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) SetCartQuantity(ctx context.Context, productID string, quantity int) (*Cart, error) {
	body := map[string]any{"quantity": quantity}
	var cart Cart
	if err := c.do(ctx, http.MethodPut, "/api/v1/cart/items/"+productID, body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) RemoveCartItem(ctx context.Context, productID string) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart/items/"+productID, nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) ClearCart(ctx context.Context) (*Cart, error) {
	var cart Cart
	if err := c.do(ctx, http.MethodDelete, "/api/v1/cart", nil, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) MergeCart(ctx context.Context, lines []MergeLine) (*Cart, error) {
	body := map[string]any{"items": lines}
	var cart Cart
	if err := c.do(ctx, http.MethodPost, "/api/v1/cart/merge", body, &cart); err != nil {
		return nil, err
	}
	return &cart, nil
}

func (c *Client) GetWishlist(ctx context.Context) (*Wishlist, error) {
	var wishlist Wishlist
	if err := c.do(ctx, http.MethodGet, "/api/v1/wishlist", nil, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (c *Client) AddWishlistItem(ctx context.Context, productID string) (*Wishlist, error) {
	body := map[string]any{"product_id": productID}
	var wishlist Wishlist
	if err := c.do(ctx, http.MethodPost, "/api/v1/wishlist/items", body, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}

func (c *Client) RemoveWishlistItem(ctx context.Context, productID string) (*Wishlist, error) {
	var wishlist Wishlist
	if err := c.do(ctx, http.MethodDelete, "/api/v1/wishlist/items/"+productID, nil, &wishlist); err != nil {
		return nil, err
	}
	return &wishlist, nil
}
