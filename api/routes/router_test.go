package routes

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auradecor/storefront-backend/internal/auth"
	"github.com/auradecor/storefront-backend/internal/cart"
	"github.com/auradecor/storefront-backend/internal/orders"
	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/internal/wishlist"
	pkgauth "github.com/auradecor/storefront-backend/pkg/auth"
	"github.com/auradecor/storefront-backend/pkg/auth/session"
	"github.com/auradecor/storefront-backend/pkg/config"
	"github.com/auradecor/storefront-backend/pkg/enums"
	"github.com/auradecor/storefront-backend/pkg/logger"
)

type stubPinger struct{}

func (stubPinger) Ping(context.Context) error { return nil }

type stubSessions struct{}

func (stubSessions) HasSession(context.Context, string) (bool, error) { return true, nil }

type stubAuthService struct{}

func (stubAuthService) Login(context.Context, auth.LoginRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Refresh(context.Context, auth.RefreshRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

func (stubAuthService) Logout(context.Context, string) error { return nil }

type stubRegisterService struct{}

func (stubRegisterService) Register(context.Context, auth.RegisterRequest) (*auth.AuthResponse, error) {
	panic("unimplemented")
}

type stubProductService struct{}

func (stubProductService) List(context.Context, products.ListQuery) (*products.ProductListResult, error) {
	return &products.ProductListResult{}, nil
}

func (stubProductService) GetBySlug(context.Context, string) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) GetByID(context.Context, uuid.UUID) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Create(context.Context, products.CreateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Update(context.Context, uuid.UUID, products.UpdateProductInput) (*products.ProductDTO, error) {
	panic("unimplemented")
}

func (stubProductService) Delete(context.Context, uuid.UUID) error {
	panic("unimplemented")
}

type stubCartService struct{}

func (stubCartService) Get(context.Context, uuid.UUID) (*cart.CartDTO, error) {
	return &cart.CartDTO{}, nil
}

func (stubCartService) AddItem(context.Context, uuid.UUID, uuid.UUID, int) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) UpdateQuantity(context.Context, uuid.UUID, uuid.UUID, int) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) Clear(context.Context, uuid.UUID) (*cart.CartDTO, error) {
	panic("unimplemented")
}

func (stubCartService) MergeGuestCart(context.Context, uuid.UUID, []cart.GuestCartLine) (*cart.CartDTO, error) {
	panic("unimplemented")
}

type stubWishlistService struct{}

func (stubWishlistService) Get(context.Context, uuid.UUID) (*wishlist.WishlistDTO, error) {
	return &wishlist.WishlistDTO{}, nil
}

func (stubWishlistService) AddItem(context.Context, uuid.UUID, uuid.UUID) (*wishlist.WishlistDTO, error) {
	panic("unimplemented")
}

func (stubWishlistService) RemoveItem(context.Context, uuid.UUID, uuid.UUID) (*wishlist.WishlistDTO, error) {
	panic("unimplemented")
}

type stubOrderService struct{}

func (stubOrderService) Checkout(context.Context, uuid.UUID, orders.CheckoutInput) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) ListMine(context.Context, uuid.UUID, orders.ListQuery) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{}, nil
}

func (stubOrderService) GetMine(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) Cancel(context.Context, uuid.UUID, uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) AdminList(context.Context, orders.ListQuery) (*orders.OrderListResult, error) {
	return &orders.OrderListResult{}, nil
}

func (stubOrderService) AdminGet(context.Context, uuid.UUID) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func (stubOrderService) AdminUpdateStatus(context.Context, uuid.UUID, enums.OrderStatus) (*orders.OrderDTO, error) {
	panic("unimplemented")
}

func testConfig() *config.Config {
	return &config.Config{
		App: config.AppConfig{Env: "test", Port: "0"},
		JWT: config.JWTConfig{
			Secret:            "secret",
			Issuer:            "issuer",
			ExpirationMinutes: 60,
		},
	}
}

func newTestRouter(cfg *config.Config) http.Handler {
	logg := logger.New(logger.Options{ServiceName: "test-routing", Level: logger.ParseLevel("debug"), Output: io.Discard})
	return NewRouter(Deps{
		Config:          cfg,
		Logger:          logg,
		DB:              stubPinger{},
		Sessions:        stubSessions{},
		AuthService:     stubAuthService{},
		RegisterService: stubRegisterService{},
		ProductService:  stubProductService{},
		CartService:     stubCartService{},
		WishlistService: stubWishlistService{},
		OrderService:    stubOrderService{},
	})
}

func buildToken(t *testing.T, cfg *config.Config, role enums.UserRole) string {
	t.Helper()
	token, err := pkgauth.MintAccessToken(cfg.JWT, time.Now(), pkgauth.AccessTokenPayload{
		UserID: uuid.New(),
		Role:   role,
		JTI:    session.NewAccessID(),
	})
	if err != nil {
		t.Fatalf("mint token: %v", err)
	}
	return token
}

func TestPublicCatalogNeedsNoToken(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/products/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for public catalog got %d", resp.Code)
	}
}

func TestProtectedGroupRejectsMissingJWT(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token got %d", resp.Code)
	}
}

func TestProtectedGroupSucceedsWithJWT(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart/", nil)
	req.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for cart with token got %d", resp.Code)
	}
}

func TestAdminGroupRequiresAdminRole(t *testing.T) {
	cfg := testConfig()
	router := newTestRouter(cfg)

	customer := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/", nil)
	customer.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleCustomer))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, customer)
	if resp.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for customer got %d", resp.Code)
	}

	admin := httptest.NewRequest(http.MethodGet, "/api/admin/v1/orders/", nil)
	admin.Header.Set("Authorization", "Bearer "+buildToken(t, cfg, enums.UserRoleAdmin))
	resp = httptest.NewRecorder()
	router.ServeHTTP(resp, admin)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin got %d", resp.Code)
	}
}

func TestHealthLive(t *testing.T) {
	router := newTestRouter(testConfig())
	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200 for liveness got %d", resp.Code)
	}
	if resp.Header().Get("X-AuraDecor-Env") != "test" {
		t.Fatalf("expected environment header, got %q", resp.Header().Get("X-AuraDecor-Env"))
	}
}
