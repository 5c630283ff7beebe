package orders

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/auradecor/storefront-backend/internal/cart"
	"github.com/auradecor/storefront-backend/internal/products"
	"github.com/auradecor/storefront-backend/pkg/db/models"
	"github.com/auradecor/storefront-backend/pkg/enums"
	pkgerrors "github.com/auradecor/storefront-backend/pkg/errors"
	"github.com/auradecor/storefront-backend/pkg/types"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// OrderNumberSource hands out the next order number inside the checkout
// transaction.
type OrderNumberSource interface {
	Next(ctx context.Context, tx *gorm.DB) (int64, error)
}

// SequenceNumberSource draws order numbers from the database sequence.
type SequenceNumberSource struct{}

// Next pulls the next value from order_number_seq.
func (SequenceNumberSource) Next(ctx context.Context, tx *gorm.DB) (int64, error) {
	var number int64
	if err := tx.WithContext(ctx).Raw("SELECT nextval('order_number_seq')").Scan(&number).Error; err != nil {
		return 0, err
	}
	return number, nil
}

// CheckoutInput is the validated payload to place an order.
type CheckoutInput struct {
	ShippingAddress types.Address
	PaymentMethod   string
}

// Service exposes checkout, order history, and admin order management.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error)
	ListMine(ctx context.Context, userID uuid.UUID, query ListQuery) (*OrderListResult, error)
	GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error)
	AdminList(ctx context.Context, query ListQuery) (*OrderListResult, error)
	AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error)
	AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error)
}

type service struct {
	repo     *Repository
	carts    *cart.Repository
	products *products.Repository
	tx       txRunner
	numbers  OrderNumberSource
}

// ServiceParams bundles the dependencies for the orders service.
type ServiceParams struct {
	Repo     *Repository
	Carts    *cart.Repository
	Products *products.Repository
	Tx       txRunner
	Numbers  OrderNumberSource
}

// NewService constructs an orders service instance.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.Carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Products == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if params.Numbers == nil {
		params.Numbers = SequenceNumberSource{}
	}
	return &service{
		repo:     params.Repo,
		carts:    params.Carts,
		products: params.Products,
		tx:       params.Tx,
		numbers:  params.Numbers,
	}, nil
}

// Checkout snapshots the user's cart into a pending order, decrements stock,
// and clears the cart, all in one transaction.
func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input CheckoutInput) (*OrderDTO, error) {
	var order *models.Order

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.carts.WithTx(tx)
		productRepo := s.products.WithTx(tx)

		userCart, err := cartRepo.GetOrCreateByUser(ctx, userID)
		if err != nil {
			return err
		}
		if len(userCart.Items) == 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
		}

		items := make([]models.OrderItem, 0, len(userCart.Items))
		subtotal := decimal.Zero
		for i := range userCart.Items {
			line := &userCart.Items[i]
			if line.Product == nil || !line.Product.IsActive {
				return pkgerrors.New(pkgerrors.CodeConflict, "a cart item is no longer available")
			}
			if err := productRepo.AdjustStock(ctx, line.ProductID, -line.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeConflict,
						fmt.Sprintf("insufficient stock for %s", line.Product.Name))
				}
				return err
			}
			lineTotal := line.PriceAtAddition.Mul(decimal.NewFromInt(int64(line.Quantity)))
			productID := line.ProductID
			items = append(items, models.OrderItem{
				ID:        uuid.New(),
				ProductID: &productID,
				Name:      line.Product.Name,
				UnitPrice: line.PriceAtAddition,
				Quantity:  line.Quantity,
				LineTotal: lineTotal,
			})
			subtotal = subtotal.Add(lineTotal)
		}

		number, err := s.numbers.Next(ctx, tx)
		if err != nil {
			return err
		}

		address := input.ShippingAddress
		order = &models.Order{
			ID:              uuid.New(),
			UserID:          userID,
			OrderNumber:     number,
			Status:          enums.OrderStatusPending,
			Subtotal:        subtotal,
			ShippingFee:     decimal.Zero,
			Total:           subtotal,
			ShippingAddress: &address,
			PaymentMethod:   strings.TrimSpace(input.PaymentMethod),
			Items:           items,
		}
		if err := s.repo.WithTx(tx).Create(ctx, order); err != nil {
			return err
		}
		return cartRepo.Clear(ctx, userCart.ID)
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checkout")
	}

	return FromModel(order), nil
}

func (s *service) ListMine(ctx context.Context, userID uuid.UUID, query ListQuery) (*OrderListResult, error) {
	query.UserID = &userID
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return result, nil
}

func (s *service) GetMine(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

// Cancel lets the owner cancel an order that has not started fulfillment.
// Reserved stock is returned to the catalog.
func (s *service) Cancel(ctx context.Context, userID, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindForUser(ctx, userID, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	switch order.Status {
	case enums.OrderStatusPending, enums.OrderStatusAwaitingPayment:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "order can no longer be cancelled")
	}

	if err := s.transition(ctx, order, enums.OrderStatusCancelled); err != nil {
		return nil, err
	}
	return s.GetMine(ctx, userID, orderID)
}

func (s *service) AdminList(ctx context.Context, query ListQuery) (*OrderListResult, error) {
	result, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list orders")
	}
	return result, nil
}

func (s *service) AdminGet(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	return FromModel(order), nil
}

// AdminUpdateStatus applies a validated status transition. Cancelling from
// the admin console restocks the order's items just like a user cancel.
func (s *service) AdminUpdateStatus(ctx context.Context, orderID uuid.UUID, to enums.OrderStatus) (*OrderDTO, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}

	if err := s.transition(ctx, order, to); err != nil {
		return nil, err
	}
	return s.AdminGet(ctx, orderID)
}

func (s *service) transition(ctx context.Context, order *models.Order, to enums.OrderStatus) error {
	if !order.Status.CanTransitionTo(to) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot transition order from %s to %s", order.Status, to))
	}

	var cancelledAt *time.Time
	if to == enums.OrderStatusCancelled {
		now := time.Now().UTC()
		cancelledAt = &now
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).TransitionStatus(ctx, order.ID, order.Status, to, cancelledAt); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeConflict, "order status changed concurrently")
			}
			return err
		}
		if to != enums.OrderStatusCancelled {
			return nil
		}
		// Return reserved stock. Lines whose product was deleted are skipped.
		productRepo := s.products.WithTx(tx)
		for i := range order.Items {
			item := &order.Items[i]
			if item.ProductID == nil {
				continue
			}
			if err := productRepo.AdjustStock(ctx, *item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "transition order")
	}
	return nil
}
