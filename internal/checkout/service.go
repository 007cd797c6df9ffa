package checkout

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/internal/cart"
	"github.com/atlasmedina/medina-backend/internal/orders"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	"github.com/atlasmedina/medina-backend/pkg/enums"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
	"github.com/google/uuid"
)

// phoneRe accepts digits plus the usual separators and a leading plus.
var phoneRe = regexp.MustCompile(`^[\d\s+\-()]+$`)

// DeliveryDetails is the customer-provided delivery form.
type DeliveryDetails struct {
	Name           string
	Phone          string
	Email          *string
	City           string
	Address        string
	AdditionalInfo *string
	Notes          *string
}

type cartService interface {
	Get(ctx context.Context, token string) (*cart.HydratedCart, error)
	Clear(ctx context.Context, token string) error
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type insertPublisher interface {
	PublishOrderInsert(ctx context.Context, orderID uuid.UUID, orderNumber string, status enums.OrderStatus) error
}

// Service places orders from hydrated carts.
type Service interface {
	PlaceOrder(ctx context.Context, token string, details DeliveryDetails) (*models.Order, error)
}

type service struct {
	carts  cartService
	repo   *orders.Repository
	tx     txRunner
	events insertPublisher
	now    func() time.Time
}

// NewService builds a checkout service backed by the provided stack.
func NewService(carts cartService, repo *orders.Repository, tx txRunner, events insertPublisher) (Service, error) {
	if carts == nil {
		return nil, fmt.Errorf("cart service required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if events == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{carts: carts, repo: repo, tx: tx, events: events, now: time.Now}, nil
}

// PlaceOrder validates the delivery form, snapshots the hydrated cart into an
// order with its items in a single transaction, then clears the cart and
// announces the new order. A failed insert leaves the cart untouched.
func (s *service) PlaceOrder(ctx context.Context, token string, details DeliveryDetails) (*models.Order, error) {
	if fieldErrors := validateDetails(details); len(fieldErrors) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "delivery details are incomplete").
			WithDetails(fieldErrors)
	}

	hydrated, err := s.carts.Get(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(hydrated.Lines) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	number, err := orders.NewOrderNumber(s.now())
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		OrderNumber:    number,
		CustomerName:   strings.TrimSpace(details.Name),
		CustomerPhone:  strings.TrimSpace(details.Phone),
		CustomerEmail:  details.Email,
		City:           strings.TrimSpace(details.City),
		Address:        strings.TrimSpace(details.Address),
		AdditionalInfo: details.AdditionalInfo,
		Notes:          details.Notes,
		TotalAmount:    hydrated.Total,
		Status:         enums.OrderStatusPending,
	}
	for _, line := range hydrated.Lines {
		productID := line.Product.ID
		order.Items = append(order.Items, models.OrderItem{
			ProductID:    &productID,
			ProductName:  line.Product.Name,
			ProductPrice: line.Product.Price,
			Quantity:     line.Quantity,
			PromoApplied: line.Product.Promo,
			Subtotal:     line.Subtotal,
		})
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		_, err := s.repo.WithTx(tx).Create(ctx, order)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("placing order: %w", err)
	}

	// The order exists from here on; cart cleanup and the event are best
	// effort and must not fail the checkout.
	_ = s.carts.Clear(ctx, token)
	_ = s.events.PublishOrderInsert(ctx, order.ID, order.OrderNumber, order.Status)

	return order, nil
}

func validateDetails(details DeliveryDetails) map[string]string {
	fieldErrors := map[string]string{}

	if strings.TrimSpace(details.Name) == "" {
		fieldErrors["name"] = "name is required"
	}
	phone := strings.TrimSpace(details.Phone)
	if phone == "" {
		fieldErrors["phone"] = "phone is required"
	} else if !phoneRe.MatchString(phone) {
		fieldErrors["phone"] = "phone may only contain digits, spaces, +, -, ( and )"
	}
	if strings.TrimSpace(details.City) == "" {
		fieldErrors["city"] = "city is required"
	}
	if strings.TrimSpace(details.Address) == "" {
		fieldErrors["address"] = "address is required"
	}

	return fieldErrors
}
