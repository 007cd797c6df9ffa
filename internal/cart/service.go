package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/atlasmedina/medina-backend/internal/pricing"
	"github.com/atlasmedina/medina-backend/pkg/db/models"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
)

type productLoader interface {
	ListByIDs(ctx context.Context, ids []uuid.UUID) ([]models.Product, error)
}

type changePublisher interface {
	PublishCartChanged(ctx context.Context, token string) error
}

// Line is one hydrated cart line with the current product snapshot.
type Line struct {
	Product   models.Product  `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

// HydratedCart is the cart after reconciling stored entries against the
// current catalog.
type HydratedCart struct {
	Token    string          `json:"token"`
	Lines    []Line          `json:"lines"`
	Total    decimal.Decimal `json:"total"`
	Repaired bool            `json:"repaired"`
}

// Service exposes cart operations for a storefront visitor.
type Service interface {
	Get(ctx context.Context, token string) (*HydratedCart, error)
	AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*HydratedCart, error)
	SetQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*HydratedCart, error)
	RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*HydratedCart, error)
	Clear(ctx context.Context, token string) error
}

type service struct {
	store    *Store
	products productLoader
	events   changePublisher
}

// NewService builds a cart service backed by the provided stack.
func NewService(store *Store, products productLoader, events changePublisher) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("cart store required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if events == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{store: store, products: products, events: events}, nil
}

// Get loads and hydrates the cart, writing back any repairs so the stored
// cart converges on what the catalog can actually fulfill.
func (s *service) Get(ctx context.Context, token string) (*HydratedCart, error) {
	entries, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}
	return s.hydrateAndPersist(ctx, token, entries)
}

// AddItem adds quantity units of the product, merging with an existing line.
func (s *service) AddItem(ctx context.Context, token string, productID uuid.UUID, quantity int) (*HydratedCart, error) {
	if quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be positive")
	}
	if productID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	products, err := s.products.ListByIDs(ctx, []uuid.UUID{productID})
	if err != nil {
		return nil, err
	}
	if len(products) == 0 || !products[0].IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	entries, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	merged := false
	for i := range entries {
		if entries[i].ProductID == productID {
			entries[i].Quantity += quantity
			merged = true
			break
		}
	}
	if !merged {
		entries = append(entries, Entry{ProductID: productID, Quantity: quantity})
	}

	cart, err := s.hydrateAndPersist(ctx, token, entries)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, token)
	return cart, nil
}

// SetQuantity replaces the quantity for a product. Zero removes the line.
func (s *service) SetQuantity(ctx context.Context, token string, productID uuid.UUID, quantity int) (*HydratedCart, error) {
	if quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must not be negative")
	}
	if quantity == 0 {
		return s.RemoveItem(ctx, token, productID)
	}

	entries, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	found := false
	for i := range entries {
		if entries[i].ProductID == productID {
			entries[i].Quantity = quantity
			found = true
			break
		}
	}
	if !found {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not in cart")
	}

	cart, err := s.hydrateAndPersist(ctx, token, entries)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, token)
	return cart, nil
}

// RemoveItem drops the product's line from the cart.
func (s *service) RemoveItem(ctx context.Context, token string, productID uuid.UUID) (*HydratedCart, error) {
	entries, err := s.store.Load(ctx, token)
	if err != nil {
		return nil, err
	}

	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ProductID != productID {
			kept = append(kept, e)
		}
	}

	cart, err := s.hydrateAndPersist(ctx, token, kept)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, token)
	return cart, nil
}

// Clear removes the whole cart.
func (s *service) Clear(ctx context.Context, token string) error {
	if err := s.store.Clear(ctx, token); err != nil {
		return err
	}
	s.notify(ctx, token)
	return nil
}

// hydrateAndPersist batch-fetches the referenced products, drops lines whose
// product no longer exists or is inactive, clamps each quantity to available
// stock and writes the reconciled entries back. An empty cart clears the key
// so a stored payload that parsed to nothing does not linger in redis.
func (s *service) hydrateAndPersist(ctx context.Context, token string, entries []Entry) (*HydratedCart, error) {
	cart := &HydratedCart{Token: token, Lines: []Line{}, Total: decimal.Zero.Round(2)}
	if len(entries) == 0 {
		if err := s.store.Clear(ctx, token); err != nil {
			return nil, err
		}
		return cart, nil
	}

	ids := make([]uuid.UUID, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ProductID)
	}

	products, err := s.products.ListByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	repaired := make([]Entry, 0, len(entries))
	total := decimal.Zero
	for _, e := range entries {
		p, ok := byID[e.ProductID]
		if !ok || !p.IsActive {
			cart.Repaired = true
			continue
		}

		qty := e.Quantity
		if qty > p.Stock {
			qty = p.Stock
			cart.Repaired = true
		}
		if qty <= 0 {
			cart.Repaired = true
			continue
		}

		unit := pricing.UnitPrice(p.Price, p.Promo)
		sub := pricing.Subtotal(p.Price, p.Promo, qty)
		cart.Lines = append(cart.Lines, Line{
			Product:   p,
			Quantity:  qty,
			UnitPrice: unit,
			Subtotal:  sub,
		})
		repaired = append(repaired, Entry{ProductID: e.ProductID, Quantity: qty})
		total = total.Add(sub)
	}
	cart.Total = total.Round(2)

	if cart.Repaired {
		if err := s.store.Save(ctx, token, repaired); err != nil {
			return nil, err
		}
	} else if len(repaired) > 0 {
		// refresh the TTL on untouched carts too
		if err := s.store.Save(ctx, token, repaired); err != nil {
			return nil, err
		}
	}

	return cart, nil
}

// notify publishes a cart change. Delivery is best effort; the cart write
// already succeeded.
func (s *service) notify(ctx context.Context, token string) {
	_ = s.events.PublishCartChanged(ctx, token)
}
