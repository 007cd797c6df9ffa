package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/pkg/db/models"
	"github.com/atlasmedina/medina-backend/pkg/enums"
	pkgerrors "github.com/atlasmedina/medina-backend/pkg/errors"
)

// SortField selects the ordering for the back-office list.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByTotal     SortField = "total_amount"
	SortByStatus    SortField = "status"
)

// ListOptions narrows and orders the back-office order list. Filtering runs
// over the full result set, mirroring how the back office searches.
type ListOptions struct {
	Status     *enums.OrderStatus
	Search     string
	SortBy     SortField
	Descending bool
}

type updatePublisher interface {
	PublishOrderUpdate(ctx context.Context, orderID uuid.UUID, orderNumber string, oldStatus, newStatus enums.OrderStatus) error
}

// Service exposes back-office order management.
type Service interface {
	List(ctx context.Context, opts ListOptions) ([]models.Order, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) error
	CountPending(ctx context.Context) (int64, error)
}

type service struct {
	repo   *Repository
	events updatePublisher
	now    func() time.Time
}

// NewService builds an order service backed by the provided stack.
func NewService(repo *Repository, events updatePublisher) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("order repository required")
	}
	if events == nil {
		return nil, fmt.Errorf("event publisher required")
	}
	return &service{repo: repo, events: events, now: time.Now}, nil
}

func (s *service) List(ctx context.Context, opts ListOptions) ([]models.Order, error) {
	rows, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing orders: %w", err)
	}

	filtered := make([]models.Order, 0, len(rows))
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	for _, order := range rows {
		if opts.Status != nil && order.Status != *opts.Status {
			continue
		}
		if search != "" && !matchesSearch(order, search) {
			continue
		}
		filtered = append(filtered, order)
	}

	sortOrders(filtered, opts)
	return filtered, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	return s.get(ctx, id)
}

// UpdateStatus moves the order to the new status, touching only the status
// column and the update timestamp, then publishes the transition.
func (s *service) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.OrderStatus) (*models.Order, error) {
	if !status.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown order status")
	}

	order, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	oldStatus := order.Status
	if oldStatus == status {
		return order, nil
	}

	now := s.now()
	if err := s.repo.UpdateStatus(ctx, id, status, now); err != nil {
		return nil, fmt.Errorf("updating order status: %w", err)
	}
	order.Status = status
	order.UpdatedAt = now

	// best effort; the row is already committed
	_ = s.events.PublishOrderUpdate(ctx, order.ID, order.OrderNumber, oldStatus, status)

	return order, nil
}

func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("deleting order: %w", err)
	}
	return nil
}

func (s *service) CountPending(ctx context.Context) (int64, error) {
	return s.repo.CountByStatus(ctx, enums.OrderStatusPending)
}

func (s *service) get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, fmt.Errorf("loading order: %w", err)
	}
	return order, nil
}

func matchesSearch(order models.Order, search string) bool {
	return strings.Contains(strings.ToLower(order.OrderNumber), search) ||
		strings.Contains(strings.ToLower(order.CustomerName), search) ||
		strings.Contains(strings.ToLower(order.CustomerPhone), search)
}

func sortOrders(rows []models.Order, opts ListOptions) {
	sortBy := opts.SortBy
	if sortBy == "" {
		sortBy = SortByCreatedAt
	}

	sort.SliceStable(rows, func(i, j int) bool {
		var less bool
		switch sortBy {
		case SortByTotal:
			less = rows[i].TotalAmount.LessThan(rows[j].TotalAmount)
		case SortByStatus:
			less = rows[i].Status < rows[j].Status
		default:
			less = rows[i].CreatedAt.Before(rows[j].CreatedAt)
		}
		if opts.Descending {
			return !less
		}
		return less
	})
}
