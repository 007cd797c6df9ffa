package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/atlasmedina/medina-backend/pkg/db/models"
	"github.com/atlasmedina/medina-backend/pkg/enums"
)

// LowStockThreshold marks products the back office should restock.
const LowStockThreshold = 10

// RecentOrderCount caps the dashboard's recent orders list.
const RecentOrderCount = 5

// TopProductCount caps the dashboard's best performing products list.
const TopProductCount = 5

// DailySales is one day of completed sales for the trailing week chart.
type DailySales struct {
	Date   string          `json:"date"`
	Orders int             `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

// TopProduct aggregates ordered quantity per product snapshot name.
type TopProduct struct {
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Dashboard is the back-office landing page payload.
type Dashboard struct {
	TotalOrders     int64           `json:"total_orders"`
	TotalRevenue    decimal.Decimal `json:"total_revenue"`
	PendingOrders   int64           `json:"pending_orders"`
	TotalProducts   int64           `json:"total_products"`
	LowStockCount   int64           `json:"low_stock_count"`
	UniqueCustomers int64           `json:"unique_customers"`
	RecentOrders    []models.Order  `json:"recent_orders"`
	WeeklySales     []DailySales    `json:"weekly_sales"`
	TopProducts     []TopProduct    `json:"top_products"`
}

// Service aggregates back-office dashboard numbers.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
}

type service struct {
	db  *gorm.DB
	now func() time.Time
}

// NewService builds a stats service over the shared DB handle.
func NewService(db *gorm.DB) (Service, error) {
	if db == nil {
		return nil, fmt.Errorf("db handle required")
	}
	return &service{db: db, now: time.Now}, nil
}

// Dashboard computes every tile in one pass over orders plus a few counts.
// Revenue counts orders in any status except canceled.
func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	out := &Dashboard{
		TotalRevenue: decimal.Zero,
		RecentOrders: []models.Order{},
		WeeklySales:  []DailySales{},
		TopProducts:  []TopProduct{},
	}

	var allOrders []models.Order
	err := s.db.WithContext(ctx).
		Preload("Items").
		Order("created_at DESC").
		Find(&allOrders).Error
	if err != nil {
		return nil, fmt.Errorf("loading orders: %w", err)
	}

	out.TotalOrders = int64(len(allOrders))

	customers := map[string]struct{}{}
	revenue := decimal.Zero
	for _, order := range allOrders {
		if order.Status == enums.OrderStatusPending {
			out.PendingOrders++
		}
		if order.Status != enums.OrderStatusCanceled {
			revenue = revenue.Add(order.TotalAmount)
		}
		customers[order.CustomerPhone] = struct{}{}
	}
	out.TotalRevenue = revenue.Round(2)
	out.UniqueCustomers = int64(len(customers))

	if len(allOrders) > RecentOrderCount {
		out.RecentOrders = allOrders[:RecentOrderCount]
	} else {
		out.RecentOrders = allOrders
	}

	out.WeeklySales = weeklySales(allOrders, s.now().UTC())
	out.TopProducts = topProducts(allOrders)

	err = s.db.WithContext(ctx).
		Model(&models.Product{}).
		Count(&out.TotalProducts).Error
	if err != nil {
		return nil, fmt.Errorf("counting products: %w", err)
	}

	err = s.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("stock <= ?", LowStockThreshold).
		Count(&out.LowStockCount).Error
	if err != nil {
		return nil, fmt.Errorf("counting low stock products: %w", err)
	}

	return out, nil
}

// weeklySales buckets non-canceled orders per UTC day over the trailing
// seven days, oldest day first, including empty days.
func weeklySales(allOrders []models.Order, now time.Time) []DailySales {
	start := now.Truncate(24 * time.Hour).AddDate(0, 0, -6)

	buckets := make([]DailySales, 7)
	index := map[string]int{}
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format("2006-01-02")
		buckets[i] = DailySales{Date: date, Amount: decimal.Zero}
		index[date] = i
	}

	for _, order := range allOrders {
		if order.Status == enums.OrderStatusCanceled {
			continue
		}
		date := order.CreatedAt.UTC().Format("2006-01-02")
		i, ok := index[date]
		if !ok {
			continue
		}
		buckets[i].Orders++
		buckets[i].Amount = buckets[i].Amount.Add(order.TotalAmount).Round(2)
	}

	return buckets
}

// topProducts ranks item snapshots by ordered quantity across all orders.
func topProducts(allOrders []models.Order) []TopProduct {
	byName := map[string]*TopProduct{}
	for _, order := range allOrders {
		if order.Status == enums.OrderStatusCanceled {
			continue
		}
		for _, item := range order.Items {
			agg, ok := byName[item.ProductName]
			if !ok {
				agg = &TopProduct{ProductName: item.ProductName, Revenue: decimal.Zero}
				byName[item.ProductName] = agg
			}
			agg.Quantity += item.Quantity
			agg.Revenue = agg.Revenue.Add(item.Subtotal).Round(2)
		}
	}

	ranked := make([]TopProduct, 0, len(byName))
	for _, agg := range byName {
		ranked = append(ranked, *agg)
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Quantity != ranked[j].Quantity {
			return ranked[i].Quantity > ranked[j].Quantity
		}
		return ranked[i].ProductName < ranked[j].ProductName
	})

	if len(ranked) > TopProductCount {
		ranked = ranked[:TopProductCount]
	}
	return ranked
}
