package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"strconv"

	"golang.org/x/sync/errgroup"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/facade"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/util"
)

const (
	recentOrdersLimit = 5
	activeUserRatio   = 0.65
)

type buyerDashboardAPI interface {
	GetOrders(ctx context.Context, q apiclient.Query) (json.RawMessage, error)
	GetCart(ctx context.Context) (json.RawMessage, error)
}

type sellerDashboardAPI interface {
	GetAnalytics(ctx context.Context, period int) (json.RawMessage, error)
}

type adminDashboardAPI interface {
	GetBuyers(ctx context.Context, q apiclient.Query) (json.RawMessage, error)
	GetSellers(ctx context.Context, q apiclient.Query) (json.RawMessage, error)
	GetAdmins(ctx context.Context) (json.RawMessage, error)
}

type userLookup interface {
	User(ctx context.Context, role model.Role) (json.RawMessage, error)
}

// DashboardService builds the landing view of each role. Data sources of a
// dashboard load concurrently; the first failure aborts the view.
type DashboardService struct {
	buyer  buyerDashboardAPI
	seller sellerDashboardAPI
	admin  adminDashboardAPI
	users  userLookup
}

func NewDashboardService(buyer buyerDashboardAPI, seller sellerDashboardAPI, admin adminDashboardAPI, users userLookup) *DashboardService {
	return &DashboardService{buyer: buyer, seller: seller, admin: admin, users: users}
}

type pagination struct {
	TotalItems int `json:"totalItems"`
}

type paginatedList struct {
	Pagination pagination `json:"pagination"`
}

type buyerOrder struct {
	ID          any       `json:"id"`
	Status      string    `json:"status"`
	TotalAmount flexFloat `json:"total_amount"`
	CreatedAt   string    `json:"created_at"`
}

type buyerOrders struct {
	Orders     []buyerOrder `json:"orders"`
	Pagination pagination   `json:"pagination"`
}

type buyerCart struct {
	Items []json.RawMessage `json:"items"`
}

type sellerAnalytics struct {
	Stats struct {
		TotalRevenue flexFloat `json:"total_revenue"`
	} `json:"stats"`
}

func (s *DashboardService) Buyer(ctx context.Context) (model.BuyerDashboard, error) {
	var ordersRaw, cartRaw json.RawMessage

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		ordersRaw, err = s.buyer.GetOrders(gctx, apiclient.Query{"limit": recentOrdersLimit})
		return err
	})
	g.Go(func() error {
		var err error
		cartRaw, err = s.buyer.GetCart(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.BuyerDashboard{}, err
	}

	var orders buyerOrders
	decodeLenient(ordersRaw, &orders, "buyer orders")
	var cart buyerCart
	decodeLenient(cartRaw, &cart, "buyer cart")

	dashboard := model.BuyerDashboard{
		User: s.user(ctx, model.RoleBuyer),
		Stats: model.BuyerStats{
			Orders:    orders.Pagination.TotalItems,
			CartItems: len(cart.Items),
		},
		RecentOrders: make([]model.RecentOrder, 0, len(orders.Orders)),
	}

	for _, order := range orders.Orders {
		dashboard.Stats.TotalSpent += float64(order.TotalAmount)

		recent := model.RecentOrder{
			ID:          order.ID,
			Status:      order.Status,
			StatusClass: util.StatusColor(order.Status),
			Total:       float64(order.TotalAmount),
			TotalLabel:  util.FormatCurrency(float64(order.TotalAmount)),
		}
		if order.CreatedAt != "" {
			recent.PlacedOn = util.FormatDate(order.CreatedAt)
		}
		dashboard.RecentOrders = append(dashboard.RecentOrders, recent)
	}
	dashboard.Stats.TotalSpentLabel = util.FormatCurrency(dashboard.Stats.TotalSpent)

	return dashboard, nil
}

func (s *DashboardService) Seller(ctx context.Context) (model.SellerDashboard, error) {
	raw, err := s.seller.GetAnalytics(ctx, facade.DefaultAnalyticsPeriod)
	if err != nil {
		return model.SellerDashboard{}, err
	}

	var analytics sellerAnalytics
	decodeLenient(raw, &analytics, "seller analytics")
	earnings := float64(analytics.Stats.TotalRevenue)

	return model.SellerDashboard{
		User:               s.user(ctx, model.RoleSeller),
		Analytics:          raw,
		TotalEarnings:      earnings,
		TotalEarningsLabel: util.FormatCurrency(earnings),
		Period:             facade.DefaultAnalyticsPeriod,
	}, nil
}

func (s *DashboardService) Admin(ctx context.Context) (model.AdminDashboard, error) {
	var buyersRaw, sellersRaw, adminsRaw json.RawMessage
	countOnly := apiclient.Query{"limit": 1}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		buyersRaw, err = s.admin.GetBuyers(gctx, countOnly)
		return err
	})
	g.Go(func() error {
		var err error
		sellersRaw, err = s.admin.GetSellers(gctx, countOnly)
		return err
	})
	g.Go(func() error {
		var err error
		adminsRaw, err = s.admin.GetAdmins(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.AdminDashboard{}, err
	}

	var buyers, sellers paginatedList
	decodeLenient(buyersRaw, &buyers, "admin buyers")
	decodeLenient(sellersRaw, &sellers, "admin sellers")
	var admins []json.RawMessage
	decodeLenient(adminsRaw, &admins, "admin admins")

	breakdown := model.UserBreakdown{
		Buyers:  buyers.Pagination.TotalItems,
		Sellers: sellers.Pagination.TotalItems,
		Admins:  len(admins),
	}

	return model.AdminDashboard{
		User:          s.user(ctx, model.RoleAdmin),
		UserBreakdown: breakdown,
		TotalUsers:    breakdown.Buyers + breakdown.Sellers + breakdown.Admins,
		ActiveUsers:   int(math.Floor(float64(breakdown.Buyers+breakdown.Sellers) * activeUserRatio)),
	}, nil
}

func (s *DashboardService) user(ctx context.Context, role model.Role) json.RawMessage {
	user, err := s.users.User(ctx, role)
	if err != nil && !errors.Is(err, model.ErrNoSession) {
		slog.Warn("failed to load user record", "role", role, "error", err)
	}
	return user
}

// decodeLenient leaves dst at its zero value when the payload does not have
// the expected shape, so missing fields count as zero.
func decodeLenient(raw json.RawMessage, dst any, what string) {
	if err := json.Unmarshal(raw, dst); err != nil {
		slog.Debug("unexpected payload shape", "payload", what, "error", err)
	}
}

// flexFloat accepts a JSON number or a numeric string; anything else is 0.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		data = []byte(s)
	}

	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(v)
	return nil
}
