package facade

import (
	"context"
	"encoding/json"
	"net/http"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/model"
)

// DefaultAnalyticsPeriod is the analytics window in days when none is given.
const DefaultAnalyticsPeriod = 30

var SellerCatalog = Catalog{
	"getProfile":         {Method: http.MethodGet, Path: "/api/profile"},
	"getAvailableOrders": {Method: http.MethodGet, Path: "/api/seller/orders/available", Query: true},
	"getMyQuotations":    {Method: http.MethodGet, Path: "/api/seller/quotations/my-quotations", Query: true},
	"createQuotation":    {Method: http.MethodPost, Path: "/api/seller/quotations/create"},
	"getAcceptedOrders":  {Method: http.MethodGet, Path: "/api/seller/orders/accepted", Query: true},
	"getAnalytics":       {Method: http.MethodGet, Path: "/api/seller/analytics/overview", Query: true},
}

type SellerAPI struct {
	f *Facade
}

func NewSellerAPI(client Requester) *SellerAPI {
	return &SellerAPI{f: New(model.RoleSeller, SellerCatalog, client)}
}

func (a *SellerAPI) GetProfile(ctx context.Context) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getProfile", Call{})
}

func (a *SellerAPI) GetAvailableOrders(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getAvailableOrders", Call{Query: q})
}

func (a *SellerAPI) GetMyQuotations(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getMyQuotations", Call{Query: q})
}

func (a *SellerAPI) CreateQuotation(ctx context.Context, body any) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "createQuotation", Call{Body: body})
}

func (a *SellerAPI) GetAcceptedOrders(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getAcceptedOrders", Call{Query: q})
}

// GetAnalytics fetches the overview for the last period days; period <= 0
// means DefaultAnalyticsPeriod.
func (a *SellerAPI) GetAnalytics(ctx context.Context, period int) (json.RawMessage, error) {
	if period <= 0 {
		period = DefaultAnalyticsPeriod
	}
	return a.f.Invoke(ctx, "getAnalytics", Call{Query: apiclient.Query{"period": period}})
}
