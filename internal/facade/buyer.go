package facade

import (
	"context"
	"encoding/json"
	"net/http"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/model"
)

var BuyerCatalog = Catalog{
	"getProfile":          {Method: http.MethodGet, Path: "/api/profile"},
	"getOrders":           {Method: http.MethodGet, Path: "/api/orders/my-orders", Query: true},
	"getCart":             {Method: http.MethodGet, Path: "/api/cart"},
	"addToCart":           {Method: http.MethodPost, Path: "/api/cart/add"},
	"getProducts":         {Method: http.MethodGet, Path: "/api/products/search", Query: true},
	"createOrderFromCart": {Method: http.MethodPost, Path: "/api/buyer/orders/create-from-cart"},
	"getQuotations":       {Method: http.MethodGet, Path: "/api/orders/{orderId}/quotations"},
	"acceptQuotation":     {Method: http.MethodPost, Path: "/api/orders/{orderId}/accept-quotation"},
}

type BuyerAPI struct {
	f *Facade
}

func NewBuyerAPI(client Requester) *BuyerAPI {
	return &BuyerAPI{f: New(model.RoleBuyer, BuyerCatalog, client)}
}

func (a *BuyerAPI) GetProfile(ctx context.Context) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getProfile", Call{})
}

func (a *BuyerAPI) GetOrders(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getOrders", Call{Query: q})
}

func (a *BuyerAPI) GetCart(ctx context.Context) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getCart", Call{})
}

func (a *BuyerAPI) AddToCart(ctx context.Context, body any) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "addToCart", Call{Body: body})
}

func (a *BuyerAPI) GetProducts(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getProducts", Call{Query: q})
}

func (a *BuyerAPI) CreateOrderFromCart(ctx context.Context, body any) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "createOrderFromCart", Call{Body: body})
}

func (a *BuyerAPI) GetQuotations(ctx context.Context, orderID string) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getQuotations", Call{Params: map[string]string{"orderId": orderID}})
}

func (a *BuyerAPI) AcceptQuotation(ctx context.Context, orderID string, quotationID string) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "acceptQuotation", Call{
		Params: map[string]string{"orderId": orderID},
		Body:   model.AcceptQuotationRequest{QuotationID: quotationID},
	})
}
