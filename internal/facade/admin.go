package facade

import (
	"context"
	"encoding/json"
	"net/http"

	"marketplace-portal/internal/apiclient"
	"marketplace-portal/internal/model"
)

var AdminCatalog = Catalog{
	"getProfile":   {Method: http.MethodGet, Path: "/api/profile"},
	"getBuyers":    {Method: http.MethodGet, Path: "/api/admin/users/buyers", Query: true},
	"getSellers":   {Method: http.MethodGet, Path: "/api/admin/users/sellers", Query: true},
	"getAdmins":    {Method: http.MethodGet, Path: "/api/admin/users/admins"},
	"createAdmin":  {Method: http.MethodPost, Path: "/api/admin/create-admin"},
	"suspendUser":  {Method: http.MethodPut, Path: "/api/admin/users/{userId}/suspend"},
	"activateUser": {Method: http.MethodPut, Path: "/api/admin/users/{userId}/activate"},
	"removeUser":   {Method: http.MethodDelete, Path: "/api/admin/users/{userId}/remove"},
}

type AdminAPI struct {
	f *Facade
}

func NewAdminAPI(client Requester) *AdminAPI {
	return &AdminAPI{f: New(model.RoleAdmin, AdminCatalog, client)}
}

func (a *AdminAPI) GetProfile(ctx context.Context) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getProfile", Call{})
}

func (a *AdminAPI) GetBuyers(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getBuyers", Call{Query: q})
}

func (a *AdminAPI) GetSellers(ctx context.Context, q apiclient.Query) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getSellers", Call{Query: q})
}

func (a *AdminAPI) GetAdmins(ctx context.Context) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "getAdmins", Call{})
}

func (a *AdminAPI) CreateAdmin(ctx context.Context, body any) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "createAdmin", Call{Body: body})
}

func (a *AdminAPI) SuspendUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "suspendUser", userCall(userID))
}

func (a *AdminAPI) ActivateUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "activateUser", userCall(userID))
}

func (a *AdminAPI) RemoveUser(ctx context.Context, userID string) (json.RawMessage, error) {
	return a.f.Invoke(ctx, "removeUser", userCall(userID))
}

func userCall(userID string) Call {
	return Call{Params: map[string]string{"userId": userID}}
}
