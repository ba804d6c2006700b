package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marketplace-portal/internal/config"
	"marketplace-portal/internal/handler"
	"marketplace-portal/internal/middleware"
	"marketplace-portal/internal/model"
	"marketplace-portal/internal/websocket"
)

type Handlers struct {
	Portal  *handler.PortalHandler
	Session *handler.SessionHandler
	Buyer   *handler.BuyerHandler
	Seller  *handler.SellerHandler
	Admin   *handler.AdminHandler
}

func New(cfg *config.Config, guard *middleware.SessionGuard, h Handlers, hub *websocket.Hub) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.SessionRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)

	r.Get("/health", h.Portal.Health)
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/ws", hub.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(cfg.RequestTimeout))

		r.Get("/", h.Portal.Landing)
		r.Post("/logout", h.Session.Logout)

		r.Route("/api/session", func(api chi.Router) {
			api.Get("/", h.Session.List)
			api.Post("/{role}", h.Session.SignIn)
			api.Get("/{role}/user", h.Session.User)
		})

		r.Route("/buyer", func(buyer chi.Router) {
			buyer.Use(guard.Require(model.RoleBuyer))

			buyer.Get("/dashboard", h.Buyer.Dashboard)
			buyer.Get("/products", h.Buyer.Products)
			buyer.Get("/cart", h.Buyer.Cart)
			buyer.Post("/cart", h.Buyer.AddToCart)
			buyer.Get("/orders", h.Buyer.Orders)
			buyer.Post("/orders", h.Buyer.PlaceOrder)
			buyer.Get("/orders/{orderId}/quotations", h.Buyer.Quotations)
			buyer.Post("/orders/{orderId}/quotations/{quotationId}/accept", h.Buyer.AcceptQuotation)
			buyer.Get("/profile", h.Buyer.Profile)
		})

		r.Route("/seller", func(seller chi.Router) {
			seller.Use(guard.Require(model.RoleSeller))

			seller.Get("/dashboard", h.Seller.Dashboard)
			seller.Get("/orders", h.Seller.AvailableOrders)
			seller.Get("/orders/accepted", h.Seller.AcceptedOrders)
			seller.Get("/quotations", h.Seller.Quotations)
			seller.Post("/quotations", h.Seller.CreateQuotation)
			seller.Get("/analytics", h.Seller.Analytics)
			seller.Get("/profile", h.Seller.Profile)
		})

		r.Route("/admin", func(admin chi.Router) {
			admin.Use(guard.Require(model.RoleAdmin))

			admin.Get("/dashboard", h.Admin.Dashboard)
			admin.Get("/users/buyers", h.Admin.Buyers)
			admin.Get("/users/sellers", h.Admin.Sellers)
			admin.Put("/users/{userId}/suspend", h.Admin.SuspendUser)
			admin.Put("/users/{userId}/activate", h.Admin.ActivateUser)
			admin.Delete("/users/{userId}", h.Admin.RemoveUser)
			admin.Get("/admins", h.Admin.Admins)
			admin.Post("/admins", h.Admin.CreateAdmin)
			admin.Get("/profile", h.Admin.Profile)
		})
	})

	r.NotFound(h.Portal.NotFound)

	return r
}
