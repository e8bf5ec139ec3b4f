package api

import (
	"net/http"
	"time"

	"shop-service/internal/api/handlers"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	Auth      *handlers.AuthHandler
	Shops     *handlers.ShopHandler
	Products  *handlers.ProductHandler
	Orders    *handlers.OrderHandler
	Dashboard *handlers.DashboardHandler
	Health    http.HandlerFunc
}

func NewRouter(h Handlers, timeout time.Duration) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))

	r.Get("/health", h.Health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/sign-up", h.Auth.SignUp)
		r.Post("/sign-in", h.Auth.SignIn)
		r.Post("/sign-out", h.Auth.SignOut)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)

		r.Get("/dashboard", h.Dashboard.Global)

		r.Route("/shops", func(r chi.Router) {
			r.Get("/", h.Shops.List)
			r.Post("/", h.Shops.Create)

			r.Route("/{shopID}", func(r chi.Router) {
				r.Get("/", h.Shops.Get)
				r.Delete("/", h.Shops.Delete)
				r.Post("/members", h.Shops.AddMember)
				r.Get("/dashboard", h.Dashboard.Shop)

				r.Route("/products", func(r chi.Router) {
					r.Get("/", h.Products.List)
					r.Post("/", h.Products.Create)
					r.Get("/{productID}", h.Products.GetByID)
					r.Put("/{productID}", h.Products.Update)
					r.Delete("/{productID}", h.Products.Delete)
					r.Get("/{productID}/operations", h.Products.Operations)
				})

				r.Route("/suppliers", func(r chi.Router) {
					r.Get("/", h.Shops.ListSuppliers)
					r.Post("/", h.Shops.CreateSupplier)
					r.Delete("/{supplierID}", h.Shops.UnlinkSupplier)
				})

				r.Route("/orders", func(r chi.Router) {
					r.Get("/", h.Orders.List)
					r.Post("/", h.Orders.Create)
					r.Get("/{orderID}", h.Orders.GetByID)
					r.Delete("/{orderID}", h.Orders.Delete)
					r.Patch("/{orderID}/status", h.Orders.UpdateStatus)
					r.Get("/{orderID}/operations", h.Orders.Operations)
				})
			})
		})
	})

	return r
}
