package server

import (
	"net/http"

	"eventos-web/internal/handlers"
	"eventos-web/internal/middleware"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Services are the business services behind the HTTP surface
type Services struct {
	Auth     services.AuthServiceInterface
	Catalog  services.CatalogServiceInterface
	Images   services.ImageServiceInterface
	Purchase services.PurchaseServiceInterface
	Wallet   services.WalletServiceInterface
	Profile  services.ProfileServiceInterface
}

// RouterConfig carries what the router needs besides the services
type RouterConfig struct {
	AllowedOrigins []string
	Provider       storage.Provider
	LoginLimiter   *middleware.LoginRateLimiter
}

// NewRouter builds the HTTP surface of the web app
func NewRouter(cfg RouterConfig, svc Services) http.Handler {
	authHandler := handlers.NewAuthHandler(svc.Auth)
	catalogHandler := handlers.NewCatalogHandler(svc.Catalog, svc.Images)
	purchaseHandler := handlers.NewPurchaseHandler(svc.Purchase)
	walletHandler := handlers.NewWalletHandler(svc.Wallet)
	profileHandler := handlers.NewProfileHandler(svc.Profile)

	r := chi.NewRouter()

	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggingMiddleware)
	r.Use(middleware.ErrorHandlingMiddleware)
	r.Use(chimiddleware.CleanPath)
	r.Use(chimiddleware.StripSlashes)
	r.Use(middleware.SecurityHeadersMiddleware)
	r.Use(middleware.CORSMiddleware(middleware.DefaultCORSConfig(cfg.AllowedOrigins)))

	r.NotFound(middleware.NotFoundHandler().ServeHTTP)
	r.MethodNotAllowed(middleware.MethodNotAllowedHandler().ServeHTTP)

	r.Get("/healthz", handlers.Health)

	r.Group(func(r chi.Router) {
		r.Use(middleware.ClientState(cfg.Provider))
		r.Use(middleware.EnsureCSRFToken)
		r.Use(middleware.CSRFProtection)

		// Provider redirect target
		r.Get("/payment-callback", purchaseHandler.PaymentCallback)

		r.Route("/api", func(r chi.Router) {
			r.Route("/auth", func(r chi.Router) {
				r.Get("/session", authHandler.Session)
				r.Post("/register", authHandler.Register)
				r.Post("/logout", authHandler.Logout)

				r.Group(func(r chi.Router) {
					if cfg.LoginLimiter != nil {
						r.Use(middleware.LoginRateLimit(cfg.LoginLimiter))
					}
					r.Post("/login", authHandler.Login)
					r.Post("/attender/login", authHandler.LoginAttender)
				})
			})

			r.Route("/events", func(r chi.Router) {
				r.Get("/", catalogHandler.ListEvents)
				r.Get("/{eventID}", catalogHandler.EventDetail)
				r.Get("/{eventID}/image/{kind}", catalogHandler.EventImage)
			})

			r.Get("/categories", catalogHandler.Categories)
			r.Get("/categories/{key}", catalogHandler.CategoryEvents)

			r.Route("/preferences/view", func(r chi.Router) {
				r.Get("/", handlers.ViewMode)
				r.Put("/", handlers.SetViewMode)
				r.Post("/toggle", handlers.ToggleViewMode)
			})

			// Private routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireSession(svc.Auth))

				r.Route("/purchase", func(r chi.Router) {
					r.Post("/widget-events", purchaseHandler.WidgetEvent)
					r.Delete("/orders/{orderID}", purchaseHandler.DiscardOrder)
					r.Get("/{eventID}", purchaseHandler.Checkout)
					r.Post("/{eventID}/adjust", purchaseHandler.Adjust)
					r.Post("/{eventID}/submit", purchaseHandler.Submit)
				})

				r.Route("/my-tickets", func(r chi.Router) {
					r.Get("/", walletHandler.MyTickets)
					r.Get("/{purchaseID}/pdf", walletHandler.TicketPDF)
					r.Get("/{purchaseID}/qr/{itemID}", walletHandler.TicketQR)
				})

				r.Post("/profile/document", profileHandler.LinkDocument)
			})
		})
	})

	return r
}
