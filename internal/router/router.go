package router

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/lunchorder/api/internal/appdata"
	"github.com/lunchorder/api/internal/config"
	"github.com/lunchorder/api/internal/database"
	"github.com/lunchorder/api/internal/enum"
	"github.com/lunchorder/api/internal/events"
	"github.com/lunchorder/api/internal/handler"
	mw "github.com/lunchorder/api/internal/middleware"
	"github.com/lunchorder/api/internal/service"
	"github.com/lunchorder/api/internal/ws"
)

// New creates a Chi router with all application routes wired up.
// Every service reads from state and persists through store before state
// is updated; pub receives order-board events.
func New(cfg *config.Config, state *appdata.State, store database.Store, hub *ws.Hub, pub events.Publisher) chi.Router {
	r := chi.NewRouter()

	// Standard middleware
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // 5 minutes
	}))

	cal := service.NewCalendar(cfg.Location(), cfg.CutoffHour, cfg.CutoffMinute)
	orderService := service.NewOrderService(state, store, pub, cal)
	historyService := service.NewHistoryService(state)
	paymentService := service.NewPaymentService(state, store, pub)
	adminService := service.NewAdminService(state, store)

	// Public routes
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	authHandler := handler.NewAuthHandler(state, cfg.JWTSecret)
	authHandler.RegisterRoutes(r)

	// WebSocket route (handles auth internally via query param)
	r.Get("/ws/days/{date}/orders", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWS(hub, cfg.JWTSecret, state, w, r)
	})

	// Protected routes (require authentication)
	r.Group(func(r chi.Router) {
		r.Use(mw.Authenticate(cfg.JWTSecret, state))

		authHandler.RegisterSessionRoutes(r)

		dayHandler := handler.NewDayHandler(orderService, historyService, state, cal)
		dayHandler.RegisterRoutes(r)

		orderHandler := handler.NewOrderHandler(orderService)
		orderHandler.RegisterRoutes(r)

		historyHandler := handler.NewHistoryHandler(historyService)
		historyHandler.RegisterRoutes(r)

		paymentHandler := handler.NewPaymentHandler(paymentService)
		paymentHandler.RegisterRoutes(r)

		vendorHandler := handler.NewVendorHandler(adminService)
		vendorHandler.RegisterRoutes(r)

		// Admin and collector routes
		r.Group(func(r chi.Router) {
			r.Use(mw.RequirePrivileged)
			historyHandler.RegisterPrivilegedRoutes(r)
			paymentHandler.RegisterPrivilegedRoutes(r)
		})

		// Admin-only routes
		r.Route("/admin", func(r chi.Router) {
			r.Use(mw.RequireRole(enum.RoleAdmin))

			r.Route("/vendors", vendorHandler.RegisterAdminRoutes)

			userHandler := handler.NewUserHandler(adminService)
			r.Route("/users", userHandler.RegisterRoutes)

			settingsHandler := handler.NewSettingsHandler(adminService)
			settingsHandler.RegisterRoutes(r)
		})
	})

	log.Println("Router initialized with all handlers")
	return r
}
