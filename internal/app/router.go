package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/prime-apparel/backend/internal/auth"
	"github.com/prime-apparel/backend/internal/costings"
	"github.com/prime-apparel/backend/internal/leads"
	"github.com/prime-apparel/backend/internal/observability"
	"github.com/prime-apparel/backend/internal/orders"
	"github.com/prime-apparel/backend/internal/procurement"
	"github.com/prime-apparel/backend/internal/production"
	"github.com/prime-apparel/backend/internal/products"
	"github.com/prime-apparel/backend/internal/suppliers"
	"github.com/prime-apparel/backend/internal/users"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger *slog.Logger
	Config *Config

	AuthMiddleware func(http.Handler) http.Handler

	AuthHandler        *auth.Handler
	UsersHandler       *users.Handler
	LeadsHandler       *leads.Handler
	CostingsHandler    *costings.Handler
	OrdersHandler      *orders.Handler
	ProductionHandler  *production.Handler
	ProductsHandler    *products.Handler
	SuppliersHandler   *suppliers.Handler
	ProcurementHandler *procurement.Handler

	Metrics *observability.Metrics
	Pool    *pgxpool.Pool
}

// NewRouter constructs the chi.Router for the JSON API.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Auth:    params.AuthMiddleware,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", params.AuthHandler.MountRoutes)
		r.Route("/users", params.UsersHandler.MountRoutes)
		r.Route("/leads", params.LeadsHandler.MountRoutes)
		r.Route("/costings", params.CostingsHandler.MountRoutes)
		r.Route("/orders", params.OrdersHandler.MountRoutes)
		r.Route("/production", params.ProductionHandler.MountRoutes)
		r.Route("/products", params.ProductsHandler.MountRoutes)
		r.Route("/suppliers", params.SuppliersHandler.MountRoutes)
		r.Route("/purchase-orders", params.ProcurementHandler.MountRoutes)
	})

	return r
}
