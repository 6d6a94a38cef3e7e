package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/VadoVates/autoservice/api/controllers"
	"github.com/VadoVates/autoservice/api/middleware"
	"github.com/VadoVates/autoservice/internal/customers"
	"github.com/VadoVates/autoservice/internal/dashboard"
	"github.com/VadoVates/autoservice/internal/invoices"
	"github.com/VadoVates/autoservice/internal/orders"
	"github.com/VadoVates/autoservice/internal/parts"
	"github.com/VadoVates/autoservice/internal/vehicles"
	"github.com/VadoVates/autoservice/internal/workstations"
	"github.com/VadoVates/autoservice/pkg/config"
	"github.com/VadoVates/autoservice/pkg/db"
	"github.com/VadoVates/autoservice/pkg/logger"
	"github.com/VadoVates/autoservice/pkg/metrics"
	"github.com/VadoVates/autoservice/pkg/redis"
)

// Deps bundles everything the router needs wired in.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DB          db.Pinger
	Redis       *redis.Client
	Registry    *prometheus.Registry
	HTTPMetrics *metrics.HTTPMetrics

	Customers    customers.Service
	Vehicles     vehicles.Service
	Parts        parts.Service
	WorkStations workstations.Service
	Orders       orders.Service
	Dashboard    dashboard.Service
	Invoices     *invoices.Renderer
}

// NewRouter assembles the HTTP surface of the workshop API.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(cfg.HTTP.CORSOrigins),
		middleware.Metrics(deps.HTTPMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, deps.DB, cachePinger(deps.Redis), logg))
	})

	if deps.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Route("/customers", func(r chi.Router) {
			r.Post("/", controllers.CustomerCreate(deps.Customers, logg))
			r.Get("/", controllers.CustomerList(deps.Customers, logg))
			r.Get("/{id}", controllers.CustomerGet(deps.Customers, logg))
			r.Put("/{id}", controllers.CustomerUpdate(deps.Customers, logg))
			r.Delete("/{id}", controllers.CustomerDelete(deps.Customers, logg))
			r.Get("/{id}/vehicles", controllers.CustomerVehicles(deps.Customers, logg))
		})

		r.Route("/vehicles", func(r chi.Router) {
			r.Post("/", controllers.VehicleCreate(deps.Vehicles, logg))
			r.Get("/", controllers.VehicleList(deps.Vehicles, logg))
			r.Get("/{id}", controllers.VehicleGet(deps.Vehicles, logg))
			r.Put("/{id}", controllers.VehicleUpdate(deps.Vehicles, logg))
			r.Delete("/{id}", controllers.VehicleDelete(deps.Vehicles, logg))
		})

		r.Route("/parts", func(r chi.Router) {
			r.Post("/", controllers.PartCreate(deps.Parts, logg))
			r.Get("/", controllers.PartList(deps.Parts, logg))
			r.Get("/{id}", controllers.PartGet(deps.Parts, logg))
			r.Put("/{id}", controllers.PartUpdate(deps.Parts, logg))
			r.Delete("/{id}", controllers.PartDelete(deps.Parts, logg))
			r.Put("/{id}/stock", controllers.PartAdjustStock(deps.Parts, logg))
		})

		r.Route("/work-stations", func(r chi.Router) {
			r.Get("/", controllers.WorkStationList(deps.WorkStations, logg))
			r.Put("/{id}", controllers.WorkStationUpdate(deps.WorkStations, logg))
		})

		r.Get("/queue", controllers.OrderQueue(deps.Orders, logg))

		r.Route("/orders", func(r chi.Router) {
			r.Post("/", controllers.OrderCreate(deps.Orders, logg))
			r.Get("/", controllers.OrderList(deps.Orders, logg))
			r.Get("/{id}", controllers.OrderGet(deps.Orders, logg))
			r.Put("/{id}", controllers.OrderUpdate(deps.Orders, logg))
			r.Delete("/{id}", controllers.OrderDelete(deps.Orders, logg))

			r.Post("/{id}/parts", controllers.OrderAttachPart(deps.Orders, logg))
			r.Get("/{id}/parts", controllers.OrderListParts(deps.Orders, logg))
			r.Delete("/{id}/parts/{orderPartID}", controllers.OrderDetachPart(deps.Orders, logg))

			r.Post("/{id}/invoice", controllers.OrderGenerateInvoice(deps.Orders, deps.Invoices, logg))
			r.Get("/{id}/invoice", controllers.OrderGetInvoice(deps.Orders, logg))
		})

		r.Get("/dashboard/stats", controllers.DashboardStats(deps.Dashboard, logg))
	})

	return r
}

// cachePinger keeps a typed nil *redis.Client from reaching the readiness
// check as a non-nil interface.
func cachePinger(client *redis.Client) redis.Pinger {
	if client == nil {
		return nil
	}
	return client
}
