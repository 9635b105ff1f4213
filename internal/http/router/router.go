package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Heinvv10/gaztime-sub000/internal/http/handlers"
	mw "github.com/Heinvv10/gaztime-sub000/internal/http/middleware"
	"github.com/Heinvv10/gaztime-sub000/internal/http/middleware/ratelimit"
	"github.com/Heinvv10/gaztime-sub000/internal/logx"
)

// Deps groups everything the router mounts.
type Deps struct {
	Base      *handlers.Handlers
	Orders    *handlers.OrderHandler
	Offers    *handlers.OfferHandler
	Drivers   *handlers.DriverHandler
	Wallets   *handlers.WalletHandler
	Cylinders *handlers.CylinderHandler
	Logger    logx.Logger
	RateLimit *ratelimit.Middleware
}

// New constructs a chi-based http.Handler with base middleware and routes.
func New(d Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(15 * time.Second))
	r.Use(mw.Observability(d.Logger))
	if d.RateLimit != nil {
		r.Use(d.RateLimit.Handler())
	}

	r.Get("/ping", d.Base.Ping)
	r.Method(http.MethodHead, "/healthcheck", http.HandlerFunc(d.Base.HealthcheckHead))
	r.Handle("/metrics", promhttp.Handler())
	r.NotFound(http.HandlerFunc(d.Base.NotFound))

	r.Route("/orders", func(r chi.Router) {
		r.Post("/", d.Orders.Create)
		r.Get("/", d.Orders.List)
		r.Get("/{id}", d.Orders.GetByID)
		r.Post("/{id}/confirm", d.Orders.Confirm)
		r.Post("/{id}/assign", d.Orders.Assign)
		r.Post("/{id}/status", d.Orders.UpdateStatus)
		r.Post("/{id}/complete", d.Orders.Complete)
		r.Post("/{id}/rating", d.Orders.Rate)
	})

	r.Route("/offers", func(r chi.Router) {
		r.Post("/{id}/accept", d.Offers.Accept)
		r.Post("/{id}/reject", d.Offers.Reject)
	})

	r.Route("/drivers", func(r chi.Router) {
		r.Post("/", d.Drivers.Create)
		r.Get("/", d.Drivers.List)
		r.Get("/{id}", d.Drivers.GetByID)
		r.Post("/{id}/status", d.Drivers.UpdateStatus)
		r.Post("/{id}/location", d.Drivers.UpdateLocation)
	})

	r.Route("/wallets", func(r chi.Router) {
		r.Get("/{customerID}", d.Wallets.Get)
		r.Post("/{customerID}/credit", d.Wallets.Credit)
		r.Post("/{customerID}/debit", d.Wallets.Debit)
	})

	r.Route("/cylinders", func(r chi.Router) {
		r.Post("/", d.Cylinders.Create)
		r.Get("/{id}", d.Cylinders.GetByID)
		r.Post("/{id}/move", d.Cylinders.Move)
		r.Get("/{id}/movements", d.Cylinders.Movements)
	})

	return r
}
