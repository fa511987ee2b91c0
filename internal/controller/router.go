package controller

import (
	"time"

	"github.com/bookstay/payments/internal/gateway"
	"github.com/bookstay/payments/internal/infrastructure/config"
	"github.com/bookstay/payments/internal/infrastructure/observability"
	customMW "github.com/bookstay/payments/internal/middleware"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterDeps struct {
	Gateway    gateway.PaymentGateway
	Metrics    *observability.Metrics
	CORSConfig config.CORSConfig
	// FeePercent is the default platform fee for split payments, applied
	// when a request carries no explicit application fee.
	FeePercent float64
}

func NewRouter(deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(customMW.Tracing())
	r.Use(chimw.RealIP)
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   deps.CORSConfig.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: deps.CORSConfig.AllowCredentials,
		MaxAge:           300,
	}))
	r.Use(customMW.Metrics(deps.Metrics))

	healthH := NewHealthController()
	paymentH := NewPaymentController(deps.Gateway, deps.FeePercent)
	accountH := NewAccountController(deps.Gateway)

	r.Get("/health", healthH.Health)
	r.Get("/health/live", healthH.Liveness)

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Payment intents
		r.Post("/payment-intents", paymentH.CreateIntent)
		r.Post("/payment-intents/split", paymentH.CreateSplitIntent)
		r.Post("/payment-intents/{id}/confirm", paymentH.Confirm)
		r.Post("/payment-intents/{id}/refund", paymentH.Refund)
		r.Get("/payment-intents/{id}/status", paymentH.GetStatus)

		// Customers
		r.Post("/customers", paymentH.CreateCustomer)

		// Connected accounts
		r.Post("/connect/accounts", accountH.CreateAccount)
		r.Post("/connect/accounts/{id}/links", accountH.CreateLink)
	})

	return r
}
