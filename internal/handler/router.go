package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	custommiddleware "github.com/mmeshcher/simushop/internal/middleware"
)

// SetupRouter настраивает HTTP-маршруты и middleware симулятора.
func (h *Handler) SetupRouter() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(custommiddleware.Logger(h.logger))
	r.Use(custommiddleware.GzipMiddleware)
	if h.limiter != nil {
		r.Use(h.limiter)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/signup", h.Signup)
		r.Get("/clock", h.GetClock)
		r.Get("/finance/options", h.GetFinanceOptions)

		r.Group(func(r chi.Router) {
			r.Use(h.gate.Middleware)

			r.Get("/profile", h.GetProfile)
			r.Post("/clock/reset", h.ResetClock)

			r.Get("/wallet", h.GetWallet)
			r.Post("/wallet/funds", h.AddFunds)

			r.Get("/prime", h.GetPrime)
			r.Post("/prime", h.Subscribe)
			r.Delete("/prime", h.CancelPrime)

			r.Route("/cart", func(r chi.Router) {
				r.Get("/", h.GetCart)
				r.Post("/", h.AddToCart)
				r.Patch("/{productID}", h.UpdateCartItem)
				r.Delete("/{productID}", h.RemoveFromCart)
			})

			r.Route("/addresses", func(r chi.Router) {
				r.Get("/", h.GetAddresses)
				r.Post("/", h.AddAddress)
				r.Put("/{addressID}", h.UpdateAddress)
				r.Delete("/{addressID}", h.DeleteAddress)
			})

			r.Post("/checkout", h.Checkout)
			r.Get("/orders", h.GetOrders)
			r.Get("/finance/plans", h.GetPlans)
			r.Get("/notifications", h.GetNotifications)
			r.Delete("/account", h.DeleteAccount)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusNotFound), http.StatusNotFound)
	})

	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
	})

	return r
}
