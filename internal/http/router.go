package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

type RouterConfig struct {
	Carts      Carts
	Orders     Orders
	Postbacks  Postbacks
	AdminToken string
	Logger     *zerolog.Logger
}

func NewRouter(cfg RouterConfig) *chi.Mux {
	logger := cfg.Logger
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	carts := NewCartHandler(cfg.Carts, logger)
	orders := NewOrderHandler(cfg.Orders, cfg.Carts, logger)
	postbacks := NewPostbackHandler(cfg.Postbacks, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(IdentityMiddleware)
	r.Use(LoggerMiddleware(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/orders/moneris_postback", postbacks.Moneris)

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/cart", func(r chi.Router) {
			r.Get("/", carts.GetCart)
			r.Post("/items", carts.AddItem)
			r.Delete("/items/{item_id}", carts.RemoveItem)
		})

		r.Route("/orders", func(r chi.Router) {
			r.Get("/", orders.ListOrders)
			r.Post("/", orders.Checkout)
			r.Get("/{order_id}", orders.GetOrder)
			r.Post("/{order_id}/cheque", orders.PayByCheque)
		})

		r.With(AdminMiddleware(cfg.AdminToken)).Post("/admin/orders", orders.CreatePending)
	})

	return r
}
