package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"renohub/internal/controller"
)

func NewRouter(c *controller.Controller) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", c.Ping)

		r.Route("/projects", func(r chi.Router) {
			r.Get("/", c.GetProjects)
			r.Post("/new", c.NewProject)
			r.Get("/{projectId}", c.GetProject)
			r.Put("/{projectId}/status", c.SetProjectStatus)
			r.Get("/{projectId}/view", c.ContractorView)
			r.Get("/{projectId}/bids", c.ProjectBids)
			r.Post("/{projectId}/visits/new", c.NewVisit)
			r.Post("/{projectId}/bids/new", c.NewBid)
			r.Put("/{projectId}/select/{bidId}", c.SelectBid)
		})

		r.Route("/visits", func(r chi.Router) {
			r.Put("/{visitId}/cancel", c.CancelVisit)
			r.Put("/{visitId}/complete", c.CompleteVisit)
		})

		r.Delete("/bids/{bidId}", c.WithdrawBid)
	})

	return r
}
