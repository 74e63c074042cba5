package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"gemwall/internal/middleware"
)

func (s *Server) RegisterRoutes() *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", s.healthz)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", s.register)
		r.Post("/auth/login", s.login)

		r.Group(func(r chi.Router) {
			r.Use(s.auth.Authenticate)

			r.Get("/auth/user", s.getCurrentUser)

			r.Get("/surveys", s.listSurveys)
			r.Get("/surveys/responses", s.listSurveyResponses)
			r.Get("/surveys/{id}", s.getSurvey)
			r.Post("/surveys/{id}/complete", s.completeSurvey)

			r.Get("/transactions", s.listTransactions)

			r.Post("/withdrawals", s.createWithdrawal)
			r.Get("/withdrawals/pending", s.getPendingWithdrawal)

			r.Post("/offerwall/complete", s.completeOffer)
			r.Post("/offerwall/earnings", s.reportEarnings)

			r.Route("/admin", func(r chi.Router) {
				r.Use(middleware.AdminOnly)

				r.Get("/users", s.listUsers)
				r.Patch("/users/{id}/status", s.updateUserStatus)
				r.Get("/withdrawals", s.listPendingWithdrawals)
				r.Patch("/withdrawals/{id}", s.processWithdrawal)
				r.Get("/stats", s.getStats)
			})
		})
	})

	return r
}
