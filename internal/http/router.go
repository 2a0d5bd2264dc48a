package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	categoryHandler "github.com/detroitcommons/commons/internal/http/category"
	expenseHandler "github.com/detroitcommons/commons/internal/http/expense"
	memberHandler "github.com/detroitcommons/commons/internal/http/member"
)

func New(
	expensesV1 *expenseHandler.Handler,
	membersV1 *memberHandler.Handler,
	categoriesV1 *categoryHandler.Handler,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"https://*", "http://*"},
		AllowedMethods: []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Modification-Key"},
		MaxAge:         300,
	}))

	router.Route("/api/v1", func(r chi.Router) {
		// Expense routes accept both JSON and multipart uploads, so no
		// content-type gate here.
		r.Route("/expenses", expensesV1.Routes)

		r.Route("/members", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			membersV1.Routes(r)
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(middleware.AllowContentType("application/json"))
			categoriesV1.Routes(r)
		})
	})

	return router
}
