package main

import (
	"net/http"

	"github.com/julienschmidt/httprouter"
)

// SetupBookRoutes injects book related api endpoints.
func (api *APIHandler) SetupBookRoutes(router *httprouter.Router, m *MiddlewareMap) *httprouter.Router {
	router.RedirectTrailingSlash = true
	router.GET("/", m.public(api.Index))
	router.GET("/status", m.public(api.Status))
	router.POST("/v1/books", m.public(api.CreateBook))
	router.GET("/v1/books", m.public(api.GetAllBooks))
	router.GET("/v1/books/:id", m.public(api.GetOneOrSearchBooks))
	router.PUT("/v1/books/:id", m.public(api.UpdateBook))
	router.DELETE("/v1/books/:id", m.public(api.DeleteOneBook))
	return router
}

// GetOneOrSearchBooks dispatches GET /v1/books/search to the search handler.
// httprouter rejects a static path registered next to the :id parameter so
// both endpoints share the same route.
func (api *APIHandler) GetOneOrSearchBooks(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if ps.ByName("id") == "search" {
		api.SearchBooks(w, r, ps)
		return
	}
	api.GetOneBook(w, r, ps)
}
