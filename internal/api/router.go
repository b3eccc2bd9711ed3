package api

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/inkpress/inkpress/internal/auth"
)

// NewRouter mounts the public surface plus the admin group behind the
// auth provider's middleware.
func NewRouter(h *Handler, authp auth.Provider) chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	// Public reads.
	r.Get("/api/posts", h.ListPosts)
	r.Get("/api/posts/slug/{slug}", h.GetPostBySlug)
	r.Get("/api/posts/{id}", h.GetPost)
	r.Get("/api/categories", h.Categories)
	r.Get("/feed.xml", h.Feed)
	r.Get("/events", h.Events)

	// Counter bumps are public: readers view and like without accounts.
	r.Post("/api/posts/{id}/view", h.ViewPost)
	r.Post("/api/posts/{id}/like", h.LikePost)

	// Admin surface.
	r.Group(func(r chi.Router) {
		r.Use(authp.Middleware())

		r.Post("/api/posts", h.CreatePost)
		r.Put("/api/posts/{id}", h.UpdatePost)
		r.Delete("/api/posts/{id}", h.DeletePost)

		r.Post("/api/drafts", h.CreateDraft)
		r.Get("/api/drafts/{id}", h.GetDraft)
		r.Put("/api/drafts/{id}", h.SaveDraft)
		r.Delete("/api/drafts/{id}", h.DeleteDraft)

		r.Get("/api/dashboard/stats", h.DashboardStats)
		r.Get("/api/dashboard/categories", h.DashboardCategories)
		r.Get("/api/dashboard/recent", h.DashboardRecent)
	})

	return r
}
