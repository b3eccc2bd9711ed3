package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/editor"
	"github.com/inkpress/inkpress/internal/feed"
	"github.com/inkpress/inkpress/internal/listing"
	"github.com/inkpress/inkpress/internal/model"
	"github.com/inkpress/inkpress/internal/publish"
	"github.com/inkpress/inkpress/internal/repository"
	"github.com/inkpress/inkpress/internal/sse"
)

const maxBodySize = 10 << 20

// wordsPerMinute converts the dashboard's average word count into an
// average reading time.
const wordsPerMinute = 200

type Handler struct {
	pipeline *publish.Pipeline
	store    repository.PostStore
	users    repository.UserStore
	listing  *listing.Service
	drafts   editor.DraftStore
	clients  *sse.Clients
	authp    auth.Provider
	site     feed.Site
	featured int
	recent   int
}

func NewHandler(
	pipeline *publish.Pipeline,
	store repository.PostStore,
	users repository.UserStore,
	listSvc *listing.Service,
	drafts editor.DraftStore,
	clients *sse.Clients,
	authp auth.Provider,
	site feed.Site,
	featuredLimit, recentLimit int,
) *Handler {
	if featuredLimit <= 0 {
		featuredLimit = 3
	}
	if recentLimit <= 0 {
		recentLimit = 5
	}
	return &Handler{
		pipeline: pipeline,
		store:    store,
		users:    users,
		listing:  listSvc,
		drafts:   drafts,
		clients:  clients,
		authp:    authp,
		site:     site,
		featured: featuredLimit,
		recent:   recentLimit,
	}
}

// author resolves the calling user, falling back to any stored author
// when the auth provider carries no identity.
func (h *Handler) author(r *http.Request) model.UserID {
	if h.authp != nil {
		if id, err := h.authp.UserID(r); err == nil && id != "" {
			return id
		}
	}
	if h.users != nil {
		if usr, err := h.users.AnyUser(r.Context()); err == nil {
			return usr.ID
		}
	}
	return ""
}

func (h *Handler) writeActionError(w http.ResponseWriter, err error) {
	var ve *apperr.ValidationError
	switch {
	case errors.As(err, &ve):
		writeJSON(w, http.StatusBadRequest, errResponse{Error: "validation failed", Details: ve.Fields})
	case errors.Is(err, apperr.ErrDuplicateSlug):
		writeJSON(w, http.StatusConflict, errorBody("a post with this slug already exists"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("post not found"))
	default:
		apiLogger.Error().Err(err).Msg("Post action failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
	}
}

// CreatePost handles POST /api/posts.
func (h *Handler) CreatePost(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid payload: %v", err)))
		return
	}

	res, err := h.pipeline.Create(r.Context(), payload.toInput(h.author(r)))
	if err != nil {
		h.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"message":  "Post created successfully",
		"data":     toPostResponse(res.Post),
		"redirect": res.RedirectPath,
	})
}

// UpdatePost handles PUT /api/posts/{id}.
func (h *Handler) UpdatePost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(chi.URLParam(r, "id"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var payload PostPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}
	if err := payload.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody(fmt.Sprintf("invalid payload: %v", err)))
		return
	}

	res, err := h.pipeline.Update(r.Context(), id, payload.toInput(h.author(r)))
	if err != nil {
		h.writeActionError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":  "Post updated successfully",
		"data":     toPostResponse(res.Post),
		"redirect": res.RedirectPath,
	})
}

// DeletePost handles DELETE /api/posts/{id}.
func (h *Handler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(chi.URLParam(r, "id"))
	if err := h.pipeline.Delete(r.Context(), id); err != nil {
		h.writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"message": "Post deleted successfully"})
}

// GetPost handles GET /api/posts/{id}.
func (h *Handler) GetPost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(chi.URLParam(r, "id"))
	post, err := h.store.Get(r.Context(), id)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// GetPostBySlug handles GET /api/posts/slug/{slug}.
func (h *Handler) GetPostBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	post, err := h.store.GetBySlug(r.Context(), slug)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

// ViewPost handles POST /api/posts/{id}/view.
func (h *Handler) ViewPost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(chi.URLParam(r, "id"))
	if err := h.store.IncrementViews(r.Context(), id); err != nil {
		h.writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// LikePost handles POST /api/posts/{id}/like.
func (h *Handler) LikePost(w http.ResponseWriter, r *http.Request) {
	id := model.PostID(chi.URLParam(r, "id"))
	likes, err := h.store.IncrementLikes(r.Context(), id)
	if err != nil {
		h.writeActionError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"likes": likes})
}

// ListPosts handles GET /api/posts. With featured=true it returns the
// featured selection instead of the filtered listing.
func (h *Handler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var views []listing.View
	var err error
	if q.Get("featured") == "true" {
		views, err = h.listing.Featured(r.Context(), h.featured)
	} else {
		views, err = h.listing.Query(r.Context(), q.Get("category"), q.Get("search"))
	}
	if err != nil {
		apiLogger.Error().Err(err).Msg("Listing query failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"posts": views,
		"total": len(views),
	})
}

// Categories handles GET /api/categories.
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.listing.Categories(r.Context())
	if err != nil {
		apiLogger.Error().Err(err).Msg("Categories query failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": categories})
}

// DashboardStats handles GET /api/dashboard/stats.
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.store.Stats(r.Context())
	if err != nil {
		apiLogger.Error().Err(err).Msg("Stats query failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"totalViews":     stats.TotalViews,
		"totalLikes":     stats.TotalLikes,
		"activePosts":    stats.ActivePosts,
		"avgReadingTime": stats.AvgWordCount / wordsPerMinute,
	})
}

// DashboardCategories handles GET /api/dashboard/categories.
func (h *Handler) DashboardCategories(w http.ResponseWriter, r *http.Request) {
	counts, err := h.store.CategoryCounts(r.Context())
	if err != nil {
		apiLogger.Error().Err(err).Msg("Category counts query failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	out := make([]map[string]any, 0, len(counts))
	for _, c := range counts {
		out = append(out, map[string]any{"category": c.Category, "count": c.Count})
	}
	writeJSON(w, http.StatusOK, map[string]any{"categories": out})
}

// DashboardRecent handles GET /api/dashboard/recent.
func (h *Handler) DashboardRecent(w http.ResponseWriter, r *http.Request) {
	views, err := h.listing.Recent(r.Context(), h.recent)
	if err != nil {
		apiLogger.Error().Err(err).Msg("Recent query failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"posts": views})
}

// CreateDraft handles POST /api/drafts.
func (h *Handler) CreateDraft(w http.ResponseWriter, r *http.Request) {
	draft, err := h.drafts.Create()
	if err != nil {
		apiLogger.Error().Err(err).Msg("Draft create failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusCreated, toDraftResponse(draft))
}

// SaveDraft handles PUT /api/drafts/{id}.
func (h *Handler) SaveDraft(w http.ResponseWriter, r *http.Request) {
	id := editor.DraftID(chi.URLParam(r, "id"))

	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	var payload DraftPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid json body"))
		return
	}

	if err := h.drafts.Save(id, payload.Title, payload.Blocks); err != nil {
		apiLogger.Error().Err(err).Msg("Draft save failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// GetDraft handles GET /api/drafts/{id}.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	id := editor.DraftID(chi.URLParam(r, "id"))
	draft, err := h.drafts.Get(id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("draft not found"))
			return
		}
		apiLogger.Error().Err(err).Msg("Draft get failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, toDraftResponse(draft))
}

// DeleteDraft handles DELETE /api/drafts/{id}.
func (h *Handler) DeleteDraft(w http.ResponseWriter, r *http.Request) {
	id := editor.DraftID(chi.URLParam(r, "id"))
	if err := h.drafts.Delete(id); err != nil {
		apiLogger.Error().Err(err).Msg("Draft delete failed")
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

// Events handles GET /events: a Server-Sent Events stream of change
// notifications, optionally narrowed to one topic with ?topic=/blog.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := &sse.Client{
		Msg:   make(chan string, 8),
		Topic: r.URL.Query().Get("topic"),
	}
	h.clients.Add(client)
	defer h.clients.Delete(client)

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-client.Msg:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}

// Feed handles GET /feed.xml.
func (h *Handler) Feed(w http.ResponseWriter, r *http.Request) {
	views, err := h.listing.Query(r.Context(), "", "")
	if err != nil {
		apiLogger.Error().Err(err).Msg("Feed query failed")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/rss+xml; charset=utf-8")
	if err := feed.WriteRSS(w, h.site, views); err != nil {
		apiLogger.Error().Err(err).Msg("Error encoding feed")
	}
}
