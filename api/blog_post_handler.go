package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/portfolio-content-backend/database"
	"github.com/rpupo63/portfolio-content-backend/models"
)

type blogPostHandler struct {
	responder    Responder
	logger       zerolog.Logger
	blogPostRepo *database.BlogPostRepo
}

func newBlogPostHandler(blogPostRepo *database.BlogPostRepo) blogPostHandler {
	logger := log.With().Str("handlerName", "blogPostHandler").Logger()

	return blogPostHandler{
		responder:    NewResponder(logger),
		logger:       logger,
		blogPostRepo: blogPostRepo,
	}
}

// listPosts returns one page of published posts
// @Summary List blog posts
// @Tags Blog
// @Param category query string false "Category slug"
// @Param featured query bool false "Only featured posts"
// @Param search query string false "Title, excerpt or content substring"
// @Param page query int false "Page number"
// @Router /blog/posts [get]
func (h blogPostHandler) listPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		featured, err := boolParam(r, "featured")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		query := r.URL.Query()
		posts, err := h.blogPostRepo.ListPublished(r.Context(), database.BlogPostFilter{
			Category: strings.TrimSpace(query.Get("category")),
			Featured: featured,
			Search:   strings.TrimSpace(query.Get("search")),
			Page:     page,
		})
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

// viewPost returns a published post and counts the view
// @Summary Get blog post
// @Tags Blog
// @Param slug path string true "Post slug"
// @Router /blog/posts/{slug} [get]
func (h blogPostHandler) viewPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		post, err := h.blogPostRepo.ViewBySlug(r.Context(), chi.URLParam(r, "slug"))
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

func (h blogPostHandler) categoryCounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := h.blogPostRepo.CategoryCounts(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, counts)
	}
}

func (h blogPostHandler) recentPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		posts, err := h.blogPostRepo.Recent(r.Context())
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

func (h blogPostHandler) adminListPosts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, err := pageParam(r)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		posts, err := h.blogPostRepo.ListAll(r.Context(), page)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, posts)
	}
}

func (h blogPostHandler) getPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post, err := h.blogPostRepo.FindByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, post)
	}
}

// createPost creates a post. Reading time and the meta description are derived on save.
// @Summary Create blog post
// @Tags Admin
// @Param post body models.BlogPost true "Post data"
// @Router /admin/blog/posts [post]
func (h blogPostHandler) createPost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var post models.BlogPost
		if err := decodeJSON(w, r, &post); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post.ID = uuid.Nil
		post.Views = 0

		if err := h.blogPostRepo.Add(r.Context(), &post); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		h.logger.Info().Str("postId", post.ID.String()).Str("slug", post.Slug).Msg("Created blog post")
		h.responder.WriteJSONStatus(w, http.StatusCreated, post)
	}
}

func (h blogPostHandler) updatePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}

		var post models.BlogPost
		if err := decodeJSON(w, r, &post); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		existing, err := h.blogPostRepo.FindByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		post.ID = postID
		post.Slug = existing.Slug
		post.Views = existing.Views
		if post.PublishedDate.IsZero() {
			post.PublishedDate = existing.PublishedDate
		}

		if err := h.blogPostRepo.Update(r.Context(), &post); err != nil {
			h.responder.WriteError(w, err)
			return
		}

		updated, err := h.blogPostRepo.FindByID(r.Context(), postID)
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, updated)
	}
}

func (h blogPostHandler) deletePost() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := idParam(r, "postID")
		if err != nil {
			h.responder.WriteError(w, err)
			return
		}
		if err := h.blogPostRepo.Delete(r.Context(), postID); err != nil {
			h.responder.WriteError(w, err)
			return
		}
		h.responder.WriteJSON(w, messageResponse{Status: "success", Message: "blog post deleted successfully"})
	}
}
