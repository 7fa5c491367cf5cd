package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/vncsmyrnk/opinionpoll/internal/core/domain"
	"github.com/vncsmyrnk/opinionpoll/internal/core/ports"
)

type PostHandler struct {
	service ports.PostService
	logger  *zap.Logger
}

func NewPostHandler(service ports.PostService, logger *zap.Logger) *PostHandler {
	return &PostHandler{
		service: service,
		logger:  logger,
	}
}

type createPostRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.service.Create(r.Context(), ports.CreatePostInput{Title: req.Title, Content: req.Content})
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, post)
}

func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

func (h *PostHandler) GetPost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), domain.ErrInvalidPostID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	post, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"), domain.ErrInvalidPostID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
