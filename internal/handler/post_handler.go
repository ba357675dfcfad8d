package handlers

import (
	"encoding/json"
	"net/http"

	"postfeed/internal/models"
	"postfeed/internal/render"
)

type CreatePostRequest struct {
	Content string   `json:"content" validate:"max=10000"`
	Tags    []string `json:"tags" validate:"max=20,dive,max=50"`
}

type UpdatePostRequest struct {
	Content string `json:"content" validate:"max=10000"`
}

// PostResponse is a post plus its content rendered for web clients.
type PostResponse struct {
	models.Post
	ContentHTML string `json:"contentHtml"`
}

func NewPostResponse(post models.Post) PostResponse {
	return PostResponse{Post: post, ContentHTML: render.Markdown(post.Content)}
}

func NewPostsResponse(posts []models.Post) []PostResponse {
	out := make([]PostResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, NewPostResponse(post))
	}
	return out
}

func (h *Handlers) GetPosts(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	posts, err := h.PostService.List(r.Context(), r.URL.Query().Get("tag"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostsResponse(posts), http.StatusOK)
}

func (h *Handlers) CreatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	post, err := h.PostService.Create(r.Context(), caller(r), req.Content, req.Tags)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostResponse(*post), http.StatusCreated)
}

func (h *Handlers) GetPost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	post, err := h.PostService.Get(r.Context(), pathVar(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostResponse(*post), http.StatusOK)
}

func (h *Handlers) UpdatePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPut {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req UpdatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Validate.Struct(req); err != nil {
		WriteError(w, err.Error(), http.StatusBadRequest)
		return
	}

	postID := pathVar(r, "id")
	if err := h.PostService.UpdateContent(r.Context(), caller(r), postID, req.Content); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	post, err := h.PostService.Get(r.Context(), postID)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	WriteSuccess(w, NewPostResponse(*post), http.StatusOK)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		WriteError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.PostService.Delete(r.Context(), caller(r), pathVar(r, "id")); err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
