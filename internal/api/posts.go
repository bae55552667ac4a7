package api

import (
	"database/sql"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/erazemk/najdeno/internal/auth"
	"github.com/erazemk/najdeno/internal/imaging"
	"github.com/erazemk/najdeno/internal/model"
	"github.com/erazemk/najdeno/internal/store"
)

// maxUpload caps multipart post bodies.
const maxUpload = imaging.DefaultMaxBytes + 1<<20

// PostsHandler handles lost and found post endpoints.
type PostsHandler struct {
	DB *sql.DB
}

type postRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	IsLost      *bool  `json:"isLost"`
	Contact     string `json:"contact"`
}

type statusRequest struct {
	Status string `json:"status"`
}

func (req postRequest) input(fallbackLost bool) (store.PostInput, error) {
	in := store.PostInput{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Contact:     strings.TrimSpace(req.Contact),
		IsLost:      fallbackLost,
	}
	if req.IsLost != nil {
		in.IsLost = *req.IsLost
	}
	if in.Title == "" {
		return in, errors.New("title required")
	}
	return in, nil
}

func (h *PostsHandler) list(w http.ResponseWriter, r *http.Request, f store.PostFilter) {
	posts, err := store.ListPosts(r.Context(), h.DB, f)
	if err != nil {
		slog.Error("failed to list posts", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to list posts")
		return
	}
	jsonResponse(w, http.StatusOK, posts)
}

// List handles GET /api/posts. An optional ?status= narrows by moderation status.
func (h *PostsHandler) List(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && !model.ValidPostStatus(status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}
	h.list(w, r, store.PostFilter{Status: status})
}

// Search handles GET /api/posts/search?q=&isLost=.
func (h *PostsHandler) Search(w http.ResponseWriter, r *http.Request) {
	f := store.PostFilter{Query: r.URL.Query().Get("q")}
	if raw := r.URL.Query().Get("isLost"); raw != "" {
		lost, err := strconv.ParseBool(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid isLost")
			return
		}
		f.IsLost = &lost
	}
	h.list(w, r, f)
}

// Mine handles GET /api/posts/user/me.
func (h *PostsHandler) Mine(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, store.PostFilter{UserID: GetClaims(r.Context()).UserID})
}

// Get handles GET /api/posts/{id}.
func (h *PostsHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}
	jsonResponse(w, http.StatusOK, post)
}

// Create handles POST /api/posts with either a JSON or a multipart body.
// Multipart bodies may carry an "image" file part.
func (h *PostsHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := GetClaims(r.Context())

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		h.createMultipart(w, r, claims)
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.input(true)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	post, err := store.CreatePost(r.Context(), h.DB, claims.UserID, in)
	if err != nil {
		slog.Error("failed to create post", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	slog.Info("post created", "id", post.ID, "user", claims.Username, "lost", post.IsLost)
	jsonResponse(w, http.StatusCreated, post)
}

func (h *PostsHandler) createMultipart(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	if err := r.ParseMultipartForm(maxUpload); err != nil {
		jsonError(w, http.StatusBadRequest, "file too large or invalid multipart form")
		return
	}

	req := postRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		Contact:     r.FormValue("contact"),
	}
	if raw := r.FormValue("isLost"); raw != "" {
		lost, err := strconv.ParseBool(raw)
		if err != nil {
			jsonError(w, http.StatusBadRequest, "invalid isLost")
			return
		}
		req.IsLost = &lost
	}
	in, err := req.input(true)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	var photo *imaging.Photo
	file, _, err := r.FormFile("image")
	switch {
	case err == nil:
		defer file.Close()
		photo, err = imaging.Normalize(file, imaging.Options{})
		if err != nil {
			jsonError(w, http.StatusBadRequest, err.Error())
			return
		}
	case !errors.Is(err, http.ErrMissingFile):
		jsonError(w, http.StatusBadRequest, "invalid image part")
		return
	}

	post, err := store.CreatePost(r.Context(), h.DB, claims.UserID, in)
	if err != nil {
		slog.Error("failed to create post", "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	if photo != nil {
		if err := store.SetPostImage(r.Context(), h.DB, post.ID, photo.Data, photo.MIME); err != nil {
			slog.Error("failed to save post image", "id", post.ID, "error", err)
			jsonError(w, http.StatusInternalServerError, "failed to save image")
			return
		}
		post.ImagePath = store.ImagePath(post.ID)
	}

	slog.Info("post created", "id", post.ID, "user", claims.Username, "lost", post.IsLost, "image", photo != nil)
	jsonResponse(w, http.StatusCreated, post)
}

// Update handles PUT /api/posts/{id}. Only the owner or an admin may edit.
func (h *PostsHandler) Update(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	var req postRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	in, err := req.input(post.IsLost)
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := store.UpdatePost(r.Context(), h.DB, post.ID, in); err != nil {
		slog.Error("failed to update post", "id", post.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to update post")
		return
	}

	updated, err := store.GetPost(r.Context(), h.DB, post.ID)
	if err != nil || updated == nil {
		jsonError(w, http.StatusInternalServerError, "failed to get post")
		return
	}
	jsonResponse(w, http.StatusOK, updated)
}

// Delete handles DELETE /api/posts/{id}. Only the owner or an admin may delete.
func (h *PostsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	post, ok := h.loadOwned(w, r)
	if !ok {
		return
	}

	if err := store.DeletePost(r.Context(), h.DB, post.ID); err != nil {
		slog.Error("failed to delete post", "id", post.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to delete post")
		return
	}

	slog.Info("post deleted", "id", post.ID, "by", GetClaims(r.Context()).Username)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "post deleted"})
}

// SetStatus handles PUT /api/posts/{id}/status (admin only).
func (h *PostsHandler) SetStatus(w http.ResponseWriter, r *http.Request) {
	post, ok := h.load(w, r)
	if !ok {
		return
	}

	var req statusRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if !model.ValidPostStatus(req.Status) {
		jsonError(w, http.StatusBadRequest, "invalid status")
		return
	}

	if err := store.SetPostStatus(r.Context(), h.DB, post.ID, req.Status); err != nil {
		slog.Error("failed to set post status", "id", post.ID, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to set status")
		return
	}

	slog.Info("post status changed", "id", post.ID, "from", post.Status, "to", req.Status)
	post.Status = req.Status
	jsonResponse(w, http.StatusOK, post)
}

// GetImage handles GET /api/posts/{id}/image.
func (h *PostsHandler) GetImage(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	data, mimeType, err := store.GetPostImage(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get post image", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get image")
		return
	}
	if data == nil {
		jsonError(w, http.StatusNotFound, "no image")
		return
	}

	w.Header().Set("Content-Type", mimeType)
	w.Header().Set("Cache-Control", "public, max-age=3600")
	w.Write(data)
}

func (h *PostsHandler) load(w http.ResponseWriter, r *http.Request) (*model.Post, bool) {
	id, ok := pathID(r)
	if !ok {
		jsonError(w, http.StatusBadRequest, "invalid post id")
		return nil, false
	}

	post, err := store.GetPost(r.Context(), h.DB, id)
	if err != nil {
		slog.Error("failed to get post", "id", id, "error", err)
		jsonError(w, http.StatusInternalServerError, "failed to get post")
		return nil, false
	}
	if post == nil {
		jsonError(w, http.StatusNotFound, "post not found")
		return nil, false
	}
	return post, true
}

func (h *PostsHandler) loadOwned(w http.ResponseWriter, r *http.Request) (*model.Post, bool) {
	post, ok := h.load(w, r)
	if !ok {
		return nil, false
	}
	claims := GetClaims(r.Context())
	if post.UserID != claims.UserID && !model.RoleAtLeast(claims.Role, model.RoleAdmin) {
		jsonError(w, http.StatusForbidden, "not your post")
		return nil, false
	}
	return post, true
}
