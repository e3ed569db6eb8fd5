package api

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdolan/connectra/internal/types"
)

type CreateBlogRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func (s *ConnectraApp) listBlogs(w http.ResponseWriter, _ *http.Request) {
	blogs, err := s.db.ListBlogs()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, blogs)
}

func (s *ConnectraApp) createBlog(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	var req CreateBlogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Content = strings.TrimSpace(req.Content)
	if req.Title == "" || req.Content == "" {
		errResp := NewValidationError("title and content are required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	now := time.Now().UTC()
	blog, err := s.db.CreateBlog(types.Blog{
		Id:        uuid.New().String(),
		Title:     req.Title,
		Content:   req.Content,
		Author:    caller,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, blog)
}

func (s *ConnectraApp) getBlog(w http.ResponseWriter, r *http.Request) {
	blog, err := s.db.GetBlog(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, blog)
}
