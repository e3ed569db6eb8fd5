package api

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pdolan/connectra/internal/types"
)

var allowedClipExtensions = map[string]struct{}{
	".mp4":  {},
	".mov":  {},
	".avi":  {},
	".webm": {},
}

func (s *ConnectraApp) listClips(w http.ResponseWriter, _ *http.Request) {
	clips, err := s.db.ListClips()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, clips)
}

func (s *ConnectraApp) uploadClip(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	file, header, err := r.FormFile("video")
	if err != nil {
		errResp := NewValidationError("video file is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if _, ok := allowedClipExtensions[ext]; !ok {
		errResp := NewValidationError("please upload a valid video file (MP4, MOV, AVI, WEBM)")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	clipId := uuid.New().String()
	stored := clipId + ext
	if _, err := saveUploadedFile(file, s.clipDir, stored); err != nil {
		s.log.Println("save clip:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	title := strings.TrimSpace(r.FormValue("title"))
	if title == "" {
		title = "Untitled Clip"
	}

	clip, err := s.db.CreateClip(types.Clip{
		Id:            clipId,
		Title:         title,
		Description:   strings.TrimSpace(r.FormValue("description")),
		VideoFilename: stored,
		Thumbnail:     fmt.Sprintf("%s_thumb.jpg", clipId),
		Author:        caller,
		CreatedAt:     time.Now().UTC(),
		Comments:      []types.Comment{},
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusCreated, clip)
}

func (s *ConnectraApp) getClip(w http.ResponseWriter, r *http.Request) {
	clip, err := s.db.IncrementClipViews(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, clip)
}

func (s *ConnectraApp) likeClip(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	res, err := s.db.ToggleClipLike(r.PathValue("id"), caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, res)
}

func (s *ConnectraApp) commentClip(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	content := strings.TrimSpace(r.FormValue("content"))
	if content == "" {
		errResp := NewValidationError("comment cannot be empty")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	comment := types.Comment{
		Id:                uuid.New().String(),
		Author:            caller,
		AuthorDisplayName: caller,
		Content:           content,
		CreatedAt:         time.Now().UTC(),
		LikedBy:           []string{},
	}

	if user, err := s.db.GetAccountByUsername(caller); err == nil {
		comment.AuthorDisplayName = user.DisplayName
		comment.AuthorAvatar = user.Avatar
	}

	created, err := s.db.AddClipComment(r.PathValue("id"), comment)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, created)
}

func (s *ConnectraApp) shareClip(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	res, err := s.db.ShareClip(r.PathValue("id"), caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, res)
}

func (s *ConnectraApp) likeComment(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	res, err := s.db.ToggleCommentLike(r.PathValue("id"), caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, res)
}
