package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pdolan/connectra/internal/server"
	"github.com/pdolan/connectra/internal/store"
	"github.com/pdolan/connectra/internal/types"
)

const maxUploadSize = 32 << 20 // 32 MiB multipart memory limit

func (s *ConnectraApp) writeJson(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if v == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Printf("json encode: %v", err)
	}
}

func (s *ConnectraApp) writeStoreError(w http.ResponseWriter, err error) {
	var errResp *ApiError
	switch {
	case errors.Is(err, store.ErrNotFound):
		errResp = NewNotFoundError()
	case errors.Is(err, store.ErrSelfFollow):
		errResp = NewValidationError("cannot follow yourself")
	case errors.Is(err, store.ErrExists):
		errResp = NewConflictError("already exists")
	default:
		errResp = NewInternalServerError(err)
	}
	s.writeJson(w, errResp.StatusCode, errResp)
}

func (s *ConnectraApp) healthCheck(w http.ResponseWriter, _ *http.Request) {
	if err := s.db.Ping(); err != nil {
		s.log.Println("health check:", err)
		errResp := NewInternalServerError(err)
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *ConnectraApp) listUsers(w http.ResponseWriter, _ *http.Request) {
	users, err := s.db.ListUsers()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, users)
}

type ProfileResponse struct {
	Username       string       `json:"username"`
	DisplayName    string       `json:"display_name"`
	Bio            string       `json:"bio"`
	Avatar         string       `json:"avatar,omitempty"`
	Online         bool         `json:"online"`
	FollowersCount int          `json:"followers_count"`
	FollowingCount int          `json:"following_count"`
	ClipsCount     int          `json:"clips_count"`
	IsFollowing    bool         `json:"is_following"`
	Clips          []types.Clip `json:"clips"`
}

func (s *ConnectraApp) userProfile(w http.ResponseWriter, r *http.Request) {
	username := r.PathValue("username")

	user, err := s.db.GetAccountByUsername(username)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	clips, err := s.db.ListClips()
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	userClips := []types.Clip{}
	for _, c := range clips {
		if c.Author == username {
			userClips = append(userClips, c)
		}
	}

	var isFollowing bool
	if caller, ok := Username(r.Context()); ok {
		if callerUser, err := s.db.GetAccountByUsername(caller); err == nil {
			isFollowing = slices.Contains(callerUser.Following, username)
		}
	}

	s.writeJson(w, http.StatusOK, ProfileResponse{
		Username:       user.Username,
		DisplayName:    user.DisplayName,
		Bio:            user.Bio,
		Avatar:         user.Avatar,
		Online:         user.Online,
		FollowersCount: len(user.Followers),
		FollowingCount: len(user.Following),
		ClipsCount:     len(userClips),
		IsFollowing:    isFollowing,
		Clips:          userClips[:min(len(userClips), 10)],
	})
}

func (s *ConnectraApp) followUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := Username(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	res, err := s.db.ToggleFollow(caller, r.PathValue("username"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, res)
}

func (s *ConnectraApp) updateProfile(w http.ResponseWriter, r *http.Request) {
	caller, ok := Username(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	params := store.UpdateProfileParams{
		Username:    caller,
		DisplayName: strings.TrimSpace(r.FormValue("display_name")),
		Bio:         strings.TrimSpace(r.FormValue("bio")),
	}

	if file, header, err := r.FormFile("avatar"); err == nil {
		defer file.Close()

		ext := strings.ToLower(filepath.Ext(header.Filename))
		stored := fmt.Sprintf("%s_%s%s", caller, uuid.New().String(), ext)
		if _, err := saveUploadedFile(file, s.photoDir, stored); err != nil {
			s.log.Println("save avatar:", err)
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
		params.Avatar = stored
	}

	user, err := s.db.UpdateProfile(params)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, user)
}

type ChatSummary struct {
	Id          string         `json:"id"`
	Type        string         `json:"type"`
	Name        string         `json:"name,omitempty"`
	OtherUser   *UserCard      `json:"other_user,omitempty"`
	LastMessage *types.Message `json:"last_message"`
}

type UserCard struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Avatar      string `json:"avatar,omitempty"`
	Online      bool   `json:"online"`
}

func (s *ConnectraApp) listChats(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	chats, err := s.db.ListChatsForUser(caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	summaries := []ChatSummary{}
	for _, chat := range chats {
		summary := ChatSummary{
			Id:   chat.Id,
			Type: chat.Type,
		}

		if len(chat.Messages) > 0 {
			last := chat.Messages[len(chat.Messages)-1]
			summary.LastMessage = &last
		}

		if chat.Type == types.ChatTypeDirect {
			var other string
			for _, p := range chat.Participants {
				if p != caller {
					other = p
					break
				}
			}

			card := UserCard{Username: other, DisplayName: other}
			if otherUser, err := s.db.GetAccountByUsername(other); err == nil {
				card.DisplayName = otherUser.DisplayName
				card.Avatar = otherUser.Avatar
				card.Online = otherUser.Online
			}
			summary.OtherUser = &card
		} else {
			summary.Name = chat.Name
		}

		summaries = append(summaries, summary)
	}

	s.writeJson(w, http.StatusOK, summaries)
}

type CreateDirectChatRequest struct {
	Participant string `json:"participant"`
}

func (s *ConnectraApp) createDirectChat(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	var req CreateDirectChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Participant == "" {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	if _, err := s.db.GetAccountByUsername(req.Participant); err != nil {
		s.writeStoreError(w, err)
		return
	}

	chat, err := s.db.EnsureDirectChat(caller, req.Participant)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, map[string]string{"chat_id": chat.Id})
}

func (s *ConnectraApp) getChat(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	chat, err := s.db.GetChat(r.PathValue("id"))
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	// Direct conversations are visible to their participants only.
	if chat.Type == types.ChatTypeDirect && !slices.Contains(chat.Participants, caller) {
		errResp := NewForbiddenError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	s.writeJson(w, http.StatusOK, chat)
}

func (s *ConnectraApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	caller, _ := Username(r.Context())

	sender, err := s.db.GetAccountByUsername(caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		errResp := NewBadRequestError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	chatId := r.FormValue("chat_id")
	content := r.FormValue("content")
	if chatId == "" {
		errResp := NewValidationError("chat_id is required")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	var attachment *types.Attachment
	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()

		attachment, err = s.saveAttachment(file, header)
		if err != nil {
			s.log.Println("save attachment:", err)
			errResp := NewInternalServerError(err)
			s.writeJson(w, errResp.StatusCode, errResp)
			return
		}
	}

	if content == "" && attachment == nil {
		errResp := NewValidationError("message content cannot be empty")
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	msg, err := s.cs.SendMessage(server.SendMessageParams{
		Sender:     sender,
		ChatId:     chatId,
		Content:    content,
		Attachment: attachment,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	s.writeJson(w, http.StatusOK, msg)
}

func (s *ConnectraApp) saveAttachment(file multipart.File, header *multipart.FileHeader) (*types.Attachment, error) {
	ext := strings.ToLower(filepath.Ext(header.Filename))
	stored := uuid.New().String() + ext

	size, err := saveUploadedFile(file, s.uploadDir, stored)
	if err != nil {
		return nil, err
	}

	return &types.Attachment{
		Filename:       header.Filename,
		StoredFilename: stored,
		Type:           classifyAttachment(ext),
		Size:           size,
	}, nil
}

func classifyAttachment(ext string) string {
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
		return "image"
	case ".mp4", ".avi", ".mov", ".webm":
		return "video"
	default:
		return "document"
	}
}

func saveUploadedFile(file io.Reader, dir, name string) (int64, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("create directory: %w", err)
	}

	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()

	size, err := io.Copy(dst, file)
	if err != nil {
		return 0, fmt.Errorf("write file: %w", err)
	}

	return size, nil
}

func (s *ConnectraApp) serveWs(w http.ResponseWriter, r *http.Request) {
	caller, ok := Username(r.Context())
	if !ok {
		errResp := NewUnauthorizedError()
		s.writeJson(w, errResp.StatusCode, errResp)
		return
	}

	user, err := s.db.GetAccountByUsername(caller)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Println("error upgrading connection:", err)
		return
	}

	client := server.NewClient(user, conn, s.cs, s.log)

	s.cs.RegisterClient(client)
	go client.Write()
	go client.Read()
}
