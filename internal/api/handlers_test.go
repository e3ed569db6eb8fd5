package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pdolan/connectra/internal/store"
	"github.com/pdolan/connectra/internal/types"
)

func multipartBody(t *testing.T, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	buf := &bytes.Buffer{}
	mw := multipart.NewWriter(buf)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	require.NoError(t, mw.Close())

	return buf, mw.FormDataContentType()
}

func authedRequest(method, target string, body *bytes.Buffer, username string) *http.Request {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, body)
	}
	return req.WithContext(WithUsername(req.Context(), username))
}

func Test_healthCheck(t *testing.T) {
	t.Run("ok", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("Ping").Return(nil)

		rr := httptest.NewRecorder()
		s.healthCheck(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"ok"`)
	})

	t.Run("store unavailable", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("Ping").Return(errors.New("cannot read database file"))

		rr := httptest.NewRecorder()
		s.healthCheck(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}

func Test_userProfile(t *testing.T) {
	s, db := newTestApp(t)

	bob := types.User{
		Username:    "bob",
		DisplayName: "Bob Jones",
		Bio:         "hello",
		Followers:   []string{"alice", "carol"},
		Following:   []string{"alice"},
	}
	db.On("GetAccountByUsername", "bob").Return(bob, nil)
	db.On("GetAccountByUsername", "alice").Return(types.User{
		Username:  "alice",
		Following: []string{"bob"},
	}, nil)

	var clips []types.Clip
	for i := range 12 {
		clips = append(clips, types.Clip{Id: fmt.Sprintf("c%d", i), Author: "bob"})
	}
	clips = append(clips, types.Clip{Id: "other", Author: "carol"})
	db.On("ListClips").Return(clips, nil)

	req := authedRequest(http.MethodGet, "/api/users/bob", nil, "alice")
	req.SetPathValue("username", "bob")
	rr := httptest.NewRecorder()

	s.userProfile(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var profile ProfileResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &profile))
	assert.Equal(t, "bob", profile.Username)
	assert.Equal(t, "Bob Jones", profile.DisplayName)
	assert.Equal(t, 2, profile.FollowersCount)
	assert.Equal(t, 1, profile.FollowingCount)
	assert.Equal(t, 12, profile.ClipsCount)
	assert.Len(t, profile.Clips, 10)
	assert.True(t, profile.IsFollowing)
}

func Test_followUser(t *testing.T) {
	t.Run("toggle", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("ToggleFollow", "alice", "bob").Return(store.FollowResult{
			Following:      true,
			FollowersCount: 1,
		}, nil)

		req := authedRequest(http.MethodPost, "/api/users/bob/follow", nil, "alice")
		req.SetPathValue("username", "bob")
		rr := httptest.NewRecorder()

		s.followUser(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"following":true`)
	})

	t.Run("self follow", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("ToggleFollow", "alice", "alice").Return(store.FollowResult{}, store.ErrSelfFollow)

		req := authedRequest(http.MethodPost, "/api/users/alice/follow", nil, "alice")
		req.SetPathValue("username", "alice")
		rr := httptest.NewRecorder()

		s.followUser(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown user", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("ToggleFollow", "alice", "nobody").Return(store.FollowResult{}, store.ErrNotFound)

		req := authedRequest(http.MethodPost, "/api/users/nobody/follow", nil, "alice")
		req.SetPathValue("username", "nobody")
		rr := httptest.NewRecorder()

		s.followUser(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func Test_listChats(t *testing.T) {
	s, db := newTestApp(t)

	lastMsg := types.Message{Id: "m1", Content: "see you"}
	db.On("ListChatsForUser", "alice").Return([]types.Chat{
		{
			Id:           "dm_alice_bob",
			Type:         types.ChatTypeDirect,
			Participants: []string{"alice", "bob"},
			Messages:     []types.Message{{Id: "m0"}, lastMsg},
		},
		{
			Id:   "global",
			Type: types.ChatTypePublic,
			Name: "Global Chat",
		},
	}, nil)
	db.On("GetAccountByUsername", "bob").Return(types.User{
		Username:    "bob",
		DisplayName: "Bob Jones",
		Online:      true,
	}, nil)

	req := authedRequest(http.MethodGet, "/api/chats", nil, "alice")
	rr := httptest.NewRecorder()

	s.listChats(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)

	var summaries []ChatSummary
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &summaries))
	require.Len(t, summaries, 2)

	require.NotNil(t, summaries[0].OtherUser)
	assert.Equal(t, "bob", summaries[0].OtherUser.Username)
	assert.Equal(t, "Bob Jones", summaries[0].OtherUser.DisplayName)
	assert.True(t, summaries[0].OtherUser.Online)
	require.NotNil(t, summaries[0].LastMessage)
	assert.Equal(t, "see you", summaries[0].LastMessage.Content)

	assert.Equal(t, "Global Chat", summaries[1].Name)
	assert.Nil(t, summaries[1].OtherUser)
	assert.Nil(t, summaries[1].LastMessage)
}

func Test_createDirectChat(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "bob").Return(types.User{Username: "bob"}, nil)
		db.On("EnsureDirectChat", "alice", "bob").Return(types.Chat{Id: "dm_alice_bob"}, nil)

		body := bytes.NewBufferString(`{"participant":"bob"}`)
		req := authedRequest(http.MethodPost, "/api/chats/dm", body, "alice")
		rr := httptest.NewRecorder()

		s.createDirectChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), "dm_alice_bob")
	})

	t.Run("unknown participant", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "nobody").Return(types.User{}, store.ErrNotFound)

		body := bytes.NewBufferString(`{"participant":"nobody"}`)
		req := authedRequest(http.MethodPost, "/api/chats/dm", body, "alice")
		rr := httptest.NewRecorder()

		s.createDirectChat(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		db.AssertNotCalled(t, "EnsureDirectChat", mock.Anything, mock.Anything)
	})

	t.Run("missing participant", func(t *testing.T) {
		s, _ := newTestApp(t)

		body := bytes.NewBufferString(`{}`)
		req := authedRequest(http.MethodPost, "/api/chats/dm", body, "alice")
		rr := httptest.NewRecorder()

		s.createDirectChat(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_getChat(t *testing.T) {
	directChat := types.Chat{
		Id:           "dm_alice_bob",
		Type:         types.ChatTypeDirect,
		Participants: []string{"alice", "bob"},
	}

	t.Run("participant", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetChat", "dm_alice_bob").Return(directChat, nil)

		req := authedRequest(http.MethodGet, "/api/chats/dm_alice_bob", nil, "alice")
		req.SetPathValue("id", "dm_alice_bob")
		rr := httptest.NewRecorder()

		s.getChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("outsider is forbidden", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetChat", "dm_alice_bob").Return(directChat, nil)

		req := authedRequest(http.MethodGet, "/api/chats/dm_alice_bob", nil, "carol")
		req.SetPathValue("id", "dm_alice_bob")
		rr := httptest.NewRecorder()

		s.getChat(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("public chat is open", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetChat", "global").Return(types.Chat{Id: "global", Type: types.ChatTypePublic}, nil)

		req := authedRequest(http.MethodGet, "/api/chats/global", nil, "carol")
		req.SetPathValue("id", "global")
		rr := httptest.NewRecorder()

		s.getChat(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})
}

func Test_sendMessage(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "alice").Return(types.User{Id: "u1", Username: "alice"}, nil)
		db.On("ListUsers").Return([]types.User{{Username: "alice"}}, nil)
		db.On("GetChat", "global").Return(types.Chat{Id: "global", Type: types.ChatTypePublic}, nil)
		db.On("AppendMessage", "global", mock.AnythingOfType("types.Message")).Return(nil)

		body, contentType := multipartBody(t, map[string]string{
			"chat_id": "global",
			"content": "hello world",
		})
		req := authedRequest(http.MethodPost, "/api/messages", body, "alice")
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		s.sendMessage(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)

		var msg types.Message
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &msg))
		assert.Equal(t, "hello world", msg.Content)
		assert.Equal(t, "alice", msg.Username)
		db.AssertExpectations(t)
	})

	t.Run("empty message", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "alice").Return(types.User{Id: "u1", Username: "alice"}, nil)

		body, contentType := multipartBody(t, map[string]string{"chat_id": "global"})
		req := authedRequest(http.MethodPost, "/api/messages", body, "alice")
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		s.sendMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		db.AssertNotCalled(t, "AppendMessage", mock.Anything, mock.Anything)
	})

	t.Run("missing chat_id", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "alice").Return(types.User{Id: "u1", Username: "alice"}, nil)

		body, contentType := multipartBody(t, map[string]string{"content": "hello"})
		req := authedRequest(http.MethodPost, "/api/messages", body, "alice")
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		s.sendMessage(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown chat", func(t *testing.T) {
		s, db := newTestApp(t)
		db.On("GetAccountByUsername", "alice").Return(types.User{Id: "u1", Username: "alice"}, nil)
		db.On("ListUsers").Return([]types.User{}, nil)
		db.On("GetChat", "nope").Return(types.Chat{}, store.ErrNotFound)

		body, contentType := multipartBody(t, map[string]string{
			"chat_id": "nope",
			"content": "hello",
		})
		req := authedRequest(http.MethodPost, "/api/messages", body, "alice")
		req.Header.Set("Content-Type", contentType)
		rr := httptest.NewRecorder()

		s.sendMessage(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func Test_classifyAttachment(t *testing.T) {
	tt := map[string]string{
		".png":  "image",
		".jpeg": "image",
		".mp4":  "video",
		".pdf":  "document",
		".txt":  "document",
	}
	for ext, expected := range tt {
		assert.Equal(t, expected, classifyAttachment(ext), ext)
	}
}

func Test_errorHandler(t *testing.T) {
	s, _ := newTestApp(t)

	h := s.errorHandler(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
