package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/pdolan/connectra/internal/types"
)

// database mirrors the on-disk JSON document.
type database struct {
	Users []*types.User `json:"users"`
	Chats []*types.Chat `json:"chats"`
	Clips []*types.Clip `json:"clips"`
	Blogs []*types.Blog `json:"blogs"`
}

// FileStore persists the whole database to a single JSON file. A single
// mutex serializes every read-modify-write cycle; each mutation rewrites
// the file synchronously before returning so a broadcast never precedes
// its persisted message.
type FileStore struct {
	path string
	mu   sync.Mutex
	db   *database
}

func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("read database: %w", err)
		}

		s.db = &database{}
		if err := s.save(); err != nil {
			return nil, err
		}
		return s, nil
	}

	var db database
	if err := json.Unmarshal(data, &db); err != nil {
		return nil, fmt.Errorf("parse database: %w", err)
	}

	s.db = &db
	return s, nil
}

// save writes the document through a temp file and rename so a crash
// mid-write cannot truncate the database. Callers hold s.mu.
func (s *FileStore) save() error {
	data, err := json.MarshalIndent(s.db, "", "  ")
	if err != nil {
		return fmt.Errorf("encode database: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write database: %w", err)
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace database: %w", err)
	}

	return nil
}

func (s *FileStore) Ping() error {
	dir := filepath.Dir(s.path)
	if _, err := os.Stat(dir); err != nil {
		return fmt.Errorf("database directory: %w", err)
	}
	return nil
}

func (s *FileStore) findUser(username string) *types.User {
	for _, u := range s.db.Users {
		if u.Username == username {
			return u
		}
	}
	return nil
}

func (s *FileStore) findChat(id string) *types.Chat {
	for _, c := range s.db.Chats {
		if c.Id == id {
			return c
		}
	}
	return nil
}

func (s *FileStore) findClip(id string) *types.Clip {
	for _, c := range s.db.Clips {
		if c.Id == id {
			return c
		}
	}
	return nil
}

func (s *FileStore) CreateAccount(params CreateAccountParams) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.db.Users {
		if strings.EqualFold(u.Email, params.Email) {
			return types.User{}, ErrExists
		}
	}

	// Derive the username from the email local part, suffixing a counter
	// until it is unique.
	base, _, _ := strings.Cut(params.Email, "@")
	username := base
	for counter := 1; s.usernameTaken(username); counter++ {
		username = fmt.Sprintf("%s%d", base, counter)
	}

	user := &types.User{
		Id:          normalizeIdentity(username),
		Username:    username,
		Email:       params.Email,
		Password:    params.Password,
		DisplayName: params.FullName,
		Followers:   []string{},
		Following:   []string{},
		ClipsLiked:  []string{},
		ClipsShared: []string{},
	}
	s.db.Users = append(s.db.Users, user)

	if err := s.save(); err != nil {
		s.db.Users = s.db.Users[:len(s.db.Users)-1]
		return types.User{}, err
	}

	return *user, nil
}

func (s *FileStore) usernameTaken(username string) bool {
	for _, u := range s.db.Users {
		if strings.EqualFold(u.Username, username) {
			return true
		}
	}
	return false
}

func (s *FileStore) GetAccountByEmail(email string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.db.Users {
		if strings.EqualFold(u.Email, email) {
			return *u, nil
		}
	}
	return types.User{}, ErrNotFound
}

func (s *FileStore) GetAccountByUsername(username string) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if u := s.findUser(username); u != nil {
		return *u, nil
	}
	return types.User{}, ErrNotFound
}

func (s *FileStore) UpdateProfile(params UpdateProfileParams) (types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(params.Username)
	if u == nil {
		return types.User{}, ErrNotFound
	}

	if params.DisplayName != "" {
		u.DisplayName = params.DisplayName
	}
	if params.Bio != "" {
		u.Bio = params.Bio
	}
	if params.Avatar != "" {
		u.Avatar = params.Avatar
	}

	if err := s.save(); err != nil {
		return types.User{}, err
	}
	return *u, nil
}

func (s *FileStore) SetOnline(username string, online bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.findUser(username)
	if u == nil {
		return ErrNotFound
	}

	u.Online = online
	return s.save()
}

func (s *FileStore) ListUsers() ([]types.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	users := make([]types.User, len(s.db.Users))
	for i, u := range s.db.Users {
		users[i] = *u
	}
	return users, nil
}

func (s *FileStore) ToggleFollow(follower, followee string) (FollowResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if follower == followee {
		return FollowResult{}, ErrSelfFollow
	}

	followerUser := s.findUser(follower)
	followeeUser := s.findUser(followee)
	if followerUser == nil || followeeUser == nil {
		return FollowResult{}, ErrNotFound
	}

	var following bool
	if slices.Contains(followerUser.Following, followee) {
		followerUser.Following = deleteString(followerUser.Following, followee)
		followeeUser.Followers = deleteString(followeeUser.Followers, follower)
	} else {
		followerUser.Following = append(followerUser.Following, followee)
		followeeUser.Followers = append(followeeUser.Followers, follower)
		following = true
	}

	if err := s.save(); err != nil {
		return FollowResult{}, err
	}

	return FollowResult{
		Following:      following,
		FollowersCount: len(followeeUser.Followers),
		FollowingCount: len(followerUser.Following),
	}, nil
}

func deleteString(s []string, v string) []string {
	if i := slices.Index(s, v); i >= 0 {
		return slices.Delete(s, i, i+1)
	}
	return s
}

func (s *FileStore) GetChat(id string) (types.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.findChat(id); c != nil {
		return *c, nil
	}
	return types.Chat{}, ErrNotFound
}

func (s *FileStore) CreateChat(chat types.Chat) (types.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findChat(chat.Id) != nil {
		return types.Chat{}, ErrExists
	}

	if chat.Messages == nil {
		chat.Messages = []types.Message{}
	}
	s.db.Chats = append(s.db.Chats, &chat)

	if err := s.save(); err != nil {
		s.db.Chats = s.db.Chats[:len(s.db.Chats)-1]
		return types.Chat{}, err
	}
	return chat, nil
}

// EnsureDirectChat resolves the conversation between two users, creating
// it on first use. Repeated calls for the same pair, in either order,
// return the same chat.
func (s *FileStore) EnsureDirectChat(a, b string) (types.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := DirectChatId(a, b)
	if c := s.findChat(id); c != nil {
		return *c, nil
	}

	chat := &types.Chat{
		Id:           id,
		Name:         fmt.Sprintf("DM: %s & %s", a, b),
		Type:         types.ChatTypeDirect,
		Participants: []string{a, b},
		Messages:     []types.Message{},
		CreatedAt:    time.Now().UTC(),
	}
	s.db.Chats = append(s.db.Chats, chat)

	if err := s.save(); err != nil {
		s.db.Chats = s.db.Chats[:len(s.db.Chats)-1]
		return types.Chat{}, err
	}
	return *chat, nil
}

func (s *FileStore) ListChatsForUser(username string) ([]types.Chat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var chats []types.Chat
	for _, c := range s.db.Chats {
		switch {
		case c.Type == types.ChatTypeDirect && slices.Contains(c.Participants, username):
			chats = append(chats, *c)
		case c.Type == types.ChatTypePublic:
			chats = append(chats, *c)
		}
	}
	return chats, nil
}

func (s *FileStore) AppendMessage(chatId string, msg types.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findChat(chatId)
	if c == nil {
		return ErrNotFound
	}

	c.Messages = append(c.Messages, msg)
	if err := s.save(); err != nil {
		c.Messages = c.Messages[:len(c.Messages)-1]
		return err
	}
	return nil
}

func (s *FileStore) CreateClip(clip types.Clip) (types.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if clip.Comments == nil {
		clip.Comments = []types.Comment{}
	}
	s.db.Clips = append(s.db.Clips, &clip)

	if err := s.save(); err != nil {
		s.db.Clips = s.db.Clips[:len(s.db.Clips)-1]
		return types.Clip{}, err
	}
	return clip, nil
}

func (s *FileStore) GetClip(id string) (types.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c := s.findClip(id); c != nil {
		return *c, nil
	}
	return types.Clip{}, ErrNotFound
}

func (s *FileStore) ListClips() ([]types.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	clips := make([]types.Clip, len(s.db.Clips))
	for i, c := range s.db.Clips {
		clips[i] = *c
	}

	// Newest first.
	sort.Slice(clips, func(i, j int) bool {
		return clips[i].CreatedAt.After(clips[j].CreatedAt)
	})
	return clips, nil
}

func (s *FileStore) IncrementClipViews(id string) (types.Clip, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClip(id)
	if c == nil {
		return types.Clip{}, ErrNotFound
	}

	c.Views++
	if err := s.save(); err != nil {
		c.Views--
		return types.Clip{}, err
	}
	return *c, nil
}

func (s *FileStore) ToggleClipLike(clipId, username string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClip(clipId)
	if c == nil {
		return LikeResult{}, ErrNotFound
	}

	var liked bool
	if slices.Contains(c.LikedBy, username) {
		c.LikedBy = deleteString(c.LikedBy, username)
	} else {
		c.LikedBy = append(c.LikedBy, username)
		liked = true
	}
	c.Likes = len(c.LikedBy)

	if u := s.findUser(username); u != nil {
		if liked {
			if !slices.Contains(u.ClipsLiked, clipId) {
				u.ClipsLiked = append(u.ClipsLiked, clipId)
			}
		} else {
			u.ClipsLiked = deleteString(u.ClipsLiked, clipId)
		}
	}

	if err := s.save(); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Liked: liked, Likes: c.Likes}, nil
}

func (s *FileStore) AddClipComment(clipId string, comment types.Comment) (types.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClip(clipId)
	if c == nil {
		return types.Comment{}, ErrNotFound
	}

	c.Comments = append(c.Comments, comment)
	if err := s.save(); err != nil {
		c.Comments = c.Comments[:len(c.Comments)-1]
		return types.Comment{}, err
	}
	return comment, nil
}

// ShareClip records a share once per user; repeated shares are no-ops.
func (s *FileStore) ShareClip(clipId, username string) (ShareResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.findClip(clipId)
	if c == nil {
		return ShareResult{}, ErrNotFound
	}
	u := s.findUser(username)
	if u == nil {
		return ShareResult{}, ErrNotFound
	}

	if !slices.Contains(u.ClipsShared, clipId) {
		u.ClipsShared = append(u.ClipsShared, clipId)
		c.SharedBy = append(c.SharedBy, username)
		c.Shares++

		if err := s.save(); err != nil {
			return ShareResult{}, err
		}
	}

	return ShareResult{Shared: true, Shares: c.Shares}, nil
}

func (s *FileStore) ToggleCommentLike(commentId, username string) (LikeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var comment *types.Comment
	for _, clip := range s.db.Clips {
		for i := range clip.Comments {
			if clip.Comments[i].Id == commentId {
				comment = &clip.Comments[i]
				break
			}
		}
		if comment != nil {
			break
		}
	}

	if comment == nil {
		return LikeResult{}, ErrNotFound
	}

	var liked bool
	if slices.Contains(comment.LikedBy, username) {
		comment.LikedBy = deleteString(comment.LikedBy, username)
	} else {
		comment.LikedBy = append(comment.LikedBy, username)
		liked = true
	}
	comment.Likes = len(comment.LikedBy)

	if err := s.save(); err != nil {
		return LikeResult{}, err
	}
	return LikeResult{Liked: liked, Likes: comment.Likes}, nil
}

func (s *FileStore) CreateBlog(blog types.Blog) (types.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.db.Blogs = append(s.db.Blogs, &blog)
	if err := s.save(); err != nil {
		s.db.Blogs = s.db.Blogs[:len(s.db.Blogs)-1]
		return types.Blog{}, err
	}
	return blog, nil
}

func (s *FileStore) GetBlog(id string) (types.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, b := range s.db.Blogs {
		if b.Id == id {
			return *b, nil
		}
	}
	return types.Blog{}, ErrNotFound
}

func (s *FileStore) ListBlogs() ([]types.Blog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	blogs := make([]types.Blog, len(s.db.Blogs))
	for i, b := range s.db.Blogs {
		blogs[i] = *b
	}
	return blogs, nil
}
