package store

import (
	"github.com/stretchr/testify/mock"

	"github.com/pdolan/connectra/internal/types"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}
func (m *MockRepository) CreateAccount(params CreateAccountParams) (types.User, error) {
	args := m.Called(params)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) GetAccountByEmail(email string) (types.User, error) {
	args := m.Called(email)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) GetAccountByUsername(username string) (types.User, error) {
	args := m.Called(username)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) UpdateProfile(params UpdateProfileParams) (types.User, error) {
	args := m.Called(params)
	return args.Get(0).(types.User), args.Error(1)
}
func (m *MockRepository) SetOnline(username string, online bool) error {
	args := m.Called(username, online)
	return args.Error(0)
}
func (m *MockRepository) ListUsers() ([]types.User, error) {
	args := m.Called()
	return args.Get(0).([]types.User), args.Error(1)
}
func (m *MockRepository) ToggleFollow(follower, followee string) (FollowResult, error) {
	args := m.Called(follower, followee)
	return args.Get(0).(FollowResult), args.Error(1)
}
func (m *MockRepository) GetChat(id string) (types.Chat, error) {
	args := m.Called(id)
	return args.Get(0).(types.Chat), args.Error(1)
}
func (m *MockRepository) CreateChat(chat types.Chat) (types.Chat, error) {
	args := m.Called(chat)
	return args.Get(0).(types.Chat), args.Error(1)
}
func (m *MockRepository) EnsureDirectChat(a, b string) (types.Chat, error) {
	args := m.Called(a, b)
	return args.Get(0).(types.Chat), args.Error(1)
}
func (m *MockRepository) ListChatsForUser(username string) ([]types.Chat, error) {
	args := m.Called(username)
	return args.Get(0).([]types.Chat), args.Error(1)
}
func (m *MockRepository) AppendMessage(chatId string, msg types.Message) error {
	args := m.Called(chatId, msg)
	return args.Error(0)
}
func (m *MockRepository) CreateClip(clip types.Clip) (types.Clip, error) {
	args := m.Called(clip)
	return args.Get(0).(types.Clip), args.Error(1)
}
func (m *MockRepository) GetClip(id string) (types.Clip, error) {
	args := m.Called(id)
	return args.Get(0).(types.Clip), args.Error(1)
}
func (m *MockRepository) ListClips() ([]types.Clip, error) {
	args := m.Called()
	return args.Get(0).([]types.Clip), args.Error(1)
}
func (m *MockRepository) IncrementClipViews(id string) (types.Clip, error) {
	args := m.Called(id)
	return args.Get(0).(types.Clip), args.Error(1)
}
func (m *MockRepository) ToggleClipLike(clipId, username string) (LikeResult, error) {
	args := m.Called(clipId, username)
	return args.Get(0).(LikeResult), args.Error(1)
}
func (m *MockRepository) AddClipComment(clipId string, comment types.Comment) (types.Comment, error) {
	args := m.Called(clipId, comment)
	return args.Get(0).(types.Comment), args.Error(1)
}
func (m *MockRepository) ShareClip(clipId, username string) (ShareResult, error) {
	args := m.Called(clipId, username)
	return args.Get(0).(ShareResult), args.Error(1)
}
func (m *MockRepository) ToggleCommentLike(commentId, username string) (LikeResult, error) {
	args := m.Called(commentId, username)
	return args.Get(0).(LikeResult), args.Error(1)
}
func (m *MockRepository) CreateBlog(blog types.Blog) (types.Blog, error) {
	args := m.Called(blog)
	return args.Get(0).(types.Blog), args.Error(1)
}
func (m *MockRepository) GetBlog(id string) (types.Blog, error) {
	args := m.Called(id)
	return args.Get(0).(types.Blog), args.Error(1)
}
func (m *MockRepository) ListBlogs() ([]types.Blog, error) {
	args := m.Called()
	return args.Get(0).([]types.Blog), args.Error(1)
}
