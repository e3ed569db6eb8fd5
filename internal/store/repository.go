package store

import (
	"errors"
	"sort"
	"strings"

	"github.com/pdolan/connectra/internal/types"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrExists     = errors.New("already exists")
	ErrSelfFollow = errors.New("cannot follow yourself")
)

type CreateAccountParams struct {
	FullName string
	Email    string
	Password string
}

type UpdateProfileParams struct {
	Username    string
	DisplayName string
	Bio         string
	Avatar      string
}

type FollowResult struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followers_count"`
	FollowingCount int  `json:"following_count"`
}

type LikeResult struct {
	Liked bool `json:"liked"`
	Likes int  `json:"likes"`
}

type ShareResult struct {
	Shared bool `json:"shared"`
	Shares int  `json:"shares"`
}

// Repository is the persistence boundary for the whole application. The
// backing document is a single JSON file, so implementations serialize
// every read-modify-write cycle and persist mutations synchronously
// before returning.
type Repository interface {
	Ping() error

	CreateAccount(params CreateAccountParams) (types.User, error)
	GetAccountByEmail(email string) (types.User, error)
	GetAccountByUsername(username string) (types.User, error)
	UpdateProfile(params UpdateProfileParams) (types.User, error)
	SetOnline(username string, online bool) error
	ListUsers() ([]types.User, error)
	ToggleFollow(follower, followee string) (FollowResult, error)

	GetChat(id string) (types.Chat, error)
	CreateChat(chat types.Chat) (types.Chat, error)
	EnsureDirectChat(a, b string) (types.Chat, error)
	ListChatsForUser(username string) ([]types.Chat, error)
	AppendMessage(chatId string, msg types.Message) error

	CreateClip(clip types.Clip) (types.Clip, error)
	GetClip(id string) (types.Clip, error)
	ListClips() ([]types.Clip, error)
	IncrementClipViews(id string) (types.Clip, error)
	ToggleClipLike(clipId, username string) (LikeResult, error)
	AddClipComment(clipId string, comment types.Comment) (types.Comment, error)
	ShareClip(clipId, username string) (ShareResult, error)
	ToggleCommentLike(commentId, username string) (LikeResult, error)

	CreateBlog(blog types.Blog) (types.Blog, error)
	GetBlog(id string) (types.Blog, error)
	ListBlogs() ([]types.Blog, error)
}

func normalizeIdentity(username string) string {
	return strings.ReplaceAll(strings.ToLower(username), " ", "_")
}

// DirectChatId derives the identifier of a two-participant conversation.
// It is order-independent: DirectChatId(a, b) == DirectChatId(b, a).
func DirectChatId(a, b string) string {
	pair := []string{normalizeIdentity(a), normalizeIdentity(b)}
	sort.Strings(pair)
	return "dm_" + pair[0] + "_" + pair[1]
}

// ParseDirectChatId recovers the participant pair encoded in a direct
// chat identifier. Identifiers that do not encode exactly two identities
// are rejected.
func ParseDirectChatId(id string) (string, string, bool) {
	rest, ok := strings.CutPrefix(id, "dm_")
	if !ok {
		return "", "", false
	}

	parts := strings.Split(rest, "_")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}

	return parts[0], parts[1], true
}
