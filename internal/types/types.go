package types

import (
	"time"
)

const (
	ChatTypeDirect = "direct"
	ChatTypePublic = "public"
)

type User struct {
	Id          string   `json:"id"`
	Username    string   `json:"username"`
	Email       string   `json:"email,omitempty"`
	Password    string   `json:"-"`
	DisplayName string   `json:"display_name"`
	Bio         string   `json:"bio,omitempty"`
	Avatar      string   `json:"avatar,omitempty"`
	Online      bool     `json:"online"`
	Followers   []string `json:"followers,omitempty"`
	Following   []string `json:"following,omitempty"`
	ClipsLiked  []string `json:"clips_liked,omitempty"`
	ClipsShared []string `json:"clips_shared,omitempty"`
}

type Chat struct {
	Id           string    `json:"id"`
	Name         string    `json:"name"`
	Type         string    `json:"type"`
	Participants []string  `json:"participants"`
	Messages     []Message `json:"messages"`
	CreatedAt    time.Time `json:"created_at,omitempty"`
}

// Message is immutable once appended to a chat. Content carries the
// mention-substituted display text, RawContent the text as typed.
type Message struct {
	Id          string       `json:"id"`
	UserId      string       `json:"user_id"`
	Username    string       `json:"username"`
	Content     string       `json:"content"`
	RawContent  string       `json:"raw_content"`
	Mentions    []string     `json:"mentions"`
	Timestamp   time.Time    `json:"timestamp"`
	Type        string       `json:"type"`
	Attachments []Attachment `json:"attachments"`
}

type Attachment struct {
	Filename       string `json:"filename"`
	StoredFilename string `json:"stored_filename"`
	Type           string `json:"type"`
	Size           int64  `json:"size"`
}

type Clip struct {
	Id            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	VideoFilename string    `json:"video_filename"`
	Thumbnail     string    `json:"thumbnail"`
	Author        string    `json:"author"`
	CreatedAt     time.Time `json:"created_at"`
	Views         int       `json:"views"`
	Likes         int       `json:"likes"`
	LikedBy       []string  `json:"liked_by,omitempty"`
	Shares        int       `json:"shares"`
	SharedBy      []string  `json:"shared_by,omitempty"`
	Comments      []Comment `json:"comments"`
	Duration      int       `json:"duration"`
}

type Comment struct {
	Id                string    `json:"id"`
	Author            string    `json:"author"`
	AuthorDisplayName string    `json:"author_display_name"`
	AuthorAvatar      string    `json:"author_avatar,omitempty"`
	Content           string    `json:"content"`
	CreatedAt         time.Time `json:"created_at"`
	Likes             int       `json:"likes"`
	LikedBy           []string  `json:"liked_by,omitempty"`
}

type Blog struct {
	Id        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
