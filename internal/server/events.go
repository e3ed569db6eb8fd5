package server

import (
	"net/http"
	"time"

	"github.com/pdolan/connectra/internal/types"
)

const (
	// client -> server
	EventJoinChat   = "join_chat"
	EventLeaveChat  = "leave_chat"
	EventTyping     = "typing"
	EventStopTyping = "stop_typing"

	// server -> client
	EventUserStatus     = "user_status"
	EventNewMessage     = "new_message"
	EventMention        = "mention_notification"
	EventJoinedChat     = "joined_chat"
	EventLeftChat       = "left_chat"
	EventUserTyping     = "user_typing"
	EventUserStopTyping = "user_stop_typing"
	EventError          = "error"
)

type ClientEvent struct {
	Type   string `json:"type"`
	ChatId string `json:"chat_id"`
}

type ServerEvent struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data,omitempty"`
}

type UserStatus struct {
	Username string `json:"username"`
	Online   bool   `json:"online"`
}

type NewMessage struct {
	ChatId  string        `json:"chat_id"`
	Message types.Message `json:"message"`
}

type MentionNotification struct {
	FromUser  string    `json:"from_user"`
	ChatId    string    `json:"chat_id"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type ChatRef struct {
	ChatId string `json:"chat_id"`
}

type TypingNotification struct {
	ChatId   string `json:"chat_id"`
	Username string `json:"username"`
}

type ErrorPayload struct {
	StatusCode int    `json:"status_code"`
	Message    string `json:"message"`
}

func newEvent(eventType string, data any) *ServerEvent {
	return &ServerEvent{
		Type:      eventType,
		Timestamp: Now(),
		Data:      data,
	}
}

func UserStatusEvent(username string, online bool) *ServerEvent {
	return newEvent(EventUserStatus, UserStatus{Username: username, Online: online})
}

func NewMessageEvent(chatId string, msg types.Message) *ServerEvent {
	return newEvent(EventNewMessage, NewMessage{ChatId: chatId, Message: msg})
}

func MentionEvent(fromUser, chatId, message string, ts time.Time) *ServerEvent {
	return newEvent(EventMention, MentionNotification{
		FromUser:  fromUser,
		ChatId:    chatId,
		Message:   message,
		Timestamp: ts,
	})
}

func JoinedChatEvent(chatId string) *ServerEvent {
	return newEvent(EventJoinedChat, ChatRef{ChatId: chatId})
}

func LeftChatEvent(chatId string) *ServerEvent {
	return newEvent(EventLeftChat, ChatRef{ChatId: chatId})
}

func TypingEvent(chatId, username string, stop bool) *ServerEvent {
	eventType := EventUserTyping
	if stop {
		eventType = EventUserStopTyping
	}
	return newEvent(eventType, TypingNotification{ChatId: chatId, Username: username})
}

func ErrInvalidEvent() *ServerEvent {
	return newEvent(EventError, ErrorPayload{
		StatusCode: http.StatusBadRequest,
		Message:    "invalid event format",
	})
}

func ErrUnknownEvent(eventType string) *ServerEvent {
	return newEvent(EventError, ErrorPayload{
		StatusCode: http.StatusBadRequest,
		Message:    "unknown event type: " + eventType,
	})
}

func Now() time.Time {
	return time.Now().UTC().Round(time.Millisecond)
}
