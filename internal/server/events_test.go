package server

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/pdolan/connectra/internal/types"
)

func Test_eventConstructors(t *testing.T) {
	t.Run("user status", func(t *testing.T) {
		event := UserStatusEvent("alice", true)
		assert.Equal(t, EventUserStatus, event.Type)
		assert.Equal(t, UserStatus{Username: "alice", Online: true}, event.Data)
		assert.False(t, event.Timestamp.IsZero())
	})

	t.Run("new message", func(t *testing.T) {
		msg := types.Message{Id: "m1", Content: "hi"}
		event := NewMessageEvent("global", msg)
		assert.Equal(t, EventNewMessage, event.Type)
		assert.Equal(t, NewMessage{ChatId: "global", Message: msg}, event.Data)
	})

	t.Run("typing toggles on stop", func(t *testing.T) {
		assert.Equal(t, EventUserTyping, TypingEvent("global", "alice", false).Type)
		assert.Equal(t, EventUserStopTyping, TypingEvent("global", "alice", true).Type)
	})

	t.Run("unknown event error names the type", func(t *testing.T) {
		event := ErrUnknownEvent("bogus")
		assert.Equal(t, EventError, event.Type)
		assert.Contains(t, event.Data.(ErrorPayload).Message, "bogus")
	})
}

func Test_Now(t *testing.T) {
	ts := Now()

	assert.Equal(t, time.UTC, ts.Location())
	assert.True(t, ts.Equal(ts.Round(time.Millisecond)))
}
