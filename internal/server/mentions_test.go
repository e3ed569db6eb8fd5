package server

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/pdolan/connectra/internal/types"
)

func Test_resolveMentions(t *testing.T) {
	users := []types.User{
		{Username: "alice"},
		{Username: "bob"},
		{Username: "carol"},
	}

	t.Run("known user", func(t *testing.T) {
		display, mentions := resolveMentions("hello @bob", users)
		assert.Equal(t, `hello <span class="mention" data-user="bob">@bob</span>`, display)
		assert.Equal(t, []string{"bob"}, mentions)
	})

	t.Run("unknown user leaves content unmodified", func(t *testing.T) {
		display, mentions := resolveMentions("hello @nobody", users)
		assert.Equal(t, "hello @nobody", display)
		assert.Empty(t, mentions)
	})

	t.Run("lookup is case-insensitive, mention is canonical", func(t *testing.T) {
		display, mentions := resolveMentions("hey @BOB", users)
		assert.Contains(t, display, `data-user="bob"`)
		assert.Equal(t, []string{"bob"}, mentions)
	})

	t.Run("repeated mention is listed once", func(t *testing.T) {
		_, mentions := resolveMentions("@bob @bob @bob", users)
		assert.Equal(t, []string{"bob"}, mentions)
	})

	t.Run("multiple users in first-occurrence order", func(t *testing.T) {
		_, mentions := resolveMentions("@carol meet @alice", users)
		assert.Equal(t, []string{"carol", "alice"}, mentions)
	})

	t.Run("no mentions", func(t *testing.T) {
		display, mentions := resolveMentions("plain message", users)
		assert.Equal(t, "plain message", display)
		assert.Empty(t, mentions)
	})

	t.Run("empty content", func(t *testing.T) {
		display, mentions := resolveMentions("", users)
		assert.Equal(t, "", display)
		assert.Empty(t, mentions)
	})
}
