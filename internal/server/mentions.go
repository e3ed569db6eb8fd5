package server

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/pdolan/connectra/internal/types"
)

var mentionPattern = regexp.MustCompile(`@(\w+)`)

// resolveMentions scans content for @username tokens and resolves each
// against the user directory, case-insensitively. Matched tokens are
// rewritten into tagged spans carrying the canonical username; unmatched
// tokens pass through untouched. The returned mention list is
// deduplicated in first-occurrence order.
func resolveMentions(content string, users []types.User) (string, []string) {
	mentions := []string{}

	display := mentionPattern.ReplaceAllStringFunc(content, func(token string) string {
		name := strings.TrimPrefix(token, "@")
		for _, u := range users {
			if strings.EqualFold(u.Username, name) {
				if !slices.Contains(mentions, u.Username) {
					mentions = append(mentions, u.Username)
				}
				return fmt.Sprintf(`<span class="mention" data-user="%s">@%s</span>`, u.Username, u.Username)
			}
		}
		return token
	})

	return display, mentions
}
