// Package textutil normalizes chat message text and shortens passages for display.
package textutil

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	userMentionRe = regexp.MustCompile(`<@[A-Z0-9]+>`)
	channelLinkRe = regexp.MustCompile(`<#[A-Z0-9]+(\|[^>]+)?>`)
	emojiRe       = regexp.MustCompile(`:[a-zA-Z0-9_+-]+:`)
	labeledLinkRe = regexp.MustCompile(`<([^|>]+)\|([^>]+)>`)
	bareLinkRe    = regexp.MustCompile(`<(https?://[^>]+)>`)
)

// CleanSlackMessage strips user and channel mentions and emoji codes from a
// Slack message, unwraps links to their label or URL and collapses whitespace.
func CleanSlackMessage(text string) string {
	if text == "" {
		return ""
	}
	text = userMentionRe.ReplaceAllString(text, "")
	text = channelLinkRe.ReplaceAllString(text, "")
	text = emojiRe.ReplaceAllString(text, "")
	text = labeledLinkRe.ReplaceAllString(text, "$2")
	text = bareLinkRe.ReplaceAllString(text, "$1")
	return strings.Join(strings.Fields(text), " ")
}

// Truncate shortens text to at most maxRunes runes plus an ellipsis. The cut
// moves back to the last space when that keeps at least 80% of the budget.
func Truncate(text string, maxRunes int) string {
	if maxRunes <= 0 || utf8.RuneCountInString(text) <= maxRunes {
		return text
	}
	runes := []rune(text)[:maxRunes]
	if i := lastSpace(runes); i > maxRunes*4/5 {
		runes = runes[:i]
	}
	return string(runes) + "..."
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
