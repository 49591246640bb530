package tracker

import (
	"strconv"
	"strings"
)

// MentionToken is one @[DisplayName](UserID) occurrence in discussion text.
// Start and End are byte offsets of the whole token within the input.
type MentionToken struct {
	DisplayName string
	UserID      uint
	Start       int
	End         int
}

// ParseMentions scans text for mention markup and returns the tokens in
// order of appearance. Anything that does not form a complete token is
// left alone: "@[x]" without a target, nested brackets, unmatched parens
// and stray "@" all fall through as plain text.
func ParseMentions(text string) []MentionToken {
	var tokens []MentionToken
	for i := 0; i < len(text); {
		if text[i] != '@' || i+1 >= len(text) || text[i+1] != '[' {
			i++
			continue
		}
		token, next, ok := scanMention(text, i)
		if !ok {
			// Resume after the "@[" so an inner mention can still match.
			i += 2
			continue
		}
		tokens = append(tokens, token)
		i = next
	}
	return tokens
}

// scanMention reads one token starting at the "@". It expects
// "@[name](digits)" with no bracket characters inside the name.
func scanMention(text string, start int) (MentionToken, int, bool) {
	i := start + 2 // past "@["
	nameStart := i
	for i < len(text) && text[i] != ']' {
		if text[i] == '[' || text[i] == '(' || text[i] == ')' {
			return MentionToken{}, 0, false
		}
		i++
	}
	if i >= len(text) || i == nameStart {
		return MentionToken{}, 0, false
	}
	name := text[nameStart:i]
	i++ // past "]"

	if i >= len(text) || text[i] != '(' {
		return MentionToken{}, 0, false
	}
	i++
	idStart := i
	for i < len(text) && text[i] != ')' {
		if text[i] < '0' || text[i] > '9' {
			return MentionToken{}, 0, false
		}
		i++
	}
	if i >= len(text) || i == idStart {
		return MentionToken{}, 0, false
	}
	// Ids that do not fit in 32 bits cannot reference a real user; treat
	// them as plain text rather than letting the value wrap.
	id, err := strconv.ParseUint(text[idStart:i], 10, 32)
	if err != nil {
		return MentionToken{}, 0, false
	}
	i++ // past ")"

	return MentionToken{
		DisplayName: name,
		UserID:      uint(id),
		Start:       start,
		End:         i,
	}, i, true
}

// DisplayText rewrites mention markup for human-readable output, turning
// every token into "@DisplayName".
func DisplayText(text string) string {
	tokens := ParseMentions(text)
	if len(tokens) == 0 {
		return text
	}
	var b strings.Builder
	prev := 0
	for _, t := range tokens {
		b.WriteString(text[prev:t.Start])
		b.WriteByte('@')
		b.WriteString(t.DisplayName)
		prev = t.End
	}
	b.WriteString(text[prev:])
	return b.String()
}

// MentionedUserIDs returns the unique user ids referenced by text, in
// first-seen order.
func MentionedUserIDs(text string) []uint {
	seen := make(map[uint]struct{})
	var ids []uint
	for _, t := range ParseMentions(text) {
		if _, ok := seen[t.UserID]; ok {
			continue
		}
		seen[t.UserID] = struct{}{}
		ids = append(ids, t.UserID)
	}
	return ids
}

// NotificationTargets filters the mentioned set down to the users that
// should receive a mention email: the author never notifies themselves,
// and the parent post's author is excluded because a reply already
// notifies them through the separate reply channel.
func NotificationTargets(mentioned []uint, authorID uint, parentAuthorID *uint) []uint {
	var targets []uint
	for _, id := range mentioned {
		if id == authorID {
			continue
		}
		if parentAuthorID != nil && id == *parentAuthorID {
			continue
		}
		targets = append(targets, id)
	}
	return targets
}
