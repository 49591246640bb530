package tracker

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMentions(t *testing.T) {
	tokens := ParseMentions("hi @[Bob](2), did you see @[Alice Smith](15)?")
	require.Len(t, tokens, 2)

	assert.Equal(t, "Bob", tokens[0].DisplayName)
	assert.Equal(t, uint(2), tokens[0].UserID)
	assert.Equal(t, "@[Bob](2)", "hi @[Bob](2), did you see @[Alice Smith](15)?"[tokens[0].Start:tokens[0].End])

	assert.Equal(t, "Alice Smith", tokens[1].DisplayName)
	assert.Equal(t, uint(15), tokens[1].UserID)
}

func TestParseMentionsMalformed(t *testing.T) {
	for _, text := range []string{
		"no mention here",
		"bare @ sign",
		"@[NoTarget]",
		"@[Unclosed](12",
		"@[](3)",
		"@[Bob]()",
		"@[Bob](abc)",
		"@[Ne[sted](4)",
		"@Bob](5)",
		"trailing @",
		"@[",
	} {
		assert.Empty(t, ParseMentions(text), "text %q", text)
	}
}

func TestParseMentionsRejectsOversizedID(t *testing.T) {
	// A digit run too large for a user id must not wrap around to some
	// other user's id.
	assert.Empty(t, ParseMentions("@[Bob](99999999999999999999999)"))
	assert.Empty(t, ParseMentions("@[Bob](4294967296)")) // MaxUint32 + 1

	tokens := ParseMentions("@[Bob](4294967295)")
	require.Len(t, tokens, 1)
	assert.Equal(t, uint(4294967295), tokens[0].UserID)
}

func TestParseMentionsRecoversAfterBadToken(t *testing.T) {
	tokens := ParseMentions("@[broken @[Bob](7) ok")
	require.Len(t, tokens, 1)
	assert.Equal(t, uint(7), tokens[0].UserID)
}

func TestDisplayText(t *testing.T) {
	assert.Equal(t, "@Bob hi", DisplayText("@[Bob](2) hi"))
	assert.Equal(t, "ping @Alice and @Bob!", DisplayText("ping @[Alice](1) and @[Bob](2)!"))
	assert.Equal(t, "plain text", DisplayText("plain text"))
	assert.Equal(t, "@[half (open", DisplayText("@[half (open"))
}

func TestMentionedUserIDsDedup(t *testing.T) {
	ids := MentionedUserIDs("@[Bob](2) hi @[Bob](2)")
	assert.Equal(t, []uint{2}, ids)

	ids = MentionedUserIDs("@[B](2) @[A](1) @[B](2) @[C](3)")
	assert.Equal(t, []uint{2, 1, 3}, ids)
}

func TestNotificationTargets(t *testing.T) {
	mentioned := []uint{1, 2, 3}

	// Author is never notified about their own mention.
	assert.Equal(t, []uint{2, 3}, NotificationTargets(mentioned, 1, nil))

	// Parent author already got the reply notification.
	assert.Equal(t, []uint{3}, NotificationTargets(mentioned, 1, lo.ToPtr(uint(2))))

	// Replier who is also the parent author gets nothing at all.
	assert.Empty(t, NotificationTargets([]uint{5}, 5, lo.ToPtr(uint(5))))
}
