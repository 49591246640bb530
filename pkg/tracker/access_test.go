package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsParticipant(t *testing.T) {
	members := []uint{2, 3}

	assert.True(t, IsParticipant(1, members, 1), "owner is a participant")
	assert.True(t, IsParticipant(1, members, 3), "member is a participant")
	assert.False(t, IsParticipant(1, members, 9), "stranger is not")
	assert.True(t, IsParticipant(1, nil, 1), "owner of a project with no members")
	assert.False(t, IsParticipant(1, nil, 2))
}

func TestIsParticipantTracksMembership(t *testing.T) {
	// Adding then removing a member restores the original answer.
	assert.False(t, IsParticipant(1, nil, 4))
	assert.True(t, IsParticipant(1, []uint{4}, 4))
	assert.False(t, IsParticipant(1, nil, 4))
}

func TestIsOwner(t *testing.T) {
	assert.True(t, IsOwner(7, 7))
	assert.False(t, IsOwner(7, 8))
}

func TestReconcileAttachment(t *testing.T) {
	a := AttachmentRef{URL: "https://store/bucket/a", Name: "a.pdf"}
	b := AttachmentRef{URL: "https://store/bucket/b", Name: "b.pdf"}

	assert.Empty(t, ReconcileAttachment(AttachmentRef{}, a), "none -> present deletes nothing")
	assert.Equal(t, a.URL, ReconcileAttachment(a, b), "replacement deletes the old object")
	assert.Equal(t, a.URL, ReconcileAttachment(a, AttachmentRef{}), "removal deletes the object")
	assert.Empty(t, ReconcileAttachment(a, a), "unchanged reference deletes nothing")
	assert.Empty(t, ReconcileAttachment(AttachmentRef{}, AttachmentRef{}))
}
