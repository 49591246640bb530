package handler

import (
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
)

func discussionRow(id uint, content string, userID uint, parentID *uint, createdAt time.Time) model.Discussion {
	return model.Discussion{
		Model:     gorm.Model{ID: id, CreatedAt: createdAt},
		Content:   content,
		ProjectID: 1,
		UserID:    userID,
		ParentID:  parentID,
		User:      model.User{Model: gorm.Model{ID: userID}},
	}
}

func TestBuildDiscussionTreeKeepsDeepReplies(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Rows arrive sorted by ascending creation time, like the query
	// produces them: a top level post, a direct reply, and a reply to
	// that reply.
	rows := []model.Discussion{
		discussionRow(1, "top", 10, nil, base),
		discussionRow(2, "reply", 11, lo.ToPtr(uint(1)), base.Add(time.Minute)),
		discussionRow(3, "reply to reply", 12, lo.ToPtr(uint(2)), base.Add(2*time.Minute)),
	}

	tree := buildDiscussionTree(rows)
	require.Len(t, tree, 1)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, uint(2), tree[0].Replies[0].ID)

	require.Len(t, tree[0].Replies[0].Replies, 1, "second-level reply must appear under the direct reply")
	assert.Equal(t, uint(3), tree[0].Replies[0].Replies[0].ID)
	assert.Equal(t, "reply to reply", tree[0].Replies[0].Replies[0].Content)
}

func TestBuildDiscussionTreeOrdering(t *testing.T) {
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	rows := []model.Discussion{
		discussionRow(1, "older post", 10, nil, base),
		discussionRow(2, "first reply", 11, lo.ToPtr(uint(1)), base.Add(time.Minute)),
		discussionRow(3, "newer post", 12, nil, base.Add(2*time.Minute)),
		discussionRow(4, "second reply", 12, lo.ToPtr(uint(1)), base.Add(3*time.Minute)),
	}

	tree := buildDiscussionTree(rows)
	require.Len(t, tree, 2)

	// Top level newest first, replies oldest first.
	assert.Equal(t, uint(3), tree[0].ID)
	assert.Equal(t, uint(1), tree[1].ID)
	require.Len(t, tree[1].Replies, 2)
	assert.Equal(t, uint(2), tree[1].Replies[0].ID)
	assert.Equal(t, uint(4), tree[1].Replies[1].ID)

	// A post without replies still serializes with an empty array.
	assert.NotNil(t, tree[0].Replies)
	assert.Empty(t, tree[0].Replies)
}

func TestListDiscussionsReturnsThreeLevelThread(t *testing.T) {
	db := newTestDB(t)

	owner := model.User{Name: "alice", Email: "alice@localhost", Role: model.RoleMember}
	require.NoError(t, db.Create(&owner).Error)
	project := model.Project{Name: "Tracker", Key: "TRAC", OwnerID: owner.ID}
	require.NoError(t, db.Create(&project).Error)

	top := model.Discussion{Content: "top", ProjectID: project.ID, UserID: owner.ID}
	require.NoError(t, db.Create(&top).Error)
	reply := model.Discussion{Content: "reply", ProjectID: project.ID, UserID: owner.ID, ParentID: &top.ID}
	require.NoError(t, db.Create(&reply).Error)
	grandchild := model.Discussion{Content: "deep", ProjectID: project.ID, UserID: owner.ID, ParentID: &reply.ID}
	require.NoError(t, db.Create(&grandchild).Error)

	mgr := &DiscussionMgr{name: "discussions", db: db}
	c, w := newAuthedContext(&owner, project.ID)
	mgr.List(c)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []DiscussionResp `json:"data"`
	}
	require.NoError(t, decodeBody(w, &resp))
	require.Len(t, resp.Data, 1)
	require.Len(t, resp.Data[0].Replies, 1)
	require.Len(t, resp.Data[0].Replies[0].Replies, 1)
	assert.Equal(t, "deep", resp.Data[0].Replies[0].Replies[0].Content)
}

func TestDeleteDiscussionCleansObjectBeforeRow(t *testing.T) {
	db := newTestDB(t)

	author := model.User{Name: "bob", Email: "bob@localhost", Role: model.RoleMember}
	require.NoError(t, db.Create(&author).Error)
	project := model.Project{Name: "Tracker", Key: "TRAC", OwnerID: author.ID}
	require.NoError(t, db.Create(&project).Error)

	fileURL := "http://store/uproject/discussion_attachment_file/Tracker/top/bob/1_notes.pdf"
	discussion := model.Discussion{
		Content:       "with file",
		ProjectID:     project.ID,
		UserID:        author.ID,
		AttachmentURL: &fileURL,
	}
	require.NoError(t, db.Create(&discussion).Error)

	store := &fakeObjectStore{}
	store.onDelete = func(string) {
		// The row must still be referenced while the object goes away.
		var d model.Discussion
		assert.NoError(t, db.First(&d, discussion.ID).Error)
	}

	mgr := &DiscussionMgr{name: "discussions", db: db, objectStore: store}
	c, w := newAuthedContext(&author, discussion.ID)
	mgr.Delete(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{fileURL}, store.deleted)

	var d model.Discussion
	err := db.First(&d, discussion.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
