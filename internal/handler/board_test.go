package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
)

func TestDeleteIssueCleansObjectBeforeRow(t *testing.T) {
	db := newTestDB(t)

	owner := model.User{Name: "alice", Email: "alice@localhost", Role: model.RoleMember}
	require.NoError(t, db.Create(&owner).Error)
	project := model.Project{Name: "Tracker", Key: "TRAC", OwnerID: owner.ID}
	require.NoError(t, db.Create(&project).Error)
	column := model.BoardColumn{Name: "To Do", Order: 0, ProjectID: project.ID}
	require.NoError(t, db.Create(&column).Error)

	fileURL := "http://store/uproject/issue_attachment_file/Tracker/crash/alice/1_log.txt"
	fileName := "log.txt"
	issue := model.Issue{
		Title:          "crash",
		Priority:       model.PriorityMedium,
		Type:           model.IssueTypeBug,
		Status:         model.IssueStatusTodo,
		ProjectID:      project.ID,
		ColumnID:       column.ID,
		ReporterID:     owner.ID,
		AttachmentURL:  &fileURL,
		AttachmentName: &fileName,
	}
	require.NoError(t, db.Create(&issue).Error)

	store := &fakeObjectStore{}
	store.onDelete = func(string) {
		// The row must still be referenced while the object goes away,
		// so a failed store call never leaves a dangling reference.
		var found model.Issue
		assert.NoError(t, db.First(&found, issue.ID).Error)
	}

	mgr := &BoardMgr{name: "board", db: db, objectStore: store}
	c, w := newAuthedContext(&owner, issue.ID)
	mgr.DeleteIssue(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{fileURL}, store.deleted)

	var found model.Issue
	err := db.First(&found, issue.ID).Error
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestDeleteIssueWithoutAttachmentSkipsStore(t *testing.T) {
	db := newTestDB(t)

	owner := model.User{Name: "alice", Email: "alice@localhost", Role: model.RoleMember}
	require.NoError(t, db.Create(&owner).Error)
	project := model.Project{Name: "Tracker", Key: "TRAC", OwnerID: owner.ID}
	require.NoError(t, db.Create(&project).Error)
	column := model.BoardColumn{Name: "To Do", Order: 0, ProjectID: project.ID}
	require.NoError(t, db.Create(&column).Error)

	issue := model.Issue{
		Title:      "plain",
		Priority:   model.PriorityLow,
		Type:       model.IssueTypeTask,
		Status:     model.IssueStatusTodo,
		ProjectID:  project.ID,
		ColumnID:   column.ID,
		ReporterID: owner.ID,
	}
	require.NoError(t, db.Create(&issue).Error)

	store := &fakeObjectStore{}
	mgr := &BoardMgr{name: "board", db: db, objectStore: store}
	c, w := newAuthedContext(&owner, issue.ID)
	mgr.DeleteIssue(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.deleted)
}
