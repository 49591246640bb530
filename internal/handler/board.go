package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
	"github.com/ucentricid/uproject-management/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewBoardMgr)
}

// BoardMgr serves the kanban board: columns, issues and drag moves.
type BoardMgr struct {
	name        string
	db          *gorm.DB
	objectStore ObjectStore
}

func NewBoardMgr(conf RegisterConfig) Manager {
	return &BoardMgr{
		name:        "board",
		db:          conf.DB,
		objectStore: conf.ObjectStore,
	}
}

func (mgr *BoardMgr) GetName() string { return mgr.name }

func (mgr *BoardMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *BoardMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("/columns", mgr.CreateColumn)
	g.DELETE("/columns/:id", mgr.DeleteColumn)
	g.POST("/issues", mgr.CreateIssue)
	g.PUT("/issues/:id", mgr.UpdateIssue)
	g.PUT("/issues/:id/status", mgr.UpdateIssueStatus)
	g.PUT("/issues/move", mgr.MoveIssues)
	g.DELETE("/issues/:id", mgr.DeleteIssue)
}

func (mgr *BoardMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	ColumnCreateReq struct {
		ProjectID uint   `json:"projectId" binding:"required"`
		Name      string `json:"name" binding:"required"`
	}

	ColumnIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	IssueIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	IssueCreateReq struct {
		ProjectID   uint              `json:"projectId" binding:"required"`
		ColumnID    *uint             `json:"columnId"`
		Title       string            `json:"title" binding:"required"`
		Description string            `json:"description"`
		Priority    model.Priority    `json:"priority"`
		Type        model.IssueType   `json:"type"`
		AssigneeID  *uint             `json:"assigneeId"`
		DueDate     *time.Time        `json:"dueDate"`
	}

	IssueUpdateReq struct {
		Title          string          `json:"title" binding:"required"`
		Description    string          `json:"description"`
		Priority       model.Priority  `json:"priority" binding:"required"`
		Type           model.IssueType `json:"type" binding:"required"`
		AssigneeID     *uint           `json:"assigneeId"`
		DueDate        *time.Time      `json:"dueDate"`
		AttachmentURL  *string         `json:"attachmentUrl"`
		AttachmentName *string         `json:"attachmentName"`
	}

	IssueStatusReq struct {
		Status model.IssueStatus `json:"status" binding:"required"`
	}

	// IssueMoveReq describes one drag: where the issue came from and
	// where it was dropped.
	IssueMoveReq struct {
		ProjectID  uint `json:"projectId" binding:"required"`
		IssueID    uint `json:"issueId" binding:"required"`
		FromColumn uint `json:"fromColumnId" binding:"required"`
		FromIndex  *int `json:"fromIndex" binding:"required"`
		ToColumn   uint `json:"toColumnId" binding:"required"`
		ToIndex    *int `json:"toIndex" binding:"required"`
	}

	IssueResp struct {
		ID             uint              `json:"id"`
		Title          string            `json:"title"`
		Description    *string           `json:"description"`
		Priority       model.Priority    `json:"priority"`
		Type           model.IssueType   `json:"type"`
		Status         model.IssueStatus `json:"status"`
		Order          int               `json:"order"`
		ColumnID       uint              `json:"columnId"`
		ProjectID      uint              `json:"projectId"`
		ReporterID     uint              `json:"reporterId"`
		AssigneeID     *uint             `json:"assigneeId"`
		Assignee       *UserResp         `json:"assignee"`
		DueDate        *time.Time        `json:"dueDate"`
		AttachmentURL  *string           `json:"attachmentUrl"`
		AttachmentName *string           `json:"attachmentName"`
		CreatedAt      time.Time         `json:"createdAt"`
	}
)

func toIssueResp(issue *model.Issue) IssueResp {
	resp := IssueResp{
		ID:             issue.ID,
		Title:          issue.Title,
		Description:    issue.Description,
		Priority:       issue.Priority,
		Type:           issue.Type,
		Status:         issue.Status,
		Order:          issue.Order,
		ColumnID:       issue.ColumnID,
		ProjectID:      issue.ProjectID,
		ReporterID:     issue.ReporterID,
		AssigneeID:     issue.AssigneeID,
		DueDate:        issue.DueDate,
		AttachmentURL:  issue.AttachmentURL,
		AttachmentName: issue.AttachmentName,
		CreatedAt:      issue.CreatedAt,
	}
	if issue.Assignee != nil {
		assignee := toUserResp(issue.Assignee)
		resp.Assignee = &assignee
	}
	return resp
}

// CreateColumn godoc
//
//	@Summary		Add a board column
//	@Description	The new column is appended after the existing ones
//	@Tags			Board
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/columns [post]
func (mgr *BoardMgr) CreateColumn(c *gin.Context) {
	var req ColumnCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !mgr.requireParticipant(c, req.ProjectID) {
		return
	}

	var column model.BoardColumn
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		var maxOrder *int
		if err := tx.Model(&model.BoardColumn{}).
			Where("project_id = ?", req.ProjectID).
			Select("max(display_order)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		order := 0
		if maxOrder != nil {
			order = *maxOrder + 1
		}
		column = model.BoardColumn{Name: req.Name, Order: order, ProjectID: req.ProjectID}
		return tx.Create(&column).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, ColumnResp{ID: column.ID, Name: column.Name, Order: column.Order, Issues: []IssueResp{}})
}

// DeleteColumn godoc
//
//	@Summary		Delete an empty board column
//	@Description	Fails when the column still holds issues
//	@Tags			Board
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/columns/{id} [delete]
func (mgr *BoardMgr) DeleteColumn(c *gin.Context) {
	var req ColumnIDReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var column model.BoardColumn
	if err := mgr.db.WithContext(c).First(&column, req.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Column not found", resputil.NotFound)
		return
	}
	if !mgr.requireParticipant(c, column.ProjectID) {
		return
	}

	var issueCount int64
	if err := mgr.db.WithContext(c).Model(&model.Issue{}).
		Where("column_id = ?", column.ID).Count(&issueCount).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if issueCount > 0 {
		resputil.HTTPError(c, http.StatusConflict, "Move or delete the issues in this column first", resputil.Conflict)
		return
	}

	if err := mgr.db.WithContext(c).Delete(&column).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

// CreateIssue godoc
//
//	@Summary		Create an issue
//	@Description	Lands at the end of the given column, or of the first column
//	@Description	when none is given
//	@Tags			Board
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/issues [post]
func (mgr *BoardMgr) CreateIssue(c *gin.Context) {
	token := util.GetToken(c)

	var req IssueCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !mgr.requireParticipant(c, req.ProjectID) {
		return
	}

	var issue model.Issue
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		var column model.BoardColumn
		if req.ColumnID != nil {
			if err := tx.Where("project_id = ?", req.ProjectID).
				First(&column, *req.ColumnID).Error; err != nil {
				return err
			}
		} else {
			if err := tx.Where("project_id = ?", req.ProjectID).
				Order("display_order asc").First(&column).Error; err != nil {
				return err
			}
		}

		var maxOrder *int
		if err := tx.Model(&model.Issue{}).
			Where("column_id = ?", column.ID).
			Select("max(display_order)").Scan(&maxOrder).Error; err != nil {
			return err
		}
		order := 0
		if maxOrder != nil {
			order = *maxOrder + 1
		}

		issue = model.Issue{
			Title:      req.Title,
			Priority:   lo.Ternary(req.Priority != "", req.Priority, model.PriorityMedium),
			Type:       lo.Ternary(req.Type != "", req.Type, model.IssueTypeTask),
			Status:     model.IssueStatusTodo,
			Order:      order,
			ProjectID:  req.ProjectID,
			ColumnID:   column.ID,
			ReporterID: token.UserID,
			AssigneeID: req.AssigneeID,
			DueDate:    req.DueDate,
		}
		if req.Description != "" {
			issue.Description = &req.Description
		}
		return tx.Create(&issue).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toIssueResp(&issue))
}

// UpdateIssue godoc
//
//	@Summary		Update an issue
//	@Description	Replaces the editable fields. When the attachment changes,
//	@Description	the previous object is removed from storage only after the
//	@Description	new reference is persisted.
//	@Tags			Board
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/issues/{id} [put]
func (mgr *BoardMgr) UpdateIssue(c *gin.Context) {
	var idReq IssueIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req IssueUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var issue model.Issue
	if err := mgr.db.WithContext(c).First(&issue, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Issue not found", resputil.NotFound)
		return
	}
	if !mgr.requireParticipant(c, issue.ProjectID) {
		return
	}

	old := tracker.AttachmentRef{}
	if issue.AttachmentURL != nil {
		old.URL = *issue.AttachmentURL
	}
	if issue.AttachmentName != nil {
		old.Name = *issue.AttachmentName
	}
	updated := tracker.AttachmentRef{}
	if req.AttachmentURL != nil {
		updated.URL = *req.AttachmentURL
	}
	if req.AttachmentName != nil {
		updated.Name = *req.AttachmentName
	}
	staleURL := tracker.ReconcileAttachment(old, updated)

	updates := map[string]any{
		"title":           req.Title,
		"description":     lo.Ternary[*string](req.Description != "", &req.Description, nil),
		"priority":        req.Priority,
		"type":            req.Type,
		"assignee_id":     req.AssigneeID,
		"due_date":        req.DueDate,
		"attachment_url":  req.AttachmentURL,
		"attachment_name": req.AttachmentName,
	}
	if err := mgr.db.WithContext(c).Model(&issue).Updates(updates).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	if staleURL != "" && mgr.objectStore != nil {
		if err := mgr.objectStore.DeleteObject(c, staleURL); err != nil {
			klog.Errorf("delete replaced issue attachment %s: %v", staleURL, err)
		}
	}

	resputil.Success(c, toIssueResp(&issue))
}

// UpdateIssueStatus godoc
//
//	@Summary	Update only the workflow status of an issue
//	@Tags		Board
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/board/issues/{id}/status [put]
func (mgr *BoardMgr) UpdateIssueStatus(c *gin.Context) {
	var idReq IssueIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req IssueStatusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var issue model.Issue
	if err := mgr.db.WithContext(c).First(&issue, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Issue not found", resputil.NotFound)
		return
	}
	if !mgr.requireParticipant(c, issue.ProjectID) {
		return
	}

	if err := mgr.db.WithContext(c).Model(&issue).
		Update("status", req.Status).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toIssueResp(&issue))
}

// MoveIssues godoc
//
//	@Summary		Persist a drag and drop move
//	@Description	Recomputes the display order of the touched columns and
//	@Description	writes the whole batch in one transaction. Concurrent moves
//	@Description	resolve last write wins.
//	@Tags			Board
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/issues/move [put]
func (mgr *BoardMgr) MoveIssues(c *gin.Context) {
	var req IssueMoveReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !mgr.requireParticipant(c, req.ProjectID) {
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		var issues []model.Issue
		if err := tx.Where("project_id = ? AND column_id IN ?", req.ProjectID,
			[]uint{req.FromColumn, req.ToColumn}).
			Order("display_order asc").Find(&issues).Error; err != nil {
			return err
		}

		columns := map[uint][]uint{req.FromColumn: {}, req.ToColumn: {}}
		for _, issue := range issues {
			columns[issue.ColumnID] = append(columns[issue.ColumnID], issue.ID)
		}

		updates, err := tracker.ReconcileOrder(columns, tracker.Move{
			IssueID:    req.IssueID,
			FromColumn: req.FromColumn,
			FromIndex:  *req.FromIndex,
			ToColumn:   req.ToColumn,
			ToIndex:    *req.ToIndex,
		})
		if err != nil {
			return err
		}

		for _, update := range updates {
			if err := tx.Model(&model.Issue{}).Where("id = ?", update.IssueID).
				Updates(map[string]any{
					"display_order": update.Order,
					"column_id":     update.ColumnID,
				}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	resputil.Success(c, "")
}

// DeleteIssue godoc
//
//	@Summary		Delete an issue
//	@Description	The attachment object, if any, is removed best effort after
//	@Description	the row is gone
//	@Tags			Board
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/board/issues/{id} [delete]
func (mgr *BoardMgr) DeleteIssue(c *gin.Context) {
	var idReq IssueIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var issue model.Issue
	if err := mgr.db.WithContext(c).First(&issue, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Issue not found", resputil.NotFound)
		return
	}
	if !mgr.requireParticipant(c, issue.ProjectID) {
		return
	}

	// Best-effort object cleanup happens before the row goes away. A
	// failed store call leaves an orphaned object, never a dangling
	// reference.
	if issue.AttachmentURL != nil && mgr.objectStore != nil {
		if err := mgr.objectStore.DeleteObject(c, *issue.AttachmentURL); err != nil {
			klog.Errorf("delete attachment of issue %d: %v", issue.ID, err)
		}
	}

	if err := mgr.db.WithContext(c).Delete(&issue).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

// requireParticipant loads the project and rejects callers who are neither
// the owner nor a member. It writes the error response itself.
func (mgr *BoardMgr) requireParticipant(c *gin.Context, projectID uint) bool {
	token := util.GetToken(c)
	project, memberIDs, err := loadParticipants(c, mgr.db, projectID)
	if err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return false
	}
	if !tracker.IsParticipant(project.OwnerID, memberIDs, token.UserID) {
		resputil.HTTPError(c, http.StatusForbidden, "You are not a participant of this project", resputil.UserNotAllowed)
		return false
	}
	return true
}
