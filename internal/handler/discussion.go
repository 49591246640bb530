package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
	"github.com/ucentricid/uproject-management/pkg/alert"
	"github.com/ucentricid/uproject-management/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewDiscussionMgr)
}

// DiscussionMgr serves the threaded per-project discussion board.
type DiscussionMgr struct {
	name        string
	db          *gorm.DB
	objectStore ObjectStore
	alerter     alert.Interface
}

func NewDiscussionMgr(conf RegisterConfig) Manager {
	return &DiscussionMgr{
		name:        "discussions",
		db:          conf.DB,
		objectStore: conf.ObjectStore,
		alerter:     conf.Alerter,
	}
}

func (mgr *DiscussionMgr) GetName() string { return mgr.name }

func (mgr *DiscussionMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *DiscussionMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("/project/:id", mgr.List)
	g.POST("", mgr.Create)
	g.DELETE("/:id", mgr.Delete)
}

func (mgr *DiscussionMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	DiscussionCreateReq struct {
		ProjectID      uint    `json:"projectId" binding:"required"`
		Content        string  `json:"content" binding:"required"`
		ParentID       *uint   `json:"parentId"`
		AttachmentURL  *string `json:"attachmentUrl"`
		AttachmentName *string `json:"attachmentName"`
	}

	DiscussionIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	DiscussionResp struct {
		ID             uint             `json:"id"`
		Content        string           `json:"content"`
		ProjectID      uint             `json:"projectId"`
		ParentID       *uint            `json:"parentId"`
		Author         UserResp         `json:"author"`
		AttachmentURL  *string          `json:"attachmentUrl"`
		AttachmentName *string          `json:"attachmentName"`
		CreatedAt      time.Time        `json:"createdAt"`
		Replies        []DiscussionResp `json:"replies"`
	}
)

func toDiscussionResp(d *model.Discussion) DiscussionResp {
	return DiscussionResp{
		ID:             d.ID,
		Content:        d.Content,
		ProjectID:      d.ProjectID,
		ParentID:       d.ParentID,
		Author:         toUserResp(&d.User),
		AttachmentURL:  d.AttachmentURL,
		AttachmentName: d.AttachmentName,
		CreatedAt:      d.CreatedAt,
		Replies:        []DiscussionResp{},
	}
}

// List godoc
//
//	@Summary		List the discussion tree of a project
//	@Description	Top level posts newest first, replies below each post oldest
//	@Description	first. Participants only.
//	@Tags			Discussion
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/discussions/project/{id} [get]
func (mgr *DiscussionMgr) List(c *gin.Context) {
	var idReq ProjectIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if !mgr.requireParticipant(c, idReq.ID) {
		return
	}

	var discussions []model.Discussion
	err := mgr.db.WithContext(c).
		Preload("User").
		Where("project_id = ?", idReq.ID).
		Order("created_at asc").
		Find(&discussions).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, buildDiscussionTree(discussions))
}

// buildDiscussionTree assembles the reply tree from rows sorted by
// ascending creation time. Replies keep that order at every depth, top
// level posts come out newest first. Child links are tracked by id and
// the tree is materialized in one final pass, so a reply's own replies
// survive no matter where it sits in the input.
func buildDiscussionTree(discussions []model.Discussion) []DiscussionResp {
	nodes := make(map[uint]*DiscussionResp, len(discussions))
	children := make(map[uint][]uint, len(discussions))
	order := make([]uint, 0, len(discussions))
	for i := range discussions {
		resp := toDiscussionResp(&discussions[i])
		nodes[resp.ID] = &resp
		order = append(order, resp.ID)
	}

	var topLevel []uint
	for _, id := range order {
		node := nodes[id]
		if node.ParentID == nil {
			topLevel = append(topLevel, id)
			continue
		}
		if _, ok := nodes[*node.ParentID]; ok {
			children[*node.ParentID] = append(children[*node.ParentID], id)
		}
	}

	var materialize func(id uint) DiscussionResp
	materialize = func(id uint) DiscussionResp {
		node := *nodes[id]
		node.Replies = make([]DiscussionResp, 0, len(children[id]))
		for _, childID := range children[id] {
			node.Replies = append(node.Replies, materialize(childID))
		}
		return node
	}

	result := make([]DiscussionResp, 0, len(topLevel))
	for i := len(topLevel) - 1; i >= 0; i-- {
		result = append(result, materialize(topLevel[i]))
	}
	return result
}

// Create godoc
//
//	@Summary		Post a discussion or a reply
//	@Description	Notifies the parent author on replies and every @mentioned
//	@Description	user, without blocking or failing the request
//	@Tags			Discussion
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/discussions [post]
func (mgr *DiscussionMgr) Create(c *gin.Context) {
	token := util.GetToken(c)

	var req DiscussionCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	project, memberIDs, err := loadParticipants(c, mgr.db, req.ProjectID)
	if err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	if !tracker.IsParticipant(project.OwnerID, memberIDs, token.UserID) {
		resputil.HTTPError(c, http.StatusForbidden, "You are not a participant of this project", resputil.UserNotAllowed)
		return
	}

	var parent *model.Discussion
	if req.ParentID != nil {
		parent = &model.Discussion{}
		if err := mgr.db.WithContext(c).
			Where("project_id = ?", req.ProjectID).
			First(parent, *req.ParentID).Error; err != nil {
			resputil.HTTPError(c, http.StatusNotFound, "Parent discussion not found", resputil.NotFound)
			return
		}
	}

	discussion := model.Discussion{
		Content:        req.Content,
		ProjectID:      req.ProjectID,
		UserID:         token.UserID,
		ParentID:       req.ParentID,
		AttachmentURL:  req.AttachmentURL,
		AttachmentName: req.AttachmentName,
	}
	if err := mgr.db.WithContext(c).Create(&discussion).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	discussion.User = model.User{Model: gorm.Model{ID: token.UserID}, Name: token.Username}
	if err := mgr.db.WithContext(c).First(&discussion.User, token.UserID).Error; err != nil {
		klog.Errorf("load discussion author %d: %v", token.UserID, err)
	}

	go mgr.notify(&discussion, parent, project.Name)

	resputil.Success(c, toDiscussionResp(&discussion))
}

// notify delivers the reply and mention emails for a new post. Runs in
// its own goroutine detached from the request.
func (mgr *DiscussionMgr) notify(discussion *model.Discussion, parent *model.Discussion, projectName string) {
	if mgr.alerter == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var parentAuthorID *uint
	if parent != nil && parent.UserID != discussion.UserID {
		parentAuthorID = &parent.UserID
		var receiver model.User
		if err := mgr.db.WithContext(ctx).First(&receiver, parent.UserID).Error; err != nil {
			klog.Errorf("load reply receiver %d: %v", parent.UserID, err)
		} else if err := mgr.alerter.ReplyPosted(ctx, &receiver, discussion.User.Name, projectName, discussion.Content); err != nil {
			klog.Errorf("send reply notification to %s: %v", receiver.Email, err)
		}
	}

	mentioned := tracker.MentionedUserIDs(discussion.Content)
	targets := tracker.NotificationTargets(mentioned, discussion.UserID, parentAuthorID)
	if len(targets) == 0 {
		return
	}

	var receivers []model.User
	if err := mgr.db.WithContext(ctx).Where("id IN ?", targets).Find(&receivers).Error; err != nil {
		klog.Errorf("load mention receivers %v: %v", targets, err)
		return
	}
	for i := range receivers {
		if err := mgr.alerter.Mentioned(ctx, &receivers[i], discussion.User.Name, projectName, discussion.Content); err != nil {
			klog.Errorf("send mention notification to %s: %v", receivers[i].Email, err)
		}
	}
}

// Delete godoc
//
//	@Summary		Delete one's own discussion post
//	@Description	Replies of the post survive as orphans in storage. The
//	@Description	attachment object is removed best effort.
//	@Tags			Discussion
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/discussions/{id} [delete]
func (mgr *DiscussionMgr) Delete(c *gin.Context) {
	var idReq DiscussionIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)

	var discussion model.Discussion
	if err := mgr.db.WithContext(c).First(&discussion, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Discussion not found", resputil.NotFound)
		return
	}
	if discussion.UserID != token.UserID {
		resputil.HTTPError(c, http.StatusForbidden, "You can only delete your own posts", resputil.UserNotAllowed)
		return
	}

	// Object cleanup runs before the row delete, matching issue deletion.
	if discussion.AttachmentURL != nil && mgr.objectStore != nil {
		if err := mgr.objectStore.DeleteObject(c, *discussion.AttachmentURL); err != nil {
			klog.Errorf("delete attachment of discussion %d: %v", discussion.ID, err)
		}
	}

	if err := mgr.db.WithContext(c).Delete(&discussion).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

func (mgr *DiscussionMgr) requireParticipant(c *gin.Context, projectID uint) bool {
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
