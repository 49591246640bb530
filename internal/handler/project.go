package handler

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
	"github.com/ucentricid/uproject-management/pkg/tracker"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewProjectMgr)
}

type ProjectMgr struct {
	name string
	db   *gorm.DB
}

func NewProjectMgr(conf RegisterConfig) Manager {
	return &ProjectMgr{
		name: "projects",
		db:   conf.DB,
	}
}

func (mgr *ProjectMgr) GetName() string { return mgr.name }

func (mgr *ProjectMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *ProjectMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.POST("", mgr.Create)
	g.GET("/:id", mgr.Get)
	g.PUT("/:id", mgr.Update)
	g.DELETE("/:id", mgr.Delete)
	g.POST("/:id/members/:uid", mgr.AddMember)
	g.DELETE("/:id/members/:uid", mgr.RemoveMember)
}

func (mgr *ProjectMgr) RegisterAdmin(_ *gin.RouterGroup) {}

// defaultColumns are created with every project.
var defaultColumns = []string{"To Do", "In Progress", "Done"}

type (
	ProjectIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	MemberReq struct {
		ID     uint `uri:"id" binding:"required"`
		UserID uint `uri:"uid" binding:"required"`
	}

	ProjectCreateReq struct {
		Name        string `json:"name" binding:"required"`
		Description string `json:"description"`
		MemberIDs   []uint `json:"memberIds"`
	}

	ProjectSummaryResp struct {
		ID          uint       `json:"id"`
		Name        string     `json:"name"`
		Key         string     `json:"key"`
		Description *string    `json:"description"`
		OwnerID     uint       `json:"ownerId"`
		Members     []UserResp `json:"members"`
		CreatedAt   time.Time  `json:"createdAt"`
	}
)

func toProjectSummary(p *model.Project) ProjectSummaryResp {
	return ProjectSummaryResp{
		ID:          p.ID,
		Name:        p.Name,
		Key:         p.Key,
		Description: p.Description,
		OwnerID:     p.OwnerID,
		Members: lo.Map(p.Members, func(u model.User, _ int) UserResp {
			return toUserResp(&u)
		}),
		CreatedAt: p.CreatedAt,
	}
}

// List godoc
//
//	@Summary		List the caller's projects
//	@Description	Projects the caller owns or is a member of, newest first
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/projects [get]
func (mgr *ProjectMgr) List(c *gin.Context) {
	token := util.GetToken(c)

	var projects []model.Project
	err := mgr.db.WithContext(c).
		Preload("Members").
		Where("owner_id = ? OR id IN (?)", token.UserID,
			mgr.db.Table("project_members").Select("project_id").Where("user_id = ?", token.UserID)).
		Order("created_at desc").
		Find(&projects).Error
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, lo.Map(projects, func(p model.Project, _ int) ProjectSummaryResp {
		return toProjectSummary(&p)
	}))
}

// Create godoc
//
//	@Summary		Create a project
//	@Description	Generates the unique short key, creates the three default
//	@Description	board columns and connects the initial members, all in one
//	@Description	transaction
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/projects [post]
func (mgr *ProjectMgr) Create(c *gin.Context) {
	token := util.GetToken(c)

	var req ProjectCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var project model.Project
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		key, err := mgr.generateKey(tx, req.Name)
		if err != nil {
			return err
		}

		project = model.Project{
			Name:    req.Name,
			Key:     key,
			OwnerID: token.UserID,
		}
		if req.Description != "" {
			project.Description = &req.Description
		}
		for i, name := range defaultColumns {
			project.Columns = append(project.Columns, model.BoardColumn{Name: name, Order: i})
		}
		if err := tx.Create(&project).Error; err != nil {
			return err
		}

		if len(req.MemberIDs) > 0 {
			members := lo.Map(req.MemberIDs, func(id uint, _ int) model.User {
				return model.User{Model: gorm.Model{ID: id}}
			})
			if err := tx.Model(&project).Association("Members").Append(members); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, errKeySpaceExhausted) {
			resputil.HTTPError(c, http.StatusConflict, err.Error(), resputil.Conflict)
			return
		}
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toProjectSummary(&project))
}

var errKeySpaceExhausted = errors.New("could not find a free project key")

// generateKey probes candidates derived from the project name against the
// unique key constraint and returns the first free one.
func (mgr *ProjectMgr) generateKey(tx *gorm.DB, name string) (string, error) {
	base := tracker.KeyBase(name)
	for attempt := 0; attempt < tracker.KeyMaxAttempts; attempt++ {
		candidate := tracker.KeyCandidate(base, attempt)
		var count int64
		if err := tx.Model(&model.Project{}).Where("key = ?", candidate).Count(&count).Error; err != nil {
			return "", err
		}
		if count == 0 {
			return candidate, nil
		}
	}
	return "", errKeySpaceExhausted
}

type (
	ColumnResp struct {
		ID     uint        `json:"id"`
		Name   string      `json:"name"`
		Order  int         `json:"order"`
		Issues []IssueResp `json:"issues"`
	}

	ProjectDetailResp struct {
		ProjectSummaryResp
		Owner          UserResp     `json:"owner"`
		Columns        []ColumnResp `json:"columns"`
		HasDiscussions bool         `json:"hasDiscussions"`
	}
)

// Get godoc
//
//	@Summary		Get one project with its board
//	@Description	Columns and their issues in display order, members, owner
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/projects/{id} [get]
func (mgr *ProjectMgr) Get(c *gin.Context) {
	var idReq ProjectIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var project model.Project
	err := mgr.db.WithContext(c).
		Preload("Members").
		Preload("Owner").
		Preload("Columns", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc")
		}).
		Preload("Columns.Issues", func(db *gorm.DB) *gorm.DB {
			return db.Order("display_order asc")
		}).
		Preload("Columns.Issues.Assignee").
		First(&project, idReq.ID).Error
	if err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}

	var discussionCount int64
	if err := mgr.db.WithContext(c).Model(&model.Discussion{}).
		Where("project_id = ?", project.ID).Count(&discussionCount).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resp := ProjectDetailResp{
		ProjectSummaryResp: toProjectSummary(&project),
		Owner:              toUserResp(&project.Owner),
		HasDiscussions:     discussionCount > 0,
		Columns: lo.Map(project.Columns, func(col model.BoardColumn, _ int) ColumnResp {
			return ColumnResp{
				ID:    col.ID,
				Name:  col.Name,
				Order: col.Order,
				Issues: lo.Map(col.Issues, func(issue model.Issue, _ int) IssueResp {
					return toIssueResp(&issue)
				}),
			}
		}),
	}

	resputil.Success(c, resp)
}

type ProjectUpdateReq struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// Update godoc
//
//	@Summary		Update project name and description
//	@Description	Owner only. The key is immutable, it is baked into issue
//	@Description	references and URLs.
//	@Tags			Project
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/projects/{id} [put]
func (mgr *ProjectMgr) Update(c *gin.Context) {
	var idReq ProjectIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req ProjectUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	if !tracker.IsOwner(project.OwnerID, token.UserID) {
		resputil.HTTPError(c, http.StatusForbidden, "Only the project owner can edit this project", resputil.UserNotAllowed)
		return
	}

	updates := map[string]any{"name": req.Name, "description": req.Description}
	if err := mgr.db.WithContext(c).Model(&project).Updates(updates).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

// Delete godoc
//
//	@Summary		Delete a project
//	@Description	Owner only, and only when the project has no issues and no
//	@Description	discussions. Board columns are removed in the same
//	@Description	transaction.
//	@Tags			Project
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/projects/{id} [delete]
func (mgr *ProjectMgr) Delete(c *gin.Context) {
	var idReq ProjectIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	if !tracker.IsOwner(project.OwnerID, token.UserID) {
		resputil.HTTPError(c, http.StatusForbidden, "Only the project owner can delete this project", resputil.UserNotAllowed)
		return
	}

	var issueCount, discussionCount int64
	if err := mgr.db.WithContext(c).Model(&model.Issue{}).
		Where("project_id = ?", project.ID).Count(&issueCount).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if err := mgr.db.WithContext(c).Model(&model.Discussion{}).
		Where("project_id = ?", project.ID).Count(&discussionCount).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	if issueCount > 0 {
		resputil.HTTPError(c, http.StatusConflict, "Project still has issues on the board", resputil.Conflict)
		return
	}
	if discussionCount > 0 {
		resputil.HTTPError(c, http.StatusConflict, "Project still has discussions", resputil.Conflict)
		return
	}

	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("project_id = ?", project.ID).Delete(&model.BoardColumn{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&project).Association("Members").Clear(); err != nil {
			return err
		}
		return tx.Delete(&project).Error
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

// AddMember godoc
//
//	@Summary	Add a member to a project
//	@Tags		Project
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/projects/{id}/members/{uid} [post]
func (mgr *ProjectMgr) AddMember(c *gin.Context) {
	mgr.changeMember(c, true)
}

// RemoveMember godoc
//
//	@Summary	Remove a member from a project
//	@Tags		Project
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/projects/{id}/members/{uid} [delete]
func (mgr *ProjectMgr) RemoveMember(c *gin.Context) {
	mgr.changeMember(c, false)
}

func (mgr *ProjectMgr) changeMember(c *gin.Context, add bool) {
	var req MemberReq
	if err := c.ShouldBindUri(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, req.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}
	if !tracker.IsOwner(project.OwnerID, token.UserID) {
		msg := fmt.Sprintf("Only the project owner can %s members", lo.Ternary(add, "add", "remove"))
		resputil.HTTPError(c, http.StatusForbidden, msg, resputil.UserNotAllowed)
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, req.UserID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}

	assoc := mgr.db.WithContext(c).Model(&project).Association("Members")
	var err error
	if add {
		err = assoc.Append(&user)
	} else {
		err = assoc.Delete(&user)
	}
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

// loadParticipants returns a project and its member ids for access checks.
func loadParticipants(c *gin.Context, db *gorm.DB, projectID uint) (*model.Project, []uint, error) {
	var project model.Project
	if err := db.WithContext(c).Preload("Members").First(&project, projectID).Error; err != nil {
		return nil, nil, err
	}
	memberIDs := lo.Map(project.Members, func(u model.User, _ int) uint { return u.ID })
	return &project, memberIDs, nil
}
