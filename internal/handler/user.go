package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewUserMgr)
}

const minPasswordLen = 6

type UserMgr struct {
	name string
	db   *gorm.DB
}

func NewUserMgr(conf RegisterConfig) Manager {
	return &UserMgr{
		name: "users",
		db:   conf.DB,
	}
}

func (mgr *UserMgr) GetName() string { return mgr.name }

func (mgr *UserMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *UserMgr) RegisterProtected(g *gin.RouterGroup) {
	g.GET("", mgr.List)
	g.PUT("/profile/name", mgr.UpdateOwnName)
	g.PUT("/profile/password", mgr.UpdateOwnPassword)
}

func (mgr *UserMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.POST("", mgr.Create)
	g.PUT("/:id", mgr.Update)
	g.PUT("/:id/role", mgr.UpdateRole)
	g.DELETE("/:id", mgr.Delete)
}

type UserResp struct {
	ID    uint       `json:"id"`
	Name  string     `json:"name"`
	Email string     `json:"email"`
	Role  model.Role `json:"role"`
}

func toUserResp(u *model.User) UserResp {
	return UserResp{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// List godoc
//
//	@Summary		List all users
//	@Description	Every signed-in user may list users, e.g. for member and mention pickers
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/users [get]
func (mgr *UserMgr) List(c *gin.Context) {
	var users []model.User
	if err := mgr.db.WithContext(c).Order("name asc").Find(&users).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resp := make([]UserResp, len(users))
	for i := range users {
		resp[i] = toUserResp(&users[i])
	}
	resputil.Success(c, resp)
}

type UserCreateReq struct {
	Name     string     `json:"name" binding:"required"`
	Email    string     `json:"email" binding:"required,email"`
	Password string     `json:"password"`
	Role     model.Role `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// Create godoc
//
//	@Summary		Create a user
//	@Description	Create a user with a default password when none is given
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/admin/users [post]
func (mgr *UserMgr) Create(c *gin.Context) {
	var req UserCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var existing model.User
	err := mgr.db.WithContext(c).Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		resputil.HTTPError(c, http.StatusConflict, "Email already in use", resputil.Conflict)
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	password := req.Password
	if password == "" {
		password = "#Passw0rdPassw0rd"
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	hashed := string(hash)

	user := model.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: &hashed,
		Role:     req.Role,
	}
	if err := mgr.db.WithContext(c).Create(&user).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toUserResp(&user))
}

type (
	UserIDReq struct {
		ID uint `uri:"id" binding:"required"`
	}

	UserUpdateReq struct {
		Name     string     `json:"name" binding:"required"`
		Email    string     `json:"email" binding:"omitempty,email"`
		Role     model.Role `json:"role" binding:"required,oneof=ADMIN MEMBER"`
		Password string     `json:"password"`
	}
)

// Update godoc
//
//	@Summary		Update a user
//	@Description	Update name, role and optionally email and password
//	@Tags			User
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/admin/users/{id} [put]
func (mgr *UserMgr) Update(c *gin.Context) {
	var idReq UserIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UserUpdateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}

	updates := map[string]any{"name": req.Name, "role": req.Role}

	if req.Email != "" {
		var existing model.User
		err := mgr.db.WithContext(c).Where("email = ? AND id <> ?", req.Email, idReq.ID).First(&existing).Error
		if err == nil {
			resputil.HTTPError(c, http.StatusConflict, "Email already in use", resputil.Conflict)
			return
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		updates["email"] = req.Email
	}

	if req.Password != "" {
		if len(req.Password) < minPasswordLen {
			resputil.BadRequestError(c, "Password must be at least 6 characters")
			return
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			resputil.Error(c, err.Error(), resputil.NotSpecified)
			return
		}
		updates["password"] = string(hash)
	}

	if err := mgr.db.WithContext(c).Model(&user).Updates(updates).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toUserResp(&user))
}

type UserRoleReq struct {
	Role model.Role `json:"role" binding:"required,oneof=ADMIN MEMBER"`
}

// UpdateRole godoc
//
//	@Summary	Change a user's platform role
//	@Tags		User
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/admin/users/{id}/role [put]
func (mgr *UserMgr) UpdateRole(c *gin.Context) {
	var idReq UserIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	var req UserRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	var user model.User
	if err := mgr.db.WithContext(c).First(&user, idReq.ID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "User not found", resputil.NotFound)
		return
	}

	if err := mgr.db.WithContext(c).Model(&user).Update("role", req.Role).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, toUserResp(&user))
}

// Delete godoc
//
//	@Summary		Delete a user
//	@Description	An administrator cannot delete their own account
//	@Tags			User
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/admin/users/{id} [delete]
func (mgr *UserMgr) Delete(c *gin.Context) {
	var idReq UserIDReq
	if err := c.ShouldBindUri(&idReq); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	if idReq.ID == token.UserID {
		resputil.HTTPError(c, http.StatusConflict, "Cannot delete your own account", resputil.Conflict)
		return
	}

	if err := mgr.db.WithContext(c).Delete(&model.User{}, idReq.ID).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

type ProfileNameReq struct {
	Name string `json:"name" binding:"required"`
}

// UpdateOwnName godoc
//
//	@Summary	Update the caller's display name
//	@Tags		User
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/users/profile/name [put]
func (mgr *UserMgr) UpdateOwnName(c *gin.Context) {
	var req ProfileNameReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	token := util.GetToken(c)
	if err := mgr.db.WithContext(c).Model(&model.User{}).
		Where("id = ?", token.UserID).Update("name", req.Name).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}

type ProfilePasswordReq struct {
	Password string `json:"password" binding:"required,min=6"`
}

// UpdateOwnPassword godoc
//
//	@Summary	Update the caller's password
//	@Tags		User
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/users/profile/password [put]
func (mgr *UserMgr) UpdateOwnPassword(c *gin.Context) {
	var req ProfilePasswordReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	token := util.GetToken(c)
	if err := mgr.db.WithContext(c).Model(&model.User{}).
		Where("id = ?", token.UserID).Update("password", string(hash)).Error; err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}

	resputil.Success(c, "")
}
