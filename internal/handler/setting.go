package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewSettingMgr)
}

// SettingMgr serves the system-wide settings: site title and dashboard
// branding. Reads are public so the login page can render before
// authentication; writes are admin only.
type SettingMgr struct {
	name string
	db   *gorm.DB
}

func NewSettingMgr(conf RegisterConfig) Manager {
	return &SettingMgr{
		name: "settings",
		db:   conf.DB,
	}
}

func (mgr *SettingMgr) GetName() string { return mgr.name }

func (mgr *SettingMgr) RegisterPublic(g *gin.RouterGroup) {
	g.GET("/site-title", mgr.GetSiteTitle)
	g.GET("/dashboard", mgr.GetDashboard)
}

func (mgr *SettingMgr) RegisterProtected(_ *gin.RouterGroup) {}

func (mgr *SettingMgr) RegisterAdmin(g *gin.RouterGroup) {
	g.PUT("/site-title", mgr.UpdateSiteTitle)
	g.PUT("/dashboard", mgr.UpdateDashboard)
}

type (
	SiteTitleResp struct {
		SiteTitle string `json:"siteTitle"`
	}

	SiteTitleReq struct {
		SiteTitle string `json:"siteTitle" binding:"required"`
	}

	DashboardResp struct {
		Name string `json:"name"`
		Logo string `json:"logo"`
	}

	DashboardReq struct {
		Name string `json:"name" binding:"required"`
		Logo string `json:"logo" binding:"required"`
	}
)

// get reads one setting row, falling back to the default when the row
// does not exist yet.
func (mgr *SettingMgr) get(c *gin.Context, key, fallback string) (string, error) {
	var setting model.SystemSetting
	err := mgr.db.WithContext(c).Where("key = ?", key).First(&setting).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fallback, nil
	}
	if err != nil {
		return "", err
	}
	return setting.Value, nil
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&model.SystemSetting{Key: key, Value: value}).Error
}

// GetSiteTitle godoc
//
//	@Summary	Get the site title shown in the browser tab and login page
//	@Tags		Setting
//	@Produce	json
//	@Router		/v1/settings/site-title [get]
func (mgr *SettingMgr) GetSiteTitle(c *gin.Context) {
	title, err := mgr.get(c, model.SettingSiteTitle, model.DefaultSiteTitle)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, SiteTitleResp{SiteTitle: title})
}

// UpdateSiteTitle godoc
//
//	@Summary	Set the site title
//	@Tags		Setting
//	@Accept		json
//	@Produce	json
//	@Security	Bearer
//	@Router		/v1/admin/settings/site-title [put]
func (mgr *SettingMgr) UpdateSiteTitle(c *gin.Context) {
	var req SiteTitleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if err := upsertSetting(mgr.db.WithContext(c), model.SettingSiteTitle, req.SiteTitle); err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, SiteTitleResp{SiteTitle: req.SiteTitle})
}

// GetDashboard godoc
//
//	@Summary	Get dashboard name and logo letter
//	@Tags		Setting
//	@Produce	json
//	@Router		/v1/settings/dashboard [get]
func (mgr *SettingMgr) GetDashboard(c *gin.Context) {
	name, err := mgr.get(c, model.SettingDashboardName, model.DefaultDashboardName)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	logo, err := mgr.get(c, model.SettingDashboardLogo, model.DefaultDashboardLogo)
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, DashboardResp{Name: name, Logo: logo})
}

// UpdateDashboard godoc
//
//	@Summary		Set dashboard name and logo letter
//	@Description	Both rows are written in one transaction so the branding
//	@Description	never shows a mixed state
//	@Tags			Setting
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/admin/settings/dashboard [put]
func (mgr *SettingMgr) UpdateDashboard(c *gin.Context) {
	var req DashboardReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	err := mgr.db.WithContext(c).Transaction(func(tx *gorm.DB) error {
		if err := upsertSetting(tx, model.SettingDashboardName, req.Name); err != nil {
			return err
		}
		return upsertSetting(tx, model.SettingDashboardLogo, req.Logo)
	})
	if err != nil {
		resputil.Error(c, err.Error(), resputil.NotSpecified)
		return
	}
	resputil.Success(c, DashboardResp{Name: req.Name, Logo: req.Logo})
}
