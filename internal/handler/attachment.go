package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"k8s.io/klog/v2"

	"github.com/ucentricid/uproject-management/dao/model"
	"github.com/ucentricid/uproject-management/internal/resputil"
	"github.com/ucentricid/uproject-management/internal/util"
	"github.com/ucentricid/uproject-management/pkg/objectstore"
)

//nolint:gochecknoinits // This is the standard way to register a gin handler.
func init() {
	Registers = append(Registers, NewAttachmentMgr)
}

// AttachmentMgr hands out presigned object storage URLs. The browser
// uploads and downloads directly against storage, file bytes never pass
// through this server.
type AttachmentMgr struct {
	name        string
	db          *gorm.DB
	objectStore ObjectStore
}

func NewAttachmentMgr(conf RegisterConfig) Manager {
	return &AttachmentMgr{
		name:        "attachments",
		db:          conf.DB,
		objectStore: conf.ObjectStore,
	}
}

func (mgr *AttachmentMgr) GetName() string { return mgr.name }

func (mgr *AttachmentMgr) RegisterPublic(_ *gin.RouterGroup) {}

func (mgr *AttachmentMgr) RegisterProtected(g *gin.RouterGroup) {
	g.POST("/upload-url", mgr.UploadURL)
	g.POST("/download-url", mgr.DownloadURL)
	g.DELETE("", mgr.Delete)
}

func (mgr *AttachmentMgr) RegisterAdmin(_ *gin.RouterGroup) {}

type (
	// UploadURLReq asks for a presigned PUT. Category selects the key
	// prefix, Context names the issue title or discussion thread the
	// file belongs to.
	UploadURLReq struct {
		ProjectID   uint   `json:"projectId" binding:"required"`
		Category    string `json:"category" binding:"required,oneof=issue_attachment_file discussion_attachment_file"`
		Context     string `json:"context" binding:"required"`
		FileName    string `json:"fileName" binding:"required"`
		ContentType string `json:"contentType"`
	}

	UploadURLResp struct {
		UploadURL string `json:"uploadUrl"`
		FileURL   string `json:"fileUrl"`
	}

	DownloadURLReq struct {
		FileURL  string `json:"fileUrl" binding:"required"`
		FileName string `json:"fileName" binding:"required"`
	}

	DownloadURLResp struct {
		DownloadURL string `json:"downloadUrl"`
	}

	AttachmentDeleteReq struct {
		FileURL string `json:"fileUrl" binding:"required"`
	}
)

// UploadURL godoc
//
//	@Summary		Get a presigned upload URL
//	@Description	Valid for five minutes. The response also carries the
//	@Description	stable file URL to store on the issue or discussion.
//	@Tags			Attachment
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/attachments/upload-url [post]
func (mgr *AttachmentMgr) UploadURL(c *gin.Context) {
	token := util.GetToken(c)

	var req UploadURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if mgr.objectStore == nil {
		resputil.HTTPError(c, http.StatusBadGateway, "Object storage is not configured", resputil.UpstreamError)
		return
	}

	var project model.Project
	if err := mgr.db.WithContext(c).First(&project, req.ProjectID).Error; err != nil {
		resputil.HTTPError(c, http.StatusNotFound, "Project not found", resputil.NotFound)
		return
	}

	key := objectstore.ObjectKey(req.Category, project.Name, req.Context, token.Username, req.FileName, time.Now())
	uploadURL, fileURL, err := mgr.objectStore.PresignUpload(c, key, req.ContentType)
	if err != nil {
		klog.Errorf("presign upload %s: %v", key, err)
		resputil.HTTPError(c, http.StatusBadGateway, "Could not reach object storage", resputil.UpstreamError)
		return
	}

	resputil.Success(c, UploadURLResp{UploadURL: uploadURL, FileURL: fileURL})
}

// DownloadURL godoc
//
//	@Summary		Get a presigned download URL
//	@Description	Forces a save-as with the original file name
//	@Tags			Attachment
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/attachments/download-url [post]
func (mgr *AttachmentMgr) DownloadURL(c *gin.Context) {
	var req DownloadURLReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if mgr.objectStore == nil {
		resputil.HTTPError(c, http.StatusBadGateway, "Object storage is not configured", resputil.UpstreamError)
		return
	}

	downloadURL, err := mgr.objectStore.PresignDownload(c, req.FileURL, req.FileName)
	if err != nil {
		klog.Errorf("presign download %s: %v", req.FileURL, err)
		resputil.HTTPError(c, http.StatusBadGateway, "Could not reach object storage", resputil.UpstreamError)
		return
	}

	resputil.Success(c, DownloadURLResp{DownloadURL: downloadURL})
}

// Delete godoc
//
//	@Summary		Remove an object from storage
//	@Description	Used when the user discards an upload before saving the
//	@Description	issue or discussion that would reference it
//	@Tags			Attachment
//	@Accept			json
//	@Produce		json
//	@Security		Bearer
//	@Router			/v1/attachments [delete]
func (mgr *AttachmentMgr) Delete(c *gin.Context) {
	var req AttachmentDeleteReq
	if err := c.ShouldBindJSON(&req); err != nil {
		resputil.BadRequestError(c, err.Error())
		return
	}
	if mgr.objectStore == nil {
		resputil.HTTPError(c, http.StatusBadGateway, "Object storage is not configured", resputil.UpstreamError)
		return
	}

	if err := mgr.objectStore.DeleteObject(c, req.FileURL); err != nil {
		klog.Errorf("delete object %s: %v", req.FileURL, err)
		resputil.HTTPError(c, http.StatusBadGateway, "Could not reach object storage", resputil.UpstreamError)
		return
	}

	resputil.Success(c, "")
}
