package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ucentricid/uproject-management/pkg/alert"
)

type Manager interface {
	GetName() string
	RegisterPublic(group *gin.RouterGroup)
	RegisterProtected(group *gin.RouterGroup)
	RegisterAdmin(group *gin.RouterGroup)
}

// ObjectStore is the attachment storage surface the handlers depend on,
// satisfied by pkg/objectstore.Client.
type ObjectStore interface {
	PresignUpload(ctx context.Context, key, contentType string) (uploadURL, fileURL string, err error)
	PresignDownload(ctx context.Context, fileURL, fileName string) (string, error)
	DeleteObject(ctx context.Context, fileURL string) error
}

// RegisterConfig carries the shared dependencies handed to every manager.
type RegisterConfig struct {
	DB          *gorm.DB
	ObjectStore ObjectStore
	Alerter     alert.Interface
}

// Registers collects the manager constructors. Each handler file appends
// its own constructor in init().
var Registers []func(RegisterConfig) Manager
