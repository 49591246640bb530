package helper

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/ucentricid/uproject-management/dao/migrate"
	"github.com/ucentricid/uproject-management/dao/query"
	"github.com/ucentricid/uproject-management/internal/handler"
	"github.com/ucentricid/uproject-management/pkg/alert"
	"github.com/ucentricid/uproject-management/pkg/config"
	"github.com/ucentricid/uproject-management/pkg/objectstore"
)

// ConfigInitializer wires configuration into runtime dependencies.
type ConfigInitializer struct {
	backendConfig *config.Config
}

func NewConfigInitializer() *ConfigInitializer {
	return &ConfigInitializer{
		backendConfig: config.GetConfig(),
	}
}

func (ci *ConfigInitializer) GetBackendConfig() *config.Config {
	return ci.backendConfig
}

// LoadDebugEnvironment reads .debug.env in debug mode so a local run can
// pick its ports without touching the config file.
func (ci *ConfigInitializer) LoadDebugEnvironment() error {
	if gin.Mode() != gin.DebugMode {
		return nil
	}

	if err := godotenv.Load(".debug.env"); err != nil {
		return err
	}

	be := os.Getenv("UPROJECT_BE_PORT")
	if be == "" {
		panic("UPROJECT_BE_PORT is not set")
	}
	ms := os.Getenv("UPROJECT_MS_PORT")
	if ms == "" {
		panic("UPROJECT_MS_PORT is not set")
	}

	ci.backendConfig.ServerAddr = ":" + be
	ci.backendConfig.MetricsAddr = ":" + ms

	return nil
}

// InitializeRegisterConfig opens the database, applies migrations and
// builds the shared handler dependencies.
func (ci *ConfigInitializer) InitializeRegisterConfig() (*handler.RegisterConfig, error) {
	registerConfig := &handler.RegisterConfig{}

	db := query.GetDB()
	if err := migrate.Migrate(db); err != nil {
		return nil, err
	}
	registerConfig.DB = db

	if ci.backendConfig.ObjectStore.Endpoint != "" {
		store, err := objectstore.New(context.Background())
		if err != nil {
			return nil, err
		}
		registerConfig.ObjectStore = store
	}

	registerConfig.Alerter = alert.NewMgr()

	return registerConfig, nil
}
