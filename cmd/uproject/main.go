package main

import (
	"k8s.io/klog/v2"

	"github.com/ucentricid/uproject-management/cmd/uproject/helper"
)

// @title						UProject API
// @version						1.0.0
// @description					This is the API server for UProject, a multi-tenant project and issue tracking platform.
// @securityDefinitions.apikey	Bearer
// @in							header
// @name						Authorization
// @description					Log in via /v1/auth/login and pass 'Bearer ${TOKEN}' to access protected endpoints
func main() {
	configInit := helper.NewConfigInitializer()
	backendConfig := configInit.GetBackendConfig()

	if err := configInit.LoadDebugEnvironment(); err != nil {
		klog.Fatalf("Failed to load env: %s", err)
	}

	registerConfig, err := configInit.InitializeRegisterConfig()
	if err != nil {
		klog.Fatalf("Failed to build register config: %s", err)
	}

	serverRunner := helper.NewServerRunner(backendConfig)
	serverRunner.StartMetrics()
	serverRunner.StartServer(registerConfig)
}
