package config

import (
	"os"
	"sync"

	"github.com/gin-gonic/gin"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

type Config struct {
	// Port Settings
	Host        string `yaml:"host"`        // The domain name of the server.
	ServerAddr  string `yaml:"serverAddr"`  // The address the server endpoint binds to.
	MetricsAddr string `yaml:"metricsAddr"` // The address the metrics endpoint binds to.

	Auth struct {
		AccessTokenSecret      string `yaml:"accessTokenSecret"`
		RefreshTokenSecret     string `yaml:"refreshTokenSecret"`
		AccessTokenExpiryHour  int    `yaml:"accessTokenExpiryHour"`
		RefreshTokenExpiryHour int    `yaml:"refreshTokenExpiryHour"`
	} `yaml:"auth"`

	Postgres struct {
		Host     string `yaml:"host"`
		Port     string `yaml:"port"`
		DBName   string `yaml:"dbname"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		SSLMode  string `yaml:"sslmode"`
		TimeZone string `yaml:"TimeZone"`
	} `yaml:"postgres"`

	// ObjectStore is the S3-compatible store that holds issue and
	// discussion attachments.
	ObjectStore struct {
		Endpoint       string `yaml:"endpoint"`       // Internal endpoint the server talks to.
		PublicEndpoint string `yaml:"publicEndpoint"` // Endpoint presigned URLs are rewritten to.
		Region         string `yaml:"region"`
		Bucket         string `yaml:"bucket"`
		AccessKey      string `yaml:"accessKey"`
		SecretKey      string `yaml:"secretKey"`
	} `yaml:"objectStore"`

	SMTP struct {
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		User     string `yaml:"user"`
		Password string `yaml:"password"`
		From     string `yaml:"from"`
	} `yaml:"smtp"`

	// Optional LDAP directory login. When disabled only password login
	// is offered.
	LDAP struct {
		Enable   bool   `yaml:"enable"`
		UserName string `yaml:"userName"`
		Password string `yaml:"password"`
		Address  string `yaml:"address"`
		SearchDN string `yaml:"searchDN"`
	} `yaml:"ldap"`
}

var (
	once   sync.Once
	config *Config
)

func GetConfig() *Config {
	once.Do(func() {
		config = initConfig()
	})
	return config
}

func IsDebugMode() bool {
	return gin.Mode() == gin.DebugMode
}

// initConfig reads the configuration file. In debug mode the path can be
// overridden with UPROJECT_DEBUG_CONFIG_PATH; in production the file is
// mounted at /etc/config/config.yaml.
func initConfig() *Config {
	config := &Config{}
	var configPath string
	if IsDebugMode() {
		if os.Getenv("UPROJECT_DEBUG_CONFIG_PATH") != "" {
			configPath = os.Getenv("UPROJECT_DEBUG_CONFIG_PATH")
		} else {
			configPath = "./etc/debug-config.yaml"
		}
	} else {
		configPath = "/etc/config/config.yaml"
	}
	klog.Info("config path: ", configPath)

	err := readConfig(configPath, config)
	if err != nil {
		klog.Error("init config", err)
		panic(err)
	}
	return config
}

func readConfig(filePath string, config *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	err = yaml.Unmarshal(data, config)
	if err != nil {
		return err
	}
	return nil
}
