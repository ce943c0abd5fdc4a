package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Source     SourceConfig
	Sandbox    SandboxConfig
	Toolchain  ToolchainConfig
	Package    PackageConfig
	Kubernetes KubernetesConfig
	Logger     LoggerConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Name            string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

type SourceConfig struct {
	BaseURL string
	Retries int
	Timeout time.Duration
}

type SandboxConfig struct {
	Root         string
	DownloadDir  string
	ResourcesDir string
	BuildOutput  string
}

type ToolchainConfig struct {
	GN       string
	Ninja    string
	Jobs     int
	CC       string
	CXX      string
	AR       string
	NM       string
	TmpDir   string
	ShimPath string
	Python   string
}

type PackageConfig struct {
	Name      string
	MenuName  string
	Release   int
	DestDir   string
	SystemICU bool
}

type KubernetesConfig struct {
	Enabled        bool
	InCluster      bool
	KubeConfigPath string
	Namespace      string
	BuilderImage   string
}

type LoggerConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "builds")
	v.SetDefault("DB_PASSWORD", "builds")
	v.SetDefault("DB_NAME", "builds")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "30m")
	v.SetDefault("SOURCE_BASE_URL", "https://commondatastorage.googleapis.com/chromium-browser-official")
	v.SetDefault("SOURCE_RETRIES", 4)
	v.SetDefault("SOURCE_TIMEOUT", "30m")
	v.SetDefault("SANDBOX_ROOT", "build_sandbox")
	v.SetDefault("SANDBOX_DOWNLOAD_DIR", "downloads")
	v.SetDefault("SANDBOX_RESOURCES_DIR", "resources")
	v.SetDefault("SANDBOX_BUILD_OUTPUT", "out/Release")
	v.SetDefault("TOOLCHAIN_GN", "gn")
	v.SetDefault("TOOLCHAIN_NINJA", "ninja")
	v.SetDefault("TOOLCHAIN_JOBS", 0)
	v.SetDefault("TOOLCHAIN_PYTHON", "/usr/bin/python3")
	v.SetDefault("PACKAGE_NAME", "ungoogled-chromium")
	v.SetDefault("PACKAGE_MENU_NAME", "Chromium")
	v.SetDefault("PACKAGE_RELEASE", 1)
	v.SetDefault("PACKAGE_DESTDIR", "pkg")
	v.SetDefault("PACKAGE_SYSTEM_ICU", false)
	v.SetDefault("KUBE_ENABLED", false)
	v.SetDefault("KUBE_IN_CLUSTER", false)
	v.SetDefault("KUBE_NAMESPACE", "browser-builds")
	v.SetDefault("KUBE_BUILDER_IMAGE", "")
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")

	// Env
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Name:            v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxOpenConns:    v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: parseDuration(v, "DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Source: SourceConfig{
			BaseURL: v.GetString("SOURCE_BASE_URL"),
			Retries: v.GetInt("SOURCE_RETRIES"),
			Timeout: parseDuration(v, "SOURCE_TIMEOUT", 30*time.Minute),
		},
		Sandbox: SandboxConfig{
			Root:         v.GetString("SANDBOX_ROOT"),
			DownloadDir:  v.GetString("SANDBOX_DOWNLOAD_DIR"),
			ResourcesDir: v.GetString("SANDBOX_RESOURCES_DIR"),
			BuildOutput:  v.GetString("SANDBOX_BUILD_OUTPUT"),
		},
		Toolchain: ToolchainConfig{
			GN:       v.GetString("TOOLCHAIN_GN"),
			Ninja:    v.GetString("TOOLCHAIN_NINJA"),
			Jobs:     v.GetInt("TOOLCHAIN_JOBS"),
			CC:       v.GetString("CC"),
			CXX:      v.GetString("CXX"),
			AR:       v.GetString("AR"),
			NM:       v.GetString("NM"),
			TmpDir:   v.GetString("TMPDIR"),
			ShimPath: v.GetString("TOOLCHAIN_SHIM_PATH"),
			Python:   v.GetString("TOOLCHAIN_PYTHON"),
		},
		Package: PackageConfig{
			Name:      v.GetString("PACKAGE_NAME"),
			MenuName:  v.GetString("PACKAGE_MENU_NAME"),
			Release:   v.GetInt("PACKAGE_RELEASE"),
			DestDir:   v.GetString("PACKAGE_DESTDIR"),
			SystemICU: v.GetBool("PACKAGE_SYSTEM_ICU"),
		},
		Kubernetes: KubernetesConfig{
			Enabled:        v.GetBool("KUBE_ENABLED"),
			InCluster:      v.GetBool("KUBE_IN_CLUSTER"),
			KubeConfigPath: v.GetString("KUBE_CONFIG_PATH"),
			Namespace:      v.GetString("KUBE_NAMESPACE"),
			BuilderImage:   v.GetString("KUBE_BUILDER_IMAGE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
		},
	}

	return cfg, nil
}

func parseDuration(v *viper.Viper, key string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(v.GetString(key))
	if err != nil {
		return fallback
	}
	return d
}
