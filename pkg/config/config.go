package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/finvia/reportd/pkg/observability"
	"github.com/finvia/reportd/pkg/reports"
	"github.com/finvia/reportd/pkg/storage"
)

// Snapshot backends for the authorization state
const (
	SnapshotBackendDB = "db"
	SnapshotBackendS3 = "s3"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	Storage       storage.Config
	S3            storage.S3Config
	Auth          AuthConfig
	Reports       ReportsConfig
	Audit         AuditConfig
	Observability ObservabilityConfig
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64

	// Health/metrics server (separate port for probes)
	HealthPort string
}

// AuthConfig holds authentication and persistence settings
type AuthConfig struct {
	// SnapshotEnabled persists users and permissions and restores them at
	// startup. Sessions are never persisted.
	SnapshotEnabled  bool
	SnapshotInterval time.Duration
	// SnapshotBackend selects where snapshots live: "db" or "s3"
	SnapshotBackend string
}

// ReportsConfig holds report cache settings
type ReportsConfig struct {
	CacheSize int
	CacheTTL  time.Duration
}

// AuditConfig holds audit trail settings
type AuditConfig struct {
	Enabled bool
}

// ObservabilityConfig holds logging, metrics, and tracing settings
type ObservabilityConfig struct {
	LogLevel       observability.LogLevel
	MetricsEnabled bool

	OTelEnabled        bool
	OTelEndpoint       string
	OTelServiceName    string
	OTelServiceVersion string
	OTelInsecure       bool
}

// LoadConfig builds the configuration in three layers: built-in defaults,
// then the YAML file named by REPORTD_CONFIG_FILE (if set), then REPORTD_*
// environment variables. Later layers win.
func LoadConfig() (*Config, error) {
	cfg := defaultConfig()

	if path := os.Getenv("REPORTD_CONFIG_FILE"); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}

	loadEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            "8080",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			MaxBodyBytes:    1 << 20,
			HealthPort:      "9090",
		},
		Storage: storage.Config{
			Driver:          storage.DriverSQLite,
			DSN:             "reportd.db",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			ConnMaxIdleTime: 5 * time.Minute,
			ConnectTimeout:  5 * time.Second,
		},
		S3: storage.S3Config{
			Region:      "us-east-1",
			SnapshotKey: storage.DefaultSnapshotKey,
		},
		Auth: AuthConfig{
			SnapshotEnabled:  true,
			SnapshotInterval: 5 * time.Minute,
			SnapshotBackend:  SnapshotBackendDB,
		},
		Reports: ReportsConfig{
			CacheSize: reports.DefaultCacheSize,
			CacheTTL:  reports.DefaultCacheTTL,
		},
		Audit: AuditConfig{Enabled: true},
		Observability: ObservabilityConfig{
			LogLevel:           observability.InfoLevel,
			MetricsEnabled:     true,
			OTelEndpoint:       "localhost:4317",
			OTelServiceName:    "reportd",
			OTelServiceVersion: "1.0.0",
			OTelInsecure:       true,
		},
	}
}

// fileConfig is the YAML schema. Durations are strings in Go duration
// syntax; pointer fields distinguish "absent" from zero values.
type fileConfig struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            string `yaml:"port"`
		HealthPort      string `yaml:"health_port"`
		ReadTimeout     string `yaml:"read_timeout"`
		WriteTimeout    string `yaml:"write_timeout"`
		IdleTimeout     string `yaml:"idle_timeout"`
		ShutdownTimeout string `yaml:"shutdown_timeout"`
		MaxBodyBytes    *int64 `yaml:"max_body_bytes"`
	} `yaml:"server"`
	Storage struct {
		Driver          string `yaml:"driver"`
		DSN             string `yaml:"dsn"`
		MaxOpenConns    *int   `yaml:"max_open_conns"`
		MaxIdleConns    *int   `yaml:"max_idle_conns"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		ConnMaxIdleTime string `yaml:"conn_max_idle_time"`
		ConnectTimeout  string `yaml:"connect_timeout"`
	} `yaml:"storage"`
	S3 struct {
		Endpoint     string `yaml:"endpoint"`
		Region       string `yaml:"region"`
		Bucket       string `yaml:"bucket"`
		AccessKey    string `yaml:"access_key"`
		SecretKey    string `yaml:"secret_key"`
		UsePathStyle *bool  `yaml:"use_path_style"`
		SnapshotKey  string `yaml:"snapshot_key"`
	} `yaml:"s3"`
	Auth struct {
		SnapshotEnabled  *bool  `yaml:"snapshot_enabled"`
		SnapshotInterval string `yaml:"snapshot_interval"`
		SnapshotBackend  string `yaml:"snapshot_backend"`
	} `yaml:"auth"`
	Reports struct {
		CacheSize *int   `yaml:"cache_size"`
		CacheTTL  string `yaml:"cache_ttl"`
	} `yaml:"reports"`
	Audit struct {
		Enabled *bool `yaml:"enabled"`
	} `yaml:"audit"`
	Observability struct {
		LogLevel           string `yaml:"log_level"`
		MetricsEnabled     *bool  `yaml:"metrics_enabled"`
		OTelEnabled        *bool  `yaml:"otel_enabled"`
		OTelEndpoint       string `yaml:"otel_endpoint"`
		OTelServiceName    string `yaml:"otel_service_name"`
		OTelServiceVersion string `yaml:"otel_service_version"`
		OTelInsecure       *bool  `yaml:"otel_insecure"`
	} `yaml:"observability"`
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	setString(&cfg.Server.Host, fc.Server.Host)
	setString(&cfg.Server.Port, fc.Server.Port)
	setString(&cfg.Server.HealthPort, fc.Server.HealthPort)
	if err := setDuration(&cfg.Server.ReadTimeout, fc.Server.ReadTimeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.Server.WriteTimeout, fc.Server.WriteTimeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.Server.IdleTimeout, fc.Server.IdleTimeout); err != nil {
		return err
	}
	if err := setDuration(&cfg.Server.ShutdownTimeout, fc.Server.ShutdownTimeout); err != nil {
		return err
	}
	if fc.Server.MaxBodyBytes != nil {
		cfg.Server.MaxBodyBytes = *fc.Server.MaxBodyBytes
	}

	setString(&cfg.Storage.Driver, fc.Storage.Driver)
	setString(&cfg.Storage.DSN, fc.Storage.DSN)
	if fc.Storage.MaxOpenConns != nil {
		cfg.Storage.MaxOpenConns = *fc.Storage.MaxOpenConns
	}
	if fc.Storage.MaxIdleConns != nil {
		cfg.Storage.MaxIdleConns = *fc.Storage.MaxIdleConns
	}
	if err := setDuration(&cfg.Storage.ConnMaxLifetime, fc.Storage.ConnMaxLifetime); err != nil {
		return err
	}
	if err := setDuration(&cfg.Storage.ConnMaxIdleTime, fc.Storage.ConnMaxIdleTime); err != nil {
		return err
	}
	if err := setDuration(&cfg.Storage.ConnectTimeout, fc.Storage.ConnectTimeout); err != nil {
		return err
	}

	setString(&cfg.S3.Endpoint, fc.S3.Endpoint)
	setString(&cfg.S3.Region, fc.S3.Region)
	setString(&cfg.S3.Bucket, fc.S3.Bucket)
	setString(&cfg.S3.AccessKey, fc.S3.AccessKey)
	setString(&cfg.S3.SecretKey, fc.S3.SecretKey)
	setString(&cfg.S3.SnapshotKey, fc.S3.SnapshotKey)
	if fc.S3.UsePathStyle != nil {
		cfg.S3.UsePathStyle = *fc.S3.UsePathStyle
	}

	if fc.Auth.SnapshotEnabled != nil {
		cfg.Auth.SnapshotEnabled = *fc.Auth.SnapshotEnabled
	}
	if err := setDuration(&cfg.Auth.SnapshotInterval, fc.Auth.SnapshotInterval); err != nil {
		return err
	}
	setString(&cfg.Auth.SnapshotBackend, fc.Auth.SnapshotBackend)

	if fc.Reports.CacheSize != nil {
		cfg.Reports.CacheSize = *fc.Reports.CacheSize
	}
	if err := setDuration(&cfg.Reports.CacheTTL, fc.Reports.CacheTTL); err != nil {
		return err
	}

	if fc.Audit.Enabled != nil {
		cfg.Audit.Enabled = *fc.Audit.Enabled
	}

	if fc.Observability.LogLevel != "" {
		cfg.Observability.LogLevel = observability.ParseLogLevel(fc.Observability.LogLevel)
	}
	if fc.Observability.MetricsEnabled != nil {
		cfg.Observability.MetricsEnabled = *fc.Observability.MetricsEnabled
	}
	if fc.Observability.OTelEnabled != nil {
		cfg.Observability.OTelEnabled = *fc.Observability.OTelEnabled
	}
	setString(&cfg.Observability.OTelEndpoint, fc.Observability.OTelEndpoint)
	setString(&cfg.Observability.OTelServiceName, fc.Observability.OTelServiceName)
	setString(&cfg.Observability.OTelServiceVersion, fc.Observability.OTelServiceVersion)
	if fc.Observability.OTelInsecure != nil {
		cfg.Observability.OTelInsecure = *fc.Observability.OTelInsecure
	}

	return nil
}

func loadEnv(cfg *Config) {
	cfg.Server.Host = getEnv("REPORTD_HOST", cfg.Server.Host)
	cfg.Server.Port = getEnv("REPORTD_PORT", cfg.Server.Port)
	cfg.Server.HealthPort = getEnv("REPORTD_HEALTH_PORT", cfg.Server.HealthPort)
	cfg.Server.ReadTimeout = getEnvDuration("REPORTD_READ_TIMEOUT", cfg.Server.ReadTimeout)
	cfg.Server.WriteTimeout = getEnvDuration("REPORTD_WRITE_TIMEOUT", cfg.Server.WriteTimeout)
	cfg.Server.IdleTimeout = getEnvDuration("REPORTD_IDLE_TIMEOUT", cfg.Server.IdleTimeout)
	cfg.Server.ShutdownTimeout = getEnvDuration("REPORTD_SHUTDOWN_TIMEOUT", cfg.Server.ShutdownTimeout)
	cfg.Server.MaxBodyBytes = getEnvInt64("REPORTD_MAX_BODY_BYTES", cfg.Server.MaxBodyBytes)

	cfg.Storage.Driver = getEnv("REPORTD_DB_DRIVER", cfg.Storage.Driver)
	cfg.Storage.DSN = getEnv("REPORTD_DB_DSN", cfg.Storage.DSN)
	cfg.Storage.MaxOpenConns = getEnvInt("REPORTD_DB_MAX_OPEN_CONNS", cfg.Storage.MaxOpenConns)
	cfg.Storage.MaxIdleConns = getEnvInt("REPORTD_DB_MAX_IDLE_CONNS", cfg.Storage.MaxIdleConns)
	cfg.Storage.ConnMaxLifetime = getEnvDuration("REPORTD_DB_CONN_MAX_LIFETIME", cfg.Storage.ConnMaxLifetime)
	cfg.Storage.ConnMaxIdleTime = getEnvDuration("REPORTD_DB_CONN_MAX_IDLE_TIME", cfg.Storage.ConnMaxIdleTime)
	cfg.Storage.ConnectTimeout = getEnvDuration("REPORTD_DB_CONNECT_TIMEOUT", cfg.Storage.ConnectTimeout)

	cfg.S3.Endpoint = getEnv("REPORTD_S3_ENDPOINT", cfg.S3.Endpoint)
	cfg.S3.Region = getEnv("REPORTD_S3_REGION", cfg.S3.Region)
	cfg.S3.Bucket = getEnv("REPORTD_S3_BUCKET", cfg.S3.Bucket)
	cfg.S3.AccessKey = getEnv("REPORTD_S3_ACCESS_KEY", cfg.S3.AccessKey)
	cfg.S3.SecretKey = getEnv("REPORTD_S3_SECRET_KEY", cfg.S3.SecretKey)
	cfg.S3.UsePathStyle = getEnvBool("REPORTD_S3_USE_PATH_STYLE", cfg.S3.UsePathStyle)
	cfg.S3.SnapshotKey = getEnv("REPORTD_S3_SNAPSHOT_KEY", cfg.S3.SnapshotKey)

	cfg.Auth.SnapshotEnabled = getEnvBool("REPORTD_SNAPSHOT_ENABLED", cfg.Auth.SnapshotEnabled)
	cfg.Auth.SnapshotInterval = getEnvDuration("REPORTD_SNAPSHOT_INTERVAL", cfg.Auth.SnapshotInterval)
	cfg.Auth.SnapshotBackend = getEnv("REPORTD_SNAPSHOT_BACKEND", cfg.Auth.SnapshotBackend)

	cfg.Reports.CacheSize = getEnvInt("REPORTD_REPORT_CACHE_SIZE", cfg.Reports.CacheSize)
	cfg.Reports.CacheTTL = getEnvDuration("REPORTD_REPORT_CACHE_TTL", cfg.Reports.CacheTTL)

	cfg.Audit.Enabled = getEnvBool("REPORTD_AUDIT_ENABLED", cfg.Audit.Enabled)

	if v := os.Getenv("REPORTD_LOG_LEVEL"); v != "" {
		cfg.Observability.LogLevel = observability.ParseLogLevel(v)
	}
	cfg.Observability.MetricsEnabled = getEnvBool("REPORTD_METRICS_ENABLED", cfg.Observability.MetricsEnabled)
	cfg.Observability.OTelEnabled = getEnvBool("REPORTD_OTEL_ENABLED", cfg.Observability.OTelEnabled)
	cfg.Observability.OTelEndpoint = getEnv("REPORTD_OTEL_ENDPOINT", cfg.Observability.OTelEndpoint)
	cfg.Observability.OTelServiceName = getEnv("REPORTD_OTEL_SERVICE_NAME", cfg.Observability.OTelServiceName)
	cfg.Observability.OTelServiceVersion = getEnv("REPORTD_OTEL_SERVICE_VERSION", cfg.Observability.OTelServiceVersion)
	cfg.Observability.OTelInsecure = getEnvBool("REPORTD_OTEL_INSECURE", cfg.Observability.OTelInsecure)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.HealthPort == "" {
		return fmt.Errorf("health port is required")
	}
	if c.Server.Port == c.Server.HealthPort {
		return fmt.Errorf("server port and health port must be different")
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	if c.Auth.SnapshotEnabled && c.Auth.SnapshotInterval <= 0 {
		return fmt.Errorf("snapshot interval must be positive when snapshots are enabled")
	}
	switch c.Auth.SnapshotBackend {
	case "", SnapshotBackendDB:
	case SnapshotBackendS3:
		if c.Auth.SnapshotEnabled {
			if err := c.S3.Validate(); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("unknown snapshot backend %q", c.Auth.SnapshotBackend)
	}

	if c.Observability.OTelEnabled {
		if c.Observability.OTelEndpoint == "" {
			return fmt.Errorf("OpenTelemetry endpoint is required when OTel is enabled")
		}
		if c.Observability.OTelServiceName == "" {
			return fmt.Errorf("OpenTelemetry service name is required when OTel is enabled")
		}
	}

	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, v string) error {
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", v, err)
	}
	*dst = d
	return nil
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvInt returns an integer environment variable or a default
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvInt64 returns an int64 environment variable or a default
func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
