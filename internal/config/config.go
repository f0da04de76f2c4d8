package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	// DebugModeEnv is the environment variable for debug mode.
	DebugModeEnv = "DEBUG_MODE"

	// CatalogAPIURLEnv is the environment variable for the remote catalog base URL.
	CatalogAPIURLEnv = "CATALOG_API_URL"

	// RemoteTimeoutEnv is the environment variable for the per-call remote timeout (Go duration).
	RemoteTimeoutEnv = "REMOTE_TIMEOUT"

	// AuthUsernameEnv is the environment variable for the console username.
	AuthUsernameEnv = "AUTH_USERNAME"

	// AuthPasswordEnv is the environment variable for the console password in plain text.
	AuthPasswordEnv = "AUTH_PASSWORD"

	// AuthPasswordHashEnv is the environment variable for the bcrypt hash of the console password.
	AuthPasswordHashEnv = "AUTH_PASSWORD_HASH"

	// DBHostEnv is the environment variable for database host.
	DBHostEnv = "DB_HOST"

	// DBPortEnv is the environment variable for database port.
	DBPortEnv = "DB_PORT"

	// DBUserEnv is the environment variable for database user.
	DBUserEnv = "DB_USER"

	// DBPassEnv is the environment variable for database password.
	DBPassEnv = "DB_PASS"

	// DBNameEnv is the environment variable for database name.
	DBNameEnv = "DB_NAME"

	// HTTPServerPortEnv is the environment variable for HTTP server port.
	HTTPServerPortEnv = "HTTP_SERVER_PORT"

	// MetricsServerPortEnv is the environment variable for metrics server port.
	MetricsServerPortEnv = "METRICS_SERVER_PORT"

	// EnvFilePath is the environment variable for .env file path (only for local/test environment).
	EnvFilePath = "ENV_PATH"

	// DefaultEnvFilePath is the default path to the .env file.
	DefaultEnvFilePath = ".env"

	// AWSRegionEnv is the environment variable for AWS region.
	AWSRegionEnv = "AWS_REGION"

	// AWSEndpointEnv is the environment variable for AWS endpoint.
	AWSEndpointEnv = "AWS_ENDPOINT"

	// SQSQueueURLEnv is the environment variable for SQS queue URL.
	SQSQueueURLEnv = "SQS_QUEUE_URL"

	// OTLPEndpointEnv is the environment variable for the OTLP gRPC collector endpoint.
	OTLPEndpointEnv = "OTLP_ENDPOINT"

	// ServiceNameEnv is the environment variable for the service name reported to telemetry.
	ServiceNameEnv = "SERVICE_NAME"

	// OutboxIntervalEnv is the environment variable for the journal outbox polling interval.
	OutboxIntervalEnv = "OUTBOX_INTERVAL"
)

const (
	// DefaultCatalogAPIURL is the public catalog the console talks to when nothing else is configured.
	DefaultCatalogAPIURL = "https://fakestoreapi.com"

	// DefaultRemoteTimeout bounds every remote catalog call.
	DefaultRemoteTimeout = 10 * time.Second

	// DefaultUsername is the console username when AUTH_USERNAME is unset.
	DefaultUsername = "DemoUser"

	// DefaultPassword is the console password when neither AUTH_PASSWORD nor AUTH_PASSWORD_HASH is set.
	DefaultPassword = "Demo@123"

	// DefaultServiceName is reported to telemetry when SERVICE_NAME is unset.
	DefaultServiceName = "inventory-console"

	// DefaultOutboxInterval is the journal outbox polling interval.
	DefaultOutboxInterval = 2 * time.Second
)

var (
	// ErrMissingConfig is returned when required configuration values are missing.
	ErrMissingConfig = errors.New("missing config data")
)

// Config represents the application configuration.
type Config struct {
	DebugMode     bool
	Catalog       CatalogAPI
	Auth          Auth
	Database      DB
	HTTPServer    Server
	MetricsServer Server
	AWS           AWSConfig
	Telemetry     Telemetry
}

// CatalogAPI represents the remote catalog settings.
type CatalogAPI struct {
	BaseURL string
	Timeout time.Duration
}

// Auth represents the single configured credential pair.
type Auth struct {
	Username     string
	Password     string
	PasswordHash string
}

// AWSConfig represents AWS-specific configuration settings.
type AWSConfig struct {
	Region      string
	Endpoint    string
	SQSQueueURL string
}

// QueueEnabled reports whether mutation outcomes are published to SQS.
func (a AWSConfig) QueueEnabled() bool {
	return a.SQSQueueURL != ""
}

// DB represents database configuration settings.
type DB struct {
	Host           string
	User           string
	Password       string
	Name           string
	Port           string
	OutboxInterval time.Duration
}

// Enabled reports whether the mutation journal database is configured.
func (d DB) Enabled() bool {
	return d.Host != ""
}

// Server represents server configuration settings.
type Server struct {
	Port string
}

// Telemetry represents tracing settings. An empty endpoint disables export.
type Telemetry struct {
	Endpoint    string
	ServiceName string
}

func allNonEmpty(keyValues map[string]string) error {
	for key, value := range keyValues {
		if value == "" {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("error", "value is empty"))
			return fmt.Errorf("%w for key: %s", ErrMissingConfig, key)
		}
	}
	return nil
}

func allNumbers(keyValues map[string]string) error {
	for key, value := range keyValues {
		_, err := strconv.Atoi(value)
		if err != nil {
			slog.Error("configuration validation failed", slog.String("key", key), slog.String("value", value), slog.String("error", err.Error()))
			return fmt.Errorf("invalid number for key %s: %w", key, err)
		}
	}
	return nil
}

func (c *Config) validate() error {
	if err := allNonEmpty(map[string]string{
		CatalogAPIURLEnv: c.Catalog.BaseURL,
		AuthUsernameEnv:  c.Auth.Username,
	}); err != nil {
		return fmt.Errorf("catalog configuration incomplete: %w", err)
	}

	if err := allNonEmpty(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("server port configuration incomplete: %w", err)
	}

	if err := allNumbers(map[string]string{
		HTTPServerPortEnv:    c.HTTPServer.Port,
		MetricsServerPortEnv: c.MetricsServer.Port,
	}); err != nil {
		return fmt.Errorf("invalid port number: %w", err)
	}

	// The journal is optional, but a half-configured one is a mistake.
	if c.Database.Enabled() {
		if err := allNonEmpty(map[string]string{
			DBUserEnv: c.Database.User,
			DBNameEnv: c.Database.Name,
		}); err != nil {
			return fmt.Errorf("database configuration incomplete: %w", err)
		}
		if err := allNumbers(map[string]string{
			DBPortEnv: c.Database.Port,
		}); err != nil {
			return fmt.Errorf("invalid port number: %w", err)
		}
	}

	if c.Catalog.Timeout <= 0 {
		return fmt.Errorf("%w for key: %s", ErrMissingConfig, RemoteTimeoutEnv)
	}

	return nil
}

// ValidateQueue checks the settings a queue consumer cannot run without.
func (c *Config) ValidateQueue() error {
	if err := allNonEmpty(map[string]string{
		SQSQueueURLEnv: c.AWS.SQSQueueURL,
		AWSRegionEnv:   c.AWS.Region,
	}); err != nil {
		return fmt.Errorf("AWS configuration incomplete: %w", err)
	}
	return nil
}

func getEnvAsBool(name string, defaultValue bool) bool {
	if val, err := strconv.ParseBool(os.Getenv(name)); err == nil {
		return val
	}
	return defaultValue
}

func getEnvAsDuration(name string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(name)
	if raw == "" {
		return defaultValue
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("invalid duration, using default", slog.String("key", name), slog.String("value", raw), slog.Duration("default", defaultValue))
		return defaultValue
	}
	return val
}

func getEnv(name, defaultValue string) string {
	if val := os.Getenv(name); val != "" {
		return val
	}
	return defaultValue
}

// ApplyEnvFile loads environment variables from the specified .env files.
func ApplyEnvFile(files ...string) error {
	err := godotenv.Load(files...)
	if err != nil {
		return fmt.Errorf("failed to load env file: %w", err)
	}
	return nil
}

// LoadFromEnv loads configuration from environment variables and validates it.
func LoadFromEnv() (*Config, error) {
	envPath := os.Getenv(EnvFilePath)
	if envPath == "" {
		envPath = DefaultEnvFilePath
	}
	err := ApplyEnvFile(envPath)
	if err != nil {
		// just log the error, maybe all envs are set in another way
		slog.Info("failed to load from .env", slog.Any("err", err))
	}

	password := os.Getenv(AuthPasswordEnv)
	passwordHash := os.Getenv(AuthPasswordHashEnv)
	if password == "" && passwordHash == "" {
		password = DefaultPassword
	}

	conf := &Config{
		DebugMode: getEnvAsBool(DebugModeEnv, false),
		Catalog: CatalogAPI{
			BaseURL: getEnv(CatalogAPIURLEnv, DefaultCatalogAPIURL),
			Timeout: getEnvAsDuration(RemoteTimeoutEnv, DefaultRemoteTimeout),
		},
		Auth: Auth{
			Username:     getEnv(AuthUsernameEnv, DefaultUsername),
			Password:     password,
			PasswordHash: passwordHash,
		},
		Database: DB{
			Host:           os.Getenv(DBHostEnv),
			User:           os.Getenv(DBUserEnv),
			Password:       os.Getenv(DBPassEnv),
			Name:           os.Getenv(DBNameEnv),
			Port:           getEnv(DBPortEnv, "5432"),
			OutboxInterval: getEnvAsDuration(OutboxIntervalEnv, DefaultOutboxInterval),
		},
		HTTPServer: Server{
			Port: getEnv(HTTPServerPortEnv, "8080"),
		},
		MetricsServer: Server{
			Port: getEnv(MetricsServerPortEnv, "9090"),
		},
		AWS: AWSConfig{
			Region:      os.Getenv(AWSRegionEnv),
			Endpoint:    os.Getenv(AWSEndpointEnv),
			SQSQueueURL: os.Getenv(SQSQueueURLEnv),
		},
		Telemetry: Telemetry{
			Endpoint:    os.Getenv(OTLPEndpointEnv),
			ServiceName: getEnv(ServiceNameEnv, DefaultServiceName),
		},
	}

	if err := conf.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return conf, nil
}
