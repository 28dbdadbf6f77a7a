package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"ppm/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	API     APIConfig
	Session SessionConfig
	DB      DBConfig
	S3      S3Config
	Log     LogConfig
	CORS    CORSConfig
	Email   EmailConfig
	Preview PreviewConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// APIConfig holds settings for the remote analysis service.
type APIConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	Timeout           time.Duration `mapstructure:"timeout"`
	FolderConcurrency int           `mapstructure:"folder_concurrency"`
	PublicAnalysis    string        `mapstructure:"public_analysis"`
}

// SessionConfig holds browser-session settings.
type SessionConfig struct {
	Secret     string `mapstructure:"secret"`
	Issuer     string `mapstructure:"issuer"`
	CookieName string `mapstructure:"cookie_name"`
	Store      string `mapstructure:"store"`
	FilePath   string `mapstructure:"file_path"`
	Secure     bool   `mapstructure:"secure"`
}

// UsesPostgres reports whether session state is persisted in PostgreSQL.
func (s *SessionConfig) UsesPostgres() bool {
	return strings.EqualFold(s.Store, "postgres")
}

// DBConfig holds PostgreSQL connection settings.
type DBConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// S3Config holds AWS S3 settings for selected-file previews.
// An empty Bucket disables object storage; previews are then kept inline.
type S3Config struct {
	Region        string `mapstructure:"region"`
	Bucket        string `mapstructure:"bucket"`
	Endpoint      string `mapstructure:"endpoint"`
	AccessKey     string `mapstructure:"access_key"`
	SecretKey     string `mapstructure:"secret_key"`
	PresignExpiry int64  `mapstructure:"presign_expiry"`
}

// Enabled reports whether preview object storage is configured.
func (s *S3Config) Enabled() bool {
	return s.Bucket != ""
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// EmailConfig holds report sharing settings.
type EmailConfig struct {
	Provider    string `mapstructure:"provider"`
	Region      string `mapstructure:"region"`
	FromAddress string `mapstructure:"from_address"`
	FromName    string `mapstructure:"from_name"`
}

// PreviewConfig bounds the selected files accepted by the upload page.
type PreviewConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
	MaxInlineKB   int64 `mapstructure:"max_inline_kb"`
}

// MaxFileBytes returns the per-file upload limit in bytes.
func (p *PreviewConfig) MaxFileBytes() int64 {
	return p.MaxFileSizeMB * 1024 * 1024
}

// MaxInlineBytes returns the largest preview kept inline as a data URL.
func (p *PreviewConfig) MaxInlineBytes() int64 {
	return p.MaxInlineKB * 1024
}

// Load reads configuration from environment variables with the PPM_ prefix.
// A .env file in the working directory is loaded first when present.
func Load() (*Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix("PPM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "5m")
	v.SetDefault("server.environment", "development")

	// Analysis API defaults
	v.SetDefault("api.base_url", "http://localhost:8000")
	v.SetDefault("api.timeout", "0s")
	v.SetDefault("api.folder_concurrency", 8)
	v.SetDefault("api.public_analysis", "")

	// Session defaults
	v.SetDefault("session.secret", "change-me-in-production")
	v.SetDefault("session.issuer", "ppm")
	v.SetDefault("session.cookie_name", "ppm_session")
	v.SetDefault("session.store", "memory")
	v.SetDefault("session.file_path", "")
	v.SetDefault("session.secure", false)

	// DB defaults
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "ppm")
	v.SetDefault("db.password", "ppm_secret")
	v.SetDefault("db.name", "ppm_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 10)
	v.SetDefault("db.max_idle", 5)

	// S3 defaults
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.presign_expiry", 3600)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000")

	// Email defaults
	v.SetDefault("email.provider", "noop")
	v.SetDefault("email.region", "us-east-1")
	v.SetDefault("email.from_address", "noreply@ppm.local")
	v.SetDefault("email.from_name", "PPM")

	// Preview defaults
	v.SetDefault("preview.max_file_size_mb", 50)
	v.SetDefault("preview.max_inline_kb", 4096)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":              "PPM_SERVER_PORT",
		"server.read_timeout":      "PPM_SERVER_READ_TIMEOUT",
		"server.write_timeout":     "PPM_SERVER_WRITE_TIMEOUT",
		"server.environment":       "PPM_SERVER_ENVIRONMENT",
		"api.base_url":             "PPM_API_BASE_URL",
		"api.timeout":              "PPM_API_TIMEOUT",
		"api.folder_concurrency":   "PPM_API_FOLDER_CONCURRENCY",
		"api.public_analysis":      "PPM_API_PUBLIC_ANALYSIS",
		"session.secret":           "PPM_SESSION_SECRET",
		"session.issuer":           "PPM_SESSION_ISSUER",
		"session.cookie_name":      "PPM_SESSION_COOKIE_NAME",
		"session.store":            "PPM_SESSION_STORE",
		"session.file_path":        "PPM_SESSION_FILE_PATH",
		"session.secure":           "PPM_SESSION_SECURE",
		"db.host":                  "PPM_DB_HOST",
		"db.port":                  "PPM_DB_PORT",
		"db.user":                  "PPM_DB_USER",
		"db.password":              "PPM_DB_PASSWORD",
		"db.name":                  "PPM_DB_NAME",
		"db.sslmode":               "PPM_DB_SSLMODE",
		"db.max_open":              "PPM_DB_MAX_OPEN",
		"db.max_idle":              "PPM_DB_MAX_IDLE",
		"s3.region":                "PPM_S3_REGION",
		"s3.bucket":                "PPM_S3_BUCKET",
		"s3.endpoint":              "PPM_S3_ENDPOINT",
		"s3.access_key":            "PPM_S3_ACCESS_KEY",
		"s3.secret_key":            "PPM_S3_SECRET_KEY",
		"s3.presign_expiry":        "PPM_S3_PRESIGN_EXPIRY",
		"log.level":                "PPM_LOG_LEVEL",
		"log.format":               "PPM_LOG_FORMAT",
		"cors.allowed_origins":     "PPM_CORS_ALLOWED_ORIGINS",
		"email.provider":           "PPM_EMAIL_PROVIDER",
		"email.region":             "PPM_EMAIL_REGION",
		"email.from_address":       "PPM_EMAIL_FROM_ADDRESS",
		"email.from_name":          "PPM_EMAIL_FROM_NAME",
		"preview.max_file_size_mb": "PPM_PREVIEW_MAX_FILE_SIZE_MB",
		"preview.max_inline_kb":    "PPM_PREVIEW_MAX_INLINE_KB",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Hosting platforms set PORT. Use it if PPM_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("PPM_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.API = APIConfig{
		BaseURL:           strings.TrimRight(v.GetString("api.base_url"), "/"),
		Timeout:           v.GetDuration("api.timeout"),
		FolderConcurrency: v.GetInt("api.folder_concurrency"),
		PublicAnalysis:    v.GetString("api.public_analysis"),
	}
	if cfg.API.FolderConcurrency <= 0 {
		cfg.API.FolderConcurrency = 1
	}
	if cfg.API.PublicAnalysis != "" {
		if err := domain.CheckPublicLocation(cfg.API.PublicAnalysis); err != nil {
			return nil, fmt.Errorf("PPM_API_PUBLIC_ANALYSIS: %w", err)
		}
	}
	cfg.Session = SessionConfig{
		Secret:     v.GetString("session.secret"),
		Issuer:     v.GetString("session.issuer"),
		CookieName: v.GetString("session.cookie_name"),
		Store:      v.GetString("session.store"),
		FilePath:   v.GetString("session.file_path"),
		Secure:     v.GetBool("session.secure"),
	}
	cfg.DB = DBConfig{
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.S3 = S3Config{
		Region:        v.GetString("s3.region"),
		Bucket:        v.GetString("s3.bucket"),
		Endpoint:      v.GetString("s3.endpoint"),
		AccessKey:     v.GetString("s3.access_key"),
		SecretKey:     v.GetString("s3.secret_key"),
		PresignExpiry: v.GetInt64("s3.presign_expiry"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}
	cfg.Email = EmailConfig{
		Provider:    v.GetString("email.provider"),
		Region:      v.GetString("email.region"),
		FromAddress: v.GetString("email.from_address"),
		FromName:    v.GetString("email.from_name"),
	}
	cfg.Preview = PreviewConfig{
		MaxFileSizeMB: v.GetInt64("preview.max_file_size_mb"),
		MaxInlineKB:   v.GetInt64("preview.max_inline_kb"),
	}

	return cfg, nil
}
