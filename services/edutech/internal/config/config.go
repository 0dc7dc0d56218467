package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"edutechai/pkg/ai"
	"edutechai/pkg/auth"
	"edutechai/pkg/session"
)

// ConfigPath is the default YAML location; EDUTECH_CONFIG overrides it.
const ConfigPath = "config.yaml"

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port     string `yaml:"port"`
	LogLevel string `yaml:"logLevel"`

	DatabaseURL  string `yaml:"databaseURL"`
	DatabaseName string `yaml:"databaseName"`

	GenerationProvider string `yaml:"generationProvider"`
	GenerationModel    string `yaml:"generationModel"`
	GenerationBaseURL  string `yaml:"generationBaseURL"`
	GenerationAPIKey   string `yaml:"generationAPIKey"`
	GoogleAPIKey       string `yaml:"googleAPIKey"`

	StorageBackend string `yaml:"storageBackend"`
	StorageDir     string `yaml:"storageDir"`
	MinioEndpoint  string `yaml:"minioEndpoint"`
	MinioAccessKey string `yaml:"minioAccessKey"`
	MinioSecretKey string `yaml:"minioSecretKey"`
	MinioBucket    string `yaml:"minioBucket"`
	MinioUseSSL    bool   `yaml:"minioUseSSL"`
	MaxUploadBytes int64  `yaml:"maxUploadBytes"`

	CORSOrigins       []string `yaml:"corsOrigins"`
	TrustedProxyCIDRs []string `yaml:"trustedProxyCidrs"`

	RedisAddr     string `yaml:"redisAddr"`
	RedisPassword string `yaml:"redisPassword"`

	SessionMode    string `yaml:"sessionMode"`
	SessionTTL     string `yaml:"sessionTTL"`
	JWTSecret      string `yaml:"jwtSecret"`
	PasswordScheme string `yaml:"passwordScheme"`

	RegisterRateLimitPerMinute int `yaml:"registerRateLimitPerMinute"`
	LoginRateLimitPerMinute    int `yaml:"loginRateLimitPerMinute"`
}

func defaults() FileConfig {
	return FileConfig{
		Port:                       "8000",
		LogLevel:                   "info",
		DatabaseName:               "EduTechAI",
		GenerationProvider:         ai.ProviderGemini,
		GenerationModel:            ai.DefaultGeminiModel,
		StorageBackend:             "local",
		StorageDir:                 "uploads",
		MaxUploadBytes:             50 << 20,
		CORSOrigins:                []string{"http://localhost:3000"},
		SessionMode:                session.ModeOpaque,
		PasswordScheme:             string(auth.SchemeSHA256),
		RegisterRateLimitPerMinute: 10,
		LoginRateLimitPerMinute:    20,
	}
}

// Path returns the config file to read.
func Path() string {
	if v := strings.TrimSpace(os.Getenv("EDUTECH_CONFIG")); v != "" {
		return v
	}
	return ConfigPath
}

// Load reads .env (if any), then the YAML file (if any), then environment
// overrides. A missing YAML file leaves the defaults in place.
func Load(path string) (FileConfig, error) {
	_ = godotenv.Load()

	cfg := defaults()
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
	case err != nil:
		return cfg, fmt.Errorf("read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnv(&cfg)
	if err := validateConfig(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *FileConfig) {
	setString := func(dst *string, keys ...string) {
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.Port, "PORT")
	setString(&cfg.LogLevel, "LOG_LEVEL")
	setString(&cfg.DatabaseURL, "MONGODB_URL", "DATABASE_URL")
	setString(&cfg.DatabaseName, "DATABASE_NAME")
	setString(&cfg.GoogleAPIKey, "GOOGLE_API_KEY")
	setString(&cfg.GenerationProvider, "GENERATION_PROVIDER")
	setString(&cfg.GenerationModel, "GENERATION_MODEL")
	setString(&cfg.GenerationBaseURL, "GENERATION_BASE_URL")
	setString(&cfg.GenerationAPIKey, "GENERATION_API_KEY")
	setString(&cfg.StorageBackend, "STORAGE_BACKEND")
	setString(&cfg.StorageDir, "STORAGE_DIR")
	setString(&cfg.MinioEndpoint, "MINIO_ENDPOINT")
	setString(&cfg.MinioAccessKey, "MINIO_ACCESS_KEY")
	setString(&cfg.MinioSecretKey, "MINIO_SECRET_KEY")
	setString(&cfg.MinioBucket, "MINIO_BUCKET")
	setString(&cfg.RedisAddr, "REDIS_ADDR")
	setString(&cfg.RedisPassword, "REDIS_PASSWORD")
	setString(&cfg.SessionMode, "SESSION_MODE")
	setString(&cfg.SessionTTL, "SESSION_TTL")
	setString(&cfg.JWTSecret, "JWT_SECRET")
	setString(&cfg.PasswordScheme, "PASSWORD_SCHEME")

	if v := os.Getenv("MINIO_USE_SSL"); v != "" {
		cfg.MinioUseSSL, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("MAX_UPLOAD_BYTES"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.MaxUploadBytes = n
		}
	}
	if v := os.Getenv("CORS_ORIGINS"); v != "" {
		cfg.CORSOrigins = splitCSV(v)
	}
	if v := os.Getenv("TRUSTED_PROXY_CIDRS"); v != "" {
		cfg.TrustedProxyCIDRs = splitCSV(v)
	}
}

func validateConfig(cfg FileConfig) error {
	if cfg.Port == "" {
		return errors.New("config: port is required")
	}
	if cfg.MaxUploadBytes <= 0 {
		return errors.New("config: maxUploadBytes must be positive")
	}
	if err := session.ValidateMode(cfg.SessionMode); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if cfg.SessionMode == session.ModeRedis && cfg.RedisAddr == "" {
		return errors.New("config: sessionMode redis requires redisAddr")
	}
	if cfg.SessionMode == session.ModeJWT && len(cfg.JWTSecret) < 32 {
		return errors.New("config: sessionMode jwt requires a jwtSecret of at least 32 characters")
	}
	if _, err := cfg.SessionDuration(); err != nil {
		return err
	}
	if _, err := auth.ParseScheme(cfg.PasswordScheme); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch cfg.StorageBackend {
	case "", "local":
	case "minio":
		if cfg.MinioEndpoint == "" || cfg.MinioBucket == "" {
			return errors.New("config: storageBackend minio requires minioEndpoint and minioBucket")
		}
	default:
		return fmt.Errorf("config: unknown storageBackend %q", cfg.StorageBackend)
	}
	return nil
}

// SessionDuration parses SessionTTL; empty means session.DefaultTTL.
func (c FileConfig) SessionDuration() (time.Duration, error) {
	if strings.TrimSpace(c.SessionTTL) == "" {
		return session.DefaultTTL, nil
	}
	d, err := time.ParseDuration(c.SessionTTL)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("config: invalid sessionTTL %q", c.SessionTTL)
	}
	return d, nil
}

// GenerationKey picks the provider key, falling back to GOOGLE_API_KEY for
// Gemini.
func (c FileConfig) GenerationKey() string {
	if c.GenerationAPIKey != "" {
		return c.GenerationAPIKey
	}
	if c.GenerationProvider == "" || c.GenerationProvider == ai.ProviderGemini {
		return c.GoogleAPIKey
	}
	return ""
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		out = append(out, part)
	}
	return out
}
