package app

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"edutechai/pkg/ai"
	"edutechai/pkg/auth"
	"edutechai/pkg/session"
	"edutechai/pkg/storage"
	"edutechai/pkg/store"
)

// HistoryLimit is the number of conversations returned per history page.
const HistoryLimit = 50

const completionCheckPrompt = "Reply with exactly: Gemini API working"

// Config holds runtime configuration for the core application. Injected
// dependencies win over the connection settings next to them.
type Config struct {
	Store        store.Store
	DatabaseURL  string
	DatabaseName string

	Objects        storage.ObjectStore
	StorageBackend string
	StorageDir     string
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	Generator  ai.TextGenerator
	Generation ai.Config

	Sessions       session.Issuer
	SessionMode    string
	SessionTTL     time.Duration
	JWTSecret      string
	Redis          redis.Cmdable
	PasswordScheme auth.Scheme
}

// App wires persistence, binary storage and the completion service.
type App struct {
	store     store.Store
	objects   storage.ObjectStore
	generator ai.TextGenerator
	sessions  session.Issuer
	scheme    auth.Scheme
	now       func() time.Time
}

// New builds the application. A store that cannot be reached becomes the
// Unavailable stand-in so the service still starts.
func New(ctx context.Context, cfg Config) (*App, error) {
	dataStore := cfg.Store
	if dataStore == nil {
		dataStore = store.OpenOrUnavailable(ctx, cfg.DatabaseURL, store.Options{DatabaseName: cfg.DatabaseName})
		if u, ok := dataStore.(store.Unavailable); ok {
			slog.Warn("document store unavailable, requests needing it will fail", "err", u.Cause)
		}
	}

	objects := cfg.Objects
	if objects == nil {
		var err error
		objects, err = openObjects(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	generator := cfg.Generator
	if generator == nil {
		var err error
		generator, err = ai.New(cfg.Generation)
		if err != nil {
			return nil, fmt.Errorf("init completion client: %w", err)
		}
		if _, ok := generator.(ai.Unavailable); ok {
			slog.Warn("completion service not configured, question answering will fail")
		}
	}

	sessions := cfg.Sessions
	if sessions == nil {
		var err error
		sessions, err = openSessions(cfg)
		if err != nil {
			return nil, err
		}
	}

	scheme := cfg.PasswordScheme
	if scheme == "" {
		scheme = auth.SchemeSHA256
	}

	return &App{
		store:     dataStore,
		objects:   objects,
		generator: generator,
		sessions:  sessions,
		scheme:    scheme,
		now:       func() time.Time { return time.Now().UTC() },
	}, nil
}

func openObjects(ctx context.Context, cfg Config) (storage.ObjectStore, error) {
	switch strings.ToLower(cfg.StorageBackend) {
	case "", "local":
		dir := cfg.StorageDir
		if dir == "" {
			dir = "uploads"
		}
		return storage.NewFileStore(dir)
	case "minio":
		s, err := storage.NewMinioStore(ctx, storage.MinioConfig{
			Endpoint:  cfg.MinioEndpoint,
			AccessKey: cfg.MinioAccessKey,
			SecretKey: cfg.MinioSecretKey,
			Bucket:    cfg.MinioBucket,
			UseSSL:    cfg.MinioUseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("init minio storage: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}

func openSessions(cfg Config) (session.Issuer, error) {
	switch cfg.SessionMode {
	case "", session.ModeOpaque:
		return session.Opaque{}, nil
	case session.ModeRedis:
		if cfg.Redis == nil {
			return nil, fmt.Errorf("session mode redis requires redisAddr")
		}
		return session.NewRedisStore(cfg.Redis, cfg.SessionTTL), nil
	case session.ModeJWT:
		return session.NewJWTIssuer(cfg.JWTSecret, cfg.SessionTTL)
	default:
		return nil, fmt.Errorf("unknown session mode %q", cfg.SessionMode)
	}
}

// Close releases the store connection.
func (a *App) Close(ctx context.Context) error {
	return a.store.Close(ctx)
}

// Ping reports whether the document store answers.
func (a *App) Ping(ctx context.Context) error {
	if err := a.store.Ping(ctx); err != nil {
		return upstream("document store", err)
	}
	return nil
}

// CheckCompletion sends a fixed test prompt and returns the model's reply.
func (a *App) CheckCompletion(ctx context.Context) (string, error) {
	return a.generate(ctx, completionCheckPrompt)
}

func (a *App) generate(ctx context.Context, prompt string) (string, error) {
	text, err := a.generator.GenerateText(ctx, "", prompt)
	if err != nil {
		return "", upstream("completion service", err)
	}
	return text, nil
}

// FileKey is the storage key of a textbook's original PDF.
func FileKey(textbookID string) string {
	return textbookID + ".pdf"
}

// objectKey accepts both bare keys and older "uploads/<id>.pdf" paths.
func objectKey(storedPath, textbookID string) string {
	if storedPath == "" {
		return FileKey(textbookID)
	}
	return path.Base(strings.ReplaceAll(storedPath, "\\", "/"))
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
