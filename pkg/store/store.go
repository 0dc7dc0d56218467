package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"edutechai/pkg/domain"
)

var (
	// ErrUnavailable is returned by every call on a store that could not be
	// connected at startup.
	ErrUnavailable = errors.New("document store unavailable")
	// ErrDuplicate is returned when a unique field (user email) is reused.
	ErrDuplicate = errors.New("duplicate record")
	ErrNotFound  = errors.New("record not found")
)

// DefaultDatabaseName is the database used when the URL does not name one.
const DefaultDatabaseName = "EduTechAI"

// Store persists textbooks, conversations and users.
type Store interface {
	// textbooks
	CreateTextbook(ctx context.Context, tb domain.Textbook) (string, error)
	LinkTextbookFile(ctx context.Context, id, path string) error
	GetTextbook(ctx context.Context, id string) (domain.Textbook, bool, error)
	ListTextbooks(ctx context.Context, ownerID string) ([]domain.Textbook, error)
	DeleteTextbook(ctx context.Context, id string) (bool, error)

	// conversations
	CreateConversation(ctx context.Context, c domain.Conversation) (string, error)
	ListConversations(ctx context.Context, textbookID, userID string, limit int) ([]domain.Conversation, error)
	DeleteConversationsByTextbook(ctx context.Context, textbookID string) (int64, error)

	// users
	CreateUser(ctx context.Context, u domain.User) (string, error)
	GetUserByEmail(ctx context.Context, email string) (domain.User, bool, error)

	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Options tune Open.
type Options struct {
	DatabaseName string
}

// Open connects to the store named by url. The scheme picks the adapter:
// mongodb:// and mongodb+srv:// use MongoDB, postgres:// uses GORM on
// Postgres, memory:// keeps everything in process.
func Open(ctx context.Context, url string, opts Options) (Store, error) {
	url = strings.TrimSpace(url)
	scheme, _, _ := strings.Cut(url, "://")
	switch strings.ToLower(scheme) {
	case "":
		return nil, errors.New("database url is empty")
	case "mongodb", "mongodb+srv":
		return NewMongoStore(ctx, url, opts.DatabaseName)
	case "postgres", "postgresql":
		return NewGormStore(url)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", scheme)
	}
}

// OpenOrUnavailable behaves like Open but never fails: when the store cannot
// be reached it returns an Unavailable stand-in carrying the cause.
func OpenOrUnavailable(ctx context.Context, url string, opts Options) Store {
	s, err := Open(ctx, url, opts)
	if err != nil {
		return Unavailable{Cause: err}
	}
	return s
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return 50
	}
	return limit
}
