package store

import (
	"context"
	"fmt"

	"edutechai/pkg/domain"
)

// Unavailable stands in for a store that could not be connected. Every call
// fails with ErrUnavailable so the service still boots and reports the
// outage per request.
type Unavailable struct {
	Cause error
}

func (u Unavailable) err() error {
	if u.Cause == nil {
		return ErrUnavailable
	}
	return fmt.Errorf("%w: %v", ErrUnavailable, u.Cause)
}

func (u Unavailable) CreateTextbook(context.Context, domain.Textbook) (string, error) {
	return "", u.err()
}

func (u Unavailable) LinkTextbookFile(context.Context, string, string) error { return u.err() }

func (u Unavailable) GetTextbook(context.Context, string) (domain.Textbook, bool, error) {
	return domain.Textbook{}, false, u.err()
}

func (u Unavailable) ListTextbooks(context.Context, string) ([]domain.Textbook, error) {
	return nil, u.err()
}

func (u Unavailable) DeleteTextbook(context.Context, string) (bool, error) { return false, u.err() }

func (u Unavailable) CreateConversation(context.Context, domain.Conversation) (string, error) {
	return "", u.err()
}

func (u Unavailable) ListConversations(context.Context, string, string, int) ([]domain.Conversation, error) {
	return nil, u.err()
}

func (u Unavailable) DeleteConversationsByTextbook(context.Context, string) (int64, error) {
	return 0, u.err()
}

func (u Unavailable) CreateUser(context.Context, domain.User) (string, error) { return "", u.err() }

func (u Unavailable) GetUserByEmail(context.Context, string) (domain.User, bool, error) {
	return domain.User{}, false, u.err()
}

func (u Unavailable) Ping(context.Context) error  { return u.err() }
func (u Unavailable) Close(context.Context) error { return nil }
