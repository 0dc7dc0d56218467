package app

import (
	"context"
	"errors"
	"strings"

	"edutechai/internal/util"
	"edutechai/pkg/auth"
	"edutechai/pkg/domain"
	"edutechai/pkg/store"
)

// Session is a signed-in user with the token handed back to the client.
type Session struct {
	User  domain.User
	Token string
}

// Register creates an account. Emails are unique and compared as given.
func (a *App) Register(ctx context.Context, name, email, password string) (Session, error) {
	if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" || password == "" {
		return Session{}, invalid("name, email and password are required")
	}
	_, exists, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, upstream("load user", err)
	}
	if exists {
		return Session{}, ErrDuplicateEmail
	}

	hash, err := auth.HashPassword(a.scheme, password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return Session{}, invalid("password too long")
	}
	if err != nil {
		return Session{}, err
	}
	user := domain.User{Name: name, Email: email, PasswordHash: hash, CreatedAt: a.now()}
	id, err := a.store.CreateUser(ctx, user)
	if errors.Is(err, store.ErrDuplicate) {
		return Session{}, ErrDuplicateEmail
	}
	if err != nil {
		return Session{}, upstream("save user", err)
	}
	user.ID = id

	token, err := a.sessions.Issue(ctx, id)
	if err != nil {
		return Session{}, upstream("issue session", err)
	}
	util.LoggerFromContext(ctx).Info("user registered", "user_id", id)
	return Session{User: user, Token: token}, nil
}

// Login checks credentials. Unknown email and wrong password fail the same
// way.
func (a *App) Login(ctx context.Context, email, password string) (Session, error) {
	if strings.TrimSpace(email) == "" || password == "" {
		return Session{}, invalid("email and password are required")
	}
	user, ok, err := a.store.GetUserByEmail(ctx, email)
	if err != nil {
		return Session{}, upstream("load user", err)
	}
	if !ok || !auth.CheckPassword(password, user.PasswordHash) {
		return Session{}, ErrInvalidCredentials
	}
	token, err := a.sessions.Issue(ctx, user.ID)
	if err != nil {
		return Session{}, upstream("issue session", err)
	}
	return Session{User: user, Token: token}, nil
}

// CheckAuth reports whether token is accepted by the session issuer.
func (a *App) CheckAuth(ctx context.Context, token string) (bool, error) {
	_, ok, err := a.sessions.Verify(ctx, token)
	if err != nil {
		return false, upstream("verify session", err)
	}
	return ok, nil
}
