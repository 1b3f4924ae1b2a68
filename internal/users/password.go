package users

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

func HashPassword(plain string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

// Authenticate returns the user for login if password matches its hash.
// Unknown logins and wrong passwords both yield ErrBadPassword.
func Authenticate(ctx context.Context, s Store, login, password string) (*User, error) {
	u, err := s.FindByLogin(ctx, login)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrBadPassword
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrBadPassword
	}
	return u, nil
}
