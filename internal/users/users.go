// Package users holds the account model used for authentication. Orders
// only ever see a user's id.
package users

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrLoginTaken  = errors.New("login already taken")
	ErrBadPassword = errors.New("invalid credentials")
)

type Sex string

const (
	SexMale   Sex = "male"
	SexFemale Sex = "female"
)

// User fields that are optional are pointers and omitted from JSON when unset.
type User struct {
	ID           uuid.UUID `json:"id"`
	Login        string    `json:"login"`
	PasswordHash string    `json:"-"`
	FirstName    string    `json:"first_name"`
	Surname      string    `json:"surname"`
	MiddleName   *string   `json:"middle_name,omitempty"`
	Sex          *Sex      `json:"sex,omitempty"`
	Age          int       `json:"age"`
}

// FullName is "Surname FirstName MiddleName", without a trailing space
// when there is no middle name.
func (u *User) FullName() string {
	name := u.Surname + " " + u.FirstName
	if u.MiddleName != nil && *u.MiddleName != "" {
		name += " " + *u.MiddleName
	}
	return name
}

type Store interface {
	Create(ctx context.Context, u *User) error
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)
	FindByLogin(ctx context.Context, login string) (*User, error)
}
