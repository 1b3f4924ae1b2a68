package users

import (
	"context"
	"fmt"
)

type Registration struct {
	Login      string  `json:"login"`
	Password   string  `json:"password"`
	FirstName  string  `json:"first_name"`
	Surname    string  `json:"surname"`
	MiddleName *string `json:"middle_name,omitempty"`
	Sex        *Sex    `json:"sex,omitempty"`
	Age        int     `json:"age"`
}

// ValidationError reports the first invalid registration field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (r *Registration) Validate() error {
	switch {
	case r.Login == "" || len(r.Login) > 255:
		return &ValidationError{Field: "login", Reason: "must be 1-255 characters"}
	case len(r.Password) < 6:
		return &ValidationError{Field: "password", Reason: "must be at least 6 characters"}
	case len(r.Password) > 72:
		return &ValidationError{Field: "password", Reason: "must be at most 72 bytes"}
	case r.FirstName == "" || r.Surname == "":
		return &ValidationError{Field: "name", Reason: "first_name and surname are required"}
	case r.Age < 0:
		return &ValidationError{Field: "age", Reason: "must not be negative"}
	}
	if r.Sex != nil && *r.Sex != SexMale && *r.Sex != SexFemale {
		return &ValidationError{Field: "sex", Reason: "must be male or female"}
	}
	return nil
}

// Register validates r, hashes the password and stores the new user.
func Register(ctx context.Context, s Store, r Registration) (*User, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	hash, err := HashPassword(r.Password)
	if err != nil {
		return nil, err
	}
	u := &User{
		Login:        r.Login,
		PasswordHash: hash,
		FirstName:    r.FirstName,
		Surname:      r.Surname,
		MiddleName:   r.MiddleName,
		Sex:          r.Sex,
		Age:          r.Age,
	}
	if err := s.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}
