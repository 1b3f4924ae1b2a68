package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariefcatur/go-shop/internal/users"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type UserStore struct{ DB DBTX }

const userColumns = `id, login, password, first_name, surname, middle_name, sex, age`

func (s *UserStore) Create(ctx context.Context, u *users.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	var sex *string
	if u.Sex != nil {
		v := string(*u.Sex)
		sex = &v
	}
	_, err := s.DB.Exec(ctx, `INSERT INTO users (`+userColumns+`) VALUES ($1,$2,$3,$4,$5,$6,$7,$8)`,
		u.ID, u.Login, u.PasswordHash, u.FirstName, u.Surname, u.MiddleName, sex, u.Age)
	if hasCode(err, codeUniqueViolation) {
		return users.ErrLoginTaken
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
}

func (s *UserStore) FindByLogin(ctx context.Context, login string) (*users.User, error) {
	return s.findOne(ctx, `SELECT `+userColumns+` FROM users WHERE login = $1`, login)
}

func (s *UserStore) findOne(ctx context.Context, query string, arg any) (*users.User, error) {
	var (
		u   users.User
		sex *string
	)
	err := s.DB.QueryRow(ctx, query, arg).Scan(
		&u.ID, &u.Login, &u.PasswordHash, &u.FirstName, &u.Surname, &u.MiddleName, &sex, &u.Age)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, users.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if sex != nil {
		v := users.Sex(*sex)
		u.Sex = &v
	}
	return &u, nil
}
