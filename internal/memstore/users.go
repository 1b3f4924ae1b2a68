package memstore

import (
	"context"

	"github.com/ariefcatur/go-shop/internal/users"
	"github.com/google/uuid"
)

type userStore struct{ s *Store }

// Users returns a users.Store over the committed state.
func (s *Store) Users() users.Store { return &userStore{s: s} }

func (us *userStore) Create(ctx context.Context, u *users.User) error {
	return view(us.s, nil, func(st *state) error {
		for _, existing := range st.users {
			if existing.Login == u.Login {
				return users.ErrLoginTaken
			}
		}
		if u.ID == uuid.Nil {
			u.ID = uuid.New()
		}
		st.users[u.ID] = *u
		return nil
	})
}

func (us *userStore) FindByID(ctx context.Context, id uuid.UUID) (*users.User, error) {
	var out *users.User
	err := view(us.s, nil, func(st *state) error {
		u, ok := st.users[id]
		if !ok {
			return users.ErrNotFound
		}
		out = &u
		return nil
	})
	return out, err
}

func (us *userStore) FindByLogin(ctx context.Context, login string) (*users.User, error) {
	var out *users.User
	err := view(us.s, nil, func(st *state) error {
		for _, u := range st.users {
			if u.Login == login {
				out = &u
				return nil
			}
		}
		return users.ErrNotFound
	})
	return out, err
}
