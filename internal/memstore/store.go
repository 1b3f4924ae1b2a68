// Package memstore is an in-memory implementation of the order and user
// stores. Transactions are fully serialized and roll back by discarding a
// copy of the state, which is enough for tests and local runs.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"

	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/ariefcatur/go-shop/internal/users"
	"github.com/google/uuid"
)

type state struct {
	products   map[uuid.UUID]orders.Product
	orders     map[uuid.UUID]orders.Order
	lines      []orders.OrderLine
	userOrders map[orders.UserOrder]struct{}
	users      map[uuid.UUID]users.User
}

func (s *state) clone() *state {
	c := &state{
		products:   make(map[uuid.UUID]orders.Product, len(s.products)),
		orders:     make(map[uuid.UUID]orders.Order, len(s.orders)),
		lines:      slices.Clone(s.lines),
		userOrders: make(map[orders.UserOrder]struct{}, len(s.userOrders)),
		users:      make(map[uuid.UUID]users.User, len(s.users)),
	}
	for k, v := range s.products {
		c.products[k] = v
	}
	for k, v := range s.orders {
		c.orders[k] = v
	}
	for k := range s.userOrders {
		c.userOrders[k] = struct{}{}
	}
	for k, v := range s.users {
		c.users[k] = v
	}
	return c
}

// Store is safe for concurrent use.
type Store struct {
	mu    sync.Mutex
	st    *state
	seqMu sync.Mutex
	seq   int64
}

// FirstOrderNumber matches the start of the orders_number_seq sequence.
const FirstOrderNumber = 1001

func New() *Store {
	return &Store{
		st: &state{
			products:   map[uuid.UUID]orders.Product{},
			orders:     map[uuid.UUID]orders.Order{},
			userOrders: map[orders.UserOrder]struct{}{},
			users:      map[uuid.UUID]users.User{},
		},
		seq: FirstOrderNumber - 1,
	}
}

// WithinTx runs fn against a private copy of the state and publishes the
// copy only when fn succeeds. Order numbers are not rolled back, like a
// database sequence.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, st orders.Stores) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, s.bind(work)); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Stores returns stores operating directly on the committed state, one
// statement at a time.
func (s *Store) Stores() orders.Stores {
	return orders.Stores{
		Products:   &productStore{s: s},
		Orders:     &orderStore{s: s},
		Lines:      &lineStore{s: s},
		UserOrders: &userOrderStore{s: s},
	}
}

func (s *Store) bind(work *state) orders.Stores {
	return orders.Stores{
		Products:   &productStore{work: work},
		Orders:     &orderStore{s: s, work: work},
		Lines:      &lineStore{work: work},
		UserOrders: &userOrderStore{work: work},
	}
}

func (s *Store) nextNumber() int64 {
	s.seqMu.Lock()
	defer s.seqMu.Unlock()
	s.seq++
	return s.seq
}

// view runs fn on the state a store should use: its transaction copy if
// bound, otherwise the committed state under the store lock.
func view(s *Store, work *state, fn func(st *state) error) error {
	if work != nil {
		return fn(work)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.st)
}

type productStore struct {
	s    *Store
	work *state
}

func findProduct(st *state, ref string) (orders.Product, bool) {
	if id, err := uuid.Parse(ref); err == nil {
		p, ok := st.products[id]
		return p, ok
	}
	for _, p := range st.products {
		if p.Slug == ref {
			return p, true
		}
	}
	return orders.Product{}, false
}

func (ps *productStore) FindByRef(ctx context.Context, ref string) (*orders.Product, error) {
	var out *orders.Product
	err := view(ps.s, ps.work, func(st *state) error {
		p, ok := findProduct(st, ref)
		if !ok {
			return &orders.ProductNotFoundError{Ref: ref}
		}
		out = &p
		return nil
	})
	return out, err
}

// FindForUpdate needs no extra locking: transactions are serialized.
func (ps *productStore) FindForUpdate(ctx context.Context, ref string) (*orders.Product, error) {
	return ps.FindByRef(ctx, ref)
}

func (ps *productStore) Save(ctx context.Context, p *orders.Product) error {
	return view(ps.s, ps.work, func(st *state) error {
		cur, ok := st.products[p.ID]
		if !ok {
			return &orders.ProductNotFoundError{Ref: p.ID.String()}
		}
		cur.LeftInStock = p.LeftInStock
		st.products[p.ID] = cur
		return nil
	})
}

func (ps *productStore) List(ctx context.Context) ([]orders.Product, error) {
	var out []orders.Product
	err := view(ps.s, ps.work, func(st *state) error {
		for _, p := range st.products {
			out = append(out, p)
		}
		return nil
	})
	slices.SortFunc(out, func(a, b orders.Product) int { return strings.Compare(a.Slug, b.Slug) })
	return out, err
}

func (ps *productStore) Create(ctx context.Context, p *orders.Product) error {
	return view(ps.s, ps.work, func(st *state) error {
		if slugTaken(st, p.Slug, uuid.Nil) {
			return orders.ErrSlugTaken
		}
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (ps *productStore) Update(ctx context.Context, p *orders.Product) error {
	return view(ps.s, ps.work, func(st *state) error {
		if _, ok := st.products[p.ID]; !ok {
			return &orders.ProductNotFoundError{Ref: p.ID.String()}
		}
		if slugTaken(st, p.Slug, p.ID) {
			return orders.ErrSlugTaken
		}
		st.products[p.ID] = *p
		return nil
	})
}

func (ps *productStore) Delete(ctx context.Context, id uuid.UUID) error {
	return view(ps.s, ps.work, func(st *state) error {
		if _, ok := st.products[id]; !ok {
			return &orders.ProductNotFoundError{Ref: id.String()}
		}
		for _, l := range st.lines {
			if l.ProductID == id {
				return orders.ErrProductInUse
			}
		}
		delete(st.products, id)
		return nil
	})
}

func slugTaken(st *state, slug string, except uuid.UUID) bool {
	for id, p := range st.products {
		if p.Slug == slug && id != except {
			return true
		}
	}
	return false
}

type orderStore struct {
	s    *Store
	work *state
}

func (r *orderStore) Create(ctx context.Context) (*orders.Order, error) {
	o := orders.Order{ID: uuid.New(), Number: r.s.nextNumber()}
	err := view(r.s, r.work, func(st *state) error {
		st.orders[o.ID] = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderStore) FindByNumber(ctx context.Context, number int64) (*orders.Order, error) {
	var out *orders.Order
	err := view(r.s, r.work, func(st *state) error {
		for _, o := range st.orders {
			if o.Number == number {
				out = &o
				return nil
			}
		}
		return orders.ErrOrderNotFound
	})
	return out, err
}

type lineStore struct {
	s    *Store
	work *state
}

func (ls *lineStore) Create(ctx context.Context, orderID, productID uuid.UUID, qty int) (*orders.OrderLine, error) {
	l := orders.OrderLine{OrderID: orderID, ProductID: productID, Quantity: qty}
	err := view(ls.s, ls.work, func(st *state) error {
		st.lines = append(st.lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (ls *lineStore) FindAllForOrder(ctx context.Context, orderID uuid.UUID) ([]orders.OrderLine, error) {
	var out []orders.OrderLine
	err := view(ls.s, ls.work, func(st *state) error {
		for _, l := range st.lines {
			if l.OrderID == orderID {
				out = append(out, l)
			}
		}
		return nil
	})
	return out, err
}

type userOrderStore struct {
	s    *Store
	work *state
}

func (us *userOrderStore) Create(ctx context.Context, userID, orderID uuid.UUID) error {
	return view(us.s, us.work, func(st *state) error {
		st.userOrders[orders.UserOrder{UserID: userID, OrderID: orderID}] = struct{}{}
		return nil
	})
}

func (us *userOrderStore) Exists(ctx context.Context, userID, orderID uuid.UUID) (bool, error) {
	var ok bool
	err := view(us.s, us.work, func(st *state) error {
		_, ok = st.userOrders[orders.UserOrder{UserID: userID, OrderID: orderID}]
		return nil
	})
	return ok, err
}
