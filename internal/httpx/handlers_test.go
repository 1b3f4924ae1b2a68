package httpx_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ariefcatur/go-shop/internal/auth"
	"github.com/ariefcatur/go-shop/internal/httpx"
	"github.com/ariefcatur/go-shop/internal/memstore"
	"github.com/ariefcatur/go-shop/internal/orders"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type testServer struct {
	handler http.Handler
	store   *memstore.Store
	tokens  *auth.Tokens
}

func newTestServer(t *testing.T, svc httpx.OrderService) *testServer {
	t.Helper()
	log := zap.NewNop()
	store := memstore.New()
	if svc == nil {
		svc = &orders.Service{Tx: store, Log: log}
	}
	tokens := auth.NewTokens("test-secret", time.Hour)
	requireUser := httpx.RequireUser(tokens)

	router := httpx.NewRouter(log)
	(&httpx.UsersHandler{Store: store.Users(), Tokens: tokens, Log: log}).Register(router)
	(&httpx.ProductsHandler{Store: store.Stores().Products, Log: log}).Register(router, requireUser)
	router.Group(func(r chi.Router) {
		r.Use(requireUser)
		(&httpx.OrdersHandler{Service: svc, Log: log}).Register(r)
	})
	return &testServer{handler: router, store: store, tokens: tokens}
}

func (s *testServer) seed(t *testing.T, slug string, stock int) {
	t.Helper()
	p := &orders.Product{Name: slug, Description: "seeded product", Slug: slug, Price: decimal.NewFromInt(5), LeftInStock: stock}
	require.NoError(t, s.store.Stores().Products.Create(context.Background(), p))
}

func (s *testServer) stock(t *testing.T, slug string) int {
	t.Helper()
	p, err := s.store.Stores().Products.FindByRef(context.Background(), slug)
	require.NoError(t, err)
	return p.LeftInStock
}

func (s *testServer) token(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	tok, err := s.tokens.Issue(userID)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func TestOrdersHandler_Create(t *testing.T) {
	userID := uuid.New()

	testCases := map[string]struct {
		stock        map[string]int
		body         string
		noToken      bool
		expectedCode int
		expectedBody string
		expectStock  map[string]int
	}{
		"should place an order": {
			stock:        map[string]int{"juice": 17},
			body:         `[{"product":"juice","quantity":5}]`,
			expectedCode: http.StatusCreated,
			expectStock:  map[string]int{"juice": 12},
		},
		"should refuse an order larger than the stock": {
			stock:        map[string]int{"gamburger": 3},
			body:         `[{"product":"gamburger","quantity":5}]`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"Not enough product with slug \"gamburger\" in stock."}`,
			expectStock:  map[string]int{"gamburger": 3},
		},
		"should report an unknown product": {
			stock:        map[string]int{"chocolate": 4},
			body:         `[{"product":"chocolate","quantity":1},{"product":"nonexistent","quantity":1}]`,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Product with slug \"nonexistent\" not found."}`,
			expectStock:  map[string]int{"chocolate": 4},
		},
		"should reject an empty item list": {
			body:         `[]`,
			expectedCode: http.StatusBadRequest,
		},
		"should reject unknown fields": {
			stock:        map[string]int{"juice": 1},
			body:         `[{"product":"juice","quantity":1,"discount":true}]`,
			expectedCode: http.StatusBadRequest,
			expectedBody: `{"error":"invalid json"}`,
			expectStock:  map[string]int{"juice": 1},
		},
		"should require a token": {
			stock:        map[string]int{"juice": 1},
			body:         `[{"product":"juice","quantity":1}]`,
			noToken:      true,
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Unauthorized"}`,
			expectStock:  map[string]int{"juice": 1},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			s := newTestServer(t, nil)
			for slug, n := range tc.stock {
				s.seed(t, slug, n)
			}
			token := ""
			if !tc.noToken {
				token = s.token(t, userID)
			}

			rec := s.do(http.MethodPost, "/orders", token, tc.body)

			assert.Equal(t, tc.expectedCode, rec.Code)
			if tc.expectedBody != "" {
				assert.JSONEq(t, tc.expectedBody, rec.Body.String())
			}
			for slug, n := range tc.expectStock {
				assert.Equal(t, n, s.stock(t, slug), slug)
			}
		})
	}
}

func TestOrdersHandler_Get(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t, "juice", 17)
	owner := uuid.New()
	ownerToken := s.token(t, owner)

	rec := s.do(http.MethodPost, "/orders", ownerToken, `[{"product":"juice","quantity":5}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	created := rec.Body.String()

	var placed struct {
		ID       uuid.UUID `json:"id"`
		Number   int64     `json:"number"`
		Products []struct {
			OrderID   uuid.UUID `json:"order_id"`
			ProductID uuid.UUID `json:"product_id"`
			Quantity  int       `json:"quantity"`
		} `json:"products"`
	}
	require.NoError(t, json.Unmarshal([]byte(created), &placed))
	assert.Equal(t, int64(memstore.FirstOrderNumber), placed.Number)
	require.Len(t, placed.Products, 1)
	assert.Equal(t, placed.ID, placed.Products[0].OrderID)
	assert.Equal(t, 5, placed.Products[0].Quantity)

	testCases := map[string]struct {
		path         string
		token        string
		expectedCode int
		expectedBody string
	}{
		"should return the order to its owner": {
			path:         "/orders/1001",
			token:        ownerToken,
			expectedCode: http.StatusOK,
			expectedBody: created,
		},
		"should hide the order from another user": {
			path:         "/orders/1001",
			token:        s.token(t, uuid.New()),
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Order not found"}`,
		},
		"should treat a non numeric number as missing": {
			path:         "/orders/abc",
			token:        ownerToken,
			expectedCode: http.StatusNotFound,
			expectedBody: `{"error":"Order not found"}`,
		},
		"should reject a forged token": {
			path:         "/orders/1001",
			token:        ownerToken + "x",
			expectedCode: http.StatusUnauthorized,
			expectedBody: `{"error":"Unauthorized"}`,
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			rec := s.do(http.MethodGet, tc.path, tc.token, "")
			assert.Equal(t, tc.expectedCode, rec.Code)
			assert.JSONEq(t, tc.expectedBody, rec.Body.String())
		})
	}
}

type mockOrderService struct {
	mock.Mock
}

func (m *mockOrderService) PlaceOrder(ctx context.Context, userID uuid.UUID, items []orders.ItemRequest) (*orders.Placement, error) {
	args := m.Called(ctx, userID, items)
	p, _ := args.Get(0).(*orders.Placement)
	return p, args.Error(1)
}

func (m *mockOrderService) GetOrder(ctx context.Context, userID uuid.UUID, number int64) (*orders.Placement, error) {
	args := m.Called(ctx, userID, number)
	p, _ := args.Get(0).(*orders.Placement)
	return p, args.Error(1)
}

func TestOrdersHandler_InternalErrors(t *testing.T) {
	svc := &mockOrderService{}
	s := newTestServer(t, svc)
	userID := uuid.New()
	token := s.token(t, userID)
	dbDown := errors.New("connection refused")

	svc.On("PlaceOrder", mock.Anything, userID, []orders.ItemRequest{{Product: "juice", Quantity: 1}}).Return(nil, dbDown).Once()
	svc.On("GetOrder", mock.Anything, userID, int64(1001)).Return(nil, dbDown).Once()

	rec := s.do(http.MethodPost, "/orders", token, `[{"product":"juice","quantity":1}]`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	rec = s.do(http.MethodGet, "/orders/1001", token, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.JSONEq(t, `{"error":"internal error"}`, rec.Body.String())

	svc.AssertExpectations(t)
}

func TestProductsHandler(t *testing.T) {
	s := newTestServer(t, nil)
	token := s.token(t, uuid.New())

	rec := s.do(http.MethodGet, "/products", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	testCases := []struct {
		name         string
		method       string
		path         string
		token        string
		body         string
		expectedCode int
	}{
		{"should require a token to create", http.MethodPost, "/products", "", `{"name":"Dark Chocolate","description":"70% cocoa","price":"2.5","left_in_stock":10}`, http.StatusUnauthorized},
		{"should create with a derived slug", http.MethodPost, "/products", token, `{"name":"Dark Chocolate","description":"70% cocoa","price":"2.5","left_in_stock":10}`, http.StatusCreated},
		{"should reject a taken slug", http.MethodPost, "/products", token, `{"name":"Dark Chocolate","description":"another one","price":"3","left_in_stock":1}`, http.StatusConflict},
		{"should reject a short description", http.MethodPost, "/products", token, `{"name":"Milk","description":"abc","price":"1","left_in_stock":1}`, http.StatusBadRequest},
		{"should read by slug", http.MethodGet, "/products/dark-chocolate", "", "", http.StatusOK},
		{"should update", http.MethodPut, "/products/dark-chocolate", token, `{"name":"Dark Chocolate","description":"85% cocoa","price":"3","left_in_stock":7}`, http.StatusOK},
		{"should report a missing product", http.MethodGet, "/products/white-chocolate", "", "", http.StatusNotFound},
		{"should delete", http.MethodDelete, "/products/dark-chocolate", token, "", http.StatusNoContent},
		{"should report a deleted product as missing", http.MethodDelete, "/products/dark-chocolate", token, "", http.StatusNotFound},
	}

	// Cases share one store and run in order.
	for _, tc := range testCases {
		rec := s.do(tc.method, tc.path, tc.token, tc.body)
		assert.Equal(t, tc.expectedCode, rec.Code, "%s: %s", tc.name, rec.Body.String())
	}
}

func TestUsersHandler(t *testing.T) {
	s := newTestServer(t, nil)
	signUp := `{"login":"jdoe","password":"secret1","first_name":"John","surname":"Doe","age":30}`

	rec := s.do(http.MethodPost, "/users", "", signUp)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NotContains(t, rec.Body.String(), "secret1")
	assert.NotContains(t, rec.Body.String(), "middle_name")

	rec = s.do(http.MethodPost, "/users", "", signUp)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = s.do(http.MethodPost, "/login", "", `{"login":"jdoe","password":"wrong!"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Invalid login or password"}`, rec.Body.String())

	rec = s.do(http.MethodPost, "/login", "", `{"login":"jdoe"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/login", "", `{"login":"jdoe","password":"secret1"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Token     string `json:"token"`
		TokenType string `json:"token_type"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Bearer", resp.TokenType)

	// The issued token opens the protected routes.
	s.seed(t, "juice", 2)
	rec = s.do(http.MethodPost, "/orders", resp.Token, `[{"product":"juice","quantity":1}]`)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestOrdersHandler_SameProductTwice(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t, "juice", 5)
	p, err := s.store.Stores().Products.FindByRef(context.Background(), "juice")
	require.NoError(t, err)

	body := `[{"product":"juice","quantity":5},{"product":"` + p.ID.String() + `","quantity":5}]`
	rec := s.do(http.MethodPost, "/orders", s.token(t, uuid.New()), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "same product")
	assert.Equal(t, 5, s.stock(t, "juice"))
}

func TestProductsHandler_AfterOrders(t *testing.T) {
	s := newTestServer(t, nil)
	s.seed(t, "juice", 10)
	token := s.token(t, uuid.New())

	rec := s.do(http.MethodPost, "/orders", token, `[{"product":"juice","quantity":4}]`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, 6, s.stock(t, "juice"))

	t.Run("should replace the stock count on update", func(t *testing.T) {
		rec := s.do(http.MethodPut, "/products/juice", token, `{"name":"juice","description":"orange juice","price":"2","left_in_stock":20}`)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 20, s.stock(t, "juice"))
	})

	t.Run("should refuse to delete an ordered product", func(t *testing.T) {
		rec := s.do(http.MethodDelete, "/products/juice", token, "")
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.JSONEq(t, `{"error":"Product is referenced by existing orders."}`, rec.Body.String())
	})
}

func TestHealthz(t *testing.T) {
	s := newTestServer(t, nil)
	rec := s.do(http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", rec.Body.String())
}
