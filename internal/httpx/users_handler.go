package httpx

import (
	"errors"
	"net/http"

	"github.com/ariefcatur/go-shop/internal/users"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TokenIssuer is satisfied by *auth.Tokens.
type TokenIssuer interface {
	Issue(userID uuid.UUID) (string, error)
}

type UsersHandler struct {
	Store  users.Store
	Tokens TokenIssuer
	Log    *zap.Logger
}

type loginReq struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResp struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

func (h *UsersHandler) Register(r chi.Router) {
	r.Post("/users", h.signUp)
	r.Post("/login", h.login)
}

func (h *UsersHandler) signUp(w http.ResponseWriter, r *http.Request) {
	var req users.Registration
	if err := decodeStrict(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	u, err := users.Register(r.Context(), h.Store, req)
	var invalid *users.ValidationError
	switch {
	case errors.As(err, &invalid):
		writeError(w, http.StatusBadRequest, invalid.Error())
	case errors.Is(err, users.ErrLoginTaken):
		writeError(w, http.StatusConflict, "Login already taken")
	case err != nil:
		h.Log.Error("register user", zap.String("request_id", requestID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
	default:
		writeJSON(w, http.StatusCreated, u)
	}
}

func (h *UsersHandler) login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := decodeStrict(r.Body, &req); err != nil || req.Login == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "login and password are required")
		return
	}
	u, err := users.Authenticate(r.Context(), h.Store, req.Login, req.Password)
	if errors.Is(err, users.ErrBadPassword) {
		h.Log.Warn("failed login", zap.String("login", req.Login))
		writeError(w, http.StatusUnauthorized, "Invalid login or password")
		return
	}
	if err != nil {
		h.Log.Error("authenticate", zap.String("request_id", requestID(r)), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	token, err := h.Tokens.Issue(u.ID)
	if err != nil {
		h.Log.Error("issue token", zap.String("user_id", u.ID.String()), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, loginResp{Token: token, TokenType: "Bearer"})
}
