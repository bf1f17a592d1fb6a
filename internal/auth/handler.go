package auth

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/apperror"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
)

const msgTooManyAttempts = "Too many failed login attempts, try again later"

// Authenticator checks a username/password pair.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*entity.User, error)
}

type Handler struct {
	users    Authenticator
	tokens   *TokenService
	throttle *Throttle
	logger   *zap.SugaredLogger
}

// NewHandler wires the login endpoint. throttle may be nil.
func NewHandler(users Authenticator, tokens *TokenService, throttle *Throttle, logger *zap.SugaredLogger) *Handler {
	return &Handler{users: users, tokens: tokens, throttle: throttle, logger: logger}
}

// LoginRequest login payload.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// Login handles POST /auth/login.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	ctx := r.Context()
	blocked, err := h.throttle.Blocked(ctx, req.Username)
	if err != nil {
		// throttle errors never block a login
		h.logger.Warnw("login throttle unavailable", "err", err)
	}
	if blocked {
		web.WriteError(w, h.logger, apperror.NewAuth(msgTooManyAttempts), http.StatusBadRequest)
		return
	}
	u, err := h.users.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		if ae, ok := apperror.As(err); ok && ae.Type == apperror.AuthError {
			if fErr := h.throttle.Fail(ctx, req.Username); fErr != nil {
				h.logger.Warnw("login throttle unavailable", "err", fErr)
			}
		}
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	if err := h.throttle.Reset(ctx, req.Username); err != nil {
		h.logger.Warnw("login throttle unavailable", "err", err)
	}
	token, err := h.tokens.Issue(u.Username, u.IsAdmin)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	h.logger.Debugw("login", "username", u.Username)
	web.WriteJSON(w, http.StatusOK, loginResponse{Token: token})
}
