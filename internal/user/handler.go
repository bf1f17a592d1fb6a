package user

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/user/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// TokenIssuer signs the token handed back on signup.
type TokenIssuer interface {
	Issue(username string, isAdmin bool) (string, error)
}

// Handler exposes HTTP endpoints for user operations.
type Handler struct {
	svc    *UserService
	tokens TokenIssuer
	logger *zap.SugaredLogger
}

func NewHandler(svc *UserService, tokens TokenIssuer, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, tokens: tokens, logger: logger}
}

// CreateRequest request body for signup endpoint.
type CreateRequest struct {
	web.TokenField
	Username  string  `json:"username" validate:"required,max=25"`
	Password  string  `json:"password" validate:"required,max=72"`
	FirstName string  `json:"first_name" validate:"required,max=255"`
	LastName  string  `json:"last_name" validate:"required,max=255"`
	Email     string  `json:"email" validate:"required,email"`
	PhotoURL  *string `json:"photo_url" validate:"omitempty,url"`
}

type UpdateRequest struct {
	web.TokenField
	Password  *string                     `json:"password" validate:"omitempty,min=1,max=72"`
	FirstName *string                     `json:"first_name" validate:"omitempty,min=1,max=255"`
	LastName  *string                     `json:"last_name" validate:"omitempty,min=1,max=255"`
	Email     *string                     `json:"email" validate:"omitempty,email"`
	PhotoURL  sqlbuilder.Nullable[string] `json:"photo_url" validate:"omitempty,url"`
}

type signupResponse struct {
	User  *entity.Profile `json:"user"`
	Token string          `json:"token"`
}

type userResponse struct {
	User *entity.Profile `json:"user"`
}

type listResponse struct {
	Users []entity.Summary `json:"users"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, listResponse{Users: out})
}

// Create registers a user and logs them in.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	u, err := h.svc.Create(r.Context(), &entity.User{
		Username:  req.Username,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	token, err := h.tokens.Issue(u.Username, u.IsAdmin)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusCreated, signupResponse{User: u.Profile(), Token: token})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.Get(r.Context(), r.PathValue("username"))
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, userResponse{User: p})
}

// Update answers with the bare profile, not wrapped in {"user": ...}.
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	p, err := h.svc.Update(r.Context(), r.PathValue("username"), entity.Patch{
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		PhotoURL:  req.PhotoURL,
	})
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("username")); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.MessageBody{Message: "User deleted"})
}
