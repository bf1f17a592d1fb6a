package company

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/company/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
	"github.com/ovaphlow/pitchfork/service-jobly/pkg/sqlbuilder"
)

// Handler exposes the /companies endpoints.
type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

// CreateRequest is the POST /companies body.
type CreateRequest struct {
	web.TokenField
	Handle       string  `json:"handle" validate:"required,max=64"`
	Name         string  `json:"name" validate:"required,max=255"`
	NumEmployees int     `json:"num_employees" validate:"min=0"`
	Description  *string `json:"description"`
	LogoURL      *string `json:"logo_url" validate:"omitempty,url"`
}

// UpdateRequest is the PATCH /companies/{handle} body. The handle itself
// is not writable.
type UpdateRequest struct {
	web.TokenField
	Name         *string                     `json:"name" validate:"omitempty,min=1,max=255"`
	NumEmployees *int                        `json:"num_employees" validate:"omitempty,min=0"`
	Description  sqlbuilder.Nullable[string] `json:"description"`
	LogoURL      sqlbuilder.Nullable[string] `json:"logo_url" validate:"omitempty,url"`
}

type companyResponse struct {
	Company *entity.Company `json:"company"`
}

type listResponse struct {
	Companies []entity.Summary `json:"companies"`
}

// Search handles GET /companies?search=&min_employees=&max_employees=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := entity.NewSearchFilter()
	f.Pattern = web.QueryString(q, "search")
	var err error
	if f.MinEmployees, err = web.QueryInt(q, "min_employees", f.MinEmployees); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	if f.MaxEmployees, err = web.QueryInt(q, "max_employees", f.MaxEmployees); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	out, err := h.svc.Search(r.Context(), f)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, listResponse{Companies: out})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	c, err := h.svc.Create(r.Context(), &entity.Company{
		Handle:       req.Handle,
		Name:         req.Name,
		NumEmployees: req.NumEmployees,
		Description:  req.Description,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusCreated, companyResponse{Company: c})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.svc.Get(r.Context(), r.PathValue("handle"))
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, companyResponse{Company: c})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	c, err := h.svc.Update(r.Context(), r.PathValue("handle"), entity.Patch{
		Name:         req.Name,
		NumEmployees: req.NumEmployees,
		Description:  req.Description,
		LogoURL:      req.LogoURL,
	})
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, companyResponse{Company: c})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), r.PathValue("handle")); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.MessageBody{Message: "Company deleted"})
}
