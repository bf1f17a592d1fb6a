package job

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-jobly/internal/job/entity"
	"github.com/ovaphlow/pitchfork/service-jobly/internal/web"
)

type Handler struct {
	svc    *Service
	logger *zap.SugaredLogger
}

func NewHandler(svc *Service, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, logger: logger}
}

type CreateRequest struct {
	web.TokenField
	ID            *int64   `json:"id" validate:"omitempty,min=1"`
	Title         string   `json:"title" validate:"required,max=255"`
	Salary        *float64 `json:"salary" validate:"required,min=0"`
	Equity        *float64 `json:"equity" validate:"required,min=0,max=1"`
	CompanyHandle string   `json:"company_handle" validate:"required,max=64"`
}

type UpdateRequest struct {
	web.TokenField
	Title         *string  `json:"title" validate:"omitempty,min=1,max=255"`
	Salary        *float64 `json:"salary" validate:"omitempty,min=0"`
	Equity        *float64 `json:"equity" validate:"omitempty,min=0,max=1"`
	CompanyHandle *string  `json:"company_handle" validate:"omitempty,min=1,max=64"`
}

type jobResponse struct {
	Job *entity.Job `json:"job"`
}

type listResponse struct {
	Jobs []entity.Summary `json:"jobs"`
}

// Search handles GET /jobs?search=&min_salary=&min_equity=.
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var (
		f   entity.SearchFilter
		err error
	)
	f.Pattern = web.QueryString(q, "search")
	if f.MinSalary, err = web.QueryFloat(q, "min_salary", 0); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	if f.MinEquity, err = web.QueryFloat(q, "min_equity", 0); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	out, err := h.svc.Search(r.Context(), f)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, listResponse{Jobs: out})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	in := &entity.Job{
		Title:         req.Title,
		Salary:        *req.Salary,
		Equity:        *req.Equity,
		CompanyHandle: req.CompanyHandle,
	}
	if req.ID != nil {
		in.ID = *req.ID
	}
	j, err := h.svc.Create(r.Context(), in)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusCreated, jobResponse{Job: j})
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathInt64(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	j, err := h.svc.Get(r.Context(), id)
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusBadRequest)
		return
	}
	web.WriteJSON(w, http.StatusOK, jobResponse{Job: j})
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathInt64(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	var req UpdateRequest
	if err := web.Decode(r, &req); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	j, err := h.svc.Update(r.Context(), id, entity.Patch{
		Title:         req.Title,
		Salary:        req.Salary,
		Equity:        req.Equity,
		CompanyHandle: req.CompanyHandle,
	})
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, jobResponse{Job: j})
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := web.PathInt64(r, "id")
	if err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		web.WriteError(w, h.logger, err, http.StatusNotFound)
		return
	}
	web.WriteJSON(w, http.StatusOK, web.MessageBody{Message: "Job deleted"})
}
