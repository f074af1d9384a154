// Package handlers contains the HTTP handlers of the duty service.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"dutyservice/internal/core"
	"dutyservice/internal/types"
)

// DutyService is the contract the handlers need. *duty.Service satisfies it.
type DutyService interface {
	List(ctx context.Context) types.Result
	Get(ctx context.Context, id string) types.Result
	Create(ctx context.Context, name string) types.Result
	Update(ctx context.Context, d types.Duty) types.Result
	Upsert(ctx context.Context, duties []types.Duty) types.Result
}

// --- Request Models ---

// CreateDutyRequest is the body of POST /duty.
type CreateDutyRequest struct {
	Name string `json:"name" validate:"required"`
}

// UpdateDutyRequest is the body of PUT /duty.
type UpdateDutyRequest struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// UpsertDutiesRequest is the body of POST /duties. Items whose id starts
// with "temp-" are inserted; the others are updated.
type UpsertDutiesRequest struct {
	Duties []DutyInput `json:"duties" validate:"required,dive"`
}

// DutyInput is one item of UpsertDutiesRequest.
type DutyInput struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// --- Handler ---

// DutyHandler serves the duty routes.
type DutyHandler struct {
	service   DutyService
	validator *core.Validator
	logger    zerolog.Logger
}

// NewDutyHandler creates a DutyHandler.
func NewDutyHandler(svc DutyService, v *core.Validator, l zerolog.Logger) *DutyHandler {
	if v == nil {
		v = core.NewValidator()
	}
	return &DutyHandler{
		service:   svc,
		validator: v,
		logger:    l.With().Str("component", "duty_handler").Logger(),
	}
}

// RegisterRoutes mounts the duty routes.
func (h *DutyHandler) RegisterRoutes(r chi.Router) {
	r.Get("/duty/{id}", h.Get)
	r.Get("/duties", h.List)
	r.Post("/duty", h.Create)
	r.Post("/duties", h.Upsert)
	r.Put("/duty", h.Update)
	r.HandleFunc("/", h.Root)
}

// Get handles GET /duty/{id}.
func (h *DutyHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.validator.ValidateVar("id", id, "required,uuid"); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	h.writeOne(w, r, "GET /duty/{id}", h.service.Get(r.Context(), id))
}

// List handles GET /duties.
func (h *DutyHandler) List(w http.ResponseWriter, r *http.Request) {
	h.writeMany(w, r, "GET /duties", h.service.List(r.Context()))
}

// Create handles POST /duty.
func (h *DutyHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDutyRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	h.writeOne(w, r, "POST /duty", h.service.Create(r.Context(), req.Name))
}

// Upsert handles POST /duties and returns the full list afterwards.
func (h *DutyHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req UpsertDutiesRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	duties := make([]types.Duty, 0, len(req.Duties))
	for _, d := range req.Duties {
		duties = append(duties, types.Duty{ID: d.ID, Name: d.Name})
	}

	h.writeMany(w, r, "POST /duties", h.service.Upsert(r.Context(), duties))
}

// Update handles PUT /duty.
func (h *DutyHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateDutyRequest
	if err := core.DecodeJSON(w, r, &req); err != nil {
		core.Error(w, r, err)
		return
	}
	if err := h.validator.ValidateStruct(req); err != nil {
		h.invalidInput(w, r, err)
		return
	}

	h.writeOne(w, r, "PUT /duty", h.service.Update(r.Context(), types.Duty{ID: req.ID, Name: req.Name}))
}

// Root answers every method on "/".
func (h *DutyHandler) Root(w http.ResponseWriter, r *http.Request) {
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: "Hello"})
}

// writeOne answers with the first row of a successful result.
func (h *DutyHandler) writeOne(w http.ResponseWriter, r *http.Request, route string, res types.Result) {
	if !h.checkResult(w, r, route, res) {
		return
	}
	d, ok := res.First()
	if !ok {
		h.writeFailure(w, r, route, &types.QueryError{Name: types.NotFoundError, Description: "no rows"})
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: d})
}

func (h *DutyHandler) writeMany(w http.ResponseWriter, r *http.Request, route string, res types.Result) {
	if !h.checkResult(w, r, route, res) {
		return
	}
	core.JSON(w, r, http.StatusOK, core.APIResponse{Data: res.Data})
}

// checkResult writes the error response for a failed result and reports
// whether the caller should continue.
func (h *DutyHandler) checkResult(w http.ResponseWriter, r *http.Request, route string, res types.Result) bool {
	if res.OK() {
		return true
	}
	h.writeFailure(w, r, route, res.Err)
	return false
}

func (h *DutyHandler) writeFailure(w http.ResponseWriter, r *http.Request, route string, qErr *types.QueryError) {
	ev := h.logger.Warn()
	if qErr.Name.HTTPStatus() >= http.StatusInternalServerError {
		ev = h.logger.Error()
	}
	ev.Str("route", route).
		Str("name", string(qErr.Name)).
		Str("description", qErr.Description).
		Str("request_id", types.GetRequestID(r.Context())).
		Msg("request failed")
	core.Error(w, r, qErr)
}

// invalidInput prefixes the validation message with the generic input error
// text and answers 422.
func (h *DutyHandler) invalidInput(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *types.AppError
	if !errors.As(err, &appErr) || appErr.Code != types.ErrCodeValidationInvalidInput {
		core.Error(w, r, err)
		return
	}
	core.Error(w, r, types.NewAppErrorWithDetails(
		appErr.Code,
		types.InvalidAPIInputError.Message()+" "+appErr.Message,
		appErr.Err,
		appErr.Details,
	))
}
