package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"mediq/internal/appointments/service"
	apperrors "mediq/pkg/errors"
	httputil "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/middleware"
	"mediq/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AppointmentHandler struct {
	service service.AppointmentService
	guard   *middleware.AuthGuard
	log     *logger.Logger
}

func NewAppointmentHandler(service service.AppointmentService, guard *middleware.AuthGuard, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/appointments", h.guard.Authenticate(h.GetAll))
	router.GET("/api/v1/appointments/:id", h.guard.Authenticate(h.GetByID))
	router.POST("/api/v1/appointments", h.guard.Protect(h.Create, model.RoleDoctor))
	router.PUT("/api/v1/appointments/:id", h.guard.Protect(h.Update, model.RoleDoctor, model.RoleAdmin))
	router.DELETE("/api/v1/appointments/:id", h.guard.Protect(h.Delete, model.RoleDoctor, model.RoleAdmin))
}

func (h *AppointmentHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeErr(w, "Create", apperrors.Forbidden("You are not authorised"))
		return
	}

	var req model.AppointmentCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}

	appt, err := h.service.Create(r.Context(), user.ID, &req)
	if err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, appt); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *AppointmentHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	filter, err := extractAppointmentFilter(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	appts, totalCount, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, appts, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func extractAppointmentFilter(r *http.Request) (model.AppointmentFilter, error) {
	query := r.URL.Query()
	filter := model.AppointmentFilter{
		DoctorID: query.Get("doctorId"),
	}

	booked, err := httputil.ExtractBoolFilter(r, "booked")
	if err != nil {
		return filter, err
	}
	filter.Booked = booked

	if fromStr := query.Get("fromTime"); fromStr != "" {
		from, err := time.Parse(time.RFC3339, fromStr)
		if err != nil {
			return filter, apperrors.InvalidInput("fromTime must be an RFC 3339 timestamp")
		}
		filter.FromTime = &from
	}

	if toStr := query.Get("toTime"); toStr != "" {
		to, err := time.Parse(time.RFC3339, toStr)
		if err != nil {
			return filter, apperrors.InvalidInput("toTime must be an RFC 3339 timestamp")
		}
		filter.ToTime = &to
	}

	return filter, nil
}

func (h *AppointmentHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	appt, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.AppointmentUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update")
		return
	}

	appt, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, appt); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *AppointmentHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeErr(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *AppointmentHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *AppointmentHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}
