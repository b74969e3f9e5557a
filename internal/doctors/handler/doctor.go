package handler

import (
	"encoding/json"
	"net/http"

	"mediq/internal/doctors/service"
	apperrors "mediq/pkg/errors"
	httputil "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/middleware"
	"mediq/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type DoctorHandler struct {
	service service.DoctorService
	guard   *middleware.AuthGuard
	log     *logger.Logger
}

func NewDoctorHandler(service service.DoctorService, guard *middleware.AuthGuard, log *logger.Logger) *DoctorHandler {
	return &DoctorHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

// RegisterRoutes keeps list and get public, profile mutation requires a
// session.
func (h *DoctorHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/doctors", h.GetAll)
	router.GET("/api/v1/doctors/:id", h.GetByID)
	router.POST("/api/v1/doctors", h.guard.Authenticate(h.Create))
	router.PUT("/api/v1/doctors/:id", h.guard.Authenticate(h.Update))
	router.DELETE("/api/v1/doctors/:id", h.guard.Authenticate(h.Delete))
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeErr(w, "Create", apperrors.Forbidden("You are not authorised"))
		return
	}

	var doctor model.Doctor
	if err := json.NewDecoder(r.Body).Decode(&doctor); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), user.ID, &doctor); err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, doctor); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *DoctorHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	doctors, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, doctors, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *DoctorHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	doctor, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, doctor); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.DoctorUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update")
		return
	}

	doctor, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, doctor); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeErr(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *DoctorHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *DoctorHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}
