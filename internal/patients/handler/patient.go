package handler

import (
	"encoding/json"
	"net/http"

	"mediq/internal/patients/service"
	apperrors "mediq/pkg/errors"
	httputil "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/middleware"
	"mediq/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type PatientHandler struct {
	service service.PatientService
	guard   *middleware.AuthGuard
	log     *logger.Logger
}

func NewPatientHandler(service service.PatientService, guard *middleware.AuthGuard, log *logger.Logger) *PatientHandler {
	return &PatientHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

// RegisterRoutes requires a session on every patient route. Patient
// records carry contact details, unlike the public doctor directory.
func (h *PatientHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/patients", h.guard.Authenticate(h.GetAll))
	router.GET("/api/v1/patients/:id", h.guard.Authenticate(h.GetByID))
	router.POST("/api/v1/patients", h.guard.Authenticate(h.Create))
	router.PUT("/api/v1/patients/:id", h.guard.Authenticate(h.Update))
	router.DELETE("/api/v1/patients/:id", h.guard.Authenticate(h.Delete))
}

func (h *PatientHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeErr(w, "Create", apperrors.Forbidden("You are not authorised"))
		return
	}

	var patient model.Patient
	if err := json.NewDecoder(r.Body).Decode(&patient); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}

	if err := h.service.Create(r.Context(), user.ID, &patient); err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, patient); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *PatientHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	patients, totalCount, err := h.service.GetAll(r.Context(), limit, offset)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, patients, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func (h *PatientHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	patient, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, patient); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PatientHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.PatientUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update")
		return
	}

	patient, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, patient); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *PatientHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeErr(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *PatientHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *PatientHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}
