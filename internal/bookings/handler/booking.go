package handler

import (
	"encoding/json"
	"net/http"

	"mediq/internal/bookings/service"
	apperrors "mediq/pkg/errors"
	httputil "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/middleware"
	"mediq/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type BookingHandler struct {
	service service.BookingService
	guard   *middleware.AuthGuard
	log     *logger.Logger
}

func NewBookingHandler(service service.BookingService, guard *middleware.AuthGuard, log *logger.Logger) *BookingHandler {
	return &BookingHandler{
		service: service,
		guard:   guard,
		log:     log,
	}
}

func (h *BookingHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/bookings", h.guard.Authenticate(h.GetAll))
	router.GET("/api/v1/bookings/:id", h.guard.Authenticate(h.GetByID))
	router.POST("/api/v1/bookings", h.guard.Protect(h.Create, model.RolePatient))
	router.PUT("/api/v1/bookings/:id", h.guard.Authenticate(h.Update))
	router.DELETE("/api/v1/bookings/:id", h.guard.Authenticate(h.Delete))
}

func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		h.writeErr(w, "Create", apperrors.Forbidden("You are not authorised"))
		return
	}

	var req model.BookingCreateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Create")
		return
	}

	booking, err := h.service.Create(r.Context(), user, &req)
	if err != nil {
		h.writeErr(w, "Create", err)
		return
	}

	if err := httputil.WriteCreated(w, booking); err != nil {
		h.log.Error("failed to write created response", "handler", "Create", "operation", "WriteCreated", "error", err)
	}
}

func (h *BookingHandler) GetAll(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	limit, offset, err := httputil.ExtractLimitOffset(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	filter, err := extractBookingFilter(r)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	bookings, totalCount, err := h.service.GetAll(r.Context(), filter, limit, offset)
	if err != nil {
		h.writeErr(w, "GetAll", err)
		return
	}

	if err := httputil.WritePaginated(w, bookings, totalCount, limit, offset); err != nil {
		h.log.Error("failed to write paginated response", "handler", "GetAll", "operation", "WritePaginated", "error", err)
	}
}

func extractBookingFilter(r *http.Request) (model.BookingFilter, error) {
	filter := model.BookingFilter{
		PatientID: r.URL.Query().Get("patientId"),
	}

	attended, err := httputil.ExtractBoolFilter(r, "attended")
	if err != nil {
		return filter, err
	}
	filter.Attended = attended

	feePaid, err := httputil.ExtractBoolFilter(r, "feePaid")
	if err != nil {
		return filter, err
	}
	filter.FeePaid = feePaid

	return filter, nil
}

func (h *BookingHandler) GetByID(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	booking, err := h.service.GetByID(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeErr(w, "GetByID", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "GetByID", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Update(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var updates model.BookingUpdate
	if err := json.NewDecoder(r.Body).Decode(&updates); err != nil {
		h.writeBadRequest(w, "Update")
		return
	}

	booking, err := h.service.Update(r.Context(), ps.ByName("id"), &updates)
	if err != nil {
		h.writeErr(w, "Update", err)
		return
	}

	if err := httputil.WriteSuccess(w, booking); err != nil {
		h.log.Error("failed to write success response", "handler", "Update", "operation", "WriteSuccess", "error", err)
	}
}

func (h *BookingHandler) Delete(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	if err := h.service.Delete(r.Context(), ps.ByName("id")); err != nil {
		h.writeErr(w, "Delete", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *BookingHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *BookingHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}
