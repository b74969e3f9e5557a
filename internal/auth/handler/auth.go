package handler

import (
	"encoding/json"
	"net/http"

	"mediq/internal/auth/service"
	httputil "mediq/pkg/http"
	"mediq/pkg/logger"
	"mediq/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	log     *logger.Logger
}

// TokenResponse is returned by register and login.
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	Message      string `json:"message"`
}

// AccessTokenResponse is returned by the refresh operation.
type AccessTokenResponse struct {
	AccessToken string `json:"accessToken"`
	Message     string `json:"message"`
}

func NewAuthHandler(service service.AuthService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		log:     log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/register", h.Register)
	router.POST("/api/v1/login", h.Login)
	router.POST("/api/v1/refreshToken", h.Refresh)
	router.DELETE("/api/v1/refreshToken", h.Logout)
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Register")
		return
	}

	_, pair, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.writeErr(w, "Register", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusCreated, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "Account created successfully",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Register", "operation", "WriteJSON", "error", err)
	}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Login")
		return
	}

	_, pair, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.writeErr(w, "Login", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, TokenResponse{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		Message:      "Login successful",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Login", "operation", "WriteJSON", "error", err)
	}
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Refresh")
		return
	}

	accessToken, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		h.writeErr(w, "Refresh", err)
		return
	}

	if err := httputil.WriteJSON(w, http.StatusOK, AccessTokenResponse{
		AccessToken: accessToken,
		Message:     "Access token created",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", "Refresh", "operation", "WriteJSON", "error", err)
	}
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req model.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeBadRequest(w, "Logout")
		return
	}

	if err := h.service.Logout(r.Context(), req.RefreshToken); err != nil {
		h.writeErr(w, "Logout", err)
		return
	}

	if err := httputil.WriteMessage(w, http.StatusOK, "Logged out"); err != nil {
		h.log.Error("failed to write message response", "handler", "Logout", "operation", "WriteMessage", "error", err)
	}
}

func (h *AuthHandler) writeBadRequest(w http.ResponseWriter, handlerName string) {
	if err := httputil.WriteJSON(w, http.StatusBadRequest, httputil.ErrorResponse{
		Error: "Invalid request body",
	}); err != nil {
		h.log.Error("failed to write JSON response", "handler", handlerName, "operation", "WriteJSON", "error", err)
	}
}

func (h *AuthHandler) writeErr(w http.ResponseWriter, handlerName string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handlerName, "operation", "WriteError", "error", writeErr)
	}
}
