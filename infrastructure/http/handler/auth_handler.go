package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/http/middleware"
	"github.com/swairua/medplus/infrastructure/http/response"
)

// AuthHandler issues the bearer credentials the mutation pipeline checks.
type AuthHandler struct {
	auth  inbound.AuthUseCase
	limit *middleware.RateLimitMiddleware
}

func NewAuthHandler(auth inbound.AuthUseCase, limit *middleware.RateLimitMiddleware) *AuthHandler {
	return &AuthHandler{auth: auth, limit: limit}
}

func (h *AuthHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/auth/login", h.limit.RateLimitFunc(h.Login)).Methods("POST")
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Success bool         `json:"success"`
	Token   string       `json:"token"`
	User    *entity.User `json:"user"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	result, err := h.auth.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromAppError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, loginResponse{
		Success: true,
		Token:   result.Token,
		User:    result.User,
	})
}
