package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/http/middleware"
	"github.com/swairua/medplus/infrastructure/http/response"
	"github.com/swairua/medplus/infrastructure/http/validator"
	"github.com/swairua/medplus/pkg/apperr"
)

// UserHandler exposes admin user provisioning.
type UserHandler struct {
	provisioning inbound.ProvisioningUseCase
	auth         *middleware.AuthMiddleware
	limit        *middleware.RateLimitMiddleware
}

func NewUserHandler(provisioning inbound.ProvisioningUseCase, auth *middleware.AuthMiddleware, limit *middleware.RateLimitMiddleware) *UserHandler {
	return &UserHandler{provisioning: provisioning, auth: auth, limit: limit}
}

func (h *UserHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/users/create",
		h.limit.RateLimitFunc(h.auth.RequireRole(entity.RoleAdmin, entity.EntityTypeUser, h.CreateUser)),
	).Methods("POST")
}

// provisionResponse is the success body: password present only when the
// secret was generated server-side.
type provisionResponse struct {
	Success  bool         `json:"success"`
	User     *entity.User `json:"user"`
	Password string       `json:"password,omitempty"`
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req inbound.ProvisionUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if !validator.ValidateRequired(req.Email) || !validator.ValidateRequired(req.FullName) {
		response.BadRequest(w, "Email and full name are required")
		return
	}
	if !validator.ValidateEmail(req.Email) {
		response.BadRequest(w, "Invalid email format")
		return
	}

	actor := middleware.GetPrincipal(r.Context())

	result, err := h.provisioning.ProvisionUser(r.Context(), actor, req)
	if err != nil {
		// The console's contract folds conflicts into 400 alongside
		// invalid input.
		if errors.Is(err, apperr.ErrConflict) || errors.Is(err, apperr.ErrInvalidInput) {
			response.BadRequest(w, apperr.Message(err))
			return
		}
		response.FromAppError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, provisionResponse{
		Success:  true,
		User:     result.User,
		Password: result.GeneratedPassword,
	})
}
