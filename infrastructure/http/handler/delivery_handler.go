package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/http/middleware"
	"github.com/swairua/medplus/infrastructure/http/response"
)

// DeliveryHandler exposes delivery note deletion with inventory reversal.
type DeliveryHandler struct {
	delivery inbound.DeliveryUseCase
	auth     *middleware.AuthMiddleware
	limit    *middleware.RateLimitMiddleware
}

func NewDeliveryHandler(delivery inbound.DeliveryUseCase, auth *middleware.AuthMiddleware, limit *middleware.RateLimitMiddleware) *DeliveryHandler {
	return &DeliveryHandler{delivery: delivery, auth: auth, limit: limit}
}

func (h *DeliveryHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/delivery-notes/{id}",
		h.limit.RateLimitFunc(h.auth.RequireRole(entity.RoleAdmin, entity.EntityTypeDeliveryNote, h.DeleteDeliveryNote)),
	).Methods("DELETE")
}

type deleteResponse struct {
	Success           bool `json:"success"`
	ReversedMovements int  `json:"reversed_movements"`
}

func (h *DeliveryHandler) DeleteDeliveryNote(w http.ResponseWriter, r *http.Request) {
	noteID := mux.Vars(r)["id"]
	if noteID == "" {
		response.BadRequest(w, "Delivery note ID is required")
		return
	}

	actor := middleware.GetPrincipal(r.Context())

	result, err := h.delivery.DeleteDeliveryNote(r.Context(), actor, noteID)
	if err != nil {
		response.FromAppError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, deleteResponse{
		Success:           true,
		ReversedMovements: result.ReversedMovements,
	})
}
