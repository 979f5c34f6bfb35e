package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/swairua/medplus/application/port/inbound"
	"github.com/swairua/medplus/application/port/outbound"
	"github.com/swairua/medplus/domain/entity"
	"github.com/swairua/medplus/infrastructure/http/middleware"
	"github.com/swairua/medplus/infrastructure/http/response"
)

// AuditHandler is the read-only surface over recorded audit events.
type AuditHandler struct {
	query inbound.AuditQuery
	auth  *middleware.AuthMiddleware
}

func NewAuditHandler(query inbound.AuditQuery, auth *middleware.AuthMiddleware) *AuditHandler {
	return &AuditHandler{query: query, auth: auth}
}

func (h *AuditHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/audit-logs",
		h.auth.RequireRole(entity.RoleAdmin, "audit_log", h.ListAuditLogs),
	).Methods("GET")
}

type auditListResponse struct {
	Success bool                 `json:"success"`
	Logs    []entity.AuditRecord `json:"logs"`
}

func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	filter := outbound.AuditFilter{
		Text: r.URL.Query().Get("q"),
	}
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if limit, err := strconv.Atoi(limitStr); err == nil {
			filter.Limit = limit
		}
	}

	logs, err := h.query.Recent(r.Context(), filter)
	if err != nil {
		response.InternalServerError(w, "Failed to query audit logs")
		return
	}
	if logs == nil {
		logs = []entity.AuditRecord{}
	}

	response.JSON(w, http.StatusOK, auditListResponse{Success: true, Logs: logs})
}
