package handler

import (
	"net/http"
	"strconv"
	"time"

	"woodify/internal/domain/model"
	"woodify/internal/repository"
	"woodify/internal/usecase"

	"github.com/labstack/echo/v4"
)

type RequestListResponse struct {
	Items   []model.QuoteRequest `json:"items"`
	Loading bool                 `json:"loading"`
	Stale   bool                 `json:"stale"`
}

type StatusUpdateRequest struct {
	Status string `json:"status"`
}

// /admin/requests と /admin/audit-logs
type AdminRequestHandler struct {
	manager *usecase.RequestManager
	audit   repository.AuditLogRepository
}

// DI
func NewAdminRequestHandler(manager *usecase.RequestManager, audit repository.AuditLogRepository) *AdminRequestHandler {
	return &AdminRequestHandler{manager: manager, audit: audit}
}

func (h *AdminRequestHandler) RegisterRoutes(admin *echo.Group) {
	admin.GET("/requests", h.listRequests)
	admin.GET("/requests/stats", h.stats)
	admin.PATCH("/requests/:id/status", h.updateStatus)
	admin.GET("/audit-logs", h.listAuditLogs)
}

func (h *AdminRequestHandler) listRequests(c echo.Context) error {
	items := h.manager.Requests(usecase.RequestFilter{
		Status: c.QueryParam("status"),
		Search: c.QueryParam("search"),
		Sort:   c.QueryParam("sort"),
	})
	return c.JSON(http.StatusOK, RequestListResponse{
		Items:   items,
		Loading: h.manager.Loading(),
		Stale:   h.manager.Err() != nil,
	})
}

func (h *AdminRequestHandler) stats(c echo.Context) error {
	return c.JSON(http.StatusOK, h.manager.Stats(time.Now()))
}

func (h *AdminRequestHandler) updateStatus(c echo.Context) error {
	actor, ok := actorFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "unauthorized"})
	}

	var req StatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	if err := h.manager.UpdateStatus(c.Request().Context(), actor, c.Param("id"), model.QuoteStatus(req.Status)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Message: "status updated"})
}

// ?resource_type=&resource_id=&action=&limit=&offset=
func (h *AdminRequestHandler) listAuditLogs(c echo.Context) error {
	f := repository.AuditLogFilter{Limit: 50}

	if v := c.QueryParam("resource_type"); v != "" {
		rt := model.AuditResourceType(v)
		f.ResourceType = &rt
	}
	if v := c.QueryParam("resource_id"); v != "" {
		f.ResourceID = &v
	}
	if v := c.QueryParam("action"); v != "" {
		a := model.AuditAction(v)
		f.Action = &a
	}
	if v := c.QueryParam("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 200 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		f.Limit = n
	}
	if v := c.QueryParam("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid offset"})
		}
		f.Offset = n
	}

	logs, err := h.audit.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
	return c.JSON(http.StatusOK, logs)
}
