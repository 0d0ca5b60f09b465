package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/pratyek/grocery-app/internal/middleware"
	"github.com/pratyek/grocery-app/internal/usecase"
)

type AdminAuditHandler struct {
	uc *usecase.AuditLogUsecase
}

func NewAdminAuditHandler(uc *usecase.AuditLogUsecase) *AdminAuditHandler {
	return &AdminAuditHandler{uc: uc}
}

type auditLogsResponse struct {
	Logs []usecase.AuditLogOutput `json:"logs"`
}

func (h *AdminAuditHandler) RegisterRoutes(api *echo.Group, authMW, adminMW echo.MiddlewareFunc) {
	api.GET("/admin/audit-logs", h.list, authMW, adminMW)
}

func (h *AdminAuditHandler) list(c echo.Context) error {
	in := usecase.ListAuditLogsInput{
		Action:       c.QueryParam("action"),
		ResourceType: c.QueryParam("resourceType"),
	}
	var ok bool
	if in.Limit, ok = queryInt(c, "limit"); !ok {
		return badRequest(c, "limit must be a number")
	}
	if in.Offset, ok = queryInt(c, "offset"); !ok {
		return badRequest(c, "offset must be a number")
	}
	for name, dst := range map[string]*int64{"resourceId": &in.ResourceID, "actorUserId": &in.ActorUserID} {
		if v := c.QueryParam(name); v != "" {
			n, err := strconv.ParseInt(v, 10, 64)
			if err != nil {
				return writeError(c, usecase.NewValidationError(name, name+" must be a number"))
			}
			*dst = n
		}
	}

	out, err := h.uc.List(c.Request().Context(), middleware.ActorFromContext(c), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, auditLogsResponse{Logs: out})
}
