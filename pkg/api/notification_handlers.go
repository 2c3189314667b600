package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"

	"ridebook/pkg/models"
)

func (h *Handler) ListNotifications(c *gin.Context) {
	unread := cast.ToBool(c.Query("unread"))

	list, err := h.svc.Notification().List(c.Request.Context(), requester(c).UserID, unread)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if list == nil {
		list = []*models.Notification{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) MarkNotificationRead(c *gin.Context) {
	if err := h.svc.Notification().MarkRead(c.Request.Context(), requester(c).UserID, c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
