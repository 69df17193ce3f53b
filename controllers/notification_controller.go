package controllers

import (
	"net/http"
	"strconv"

	"office_equipment_borrowing/app"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{ *Srv }

func NewNotificationController(s *Srv) *NotificationController {
	return &NotificationController{Srv: s}
}

func (nc *NotificationController) ListNotifications(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	ns, err := nc.Repo.ListNotifications(c.Request.Context(), c.GetString("userID"), limit)
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"notifications": ns})
}

func (nc *NotificationController) UnreadCount(c *gin.Context) {
	n, err := nc.Repo.UnreadNotificationCount(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"count": n})
}

func (nc *NotificationController) MarkRead(c *gin.Context) {
	n, err := nc.Repo.MarkNotificationRead(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "notification marked as read", "notification": n})
}

func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	if err := nc.Repo.MarkAllNotificationsRead(c.Request.Context(), c.GetString("userID")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "all notifications marked as read"})
}

func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	if err := nc.Repo.DeleteNotification(c.Request.Context(), c.GetString("userID"), c.Param("id")); err != nil {
		httpError(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"message": "notification deleted"})
}
