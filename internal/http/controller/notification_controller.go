package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ListNotificationsRequest represents the query parameters for listing notifications.
type ListNotificationsRequest struct {
	All bool `form:"all"`
}

// ListNotifications handles the HTTP GET request for the operator notifications.
func (con *Controller) ListNotifications(c *gin.Context) {
	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": con.center.List(req.All)})
}

// DismissNotification handles the HTTP DELETE request for hiding a notification.
func (con *Controller) DismissNotification(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification ID"})
		return
	}

	if err := con.center.Dismiss(id); err != nil {
		abortWithError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
