package controller

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// LoginRequest represents the request body for signing in.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login handles the HTTP POST request for signing in.
func (con *Controller) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := con.gate.Login(req.Username, req.Password)
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

// Logout handles the HTTP POST request for signing out.
func (con *Controller) Logout(c *gin.Context) {
	con.gate.Logout()
	c.Status(http.StatusNoContent)
}

// Me returns the signed-in operator.
func (con *Controller) Me(c *gin.Context) {
	user, err := con.gate.Current()
	if err != nil {
		abortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}
