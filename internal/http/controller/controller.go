package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-console/internal/auth"
	"github.com/iyhunko/inventory-console/internal/catalog"
	"github.com/iyhunko/inventory-console/internal/model"
	"github.com/iyhunko/inventory-console/internal/notify"
	"github.com/iyhunko/inventory-console/internal/remote"
	"github.com/iyhunko/inventory-console/internal/repository"
	"github.com/iyhunko/inventory-console/internal/service"
)

// Controller handles the console HTTP requests.
type Controller struct {
	engine  *service.Engine
	gate    *auth.Gate
	center  *notify.Center
	journal repository.Repository
}

// New creates a Controller. journal may be nil when no journal database is configured.
func New(engine *service.Engine, gate *auth.Gate, center *notify.Center, journal repository.Repository) *Controller {
	return &Controller{
		engine:  engine,
		gate:    gate,
		center:  center,
		journal: journal,
	}
}

// Ping handles the HTTP GET request for health check endpoint.
func (con *Controller) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "pong",
	})
}

// abortWithError maps domain errors onto HTTP statuses.
func abortWithError(c *gin.Context, err error) {
	var validationErr *model.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid product", "fields": validationErr.Fields})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, notify.ErrNotificationNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrMutationsInFlight):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, remote.ErrRemote):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrNotAuthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
