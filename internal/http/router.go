package http

import (
	"github.com/gin-gonic/gin"
	"github.com/iyhunko/inventory-console/internal/http/controller"
	"github.com/iyhunko/inventory-console/internal/http/middleware"
)

func InitRouter(server *gin.Engine, mw *middleware.Middleware, ctr *controller.Controller) *gin.Engine {
	// Apply recovery middleware globally to prevent panics from crashing the server
	server.Use(middleware.Recovery(), middleware.Logger(), middleware.CORS())

	server.GET("/ping", ctr.Ping)
	server.POST("/login", ctr.Login)
	server.POST("/logout", ctr.Logout)
	server.GET("/me", ctr.Me)

	protected := server.Group("", mw.RequireUser())
	{
		products := protected.Group("/products")
		products.GET("", ctr.ListProducts)
		products.GET("/categories", ctr.ListCategories)
		products.POST("/reload", ctr.Reload)
		products.POST("", ctr.CreateProduct)
		products.PUT("/:id", ctr.UpdateProduct)
		products.DELETE("/:id", ctr.DeleteProduct)

		protected.GET("/mutations", ctr.ListMutations)
		protected.GET("/analytics", ctr.Analytics)
		protected.GET("/journal", ctr.ListJournal)

		notifications := protected.Group("/notifications")
		notifications.GET("", ctr.ListNotifications)
		notifications.DELETE("/:id", ctr.DismissNotification)
	}

	return server
}
