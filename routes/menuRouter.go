package routes

import (
	controller "go-restaurant-ordering/controllers"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/models"

	"github.com/gin-gonic/gin"
)

func MenuRoutes(incomingRoutes *gin.Engine, s Services) {
	incomingRoutes.GET("/api/menu", controller.GetMenu(s.Store))
	incomingRoutes.GET("/api/menu/search", controller.SearchMenu(s.Store))
	incomingRoutes.GET("/api/menu/items/:id", controller.GetMenuItem(s.Store))
	incomingRoutes.GET("/api/delivery-areas/:postal_code", controller.GetDeliveryArea(s.Store))

	admin := incomingRoutes.Group("/api", middleware.Authentication(s.Tokens), middleware.RequireRole(models.RoleAdmin))
	admin.POST("/menu/items", controller.CreateMenuItem(s.Store))
	admin.POST("/option-groups", controller.CreateOptionGroup(s.Store))
	admin.POST("/delivery-areas", controller.CreateDeliveryArea(s.Store))
}
