package routes

import (
	"go-restaurant-ordering/controllers"
	"go-restaurant-ordering/middleware"
	"go-restaurant-ordering/models"

	"github.com/gin-gonic/gin"
)

func OrderRoutes(incomingRoutes *gin.Engine, s Services) {
	incomingRoutes.GET("/api/orders/by-id/:order_id", controllers.GetOrder(s.Store))
	incomingRoutes.POST("/api/webhook", controllers.PaymentWebhook(s.Payments, s.Store, s.Hub))

	staff := incomingRoutes.Group("/", middleware.Authentication(s.Tokens), middleware.RequireRole(models.RoleAdmin, models.RoleKitchen))
	staff.GET("/api/orders", controllers.GetOrders(s.Store, s.Location))
	staff.PATCH("/api/orders/update-status", controllers.UpdateOrderStatus(s.Store, s.Hub))
	staff.PATCH("/api/orders/update", controllers.UpdateOrder(s.Store, s.Hub))
	staff.GET("/ws", controllers.HandleWebSocket(s.Hub))
}
