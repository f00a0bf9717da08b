package routes

import (
	controller "go-restaurant-ordering/controllers"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

func CartRoutes(incomingRoutes *gin.Engine, s Services) {
	shop := incomingRoutes.Group("/api", sessions.Sessions(controller.CartSessionName, s.Sessions))
	shop.GET("/cart", controller.GetCart(s.Store))
	shop.POST("/cart/items", controller.AddCartItem(s.Store, s.Store))
	shop.PATCH("/cart/items/:index", controller.UpdateCartItem(s.Store))
	shop.DELETE("/cart/items/:index", controller.RemoveCartItem(s.Store))
	shop.DELETE("/cart", controller.ClearCart(s.Store))
	shop.PATCH("/cart/customer", controller.UpdateCustomer(s.Store))
	shop.POST("/checkout", controller.Checkout(s.Store, s.Checkout, s.Hub))
}
