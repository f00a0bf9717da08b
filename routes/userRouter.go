package routes

import (
	controller "go-restaurant-ordering/controllers"

	"github.com/gin-gonic/gin"
)

func UserRoutes(incomingRoutes *gin.Engine, s Services) {
	incomingRoutes.POST("/users/signup", controller.SignUp(s.Store, s.Tokens))
	incomingRoutes.POST("/users/login", controller.Login(s.Store, s.Tokens))
}
