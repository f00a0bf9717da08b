package routes

import (
	"time"

	"go-restaurant-ordering/checkout"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/realtime"
	"go-restaurant-ordering/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

// Services is what the handlers are built from.
type Services struct {
	Store    store.Store
	Checkout *checkout.Service
	// Payments is nil when online payment is not configured.
	Payments payment.Provider
	Hub      *realtime.Hub
	Tokens   *helpers.TokenIssuer
	Sessions sessions.Store
	// Location cuts order days when a request names no time zone.
	Location *time.Location
}

// Register mounts every route on the engine.
func Register(router *gin.Engine, s Services) {
	UserRoutes(router, s)
	MenuRoutes(router, s)
	CartRoutes(router, s)
	OrderRoutes(router, s)
}
