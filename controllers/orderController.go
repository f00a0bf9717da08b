package controllers

import (
	"net/http"
	"time"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/realtime"
	"go-restaurant-ordering/store"

	"github.com/gin-gonic/gin"
)

const dateLayout = "2006-01-02"

type statusRequest struct {
	OrderID     string             `json:"orderId" validate:"required"`
	OrderStatus models.OrderStatus `json:"orderStatus" validate:"required"`
}

type updateRequest struct {
	OrderID string            `json:"orderId" validate:"required"`
	Updates models.OrderPatch `json:"updates"`
}

// GetOrders lists the orders of one calendar day, or all orders when no date
// is given. Days are cut in defaultLoc unless the request names a tz.
func GetOrders(orders store.OrderStore, defaultLoc *time.Location) gin.HandlerFunc {
	if defaultLoc == nil {
		defaultLoc = time.UTC
	}
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var filter store.OrderFilter
		if date := c.Query("date"); date != "" {
			loc := defaultLoc
			if tz := c.Query("tz"); tz != "" {
				l, err := time.LoadLocation(tz)
				if err != nil {
					badRequest(c, "tz", "unknown time zone")
					return
				}
				loc = l
			}
			day, err := time.ParseInLocation(dateLayout, date, loc)
			if err != nil {
				badRequest(c, "date", "date must look like 2006-01-02")
				return
			}
			filter.From, filter.To = helpers.DayBounds(day, loc)
		}

		result, total, err := orders.ListOrders(ctx, filter)
		if err != nil {
			respondError(c, err)
			return
		}
		if result == nil {
			result = []models.Order{}
		}
		c.JSON(http.StatusOK, gin.H{"orders": result, "totalDocs": total})
	}
}

// GetOrder backs the confirmation page, so it only returns the public view.
func GetOrder(orders store.OrderStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		order, err := orders.FindOrder(ctx, c.Param("order_id"))
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, order.Public())
	}
}

func UpdateOrderStatus(orders store.OrderStore, notifier realtime.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req statusRequest
		if err := c.BindJSON(&req); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(c, err)
			return
		}
		applyPatch(c, orders, notifier, req.OrderID, models.SetStatus(req.OrderStatus))
	}
}

func UpdateOrder(orders store.OrderStore, notifier realtime.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateRequest
		if err := c.BindJSON(&req); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(c, err)
			return
		}
		applyPatch(c, orders, notifier, req.OrderID, req.Updates)
	}
}

func applyPatch(c *gin.Context, orders store.OrderStore, notifier realtime.Notifier, orderID string, patch models.OrderPatch) {
	if err := patch.Validate(); err != nil {
		respondError(c, err)
		return
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	order, err := orders.UpdateOrder(ctx, orderID, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	notifier.NotifyOrderUpdated(order)
	c.JSON(http.StatusOK, gin.H{"success": true, "order": order})
}
