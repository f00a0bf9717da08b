package controllers

import (
	"context"
	"net/http"
	"strconv"

	"go-restaurant-ordering/cart"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartSessionName is the cookie the shopper's cart id travels in.
const CartSessionName = "cart_session"

const cartIDKey = "cart_id"

type quantityRequest struct {
	Quantity *int `json:"quantity"`
}

// cartID returns the session's cart id, minting one on first visit.
func cartID(c *gin.Context) (string, error) {
	session := sessions.Default(c)
	if id, ok := session.Get(cartIDKey).(string); ok && id != "" {
		return id, nil
	}
	id := uuid.NewString()
	session.Set(cartIDKey, id)
	if err := session.Save(); err != nil {
		return "", err
	}
	return id, nil
}

func loadCart(ctx context.Context, c *gin.Context, carts store.CartStore) (*cart.Store, error) {
	id, err := cartID(c)
	if err != nil {
		return nil, err
	}
	s := cart.New(cart.SessionBackend{Carts: carts, SessionID: id})
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func cartResponse(s *cart.Store) gin.H {
	items := s.Items()
	customer := s.Customer()
	total := helpers.CalculateFinalTotal(items, customer.DeliveryMethod)
	if items == nil {
		items = []models.CartLineItem{}
	}
	return gin.H{
		"items":            items,
		"customer":         customer,
		"subtotal":         helpers.ToAmount(helpers.CalculateSubtotal(items)),
		"deliveryCosts":    helpers.ToAmount(helpers.CalculateDeliveryCosts(customer.DeliveryMethod)),
		"total":            helpers.ToAmount(total),
		"formattedTotal":   helpers.FormatEuro(total),
		"totalItems":       helpers.GetTotalItems(items),
		"deliveryEstimate": helpers.GetDeliveryEstimate(items),
	}
}

func GetCart(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(s))
	}
}

// AddCartItem prices the requested configuration against the menu and puts
// it in the cart.
func AddCartItem(carts store.CartStore, menu store.MenuStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req cart.ItemRequest
		if err := c.BindJSON(&req); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(c, err)
			return
		}
		itemID, err := primitive.ObjectIDFromHex(req.MenuItemID)
		if err != nil {
			badRequest(c, "menuItemId", "invalid menu item id")
			return
		}
		item, err := menu.FindMenuItem(ctx, itemID)
		if err != nil {
			respondError(c, err)
			return
		}
		groups, err := menu.FindOptionGroups(ctx, item.OptionGroups)
		if err != nil {
			respondError(c, err)
			return
		}
		line, err := cart.Configure(item, groups, req)
		if err != nil {
			respondError(c, err)
			return
		}

		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.AddItem(ctx, line); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, cartResponse(s))
	}
}

func UpdateCartItem(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			badRequest(c, "index", "index must be a number")
			return
		}
		var req quantityRequest
		if err := c.BindJSON(&req); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if req.Quantity == nil {
			badRequest(c, "quantity", "quantity is required")
			return
		}

		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.UpdateQuantity(ctx, index, *req.Quantity); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(s))
	}
}

func RemoveCartItem(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		index, err := strconv.Atoi(c.Param("index"))
		if err != nil {
			badRequest(c, "index", "index must be a number")
			return
		}
		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.RemoveItem(ctx, index); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(s))
	}
}

// ClearCart empties the cart and forgets the customer details.
func ClearCart(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.ClearAll(ctx); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(s))
	}
}

func UpdateCustomer(carts store.CartStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var patch models.CustomerPatch
		if err := c.BindJSON(&patch); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(patch); err != nil {
			respondError(c, err)
			return
		}
		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.UpdateCustomerInfo(ctx, patch); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, cartResponse(s))
	}
}
