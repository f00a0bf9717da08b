package controllers

import (
	"log"
	"net/http"

	"go-restaurant-ordering/checkout"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/realtime"
	"go-restaurant-ordering/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Checkout submits the session cart. The shopper is sent on with a 303 to
// either the payment page or the confirmation page.
func Checkout(carts store.CartStore, service *checkout.Service, notifier realtime.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		s, err := loadCart(ctx, c, carts)
		if err != nil {
			respondError(c, err)
			return
		}
		result, err := service.Submit(ctx, checkout.Request{Items: s.Items(), Customer: s.Customer()})
		if err != nil {
			respondError(c, err)
			return
		}
		if err := s.ClearAll(ctx); err != nil {
			log.Printf("clearing cart after order %s: %v", result.Order.OrderID, err)
		}
		notifier.NotifyNewOrder(result.Order)

		c.Header("Location", result.RedirectURL)
		c.JSON(http.StatusSeeOther, gin.H{"redirectUrl": result.RedirectURL, "orderId": result.Order.OrderID})
	}
}

// PaymentStatusFor maps a provider payment status onto the order's payment status.
func PaymentStatusFor(status string) models.PaymentStatus {
	switch status {
	case payment.StatusPaid:
		return models.PaymentPaid
	case payment.StatusFailed, payment.StatusCanceled, payment.StatusExpired:
		return models.PaymentNotPaid
	}
	return models.PaymentProcessing
}

// PaymentWebhook is called by the provider with only a payment id; the
// status is fetched back from the provider.
func PaymentWebhook(payments payment.Provider, orders store.OrderStore, notifier realtime.Notifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		paymentID := c.PostForm("id")
		if paymentID == "" {
			badRequest(c, "id", "payment id is required")
			return
		}
		if payments == nil {
			respondError(c, payment.ErrNotConfigured)
			return
		}
		p, err := payments.GetPayment(ctx, paymentID)
		if err != nil {
			respondError(c, err)
			return
		}
		orderDbID, err := primitive.ObjectIDFromHex(p.Metadata.OrderDbID)
		if err != nil {
			log.Printf("payment %s carries no usable order reference %q", p.ID, p.Metadata.OrderDbID)
			c.Status(http.StatusOK)
			return
		}
		order, err := orders.UpdateOrderByID(ctx, orderDbID, models.SetPaymentStatus(PaymentStatusFor(p.Status)))
		if err != nil {
			respondError(c, err)
			return
		}
		notifier.NotifyOrderUpdated(order)
		c.Status(http.StatusOK)
	}
}
