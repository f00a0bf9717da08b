package controllers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"go-restaurant-ordering/cart"
	"go-restaurant-ordering/checkout"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/store"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator"
)

var validate = validator.New()

const requestTimeout = 10 * time.Second

func requestContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request.Context(), requestTimeout)
}

func badRequest(c *gin.Context, field, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": msg, "field": field})
}

// respondError maps domain errors onto status codes. Unexpected errors are
// logged and answered without detail.
func respondError(c *gin.Context, err error) {
	var (
		cartErr     *cart.ValidationError
		checkoutErr *checkout.ValidationError
		submitErr   *checkout.SubmitError
		fieldErrs   validator.ValidationErrors
	)
	switch {
	case errors.As(err, &cartErr):
		badRequest(c, cartErr.Field, cartErr.Message)
	case errors.As(err, &checkoutErr):
		badRequest(c, checkoutErr.Field, checkoutErr.Message)
	case errors.As(err, &fieldErrs) && len(fieldErrs) > 0:
		badRequest(c, fieldErrs[0].Field(), fmt.Sprintf("%s failed on %s", fieldErrs[0].Field(), fieldErrs[0].Tag()))
	case errors.Is(err, models.ErrInvalidStatus), errors.Is(err, models.ErrInvalidPatch):
		badRequest(c, "updates", err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, cart.ErrIndexOutOfRange):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrTerminalStatus):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrDuplicateEmail):
		c.JSON(http.StatusConflict, gin.H{"error": "email already exists"})
	case errors.As(err, &submitErr):
		c.JSON(http.StatusInternalServerError, gin.H{"error": checkout.FailureMessage})
	default:
		log.Printf("%s %s failed: %v", c.Request.Method, c.FullPath(), err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
