package controllers

import (
	"errors"
	"net/http"
	"strings"

	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/models"
	"go-restaurant-ordering/store"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var passwordCost = bcrypt.DefaultCost

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SignUp creates a staff account. The very first account may be created
// without a token and always becomes an admin; after that an admin token is
// required.
func SignUp(users store.UserStore, issuer *helpers.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var user models.User
		if err := c.BindJSON(&user); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		user.Email = strings.ToLower(strings.TrimSpace(user.Email))

		count, err := users.CountUsers(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		if count == 0 {
			user.UserRole = models.RoleAdmin
		} else {
			claims, err := issuer.ValidateToken(c.Request.Header.Get("token"))
			if err != nil {
				c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
				return
			}
			if claims.User_role != models.RoleAdmin {
				c.JSON(http.StatusForbidden, gin.H{"error": "only admins can add staff"})
				return
			}
		}
		if err := validate.Struct(user); err != nil {
			respondError(c, err)
			return
		}

		password, err := HashPassword(user.Password)
		if err != nil {
			respondError(c, err)
			return
		}
		user.Password = password
		user.ID = primitive.NilObjectID

		if err := users.CreateUser(ctx, &user); err != nil {
			respondError(c, err)
			return
		}
		user.Password = ""
		c.JSON(http.StatusCreated, gin.H{"user": user})
	}
}

func Login(users store.UserStore, issuer *helpers.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := requestContext(c)
		defer cancel()

		var req loginRequest
		if err := c.BindJSON(&req); err != nil {
			badRequest(c, "body", err.Error())
			return
		}
		if err := validate.Struct(req); err != nil {
			respondError(c, err)
			return
		}

		foundUser, err := users.FindUserByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
		if errors.Is(err, store.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "email or password is incorrect"})
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		if ok, msg := VerifyPassword(req.Password, foundUser.Password); !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}

		token, err := issuer.GenerateToken(foundUser.Email, foundUser.Name, foundUser.ID.Hex(), foundUser.UserRole)
		if err != nil {
			respondError(c, err)
			return
		}
		foundUser.Password = ""
		c.JSON(http.StatusOK, gin.H{"token": token, "user": foundUser})
	}
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func VerifyPassword(providedPassword, hashedPassword string) (bool, string) {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(providedPassword))
	if err != nil {
		return false, "email or password is incorrect"
	}
	return true, ""
}

// HandleWebSocket hands authenticated kitchen clients to the event hub.
func HandleWebSocket(hub http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		hub.ServeHTTP(c.Writer, c.Request)
	}
}
