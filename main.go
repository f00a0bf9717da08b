package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"go-restaurant-ordering/checkout"
	"go-restaurant-ordering/config"
	"go-restaurant-ordering/database"
	"go-restaurant-ordering/helpers"
	"go-restaurant-ordering/payment"
	"go-restaurant-ordering/realtime"
	routes "go-restaurant-ordering/routes"
	"go-restaurant-ordering/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
)

func main() {
	config.LoadEnv(".env")
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	logger := log.New(os.Stdout, "restaurant ", log.LstdFlags)

	st, closeStore, err := openStore(cfg)
	if err != nil {
		log.Fatalf("Error opening %s store: %v", cfg.Store, err)
	}
	defer closeStore()

	var payments payment.Provider
	if cfg.MollieAPIKey != "" {
		payments = payment.NewClient(cfg.MollieAPIKey, cfg.MollieBaseURL, logger)
	} else {
		logger.Println("MOLLIE_API_KEY not set, online payments are disabled")
	}

	hub := realtime.NewHub(cfg.AllowedOrigins, logger)
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int((30 * 24 * time.Hour).Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"POST", "GET", "PATCH", "DELETE", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "token"},
		ExposeHeaders:    []string{"Content-Length", "Location"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	routes.Register(router, routes.Services{
		Store: st,
		Checkout: checkout.NewService(st, st, payments, checkout.Options{
			AppURL:         cfg.AppURL,
			RestaurantName: cfg.RestaurantName,
			Logger:         logger,
		}),
		Payments: payments,
		Hub:      hub,
		Tokens:   helpers.NewTokenIssuer(cfg.SecretKey),
		Sessions: sessionStore,
		Location: cfg.Location,
	})
	router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Page not found"})
	})

	logger.Printf("listening on :%s (%s store)", cfg.Port, cfg.Store)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}

func openStore(cfg config.Config) (store.Store, func(), error) {
	if cfg.Store == config.StoreMemory {
		return store.NewMemoryStore(), func() {}, nil
	}

	client, err := database.DBinstance(cfg.MongoURI)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := database.EnsureIndexes(ctx, client.Database(cfg.DBName)); err != nil {
		return nil, nil, err
	}
	closeFn := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := client.Disconnect(ctx); err != nil {
			log.Println("Error disconnecting from MongoDB:", err)
		}
	}
	return store.NewMongoStore(client, cfg.DBName), closeFn, nil
}
