package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"spms/config"
	"spms/handlers"
	"spms/iot"
	"spms/ledger"
	"spms/models"
)

func main() {
	config.Load()

	// 1. Database Connection (Local SQLite)
	db, err := gorm.Open(sqlite.Open(config.DBPath()), &gorm.Config{})
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// 2. Migrate Schema
	db.AutoMigrate(
		&models.User{}, &models.Card{}, &models.Property{},
		&models.Lease{}, &models.PaymentEntry{}, &models.Payment{},
		&models.EnergyReading{},
	)

	// 3. Seed Demo Data
	seedData(db)

	// 4. Optional Redis (cache + spike notifications)
	var rdb *redis.Client
	var notifier iot.Notifier
	if addr := config.RedisAddr(); addr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: addr, Password: config.RedisPassword()})
		notifier = &iot.RedisNotifier{Client: rdb, Topic: config.SpikeTopic()}
	}

	// 5. Background Energy Simulator
	sim := iot.NewSimulator(db, notifier, config.SimInterval(), config.ReadingRetention())
	go sim.Run(context.Background())

	// 6. Router Setup
	r := gin.Default()

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowCredentials = false
	r.Use(cors.New(corsConfig))

	store := cookie.NewStore([]byte(config.SessionSecret()))
	r.Use(sessions.Sessions("spms_session", store))

	ledgerSvc := &ledger.Service{DB: db}
	authHandler := &handlers.AuthHandler{DB: db}
	userHandler := &handlers.UserHandler{DB: db}
	propertyHandler := &handlers.PropertyHandler{DB: db}
	leaseHandler := &handlers.LeaseHandler{DB: db, Ledger: ledgerSvc}
	paymentHandler := &handlers.PaymentHandler{DB: db, Ledger: ledgerSvc, Delay: time.Second}
	energyHandler := &handlers.EnergyHandler{DB: db, Cache: rdb}

	// 7. Routes
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "SPMS backend running") })

	r.POST("/api/register", authHandler.Register)
	r.POST("/api/login", authHandler.Login)
	r.GET("/api/logout", authHandler.Logout)

	r.GET("/api/properties", propertyHandler.List)
	r.GET("/api/energy/live", energyHandler.Live)
	r.GET("/api/energy/summary", energyHandler.Summary)

	authorized := r.Group("/api")
	authorized.Use(handlers.AuthRequired())
	{
		authorized.GET("/user/:id", userHandler.GetUser)
		authorized.POST("/cards/save", userHandler.SaveCard)

		authorized.POST("/properties", propertyHandler.Create)
		authorized.POST("/tenant/request", propertyHandler.Request)
		authorized.GET("/manager/requests", propertyHandler.Requests)
		authorized.POST("/manager/approve", leaseHandler.Approve)

		authorized.GET("/tenant/lease/:tenantId", leaseHandler.TenantLease)
		authorized.POST("/lease/pay", leaseHandler.Pay)
		authorized.POST("/payments/mock", paymentHandler.Mock)
	}

	r.Run(":" + config.Port())
}

func seedData(db *gorm.DB) {
	var count int64
	db.Model(&models.Property{}).Count(&count)
	if count > 0 {
		return
	}

	db.Create(&models.Property{Name: "Maple Court 2B", Location: "12 Maple St", InitialPrice: 5000, Rent: 1000, Status: models.PropertyAvailable})
	db.Create(&models.Property{Name: "Harbor View 5A", Location: "3 Harbor Rd", InitialPrice: 7500, Rent: 1500, Status: models.PropertyAvailable})
	db.Create(&models.Property{Name: "Elm Street Loft", Location: "44 Elm St", InitialPrice: 6000, Rent: 1200, Status: models.PropertyAvailable})
}
