package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"workhive/config"
	"workhive/cron"
	"workhive/database"
	bookingRepoPkg "workhive/database/repository/booking"
	notificationRepoPkg "workhive/database/repository/notification"
	paymentRepoPkg "workhive/database/repository/payment"
	spaceRepoPkg "workhive/database/repository/space"
	userRepoPkg "workhive/database/repository/user"
	"workhive/handlers"
	"workhive/middleware"
	"workhive/routes"
	"workhive/services/booking"
	"workhive/services/notification"
	"workhive/services/payments"
	"workhive/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitRedis()
	utils.FirebaseInit()
	stripe.Key = config.AppConfig.StripeKey

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	bookingRepo := bookingRepoPkg.NewMongoBookingRepo()
	spaceRepo := spaceRepoPkg.NewMongoSpaceRepo()
	paymentRepo := paymentRepoPkg.NewMongoPaymentRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()
	notificationRepo := notificationRepoPkg.NewMongoNotificationRepo()

	// queue client for the notification dispatcher.
	queueClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisQueueDB,
	})
	defer queueClient.Close()

	dispatcher := notification.NewAsynqDispatcher(queueClient, logger)
	gateway := payments.NewStripeGateway(logger)

	bookingService := &booking.DefaultBookingService{
		Bookings:            bookingRepo,
		Spaces:              spaceRepo,
		Payments:            paymentRepo,
		Gateway:             gateway,
		Dispatcher:          dispatcher,
		Logger:              logger,
		CheckoutRedirectURL: config.AppConfig.CheckoutRedirectURL,
	}

	// Background worker for notification delivery and booking expiry.
	cron.InitWorker(&cron.Worker{
		BookingSvc:    bookingService,
		Bookings:      bookingRepo,
		Spaces:        spaceRepo,
		Users:         userRepo,
		Notifications: notificationRepo,
		Logger:        logger,
	})

	bookingHandler := handlers.NewBookingHandler(bookingService, logger)
	routes.RegisterRoutes(router, bookingHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
