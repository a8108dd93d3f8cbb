package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"frontdesk/config"
	"frontdesk/cron"
	"frontdesk/database"
	bookingRepo "frontdesk/database/repository/booking"
	integrationRepo "frontdesk/database/repository/integration"
	pendingRepo "frontdesk/database/repository/pending"
	tenantRepo "frontdesk/database/repository/tenant"
	"frontdesk/handlers"
	"frontdesk/middleware"
	"frontdesk/routes"
	"frontdesk/services/notification"
	"frontdesk/services/scheduling"
	"frontdesk/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()

	// repositories.
	bookings := bookingRepo.NewMongoBookingRepo()
	pendings := pendingRepo.NewMongoPendingRepo()
	integrations := integrationRepo.NewMongoIntegrationRepo()
	tenants := tenantRepo.NewMongoTenantRepo()

	if err := bookings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure booking indexes: %v", err)
	}
	if err := pendings.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure pending booking indexes: %v", err)
	}
	if err := integrations.EnsureIndexes(); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure integration indexes: %v", err)
	}

	// services.
	pendingService := scheduling.NewPendingService(pendings, tenants)
	engine := &scheduling.Engine{
		Tenants:      tenants,
		Bookings:     bookings,
		Integrations: integrations,
		Pending:      pendingService,
		Cache:        utils.GetCacheClient(),
		HTTP:         &http.Client{Timeout: 15 * time.Second},
		Calendly: scheduling.ProviderConfig{
			BaseURL:      config.AppConfig.CalendlyBaseURL,
			TokenURL:     config.AppConfig.CalendlyTokenURL,
			ClientID:     config.AppConfig.CalendlyClientID,
			ClientSecret: config.AppConfig.CalendlyClientSecret,
		},
		GoogleCal: scheduling.ProviderConfig{
			BaseURL:      config.AppConfig.GoogleCalBaseURL,
			TokenURL:     config.AppConfig.GoogleTokenURL,
			ClientID:     config.AppConfig.GoogleClientID,
			ClientSecret: config.AppConfig.GoogleClientSecret,
		},
	}
	handlers.SetSchedulingEngine(engine)
	handlers.SetPendingService(pendingService)

	notifService := &notification.LogNotificationService{}
	cron.InitWorker(pendings, integrations, notifService)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(cors.Default())
	router.Use(middleware.RateLimitMiddleware())

	routes.RegisterRoutes(router)

	srv := &http.Server{
		Addr:    ":" + config.AppConfig.AppPort,
		Handler: router,
	}
	go func() {
		logger.Sugar().Infof("main: listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("main: shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: forced shutdown: %v", err)
	}
	if err := database.MongoClient.Disconnect(ctx); err != nil {
		logger.Sugar().Errorf("main: mongo disconnect: %v", err)
	}
}
