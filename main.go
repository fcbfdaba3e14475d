package main

import (
	"fmt"
	"instaclean-backend/config"
	"instaclean-backend/models"
	"instaclean-backend/routes"
	"instaclean-backend/services"
	"instaclean-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	utils.InitLogger("instaclean")
	if err := godotenv.Load(); err != nil {
		utils.Logger.Info("No .env file found")
	}

	cfg, err := config.Load()
	if err != nil {
		utils.Logger.WithError(err).Fatal("Invalid configuration")
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Database connection failed")
	}
	if err := models.AutoMigrate(db); err != nil {
		utils.Logger.WithError(err).Fatal("Migration failed")
	}

	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTExpiry, cfg.GuestTokenExpiry)
	notifications := services.NewNotificationService(db, services.NotificationSettings{
		TwilioAccountSID:     cfg.TwilioAccountSID,
		TwilioAuthToken:      cfg.TwilioAuthToken,
		TwilioPhoneNumber:    cfg.TwilioPhoneNumber,
		TwilioWhatsAppNumber: cfg.TwilioWhatsAppNumber,
		SendGridAPIKey:       cfg.SendGridAPIKey,
		FromEmail:            cfg.SendGridFromEmail,
		FromName:             "InstaClean",
	})

	scheduler, err := notifications.StartScheduler(cfg.ReminderCron)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to start reminder scheduler")
	}
	defer scheduler.Stop()

	r := routes.SetupRouter(routes.Dependencies{
		DB:            db,
		Auth:          services.NewAuthService(db, tokens),
		Bookings:      services.NewBookingService(db, notifications, services.NewBookingNumberGenerator(cfg.BookingNumberPrefix)),
		Catalog:       services.NewCatalogService(db),
		Staff:         services.NewStaffService(db),
		Reports:       services.NewReportService(db),
		Notifications: notifications,
		CORSOrigins:   cfg.CORSOrigins,
	})
	printRoutes(r)

	if err := r.Run(":" + cfg.Port); err != nil {
		utils.Logger.WithError(err).Fatal("Server stopped")
	}
}

func printRoutes(r *gin.Engine) {
	routes := r.Routes()
	for _, route := range routes {
		fmt.Printf("%-6s %s\n", route.Method, route.Path)
	}
}
