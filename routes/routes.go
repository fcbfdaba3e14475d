package routes

import (
	"instaclean-backend/config"
	"instaclean-backend/controllers"
	"instaclean-backend/services"
	"instaclean-backend/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Dependencies are the services the HTTP layer is built on.
type Dependencies struct {
	DB            *gorm.DB
	Auth          *services.AuthService
	Bookings      *services.BookingService
	Catalog       *services.CatalogService
	Staff         *services.StaffService
	Reports       *services.ReportService
	Notifications *services.NotificationService
	CORSOrigins   []string
}

func SetupRouter(deps Dependencies) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	if err := utils.RegisterValidators(); err != nil {
		utils.Logger.WithError(err).Fatal("Failed to register validators")
	}

	origins := deps.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}
	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}))

	r.Use(config.PerformanceLogger())
	r.Use(controllers.IdentityMiddleware(deps.Auth))

	health := &controllers.HealthController{DB: deps.DB}
	r.GET("/health", health.Health)

	authController := &controllers.AuthController{Auth: deps.Auth}
	auth := r.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.GET("/me", authController.Me)
	}

	api := r.Group("/api")
	{
		api.GET("/time-slots", controllers.GetTimeSlots)

		catalogController := &controllers.CatalogController{Catalog: deps.Catalog}
		serviceRoutes := api.Group("/services")
		{
			serviceRoutes.GET("", catalogController.GetServices)
			serviceRoutes.GET("/:id", catalogController.GetService)
			serviceRoutes.POST("", catalogController.CreateService)
			serviceRoutes.PATCH("/:id", catalogController.UpdateService)
			serviceRoutes.DELETE("/:id", catalogController.DeleteService)
		}

		propertyTypes := api.Group("/property-types")
		{
			propertyTypes.GET("", catalogController.GetPropertyTypes)
			propertyTypes.GET("/:id", catalogController.GetPropertyType)
			propertyTypes.POST("", catalogController.CreatePropertyType)
			propertyTypes.PATCH("/:id", catalogController.UpdatePropertyType)
			propertyTypes.DELETE("/:id", catalogController.DeletePropertyType)
		}

		bookingController := &controllers.BookingController{Bookings: deps.Bookings, Auth: deps.Auth}
		notificationController := &controllers.NotificationController{Notifications: deps.Notifications}
		bookings := api.Group("/bookings")
		{
			bookings.POST("", bookingController.CreateBooking)
			bookings.GET("", bookingController.GetBookings)
			bookings.GET("/:id", bookingController.GetBooking)
			bookings.PATCH("/:id", bookingController.UpdateBooking)
			bookings.DELETE("/:id", bookingController.DeleteBooking)
			bookings.GET("/:id/notifications", notificationController.GetBookingNotifications)
		}
		api.POST("/reminders/run", notificationController.RunReminders)

		staffController := &controllers.StaffController{Staff: deps.Staff}
		staff := api.Group("/staff")
		{
			staff.GET("", staffController.GetStaff)
			staff.POST("", staffController.AddStaff)
			staff.PATCH("/:id", staffController.UpdateStaff)
			staff.DELETE("/:id", staffController.DeleteStaff)
		}

		reportController := &controllers.ReportController{Reports: deps.Reports}
		api.GET("/reports", reportController.GetReportAnalytics)
		api.GET("/dashboard", reportController.GetDashboardOverview)
	}

	return r
}
