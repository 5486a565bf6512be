package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/closeout"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/config"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/handlers"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/middleware"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/models"
	"github.com/TLChouny/WDP301-HIV-HealthCare-Web-sub002/internal/repository"
)

// SetupRoutes configures the application routes.
func SetupRoutes(router *gin.Engine, db *gorm.DB, cfg *config.Config, log *logrus.Logger) {
	// Repositories backing the closeout engine's collaborator contracts
	regimenRepo := repository.NewArvRegimenRepository(db)
	resultRepo := repository.NewResultRepository(db)
	bookingRepo := repository.NewBookingRepository(db)
	engine := closeout.NewEngine(regimenRepo, resultRepo, bookingRepo, log)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, cfg)
	userHandler := handlers.NewUserHandler(db)
	serviceHandler := handlers.NewServiceHandler(db)
	bookingHandler := handlers.NewBookingHandler(db)
	regimenHandler := handlers.NewRegimenHandler(regimenRepo)
	resultHandler := handlers.NewResultHandler(db, engine, resultRepo)

	// Public routes (no authentication required)
	public := router.Group("/api/v1")
	{
		authRoutes := public.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/refresh-token", authHandler.RefreshToken)
		}

		// The service catalog is browsable without an account
		public.GET("/services", serviceHandler.GetServices)
		public.GET("/services/:id", serviceHandler.GetServiceByID)
	}

	// Authenticated routes
	private := router.Group("/api/v1")
	private.Use(middleware.AuthMiddleware(cfg))
	{
		authRoutesPrivate := private.Group("/auth")
		{
			authRoutesPrivate.POST("/logout", authHandler.Logout)
			authRoutesPrivate.GET("/profile", authHandler.GetProfile)
			authRoutesPrivate.PUT("/profile", authHandler.UpdateProfile)
		}

		userRoutes := private.Group("/users")
		{
			// Doctors list is needed by the booking form, all roles may read it
			userRoutes.GET("/doctors", userHandler.GetDoctors)

			adminRoutes := userRoutes.Group("")
			adminRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
			{
				adminRoutes.POST("", userHandler.CreateUser)
				adminRoutes.GET("", userHandler.GetUsers)
				adminRoutes.GET("/:id", userHandler.GetUserByID)
				adminRoutes.PUT("/:id", userHandler.UpdateUser)
				adminRoutes.DELETE("/:id", userHandler.DeleteUser)
			}
		}

		serviceRoutes := private.Group("/services")
		serviceRoutes.Use(middleware.RoleAuthMiddleware(models.RoleAdmin))
		{
			serviceRoutes.POST("", serviceHandler.CreateService)
			serviceRoutes.PUT("/:id", serviceHandler.UpdateService)
			serviceRoutes.DELETE("/:id", serviceHandler.DeleteService)
		}

		bookingRoutes := private.Group("/bookings")
		{
			bookingRoutes.POST("", bookingHandler.CreateBooking)
			bookingRoutes.GET("", bookingHandler.GetBookingsForUser)
			bookingRoutes.GET("/:id", bookingHandler.GetBookingByID)
			bookingRoutes.PATCH("/:id/status", bookingHandler.UpdateBookingStatus)
			bookingRoutes.PATCH("/:id/reschedule", bookingHandler.RescheduleBooking)

			// Closing out a visit creates the clinical result and, for
			// non-lab categories, transitions the booking status
			bookingRoutes.POST("/:id/result", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), resultHandler.CloseoutBooking)
			bookingRoutes.GET("/:id/result", resultHandler.GetResultForBooking)
		}

		regimenRoutes := private.Group("/arv-regimens")
		{
			regimenRoutes.GET("", regimenHandler.GetRegimens)
			regimenRoutes.GET("/:id", regimenHandler.GetRegimenByID)
			regimenRoutes.POST("", middleware.RoleAuthMiddleware(models.RoleDoctor, models.RoleAdmin), regimenHandler.CreateRegimen)
		}

		resultRoutes := private.Group("/results")
		{
			resultRoutes.GET("/patient/:patientId", resultHandler.GetResultsForPatient)
			resultRoutes.GET("/medication-slots", resultHandler.GetMedicationSlots)
		}
	}

	// Simple health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "UP"})
	})
}
