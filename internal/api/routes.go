package api

import (
	"fitcoach/coaching-app/internal/domain"
	"fitcoach/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires all HTTP routes onto the Gin engine.
//
// Write access to schedules and the catalog is gated by RoleMiddleware up
// front; the services re-check authorization so a misconfigured route still
// fails closed.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	authService service.AuthService,
	scheduleService service.ScheduleService,
	catalogService service.CatalogService,
	userService service.UserService,
) {
	authHandler := NewAuthHandler(authService)
	scheduleHandler := NewScheduleHandler(scheduleService)
	catalogHandler := NewCatalogHandler(catalogService)
	userHandler := NewUserHandler(userService)

	authMiddleware := AuthMiddleware(jwtSecret)
	managerOnly := RoleMiddleware(domain.RoleAdmin, domain.RoleCoach)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")
	{
		authGroup := apiV1.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", func(c *gin.Context) {
			actor, err := getActorFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user identity from token")
				return
			}
			c.JSON(http.StatusOK, gin.H{"userId": actor.ID.Hex(), "role": actor.Role})
		})

		// --- Schedule Routes ---
		scheduleGroup := protected.Group("/schedules")
		{
			// Reads are open to every authenticated role; the service scopes
			// the result set (and 403s) per role.
			scheduleGroup.GET("", scheduleHandler.ListSchedules)
			scheduleGroup.GET("/:id", scheduleHandler.GetSchedule)

			// Status transitions are additionally open to the owning athlete.
			scheduleGroup.PATCH("/:id/status", scheduleHandler.UpdateScheduleStatus)

			scheduleGroup.POST("", managerOnly, scheduleHandler.CreateSchedule)
			scheduleGroup.PUT("/:id", managerOnly, scheduleHandler.UpdateSchedule)
			scheduleGroup.DELETE("/:id", managerOnly, scheduleHandler.DeleteSchedule)
		}

		// --- Catalog Routes ---
		categoryGroup := protected.Group("/categories")
		{
			categoryGroup.GET("", catalogHandler.ListCategories)
			categoryGroup.POST("", managerOnly, catalogHandler.CreateCategory)
			categoryGroup.PUT("/:id", managerOnly, catalogHandler.UpdateCategory)
			categoryGroup.DELETE("/:id", managerOnly, catalogHandler.DeleteCategory)
		}

		trainingGroup := protected.Group("/trainings")
		{
			trainingGroup.GET("", catalogHandler.ListTrainings)
			trainingGroup.POST("", managerOnly, catalogHandler.CreateTraining)
			trainingGroup.PUT("/:id", managerOnly, catalogHandler.UpdateTraining)
			trainingGroup.DELETE("/:id", managerOnly, catalogHandler.DeleteTraining)

			trainingGroup.POST("/:id/media/upload-url", managerOnly, catalogHandler.GenerateMediaUploadURL)
			trainingGroup.GET("/:id/media/download-url", catalogHandler.GetMediaDownloadURL)
		}

		// --- User Routes ---
		userGroup := protected.Group("/users")
		{
			userGroup.GET("/athletes", managerOnly, userHandler.ListAthletes)
		}
	}
}
