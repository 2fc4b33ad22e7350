package api

import (
	"alcyxob/coaching-app/internal/domain" // Needed for RoleMiddleware
	"alcyxob/coaching-app/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Services are the application services the HTTP layer exposes.
type Services struct {
	Auth     service.AuthService
	Coach    service.CoachService
	Athlete  service.AthleteService
	Exercise service.ExerciseService
}

// MetricsEndpoint mounts a scrape handler; a nil Handler disables it.
type MetricsEndpoint struct {
	Path    string
	Handler http.Handler
}

func SetupRoutes(router *gin.Engine, svc Services, metricsEndpoint MetricsEndpoint) {
	authHandler := NewAuthHandler(svc.Auth)
	exerciseHandler := NewExerciseHandler(svc.Exercise)
	coachHandler := NewCoachHandler(svc.Coach)
	athleteHandler := NewAthleteHandler(svc.Athlete)

	authMiddleware := AuthMiddleware(svc.Auth)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})
	if metricsEndpoint.Handler != nil {
		router.GET(metricsEndpoint.Path, gin.WrapH(metricsEndpoint.Handler))
	}

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
			userIDStr, err := getUserIDFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get user ID from token")
				return
			}
			role, _ := getUserRoleFromContext(c)
			c.JSON(http.StatusOK, gin.H{"userId": userIDStr, "role": role})
		})

		// --- Exercise library (coach only) ---
		exerciseGroup := protected.Group("/exercises")
		exerciseGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			exerciseGroup.POST("", exerciseHandler.CreateExercise)
			exerciseGroup.GET("", exerciseHandler.GetCoachExercises)
			exerciseGroup.GET("/:exerciseId", exerciseHandler.GetExercise)
			exerciseGroup.PUT("/:exerciseId", exerciseHandler.UpdateExercise)
			exerciseGroup.DELETE("/:exerciseId", exerciseHandler.DeleteExercise)

			exerciseGroup.POST("/:exerciseId/video/upload-url", exerciseHandler.RequestVideoUploadURL)
			exerciseGroup.POST("/:exerciseId/video/confirm", exerciseHandler.ConfirmVideoUpload)
			exerciseGroup.GET("/:exerciseId/video/uploads", exerciseHandler.ListVideoUploads)
		}

		// --- Coach Specific Routes ---
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.POST("/athletes", coachHandler.AddAthleteByEmail)
			coachGroup.GET("/athletes", coachHandler.GetManagedAthletes)

			coachGroup.POST("/teams", coachHandler.CreateTeam)
			coachGroup.GET("/teams", coachHandler.GetTeams)
			coachGroup.POST("/teams/:teamId/members", coachHandler.AddTeamMember)
			coachGroup.DELETE("/teams/:teamId/members/:athleteId", coachHandler.RemoveTeamMember)

			coachGroup.POST("/workouts", coachHandler.CreateWorkout)
			coachGroup.GET("/workouts", coachHandler.GetWorkouts)
			coachGroup.GET("/workouts/:workoutId", coachHandler.GetWorkout)
			coachGroup.PUT("/workouts/:workoutId", coachHandler.UpdateWorkout)
			coachGroup.DELETE("/workouts/:workoutId", coachHandler.DeleteWorkout)
			coachGroup.POST("/workouts/:workoutId/copy", coachHandler.CopyWorkout)
			coachGroup.POST("/workouts/:workoutId/apply", coachHandler.ApplyTemplate)
			coachGroup.POST("/recurring-copies", coachHandler.CopyRecurring)

			coachGroup.GET("/workouts/:workoutId/completion/:athleteId", coachHandler.GetAthleteCompletion)
			coachGroup.POST("/workouts/:workoutId/completion/recompute", coachHandler.RecomputeCompletion)
		}

		// --- Athlete Specific Routes ---
		athleteGroup := protected.Group("/athlete")
		athleteGroup.Use(RoleMiddleware(domain.RoleAthlete))
		{
			athleteGroup.GET("/workouts", athleteHandler.GetMyWorkouts)
			athleteGroup.GET("/workouts/:workoutId", athleteHandler.GetMyWorkout)
			athleteGroup.GET("/workouts/:workoutId/completion", athleteHandler.GetCompletionStatus)
			athleteGroup.GET("/workouts/:workoutId/exercises/:exerciseId/sets", athleteHandler.GetSets)
			athleteGroup.PUT("/workouts/:workoutId/exercises/:exerciseId/sets", athleteHandler.SaveSets)
			athleteGroup.GET("/workouts/:workoutId/exercises/:exerciseId/video", athleteHandler.GetExerciseVideo)
		}
	}
}
