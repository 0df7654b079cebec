package mockapi

import (
	"github.com/gin-gonic/gin"

	"leave-sync/pkg/jwt"
)

// SetupRoutes mounts the mock backend on router. The route shapes mirror the
// production API the sync layer consumes.
func SetupRoutes(router *gin.Engine, store *Store, jwtUtil *jwt.JWTUtil) {
	handler := NewHandler(store, jwtUtil)

	api := router.Group("/api")

	// Public routes
	api.POST("/auth/login", handler.Login)
	api.GET("/health", handler.Health)

	// Protected routes
	protected := api.Group("/")
	protected.Use(AuthMiddleware(jwtUtil))
	{
		teams := protected.Group("/teams")
		{
			teams.GET("/my-team", handler.MyTeam)
			teams.POST("", handler.CreateTeam)
			teams.POST("/members", handler.AddMember)
			teams.DELETE("/members/:id", handler.RemoveMember)
			teams.GET("/:teamId/leaves", handler.TeamLeaves)
		}

		leaves := protected.Group("/leaves")
		{
			leaves.GET("/pending", handler.PendingApprovals)
			leaves.PUT("/:id/approve", handler.ApproveLeave)
			leaves.PUT("/:id/reject", handler.RejectLeave)
		}

		protected.GET("/users/temp-passwords", handler.PendingUsers)
	}
}
