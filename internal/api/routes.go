package api

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// SetupRouter configures the API routes
func SetupRouter(h *Handler) *gin.Engine {
	r := gin.Default()

	// API documentation
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	r.GET("/health", h.Health)

	// API v1 group
	v1 := r.Group("/api/v1")
	{
		repos := v1.Group("/repos")
		{
			repos.GET("/trending", h.GetTrending)
			repos.GET("/:owner/:name", h.GetRepository)
		}

		v1.POST("/sync", h.TriggerSync)
	}

	return r
}
