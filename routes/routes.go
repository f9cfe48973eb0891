package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"villas-backend/config"
	"villas-backend/controllers"
	"villas-backend/metrics"
	"villas-backend/middleware"
)

// SetupRouter receives the controller instances and registers the routes.
func SetupRouter(
	corsCfg config.CORSConfig,
	cc *controllers.CatalogController,
	ic *controllers.InquiryController,
	fc *controllers.FormController,
) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestID(), middleware.Logger(), metrics.Middleware())

	origins := corsCfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	allowCredentials := true
	for _, origin := range origins {
		if origin == "*" {
			allowCredentials = false
			break
		}
	}

	r.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-Requested-With", controllers.IdempotencyKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: allowCredentials,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.Handler()))

	api := r.Group("/api")
	{
		api.GET("/rooms", cc.GetRooms)
		api.GET("/experiences", cc.GetExperiences)
		api.GET("/virtual-tours/:slug", cc.GetVirtualTour)
		api.POST("/quote", cc.Quote)

		api.POST("/booking", ic.SubmitBooking)
		api.POST("/contact", ic.SubmitContact)
	}

	forms := r.Group("/forms")
	{
		forms.POST("/booking", fc.SubmitBookingForm)
	}

	return r
}
