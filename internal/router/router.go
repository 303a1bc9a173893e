package router

import (
	"github.com/gin-gonic/gin"

	"gstrone/internal/config"
	"gstrone/internal/handler"
	"gstrone/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	uploadH *handler.UploadHandler,
	generationH *handler.GenerationHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	uploads := v1.Group("/uploads")
	uploads.POST("", uploadH.Upload)
	uploads.GET("", uploadH.List)
	uploads.GET("/:id", uploadH.GetByID)

	filings := v1.Group("/filings")
	filings.POST("/generate", generationH.Generate)
	filings.GET("", generationH.List)
	filings.GET("/:id", generationH.GetByID)
	filings.GET("/:id/export/b2cs", generationH.ExportB2CS)
	filings.GET("/:id/export/doc_iss", generationH.ExportDocIss)

	return r
}
