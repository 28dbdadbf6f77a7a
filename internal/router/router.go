package router

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "ppm/docs"
	"ppm/internal/config"
	"ppm/internal/handler"
	"ppm/internal/middleware"
	"ppm/internal/render"
	"ppm/internal/service"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	cfg *config.Config,
	tokens service.SessionTokenService,
	uploadH *handler.UploadHandler,
	viewerH *handler.ViewerHandler,
	folderH *handler.FolderHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()
	r.SetHTMLTemplate(render.Templates())

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Everything below belongs to a browsing session
	pages := r.Group("")
	pages.Use(middleware.Session(tokens, cfg.Session))

	handler.WireUploadRoutes(pages, uploadH)

	pages.GET("/viewer", viewerH.Show)
	pages.GET("/viewer/details", viewerH.Details)
	pages.GET("/viewer/export.xlsx", viewerH.ExportXLSX)
	pages.GET("/viewer/export.csv", viewerH.ExportCSV)
	pages.POST("/viewer/share", viewerH.ShareForm)
	pages.POST("/viewer/public", viewerH.SelectPublicForm)

	pages.GET("/folders/:state/:city", folderH.Page)
	pages.POST("/folders/open", folderH.OpenForm)

	v1 := pages.Group("/api/v1")
	v1.GET("/viewer", viewerH.View)
	v1.POST("/share", viewerH.Share)
	v1.POST("/public", viewerH.SelectPublic)
	v1.GET("/folders/:state/:city", folderH.List)
	v1.POST("/folders/open", folderH.Open)

	return r
}
