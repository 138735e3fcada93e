package server

import (
  "os"
  "strings"
  "github.com/gin-gonic/gin"
  "github.com/gin-contrib/cors"
  "go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
  "github.com/firelightacademy/protocols-backend/internal/handlers"
  "github.com/firelightacademy/protocols-backend/internal/middleware"
  "github.com/firelightacademy/protocols-backend/internal/types"
)

type RouterConfig struct {
  AuthHandler             *handlers.AuthHandler
  AuthMiddleware          *middleware.AuthMiddleware
  UserHandler             *handlers.UserHandler
  PublicHandler           *handlers.PublicHandler
  CategoryHandler         *handlers.CategoryHandler
  ProviderLevelHandler    *handlers.ProviderLevelHandler
  ProtocolHandler         *handlers.ProtocolHandler
  EditorHandler           *handlers.EditorHandler
  MediaDir                string
  TracingEnabled          bool
}

func NewRouter(cfg RouterConfig) *gin.Engine {
  router := gin.Default()

  if cfg.TracingEnabled {
    router.Use(otelgin.Middleware("protocols-backend"))
  }

  // Cors
  allowOrigins := []string{
    "http://localhost:80",
    "http://localhost:3000",
    "http://localhost:5174",
  }
  if extra := strings.TrimSpace(os.Getenv("CORS_ALLOW_ORIGINS")); extra != "" {
    allowOrigins = strings.Split(extra, ",")
  }
  router.Use(cors.New(cors.Config{
    AllowOrigins:     allowOrigins,
    AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
    AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
    AllowCredentials: true,
  }))

  if cfg.MediaDir != "" {
    router.Static("/media", cfg.MediaDir)
  }

// ===============
// || Public    ||
// ===============
  router.GET("/healthcheck", handlers.HealthCheck)
  api := router.Group("/api")
  {
    api.POST("/register", cfg.AuthHandler.Register)
    api.POST("/login", cfg.AuthHandler.Login)

    api.GET("/categories", cfg.PublicHandler.ListCategories)
    api.GET("/categories/:id", cfg.PublicHandler.GetCategory)
    api.GET("/protocols/:id", cfg.PublicHandler.GetProtocol)
    api.GET("/search", cfg.PublicHandler.Search)
  }

// ===============
// || Protected ||
// ===============
  protected := router.Group("/api")
  protected.Use(cfg.AuthMiddleware.RequireAuth())
  // Auth
  protected.POST("/refresh", cfg.AuthHandler.Refresh)
  protected.POST("/logout", cfg.AuthHandler.Logout)
  // User
  protected.GET("/user", cfg.UserHandler.GetMe)
  protected.POST("/user/avatar", cfg.UserHandler.UploadAvatar)

// ===============
// || Admin     ||
// ===============
  admin := router.Group("/api/admin")
  admin.Use(cfg.AuthMiddleware.RequireAuth(), cfg.AuthMiddleware.RequireRole(types.RoleEditor))
  // Reference data
  admin.GET("/categories", cfg.CategoryHandler.List)
  admin.POST("/categories", cfg.CategoryHandler.Create)
  admin.PUT("/categories/:id", cfg.CategoryHandler.Update)
  admin.DELETE("/categories/:id", cfg.CategoryHandler.Delete)
  admin.GET("/provider-levels", cfg.ProviderLevelHandler.List)
  admin.POST("/provider-levels", cfg.ProviderLevelHandler.Create)
  admin.PUT("/provider-levels/:id", cfg.ProviderLevelHandler.Update)
  admin.DELETE("/provider-levels/:id", cfg.ProviderLevelHandler.Delete)
  // Protocol documents
  admin.GET("/protocols", cfg.ProtocolHandler.List)
  admin.GET("/protocols/:id", cfg.ProtocolHandler.Get)
  admin.POST("/protocols", cfg.ProtocolHandler.Create)
  admin.PUT("/protocols/:id", cfg.ProtocolHandler.Update)
  admin.DELETE("/protocols/:id", cfg.ProtocolHandler.Delete)
  admin.PUT("/protocols/:id/publish", cfg.ProtocolHandler.SetPublished)
  admin.GET("/protocols/:id/revisions", cfg.ProtocolHandler.ListRevisions)
  // Field-level editor
  admin.POST("/editor/field", cfg.EditorHandler.SaveField)
  admin.POST("/editor/order", cfg.EditorHandler.SaveOrder)
  admin.PUT("/editor/items/:id/detailed-info", cfg.EditorHandler.SaveDetailedInfo)
  admin.GET("/editor/items/:id/provider-levels", cfg.EditorHandler.GetProviderLevels)
  admin.PUT("/editor/items/:id/provider-levels", cfg.EditorHandler.SaveProviderLevels)
  admin.POST("/editor/protocols/:id/sections", cfg.EditorHandler.AddSection)
  admin.POST("/editor/sections/:id/items", cfg.EditorHandler.AddItem)
  admin.POST("/editor/items/:id/criteria", cfg.EditorHandler.AddCriterion)
  admin.DELETE("/editor/sections/:id", cfg.EditorHandler.DeleteSection)
  admin.DELETE("/editor/items/:id", cfg.EditorHandler.DeleteItem)

  return router
}
