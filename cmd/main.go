package main

import (
  "context"
  "fmt"
  "os"
  "time"
  "github.com/joho/godotenv"
  "github.com/firelightacademy/protocols-backend/internal/logger"
  "github.com/firelightacademy/protocols-backend/internal/utils"
  "github.com/firelightacademy/protocols-backend/internal/db"
  "github.com/firelightacademy/protocols-backend/internal/observability"
  "github.com/firelightacademy/protocols-backend/internal/platform/localmedia"
  redisclient "github.com/firelightacademy/protocols-backend/internal/clients/redis"
  "github.com/firelightacademy/protocols-backend/internal/repos"
  "github.com/firelightacademy/protocols-backend/internal/services"
  "github.com/firelightacademy/protocols-backend/internal/handlers"
  "github.com/firelightacademy/protocols-backend/internal/middleware"
  "github.com/firelightacademy/protocols-backend/internal/server"
)

func main() {
  _ = godotenv.Load()

  // Logger
  logMode := os.Getenv("LOG_MODE")
  if logMode == "" {
    logMode = "development"
  }
  log, err := logger.New(logMode)
  if err != nil {
    fmt.Printf("Failed to init logger: %v\n", err)
    os.Exit(1)
  }
  defer log.Sync()

  // Env
  log.Info("Loading environment variables from main...")
  jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
  accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
  refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
  mediaDir := utils.GetEnv("MEDIA_DIR", "media", log)

  // Tracing
  otelShutdown := observability.InitOTel(context.Background(), log, observability.OtelConfig{
    ServiceName: "protocols-backend",
    Environment: utils.GetEnv("APP_ENV", "development", log),
    Version:     utils.GetEnv("APP_VERSION", "dev", log),
  })
  if otelShutdown != nil {
    defer func() {
      ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
      defer cancel()
      _ = otelShutdown(ctx)
    }()
  }

  // Postgres
  postgresService, err := db.NewPostgresService(log)
  if err != nil {
    log.Error("Database init failed", "error", err)
    os.Exit(1)
  }
  if err = postgresService.AutoMigrateAll(); err != nil {
    log.Warn("Auto migration failed", "error", err)
  }
  thePG := postgresService.DB()

  // Repos
  log.Info("Setting up Repos from main...")
  userRepo := repos.NewUserRepo(thePG, log)
  userTokenRepo := repos.NewUserTokenRepo(thePG, log)
  categoryRepo := repos.NewCategoryRepo(thePG, log)
  protocolRepo := repos.NewProtocolRepo(thePG, log)
  sectionRepo := repos.NewSectionRepo(thePG, log)
  itemRepo := repos.NewItemRepo(thePG, log)
  providerLevelRepo := repos.NewProviderLevelRepo(thePG, log)
  itemProviderLevelRepo := repos.NewItemProviderLevelRepo(thePG, log)
  protocolRevisionRepo := repos.NewProtocolRevisionRepo(thePG, log)

  // View cache (optional)
  var viewCache redisclient.ViewCache
  if os.Getenv("REDIS_ADDR") != "" {
    viewCache, err = redisclient.NewViewCache(log)
    if err != nil {
      log.Warn("View cache init failed, serving uncached", "error", err)
      viewCache = nil
    }
  }

  // Services
  log.Info("Setting up Services from main...")
  mediaStore, err := localmedia.New(log, mediaDir)
  if err != nil {
    log.Error("Could not init media store", "error", err)
    os.Exit(1)
  }
  avatarService, err := services.NewAvatarService(thePG, log, userRepo, mediaStore)
  if err != nil {
    log.Error("Could not init AvatarService", "error", err)
    os.Exit(1)
  }
  authService := services.NewAuthService(thePG, log, userRepo, avatarService, userTokenRepo, jwtSecretKey, time.Duration(accessTokenTTL)*time.Second, time.Duration(refreshTokenTTL)*time.Second)
  userService := services.NewUserService(thePG, log, userRepo, avatarService)
  categoryService := services.NewCategoryService(thePG, log, categoryRepo, protocolRepo)
  providerLevelService := services.NewProviderLevelService(thePG, log, providerLevelRepo)
  protocolService := services.NewProtocolService(thePG, log, protocolRepo, categoryRepo, sectionRepo, itemRepo, itemProviderLevelRepo, protocolRevisionRepo, viewCache)
  editorService := services.NewEditorService(thePG, log, protocolRepo, sectionRepo, itemRepo, itemProviderLevelRepo, viewCache)
  viewService := services.NewViewService(thePG, log, categoryRepo, protocolRepo, sectionRepo, itemRepo, itemProviderLevelRepo, viewCache)

  // Handlers
  log.Info("Setting up handlers from main...")
  authHandler := handlers.NewAuthHandler(authService)
  userHandler := handlers.NewUserHandler(userService)
  publicHandler := handlers.NewPublicHandler(viewService)
  categoryHandler := handlers.NewCategoryHandler(categoryService)
  providerLevelHandler := handlers.NewProviderLevelHandler(providerLevelService)
  protocolHandler := handlers.NewProtocolHandler(protocolService)
  editorHandler := handlers.NewEditorHandler(editorService)

  // Middleware
  log.Info("Setting up middleware from main...")
  authMiddleware := middleware.NewAuthMiddleware(log, authService)

  // Router
  log.Info("Setting up router from main...")
  router := server.NewRouter(server.RouterConfig{
    AuthHandler:          authHandler,
    AuthMiddleware:       authMiddleware,
    UserHandler:          userHandler,
    PublicHandler:        publicHandler,
    CategoryHandler:      categoryHandler,
    ProviderLevelHandler: providerLevelHandler,
    ProtocolHandler:      protocolHandler,
    EditorHandler:        editorHandler,
    MediaDir:             mediaStore.Root(),
    TracingEnabled:       otelShutdown != nil,
  })

  port := utils.GetEnv("PORT", "8080", log)
  fmt.Printf("Server listening on :%s\n", port)
  if err := router.Run(":" + port); err != nil {
    log.Warn("Server failed", "error", err)
  }
}
