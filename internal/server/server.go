package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "medkit/docs"
	"medkit/internal/ai"
	"medkit/internal/config"
	"medkit/internal/handler"
	authHandler "medkit/internal/handler/auth"
	chatHandler "medkit/internal/handler/chat"
	clinicalHandler "medkit/internal/handler/clinical"
	resourceHandler "medkit/internal/handler/resource"
	"medkit/internal/pkg/cache"
	"medkit/internal/pkg/jwt"
	"medkit/internal/pkg/mongodb"
	"medkit/internal/pkg/storagefactory"
	authRepo "medkit/internal/repository/auth"
	chatRepo "medkit/internal/repository/chat"
	clinicalRepo "medkit/internal/repository/clinical"
	resourceRepo "medkit/internal/repository/resource"
	"medkit/internal/server/middleware"
	"medkit/internal/service"
)

// Server HTTP 服务器
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	mongo  *mongodb.Client
	redis  *cache.RedisCache
}

// New 创建服务器实例
func New(cfg *config.Config) (*Server, error) {
	// 设置 Gin 模式
	switch cfg.Server.Mode {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建 Gin 引擎
	engine := gin.New()

	// 初始化 MongoDB (可选，未配置时对话走内存存储，其余接口不可用)
	var mongoClient *mongodb.Client
	if cfg.Mongo.URI != "" {
		client, err := mongodb.New(&cfg.Mongo)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to MongoDB, continuing without it")
		} else {
			mongoClient = client
			log.Info().Str("database", cfg.Mongo.Database).Msg("connected to MongoDB")

			// 创建索引
			if err := mongodb.EnsureIndexes(mongoClient.Database()); err != nil {
				log.Warn().Err(err).Msg("failed to ensure indexes")
			}
		}
	}

	// 初始化 Redis (可选)
	var redisCache *cache.RedisCache
	if cfg.Redis.Addr != "" {
		rc, err := cache.NewRedisCache(&cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("failed to connect to Redis, continuing without it")
		} else {
			redisCache = rc
			log.Info().Str("addr", cfg.Redis.Addr).Msg("connected to Redis")
		}
	}

	srv := &Server{
		cfg:    cfg,
		engine: engine,
		mongo:  mongoClient,
		redis:  redisCache,
	}

	// 设置路由
	if err := srv.setupRoutes(); err != nil {
		return nil, err
	}

	return srv, nil
}

// setupRoutes 设置路由
func (s *Server) setupRoutes() error {
	// 全局中间件
	s.engine.Use(middleware.Recovery())
	s.engine.Use(middleware.RequestID())
	s.engine.Use(middleware.Logger())
	s.engine.Use(middleware.CORS())

	// 健康检查
	healthHandler := handler.NewHealthHandler()
	s.engine.GET("/health", healthHandler.Health)
	s.engine.GET("/ready", healthHandler.Ready)

	// Swagger 文档
	s.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// JWT
	jwtSecret := s.cfg.Auth.JWTSecret
	if jwtSecret == "" {
		jwtSecret = "default-secret-key-change-in-production"
		log.Warn().Msg("JWT secret not configured, using default (NOT SECURE for production)")
	}

	accessTokenExpiry := s.cfg.Auth.AccessTokenExpiry
	if accessTokenExpiry == 0 {
		accessTokenExpiry = 24 * time.Hour
	}

	refreshTokenExpiry := s.cfg.Auth.RefreshTokenExpiry
	if refreshTokenExpiry == 0 {
		refreshTokenExpiry = 7 * 24 * time.Hour
	}

	jwtUtil := jwt.NewJWT(jwtSecret, accessTokenExpiry)

	// 对话存储: 优先MongoDB，未配置时退化为内存存储（重启即失）
	var chatStore chatRepo.Store
	if s.mongo != nil {
		chatStore = chatRepo.NewMongoStore(s.mongo.Database())
	} else {
		chatStore = chatRepo.NewMemoryStore()
		log.Warn().Msg("MongoDB not configured, conversations are stored in memory only")
	}

	// 推理网关
	gateway, err := ai.NewClient(context.Background(), &s.cfg.AI, s.cfg.Chat.InferenceTimeout)
	if err != nil {
		return err
	}
	log.Info().
		Str("provider", s.cfg.AI.Provider).
		Str("model", s.cfg.AI.Model).
		Msg("initialized inference gateway")

	builder := ai.NewContextBuilder(s.cfg.Chat.SystemPrompt, s.cfg.Chat.MaxContextTurns, s.cfg.Chat.MaxContextTokens)
	chatSvc := service.NewChatService(chatStore, gateway, builder, s.redis)
	chatHdl := chatHandler.NewHandler(chatSvc)

	// API v1
	v1 := s.engine.Group("/api/v1")

	// 对话接口（需要认证）
	chatGroup := v1.Group("/chat")
	chatGroup.Use(middleware.Auth(jwtUtil))
	{
		chatGroup.POST("", chatHdl.Chat)
		chatGroup.GET("/conversations", chatHdl.List)
		chatGroup.GET("/conversations/:id", chatHdl.History)
		chatGroup.DELETE("/conversations/:id", chatHdl.Clear)
	}

	// 以下接口依赖MongoDB
	if s.mongo == nil {
		log.Warn().Msg("MongoDB not configured, auth/clinical/resource endpoints disabled")
		return nil
	}
	db := s.mongo.Database()

	// 认证接口
	authSvc := service.NewAuthService(
		authRepo.NewUserRepo(db),
		authRepo.NewRefreshTokenRepo(db),
		jwtSecret,
		accessTokenExpiry,
		refreshTokenExpiry,
	)
	authHdl := authHandler.NewHandler(authSvc)

	v1.POST("/auth/register", authHdl.Register)
	v1.POST("/auth/login", authHdl.Login)
	v1.POST("/auth/refresh", authHdl.Refresh)

	authGroup := v1.Group("/auth")
	authGroup.Use(middleware.Auth(jwtUtil))
	{
		authGroup.POST("/logout", authHdl.Logout)
		authGroup.GET("/me", authHdl.GetMe)
	}

	// 诊疗接口（需要认证）
	clinicalSvc := service.NewClinicalService(
		clinicalRepo.NewPatientRepo(db),
		clinicalRepo.NewPrescriptionRepo(db),
		clinicalRepo.NewLabReportRepo(db),
		clinicalRepo.NewNurseRepo(db),
	)
	clinicalHdl := clinicalHandler.NewHandler(clinicalSvc)

	protected := v1.Group("")
	protected.Use(middleware.Auth(jwtUtil))
	{
		protected.POST("/patients", clinicalHdl.CreatePatient)
		protected.GET("/patients", clinicalHdl.ListPatients)
		protected.GET("/patients/:id", clinicalHdl.GetPatient)
		protected.PUT("/patients/:id", clinicalHdl.UpdatePatient)
		protected.DELETE("/patients/:id", clinicalHdl.DeletePatient)

		protected.POST("/prescriptions", clinicalHdl.CreatePrescription)
		protected.GET("/prescriptions", clinicalHdl.ListPrescriptions)
		protected.GET("/prescriptions/:id", clinicalHdl.GetPrescription)
		protected.PUT("/prescriptions/:id/status", clinicalHdl.UpdatePrescriptionStatus)

		protected.POST("/lab-reports", clinicalHdl.CreateLabReport)
		protected.GET("/lab-reports", clinicalHdl.ListLabReports)
		protected.GET("/lab-reports/:id", clinicalHdl.GetLabReport)

		protected.POST("/nurses", clinicalHdl.CreateNurse)
		protected.GET("/nurses", clinicalHdl.ListNurses)
		protected.GET("/nurses/:id", clinicalHdl.GetNurse)
		protected.PUT("/nurses/:id", clinicalHdl.UpdateNurse)
	}

	// 资源接口（需要认证）
	store, err := storagefactory.NewStorage(context.Background(), &s.cfg.Storage)
	if err != nil {
		log.Warn().Err(err).Msg("failed to initialize storage, resource endpoints disabled")
		return nil
	}
	resourceSvc := service.NewResourceService(resourceRepo.NewResourceRepo(db), store)
	resourceHdl := resourceHandler.NewHandler(resourceSvc)
	{
		protected.POST("/resources", resourceHdl.UploadFile)
		protected.GET("/resources", resourceHdl.List)
		protected.GET("/resources/:id/download-url", resourceHdl.GetDownloadURL)
		protected.DELETE("/resources/:id", resourceHdl.Delete)
	}

	return nil
}

// Run 启动服务器
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
	}

	// 启动服务器
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	// 等待关闭信号或错误
	select {
	case <-ctx.Done():
		log.Info().Msg("shutting down server...")

		// 关闭连接
		if s.mongo != nil {
			if err := s.mongo.Close(context.Background()); err != nil {
				log.Error().Err(err).Msg("failed to close MongoDB connection")
			}
		}
		if s.redis != nil {
			if err := s.redis.Close(); err != nil {
				log.Error().Err(err).Msg("failed to close Redis connection")
			}
		}

		return srv.Shutdown(context.Background())
	case err := <-errCh:
		return err
	}
}

// Engine 获取 Gin 引擎 (用于测试)
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
