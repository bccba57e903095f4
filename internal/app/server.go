// internal/app/server.go
package app

import (
	"context"
	"fmt"

	"leadscope-service/internal/config"
	authHandler "leadscope-service/internal/handlers/auth"
	callHandler "leadscope-service/internal/handlers/callsession"
	customerHandler "leadscope-service/internal/handlers/customer"
	insightHandler "leadscope-service/internal/handlers/insight"
	interactionHandler "leadscope-service/internal/handlers/interaction"
	wsHandler "leadscope-service/internal/handlers/websocket"
	"leadscope-service/internal/middleware"
	"leadscope-service/internal/pkg/jwt"
	"leadscope-service/internal/repository/postgres"
	"leadscope-service/internal/service/assist"
	authService "leadscope-service/internal/service/auth"
	"leadscope-service/internal/service/calls"
	"leadscope-service/internal/service/crm"
	"leadscope-service/internal/service/identity"
	"leadscope-service/internal/service/intent"
	"leadscope-service/internal/service/pipeline"
	"leadscope-service/internal/service/recommend"
	"leadscope-service/internal/service/scoring"
	"leadscope-service/internal/session"
	"leadscope-service/internal/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type Server struct {
	cfg    config.AppConfig
	engine *gin.Engine
	logger *zap.Logger
	cancel context.CancelFunc
}

func NewServer() *Server {
	cfg := config.Load()
	engine := gin.New()
	return &Server{cfg: cfg, engine: engine}
}

func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	// ----- Logger -----
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("failed to build logger: %w", err)
	}
	defer logger.Sync()
	s.logger = logger

	// ----- PostgreSQL -----
	pool, err := postgres.Connect(ctx, s.cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to PostgreSQL: %w", err)
	}

	// ----- Redis -----
	redisClient := redis.NewClient(&redis.Options{
		Addr:     s.cfg.RedisAddr,
		Password: s.cfg.RedisPass,
		DB:       s.cfg.RedisDB,
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}

	// ----- JWT -----
	priv, err := jwt.LoadRSAPrivateKeyFromPEM(s.cfg.JWT.PrivPath)
	if err != nil {
		return fmt.Errorf("failed to load JWT private key: %w", err)
	}
	pub, err := jwt.LoadRSAPublicKeyFromPEM(s.cfg.JWT.PubPath)
	if err != nil {
		return fmt.Errorf("failed to load JWT public key: %w", err)
	}
	generator := jwt.NewGenerator(priv, s.cfg.JWT)
	verifier := jwt.NewVerifier(pub, s.cfg.JWT)

	// ----- Repositories -----
	customerRepo := postgres.NewCustomerRepository(pool)
	interactionRepo := postgres.NewInteractionRepository(pool)
	agentRepo := postgres.NewAgentRepository(pool)

	// ----- WebSocket hub -----
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	// ----- Services -----
	auth := authService.NewAuthService(agentRepo, generator, verifier, logger)
	resolver := identity.NewResolver(customerRepo, interactionRepo, logger)
	classifier := intent.NewClassifier(logger)
	scorer := scoring.NewScorer(logger)
	assister := assist.NewGenerator(logger)
	recommender := recommend.NewEngine(logger)

	pipelineService := pipeline.NewService(
		resolver,
		customerRepo,
		interactionRepo,
		classifier,
		scorer,
		assister,
		recommender,
		hub,
		s.cfg.RecentInteractionLimit,
		logger,
	)
	crmService := crm.NewService(customerRepo, resolver, pipelineService, logger)

	sessionStore := session.NewRedisStore(redisClient, s.cfg.CallSessionTTL)
	callService := calls.NewService(sessionStore, pipelineService, s.cfg.CallSessionTTL, s.cfg.CallSessionSweepEvery, logger)
	go callService.RunSweeper(ctx)

	// ----- Handlers -----
	authHandlerInst := authHandler.NewAuthHandler(auth)
	customerHandlerInst := customerHandler.NewCustomerHandler(crmService)
	interactionHandlerInst := interactionHandler.NewInteractionHandler(pipelineService, interactionRepo)
	insightHandlerInst := insightHandler.NewInsightHandler(pipelineService)
	callHandlerInst := callHandler.NewCallHandler(callService)
	wsHandlerInst := wsHandler.NewWebSocketHandler(hub, auth, logger)

	// ----- Middlewares -----
	authMiddleware := middleware.NewAuthMiddleware(auth)

	s.engine.Use(
		middleware.RecoveryMiddleware(logger),
		middleware.LoggingMiddleware(logger),
		middleware.CORSMiddleware(),
	)

	// ----- Router -----
	handlers := &Handlers{
		AuthHandler:        authHandlerInst,
		CustomerHandler:    customerHandlerInst,
		InteractionHandler: interactionHandlerInst,
		InsightHandler:     insightHandlerInst,
		CallHandler:        callHandlerInst,
		WSHandler:          wsHandlerInst,
		AuthMiddleware:     authMiddleware,
	}
	SetupRouter(s.engine, logger, handlers)

	logger.Info("server starting", zap.String("addr", s.cfg.HTTPAddr))
	return s.engine.Run(s.cfg.HTTPAddr)
}

// Shutdown stops background workers (hub, sweeper).
func (s *Server) Shutdown() {
	if s.cancel != nil {
		s.cancel()
	}
}
