package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cloud.google.com/go/firestore"
	fbapp "firebase.google.com/go/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"google.golang.org/api/option"

	"expressivart/internal/adapter/api"
	"expressivart/internal/adapter/api/handler"
	apimiddleware "expressivart/internal/adapter/api/middleware"
	"expressivart/internal/adapter/api/router"
	"expressivart/internal/adapter/repository"
	domainrepo "expressivart/internal/domain/repository"
	"expressivart/internal/infrastructure/cache"
	"expressivart/internal/infrastructure/database"
	"expressivart/internal/infrastructure/firebase"
	"expressivart/internal/infrastructure/ratelimit"
	"expressivart/internal/infrastructure/realtime"
	"expressivart/internal/infrastructure/storage"
	"expressivart/internal/infrastructure/websocket"
	"expressivart/internal/usecase"
	"expressivart/pkg/config"
	"expressivart/pkg/logger"
	"expressivart/pkg/response"
)

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration: %v", err)
	}
	logger.Init(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []option.ClientOption
	switch {
	case cfg.ServiceAccountJSON != "":
		logger.Info("Using Google service account from environment variable")
		opts = append(opts, option.WithCredentialsJSON([]byte(cfg.ServiceAccountJSON)))
	case cfg.ServiceAccountPath != "":
		if _, err := os.Stat(cfg.ServiceAccountPath); err != nil {
			logger.Fatal("Service account file is not readable: %s", cfg.ServiceAccountPath)
		}
		logger.Info("Using Google service account from file: %s", cfg.ServiceAccountPath)
		opts = append(opts, option.WithCredentialsFile(cfg.ServiceAccountPath))
	default:
		logger.Info("Using application default credentials")
	}

	firestoreClient, err := firestore.NewClient(ctx, cfg.FirebaseProject, opts...)
	if err != nil {
		logger.Fatal("Failed to create Firestore client: %v", err)
	}
	defer firestoreClient.Close()

	// Auth: Firebase in production, locally signed tokens in development.
	var (
		verifier  usecase.TokenVerifier
		identity  usecase.IdentityProvider
		devTokens usecase.DevTokenMinter
	)
	switch cfg.AuthMode {
	case config.AuthModeDev:
		issuer := firebase.NewDevTokenIssuer(cfg.JWTSecret, cfg.JWTExpiry)
		verifier, devTokens = issuer, issuer
		logger.Warn("AUTH_MODE=dev: accepting locally issued tokens")
	default:
		firebaseApp, err := fbapp.NewApp(ctx, &fbapp.Config{ProjectID: cfg.FirebaseProject}, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase: %v", err)
		}
		authClient, err := firebaseApp.Auth(ctx)
		if err != nil {
			logger.Fatal("Failed to initialize Firebase Auth: %v", err)
		}
		firebaseAuth := firebase.NewFirebaseAuthClient(authClient, cfg.FirebaseApiKey)
		verifier, identity = firebaseAuth, firebaseAuth
	}

	var imageStore usecase.ImageStore
	if cfg.StorageBucket != "" {
		storageClient, err := storage.NewCloudStorageClient(ctx, cfg.StorageBucket, opts...)
		if err != nil {
			logger.Fatal("Failed to initialize Cloud Storage: %v", err)
		}
		defer storageClient.Close()
		imageStore = storageClient
	} else {
		logger.Warn("STORAGE_BUCKET not set: image uploads are disabled")
	}

	checks := map[string]handler.HealthCheck{}

	// Repositories
	profileRepo := repository.NewFirestoreProfileRepository(firestoreClient)
	roleRepo := repository.NewFirestoreUserRoleRepository(firestoreClient)
	artworkRepo := repository.NewFirestoreArtworkRepository(firestoreClient)
	commentRepo := repository.NewFirestoreCommentRepository(firestoreClient)
	favoriteRepo := repository.NewFirestoreFavoriteRepository(firestoreClient)
	orderRepo := repository.NewFirestoreOrderRepository(firestoreClient)

	var (
		conversationRepo domainrepo.ConversationRepository
		messageRepo      domainrepo.MessageRepository
	)
	switch cfg.ChatStore {
	case config.ChatStorePostgres:
		pool, err := database.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to Postgres: %v", err)
		}
		defer pool.Close()
		if err := database.EnsureChatSchema(ctx, pool); err != nil {
			logger.Fatal("Failed to prepare chat schema: %v", err)
		}
		conversationRepo = repository.NewPgConversationRepository(pool)
		messageRepo = repository.NewPgMessageRepository(pool)
		checks["postgres"] = pool.Ping
	default:
		conversationRepo = repository.NewFirestoreConversationRepository(firestoreClient)
		messageRepo = repository.NewFirestoreMessageRepository(firestoreClient)
	}

	// Realtime: in-process hub, fanned out across instances through Redis when configured.
	hub := realtime.NewHub()
	defer hub.Close()
	var publisher realtime.Publisher = hub
	if cfg.RedisURL != "" {
		redisClient, err := realtime.NewRedisClient(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("Failed to connect to Redis: %v", err)
		}
		defer redisClient.Close()

		relay := realtime.NewRedisRelay(redisClient, hub)
		publisher = relay
		go func() {
			if err := relay.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("Realtime relay stopped: %v", err)
			}
		}()
		checks["redis"] = redisPing(redisClient)
	}

	profileCache := cache.NewProfileCache(profileRepo, cfg.ProfileCacheSize, cfg.ProfileCacheTTL)

	rateLimiter := ratelimit.NewRateLimiter()
	rateLimiter.StartCleanupRoutine(ctx.Done())

	// Use cases
	authUseCase := usecase.NewAuthUseCase(verifier, identity, devTokens, profileRepo, roleRepo)
	profileUseCase := usecase.NewProfileUseCase(profileRepo, profileCache)
	artworkUseCase := usecase.NewArtworkUseCase(artworkRepo, profileRepo, favoriteRepo, profileCache)
	commentUseCase := usecase.NewCommentUseCase(commentRepo, artworkRepo, profileCache)
	favoriteUseCase := usecase.NewFavoriteUseCase(favoriteRepo, artworkRepo)
	orderUseCase := usecase.NewOrderUseCase(orderRepo, artworkRepo, profileRepo, profileCache, publisher, rateLimiter)
	chatUseCase := usecase.NewChatUseCase(conversationRepo, messageRepo, artworkRepo, profileCache, publisher, hub, rateLimiter)
	changeFeed := usecase.NewChangeFeed(chatUseCase, hub)
	uploadUseCase := usecase.NewUploadUseCase(imageStore, cfg.UploadMaxBytes, rateLimiter)

	wsManager := websocket.NewManager()
	wsManager.Start(ctx)
	if _, err := wsManager.Notify(hub, usecase.OrdersTable, "buyer_id", "seller_id"); err != nil {
		logger.Fatal("Failed to start order notifications: %v", err)
	}

	handlers := &handler.Handlers{
		Auth:      handler.NewAuthHandler(authUseCase),
		Profile:   handler.NewProfileHandler(profileUseCase),
		Artwork:   handler.NewArtworkHandler(artworkUseCase),
		Comment:   handler.NewCommentHandler(commentUseCase),
		Favorite:  handler.NewFavoriteHandler(favoriteUseCase),
		Order:     handler.NewOrderHandler(orderUseCase),
		Chat:      handler.NewChatHandler(chatUseCase),
		Upload:    handler.NewUploadHandler(uploadUseCase, cfg.UploadMaxBytes),
		Health:    handler.NewHealthHandler(version, checks),
		WebSocket: handler.NewWebSocketHandler(wsManager, authUseCase, chatUseCase, changeFeed, cfg.CORSAllowedOrigins),
	}
	if cfg.AuthMode == config.AuthModeDev {
		handlers.DevToken = handler.NewDevTokenHandler(authUseCase)
	}

	e := echo.New()
	e.HideBanner = true
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = response.HTTPErrorHandler

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowedOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
	}))
	e.Use(apimiddleware.Observe())

	router.Setup(e, handlers, router.Middlewares{
		Auth:        apimiddleware.NewAuthMiddleware(authUseCase),
		Admin:       apimiddleware.NewAdminMiddleware(roleRepo),
		RateLimiter: rateLimiter,
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	go func() {
		logger.Info("Starting server on port %s (auth=%s, chat store=%s)", cfg.ServerPort, cfg.AuthMode, cfg.ChatStore)
		if err := e.Start(":" + cfg.ServerPort); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("Graceful shutdown failed: %v", err)
	}
}

func redisPing(client *redis.Client) handler.HealthCheck {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
