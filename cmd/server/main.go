package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	accessapp "github.com/hostly/ordercore/internal/application/access"
	menuapp "github.com/hostly/ordercore/internal/application/menu"
	orderapp "github.com/hostly/ordercore/internal/application/order"
	"github.com/hostly/ordercore/internal/domain/access"
	"github.com/hostly/ordercore/internal/infrastructure/auth"
	"github.com/hostly/ordercore/internal/infrastructure/config"
	"github.com/hostly/ordercore/internal/infrastructure/logger"
	"github.com/hostly/ordercore/internal/infrastructure/notify"
	"github.com/hostly/ordercore/internal/infrastructure/persistence"
	"github.com/hostly/ordercore/internal/infrastructure/telemetry"
	"github.com/hostly/ordercore/internal/interfaces/http/handler"
	"github.com/hostly/ordercore/internal/interfaces/http/middleware"
	"github.com/hostly/ordercore/internal/interfaces/http/router"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// systemSubscriber is the identity of process-wide sinks (webhook, relay)
var systemSubscriber = notify.SubscriberContext{UserID: "system", Role: access.RoleAdmin}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	instanceID := cfg.App.Name + "-" + uuid.NewString()[:8]
	log = log.With(zap.String("instance", instanceID))
	log.Info("Starting ordercore",
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("relay", cfg.Notify.Relay),
	)

	rootCtx, stop := context.WithCancel(context.Background())
	defer stop()

	providers, err := telemetry.Setup(rootCtx, telemetry.Config{
		TracingEnabled:    cfg.Telemetry.Enabled,
		MetricsEnabled:    cfg.Telemetry.MetricsEnabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}
	defer func() {
		if err := providers.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down telemetry", zap.Error(err))
		}
	}()

	db, err := persistence.NewDatabase(&cfg.Database, cfg.Log.SQLLevel, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := telemetry.InstrumentDB(db.DB, "postgresql"); err != nil {
			log.Fatal("Failed to instrument database", zap.Error(err))
		}
	}
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatal("Failed to get sql.DB", zap.Error(err))
	}
	log.Info("Database connected")

	metrics, err := telemetry.NewOrderMetrics(providers.Meter("ordercore"))
	if err != nil {
		log.Fatal("Failed to create metrics", zap.Error(err))
	}

	// Change bus and process-wide sinks
	bus := notify.NewBus(log,
		notify.WithInstanceID(instanceID),
		notify.WithSubscriberBuffer(cfg.Notify.SubscriberBuffer),
		notify.WithMetrics(metrics),
	)
	if cfg.Notify.WebhookURL != "" {
		webhook := notify.NewWebhookSink(cfg.Notify.WebhookURL, cfg.App.DeploymentID, cfg.Notify.WebhookTimeout, log)
		if _, err := bus.Subscribe(webhook, systemSubscriber, notify.Filter{}); err != nil {
			log.Fatal("Failed to subscribe webhook sink", zap.Error(err))
		}
		log.Info("Webhook sink enabled")
	}

	var redisClient *redis.Client
	if cfg.Notify.Relay == config.RelayRedis {
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = redisClient.Close() }()
		if err := redisClient.Ping(rootCtx).Err(); err != nil {
			log.Fatal("Failed to connect to redis", zap.Error(err))
		}
	}

	relay, closeRelay, err := newRelay(cfg, redisClient, instanceID, log)
	if err != nil {
		log.Fatal("Failed to create relay", zap.Error(err))
	}
	defer closeRelay()
	if _, err := notify.ConnectRelay(rootCtx, bus, relay, systemSubscriber); err != nil {
		log.Fatal("Failed to connect relay", zap.Error(err))
	}

	hub := notify.NewHub(bus, cfg.Notify.SubscriberBuffer, log)

	// Persistence
	feed := persistence.NewChangeFeed(cfg.Notify.SubscriberBuffer, log)
	orderStore := persistence.NewGormOrderStore(db.DB, feed)
	dishRepo := persistence.NewGormDishRepository(db.DB)
	overrideRepo := persistence.NewGormOverrideRepository(db.DB)
	go logRowChanges(rootCtx, orderStore, log)

	var revocations auth.RevocationList = auth.NewMemoryRevocationList()
	if redisClient != nil {
		revocations = auth.NewRedisRevocationList(redisClient)
	}

	// Application services
	matrix := access.NewDefaultMatrix()
	orderService := orderapp.NewService(orderStore, dishRepo, matrix, bus, log, orderapp.WithMetrics(metrics))
	menuService := menuapp.NewService(dishRepo, matrix)
	permissionService := accessapp.NewService(matrix, overrideRepo)
	jwtService := auth.NewJWTService(cfg.JWT)

	if err := middleware.SetupValidator(); err != nil {
		log.Fatal("Failed to register validators", zap.Error(err))
	}

	if cfg.App.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.HTTP.CORSAllowOrigins
	engine.Use(
		middleware.Tracing(middleware.TracingConfig{ServiceName: cfg.Telemetry.ServiceName, Enabled: cfg.Telemetry.Enabled}),
		logger.GinMiddleware(log),
		logger.Recovery(log),
		middleware.Secure(),
		middleware.CORS(cors),
	)

	router.Mount(engine, router.Handlers{
		Orders:      handler.NewOrderHandler(orderService),
		Menu:        handler.NewMenuHandler(menuService),
		Permissions: handler.NewPermissionHandler(permissionService),
		Events:      handler.NewEventsHandler(hub, cfg.Notify.SSEHeartbeat),
		Auth:        handler.NewAuthHandler(revocations),
		Health:      handler.NewHealthHandler(sqlDB, instanceID),
	}, middleware.Authenticate(middleware.AuthConfig{
		JWTService:  jwtService,
		Overrides:   permissionService,
		Revocations: revocations,
		Logger:      log,
	}), matrix)

	// No WriteTimeout: the event stream is a long-lived response
	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           engine,
		ReadHeaderTimeout: cfg.HTTP.ReadTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
	}
	// Open event streams never go idle on their own
	srv.RegisterOnShutdown(hub.Close)

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if err := bus.Close(ctx); err != nil {
		log.Warn("Change bus did not drain before timeout", zap.Error(err))
	}
	stop()

	log.Info("Server exited gracefully")
}

// newRelay builds the configured cross-instance relay
func newRelay(cfg *config.Config, redisClient *redis.Client, instanceID string, log *zap.Logger) (notify.Relay, func(), error) {
	switch cfg.Notify.Relay {
	case config.RelayRedis:
		relay := notify.NewRedisRelay(redisClient, cfg.Notify.RelayChannel, instanceID, log)
		return relay, func() { _ = relay.Close() }, nil
	case config.RelayNATS:
		conn, err := nats.Connect(cfg.NATS.URL,
			nats.Name(cfg.NATS.Name),
			nats.MaxReconnects(-1),
			nats.ReconnectWait(2*time.Second),
		)
		if err != nil {
			return nil, nil, err
		}
		relay := notify.NewNATSRelay(conn, cfg.Notify.RelayChannel, instanceID, log)
		return relay, func() {
			_ = relay.Close()
			conn.Close()
		}, nil
	default:
		relay := notify.NewMemoryNetwork().Join(instanceID, log)
		return relay, func() { _ = relay.Close() }, nil
	}
}

// logRowChanges traces the raw order feed at debug level
func logRowChanges(ctx context.Context, store *persistence.GormOrderStore, log *zap.Logger) {
	changes, err := store.SubscribeToChanges(ctx, persistence.OrdersTable)
	if err != nil {
		log.Warn("Order change feed unavailable", zap.Error(err))
		return
	}
	for change := range changes {
		log.Debug("Order row changed",
			zap.String("type", string(change.Type)),
			zap.String("table", change.Table))
	}
}
