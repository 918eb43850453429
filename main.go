package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/wanderlist/wanderlist/handlers"
	"github.com/wanderlist/wanderlist/internal/config"
	"github.com/wanderlist/wanderlist/internal/database"
	"github.com/wanderlist/wanderlist/internal/oidc"
	"github.com/wanderlist/wanderlist/internal/places"
	"github.com/wanderlist/wanderlist/internal/planner"
	"github.com/wanderlist/wanderlist/internal/preferences"
	"github.com/wanderlist/wanderlist/internal/sessions"
	"github.com/wanderlist/wanderlist/internal/users"
	"github.com/wanderlist/wanderlist/pkg/logger"
	"github.com/wanderlist/wanderlist/pkg/metrics"
	"github.com/wanderlist/wanderlist/pkg/middleware"
	"github.com/wanderlist/wanderlist/web"
)

var startTime = time.Now()

func main() {
	// LOG_LEVEL: debug|info|warn|error|fatal, LOG_FORMAT: console|json
	logger.Init(os.Getenv("LOG_LEVEL"))
	logger.SetFormat(os.Getenv("LOG_FORMAT"))
	logger.Debugf("startup: LOG_LEVEL=%s", logger.LevelString())

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	if cfg.Session.Secret == "" {
		if cfg.Server.Environment == "production" {
			logger.Fatalf("SESSION_SECRET is required in production")
		}
		cfg.Session.Secret = randomSecret()
		logger.Warn("using a random session secret; sessions will not survive a restart")
	}
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	logger.Infof("config loaded: db=%s mongo=%v redis=%v oidc=%s", cfg.Database.Driver, cfg.MongoDB.URI != "", cfg.Redis.Host != "", cfg.OIDC.IssuerURL)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// relational store: users and preferences
	db, err := database.OpenSQL(cfg.Database.Driver, cfg.Database.DSN)
	if err != nil {
		logger.Fatalf("failed to open database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatalf("failed to migrate database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatalf("database handle: %v", err)
	}
	defer sqlDB.Close()

	userSvc := users.NewService(users.NewGormUserRepository(db))
	prefSvc := preferences.NewService(preferences.NewGormRepository(db))

	sessionRepo, sessionCheck, closeSessions := openSessionStore(ctx, cfg)
	defer closeSessions()
	sessionsSvc := sessions.NewService(sessionRepo, cfg.Session.TTL, cfg.Session.LoginTTL)

	// OIDC: browser login plus bearer verification for the JSON API
	var verifier middleware.Verifier
	authenticator, err := oidc.NewAuthenticator(ctx, oidc.Config{
		IssuerURL:    cfg.OIDC.IssuerURL,
		ClientID:     cfg.OIDC.ClientID,
		ClientSecret: cfg.OIDC.ClientSecret,
		RedirectURL:  cfg.RedirectURL(),
		Scopes:       cfg.OIDC.Scopes,
	})
	if err != nil {
		logger.Warnf("failed to initialize OIDC provider: %v", err)
	} else {
		verifier = authenticator
	}
	if cfg.OIDC.AllowInsecure {
		logger.Warn("enabling insecure OIDC verifier (integration mode)")
		verifier = oidc.NewInsecureVerifier()
	}

	client := places.NewClient(places.ClientConfig{
		BaseURL:          cfg.Places.BaseURL,
		APIKey:           cfg.Places.APIKey,
		Language:         cfg.Places.Language,
		Limit:            cfg.Places.Limit,
		Timeout:          cfg.Places.Timeout,
		BreakerThreshold: cfg.Places.BreakerThreshold,
		BreakerCooldown:  cfg.Places.BreakerCooldown,
	})
	if cfg.Places.APIKey == "" {
		logger.Warn("PLACES_API_KEY is not set; provider calls will likely be rejected")
	}
	planSvc := planner.NewService(
		prefSvc,
		places.NewBuilder(cfg.Places.RadiusMeters),
		client,
		places.NewAssembler(cfg.Results.AttractionCap, cfg.Results.FoodCap, nil),
	)

	tmpl, err := web.Templates()
	if err != nil {
		logger.Fatalf("failed to parse templates: %v", err)
	}

	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	// Global middlewares: logging + recovery
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(middleware.Sessions(cfg, sessionsSvc))

	handlers.RegisterHealth(r, startTime, map[string]handlers.ReadinessCheck{
		"database": sqlDB.PingContext,
		"sessions": sessionCheck,
		"oidc": func(context.Context) error {
			if authenticator == nil {
				return errors.New("provider not discovered")
			}
			return nil
		},
	})

	if authenticator != nil {
		handlers.NewAuthHandler(cfg, authenticator, userSvc, sessionsSvc).Register(r)
	} else {
		logger.Warnf("OIDC provider unavailable, login answers 503")
		handlers.RegisterLoginUnavailable(r)
	}
	handlers.NewSearchHandler(prefSvc, planSvc).Register(r)
	handlers.RegisterSwagger(r)

	api := r.Group("/api/v1")
	api.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:   []string{"Content-Length"},
		MaxAge:          12 * time.Hour,
	}))
	if verifier != nil {
		handlers.NewAPIHandler(prefSvc).Register(api, middleware.AuthMiddleware(verifier, userSvc))
	} else {
		api.GET("/me", func(c *gin.Context) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"message": "OIDC not configured"})
		})
	}

	// Expose Prometheus metrics
	metrics.RegisterCollectors(prometheus.DefaultRegisterer)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
	go func() {
		logger.Infof("Starting wanderlist on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("graceful shutdown failed: %v", err)
	}
}

// openSessionStore prefers Redis, then MongoDB, then process memory.
func openSessionStore(ctx context.Context, cfg *config.Config) (sessions.Repository, handlers.ReadinessCheck, func()) {
	if cfg.Redis.Host != "" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		err := client.Ping(ctx).Err()
		if err == nil {
			logger.Infof("Using Redis for session storage: %s:%s", cfg.Redis.Host, cfg.Redis.Port)
			check := func(ctx context.Context) error { return client.Ping(ctx).Err() }
			return sessions.NewRedisRepository(client, "session:"), check, func() { _ = client.Close() }
		}
		logger.Warnf("failed to connect to Redis (%s:%s): %v", cfg.Redis.Host, cfg.Redis.Port, err)
		_ = client.Close()
	}

	if cfg.MongoDB.URI != "" {
		// Retry/backoff when connecting to MongoDB to tolerate startup races
		const maxAttempts = 5
		backoff := time.Second
		var client *mongo.Client
		var errConn error
		for attempt := 1; attempt <= maxAttempts; attempt++ {
			client, errConn = database.ConnectMongo(ctx, cfg.MongoDB.URI, cfg.MongoDB.Timeout)
			if errConn == nil {
				break
			}
			logger.Warnf("attempt %d/%d: failed to connect to MongoDB: %v", attempt, maxAttempts, errConn)
			if attempt < maxAttempts {
				time.Sleep(backoff)
				backoff *= 2
			}
		}
		if errConn == nil {
			repo := sessions.NewMongoRepository(client.Database(cfg.MongoDB.Database).Collection("sessions"))
			if err := repo.EnsureIndexes(ctx); err != nil {
				logger.Warnf("failed to create session TTL index: %v", err)
			}
			logger.Infof("Using MongoDB for session storage")
			check := func(ctx context.Context) error { return client.Ping(ctx, nil) }
			return repo, check, func() { _ = client.Disconnect(context.Background()) }
		}
		logger.Warnf("could not connect to MongoDB after %d attempts: %v", maxAttempts, errConn)
	}

	logger.Warn("Using in-memory session storage; sessions are lost on restart")
	return sessions.NewMemoryRepository(), func(context.Context) error { return nil }, func() {}
}

func randomSecret() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		logger.Fatalf("generate session secret: %v", err)
	}
	return hex.EncodeToString(b)
}
