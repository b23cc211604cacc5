package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/folio-social/folio-backend/config"
	httpapi "github.com/folio-social/folio-backend/internal/api/http"
	apimw "github.com/folio-social/folio-backend/internal/api/http/middleware"
	"github.com/folio-social/folio-backend/internal/api/http/routes"
	authfb "github.com/folio-social/folio-backend/internal/auth"
	authhttp "github.com/folio-social/folio-backend/internal/auth/http"
	authmw "github.com/folio-social/folio-backend/internal/auth/middleware"
	authrepo "github.com/folio-social/folio-backend/internal/auth/repository"
	authservice "github.com/folio-social/folio-backend/internal/auth/service"
	connhttp "github.com/folio-social/folio-backend/internal/connections/http"
	connrepo "github.com/folio-social/folio-backend/internal/connections/repository"
	connservice "github.com/folio-social/folio-backend/internal/connections/service"
	feedhttp "github.com/folio-social/folio-backend/internal/feed/http"
	feedrepo "github.com/folio-social/folio-backend/internal/feed/repository"
	feedservice "github.com/folio-social/folio-backend/internal/feed/service"
	"github.com/folio-social/folio-backend/internal/media"
	mediahttp "github.com/folio-social/folio-backend/internal/media/http"
	notifyhttp "github.com/folio-social/folio-backend/internal/notifications/http"
	notifyrepo "github.com/folio-social/folio-backend/internal/notifications/repository"
	notifyservice "github.com/folio-social/folio-backend/internal/notifications/service"
	profilecache "github.com/folio-social/folio-backend/internal/profiles/cache"
	profilehttp "github.com/folio-social/folio-backend/internal/profiles/http"
	profilerepo "github.com/folio-social/folio-backend/internal/profiles/repository"
	profileservice "github.com/folio-social/folio-backend/internal/profiles/service"
	fbstore "github.com/folio-social/folio-backend/internal/storage/firebase"
	fsstore "github.com/folio-social/folio-backend/internal/storage/firestore"
	pgstore "github.com/folio-social/folio-backend/internal/storage/postgres"
	redisstore "github.com/folio-social/folio-backend/internal/storage/redis"
)

// profileStore is what both profile repositories provide: documents for the
// profile service and connection mirrors for the connection service.
type profileStore interface {
	profileservice.Store
	connservice.Mirrors
}

type stores struct {
	profiles      profileStore
	requests      connservice.Requests
	notifications notifyservice.Store
	feed          feedservice.Store
}

// App holds the process-wide clients and services.
type App struct {
	Config *config.Config
	Logger *zap.Logger

	Redis     *redis.Client
	DB        *sql.DB
	Firebase  *firebase.App
	Firestore *firestore.Client

	Auth          *authservice.AuthService
	Profiles      *profileservice.ProfileService
	Connections   *connservice.ConnectionService
	Notifications *notifyservice.Aggregator
	Feed          *feedservice.FeedService
}

// New connects to every configured backend and wires the services.
func New(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*App, error) {
	a := &App{Config: cfg, Logger: logger}

	var err error
	a.Redis, err = redisstore.NewClient(ctx, &cfg.Redis)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}

	a.DB, err = pgstore.NewConnection(ctx, &cfg.Database)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("postgres: %w", err)
	}
	if a.DB == nil {
		logger.Info("identity directory disabled (DB_DSN not set)")
	}

	if cfg.Store.Backend == config.StoreFirestore || cfg.Auth.Mode == config.AuthFirebase {
		a.Firebase, err = fbstore.NewApp(ctx, &cfg.Firebase)
		if err != nil {
			a.Close()
			return nil, err
		}
	}

	st, err := a.openStores(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}

	var users authservice.UserDirectory
	if a.DB != nil {
		users = authrepo.NewUserRepository(a.DB)
	}
	a.Auth = authservice.NewAuthService(users, logger)
	a.Profiles = profileservice.NewProfileService(st.profiles, profilecache.NewRedisCache(a.Redis, cfg.Redis.ProfileCacheTTL), logger)
	a.Connections = connservice.NewConnectionService(st.requests, st.profiles, logger)
	a.Notifications = notifyservice.NewAggregator(st.notifications, a.Connections, cfg.Notifications.PanelLimit, logger)
	a.Feed = feedservice.NewFeedService(st.feed, a.Notifications, a.Profiles, logger)

	logger.Info("services ready",
		zap.String("store", cfg.Store.Backend),
		zap.String("auth", cfg.Auth.Mode))
	return a, nil
}

func (a *App) openStores(ctx context.Context) (*stores, error) {
	switch a.Config.Store.Backend {
	case config.StoreFirestore:
		fs, err := fsstore.NewClient(ctx, a.Firebase)
		if err != nil {
			return nil, err
		}
		a.Firestore = fs
		return &stores{
			profiles:      profilerepo.NewFirestoreRepository(fs, fsstore.NewBreaker(fsstore.ProfilesCollection, a.Logger)),
			requests:      connrepo.NewFirestoreRepository(fs, fsstore.NewBreaker(fsstore.ConnectionRequestsCollection, a.Logger)),
			notifications: notifyrepo.NewFirestoreRepository(fs, fsstore.NewBreaker(fsstore.NotificationsCollection, a.Logger)),
			feed:          feedrepo.NewFirestoreRepository(fs, fsstore.NewBreaker(fsstore.PostsCollection, a.Logger)),
		}, nil
	case config.StoreRedis:
		return &stores{
			profiles:      profilerepo.NewRedisRepository(a.Redis),
			requests:      connrepo.NewRedisRepository(a.Redis),
			notifications: notifyrepo.NewRedisRepository(a.Redis),
			feed:          feedrepo.NewRedisRepository(a.Redis),
		}, nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", a.Config.Store.Backend)
	}
}

// AuthMiddleware verifies Firebase ID tokens, or trusts identity headers in dev mode.
func (a *App) AuthMiddleware(ctx context.Context) (gin.HandlerFunc, error) {
	if a.Config.Auth.Mode == config.AuthDev {
		a.Logger.Warn("AUTH_MODE=dev: identity headers are trusted without verification")
		return authmw.DevAuthMiddleware(), nil
	}
	client, err := authfb.NewAuthClient(ctx, a.Firebase)
	if err != nil {
		return nil, err
	}
	return authmw.FirebaseAuthMiddleware(client, a.Logger), nil
}

// Router builds the HTTP API.
func (a *App) Router(ctx context.Context) (*gin.Engine, error) {
	authMiddleware, err := a.AuthMiddleware(ctx)
	if err != nil {
		return nil, err
	}

	cfg := a.Config
	syncOnSession := func(ctx context.Context, uid string) error {
		_, err := a.Connections.SyncAcceptedConnections(ctx, uid)
		return err
	}

	var rateLimit gin.HandlerFunc
	if cfg.RateLimit.RPS > 0 {
		rateLimit = apimw.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst).Middleware()
	}

	mediaOpts := media.Options{
		MaxWidth:  cfg.Media.MaxWidth,
		MaxHeight: cfg.Media.MaxHeight,
		Quality:   cfg.Media.Quality,
		MaxSizeKB: cfg.Media.MaxSizeKB,
	}

	return BuildRouter(RouterDeps{
		ServiceName: cfg.App.ServiceName,
		Version:     cfg.App.Version,
		CORSOrigins: cfg.Server.CORSOrigins,
		Logger:      a.Logger,
		Health:      a.healthChecks(),
		V1: routes.V1Deps{
			Auth:      authMiddleware,
			RateLimit: rateLimit,
			Handlers: []routes.Registrar{
				authhttp.New(a.Auth, a.Logger, syncOnSession),
				profilehttp.New(a.Profiles, a.Logger, a.Connections.ForgetUser),
				connhttp.New(a.Connections, a.Profiles, a.Logger),
				notifyhttp.New(a.Notifications, cfg.Notifications.PollInterval, cfg.Server.CORSOrigins, a.Logger),
				feedhttp.New(a.Feed, a.Logger),
				mediahttp.New(mediaOpts, a.Logger),
			},
		},
	}), nil
}

func (a *App) healthChecks() map[string]httpapi.Check {
	checks := map[string]httpapi.Check{
		"redis": func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() },
	}
	if a.DB != nil {
		checks["postgres"] = a.DB.PingContext
	}
	if a.Firestore != nil {
		checks["firestore"] = func(ctx context.Context) error {
			_, err := a.Firestore.Collection(fsstore.ProfilesCollection).Limit(1).Documents(ctx).GetAll()
			return err
		}
	}
	return checks
}

// Close releases every client that was opened.
func (a *App) Close() error {
	var errs []error
	if a.Firestore != nil {
		errs = append(errs, a.Firestore.Close())
	}
	if a.DB != nil {
		errs = append(errs, a.DB.Close())
	}
	if a.Redis != nil {
		errs = append(errs, a.Redis.Close())
	}
	return errors.Join(errs...)
}
