// Package server assembles the web app from its configuration.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"eventos-web/internal/api"
	"eventos-web/internal/config"
	"eventos-web/internal/logger"
	"eventos-web/internal/middleware"
	"eventos-web/internal/payphone"
	"eventos-web/internal/services"
	"eventos-web/internal/storage"

	"github.com/gorilla/sessions"
	"github.com/redis/go-redis/v9"
)

// Login attempts allowed per client IP within the window
const (
	loginMaxAttempts = 10
	loginWindow      = 15 * time.Minute
)

// App is a configured web app ready to serve
type App struct {
	Handler http.Handler

	limiter *middleware.LoginRateLimiter
	redis   *redis.Client
	memory  *storage.MemoryProvider
}

// New wires the backend client, services, client state and router
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	provider, rdb, err := newStateProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}

	limiter := middleware.NewLoginRateLimiter(loginMaxAttempts, loginWindow)

	handler := NewRouter(RouterConfig{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Provider:       provider,
		LoginLimiter:   limiter,
	}, NewServices(cfg))

	app := &App{Handler: handler, limiter: limiter, redis: rdb}
	if memory, ok := provider.(*storage.MemoryProvider); ok {
		app.memory = memory
	}
	return app, nil
}

// Close releases the app's background resources
func (a *App) Close() error {
	a.limiter.Close()
	if a.memory != nil {
		a.memory.Close()
	}
	if a.redis != nil {
		return a.redis.Close()
	}
	return nil
}

// NewServices builds every business service over one backend client
func NewServices(cfg *config.Config) Services {
	client := api.NewClient(api.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	})
	backend := services.BindClient(client)

	settings := payphone.Settings{
		PublicKey: cfg.Payphone.PublicKey,
		StoreID:   cfg.Payphone.StoreID,
		Currency:  cfg.Payphone.Currency,
	}

	return Services{
		Auth:     services.NewAuthService(backend),
		Catalog:  services.NewCatalogService(backend),
		Images:   services.NewImageService(backend),
		Purchase: services.NewPurchaseService(backend, payphone.NewBrowserLauncher(), settings),
		Wallet:   services.NewWalletService(backend),
		Profile:  services.NewProfileService(backend),
	}
}

// newSessionStore creates the cookie store holding the client state or the
// browser id
func newSessionStore(cfg *config.Config) *sessions.CookieStore {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(cfg.Session.StateTTL.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// newStateProvider picks where client state lives. With REDIS_URL set the
// state goes to Redis; an unreachable Redis falls back to process memory so
// the site stays up. Without it the state lives in the session cookie.
func newStateProvider(ctx context.Context, cfg *config.Config) (storage.Provider, *redis.Client, error) {
	cookies := newSessionStore(cfg)

	if !cfg.Redis.Enabled() {
		logger.Log.Infow("client state stored in session cookie", "cookie", cfg.Session.Name)
		return storage.NewCookieProvider(cookies, cfg.Session.Name), nil, nil
	}

	opt, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse REDIS_URL: %w", err)
	}
	rdb := redis.NewClient(opt)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		logger.Log.Warnw("redis unreachable, client state kept in memory", "addr", opt.Addr, "error", err)
		_ = rdb.Close()
		return storage.NewMemoryProvider(cookies, cfg.Session.Name, cfg.Session.StateTTL), nil, nil
	}

	logger.Log.Infow("client state stored in redis", "addr", opt.Addr, "ttl", cfg.Session.StateTTL)
	return storage.NewRedisProvider(rdb, cookies, cfg.Session.Name, cfg.Session.StateTTL), rdb, nil
}
