package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/auth"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/catalog"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/chat"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/config"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/db"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/favorites"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/flags"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/logging"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/middleware"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/orders"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/pricing"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/profile"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/router"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/storage"
)

func main() {

	// ───────────────────────── ENV ─────────────────────────
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("invalid configuration")
	}

	log := logging.New(cfg.LogLevel, cfg.Production())
	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ───────────────────────── DB ─────────────────────────
	pgDB, err := db.Connect(ctx, cfg.DatabaseURL, log)
	if err != nil {
		log.WithError(err).Fatal("postgres connection failed")
	}
	defer pgDB.Close()

	// ───────────────────────── DOCUMENT STORE ─────────────────────────
	var store docstore.Store
	if cfg.RedisURL != "" {
		client, err := docstore.ConnectRedis(ctx, cfg.RedisURL)
		if err != nil {
			log.WithError(err).Fatal("redis connection failed")
		}
		defer client.Close()
		store = docstore.NewRedis(client, log)
	} else {
		log.Warn("REDIS_URL not set, realtime documents are kept in process memory")
		store = docstore.NewMemory()
	}

	// ───────────────────────── STORAGE ─────────────────────────
	var images catalog.ImageStore
	if cfg.R2.Enabled() {
		r2Client, err := storage.NewR2Client(ctx, storage.R2Config{
			Endpoint:      cfg.R2.Endpoint,
			AccessKey:     cfg.R2.AccessKey,
			SecretKey:     cfg.R2.SecretKey,
			Bucket:        cfg.R2.Bucket,
			PublicBaseURL: cfg.R2.PublicBaseURL,
		})
		if err != nil {
			log.WithError(err).Fatal("R2 init failed")
		}
		images = r2Client
	} else {
		log.Warn("R2 not configured, catalog image upload is disabled")
	}

	m := metrics.New()

	// ───────────────────────── AUTH ─────────────────────────
	tokens, err := auth.NewTokenIssuer(cfg.JWTSecret, cfg.JWTTTL)
	if err != nil {
		log.WithError(err).Fatal("jwt init failed")
	}

	userRepo := auth.NewPostgresUserRepository(pgDB)
	authService := auth.NewService(userRepo, userRepo, tokens, auth.LogNotifier{Log: log}, log)
	authService.SetAdminEmails(cfg.AdminEmails)

	var google auth.GoogleAuthenticator
	if cfg.Google.Enabled() {
		client, err := auth.NewGoogleClient(ctx, auth.GoogleConfig{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
		})
		if err != nil {
			log.WithError(err).Fatal("google sign-in init failed")
		}
		google = client
	}

	// ───────────────────────── SERVICES (ORDER MATTERS) ─────────────────────────
	catalogRepo := catalog.NewDocumentRepository(store)
	favoriteService := favorites.NewService(store, catalogRepo, log)
	catalogService := catalog.NewService(catalogRepo, favoriteService, images, m, log)
	pricingService := pricing.NewService(pricing.NewRepository(store), catalogService, m, log)
	profileService := profile.NewService(profile.NewPostgresRepository(pgDB), log)
	orderService := orders.NewService(orders.NewPostgresRepository(pgDB), pricingService, profileService, log)
	chatService := chat.NewService(store, log)
	flagService := flags.NewService(flags.NewPostgresRepository(pgDB), cfg.FlagDefaults, m, log)

	// ───────────────────────── BACKGROUND JOBS ─────────────────────────
	if _, err := flagService.FetchAndActivate(ctx); err != nil {
		log.WithError(err).Warn("initial feature flag fetch failed, using defaults")
	}
	scheduler, err := flagService.Schedule(cfg.FlagsRefresh, cfg.FlagsTimeout)
	if err != nil {
		log.WithError(err).Fatal("flag refresh schedule invalid")
	}

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, log)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				limiter.Cleanup(10 * time.Minute)
			}
		}
	}()

	// ───────────────────────── HTTP ─────────────────────────
	r := router.NewRouter(router.Deps{
		Tokens:      tokens,
		Metrics:     m,
		RateLimiter: limiter,
		CORSOrigins: cfg.CORSOrigins,

		Auth:      auth.NewHandler(authService, google),
		Catalog:   catalog.NewHandler(catalogService, cfg.CORSOrigins),
		Pricing:   pricing.NewHandler(pricingService, cfg.CORSOrigins),
		Favorites: favorites.NewHandler(favoriteService),
		Orders:    orders.NewHandler(orderService),
		Profile:   profile.NewHandler(profileService),
		Chat:      chat.NewHandler(chatService, cfg.CORSOrigins),
		Flags:     flags.NewHandler(flagService),
	})

	// Shutdown does not wait for hijacked websocket connections; they end
	// when serveCtx is cancelled after it returns.
	serveCtx, cancelServe := context.WithCancel(context.Background())
	defer cancelServe()

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return serveCtx },
	}

	go func() {
		log.WithField("addr", srv.Addr).Info("API listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("server failed")
		}
	}()

	// ───────────────────────── SHUTDOWN ─────────────────────────
	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	cancelServe()
	<-scheduler.Stop().Done()
}
