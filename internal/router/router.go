package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/auth"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/catalog"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/chat"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/favorites"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/flags"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/middleware"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/orders"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/pricing"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/profile"
)

// Deps is everything the HTTP surface is built from.
type Deps struct {
	Tokens      middleware.TokenValidator
	Metrics     *metrics.Metrics
	RateLimiter *middleware.RateLimiter
	CORSOrigins []string

	Auth      *auth.Handler
	Catalog   *catalog.Handler
	Pricing   *pricing.Handler
	Favorites *favorites.Handler
	Orders    *orders.Handler
	Profile   *profile.Handler
	Chat      *chat.Handler
	Flags     *flags.Handler
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	if d.Metrics != nil {
		r.Use(d.Metrics.Middleware())
	}

	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// ───────────────────────── HEALTH / METRICS ─────────────────────────
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics.Handler()))
	}

	api := r.Group("")

	authed := middleware.Auth(d.Tokens)
	optional := middleware.OptionalAuth(d.Tokens)
	admin := middleware.RequireRole(auth.RoleAdmin)

	// limit runs after the group's auth middleware so signed-in callers
	// get their own bucket instead of sharing their IP's.
	var limit gin.HandlerFunc = func(c *gin.Context) { c.Next() }
	if d.RateLimiter != nil {
		limit = d.RateLimiter.Handler()
	}

	// ───────────────────────── AUTH ─────────────────────────
	if d.Auth != nil {
		a := api.Group("/auth", limit)
		{
			a.POST("/register", d.Auth.Register)
			a.POST("/login", d.Auth.Login)
			a.POST("/password-reset", d.Auth.RequestPasswordReset)
			a.POST("/password-reset/confirm", d.Auth.ConfirmPasswordReset)
			a.POST("/google", d.Auth.GoogleIDToken)
			a.GET("/google/login", d.Auth.GoogleLogin)
			a.GET("/google/callback", d.Auth.GoogleCallback)
		}
	}

	// ───────────────────────── CATALOG (public, favorites when signed in) ─────────────────────────
	if d.Catalog != nil {
		c := api.Group("/catalog", optional, limit)
		{
			c.GET("", d.Catalog.Browse)
			c.GET("/categories", d.Catalog.Categories)
			c.GET("/items/:id", d.Catalog.GetItem)
			c.GET("/live", d.Catalog.Live)
		}
	}

	// ───────────────────────── PRICING ─────────────────────────
	if d.Pricing != nil {
		p := api.Group("/pricing", limit)
		{
			p.GET("/addons", d.Pricing.AddOns)
			p.POST("/quote", d.Pricing.Quote)
			p.GET("/live/:itemId", d.Pricing.Live)
		}
	}

	if d.Flags != nil {
		api.GET("/flags", limit, d.Flags.List)
	}

	// ───────────────────────── USER ROUTES ─────────────────────────
	user := api.Group("", authed, limit)
	if d.Favorites != nil {
		user.GET("/favorites", d.Favorites.List)
		user.POST("/favorites/:itemId", d.Favorites.Toggle)
	}
	if d.Orders != nil {
		user.POST("/orders", d.Orders.Place)
		user.GET("/orders", d.Orders.History)
		user.GET("/orders/:id", d.Orders.Get)
	}
	if d.Profile != nil {
		user.GET("/profile", d.Profile.Get)
		user.PUT("/profile", d.Profile.Update)
		user.GET("/profile/payment", d.Profile.GetPayment)
		user.PUT("/profile/payment", d.Profile.SetPayment)
	}
	if d.Chat != nil {
		user.GET("/chat/messages", d.Chat.History)
		user.POST("/chat/messages", d.Chat.Send)
		user.GET("/chat/live", d.Chat.Live)
	}

	// ───────────────────────── ADMIN ROUTES ─────────────────────────
	adm := api.Group("/admin", authed, admin, limit)
	{
		if d.Catalog != nil {
			adm.PUT("/catalog/items/:id", d.Catalog.SaveItem)
			adm.DELETE("/catalog/items/:id", d.Catalog.DeleteItem)
			adm.POST("/catalog/items/:id/image", d.Catalog.UploadImage)
		}
		if d.Pricing != nil {
			adm.PUT("/addons/:kind/:name", d.Pricing.SetAddOn)
			adm.DELETE("/addons/:kind/:name", d.Pricing.DeleteAddOn)
		}
		if d.Flags != nil {
			adm.PUT("/flags/:name", d.Flags.Set)
			adm.POST("/flags/refresh", d.Flags.Refresh)
		}
	}

	return r
}
