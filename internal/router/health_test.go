package router

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/auth"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/catalog"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/chat"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/favorites"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/flags"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/middleware"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/orders"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/pricing"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/profile"
)

func newTestRouter(t *testing.T) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	return newTestRouterWithLimiter(t, middleware.NewRateLimiter(100, 100, log))
}

func newTestRouterWithLimiter(t *testing.T, limiter *middleware.RateLimiter) (*gin.Engine, *auth.TokenIssuer) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetOutput(io.Discard)

	tokens, err := auth.NewTokenIssuer("router-test-secret", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	m := metrics.New()
	store := docstore.NewMemory()

	items := catalog.NewDocumentRepository(store)
	err = items.Upsert(context.Background(), catalog.Item{
		ID: "1", Name: "Veggie Deluxe", Category: "Veg", Price: decimal.NewFromInt(5),
	})
	if err != nil {
		t.Fatal(err)
	}

	favoriteService := favorites.NewService(store, items, log)
	catalogService := catalog.NewService(items, favoriteService, nil, m, log)
	pricingService := pricing.NewService(pricing.NewRepository(store), catalogService, m, log)
	profileService := profile.NewService(profile.NewInMemoryRepository(), log)

	users := auth.NewInMemoryUserRepository()
	authService := auth.NewService(users, users, tokens, auth.LogNotifier{Log: log}, log)

	r := NewRouter(Deps{
		Tokens:      tokens,
		Metrics:     m,
		RateLimiter: limiter,
		CORSOrigins: []string{"http://localhost:5173"},

		Auth:      auth.NewHandler(authService, nil),
		Catalog:   catalog.NewHandler(catalogService, nil),
		Pricing:   pricing.NewHandler(pricingService, nil),
		Favorites: favorites.NewHandler(favoriteService),
		Orders:    orders.NewHandler(orders.NewService(orders.NewInMemoryRepository(), pricingService, profileService, log)),
		Profile:   profile.NewHandler(profileService),
		Chat:      chat.NewHandler(chat.NewService(store, log), nil),
		Flags:     flags.NewHandler(flags.NewService(flags.NewInMemoryRepository(nil), nil, m, log)),
	})
	return r, tokens
}

func do(r *gin.Engine, method, path, token, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthCheck(t *testing.T) {
	r, _ := newTestRouter(t)

	w := do(r, http.MethodGet, "/health", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := newTestRouter(t)
	do(r, http.MethodGet, "/catalog", "", "")

	w := do(r, http.MethodGet, "/metrics", "", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `burger_catalog_derivations_total{status="ready"} 1`) {
		t.Fatalf("derivation metric missing:\n%s", w.Body.String())
	}
}

func TestCatalogIsPublic(t *testing.T) {
	r, _ := newTestRouter(t)

	if w := do(r, http.MethodGet, "/catalog?category=veg", "", ""); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/catalog", "not-a-token", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401 for a bad token, got %d", w.Code)
	}
}

func TestUserRoutesRequireAuth(t *testing.T) {
	r, tokens := newTestRouter(t)

	for _, path := range []string{"/orders", "/favorites", "/profile", "/chat/messages"} {
		if w := do(r, http.MethodGet, path, "", ""); w.Code != http.StatusUnauthorized {
			t.Fatalf("%s: expected status 401, got %d", path, w.Code)
		}
	}

	token, _ := tokens.Generate("u1", "u1@burger.test", auth.RoleCustomer)
	w := do(r, http.MethodPost, "/orders", token, `{"item_id":"1","portion":2}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"payment_method":"Pay on delivery"`) {
		t.Fatalf("unexpected order: %s", w.Body.String())
	}
}

func TestAdminRoutesRequireAdminRole(t *testing.T) {
	r, tokens := newTestRouter(t)
	body := `{"price":"1.25"}`

	customer, _ := tokens.Generate("u1", "u1@burger.test", auth.RoleCustomer)
	if w := do(r, http.MethodPut, "/admin/addons/toppings/bacon", customer, body); w.Code != http.StatusForbidden {
		t.Fatalf("expected status 403, got %d", w.Code)
	}

	admin, _ := tokens.Generate("a1", "admin@burger.test", auth.RoleAdmin)
	if w := do(r, http.MethodPut, "/admin/addons/toppings/bacon", admin, body); w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	w := do(r, http.MethodPost, "/pricing/quote", "", `{"item_id":"1","toppings":["bacon"]}`)
	if !strings.Contains(w.Body.String(), `"total":"6.25"`) {
		t.Fatalf("new add-on price not applied: %s", w.Body.String())
	}
}

func TestRateLimit_SignedInUsersBehindOneIPHaveSeparateBuckets(t *testing.T) {
	log := logrus.New()
	log.SetOutput(io.Discard)
	limiter := middleware.NewRateLimiter(0.001, 1, log)
	r, tokens := newTestRouterWithLimiter(t, limiter)

	u1, _ := tokens.Generate("u1", "u1@burger.test", auth.RoleCustomer)
	u2, _ := tokens.Generate("u2", "u2@burger.test", auth.RoleCustomer)

	// httptest requests all come from 192.0.2.1
	if w := do(r, http.MethodGet, "/catalog", u1, ""); w.Code != http.StatusOK {
		t.Fatalf("u1: expected status 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/catalog", u2, ""); w.Code != http.StatusOK {
		t.Fatalf("u2: expected status 200, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/catalog", u1, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("u1 second request: expected status 429, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/favorites", u2, ""); w.Code != http.StatusTooManyRequests {
		t.Fatalf("u2 second request: expected status 429, got %d", w.Code)
	}

	if limiter.Size() != 2 {
		t.Fatalf("expected 2 buckets, got %d", limiter.Size())
	}

	if w := do(r, http.MethodGet, "/catalog", "", ""); w.Code != http.StatusOK {
		t.Fatalf("anonymous: expected status 200, got %d", w.Code)
	}
	if limiter.Size() != 3 {
		t.Fatalf("expected a third bucket for the anonymous caller, got %d", limiter.Size())
	}
}
