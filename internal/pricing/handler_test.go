package pricing

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/metrics"
)

type mockCatalog map[string]core.ItemRef

func (m mockCatalog) LookupItem(ctx context.Context, id string) (core.ItemRef, error) {
	item, ok := m[id]
	if !ok {
		return core.ItemRef{}, core.ErrItemNotFound
	}
	return item, nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *docstore.Memory) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemory()
	repo := NewRepository(store)
	ctx := context.Background()
	if err := repo.SetPrice(ctx, KindTopping, "bacon", d("1.00")); err != nil {
		t.Fatal(err)
	}
	if err := repo.SetPrice(ctx, KindSide, "fries", d("2.50")); err != nil {
		t.Fatal(err)
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	catalog := mockCatalog{"1": {ID: "1", Name: "Veggie Deluxe", Price: d("5.00")}}
	h := NewHandler(NewService(repo, catalog, metrics.New(), log), nil)

	r := gin.New()
	r.GET("/pricing/addons", h.AddOns)
	r.POST("/pricing/quote", h.Quote)
	r.GET("/pricing/live/:itemId", h.Live)
	r.PUT("/admin/addons/:kind/:name", h.SetAddOn)
	r.DELETE("/admin/addons/:kind/:name", h.DeleteAddOn)
	return r, store
}

func postQuote(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/pricing/quote", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestQuoteEndpoint(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postQuote(r, `{"item_id":"1","toppings":["bacon","onion"],"sides":["fries"],"portion":2}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp struct {
		ItemName string `json:"item_name"`
		Quote    Quote  `json:"quote"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Quote.Total.Equal(d("17")) {
		t.Fatalf("expected total 17, got %s", resp.Quote.Total)
	}
	if len(resp.Quote.Unpriced) != 1 || resp.Quote.Unpriced[0].Name != "onion" {
		t.Fatalf("expected onion to be reported unpriced, got %+v", resp.Quote.Unpriced)
	}
	if resp.ItemName != "Veggie Deluxe" {
		t.Fatalf("unexpected item name %q", resp.ItemName)
	}
}

func TestQuoteEndpoint_PortionBelowOneIsClamped(t *testing.T) {
	r, _ := setupTestRouter(t)

	w := postQuote(r, `{"item_id":"1","portion":0}`)

	var resp struct {
		Quote Quote `json:"quote"`
	}
	json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Quote.Portion != 1 || !resp.Quote.Total.Equal(d("5")) {
		t.Fatalf("unexpected quote %+v", resp.Quote)
	}
}

func TestQuoteEndpoint_UnknownItem(t *testing.T) {
	r, _ := setupTestRouter(t)

	if w := postQuote(r, `{"item_id":"404"}`); w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
	if w := postQuote(r, `{}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestAdminAddOns(t *testing.T) {
	r, store := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/admin/addons/toppings/cheese", strings.NewReader(`{"price":"0.75"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodPut, "/admin/addons/drinks/cola", strings.NewReader(`{"price":"1"}`))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/addons/sides/fries", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/pricing/addons", nil))
	var book PriceBook
	if err := json.Unmarshal(w.Body.Bytes(), &book); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(book.Toppings) != 2 || len(book.Sides) != 0 {
		t.Fatalf("unexpected book %+v", book)
	}

	snap, _ := store.Get(context.Background(), ToppingsPath)
	if snap.Len() != 2 {
		t.Fatalf("expected 2 toppings stored, got %d", snap.Len())
	}
}

func TestLiveQuote(t *testing.T) {
	r, store := setupTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http")+"/pricing/live/1", nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	readUntil := func(ok func(CustomizerState) bool) CustomizerState {
		t.Helper()
		for {
			conn.SetReadDeadline(time.Now().Add(2 * time.Second))
			var st CustomizerState
			if err := conn.ReadJSON(&st); err != nil {
				t.Fatalf("read: %v", err)
			}
			if ok(st) {
				return st
			}
		}
	}

	readUntil(func(st CustomizerState) bool { return st.PricesLoaded })

	conn.WriteJSON(command{Action: "toggle_topping", Name: "bacon"})
	conn.WriteJSON(command{Action: "increment"})
	st := readUntil(func(st CustomizerState) bool { return st.Quote.Portion == 2 && len(st.Toppings) == 1 })
	if !st.Quote.Total.Equal(d("12")) {
		t.Fatalf("expected 12, got %s", st.Quote.Total)
	}

	conn.Close()
	deadline := time.Now().Add(2 * time.Second)
	for store.Subscribers(ToppingsPath) != 0 || store.Subscribers(SidesPath) != 0 {
		if time.Now().After(deadline) {
			t.Fatal("price subscriptions not released")
		}
		time.Sleep(10 * time.Millisecond)
	}
}
