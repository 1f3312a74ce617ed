package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/docstore"
)

// stubFavorites serves favorites from the same document store layout the
// favorites package uses.
type stubFavorites struct {
	store docstore.Store
}

func (f stubFavorites) IDs(ctx context.Context, userID string) (map[string]bool, error) {
	snap, err := f.store.Get(ctx, "favorites/"+userID)
	if err != nil {
		return nil, err
	}
	return DecodeFavorites(snap), nil
}

func (f stubFavorites) Subscribe(ctx context.Context, userID string) (*docstore.Subscription, error) {
	return f.store.Subscribe(ctx, "favorites/"+userID)
}

type stubImages struct {
	key string
}

func (s *stubImages) Upload(ctx context.Context, key string, body io.Reader, contentType string) (string, error) {
	s.key = key
	return "https://cdn.test/" + key, nil
}

func setupTestRouter(t *testing.T) (*gin.Engine, *docstore.Memory, *stubImages) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := docstore.NewMemory()
	repo := NewDocumentRepository(store)
	for _, it := range sampleCatalog() {
		if err := repo.Upsert(context.Background(), it); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	log := logrus.New()
	log.SetOutput(io.Discard)
	images := &stubImages{}
	service := NewService(repo, stubFavorites{store: store}, images, nil, log)
	h := NewHandler(service, nil)

	// stands in for the auth middleware
	asUser := func(c *gin.Context) {
		if uid := c.GetHeader("X-Test-User"); uid != "" {
			c.Set("userID", uid)
		}
		c.Next()
	}

	r := gin.New()
	r.Use(asUser)
	r.GET("/catalog", h.Browse)
	r.GET("/catalog/categories", h.Categories)
	r.GET("/catalog/items/:id", h.GetItem)
	r.GET("/catalog/live", h.Live)
	r.PUT("/admin/catalog/items/:id", h.SaveItem)
	r.DELETE("/admin/catalog/items/:id", h.DeleteItem)
	r.POST("/admin/catalog/items/:id/image", h.UploadImage)

	return r, store, images
}

func TestBrowse_FiltersAndAnnotates(t *testing.T) {
	r, store, _ := setupTestRouter(t)
	if err := store.Set(context.Background(), "favorites/u1/3", true); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/catalog?category=veg&sort=price", nil)
	req.Header.Set("X-Test-User", "u1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}

	var st ViewState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != StatusReady || len(st.Items) != 2 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if st.Items[0].ID != "1" || st.Items[1].ID != "3" {
		t.Fatalf("unexpected order: %v", ids(st.Items))
	}
	if st.Items[0].IsFavorite || !st.Items[1].IsFavorite {
		t.Fatalf("favorite flags not applied: %+v", st.Items)
	}
}

func TestBrowse_NoMatches(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog?q=sushi", nil))

	var st ViewState
	if err := json.Unmarshal(w.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if st.Status != StatusEmpty || !st.Filtered {
		t.Fatalf("expected filtered empty state, got %+v", st)
	}
}

func TestGetItem_NotFound(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/items/99", nil))

	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func TestCategories_Endpoint(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/catalog/categories", nil))

	var body struct {
		Categories []string `json:"categories"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if strings.Join(body.Categories, ",") != "All,Veg,NonVeg,Sides" {
		t.Fatalf("unexpected categories %v", body.Categories)
	}
}

func TestSaveItem_RejectsNegativePrice(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	body := `{"name":"Free Lunch","price":-1,"category":"Veg"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/catalog/items/9", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestSaveAndDeleteItem(t *testing.T) {
	r, store, _ := setupTestRouter(t)

	body := `{"name":"Mushroom Melt","price":"5.25","rating":4.2,"category":"Veg"}`
	req := httptest.NewRequest(http.MethodPut, "/admin/catalog/items/9", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", w.Code, w.Body.String())
	}

	snap, _ := store.Get(context.Background(), ItemsPath)
	if snap.Len() != 6 {
		t.Fatalf("expected 6 items, got %d", snap.Len())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/catalog/items/9", nil))
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/catalog/items/9", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", w.Code)
	}
}

func multipartImage(t *testing.T, filename string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		t.Fatal(err)
	}
	part.Write([]byte("fake image bytes"))
	mw.Close()
	return body, mw.FormDataContentType()
}

func TestUploadImage(t *testing.T) {
	r, _, images := setupTestRouter(t)

	body, contentType := multipartImage(t, "burger.PNG")
	req := httptest.NewRequest(http.MethodPost, "/admin/catalog/items/1/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.HasPrefix(images.key, "catalog/1/") || !strings.HasSuffix(images.key, ".png") {
		t.Fatalf("unexpected object key %q", images.key)
	}

	var it Item
	json.Unmarshal(w.Body.Bytes(), &it)
	if it.Image != "https://cdn.test/"+images.key {
		t.Fatalf("item image not updated: %q", it.Image)
	}
}

func TestUploadImage_RejectsExtension(t *testing.T) {
	r, _, _ := setupTestRouter(t)

	body, contentType := multipartImage(t, "menu.pdf")
	req := httptest.NewRequest(http.MethodPost, "/admin/catalog/items/1/image", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", w.Code)
	}
}

func TestLive_StreamsStatesAndReleasesOnClose(t *testing.T) {
	r, store, _ := setupTestRouter(t)
	srv := httptest.NewServer(r)
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/catalog/live?category=NonVeg"
	header := http.Header{"X-Test-User": []string{"u1"}}
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, header)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	read := func() ViewState {
		t.Helper()
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		var st ViewState
		if err := conn.ReadJSON(&st); err != nil {
			t.Fatalf("read: %v", err)
		}
		return st
	}
	readUntil := func(ok func(ViewState) bool) ViewState {
		t.Helper()
		for {
			if st := read(); ok(st) {
				return st
			}
		}
	}

	st := readUntil(func(s ViewState) bool { return s.Status == StatusReady })
	if strings.Join(ids(st.Items), ",") != "2,4" {
		t.Fatalf("unexpected items %v", ids(st.Items))
	}

	if err := conn.WriteJSON(map[string]string{"sort": "price"}); err != nil {
		t.Fatal(err)
	}
	st = readUntil(func(s ViewState) bool { return s.Filter.Sort == SortPrice })
	if strings.Join(ids(st.Items), ",") != "4,2" {
		t.Fatalf("unexpected sorted items %v", ids(st.Items))
	}

	if err := store.Set(context.Background(), "favorites/u1/2", true); err != nil {
		t.Fatal(err)
	}
	readUntil(func(s ViewState) bool { return len(s.Items) == 2 && s.Items[1].IsFavorite })

	conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for store.Subscribers(ItemsPath) != 0 || store.Subscribers("favorites/u1") != 0 {
		if time.Now().After(deadline) {
			t.Fatalf("subscriptions not released: items=%d favorites=%d",
				store.Subscribers(ItemsPath), store.Subscribers("favorites/u1"))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
