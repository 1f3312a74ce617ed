package catalog

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/livews"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/storage"
)

type Handler struct {
	service  *Service
	upgrader websocket.Upgrader
}

// NewHandler builds the catalog handlers. allowedOrigins restricts the live
// view websocket; an empty list accepts any origin.
func NewHandler(service *Service, allowedOrigins []string) *Handler {
	return &Handler{
		service:  service,
		upgrader: livews.NewUpgrader(allowedOrigins),
	}
}

func filterFromQuery(c *gin.Context) Filter {
	return Filter{
		Category: c.DefaultQuery("category", AllCategories),
		Search:   c.Query("q"),
		Sort:     ParseSort(c.Query("sort")),
	}.Normalize()
}

// --------------------------------------------------
// Browse catalog (category, search, sort)
// --------------------------------------------------
func (h *Handler) Browse(c *gin.Context) {
	state, err := h.service.Browse(
		c.Request.Context(),
		c.GetString("userID"),
		filterFromQuery(c),
	)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, state)
}

func (h *Handler) GetItem(c *gin.Context) {
	item, err := h.service.Item(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if errors.Is(err, ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) Categories(c *gin.Context) {
	categories, err := h.service.Categories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// --------------------------------------------------
// Admin: catalog maintenance
// --------------------------------------------------

type itemRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Rating      float64         `json:"rating"`
	Category    string          `json:"category"`
}

func (h *Handler) SaveItem(c *gin.Context) {
	var req itemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	item, err := h.service.SaveItem(c.Request.Context(), Item{
		ID:          c.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
		Rating:      req.Rating,
		Category:    req.Category,
	})
	if errors.Is(err, ErrInvalidItem) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, item)
}

func (h *Handler) DeleteItem(c *gin.Context) {
	err := h.service.DeleteItem(c.Request.Context(), c.Param("id"))
	if errors.Is(err, ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) UploadImage(c *gin.Context) {
	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	item, err := h.service.UploadImage(
		c.Request.Context(),
		c.Param("id"),
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	switch {
	case errors.Is(err, storage.ErrExtensionMissing), errors.Is(err, storage.ErrTypeNotAllowed):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, item)
}
