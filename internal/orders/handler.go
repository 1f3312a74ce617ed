package orders

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// Place order
// --------------------------------------------------
func (h *Handler) Place(c *gin.Context) {
	var req PlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	order, quote, err := h.service.Place(c.Request.Context(), c.GetString("userID"), req)
	switch {
	case errors.Is(err, ErrItemRequired):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, core.ErrItemNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ErrPriceChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "quote": quote})
		return
	case errors.Is(err, ErrUserRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"order": order,
		"quote": quote,
	})
}

// --------------------------------------------------
// Order history
// --------------------------------------------------
func (h *Handler) History(c *gin.Context) {
	list, err := h.service.History(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"orders": list})
}

func (h *Handler) Get(c *gin.Context) {
	order, err := h.service.Get(c.Request.Context(), c.GetString("userID"), c.Param("id"))
	if errors.Is(err, ErrOrderNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}
