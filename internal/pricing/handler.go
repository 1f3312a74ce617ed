package pricing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/core"
	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/livews"
)

type Handler struct {
	service  *Service
	upgrader websocket.Upgrader
}

func NewHandler(service *Service, allowedOrigins []string) *Handler {
	return &Handler{
		service:  service,
		upgrader: livews.NewUpgrader(allowedOrigins),
	}
}

func (h *Handler) AddOns(c *gin.Context) {
	book, err := h.service.AddOns(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, book)
}

type quoteRequest struct {
	ItemID   string   `json:"item_id"`
	Toppings []string `json:"toppings"`
	Sides    []string `json:"sides"`
	Portion  int      `json:"portion"`
}

// --------------------------------------------------
// Quote a customized item
// --------------------------------------------------
func (h *Handler) Quote(c *gin.Context) {
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "item_id is required"})
		return
	}

	item, quote, err := h.service.QuoteItem(
		c.Request.Context(),
		req.ItemID,
		SelectionOf(req.Toppings, req.Sides, req.Portion),
	)
	if errors.Is(err, core.ErrItemNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"item_id":   item.ID,
		"item_name": item.Name,
		"quote":     quote,
	})
}

// --------------------------------------------------
// Live quote (websocket)
// --------------------------------------------------

type command struct {
	Action string `json:"action"`
	Name   string `json:"name"`
}

func (cmd command) apply(c *Customizer) error {
	switch cmd.Action {
	case "toggle_topping":
		c.ToggleTopping(cmd.Name)
	case "toggle_side":
		c.ToggleSide(cmd.Name)
	case "increment":
		c.IncrementPortion()
	case "decrement":
		c.DecrementPortion()
	default:
		return fmt.Errorf("unknown action %q", cmd.Action)
	}
	return nil
}

func (h *Handler) Live(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	customizer, err := h.service.OpenCustomizer(ctx, c.Param("itemId"), NewSelection())
	if err != nil {
		livews.CloseWith(conn, websocket.ClosePolicyViolation, err.Error())
		return
	}

	states := customizer.Subscribe(ctx)
	defer states.Close()

	livews.Session[CustomizerState]{
		Conn: conn,
		OnCommand: func(raw json.RawMessage) error {
			var cmd command
			if err := json.Unmarshal(raw, &cmd); err != nil {
				return err
			}
			return cmd.apply(customizer)
		},
		Terminal: func(st CustomizerState) (string, bool) {
			return st.Error, st.Err() != nil
		},
	}.Pump(ctx, states.C())
}

// --------------------------------------------------
// Admin: add-on prices
// --------------------------------------------------

type addOnRequest struct {
	Price decimal.Decimal `json:"price"`
}

func (h *Handler) SetAddOn(c *gin.Context) {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req addOnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	name := c.Param("name")
	if err := h.service.SetAddOn(c.Request.Context(), kind, name, req.Price); err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, ErrInvalidAddOn) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"kind": kind, "name": name, "price": req.Price})
}

func (h *Handler) DeleteAddOn(c *gin.Context) {
	kind, err := ParseKind(c.Param("kind"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.service.DeleteAddOn(c.Request.Context(), kind, c.Param("name")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.Status(http.StatusNoContent)
}
