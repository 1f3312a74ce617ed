package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

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

type sendRequest struct {
	Text string `json:"text"`
}

func (h *Handler) History(c *gin.Context) {
	messages, err := h.service.History(c.Request.Context(), c.GetString("userID"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

func (h *Handler) Send(c *gin.Context) {
	var req sendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	messages, err := h.service.Send(c.Request.Context(), c.GetString("userID"), req.Text)
	switch {
	case errors.Is(err, ErrEmptyMessage), errors.Is(err, ErrTooLong):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"messages": messages})
}

// --------------------------------------------------
// Live thread (websocket)
// --------------------------------------------------

// Live pushes the whole thread on every change. Clients send
// {"text": "..."} to post a message.
func (h *Handler) Live(c *gin.Context) {
	userID := c.GetString("userID")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	thread, err := h.service.Follow(ctx, userID)
	if err != nil {
		livews.CloseWith(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}

	livews.Session[[]Message]{
		Conn: conn,
		OnCommand: func(raw json.RawMessage) error {
			var req sendRequest
			if err := json.Unmarshal(raw, &req); err != nil {
				return err
			}
			_, err := h.service.Send(ctx, userID, req.Text)
			if errors.Is(err, ErrEmptyMessage) || errors.Is(err, ErrTooLong) {
				return nil
			}
			return err
		},
	}.Pump(ctx, thread)
}
