package catalog

import (
	"context"
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/sakshiatcoditas/BurgerApplication-sub000/internal/livews"
)

// filterMessage updates the live view. Absent fields keep their value.
type filterMessage struct {
	Category *string `json:"category"`
	Search   *string `json:"search"`
	Sort     *string `json:"sort"`
}

func (m filterMessage) apply(v *View) {
	if m.Category != nil {
		v.SetCategory(*m.Category)
	}
	if m.Search != nil {
		v.SetSearch(*m.Search)
	}
	if m.Sort != nil {
		v.SetSort(SortOption(*m.Sort))
	}
}

// --------------------------------------------------
// Live catalog view (websocket)
// --------------------------------------------------

// Live streams ViewStates to the client, which may send filter messages at
// any time. Closing the socket releases the catalog and favorites
// subscriptions.
func (h *Handler) Live(c *gin.Context) {
	filter := filterFromQuery(c)
	userID := c.GetString("userID")

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade has already replied with an HTTP error.
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	view, err := h.service.OpenView(ctx, userID, filter)
	if err != nil {
		livews.CloseWith(conn, websocket.CloseInternalServerErr, err.Error())
		return
	}

	states := view.Subscribe(ctx)
	defer states.Close()

	livews.Session[ViewState]{
		Conn: conn,
		OnCommand: func(raw json.RawMessage) error {
			var msg filterMessage
			if err := json.Unmarshal(raw, &msg); err != nil {
				return err
			}
			msg.apply(view)
			return nil
		},
		Terminal: func(st ViewState) (string, bool) {
			return st.Error, st.Status == StatusError
		},
	}.Pump(ctx, states.C())
}
