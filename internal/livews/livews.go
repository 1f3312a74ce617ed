// Package livews runs the websocket sessions behind the live catalog and
// live pricing endpoints: JSON states go out, JSON commands come in.
package livews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024

	// Control frame payloads are capped at 125 bytes including the code.
	maxReasonBytes = 120
)

// NewUpgrader accepts connections from allowedOrigins only; an empty list
// accepts any origin.
func NewUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			u, err := url.Parse(origin)
			if err != nil {
				return false
			}
			return slices.ContainsFunc(allowedOrigins, func(o string) bool {
				return strings.EqualFold(strings.TrimRight(o, "/"), u.Scheme+"://"+u.Host)
			})
		},
	}
}

// Session wires one connection. OnCommand receives every client message
// and is called from the reader goroutine only; returning an error ends
// the session. Terminal reports whether a state is the last one to send,
// with the close reason.
type Session[T any] struct {
	Conn      *websocket.Conn
	OnCommand func(raw json.RawMessage) error
	Terminal  func(state T) (reason string, done bool)
}

// Pump writes states until ctx ends, states is closed, the client goes
// away or a terminal state was sent.
func (s Session[T]) Pump(ctx context.Context, states <-chan T) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.read(cancel)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			CloseWith(s.Conn, websocket.CloseNormalClosure, "")
			return
		case st, ok := <-states:
			if !ok {
				CloseWith(s.Conn, websocket.CloseNormalClosure, "")
				return
			}
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteJSON(st); err != nil {
				return
			}
			if s.Terminal != nil {
				if reason, done := s.Terminal(st); done {
					CloseWith(s.Conn, websocket.CloseInternalServerErr, reason)
					return
				}
			}
		case <-ticker.C:
			_ = s.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := s.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// read is the connection's only reader.
func (s Session[T]) read(cancel context.CancelFunc) {
	defer cancel()

	s.Conn.SetReadLimit(maxMessageSize)
	_ = s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	s.Conn.SetPongHandler(func(string) error {
		return s.Conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var raw json.RawMessage
		if err := s.Conn.ReadJSON(&raw); err != nil {
			return
		}
		if s.OnCommand == nil {
			continue
		}
		if err := s.OnCommand(raw); err != nil {
			CloseWith(s.Conn, websocket.CloseUnsupportedData, err.Error())
			return
		}
	}
}

// CloseWith sends a close frame without waiting for the peer.
func CloseWith(conn *websocket.Conn, code int, text string) {
	msg := websocket.FormatCloseMessage(code, truncateReason(text, maxReasonBytes))
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// truncateReason cuts text to at most max bytes without splitting a rune.
func truncateReason(text string, max int) string {
	if len(text) <= max {
		return text
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut]
}
