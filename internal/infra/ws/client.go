package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	ports "tryonjewel-server/internal/domain/ports/usecase"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

type client struct {
	jobID string
	conn  *websocket.Conn
	send  chan jobUpdate
}

// Handler upgrades /ws/jobs/{id} requests and streams status updates for
// one job. The auth middleware runs before it; ownership is checked against
// the job record, so subscribing to a foreign job reads as not found.
type Handler struct {
	hub    *Hub
	jobs   ports.JobUseCase
	userID func(ctx context.Context) string

	upgrader websocket.Upgrader
}

func NewHandler(hub *Hub, jobs ports.JobUseCase, userID func(ctx context.Context) string, allowedOrigin string) *Handler {
	return &Handler{
		hub:    hub,
		jobs:   jobs,
		userID: userID,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if allowedOrigin == "" || allowedOrigin == "*" {
					return true
				}
				return r.Header.Get("Origin") == allowedOrigin
			},
		},
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "id")
	job, err := h.jobs.Get(r.Context(), jobID, h.userID(r.Context()))
	if err != nil {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.hub.log.Warn().Err(err).Msg("ws upgrade failed")
		return
	}

	c := &client{jobID: jobID, conn: conn, send: make(chan jobUpdate, 8)}
	h.hub.register <- c

	// Replay the current state so a late subscriber is never stuck waiting
	// for a transition that already happened. The replay goes into the
	// buffered channel before readLoop starts: only readLoop can trigger
	// the unregister that closes send, so the send cannot race the close.
	c.send <- jobUpdate{JobID: job.ID, Status: job.Status, ErrorMessage: job.ErrorMessage}

	go c.writeLoop()
	go c.readLoop(h.hub)
}

func (c *client) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case u, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(u); err != nil {
				return
			}
			if u.Status.Terminal() {
				c.conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(u.Status)),
					time.Now().Add(writeWait))
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readLoop discards client frames; it exists to notice disconnects and to
// keep the pong handler serviced.
func (c *client) readLoop(hub *Hub) {
	defer func() { hub.unregister <- c }()
	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
