package events

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

const (
	wsWriteTimeout = 5 * time.Second
	// wsSendBuffer is how many events a slow client may fall behind before it is dropped.
	wsSendBuffer = 32
)

type hubClient struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub is the admin live order feed. Every connected socket receives every
// event as a JSON text frame. Each socket has its own writer goroutine so
// Publish never waits on the network.
type Hub struct {
	upgrader websocket.Upgrader
	log      zerolog.Logger

	mu      sync.Mutex
	clients map[*hubClient]struct{}
}

func NewHub(allowedOrigin string, log zerolog.Logger) *Hub {
	return &Hub{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || allowedOrigin == "" || origin == allowedOrigin
			},
		},
		log:     log,
		clients: make(map[*hubClient]struct{}),
	}
}

// ServeWS upgrades the request and blocks until the client goes away.
func (h *Hub) ServeWS(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader already wrote the error response
		return nil
	}
	cl := &hubClient{conn: conn, send: make(chan []byte, wsSendBuffer)}
	h.add(cl)
	go h.writeLoop(cl)
	defer h.remove(cl)

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return nil
		}
	}
}

// Publish queues e for every client. A client whose buffer is full is dropped.
func (h *Hub) Publish(_ context.Context, e Event) error {
	data, err := json.Marshal(e)
	if err != nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for cl := range h.clients {
		select {
		case cl.send <- data:
		default:
			h.log.Debug().Msg("dropping slow feed client")
			delete(h.clients, cl)
			close(cl.send)
		}
	}
	return nil
}

func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// writeLoop owns all writes to cl.conn and closes it once cl.send is closed.
func (h *Hub) writeLoop(cl *hubClient) {
	defer cl.conn.Close()
	for data := range cl.send {
		_ = cl.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := cl.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug().Err(err).Msg("feed write failed")
			// unblocks the read loop in ServeWS, which removes the client
			return
		}
	}
}

func (h *Hub) add(cl *hubClient) {
	h.mu.Lock()
	h.clients[cl] = struct{}{}
	h.mu.Unlock()
}

func (h *Hub) remove(cl *hubClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[cl]; ok {
		delete(h.clients, cl)
		close(cl.send)
	}
}
