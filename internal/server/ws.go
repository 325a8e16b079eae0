package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
)

// Hub is the concurrency-safe registry of live websocket connections:
// insert on connect, remove on disconnect, and a per-connection write lock
// since gorilla connections allow only one concurrent writer.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*wsClient
}

type wsClient struct {
	id   string
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *wsClient) writeJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *wsClient) writeText(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteMessage(websocket.TextMessage, []byte(msg))
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{clients: make(map[string]*wsClient)}
}

func (h *Hub) add(c *wsClient) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
}

func (h *Hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

func (h *Hub) get(id string) (*wsClient, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	c, ok := h.clients[id]
	return c, ok
}

// Count reports the number of connected clients.
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Send delivers a JSON payload to the client with the given id.
func (h *Hub) Send(id string, payload json.RawMessage) error {
	c, ok := h.get(id)
	if !ok {
		return fmt.Errorf("client %q not connected", id)
	}
	return c.writeJSON(payload)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
	// Origin checking is handled by the CORS layer for the HTTP surface;
	// the websocket endpoint accepts any origin like the rest of dev mode.
	CheckOrigin: func(*http.Request) bool { return true },
}

// handleWebsocket relays transcribed speech into the retriever. Each text
// frame is treated as an already-transcribed query; the reply is the
// retrieval result, a no-match marker, or an error marker. "ping" frames
// answer "pong" without touching the core.
func (s *Server) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "missing client id")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("server: websocket upgrade for %q: %v", clientID, err)
		return
	}

	client := &wsClient{id: clientID, conn: conn}
	s.hub.add(client)
	log.Printf("server: client %q connected (%d active)", clientID, s.hub.Count())

	defer func() {
		s.hub.remove(clientID)
		conn.Close()
		log.Printf("server: client %q disconnected (%d active)", clientID, s.hub.Count())
	}()

	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		text := string(data)
		if text == "ping" {
			if err := client.writeText("pong"); err != nil {
				return
			}
			continue
		}

		result, err := s.queries.Retrieve(r.Context(), text)
		var reply any
		switch {
		case err != nil:
			log.Printf("server: websocket query %q: %v", text, err)
			reply = map[string]any{"error": "retrieval failed"}
		case result == nil:
			reply = map[string]any{"match": false}
		default:
			reply = map[string]any{"match": true, "result": result}
		}
		if err := client.writeJSON(reply); err != nil {
			return
		}
	}
}
