package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
)

const (
	wsWriteWait      = 10 * time.Second
	wsPongWait       = 60 * time.Second
	wsPingPeriod     = (wsPongWait * 9) / 10
	wsMaxMessageSize = 512
	wsSendBufferSize = 64
)

// WSClient is one websocket connection managed by the hub
type WSClient struct {
	ID   string
	conn *websocket.Conn
	send chan []byte
}

// EventHub fans domain events out to websocket clients. Slow clients whose
// send buffer fills up are disconnected rather than blocking the broadcast.
type EventHub struct {
	BaseHandler
	bus      shared.EventBus
	logger   *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.RWMutex
	clients map[string]*WSClient

	ctx     context.Context
	cancel  context.CancelFunc
	started bool
	startMu sync.Mutex
}

// NewEventHub creates a websocket hub backed by the event bus
func NewEventHub(bus shared.EventBus, logger *zap.Logger) *EventHub {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventHub{
		bus:     bus,
		logger:  logger,
		clients: make(map[string]*WSClient),
		ctx:     ctx,
		cancel:  cancel,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Browser clients connect from the storefront UI origin,
			// which the CORS middleware already restricts.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Start subscribes the hub to the event bus
func (h *EventHub) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return nil
	}

	h.bus.Subscribe(h)
	h.started = true
	h.logger.Info("Websocket event hub started")
	return nil
}

// Stop disconnects all clients and unsubscribes from the bus
func (h *EventHub) Stop() {
	h.bus.Unsubscribe(h)
	h.cancel()

	h.mu.Lock()
	for id, client := range h.clients {
		close(client.send)
		delete(h.clients, id)
	}
	h.mu.Unlock()

	h.logger.Info("Websocket event hub stopped")
}

// Handle implements shared.EventHandler
func (h *EventHub) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload := CatalogEventPayload{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID().String(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal websocket event", zap.Error(err))
		return nil
	}

	h.broadcast(data)
	return nil
}

// EventTypes implements shared.EventHandler. Empty means all events.
func (h *EventHub) EventTypes() []string {
	return nil
}

func (h *EventHub) broadcast(data []byte) {
	var slow []string

	h.mu.RLock()
	for id, client := range h.clients {
		select {
		case client.send <- data:
		default:
			slow = append(slow, id)
		}
	}
	h.mu.RUnlock()

	for _, id := range slow {
		h.logger.Warn("Dropping slow websocket client", zap.String("client_id", id))
		h.removeClient(id)
	}
}

func (h *EventHub) addClient(client *WSClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	// A reconnect with the same ID replaces the old connection
	if old, ok := h.clients[client.ID]; ok {
		close(old.send)
	}
	h.clients[client.ID] = client
}

func (h *EventHub) removeClient(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if client, ok := h.clients[id]; ok {
		close(client.send)
		delete(h.clients, id)
	}
}

// ClientCount returns the number of connected websocket clients
func (h *EventHub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Connect godoc
// @Summary      Subscribe to catalog events via websocket
// @Description  Upgrades the connection and streams catalog and identity domain events as JSON messages
// @Tags         events
// @Param        client_id path string true "Client-chosen connection ID"
// @Success      101 {string} string "Switching protocols"
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /ws/{client_id} [get]
func (h *EventHub) Connect(c *gin.Context) {
	clientID := c.Param("client_id")
	if clientID == "" {
		h.BadRequest(c, "client_id is required")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade writes its own error response
		h.logger.Warn("Websocket upgrade failed", zap.Error(err))
		return
	}

	client := &WSClient{
		ID:   clientID,
		conn: conn,
		send: make(chan []byte, wsSendBufferSize),
	}
	h.addClient(client)

	h.logger.Info("Websocket client connected", zap.String("client_id", clientID))

	go h.writePump(client)
	go h.readPump(client)
}

// readPump discards inbound messages and detects disconnects
func (h *EventHub) readPump(client *WSClient) {
	defer func() {
		h.removeClient(client.ID)
		client.conn.Close()
	}()

	client.conn.SetReadLimit(wsMaxMessageSize)
	_ = client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	client.conn.SetPongHandler(func(string) error {
		return client.conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	for {
		if _, _, err := client.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("Websocket read error",
					zap.String("client_id", client.ID),
					zap.Error(err))
			}
			return
		}
	}
}

func (h *EventHub) writePump(client *WSClient) {
	ticker := time.NewTicker(wsPingPeriod)
	defer func() {
		ticker.Stop()
		client.conn.Close()
	}()

	for {
		select {
		case <-h.ctx.Done():
			return
		case data, ok := <-client.send:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if !ok {
				_ = client.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			_ = client.conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := client.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ shared.EventHandler = (*EventHub)(nil)
