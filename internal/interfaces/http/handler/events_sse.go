package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
)

// SSEClient represents a connected SSE client
type SSEClient struct {
	ID     string
	UserID string
	Chan   chan SSEMessage
	Done   chan struct{}
}

// SSEMessage represents a message to be sent to SSE clients
type SSEMessage struct {
	Event string `json:"event"`
	Data  string `json:"data"`
	ID    string `json:"id,omitempty"`
}

// CatalogEventPayload is the JSON body streamed for each domain event
type CatalogEventPayload struct {
	EventID       string    `json:"event_id"`
	EventType     string    `json:"event_type"`
	AggregateID   string    `json:"aggregate_id"`
	AggregateType string    `json:"aggregate_type"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventStreamHandler handles SSE connections for catalog and identity events.
// It subscribes to the domain event bus and fans events out to every
// connected client.
type EventStreamHandler struct {
	BaseHandler
	bus        shared.EventBus
	logger     *zap.Logger
	clients    sync.Map // map[string]*SSEClient
	ctx        context.Context
	cancel     context.CancelFunc
	heartbeat  time.Duration
	started    bool
	startMu    sync.Mutex
	maxClients int
}

// EventStreamOption is a functional option for configuring the handler
type EventStreamOption func(*EventStreamHandler)

// WithSSELogger sets the logger for the handler
func WithSSELogger(logger *zap.Logger) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.logger = logger
	}
}

// WithSSEHeartbeat sets the heartbeat interval
func WithSSEHeartbeat(interval time.Duration) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.heartbeat = interval
	}
}

// WithSSEMaxClients sets the maximum number of concurrent SSE clients
func WithSSEMaxClients(max int) EventStreamOption {
	return func(h *EventStreamHandler) {
		h.maxClients = max
	}
}

// NewEventStreamHandler creates a new SSE handler backed by the event bus
func NewEventStreamHandler(bus shared.EventBus, opts ...EventStreamOption) *EventStreamHandler {
	ctx, cancel := context.WithCancel(context.Background())
	h := &EventStreamHandler{
		bus:        bus,
		logger:     zap.NewNop(),
		ctx:        ctx,
		cancel:     cancel,
		heartbeat:  30 * time.Second,
		maxClients: 10000,
	}

	for _, opt := range opts {
		opt(h)
	}

	return h
}

// Start subscribes to the event bus and begins broadcasting to clients
func (h *EventStreamHandler) Start() error {
	h.startMu.Lock()
	defer h.startMu.Unlock()

	if h.started {
		return fmt.Errorf("event stream handler already started")
	}

	go h.sendHeartbeats()

	// Wildcard subscription: every published domain event reaches the stream
	h.bus.Subscribe(h)

	h.started = true
	h.logger.Info("Event stream handler started")
	return nil
}

// Stop stops the handler and disconnects all clients
func (h *EventStreamHandler) Stop() {
	h.bus.Unsubscribe(h)
	h.cancel()

	h.clients.Range(func(key, value any) bool {
		if client, ok := value.(*SSEClient); ok {
			close(client.Done)
		}
		return true
	})

	h.logger.Info("Event stream handler stopped")
}

// Handle implements shared.EventHandler: every bus event becomes an SSE message
func (h *EventStreamHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	payload := CatalogEventPayload{
		EventID:       event.EventID().String(),
		EventType:     event.EventType(),
		AggregateID:   event.AggregateID().String(),
		AggregateType: event.AggregateType(),
		OccurredAt:    event.OccurredAt(),
	}

	data, err := json.Marshal(payload)
	if err != nil {
		h.logger.Error("Failed to marshal SSE event", zap.Error(err))
		return nil
	}

	h.broadcast(SSEMessage{
		Event: event.EventType(),
		Data:  string(data),
		ID:    event.EventID().String(),
	})
	return nil
}

// EventTypes implements shared.EventHandler. Empty means all events.
func (h *EventStreamHandler) EventTypes() []string {
	return nil
}

// broadcast sends a message to all connected clients
func (h *EventStreamHandler) broadcast(msg SSEMessage) {
	h.clients.Range(func(key, value any) bool {
		client, ok := value.(*SSEClient)
		if !ok {
			return true
		}

		select {
		case client.Chan <- msg:
		default:
			// Channel full, client might be slow
			h.logger.Warn("Client channel full, dropping message",
				zap.String("client_id", client.ID))
		}
		return true
	})
}

// sendHeartbeats periodically sends heartbeat messages to keep connections alive
func (h *EventStreamHandler) sendHeartbeats() {
	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	for {
		select {
		case <-h.ctx.Done():
			return
		case <-ticker.C:
			h.broadcast(SSEMessage{
				Event: "heartbeat",
				Data:  fmt.Sprintf(`{"timestamp":%d}`, time.Now().Unix()),
			})
		}
	}
}

// Stream godoc
// @Summary      Subscribe to catalog events via SSE
// @Description  Establishes a Server-Sent Events connection streaming catalog and identity domain events
// @Tags         events
// @Produce      text/event-stream
// @Success      200 {string} string "SSE stream"
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      503 {object} dto.Response{error=dto.ErrorInfo}
// @Security     BearerAuth
// @Router       /events [get]
func (h *EventStreamHandler) Stream(c *gin.Context) {
	if h.maxClients > 0 && h.GetClientCount() >= h.maxClients {
		c.JSON(503, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "MAX_CONNECTIONS_REACHED",
				"message": "Maximum number of SSE connections reached",
			},
		})
		return
	}

	// Set SSE headers
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	userID := middleware.GetJWTUserID(c)

	// Buffer size allows messages to queue without blocking broadcast
	const sseMessageBufferSize = 100
	client := &SSEClient{
		ID:     uuid.New().String(),
		UserID: userID,
		Chan:   make(chan SSEMessage, sseMessageBufferSize),
		Done:   make(chan struct{}),
	}

	h.clients.Store(client.ID, client)
	// The message channel is never closed; broadcast may hold a reference
	// past removal and a send on a closed channel would panic
	defer h.clients.Delete(client.ID)

	h.logger.Info("SSE client connected",
		zap.String("client_id", client.ID),
		zap.String("user_id", userID))

	// Send initial connection event
	h.sendEvent(c.Writer, SSEMessage{
		Event: "connected",
		Data:  fmt.Sprintf(`{"client_id":"%s","timestamp":%d}`, client.ID, time.Now().Unix()),
	})
	c.Writer.Flush()

	reqCtx := c.Request.Context()

	for {
		select {
		case <-reqCtx.Done():
			h.logger.Info("SSE client disconnected",
				zap.String("client_id", client.ID))
			return
		case <-client.Done:
			return
		case <-h.ctx.Done():
			return
		case msg := <-client.Chan:
			h.sendEvent(c.Writer, msg)
			c.Writer.Flush()
		}
	}
}

// sendEvent writes an SSE event to the response writer
func (h *EventStreamHandler) sendEvent(w io.Writer, msg SSEMessage) {
	if msg.Event != "" {
		fmt.Fprintf(w, "event: %s\n", msg.Event)
	}
	if msg.ID != "" {
		fmt.Fprintf(w, "id: %s\n", msg.ID)
	}
	fmt.Fprintf(w, "data: %s\n\n", msg.Data)
}

// GetClientCount returns the number of connected SSE clients
func (h *EventStreamHandler) GetClientCount() int {
	count := 0
	h.clients.Range(func(_, _ any) bool {
		count++
		return true
	})
	return count
}

var _ shared.EventHandler = (*EventStreamHandler)(nil)
