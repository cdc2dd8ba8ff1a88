package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/infrastructure/event"
)

// syncRecorder guards the recorder against concurrent writes from the
// streaming goroutine while the test inspects the body
type syncRecorder struct {
	mu  sync.Mutex
	rec *httptest.ResponseRecorder
}

func newSyncRecorder() *syncRecorder {
	return &syncRecorder{rec: httptest.NewRecorder()}
}

func (s *syncRecorder) Header() http.Header {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Header()
}

func (s *syncRecorder) Write(b []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Write(b)
}

func (s *syncRecorder) WriteHeader(statusCode int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.WriteHeader(statusCode)
}

func (s *syncRecorder) Flush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rec.Flush()
}

func (s *syncRecorder) BodyString() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rec.Body.String()
}

func newStreamTestSetup(t *testing.T) (*EventStreamHandler, *gin.Engine, *event.InMemoryEventBus) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	bus := event.NewInMemoryEventBus(zap.NewNop())
	require.NoError(t, bus.Start(context.Background()))

	h := NewEventStreamHandler(bus, WithSSELogger(zap.NewNop()))
	require.NoError(t, h.Start())
	t.Cleanup(func() {
		h.Stop()
		_ = bus.Stop(context.Background())
	})

	router := gin.New()
	router.GET("/events", h.Stream)
	return h, router, bus
}

func TestEventStreamHandler_StreamReceivesEvents(t *testing.T) {
	h, router, bus := newStreamTestSetup(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, "/events", nil).WithContext(ctx)
	w := newSyncRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool {
		return h.GetClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	product := newDraftProduct(t, "WIDGET-001", "Widget", "19.99")
	evt := catalog.NewProductCreatedEvent(product)
	require.NoError(t, bus.Publish(context.Background(), evt))

	require.Eventually(t, func() bool {
		return strings.Contains(w.BodyString(), "ProductCreated")
	}, time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate after client disconnect")
	}

	body := w.BodyString()
	assert.Contains(t, body, "event: connected")
	assert.Contains(t, body, evt.AggregateID().String())

	require.Eventually(t, func() bool {
		return h.GetClientCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func TestEventStreamHandler_StopClosesClients(t *testing.T) {
	h, router, _ := newStreamTestSetup(t)

	req := httptest.NewRequest(http.MethodGet, "/events", nil)
	w := newSyncRecorder()

	done := make(chan struct{})
	go func() {
		defer close(done)
		router.ServeHTTP(w, req)
	}()

	require.Eventually(t, func() bool {
		return h.GetClientCount() == 1
	}, time.Second, 10*time.Millisecond)

	h.Stop()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate on shutdown")
	}
}
