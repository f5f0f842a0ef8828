package ws_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appsales "github.com/jhoicas/pos-ventas-api/internal/application/sales"
	"github.com/jhoicas/pos-ventas-api/internal/infrastructure/ws"
	"github.com/jhoicas/pos-ventas-api/pkg/logger"
)

type fakeConn struct {
	mu     sync.Mutex
	msgs   [][]byte
	fail   bool
	closed bool
	gone   chan struct{}
}

// ReadMessage bloquea hasta que la conexión se cierre.
func (c *fakeConn) ReadMessage() (int, []byte, error) {
	<-c.goneCh()
	return 0, nil, errors.New("use of closed connection")
}

func (c *fakeConn) goneCh() chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gone == nil {
		c.gone = make(chan struct{})
	}
	return c.gone
}

func (c *fakeConn) WriteMessage(_ int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail {
		return errors.New("broken pipe")
	}
	c.msgs = append(c.msgs, data)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	if c.gone == nil {
		c.gone = make(chan struct{})
	}
	close(c.gone)
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]byte(nil), c.msgs...)
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestHub_DifundeEventoYDescartaClientesRotos(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 4)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	ok, broken := &fakeConn{}, &fakeConn{fail: true}
	hub.Register <- ok
	hub.Register <- broken

	require.NoError(t, hub.Publish(appsales.SaleEvent{
		Type: appsales.EventSaleCommitted, SaleID: "s1", SaleNumber: "SL-1", Total: decimal.NewFromInt(63),
	}))

	require.Eventually(t, func() bool { return len(ok.received()) == 1 }, time.Second, 5*time.Millisecond)
	var evt map[string]any
	require.NoError(t, json.Unmarshal(ok.received()[0], &evt))
	assert.Equal(t, "sale_committed", evt["type"])
	assert.Equal(t, "SL-1", evt["sale_number"])

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, broken.isClosed())
}

func TestHub_PublishNoBloqueaConBufferLleno(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	// Sin Run nadie consume.
	require.NoError(t, hub.Publish(appsales.SaleEvent{SaleID: "a"}))
	assert.ErrorIs(t, hub.Publish(appsales.SaleEvent{SaleID: "b"}), ws.ErrBackpressure)
}

func TestHub_CancelarCierraClientes(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() { hub.Run(ctx); close(done) }()

	c := &fakeConn{}
	hub.Register <- c
	cancel()
	<-done
	assert.True(t, c.isClosed())
	assert.Zero(t, hub.ClientCount())
}

func serveAsync(hub *ws.Hub, c ws.Conn) <-chan struct{} {
	returned := make(chan struct{})
	go func() { hub.Serve(c); close(returned) }()
	return returned
}

func TestHub_ServeRegistraYDesregistraAlCerrar(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	c := &fakeConn{}
	returned := serveAsync(hub, c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Serve no terminó tras cerrar la conexión")
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestHub_ServeAbiertoAlApagarTermina(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	c := &fakeConn{}
	returned := serveAsync(hub, c)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case <-returned:
	case <-time.After(time.Second):
		t.Fatal("Serve quedó bloqueado al detener el hub")
	}
	assert.True(t, c.isClosed())
}

func TestHub_ServeDespuesDeApagarNoBloquea(t *testing.T) {
	hub := ws.NewHub(logger.Nop(), 1)
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	go func() { hub.Run(ctx); close(stopped) }()
	cancel()
	<-stopped

	c := &fakeConn{}
	select {
	case <-serveAsync(hub, c):
	case <-time.After(time.Second):
		t.Fatal("Serve quedó bloqueado con el hub detenido")
	}
	assert.True(t, c.isClosed())
}
