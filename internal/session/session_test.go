package session

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
	"github.com/tabxx/ctpbridge/internal/observ"
)

// fakeConn records writes and feeds reads from a channel. Leaving the
// channel empty parks the read loop so tests can drive dispatch
// synchronously through handle().
type fakeConn struct {
	in chan []byte

	mu     sync.Mutex
	writes [][]byte
	closed bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{in: make(chan []byte, 16)}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	b, ok := <-c.in
	if !ok {
		return 0, nil, io.EOF
	}
	return 1, b, nil
}

func (c *fakeConn) WriteMessage(_ int, b []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("write on closed conn")
	}
	c.writes = append(c.writes, b)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.in)
	}
	return nil
}

func (c *fakeConn) sentOps(t *testing.T) []string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	ops := make([]string, 0, len(c.writes))
	for _, raw := range c.writes {
		var env codec.Envelope
		require.NoError(t, json.Unmarshal(raw, &env))
		ops = append(ops, env.Op)
	}
	return ops
}

type recordingTradeHandler struct {
	NopTradeHandler

	mu         sync.Mutex
	errs       []error
	loggedIn   []codec.LoginInfo
	closedErrs chan error
}

func newRecordingTradeHandler() *recordingTradeHandler {
	return &recordingTradeHandler{closedErrs: make(chan error, 1)}
}

func (h *recordingTradeHandler) OnError(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.errs = append(h.errs, err)
}

func (h *recordingTradeHandler) OnLoggedIn(info codec.LoginInfo) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.loggedIn = append(h.loggedIn, info)
}

func (h *recordingTradeHandler) OnSocketClosed(err error) {
	h.closedErrs <- err
}

func (h *recordingTradeHandler) errors() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

func newTestTrade(t *testing.T, h TradeHandler) (*Trade, *fakeConn) {
	t.Helper()
	conn := newFakeConn()
	dial := func(string) (Conn, error) { return conn, nil }
	s := newTrade(TradeConfig{FrontAddr: "203.0.113.7", FrontPort: "41205"}, h, zap.NewNop(), dial)
	return s, conn
}

func TestCommandsWithoutSocketReturnNotConnected(t *testing.T) {
	s, _ := newTestTrade(t, newRecordingTradeHandler())

	assert.ErrorIs(t, s.QuerySettlementInfo("20250829"), ErrNotConnected)
	assert.ErrorIs(t, s.Auth("u", "app", "code"), ErrNotConnected)
	assert.ErrorIs(t, s.Login("u", "pw"), ErrNotConnected)
	assert.ErrorIs(t, s.InsertOrder(OrderRequest{}), ErrNotConnected)
	assert.Equal(t, Disconnected, s.State())
}

func TestConnectIsIdempotent(t *testing.T) {
	conn := newFakeConn()
	dials := 0
	dial := func(string) (Conn, error) {
		dials++
		return conn, nil
	}
	s := newTrade(TradeConfig{}, newRecordingTradeHandler(), zap.NewNop(), dial)

	require.NoError(t, s.Connect("gw.example", "8081"))
	require.NoError(t, s.Connect("gw.example", "8081"))
	assert.Equal(t, 1, dials)
	assert.Equal(t, SocketOpen, s.State())
}

func TestHandleStaysResponsiveDuringDial(t *testing.T) {
	conn := newFakeConn()
	entered := make(chan struct{})
	release := make(chan struct{})
	dial := func(string) (Conn, error) {
		close(entered)
		<-release
		return conn, nil
	}
	s := newTrade(TradeConfig{}, newRecordingTradeHandler(), zap.NewNop(), dial)

	done := make(chan error, 1)
	go func() { done <- s.Connect("gw.example", "8081") }()
	<-entered

	// The dial is in flight; the handle must stay usable.
	assert.Equal(t, Disconnected, s.State())
	assert.ErrorIs(t, s.GetTradingDay(), ErrNotConnected)
	require.NoError(t, s.Disconnect())

	close(release)
	require.NoError(t, <-done)

	// The disconnect that raced the dial wins; the late socket is dropped.
	assert.Equal(t, Disconnected, s.State())
	conn.mu.Lock()
	closed := conn.closed
	conn.mu.Unlock()
	assert.True(t, closed)
}

func TestReadyIssuesConnectFront(t *testing.T) {
	s, conn := newTestTrade(t, newRecordingTradeHandler())
	require.NoError(t, s.Connect("gw.example", "8081"))

	s.handle([]byte(`{"status":"ready"}`))

	assert.Equal(t, FrontConnecting, s.State())
	ops := conn.sentOps(t)
	require.Len(t, ops, 1)
	assert.Equal(t, codec.OpConnect, ops[0])

	var env codec.Envelope
	require.NoError(t, json.Unmarshal(conn.writes[0], &env))
	var data map[string]string
	require.NoError(t, json.Unmarshal(env.Data, &data))
	assert.Equal(t, "203.0.113.7", data["addr"])
	assert.Equal(t, "41205", data["port"])
}

func TestLoginEventLatchesTradingDay(t *testing.T) {
	h := newRecordingTradeHandler()
	s, _ := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))

	s.handle([]byte(`{"msg":8,"err":{"code":0,"msg":""},"info":{"trading_day":"20250901","user_id":"007"}}`))

	assert.Equal(t, LoggedIn, s.State())
	assert.Equal(t, "20250901", s.TradingDay())
	require.Len(t, h.loggedIn, 1)
	assert.Equal(t, "20250901", h.loggedIn[0].TradingDay)
}

func TestUnknownCodeLeavesStateUnchanged(t *testing.T) {
	h := newRecordingTradeHandler()
	s, _ := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))
	s.handle([]byte(`{"msg":8,"info":{"trading_day":"20250901"}}`))
	require.Equal(t, LoggedIn, s.State())

	s.handle([]byte(`{"msg":77,"info":{}}`))

	assert.Equal(t, LoggedIn, s.State())
	errs := h.errors()
	require.Len(t, errs, 1)
	var unknown *UnknownMessageError
	require.ErrorAs(t, errs[0], &unknown)
	assert.Equal(t, 77, unknown.Code)
}

func TestGatewayErrorRoutedToHandler(t *testing.T) {
	h := newRecordingTradeHandler()
	s, _ := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))

	s.handle([]byte(`{"msg":8,"err":{"code":3,"msg":"invalid password"},"info":{}}`))

	// A rejected login must not transition the handle.
	assert.Equal(t, SocketOpen, s.State())
	errs := h.errors()
	require.Len(t, errs, 1)
	var gw *GatewayError
	require.ErrorAs(t, errs[0], &gw)
	assert.Equal(t, 3, gw.Code)
}

func TestMalformedFrameIsDiscarded(t *testing.T) {
	h := newRecordingTradeHandler()
	s, _ := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))

	labels := map[string]string{"session": "trade"}
	before := observ.CounterValue("gateway_decode_errors_total", labels)

	s.handle([]byte(`{"msg":`))

	assert.Equal(t, SocketOpen, s.State())
	assert.Empty(t, h.errors())
	assert.Equal(t, before+1, observ.CounterValue("gateway_decode_errors_total", labels))
}

func TestHandlerPanicDoesNotKillDispatch(t *testing.T) {
	h := &panickyHandler{recordingTradeHandler{closedErrs: make(chan error, 1)}}
	s, _ := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))

	s.handle([]byte(`{"msg":9,"info":{}}`)) // panics inside OnLoggedOut
	s.handle([]byte(`{"msg":8,"info":{"trading_day":"20250901"}}`))

	assert.Equal(t, LoggedIn, s.State())
}

type panickyHandler struct {
	recordingTradeHandler
}

func (h *panickyHandler) OnLoggedOut() { panic("boom") }

func TestSocketLossForcesDisconnected(t *testing.T) {
	h := newRecordingTradeHandler()
	s, conn := newTestTrade(t, h)
	require.NoError(t, s.Connect("gw.example", "8081"))
	conn.in <- []byte(`{"msg":8,"info":{"trading_day":"20250901"}}`)

	conn.Close()

	select {
	case err := <-h.closedErrs:
		var transport *TransportError
		require.ErrorAs(t, err, &transport)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for socket-closed notification")
	}
	assert.Equal(t, Disconnected, s.State())
	assert.Empty(t, s.TradingDay())
}

func TestDisconnectSafeInAnyState(t *testing.T) {
	s, conn := newTestTrade(t, newRecordingTradeHandler())

	require.NoError(t, s.Disconnect()) // before any socket exists

	require.NoError(t, s.Connect("gw.example", "8081"))
	s.handle([]byte(`{"msg":8,"info":{"trading_day":"20250901"}}`))
	require.NoError(t, s.Disconnect())

	assert.Equal(t, Disconnected, s.State())
	assert.Empty(t, s.TradingDay())
	conn.mu.Lock()
	assert.True(t, conn.closed)
	conn.mu.Unlock()
}

func TestMarketDataDispatch(t *testing.T) {
	h := &recordingMDHandler{}
	conn := newFakeConn()
	dial := func(string) (Conn, error) { return conn, nil }
	s := newMarketData(MarketDataConfig{
		BrokerID:  "9999",
		UserID:    "007",
		FrontAddr: "203.0.113.8",
		FrontPort: "41213",
	}, h, zap.NewNop(), dial)
	require.NoError(t, s.Connect("gw.example", "8081"))

	s.handle([]byte(`{"status":"ready"}`))
	s.handle([]byte(`{"msg":2,"info":{}}`))
	require.NoError(t, s.Login("secret"))
	s.handle([]byte(`{"msg":5,"info":{"trading_day":"20250901"}}`))
	s.handle([]byte(`{"msg":10,"info":{"trading_day":"20250901","instrument_id":"jm2601","last_price":812.5,"bp1":812.0,"av1":3}}`))

	assert.Equal(t, LoggedIn, s.State())
	assert.Equal(t, "20250901", s.TradingDay())
	require.Len(t, h.ticks, 1)
	assert.Equal(t, "jm2601", h.ticks[0].InstrumentID)
	assert.Equal(t, 812.0, h.ticks[0].BidPrice1)

	ops := conn.sentOps(t)
	assert.Equal(t, []string{codec.OpConnect, codec.OpLogin}, ops)
}

type recordingMDHandler struct {
	NopMarketDataHandler

	frontConnected bool
	ticks          []codec.MarketData
}

func (h *recordingMDHandler) OnFrontConnected()               { h.frontConnected = true }
func (h *recordingMDHandler) OnMarketData(d codec.MarketData) { h.ticks = append(h.ticks, d) }
