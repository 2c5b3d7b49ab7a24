// Package session implements the protocol client for the websocket
// bridge: one market-data session and one trade session, each owning a
// single connection handle and dispatching the inbound message stream
// to a typed handler.
package session

import (
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/tabxx/ctpbridge/internal/codec"
	"github.com/tabxx/ctpbridge/internal/observ"
)

// Conn is the slice of the websocket connection the sessions use.
// *websocket.Conn satisfies it; tests substitute a fake.
type Conn interface {
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Dialer opens a websocket connection to the given URL.
type Dialer func(url string) (Conn, error)

func gorillaDial(url string) (Conn, error) {
	c, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// link is the connection handle shared by both session kinds: socket
// ownership, state, trading day, the serialized write path and the
// read loop. Inbound dispatch is serial; handlers never run
// concurrently with themselves.
type link struct {
	name      string
	path      string
	frontAddr string
	frontPort string
	dial      Dialer
	log       *zap.Logger

	// dispatch routes one decoded envelope; installed by the owning
	// session before the first connect.
	dispatch func(*codec.Envelope)
	// closed is invoked when the socket drops out from under us.
	closed func(err error)

	mu         sync.Mutex
	conn       Conn
	dialing    bool
	gen        int // bumped by Disconnect so a racing dial discards its socket
	state      State
	tradingDay string
}

// Connect opens the websocket and starts the read loop. A second call
// while a socket is open or a dial is in flight is a no-op. The dial
// itself runs outside the handle mutex; State, send and Disconnect
// stay responsive while it blocks.
func (l *link) Connect(host, port string) error {
	l.mu.Lock()
	if l.conn != nil || l.dialing {
		l.mu.Unlock()
		return nil
	}
	l.dialing = true
	gen := l.gen
	l.mu.Unlock()

	url := fmt.Sprintf("ws://%s:%s%s", host, port, l.path)
	c, err := l.dial(url)

	l.mu.Lock()
	l.dialing = false
	if err != nil {
		l.mu.Unlock()
		return &TransportError{Op: "dial " + url, Err: err}
	}
	if l.gen != gen {
		// Disconnect arrived while dialing; the socket is unwanted.
		l.mu.Unlock()
		_ = c.Close()
		return nil
	}
	l.conn = c
	l.state = SocketOpen
	l.mu.Unlock()

	l.log.Info("socket open", zap.String("url", url))
	go l.readLoop(c)
	return nil
}

// Disconnect closes the socket and resets the handle. Safe in any
// state, including before any socket exists.
func (l *link) Disconnect() error {
	l.mu.Lock()
	c := l.conn
	l.conn = nil
	l.gen++
	l.state = Disconnected
	l.tradingDay = ""
	l.mu.Unlock()

	if c == nil {
		return nil
	}
	l.log.Info("socket closed")
	return c.Close()
}

func (l *link) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// TradingDay returns the business date latched from the most recent
// login or trading-day notification; empty when disconnected.
func (l *link) TradingDay() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.tradingDay
}

func (l *link) setState(s State) {
	l.mu.Lock()
	l.state = s
	l.mu.Unlock()
}

func (l *link) setTradingDay(day string) {
	if day == "" {
		return
	}
	l.mu.Lock()
	l.tradingDay = day
	l.mu.Unlock()
}

// send serializes an outbound command. The write path is serialized
// under the handle mutex; the underlying websocket allows only one
// concurrent writer.
func (l *link) send(op string, data any) error {
	b, err := codec.Encode(op, data)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.conn == nil {
		return ErrNotConnected
	}
	if err := l.conn.WriteMessage(websocket.TextMessage, b); err != nil {
		return &TransportError{Op: "send " + op, Err: err}
	}
	return nil
}

// ConnectFront instructs the bridge to connect to the upstream front.
func (l *link) ConnectFront(addr, port string) error {
	return l.send(codec.OpConnect, map[string]string{
		"addr": addr,
		"port": port,
	})
}

func (l *link) readLoop(c Conn) {
	for {
		_, raw, err := c.ReadMessage()
		if err != nil {
			l.dropped(c, err)
			return
		}
		l.handle(raw)
	}
}

// handle is the error boundary for inbound dispatch: a failing or
// panicking handler is logged and must not block the next message.
func (l *link) handle(raw []byte) {
	defer func() {
		if r := recover(); r != nil {
			l.log.Error("handler panic", zap.Any("panic", r))
		}
	}()

	observ.IncCounter("gateway_messages_total", map[string]string{"session": l.name})
	env, err := codec.Decode(raw)
	if err != nil {
		observ.IncCounter("gateway_decode_errors_total", map[string]string{"session": l.name})
		l.log.Error("discarding undecodable message", zap.Error(err))
		return
	}
	if env.Ready() {
		// Handshake: the bridge is up, ask it to connect upstream.
		l.setState(FrontConnecting)
		if err := l.ConnectFront(l.frontAddr, l.frontPort); err != nil {
			l.log.Error("connect front", zap.Error(err))
		}
	}
	l.dispatch(env)
}

// dropped handles a socket that closed out from under the read loop.
// Nothing fires for a deliberate Disconnect, which already swapped the
// conn out.
func (l *link) dropped(c Conn, err error) {
	l.mu.Lock()
	current := l.conn == c
	if current {
		l.conn = nil
		l.state = Disconnected
		l.tradingDay = ""
	}
	l.mu.Unlock()

	if !current {
		return
	}
	l.log.Warn("socket lost", zap.Error(err))
	_ = c.Close()
	l.closed(&TransportError{Op: "read", Err: err})
}
