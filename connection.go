package mqttpub

import (
	"context"
	"encoding/hex"
	"errors"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"
)

const (
	// drainWait is how long the post-publish drain waits for inbound bytes.
	// A deadline already in the past would fail the read before the socket
	// is polled, so a short future deadline stands in for non-blocking mode.
	drainWait = time.Millisecond

	drainBufferSize = 512
)

// Connection is an established MQTT session over one TCP socket.
// A Connection only exists in the connected state: it is created by a
// successful Client.Connect and becomes unusable after Disconnect.
//
// Publish, Ping and Disconnect are serialized by an internal mutex. Acknowledgements
// for QoS 1 and 2 are never awaited, so delivery is at most once regardless of
// the requested level.
type Connection struct {
	mu        sync.Mutex
	conn      net.Conn
	clientID  string
	packetID  uint16
	connected atomic.Bool

	options  *clientOptions
	logger   Logger
	metrics  *ClientMetrics
	drainBuf []byte
}

func newConnection(conn net.Conn, clientID string, options *clientOptions, logger Logger, metrics *ClientMetrics) *Connection {
	c := &Connection{
		conn:     conn,
		clientID: clientID,
		options:  options,
		logger:   logger,
		metrics:  metrics,
		drainBuf: make([]byte, drainBufferSize),
	}
	c.connected.Store(true)
	return c
}

// ClientID returns the client identifier used in the handshake.
func (c *Connection) ClientID() string {
	return c.clientID
}

// RemoteAddr returns the broker address.
func (c *Connection) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// IsConnected returns true until Disconnect is called.
func (c *Connection) IsConnected() bool {
	return c.connected.Load()
}

// PacketID returns the identifier the next PUBLISH will carry.
func (c *Connection) PacketID() uint16 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.packetID
}

// PublishString publishes a string message.
func (c *Connection) PublishString(topic, message string, retain bool, qos QoS) error {
	return c.Publish(topic, []byte(message), retain, qos)
}

// Publish writes one PUBLISH packet carrying the current packet identifier,
// then advances the identifier (wrapping at 65536) whatever the QoS. After the
// write any bytes the broker has sent are drained and logged.
//
// Publish blocks until the write completes. It never waits for PUBACK or
// PUBREC.
func (c *Connection) Publish(topic string, payload []byte, retain bool, qos QoS) error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	if c.options.publishLimiter != nil {
		if err := c.options.publishLimiter.Wait(context.Background()); err != nil {
			return err
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected.Load() {
		return ErrNotConnected
	}

	start := time.Now()

	packet, err := EncodePublish(topic, payload, retain, qos, c.packetID)
	if err != nil {
		return err
	}

	fields := LogFields{
		LogFieldTopic:    topic,
		LogFieldQoS:      qos.String(),
		LogFieldPacketID: c.packetID,
		LogFieldBytes:    len(packet),
	}

	if err := writeWithTimeout(c.conn, packet, c.options.writeTimeout); err != nil {
		fields[LogFieldError] = err.Error()
		c.logger.Error("publish write failed", fields)
		return &IOError{Op: "write PUBLISH", Err: err}
	}

	c.packetID++

	c.metrics.PacketSent(PacketPUBLISH, len(packet))
	c.metrics.MessagePublished(qos)
	c.logger.Debug("published", fields)

	c.drain()

	c.metrics.PublishLatency(time.Since(start))

	return nil
}

// Ping sends PINGREQ so the broker keeps an idle connection open. The
// PINGRESP is not awaited; it is consumed by the drain that follows.
func (c *Connection) Ping() error {
	if !c.connected.Load() {
		return ErrNotConnected
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected.Load() {
		return ErrNotConnected
	}

	packet := EncodePingreq()
	if err := writeWithTimeout(c.conn, packet, c.options.writeTimeout); err != nil {
		c.logger.Error("ping write failed", LogFields{LogFieldError: err.Error()})
		return &IOError{Op: "write PINGREQ", Err: err}
	}

	c.metrics.PacketSent(PacketPINGREQ, len(packet))
	c.logger.Debug("ping sent", nil)

	c.drain()

	return nil
}

// drain reads whatever the broker has sent without blocking for long.
// Errors are logged, never returned.
func (c *Connection) drain() {
	if err := c.conn.SetReadDeadline(time.Now().Add(drainWait)); err != nil {
		c.logger.Warn("drain: set read deadline failed", LogFields{LogFieldError: err.Error()})
		return
	}

	total := 0
	for {
		n, err := c.conn.Read(c.drainBuf)
		if n > 0 {
			total += n
			c.logger.Debug("drained inbound bytes", LogFields{
				LogFieldBytes: n,
				"data":        hex.EncodeToString(c.drainBuf[:n]),
			})
		}
		if err != nil {
			if !isWouldBlock(err) {
				c.logger.Warn("drain read failed", LogFields{LogFieldError: err.Error()})
			}
			break
		}
	}

	if err := c.conn.SetReadDeadline(time.Time{}); err != nil {
		c.logger.Warn("drain: clear read deadline failed", LogFields{LogFieldError: err.Error()})
	}

	if total > 0 {
		c.metrics.BytesDrained(total)
		c.logger.Info("unsolicited data on the queue", LogFields{LogFieldBytes: total})
	}
}

// Disconnect sends DISCONNECT and closes the socket. The DISCONNECT write is
// best effort: its failure is logged, never returned. Calling Disconnect more
// than once is a no-op.
func (c *Connection) Disconnect() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected.Swap(false) {
		return nil
	}

	packet := EncodeDisconnect()
	if err := writeWithTimeout(c.conn, packet, c.options.writeTimeout); err != nil {
		c.logger.Warn("disconnect write failed", LogFields{LogFieldError: err.Error()})
	} else {
		c.metrics.PacketSent(PacketDISCONNECT, len(packet))
	}

	err := c.conn.Close()
	c.metrics.ConnectionClosed()
	c.logger.Info("disconnected", nil)

	if err != nil {
		return &IOError{Op: "close", Err: err}
	}
	return nil
}

// Close is Disconnect, for use with defer and io.Closer.
func (c *Connection) Close() error {
	return c.Disconnect()
}

// isWouldBlock reports whether err is the expected read timeout of an idle drain.
func isWouldBlock(err error) bool {
	if errors.Is(err, os.ErrDeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
