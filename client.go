package mqttpub

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Client is a stateless factory for broker connections. It holds only the
// client identity and the broker address, both fixed at construction.
type Client struct {
	identity string
	host     string
	addr     string
	options  *clientOptions
	dialer   Dialer
}

// NewClient validates the identity and resolves host on the configured port
// (1883 unless WithPort is given). Resolution failure is terminal: the
// returned error wraps ErrAddress and no Client is produced.
//
// When a proxy is configured the host is not resolved locally; the proxy
// resolves it.
func NewClient(identity, host string, opts ...Option) (*Client, error) {
	options := applyOptions(opts...)

	if err := checkStringLength(identity); err != nil {
		return nil, fmt.Errorf("client identity: %w", err)
	}

	if host == "" {
		return nil, &AddressError{Host: host, Err: errors.New("empty host")}
	}
	if options.port <= 0 || options.port > 65535 {
		return nil, &AddressError{Host: host, Err: fmt.Errorf("port %d out of range", options.port)}
	}

	hostPort := net.JoinHostPort(host, strconv.Itoa(options.port))

	c := &Client{
		identity: identity,
		host:     host,
		options:  options,
	}

	if options.proxyURL != "" {
		if _, _, err := net.SplitHostPort(hostPort); err != nil {
			return nil, &AddressError{Host: host, Err: err}
		}
		proxyDialer, err := NewProxyDialer(options.proxyURL, "", "")
		if err != nil {
			return nil, &AddressError{Host: options.proxyURL, Err: err}
		}
		c.addr = hostPort
		c.dialer = proxyDialer
	} else {
		tcpAddr, err := net.ResolveTCPAddr("tcp", hostPort)
		if err != nil {
			return nil, &AddressError{Host: host, Err: err}
		}
		c.addr = tcpAddr.String()
		c.dialer = &net.Dialer{}
	}

	if options.dialer != nil {
		c.dialer = options.dialer
	}

	return c, nil
}

// Identity returns the client identifier sent in every CONNECT.
func (c *Client) Identity() string {
	return c.identity
}

// Addr returns the broker address in host:port form.
func (c *Client) Addr() string {
	return c.addr
}

// Connect opens a TCP connection, sends CONNECT with the given keep alive and
// validates the CONNACK. The TCP connect is bounded by the connect timeout
// and ctx. The CONNACK wait is bounded by ctx and the connack timeout; with
// neither set it blocks until the broker answers or the socket fails.
//
// On any failure after the TCP connect the socket is closed and no
// Connection is returned. Nothing is retried.
func (c *Client) Connect(ctx context.Context, keepAlive uint8) (*Connection, error) {
	logger := c.options.logger.WithFields(LogFields{
		LogFieldClientID:   c.identity,
		LogFieldRemoteAddr: c.addr,
	})
	metrics := NewClientMetrics(c.options.metrics)
	start := time.Now()

	packet, err := EncodeConnect(c.identity, keepAlive)
	if err != nil {
		return nil, err
	}

	conn, err := c.dial(ctx)
	if err != nil {
		metrics.ConnectFailed()
		logger.Error("tcp connect failed", LogFields{LogFieldError: err.Error()})
		return nil, &ConnectError{Addr: c.addr, Err: err}
	}

	if err := c.handshake(ctx, conn, packet); err != nil {
		metrics.ConnectFailed()
		logger.Error("mqtt handshake failed", LogFields{LogFieldError: err.Error()})
		conn.Close()
		return nil, err
	}

	metrics.PacketSent(PacketCONNECT, len(packet))
	metrics.ConnectionOpened(time.Since(start))
	logger.Info("connected", LogFields{
		LogFieldDuration:  time.Since(start).String(),
		LogFieldKeepAlive: keepAlive,
	})

	return newConnection(conn, c.identity, c.options, logger, metrics), nil
}

// dial opens the TCP connection within the connect timeout.
func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	dialCtx := ctx
	if c.options.connectTimeout > 0 {
		var cancel context.CancelFunc
		dialCtx, cancel = context.WithTimeout(ctx, c.options.connectTimeout)
		defer cancel()
	}

	return c.dialer.DialContext(dialCtx, "tcp", c.addr)
}

// handshake writes CONNECT and validates the 4-byte CONNACK.
func (c *Client) handshake(ctx context.Context, conn net.Conn, packet []byte) error {
	if err := writeWithTimeout(conn, packet, c.options.writeTimeout); err != nil {
		return &IOError{Op: "write CONNECT", Err: err}
	}

	var deadline time.Time
	if c.options.connackTimeout > 0 {
		deadline = time.Now().Add(c.options.connackTimeout)
	}
	if ctxDeadline, ok := ctx.Deadline(); ok && (deadline.IsZero() || ctxDeadline.Before(deadline)) {
		deadline = ctxDeadline
	}
	if !deadline.IsZero() {
		if err := conn.SetReadDeadline(deadline); err != nil {
			return &IOError{Op: "set CONNACK deadline", Err: err}
		}
	}

	// Cancelling ctx interrupts the blocked read.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Unix(1, 0))
	})

	_, err := ReadConnack(conn)
	stop()

	if err != nil {
		var protoErr *ProtocolError
		if errors.As(err, &protoErr) {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return &IOError{Op: "read CONNACK", Err: ctxErr}
		}
		// The socket deadline can fire just before the context timer does.
		if ctxDeadline, ok := ctx.Deadline(); ok && isWouldBlock(err) && !time.Now().Before(ctxDeadline) {
			return &IOError{Op: "read CONNACK", Err: context.DeadlineExceeded}
		}
		return &IOError{Op: "read CONNACK", Err: err}
	}

	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return &IOError{Op: "clear CONNACK deadline", Err: err}
	}

	return nil
}

// writeWithTimeout writes b in full, under a deadline when timeout > 0.
func writeWithTimeout(conn net.Conn, b []byte, timeout time.Duration) error {
	if timeout > 0 {
		if err := conn.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
			return err
		}
		defer conn.SetWriteDeadline(time.Time{})
	}

	_, err := conn.Write(b)
	return err
}
