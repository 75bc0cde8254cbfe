// Package mqttpub provides a minimal publish-only MQTT 3.1.1 client.
//
// This package implements the subset of the MQTT Version 3.1.1 OASIS Standard
// a sensor or appliance needs to push messages to a broker:
// https://docs.oasis-open.org/mqtt/mqtt/v3.1.1/mqtt-v3.1.1.html
//
// # Features
//
//   - CONNECT with a clean session and no credentials
//   - PUBLISH at QoS 0, 1 or 2 with the RETAIN flag
//   - PINGREQ and DISCONNECT
//   - Plain TCP, optionally through an HTTP CONNECT or SOCKS5 proxy
//   - Pluggable logging and metrics
//
// Acknowledgements are never awaited: QoS 1 and 2 are requested from the
// broker but delivery is at most once. There is no subscribe and no reconnect.
// Keep alive pings are sent only when the caller invokes Connection.Ping.
//
// # Packets
//
// The encoders are pure functions returning the exact wire bytes:
//
//	b, err := mqttpub.EncodeConnect("client_name", 5)
//	b, err = mqttpub.EncodePublish("some_topic", []byte("my message"), false, mqttpub.AtMostOnce, 0)
//	b = mqttpub.EncodePingreq()
//	b = mqttpub.EncodeDisconnect()
//
// ReadConnack reads and validates the broker's 4-byte answer to CONNECT.
//
// # Client
//
// A Client holds the identity and the resolved broker address. Each Connect
// opens an independent Connection:
//
//	client, err := mqttpub.NewClient("kindle", "192.168.1.10",
//	    mqttpub.WithConnackTimeout(5*time.Second),
//	)
//	conn, err := client.Connect(ctx, 30)
//	defer conn.Disconnect()
//
//	err = conn.PublishString("KINDLE/SCREEN_STATE", "ON", true, mqttpub.AtMostOnce)
//
// Errors are classified by sentinel; check with errors.Is:
//
//	ErrAddress   host could not be resolved
//	ErrConnect   TCP connect refused or timed out
//	ErrProtocol  malformed CONNACK or non-zero return code
//	ErrIO        read or write failure on an open socket
//	ErrEncoding  string, payload or QoS outside protocol limits
//
// # Metrics
//
// Connection, packet and latency metrics are recorded on a Metrics backend:
//
//	// Prometheus
//	metrics := mqttpub.NewPrometheusMetrics(prometheus.DefaultRegisterer, "")
//
//	// For testing
//	metrics := mqttpub.NewMemoryMetrics()
//
//	client, err := mqttpub.NewClient("id", "broker", mqttpub.WithMetrics(metrics))
//
// # Logging
//
// Implement the Logger interface for structured logging, or use one of the
// provided adapters:
//
//	logger := mqttpub.NewStdLogger(os.Stdout, mqttpub.LogLevelInfo)
//	logger := mqttpub.NewZerologLogger(zerolog.New(os.Stderr), mqttpub.LogLevelDebug)
package mqttpub
