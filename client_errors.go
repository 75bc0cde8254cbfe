package mqttpub

import (
	"errors"
)

// Sentinel errors for the client error taxonomy - check with errors.Is().
// ErrEncoding is declared alongside the encoders in encoding.go.
var (
	// ErrAddress is returned when the broker host cannot be parsed or resolved.
	ErrAddress = errors.New("invalid broker address")

	// ErrConnect is returned when the TCP connection is refused or times out.
	ErrConnect = errors.New("connect failed")

	// ErrProtocol is returned when the broker sends a malformed or rejecting CONNACK.
	ErrProtocol = errors.New("protocol error")

	// ErrIO is returned when a read or write fails on an established socket.
	ErrIO = errors.New("i/o error")

	// ErrNotConnected is returned when an operation requires an active connection.
	ErrNotConnected = errors.New("not connected")
)

// AddressError contains details about an unusable broker address.
// Extract with errors.As().
type AddressError struct {
	Host string
	Err  error
}

func (e *AddressError) Error() string {
	if e.Err != nil {
		return "invalid broker address " + e.Host + ": " + e.Err.Error()
	}
	return "invalid broker address " + e.Host
}

func (e *AddressError) Unwrap() []error { return unwrapPair(ErrAddress, e.Err) }

// ConnectError contains details about a failed TCP connection attempt.
// Extract with errors.As().
type ConnectError struct {
	Addr string
	Err  error
}

func (e *ConnectError) Error() string {
	if e.Err != nil {
		return "connect to " + e.Addr + " failed: " + e.Err.Error()
	}
	return "connect to " + e.Addr + " failed"
}

func (e *ConnectError) Unwrap() []error { return unwrapPair(ErrConnect, e.Err) }

// ProtocolError contains details about a malformed or rejected CONNACK.
// ReturnCode is only meaningful when the CONNACK header itself was valid.
// Extract with errors.As().
type ProtocolError struct {
	ReturnCode ReturnCode
	Reason     string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Reason
}

func (e *ProtocolError) Unwrap() error { return ErrProtocol }

// IOError contains details about a failed read or write on an established socket.
// Extract with errors.As().
type IOError struct {
	// Op names the operation, e.g. "write CONNECT" or "read CONNACK".
	Op  string
	Err error
}

func (e *IOError) Error() string {
	if e.Err != nil {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op
}

func (e *IOError) Unwrap() []error { return unwrapPair(ErrIO, e.Err) }

func unwrapPair(sentinel, cause error) []error {
	if cause == nil {
		return []error{sentinel}
	}
	return []error{sentinel, cause}
}
