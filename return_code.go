package mqttpub

import "strconv"

// ReturnCode is the CONNACK connect return code.
// MQTT 3.1.1: Section 3.2.2.3
type ReturnCode byte

// Connect return codes.
const (
	// ReturnAccepted means the connection was accepted.
	ReturnAccepted ReturnCode = 0x00
	// ReturnUnacceptableProtocolVersion means the broker does not support level 4.
	ReturnUnacceptableProtocolVersion ReturnCode = 0x01
	// ReturnIdentifierRejected means the client identifier is not allowed.
	ReturnIdentifierRejected ReturnCode = 0x02
	// ReturnServerUnavailable means the MQTT service is unavailable.
	ReturnServerUnavailable ReturnCode = 0x03
	// ReturnBadUserNameOrPassword means the credentials are malformed.
	ReturnBadUserNameOrPassword ReturnCode = 0x04
	// ReturnNotAuthorized means the client is not authorized to connect.
	ReturnNotAuthorized ReturnCode = 0x05
)

// String returns a human readable description of the return code.
func (c ReturnCode) String() string {
	switch c {
	case ReturnAccepted:
		return "connection accepted"
	case ReturnUnacceptableProtocolVersion:
		return "unacceptable protocol version"
	case ReturnIdentifierRejected:
		return "identifier rejected"
	case ReturnServerUnavailable:
		return "server unavailable"
	case ReturnBadUserNameOrPassword:
		return "bad user name or password"
	case ReturnNotAuthorized:
		return "not authorized"
	default:
		return "unknown return code 0x" + strconv.FormatUint(uint64(c), 16)
	}
}

// Accepted returns true if the connection was accepted.
func (c ReturnCode) Accepted() bool {
	return c == ReturnAccepted
}
