package mqttpub

import (
	"fmt"
	"io"
)

const (
	connackFixedHeader     = byte(PacketCONNACK) << 4
	connackRemainingLength = 0x02
	connackSize            = 4
)

// ConnackPacket represents an MQTT 3.1.1 CONNACK packet.
type ConnackPacket struct {
	// SessionPresent is bit 0 of the acknowledge flags. Always false for a
	// clean session.
	SessionPresent bool

	// ReturnCode is the connect return code.
	ReturnCode ReturnCode
}

// Type returns the packet type.
func (p *ConnackPacket) Type() PacketType {
	return PacketCONNACK
}

// Encode writes the packet to the writer.
func (p *ConnackPacket) Encode(w io.Writer) (int, error) {
	var flags byte
	if p.SessionPresent {
		flags = 0x01
	}
	return w.Write([]byte{connackFixedHeader, connackRemainingLength, flags, byte(p.ReturnCode)})
}

// ReadConnack reads exactly four bytes from r and validates them as a CONNACK
// accepting the connection. A well formed CONNACK carrying a non-zero return
// code is returned together with a *ProtocolError.
func ReadConnack(r io.Reader) (*ConnackPacket, error) {
	var buf [connackSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return nil, err
	}

	if buf[0] != connackFixedHeader {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("expected CONNACK header 0x%02x, got 0x%02x", connackFixedHeader, buf[0]),
		}
	}

	if buf[1] != connackRemainingLength {
		return nil, &ProtocolError{
			Reason: fmt.Sprintf("expected CONNACK remaining length 2, got %d", buf[1]),
		}
	}

	p := &ConnackPacket{
		SessionPresent: buf[2]&0x01 != 0,
		ReturnCode:     ReturnCode(buf[3]),
	}

	if !p.ReturnCode.Accepted() {
		return p, &ProtocolError{
			ReturnCode: p.ReturnCode,
			Reason:     "connection refused: " + p.ReturnCode.String(),
		}
	}

	return p, nil
}
