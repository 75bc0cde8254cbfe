package mqttpub

import (
	"encoding/binary"
	"io"
)

const (
	protocolName  = "MQTT"
	protocolLevel = 0x04

	// connectFlagCleanSession is the only connect flag this client sets:
	// no username, password or will.
	connectFlagCleanSession = 0x02

	// connectVariableHeaderSize covers protocol name, level, flags and keep alive.
	connectVariableHeaderSize = 2 + len(protocolName) + 1 + 1 + 2
)

// ConnectPacket represents an MQTT 3.1.1 CONNECT packet with a clean session
// and no credentials.
type ConnectPacket struct {
	// ClientID is the client identifier. Empty is legal but discouraged.
	ClientID string

	// KeepAlive is the keep alive interval in seconds. The protocol field is
	// 16 bits wide; the high byte is always zero.
	KeepAlive uint8
}

// Type returns the packet type.
func (p *ConnectPacket) Type() PacketType {
	return PacketCONNECT
}

// Validate validates the packet contents.
func (p *ConnectPacket) Validate() error {
	return checkStringLength(p.ClientID)
}

// remainingLength returns the size of the variable header plus payload.
func (p *ConnectPacket) remainingLength() uint32 {
	return uint32(connectVariableHeaderSize + 2 + len(p.ClientID))
}

// AppendTo appends the encoded packet to dst.
func (p *ConnectPacket) AppendTo(dst []byte) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return dst, err
	}

	header := FixedHeader{
		PacketType:      PacketCONNECT,
		RemainingLength: p.remainingLength(),
	}

	dst, err := header.appendTo(dst)
	if err != nil {
		return dst, err
	}

	// Variable header
	dst = appendString(dst, protocolName)
	dst = append(dst, protocolLevel, connectFlagCleanSession)
	dst = binary.BigEndian.AppendUint16(dst, uint16(p.KeepAlive))

	// Payload
	return appendString(dst, p.ClientID), nil
}

// Encode writes the packet to the writer.
// Returns the number of bytes written.
func (p *ConnectPacket) Encode(w io.Writer) (int, error) {
	buf, err := p.AppendTo(nil)
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// EncodeConnect returns the CONNECT packet bytes for clientID and keepAlive.
func EncodeConnect(clientID string, keepAlive uint8) ([]byte, error) {
	p := ConnectPacket{ClientID: clientID, KeepAlive: keepAlive}
	return p.AppendTo(nil)
}
