package mqttpub

import (
	"encoding/binary"
	"fmt"
	"io"
)

// PUBLISH packet errors.
var (
	ErrInvalidQoS = fmt.Errorf("%w: invalid QoS level", ErrEncoding)
)

// PublishPacket represents an MQTT 3.1.1 PUBLISH packet.
type PublishPacket struct {
	// Topic is the topic name.
	Topic string

	// Payload is the application message. Any bytes, not necessarily UTF-8.
	Payload []byte

	// QoS is the requested Quality of Service level.
	QoS QoS

	// Retain asks the broker to keep the message for future subscribers.
	Retain bool

	// PacketID is serialized only when QoS > AtMostOnce.
	PacketID uint16
}

// Type returns the packet type.
func (p *PublishPacket) Type() PacketType {
	return PacketPUBLISH
}

// flags returns the fixed header flags.
func (p *PublishPacket) flags() byte {
	flags := byte(p.QoS&0x03) << 1
	if p.Retain {
		flags |= 0x01
	}
	return flags
}

// remainingLength returns the size of the variable header plus payload as a
// 64-bit value so oversized inputs are caught before truncation.
func (p *PublishPacket) remainingLength() uint64 {
	size := uint64(2+len(p.Topic)) + uint64(len(p.Payload))
	if p.QoS.hasPacketID() {
		size += 2
	}
	return size
}

// Validate validates the packet contents.
func (p *PublishPacket) Validate() error {
	if !p.QoS.Valid() {
		return ErrInvalidQoS
	}
	if err := checkStringLength(p.Topic); err != nil {
		return err
	}
	if p.remainingLength() > maxRemainingLength {
		return ErrRemainingLengthTooLarge
	}
	return nil
}

// Size returns the total encoded size of the packet.
func (p *PublishPacket) Size() int {
	rl := uint32(p.remainingLength())
	return 1 + remainingLengthSize(rl) + int(rl)
}

// AppendTo appends the encoded packet to dst.
func (p *PublishPacket) AppendTo(dst []byte) ([]byte, error) {
	if err := p.Validate(); err != nil {
		return dst, err
	}

	header := FixedHeader{
		PacketType:      PacketPUBLISH,
		Flags:           p.flags(),
		RemainingLength: uint32(p.remainingLength()),
	}

	dst, err := header.appendTo(dst)
	if err != nil {
		return dst, err
	}

	// Variable header
	dst = appendString(dst, p.Topic)
	if p.QoS.hasPacketID() {
		dst = binary.BigEndian.AppendUint16(dst, p.PacketID)
	}

	// Payload
	return append(dst, p.Payload...), nil
}

// Encode writes the packet to the writer.
// Returns the number of bytes written.
func (p *PublishPacket) Encode(w io.Writer) (int, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	buf, err := p.AppendTo(make([]byte, 0, p.Size()))
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// EncodePublish returns the PUBLISH packet bytes. packetID is ignored when
// qos is AtMostOnce.
func EncodePublish(topic string, payload []byte, retain bool, qos QoS, packetID uint16) ([]byte, error) {
	p := PublishPacket{
		Topic:    topic,
		Payload:  payload,
		QoS:      qos,
		Retain:   retain,
		PacketID: packetID,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p.AppendTo(make([]byte, 0, p.Size()))
}
