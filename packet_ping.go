package mqttpub

import "io"

// PingreqPacket represents an MQTT 3.1.1 PINGREQ packet.
// MQTT 3.1.1: Section 3.12
type PingreqPacket struct{}

// Type returns the packet type.
func (p *PingreqPacket) Type() PacketType { return PacketPINGREQ }

// AppendTo appends the encoded packet to dst.
func (p *PingreqPacket) AppendTo(dst []byte) []byte {
	return append(dst, byte(PacketPINGREQ)<<4, 0x00)
}

// Encode writes the packet to the writer.
func (p *PingreqPacket) Encode(w io.Writer) (int, error) {
	return w.Write(p.AppendTo(nil))
}

// EncodePingreq returns the two PINGREQ bytes.
func EncodePingreq() []byte {
	var p PingreqPacket
	return p.AppendTo(make([]byte, 0, 2))
}
