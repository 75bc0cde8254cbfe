package mqttpub

import "io"

// DisconnectPacket represents an MQTT 3.1.1 DISCONNECT packet.
// It has no variable header and no payload.
type DisconnectPacket struct{}

// Type returns the packet type.
func (p *DisconnectPacket) Type() PacketType {
	return PacketDISCONNECT
}

// AppendTo appends the encoded packet to dst.
func (p *DisconnectPacket) AppendTo(dst []byte) []byte {
	return append(dst, byte(PacketDISCONNECT)<<4, 0x00)
}

// Encode writes the packet to the writer.
// Returns the number of bytes written.
func (p *DisconnectPacket) Encode(w io.Writer) (int, error) {
	return w.Write(p.AppendTo(nil))
}

// EncodeDisconnect returns the two DISCONNECT bytes.
func EncodeDisconnect() []byte {
	var p DisconnectPacket
	return p.AppendTo(make([]byte, 0, 2))
}
