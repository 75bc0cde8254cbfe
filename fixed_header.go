package mqttpub

import (
	"errors"
	"io"
)

// PacketType represents an MQTT control packet type.
type PacketType byte

// MQTT 3.1.1 control packet types.
const (
	PacketCONNECT     PacketType = 1
	PacketCONNACK     PacketType = 2
	PacketPUBLISH     PacketType = 3
	PacketPUBACK      PacketType = 4
	PacketPUBREC      PacketType = 5
	PacketPUBREL      PacketType = 6
	PacketPUBCOMP     PacketType = 7
	PacketSUBSCRIBE   PacketType = 8
	PacketSUBACK      PacketType = 9
	PacketUNSUBSCRIBE PacketType = 10
	PacketUNSUBACK    PacketType = 11
	PacketPINGREQ     PacketType = 12
	PacketPINGRESP    PacketType = 13
	PacketDISCONNECT  PacketType = 14
)

// String returns the string representation of the packet type.
func (p PacketType) String() string {
	switch p {
	case PacketCONNECT:
		return "CONNECT"
	case PacketCONNACK:
		return "CONNACK"
	case PacketPUBLISH:
		return "PUBLISH"
	case PacketPUBACK:
		return "PUBACK"
	case PacketPUBREC:
		return "PUBREC"
	case PacketPUBREL:
		return "PUBREL"
	case PacketPUBCOMP:
		return "PUBCOMP"
	case PacketSUBSCRIBE:
		return "SUBSCRIBE"
	case PacketSUBACK:
		return "SUBACK"
	case PacketUNSUBSCRIBE:
		return "UNSUBSCRIBE"
	case PacketUNSUBACK:
		return "UNSUBACK"
	case PacketPINGREQ:
		return "PINGREQ"
	case PacketPINGRESP:
		return "PINGRESP"
	case PacketDISCONNECT:
		return "DISCONNECT"
	default:
		return "UNKNOWN"
	}
}

// Valid returns true if the packet type is valid.
func (p PacketType) Valid() bool {
	return p >= PacketCONNECT && p <= PacketDISCONNECT
}

// Fixed header errors.
var (
	ErrInvalidPacketType = errors.New("invalid packet type")
)

// FixedHeader represents the fixed header of an MQTT control packet.
type FixedHeader struct {
	PacketType      PacketType
	Flags           byte
	RemainingLength uint32
}

// appendTo appends the encoded header to dst.
func (h *FixedHeader) appendTo(dst []byte) ([]byte, error) {
	if !h.PacketType.Valid() {
		return dst, ErrInvalidPacketType
	}
	if h.RemainingLength > maxRemainingLength {
		return dst, ErrRemainingLengthTooLarge
	}

	// First byte: packet type (4 bits) | flags (4 bits)
	dst = append(dst, byte(h.PacketType)<<4|(h.Flags&0x0F))
	return appendRemainingLength(dst, h.RemainingLength), nil
}

// Encode writes the fixed header to the writer.
// Returns the number of bytes written.
func (h *FixedHeader) Encode(w io.Writer) (int, error) {
	buf, err := h.appendTo(make([]byte, 0, h.Size()))
	if err != nil {
		return 0, err
	}
	return w.Write(buf)
}

// Decode reads the fixed header from the reader.
// Returns the number of bytes read.
//
// The client never decodes inbound packets this way: CONNACK goes through
// ReadConnack and everything else is drained unparsed. Decode serves broker
// fakes and tools that need to frame the client's output.
func (h *FixedHeader) Decode(r io.Reader) (int, error) {
	br, ok := r.(io.ByteReader)
	if !ok {
		br = &singleByteReader{r: r}
	}

	first, err := br.ReadByte()
	if err != nil {
		return 0, err
	}

	h.PacketType = PacketType(first >> 4)
	h.Flags = first & 0x0F

	if !h.PacketType.Valid() {
		return 1, ErrInvalidPacketType
	}

	length, n, err := DecodeRemainingLength(br)
	if err != nil {
		return 1 + n, err
	}

	h.RemainingLength = length
	return 1 + n, nil
}

// Size returns the encoded size of the fixed header in bytes.
func (h *FixedHeader) Size() int {
	return 1 + remainingLengthSize(h.RemainingLength)
}

// QoS returns the QoS level from PUBLISH packet flags. Used when inspecting
// encoded packets, not on the client's read path.
func (h *FixedHeader) QoS() QoS {
	return QoS((h.Flags >> 1) & 0x03)
}

// Retain returns the RETAIN flag from PUBLISH packet flags. Used when
// inspecting encoded packets, not on the client's read path.
func (h *FixedHeader) Retain() bool {
	return h.Flags&0x01 != 0
}

// singleByteReader adapts an io.Reader for Decode without reading past the
// bytes it returns.
type singleByteReader struct {
	r   io.Reader
	buf [1]byte
}

func (s *singleByteReader) ReadByte() (byte, error) {
	if _, err := io.ReadFull(s.r, s.buf[:]); err != nil {
		return 0, err
	}
	return s.buf[0], nil
}
