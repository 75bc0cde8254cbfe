package mqttpub

import (
	"bytes"
	"io"
	"testing"

	"github.com/eclipse/paho.mqtt.golang/packets"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadConnack(t *testing.T) {
	tests := []struct {
		name        string
		input       []byte
		wantCode    ReturnCode
		wantSession bool
		wantErr     error
		wantPacket  bool
	}{
		{
			name:       "accepted",
			input:      []byte{0x20, 0x02, 0x00, 0x00},
			wantPacket: true,
		},
		{
			name:        "accepted session present",
			input:       []byte{0x20, 0x02, 0x01, 0x00},
			wantSession: true,
			wantPacket:  true,
		},
		{
			name:       "unacceptable protocol version",
			input:      []byte{0x20, 0x02, 0x00, 0x01},
			wantCode:   ReturnUnacceptableProtocolVersion,
			wantErr:    ErrProtocol,
			wantPacket: true,
		},
		{
			name:       "not authorized",
			input:      []byte{0x20, 0x02, 0x00, 0x05},
			wantCode:   ReturnNotAuthorized,
			wantErr:    ErrProtocol,
			wantPacket: true,
		},
		{
			name:    "wrong packet type",
			input:   []byte{0x30, 0x02, 0x00, 0x00},
			wantErr: ErrProtocol,
		},
		{
			name:    "wrong remaining length",
			input:   []byte{0x20, 0x03, 0x00, 0x00},
			wantErr: ErrProtocol,
		},
		{
			name:    "short read",
			input:   []byte{0x20, 0x02},
			wantErr: io.ErrUnexpectedEOF,
		},
		{
			name:    "no data",
			input:   nil,
			wantErr: io.EOF,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := ReadConnack(bytes.NewReader(tt.input))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}

			if !tt.wantPacket {
				assert.Nil(t, p)
				return
			}

			require.NotNil(t, p)
			assert.Equal(t, tt.wantCode, p.ReturnCode)
			assert.Equal(t, tt.wantSession, p.SessionPresent)
		})
	}
}

func TestReadConnackProtocolErrorCarriesReturnCode(t *testing.T) {
	_, err := ReadConnack(bytes.NewReader([]byte{0x20, 0x02, 0x00, 0x02}))

	var protoErr *ProtocolError
	require.ErrorAs(t, err, &protoErr)
	assert.Equal(t, ReturnIdentifierRejected, protoErr.ReturnCode)
	assert.Contains(t, protoErr.Error(), "identifier rejected")
}

func TestReadConnackReadsExactlyFourBytes(t *testing.T) {
	r := bytes.NewReader([]byte{0x20, 0x02, 0x00, 0x00, 0xD0, 0x00})

	_, err := ReadConnack(r)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())
}

func TestConnackPacketEncode(t *testing.T) {
	p := &ConnackPacket{SessionPresent: true, ReturnCode: ReturnServerUnavailable}
	assert.Equal(t, PacketCONNACK, p.Type())

	var buf bytes.Buffer
	_, err := p.Encode(&buf)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x20, 0x02, 0x01, 0x03}, buf.Bytes())
}

func TestReadConnackFromPaho(t *testing.T) {
	ca := packets.NewControlPacket(packets.Connack).(*packets.ConnackPacket)
	ca.ReturnCode = packets.Accepted

	var buf bytes.Buffer
	require.NoError(t, ca.Write(&buf))

	p, err := ReadConnack(&buf)
	require.NoError(t, err)
	assert.True(t, p.ReturnCode.Accepted())
}
