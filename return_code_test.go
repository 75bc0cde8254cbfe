package mqttpub

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReturnCodeString(t *testing.T) {
	tests := []struct {
		code ReturnCode
		want string
	}{
		{ReturnAccepted, "connection accepted"},
		{ReturnUnacceptableProtocolVersion, "unacceptable protocol version"},
		{ReturnIdentifierRejected, "identifier rejected"},
		{ReturnServerUnavailable, "server unavailable"},
		{ReturnBadUserNameOrPassword, "bad user name or password"},
		{ReturnNotAuthorized, "not authorized"},
		{ReturnCode(0x80), "unknown return code 0x80"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.String())
		})
	}
}

func TestReturnCodeAccepted(t *testing.T) {
	assert.True(t, ReturnAccepted.Accepted())
	for c := ReturnUnacceptableProtocolVersion; c <= ReturnNotAuthorized; c++ {
		assert.False(t, c.Accepted(), c.String())
	}
}
