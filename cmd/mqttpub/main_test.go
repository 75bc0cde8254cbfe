package main

import (
	"bytes"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vitalvas/mqttpub"
)

// startBroker accepts one client, answers its CONNECT and forwards every
// packet after it.
func startBroker(t *testing.T) (int, <-chan []byte) {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	t.Cleanup(func() { ln.Close() })

	received := make(chan []byte, 32)
	go func() {
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		if _, err := readPacket(conn); err != nil {
			return
		}
		if _, err := conn.Write([]byte{0x20, 0x02, 0x00, 0x00}); err != nil {
			return
		}
		for {
			pkt, err := readPacket(conn)
			if err != nil {
				return
			}
			received <- pkt
		}
	}()

	return ln.Addr().(*net.TCPAddr).Port, received
}

func readPacket(r io.Reader) ([]byte, error) {
	var header bytes.Buffer
	var h mqttpub.FixedHeader
	if _, err := h.Decode(io.TeeReader(r, &header)); err != nil {
		return nil, err
	}
	body := make([]byte, h.RemainingLength)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return append(header.Bytes(), body...), nil
}

func nextPacket(t *testing.T, ch <-chan []byte) []byte {
	t.Helper()

	select {
	case pkt := <-ch:
		return pkt
	case <-time.After(2 * time.Second):
		require.FailNow(t, "timed out waiting for packet")
		return nil
	}
}

func runCmd(args ...string) error {
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	return cmd.Execute()
}

func TestPublishCommand(t *testing.T) {
	port, received := startBroker(t)

	err := runCmd("publish",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"--id", "cli-test",
		"--topic", "some_topic",
		"--message", "my message",
		"--log-level", "error",
	)
	require.NoError(t, err)

	want, err := mqttpub.EncodePublish("some_topic", []byte("my message"), false, mqttpub.AtMostOnce, 0)
	require.NoError(t, err)
	assert.Equal(t, want, nextPacket(t, received))
	assert.Equal(t, mqttpub.EncodeDisconnect(), nextPacket(t, received))
}

func TestPublishCommandCount(t *testing.T) {
	port, received := startBroker(t)

	err := runCmd("publish",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"--topic", "t",
		"--qos", "1",
		"--count", "3",
		"--interval", "1ms",
		"--log-level", "error",
	)
	require.NoError(t, err)

	for i := range 3 {
		pkt := nextPacket(t, received)
		assert.Equal(t, byte(0x32), pkt[0])
		assert.Equal(t, []byte{0x00, byte(i)}, pkt[5:7])
	}
}

func TestPublishCommandValidation(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing topic", args: []string{"publish"}, want: "--topic"},
		{name: "wildcard topic", args: []string{"publish", "--topic", "a/#"}, want: "invalid topic name"},
		{name: "bad qos", args: []string{"publish", "--topic", "t", "--qos", "3"}, want: "--qos"},
		{name: "bad count", args: []string{"publish", "--topic", "t", "--count", "0"}, want: "--count"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCmd(append(tt.args, "--log-level", "error")...)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}

func TestEventsCommandStdin(t *testing.T) {
	port, received := startBroker(t)

	cmd := newRootCmd()
	cmd.SetArgs([]string{"events",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"--stdin",
		"--source", "com.lab126.powerd",
		"--log-level", "error",
	})
	cmd.SetIn(strings.NewReader("battLevelChanged 64\nunknownEvent\ngoingToScreenSaver\noutOfScreenSaver\n"))
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	require.NoError(t, cmd.Execute())

	battery, err := mqttpub.EncodePublish("KINDLE/BATTERY", []byte("64"), true, mqttpub.AtMostOnce, 0)
	require.NoError(t, err)
	screen, err := mqttpub.EncodePublish("KINDLE/SCREEN_STATE", []byte("OFF"), true, mqttpub.AtMostOnce, 0)
	require.NoError(t, err)
	screenOn, err := mqttpub.EncodePublish("KINDLE/SCREEN_STATE", []byte("ON"), true, mqttpub.AtMostOnce, 0)
	require.NoError(t, err)

	assert.Equal(t, battery, nextPacket(t, received))
	assert.Equal(t, screen, nextPacket(t, received))
	assert.Equal(t, screenOn, nextPacket(t, received))
	assert.Equal(t, mqttpub.EncodeDisconnect(), nextPacket(t, received))
}

func TestEventsCommandStdinNeedsOneSource(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"no source", []string{"events", "--stdin"}},
		{"two sources", []string{"events", "--stdin", "--source", "com.lab126.powerd", "--source", "com.lab126.wifid"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := runCmd(append(tt.args, "--log-level", "error")...)
			assert.ErrorContains(t, err, "--source")
		})
	}
}

func TestEventsCommandUnknownSource(t *testing.T) {
	port, received := startBroker(t)

	err := runCmd("events",
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(port),
		"--source", "com.lab126.unknown",
		"--log-level", "error",
	)
	assert.ErrorContains(t, err, "unknown event source")
	assert.Equal(t, mqttpub.EncodeDisconnect(), nextPacket(t, received))
}

func TestClientLogLevel(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.GlobalLevel())

	tests := []struct {
		level zerolog.Level
		want  mqttpub.LogLevel
	}{
		{zerolog.TraceLevel, mqttpub.LogLevelDebug},
		{zerolog.DebugLevel, mqttpub.LogLevelDebug},
		{zerolog.InfoLevel, mqttpub.LogLevelInfo},
		{zerolog.WarnLevel, mqttpub.LogLevelWarn},
		{zerolog.ErrorLevel, mqttpub.LogLevelError},
		{zerolog.Disabled, mqttpub.LogLevelNone},
	}

	for _, tt := range tests {
		t.Run(tt.level.String(), func(t *testing.T) {
			zerolog.SetGlobalLevel(tt.level)
			assert.Equal(t, tt.want, clientLogLevel())
		})
	}
}

func TestDefaultClientID(t *testing.T) {
	id := defaultClientID()
	assert.True(t, strings.HasPrefix(id, "mqttpub-"))
	assert.Len(t, id, len("mqttpub-")+8)
	assert.NotEqual(t, id, defaultClientID())
}
