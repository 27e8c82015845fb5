package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meddle/domain"
	"meddle/errors"
)

func TestParseRequest_Publish(t *testing.T) {
	req := require.New(t)

	parsed, err := ParseRequest([]string{"publish", "3", "ABC123XYZ0", "hi #meddle"})

	req.NoError(err)
	req.Equal(CmdPublish, parsed.Command)
	req.Equal(domain.UserID(3), parsed.Sender)
	req.Equal("ABC123XYZ0", parsed.Channel)
	req.Equal("hi #meddle", parsed.Text)
}

func TestParseRequest_HelloTrimsName(t *testing.T) {
	req := require.New(t)

	parsed, err := ParseRequest([]string{"hello", `{"name":"  alice\n","version":[0,6,0]}`})

	req.NoError(err)
	req.Equal("alice", parsed.Hello.Name)
	req.Equal(domain.Version{0, 6, 0}, parsed.Hello.Version)
}

func TestParseRequest_CreateChannel(t *testing.T) {
	req := require.New(t)

	parsed, err := ParseRequest([]string{"create_channel", "0", `["bob","carol"]`})

	req.NoError(err)
	req.Equal(CmdCreateChannel, parsed.Command)
	req.Equal(domain.UserID(0), parsed.Sender)
	req.Equal([]string{"bob", "carol"}, parsed.Invitees)
}

func TestParseRequest_Violations(t *testing.T) {
	tests := []struct {
		name   string
		frames []string
	}{
		{name: "empty request", frames: nil},
		{name: "unknown command", frames: []string{"shutdown"}},
		{name: "hello without payload", frames: []string{"hello"}},
		{name: "hello with broken json", frames: []string{"hello", "{"}},
		{name: "create_channel with non-numeric sender", frames: []string{"create_channel", "alice", "[]"}},
		{name: "create_channel with broken invitee list", frames: []string{"create_channel", "0", "bob"}},
		{name: "get_log without channel", frames: []string{"get_log"}},
		{name: "ping with extra frame", frames: []string{"ping", "0", "0"}},
		{name: "publish with missing text", frames: []string{"publish", "0", "ABC"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseRequest(tt.frames)
			require.ErrorIs(t, err, errors.ErrProtocolViolation)
		})
	}
}
