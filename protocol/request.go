// Package protocol implements the request/reply control surface of the
// relay: the closed set of commands, frame parsing, and the dispatcher.
package protocol

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"meddle/domain"
	"meddle/errors"
)

// Command is the closed set of control requests. Adding a command means
// extending the parser and the dispatcher; there is no dynamic dispatch on
// request strings beyond this table.
type Command int

const (
	CmdHello Command = iota
	CmdCreateChannel
	CmdGetChannels
	CmdGetUsers
	CmdGetActiveTags
	CmdGetLog
	CmdPing
	CmdPublish
)

var commandNames = map[string]Command{
	"hello":           CmdHello,
	"create_channel":  CmdCreateChannel,
	"get_channels":    CmdGetChannels,
	"get_users":       CmdGetUsers,
	"get_active_tags": CmdGetActiveTags,
	"get_log":         CmdGetLog,
	"ping":            CmdPing,
	"publish":         CmdPublish,
}

func (c Command) String() string {
	for name, cmd := range commandNames {
		if cmd == c {
			return name
		}
	}
	return fmt.Sprintf("Command(%d)", int(c))
}

// HelloRequest is the JSON payload frame of a hello command.
type HelloRequest struct {
	Name    string         `json:"name" validate:"required,min=1,max=64"`
	Version domain.Version `json:"version"`
}

// HelloAccepted is the reply to a hello whose version matched exactly.
type HelloAccepted struct {
	Accepted bool           `json:"accepted"`
	ID       domain.UserID  `json:"id"`
	Version  domain.Version `json:"version"`
	SubPort  int            `json:"sub_port"`
}

// HelloRejected is the reply to a version mismatch. No identity is created.
type HelloRejected struct {
	Accepted bool           `json:"accepted"`
	Version  domain.Version `json:"version"`
}

// Request is the tagged variant produced by ParseRequest. Only the fields
// of the tagged command are populated.
type Request struct {
	Command  Command
	Hello    HelloRequest
	Sender   domain.UserID
	Channel  string
	Text     string
	Invitees []string
}

// ParseRequest turns raw control frames into a typed request. Frame 0 is the
// command name; every shape problem (unknown command, wrong frame count,
// non-numeric sender id, bad JSON) is a protocol violation.
func ParseRequest(frames []string) (Request, error) {
	if len(frames) == 0 {
		return Request{}, fmt.Errorf("%w: empty request", errors.ErrProtocolViolation)
	}

	cmd, ok := commandNames[frames[0]]
	if !ok {
		return Request{}, fmt.Errorf("%w: unknown command %q", errors.ErrProtocolViolation, frames[0])
	}
	req := Request{Command: cmd}

	switch cmd {
	case CmdHello:
		if err := requireFrames(frames, 2); err != nil {
			return Request{}, err
		}
		if err := json.Unmarshal([]byte(frames[1]), &req.Hello); err != nil {
			return Request{}, fmt.Errorf("%w: hello payload: %v", errors.ErrProtocolViolation, err)
		}
		req.Hello.Name = strings.TrimSpace(req.Hello.Name)

	case CmdCreateChannel:
		if err := requireFrames(frames, 3); err != nil {
			return Request{}, err
		}
		sender, err := parseSender(frames[1])
		if err != nil {
			return Request{}, err
		}
		req.Sender = sender
		if err := json.Unmarshal([]byte(frames[2]), &req.Invitees); err != nil {
			return Request{}, fmt.Errorf("%w: invitee list: %v", errors.ErrProtocolViolation, err)
		}

	case CmdGetChannels, CmdGetUsers, CmdGetActiveTags:
		if err := requireFrames(frames, 1); err != nil {
			return Request{}, err
		}

	case CmdGetLog:
		if err := requireFrames(frames, 2); err != nil {
			return Request{}, err
		}
		req.Channel = frames[1]

	case CmdPing:
		if err := requireFrames(frames, 2); err != nil {
			return Request{}, err
		}
		sender, err := parseSender(frames[1])
		if err != nil {
			return Request{}, err
		}
		req.Sender = sender

	case CmdPublish:
		if err := requireFrames(frames, 4); err != nil {
			return Request{}, err
		}
		sender, err := parseSender(frames[1])
		if err != nil {
			return Request{}, err
		}
		req.Sender = sender
		req.Channel = frames[2]
		req.Text = frames[3]
	}

	return req, nil
}

func requireFrames(frames []string, want int) error {
	if len(frames) != want {
		return fmt.Errorf("%w: %s expects %d frames, got %d",
			errors.ErrProtocolViolation, frames[0], want, len(frames))
	}
	return nil
}

func parseSender(frame string) (domain.UserID, error) {
	id, err := strconv.Atoi(frame)
	if err != nil {
		return 0, fmt.Errorf("%w: sender id %q", errors.ErrProtocolViolation, frame)
	}
	return domain.UserID(id), nil
}
