// Package client is the REQ side of the control protocol, used by the probe
// CLI and by integration tooling.
package client

import (
	"encoding/json"
	"fmt"
	"log/slog"

	zmq "github.com/pebbe/zmq4"

	"meddle/domain"
	"meddle/errors"
	"meddle/protocol"
	"meddle/registry"
)

// Client wraps one REQ socket. The transport enforces strict send-then-recv
// pairing, so a Client must not be shared between goroutines.
type Client struct {
	log    *slog.Logger
	socket *zmq.Socket
}

func Dial(addr string, log *slog.Logger) (*Client, error) {
	socket, err := zmq.NewSocket(zmq.REQ)
	if err != nil {
		return nil, fmt.Errorf("creating REQ socket: %w", err)
	}
	_ = socket.SetLinger(0)
	if err := socket.Connect(addr); err != nil {
		_ = socket.Close()
		return nil, fmt.Errorf("connecting to %s: %w", addr, err)
	}
	return &Client{log: log, socket: socket}, nil
}

func (c *Client) Close() {
	_ = c.socket.Close()
}

// Hello negotiates the protocol version and registers (or re-resolves) the
// identity behind name.
func (c *Client) Hello(name string, version domain.Version) (protocol.HelloAccepted, error) {
	payload, err := json.Marshal(protocol.HelloRequest{Name: name, Version: version})
	if err != nil {
		return protocol.HelloAccepted{}, err
	}
	reply, err := c.request("hello", string(payload))
	if err != nil {
		return protocol.HelloAccepted{}, err
	}

	var accepted protocol.HelloAccepted
	if err := json.Unmarshal([]byte(reply), &accepted); err != nil {
		return protocol.HelloAccepted{}, fmt.Errorf("%w: hello reply %q", errors.ErrProtocolViolation, reply)
	}
	if !accepted.Accepted {
		return protocol.HelloAccepted{}, fmt.Errorf("%w: server speaks %v", errors.ErrVersionMismatch, accepted.Version)
	}
	return accepted, nil
}

// CreateChannel asks the server for a fresh channel and invites the given
// known users. The generated channel token is returned.
func (c *Client) CreateChannel(sender domain.UserID, invitees []string) (string, error) {
	if invitees == nil {
		invitees = []string{}
	}
	payload, err := json.Marshal(invitees)
	if err != nil {
		return "", err
	}
	reply, err := c.request("create_channel", fmt.Sprintf("%d", sender), string(payload))
	if err != nil {
		return "", err
	}
	if reply == "nok" {
		return "", fmt.Errorf("create_channel refused: %w", errors.ErrUnknownSender)
	}
	return reply, nil
}

func (c *Client) Channels() (map[string][]string, error) {
	reply, err := c.request("get_channels")
	if err != nil {
		return nil, err
	}
	var channels map[string][]string
	if err := json.Unmarshal([]byte(reply), &channels); err != nil {
		return nil, fmt.Errorf("%w: channel list %q", errors.ErrProtocolViolation, reply)
	}
	return channels, nil
}

func (c *Client) Users() ([]string, error) {
	reply, err := c.request("get_users")
	if err != nil {
		return nil, err
	}
	var users []string
	if err := json.Unmarshal([]byte(reply), &users); err != nil {
		return nil, fmt.Errorf("%w: user list %q", errors.ErrProtocolViolation, reply)
	}
	return users, nil
}

func (c *Client) ActiveTags() (map[string][]registry.Occurrence, error) {
	reply, err := c.request("get_active_tags")
	if err != nil {
		return nil, err
	}
	var tags map[string][]registry.Occurrence
	if err := json.Unmarshal([]byte(reply), &tags); err != nil {
		return nil, fmt.Errorf("%w: tag index %q", errors.ErrProtocolViolation, reply)
	}
	return tags, nil
}

func (c *Client) Log(channel string) ([]domain.LogEntry, error) {
	reply, err := c.request("get_log", channel)
	if err != nil {
		return nil, err
	}
	var entries []domain.LogEntry
	if err := json.Unmarshal([]byte(reply), &entries); err != nil {
		return nil, fmt.Errorf("%w: log %q", errors.ErrProtocolViolation, reply)
	}
	return entries, nil
}

// Ping refreshes the sender's heartbeat. A nok reply means the server
// already evicted this id; the caller should say hello again.
func (c *Client) Ping(sender domain.UserID) error {
	reply, err := c.request("ping", fmt.Sprintf("%d", sender))
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("ping refused: %w", errors.ErrUnknownSender)
	}
	return nil
}

func (c *Client) Publish(sender domain.UserID, channel, text string) error {
	reply, err := c.request("publish", fmt.Sprintf("%d", sender), channel, text)
	if err != nil {
		return err
	}
	if reply != "ok" {
		return fmt.Errorf("publish to %q refused", channel)
	}
	return nil
}

func (c *Client) request(frames ...string) (string, error) {
	parts := make([]interface{}, len(frames))
	for i, frame := range frames {
		parts[i] = frame
	}
	if _, err := c.socket.SendMessage(parts...); err != nil {
		return "", fmt.Errorf("sending %s: %w", frames[0], err)
	}

	reply, err := c.socket.RecvMessage(0)
	if err != nil {
		return "", fmt.Errorf("receiving %s reply: %w", frames[0], err)
	}
	if len(reply) == 0 {
		return "", fmt.Errorf("%w: empty reply to %s", errors.ErrProtocolViolation, frames[0])
	}
	c.log.Debug("Control round trip", "command", frames[0], "reply_frames", len(reply))
	return reply[0], nil
}
