// Package broadcast owns the fan-out topic grammar and the publishing side
// of the relay. Subscribers filter on topic prefixes, so the leading frame
// of every message must stay stable across versions.
package broadcast

import (
	"fmt"
	"log/slog"

	"meddle/domain"
)

// Fixed topics carrying a JSON payload frame.
const (
	TopicUserUpdate     = "user_update"
	TopicChannelsUpdate = "channels_update"
	TopicTagsUpdate     = "tags_update"
)

// TagTopic is the per-tag activity topic, e.g. "tag#meddle".
func TagTopic(tag string) string {
	return "tag" + tag
}

// NotifyTopic is the directed per-user topic, e.g. "notify3".
func NotifyTopic(id domain.UserID) string {
	return fmt.Sprintf("notify%d", id)
}

// MessageTopic is the per-message delivery topic: the channel name
// concatenated with the message text. Conflating topic and payload this way
// is questionable but is what subscribers filter on today, so it stays.
func MessageTopic(channel, text string) string {
	return channel + text
}

// JoinChannel is the directed event emitted to each invitee of a new channel.
const JoinChannel = "join_channel"

type sender interface {
	SendMessage(parts ...interface{}) (int, error)
}

// Publisher writes multi-part fan-out messages to the PUB socket: topic
// frame first, payload frames after. It is used only from the control loop,
// matching the socket's single-writer requirement.
type Publisher struct {
	log    *slog.Logger
	socket sender
}

func NewPublisher(socket sender, log *slog.Logger) *Publisher {
	return &Publisher{log: log, socket: socket}
}

// Send emits one broadcast. Errors are returned for logging only; a failed
// broadcast is never retried and never fails the request that caused it.
func (p *Publisher) Send(topic string, payload ...string) error {
	parts := make([]interface{}, 0, len(payload)+1)
	parts = append(parts, topic)
	for _, frame := range payload {
		parts = append(parts, frame)
	}

	if _, err := p.socket.SendMessage(parts...); err != nil {
		return fmt.Errorf("broadcast %q: %w", topic, err)
	}
	p.log.Debug("Broadcast sent", "topic", topic, "frames", len(payload))
	return nil
}
