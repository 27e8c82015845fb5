package contract

import (
	"context"

	"meddle/domain"
)

// Worker doesn't protect itself
// Can be silly, focused
type Worker interface {
	Run(ctx context.Context) error
}

// Publisher emits one fan-out message: a filterable topic frame followed by
// payload frames. Broadcasting is fire-and-forget; there is no acknowledgment,
// no retry, and no delivery guarantee to any particular subscriber.
type Publisher interface {
	Send(topic string, payload ...string) error
}

// IChatLog is the per-channel append-only message history.
type IChatLog interface {
	Append(channel, sender, text string) error
	Entries(channel string) []domain.LogEntry
}
