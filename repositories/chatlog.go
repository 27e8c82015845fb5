package repositories

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"meddle/domain"
)

// ChatLog keeps the per-channel append-only message history in memory and
// mirrors every entry into one text file per channel. The file is the only
// durable artifact of the relay and acts as a backstop for data that
// otherwise lives only in memory, so every write is flushed before Append
// returns.
type ChatLog struct {
	log     *slog.Logger
	dir     string
	entries map[string][]domain.LogEntry
	now     func() time.Time
}

func NewChatLog(dir string, log *slog.Logger) *ChatLog {
	return &ChatLog{
		log:     log,
		dir:     dir,
		entries: make(map[string][]domain.LogEntry),
		now:     time.Now,
	}
}

// Append records a delivered message in publish order. The in-memory entry
// keeps the reserved first field empty; the file line carries the full
// "<timestamp>: <channel>: <sender>: <text>" trace.
func (l *ChatLog) Append(channel, sender, text string) error {
	l.entries[channel] = append(l.entries[channel], domain.LogEntry{
		Sender: sender,
		Text:   text,
	})

	line := fmt.Sprintf("%s: %s: %s: %s\n", timestamp(l.now()), channel, sender, text)
	if err := l.appendLine(channel, line); err != nil {
		return fmt.Errorf("channel log write: %w", err)
	}
	return nil
}

// Entries returns a copy of the channel's history, empty (never nil, it
// must encode as a JSON array) for unknown channels. Prior entries are never
// mutated.
func (l *ChatLog) Entries(channel string) []domain.LogEntry {
	return append([]domain.LogEntry{}, l.entries[channel]...)
}

func (l *ChatLog) appendLine(channel, line string) error {
	path := filepath.Join(l.dir, fmt.Sprintf("_%s.log", channel))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	if _, err = f.WriteString(line); err != nil {
		_ = f.Close()
		return err
	}
	// Closing per message keeps the file consistent even if the process dies
	// between publishes.
	return f.Close()
}

// timestamp renders wall-clock time as a compact sortable string with
// microsecond precision, e.g. 20260829153004123456.
func timestamp(t time.Time) string {
	return t.Format("20060102150405") + fmt.Sprintf("%06d", t.Nanosecond()/1000)
}
