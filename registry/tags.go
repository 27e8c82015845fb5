package registry

import (
	"log/slog"
	"time"

	"meddle/domain"
)

// Occurrence is one sighting of a tag: when, in which channel, by whom.
type Occurrence struct {
	At      int64         `json:"at"`
	Channel string        `json:"channel"`
	User    domain.UserID `json:"user"`
}

// Tags is the global hashtag index. Occurrence lists are strictly
// append-only and unbounded; eviction is deliberately out of scope.
type Tags struct {
	log   *slog.Logger
	index map[string][]Occurrence
	now   func() time.Time
}

func NewTags(log *slog.Logger) *Tags {
	return &Tags{
		log:   log,
		index: make(map[string][]Occurrence),
		now:   time.Now,
	}
}

// Record appends an occurrence to the tag's list and reports whether the tag
// was seen for the first time ever.
func (t *Tags) Record(tag, channel string, user domain.UserID) bool {
	occurrences, known := t.index[tag]
	t.index[tag] = append(occurrences, Occurrence{
		At:      t.now().UnixNano(),
		Channel: channel,
		User:    user,
	})
	if !known {
		t.log.Info("New tag seen", "tag", tag, "channel", channel)
	}
	return !known
}

// Snapshot copies the full index for queries and broadcasts.
func (t *Tags) Snapshot() map[string][]Occurrence {
	snapshot := make(map[string][]Occurrence, len(t.index))
	for tag, occurrences := range t.index {
		snapshot[tag] = append([]Occurrence(nil), occurrences...)
	}
	return snapshot
}
