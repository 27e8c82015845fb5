package domain

import (
	"encoding/json"
	"fmt"
)

// LogEntry is one delivered message in a channel's append-only history.
// The first field is reserved and always empty today; it stays on the wire
// so existing consumers keep decoding three-element tuples.
type LogEntry struct {
	Reserved string
	Sender   string
	Text     string
}

// MarshalJSON keeps the historical tuple shape ["", sender, text].
func (e LogEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]string{e.Reserved, e.Sender, e.Text})
}

func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var tuple [3]string
	if err := json.Unmarshal(data, &tuple); err != nil {
		return fmt.Errorf("log entry must be a 3-element tuple: %w", err)
	}
	e.Reserved, e.Sender, e.Text = tuple[0], tuple[1], tuple[2]
	return nil
}
