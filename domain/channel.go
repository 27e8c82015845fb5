package domain

import "sort"

// Channel is a named group mailbox with an open participant set.
// Participation is implicit: a user joins the first time they publish into
// the channel. The set only grows, there is no leave operation.
type Channel struct {
	Name         string
	participants map[string]struct{}
}

func NewChannel(name string) *Channel {
	return &Channel{
		Name:         name,
		participants: make(map[string]struct{}),
	}
}

// AddParticipant reports whether the membership actually changed, so the
// caller can decide whether a channel-list broadcast is due.
func (c *Channel) AddParticipant(name string) bool {
	if _, ok := c.participants[name]; ok {
		return false
	}
	c.participants[name] = struct{}{}
	return true
}

// Participants returns the current members in lexical order.
func (c *Channel) Participants() []string {
	names := make([]string, 0, len(c.participants))
	for name := range c.participants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
