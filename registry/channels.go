package registry

import (
	"fmt"

	"github.com/samber/lo"

	"meddle/domain"
	"meddle/errors"
)

// Channels is the set of named channels. Channels are created explicitly and
// never deleted. Token generation performs no collision check, so inserting
// an existing name replaces the prior channel; tests must not treat
// collision-freedom as load-bearing.
type Channels struct {
	channels map[string]*domain.Channel
}

func NewChannels() *Channels {
	return &Channels{channels: make(map[string]*domain.Channel)}
}

// Create inserts an empty channel under name. The caller generates the name
// and is responsible for seeding the creator as first participant.
func (c *Channels) Create(name string) *domain.Channel {
	channel := domain.NewChannel(name)
	c.channels[name] = channel
	return channel
}

func (c *Channels) Get(name string) (*domain.Channel, bool) {
	channel, ok := c.channels[name]
	return channel, ok
}

// AddParticipant reports whether the membership changed so the caller can
// decide whether a channel-list broadcast is due.
func (c *Channels) AddParticipant(channel, name string) (bool, error) {
	ch, ok := c.channels[channel]
	if !ok {
		return false, fmt.Errorf("%w: %q", errors.ErrUnknownChannel, channel)
	}
	return ch.AddParticipant(name), nil
}

// Snapshot maps every channel name to its participants in lexical order.
func (c *Channels) Snapshot() map[string][]string {
	return lo.MapValues(c.channels, func(ch *domain.Channel, _ string) []string {
		return ch.Participants()
	})
}
