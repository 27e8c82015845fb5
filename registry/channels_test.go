package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meddle/errors"
)

func TestChannels_AddParticipant_ReportsMembershipChange(t *testing.T) {
	req := require.New(t)
	channels := NewChannels()
	channels.Create("ABC123XYZ0")

	changed, err := channels.AddParticipant("ABC123XYZ0", "alice")
	req.NoError(err)
	req.True(changed)

	// Joining twice does not duplicate the membership
	changed, err = channels.AddParticipant("ABC123XYZ0", "alice")
	req.NoError(err)
	req.False(changed)
	req.Equal(map[string][]string{"ABC123XYZ0": {"alice"}}, channels.Snapshot())
}

func TestChannels_AddParticipant_UnknownChannel(t *testing.T) {
	channels := NewChannels()

	_, err := channels.AddParticipant("NOWHERE", "alice")

	require.ErrorIs(t, err, errors.ErrUnknownChannel)
}

func TestChannels_Create_CollisionReplacesChannel(t *testing.T) {
	req := require.New(t)
	channels := NewChannels()

	// The token generator performs no uniqueness check, so a second create
	// under the same name silently starts over with an empty membership.
	channels.Create("SAME")
	_, err := channels.AddParticipant("SAME", "alice")
	req.NoError(err)

	channels.Create("SAME")

	req.Equal(map[string][]string{"SAME": {}}, channels.Snapshot())
}

func TestChannels_Snapshot_EmptyRegistry(t *testing.T) {
	require.Empty(t, NewChannels().Snapshot())
}
