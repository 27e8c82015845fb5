package registry

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"meddle/domain"
	"meddle/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestUsers_FindOrCreate_IdentityIsPermanent(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())

	// Given a first-ever sighting of a name
	isNew, id, _ := users.FindOrCreate("alice")
	req.True(isNew)
	req.Equal(domain.UserID(0), id)

	// When the same name says hello again while online
	// Then the same id comes back and the user is not new
	isNew, again, _ := users.FindOrCreate("alice")
	req.False(isNew)
	req.Equal(id, again)
}

func TestUsers_FindOrCreate_IdsAreMonotonicAndNeverReused(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())

	_, alice, _ := users.FindOrCreate("alice")
	_, bob, _ := users.FindOrCreate("bob")
	req.Equal(domain.UserID(0), alice)
	req.Equal(domain.UserID(1), bob)

	// When alice goes offline and comes back
	users.MarkOffline([]domain.UserID{alice})
	isNew, back, _ := users.FindOrCreate("alice")

	// Then she is live again under her permanent id
	req.True(isNew)
	req.Equal(alice, back)

	// And a brand-new name still gets the next id, not a recycled one
	_, carol, _ := users.FindOrCreate("carol")
	req.Equal(domain.UserID(2), carol)
}

func TestUsers_NameOf_DistinguishesOfflineFromLive(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())
	_, id, _ := users.FindOrCreate("alice")

	name, ok := users.NameOf(id)
	req.True(ok)
	req.Equal("alice", name)

	users.MarkOffline([]domain.UserID{id})

	// A known but offline id cannot be acted upon
	_, ok = users.NameOf(id)
	req.False(ok)

	// The permanent mapping survives
	resolved, err := users.IDOf("alice")
	req.NoError(err)
	req.Equal(id, resolved)
}

func TestUsers_IDOf_UnknownName(t *testing.T) {
	users := NewUsers(testLogger())

	_, err := users.IDOf("nobody")

	require.ErrorIs(t, err, errors.ErrUnknownName)
}

func TestUsers_Refresh_IsANoOpForOfflineIds(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())
	_, id, _ := users.FindOrCreate("alice")

	req.True(users.Refresh(id))

	users.MarkOffline([]domain.UserID{id})
	req.False(users.Refresh(id))
}

func TestUsers_FindDead_EvictsStaleHeartbeats(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())
	_, alice, aliceUser := users.FindOrCreate("alice")
	_, _, bobUser := users.FindOrCreate("bob")

	// Given alice missed her heartbeats while bob stayed fresh
	aliceUser.LastHeartbeat = time.Now().Add(-10 * time.Second)
	bobUser.LastHeartbeat = time.Now()

	dead := users.FindDead(5 * time.Second)
	req.Equal([]domain.UserID{alice}, dead)

	// When the sweep marks her offline
	users.MarkOffline(dead)

	// Then she is gone from the presence list and from the next sweep
	req.Equal([]string{"bob"}, users.OnlineNames())
	req.Empty(users.FindDead(5 * time.Second))
}

func TestUsers_MarkOffline_IsIdempotent(t *testing.T) {
	req := require.New(t)
	users := NewUsers(testLogger())
	_, id, _ := users.FindOrCreate("alice")

	users.MarkOffline([]domain.UserID{id})
	users.MarkOffline([]domain.UserID{id})

	req.Empty(users.OnlineNames())
}

func TestUsers_OnlineNames_AreSorted(t *testing.T) {
	users := NewUsers(testLogger())
	users.FindOrCreate("carol")
	users.FindOrCreate("alice")
	users.FindOrCreate("bob")

	require.Equal(t, []string{"alice", "bob", "carol"}, users.OnlineNames())
}
