// Package registry holds the relay's owned state: identities, channels and
// the tag index. All structures are mutated exclusively by the control loop,
// so none of them carries a lock.
package registry

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"meddle/domain"
	"meddle/errors"
)

// Users tracks every name ever registered and which ids are currently live.
// The name→id mapping is permanent; going offline only removes the live
// entry, never the association.
type Users struct {
	log    *slog.Logger
	nextID domain.UserID
	ids    map[string]domain.UserID
	online map[domain.UserID]*domain.User
	now    func() time.Time
}

func NewUsers(log *slog.Logger) *Users {
	return &Users{
		log:    log,
		ids:    make(map[string]domain.UserID),
		online: make(map[domain.UserID]*domain.User),
		now:    time.Now,
	}
}

// FindOrCreate resolves name to its permanent id, allocating the next
// sequential id on first-ever sighting. If the id has no live entry one is
// created and isNew reports true; a user saying hello while already online
// gets the existing entry back.
func (u *Users) FindOrCreate(name string) (isNew bool, id domain.UserID, user *domain.User) {
	id, ok := u.ids[name]
	if !ok {
		id = u.nextID
		u.nextID++
		u.ids[name] = id
	}

	user, ok = u.online[id]
	if !ok {
		user = &domain.User{ID: id, Name: name, LastHeartbeat: u.now()}
		u.online[id] = user
		isNew = true
	}
	return isNew, id, user
}

// NameOf resolves a live id to its name. The second result is false both for
// ids that were never assigned and for known users currently offline; either
// way the caller cannot act on behalf of this id.
func (u *Users) NameOf(id domain.UserID) (string, bool) {
	user, ok := u.online[id]
	if !ok {
		return "", false
	}
	return user.Name, true
}

// IDOf resolves a name to its permanent id regardless of liveness. It is
// used for inviting known users into a channel.
func (u *Users) IDOf(name string) (domain.UserID, error) {
	id, ok := u.ids[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", errors.ErrUnknownName, name)
	}
	return id, nil
}

// MarkOffline removes the live entry of each id. Idempotent per id.
func (u *Users) MarkOffline(ids []domain.UserID) {
	for _, id := range ids {
		delete(u.online, id)
	}
}

// OnlineNames snapshots the currently live users in lexical order.
func (u *Users) OnlineNames() []string {
	names := make([]string, 0, len(u.online))
	for _, user := range u.online {
		names = append(names, user.Name)
	}
	sort.Strings(names)
	return names
}

// Refresh updates the heartbeat timestamp of a live id. It reports false
// without side effects when the id is not live; the caller replies nok and
// the client is expected to re-register.
func (u *Users) Refresh(id domain.UserID) bool {
	user, ok := u.online[id]
	if !ok {
		return false
	}
	user.LastHeartbeat = u.now()
	return true
}

// FindDead returns the live ids whose last heartbeat is older than timeout.
// It does not mutate anything; the caller decides when to MarkOffline.
func (u *Users) FindDead(timeout time.Duration) []domain.UserID {
	now := u.now()
	var dead []domain.UserID
	for id, user := range u.online {
		if now.Sub(user.LastHeartbeat) > timeout {
			dead = append(dead, id)
		}
	}
	sort.Slice(dead, func(i, j int) bool { return dead[i] < dead[j] })
	if len(dead) > 0 {
		u.log.Info("Users timed out", "ids", dead)
	}
	return dead
}
