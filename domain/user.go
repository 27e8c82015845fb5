// Package domain contains core concepts of the messaging relay.
// This file defines User entities and related invariants.
// No runtime, network, or UI logic should be added here.
package domain

import "time"

type UserID int

// User is one registered identity. The name→id association is permanent:
// an id is never reassigned or reused, even after the user goes offline.
type User struct {
	ID            UserID
	Name          string
	LastHeartbeat time.Time
}
