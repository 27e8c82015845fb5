package domain

import "fmt"

// Version is the protocol version tuple exchanged during hello.
// Negotiation requires exact equality, there is no compatibility range.
type Version [3]int

// CurrentVersion is the version this server speaks.
var CurrentVersion = Version{0, 6, 0}

func (v Version) Equal(other Version) bool {
	return v == other
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v[0], v[1], v[2])
}
