package registry

import (
	"testing"

	"github.com/stretchr/testify/require"

	"meddle/domain"
)

func TestTags_Record_FlagsFirstSighting(t *testing.T) {
	req := require.New(t)
	tags := NewTags(testLogger())

	// The first-ever sighting of a tag is flagged
	req.True(tags.Record("#meddle", "ABC", domain.UserID(0)))

	// Later sightings are not, regardless of channel or user
	req.False(tags.Record("#meddle", "ABC", domain.UserID(0)))
	req.False(tags.Record("#meddle", "XYZ", domain.UserID(1)))
}

func TestTags_OccurrencesAreAppendOnlyAndOrdered(t *testing.T) {
	req := require.New(t)
	tags := NewTags(testLogger())

	tags.Record("#meddle", "ABC", domain.UserID(0))
	tags.Record("#meddle", "XYZ", domain.UserID(1))

	occurrences := tags.Snapshot()["#meddle"]
	req.Len(occurrences, 2)
	req.Equal("ABC", occurrences[0].Channel)
	req.Equal("XYZ", occurrences[1].Channel)
	req.LessOrEqual(occurrences[0].At, occurrences[1].At)
}

func TestTags_SnapshotIsACopy(t *testing.T) {
	req := require.New(t)
	tags := NewTags(testLogger())
	tags.Record("#meddle", "ABC", domain.UserID(0))

	snapshot := tags.Snapshot()
	snapshot["#meddle"] = nil
	snapshot["#injected"] = []Occurrence{{Channel: "EVIL"}}

	fresh := tags.Snapshot()
	req.Len(fresh["#meddle"], 1)
	req.NotContains(fresh, "#injected")
}
