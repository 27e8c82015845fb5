package broadcast

import (
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"meddle/domain"
)

type fakeSender struct {
	messages [][]interface{}
	err      error
}

func (f *fakeSender) SendMessage(parts ...interface{}) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.messages = append(f.messages, parts)
	return len(parts), nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestPublisher_SendsTopicFrameFirst(t *testing.T) {
	req := require.New(t)
	socket := &fakeSender{}
	publisher := NewPublisher(socket, testLogger())

	req.NoError(publisher.Send(TopicUserUpdate, `["alice"]`))

	req.Len(socket.messages, 1)
	req.Equal([]interface{}{"user_update", `["alice"]`}, socket.messages[0])
}

func TestPublisher_SendReportsSocketErrors(t *testing.T) {
	socket := &fakeSender{err: fmt.Errorf("socket closed")}
	publisher := NewPublisher(socket, testLogger())

	err := publisher.Send(TopicTagsUpdate, "{}")

	require.ErrorContains(t, err, "tags_update")
}

func TestTopicGrammar(t *testing.T) {
	req := require.New(t)

	req.Equal("tag#meddle", TagTopic("#meddle"))
	req.Equal("notify3", NotifyTopic(domain.UserID(3)))

	// The per-message topic deliberately concatenates channel and text;
	// subscribers prefix-filter on the channel name.
	req.Equal("ABC123XYZ0hi there", MessageTopic("ABC123XYZ0", "hi there"))
}
