package protocol

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"meddle/broadcast"
	"meddle/contract"
	"meddle/domain"
	"meddle/registry"
)

const (
	replyOK  = "ok"
	replyNok = "nok"
)

// Handler dispatches one control request to completion and always produces
// exactly one reply. All registries are owned by the control loop and passed
// in by reference; Handler itself holds no state beyond its collaborators.
type Handler struct {
	log       *slog.Logger
	users     *registry.Users
	channels  *registry.Channels
	tags      *registry.Tags
	history   contract.IChatLog
	publisher contract.Publisher
	validate  *validator.Validate
	version   domain.Version
	subPort   int
	tokenLen  int
}

func NewHandler(
	log *slog.Logger,
	users *registry.Users,
	channels *registry.Channels,
	tags *registry.Tags,
	history contract.IChatLog,
	publisher contract.Publisher,
	subPort, tokenLen int,
) *Handler {
	return &Handler{
		log:       log,
		users:     users,
		channels:  channels,
		tags:      tags,
		history:   history,
		publisher: publisher,
		validate:  validator.New(),
		version:   domain.CurrentVersion,
		subPort:   subPort,
		tokenLen:  tokenLen,
	}
}

// Handle processes one request run-to-completion and returns the reply
// frame. Request-level problems (unknown sender, unknown channel, malformed
// frames) are answered with nok and logged as warnings; a non-nil error
// means an internal fault the loop must treat as fatal.
func (h *Handler) Handle(frames []string) (string, error) {
	req, err := ParseRequest(frames)
	if err != nil {
		h.log.Warn("Rejecting malformed request", "error", err)
		return replyNok, nil
	}

	switch req.Command {
	case CmdHello:
		return h.handleHello(req.Hello)
	case CmdCreateChannel:
		return h.handleCreateChannel(req), nil
	case CmdGetChannels:
		return h.encode(h.channels.Snapshot())
	case CmdGetUsers:
		return h.encode(h.users.OnlineNames())
	case CmdGetActiveTags:
		return h.encode(h.tags.Snapshot())
	case CmdGetLog:
		return h.encode(h.history.Entries(req.Channel))
	case CmdPing:
		return h.handlePing(req.Sender), nil
	case CmdPublish:
		return h.handlePublish(req)
	}

	// ParseRequest only emits commands of the closed set above.
	return replyNok, fmt.Errorf("unhandled command %v", req.Command)
}

func (h *Handler) handleHello(hello HelloRequest) (string, error) {
	if err := h.validate.Struct(hello); err != nil {
		h.log.Warn("Rejecting hello with invalid payload", "error", err)
		return replyNok, nil
	}

	if !hello.Version.Equal(h.version) {
		h.log.Warn("Rejecting hello with version mismatch",
			"name", hello.Name, "client", hello.Version, "server", h.version)
		return h.encode(HelloRejected{Accepted: false, Version: h.version})
	}

	isNew, id, _ := h.users.FindOrCreate(hello.Name)
	h.log.Debug("Hello", "name", hello.Name, "id", id, "new", isNew)
	if isNew {
		h.BroadcastPresence()
	}

	return h.encode(HelloAccepted{
		Accepted: true,
		ID:       id,
		Version:  h.version,
		SubPort:  h.subPort,
	})
}

func (h *Handler) handleCreateChannel(req Request) string {
	name, ok := h.users.NameOf(req.Sender)
	if !ok {
		h.log.Warn("User marked offline but sending", "id", req.Sender)
		return replyNok
	}

	// Resolve every invitee before mutating anything, so an unknown name
	// leaves no half-created channel behind.
	invitees := make([]domain.UserID, 0, len(req.Invitees))
	for _, invitee := range req.Invitees {
		id, err := h.users.IDOf(invitee)
		if err != nil {
			h.log.Warn("Rejecting create_channel", "error", err)
			return replyNok
		}
		invitees = append(invitees, id)
	}

	token := domain.ChannelToken(h.tokenLen)
	channel := h.channels.Create(token)
	channel.AddParticipant(name)
	h.log.Debug("Channel created", "channel", token, "creator", name, "invitees", req.Invitees)

	for _, id := range invitees {
		h.send(broadcast.NotifyTopic(id), broadcast.JoinChannel, token)
	}
	h.broadcastChannels()

	return token
}

func (h *Handler) handlePing(sender domain.UserID) string {
	if !h.users.Refresh(sender) {
		h.log.Warn("User marked offline but sending", "id", sender)
		return replyNok
	}
	return replyOK
}

func (h *Handler) handlePublish(req Request) (string, error) {
	name, ok := h.users.NameOf(req.Sender)
	if !ok {
		h.log.Warn("User marked offline but sending", "id", req.Sender)
		return replyNok, nil
	}
	if _, ok := h.channels.Get(req.Channel); !ok {
		h.log.Warn("Publish on unknown channel", "channel", req.Channel)
		return replyNok, nil
	}

	changed, err := h.channels.AddParticipant(req.Channel, name)
	if err != nil {
		return replyNok, err
	}
	if changed {
		h.broadcastChannels()
	}

	tags := domain.ExtractTags(req.Text)
	for _, tag := range tags {
		h.tags.Record(tag, req.Channel, req.Sender)
		h.send(broadcast.TagTopic(tag), req.Channel, name, req.Text)
	}
	if len(tags) > 0 {
		h.log.Info("Tags mentioned", "tags", tags, "channel", req.Channel)
		h.broadcastTags()
	}

	h.log.Debug("Publish", "sender", name, "channel", req.Channel, "text", req.Text)
	h.send(broadcast.MessageTopic(req.Channel, req.Text), name)

	// The channel log is the durability backstop; failing to extend it is an
	// internal fault, not a client error.
	if err := h.history.Append(req.Channel, name, req.Text); err != nil {
		return replyNok, err
	}
	return replyOK, nil
}

// BroadcastPresence emits the current online-name list. It is also called by
// the control loop after a liveness sweep evicted someone.
func (h *Handler) BroadcastPresence() {
	payload, err := json.Marshal(h.users.OnlineNames())
	if err != nil {
		h.log.Error("Encoding user list failed", "error", err)
		return
	}
	h.send(broadcast.TopicUserUpdate, string(payload))
}

func (h *Handler) broadcastChannels() {
	payload, err := json.Marshal(h.channels.Snapshot())
	if err != nil {
		h.log.Error("Encoding channel list failed", "error", err)
		return
	}
	h.send(broadcast.TopicChannelsUpdate, string(payload))
}

func (h *Handler) broadcastTags() {
	payload, err := json.Marshal(h.tags.Snapshot())
	if err != nil {
		h.log.Error("Encoding tag index failed", "error", err)
		return
	}
	h.send(broadcast.TopicTagsUpdate, string(payload))
}

// send is fire-and-forget: a broadcast failure is logged and never fails the
// request being handled.
func (h *Handler) send(topic string, payload ...string) {
	if err := h.publisher.Send(topic, payload...); err != nil {
		h.log.Warn("Broadcast failed", "topic", topic, "error", err)
	}
}

func (h *Handler) encode(v any) (string, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return replyNok, fmt.Errorf("encoding reply: %w", err)
	}
	return string(payload), nil
}
