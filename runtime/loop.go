// Package runtime drives the relay's single-threaded cooperative event
// loop. One iteration performs a liveness sweep, a bounded wait for the next
// control request, and the run-to-completion handling of at most one
// request. All shared state is mutated from this loop only, which serializes
// mutation by construction.
package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	zmq "github.com/pebbe/zmq4"

	"meddle/protocol"
	"meddle/registry"
)

// replySocket is the REP side of the control protocol. The transport
// enforces strict request-then-reply ordering; a second request before the
// reply is a protocol violation at the socket level.
type replySocket interface {
	RecvMessage(flags zmq.Flag) ([]string, error)
	SendMessage(parts ...interface{}) (int, error)
}

type requestPoller interface {
	Poll(timeout time.Duration) ([]zmq.Polled, error)
}

// ControlLoop owns the sweep-then-wait-then-handle cycle. The poll timeout
// bounds the wait so staleness is detected at a regular cadence even with no
// traffic. There is no cancellation of an in-flight request: once received,
// it is always answered.
type ControlLoop struct {
	log              *slog.Logger
	socket           replySocket
	poller           requestPoller
	handler          *protocol.Handler
	users            *registry.Users
	pollInterval     time.Duration
	heartbeatTimeout time.Duration
}

func NewControlLoop(
	log *slog.Logger,
	socket replySocket,
	poller requestPoller,
	handler *protocol.Handler,
	users *registry.Users,
	pollInterval, heartbeatTimeout time.Duration,
) *ControlLoop {
	return &ControlLoop{
		log:              log,
		socket:           socket,
		poller:           poller,
		handler:          handler,
		users:            users,
		pollInterval:     pollInterval,
		heartbeatTimeout: heartbeatTimeout,
	}
}

// Run executes control-loop ticks until the context is canceled or an
// internal fault occurs. Faults are returned, not swallowed: the process is
// expected to terminate on them, there is no supervisor restart here.
func (l *ControlLoop) Run(ctx context.Context) error {
	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		l.sweep()

		polled, err := l.poller.Poll(l.pollInterval)
		if err != nil {
			return fmt.Errorf("control poll: %w", err)
		}
		if len(polled) == 0 {
			l.log.Debug("waiting..")
			continue
		}

		frames, err := l.socket.RecvMessage(0)
		if err != nil {
			return fmt.Errorf("control recv: %w", err)
		}

		reply, handleErr := l.handler.Handle(frames)

		// The request is answered even when handling uncovered a fatal
		// fault; every received request terminates in exactly one reply.
		if _, err := l.socket.SendMessage(reply); err != nil {
			return fmt.Errorf("control reply: %w", err)
		}
		if handleErr != nil {
			return fmt.Errorf("control handler: %w", handleErr)
		}
	}
}

// sweep evicts users whose heartbeat went stale and emits a single presence
// broadcast per non-empty sweep, not one per dead user.
func (l *ControlLoop) sweep() {
	dead := l.users.FindDead(l.heartbeatTimeout)
	if len(dead) == 0 {
		return
	}
	l.users.MarkOffline(dead)
	l.handler.BroadcastPresence()
}
