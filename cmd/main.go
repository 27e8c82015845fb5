package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	zmq "github.com/pebbe/zmq4"

	"meddle/broadcast"
	"meddle/protocol"
	"meddle/registry"
	"meddle/repositories"
	"meddle/runtime"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the server lifecycle, and
// centralizes error reporting. An error returned from the control loop is
// fatal: the relay does not supervise or restart itself.
func run() error {
	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Sockets: REP for control, PUB for fan-out. Both are used only from
	// the control loop, matching their single-writer requirement.
	rpcSocket, err := zmq.NewSocket(zmq.REP)
	if err != nil {
		return fmt.Errorf("creating REP socket: %w", err)
	}
	defer func() { _ = rpcSocket.Close() }()
	if err := rpcSocket.Bind(fmt.Sprintf("tcp://*:%d", config.RPCPort)); err != nil {
		return fmt.Errorf("binding control port %d: %w", config.RPCPort, err)
	}

	pubSocket, err := zmq.NewSocket(zmq.PUB)
	if err != nil {
		return fmt.Errorf("creating PUB socket: %w", err)
	}
	defer func() { _ = pubSocket.Close() }()
	_ = pubSocket.SetLinger(0)
	if err := pubSocket.Bind(fmt.Sprintf("tcp://*:%d", config.PubPort)); err != nil {
		return fmt.Errorf("binding broadcast port %d: %w", config.PubPort, err)
	}

	poller := zmq.NewPoller()
	poller.Add(rpcSocket, zmq.POLLIN)

	// 3. Owned state: registries, message history, publisher, handler. No
	// globals; everything is passed by reference into the loop.
	users := registry.NewUsers(log)
	channels := registry.NewChannels()
	tags := registry.NewTags(log)
	history := repositories.NewChatLog(config.LogDir, log)
	publisher := broadcast.NewPublisher(pubSocket, log)
	handler := protocol.NewHandler(log, users, channels, tags, history, publisher,
		config.PubPort, config.ChannelTokenLength)

	loop := runtime.NewControlLoop(log, rpcSocket, poller, handler, users,
		config.PollInterval, config.HeartbeatTimeout)

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("meddle server listening",
		"rpc_port", config.RPCPort, "pub_port", config.PubPort)

	// Use an error channel to capture loop faults
	errChan := make(chan error, 1)
	go func() {
		errChan <- loop.Run(ctx)
	}()

	// 5. Wait for Stop or Error
	select {
	case <-ctx.Done():
		log.Info("Shutting down gracefully...")
		<-errChan
	case err := <-errChan:
		if err != nil && ctx.Err() == nil {
			return err
		}
	}

	log.Info("Program stopped cleanly")
	return nil
}
