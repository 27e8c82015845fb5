package main

import "time"

// Config defines the server-side environment variables. Defaults reproduce
// the historical deployment: control on 32100, broadcast on 32101, a 3s
// bounded poll driving the liveness sweep, and a 5s heartbeat timeout.
type Config struct {
	RPCPort            int           `env:"MEDDLE_RPC_PORT,default=32100"`
	PubPort            int           `env:"MEDDLE_PUB_PORT,default=32101"`
	LogDir             string        `env:"MEDDLE_LOG_DIR,default=."`
	LogLevel           string        `env:"LOG_LEVEL,default=debug"`
	PollInterval       time.Duration `env:"MEDDLE_POLL_INTERVAL,default=3s"`
	HeartbeatTimeout   time.Duration `env:"MEDDLE_HEARTBEAT_TIMEOUT,default=5s"`
	ChannelTokenLength int           `env:"MEDDLE_CHANNEL_TOKEN_LENGTH,default=10"`
}
