package errors

import "fmt"

var (
	ErrUnknownSender     = fmt.Errorf("sender id is not online")
	ErrUnknownChannel    = fmt.Errorf("channel is not registered")
	ErrUnknownName       = fmt.Errorf("name was never registered")
	ErrVersionMismatch   = fmt.Errorf("client and server protocol versions differ")
	ErrProtocolViolation = fmt.Errorf("malformed or unexpected request")
)
