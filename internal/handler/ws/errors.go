package ws

import "errors"

var (
	// ErrNotAuthenticated is returned when the first frame of a connection is
	// not a valid Authenticate frame.
	ErrNotAuthenticated = errors.New("connection is not authenticated")
	// ErrSendBufferFull is the reason a slow session is dropped.
	ErrSendBufferFull = errors.New("send buffer is full")
)
