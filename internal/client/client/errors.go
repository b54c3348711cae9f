package client

import "errors"

var (
	ErrUnavailable       = errors.New("identity gateway unavailable")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrMalformedResponse = errors.New("malformed gateway response")
)
