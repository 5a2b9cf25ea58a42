package liveapi

import "errors"

var (
	ErrMalformedEnvelope = errors.New("liveapi: malformed envelope")
	ErrUnknownType       = errors.New("liveapi: unknown message type")
	ErrNormalize         = errors.New("liveapi: normalize message")
	ErrInvalidCommand    = errors.New("liveapi: invalid command")
)
