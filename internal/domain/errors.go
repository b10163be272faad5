package domain

import "errors"

// Pipeline error kinds. Malformed items are rejected per item and the batch
// continues; storage errors abort the whole batch so the scheduler retries it.
var (
	ErrMalformedItem      = errors.New("malformed item")
	ErrStorageUnavailable = errors.New("trigger store unavailable")
)
