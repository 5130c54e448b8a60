package notify

import "errors"

var (
	// ErrInvalidUrgency is returned when a submission carries an urgency
	// outside the four defined levels.
	ErrInvalidUrgency = errors.New("invalid notification urgency")

	// ErrSendTimeout is logged when an external channel sender exceeds
	// its time budget. It never propagates to callers.
	ErrSendTimeout = errors.New("channel send timed out")
)
