package protocol

import "errors"

// Per-message faults of the wire layer. All are recoverable: the
// offending message is logged and dropped, the connection stays open.
var (
	ErrMalformedEvent   = errors.New("malformed event payload")
	ErrUnknownEvent     = errors.New("unknown event name")
	ErrMissingField     = errors.New("missing required field")
	ErrWrongFieldType   = errors.New("wrong field type")
	ErrUnknownFrameKind = errors.New("unknown frame kind")
)
