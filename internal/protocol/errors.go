package protocol

const (
	// Protocol/transport validation.
	ErrProtoBadRequest = "E_PROTO_BAD_REQUEST"

	// Mutation rejections. These are outcomes, not faults: the bench is
	// unchanged and the client declines to commit the drag.
	ErrBadRequest      = "E_BAD_REQUEST"
	ErrOverlap         = "E_OVERLAP"
	ErrOutOfBounds     = "E_OUT_OF_BOUNDS"
	ErrUnknownGear     = "E_UNKNOWN_GEAR"
	ErrUnknownTemplate = "E_UNKNOWN_TEMPLATE"
	ErrUnknownLevel    = "E_UNKNOWN_LEVEL"

	ErrInternal = "E_INTERNAL"
)

var knownCodes = map[string]struct{}{
	ErrProtoBadRequest: {},
	ErrBadRequest:      {},
	ErrOverlap:         {},
	ErrOutOfBounds:     {},
	ErrUnknownGear:     {},
	ErrUnknownTemplate: {},
	ErrUnknownLevel:    {},
	ErrInternal:        {},
}

func IsKnownCode(code string) bool {
	if code == "" {
		return true
	}
	_, ok := knownCodes[code]
	return ok
}
