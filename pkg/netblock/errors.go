package netblock

import "errors"

var (
	// ErrMalformedAddress is returned for text that is not a dotted-decimal IPv4 address.
	ErrMalformedAddress = errors.New("malformed IPv4 address")
	// ErrInvalidMaskLength is returned for a mask length outside [0,32].
	ErrInvalidMaskLength = errors.New("invalid mask length")
	// ErrColumnLength is returned when parallel build columns differ in length.
	ErrColumnLength = errors.New("netblock columns have different lengths")
)
