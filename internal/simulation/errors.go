package simulation

import "errors"

// Construction errors.
var (
	ErrInvalidPosition    = errors.New("position must be finite")
	ErrInvalidHeading     = errors.New("heading must be finite")
	ErrInvalidSpeed       = errors.New("speed must be finite and non-negative")
	ErrInvalidRange       = errors.New("detection range must be finite and non-negative")
	ErrInvalidProbability = errors.New("detection probability must be within [0, 1]")
	ErrInvalidScale       = errors.New("range scale must be finite and non-negative")
)

// Registration errors.
var (
	ErrNilAgent           = errors.New("agent is nil")
	ErrAlreadyRegistered  = errors.New("agent already registered")
	ErrRegistrationClosed = errors.New("registration is closed once the simulation has ticked")
)
