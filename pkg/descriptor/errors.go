package descriptor

import "errors"

var (
	// ErrPowerSourceNotAvailable is returned when the current power source
	// is not listed among the available power sources.
	ErrPowerSourceNotAvailable = errors.New("descriptor: current power source not available")

	// ErrTooManyClusters is returned when a cluster list does not fit its count byte.
	ErrTooManyClusters = errors.New("descriptor: too many clusters")
)
