package jobs

import (
	"errors"
	"fmt"
)

// Sentinel errors for job and registry operations. These can be checked
// with errors.Is().
var (
	ErrJobNotFound  = errors.New("job not found")
	ErrCollision    = errors.New("job id collision")
	ErrEmptyAudible = errors.New("no audible content")
)

// notFoundError returns a wrapped error for a missing job.
func notFoundError(id JobId) error {
	return fmt.Errorf("%w: %s", ErrJobNotFound, id)
}
