package scoring

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput          = errors.New("empty input: no entity records")
	ErrDegenerateCriterion = errors.New("degenerate criterion: min equals max")
	ErrMalformedWeights    = errors.New("malformed weights")
	ErrInvalidThresholds   = errors.New("invalid thresholds")
	ErrNonFiniteValue      = errors.New("non-finite criterion value")
	ErrDuplicateKey        = errors.New("duplicate entity key")
	ErrRaggedRecord        = errors.New("record length does not match criteria")
)

// CriterionError ties a failure to a single criterion column.
type CriterionError struct {
	Criterion string
	Err       error
}

func (e *CriterionError) Error() string {
	return fmt.Sprintf("criterion %q: %v", e.Criterion, e.Err)
}

func (e *CriterionError) Unwrap() error { return e.Err }

// IsInputError reports whether err is caused by caller-supplied data rather
// than an internal fault.
func IsInputError(err error) bool {
	for _, target := range []error{
		ErrEmptyInput,
		ErrDegenerateCriterion,
		ErrMalformedWeights,
		ErrInvalidThresholds,
		ErrNonFiniteValue,
		ErrDuplicateKey,
		ErrRaggedRecord,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
