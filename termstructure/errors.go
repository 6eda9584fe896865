package termstructure

import (
	"errors"
	"fmt"
	"time"

	"github.com/meenmo/ratecurve/interpolation"
	"github.com/meenmo/ratecurve/ratehelper"
	"github.com/meenmo/ratecurve/utils"
)

var (
	// ErrBootstrapFailure is wrapped by every *BootstrapError.
	ErrBootstrapFailure = errors.New("bootstrap failure")

	// ErrUnsupportedInterpolation rejects trait/interpolation pairs the curve
	// cannot evaluate, such as ConvexMonotone on discount factors.
	ErrUnsupportedInterpolation = errors.New("unsupported interpolation for curve trait")

	// ErrNegativeTime is returned for dates before the reference date.
	ErrNegativeTime = errors.New("date before curve reference date")

	ErrInvalidHelperData       = ratehelper.ErrInvalidHelperData
	ErrDuplicateMaturity       = ratehelper.ErrDuplicateMaturity
	ErrExtrapolationNotAllowed = interpolation.ErrExtrapolationNotAllowed
)

// BootstrapError reports the helper whose node could not be solved.
// HelperIndex is -1 when the global iteration did not converge.
type BootstrapError struct {
	HelperIndex  int
	Helper       string
	Pillar       time.Time
	Low, High    float64
	LastResidual float64
	Evaluations  int
	Err          error
}

func (e *BootstrapError) Error() string {
	if e.HelperIndex < 0 {
		return fmt.Sprintf("%v: %v", ErrBootstrapFailure, e.Err)
	}
	return fmt.Sprintf("%v: helper %d (%s, pillar %s) bracket [%g, %g], last residual %g after %d evaluations: %v",
		ErrBootstrapFailure, e.HelperIndex, e.Helper, utils.FormatDate(e.Pillar), e.Low, e.High, e.LastResidual, e.Evaluations, e.Err)
}

func (e *BootstrapError) Unwrap() []error { return []error{ErrBootstrapFailure, e.Err} }
